package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/go-ctap/webauthnrp/pkg/options"
	"github.com/go-ctap/webauthnrp/pkg/rp"
	"github.com/go-ctap/webauthnrp/pkg/softauthn"
	"github.com/go-ctap/webauthnrp/pkg/store/memstore"
)

const (
	rpName = "Example RP"
	rpID   = "localhost"
	origin = "http://localhost:3000"
)

func main() {
	lvl := new(slog.LevelVar)
	lvl.Set(slog.LevelDebug)
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: lvl,
	}))

	ctx := context.Background()

	party, err := rp.New(rpName, rpID, origin, memstore.New(),
		options.WithLogger(logger),
	)
	if err != nil {
		panic(err)
	}

	// Plays the browser + platform authenticator role.
	authenticator := softauthn.New()

	// Registration ceremony.
	creationOpts, err := party.BeginRegistration(ctx, "alice")
	if err != nil {
		panic(err)
	}
	attestation, err := authenticator.Create(origin, creationOpts)
	if err != nil {
		panic(err)
	}
	cred, err := party.FinishRegistration(ctx, "alice", attestation)
	if err != nil {
		panic(err)
	}
	fmt.Printf("registered credential %x (%s)\n", cred.ID, cred.DeviceType)

	// Username-bound authentication ceremony.
	requestOpts, err := party.BeginLogin(ctx, "alice")
	if err != nil {
		panic(err)
	}
	assertion, err := authenticator.Get(origin, requestOpts)
	if err != nil {
		panic(err)
	}
	ident, err := party.FinishLogin(ctx, "alice", assertion)
	if err != nil {
		panic(err)
	}
	fmt.Printf("authenticated as %s (%s)\n", ident.Username, ident.ID)

	// Discoverable ("usernameless") ceremony: the server learns who is logging
	// in only from the credential the authenticator presents.
	discOpts, token, err := party.BeginDiscoverableLogin(ctx)
	if err != nil {
		panic(err)
	}
	assertion, err = authenticator.Get(origin, discOpts)
	if err != nil {
		panic(err)
	}
	ident, err = party.FinishDiscoverableLogin(ctx, token, assertion)
	if err != nil {
		panic(err)
	}
	fmt.Printf("discoverable login as %s (%s)\n", ident.Username, ident.ID)
}

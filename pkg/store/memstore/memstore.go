// Package memstore is the in-process store.Store implementation. It keeps two
// indexes over the same records: users by username and credential owners by
// credential ID, so discoverable logins resolve without a scan.
package memstore

import (
	"context"
	"encoding/base64"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/samber/mo"

	"github.com/go-ctap/webauthnrp/pkg/store"
)

type Store struct {
	mu           sync.RWMutex
	users        map[string]*store.User
	byCredential map[string]string // credential ID (base64url) -> username
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		users:        make(map[string]*store.User),
		byCredential: make(map[string]string),
	}
}

func credentialKey(credentialID []byte) string {
	return base64.RawURLEncoding.EncodeToString(credentialID)
}

func (s *Store) GetUser(_ context.Context, username string) (mo.Option[store.User], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[username]
	if !ok {
		return mo.None[store.User](), nil
	}

	return mo.Some(copyUser(u)), nil
}

func (s *Store) GetOrCreateUser(_ context.Context, username string) (store.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u, ok := s.users[username]; ok {
		return copyUser(u), nil
	}

	u := &store.User{
		ID:       uuid.NewString(),
		Username: username,
	}
	s.users[username] = u

	return copyUser(u), nil
}

func (s *Store) FindCredential(_ context.Context, credentialID []byte) (mo.Option[store.Owner], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	username, ok := s.byCredential[credentialKey(credentialID)]
	if !ok {
		return mo.None[store.Owner](), nil
	}

	u := s.users[username]
	for _, c := range u.Credentials {
		if slices.Equal(c.ID, credentialID) {
			return mo.Some(store.Owner{
				User:       copyUser(u),
				Credential: c,
			}), nil
		}
	}

	return mo.None[store.Owner](), nil
}

func (s *Store) AddCredential(_ context.Context, username string, cred store.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[username]
	if !ok {
		return store.ErrUnknownUser
	}

	key := credentialKey(cred.ID)
	if _, taken := s.byCredential[key]; taken {
		return store.ErrCredentialExists
	}

	u.Credentials = append(u.Credentials, cred)
	s.byCredential[key] = username

	return nil
}

func (s *Store) UpdateSignCount(_ context.Context, credentialID []byte, signCount uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	username, ok := s.byCredential[credentialKey(credentialID)]
	if !ok {
		return store.ErrUnknownCredential
	}

	u := s.users[username]
	for i := range u.Credentials {
		if slices.Equal(u.Credentials[i].ID, credentialID) {
			u.Credentials[i].SignCount = signCount
			return nil
		}
	}

	return store.ErrUnknownCredential
}

func (s *Store) SetChallenge(_ context.Context, username string, challenge []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[username]
	if !ok {
		return store.ErrUnknownUser
	}
	u.CurrentChallenge = slices.Clone(challenge)

	return nil
}

func (s *Store) TakeChallenge(_ context.Context, username string) (mo.Option[[]byte], error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[username]
	if !ok || u.CurrentChallenge == nil {
		return mo.None[[]byte](), nil
	}

	c := u.CurrentChallenge
	u.CurrentChallenge = nil

	return mo.Some(c), nil
}

// copyUser snapshots a record so callers never alias store-internal state.
func copyUser(u *store.User) store.User {
	out := *u
	out.CurrentChallenge = slices.Clone(u.CurrentChallenge)
	out.Credentials = slices.Clone(u.Credentials)

	return out
}

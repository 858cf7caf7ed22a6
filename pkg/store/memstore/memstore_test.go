package memstore

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-ctap/webauthnrp/pkg/store"
)

func TestGetOrCreateUser(t *testing.T) {
	s := New()
	ctx := context.Background()

	created, err := s.GetOrCreateUser(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", created.Username)
	assert.NotEmpty(t, created.ID)

	again, err := s.GetOrCreateUser(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID)

	opt, err := s.GetUser(ctx, "alice")
	require.NoError(t, err)
	got, ok := opt.Get()
	require.True(t, ok)
	assert.Equal(t, created.ID, got.ID)

	opt, err = s.GetUser(ctx, "bob")
	require.NoError(t, err)
	assert.True(t, opt.IsAbsent())
}

func TestGetOrCreateUserConcurrent(t *testing.T) {
	s := New()
	ctx := context.Background()

	const n = 64
	ids := make([]string, n)

	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			u, err := s.GetOrCreateUser(ctx, "alice")
			assert.NoError(t, err)
			ids[i] = u.ID
		}(i)
	}
	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, ids[0], id, "concurrent registration must observe a single account")
	}
}

func TestCredentialIndex(t *testing.T) {
	s := New()
	ctx := context.Background()

	_, err := s.GetOrCreateUser(ctx, "alice")
	require.NoError(t, err)
	_, err = s.GetOrCreateUser(ctx, "bob")
	require.NoError(t, err)

	cred := store.Credential{ID: []byte{1, 2, 3}, SignCount: 5}
	require.NoError(t, s.AddCredential(ctx, "alice", cred))

	// Credential IDs are globally unique, even across users.
	assert.ErrorIs(t, s.AddCredential(ctx, "bob", cred), store.ErrCredentialExists)
	assert.ErrorIs(t, s.AddCredential(ctx, "nobody", store.Credential{ID: []byte{9}}), store.ErrUnknownUser)

	opt, err := s.FindCredential(ctx, []byte{1, 2, 3})
	require.NoError(t, err)
	owner, ok := opt.Get()
	require.True(t, ok)
	assert.Equal(t, "alice", owner.User.Username)
	assert.EqualValues(t, 5, owner.Credential.SignCount)

	opt, err = s.FindCredential(ctx, []byte{4, 5, 6})
	require.NoError(t, err)
	assert.True(t, opt.IsAbsent())
}

func TestUpdateSignCount(t *testing.T) {
	s := New()
	ctx := context.Background()

	_, err := s.GetOrCreateUser(ctx, "alice")
	require.NoError(t, err)
	require.NoError(t, s.AddCredential(ctx, "alice", store.Credential{ID: []byte{1}, SignCount: 1}))

	require.NoError(t, s.UpdateSignCount(ctx, []byte{1}, 10))

	opt, err := s.FindCredential(ctx, []byte{1})
	require.NoError(t, err)
	owner, ok := opt.Get()
	require.True(t, ok)
	assert.EqualValues(t, 10, owner.Credential.SignCount)

	assert.ErrorIs(t, s.UpdateSignCount(ctx, []byte{2}, 1), store.ErrUnknownCredential)
}

func TestChallengeLifecycle(t *testing.T) {
	s := New()
	ctx := context.Background()

	_, err := s.GetOrCreateUser(ctx, "alice")
	require.NoError(t, err)

	assert.ErrorIs(t, s.SetChallenge(ctx, "ghost", []byte{1}), store.ErrUnknownUser)

	require.NoError(t, s.SetChallenge(ctx, "alice", []byte{1, 1, 1}))
	// A new begin supersedes the outstanding challenge.
	require.NoError(t, s.SetChallenge(ctx, "alice", []byte{2, 2, 2}))

	opt, err := s.TakeChallenge(ctx, "alice")
	require.NoError(t, err)
	ch, ok := opt.Get()
	require.True(t, ok)
	assert.Equal(t, []byte{2, 2, 2}, ch)

	opt, err = s.TakeChallenge(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, opt.IsAbsent(), "TakeChallenge clears the slot")
}

func TestSnapshotsDoNotAlias(t *testing.T) {
	s := New()
	ctx := context.Background()

	_, err := s.GetOrCreateUser(ctx, "alice")
	require.NoError(t, err)
	require.NoError(t, s.AddCredential(ctx, "alice", store.Credential{ID: []byte{1}}))

	opt, err := s.GetUser(ctx, "alice")
	require.NoError(t, err)
	u, ok := opt.Get()
	require.True(t, ok)

	u.Credentials[0].SignCount = 999
	u.Credentials = append(u.Credentials, store.Credential{ID: []byte{2}})

	fresh, err := s.FindCredential(ctx, []byte{1})
	require.NoError(t, err)
	owner, ok := fresh.Get()
	require.True(t, ok)
	assert.EqualValues(t, 0, owner.Credential.SignCount)
}

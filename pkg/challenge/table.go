package challenge

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Table holds outstanding discoverable-login challenges keyed by an opaque
// per-ceremony token, so concurrent usernameless ceremonies never stomp each
// other. Entries live until taken or until their TTL passes.
type Table struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[uuid.UUID]entry

	// test seam
	now func() time.Time
}

type entry struct {
	challenge Challenge
	expires   time.Time
}

func NewTable(ttl time.Duration) *Table {
	return &Table{
		ttl:     ttl,
		entries: make(map[uuid.UUID]entry),
		now:     time.Now,
	}
}

// Put stores a challenge and returns the token that retrieves it. Expired
// entries are swept opportunistically so an abandoned ceremony cannot grow the
// table without bound.
func (t *Table) Put(c Challenge) uuid.UUID {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	for token, e := range t.entries {
		if now.After(e.expires) {
			delete(t.entries, token)
		}
	}

	token := uuid.New()
	t.entries[token] = entry{
		challenge: c,
		expires:   now.Add(t.ttl),
	}

	return token
}

// Take removes and returns the challenge for a token. A token is good for
// exactly one finish attempt; a second Take, or a Take after the TTL, reports
// absence.
func (t *Table) Take(token uuid.UUID) (Challenge, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[token]
	if !ok {
		return nil, false
	}
	delete(t.entries, token)

	if t.now().After(e.expires) {
		return nil, false
	}

	return e.challenge, true
}

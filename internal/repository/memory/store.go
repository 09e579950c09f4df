package memory

import (
	"context"
	"sync"

	"github.com/kirinyoku/boxoffice/internal/domain"
)

// Filter selects records during a traversal. EventCode only applies to
// tickets; nil means every ticket.
type Filter struct {
	Kind      domain.Kind
	EventCode *int64
}

func (f Filter) match(rec domain.Record) bool {
	if rec.Kind() != f.Kind {
		return false
	}
	if f.Kind != domain.KindTicket || f.EventCode == nil {
		return true
	}
	t, ok := rec.(domain.Ticket)
	return ok && t.EventCode == *f.EventCode
}

// Store keeps events and tickets in a single tree guarded by a RWMutex.
type Store struct {
	mu   sync.RWMutex
	tree *Tree[domain.Record]
}

func NewStore() *Store {
	return &Store{tree: NewTree[domain.Record]()}
}

// Tx gives direct access to the tree while the store lock is held.
type Tx struct {
	tree *Tree[domain.Record]
}

// RunTx runs fn with the write lock held. There is no rollback: changes
// made by fn before it fails are kept.
func (s *Store) RunTx(ctx context.Context, fn func(ctx context.Context, tx *Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return fn(ctx, &Tx{tree: s.tree})
}

// View runs fn with the read lock held. fn must not mutate through tx.
func (s *Store) View(fn func(tx *Tx)) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	fn(&Tx{tree: s.tree})
}

func (s *Store) Records() *RecordRepo { return &RecordRepo{store: s} }

func (tx *Tx) Get(key string) (domain.Record, bool) {
	return tx.tree.Search(key)
}

// Put inserts rec under rec.Key(). An existing record with the same key
// is never overwritten; Put then reports false.
func (tx *Tx) Put(rec domain.Record) bool {
	return tx.tree.Insert(rec.Key(), rec)
}

// Remove deletes key. Removing a missing key is a no-op.
func (tx *Tx) Remove(key string) bool {
	return tx.tree.Delete(key)
}

// Traverse walks the whole tree in key order and returns the records
// matching f.
func (tx *Tx) Traverse(f Filter) []domain.Record {
	var out []domain.Record
	tx.tree.Ascend(func(_ string, rec domain.Record) bool {
		if f.match(rec) {
			out = append(out, rec)
		}
		return true
	})
	return out
}

// TicketKeysForEvent collects, in ascending key order, the keys of every
// ticket issued for the event.
func (tx *Tx) TicketKeysForEvent(code int64) []string {
	var keys []string
	tx.tree.Ascend(func(key string, rec domain.Record) bool {
		if t, ok := rec.(domain.Ticket); ok && t.EventCode == code {
			keys = append(keys, key)
		}
		return true
	})
	return keys
}

func (tx *Tx) Stats() domain.StoreStats {
	var st domain.StoreStats
	tx.tree.Ascend(func(_ string, rec domain.Record) bool {
		switch rec.Kind() {
		case domain.KindEvent:
			st.Events++
		case domain.KindTicket:
			st.Tickets++
		}
		return true
	})
	st.Height = tx.tree.Height()
	return st
}

func (tx *Tx) Destroy() int {
	return tx.tree.Destroy()
}

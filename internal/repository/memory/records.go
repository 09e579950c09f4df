package memory

import (
	"context"
	"fmt"

	"github.com/kirinyoku/boxoffice/internal/domain"
	"github.com/kirinyoku/boxoffice/internal/repository"
)

type RecordRepo struct {
	store *Store
	tx    *Tx
}

func (r *RecordRepo) With(tx *Tx) *RecordRepo {
	cp := *r
	cp.tx = tx
	return &cp
}

// read runs fn inside the bound transaction, or under the read lock when
// the repo is not bound to one.
func (r *RecordRepo) read(fn func(tx *Tx)) {
	if r.tx != nil {
		fn(r.tx)
		return
	}
	r.store.View(fn)
}

func (r *RecordRepo) write(ctx context.Context, fn func(tx *Tx) error) error {
	if r.tx != nil {
		return fn(r.tx)
	}
	return r.store.RunTx(ctx, func(_ context.Context, tx *Tx) error {
		return fn(tx)
	})
}

// GetEvent returns the event stored under EventKey(code).
//
// Returns:
//   - error: repository.ErrNotFound if no such event exists.
func (r *RecordRepo) GetEvent(ctx context.Context, code int64) (*domain.Event, error) {
	const op = "memory.RecordRepo.GetEvent"

	var (
		ev    domain.Event
		found bool
	)
	r.read(func(tx *Tx) {
		rec, ok := tx.Get(domain.EventKey(code))
		if ok {
			ev, found = rec.(domain.Event)
		}
	})
	if !found {
		return nil, fmt.Errorf("%s: %w", op, repository.ErrNotFound)
	}

	return &ev, nil
}

// GetTicket returns the ticket stored under TicketKey(code, seat).
func (r *RecordRepo) GetTicket(ctx context.Context, code int64, seat string) (*domain.Ticket, error) {
	const op = "memory.RecordRepo.GetTicket"

	var (
		t     domain.Ticket
		found bool
	)
	r.read(func(tx *Tx) {
		rec, ok := tx.Get(domain.TicketKey(code, seat))
		if ok {
			t, found = rec.(domain.Ticket)
		}
	})
	if !found {
		return nil, fmt.Errorf("%s: %w", op, repository.ErrNotFound)
	}

	return &t, nil
}

// CreateEvent inserts ev.
//
// Returns:
//   - error: repository.ErrConflict if the key is taken.
func (r *RecordRepo) CreateEvent(ctx context.Context, ev domain.Event) error {
	const op = "memory.RecordRepo.CreateEvent"

	return r.write(ctx, func(tx *Tx) error {
		if _, ok := tx.Get(ev.Key()); ok {
			return fmt.Errorf("%s: %w", op, repository.ErrConflict)
		}
		tx.Put(ev)
		return nil
	})
}

// CreateTicket inserts t. The owning event must already be stored.
//
// Returns:
//   - error: repository.ErrNotFound if the event does not exist.
//   - error: repository.ErrConflict if the seat is already taken.
func (r *RecordRepo) CreateTicket(ctx context.Context, t domain.Ticket) error {
	const op = "memory.RecordRepo.CreateTicket"

	return r.write(ctx, func(tx *Tx) error {
		if _, ok := tx.Get(domain.EventKey(t.EventCode)); !ok {
			return fmt.Errorf("%s: %w", op, repository.ErrNotFound)
		}
		if _, ok := tx.Get(t.Key()); ok {
			return fmt.Errorf("%s: %w", op, repository.ErrConflict)
		}
		tx.Put(t)
		return nil
	})
}

// DeleteTicket removes a single ticket.
func (r *RecordRepo) DeleteTicket(ctx context.Context, code int64, seat string) error {
	const op = "memory.RecordRepo.DeleteTicket"

	return r.write(ctx, func(tx *Tx) error {
		if !tx.Remove(domain.TicketKey(code, seat)) {
			return fmt.Errorf("%s: %w", op, repository.ErrNotFound)
		}
		return nil
	})
}

// DeleteKey removes whatever record is stored under key and reports
// whether anything was removed.
func (r *RecordRepo) DeleteKey(ctx context.Context, key string) (bool, error) {
	var removed bool
	err := r.write(ctx, func(tx *Tx) error {
		removed = tx.Remove(key)
		return nil
	})
	return removed, err
}

// TicketKeysForEvent returns the keys of the event's tickets in key order.
func (r *RecordRepo) TicketKeysForEvent(ctx context.Context, code int64) []string {
	var keys []string
	r.read(func(tx *Tx) {
		keys = tx.TicketKeysForEvent(code)
	})
	return keys
}

// ListEvents returns every event in key order.
func (r *RecordRepo) ListEvents(ctx context.Context) []domain.Event {
	var events []domain.Event
	r.read(func(tx *Tx) {
		for _, rec := range tx.Traverse(Filter{Kind: domain.KindEvent}) {
			events = append(events, rec.(domain.Event))
		}
	})
	return events
}

// ListTickets returns the tickets of one event in key order.
//
// Returns:
//   - error: repository.ErrNotFound if the event does not exist.
func (r *RecordRepo) ListTickets(ctx context.Context, code int64) ([]domain.Ticket, error) {
	const op = "memory.RecordRepo.ListTickets"

	var (
		tickets []domain.Ticket
		found   bool
	)
	r.read(func(tx *Tx) {
		if _, found = tx.Get(domain.EventKey(code)); !found {
			return
		}
		for _, rec := range tx.Traverse(Filter{Kind: domain.KindTicket, EventCode: &code}) {
			tickets = append(tickets, rec.(domain.Ticket))
		}
	})
	if !found {
		return nil, fmt.Errorf("%s: %w", op, repository.ErrNotFound)
	}

	return tickets, nil
}

func (r *RecordRepo) Stats(ctx context.Context) domain.StoreStats {
	var st domain.StoreStats
	r.read(func(tx *Tx) {
		st = tx.Stats()
	})
	return st
}

// Reset destroys every record and returns how many were released.
func (r *RecordRepo) Reset(ctx context.Context) (int, error) {
	var n int
	err := r.write(ctx, func(tx *Tx) error {
		n = tx.Destroy()
		return nil
	})
	return n, err
}

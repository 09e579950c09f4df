package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirinyoku/boxoffice/internal/domain"
	"github.com/kirinyoku/boxoffice/internal/repository"
	"github.com/kirinyoku/boxoffice/internal/repository/memory"
)

func seed(t *testing.T, s *memory.Store) {
	t.Helper()

	ctx := context.Background()
	repo := s.Records()

	for _, ev := range []domain.Event{
		{Code: 101, Title: "Concert", Date: "01/01/2025", Time: "20:00"},
		{Code: 7, Title: "Play", Date: "02/01/2025", Time: "19:30"},
	} {
		require.NoError(t, repo.CreateEvent(ctx, ev))
	}

	for _, tk := range []domain.Ticket{
		{EventCode: 101, Seat: "c149", FirstName: "Ana"},
		{EventCode: 101, Seat: "a1", FirstName: "Ion"},
		{EventCode: 7, Seat: "b2", FirstName: "Eva"},
	} {
		require.NoError(t, repo.CreateTicket(ctx, tk))
	}
}

func TestStore_TraverseFilters(t *testing.T) {
	s := memory.NewStore()
	seed(t, s)

	s.View(func(tx *memory.Tx) {
		events := tx.Traverse(memory.Filter{Kind: domain.KindEvent})
		require.Len(t, events, 2)
		// "E_101" < "E_7"
		assert.Equal(t, "E_101", events[0].Key())
		assert.Equal(t, "E_7", events[1].Key())

		all := tx.Traverse(memory.Filter{Kind: domain.KindTicket})
		assert.Len(t, all, 3)

		code := int64(101)
		tickets := tx.Traverse(memory.Filter{Kind: domain.KindTicket, EventCode: &code})
		require.Len(t, tickets, 2)
		assert.Equal(t, "T_101_a1", tickets[0].Key())
		assert.Equal(t, "T_101_c149", tickets[1].Key())

		assert.Equal(t, []string{"T_101_a1", "T_101_c149"}, tx.TicketKeysForEvent(101))
		assert.Empty(t, tx.TicketKeysForEvent(999))
	})
}

func TestRecordRepo_Errors(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	seed(t, s)
	repo := s.Records()

	err := repo.CreateEvent(ctx, domain.Event{Code: 101, Title: "Again"})
	assert.ErrorIs(t, err, repository.ErrConflict)

	ev, err := repo.GetEvent(ctx, 101)
	require.NoError(t, err)
	assert.Equal(t, "Concert", ev.Title)

	err = repo.CreateTicket(ctx, domain.Ticket{EventCode: 101, Seat: "c149"})
	assert.ErrorIs(t, err, repository.ErrConflict)

	err = repo.CreateTicket(ctx, domain.Ticket{EventCode: 999, Seat: "c150"})
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = repo.GetTicket(ctx, 101, "h9")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = repo.ListTickets(ctx, 999)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	assert.ErrorIs(t, repo.DeleteTicket(ctx, 101, "h9"), repository.ErrNotFound)
	require.NoError(t, repo.DeleteTicket(ctx, 101, "a1"))

	tickets, err := repo.ListTickets(ctx, 101)
	require.NoError(t, err)
	require.Len(t, tickets, 1)
	assert.Equal(t, "c149", tickets[0].Seat)
}

func TestRecordRepo_StatsAndReset(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	seed(t, s)
	repo := s.Records()

	st := repo.Stats(ctx)
	assert.Equal(t, 2, st.Events)
	assert.Equal(t, 3, st.Tickets)
	assert.Positive(t, st.Height)

	n, err := repo.Reset(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Empty(t, repo.ListEvents(ctx))
	assert.Equal(t, domain.StoreStats{}, repo.Stats(ctx))

	require.NoError(t, repo.CreateEvent(ctx, domain.Event{Code: 1, Title: "After reset"}))
	assert.Len(t, repo.ListEvents(ctx), 1)
}

func TestRecordRepo_WithTx(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	seed(t, s)

	err := s.RunTx(ctx, func(ctx context.Context, tx *memory.Tx) error {
		repo := s.Records().With(tx)
		removed, err := repo.DeleteKey(ctx, domain.TicketKey(7, "b2"))
		require.True(t, removed)
		return err
	})
	require.NoError(t, err)

	tickets, err := s.Records().ListTickets(ctx, 7)
	require.NoError(t, err)
	assert.Empty(t, tickets)
}

func TestStore_RunTxCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := memory.NewStore().RunTx(ctx, func(context.Context, *memory.Tx) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

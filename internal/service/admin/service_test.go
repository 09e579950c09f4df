package admin_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirinyoku/boxoffice/internal/domain"
	"github.com/kirinyoku/boxoffice/internal/metrics"
	"github.com/kirinyoku/boxoffice/internal/repository/memory"
	redisrepo "github.com/kirinyoku/boxoffice/internal/repository/redis"
	"github.com/kirinyoku/boxoffice/internal/service/admin"
	"github.com/kirinyoku/boxoffice/internal/service/query"
)

func newServices(t *testing.T) (*admin.Service, *query.Service) {
	t.Helper()
	store := memory.NewStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return admin.New(store, nil, nil, nil, logger), query.New(store, nil, query.Config{})
}

func concert() domain.Event {
	return domain.Event{Code: 101, Title: "Concert", Date: "01/01/2025", Time: "20:00"}
}

func ticket(code int64, seat string) domain.Ticket {
	return domain.Ticket{EventCode: code, Seat: seat, TaxID: "1234567890", FirstName: "Ana", LastName: "Popescu"}
}

func TestAdmin_TicketLifecycleScenario(t *testing.T) {
	ctx := context.Background()
	adm, q := newServices(t)

	require.NoError(t, adm.AddEvent(ctx, concert()))
	require.NoError(t, adm.AddTicket(ctx, ticket(101, "c149")))

	err := adm.AddTicket(ctx, ticket(101, "c149"))
	assert.ErrorIs(t, err, admin.ErrSeatTaken)

	err = adm.AddTicket(ctx, ticket(999, "c150"))
	assert.ErrorIs(t, err, admin.ErrEventNotFound)

	tickets, err := q.ListTickets(ctx, 101)
	require.NoError(t, err)
	require.Len(t, tickets, 1)
	assert.Equal(t, "c149", tickets[0].Seat)

	removed, err := adm.RemoveEvent(ctx, 101)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = q.ListTickets(ctx, 101)
	assert.ErrorIs(t, err, query.ErrEventNotFound)
}

func TestAdmin_AddEventConflict(t *testing.T) {
	ctx := context.Background()
	adm, q := newServices(t)

	require.NoError(t, adm.AddEvent(ctx, concert()))

	other := concert()
	other.Title = "Other"
	assert.ErrorIs(t, adm.AddEvent(ctx, other), admin.ErrEventConflict)

	ev, err := q.FindEvent(ctx, 101)
	require.NoError(t, err)
	assert.Equal(t, "Concert", ev.Title)
}

func TestAdmin_AddEventValidation(t *testing.T) {
	ctx := context.Background()
	adm, _ := newServices(t)

	neg := concert()
	neg.Code = -1
	assert.ErrorIs(t, adm.AddEvent(ctx, neg), domain.ErrInvalidCode)

	bad := concert()
	bad.Date = "1/1/25"
	assert.ErrorIs(t, adm.AddEvent(ctx, bad), domain.ErrInvalidField)
}

func TestAdmin_AddTicketSeatRules(t *testing.T) {
	ctx := context.Background()
	adm, _ := newServices(t)
	require.NoError(t, adm.AddEvent(ctx, concert()))

	for _, seat := range []string{"i1", "c501", "c0"} {
		assert.ErrorIs(t, adm.AddTicket(ctx, ticket(101, seat)), domain.ErrInvalidSeat, seat)
	}
	assert.NoError(t, adm.AddTicket(ctx, ticket(101, "c1")))
}

func TestAdmin_AddTicketChecksEventBeforeSeat(t *testing.T) {
	ctx := context.Background()
	adm, _ := newServices(t)

	err := adm.AddTicket(ctx, ticket(5, "z9"))
	assert.ErrorIs(t, err, admin.ErrEventNotFound)

	err = adm.AddTicket(ctx, ticket(-5, "c1"))
	assert.ErrorIs(t, err, domain.ErrInvalidCode)
}

func TestAdmin_AddTicketFieldLimits(t *testing.T) {
	ctx := context.Background()
	adm, q := newServices(t)
	require.NoError(t, adm.AddEvent(ctx, concert()))

	tk := ticket(101, "a1")
	tk.FirstName = string(make([]byte, 50))
	assert.ErrorIs(t, adm.AddTicket(ctx, tk), domain.ErrInvalidField)

	_, err := q.FindTicket(ctx, 101, "a1")
	assert.ErrorIs(t, err, query.ErrTicketNotFound)
}

func TestAdmin_RemoveEventNotFound(t *testing.T) {
	ctx := context.Background()
	adm, q := newServices(t)
	require.NoError(t, adm.AddEvent(ctx, concert()))

	_, err := adm.RemoveEvent(ctx, 7)
	assert.ErrorIs(t, err, admin.ErrEventNotFound)

	events, err := q.ListEvents(ctx)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestAdmin_RemoveEventLeavesOtherEventsUntouched(t *testing.T) {
	ctx := context.Background()
	r := rand.New(rand.NewPCG(7, 11))

	for round := 0; round < 20; round++ {
		adm, q := newServices(t)

		codes := []int64{1, 10, 101, 1010}
		for _, c := range codes {
			require.NoError(t, adm.AddEvent(ctx, domain.Event{Code: c, Title: "E", Date: "01/01/2025", Time: "10:00"}))
		}

		want := map[int64]int{}
		for i := 0; i < 200; i++ {
			c := codes[r.IntN(len(codes))]
			seat := fmt.Sprintf("%c%d", 'a'+rune(r.IntN(8)), 1+r.IntN(500))
			if adm.AddTicket(ctx, ticket(c, seat)) == nil {
				want[c]++
			}
		}

		victim := codes[r.IntN(len(codes))]
		removed, err := adm.RemoveEvent(ctx, victim)
		require.NoError(t, err)
		assert.Equal(t, want[victim], removed)

		_, err = q.FindEvent(ctx, victim)
		assert.ErrorIs(t, err, query.ErrEventNotFound)

		for _, c := range codes {
			if c == victim {
				continue
			}
			tickets, err := q.ListTickets(ctx, c)
			require.NoError(t, err)
			assert.Len(t, tickets, want[c])
		}

		st := q.Stats(ctx)
		assert.Equal(t, len(codes)-1, st.Events)
		total := 0
		for c, n := range want {
			if c != victim {
				total += n
			}
		}
		assert.Equal(t, total, st.Tickets)
	}
}

func TestAdmin_RemoveTicket(t *testing.T) {
	ctx := context.Background()
	adm, q := newServices(t)
	require.NoError(t, adm.AddEvent(ctx, concert()))
	require.NoError(t, adm.AddTicket(ctx, ticket(101, "b7")))

	require.NoError(t, adm.RemoveTicket(ctx, 101, "b7"))
	assert.ErrorIs(t, adm.RemoveTicket(ctx, 101, "b7"), admin.ErrTicketNotFound)

	tickets, err := q.ListTickets(ctx, 101)
	require.NoError(t, err)
	assert.Empty(t, tickets)

	// the seat is free again
	assert.NoError(t, adm.AddTicket(ctx, ticket(101, "b7")))
}

func TestAdmin_Reset(t *testing.T) {
	ctx := context.Background()
	adm, q := newServices(t)
	require.NoError(t, adm.AddEvent(ctx, concert()))
	require.NoError(t, adm.AddTicket(ctx, ticket(101, "a1")))
	require.NoError(t, adm.AddTicket(ctx, ticket(101, "a2")))

	n, err := adm.Reset(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, domain.StoreStats{}, q.Stats(ctx))

	n, err = adm.Reset(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, adm.AddEvent(ctx, concert()))
}

func TestAdmin_InvalidatesCacheAfterCommit(t *testing.T) {
	ctx := context.Background()
	db, mock := redismock.NewClientMock()
	store := memory.NewStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	adm := admin.New(store, redisrepo.New(db), nil, metrics.New(), logger)

	mock.ExpectDel(redisrepo.KeyEventList()).SetVal(0)
	require.NoError(t, adm.AddEvent(ctx, concert()))

	mock.ExpectDel(redisrepo.KeyEventTickets(101)).SetVal(0)
	require.NoError(t, adm.AddTicket(ctx, ticket(101, "a1")))

	mock.ExpectDel(redisrepo.KeyEventView(101), redisrepo.KeyEventTickets(101), redisrepo.KeyEventList()).SetVal(3)
	removed, err := adm.RemoveEvent(ctx, 101)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	assert.NoError(t, mock.ExpectationsWereMet())
}

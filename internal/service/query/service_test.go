package query_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirinyoku/boxoffice/internal/domain"
	"github.com/kirinyoku/boxoffice/internal/repository/memory"
	redisrepo "github.com/kirinyoku/boxoffice/internal/repository/redis"
	"github.com/kirinyoku/boxoffice/internal/service/query"
)

func seededStore(t *testing.T) *memory.Store {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	repo := store.Records()

	require.NoError(t, repo.CreateEvent(ctx, domain.Event{Code: 101, Title: "Concert", Date: "01/01/2025", Time: "20:00"}))
	require.NoError(t, repo.CreateEvent(ctx, domain.Event{Code: 2, Title: "Opera", Date: "03/01/2025", Time: "18:00"}))
	require.NoError(t, repo.CreateTicket(ctx, domain.Ticket{EventCode: 101, Seat: "c149", FirstName: "Ana"}))
	require.NoError(t, repo.CreateTicket(ctx, domain.Ticket{EventCode: 101, Seat: "a10", FirstName: "Dan"}))
	require.NoError(t, repo.CreateTicket(ctx, domain.Ticket{EventCode: 2, Seat: "h1", FirstName: "Mia"}))
	return store
}

func TestQuery_Find(t *testing.T) {
	ctx := context.Background()
	q := query.New(seededStore(t), nil, query.Config{})

	ev, err := q.FindEvent(ctx, 101)
	require.NoError(t, err)
	assert.Equal(t, domain.EventView{Code: 101, Title: "Concert", Date: "01/01/2025", Time: "20:00"}, *ev)

	_, err = q.FindEvent(ctx, 3)
	assert.ErrorIs(t, err, query.ErrEventNotFound)

	_, err = q.FindEvent(ctx, -1)
	assert.ErrorIs(t, err, domain.ErrInvalidCode)

	tk, err := q.FindTicket(ctx, 101, "c149")
	require.NoError(t, err)
	assert.Equal(t, "Ana", tk.FirstName)

	// keys keep the seat as entered
	_, err = q.FindTicket(ctx, 101, "C149")
	assert.ErrorIs(t, err, query.ErrTicketNotFound)
}

func TestQuery_Lists(t *testing.T) {
	ctx := context.Background()
	q := query.New(seededStore(t), nil, query.Config{})

	events, err := q.ListEvents(ctx)
	require.NoError(t, err)
	require.Len(t, events, 2)
	// key order: "E_101" < "E_2"
	assert.Equal(t, int64(101), events[0].Code)
	assert.Equal(t, int64(2), events[1].Code)

	tickets, err := q.ListTickets(ctx, 101)
	require.NoError(t, err)
	require.Len(t, tickets, 2)
	assert.Equal(t, "a10", tickets[0].Seat)
	assert.Equal(t, "c149", tickets[1].Seat)

	_, err = q.ListTickets(ctx, 9)
	assert.ErrorIs(t, err, query.ErrEventNotFound)

	empty := query.New(memory.NewStore(), nil, query.Config{})
	events, err = empty.ListEvents(ctx)
	require.NoError(t, err)
	assert.NotNil(t, events)
	assert.Empty(t, events)
}

func TestQuery_FindEventUsesCache(t *testing.T) {
	ctx := context.Background()
	db, mock := redismock.NewClientMock()
	q := query.New(seededStore(t), redisrepo.New(db), query.Config{ViewTTL: time.Minute})

	key := redisrepo.KeyEventView(101)
	b, _ := json.Marshal(domain.EventView{Code: 101, Title: "Concert", Date: "01/01/2025", Time: "20:00"})

	mock.ExpectGet(key).RedisNil()
	mock.ExpectGet(key).RedisNil()
	mock.ExpectSet(key, string(b), time.Minute).SetVal("OK")

	ev, err := q.FindEvent(ctx, 101)
	require.NoError(t, err)
	assert.Equal(t, "Concert", ev.Title)

	mock.ExpectGet(key).SetVal(`{"code":101,"title":"Cached","date":"01/01/2025","time":"20:00"}`)
	ev, err = q.FindEvent(ctx, 101)
	require.NoError(t, err)
	assert.Equal(t, "Cached", ev.Title)

	assert.NoError(t, mock.ExpectationsWereMet())
}

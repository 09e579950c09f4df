package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kirinyoku/boxoffice/internal/domain"
	"github.com/kirinyoku/boxoffice/internal/repository"
	"github.com/kirinyoku/boxoffice/internal/repository/memory"
	redisrepo "github.com/kirinyoku/boxoffice/internal/repository/redis"
)

type Config struct {
	ViewTTL time.Duration
}

type Service struct {
	store *memory.Store
	cache *redisrepo.Cache
	cfg   Config
}

func New(store *memory.Store, cache *redisrepo.Cache, cfg Config) *Service {
	if cfg.ViewTTL <= 0 {
		cfg.ViewTTL = 60 * time.Second
	}

	return &Service{
		store: store,
		cache: cache,
		cfg:   cfg,
	}
}

// cached serves key from the cache when one is configured, falling back
// to load on a miss.
func cached[T any](ctx context.Context, s *Service, key string, load func(ctx context.Context) (T, error)) (T, error) {
	if s.cache == nil {
		return load(ctx)
	}
	return redisrepo.GetOrSetJSON(ctx, s.cache, key, s.cfg.ViewTTL, load)
}

// FindEvent retrieves an event by its code.
//
// Parameters:
//   - ctx: request-scoped context.
//   - code: event code.
//
// Returns:
//   - *domain.EventView: the event.
//   - error: query.ErrEventNotFound if the event is not found.
func (s *Service) FindEvent(ctx context.Context, code int64) (*domain.EventView, error) {
	const op = "service.query.FindEvent"

	if err := domain.ValidateCode(code); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	view, err := cached(ctx, s, redisrepo.KeyEventView(code), func(ctx context.Context) (domain.EventView, error) {
		ev, err := s.store.Records().GetEvent(ctx, code)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return domain.EventView{}, ErrEventNotFound
			}
			return domain.EventView{}, err
		}
		return ev.View(), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &view, nil
}

// FindTicket retrieves the ticket booked on seat for the event. The seat
// must match exactly as it was entered when the ticket was issued.
//
// Returns:
//   - error: query.ErrTicketNotFound if there is no such booking.
func (s *Service) FindTicket(ctx context.Context, code int64, seat string) (*domain.TicketView, error) {
	const op = "service.query.FindTicket"

	if err := domain.ValidateCode(code); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	t, err := s.store.Records().GetTicket(ctx, code, seat)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrTicketNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	view := t.View()
	return &view, nil
}

// ListEvents returns all events in ascending key order.
func (s *Service) ListEvents(ctx context.Context) ([]domain.EventView, error) {
	const op = "service.query.ListEvents"

	views, err := cached(ctx, s, redisrepo.KeyEventList(), func(ctx context.Context) ([]domain.EventView, error) {
		events := s.store.Records().ListEvents(ctx)
		out := make([]domain.EventView, 0, len(events))
		for _, ev := range events {
			out = append(out, ev.View())
		}
		return out, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return views, nil
}

// ListTickets returns the tickets of one event in ascending seat key order.
//
// Returns:
//   - error: query.ErrEventNotFound if the event is not found.
func (s *Service) ListTickets(ctx context.Context, code int64) ([]domain.TicketView, error) {
	const op = "service.query.ListTickets"

	if err := domain.ValidateCode(code); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	views, err := cached(ctx, s, redisrepo.KeyEventTickets(code), func(ctx context.Context) ([]domain.TicketView, error) {
		tickets, err := s.store.Records().ListTickets(ctx, code)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrEventNotFound
			}
			return nil, err
		}
		out := make([]domain.TicketView, 0, len(tickets))
		for _, t := range tickets {
			out = append(out, t.View())
		}
		return out, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return views, nil
}

func (s *Service) Stats(ctx context.Context) domain.StoreStats {
	return s.store.Records().Stats(ctx)
}

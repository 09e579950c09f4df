package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/kirinyoku/boxoffice/internal/domain"
	"github.com/kirinyoku/boxoffice/internal/metrics"
	"github.com/kirinyoku/boxoffice/internal/repository"
	"github.com/kirinyoku/boxoffice/internal/repository/memory"
	redisrepo "github.com/kirinyoku/boxoffice/internal/repository/redis"
	"github.com/kirinyoku/boxoffice/internal/uow"
)

// Service owns every mutation of the record store. Cache, pubsub and
// metrics are optional and may be nil.
type Service struct {
	store   *memory.Store
	cache   *redisrepo.Cache
	pubsub  *redisrepo.StorePubSub
	metrics *metrics.Metrics
	logger  *slog.Logger
	uow     *uow.UoW
}

func New(
	store *memory.Store,
	cache *redisrepo.Cache,
	pubsub *redisrepo.StorePubSub,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		store:   store,
		cache:   cache,
		pubsub:  pubsub,
		metrics: m,
		logger:  logger,
		uow:     uow.NewUoW(store),
	}
}

// AddEvent registers a new event.
//
// Parameters:
//   - ctx: request-scoped context.
//   - ev: the event; Code must be >= 0 and text fields within their limits.
//
// Returns:
//   - error: domain.ErrInvalidCode or a *domain.FieldError for bad input.
//   - error: admin.ErrEventConflict if an event with the same code exists.
func (s *Service) AddEvent(ctx context.Context, ev domain.Event) (err error) {
	const op = "service.admin.AddEvent"
	defer func() { s.metrics.ObserveOp("add_event", result(err)) }()

	if err := domain.Validate(ev); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return s.uow.Do(ctx, func(ctx context.Context, tx *memory.Tx, after func(uow.AfterCommit)) error {
		if err := s.store.Records().With(tx).CreateEvent(ctx, ev); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return fmt.Errorf("%s: %w", op, ErrEventConflict)
			}
			return fmt.Errorf("%s: %w", op, err)
		}

		after(func(ctx context.Context) {
			s.invalidate(ctx, func(c *redisrepo.Cache) error { return c.InvalidateEventList(ctx) })
			s.publish(ctx, redisrepo.Change{Type: redisrepo.ChangeEventAdded, EventCode: ev.Code})
			s.refreshStats(ctx)
		})
		return nil
	})
}

// AddTicket issues a ticket for an existing event. Checks run in this
// order: code, event existence, seat format, seat availability, remaining
// fields.
//
// Returns:
//   - error: admin.ErrEventNotFound if the event does not exist.
//   - error: domain.ErrInvalidSeat if the seat is malformed.
//   - error: admin.ErrSeatTaken if the seat is already booked.
func (s *Service) AddTicket(ctx context.Context, t domain.Ticket) (err error) {
	const op = "service.admin.AddTicket"
	defer func() { s.metrics.ObserveOp("add_ticket", result(err)) }()

	if err := domain.ValidateCode(t.EventCode); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return s.uow.Do(ctx, func(ctx context.Context, tx *memory.Tx, after func(uow.AfterCommit)) error {
		repo := s.store.Records().With(tx)

		if _, err := repo.GetEvent(ctx, t.EventCode); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%s: %w", op, ErrEventNotFound)
			}
			return fmt.Errorf("%s: %w", op, err)
		}

		if err := domain.ValidateSeat(t.Seat); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		if _, err := repo.GetTicket(ctx, t.EventCode, t.Seat); err == nil {
			return fmt.Errorf("%s: %w", op, ErrSeatTaken)
		}

		if err := domain.Validate(t); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		if err := repo.CreateTicket(ctx, t); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return fmt.Errorf("%s: %w", op, ErrSeatTaken)
			}
			return fmt.Errorf("%s: %w", op, err)
		}

		after(func(ctx context.Context) {
			s.invalidate(ctx, func(c *redisrepo.Cache) error { return c.InvalidateTickets(ctx, t.EventCode) })
			s.publish(ctx, redisrepo.Change{
				Type:      redisrepo.ChangeTicketIssued,
				EventCode: t.EventCode,
				Seat:      t.Seat,
			})
			s.refreshStats(ctx)
		})
		return nil
	})
}

// RemoveTicket cancels a single ticket.
//
// Returns:
//   - error: admin.ErrTicketNotFound if no ticket is booked on that seat.
func (s *Service) RemoveTicket(ctx context.Context, code int64, seat string) (err error) {
	const op = "service.admin.RemoveTicket"
	defer func() { s.metrics.ObserveOp("remove_ticket", result(err)) }()

	if err := domain.ValidateCode(code); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return s.uow.Do(ctx, func(ctx context.Context, tx *memory.Tx, after func(uow.AfterCommit)) error {
		if err := s.store.Records().With(tx).DeleteTicket(ctx, code, seat); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%s: %w", op, ErrTicketNotFound)
			}
			return fmt.Errorf("%s: %w", op, err)
		}

		after(func(ctx context.Context) {
			s.invalidate(ctx, func(c *redisrepo.Cache) error { return c.InvalidateTickets(ctx, code) })
			s.publish(ctx, redisrepo.Change{
				Type:      redisrepo.ChangeTicketCancelled,
				EventCode: code,
				Seat:      seat,
			})
			s.refreshStats(ctx)
		})
		return nil
	})
}

// RemoveEvent deletes an event together with every ticket issued for it.
// Ticket keys are collected first and deleted one by one; a key that is
// already gone is skipped. The event record is deleted last.
//
// Returns:
//   - int: number of tickets removed.
//   - error: admin.ErrEventNotFound if the event does not exist.
func (s *Service) RemoveEvent(ctx context.Context, code int64) (removed int, err error) {
	const op = "service.admin.RemoveEvent"
	defer func() { s.metrics.ObserveOp("remove_event", result(err)) }()

	if err := domain.ValidateCode(code); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	err = s.uow.Do(ctx, func(ctx context.Context, tx *memory.Tx, after func(uow.AfterCommit)) error {
		repo := s.store.Records().With(tx)

		if _, err := repo.GetEvent(ctx, code); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%s: %w", op, ErrEventNotFound)
			}
			return fmt.Errorf("%s: %w", op, err)
		}

		keys := repo.TicketKeysForEvent(ctx, code)
		s.logger.Info("processing cascade delete",
			"eventCode", code,
			"ticketCount", len(keys),
		)

		for _, key := range keys {
			ok, err := repo.DeleteKey(ctx, key)
			if err != nil || !ok {
				s.logger.Warn("ticket already gone",
					"key", key,
					"error", err,
				)
				continue
			}
			removed++
		}

		if _, err := repo.DeleteKey(ctx, domain.EventKey(code)); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		after(func(ctx context.Context) {
			s.logger.Info("cascade delete completed",
				"eventCode", code,
				"ticketsRemoved", removed,
			)
			s.metrics.ObserveCascade(removed)
			s.invalidate(ctx, func(c *redisrepo.Cache) error { return c.InvalidateEvent(ctx, code) })
			s.publish(ctx, redisrepo.Change{
				Type:      redisrepo.ChangeEventRemoved,
				EventCode: code,
				Count:     removed,
			})
			s.refreshStats(ctx)
		})
		return nil
	})
	if err != nil {
		return 0, err
	}

	return removed, nil
}

// Reset deletes every record. The store stays usable afterwards.
//
// Returns:
//   - int: number of records released.
func (s *Service) Reset(ctx context.Context) (released int, err error) {
	const op = "service.admin.Reset"
	defer func() { s.metrics.ObserveOp("reset", result(err)) }()

	err = s.uow.Do(ctx, func(ctx context.Context, tx *memory.Tx, after func(uow.AfterCommit)) error {
		repo := s.store.Records().With(tx)

		events := repo.ListEvents(ctx)
		n, err := repo.Reset(ctx)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		released = n

		after(func(ctx context.Context) {
			s.logger.Info("store reset", "released", released)
			for _, ev := range events {
				s.invalidate(ctx, func(c *redisrepo.Cache) error { return c.InvalidateEvent(ctx, ev.Code) })
			}
			s.invalidate(ctx, func(c *redisrepo.Cache) error { return c.InvalidateEventList(ctx) })
			s.publish(ctx, redisrepo.Change{Type: redisrepo.ChangeStoreReset, Count: released})
			s.refreshStats(ctx)
		})
		return nil
	})
	if err != nil {
		return 0, err
	}

	return released, nil
}

func (s *Service) invalidate(ctx context.Context, fn func(c *redisrepo.Cache) error) {
	if s.cache == nil {
		return
	}
	if err := fn(s.cache); err != nil {
		s.logger.Warn("failed to invalidate cache", "error", err)
	}
}

func (s *Service) publish(ctx context.Context, c redisrepo.Change) {
	if s.pubsub == nil {
		return
	}
	if err := s.pubsub.Publish(ctx, c); err != nil {
		s.logger.Warn("failed to publish store change",
			"type", c.Type,
			"eventCode", c.EventCode,
			"error", err,
		)
	}
}

func (s *Service) refreshStats(ctx context.Context) {
	if s.metrics == nil {
		return
	}
	s.metrics.SetStats(s.store.Records().Stats(ctx))
}

func result(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrEventConflict), errors.Is(err, ErrSeatTaken):
		return "conflict"
	case errors.Is(err, ErrEventNotFound), errors.Is(err, ErrTicketNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInvalidSeat),
		errors.Is(err, domain.ErrInvalidCode),
		errors.Is(err, domain.ErrInvalidField):
		return "invalid"
	default:
		return "error"
	}
}

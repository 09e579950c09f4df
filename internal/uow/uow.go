package uow

import (
	"context"

	"github.com/kirinyoku/boxoffice/internal/repository/memory"
)

// AfterCommit is a function that runs after a unit of work completes
// successfully and the store lock has been released.
type AfterCommit func(ctx context.Context)

// UoW represents a unit of work.
type UoW struct {
	store *memory.Store
}

func NewUoW(store *memory.Store) *UoW {
	return &UoW{store: store}
}

// Do runs fn with exclusive access to the store. After fn succeeds,
// it executes all after-commit hooks in registration order.
func (u *UoW) Do(
	ctx context.Context,
	fn func(ctx context.Context, tx *memory.Tx, after func(AfterCommit)) error,
) error {
	var hooks []AfterCommit

	err := u.store.RunTx(ctx, func(ctx context.Context, tx *memory.Tx) error {
		return fn(ctx, tx, func(h AfterCommit) {
			hooks = append(hooks, h)
		})
	})
	if err != nil {
		return err
	}

	for _, h := range hooks {
		h(ctx)
	}

	return nil
}

package service

import (
	"log/slog"

	"github.com/kirinyoku/boxoffice/internal/metrics"
	"github.com/kirinyoku/boxoffice/internal/repository/memory"
	redisrepo "github.com/kirinyoku/boxoffice/internal/repository/redis"
	"github.com/kirinyoku/boxoffice/internal/service/admin"
	"github.com/kirinyoku/boxoffice/internal/service/query"
)

type Services struct {
	Admin *admin.Service
	Query *query.Service
}

type Config struct {
	Query query.Config
}

// NewServices wires the services around one store. cache, pubsub and m
// may be nil when Redis or metrics are disabled.
func NewServices(
	store *memory.Store,
	cache *redisrepo.Cache,
	pubsub *redisrepo.StorePubSub,
	m *metrics.Metrics,
	logger *slog.Logger,
	cfg Config,
) *Services {
	return &Services{
		Admin: admin.New(store, cache, pubsub, m, logger),
		Query: query.New(store, cache, cfg.Query),
	}
}

package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/kirinyoku/boxoffice/internal/config"
	"github.com/kirinyoku/boxoffice/internal/metrics"
	"github.com/kirinyoku/boxoffice/internal/redis"
	"github.com/kirinyoku/boxoffice/internal/repository/memory"
	redisrepo "github.com/kirinyoku/boxoffice/internal/repository/redis"
	"github.com/kirinyoku/boxoffice/internal/service"
	"github.com/kirinyoku/boxoffice/internal/service/query"
	httpgin "github.com/kirinyoku/boxoffice/internal/transport/http/gin"
	"github.com/kirinyoku/boxoffice/internal/transport/menu"
)

type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	services   *service.Services
	rdb        *goredis.Client
	pubsub     *redisrepo.StorePubSub
	httpServer *http.Server
}

func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	// Initialize the record store
	store := memory.NewStore()

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	var (
		rdb    *goredis.Client
		cache  *redisrepo.Cache
		pubsub *redisrepo.StorePubSub
		opts   httpgin.Options
		err    error
	)
	if cfg.Redis.Enabled() {
		rdb, err = redis.New(context.Background(), redis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize redis: %w", err)
		}

		cache = redisrepo.New(rdb)
		pubsub = redisrepo.NewStorePubSub(rdb)
		opts.Limiter = redisrepo.NewSlidingWindowLimiter(rdb, redisrepo.KeyRateLimit("admin"), cfg.Limits.WriteLimit, cfg.Limits.WriteWindow)
		opts.Idempotency = redisrepo.NewIdempotencyStore(rdb, cfg.Limits.IdempotencyTTL)
	} else {
		logger.Info("redis disabled, running without cache and change notifications")
	}

	// Initialize services
	services := service.NewServices(store, cache, pubsub, m, logger, service.Config{
		Query: query.Config{ViewTTL: cfg.Cache.TTL},
	})

	if m != nil {
		opts.Metrics = m.Handler()
	}

	// Initialize Gin router
	router := httpgin.NewRouter(services, opts, logger)

	return &App{
		cfg:      cfg,
		logger:   logger,
		services: services,
		rdb:      rdb,
		pubsub:   pubsub,
		httpServer: &http.Server{
			Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()
	defer a.close()

	g, gCtx := errgroup.WithContext(ctx)

	// Start HTTP server
	g.Go(func() error {
		a.logger.Info("HTTP server listening", "host", a.cfg.Server.Host, "port", a.cfg.Server.Port)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("failed to start HTTP server: %w", err)
		}
		return nil
	})

	// Store change feed
	if a.pubsub != nil {
		g.Go(func() error {
			err := a.pubsub.Subscribe(gCtx, func(_ context.Context, c redisrepo.Change) {
				a.logger.Info("store changed",
					"type", c.Type,
					"eventCode", c.EventCode,
					"seat", c.Seat,
					"count", c.Count,
				)
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("store change subscription: %w", err)
			}
			return nil
		})
	}

	// Graceful shutdown
	g.Go(func() error {
		<-gCtx.Done()
		a.logger.Info("shutting down HTTP server")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.httpServer.Shutdown(ctx); err != nil {
			return err
		}

		n, err := a.services.Admin.Reset(ctx)
		if err != nil {
			return err
		}
		a.logger.Info("store released", "records", n)
		return nil
	})

	return g.Wait()
}

// RunMenu serves the interactive text menu on in/out instead of HTTP.
func (a *App) RunMenu(ctx context.Context, in io.Reader, out io.Writer) error {
	defer a.close()
	return menu.New(a.services, in, out, a.logger).Run(ctx)
}

func (a *App) close() {
	if a.rdb == nil {
		return
	}
	if err := a.rdb.Close(); err != nil {
		a.logger.Warn("failed to close redis client", "error", err)
	}
}

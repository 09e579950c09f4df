package httpgin

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/kirinyoku/boxoffice/internal/domain"
	redisrepo "github.com/kirinyoku/boxoffice/internal/repository/redis"
	"github.com/kirinyoku/boxoffice/internal/service"
	"github.com/kirinyoku/boxoffice/internal/service/admin"
	"github.com/kirinyoku/boxoffice/internal/service/query"
)

// IdempotencyStore is implemented by redisrepo.IdempotencyStore.
type IdempotencyStore interface {
	AcquireLock(ctx context.Context, key string, lockTTL time.Duration) (bool, error)
	SaveResult(ctx context.Context, key string, jsonPayload string) error
	GetResult(ctx context.Context, key string) (string, bool, error)
	Release(ctx context.Context, key string) error
}

// Options carries the optional collaborators of the router. Nil fields
// disable the matching feature.
type Options struct {
	Idempotency IdempotencyStore
	Limiter     RateLimiter
	Metrics     http.Handler
}

func NewRouter(
	svcs *service.Services,
	opts Options,
	logger *slog.Logger,
	middlewares ...gin.HandlerFunc,
) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery(), LoggingMiddleware(logger), RequestIDMiddleware(), CORS())
	for _, m := range middlewares {
		if m != nil {
			r.Use(m)
		}
	}

	// Swagger UI
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// health
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if opts.Metrics != nil {
		r.GET("/metrics", gin.WrapH(opts.Metrics))
	}

	// Public API
	r.GET("/events", handleListEvents(svcs))
	r.GET("/events/:code", handleGetEvent(svcs))
	r.GET("/events/:code/tickets", handleListTickets(svcs))
	r.GET("/events/:code/tickets/:seat", handleGetTicket(svcs))
	r.GET("/stats", handleStats(svcs))

	// Admin-API
	adm := r.Group("/admin", RateLimitMiddleware(opts.Limiter, logger))
	{
		adm.POST("/events", handleCreateEvent(svcs))
		adm.DELETE("/events/:code", handleRemoveEvent(svcs))
		adm.POST("/events/:code/tickets", handleIssueTicket(svcs, opts.Idempotency))
		adm.DELETE("/events/:code/tickets/:seat", handleCancelTicket(svcs))
		adm.DELETE("/store", handleReset(svcs))
	}

	return r
}

// --- Handlers with Swagger annotations ---

// @Summary  List events
// @Success  200  {array}  domain.EventView
// @Router   /events [get]
func handleListEvents(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		events, err := svcs.Query.ListEvents(c.Request.Context())
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONWithCache(c, http.StatusOK, events, "no-cache", true)
	}
}

// @Summary  Get event
// @Param    code  path  int  true  "Event code"
// @Success  200  {object}  domain.EventView
// @Failure  404  {object}  ErrorResponse
// @Router   /events/{code} [get]
func handleGetEvent(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		code, ok := parseCodeParam(c)
		if !ok {
			return
		}
		ev, err := svcs.Query.FindEvent(c.Request.Context(), code)
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONWithCache(c, http.StatusOK, ev, "no-cache", true)
	}
}

// @Summary  List tickets of an event
// @Param    code  path  int  true  "Event code"
// @Success  200  {array}   domain.TicketView
// @Failure  404  {object}  ErrorResponse
// @Router   /events/{code}/tickets [get]
func handleListTickets(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		code, ok := parseCodeParam(c)
		if !ok {
			return
		}
		tickets, err := svcs.Query.ListTickets(c.Request.Context(), code)
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONWithCache(c, http.StatusOK, tickets, "no-cache", true)
	}
}

// @Summary  Get ticket
// @Param    code  path  int     true  "Event code"
// @Param    seat  path  string  true  "Seat, e.g. c149"
// @Success  200  {object}  domain.TicketView
// @Failure  404  {object}  ErrorResponse
// @Router   /events/{code}/tickets/{seat} [get]
func handleGetTicket(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		code, ok := parseCodeParam(c)
		if !ok {
			return
		}
		t, err := svcs.Query.FindTicket(c.Request.Context(), code, c.Param("seat"))
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, t)
	}
}

// @Summary  Store statistics
// @Success  200  {object}  domain.StoreStats
// @Router   /stats [get]
func handleStats(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, svcs.Query.Stats(c.Request.Context()))
	}
}

// @Summary  Create event
// @Param    req body  CreateEventRequest true "payload"
// @Success  201 {object} CreateEventResponse
// @Failure  400 {object} ErrorResponse
// @Failure  409 {object} ErrorResponse
// @Router   /admin/events [post]
func handleCreateEvent(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateEventRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		ev := req.toDomain()
		if err := svcs.Admin.AddEvent(c.Request.Context(), ev); err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, CreateEventResponse{Code: ev.Code, Key: ev.Key()})
	}
}

// @Summary  Delete event and all of its tickets
// @Param    code  path  int  true  "Event code"
// @Success  200 {object} RemoveEventResponse
// @Failure  404 {object} ErrorResponse
// @Router   /admin/events/{code} [delete]
func handleRemoveEvent(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		code, ok := parseCodeParam(c)
		if !ok {
			return
		}
		n, err := svcs.Admin.RemoveEvent(c.Request.Context(), code)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, RemoveEventResponse{Code: code, TicketsRemoved: n})
	}
}

// @Summary  Issue ticket (idempotent)
// @Param    code  path  int  true  "Event code"
// @Param    req   body  IssueTicketRequest true "payload"
// @Header   201 {string} Idempotency-Key "echo"
// @Success  201 {object} IssueTicketResponse
// @Failure  400 {object} ErrorResponse
// @Failure  404 {object} ErrorResponse
// @Failure  409 {object} ErrorResponse "seat taken / idem in progress"
// @Failure  429 {object} ErrorResponse "rate limited"
// @Router   /admin/events/{code}/tickets [post]
func handleIssueTicket(svcs *service.Services, idem IdempotencyStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		code, ok := parseCodeParam(c)
		if !ok {
			return
		}
		var req IssueTicketRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		ctx := c.Request.Context()
		idemKey := strings.TrimSpace(c.GetHeader("Idempotency-Key"))
		var idemStorageKey string
		if idem != nil && idemKey != "" {
			idemStorageKey = redisrepo.KeyIdemTicket(code, idemKey)

			if replayIdempotent(c, idem, idemStorageKey, idemKey) {
				return
			}

			locked, err := idem.AcquireLock(ctx, idemStorageKey, 60*time.Second)
			if err != nil {
				respondErr(c, err)
				return
			}
			if !locked {
				if replayIdempotent(c, idem, idemStorageKey, idemKey) {
					return
				}
				c.Header("Retry-After", "1")
				c.JSON(http.StatusConflict, ErrorResponse{Error: "idempotency key in progress"})
				return
			}
		}

		t := req.toDomain(code)
		if err := svcs.Admin.AddTicket(ctx, t); err != nil {
			if idemStorageKey != "" {
				_ = idem.Release(ctx, idemStorageKey)
			}
			respondErr(c, err)
			return
		}

		resp := IssueTicketResponse{EventCode: t.EventCode, Seat: t.Seat, Key: t.Key()}

		if idemStorageKey != "" {
			b, _ := json.Marshal(resp)
			_ = idem.SaveResult(ctx, idemStorageKey, string(b))
			c.Header("Idempotency-Key", idemKey)
		}

		c.JSON(http.StatusCreated, resp)
	}
}

func replayIdempotent(c *gin.Context, idem IdempotencyStore, storageKey, idemKey string) bool {
	payload, ok, _ := idem.GetResult(c.Request.Context(), storageKey)
	if !ok {
		return false
	}
	c.Header("Idempotency-Key", idemKey)
	c.Data(http.StatusCreated, "application/json; charset=utf-8", []byte(payload))
	return true
}

// @Summary  Cancel ticket
// @Param    code  path  int     true  "Event code"
// @Param    seat  path  string  true  "Seat"
// @Success  204
// @Failure  404 {object} ErrorResponse
// @Router   /admin/events/{code}/tickets/{seat} [delete]
func handleCancelTicket(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		code, ok := parseCodeParam(c)
		if !ok {
			return
		}
		if err := svcs.Admin.RemoveTicket(c.Request.Context(), code, c.Param("seat")); err != nil {
			respondErr(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// @Summary  Delete all events and tickets
// @Success  200 {object} ResetResponse
// @Router   /admin/store [delete]
func handleReset(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		n, err := svcs.Admin.Reset(c.Request.Context())
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, ResetResponse{Released: n})
	}
}

// --- Helpers ---

func parseCodeParam(c *gin.Context) (int64, bool) {
	v, err := strconv.ParseInt(c.Param("code"), 10, 64)
	if err != nil || v < 0 {
		badRequest(c, "invalid code")
		return 0, false
	}
	return v, true
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

func respondErr(c *gin.Context, err error) {
	if err == nil {
		c.Status(http.StatusNoContent)
		return
	}

	var fe *domain.FieldError
	switch {
	// validation
	case errors.As(err, &fe):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: fe.Error()})
	case errors.Is(err, domain.ErrInvalidSeat):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: domain.ErrInvalidSeat.Error()})
	case errors.Is(err, domain.ErrInvalidCode):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid code"})
	// admin service
	case errors.Is(err, admin.ErrEventConflict):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "event already exists"})
	case errors.Is(err, admin.ErrSeatTaken):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "seat already booked"})
	case errors.Is(err, admin.ErrEventNotFound), errors.Is(err, query.ErrEventNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "event not found"})
	case errors.Is(err, admin.ErrTicketNotFound), errors.Is(err, query.ErrTicketNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "ticket not found"})
	case errors.Is(err, context.Canceled):
		c.Status(499)
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}

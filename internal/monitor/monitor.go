// FILE: internal/monitor/monitor.go
package monitor

import (
	"context"
	"errors"
	"net"
	"strconv"
	"time"

	"gambit/internal/core"
	"gambit/internal/processor"
	"gambit/internal/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"
)

const (
	rateLimitRate = 20 // req/sec
	defaultLimit  = 20
	maxLimit      = 500
)

// Source is the session being observed
type Source interface {
	Status() processor.Status
	Declarations() []core.EngineOption
}

// Journal is the optional search history
type Journal interface {
	IsHealthy() bool
	QuerySearches(bestMove string, limit int) ([]storage.SearchRecord, error)
	Transcript(searchID string) ([]string, error)
}

// ErrorResponse is the body of every non-2xx reply
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type OptionView struct {
	Name    string   `json:"name"`
	Type    string   `json:"type"`
	Default string   `json:"default"`
	Min     *int     `json:"min,omitempty"`
	Max     *int     `json:"max,omitempty"`
	Vars    []string `json:"vars,omitempty"`
	Value   string   `json:"value"`
}

// Server exposes a read-only HTTP view of one engine session.
// Nothing it serves can change engine state.
type Server struct {
	app     *fiber.App
	source  Source
	journal Journal
	log     zerolog.Logger
	started time.Time
}

// New builds the app. journal may be nil.
func New(source Source, journal Journal, log zerolog.Logger) *Server {
	s := &Server{
		source:  source,
		journal: journal,
		log:     log.With().Str("component", "monitor").Logger(),
		started: time.Now(),
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          s.errorHandler,
		ReadTimeout:           5 * time.Second,
		WriteTimeout:          5 * time.Second,
		IdleTimeout:           30 * time.Second,
	})

	app.Use(recover.New())
	app.Use(s.requestLogger)
	app.Use(limiter.New(limiter.Config{
		Max:        rateLimitRate,
		Expiration: 1 * time.Second,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(ErrorResponse{
				Error:   "rate limit exceeded",
				Details: strconv.Itoa(rateLimitRate) + " requests per second allowed",
			})
		},
	}))

	app.Get("/health", s.health)
	app.Get("/status", s.status)
	app.Get("/options", s.options)
	app.Get("/searches", s.searches)
	app.Get("/searches/:id/transcript", s.transcript)

	s.app = app
	return s
}

// App exposes the fiber app for in-process requests
func (s *Server) App() *fiber.App {
	return s.app
}

// Serve blocks until the listener is closed by Shutdown
func (s *Server) Serve(ln net.Listener) error {
	s.log.Info().Str("addr", ln.Addr().String()).Msg("monitor listening")
	return s.app.Listener(ln)
}

// Start listens on addr in the background
func (s *Server) Start(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	go func() {
		if err := s.Serve(ln); err != nil && !errors.Is(err, net.ErrClosed) {
			s.log.Error().Err(err).Msg("monitor stopped")
		}
	}()
	return nil
}

// Shutdown stops the listener and waits for in-flight requests
func (s *Server) Shutdown(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.app.ShutdownWithContext(ctx)
}

// requestLogger keeps access logs off stdout, which belongs to the protocol
func (s *Server) requestLogger(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	s.log.Debug().
		Str("method", c.Method()).
		Str("path", c.Path()).
		Int("status", c.Response().StatusCode()).
		Dur("latency", time.Since(start)).
		Msg("request")
	return err
}

func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	resp := ErrorResponse{Error: "internal server error"}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		resp.Error = fe.Message
	} else {
		s.log.Error().Err(err).Str("path", c.Path()).Msg("handler failed")
	}
	return c.Status(code).JSON(resp)
}

func (s *Server) health(c *fiber.Ctx) error {
	journal := "disabled"
	if s.journal != nil {
		journal = "ok"
		if !s.journal.IsHealthy() {
			journal = "degraded"
		}
	}
	return c.JSON(fiber.Map{
		"status":  "healthy",
		"time":    time.Now().Unix(),
		"uptime":  int64(time.Since(s.started).Seconds()),
		"journal": journal,
	})
}

func (s *Server) status(c *fiber.Ctx) error {
	return c.JSON(s.source.Status())
}

func (s *Server) options(c *fiber.Ctx) error {
	values := s.source.Status().Options
	decls := s.source.Declarations()

	views := make([]OptionView, 0, len(decls))
	for _, d := range decls {
		v := OptionView{
			Name:    d.Name,
			Type:    d.Type.String(),
			Default: d.Default,
			Vars:    d.Vars,
			Value:   values[d.Name],
		}
		if d.Type == core.OptionSpin {
			lo, hi := d.Min, d.Max
			v.Min, v.Max = &lo, &hi
		}
		views = append(views, v)
	}
	return c.JSON(views)
}

func (s *Server) searches(c *fiber.Ctx) error {
	if s.journal == nil {
		return fiber.NewError(fiber.StatusNotFound, "journal disabled")
	}

	limit := defaultLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxLimit {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
				Error:   "invalid limit",
				Details: "limit must be between 1 and " + strconv.Itoa(maxLimit),
			})
		}
		limit = n
	}

	records, err := s.journal.QuerySearches(c.Query("bestmove"), limit)
	if err != nil {
		return err
	}
	if records == nil {
		records = []storage.SearchRecord{}
	}
	return c.JSON(records)
}

func (s *Server) transcript(c *fiber.Ctx) error {
	if s.journal == nil {
		return fiber.NewError(fiber.StatusNotFound, "journal disabled")
	}

	lines, err := s.journal.Transcript(c.Params("id"))
	if errors.Is(err, storage.ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "search not found")
	}
	if err != nil {
		return err
	}
	if lines == nil {
		lines = []string{}
	}
	return c.JSON(fiber.Map{"id": c.Params("id"), "info": lines})
}

// Package server exposes the bot's HTTP surface: the Telegram webhook
// endpoint, a small lookup API, health and Prometheus metrics.
package server

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"consultabot/internal/health"
	"consultabot/internal/lookup"
)

type Server struct {
	Svc    *lookup.Service
	Prober *health.Prober
	// Updates receives webhook updates for the bot loop; nil when the
	// bot runs in polling mode.
	Updates chan<- tgbotapi.Update
	// WebhookToken is the Telegram bot token; Telegram calls
	// POST /webhook/<token>, which doubles as authentication.
	WebhookToken string
	// APIToken guards /api when set.
	APIToken string

	logger *log.Logger
}

func New(svc *lookup.Service, prober *health.Prober) *Server {
	return &Server{
		Svc:    svc,
		Prober: prober,
		logger: log.New(log.Writer(), "[HTTP] ", log.LstdFlags),
	}
}

// Echo builds the configured echo instance without starting it.
func (s *Server) Echo() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		s.logger.Printf("%d %s %s from %s: %v", code, req.Method, req.URL.Path, c.RealIP(), err)
		if !c.Response().Committed {
			_ = c.JSON(code, map[string]any{"error": msg})
		}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Content-Type", "Authorization"},
	}))

	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	if s.Updates != nil && s.WebhookToken != "" {
		e.POST("/webhook/:token", s.webhook)
	}

	api := e.Group("/api")
	if s.APIToken != "" {
		api.Use(s.bearerAuth)
	}
	api.GET("/sources", s.listSources)
	api.GET("/lookup/:source", s.lookupOne)
	api.GET("/consolidated/:kind", s.lookupAll)

	return e
}

func (s *Server) bearerAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if c.Request().Header.Get("Authorization") != "Bearer "+s.APIToken {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or missing token")
		}
		return next(c)
	}
}

// webhook decodes a Telegram update and hands it to the bot loop.
// Telegram retries on non-2xx, so a full channel drops the update
// rather than blocking the request.
func (s *Server) webhook(c echo.Context) error {
	if c.Param("token") != s.WebhookToken {
		return echo.NewHTTPError(http.StatusNotFound, "not found")
	}
	var update tgbotapi.Update
	if err := c.Bind(&update); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed update")
	}
	select {
	case s.Updates <- update:
	default:
		s.logger.Printf("update queue full, dropping update %d", update.UpdateID)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

type sourceInfo struct {
	Key       string  `json:"key"`
	Label     string  `json:"label"`
	Kind      string  `json:"kind"`
	Health    string  `json:"health,omitempty"`
	LatencyMS int64   `json:"latency_ms,omitempty"`
	CheckedAt *string `json:"checked_at,omitempty"`
}

func (s *Server) listSources(c echo.Context) error {
	snapshot := map[string]health.Status{}
	if s.Prober != nil {
		snapshot = s.Prober.Snapshot()
	}
	out := make([]sourceInfo, 0, len(s.Svc.Registry.All()))
	for _, src := range s.Svc.Registry.All() {
		info := sourceInfo{Key: src.Key, Label: src.Label, Kind: string(src.Kind)}
		if st, ok := snapshot[src.Key]; ok {
			info.Health = string(st.Level)
			info.LatencyMS = st.Latency.Milliseconds()
			ts := st.CheckedAt.Format(time.RFC3339)
			info.CheckedAt = &ts
		}
		out = append(out, info)
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) lookupOne(c echo.Context) error {
	query := c.QueryParam("q")
	if query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "q parameter required")
	}
	tree, err := s.Svc.Lookup(c.Request().Context(), c.Param("source"), query)
	if err != nil {
		return lookupHTTPError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{"data": tree})
}

func (s *Server) lookupAll(c echo.Context) error {
	query := c.QueryParam("q")
	if query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "q parameter required")
	}
	tree, err := s.Svc.LookupAll(c.Request().Context(), lookup.Kind(c.Param("kind")), query)
	if err != nil {
		return lookupHTTPError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{"data": tree})
}

func lookupHTTPError(err error) error {
	var te *lookup.TransportError
	var ue *lookup.UpstreamError
	if errors.As(err, &te) || errors.As(err, &ue) {
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	return echo.NewHTTPError(http.StatusBadRequest, err.Error())
}

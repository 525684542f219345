package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/Wyydra/tourcast/internal/core/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

const statsTimeout = 2 * time.Second

type Options struct {
	AllowedOrigins  []string
	MaxMessageBytes int64
	SendQueueSize   int
	WriteWait       time.Duration
}

type Handler struct {
	Hub      *service.Hub
	opts     Options
	upgrader websocket.Upgrader
}

func NewHandler(hub *service.Hub, opts Options) *Handler {
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	h := &Handler{
		Hub:  hub,
		opts: opts,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

func (h *Handler) NewRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: h.opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", h.Health)
	r.Get("/ws", h.ServeWS)
	r.Get("/", h.Index)

	return r
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	return lo.Contains(h.opts.AllowedOrigins, "*") || lo.Contains(h.opts.AllowedOrigins, origin)
}

type healthDTO struct {
	Status      string `json:"status"`
	Connections int    `json:"connections"`
	Bound       int    `json:"bound"`
	Tours       int    `json:"tours"`
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), statsTimeout)
	defer cancel()

	stats, err := h.Hub.Stats(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Health check could not reach hub")
		writeJSON(w, http.StatusServiceUnavailable, healthDTO{Status: "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, healthDTO{
		Status:      "ok",
		Connections: stats.Connections,
		Bound:       stats.Bound,
		Tours:       stats.Tours,
	})
}

func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("tourcast signaling relay\n"))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Error writing response")
	}
}

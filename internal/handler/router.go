/*
Package handler provides the HTTP handlers and routing setup for the relay server.

This file defines the main Router, applying necessary middleware like logging, CORS,
and IP-based rate limiting before delegating requests to specific handlers (API and WebSocket).
*/
package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"relaychat/internal/pkg/limiter"
	"relaychat/internal/pkg/logx"
	"relaychat/internal/pkg/resp"
)

const (
	InviteRate  = 0.2
	InviteBurst = 5
)

// Router sets up the main HTTP routing table (chi.Router) for the application.
// The per-IP limiters' sweepers run until ctx is done.
func Router(ctx context.Context, deps *AppDeps) http.Handler {
	connectLimiter := limiter.NewIPRateLimiter(rate.Limit(deps.Config.ConnectRate), deps.Config.ConnectBurst)
	inviteLimiter := limiter.NewIPRateLimiter(rate.Limit(InviteRate), InviteBurst)
	go connectLimiter.Run(ctx, limiter.DefaultSweepInterval)
	go inviteLimiter.Run(ctx, limiter.DefaultSweepInterval)

	r := chi.NewRouter()

	allowedOrigins := make(map[string]struct{})
	for _, origin := range deps.Config.AllowedOrigins {
		allowedOrigins[origin] = struct{}{}
	}

	var wsUpgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if deps.Config.IsDevelopment() {
				return true
			}

			origin := r.Header.Get("Origin")
			if _, ok := allowedOrigins[origin]; ok {
				return true
			}

			logx.Warn("WebSocket connection rejected: Origin not allowed.", "origin", origin)
			return false
		},
	}

	corsAllowedOrigins := []string{}
	if deps.Config.IsDevelopment() {
		corsAllowedOrigins = []string{"*"}
	} else if len(deps.Config.AllowedOrigins) > 0 {
		corsAllowedOrigins = deps.Config.AllowedOrigins
	}

	c := cors.New(cors.Options{
		AllowedOrigins: corsAllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	})
	r.Use(c.Handler)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logx.RequestLogger())
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		resp.RespondSuccess(w, r, map[string]any{
			"status":      "ok",
			"service":     "relaychat",
			"rooms":       deps.Hub.ActiveRooms(),
			"connections": deps.Hub.OpenConnections(),
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		resp.RespondText(w, http.StatusOK, "ok")
	})

	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}

	r.Route("/api", func(api chi.Router) {
		api.Route("/invite", func(invite chi.Router) {
			invite.With(inviteLimiter.Middleware).Post("/", HandleCreateInvite(deps))
			invite.Get("/{token}", HandleResolveInvite(deps))
		})
	})

	r.Get("/ws", HandleWebSocket(wsUpgrader, connectLimiter, deps))

	return r
}

/*
Package handler provides the HTTP handler function for WebSocket connection upgrading and initialization.

This file contains HandleWebSocket, which throttles new connections per IP,
upgrades the request, registers the client with the hub and runs its pumps.
Room admission happens afterwards, over the socket, with a join frame.
*/
package handler

import (
	"net/http"

	"github.com/gorilla/websocket"

	"relaychat/internal/app/chat"
	"relaychat/internal/app/relay"
	"relaychat/internal/pkg/errs"
	"relaychat/internal/pkg/limiter"
	"relaychat/internal/pkg/logx"
	"relaychat/internal/pkg/randx"
	"relaychat/internal/pkg/resp"
)

// HandleWebSocket creates an HTTP HandlerFunc to process WebSocket connection requests.
func HandleWebSocket(upgrader websocket.Upgrader, rateLimiter *limiter.IPRateLimiter, deps *AppDeps) http.HandlerFunc {
	opts := chat.ClientOptions{MaxFrameBytes: deps.Config.MaxFrameBytes}

	return func(w http.ResponseWriter, r *http.Request) {
		ip := limiter.ClientIP(r)

		if !rateLimiter.Allow(ip) {
			logx.Warn("WebSocket connection rejected: Rate limit exceeded.", "ip", logx.AnonymizeIP(ip))
			deps.Metrics.Rejected(errs.ErrRateLimitExceeded)
			resp.RespondError(w, r, errs.NewError(errs.ErrRateLimitExceeded))
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket")
			return
		}

		client := chat.NewClient(deps.Hub, conn, relay.ConnID(randx.ConnectionID()), opts)

		if !deps.Hub.Register(client) {
			logx.Warn("WebSocket connection refused: server is shutting down.")
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
			_ = conn.Close()
			return
		}

		logx.Debug("WebSocket connection established and client registered", "conn_id", string(client.ID))

		go client.WritePump()

		client.ReadPump()
	}
}

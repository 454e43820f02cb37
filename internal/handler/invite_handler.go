/*
Package handler provides HTTP handler functions for invite links.

An invite is a signed token naming a room. Creating one does not create the
room, and resolving one admits nobody: the holder still joins over the
websocket and passes the usual key and capacity checks.
*/
package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"relaychat/internal/app/relay"
	"relaychat/internal/pkg/auth/jwt"
	"relaychat/internal/pkg/errs"
	"relaychat/internal/pkg/logx"
	"relaychat/internal/pkg/randx"
	"relaychat/internal/pkg/req"
	"relaychat/internal/pkg/resp"
)

type CreateInviteInput struct {
	// Room is the room to invite into. Empty picks a fresh random room code.
	Room string `json:"room,omitempty"`
	// From is the inviter's display name, shown to the invitee.
	From string `json:"from,omitempty"`
}

type InviteOutput struct {
	Token     string `json:"token"`
	Room      string `json:"room"`
	From      string `json:"from,omitempty"`
	ExpiresAt int64  `json:"expiresAt"`
}

type ResolveInviteOutput struct {
	Room    string `json:"room"`
	From    string `json:"from,omitempty"`
	Keyed   bool   `json:"keyed"`
	Members int    `json:"members"`
	Full    bool   `json:"full"`
}

// HandleCreateInvite creates an HTTP HandlerFunc that issues invite tokens.
func HandleCreateInvite(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input CreateInviteInput

		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		room := relay.SanitizeLine(input.Room, relay.MaxRoomIDLength)
		if room == "" {
			if input.Room != "" {
				resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
				return
			}

			code, err := randx.RoomCode()
			if err != nil {
				logx.Error(err, "Failed to generate room code for invite")
				resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
				return
			}
			room = code
		}

		invite := &jwt.Invite{
			Room: room,
			From: relay.SanitizeLine(input.From, relay.MaxDisplayNameLength),
		}

		now := deps.now()
		token, err := jwt.GenerateInvite(invite, deps.Config.JWTSecret, deps.Config.InviteTTL, now)
		if err != nil {
			logx.Error(err, "Failed to sign invite token", "room_id", room)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		logx.Info("Invite issued.", "room_id", room)

		resp.RespondStatus(w, r, http.StatusCreated, InviteOutput{
			Token:     token,
			Room:      room,
			From:      invite.From,
			ExpiresAt: time.Unix(invite.ExpiresAt, 0).UnixMilli(),
		})
	}
}

// HandleResolveInvite creates an HTTP HandlerFunc that validates an invite
// token and describes the room it points at.
func HandleResolveInvite(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := chi.URLParam(r, "token")

		invite, err := jwt.ParseInvite(token, deps.Config.JWTSecret)
		if err != nil {
			logx.Debug("Invite rejected.", "error", err.Error())
			resp.RespondError(w, r, errs.NewError(errs.ErrInviteInvalid))
			return
		}

		out := ResolveInviteOutput{Room: invite.Room, From: invite.From}

		engine := deps.Hub.Engine()
		if room, ok := engine.Rooms().Lookup(invite.Room); ok {
			stats := room.Stats()
			capacity := engine.Rooms().Config().Capacity

			out.Keyed = stats.Keyed
			out.Members = stats.Members
			out.Full = capacity > 0 && stats.Members >= capacity
		}

		resp.RespondSuccess(w, r, out)
	}
}

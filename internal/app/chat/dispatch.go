package chat

import (
	"encoding/json"
	"errors"

	"relaychat/internal/app/relay"
	"relaychat/internal/pkg/errs"
)

// Handle applies one inbound frame from c. Frames from a single client are
// handled in order by its read pump.
func (h *Hub) Handle(c *Client, raw []byte) {
	var frame InboundFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		c.logger.Warn().Err(err).Int("frame_bytes", len(raw)).Msg("Client sent invalid JSON")
		h.reject(c, TypeInfo, errs.ErrInvalidJSONFormat)
		return
	}

	switch frame.Type {
	case TypeJoin:
		var p JoinPayload
		if !h.decode(c, frame, &p) {
			return
		}
		h.handleJoin(c, p)

	case TypeText:
		var p TextPayload
		if !h.decode(c, frame, &p) {
			return
		}
		h.handleSend(c, relay.Draft{ID: p.ID, Text: p.Text})

	case TypeFile:
		var p FilePayload
		if !h.decode(c, frame, &p) {
			return
		}
		h.handleSend(c, p.draft())

	case TypeRead:
		var p ReadPayload
		if !h.decode(c, frame, &p) {
			return
		}
		h.Deliver(h.engine.Acknowledge(c.ID, p.ID))

	case TypeTyping:
		var p TypingPayload
		if !h.decode(c, frame, &p) {
			return
		}
		h.Deliver(h.engine.SetTyping(c.ID, bool(p.State)))

	default:
		c.logger.Warn().Str("frame_type", string(frame.Type)).Msg("Client sent unsupported frame type")
		h.reject(c, TypeInfo, errs.ErrUnknownEventType, frame.Type)
	}
}

func (h *Hub) decode(c *Client, frame InboundFrame, dst any) bool {
	if len(frame.Payload) == 0 {
		frame.Payload = json.RawMessage("{}")
	}

	if err := json.Unmarshal(frame.Payload, dst); err != nil {
		c.logger.Warn().Err(err).Str("frame_type", string(frame.Type)).Msg("Client sent invalid payload")

		typ := TypeInfo
		if frame.Type == TypeJoin {
			typ = TypeJoinError
		}
		h.reject(c, typ, errs.ErrInvalidJSONFormat)
		return false
	}

	return true
}

func (h *Hub) handleJoin(c *Client, p JoinPayload) {
	envs, err := h.engine.Join(c.ID, p.Room, p.Nick, p.Key)
	if err != nil {
		h.rejectErr(c, TypeJoinError, err)
		return
	}

	if sess, ok := h.engine.Session(c.ID); ok {
		c.bind(sess.RoomID)
	}
	h.Deliver(envs)
}

func (h *Hub) handleSend(c *Client, draft relay.Draft) {
	kind := relay.KindText
	if draft.File != nil {
		kind = relay.KindFile
	}

	envs, err := h.engine.Send(c.ID, draft)
	if err != nil {
		if errors.Is(err, relay.ErrRateLimited) {
			h.metrics.Throttled(string(kind))
		}
		h.rejectErr(c, TypeInfo, err)
		return
	}

	h.metrics.Relayed(string(kind))
	h.Deliver(envs)
}

// rejectErr reports an engine refusal to c only.
func (h *Hub) rejectErr(c *Client, typ FrameType, err error) {
	var rejection *relay.Rejection
	if !errors.As(err, &rejection) {
		c.logger.Error().Err(err).Msg("Unexpected engine error")
		h.reject(c, typ, errs.ErrUnknown)
		return
	}

	c.logger.Debug().Int("code", rejection.Code).Str("reason", rejection.Kind).Msg("Request rejected")
	h.reject(c, typ, rejection.Code)
}

func (h *Hub) reject(c *Client, typ FrameType, code int, details ...any) {
	h.metrics.Rejected(code)
	h.sendFrame(c, errorFrame(typ, code, details...))
}

/*
Package chat is the websocket transport of the relay.

This file defines the wire protocol: every frame in either direction is a JSON
object {"type": ..., "payload": ...}. Inbound frames are decoded into relay
engine calls; engine events are encoded back into outbound frames.
*/
package chat

import (
	"bytes"
	"encoding/json"
	"fmt"

	"relaychat/internal/app/relay"
	"relaychat/internal/pkg/errs"
)

// FrameType names a frame on the wire.
type FrameType string

// Inbound frame types.
const (
	TypeJoin   FrameType = "join"
	TypeText   FrameType = "msg"
	TypeFile   FrameType = "file"
	TypeRead   FrameType = "read"
	TypeTyping FrameType = "typing"
)

// Outbound frame types. TypeText, TypeFile and TypeTyping are also sent.
const (
	TypeJoined           FrameType = "joined"
	TypeJoinError        FrameType = "join_error"
	TypePeerJoined       FrameType = "peer_joined"
	TypePeerLeft         FrameType = "peer_left"
	TypeDeliveryProgress FrameType = "delivery_progress"
	TypeInfo             FrameType = "info"
)

// InboundFrame is a frame received from a client. Payload is decoded once the
// type is known.
type InboundFrame struct {
	Type    FrameType       `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// OutboundFrame is a frame sent to a client.
type OutboundFrame struct {
	Type    FrameType `json:"type"`
	Payload any       `json:"payload,omitempty"`
}

// JoinPayload asks to enter a room.
type JoinPayload struct {
	Room string `json:"room"`
	Nick string `json:"nick"`
	Key  string `json:"key,omitempty"`
}

// TextPayload carries a text message.
type TextPayload struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// FilePayload carries a file message with its data URI.
type FilePayload struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
	Size int64  `json:"size"`
	Data string `json:"data"`
}

// ReadPayload acknowledges a received message.
type ReadPayload struct {
	ID string `json:"id"`
}

// TypingPayload reports the sender's composing state.
type TypingPayload struct {
	State Flag `json:"state"`
}

// Flag is a boolean that also accepts 0 and 1 on the wire.
type Flag bool

// UnmarshalJSON accepts true, false, 0, 1 and null.
func (f *Flag) UnmarshalJSON(data []byte) error {
	switch string(bytes.TrimSpace(data)) {
	case "true", "1":
		*f = true
	case "false", "0", "null":
		*f = false
	default:
		return fmt.Errorf("invalid flag value %s", data)
	}
	return nil
}

// JoinedPayload confirms admission.
type JoinedPayload struct {
	relay.Admitted

	// Message is a human-readable welcome line.
	Message string `json:"message"`
}

// ErrorPayload is the body of join_error and info frames.
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (d FilePayload) draft() relay.Draft {
	return relay.Draft{ID: d.ID, File: &relay.File{
		Name:     d.Name,
		MIMEType: d.Type,
		Size:     d.Size,
		Data:     d.Data,
	}}
}

// welcomeText is the line shown to a member right after joining.
func welcomeText(a relay.Admitted) string {
	msg := fmt.Sprintf("%s joined room %s", a.DisplayName, a.RoomID)
	if a.Keyed {
		msg += " (key applied)"
	}
	return msg
}

// encodeEvent maps an engine event onto its wire frame.
func encodeEvent(ev relay.Event) (OutboundFrame, error) {
	switch payload := ev.Payload.(type) {
	case relay.Admitted:
		return OutboundFrame{Type: TypeJoined, Payload: JoinedPayload{
			Admitted: payload,
			Message:  welcomeText(payload),
		}}, nil

	case relay.Message:
		typ := TypeText
		if payload.Kind == relay.KindFile {
			typ = TypeFile
		}
		return OutboundFrame{Type: typ, Payload: payload}, nil

	case relay.Peer:
		switch ev.Type {
		case relay.EventPeerJoined:
			return OutboundFrame{Type: TypePeerJoined, Payload: payload}, nil
		case relay.EventPeerLeft:
			return OutboundFrame{Type: TypePeerLeft, Payload: payload}, nil
		}

	case relay.DeliveryProgress:
		return OutboundFrame{Type: TypeDeliveryProgress, Payload: payload}, nil

	case relay.TypingState:
		return OutboundFrame{Type: TypeTyping, Payload: payload}, nil
	}

	return OutboundFrame{}, fmt.Errorf("no wire encoding for event %q (%T)", ev.Type, ev.Payload)
}

// errorFrame builds a join_error or info frame for code.
func errorFrame(typ FrameType, code int, details ...any) OutboundFrame {
	customErr := errs.NewError(code, details...)
	return OutboundFrame{Type: typ, Payload: ErrorPayload{
		Code:    customErr.Code,
		Message: customErr.Message,
	}}
}

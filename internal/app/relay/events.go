package relay

// ConnID identifies one transport session.
type ConnID string

// EventType names an outbound event.
type EventType string

const (
	EventAdmitted         EventType = "admitted"
	EventPeerJoined       EventType = "peer_joined"
	EventPeerLeft         EventType = "peer_left"
	EventMessage          EventType = "message"
	EventDeliveryProgress EventType = "delivery_progress"
	EventTyping           EventType = "typing"
)

// Event is one outbound notification. Payload is one of the payload structs
// below, or a Message for EventMessage.
type Event struct {
	Type    EventType
	Payload any
}

// Envelope addresses an event to a single connection. Engine operations
// return the envelopes to deliver instead of writing to connections
// themselves.
type Envelope struct {
	To    ConnID
	Event Event
}

// Admitted is sent to a connection whose join succeeded.
type Admitted struct {
	RoomID      string   `json:"roomId"`
	DisplayName string   `json:"displayName"`
	Keyed       bool     `json:"keyed"`
	Members     []string `json:"members"`
	Capacity    int      `json:"capacity"`
}

// Peer announces a member arriving or leaving.
type Peer struct {
	DisplayName string `json:"displayName"`
}

// DeliveryProgress reports how many recipients have yet to acknowledge a message.
type DeliveryProgress struct {
	ID        string `json:"id"`
	Remaining int    `json:"remaining"`
}

// TypingState relays a member's composing state.
type TypingState struct {
	DisplayName string `json:"displayName"`
	State       bool   `json:"state"`
}

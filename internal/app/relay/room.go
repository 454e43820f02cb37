/*
Package relay is the room/session engine of the chat relay.

It owns room membership, admission keys, per-kind send throttling, message
fan-out with per-message delivery tracking, typing propagation and teardown on
disconnect. Every operation runs synchronously under the lock of the room it
touches and returns the (recipient, event) envelopes the transport must deliver.

This file defines the Room struct and the helpers that operate on it with its
lock held.
*/
package relay

import (
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"relaychat/internal/pkg/logx"
)

// Room is the state of one named conversation. All fields are guarded by mu.
type Room struct {
	// ID is the sanitized room identifier supplied by the first joiner.
	ID string

	mu sync.Mutex

	// key is the admission key fixed by the founding member, empty if none.
	key string

	// members maps connection ids to display names.
	members map[ConnID]string

	textSends *SlidingWindow
	fileSends *SlidingWindow

	// pending maps message ids to the recipients that have not acknowledged them.
	pending map[string]map[ConnID]struct{}

	// closed is set once the room has been removed from the registry. A
	// closed room never admits anyone again.
	closed bool

	logger zerolog.Logger
}

func newRoom(id string, cfg Config) *Room {
	return &Room{
		ID:        id,
		members:   make(map[ConnID]string),
		textSends: NewSlidingWindow(cfg.TextLimit),
		fileSends: NewSlidingWindow(cfg.FileLimit),
		pending:   make(map[string]map[ConnID]struct{}),
		logger:    logx.Logger().With().Str("room_id", id).Logger(),
	}
}

// RoomStats is a point-in-time view of a room for metrics and diagnostics.
type RoomStats struct {
	ID      string
	Members int
	Keyed   bool
	Pending int
}

// Stats returns a snapshot of the room's counters.
func (r *Room) Stats() RoomStats {
	r.mu.Lock()
	defer r.mu.Unlock()

	return RoomStats{
		ID:      r.ID,
		Members: len(r.members),
		Keyed:   r.key != "",
		Pending: len(r.pending),
	}
}

func (r *Room) limiterFor(kind Kind) *SlidingWindow {
	if kind == KindFile {
		return r.fileSends
	}
	return r.textSends
}

func (r *Room) memberNames() []string {
	names := make([]string, 0, len(r.members))
	for _, name := range r.members {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// broadcast addresses ev to every member except skip (pass "" to include all).
func (r *Room) broadcast(ev Event, skip ConnID) []Envelope {
	out := make([]Envelope, 0, len(r.members))
	for id := range r.members {
		if id == skip {
			continue
		}
		out = append(out, Envelope{To: id, Event: ev})
	}
	return out
}

func (r *Room) progress(messageID string, remaining int) []Envelope {
	return r.broadcast(Event{
		Type:    EventDeliveryProgress,
		Payload: DeliveryProgress{ID: messageID, Remaining: remaining},
	}, "")
}

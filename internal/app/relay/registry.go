package relay

import (
	"sync"

	"github.com/rs/zerolog"

	"relaychat/internal/pkg/logx"
)

// Registry maps room ids to live rooms. Rooms are created on first join and
// removed the moment their last member leaves.
//
// Lock order: a room's lock may be held while taking the registry lock, never
// the other way round.
type Registry struct {
	cfg Config

	mu    sync.RWMutex
	rooms map[string]*Room

	logger zerolog.Logger
}

// NewRegistry returns an empty registry whose rooms follow cfg.
func NewRegistry(cfg Config) *Registry {
	return &Registry{
		cfg:    cfg.withDefaults(),
		rooms:  make(map[string]*Room),
		logger: logx.Component("Registry"),
	}
}

// Config returns the room configuration in effect.
func (r *Registry) Config() Config {
	return r.cfg
}

// getOrCreate returns the room for id, creating it if needed.
func (r *Registry) getOrCreate(id string) *Room {
	r.mu.RLock()
	room, ok := r.rooms[id]
	r.mu.RUnlock()
	if ok {
		return room
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if room, ok = r.rooms[id]; ok {
		return room
	}

	room = newRoom(id, r.cfg)
	r.rooms[id] = room
	r.logger.Debug().Str("room_id", id).Msg("Room created.")
	return room
}

// remove drops room from the registry and marks it closed. The caller holds
// room.mu and has verified the room is empty. A newer room registered under
// the same id is left alone.
func (r *Registry) remove(room *Room) {
	room.closed = true

	r.mu.Lock()
	defer r.mu.Unlock()

	if current, ok := r.rooms[room.ID]; ok && current == room {
		delete(r.rooms, room.ID)
		r.logger.Info().Str("room_id", room.ID).Msg("Room removed.")
	}
}

// Lookup returns the live room for id.
func (r *Registry) Lookup(id string) (*Room, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room, ok := r.rooms[id]
	return room, ok
}

// Len is the number of live rooms.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.rooms)
}

// Snapshot returns stats for every live room. Rooms are copied out of the map
// before their locks are taken.
func (r *Registry) Snapshot() []RoomStats {
	r.mu.RLock()
	rooms := make([]*Room, 0, len(r.rooms))
	for _, room := range r.rooms {
		rooms = append(rooms, room)
	}
	r.mu.RUnlock()

	out := make([]RoomStats, 0, len(rooms))
	for _, room := range rooms {
		out = append(out, room.Stats())
	}
	return out
}

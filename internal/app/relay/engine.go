package relay

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"relaychat/internal/pkg/logx"
)

const (
	// DefaultCapacity is the member limit of a 1:1 room.
	DefaultCapacity = 2
)

var (
	DefaultTextLimit = Limit{Max: 8, Window: 10 * time.Second}
	DefaultFileLimit = Limit{Max: 5, Window: 15 * time.Second}
)

// Config parameterizes rooms.
type Config struct {
	// Capacity is the maximum number of members per room. 0 means unbounded.
	Capacity int

	TextLimit Limit
	FileLimit Limit

	// Now is the clock. Nil means time.Now.
	Now func() time.Time
}

// DefaultConfig is a 1:1 room with the standard send budgets.
func DefaultConfig() Config {
	return Config{
		Capacity:  DefaultCapacity,
		TextLimit: DefaultTextLimit,
		FileLimit: DefaultFileLimit,
	}
}

func (c Config) withDefaults() Config {
	if c.Capacity < 0 {
		c.Capacity = 0
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}

// Connection is the engine's record of a transport session: which room it
// joined and under which name. Both are fixed at join.
type Connection struct {
	ID          ConnID
	RoomID      string
	DisplayName string
}

// Engine applies inbound events to room state. It is safe for concurrent use;
// operations on different rooms do not contend.
type Engine struct {
	rooms *Registry
	cfg   Config

	mu       sync.RWMutex
	sessions map[ConnID]*Connection

	logger zerolog.Logger
}

// NewEngine returns an engine over rooms.
func NewEngine(rooms *Registry) *Engine {
	return &Engine{
		rooms:    rooms,
		cfg:      rooms.Config(),
		sessions: make(map[ConnID]*Connection),
		logger:   logx.Component("Engine"),
	}
}

// Rooms returns the registry the engine operates on.
func (e *Engine) Rooms() *Registry {
	return e.rooms
}

// Connect records a new, unbound session. It is idempotent.
func (e *Engine) Connect(id ConnID) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.sessions[id]; !ok {
		e.sessions[id] = &Connection{ID: id}
	}
}

// Session returns a copy of the session record for id.
func (e *Engine) Session(id ConnID) (Connection, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	sess, ok := e.sessions[id]
	if !ok {
		return Connection{}, false
	}
	return *sess, true
}

// Sessions returns the number of known sessions and how many of them are
// bound to a room.
func (e *Engine) Sessions() (total, bound int) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	for _, sess := range e.sessions {
		if sess.RoomID != "" {
			bound++
		}
	}
	return len(e.sessions), bound
}

func (e *Engine) now() time.Time {
	return e.cfg.Now()
}

// bind attaches id to a room. Called with the room's lock held. It reports
// false when id has no session, either never connected or already gone.
func (e *Engine) bind(id ConnID, roomID, displayName string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	sess, ok := e.sessions[id]
	if !ok {
		return false
	}
	sess.RoomID = roomID
	sess.DisplayName = displayName
	return true
}

// forget removes the session record and returns what it held.
func (e *Engine) forget(id ConnID) (Connection, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	sess, ok := e.sessions[id]
	if !ok {
		return Connection{}, false
	}
	delete(e.sessions, id)
	return *sess, true
}

// memberRoom resolves the room id is bound to. The room is returned unlocked.
func (e *Engine) memberRoom(id ConnID) (*Room, Connection, bool) {
	sess, ok := e.Session(id)
	if !ok || sess.RoomID == "" {
		return nil, Connection{}, false
	}

	room, ok := e.rooms.Lookup(sess.RoomID)
	if !ok {
		return nil, Connection{}, false
	}
	return room, sess, true
}

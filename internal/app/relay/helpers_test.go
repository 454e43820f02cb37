package relay

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestEngine(t *testing.T, mutate ...func(*Config)) (*Engine, *fakeClock) {
	t.Helper()

	clock := &fakeClock{now: time.Date(2025, 9, 21, 12, 0, 0, 0, time.UTC)}

	cfg := DefaultConfig()
	cfg.Now = clock.Now
	for _, fn := range mutate {
		fn(&cfg)
	}

	engine := NewEngine(NewRegistry(cfg))
	return engine, clock
}

func unbounded(cfg *Config) { cfg.Capacity = 0 }

func mustJoin(t *testing.T, e *Engine, id ConnID, room, name, key string) []Envelope {
	t.Helper()

	e.Connect(id)
	envs, err := e.Join(id, room, name, key)
	require.NoError(t, err, "join %s as %s", room, name)
	return envs
}

func eventsTo(envs []Envelope, id ConnID) []Event {
	var out []Event
	for _, env := range envs {
		if env.To == id {
			out = append(out, env.Event)
		}
	}
	return out
}

func eventsOfType(envs []Envelope, id ConnID, typ EventType) []Event {
	var out []Event
	for _, ev := range eventsTo(envs, id) {
		if ev.Type == typ {
			out = append(out, ev)
		}
	}
	return out
}

func progressTo(t *testing.T, envs []Envelope, id ConnID) DeliveryProgress {
	t.Helper()

	evs := eventsOfType(envs, id, EventDeliveryProgress)
	require.Len(t, evs, 1, "progress events for %s", id)
	return evs[0].Payload.(DeliveryProgress)
}

func textDraft(id, body string) Draft {
	return Draft{ID: id, Text: body}
}

func fileDraft(id string) Draft {
	return Draft{ID: id, File: &File{
		Name:     "cat.png",
		MIMEType: "image/png",
		Size:     1024,
		Data:     "data:image/png;base64,iVBORw0KGgo=",
	}}
}

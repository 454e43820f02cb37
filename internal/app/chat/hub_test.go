package chat

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relaychat/internal/app/relay"
	"relaychat/internal/pkg/errs"
	"relaychat/internal/pkg/metrics"
)

type received struct {
	Type    FrameType       `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func newTestHub(t *testing.T) *Hub {
	t.Helper()

	hub := NewHub(relay.NewEngine(relay.NewRegistry(relay.DefaultConfig())))
	hub.SetMetrics(metrics.New(hub))
	return hub
}

func connect(t *testing.T, hub *Hub, id string) *Client {
	t.Helper()

	c := NewClient(hub, nil, relay.ConnID(id), ClientOptions{})
	require.True(t, hub.Register(c))
	return c
}

func send(t *testing.T, hub *Hub, c *Client, typ FrameType, payload any) {
	t.Helper()

	raw, err := json.Marshal(map[string]any{"type": typ, "payload": payload})
	require.NoError(t, err)
	hub.Handle(c, raw)
}

// drain returns every frame queued for c so far.
func drain(t *testing.T, c *Client) []received {
	t.Helper()

	var out []received
	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				return out
			}
			var f received
			require.NoError(t, json.Unmarshal(data, &f))
			out = append(out, f)
		default:
			return out
		}
	}
}

func only(t *testing.T, frames []received, typ FrameType) received {
	t.Helper()

	var match []received
	for _, f := range frames {
		if f.Type == typ {
			match = append(match, f)
		}
	}
	require.Len(t, match, 1, "frames of type %s in %v", typ, frames)
	return match[0]
}

func decodeInto[T any](t *testing.T, f received) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(f.Payload, &v))
	return v
}

func TestHub_JoinAndChat(t *testing.T) {
	hub := newTestHub(t)
	alice := connect(t, hub, "alice")
	bob := connect(t, hub, "bob")

	send(t, hub, alice, TypeJoin, JoinPayload{Room: "abc", Nick: "Alice", Key: "k1"})
	joined := decodeInto[JoinedPayload](t, only(t, drain(t, alice), TypeJoined))
	assert.Equal(t, "abc", joined.RoomID)
	assert.True(t, joined.Keyed)
	assert.Equal(t, "Alice joined room abc (key applied)", joined.Message)
	assert.Equal(t, []string{"Alice"}, joined.Members)
	assert.Equal(t, 2, joined.Capacity)

	send(t, hub, bob, TypeJoin, JoinPayload{Room: "abc", Nick: "Bob", Key: "k1"})
	joined = decodeInto[JoinedPayload](t, only(t, drain(t, bob), TypeJoined))
	assert.Equal(t, []string{"Alice", "Bob"}, joined.Members)
	peer := decodeInto[relay.Peer](t, only(t, drain(t, alice), TypePeerJoined))
	assert.Equal(t, "Bob", peer.DisplayName)

	send(t, hub, alice, TypeText, TextPayload{ID: "m1", Text: "hi <b>bob</b>"})

	bobFrames := drain(t, bob)
	msg := decodeInto[map[string]any](t, only(t, bobFrames, TypeText))
	assert.Equal(t, "m1", msg["id"])
	assert.Equal(t, "Alice", msg["nick"])
	assert.Equal(t, "hi bbob/b", msg["text"])
	assert.NotContains(t, msg, "data")
	progress := decodeInto[relay.DeliveryProgress](t, only(t, bobFrames, TypeDeliveryProgress))
	assert.Equal(t, relay.DeliveryProgress{ID: "m1", Remaining: 1}, progress)

	aliceFrames := drain(t, alice)
	require.Len(t, aliceFrames, 1)
	assert.Equal(t, TypeDeliveryProgress, aliceFrames[0].Type)

	send(t, hub, bob, TypeRead, ReadPayload{ID: "m1"})
	progress = decodeInto[relay.DeliveryProgress](t, only(t, drain(t, alice), TypeDeliveryProgress))
	assert.Equal(t, 0, progress.Remaining)
}

func TestHub_FileFrame(t *testing.T) {
	hub := newTestHub(t)
	alice := connect(t, hub, "alice")
	bob := connect(t, hub, "bob")
	send(t, hub, alice, TypeJoin, JoinPayload{Room: "abc", Nick: "Alice"})
	send(t, hub, bob, TypeJoin, JoinPayload{Room: "abc", Nick: "Bob"})
	drain(t, alice)
	drain(t, bob)

	send(t, hub, alice, TypeFile, FilePayload{
		ID: "f1", Name: "cat.png", Type: "image/png", Size: 4, Data: "data:image/png;base64,AAAA",
	})

	file := decodeInto[FilePayload](t, only(t, drain(t, bob), TypeFile))
	assert.Equal(t, FilePayload{ID: "f1", Name: "cat.png", Type: "image/png", Size: 4, Data: "data:image/png;base64,AAAA"}, file)
}

func TestHub_JoinErrors(t *testing.T) {
	hub := newTestHub(t)
	alice := connect(t, hub, "alice")
	bob := connect(t, hub, "bob")
	carol := connect(t, hub, "carol")

	send(t, hub, alice, TypeJoin, JoinPayload{Room: "abc", Nick: "Alice", Key: "k1"})

	send(t, hub, bob, TypeJoin, JoinPayload{Room: "abc", Nick: "Bob", Key: "nope"})
	jerr := decodeInto[ErrorPayload](t, only(t, drain(t, bob), TypeJoinError))
	assert.Equal(t, errs.ErrKeyMismatch, jerr.Code)
	assert.Equal(t, errs.NewError(errs.ErrKeyMismatch).Message, jerr.Message)

	send(t, hub, bob, TypeJoin, JoinPayload{Room: "", Nick: "Bob"})
	jerr = decodeInto[ErrorPayload](t, only(t, drain(t, bob), TypeJoinError))
	assert.Equal(t, errs.ErrInvalidParams, jerr.Code)

	send(t, hub, bob, TypeJoin, JoinPayload{Room: "abc", Nick: "Bob", Key: "k1"})
	only(t, drain(t, bob), TypeJoined)

	send(t, hub, carol, TypeJoin, JoinPayload{Room: "abc", Nick: "Carol", Key: "k1"})
	jerr = decodeInto[ErrorPayload](t, only(t, drain(t, carol), TypeJoinError))
	assert.Equal(t, errs.ErrRoomIsFull, jerr.Code)

	send(t, hub, bob, TypeJoin, JoinPayload{Room: "other", Nick: "Bob"})
	jerr = decodeInto[ErrorPayload](t, only(t, drain(t, bob), TypeJoinError))
	assert.Equal(t, errs.ErrAlreadyJoined, jerr.Code)

	hub.Handle(carol, []byte(`{"type":"join","payload":"abc"}`))
	jerr = decodeInto[ErrorPayload](t, only(t, drain(t, carol), TypeJoinError))
	assert.Equal(t, errs.ErrInvalidJSONFormat, jerr.Code)
}

func TestHub_Advisories(t *testing.T) {
	hub := newTestHub(t)
	alice := connect(t, hub, "alice")

	send(t, hub, alice, TypeText, TextPayload{ID: "m1", Text: "too early"})
	info := decodeInto[ErrorPayload](t, only(t, drain(t, alice), TypeInfo))
	assert.Equal(t, errs.ErrNotInRoom, info.Code)

	hub.Handle(alice, []byte(`not json`))
	info = decodeInto[ErrorPayload](t, only(t, drain(t, alice), TypeInfo))
	assert.Equal(t, errs.ErrInvalidJSONFormat, info.Code)

	send(t, hub, alice, "shout", map[string]string{})
	info = decodeInto[ErrorPayload](t, only(t, drain(t, alice), TypeInfo))
	assert.Equal(t, errs.ErrUnknownEventType, info.Code)
	assert.Equal(t, "Unsupported event type: shout.", info.Message)

	send(t, hub, alice, TypeJoin, JoinPayload{Room: "abc", Nick: "Alice"})
	drain(t, alice)

	send(t, hub, alice, TypeFile, FilePayload{ID: "f1", Name: "x.exe", Type: "application/x-msdownload", Size: 1, Data: "data:,A"})
	info = decodeInto[ErrorPayload](t, only(t, drain(t, alice), TypeInfo))
	assert.Equal(t, errs.ErrUnsupportedFileType, info.Code)

	send(t, hub, alice, TypeText, TextPayload{ID: "blank", Text: "   "})
	info = decodeInto[ErrorPayload](t, only(t, drain(t, alice), TypeInfo))
	assert.Equal(t, errs.ErrInvalidParams, info.Code)
	assert.Equal(t, "Some required fields are missing or invalid.", info.Message)

	for i := 0; i < 8; i++ {
		send(t, hub, alice, TypeText, TextPayload{ID: fmt.Sprintf("m%d", i), Text: "x"})
	}
	drain(t, alice)
	send(t, hub, alice, TypeText, TextPayload{ID: "m8", Text: "x"})
	info = decodeInto[ErrorPayload](t, only(t, drain(t, alice), TypeInfo))
	assert.Equal(t, errs.ErrRateLimitExceeded, info.Code)
}

func TestHub_TypingAcceptsNumericState(t *testing.T) {
	hub := newTestHub(t)
	alice := connect(t, hub, "alice")
	bob := connect(t, hub, "bob")
	send(t, hub, alice, TypeJoin, JoinPayload{Room: "abc", Nick: "Alice"})
	send(t, hub, bob, TypeJoin, JoinPayload{Room: "abc", Nick: "Bob"})
	drain(t, alice)
	drain(t, bob)

	hub.Handle(alice, []byte(`{"type":"typing","payload":{"state":1}}`))
	typing := decodeInto[relay.TypingState](t, only(t, drain(t, bob), TypeTyping))
	assert.Equal(t, relay.TypingState{DisplayName: "Alice", State: true}, typing)

	hub.Handle(alice, []byte(`{"type":"typing","payload":{"state":false}}`))
	typing = decodeInto[relay.TypingState](t, only(t, drain(t, bob), TypeTyping))
	assert.False(t, typing.State)

	assert.Empty(t, drain(t, alice))
}

func TestHub_UnregisterSettlesAndCleansUp(t *testing.T) {
	hub := newTestHub(t)
	alice := connect(t, hub, "alice")
	bob := connect(t, hub, "bob")
	send(t, hub, alice, TypeJoin, JoinPayload{Room: "abc", Nick: "Alice"})
	send(t, hub, bob, TypeJoin, JoinPayload{Room: "abc", Nick: "Bob"})
	send(t, hub, alice, TypeText, TextPayload{ID: "m2", Text: "hello?"})
	drain(t, alice)

	hub.Unregister(bob)
	hub.Unregister(bob)

	frames := drain(t, alice)
	progress := decodeInto[relay.DeliveryProgress](t, only(t, frames, TypeDeliveryProgress))
	assert.Equal(t, relay.DeliveryProgress{ID: "m2", Remaining: 0}, progress)
	left := decodeInto[relay.Peer](t, only(t, frames, TypePeerLeft))
	assert.Equal(t, "Bob", left.DisplayName)

	_, open := <-bob.send
	for open {
		_, open = <-bob.send
	}
	assert.Equal(t, 1, hub.OpenConnections())
	assert.Equal(t, 1, hub.ActiveRooms())

	hub.Unregister(alice)
	assert.Equal(t, 0, hub.ActiveRooms())
	assert.Equal(t, 0, hub.BoundMembers())
}

func TestHub_JoinFromUnregisteredClientIsIgnored(t *testing.T) {
	hub := newTestHub(t)
	alice := connect(t, hub, "alice")

	// A read pump may still be handling a frame when its client is torn down.
	hub.Unregister(alice)
	send(t, hub, alice, TypeJoin, JoinPayload{Room: "r", Nick: "Alice"})

	assert.Equal(t, 0, hub.ActiveRooms())
	assert.Equal(t, 0, hub.BoundMembers())

	bob := connect(t, hub, "bob")
	carol := connect(t, hub, "carol")
	send(t, hub, bob, TypeJoin, JoinPayload{Room: "r", Nick: "Bob"})
	send(t, hub, carol, TypeJoin, JoinPayload{Room: "r", Nick: "Carol"})

	joined := decodeInto[JoinedPayload](t, only(t, drain(t, carol), TypeJoined))
	assert.Equal(t, []string{"Bob", "Carol"}, joined.Members)
}

func TestHub_FullQueueDropsFrames(t *testing.T) {
	hub := newTestHub(t)
	alice := connect(t, hub, "alice")

	for i := 0; i < sendBuffer+10; i++ {
		hub.Handle(alice, []byte(`nope`))
	}

	assert.Len(t, alice.send, sendBuffer)
}

func TestHub_Shutdown(t *testing.T) {
	hub := newTestHub(t)
	alice := connect(t, hub, "alice")
	send(t, hub, alice, TypeJoin, JoinPayload{Room: "abc", Nick: "Alice"})

	done := make(chan struct{})
	go func() {
		defer close(done)
		for range alice.send {
		}
	}()

	hub.Shutdown()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("send queue was not closed")
	}

	assert.Equal(t, 0, hub.ActiveRooms())
	assert.False(t, hub.Register(NewClient(hub, nil, "late", ClientOptions{})))
}

package relay

// SetTyping relays id's composing state to the other members of its room.
// Nothing is stored; clients debounce and send the closing false themselves.
func (e *Engine) SetTyping(id ConnID, typing bool) []Envelope {
	room, sess, ok := e.memberRoom(id)
	if !ok {
		return nil
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if _, member := room.members[id]; !member {
		return nil
	}

	return room.broadcast(Event{
		Type:    EventTyping,
		Payload: TypingState{DisplayName: sess.DisplayName, State: typing},
	}, id)
}

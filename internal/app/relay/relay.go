package relay

// Send validates draft and fans it out to every other member of the sender's
// room. The returned envelopes carry the message to each recipient and a
// delivery-progress event to every member, sender included. Any error means
// nothing was relayed and only the sender should be told.
func (e *Engine) Send(id ConnID, draft Draft) ([]Envelope, error) {
	room, sess, ok := e.memberRoom(id)
	if !ok {
		return nil, ErrNotInRoom
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if _, member := room.members[id]; !member || room.closed {
		return nil, ErrNotInRoom
	}

	now := e.now()

	msg, err := draft.build(&sess, now)
	if err != nil {
		return nil, err
	}

	if _, inUse := room.pending[msg.ID]; inUse {
		return nil, ErrMessageIDInUse
	}

	limiter := room.limiterFor(msg.Kind)
	if limiter.TooFast(id, now) {
		room.logger.Debug().
			Str("conn_id", string(id)).
			Str("kind", string(msg.Kind)).
			Msg("Send throttled.")
		return nil, ErrRateLimited
	}
	limiter.Record(id, now)

	recipients := make(map[ConnID]struct{}, len(room.members))
	for member := range room.members {
		if member != id {
			recipients[member] = struct{}{}
		}
	}

	out := make([]Envelope, 0, 2*len(room.members))
	delivered := Event{Type: EventMessage, Payload: msg}
	for member := range recipients {
		out = append(out, Envelope{To: member, Event: delivered})
	}

	if len(recipients) > 0 {
		room.pending[msg.ID] = recipients
	}
	out = append(out, room.progress(msg.ID, len(recipients))...)

	return out, nil
}

// Acknowledge records that id has read messageID. Unknown, already
// acknowledged or foreign message ids are ignored: a late ack racing a
// disconnect is expected.
func (e *Engine) Acknowledge(id ConnID, messageID string) []Envelope {
	messageID = SanitizeLine(messageID, MaxMessageIDLength)
	if messageID == "" {
		return nil
	}

	room, _, ok := e.memberRoom(id)
	if !ok {
		return nil
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	waiting, ok := room.pending[messageID]
	if !ok {
		return nil
	}
	if _, ok := waiting[id]; !ok {
		return nil
	}

	delete(waiting, id)
	if len(waiting) == 0 {
		delete(room.pending, messageID)
	}

	return room.progress(messageID, len(waiting))
}

// Pending returns the recipients still owing an acknowledgement for
// messageID in roomID, and whether an entry exists.
func (e *Engine) Pending(roomID, messageID string) ([]ConnID, bool) {
	room, ok := e.rooms.Lookup(roomID)
	if !ok {
		return nil, false
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	waiting, ok := room.pending[messageID]
	if !ok {
		return nil, false
	}

	ids := make([]ConnID, 0, len(waiting))
	for id := range waiting {
		ids = append(ids, id)
	}
	return ids, true
}

package relay

// Disconnect tears down id's session. The departing member is struck from
// every pending-delivery set (it can never acknowledge), the remaining members
// learn the new counts and the departure, and an emptied room is removed from
// the registry with everything it held.
func (e *Engine) Disconnect(id ConnID) []Envelope {
	sess, ok := e.forget(id)
	if !ok || sess.RoomID == "" {
		return nil
	}

	room, ok := e.rooms.Lookup(sess.RoomID)
	if !ok {
		return nil
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if _, member := room.members[id]; !member {
		return nil
	}
	delete(room.members, id)

	var out []Envelope
	for messageID, waiting := range room.pending {
		if _, ok := waiting[id]; !ok {
			continue
		}

		delete(waiting, id)
		if len(waiting) == 0 {
			delete(room.pending, messageID)
		}
		out = append(out, room.progress(messageID, len(waiting))...)
	}

	out = append(out, room.broadcast(Event{
		Type:    EventPeerLeft,
		Payload: Peer{DisplayName: sess.DisplayName},
	}, "")...)

	room.logger.Info().
		Str("conn_id", string(id)).
		Int("total_members", len(room.members)).
		Msg("Member left room.")

	if len(room.members) == 0 {
		e.rooms.remove(room)
	}

	return out
}

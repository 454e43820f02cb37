package relay

// Join admits connection id into roomID under displayName. key is the
// optional admission key: the founding member sets it, later joiners must
// match it byte for byte. A rejected join leaves no trace in room state.
func (e *Engine) Join(id ConnID, roomID, displayName, key string) ([]Envelope, error) {
	roomID = SanitizeLine(roomID, MaxRoomIDLength)
	displayName = SanitizeLine(displayName, MaxDisplayNameLength)
	key = SanitizeText(key, MaxKeyLength)

	if roomID == "" || displayName == "" {
		return nil, ErrInvalidParameters
	}

	sess, ok := e.Session(id)
	if !ok {
		return nil, ErrSessionClosed
	}
	if sess.RoomID != "" {
		return nil, ErrAlreadyJoined
	}

	for {
		room := e.rooms.getOrCreate(roomID)

		room.mu.Lock()
		if room.closed {
			// Lost a race with the last member leaving; the registry no
			// longer holds this room.
			room.mu.Unlock()
			continue
		}

		envs, err := e.admit(room, id, displayName, key)
		if err != nil && len(room.members) == 0 {
			e.rooms.remove(room)
		}
		room.mu.Unlock()

		return envs, err
	}
}

// admit runs the admission checks with room.mu held.
func (e *Engine) admit(room *Room, id ConnID, displayName, key string) ([]Envelope, error) {
	if e.cfg.Capacity > 0 && len(room.members) >= e.cfg.Capacity {
		room.logger.Warn().
			Str("conn_id", string(id)).
			Int("capacity", e.cfg.Capacity).
			Msg("Room is full. Join rejected.")
		return nil, ErrRoomFull
	}

	if len(room.members) == 0 {
		room.key = key
	} else {
		if room.key != "" && key != room.key {
			room.logger.Info().Str("conn_id", string(id)).Msg("Join rejected: key mismatch.")
			return nil, ErrKeyMismatch
		}
		if room.key == "" && key != "" {
			room.logger.Info().Str("conn_id", string(id)).Msg("Join rejected: key supplied for keyless room.")
			return nil, ErrKeySettingNotAllowed
		}
	}

	// Disconnect may have forgotten id since the check in Join.
	if !e.bind(id, room.ID, displayName) {
		return nil, ErrSessionClosed
	}

	joined := Event{Type: EventPeerJoined, Payload: Peer{DisplayName: displayName}}
	out := room.broadcast(joined, id)

	room.members[id] = displayName

	out = append(out, Envelope{To: id, Event: Event{
		Type: EventAdmitted,
		Payload: Admitted{
			RoomID:      room.ID,
			DisplayName: displayName,
			Keyed:       room.key != "",
			Members:     room.memberNames(),
			Capacity:    e.cfg.Capacity,
		},
	}})

	room.logger.Info().
		Str("conn_id", string(id)).
		Int("total_members", len(room.members)).
		Msg("Member joined room.")

	return out, nil
}

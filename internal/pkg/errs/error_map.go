package errs

import "net/http"

// errorMap holds the client-facing message and HTTP status for every code.
var errorMap = map[int]CustomError{
	ErrInvalidParams:        {Code: ErrInvalidParams, Message: "Some required fields are missing or invalid.", Status: http.StatusBadRequest},
	ErrUnsupportedMediaType: {Code: ErrUnsupportedMediaType, Message: "Unsupported request format.", Status: http.StatusUnsupportedMediaType},
	ErrInvalidJSONFormat:    {Code: ErrInvalidJSONFormat, Message: "Malformed request.", Status: http.StatusBadRequest},
	ErrExtraContentInBody:   {Code: ErrExtraContentInBody, Message: "Request contains unexpected data.", Status: http.StatusBadRequest},
	ErrUnknownEventType:     {Code: ErrUnknownEventType, Message: "Unsupported event type: %s."},
	ErrRateLimitExceeded:    {Code: ErrRateLimitExceeded, Message: "You are sending too fast. Please wait a moment and try again.", Status: http.StatusTooManyRequests},

	ErrRoomIsFull:           {Code: ErrRoomIsFull, Message: "This room is full."},
	ErrKeyMismatch:          {Code: ErrKeyMismatch, Message: "The room key does not match."},
	ErrKeySettingNotAllowed: {Code: ErrKeySettingNotAllowed, Message: "A key cannot be added to a room that already exists."},
	ErrNotInRoom:            {Code: ErrNotInRoom, Message: "Join a room first."},
	ErrAlreadyJoined:        {Code: ErrAlreadyJoined, Message: "This connection has already joined a room."},
	ErrSessionClosed:        {Code: ErrSessionClosed, Message: "This connection is closed. Please reconnect."},
	ErrMessageIDInUse:       {Code: ErrMessageIDInUse, Message: "Message id is already in use."},
	ErrPayloadTooLarge:      {Code: ErrPayloadTooLarge, Message: "File is too large (max 2MB)."},
	ErrUnsupportedFileType:  {Code: ErrUnsupportedFileType, Message: "This file type is not allowed."},
	ErrMalformedPayload:     {Code: ErrMalformedPayload, Message: "File data is invalid."},

	ErrInviteInvalid: {Code: ErrInviteInvalid, Message: "Invite link is invalid or has expired.", Status: http.StatusBadRequest},

	ErrUnknown: {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
}

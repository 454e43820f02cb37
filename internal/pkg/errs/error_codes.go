/*
Package errs provides the application error type and the numeric reason codes
shared by the relay core, the websocket transport and the HTTP API.

Codes are stable wire values: clients receive them in join_error, info and
HTTP error responses.
*/
package errs

// 1xxx: General request handling
const (
	// ErrInvalidParams indicates that a required field was missing or empty after sanitization.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates that the HTTP request Content-Type is not supported.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates that a request body or websocket frame is not valid JSON.
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates that the request body contained data after the JSON document.
	ErrExtraContentInBody = 1004

	// ErrUnknownEventType indicates a websocket frame with a type the server does not handle.
	ErrUnknownEventType = 1005

	// ErrRateLimitExceeded indicates that the sender is over its rate budget.
	ErrRateLimitExceeded = 1007
)

// 2xxx: Room admission and message relay
const (
	ErrRoomIsFull = 2104

	// ErrKeyMismatch indicates that the supplied room key differs from the key set by the founder.
	ErrKeyMismatch = 2105

	// ErrKeySettingNotAllowed indicates an attempt to set a key on an established keyless room.
	ErrKeySettingNotAllowed = 2106

	// ErrNotInRoom indicates an operation from a connection that has not joined a room.
	ErrNotInRoom = 2107

	// ErrAlreadyJoined indicates a second join on a connection that is already bound to a room.
	ErrAlreadyJoined = 2108

	// ErrSessionClosed indicates a join from a connection the relay has already torn down.
	ErrSessionClosed = 2109

	// ErrMessageIDInUse indicates a message id that is still awaiting acknowledgement in the room.
	ErrMessageIDInUse = 2202

	ErrPayloadTooLarge = 2203

	ErrUnsupportedFileType = 2204

	// ErrMalformedPayload indicates a file payload that is not an acceptable data URI.
	ErrMalformedPayload = 2205
)

// 3xxx: Invite links
const (
	// ErrInviteInvalid indicates an invite token that is malformed, forged or expired.
	ErrInviteInvalid = 3001
)

// 5xxx: Internal
const (
	// ErrUnknown represents an unclassified internal error.
	ErrUnknown = 5000
)

package relay

import (
	"fmt"

	"relaychat/internal/pkg/errs"
)

// Rejection is returned by engine operations that refuse a request. It only
// carries a reason code; turning it into user-facing text is the transport's job.
type Rejection struct {
	Code int
	Kind string
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("relay: %s (code %d)", r.Kind, r.Code)
}

var (
	ErrInvalidParameters    = &Rejection{Code: errs.ErrInvalidParams, Kind: "invalid parameters"}
	ErrRoomFull             = &Rejection{Code: errs.ErrRoomIsFull, Kind: "room full"}
	ErrKeyMismatch          = &Rejection{Code: errs.ErrKeyMismatch, Kind: "key mismatch"}
	ErrKeySettingNotAllowed = &Rejection{Code: errs.ErrKeySettingNotAllowed, Kind: "key setting not allowed"}
	ErrAlreadyJoined        = &Rejection{Code: errs.ErrAlreadyJoined, Kind: "already joined"}
	ErrNotInRoom            = &Rejection{Code: errs.ErrNotInRoom, Kind: "not in room"}
	ErrSessionClosed        = &Rejection{Code: errs.ErrSessionClosed, Kind: "session closed"}
	ErrRateLimited          = &Rejection{Code: errs.ErrRateLimitExceeded, Kind: "rate limited"}
	ErrMessageIDInUse       = &Rejection{Code: errs.ErrMessageIDInUse, Kind: "message id in use"}
	ErrPayloadTooLarge      = &Rejection{Code: errs.ErrPayloadTooLarge, Kind: "payload too large"}
	ErrUnsupportedMediaType = &Rejection{Code: errs.ErrUnsupportedFileType, Kind: "unsupported media type"}
	ErrMalformedPayload     = &Rejection{Code: errs.ErrMalformedPayload, Kind: "malformed payload"}
)

package relay

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"relaychat/internal/pkg/errs"
)

func TestRejectionsHaveMessages(t *testing.T) {
	for _, r := range []*Rejection{
		ErrInvalidParameters, ErrRoomFull, ErrKeyMismatch, ErrKeySettingNotAllowed,
		ErrAlreadyJoined, ErrNotInRoom, ErrSessionClosed, ErrRateLimited, ErrMessageIDInUse,
		ErrPayloadTooLarge, ErrUnsupportedMediaType, ErrMalformedPayload,
	} {
		assert.True(t, errs.Known(r.Code), "%s (%d) has no message", r.Kind, r.Code)
		assert.Contains(t, r.Error(), r.Kind)
	}
}

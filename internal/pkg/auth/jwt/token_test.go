package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func TestInviteRoundTrip(t *testing.T) {
	token, err := GenerateInvite(&Invite{Room: "abc", From: "Alice"}, secret, time.Hour, time.Now())
	require.NoError(t, err)

	invite, err := ParseInvite(token, secret)
	require.NoError(t, err)

	assert.Equal(t, "abc", invite.Room)
	assert.Equal(t, "Alice", invite.From)
	assert.Equal(t, TokenIssuer, invite.Issuer)
}

func TestParseInvite_Rejects(t *testing.T) {
	valid, err := GenerateInvite(&Invite{Room: "abc"}, secret, time.Hour, time.Now())
	require.NoError(t, err)

	expired, err := GenerateInvite(&Invite{Room: "abc"}, secret, time.Minute, time.Now().Add(-time.Hour))
	require.NoError(t, err)

	noRoom, err := GenerateInvite(&Invite{}, secret, time.Hour, time.Now())
	require.NoError(t, err)

	tests := []struct {
		name   string
		token  string
		secret string
	}{
		{name: "wrong secret", token: valid, secret: "other"},
		{name: "expired", token: expired, secret: secret},
		{name: "missing room", token: noRoom, secret: secret},
		{name: "garbage", token: "not.a.token", secret: secret},
		{name: "empty", token: "", secret: secret},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseInvite(tt.token, tt.secret)
			assert.ErrorIs(t, err, ErrInvalidInvite)
		})
	}
}

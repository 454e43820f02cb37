package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt"
)

const (
	// DefaultInviteExpiration is used when no lifetime is configured.
	DefaultInviteExpiration = 24 * time.Hour

	// TokenIssuer identifies the issuer of the token.
	TokenIssuer = "relaychat"
)

var ErrInvalidInvite = errors.New("invalid or expired invite")

// GenerateInvite signs invite with secretKey and a lifetime of ttl.
func GenerateInvite(invite *Invite, secretKey string, ttl time.Duration, now time.Time) (string, error) {
	if ttl <= 0 {
		ttl = DefaultInviteExpiration
	}

	invite.StandardClaims = jwt.StandardClaims{
		ExpiresAt: now.Add(ttl).Unix(),
		IssuedAt:  now.Unix(),
		Issuer:    TokenIssuer,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, invite)

	return token.SignedString([]byte(secretKey))
}

// ParseInvite validates tokenString against secretKey and returns its claims.
func ParseInvite(tokenString string, secretKey string) (*Invite, error) {
	claims := &Invite{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secretKey), nil
	})

	if err != nil {
		return nil, errors.Join(ErrInvalidInvite, err)
	}

	if !token.Valid || claims.Issuer != TokenIssuer || claims.Room == "" {
		return nil, ErrInvalidInvite
	}

	return claims, nil
}

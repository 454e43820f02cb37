package jwt

import "github.com/golang-jwt/jwt"

// Invite is the claim set of a room invite link.
//
// An invite only names a room. It never carries the room's admission key and
// grants nothing by itself: whoever follows it still goes through the normal
// join checks.
type Invite struct {
	jwt.StandardClaims

	// Room is the sanitized room id the invite points at.
	Room string `json:"room"`

	// From is the display name of the member who created the invite, if any.
	From string `json:"from,omitempty"`
}

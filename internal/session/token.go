package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenIssuedAt reads the iat claim of a JWT-shaped token without verifying
// it. The token is opaque to the API contract; this is for display only.
func TokenIssuedAt(token string) (time.Time, bool) {
	if token == "" {
		return time.Time{}, false
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}

	iat, err := claims.GetIssuedAt()
	if err != nil || iat == nil {
		return time.Time{}, false
	}
	return iat.Time, true
}

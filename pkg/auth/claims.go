package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// ClientTokenClaims binds a browser client to its workspace. The subject is the client id.
type ClientTokenClaims struct {
	ClientID string `json:"client_id"`
	jwt.RegisteredClaims
}

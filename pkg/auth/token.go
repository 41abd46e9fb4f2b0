package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/meaw-storefront/pkg/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var jwtSigningMethod = jwt.SigningMethodHS256

// NewClientID returns a fresh workspace identifier.
func NewClientID() string {
	return uuid.NewString()
}

// MintClientToken issues a signed JWT for clientID using the configured TTL.
func MintClientToken(cfg config.TokenConfig, now time.Time, clientID string) (string, error) {
	if cfg.Secret == "" {
		return "", fmt.Errorf("token secret is required")
	}
	if cfg.Issuer == "" {
		return "", fmt.Errorf("token issuer is required")
	}
	if cfg.TTL <= 0 {
		return "", fmt.Errorf("token ttl must be positive")
	}
	clientID = strings.TrimSpace(clientID)
	if _, err := uuid.Parse(clientID); err != nil {
		return "", fmt.Errorf("invalid client id %q", clientID)
	}

	claims := ClientTokenClaims{
		ClientID: clientID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			Subject:   clientID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.TTL)),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwtSigningMethod, claims)
	signed, err := token.SignedString([]byte(cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("signing jwt: %w", err)
	}
	return signed, nil
}

// ParseClientToken validates tokenString and returns its claims.
// A token whose client_id disagrees with its subject is rejected.
func ParseClientToken(cfg config.TokenConfig, tokenString string) (*ClientTokenClaims, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("token secret is required")
	}

	claims := &ClientTokenClaims{}
	_, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(token *jwt.Token) (interface{}, error) {
			if token.Method != jwtSigningMethod {
				return nil, fmt.Errorf("unexpected signing method %s", token.Header["alg"])
			}
			return []byte(cfg.Secret), nil
		},
		jwt.WithValidMethods([]string{jwtSigningMethod.Alg()}),
		jwt.WithIssuer(cfg.Issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	if claims.ClientID == "" || claims.ClientID != claims.Subject {
		return nil, fmt.Errorf("client token subject mismatch")
	}
	return claims, nil
}

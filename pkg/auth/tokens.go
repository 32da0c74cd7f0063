package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"crimewatch/pkg/config"
	"crimewatch/pkg/models"
)

const tokenIssuer = "crimewatch"

// ErrInvalidSession covers expired, malformed and badly signed tokens.
var ErrInvalidSession = errors.New("invalid session token")

type sessionClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

// IssueSession mints a signed HS256 session token for the identity, valid
// for the configured session TTL.
func IssueSession(id models.Identity) (string, error) {
	secret := config.SessionSecret()
	if secret == "" {
		return "", fmt.Errorf("no session secret configured")
	}
	now := time.Now().UTC()
	claims := sessionClaims{
		Email: id.Email,
		Name:  id.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   id.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(config.SessionTTL())),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseSession validates a session token and returns the identity it was
// minted for.
func ParseSession(token string) (models.Identity, error) {
	secret := config.SessionSecret()
	if secret == "" {
		return models.Identity{}, fmt.Errorf("no session secret configured")
	}
	var claims sessionClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		return models.Identity{}, ErrInvalidSession
	}
	return models.Identity{ID: claims.Subject, Email: claims.Email, Name: claims.Name}, nil
}

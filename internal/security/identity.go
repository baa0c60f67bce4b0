package security

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for any bearer token that fails verification
var ErrInvalidToken = errors.New("invalid token")

// Identity issues and verifies the HS256 bearer tokens that name a player.
// Accounts live elsewhere; the token subject is the player's user id.
type Identity struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewIdentity creates a token verifier. secret must not be empty.
func NewIdentity(secret, issuer string) (*Identity, error) {
	if secret == "" {
		return nil, errors.New("JWT secret is required")
	}
	return &Identity{secret: []byte(secret), issuer: issuer, now: time.Now}, nil
}

// IssueToken signs a token for userID valid for ttl
func (id *Identity) IssueToken(userID int64, ttl time.Duration) (string, error) {
	now := id.now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		Issuer:    id.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(id.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ParseToken verifies a token and returns the user id it names
func (id *Identity) ParseToken(token string) (int64, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(id.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(id.now),
	)

	claims := &jwt.RegisteredClaims{}
	parsed, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return id.secret, nil
	})
	if err != nil || !parsed.Valid {
		return 0, ErrInvalidToken
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return 0, ErrInvalidToken
	}
	return userID, nil
}

package auth

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken is returned for a malformed, expired or foreign token.
var ErrInvalidToken = errors.New("invalid or expired token")

const tokenIssuer = "apartd"

// DefaultTokenTTL is how long a login session lasts.
const DefaultTokenTTL = 12 * time.Hour

// Tokens issues and checks HS256 session tokens for a logged-in operator.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokens signs with secret. An empty secret is replaced by a random one,
// which invalidates every token when the process restarts.
func NewTokens(secret string, ttl time.Duration) (*Tokens, error) {
	key := []byte(secret)
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("failed to generate token secret: %w", err)
		}
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &Tokens{secret: key, ttl: ttl, now: time.Now}, nil
}

// WithClock overrides the time source.
func (t *Tokens) WithClock(now func() time.Time) *Tokens {
	t.now = now
	return t
}

// Session is an issued token.
type Session struct {
	Token     string
	ID        string
	Username  string
	ExpiresAt time.Time
}

// Issue signs a token for username. Callers verify the password first.
func (t *Tokens) Issue(username string) (Session, error) {
	now := t.now()
	s := Session{
		ID:        uuid.NewString(),
		Username:  username,
		ExpiresAt: now.Add(t.ttl),
	}
	claims := jwt.RegisteredClaims{
		ID:        s.ID,
		Subject:   username,
		Issuer:    tokenIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(s.ExpiresAt),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return Session{}, fmt.Errorf("failed to sign token: %w", err)
	}
	s.Token = signed
	return s, nil
}

// Parse validates a token and returns the operator it was issued to.
func (t *Tokens) Parse(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", tok.Header["alg"])
		}
		return t.secret, nil
	},
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(t.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

package security

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	uuid "github.com/google/uuid"
)

// ErrTokenExpired indicates the token's expiry is in the past.
var ErrTokenExpired = errors.New("jwt: token expired")

// ErrTokenMalformed indicates the token is structurally invalid or its
// signature does not verify.
var ErrTokenMalformed = errors.New("jwt: token malformed")

// SessionClaims is the signed claim set carried by a session token.
type SessionClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenCodec signs and verifies HS256 session tokens with a shared secret.
type TokenCodec struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

const defaultSessionTokenTTL = 24 * time.Hour

// NewTokenCodec constructs a TokenCodec for the supplied signing secret.
func NewTokenCodec(secret, issuer string, ttl time.Duration) (*TokenCodec, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, fmt.Errorf("jwt: signing secret is required")
	}
	if ttl <= 0 {
		ttl = defaultSessionTokenTTL
	}

	codec := &TokenCodec{
		secret: []byte(secret),
		issuer: strings.TrimSpace(issuer),
		ttl:    ttl,
	}
	codec.now = func() time.Time { return time.Now().UTC() }
	return codec, nil
}

// WithClock overrides the codec clock for deterministic tests.
func (c *TokenCodec) WithClock(clock func() time.Time) {
	if clock != nil {
		c.now = clock
	}
}

// TTL returns the configured token lifetime.
func (c *TokenCodec) TTL() time.Duration {
	return c.ttl
}

// Issue signs a fresh session token for the supplied subject and role.
// Every token carries a unique jti used as its revocation key.
func (c *TokenCodec) Issue(subjectID, role string) (string, *SessionClaims, error) {
	subjectID = strings.TrimSpace(subjectID)
	if subjectID == "" {
		return "", nil, fmt.Errorf("jwt: subject id is required")
	}

	now := c.now()
	claims := &SessionClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			Issuer:    c.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", nil, fmt.Errorf("jwt: sign token: %w", err)
	}

	return signed, claims, nil
}

// Parse verifies the token's signature and registered claims and returns
// the claim set. Expiry is reported as ErrTokenExpired; every other
// verification failure collapses to ErrTokenMalformed.
func (c *TokenCodec) Parse(token string) (*SessionClaims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrTokenMalformed
	}

	claims := &SessionClaims{}

	parserOptions := []jwt.ParserOption{
		jwt.WithTimeFunc(c.now),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	}
	if c.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(c.issuer))
	}

	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	}, parserOptions...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenMalformed
	}

	if parsed == nil || !parsed.Valid {
		return nil, ErrTokenMalformed
	}

	if strings.TrimSpace(claims.Subject) == "" || strings.TrimSpace(claims.ID) == "" {
		return nil, ErrTokenMalformed
	}

	return claims, nil
}

package auth

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"birthdayReminderTracker/models"
)

const (
	// TokenIssuer is written to and required in every token.
	TokenIssuer = "birthday-reminder-tracker"
	// DefaultTokenTTL is the fixed lifetime of an issued token.
	DefaultTokenTTL = 7 * 24 * time.Hour
)

// Claims are the JWT claims carried by an access token.
type Claims struct {
	UserID int64  `json:"uid"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Principal represents the authenticated caller from JWT.
type Principal struct {
	UserID int64
	Email  string
	Role   models.Role
}

type principalKey struct{}

// WithPrincipal stores the principal in context.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// FromContext retrieves the principal from context (if any).
func FromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*Principal)
	return p, ok && p != nil
}

// Tokens issues and verifies HS256 access tokens with a server-held secret.
// Tokens are not revocable; they stay valid until they expire.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokens returns a Tokens using secret. A non-positive ttl selects DefaultTokenTTL.
func NewTokens(secret string, ttl time.Duration) *Tokens {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &Tokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// WithClock replaces the time source used for issuing and validating.
func (t *Tokens) WithClock(now func() time.Time) *Tokens {
	cp := *t
	cp.now = now
	return &cp
}

// Issue signs a token for the given user.
func (t *Tokens) Issue(userID int64, email string, role models.Role) (string, error) {
	if len(t.secret) == 0 {
		return "", errors.New("jwt secret is empty")
	}
	if userID <= 0 {
		return "", errors.New("invalid user id")
	}
	now := t.now()
	claims := Claims{
		UserID: userID,
		Email:  email,
		Role:   string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			Issuer:    TokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// Verify returns the token's claims, or nil when the token is malformed,
// expired, signed with another key or algorithm, or missing required claims.
func (t *Tokens) Verify(tokenStr string) *Claims {
	c, err := t.parse(tokenStr)
	if err != nil {
		return nil
	}
	return c
}

func (t *Tokens) parse(tokenStr string) (*Claims, error) {
	if len(t.secret) == 0 {
		return nil, errors.New("jwt secret is empty")
	}
	tokenStr = strings.TrimSpace(tokenStr)
	if tokenStr == "" {
		return nil, errors.New("token is empty")
	}

	c := &Claims{}
	tok, err := jwt.ParseWithClaims(tokenStr, c, func(tk *jwt.Token) (interface{}, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(TokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil || !tok.Valid {
		if err == nil {
			err = errors.New("invalid token")
		}
		return nil, err
	}
	if c.UserID <= 0 || c.Subject != strconv.FormatInt(c.UserID, 10) || c.Role == "" {
		return nil, errors.New("invalid claims")
	}
	return c, nil
}

// Principal converts verified claims into the caller identity.
func (c *Claims) Principal() *Principal {
	return &Principal{UserID: c.UserID, Email: c.Email, Role: models.Role(strings.ToLower(c.Role))}
}

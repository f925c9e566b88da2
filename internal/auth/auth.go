// Package auth verifies the bearer tokens issued by the login service and
// resolves them to an Identity. Tokens are HS256 JWTs carrying the user's id,
// display name (nama), email and role.
package auth

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"

	"github.com/presensi-app/presensi/internal/presensi/types"
)

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid token")
)

// Claims is the token payload shared with the login service.
type Claims struct {
	UserID int64  `json:"id"`
	Name   string `json:"nama"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type Verifier struct {
	secret []byte
	issuer string
	now    func() time.Time
}

type Option func(*Verifier)

// WithIssuer requires tokens to carry iss == issuer.
func WithIssuer(issuer string) Option {
	return func(v *Verifier) { v.issuer = issuer }
}

// WithClock replaces time.Now for expiry checks, for tests.
func WithClock(now func() time.Time) Option {
	return func(v *Verifier) { v.now = now }
}

func NewVerifier(secret string, opts ...Option) *Verifier {
	v := &Verifier{secret: []byte(secret), now: time.Now}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Verify parses and validates token and returns the identity it names.
func (v *Verifier) Verify(token string) (types.Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return types.Identity{}, ErrMissingToken
	}

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(v.now),
	}
	if v.issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(v.issuer))
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, parserOpts...)
	if err != nil {
		return types.Identity{}, errors.Wrap(ErrInvalidToken, err.Error())
	}
	if !parsed.Valid || claims.UserID <= 0 {
		return types.Identity{}, ErrInvalidToken
	}

	return types.Identity{
		UserID:      claims.UserID,
		DisplayName: claims.Name,
		Email:       claims.Email,
		Role:        claims.Role,
	}, nil
}

// FromHeader extracts the token from an "Authorization: Bearer ..." value.
func FromHeader(h string) (string, error) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(h), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", ErrMissingToken
	}
	return strings.TrimSpace(token), nil
}

// Mint signs an HS256 token for id. It backs the dev token CLI and tests;
// production tokens come from the login service.
func Mint(secret, issuer string, id types.Identity, ttl time.Duration, now time.Time) (string, error) {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	claims := &Claims{
		UserID: id.UserID,
		Name:   id.DisplayName,
		Email:  id.Email,
		Role:   id.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", errors.Wrap(err, "sign token")
	}
	return signed, nil
}

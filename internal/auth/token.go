package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	wiserr "github.com/Asad272002/TaskWiser-V2/pkg/errors"
)

// DefaultTokenTTL is how long a session token is valid.
const DefaultTokenTTL = 24 * time.Hour

const tokenIssuer = "taskwiser"

// errSigningMethod rejects tokens not signed with HMAC.
var errSigningMethod = errors.New("unexpected signing method")

// Claims identify the wallet a session token was issued to.
type Claims struct {
	Address string `json:"address"`
	jwt.RegisteredClaims
}

// Tokens signs and checks HS256 session tokens.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokens returns a token signer using secret. A non-positive ttl means
// DefaultTokenTTL.
func NewTokens(secret string, ttl time.Duration) (*Tokens, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, wiserr.WithDetails(wiserr.ErrConfigInvalid, map[string]string{"key": "api.jwt_secret", "reason": "required"})
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &Tokens{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Sign issues a token for address.
func (t *Tokens) Sign(address string) (string, time.Time, error) {
	now := t.now()
	expires := now.Add(t.ttl)
	claims := &Claims{
		Address: strings.ToLower(address),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   strings.ToLower(address),
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, wiserr.Wrap(err, "signing token")
	}
	return signed, expires, nil
}

// Parse validates a token and returns its claims.
func (t *Tokens) Parse(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errSigningMethod
		}
		return t.secret, nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithTimeFunc(t.now))
	if err != nil || !parsed.Valid {
		return nil, wiserr.WithCause(wiserr.ErrInvalidToken, err)
	}
	return claims, nil
}

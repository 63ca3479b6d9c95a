package security

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTTL is the lifetime of an issued token.
const DefaultTTL = time.Hour

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrMissingClaims   = errors.New("claims payload required")
)

// Claims is what the token carries. The role is intentionally absent:
// role gates read it from the store on every request.
type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

type TokenService interface {
	Issue(c Claims) (string, error)
	Verify(token string) (*Claims, error)
}

type signer struct {
	method  jwt.SigningMethod
	signKey any
	kid     string
	keyFunc jwt.Keyfunc
	ttl     time.Duration
	now     func() time.Time
}

type Option func(*signer)

// WithClock replaces time.Now for issuance and expiry checks.
func WithClock(now func() time.Time) Option { return func(s *signer) { s.now = now } }

// NewHMAC signs HS256 tokens with a shared secret.
func NewHMAC(secret string, ttl time.Duration, opts ...Option) TokenService {
	key := []byte(secret)
	s := &signer{
		method:  jwt.SigningMethodHS256,
		signKey: key,
		keyFunc: func(t *jwt.Token) (interface{}, error) { return key, nil },
		ttl:     ttl,
		now:     time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// NewRSA signs RS256 tokens with the active key and verifies against any key
// the manager knows by kid, so a rotated-in key keeps old tokens valid.
func NewRSA(km *KeyManager, ttl time.Duration, opts ...Option) TokenService {
	s := &signer{
		method:  jwt.SigningMethodRS256,
		signKey: km.Active.Private,
		kid:     km.Active.Kid,
		keyFunc: func(t *jwt.Token) (interface{}, error) {
			kid, _ := t.Header["kid"].(string)
			if pk, ok := km.PublicByKid(kid); ok {
				return pk, nil
			}
			return nil, errors.New("no key by kid")
		},
		ttl: ttl,
		now: time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *signer) Issue(c Claims) (string, error) {
	if strings.TrimSpace(c.Email) == "" {
		return "", ErrMissingClaims
	}
	ttl := s.ttl
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	now := s.now()
	c.IssuedAt = jwt.NewNumericDate(now)
	c.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	c.Subject = c.Email
	t := jwt.NewWithClaims(s.method, c)
	if s.kid != "" {
		t.Header["kid"] = s.kid
	}
	return t.SignedString(s.signKey)
}

func (s *signer) Verify(token string) (*Claims, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}
	c := &Claims{}
	t, err := jwt.ParseWithClaims(token, c, s.keyFunc,
		jwt.WithValidMethods([]string{s.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	if !t.Valid || c.Email == "" {
		return nil, fmt.Errorf("%w: invalid claims", ErrUnauthenticated)
	}
	return c, nil
}

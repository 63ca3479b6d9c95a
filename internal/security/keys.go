package security

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"math/big"
	"os"
	"strings"
)

type RSAKey struct {
	Kid     string
	Private *rsa.PrivateKey
	Public  *rsa.PublicKey
}

// KeyManager holds the signing key and the one staged for rotation.
type KeyManager struct {
	Active *RSAKey
	Next   *RSAKey
	byKid  map[string]*rsa.PublicKey
}

func ParsePrivateKeyPEM(b []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(b)
	if block == nil {
		return nil, errors.New("invalid PEM")
	}
	switch block.Type {
	case "RSA PRIVATE KEY":
		return x509.ParsePKCS1PrivateKey(block.Bytes)
	case "PRIVATE KEY":
		k, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return nil, err
		}
		rk, ok := k.(*rsa.PrivateKey)
		if !ok {
			return nil, errors.New("not RSA key")
		}
		return rk, nil
	default:
		return nil, fmt.Errorf("unsupported key type: %s", block.Type)
	}
}

// LoadPrivateKey reads a key given either inline as PEM text or as a path
// to a PEM file. Inline values may carry literal \n sequences, as env files
// often do.
func LoadPrivateKey(src string) (*rsa.PrivateKey, error) {
	if src == "" {
		return nil, errors.New("no key configured")
	}
	if strings.HasPrefix(strings.TrimSpace(src), "-----BEGIN") {
		return ParsePrivateKeyPEM([]byte(strings.ReplaceAll(src, `\n`, "\n")))
	}
	b, err := os.ReadFile(src)
	if err != nil {
		return nil, err
	}
	return ParsePrivateKeyPEM(b)
}

// NewKeyManager loads the active key and, when nextKid is set, the key
// staged for rotation.
func NewKeyManager(activeKid, activeSrc, nextKid, nextSrc string) (*KeyManager, error) {
	act, err := LoadPrivateKey(activeSrc)
	if err != nil {
		return nil, fmt.Errorf("active key: %w", err)
	}
	var next *rsa.PrivateKey
	if nextKid != "" {
		if next, err = LoadPrivateKey(nextSrc); err != nil {
			return nil, fmt.Errorf("next key: %w", err)
		}
	}
	return NewKeyManagerFromKeys(activeKid, act, nextKid, next)
}

var (
	ErrMissingKid   = errors.New("key id is required")
	ErrDuplicateKid = errors.New("active and next key share a key id")
)

// NewKeyManagerFromKeys builds a manager from parsed keys; next may be nil.
func NewKeyManagerFromKeys(activeKid string, active *rsa.PrivateKey, nextKid string, next *rsa.PrivateKey) (*KeyManager, error) {
	if strings.TrimSpace(activeKid) == "" {
		return nil, ErrMissingKid
	}
	if active == nil {
		return nil, errors.New("active key is nil")
	}
	km := &KeyManager{
		Active: &RSAKey{Kid: activeKid, Private: active, Public: &active.PublicKey},
		byKid:  map[string]*rsa.PublicKey{activeKid: &active.PublicKey},
	}
	if next == nil {
		return km, nil
	}
	switch {
	case strings.TrimSpace(nextKid) == "":
		return nil, ErrMissingKid
	case nextKid == activeKid:
		return nil, ErrDuplicateKid
	}
	km.Next = &RSAKey{Kid: nextKid, Private: next, Public: &next.PublicKey}
	km.byKid[nextKid] = &next.PublicKey
	return km, nil
}

// JWK is the RSA subset of RFC 7517.
type JWK struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	Use string `json:"use"`
	Alg string `json:"alg"`
	N   string `json:"n"`
	E   string `json:"e"`
}

type JWKS struct {
	Keys []JWK `json:"keys"`
}

func (km *KeyManager) JWKS() JWKS {
	out := []JWK{}
	add := func(k *RSAKey) {
		if k == nil {
			return
		}
		out = append(out, JWK{
			Kty: "RSA", Kid: k.Kid, Use: "sig", Alg: "RS256",
			N: base64.RawURLEncoding.EncodeToString(k.Public.N.Bytes()),
			E: base64.RawURLEncoding.EncodeToString(big.NewInt(int64(k.Public.E)).Bytes()),
		})
	}
	add(km.Active)
	add(km.Next)
	return JWKS{Keys: out}
}

func (km *KeyManager) PublicByKid(kid string) (*rsa.PublicKey, bool) {
	pk, ok := km.byKid[kid]
	return pk, ok
}

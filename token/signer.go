package token

import (
	"crypto/ed25519"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/tappin/authsession/identity"
)

// SigningMethod selects the algorithm used by [Signer].
type SigningMethod string

const (
	MethodEd25519 SigningMethod = "ed25519"
	MethodHS256   SigningMethod = "hs256"
)

// SignerConfig configures a [Signer].
type SignerConfig struct {
	TTL           time.Duration
	SigningMethod SigningMethod
	PrivateKey    []byte
	Issuer        string
	KeyID         string
}

// Signer mints tokens carrying the claims understood by [Decoder].
type Signer struct {
	config SignerConfig
	now    func() time.Time
}

// Subject is the identity minted into a token.
type Subject struct {
	ID              string
	Role            identity.Role
	Email           string
	Name            string
	StripeAccountID string

	// UseLegacyRoleClaim writes the role under "rol" instead of "role".
	UseLegacyRoleClaim bool
}

// NewSigner validates cfg and returns a [Signer].
func NewSigner(cfg SignerConfig) (*Signer, error) {
	if cfg.TTL <= 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	cfg.KeyID = strings.TrimSpace(cfg.KeyID)
	switch cfg.SigningMethod {
	case MethodHS256:
		if len(cfg.PrivateKey) == 0 {
			return nil, errors.New("hs256 requires private key")
		}
	case MethodEd25519:
		if _, err := parseEdPrivateKey(cfg.PrivateKey); err != nil {
			return nil, err
		}
	default:
		return nil, errors.New("unsupported signing method")
	}
	return &Signer{config: cfg, now: time.Now}, nil
}

// Mint signs a token for sub that expires after the configured TTL.
func (s *Signer) Mint(sub Subject) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		ClaimExpiresAt: jwt.NewNumericDate(now.Add(s.config.TTL)),
		"iat":          jwt.NewNumericDate(now),
	}
	if sub.ID != "" {
		claims[ClaimID] = sub.ID
		claims[ClaimSubject] = sub.ID
	}
	if sub.Role != "" {
		if sub.UseLegacyRoleClaim {
			claims[ClaimLegacyRole] = string(sub.Role)
		} else {
			claims[ClaimRole] = string(sub.Role)
		}
	}
	if sub.Email != "" {
		claims[ClaimEmail] = sub.Email
	}
	if sub.Name != "" {
		claims[ClaimName] = sub.Name
	}
	if sub.StripeAccountID != "" {
		claims[ClaimStripeAccountID] = sub.StripeAccountID
	}
	if s.config.Issuer != "" {
		claims["iss"] = s.config.Issuer
	}
	return s.Sign(claims)
}

// Sign signs arbitrary claims as-is.
func (s *Signer) Sign(claims jwt.MapClaims) (string, error) {
	tok := jwt.NewWithClaims(s.method(), claims)
	if s.config.KeyID != "" {
		tok.Header["kid"] = s.config.KeyID
	}

	key, err := s.signKey()
	if err != nil {
		return "", err
	}
	return tok.SignedString(key)
}

func (s *Signer) method() jwt.SigningMethod {
	switch s.config.SigningMethod {
	case MethodHS256:
		return jwt.SigningMethodHS256
	default:
		return jwt.SigningMethodEdDSA
	}
}

func (s *Signer) signKey() (interface{}, error) {
	switch s.config.SigningMethod {
	case MethodHS256:
		return s.config.PrivateKey, nil
	default:
		return parseEdPrivateKey(s.config.PrivateKey)
	}
}

func parseEdPrivateKey(key []byte) (ed25519.PrivateKey, error) {
	if len(key) == ed25519.PrivateKeySize {
		return ed25519.PrivateKey(key), nil
	}
	parsed, err := jwt.ParseEdPrivateKeyFromPEM(key)
	if err != nil {
		return nil, errors.New("invalid ed25519 private key")
	}
	edKey, ok := parsed.(ed25519.PrivateKey)
	if !ok {
		return nil, errors.New("invalid ed25519 private key type")
	}
	return edKey, nil
}

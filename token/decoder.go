package token

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/tappin/authsession/identity"
	"go.uber.org/zap"
)

var (
	// ErrEmptyToken is returned when no token was supplied.
	ErrEmptyToken = errors.New("empty token")
	// ErrMalformedToken is returned when the token cannot be parsed.
	ErrMalformedToken = errors.New("malformed token")
	// ErrExpiredToken is returned when the token is past its exp claim or has none.
	ErrExpiredToken = errors.New("token expired")

	errMissingPayload = errors.New("token carries no claims")
)

// Decoder turns bearer tokens into claims. A Decoder is immutable and safe for
// concurrent use.
type Decoder struct {
	parser *jwt.Parser
	now    func() time.Time
	logger *zap.Logger
}

// DecoderOption configures a [Decoder].
type DecoderOption func(*Decoder)

// WithClock overrides the time source used by expiry checks.
func WithClock(now func() time.Time) DecoderOption {
	return func(d *Decoder) {
		if now != nil {
			d.now = now
		}
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(logger *zap.Logger) DecoderOption {
	return func(d *Decoder) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// NewDecoder creates a [Decoder].
func NewDecoder(opts ...DecoderOption) *Decoder {
	d := &Decoder{
		parser: jwt.NewParser(jwt.WithoutClaimsValidation(), jwt.WithPaddingAllowed()),
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Decode parses the token payload without verifying its signature.
//
// Only the payload segment is read. The header and signature may be anything,
// so tokens with an algorithm unknown to this client still decode.
//
// An exp claim of the wrong type is treated as absent, which makes the token
// expired for [Decoder.IsExpired].
func (d *Decoder) Decode(tokenStr string) (*Claims, error) {
	tokenStr = strings.TrimSpace(tokenStr)
	if tokenStr == "" {
		d.logger.Error("token decode failed", zap.Error(ErrEmptyToken))
		return nil, ErrEmptyToken
	}

	mapClaims, err := d.payload(tokenStr)
	if err != nil {
		d.logger.Error("token decode failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	claims, err := claimsFromMap(mapClaims)
	if err != nil {
		d.logger.Warn("token exp claim unusable", zap.Error(err))
	}

	d.logger.Debug("token decoded")
	return claims, nil
}

// payload decodes the second segment of tokenStr into claims.
func (d *Decoder) payload(tokenStr string) (jwt.MapClaims, error) {
	parts := strings.Split(tokenStr, ".")
	if len(parts) < 2 {
		return nil, errMissingPayload
	}
	raw, err := d.parser.DecodeSegment(parts[1])
	if err != nil {
		return nil, fmt.Errorf("decode payload segment: %w", err)
	}

	var claims jwt.MapClaims
	if err := json.Unmarshal(raw, &claims); err != nil {
		return nil, fmt.Errorf("decode payload json: %w", err)
	}
	if claims == nil {
		return nil, errMissingPayload
	}
	return claims, nil
}

// IsExpired reports whether the token must be treated as expired: undecodable,
// missing exp, or exp strictly before now.
func (d *Decoder) IsExpired(tokenStr string) bool {
	claims, err := d.Decode(tokenStr)
	if err != nil {
		return true
	}
	return d.expired(claims)
}

func (d *Decoder) expired(claims *Claims) bool {
	if claims.ExpiresAt == nil || claims.ExpiresAt.Unix() == 0 {
		return true
	}
	return claims.ExpiresAt.Time.Before(d.now())
}

// ExtractUser decodes the token and returns the identity it carries, with the role
// canonicalized. It does not check expiry.
func (d *Decoder) ExtractUser(tokenStr string) (identity.TokenUser, error) {
	claims, err := d.Decode(tokenStr)
	if err != nil {
		return identity.TokenUser{}, err
	}
	return claims.User(), nil
}

// Validate is [Decoder.ExtractUser] gated on [Decoder.IsExpired], decoding once.
func (d *Decoder) Validate(tokenStr string) (identity.TokenUser, error) {
	claims, err := d.Decode(tokenStr)
	if err != nil {
		return identity.TokenUser{}, err
	}
	if d.expired(claims) {
		return identity.TokenUser{}, ErrExpiredToken
	}
	return claims.User(), nil
}

var defaultDecoder = NewDecoder()

// Decode calls [Decoder.Decode] on a default decoder.
func Decode(tokenStr string) (*Claims, error) {
	return defaultDecoder.Decode(tokenStr)
}

// IsExpired calls [Decoder.IsExpired] on a default decoder.
func IsExpired(tokenStr string) bool {
	return defaultDecoder.IsExpired(tokenStr)
}

// ExtractUser calls [Decoder.ExtractUser] on a default decoder.
func ExtractUser(tokenStr string) (identity.TokenUser, error) {
	return defaultDecoder.ExtractUser(tokenStr)
}

package token

import (
	"strconv"

	"github.com/golang-jwt/jwt/v5"
	"github.com/tappin/authsession/identity"
)

// Claim keys understood by the decoder.
const (
	ClaimID              = "id"
	ClaimSubject         = "sub"
	ClaimRole            = "role"
	ClaimLegacyRole      = "rol"
	ClaimEmail           = "email"
	ClaimName            = "name"
	ClaimStripeAccountID = "stripe_account_id"
	ClaimExpiresAt       = "exp"
)

// Claims is a decoded token payload.
type Claims struct {
	ID              string
	Subject         string
	Role            string
	LegacyRole      string
	Email           string
	Name            string
	StripeAccountID string

	// ExpiresAt is nil when the token carries no usable exp claim.
	ExpiresAt *jwt.NumericDate
}

// UserID returns the primary id claim, falling back to the subject.
func (c *Claims) UserID() string {
	if c.ID != "" {
		return c.ID
	}
	return c.Subject
}

// CanonicalRole returns the role claim (legacy key first) after aliasing.
func (c *Claims) CanonicalRole() identity.Role {
	raw := c.LegacyRole
	if raw == "" {
		raw = c.Role
	}
	return identity.CanonicalRole(raw)
}

// User builds the token-derived identity from the claims.
func (c *Claims) User() identity.TokenUser {
	u := identity.TokenUser{
		User: identity.User{
			ID:    c.UserID(),
			Role:  c.CanonicalRole(),
			Name:  c.Name,
			Email: c.Email,
		},
		StripeAccountID: c.StripeAccountID,
	}
	if c.ExpiresAt != nil {
		u.ExpiresAt = c.ExpiresAt.Unix()
	}
	return u
}

func claimsFromMap(m jwt.MapClaims) (*Claims, error) {
	c := &Claims{
		ID:              claimString(m, ClaimID),
		Subject:         claimString(m, ClaimSubject),
		Role:            claimString(m, ClaimRole),
		LegacyRole:      claimString(m, ClaimLegacyRole),
		Email:           claimString(m, ClaimEmail),
		Name:            claimString(m, ClaimName),
		StripeAccountID: claimString(m, ClaimStripeAccountID),
	}

	exp, err := m.GetExpirationTime()
	if err != nil {
		return c, err
	}
	c.ExpiresAt = exp
	return c, nil
}

// claimString reads a claim as text. Numeric ids are rendered without exponent.
func claimString(m jwt.MapClaims, key string) string {
	switch v := m[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	default:
		return ""
	}
}

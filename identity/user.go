package identity

import "encoding/json"

// User is the canonical identity held by the session store.
//
// Empty ID and Role are serialized as JSON null.
type User struct {
	ID    string
	Role  Role
	Name  string
	Email string
}

// TokenUser is the identity extracted from a bearer token. It is what gets persisted
// when a session is restored from a token; the session itself only keeps the
// embedded [User].
type TokenUser struct {
	User
	StripeAccountID string
	ExpiresAt       int64
}

type userRecord struct {
	ID    *string `json:"id"`
	Role  *Role   `json:"role"`
	Rol   *Role   `json:"rol"`
	Name  string  `json:"name"`
	Email string  `json:"email"`
}

type tokenUserRecord struct {
	ID              *string `json:"id"`
	Role            *Role   `json:"role"`
	Rol             *Role   `json:"rol"`
	Email           string  `json:"email"`
	Name            string  `json:"name"`
	StripeAccountID *string `json:"stripe_account_id"`
	Exp             int64   `json:"exp,omitempty"`
}

// MarshalJSON writes the persisted shape, with "role" and "rol" always equal.
func (u User) MarshalJSON() ([]byte, error) {
	role := nullableRole(u.Role)
	return json.Marshal(userRecord{
		ID:    nullable(u.ID),
		Role:  role,
		Rol:   role,
		Name:  u.Name,
		Email: u.Email,
	})
}

// UnmarshalJSON accepts any known user shape and normalizes it.
func (u *User) UnmarshalJSON(data []byte) error {
	var f Fields
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*u = f.normalize()
	return nil
}

// MarshalJSON writes the token-derived record, including the Stripe account and
// expiry claims.
func (u TokenUser) MarshalJSON() ([]byte, error) {
	role := nullableRole(u.Role)
	return json.Marshal(tokenUserRecord{
		ID:              nullable(u.ID),
		Role:            role,
		Rol:             role,
		Email:           u.Email,
		Name:            u.Name,
		StripeAccountID: nullable(u.StripeAccountID),
		Exp:             u.ExpiresAt,
	})
}

func (u *TokenUser) UnmarshalJSON(data []byte) error {
	var f Fields
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*u = TokenUser{
		User:            f.normalize(),
		StripeAccountID: f.StripeAccountID,
		ExpiresAt:       f.Exp,
	}
	return nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nullableRole(r Role) *Role {
	if r == "" {
		return nil
	}
	return &r
}

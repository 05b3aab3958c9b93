package identity

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrEmptyUser is returned when a raw user payload carries no user at all.
var ErrEmptyUser = errors.New("empty user")

// RawUser is a user object in one of the known external shapes. The set of
// implementations is closed: [User], [TokenUser], [CurrentUser], [LegacyUser] and
// [Fields] (plus pointers to them).
type RawUser interface {
	isRawUser()
}

// CurrentUser is the shape returned by current API responses.
type CurrentUser struct {
	ID    string
	Role  string
	Name  string
	Email string
}

// LegacyUser is the shape used by older API responses (Mongo ids, Spanish keys).
type LegacyUser struct {
	MongoID string
	Rol     string
	Nombre  string
	Email   string
}

// Fields is a decoded user record whose keys may mix both naming schemes.
type Fields struct {
	ID              string
	MongoID         string
	Role            string
	Rol             string
	Name            string
	Nombre          string
	Email           string
	StripeAccountID string
	Exp             int64
}

func (User) isRawUser()        {}
func (CurrentUser) isRawUser() {}
func (LegacyUser) isRawUser()  {}
func (Fields) isRawUser()      {}

// Normalize maps any raw shape onto a canonical [User]. Current keys win over legacy
// keys when both are present. It reports false for a nil user.
//
// Normalize does not alias role values; see [CanonicalRole] for token claims.
func Normalize(raw RawUser) (User, bool) {
	switch u := raw.(type) {
	case User:
		return u, true
	case TokenUser:
		return u.User, true
	case CurrentUser:
		return User{ID: u.ID, Role: Role(u.Role), Name: u.Name, Email: u.Email}, true
	case LegacyUser:
		return User{ID: u.MongoID, Role: Role(u.Rol), Name: u.Nombre, Email: u.Email}, true
	case Fields:
		return u.normalize(), true
	case *User:
		if u == nil {
			return User{}, false
		}
		return *u, true
	case *TokenUser:
		if u == nil {
			return User{}, false
		}
		return u.User, true
	case *CurrentUser:
		if u == nil {
			return User{}, false
		}
		return Normalize(*u)
	case *LegacyUser:
		if u == nil {
			return User{}, false
		}
		return Normalize(*u)
	case *Fields:
		if u == nil {
			return User{}, false
		}
		return u.normalize(), true
	default:
		return User{}, false
	}
}

func (f Fields) normalize() User {
	return User{
		ID:    firstNonEmpty(f.ID, f.MongoID),
		Role:  Role(firstNonEmpty(f.Role, f.Rol)),
		Name:  firstNonEmpty(f.Name, f.Nombre),
		Email: f.Email,
	}
}

// ParseRawUser decodes a JSON user object and classifies its shape. Objects using
// only current keys become [CurrentUser], objects using only legacy keys become
// [LegacyUser], anything else is returned as [Fields].
func ParseRawUser(data []byte) (RawUser, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, ErrEmptyUser
	}

	var f Fields
	if err := json.Unmarshal(trimmed, &f); err != nil {
		return nil, err
	}

	hasCurrent := f.ID != "" || f.Role != "" || f.Name != ""
	hasLegacy := f.MongoID != "" || f.Rol != "" || f.Nombre != ""

	switch {
	case hasLegacy && !hasCurrent:
		return LegacyUser{MongoID: f.MongoID, Rol: f.Rol, Nombre: f.Nombre, Email: f.Email}, nil
	case !hasLegacy && f.StripeAccountID == "" && f.Exp == 0:
		return CurrentUser{ID: f.ID, Role: f.Role, Name: f.Name, Email: f.Email}, nil
	default:
		return f, nil
	}
}

type fieldsWire struct {
	ID              flexString  `json:"id"`
	MongoID         flexString  `json:"_id"`
	Role            flexString  `json:"role"`
	Rol             flexString  `json:"rol"`
	Name            flexString  `json:"name"`
	Nombre          flexString  `json:"nombre"`
	Email           flexString  `json:"email"`
	StripeAccountID flexString  `json:"stripe_account_id"`
	Exp             json.Number `json:"exp"`
}

func (f *Fields) UnmarshalJSON(data []byte) error {
	var w fieldsWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	exp, err := numberToUnix(w.Exp)
	if err != nil {
		return err
	}
	*f = Fields{
		ID:              string(w.ID),
		MongoID:         string(w.MongoID),
		Role:            string(w.Role),
		Rol:             string(w.Rol),
		Name:            string(w.Name),
		Nombre:          string(w.Nombre),
		Email:           string(w.Email),
		StripeAccountID: string(w.StripeAccountID),
		Exp:             exp,
	}
	return nil
}

// flexString accepts JSON strings, numbers and null. Ids are numeric in some API
// versions and strings in others.
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = flexString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("identity: expected string or number, got %s", data)
	}
	*s = flexString(n.String())
	return nil
}

func numberToUnix(n json.Number) (int64, error) {
	if n == "" {
		return 0, nil
	}
	if v, err := n.Int64(); err == nil {
		return v, nil
	}
	v, err := n.Float64()
	if err != nil {
		return 0, fmt.Errorf("identity: invalid exp %q", n.String())
	}
	return int64(v), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

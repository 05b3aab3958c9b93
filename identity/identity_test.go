package identity

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestCanonicalRoleAliasesClientOnly(t *testing.T) {
	cases := map[string]Role{
		"client":       RoleClientAdmin,
		"client_admin": RoleClientAdmin,
		"staff":        RoleStaff,
		"Client":       Role("Client"),
		"":             Role(""),
	}
	for raw, want := range cases {
		if got := CanonicalRole(raw); got != want {
			t.Fatalf("CanonicalRole(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestAllRolesKnown(t *testing.T) {
	roles := AllRoles()
	if len(roles) != 5 {
		t.Fatalf("expected 5 roles, got %d", len(roles))
	}
	for _, r := range roles {
		if !r.Known() {
			t.Fatalf("role %q should be known", r)
		}
	}
	if Role("client").Known() {
		t.Fatal("legacy client role must not be reported as known")
	}

	roles[0] = "mutated"
	if AllRoles()[0] != RoleSuperAdmin {
		t.Fatal("AllRoles must return a copy")
	}
}

func TestNormalizeShapes(t *testing.T) {
	tests := []struct {
		name string
		raw  RawUser
		want User
		ok   bool
	}{
		{
			name: "current",
			raw:  CurrentUser{ID: "7", Role: "parent", Name: "Luz", Email: "l@x.io"},
			want: User{ID: "7", Role: RoleParent, Name: "Luz", Email: "l@x.io"},
			ok:   true,
		},
		{
			name: "legacy",
			raw:  LegacyUser{MongoID: "abc", Rol: "staff", Nombre: "Ana"},
			want: User{ID: "abc", Role: RoleStaff, Name: "Ana"},
			ok:   true,
		},
		{
			name: "mixed prefers current keys",
			raw:  Fields{ID: "1", MongoID: "2", Role: "branch", Rol: "staff", Nombre: "Eva"},
			want: User{ID: "1", Role: RoleBranch, Name: "Eva"},
			ok:   true,
		},
		{
			name: "token user drops token-only fields",
			raw:  TokenUser{User: User{ID: "42", Role: RoleClientAdmin}, StripeAccountID: "acct_1", ExpiresAt: 99},
			want: User{ID: "42", Role: RoleClientAdmin},
			ok:   true,
		},
		{
			name: "pointer",
			raw:  &LegacyUser{Rol: "parent"},
			want: User{Role: RoleParent},
			ok:   true,
		},
		{
			name: "nil pointer",
			raw:  (*CurrentUser)(nil),
			ok:   false,
		},
		{
			name: "nil",
			raw:  nil,
			ok:   false,
		},
		{
			name: "no alias for client on login shapes",
			raw:  CurrentUser{Role: "client"},
			want: User{Role: Role("client")},
			ok:   true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := Normalize(tc.raw)
			if ok != tc.ok {
				t.Fatalf("ok = %v, want %v", ok, tc.ok)
			}
			if got != tc.want {
				t.Fatalf("got %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestUserJSONCarriesBothRoleKeys(t *testing.T) {
	data, err := json.Marshal(User{ID: "42", Role: RoleStaff, Name: "Ana"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("unmarshal map: %v", err)
	}
	if m["role"] != "staff" || m["rol"] != "staff" {
		t.Fatalf("expected role and rol to be staff, got %s", data)
	}
	if m["email"] != "" {
		t.Fatalf("expected empty email default, got %v", m["email"])
	}

	empty, err := json.Marshal(User{})
	if err != nil {
		t.Fatalf("marshal empty: %v", err)
	}
	if string(empty) != `{"id":null,"role":null,"rol":null,"name":"","email":""}` {
		t.Fatalf("unexpected empty user encoding: %s", empty)
	}
}

func TestUserJSONRoundTripKeepsRolesEqual(t *testing.T) {
	in := User{ID: "9", Role: RoleClientAdmin, Name: "N", Email: "n@x.io"}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out User
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out != in {
		t.Fatalf("round trip mismatch: %+v vs %+v", out, in)
	}
}

func TestTokenUserJSON(t *testing.T) {
	data, err := json.Marshal(TokenUser{User: User{ID: "42", Role: RoleClientAdmin, Email: "a@b.com"}, ExpiresAt: 1700000000})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"id":"42","role":"client_admin","rol":"client_admin","email":"a@b.com","name":"","stripe_account_id":null,"exp":1700000000}`
	if string(data) != want {
		t.Fatalf("got %s\nwant %s", data, want)
	}

	var back TokenUser
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.ID != "42" || back.ExpiresAt != 1700000000 || back.Role != RoleClientAdmin {
		t.Fatalf("unexpected decoded token user: %+v", back)
	}
}

func TestParseRawUserClassifiesShape(t *testing.T) {
	raw, err := ParseRawUser([]byte(`{"nombre":"Ana","rol":"staff"}`))
	if err != nil {
		t.Fatalf("parse legacy: %v", err)
	}
	if _, ok := raw.(LegacyUser); !ok {
		t.Fatalf("expected LegacyUser, got %T", raw)
	}

	raw, err = ParseRawUser([]byte(`{"id":12,"role":"parent","name":"Luz"}`))
	if err != nil {
		t.Fatalf("parse current: %v", err)
	}
	cur, ok := raw.(CurrentUser)
	if !ok {
		t.Fatalf("expected CurrentUser, got %T", raw)
	}
	if cur.ID != "12" {
		t.Fatalf("numeric id should be stringified, got %q", cur.ID)
	}

	raw, err = ParseRawUser([]byte(`{"_id":"m1","role":"staff","rol":"staff"}`))
	if err != nil {
		t.Fatalf("parse mixed: %v", err)
	}
	if _, ok := raw.(Fields); !ok {
		t.Fatalf("expected Fields, got %T", raw)
	}
}

func TestParseRawUserRejectsEmptyAndInvalid(t *testing.T) {
	for _, in := range []string{"", "null", "  "} {
		if _, err := ParseRawUser([]byte(in)); !errors.Is(err, ErrEmptyUser) {
			t.Fatalf("ParseRawUser(%q) error = %v, want ErrEmptyUser", in, err)
		}
	}
	if _, err := ParseRawUser([]byte(`{"id":true}`)); err == nil {
		t.Fatal("expected boolean id to be rejected")
	}
	if _, err := ParseRawUser([]byte(`[1,2]`)); err == nil {
		t.Fatal("expected array payload to be rejected")
	}
}

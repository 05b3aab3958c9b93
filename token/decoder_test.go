package token

import (
	"encoding/base64"
	"errors"
	"testing"
	"time"

	gjwt "github.com/golang-jwt/jwt/v5"
	"github.com/tappin/authsession/identity"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var testKey = []byte("test-secret-test-secret-test-sec")

func newTestSigner(t *testing.T) *Signer {
	t.Helper()
	s, err := NewSigner(SignerConfig{TTL: time.Hour, SigningMethod: MethodHS256, PrivateKey: testKey})
	if err != nil {
		t.Fatalf("new signer: %v", err)
	}
	return s
}

func sign(t *testing.T, claims gjwt.MapClaims) string {
	t.Helper()
	tok, err := newTestSigner(t).Sign(claims)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return tok
}

func TestMalformedTokensAreExpiredAndCarryNoUser(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"not-a-jwt",
		"a.b",
		"a.b.c",
		"eyJhbGciOiJIUzI1NiJ9.%%%.sig",
		"eyJhbGciOiJIUzI1NiJ9.bm90LWpzb24.sig",
		// payload is JSON null or an array
		"eyJhbGciOiJIUzI1NiJ9.bnVsbA.sig",
		"eyJhbGciOiJIUzI1NiJ9.WzFd.sig",
	}

	d := NewDecoder()
	for _, in := range inputs {
		if !d.IsExpired(in) {
			t.Fatalf("IsExpired(%q) = false, want true", in)
		}
		if _, err := d.ExtractUser(in); err == nil {
			t.Fatalf("ExtractUser(%q) succeeded, want error", in)
		}
	}
}

func TestDecodeReadsOnlyThePayload(t *testing.T) {
	seg := func(s string) string { return base64.RawURLEncoding.EncodeToString([]byte(s)) }
	payload := seg(`{"id":"42","role":"staff","exp":9999999999}`)

	cases := map[string]string{
		"two segments":     seg(`{"alg":"HS256"}`) + "." + payload,
		"non-json header":  seg("nope") + "." + payload + ".sig",
		"unregistered alg": seg(`{"alg":"ES256K","typ":"JWT"}`) + "." + payload + ".sig",
		"alg none":         seg(`{"alg":"none"}`) + "." + payload + ".",
		"extra segments":   seg(`{"alg":"HS256"}`) + "." + payload + ".sig.extra",
		"padded payload":   seg(`{"alg":"HS256"}`) + "." + base64.URLEncoding.EncodeToString([]byte(`{"id":"42","role":"staff","exp":9999999999}`)) + ".sig",
	}

	d := NewDecoder(WithClock(func() time.Time { return time.Unix(1_800_000_000, 0) }))
	for name, tok := range cases {
		t.Run(name, func(t *testing.T) {
			if d.IsExpired(tok) {
				t.Fatalf("IsExpired = true, want false")
			}
			u, err := d.ExtractUser(tok)
			if err != nil {
				t.Fatalf("ExtractUser: %v", err)
			}
			if u.ID != "42" || u.Role != identity.RoleStaff {
				t.Fatalf("unexpected user: %+v", u)
			}
		})
	}
}

func TestDecodeErrorSentinels(t *testing.T) {
	if _, err := Decode(""); !errors.Is(err, ErrEmptyToken) {
		t.Fatalf("expected ErrEmptyToken, got %v", err)
	}
	if _, err := Decode("x.y.z"); !errors.Is(err, ErrMalformedToken) {
		t.Fatalf("expected ErrMalformedToken, got %v", err)
	}
}

func TestDecodeFailureIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	d := NewDecoder(WithLogger(zap.New(core)))

	_, _ = d.Decode("garbage")

	if logs.FilterMessage("token decode failed").Len() != 1 {
		t.Fatalf("expected one decode failure log, got %v", logs.All())
	}
}

func TestIsExpiredFollowsExpClaim(t *testing.T) {
	now := time.Unix(1_800_000_000, 0)
	d := NewDecoder(WithClock(func() time.Time { return now }))

	past := sign(t, gjwt.MapClaims{"exp": now.Add(-time.Second).Unix()})
	future := sign(t, gjwt.MapClaims{"exp": now.Add(time.Second).Unix()})
	exact := sign(t, gjwt.MapClaims{"exp": now.Unix()})
	missing := sign(t, gjwt.MapClaims{"id": "1"})
	wrongType := sign(t, gjwt.MapClaims{"exp": "tomorrow"})

	if !d.IsExpired(past) {
		t.Fatal("expected token with past exp to be expired")
	}
	if d.IsExpired(future) {
		t.Fatal("expected token with future exp to be valid")
	}
	if d.IsExpired(exact) {
		t.Fatal("exp equal to now is not strictly before now")
	}
	if !d.IsExpired(missing) {
		t.Fatal("expected token without exp to be expired")
	}
	if !d.IsExpired(wrongType) {
		t.Fatal("expected token with non-numeric exp to be expired")
	}
	if _, err := d.Decode(wrongType); err != nil {
		t.Fatalf("non-numeric exp must not fail decoding: %v", err)
	}
}

func TestExtractUserCanonicalizesClientRole(t *testing.T) {
	exp := time.Now().Add(time.Hour).Unix()
	tok := sign(t, gjwt.MapClaims{
		"role":  "client",
		"exp":   exp,
		"id":    "42",
		"email": "a@b.com",
	})

	u, err := ExtractUser(tok)
	if err != nil {
		t.Fatalf("extract user: %v", err)
	}
	if u.Role != identity.RoleClientAdmin {
		t.Fatalf("expected client_admin, got %q", u.Role)
	}
	if u.ID != "42" || u.Email != "a@b.com" || u.Name != "" {
		t.Fatalf("unexpected user: %+v", u)
	}
	if u.ExpiresAt != exp {
		t.Fatalf("expected exp %d, got %d", exp, u.ExpiresAt)
	}
}

func TestExtractUserClaimPrecedence(t *testing.T) {
	tests := []struct {
		name     string
		claims   gjwt.MapClaims
		wantID   string
		wantRole identity.Role
	}{
		{"legacy role key wins", gjwt.MapClaims{"rol": "staff", "role": "parent"}, "", identity.RoleStaff},
		{"legacy client alias", gjwt.MapClaims{"rol": "client"}, "", identity.RoleClientAdmin},
		{"subject fallback", gjwt.MapClaims{"sub": "user-9", "role": "branch"}, "user-9", identity.RoleBranch},
		{"id beats subject", gjwt.MapClaims{"id": "1", "sub": "2"}, "1", ""},
		{"numeric id", gjwt.MapClaims{"id": 42}, "42", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			u, err := ExtractUser(sign(t, tc.claims))
			if err != nil {
				t.Fatalf("extract user: %v", err)
			}
			if u.ID != tc.wantID {
				t.Fatalf("id = %q, want %q", u.ID, tc.wantID)
			}
			if u.Role != tc.wantRole {
				t.Fatalf("role = %q, want %q", u.Role, tc.wantRole)
			}
		})
	}
}

func TestExtractUserCarriesStripeAccount(t *testing.T) {
	u, err := ExtractUser(sign(t, gjwt.MapClaims{"id": "5", "stripe_account_id": "acct_123", "name": "Colegio"}))
	if err != nil {
		t.Fatalf("extract user: %v", err)
	}
	if u.StripeAccountID != "acct_123" || u.Name != "Colegio" {
		t.Fatalf("unexpected user: %+v", u)
	}
}

func TestValidate(t *testing.T) {
	d := NewDecoder()

	if _, err := d.Validate(sign(t, gjwt.MapClaims{"exp": time.Now().Add(-time.Minute).Unix()})); !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}
	if _, err := d.Validate("junk"); !errors.Is(err, ErrMalformedToken) {
		t.Fatalf("expected ErrMalformedToken, got %v", err)
	}

	u, err := d.Validate(sign(t, gjwt.MapClaims{"exp": time.Now().Add(time.Minute).Unix(), "rol": "parent"}))
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if u.Role != identity.RoleParent {
		t.Fatalf("expected parent, got %q", u.Role)
	}
}

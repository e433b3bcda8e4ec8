package api

import (
	"errors"
	"testing"
	"time"

	"todoboard/token"
)

func newGate(t *testing.T) (*Auth, *token.Codec) {
	t.Helper()
	codec, err := token.NewCodec([]byte("test-secret"), "HS256")
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	return NewAuth(codec), codec
}

func TestClaimsFromAuthHeaderMissingIsAnonymous(t *testing.T) {
	auth, _ := newGate(t)
	claims, err := auth.ClaimsFromAuthHeader("")
	if err != nil {
		t.Fatalf("missing header must not error, got %v", err)
	}
	if claims != nil {
		t.Fatalf("expected anonymous, got %+v", claims)
	}
}

func TestClaimsFromAuthHeaderBadScheme(t *testing.T) {
	auth, _ := newGate(t)
	for _, header := range []string{"Basic abc", "Bearer", "Bearer ", "token"} {
		if _, err := auth.ClaimsFromAuthHeader(header); !errors.Is(err, ErrBadAuthHeader) {
			t.Fatalf("header %q: expected ErrBadAuthHeader, got %v", header, err)
		}
	}
}

func TestClaimsFromAuthHeaderValidToken(t *testing.T) {
	auth, codec := newGate(t)
	raw, err := codec.Issue("alice", "alice@example.com", "local", time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := auth.ClaimsFromAuthHeader("Bearer " + raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims == nil || claims.Subject != "alice" {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	// The scheme comparison is case-insensitive.
	if _, err := auth.ClaimsFromAuthHeader("bearer " + raw); err != nil {
		t.Fatalf("lowercase scheme must be accepted, got %v", err)
	}
}

func TestClaimsFromAuthHeaderInvalidToken(t *testing.T) {
	auth, codec := newGate(t)

	if _, err := auth.ClaimsFromAuthHeader("Bearer garbage"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}

	raw, err := codec.Issue("alice", "", "local", -time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := auth.ClaimsFromAuthHeader("Bearer " + raw); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expired token must map to ErrInvalidToken, got %v", err)
	}
}

func TestRequireAuth(t *testing.T) {
	if _, err := RequireAuth(nil); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	claims := &token.Claims{Subject: "alice"}
	got, err := RequireAuth(claims)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != claims {
		t.Fatal("claims must pass through unchanged")
	}
}

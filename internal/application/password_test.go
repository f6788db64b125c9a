package application

import (
	"errors"
	"strings"
	"testing"
)

func TestHashPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$") {
		t.Fatalf("expected PHC argon2id encoding, got %q", hash)
	}

	if err := VerifyPassword(hash, "correct horse battery staple"); err != nil {
		t.Fatalf("expected matching password to verify: %v", err)
	}
	if err := VerifyPassword(hash, "wrong password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for mismatch, got %v", err)
	}
}

func TestVerifyPasswordRejectsMalformedHashes(t *testing.T) {
	cases := map[string]string{
		"empty":          "",
		"plain text":     "hunter2",
		"wrong variant":  "$argon2i$v=19$m=65536,t=3,p=2$c2FsdA$aGFzaA",
		"bad version":    "$argon2id$v=18$m=65536,t=3,p=2$c2FsdA$aGFzaA",
		"bad costs":      "$argon2id$v=19$m=what$c2FsdA$aGFzaA",
		"invalid base64": "$argon2id$v=19$m=65536,t=3,p=2$!!!$aGFzaA",
	}

	for name, hash := range cases {
		t.Run(name, func(t *testing.T) {
			if err := VerifyPassword(hash, "anything"); !errors.Is(err, ErrMalformedPasswordHash) {
				t.Fatalf("expected ErrMalformedPasswordHash, got %v", err)
			}
		})
	}
}

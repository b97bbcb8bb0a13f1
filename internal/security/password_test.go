package security

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashPasswordRoundTrip(t *testing.T) {
	// MinCost keeps the test fast; production uses DefaultCost.
	hash, err := HashPassword("secret1", bcrypt.MinCost)

	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}

	if hash == "secret1" || hash == "" {
		t.Fatalf("hash looks wrong: %q", hash)
	}

	if err := CheckPassword(hash, "secret1"); err != nil {
		t.Errorf("CheckPassword rejected the correct password: %v", err)
	}

	if err := CheckPassword(hash, "secret2"); err == nil {
		t.Errorf("CheckPassword accepted a wrong password")
	}
}

func TestHashPasswordUniqueSalts(t *testing.T) {
	h1, err := HashPassword("same-password", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("first hash: %v", err)
	}

	h2, err := HashPassword("same-password", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("second hash: %v", err)
	}

	if h1 == h2 {
		t.Errorf("two hashes of the same password are identical; salting is broken")
	}
}

func TestHashPasswordCostFallback(t *testing.T) {
	tests := []struct {
		name string
		cost int
	}{
		{name: "zero", cost: 0},
		{name: "negative", cost: -3},
		{name: "above max", cost: bcrypt.MaxCost + 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			hash, err := HashPassword("pw", tc.cost)

			if err != nil {
				t.Fatalf("HashPassword(%d) returned error: %v", tc.cost, err)
			}

			got, err := bcrypt.Cost([]byte(hash))

			if err != nil {
				t.Fatalf("cost extraction failed: %v", err)
			}

			if got != DefaultCost {
				t.Errorf("cost = %d, want fallback %d", got, DefaultCost)
			}
		})
	}
}

func TestCheckPasswordGarbageHash(t *testing.T) {
	if err := CheckPassword("not-a-bcrypt-hash", "anything"); err == nil {
		t.Errorf("CheckPassword accepted a malformed hash")
	}
}

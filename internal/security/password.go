package security

import "golang.org/x/crypto/bcrypt"

// DefaultCost mirrors the BCRYPT_ROUNDS default used in production.
const DefaultCost = 12

// HashPassword hashes a plain text password with bcrypt at the given cost.
// A cost outside bcrypt's supported range falls back to DefaultCost.
func HashPassword(plain string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(plain), cost)

	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// CheckPassword compares a bcrypt hash with a plaintext password.
func CheckPassword(hash, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
}

package auth

import (
	"fmt"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

const (
	PasswordMinLength = 8
	PasswordMaxLength = 128

	// bcrypt reads at most 72 bytes of input; anything longer must be
	// truncated before hashing or GenerateFromPassword rejects it outright.
	bcryptMaxBytes = 72
)

// PasswordHasher wraps bcrypt with an explicit cost so the work factor is
// configuration, not a compile-time constant.
type PasswordHasher struct {
	cost int
}

func NewPasswordHasher(cost int) *PasswordHasher {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &PasswordHasher{cost: cost}
}

func (h *PasswordHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(truncateForBcrypt(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify reports whether password matches the stored hash. A malformed
// stored hash counts as a mismatch rather than an error; callers only care
// whether the credentials are good.
func (h *PasswordHasher) Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), truncateForBcrypt(password)) == nil
}

// truncateForBcrypt caps the password at bcrypt's input limit so every
// policy-valid password (up to 128 characters) hashes instead of erroring.
func truncateForBcrypt(password string) []byte {
	b := []byte(password)
	if len(b) > bcryptMaxBytes {
		b = b[:bcryptMaxBytes]
	}
	return b
}

// ValidatePassword enforces the registration password policy: 8-128
// characters with at least one uppercase letter, one lowercase letter and
// one digit.
func ValidatePassword(password string) error {
	if len(password) < PasswordMinLength || len(password) > PasswordMaxLength {
		return fmt.Errorf("password must be between %d and %d characters", PasswordMinLength, PasswordMaxLength)
	}

	var hasUpper, hasLower, hasDigit bool

	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}

	if !hasUpper {
		return fmt.Errorf("password must contain at least one uppercase letter")
	}
	if !hasLower {
		return fmt.Errorf("password must contain at least one lowercase letter")
	}
	if !hasDigit {
		return fmt.Errorf("password must contain at least one digit")
	}

	return nil
}

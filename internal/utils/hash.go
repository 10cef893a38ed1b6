package utils

import "golang.org/x/crypto/bcrypt"

// HashOTP returns a bcrypt hash of a one-time code for storage.
func HashOTP(code string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.MinCost)
	return string(bytes), err
}

// CheckOTP compares a stored hash with a submitted code.
func CheckOTP(hashed, code string) bool {
	if hashed == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(code)) == nil
}

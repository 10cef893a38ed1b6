package utils

import "strings"

// CleanPhone strips everything but digits from a phone number.
func CleanPhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidPhone requires at least ten digits after cleaning.
func ValidPhone(phone string) bool {
	return len(CleanPhone(phone)) >= 10
}

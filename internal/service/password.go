package service

import "unicode"

const (
	minPasswordLen = 8
	// bcrypt ignores everything after 72 bytes
	maxPasswordBytes = 72
)

// checkPasswordPolicy enforces the rules for new credentials: 8 to 72 bytes
// with at least one letter and one digit.  field names the offending input.
func checkPasswordPolicy(field, pw string) error {
	if len(pw) < minPasswordLen {
		return invalid(field, "must be at least 8 characters")
	}
	if len(pw) > maxPasswordBytes {
		return invalid(field, "must be at most 72 bytes")
	}
	var letter, digit bool
	for _, r := range pw {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !letter || !digit {
		return invalid(field, "must contain a letter and a digit")
	}
	return nil
}

package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// OTPDigits is the width of every one-time code.
const OTPDigits = 6

// NewNumericCode returns a uniformly random, zero padded decimal code of the
// given width.
func NewNumericCode(digits int) (string, error) {
	if digits <= 0 || digits > 18 {
		return "", fmt.Errorf("otp width out of range: %d", digits)
	}
	limit := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits)), nil)
	n, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", digits, n.Int64()), nil
}

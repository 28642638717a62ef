package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// GenerateOTP returns a random numeric code of the given length. The first
// digit is never zero so the code always has exactly n digits.
func GenerateOTP(n int) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("invalid otp length %d", n)
	}

	lower := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n-1)), nil)
	span := new(big.Int).Sub(new(big.Int).Mul(lower, big.NewInt(10)), lower)

	v, err := rand.Int(rand.Reader, span)
	if err != nil {
		return "", fmt.Errorf("failed to generate random number: %w", err)
	}

	return v.Add(v, lower).String(), nil
}

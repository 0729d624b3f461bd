package utils

import (
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
)

// GenerateNumericCode returns a uniformly random decimal code of the given
// number of digits, leading zeros included.
func GenerateNumericCode(digits int) (string, error) {
	if digits <= 0 {
		return "", errors.New("code length must be positive")
	}

	var sb strings.Builder
	sb.Grow(digits)
	ten := big.NewInt(10)
	for range digits {
		n, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", err
		}
		sb.WriteByte(byte('0' + n.Int64()))
	}
	return sb.String(), nil
}

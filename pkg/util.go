package pkg

import (
	"crypto/rand"
	"errors"
	"math/big"
)

// GenerateRandomDigits returns a securely generated number with exactly n digits,
// i.e. in range [10^(n-1), 10^n - 1]
func GenerateRandomDigits(n int) (int64, error) {
	if n <= 0 || n > 18 {
		return 0, errors.New("digits count must be in range [1, 18]")
	}

	low := int64(1)
	for i := 1; i < n; i++ {
		low *= 10
	}
	high := low * 10

	offset, err := rand.Int(rand.Reader, big.NewInt(high-low))
	if err != nil {
		return 0, err
	}

	return low + offset.Int64(), nil
}

// ParsePositiveInt parses s as a strictly positive integer,
// returning def when s is empty
func ParsePositiveInt(s string, def int) (int, bool) {
	if s == "" {
		return def, true
	}

	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
		if n > 1_000_000_000 {
			return 0, false
		}
	}

	return n, n > 0
}

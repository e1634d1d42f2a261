// Package password generates the short numeric credential attached to a
// registration at creation time. The 4-digit code is a coarse access gate,
// not a cryptographic secret; it is isolated here so a stronger scheme can
// replace it without touching call sites.
package password

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	// Length is the fixed credential length callers may rely on.
	Length = 4

	low  = 1000
	high = 9999
)

// Generate returns a 4-digit numeric string uniform in [1000, 9999].
func Generate() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(high-low+1))
	if err != nil {
		return "", fmt.Errorf("generate password: %w", err)
	}
	return fmt.Sprintf("%04d", n.Int64()+low), nil
}

package domain

import (
	"crypto/sha256"
	"fmt"
	"math/big"
)

const synthesizedIDLength = 9

// SynthesizeID builds an identifier for features whose feed carries none.
// The suffix is the first nine base-36 digits of a SHA-256 over the name,
// coordinates and feed position, so an unchanged feed always yields the same
// IDs. The position keeps identically named co-located features apart.
func SynthesizeID(prefix, name string, lat, lon float64, line int) string {
	input := fmt.Sprintf("%s|%.6f|%.6f|%d", name, lat, lon, line)
	hash := sha256.Sum256([]byte(input))
	suffix := new(big.Int).SetBytes(hash[:]).Text(36)
	for len(suffix) < synthesizedIDLength {
		suffix = "0" + suffix
	}
	return prefix + suffix[:synthesizedIDLength]
}

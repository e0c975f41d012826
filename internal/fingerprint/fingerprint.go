// Package fingerprint derives deterministic identities for analysis
// requests so that equivalent submissions share one cache entry.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Flags captures the request options that change what a verdict contains.
// Two requests with the same text but different flags must not share a
// cache entry.
type Flags struct {
	CrossReference bool
	Explain        bool
}

// Canonical reduces text to its canonical form: Unicode NFKC, case folded,
// whitespace runs collapsed to single spaces, leading and trailing
// whitespace trimmed.
func Canonical(text string) string {
	folded := cases.Fold().String(norm.NFKC.String(text))
	return strings.Join(strings.Fields(folded), " ")
}

// Compute returns the hex SHA-256 digest identifying (canonical text, flags).
func Compute(text string, flags Flags) string {
	h := sha256.New()
	h.Write([]byte(Canonical(text)))
	h.Write([]byte{0, flagBits(flags)})
	return hex.EncodeToString(h.Sum(nil))
}

func flagBits(f Flags) byte {
	var b byte
	if f.CrossReference {
		b |= 1
	}
	if f.Explain {
		b |= 1 << 1
	}
	return b
}

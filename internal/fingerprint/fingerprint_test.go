package fingerprint_test

import (
	"testing"

	"github.com/nordlys-media/veracity/internal/fingerprint"
)

func TestCanonical(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "whitespace collapsed and trimmed",
			in:   "  Breaking\t\tNews:\n\nmoon  landing  ",
			want: "breaking news: moon landing",
		},
		{
			name: "case folded",
			in:   "BREAKING News",
			want: "breaking news",
		},
		{
			name: "compatibility forms normalized",
			in:   "ﬁnancial Ｒeport",
			want: "financial report",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fingerprint.Canonical(tt.in); got != tt.want {
				t.Errorf("Canonical(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCompute_StableAcrossFormatting(t *testing.T) {
	flags := fingerprint.Flags{CrossReference: true, Explain: true}

	a := fingerprint.Compute("The Moon is made of cheese", flags)
	b := fingerprint.Compute("  the   MOON is\nmade of cheese ", flags)
	if a != b {
		t.Errorf("fingerprints differ for equivalent texts: %s vs %s", a, b)
	}

	c := fingerprint.Compute("The Moon is made of rock", flags)
	if a == c {
		t.Error("fingerprints collide for different texts")
	}

	if len(a) != 64 {
		t.Errorf("fingerprint length = %d, want 64 hex chars", len(a))
	}
}

func TestCompute_FlagsChangeIdentity(t *testing.T) {
	text := "identical text"

	full := fingerprint.Compute(text, fingerprint.Flags{CrossReference: true, Explain: true})
	bare := fingerprint.Compute(text, fingerprint.Flags{})
	half := fingerprint.Compute(text, fingerprint.Flags{CrossReference: true})

	if full == bare || full == half || bare == half {
		t.Errorf("flag combinations must not share fingerprints: %s %s %s", full, bare, half)
	}
}

package model

import (
	"fmt"
	"math"
	"strings"
	"unicode"
)

// Vector is a sparse tf-idf document vector keyed by feature index.
type Vector map[int]float64

// Vectorizer maps raw text into the artifact's tf-idf feature space.
type Vectorizer struct {
	vocabulary  map[string]int
	idf         []float64
	stopWords   map[string]struct{}
	lowercase   bool
	sublinearTF bool
	l2          bool
}

func newVectorizer(a Artifact) (*Vectorizer, error) {
	if a.Norm != "" && a.Norm != "l2" {
		return nil, fmt.Errorf("%w: unknown norm %q", ErrDimensionMismatch, a.Norm)
	}
	stop := make(map[string]struct{}, len(a.StopWords))
	for _, w := range a.StopWords {
		stop[w] = struct{}{}
	}
	return &Vectorizer{
		vocabulary:  a.Vocabulary,
		idf:         a.IDF,
		stopWords:   stop,
		lowercase:   a.Lowercase,
		sublinearTF: a.SublinearTF,
		l2:          a.Norm == "l2",
	}, nil
}

// Tokenize splits text into word tokens of two or more letters, digits or
// underscores, lowercased when the artifact was trained lowercased. Stop
// words are dropped.
func (v *Vectorizer) Tokenize(text string) []string {
	if v.lowercase {
		text = strings.ToLower(text)
	}
	var tokens []string
	var b strings.Builder
	flush := func() {
		if b.Len() == 0 {
			return
		}
		tok := b.String()
		b.Reset()
		if len([]rune(tok)) < 2 {
			return
		}
		if _, stopped := v.stopWords[tok]; stopped {
			return
		}
		tokens = append(tokens, tok)
	}
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			b.WriteRune(r)
			continue
		}
		flush()
	}
	flush()
	return tokens
}

// Vectorize builds the sparse tf-idf vector for a document. Terms outside
// the training vocabulary are ignored; an empty vector means no token was
// recognized.
func (v *Vectorizer) Vectorize(text string) Vector {
	counts := make(map[int]float64)
	for _, tok := range v.Tokenize(text) {
		if idx, ok := v.vocabulary[tok]; ok {
			counts[idx]++
		}
	}
	if len(counts) == 0 {
		return Vector{}
	}

	vec := make(Vector, len(counts))
	for idx, tf := range counts {
		if v.sublinearTF {
			tf = 1 + math.Log(tf)
		}
		vec[idx] = tf * v.idf[idx]
	}
	if v.l2 {
		var sum float64
		for _, val := range vec {
			sum += val * val
		}
		if norm := math.Sqrt(sum); norm > 0 {
			for idx := range vec {
				vec[idx] /= norm
			}
		}
	}
	return vec
}

// Cosine returns the cosine similarity of two document vectors, 0 when
// either is empty.
func Cosine(a, b Vector) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	if len(b) < len(a) {
		a, b = b, a
	}
	var dot float64
	for idx, av := range a {
		if bv, ok := b[idx]; ok {
			dot += av * bv
		}
	}
	na := norm(a)
	nb := norm(b)
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (na * nb)
}

func norm(v Vector) float64 {
	var sum float64
	for _, val := range v {
		sum += val * val
	}
	return math.Sqrt(sum)
}

// Package crossref corroborates classified text against recent news
// headlines fetched from an external search provider.
package crossref

import (
	"strings"
	"unicode"

	ahocorasick "github.com/cloudflare/ahocorasick"
)

// Query bounds.
const (
	DefaultMaxTerms  = 8
	DefaultMaxLength = 256
	fallbackWords    = 5
)

// defaultBoilerplate lists clickbait and boilerplate phrases stripped from
// text before salient terms are extracted. Entries are matched against
// normalized text, so they must be lowercase with single spaces.
var defaultBoilerplate = []string{
	"you won t believe",
	"you will never guess",
	"what happens next",
	"number will shock you",
	"will shock you",
	"doctors hate",
	"this one trick",
	"one weird trick",
	"click here",
	"click the link",
	"read more",
	"find out more",
	"learn more",
	"share this article",
	"share this post",
	"like and subscribe",
	"subscribe to our newsletter",
	"sign up for our newsletter",
	"follow us on",
	"sponsored content",
	"sponsored post",
	"advertisement",
	"breaking news",
	"breaking",
	"exclusive",
	"must see",
	"must read",
	"watch the video",
	"watch video",
	"viral video",
	"goes viral",
	"all rights reserved",
	"terms of service",
	"privacy policy",
	"cookie policy",
	"opens in new tab",
	"continue reading",
}

// Tokenizer yields the salient tokens of a text. The model's vectorizer
// satisfies this, so queries share the artifact's stop-word list.
type Tokenizer interface {
	Tokenize(text string) []string
}

// QueryConfig bounds the generated search query.
type QueryConfig struct {
	MaxTerms  int      // salient terms kept
	MaxLength int      // query length cap in characters
	Phrases   []string // boilerplate to strip, defaults when empty
}

// QueryBuilder distills normalized article text into a short search query.
type QueryBuilder struct {
	matcher   *ahocorasick.Matcher
	phrases   []string
	tokenizer Tokenizer
	maxTerms  int
	maxLength int
}

// NewQueryBuilder builds the Aho-Corasick automaton over the boilerplate
// phrase list once; Build reuses it per request.
func NewQueryBuilder(tokenizer Tokenizer, cfg QueryConfig) *QueryBuilder {
	if cfg.MaxTerms <= 0 {
		cfg.MaxTerms = DefaultMaxTerms
	}
	if cfg.MaxLength <= 0 {
		cfg.MaxLength = DefaultMaxLength
	}
	raw := cfg.Phrases
	if len(raw) == 0 {
		raw = defaultBoilerplate
	}

	phrases := make([]string, 0, len(raw))
	for _, p := range raw {
		if normalized := strings.Join(strings.Fields(normalizeText(p)), " "); normalized != "" {
			phrases = append(phrases, normalized)
		}
	}

	b := &QueryBuilder{
		phrases:   phrases,
		tokenizer: tokenizer,
		maxTerms:  cfg.MaxTerms,
		maxLength: cfg.MaxLength,
	}
	if len(phrases) > 0 {
		b.matcher = ahocorasick.NewStringMatcher(phrases)
	}
	return b
}

// Build returns the search query for a normalized article text: boilerplate
// stripped, first salient terms joined, capped in length. When stripping
// leaves nothing recognizable, the first words of the original text are
// used instead.
func (b *QueryBuilder) Build(text string) string {
	cleaned := b.strip(normalizeText(text))
	terms := b.salientTerms(cleaned)
	if len(terms) == 0 {
		terms = firstWords(text, fallbackWords)
	}
	return capLength(strings.Join(terms, " "), b.maxLength)
}

// strip removes every boilerplate phrase that occurs in the text. The
// matcher reports which phrases are present in one pass; only those get
// replaced.
func (b *QueryBuilder) strip(text string) string {
	if b.matcher == nil {
		return text
	}
	for _, idx := range b.matcher.Match([]byte(text)) {
		if idx < len(b.phrases) {
			text = strings.ReplaceAll(text, b.phrases[idx], " ")
		}
	}
	return text
}

func (b *QueryBuilder) salientTerms(text string) []string {
	seen := make(map[string]struct{}, b.maxTerms)
	terms := make([]string, 0, b.maxTerms)
	for _, tok := range b.tokenizer.Tokenize(text) {
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		terms = append(terms, tok)
		if len(terms) == b.maxTerms {
			break
		}
	}
	return terms
}

func firstWords(text string, n int) []string {
	words := strings.Fields(text)
	if len(words) > n {
		words = words[:n]
	}
	return words
}

func capLength(q string, maxChars int) string {
	runes := []rune(q)
	if len(runes) <= maxChars {
		return q
	}
	q = string(runes[:maxChars])
	if cut := strings.LastIndex(q, " "); cut > 0 {
		q = q[:cut]
	}
	return q
}

func normalizeText(text string) string {
	text = strings.ToLower(text)

	var result strings.Builder
	result.Grow(len(text))
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			result.WriteRune(r)
		} else {
			result.WriteByte(' ')
		}
	}
	return result.String()
}

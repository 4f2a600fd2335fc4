package entity

import (
	"strings"
	"unicode"
)

// defaultWordAliases maps known misspellings and variants onto dictionary keys.
var defaultWordAliases = map[string]string{
	"conforming": "confirming",
}

// hyphenReplacer removes the hyphen variants seen in submitted words along with spaces.
var hyphenReplacer = strings.NewReplacer(
	"‑", "", // non-breaking hyphen
	"–", "", // en dash
	"—", "", // em dash
	"-", "",
	" ", "",
)

// WordNormalizer canonicalizes free-text words into dictionary keys.
type WordNormalizer struct {
	aliases map[string]string
}

// NewWordNormalizer returns a normalizer using the built-in alias table extended by extra.
// Keys and values of extra are cleaned the same way as input words.
func NewWordNormalizer(extra map[string]string) *WordNormalizer {
	aliases := make(map[string]string, len(defaultWordAliases)+len(extra))
	for from, to := range defaultWordAliases {
		aliases[from] = to
	}
	for from, to := range extra {
		key := cleanWord(from)
		if key == "" {
			continue
		}
		aliases[key] = cleanWord(to)
	}
	return &WordNormalizer{aliases: aliases}
}

// Normalize trims, lowercases and strips everything but letters, then applies aliases.
// It never fails; the result may be empty.
func (n *WordNormalizer) Normalize(raw string) string {
	word := cleanWord(raw)
	if word == "" {
		return ""
	}
	if n != nil {
		if alias, ok := n.aliases[word]; ok {
			return alias
		}
		return word
	}
	if alias, ok := defaultWordAliases[word]; ok {
		return alias
	}
	return word
}

var defaultNormalizer = NewWordNormalizer(nil)

// NormalizeWord normalizes raw with the built-in alias table.
func NormalizeWord(raw string) string {
	return defaultNormalizer.Normalize(raw)
}

func cleanWord(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	lowered := hyphenReplacer.Replace(strings.ToLower(trimmed))
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) {
			return r
		}
		return -1
	}, lowered)
}

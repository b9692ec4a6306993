package reflectutil

import (
	"strings"
	"unicode"
)

// NormalizeKey collapses camelCase, snake_case, and kebab-case spellings of a
// key into one canonical lower-snake form, so "firstName", "first_name", and
// "first-name" all normalize to "first_name".
func NormalizeKey(key string) string {
	tokens := Tokens(key)
	if len(tokens) == 0 {
		return ""
	}
	return strings.Join(tokens, "_")
}

// Tokens splits a key into lowercase word tokens at underscore, dash, dot,
// space, and camel-case boundaries. Consecutive uppercase runs stay together
// so "HTTPPort" tokenizes as ["http", "port"].
func Tokens(key string) []string {
	var tokens []string
	var current []rune

	flush := func() {
		if len(current) == 0 {
			return
		}
		tokens = append(tokens, strings.ToLower(string(current)))
		current = current[:0]
	}

	runes := []rune(key)
	for i, r := range runes {
		switch {
		case r == '_' || r == '-' || r == '.' || r == ' ':
			flush()
		case unicode.IsUpper(r):
			prevLower := i > 0 && unicode.IsLower(runes[i-1])
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if prevLower || (len(current) > 0 && nextLower) {
				flush()
			}
			current = append(current, r)
		default:
			current = append(current, r)
		}
	}
	flush()
	return tokens
}

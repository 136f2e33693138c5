// Package tokenize implements the single tokenizer shared by the BM25 text index and the
// TF-IDF similarity index, so the same surface token identity is used on both sides of a
// query.
package tokenize

import "unicode"

// Tokenize splits text on non-alphanumeric characters and on camelCase/snake_case/
// kebab-case boundaries, lowercases the result, and drops tokens shorter than two
// characters. Stop-words are retained; there is no stemming, so scoring is always over the
// exact surface token.
func Tokenize(text string) []string {
	runes := []rune(text)
	var tokens []string
	var cur []rune
	var prev rune // last original (pre-lowercasing) rune appended to cur, 0 if cur is empty

	flush := func() {
		if len(cur) >= 2 {
			tokens = append(tokens, string(cur))
		}
		cur = cur[:0]
		prev = 0
	}

	for i, r := range runes {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			flush()
			continue
		}

		if len(cur) > 0 {
			boundary := false
			// camelCase boundary: lower/digit followed by upper.
			if unicode.IsUpper(r) && (unicode.IsLower(prev) || unicode.IsDigit(prev)) {
				boundary = true
			}
			// Acronym-to-word boundary: "HTTPServer" -> "HTTP", "Server".
			if unicode.IsUpper(r) && unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1]) {
				boundary = true
			}
			if boundary {
				flush()
			}
		}

		cur = append(cur, unicode.ToLower(r))
		prev = r
	}
	flush()

	return tokens
}

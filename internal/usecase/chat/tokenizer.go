package chat

import (
	"strings"
	"unicode"
)

// Tokenize splits text into alternating word and whitespace runs. Joining
// the tokens gives back text unchanged, and no token is empty.
func Tokenize(text string) []string {
	if text == "" {
		return nil
	}

	var (
		tokens  []string
		start   int
		inSpace bool
	)
	for i, r := range text {
		space := unicode.IsSpace(r)
		if i == 0 {
			inSpace = space
			continue
		}
		if space != inSpace {
			tokens = append(tokens, text[start:i])
			start = i
			inSpace = space
		}
	}
	return append(tokens, text[start:])
}

// accumulate returns the running concatenation after each token.
func accumulate(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	var b strings.Builder
	for _, tok := range tokens {
		b.WriteString(tok)
		out = append(out, b.String())
	}
	return out
}

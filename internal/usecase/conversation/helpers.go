package conversation

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/webchat/chat-relay/internal/entity"
)

const (
	titleWords    = 4
	titleMaxRunes = 40
	titleCutRunes = 37
)

// GenerateTitle builds a conversation title from the first user message: the
// first four space-separated words with the first letter upper-cased, "..."
// when the message was longer, cut to 37 runes plus "..." past 40 runes.
func GenerateTitle(message string) string {
	clean := strings.TrimSpace(message)
	if clean == "" {
		return entity.DefaultConversationTitle
	}

	words := strings.Split(clean, " ")
	title := strings.Join(words[:min(len(words), titleWords)], " ")

	r, size := utf8.DecodeRuneInString(title)
	title = string(unicode.ToUpper(r)) + title[size:]

	if len(words) > titleWords {
		title += "..."
	}

	if utf8.RuneCountInString(title) > titleMaxRunes {
		title = string([]rune(title)[:titleCutRunes]) + "..."
	}

	return title
}

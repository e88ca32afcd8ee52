package service

import (
	"html"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

var announcePolicy = bluemonday.StrictPolicy().AddSpaceWhenStrippingTag(true)

// Announce strips markup from text and cuts it to at most limit runes.
func Announce(text string, limit int) string {
	plain := html.UnescapeString(announcePolicy.Sanitize(text))
	plain = strings.Join(strings.Fields(plain), " ")

	if limit <= 0 || utf8.RuneCountInString(plain) <= limit {
		return plain
	}

	runes := []rune(plain)
	return strings.TrimSpace(string(runes[:limit]))
}

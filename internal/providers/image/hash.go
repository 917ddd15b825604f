package image

import (
	"net/url"
	"strings"
	"unicode/utf16"
)

// Hash is the 32-bit rolling hash (h = h*31 + c) over the UTF-16 code units of
// s. Overflow wraps, so results can be negative.
func Hash(s string) int32 {
	var h int32
	for _, c := range utf16.Encode([]rune(s)) {
		h = (h << 5) - h + int32(c)
	}
	return h
}

var componentUnescaper = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// EncodeURIComponent escapes s for use as a single URL path or query
// component. Only A-Z a-z 0-9 and -_.!~*'() are left as is.
func EncodeURIComponent(s string) string {
	return componentUnescaper.Replace(url.QueryEscape(s))
}

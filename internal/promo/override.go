package promo

import (
	"regexp"
	"strings"
)

var handlePattern = regexp.MustCompile(`@([a-zA-Z0-9._-]+)`)

// firstHandle returns the first @mention in the caption, without the "@",
// or "" when there is none.
func firstHandle(caption string) string {
	m := handlePattern.FindStringSubmatch(caption)
	if m == nil {
		return ""
	}
	return m[1]
}

// brandFromHandle turns a raw mention into a display name: separator runs
// become spaces and each word is title-cased, so "acme_co" reads "Acme Co".
func brandFromHandle(handle string) string {
	words := strings.FieldsFunc(handle, func(r rune) bool {
		return r == '.' || r == '_' || r == '-'
	})
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}

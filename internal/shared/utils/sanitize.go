package utils

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	stripAllTags   = bluemonday.StrictPolicy()
	percentOctets  = regexp.MustCompile(`%[a-fA-F0-9]{2}`)
	whitespaceRuns = regexp.MustCompile(`[\r\n\t ]+`)
	angleEscaper   = strings.NewReplacer("<", "&lt;", ">", "&gt;")
)

// SanitizeText reduces untrusted input to a single line of plain text:
// markup is stripped, stray angle brackets are escaped, percent-encoded
// octets and control whitespace are removed and the result is trimmed.
func SanitizeText(s string) string {
	if s == "" {
		return ""
	}

	s = strings.ToValidUTF8(s, "")
	s = html.UnescapeString(stripAllTags.Sanitize(s))
	s = angleEscaper.Replace(s)
	s = percentOctets.ReplaceAllString(s, "")
	s = whitespaceRuns.ReplaceAllString(s, " ")

	return strings.TrimSpace(s)
}

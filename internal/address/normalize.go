// Package address canonicalizes free-text street addresses and tags them into
// structured components for comparison.
package address

import (
	"database/sql"
	"regexp"
	"strings"
	"unicode"
)

// reDirectionalSuffix finds a house number glued to a directional ("123N").
var reDirectionalSuffix = regexp.MustCompile(`([0-9]+)([NSWE]{1,2})\b`)

// Normalize uppercases an address, splits "123N" into "123 N", turns
// punctuation into spaces and collapses whitespace. An absent address
// normalizes to the empty string.
func Normalize(addr sql.NullString) string {
	if !addr.Valid {
		return ""
	}
	return NormalizeString(addr.String)
}

// NormalizeString is Normalize for a present value.
func NormalizeString(s string) string {
	s = strings.ToUpper(s)
	s = reDirectionalSuffix.ReplaceAllString(s, "$1 $2")

	b := strings.Builder{}
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

package effects

import (
	"regexp"
	"strings"
	"unicode"
)

var spaceRun = regexp.MustCompile(`\s+`)

// sanitize cleans up artifacts the generator commonly introduces before
// any parsing is attempted: control characters are removed, whitespace
// runs collapse to a single space and double-escaped quotes are folded
// back to a single escape.
func sanitize(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		switch {
		case r == '\n' || r == '\r' || r == '\t':
			b.WriteRune(' ')
		case unicode.IsControl(r):
			// dropped
		default:
			b.WriteRune(r)
		}
	}
	s := spaceRun.ReplaceAllString(b.String(), " ")
	s = strings.ReplaceAll(s, `\\"`, `\"`)
	return strings.TrimSpace(s)
}

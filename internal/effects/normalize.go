package effects

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/rkwai/rag-system/internal/model"
)

var identDisallowed = regexp.MustCompile(`[^a-z0-9_-]+`)

// normalizeEffect canonicalizes a validated effect: identifier fields
// are lowercased and restricted to [a-z0-9_-], free-text payload fields
// keep their case but lose non-printable characters.
func normalizeEffect(eff model.Effect) model.Effect {
	switch e := eff.(type) {
	case model.ItemEffect:
		e.Name = normalizeIdentifier(e.Name)
		for k, v := range e.Properties {
			if s, ok := v.(string); ok {
				e.Properties[k] = stripNonPrintable(s)
			}
		}
		return e
	case model.LocationEffect:
		e.Name = normalizeIdentifier(e.Name)
		return e
	case model.QuestEffect:
		e.Name = normalizeIdentifier(e.Name)
		e.Description = stripNonPrintable(e.Description)
		return e
	case model.StatusEffect:
		e.Name = normalizeIdentifier(e.Name)
		return e
	case model.AttributeEffect:
		e.Name = normalizeIdentifier(e.Name)
		return e
	default:
		return eff
	}
}

// normalizeIdentifier is idempotent: applying it to its own output is a
// no-op.
func normalizeIdentifier(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = identDisallowed.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}

func stripNonPrintable(s string) string {
	return strings.Map(func(r rune) rune {
		if !unicode.IsPrint(r) {
			return -1
		}
		return r
	}, s)
}

// Package effects turns raw narrative-generator output into validated,
// typed game effects. The generator is prompted for a JSON array of
// effects but routinely wraps it in prose, control characters or broken
// escaping, so extraction is built to degrade instead of fail: parse
// failures yield an empty list and individually invalid effects are
// dropped while their siblings survive.
package effects

import (
	"encoding/json"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/rkwai/rag-system/internal/model"
)

// Pipeline extracts effects from generator text. Safe for concurrent use.
type Pipeline struct {
	log zerolog.Logger
}

func NewPipeline(log zerolog.Logger) *Pipeline {
	return &Pipeline{log: log.With().Str("component", "effects").Logger()}
}

// Extract parses raw generator text into the effects it describes.
// It never returns an error: unrecoverable text produces an empty list
// and malformed candidate records are dropped one by one.
func (p *Pipeline) Extract(raw string) []model.Effect {
	candidates := p.recoverRecords(sanitize(raw))
	out := make([]model.Effect, 0, len(candidates))
	for i, rec := range candidates {
		eff, err := buildEffect(rec)
		if err != nil {
			p.log.Debug().Err(err).Int("index", i).Msg("dropping invalid effect")
			continue
		}
		out = append(out, normalizeEffect(eff))
	}
	return out
}

// recoverRecords parses sanitized text into candidate effect records.
// It tries the whole text first, then falls back to the first balanced
// top-level array or object found by bracket matching.
func (p *Pipeline) recoverRecords(text string) []map[string]interface{} {
	if recs, ok := tryParse(text); ok {
		return recs
	}
	if sub, ok := firstStructure(text); ok {
		if recs, ok := tryParse(sub); ok {
			return recs
		}
	}
	if strings.TrimSpace(text) != "" {
		p.log.Warn().Str("text", truncate(text, 200)).Msg("generator output not recoverable as effects")
	}
	return nil
}

// tryParse decodes s as either a JSON array of records or a single
// record. Non-object array elements are skipped.
func tryParse(s string) ([]map[string]interface{}, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, false
	}
	switch s[0] {
	case '[':
		var arr []interface{}
		if err := json.Unmarshal([]byte(s), &arr); err != nil {
			return nil, false
		}
		recs := make([]map[string]interface{}, 0, len(arr))
		for _, el := range arr {
			if m, ok := el.(map[string]interface{}); ok {
				recs = append(recs, m)
			}
		}
		return recs, true
	case '{':
		var obj map[string]interface{}
		if err := json.Unmarshal([]byte(s), &obj); err != nil {
			return nil, false
		}
		return []map[string]interface{}{obj}, true
	default:
		return nil, false
	}
}

// firstStructure returns the first balanced top-level array or object
// in s. Brackets inside string literals are ignored.
func firstStructure(s string) (string, bool) {
	start := strings.IndexAny(s, "[{")
	if start < 0 {
		return "", false
	}
	open := s[start]
	var close byte = ']'
	if open == '{' {
		close = '}'
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}

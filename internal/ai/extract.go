package ai

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// LLM output rarely arrives as clean JSON. The extractor tries three
// stages in order: the raw text as-is, the contents of a fenced code
// block, and finally the first balanced JSON span found by scanning.
// Each candidate is sanitized for the deviations local models produce
// most often before being unmarshalled.

var (
	fencedBlockRe   = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")
	plusNumberRe    = regexp.MustCompile(`:\s*\+(\d)`)
	trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)
	blockCommentRe  = regexp.MustCompile(`(?s)/\*.*?\*/`)
)

// Extract parses a value of type T out of raw model output. It returns
// ErrNoJSONFound (wrapped) when no stage yields text that unmarshals
// into T.
func Extract[T any](raw string) (T, error) {
	var zero T

	var lastErr error
	for _, candidate := range candidates(raw) {
		cleaned := sanitize(candidate)
		var out T
		if err := json.Unmarshal([]byte(cleaned), &out); err != nil {
			lastErr = err
			continue
		}
		return out, nil
	}

	if lastErr != nil {
		return zero, fmt.Errorf("%w: %v", ErrNoJSONFound, lastErr)
	}
	return zero, ErrNoJSONFound
}

func candidates(raw string) []string {
	out := []string{strings.TrimSpace(raw)}
	if m := fencedBlockRe.FindStringSubmatch(raw); m != nil {
		out = append(out, strings.TrimSpace(m[1]))
	}
	if span := balancedSpan(raw); span != "" {
		out = append(out, span)
	}
	return out
}

// balancedSpan returns the first {...} or [...] region whose brackets
// balance, tracking string literals so braces inside values do not
// terminate the scan early.
func balancedSpan(raw string) string {
	start := -1
	var open, close byte
	for i := 0; i < len(raw); i++ {
		if raw[i] == '{' {
			start, open, close = i, '{', '}'
			break
		}
		if raw[i] == '[' {
			start, open, close = i, '[', ']'
			break
		}
	}
	if start == -1 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(raw); i++ {
		c := raw[i]
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
				return raw[start : i+1]
			}
		}
	}
	return ""
}

// stripLineComments removes // comments up to end of line, tracking
// string literals so slashes inside values ("http://...") survive.
func stripLineComments(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
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
			b.WriteByte(c)
			continue
		}
		if c == '"' {
			inString = true
			b.WriteByte(c)
			continue
		}
		if c == '/' && i+1 < len(s) && s[i+1] == '/' {
			for i < len(s) && s[i] != '\n' {
				i++
			}
			if i < len(s) {
				b.WriteByte('\n')
			}
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// sanitize fixes the malformations that still parse unambiguously:
// numbers written with a leading +, trailing commas, and // or block
// comments.
func sanitize(s string) string {
	s = stripLineComments(s)
	s = blockCommentRe.ReplaceAllString(s, "")
	s = plusNumberRe.ReplaceAllString(s, ": $1")
	s = trailingCommaRe.ReplaceAllString(s, "$1")
	return strings.TrimSpace(s)
}

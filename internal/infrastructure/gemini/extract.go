package gemini

import (
	"regexp"
	"strings"
)

var (
	boldPattern    = regexp.MustCompile(`\*\*`)
	italicPattern  = regexp.MustCompile(`\*`)
	headingPattern = regexp.MustCompile(`#{1,6}\s`)
)

// StripMarkdown removes the markdown the model tends to emit despite the
// plain-text instruction.
func StripMarkdown(text string) string {
	text = boldPattern.ReplaceAllString(text, "")
	text = italicPattern.ReplaceAllString(text, "")
	text = headingPattern.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// ExtractJSON returns the first balanced top-level {...} substring of a
// model reply, skipping braces inside JSON strings. Replies often wrap
// the object in prose or code fences.
func ExtractJSON(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		ch := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}

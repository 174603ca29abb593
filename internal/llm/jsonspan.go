package llm

import (
	"errors"
	"regexp"
	"strings"
)

// ErrInvalidOutput marks a model response from which no parseable JSON
// payload could be recovered, even after repair.
var ErrInvalidOutput = errors.New("invalid model output")

// FirstObject returns the first balanced {...} span in s.
func FirstObject(s string) (string, bool) {
	return firstBalanced(s, '{', '}')
}

// FirstArray returns the first balanced [...] span in s.
func FirstArray(s string) (string, bool) {
	return firstBalanced(s, '[', ']')
}

// firstBalanced scans for the first balanced span delimited by open/close,
// skipping delimiters that appear inside JSON string literals.
func firstBalanced(s string, open, close byte) (string, bool) {
	start := -1
	depth := 0
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
			continue
		}

		switch c {
		case '"':
			if depth > 0 {
				inString = true
			}
		case open:
			if depth == 0 {
				start = i
			}
			depth++
		case close:
			if depth > 0 {
				depth--
				if depth == 0 {
					return s[start : i+1], true
				}
			}
		}
	}

	return "", false
}

var (
	codeFenceRegex     = regexp.MustCompile("(?s)```(?:json)?\n?(.*?)```")
	trailingCommaRegex = regexp.MustCompile(`,\s*([}\]])`)
)

var smartQuoteReplacer = strings.NewReplacer(
	"“", `"`,
	"”", `"`,
	"‘", "'",
	"’", "'",
)

// Repair applies a best-effort cleanup pass to a JSON candidate that failed
// to parse: markdown fences, smart quotes, trailing commas, and missing
// closers from truncated output.
func Repair(s string) string {
	if m := codeFenceRegex.FindStringSubmatch(s); len(m) >= 2 {
		s = m[1]
	}

	s = smartQuoteReplacer.Replace(s)
	s = trailingCommaRegex.ReplaceAllString(s, "$1")
	s = strings.TrimSpace(s)
	s = closeTruncated(s)

	return s
}

// closeTruncated appends closers for any containers left open, typically the
// result of the model hitting its token limit mid-payload. A dangling string
// literal is closed first.
func closeTruncated(s string) string {
	var stack []byte
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
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			stack = append(stack, '}')
		case '[':
			stack = append(stack, ']')
		case '}', ']':
			if len(stack) > 0 && stack[len(stack)-1] == c {
				stack = stack[:len(stack)-1]
			}
		}
	}

	if inString {
		s += `"`
	}
	s = strings.TrimRight(s, ", \n\t")
	for i := len(stack) - 1; i >= 0; i-- {
		s += string(stack[i])
	}

	return s
}

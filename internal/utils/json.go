// Package utils holds helpers for coping with model output.
package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrNoJSONObject is returned when a reply holds no '{'.
var ErrNoJSONObject = errors.New("no JSON object found in reply")

// Repairs for the mistakes small local models make most often.
// They do not understand escaped quotes inside single-quoted strings.
var (
	// "a": "x"\n"b": -> "a": "x",\n"b":
	missingCommaBeforeKeyRegex = regexp.MustCompile(`(")\s*\n\s*("[\w][^"]*"\s*:)`)

	// "a": 0.9\n"b": -> "a": 0.9,\n"b":
	missingCommaAfterValueRegex = regexp.MustCompile(`(\d|true|false|null)\s*\n\s*("[\w][^"]*"\s*:)`)

	// {"a": 1,} -> {"a": 1}
	trailingCommaRegex = regexp.MustCompile(`,\s*([}\]])`)

	// {'a': -> {"a":
	singleQuoteKeyRegex = regexp.MustCompile(`([{,]\s*)'([\w ]+)'(\s*:)`)

	// : 'x' -> : "x"
	singleQuoteValueRegex = regexp.MustCompile(`(:\s*)'((?:[^'\\]|\\.)*)'(\s*[,}\]])`)

	// : high} -> : "high"}
	unquotedValueRegex = regexp.MustCompile(`(:\s*)([a-zA-Z][a-zA-Z0-9_-]*)(\s*[,}\]])`)
)

// ExtractJSONObject pulls the first JSON object out of a model reply and
// decodes it into T. Markdown fences, leading prose and trailing text are
// ignored, and common syntax slips are repaired before giving up.
func ExtractJSONObject[T any](reply string) (T, error) {
	var result T

	cleaned := stripFences(reply)
	if strings.HasPrefix(cleaned, `"`) {
		// A reply that is itself a quoted JSON string.
		var inner string
		if err := json.Unmarshal([]byte(cleaned), &inner); err == nil {
			return ExtractJSONObject[T](inner)
		}
	}
	idx := strings.IndexByte(cleaned, '{')
	if idx == -1 {
		return result, ErrNoJSONObject
	}

	candidate := cleaned[idx:]
	err := json.NewDecoder(strings.NewReader(candidate)).Decode(&result)
	if err == nil {
		return result, nil
	}

	repaired := repairJSON(candidate)
	if repaired != candidate {
		var again T
		if err2 := json.NewDecoder(strings.NewReader(repaired)).Decode(&again); err2 == nil {
			return again, nil
		}
	}
	return result, fmt.Errorf("parse JSON: %w", err)
}

func repairJSON(input string) string {
	out := sanitizeControlChars(input)
	out = missingCommaBeforeKeyRegex.ReplaceAllString(out, `$1, $2`)
	out = missingCommaAfterValueRegex.ReplaceAllString(out, `$1, $2`)
	out = trailingCommaRegex.ReplaceAllString(out, `$1`)
	out = singleQuoteKeyRegex.ReplaceAllString(out, `$1"$2"$3`)

	out = singleQuoteValueRegex.ReplaceAllStringFunc(out, func(match string) string {
		parts := singleQuoteValueRegex.FindStringSubmatch(match)
		if len(parts) != 4 {
			return match
		}
		value := strings.ReplaceAll(parts[2], `\'`, `'`)
		value = strings.ReplaceAll(value, `"`, `\"`)
		return parts[1] + `"` + value + `"` + parts[3]
	})

	out = unquotedValueRegex.ReplaceAllStringFunc(out, func(match string) string {
		parts := unquotedValueRegex.FindStringSubmatch(match)
		if len(parts) != 4 {
			return match
		}
		switch parts[2] {
		case "true", "false", "null":
			return match
		}
		return parts[1] + `"` + parts[2] + `"` + parts[3]
	})

	return closeTruncated(out)
}

// sanitizeControlChars escapes raw control characters inside JSON strings.
func sanitizeControlChars(input string) string {
	var sb strings.Builder
	sb.Grow(len(input))

	inString, escaped := false, false
	for i := 0; i < len(input); i++ {
		c := input[i]
		switch {
		case escaped:
			escaped = false
			sb.WriteByte(c)
		case c == '\\' && inString:
			escaped = true
			sb.WriteByte(c)
		case c == '"':
			inString = !inString
			sb.WriteByte(c)
		case inString && c == '\n':
			sb.WriteString(`\n`)
		case inString && c == '\r':
			sb.WriteString(`\r`)
		case inString && c == '\t':
			sb.WriteString(`\t`)
		case inString && c < 0x20:
			fmt.Fprintf(&sb, `\u%04x`, c)
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

// closeTruncated terminates an unfinished string and balances braces.
func closeTruncated(input string) string {
	quotes, escaped := 0, false
	for _, c := range input {
		switch {
		case escaped:
			escaped = false
		case c == '\\':
			escaped = true
		case c == '"':
			quotes++
		}
	}
	if quotes%2 != 0 {
		input += `"`
	}
	if n := strings.Count(input, "[") - strings.Count(input, "]"); n > 0 {
		input += strings.Repeat("]", n)
	}
	if n := strings.Count(input, "{") - strings.Count(input, "}"); n > 0 {
		input += strings.Repeat("}", n)
	}
	return input
}

func stripFences(reply string) string {
	s := strings.TrimSpace(reply)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

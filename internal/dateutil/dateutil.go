// Package dateutil resolves the "auto" date placeholders accepted in note
// header blocks and in the config file.
package dateutil

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidDateFormat indicates an invalid date format string.
var ErrInvalidDateFormat = errors.New("invalid date format")

// MaxDateFormatLength limits format string length to prevent abuse.
const MaxDateFormatLength = 50

// DefaultDateFormat is used when "auto" is specified without a format.
const DefaultDateFormat = "YYYY-MM-DD"

// Ordered by length descending for greedy matching.
var dateTokens = []struct {
	token string
	goFmt string
}{
	{"YYYY", "2006"},
	{"MMMM", "January"},
	{"MMM", "Jan"},
	{"YY", "06"},
	{"MM", "01"},
	{"DD", "02"},
	{"M", "1"},
	{"D", "2"},
}

// DatePresets provides named shortcuts for common date formats.
var DatePresets = map[string]string{
	"iso":      "YYYY-MM-DD",
	"european": "DD/MM/YYYY",
	"us":       "MM/DD/YYYY",
	"long":     "MMMM D, YYYY",
}

// ParseDateFormat converts a user-friendly format string to Go's time format.
// Tokens: YYYY, YY, MMMM, MMM, MM, M, DD, D. Text inside brackets is kept
// literally ("[Week of] D" -> "Week of 2"), as is any non-token character.
func ParseDateFormat(format string) (string, error) {
	if format == "" {
		return "", fmt.Errorf("%w: format cannot be empty", ErrInvalidDateFormat)
	}
	if len(format) > MaxDateFormatLength {
		return "", fmt.Errorf("%w: format exceeds %d characters", ErrInvalidDateFormat, MaxDateFormatLength)
	}

	var b strings.Builder
	b.Grow(len(format) + 10)

	for i := 0; i < len(format); {
		if format[i] == '[' {
			end := strings.IndexByte(format[i+1:], ']')
			if end == -1 {
				return "", fmt.Errorf("%w: unclosed bracket at position %d", ErrInvalidDateFormat, i)
			}
			b.WriteString(format[i+1 : i+1+end])
			i += end + 2
			continue
		}
		if tok, goFmt, ok := matchToken(format[i:]); ok {
			b.WriteString(goFmt)
			i += len(tok)
			continue
		}
		b.WriteByte(format[i])
		i++
	}

	return b.String(), nil
}

func matchToken(s string) (token, goFmt string, ok bool) {
	for _, t := range dateTokens {
		if strings.HasPrefix(s, t.token) {
			return t.token, t.goFmt, true
		}
	}
	return "", "", false
}

// IsAuto reports whether value asks for the current date.
func IsAuto(value string) bool {
	lower := strings.ToLower(strings.TrimSpace(value))
	return lower == "auto" || strings.HasPrefix(lower, "auto:")
}

// ResolveDate formats t when value is "auto" or "auto:FORMAT" (FORMAT being
// tokens or a preset name: iso, european, us, long). Every other value is
// returned unchanged: header dates are free text.
func ResolveDate(value string, t time.Time) (string, error) {
	if !IsAuto(value) {
		return value, nil
	}

	trimmed := strings.TrimSpace(value)
	format := DefaultDateFormat
	if len(trimmed) > len("auto") {
		format = trimmed[len("auto:"):]
		if format == "" {
			return "", fmt.Errorf("%w: format cannot be empty after \"auto:\"", ErrInvalidDateFormat)
		}
		if preset, ok := DatePresets[strings.ToLower(format)]; ok {
			format = preset
		}
	}

	goFmt, err := ParseDateFormat(format)
	if err != nil {
		return "", err
	}
	return t.Format(goFmt), nil
}

package classifier

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/yosuke-furukawa/json5/encoding/json5"
)

var ErrNoJSON = errors.New("no JSON value found in response")

// ExtractJSON returns the first well-formed JSON object or array in text.
// Braces inside string literals are ignored. Prose before and after the
// value, as well as markdown code fences, are discarded.
func ExtractJSON(text string) (string, error) {
	for _, raw := range jsonRegions(text) {
		var v any
		if decodeRegion(raw, &v) == nil {
			return raw, nil
		}
	}
	return "", ErrNoJSON
}

// jsonRegions returns every balanced bracket region of text in order of its
// opening bracket. Regions may overlap when one nests inside another.
func jsonRegions(text string) []string {
	var regions []string
	for start := 0; start < len(text); start++ {
		if text[start] != '{' && text[start] != '[' {
			continue
		}
		if end := matchClosing(text, start); end > 0 {
			regions = append(regions, text[start:end])
		}
	}
	return regions
}

func matchClosing(text string, start int) int {
	var stack []byte
	inString := false
	escaped := false
	var quote byte

	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == quote:
				inString = false
			}
			continue
		}

		switch c {
		case '"', '\'':
			inString = true
			quote = c
		case '{':
			stack = append(stack, '}')
		case '[':
			stack = append(stack, ']')
		case '}', ']':
			if len(stack) == 0 || stack[len(stack)-1] != c {
				return -1
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return i + 1
			}
		}
	}
	return -1
}

// DecodeJSON decodes the first region of text that fits v. Regions that are
// not JSON, or do not match the shape of v, are skipped. v must be a
// non-nil pointer.
func DecodeJSON(text string, v any) error {
	target := reflect.ValueOf(v)
	if target.Kind() != reflect.Pointer || target.IsNil() {
		return fmt.Errorf("decode target must be a non-nil pointer, got %T", v)
	}

	regions := jsonRegions(text)
	if len(regions) == 0 {
		return ErrNoJSON
	}

	var firstErr error
	for _, raw := range regions {
		fresh := reflect.New(target.Elem().Type())
		err := decodeRegion(raw, fresh.Interface())
		if err == nil {
			target.Elem().Set(fresh.Elem())
			return nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// decodeRegion tries strict JSON first, then JSON5 with single-quoted
// strings rewritten to double quotes.
func decodeRegion(raw string, v any) error {
	strictErr := json.Unmarshal([]byte(raw), v)
	if strictErr == nil {
		return nil
	}
	if err := json5.Unmarshal([]byte(normalizeQuotes(raw)), v); err != nil {
		return fmt.Errorf("failed to decode response: %w", strictErr)
	}
	return nil
}

// normalizeQuotes rewrites 'single quoted' strings as "double quoted" ones.
// Double-quoted strings are copied unchanged.
func normalizeQuotes(raw string) string {
	if !strings.ContainsRune(raw, '\'') {
		return raw
	}

	var b strings.Builder
	b.Grow(len(raw))

	var quote byte
	escaped := false
	for i := 0; i < len(raw); i++ {
		c := raw[i]

		if quote == 0 {
			if c == '"' || c == '\'' {
				quote = c
				b.WriteByte('"')
				continue
			}
			b.WriteByte(c)
			continue
		}

		switch {
		case escaped:
			escaped = false
			if quote == '\'' && c == '\'' {
				b.WriteByte('\'')
				continue
			}
			b.WriteByte('\\')
			b.WriteByte(c)
		case c == '\\':
			escaped = true
		case c == quote:
			quote = 0
			b.WriteByte('"')
		case c == '"':
			b.WriteString(`\"`)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// flexFloat accepts both 0.8 and "0.8".
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"'`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid number %q: %w", s, err)
	}
	*f = flexFloat(v)
	return nil
}

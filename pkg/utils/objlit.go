package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// ParseObjectLiteral parses a flat JS-object-literal string such as
//
//	{token: 'abc', engine:"live", _: now(), retry: 3}
//
// into a string map. Keys may be bare, single-quoted or double-quoted;
// values may be quoted strings, bare number/word tokens, or a now()
// placeholder which resolves to the current unix-millisecond timestamp.
// This replaces the script-evaluator fallback the site's own pages rely
// on; nested objects and arrays are rejected.
func ParseObjectLiteral(text string) (map[string]string, error) {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "{") || !strings.HasSuffix(s, "}") {
		return nil, fmt.Errorf("not an object literal")
	}
	s = s[1 : len(s)-1]

	result := make(map[string]string)
	pos := 0

	for {
		pos = skipSpace(s, pos)
		if pos >= len(s) {
			break
		}

		key, next, err := readKey(s, pos)
		if err != nil {
			return nil, err
		}
		pos = skipSpace(s, next)

		if pos >= len(s) || s[pos] != ':' {
			return nil, fmt.Errorf("expected ':' after key %q", key)
		}
		pos = skipSpace(s, pos+1)

		value, next, err := readValue(s, pos)
		if err != nil {
			return nil, fmt.Errorf("value for key %q: %w", key, err)
		}
		result[key] = value
		pos = skipSpace(s, next)

		if pos >= len(s) {
			break
		}
		if s[pos] != ',' {
			return nil, fmt.Errorf("expected ',' at offset %d", pos)
		}
		pos++
	}

	return result, nil
}

func skipSpace(s string, pos int) int {
	for pos < len(s) && unicode.IsSpace(rune(s[pos])) {
		pos++
	}
	return pos
}

func readKey(s string, pos int) (string, int, error) {
	if s[pos] == '\'' || s[pos] == '"' {
		return readQuoted(s, pos)
	}

	start := pos
	for pos < len(s) {
		c := s[pos]
		if c == ':' || unicode.IsSpace(rune(c)) {
			break
		}
		pos++
	}
	key := s[start:pos]
	if key == "" {
		return "", pos, fmt.Errorf("empty key at offset %d", start)
	}
	return key, pos, nil
}

func readValue(s string, pos int) (string, int, error) {
	if pos >= len(s) {
		return "", pos, fmt.Errorf("missing value")
	}
	if s[pos] == '\'' || s[pos] == '"' {
		return readQuoted(s, pos)
	}
	if s[pos] == '{' || s[pos] == '[' {
		return "", pos, fmt.Errorf("nested values are not supported")
	}

	start := pos
	for pos < len(s) && s[pos] != ',' {
		pos++
	}
	token := strings.TrimSpace(s[start:pos])
	if token == "" {
		return "", pos, fmt.Errorf("empty value")
	}

	// The site stamps a client timestamp with a now()-style call.
	if strings.HasSuffix(token, "()") && strings.Contains(strings.ToLower(token), "now") {
		return strconv.FormatInt(time.Now().UnixMilli(), 10), pos, nil
	}

	return token, pos, nil
}

func readQuoted(s string, pos int) (string, int, error) {
	quote := s[pos]
	pos++
	var b strings.Builder
	for pos < len(s) {
		c := s[pos]
		if c == '\\' && pos+1 < len(s) {
			b.WriteByte(s[pos+1])
			pos += 2
			continue
		}
		if c == quote {
			return b.String(), pos + 1, nil
		}
		b.WriteByte(c)
		pos++
	}
	return "", pos, fmt.Errorf("unterminated string")
}

package jsv

import (
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

const hexDigits = "0123456789abcdef"

// writeJSONString writes a quoted JSON string with the common escapes.
func writeJSONString(b *strings.Builder, s string) {
	b.WriteByte('"')
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 0x20 && c != '"' && c != '\\' {
			continue
		}
		b.WriteString(s[start:i])
		switch c {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		default:
			b.WriteString(`\u00`)
			b.WriteByte(hexDigits[c>>4])
			b.WriteByte(hexDigits[c&0xF])
		}
		start = i + 1
	}
	b.WriteString(s[start:])
	b.WriteByte('"')
}

// unescapeJSON decodes the body of a quoted JSON string. Invalid escapes are
// kept literally.
func unescapeJSON(s string) string {
	if strings.IndexByte(s, '\\') < 0 {
		return s
	}

	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 >= len(s) {
			sb.WriteByte(c)
			continue
		}
		i++
		switch s[i] {
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case 'b':
			sb.WriteByte('\b')
		case 'f':
			sb.WriteByte('\f')
		case 'u':
			r, n := decodeUnicodeEscape(s[i+1:])
			if n == 0 {
				sb.WriteString(`\u`)
				continue
			}
			sb.WriteRune(r)
			i += n
		default:
			// \" \\ \/ and anything unknown
			sb.WriteByte(s[i])
		}
	}
	return sb.String()
}

// decodeUnicodeEscape decodes the hex digits after \u, joining surrogate
// pairs. It returns the number of bytes consumed after the "u".
func decodeUnicodeEscape(s string) (rune, int) {
	r1, ok := parseHex4(s)
	if !ok {
		return 0, 0
	}
	if utf16.IsSurrogate(r1) && len(s) >= 10 && s[4] == '\\' && s[5] == 'u' {
		if r2, ok := parseHex4(s[6:]); ok {
			if r := utf16.DecodeRune(r1, r2); r != utf8.RuneError {
				return r, 10
			}
		}
	}
	return r1, 4
}

func parseHex4(s string) (rune, bool) {
	if len(s) < 4 {
		return 0, false
	}
	var r rune
	for i := 0; i < 4; i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
			r = r<<4 | rune(c-'0')
		case c >= 'a' && c <= 'f':
			r = r<<4 | rune(c-'a'+10)
		case c >= 'A' && c <= 'F':
			r = r<<4 | rune(c-'A'+10)
		default:
			return 0, false
		}
	}
	return r, true
}

// skipJSONQuoted scans a backslash-escaped JSON string starting at s[i] == '"'.
func skipJSONQuoted(s string, i int) int {
	for j := i + 1; j < len(s); j++ {
		switch s[j] {
		case '\\':
			j++
		case '"':
			return j + 1
		}
	}
	return -1
}

// skipJSVQuoted scans a JSV string starting at s[i] == '"' where inner quotes
// are doubled.
func skipJSVQuoted(s string, i int) int {
	for j := i + 1; j < len(s); j++ {
		if s[j] != '"' {
			continue
		}
		if j+1 < len(s) && s[j+1] == '"' {
			j++
			continue
		}
		return j + 1
	}
	return -1
}

// jsvNeedsQuotes reports whether s must be quoted to survive a JSV round trip.
func jsvNeedsQuotes(s string, key bool) bool {
	if s == "" {
		return true
	}
	if isWhitespace(s[0]) || isWhitespace(s[len(s)-1]) {
		return true
	}
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"', ',', '{', '}', '[', ']', '\r', '\n', '\t':
			return true
		case ':':
			if key {
				return true
			}
		}
	}
	return false
}

// writeJSVString writes s bare when safe, otherwise quoted with inner quotes
// doubled.
func writeJSVString(b *strings.Builder, s string, key bool) {
	if !jsvNeedsQuotes(s, key) {
		b.WriteString(s)
		return
	}
	b.WriteByte('"')
	if strings.IndexByte(s, '"') >= 0 {
		b.WriteString(strings.ReplaceAll(s, `"`, `""`))
	} else {
		b.WriteString(s)
	}
	b.WriteByte('"')
}

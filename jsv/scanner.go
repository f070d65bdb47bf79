package jsv

// ============================================================
// Token Scanner
// ============================================================
//
// Free functions over a (buffer, offset) cursor. Character classes come from
// the active format's lexicon; quoted spans are skipped by a format-specific
// function so that delimiters inside strings never count toward nesting.

// lexicon is the delimiter set of one text format.
type lexicon struct {
	mapStart  byte
	mapEnd    byte
	listStart byte
	listEnd   byte
	itemSep   byte
	keySep    byte
	quote     byte

	// null is the literal written for nil values.
	null string

	// bareStopsAtSpace ends unquoted values at whitespace.
	bareStopsAtSpace bool

	// typeHints enables "__type" members for polymorphic values.
	typeHints bool

	// escapeDateSlashes writes legacy dates as "\/Date(...)\/".
	escapeDateSlashes bool
}

// quoteScanner returns the offset just past the quoted span starting at i,
// or -1 if the span is unterminated.
type quoteScanner func(s string, i int) int

func isWhitespace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

func eatWhitespace(s string, i *int) {
	for *i < len(s) && isWhitespace(s[*i]) {
		*i++
	}
}

// eatMapStart consumes the map start delimiter. It returns false without
// consuming anything when the delimiter is missing.
func eatMapStart(lx *lexicon, s string, i *int) bool {
	eatWhitespace(s, i)
	if *i < len(s) && s[*i] == lx.mapStart {
		*i++
		return true
	}
	return false
}

// eatListStart consumes the list start delimiter if present.
func eatListStart(lx *lexicon, s string, i *int) bool {
	eatWhitespace(s, i)
	if *i < len(s) && s[*i] == lx.listStart {
		*i++
		return true
	}
	return false
}

// eatMapKeySeparator consumes the key separator if present.
func eatMapKeySeparator(lx *lexicon, s string, i *int) bool {
	eatWhitespace(s, i)
	if *i < len(s) && s[*i] == lx.keySep {
		*i++
		return true
	}
	return false
}

// eatItemSeparatorOrMapEnd consumes an item separator (true) or a map/list
// terminator (false). At end of buffer it consumes nothing and returns false.
func eatItemSeparatorOrMapEnd(lx *lexicon, s string, i *int) bool {
	eatWhitespace(s, i)
	if *i >= len(s) {
		return false
	}
	switch s[*i] {
	case lx.itemSep:
		*i++
		return true
	case lx.mapEnd, lx.listEnd:
		*i++
		return false
	}
	return false
}

// eatValue returns the raw span of the next value: a balanced map or list, a
// quoted string, or a bare literal ending at a separator or terminator.
func eatValue(lx *lexicon, skipQuoted quoteScanner, s string, i *int) (string, error) {
	eatWhitespace(s, i)
	start := *i
	if start >= len(s) {
		return "", nil
	}

	switch c := s[start]; c {
	case lx.mapStart, lx.listStart:
		closing := lx.mapEnd
		if c == lx.listStart {
			closing = lx.listEnd
		}
		depth := 0
		for j := start; j < len(s); j++ {
			switch s[j] {
			case lx.quote:
				end := skipQuoted(s, j)
				if end < 0 {
					return "", syntaxErrorf(j, "unterminated string")
				}
				j = end - 1
			case c:
				depth++
			case closing:
				depth--
				if depth == 0 {
					*i = j + 1
					return s[start : j+1], nil
				}
			}
		}
		return "", syntaxErrorf(start, "unterminated %q", c)

	case lx.quote:
		end := skipQuoted(s, start)
		if end < 0 {
			return "", syntaxErrorf(start, "unterminated string")
		}
		*i = end
		return s[start:end], nil
	}

	j := start
	for j < len(s) {
		c := s[j]
		if c == lx.itemSep || c == lx.mapEnd || c == lx.listEnd {
			break
		}
		if lx.bareStopsAtSpace && isWhitespace(c) {
			break
		}
		j++
	}
	*i = j
	// Quoted values keep their spaces; trailing space on a bare one is layout.
	for j > start && isWhitespace(s[j-1]) {
		j--
	}
	return s[start:j], nil
}

// eatMapKey returns the raw span of the next map key. Keys may be quoted,
// nested structures, or bare text up to the key separator.
func eatMapKey(lx *lexicon, skipQuoted quoteScanner, s string, i *int) (string, error) {
	eatWhitespace(s, i)
	start := *i
	if start >= len(s) {
		return "", syntaxErrorf(start, "expected map key")
	}

	switch s[start] {
	case lx.quote, lx.mapStart, lx.listStart:
		return eatValue(lx, skipQuoted, s, i)
	}

	j := start
	for j < len(s) {
		c := s[j]
		if c == lx.keySep || c == lx.itemSep || c == lx.mapEnd {
			break
		}
		if lx.bareStopsAtSpace && isWhitespace(c) {
			break
		}
		j++
	}
	*i = j
	return s[start:j], nil
}

// stripList returns the inner view of a list value. Values without list
// delimiters are returned unchanged, so bare "a,b" reads like "[a,b]".
func stripList(lx *lexicon, s string) (string, bool) {
	i := 0
	eatWhitespace(s, &i)
	j := len(s)
	for j > i && isWhitespace(s[j-1]) {
		j--
	}
	if j-i >= 2 && s[i] == lx.listStart && s[j-1] == lx.listEnd {
		return s[i+1 : j-1], true
	}
	return s[i:j], false
}

// isMapLike reports whether raw looks like a map value.
func isMapLike(lx *lexicon, raw string) bool {
	i := 0
	eatWhitespace(raw, &i)
	return i < len(raw) && raw[i] == lx.mapStart
}

// isListLike reports whether raw looks like a list value.
func isListLike(lx *lexicon, raw string) bool {
	i := 0
	eatWhitespace(raw, &i)
	return i < len(raw) && raw[i] == lx.listStart
}

// isEmptyMap reports whether raw is a syntactically empty map ("{}" with
// optional whitespace).
func isEmptyMap(lx *lexicon, raw string) bool {
	i := 0
	if !eatMapStart(lx, raw, &i) {
		return false
	}
	eatWhitespace(raw, &i)
	if i >= len(raw) || raw[i] != lx.mapEnd {
		return false
	}
	i++
	eatWhitespace(raw, &i)
	return i == len(raw)
}

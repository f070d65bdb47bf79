package jsv

import (
	"strings"
)

// CharClass classifies a raw character under a format's lexical rules.
type CharClass uint8

const (
	CharOther CharClass = iota
	CharMapStart
	CharMapEnd
	CharListStart
	CharListEnd
	CharItemSeparator
	CharKeySeparator
	CharQuote
	CharEscapeWorthy
	CharWhitespace
)

// String returns the class name.
func (c CharClass) String() string {
	switch c {
	case CharMapStart:
		return "map-start"
	case CharMapEnd:
		return "map-end"
	case CharListStart:
		return "list-start"
	case CharListEnd:
		return "list-end"
	case CharItemSeparator:
		return "item-separator"
	case CharKeySeparator:
		return "key-separator"
	case CharQuote:
		return "quote"
	case CharEscapeWorthy:
		return "escape-worthy"
	case CharWhitespace:
		return "whitespace"
	default:
		return "other"
	}
}

// Format is the lexical strategy of one text format. The two implementations
// are the JSON and JSV values; the interface is sealed.
type Format interface {
	// Name returns "json" or "jsv".
	Name() string

	// Classify returns the lexical class of c.
	Classify(c byte) CharClass

	// WriteString writes s as a string value, escaped for this format.
	WriteString(b *strings.Builder, s string)

	// WriteMapKey writes s as a map key.
	WriteMapKey(b *strings.Builder, s string)

	// WriteNull writes the null literal.
	WriteNull(b *strings.Builder)

	// Unescape returns the text of a raw value span, removing quotes and
	// escapes. Unquoted spans are returned unchanged.
	Unescape(raw string) string

	// IsNull reports whether a raw value span denotes null.
	IsNull(raw string) bool

	EatWhitespace(s string, i *int)
	EatMapStart(s string, i *int) bool
	EatMapKey(s string, i *int) (string, error)
	EatMapKeySeparator(s string, i *int) bool
	EatValue(s string, i *int) (string, error)
	EatItemSeparatorOrMapEnd(s string, i *int) bool

	base() *textFormat
}

// textFormat is the state shared by both formats: the lexicon and the plan
// caches. The lexicon never changes after construction; the caches publish
// new snapshots but are never replaced.
type textFormat struct {
	lex        lexicon
	skipQuoted quoteScanner
	writers    planCache[*writePlan]
	readers    planCache[*readPlan]
}

func (f *textFormat) base() *textFormat { return f }

func (f *textFormat) EatWhitespace(s string, i *int) { eatWhitespace(s, i) }

func (f *textFormat) EatMapStart(s string, i *int) bool { return eatMapStart(&f.lex, s, i) }

func (f *textFormat) EatMapKey(s string, i *int) (string, error) {
	return eatMapKey(&f.lex, f.skipQuoted, s, i)
}

func (f *textFormat) EatMapKeySeparator(s string, i *int) bool {
	return eatMapKeySeparator(&f.lex, s, i)
}

func (f *textFormat) EatValue(s string, i *int) (string, error) {
	return eatValue(&f.lex, f.skipQuoted, s, i)
}

func (f *textFormat) EatItemSeparatorOrMapEnd(s string, i *int) bool {
	return eatItemSeparatorOrMapEnd(&f.lex, s, i)
}

func (f *textFormat) classifyStructural(c byte) CharClass {
	switch c {
	case f.lex.mapStart:
		return CharMapStart
	case f.lex.mapEnd:
		return CharMapEnd
	case f.lex.listStart:
		return CharListStart
	case f.lex.listEnd:
		return CharListEnd
	case f.lex.itemSep:
		return CharItemSeparator
	case f.lex.keySep:
		return CharKeySeparator
	case f.lex.quote:
		return CharQuote
	}
	if isWhitespace(c) {
		return CharWhitespace
	}
	return CharOther
}

// ============================================================
// JSON
// ============================================================

type jsonFormat struct {
	*textFormat
}

// JSON is the verbose strategy: {"key":value}, quoted strings, null literal.
var JSON Format = jsonFormat{&textFormat{
	lex: lexicon{
		mapStart: '{', mapEnd: '}',
		listStart: '[', listEnd: ']',
		itemSep: ',', keySep: ':', quote: '"',
		null:             "null",
		bareStopsAtSpace:  true,
		typeHints:         true,
		escapeDateSlashes: true,
	},
	skipQuoted: skipJSONQuoted,
}}

func (jsonFormat) Name() string { return "json" }

func (f jsonFormat) Classify(c byte) CharClass {
	if c == '\\' || c < 0x20 && !isWhitespace(c) {
		return CharEscapeWorthy
	}
	return f.classifyStructural(c)
}

func (jsonFormat) WriteString(b *strings.Builder, s string) {
	writeJSONString(b, s)
}

func (jsonFormat) WriteMapKey(b *strings.Builder, s string) {
	writeJSONString(b, s)
}

func (jsonFormat) WriteNull(b *strings.Builder) {
	b.WriteString("null")
}

func (jsonFormat) Unescape(raw string) string {
	if len(raw) >= 2 && raw[0] == '"' && raw[len(raw)-1] == '"' {
		return unescapeJSON(raw[1 : len(raw)-1])
	}
	return raw
}

func (jsonFormat) IsNull(raw string) bool {
	return raw == "" || raw == "null"
}

// ============================================================
// JSV
// ============================================================

type jsvFormat struct {
	*textFormat
}

// JSV is the compact strategy: {key:value}, bare scalars, quotes only when
// needed, empty value for null.
var JSV Format = jsvFormat{&textFormat{
	lex: lexicon{
		mapStart: '{', mapEnd: '}',
		listStart: '[', listEnd: ']',
		itemSep: ',', keySep: ':', quote: '"',
		null:      "",
		typeHints: true,
	},
	skipQuoted: skipJSVQuoted,
}}

func (jsvFormat) Name() string { return "jsv" }

func (f jsvFormat) Classify(c byte) CharClass {
	if c == '\r' || c == '\n' || c == '\t' {
		return CharEscapeWorthy
	}
	return f.classifyStructural(c)
}

func (jsvFormat) WriteString(b *strings.Builder, s string) {
	writeJSVString(b, s, false)
}

func (jsvFormat) WriteMapKey(b *strings.Builder, s string) {
	writeJSVString(b, s, true)
}

func (jsvFormat) WriteNull(*strings.Builder) {}

func (jsvFormat) Unescape(raw string) string {
	if len(raw) >= 2 && raw[0] == '"' && raw[len(raw)-1] == '"' {
		inner := raw[1 : len(raw)-1]
		if strings.Contains(inner, `""`) {
			return strings.ReplaceAll(inner, `""`, `"`)
		}
		return inner
	}
	return raw
}

func (jsvFormat) IsNull(raw string) bool {
	return raw == ""
}

// ParseFormat returns the format with the given name ("json" or "jsv").
func ParseFormat(name string) (Format, bool) {
	switch strings.ToLower(name) {
	case "json":
		return JSON, true
	case "jsv":
		return JSV, true
	}
	return nil, false
}

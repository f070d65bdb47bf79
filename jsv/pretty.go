package jsv

import (
	"strings"
)

// PrettyOptions configures Pretty.
type PrettyOptions struct {
	// Indent is repeated once per nesting level (default: "  ").
	Indent string

	// SpaceAfterKey writes a space after each key separator. JSON only: JSV
	// bare values may contain the separator.
	SpaceAfterKey bool
}

// DefaultPrettyOptions returns sensible defaults.
func DefaultPrettyOptions() PrettyOptions {
	return PrettyOptions{Indent: "  "}
}

// Pretty re-indents serialized text of format f, one member or element per
// line. Quoted spans are copied untouched and empty maps and lists stay on one
// line. The output of either format reads back to the same values.
func Pretty(text string, f Format) string {
	return PrettyWithOptions(text, f, DefaultPrettyOptions())
}

// PrettyWithOptions is Pretty with custom options.
func PrettyWithOptions(text string, f Format, opts PrettyOptions) string {
	if opts.Indent == "" {
		opts.Indent = "  "
	}
	tf := f.base()
	lx := &tf.lex
	p := &prettyPrinter{opts: opts}

	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c == lx.quote:
			end := tf.skipQuoted(text, i)
			if end < 0 {
				end = len(text)
			}
			p.sb.WriteString(text[i:end])
			i = end - 1
		case c == lx.mapStart || c == lx.listStart:
			closing := lx.mapEnd
			if c == lx.listStart {
				closing = lx.listEnd
			}
			j := i + 1
			eatWhitespace(text, &j)
			if j < len(text) && text[j] == closing {
				p.sb.WriteByte(c)
				p.sb.WriteByte(closing)
				i = j
				continue
			}
			p.sb.WriteByte(c)
			p.depth++
			p.newline()
		case c == lx.mapEnd || c == lx.listEnd:
			if p.depth > 0 {
				p.depth--
			}
			p.newline()
			p.sb.WriteByte(c)
		case c == lx.itemSep:
			p.sb.WriteByte(c)
			p.newline()
		case c == lx.keySep:
			p.sb.WriteByte(c)
			if opts.SpaceAfterKey && lx.bareStopsAtSpace {
				p.sb.WriteByte(' ')
			}
		case isWhitespace(c) && lx.bareStopsAtSpace:
			// insignificant in JSON
		default:
			p.sb.WriteByte(c)
		}
	}
	return p.sb.String()
}

type prettyPrinter struct {
	sb    strings.Builder
	opts  PrettyOptions
	depth int
}

func (p *prettyPrinter) newline() {
	p.sb.WriteByte('\n')
	for i := 0; i < p.depth; i++ {
		p.sb.WriteString(p.opts.Indent)
	}
}

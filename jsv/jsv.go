package jsv

import (
	"fmt"
	"io"
	"reflect"
	"strings"
)

// ============================================================
// Codec
// ============================================================

// Codec binds a format to a fixed configuration. It is safe for concurrent
// use; plans are shared with every other Codec of the same format.
type Codec struct {
	format Format
	cfg    Config
}

// NewCodec creates a codec for f using cfg.
func NewCodec(f Format, cfg Config) *Codec {
	return &Codec{format: f, cfg: cfg}
}

// Format returns the codec's format.
func (c *Codec) Format() Format { return c.format }

// Config returns a copy of the codec's configuration.
func (c *Codec) Config() Config { return c.cfg }

// Serialize writes v as text.
func (c *Codec) Serialize(v any) (string, error) {
	b := getPooledBuilder()
	defer putPooledBuilder(b)
	if err := c.write(b, v); err != nil {
		return "", err
	}
	return b.String(), nil
}

// SerializeTo writes v as text to w.
func (c *Codec) SerializeTo(w io.Writer, v any) error {
	b := getPooledBuilder()
	defer putPooledBuilder(b)
	if err := c.write(b, v); err != nil {
		return err
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func (c *Codec) write(b *strings.Builder, v any) error {
	st := newWriteState(c.format, &c.cfg)
	if v == nil {
		c.format.WriteNull(b)
		return nil
	}
	rv := reflect.ValueOf(v)
	writePlanFor(c.format, rv.Type()).fn(st, b, rv)
	return st.err
}

// Deserialize reads text as a value of type t.
func (c *Codec) Deserialize(text string, t reflect.Type) (any, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: nil type", ErrUnsupported)
	}
	v := reflect.New(t).Elem()
	if err := c.read(text, v); err != nil {
		return nil, err
	}
	return v.Interface(), nil
}

// DeserializeInto reads text into the value dst points to. Members absent
// from text keep their current values.
func (c *Codec) DeserializeInto(text string, dst any) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return ErrNilTarget
	}
	return c.read(text, rv.Elem())
}

func (c *Codec) read(text string, dst reflect.Value) error {
	st := newReadState(c.format, &c.cfg)
	text = strings.TrimSpace(text)
	if err := readPlanFor(c.format, dst.Type()).fn(st, text, dst); err != nil {
		return err
	}
	return checkTrailing(c.format, text)
}

// checkTrailing rejects text after a delimited root value. Bare root values
// have no closing delimiter and are read whole.
func checkTrailing(f Format, text string) error {
	lx := &f.base().lex
	if text == "" {
		return nil
	}
	switch text[0] {
	case lx.mapStart, lx.listStart, lx.quote:
	default:
		return nil
	}
	i := 0
	if _, err := f.EatValue(text, &i); err != nil {
		return err
	}
	f.EatWhitespace(text, &i)
	if i < len(text) {
		return syntaxErrorf(i, "unexpected %q after value", text[i])
	}
	return nil
}

// DeserializeAs reads text as a T using codec c.
func DeserializeAs[T any](c *Codec, text string) (T, error) {
	var v T
	err := c.DeserializeInto(text, &v)
	return v, err
}

// ============================================================
// Package-level API
// ============================================================

// Serialize writes v in format f using the process-wide configuration.
func Serialize(v any, f Format) (string, error) {
	return NewCodec(f, CurrentConfig()).Serialize(v)
}

// SerializeTo writes v in format f to w.
func SerializeTo(w io.Writer, v any, f Format) error {
	return NewCodec(f, CurrentConfig()).SerializeTo(w, v)
}

// Deserialize reads text in format f as a value of type t.
func Deserialize(text string, t reflect.Type, f Format) (any, error) {
	return NewCodec(f, CurrentConfig()).Deserialize(text, t)
}

// DeserializeInto reads text in format f into the value dst points to.
func DeserializeInto(text string, dst any, f Format) error {
	return NewCodec(f, CurrentConfig()).DeserializeInto(text, dst)
}

// ToJSON writes v as JSON.
func ToJSON(v any) (string, error) { return Serialize(v, JSON) }

// ToJSV writes v as JSV.
func ToJSV(v any) (string, error) { return Serialize(v, JSV) }

// FromJSON reads JSON text as a T.
func FromJSON[T any](text string) (T, error) {
	return DeserializeAs[T](NewCodec(JSON, CurrentConfig()), text)
}

// FromJSV reads JSV text as a T.
func FromJSV[T any](text string) (T, error) {
	return DeserializeAs[T](NewCodec(JSV, CurrentConfig()), text)
}

// Dump returns v as indented JSV for logs and debugging. Values that cannot
// be serialized are described by the error text instead.
func Dump(v any) string {
	s, err := ToJSV(v)
	if err != nil {
		return fmt.Sprintf("<%v>", err)
	}
	return Pretty(s, JSV)
}

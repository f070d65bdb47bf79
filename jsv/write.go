package jsv

import (
	"encoding"
	"encoding/base64"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ============================================================
// Write Plans
// ============================================================

// writeFn appends the text of v to b.
type writeFn func(st *writeState, b *strings.Builder, v reflect.Value)

// writePlan is the compiled writer for one runtime type. Plans of a recursive
// type point at each other, so fn is always called through the plan.
type writePlan struct {
	fn writeFn
}

// writeState is the per-call context threaded through every plan.
type writeState struct {
	f     Format
	lex   *lexicon
	cfg   *Config
	hint  string // consumed by the next object plan
	depth int
	err   error
}

func newWriteState(f Format, cfg *Config) *writeState {
	return &writeState{f: f, lex: &f.base().lex, cfg: cfg}
}

func (st *writeState) enter() bool {
	if st.depth >= st.cfg.maxDepth() {
		if st.err == nil {
			st.err = ErrMaxDepth
		}
		return false
	}
	st.depth++
	return true
}

func (st *writeState) leave() { st.depth-- }

// writePlanFor returns the write plan of t under f, compiling and publishing
// it together with every plan it depends on.
func writePlanFor(f Format, t reflect.Type) *writePlan {
	tf := f.base()
	if p, ok := tf.writers.load(t); ok {
		return p
	}
	wb := &writeBuilder{f: f, tf: tf, pending: make(map[reflect.Type]*writePlan)}
	wb.plan(t)
	return tf.writers.publish(wb.pending)[t]
}

// writeBuilder compiles plans for one publish batch. A type seen twice while
// building gets the placeholder created the first time, which is how
// self-referential types terminate.
type writeBuilder struct {
	f       Format
	tf      *textFormat
	pending map[reflect.Type]*writePlan
}

func (wb *writeBuilder) plan(t reflect.Type) *writePlan {
	if p, ok := wb.tf.writers.load(t); ok {
		return p
	}
	if p, ok := wb.pending[t]; ok {
		return p
	}
	p := &writePlan{}
	wb.pending[t] = p
	p.fn = wb.build(t)
	return p
}

func (wb *writeBuilder) build(t reflect.Type) writeFn {
	if cf := formatters.formatter(t); cf != nil && cf.toText != nil {
		return customWriter(cf)
	}
	switch t {
	case timeType:
		return writeTime
	case durationType:
		return writeDuration
	case decimalType:
		return writeDecimal
	case uuidType:
		return writeUUID
	}
	if tbl := formatters.enum(t); tbl != nil {
		return enumWriter(tbl)
	}

	switch t.Kind() {
	case reflect.Pointer:
		return wb.pointer(t)
	case reflect.Interface:
		return wb.iface()
	}
	if t.Implements(textMarshalerType) {
		return writeText
	}

	switch t.Kind() {
	case reflect.Bool:
		return writeBool
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return writeInt
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return writeUint
	case reflect.Float32, reflect.Float64:
		return floatWriter(t.Bits())
	case reflect.Complex64, reflect.Complex128:
		return complexWriter(t.Bits())
	case reflect.String:
		return writeString
	case reflect.Slice:
		if isBytes(t) {
			return writeBytes
		}
		return wb.list(t)
	case reflect.Array:
		return wb.list(t)
	case reflect.Map:
		if isSet(t) {
			return wb.set(t)
		}
		return wb.dict(t)
	case reflect.Struct:
		if t.Implements(keyValuePairType) || t.Implements(tupleType) {
			return wb.object(t, true)
		}
		return wb.object(t, false)
	case reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return writeNull
	}
	return writeFallback
}

// ============================================================
// Scalars
// ============================================================

func writeNull(st *writeState, b *strings.Builder, _ reflect.Value) {
	st.f.WriteNull(b)
}

func writeBool(_ *writeState, b *strings.Builder, v reflect.Value) {
	b.WriteString(strconv.FormatBool(v.Bool()))
}

func writeInt(_ *writeState, b *strings.Builder, v reflect.Value) {
	b.WriteString(strconv.FormatInt(v.Int(), 10))
}

func writeUint(_ *writeState, b *strings.Builder, v reflect.Value) {
	b.WriteString(strconv.FormatUint(v.Uint(), 10))
}

func floatWriter(bits int) writeFn {
	return func(st *writeState, b *strings.Builder, v reflect.Value) {
		f := v.Float()
		s := strconv.FormatFloat(f, 'g', -1, bits)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			// Not a JSON number; JSV writes it bare.
			st.f.WriteString(b, s)
			return
		}
		b.WriteString(s)
	}
}

func complexWriter(bits int) writeFn {
	return func(st *writeState, b *strings.Builder, v reflect.Value) {
		st.f.WriteString(b, strconv.FormatComplex(v.Complex(), 'g', -1, bits))
	}
}

func writeString(st *writeState, b *strings.Builder, v reflect.Value) {
	st.f.WriteString(b, v.String())
}

func writeBytes(st *writeState, b *strings.Builder, v reflect.Value) {
	if v.IsNil() {
		st.f.WriteNull(b)
		return
	}
	st.f.WriteString(b, base64.StdEncoding.EncodeToString(v.Bytes()))
}

func writeTime(st *writeState, b *strings.Builder, v reflect.Value) {
	t := v.Interface().(time.Time)
	if st.cfg.DateFormat == DateFormatLegacy && st.lex.escapeDateSlashes {
		b.WriteByte(st.lex.quote)
		b.WriteString(strings.ReplaceAll(FormatLegacyDate(t), "/", `\/`))
		b.WriteByte(st.lex.quote)
		return
	}
	st.f.WriteString(b, FormatTime(t, st.cfg.DateFormat))
}

func writeDuration(st *writeState, b *strings.Builder, v reflect.Value) {
	st.f.WriteString(b, FormatDuration(time.Duration(v.Int())))
}

func writeDecimal(_ *writeState, b *strings.Builder, v reflect.Value) {
	b.WriteString(v.Interface().(Decimal).String())
}

func writeUUID(st *writeState, b *strings.Builder, v reflect.Value) {
	st.f.WriteString(b, v.Interface().(uuid.UUID).String())
}

func enumWriter(tbl *enumTable) writeFn {
	return func(st *writeState, b *strings.Builder, v reflect.Value) {
		bits := enumBits(v)
		if name, ok := tbl.toName[bits]; ok {
			st.f.WriteString(b, name)
			return
		}
		if v.CanInt() {
			b.WriteString(strconv.FormatInt(v.Int(), 10))
			return
		}
		b.WriteString(strconv.FormatUint(v.Uint(), 10))
	}
}

func customWriter(cf *customFormatter) writeFn {
	return func(st *writeState, b *strings.Builder, v reflect.Value) {
		st.f.WriteString(b, cf.toText(v))
	}
}

func writeText(st *writeState, b *strings.Builder, v reflect.Value) {
	text, err := v.Interface().(encoding.TextMarshaler).MarshalText()
	if err != nil {
		if st.err == nil {
			st.err = fmt.Errorf("jsv: marshal %s: %w", v.Type(), err)
		}
		return
	}
	st.f.WriteString(b, string(text))
}

func writeFallback(st *writeState, b *strings.Builder, v reflect.Value) {
	st.f.WriteString(b, fmt.Sprint(v.Interface()))
}

// ============================================================
// References
// ============================================================

func (wb *writeBuilder) pointer(t reflect.Type) writeFn {
	elem := wb.plan(t.Elem())
	return func(st *writeState, b *strings.Builder, v reflect.Value) {
		if v.IsNil() {
			st.f.WriteNull(b)
			return
		}
		elem.fn(st, b, v.Elem())
	}
}

// iface writes the dynamic value of an interface slot. Struct values carry a
// type hint naming their runtime type; the plan is looked up per value.
func (wb *writeBuilder) iface() writeFn {
	return func(st *writeState, b *strings.Builder, v reflect.Value) {
		if v.IsNil() {
			st.f.WriteNull(b)
			return
		}
		elem := v.Elem()
		rt := elem.Type()
		if st.lex.typeHints && !st.cfg.ExcludeTypeInfo && wantsHint(rt) {
			st.hint = hintFor(rt)
		}
		writePlanFor(st.f, rt).fn(st, b, elem)
		st.hint = ""
	}
}

// ============================================================
// Objects
// ============================================================

// object writes the members of struct type t as a map. Records (key/value
// pairs and tuples) always write every member and never carry a type hint.
func (wb *writeBuilder) object(t reflect.Type, record bool) writeFn {
	sh := shapeOf(t)
	plans := make([]*writePlan, len(sh.members))
	keys := make([]string, len(sh.members))
	for i := range sh.members {
		m := &sh.members[i]
		plans[i] = wb.plan(m.typ)
		var kb strings.Builder
		wb.f.WriteMapKey(&kb, m.name)
		keys[i] = kb.String()
	}
	var hb strings.Builder
	wb.f.WriteMapKey(&hb, TypeHintKey)
	hintKey := hb.String()

	return func(st *writeState, b *strings.Builder, v reflect.Value) {
		hint := st.hint
		st.hint = ""
		if !st.enter() {
			return
		}
		defer st.leave()

		lx := st.lex
		b.WriteByte(lx.mapStart)
		first := true
		if hint != "" && !record {
			b.WriteString(hintKey)
			b.WriteByte(lx.keySep)
			st.f.WriteString(b, hint)
			first = false
		}
		for i := range sh.members {
			m := &sh.members[i]
			fv := m.get(v)
			if !record {
				if isNilValue(fv) && !st.cfg.IncludeNullValues {
					continue
				}
				if m.omitEmpty && fv.IsZero() {
					continue
				}
			}
			if !first {
				b.WriteByte(lx.itemSep)
			}
			first = false
			b.WriteString(keys[i])
			b.WriteByte(lx.keySep)
			plans[i].fn(st, b, fv)
		}
		b.WriteByte(lx.mapEnd)
	}
}

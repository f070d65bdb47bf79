package jsv

import (
	"encoding"
	"encoding/base64"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// ============================================================
// Read Plans
// ============================================================

// readFn parses raw, the span of one value, into dst. dst is always settable.
type readFn func(st *readState, raw string, dst reflect.Value) error

// readPlan is the compiled reader for one declared type.
type readPlan struct {
	fn readFn
}

// readState is the per-call context threaded through every plan.
type readState struct {
	f     Format
	lex   *lexicon
	cfg   *Config
	depth int
}

func newReadState(f Format, cfg *Config) *readState {
	return &readState{f: f, lex: &f.base().lex, cfg: cfg}
}

func (st *readState) enter() error {
	if st.depth >= st.cfg.maxDepth() {
		return ErrMaxDepth
	}
	st.depth++
	return nil
}

func (st *readState) leave() { st.depth-- }

func (st *readState) warn(msg string, args ...any) {
	st.cfg.logger().Warn("jsv: "+msg, append([]any{"format", st.f.Name()}, args...)...)
}

// readPlanFor returns the read plan of t under f, compiling and publishing it
// together with every plan it depends on.
func readPlanFor(f Format, t reflect.Type) *readPlan {
	tf := f.base()
	if p, ok := tf.readers.load(t); ok {
		return p
	}
	rb := &readBuilder{f: f, tf: tf, pending: make(map[reflect.Type]*readPlan)}
	rb.plan(t)
	return tf.readers.publish(rb.pending)[t]
}

// readBuilder mirrors writeBuilder for the read direction.
type readBuilder struct {
	f       Format
	tf      *textFormat
	pending map[reflect.Type]*readPlan
}

func (rb *readBuilder) plan(t reflect.Type) *readPlan {
	if p, ok := rb.tf.readers.load(t); ok {
		return p
	}
	if p, ok := rb.pending[t]; ok {
		return p
	}
	p := &readPlan{}
	rb.pending[t] = p
	p.fn = rb.build(t)
	return p
}

func (rb *readBuilder) build(t reflect.Type) readFn {
	if cf := formatters.formatter(t); cf != nil && cf.fromText != nil {
		return customReader(cf)
	}
	switch t {
	case timeType:
		return readTime
	case durationType:
		return readDuration
	case decimalType:
		return readDecimal
	case uuidType:
		return readUUID
	}
	if tbl := formatters.enum(t); tbl != nil {
		return enumReader(tbl)
	}

	switch t.Kind() {
	case reflect.Pointer:
		return rb.pointer(t)
	case reflect.Interface:
		return rb.iface(t)
	}
	if t.Implements(textMarshalerType) && reflect.PointerTo(t).Implements(textUnmarshalerType) {
		return readText
	}

	switch t.Kind() {
	case reflect.Bool:
		return readBool
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return readInt
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return readUint
	case reflect.Float32, reflect.Float64:
		return readFloat
	case reflect.Complex64, reflect.Complex128:
		return readComplex
	case reflect.String:
		return readString
	case reflect.Slice:
		if isBytes(t) {
			return rb.bytes(t)
		}
		return rb.list(t)
	case reflect.Array:
		return rb.array(t)
	case reflect.Map:
		if isSet(t) {
			return rb.set(t)
		}
		return rb.dict(t)
	case reflect.Struct:
		if t.Implements(keyValuePairType) || t.Implements(tupleType) {
			return rb.object(t, true)
		}
		return rb.object(t, false)
	case reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return readIgnore
	}
	return readUnsupported
}

// mismatch reports a structured value arriving where a scalar is declared, or
// the reverse. It is a member error, not a scalar error.
func mismatch(t reflect.Type, raw string) error {
	if len(raw) > 32 {
		raw = raw[:32] + "..."
	}
	return fmt.Errorf("%w: %s from %q", ErrTypeMismatch, t, raw)
}

// scalarText returns the unescaped text of a scalar span, or ok=false when
// raw is null. Structured spans are rejected as a mismatch.
func (st *readState) scalarText(raw string, t reflect.Type) (string, bool, error) {
	if st.f.IsNull(raw) {
		return "", false, nil
	}
	if isMapLike(st.lex, raw) || isListLike(st.lex, raw) {
		return "", false, mismatch(t, raw)
	}
	return st.f.Unescape(raw), true, nil
}

// parseScalar runs parse over the text of raw, leaving dst at its zero value
// for null. Parse failures are scalar errors.
func parseScalar(st *readState, raw string, dst reflect.Value, parse func(string) error) error {
	text, ok, err := st.scalarText(raw, dst.Type())
	if err != nil {
		return err
	}
	if !ok {
		dst.SetZero()
		return nil
	}
	if err := parse(text); err != nil {
		return &ScalarError{Type: dst.Type(), Value: text, Err: err}
	}
	return nil
}

// ============================================================
// Scalars
// ============================================================

func readIgnore(*readState, string, reflect.Value) error { return nil }

func readUnsupported(_ *readState, _ string, dst reflect.Value) error {
	return fmt.Errorf("%w: %s", ErrUnsupported, dst.Type())
}

func readBool(st *readState, raw string, dst reflect.Value) error {
	return parseScalar(st, raw, dst, func(s string) error {
		v, err := strconv.ParseBool(s)
		if err != nil {
			return err
		}
		dst.SetBool(v)
		return nil
	})
}

func readInt(st *readState, raw string, dst reflect.Value) error {
	return parseScalar(st, raw, dst, func(s string) error {
		v, err := strconv.ParseInt(s, 10, dst.Type().Bits())
		if err != nil {
			return err
		}
		dst.SetInt(v)
		return nil
	})
}

func readUint(st *readState, raw string, dst reflect.Value) error {
	return parseScalar(st, raw, dst, func(s string) error {
		v, err := strconv.ParseUint(s, 10, dst.Type().Bits())
		if err != nil {
			return err
		}
		dst.SetUint(v)
		return nil
	})
}

func readFloat(st *readState, raw string, dst reflect.Value) error {
	return parseScalar(st, raw, dst, func(s string) error {
		v, err := strconv.ParseFloat(s, dst.Type().Bits())
		if err != nil {
			return err
		}
		dst.SetFloat(v)
		return nil
	})
}

func readComplex(st *readState, raw string, dst reflect.Value) error {
	return parseScalar(st, raw, dst, func(s string) error {
		v, err := strconv.ParseComplex(s, dst.Type().Bits())
		if err != nil {
			return err
		}
		dst.SetComplex(v)
		return nil
	})
}

func readString(st *readState, raw string, dst reflect.Value) error {
	if st.f.IsNull(raw) {
		dst.SetString("")
		return nil
	}
	dst.SetString(st.f.Unescape(raw))
	return nil
}

func readTime(st *readState, raw string, dst reflect.Value) error {
	return parseScalar(st, raw, dst, func(s string) error {
		t, err := ParseTime(s)
		if err != nil {
			return err
		}
		dst.Set(reflect.ValueOf(t))
		return nil
	})
}

func readDuration(st *readState, raw string, dst reflect.Value) error {
	return parseScalar(st, raw, dst, func(s string) error {
		d, err := ParseDuration(s)
		if err != nil {
			return err
		}
		dst.SetInt(int64(d))
		return nil
	})
}

func readDecimal(st *readState, raw string, dst reflect.Value) error {
	return parseScalar(st, raw, dst, func(s string) error {
		d, err := NewDecimalFromString(s)
		if err != nil {
			return err
		}
		dst.Set(reflect.ValueOf(d))
		return nil
	})
}

func readUUID(st *readState, raw string, dst reflect.Value) error {
	return parseScalar(st, raw, dst, func(s string) error {
		u, err := uuid.Parse(s)
		if err != nil {
			return err
		}
		dst.Set(reflect.ValueOf(u))
		return nil
	})
}

func enumReader(tbl *enumTable) readFn {
	return func(st *readState, raw string, dst reflect.Value) error {
		return parseScalar(st, raw, dst, func(s string) error {
			if bits, ok := tbl.fromName[strings.ToLower(s)]; ok {
				setEnumBits(dst, bits)
				return nil
			}
			if dst.CanInt() {
				v, err := strconv.ParseInt(s, 10, dst.Type().Bits())
				if err != nil {
					return fmt.Errorf("unknown enum name %q", s)
				}
				dst.SetInt(v)
				return nil
			}
			v, err := strconv.ParseUint(s, 10, dst.Type().Bits())
			if err != nil {
				return fmt.Errorf("unknown enum name %q", s)
			}
			dst.SetUint(v)
			return nil
		})
	}
}

func customReader(cf *customFormatter) readFn {
	return func(st *readState, raw string, dst reflect.Value) error {
		if st.f.IsNull(raw) {
			dst.SetZero()
			return nil
		}
		text := st.f.Unescape(raw)
		v, err := cf.fromText(text)
		if err != nil {
			return &ScalarError{Type: dst.Type(), Value: text, Err: err}
		}
		dst.Set(v)
		return nil
	}
}

func readText(st *readState, raw string, dst reflect.Value) error {
	return parseScalar(st, raw, dst, func(s string) error {
		return dst.Addr().Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(s))
	})
}

func (rb *readBuilder) bytes(t reflect.Type) readFn {
	list := rb.list(t)
	return func(st *readState, raw string, dst reflect.Value) error {
		if st.f.IsNull(raw) {
			dst.SetZero()
			return nil
		}
		if isListLike(st.lex, raw) {
			return list(st, raw, dst)
		}
		text := st.f.Unescape(raw)
		data, err := base64.StdEncoding.DecodeString(text)
		if err != nil {
			return &ScalarError{Type: t, Value: text, Err: err}
		}
		dst.SetBytes(data)
		return nil
	}
}

// ============================================================
// References
// ============================================================

func (rb *readBuilder) pointer(t reflect.Type) readFn {
	elem := rb.plan(t.Elem())
	return func(st *readState, raw string, dst reflect.Value) error {
		if st.f.IsNull(raw) {
			dst.SetZero()
			return nil
		}
		if dst.IsNil() {
			dst.Set(reflect.New(t.Elem()))
		}
		return elem.fn(st, raw, dst.Elem())
	}
}

// iface reads into an interface slot. A map value whose first member is a
// resolvable type hint becomes that type; a rejected hint leaves the slot nil.
// Without a hint, any receives a dynamic value and other interfaces stay nil.
func (rb *readBuilder) iface(t reflect.Type) readFn {
	return func(st *readState, raw string, dst reflect.Value) error {
		if st.f.IsNull(raw) {
			dst.SetZero()
			return nil
		}
		if isMapLike(st.lex, raw) {
			ct, hinted, err := st.hintTarget(raw, t)
			if err != nil {
				return err
			}
			if hinted {
				if ct == nil {
					dst.SetZero()
					return nil
				}
				v := reflect.New(ct).Elem()
				if err := readPlanFor(st.f, ct).fn(st, raw, v); err != nil {
					return err
				}
				dst.Set(v)
				return nil
			}
		}
		if t.NumMethod() == 0 {
			v, err := st.readDynamic(raw)
			if err != nil {
				return err
			}
			if v == nil {
				dst.SetZero()
			} else {
				dst.Set(reflect.ValueOf(v))
			}
			return nil
		}
		st.warn("no type hint for interface value", "target", t.String())
		dst.SetZero()
		if st.cfg.ThrowOnError {
			return fmt.Errorf("%w: %s", ErrMissingHint, t)
		}
		return nil
	}
}

// ============================================================
// Objects
// ============================================================

// object reads a map into the members of struct type t. Unknown keys are
// skipped; records (key/value pairs and tuples) match names ignoring case.
func (rb *readBuilder) object(t reflect.Type, record bool) readFn {
	sh := shapeOf(t)
	plans := make([]*readPlan, len(sh.members))
	for i := range sh.members {
		plans[i] = rb.plan(sh.members[i].typ)
	}

	return func(st *readState, raw string, dst reflect.Value) error {
		if st.f.IsNull(raw) {
			dst.SetZero()
			return nil
		}
		if isListLike(st.lex, raw) {
			return mismatch(t, raw)
		}
		if err := st.enter(); err != nil {
			return err
		}
		defer st.leave()

		foldCase := record || st.cfg.CaseInsensitive
		return st.eachEntry(raw, t, func(key, rawVal string) error {
			idx, ok := sh.lookup(key, foldCase)
			if !ok || key == TypeHintKey || sh.members[idx].readOnly {
				return nil
			}
			m := &sh.members[idx]
			fv := dst.FieldByIndex(m.index)
			err := plans[idx].fn(st, rawVal, fv)
			if err == nil {
				return nil
			}
			if isFatal(err) {
				return err
			}
			fv.SetZero()
			if st.cfg.ThrowOnError {
				return &MemberError{Type: t, Member: m.name, Err: err}
			}
			st.warn("member skipped", "type", t.String(), "member", m.name, "error", err)
			return nil
		})
	}
}

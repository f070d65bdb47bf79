package jsv

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// ============================================================
// Iteration
// ============================================================

// eachEntry calls fn with the unescaped key and raw value span of every entry
// of a map value. A missing opening delimiter is tolerated with a warning.
func (st *readState) eachEntry(raw string, t reflect.Type, fn func(key, val string) error) error {
	i := 0
	if !st.f.EatMapStart(raw, &i) {
		st.warn("map value without opening delimiter", "type", t.String())
	}
	for {
		st.f.EatWhitespace(raw, &i)
		if i >= len(raw) || raw[i] == st.lex.mapEnd {
			return nil
		}
		rawKey, err := st.f.EatMapKey(raw, &i)
		if err != nil {
			return err
		}
		if !st.f.EatMapKeySeparator(raw, &i) {
			return syntaxErrorf(i, "expected %q after map key", st.lex.keySep)
		}
		rawVal, err := st.f.EatValue(raw, &i)
		if err != nil {
			return err
		}
		if err := fn(st.f.Unescape(rawKey), rawVal); err != nil {
			return err
		}
		if !st.f.EatItemSeparatorOrMapEnd(raw, &i) {
			if i >= len(raw) || raw[i-1] == st.lex.mapEnd {
				return nil
			}
			return syntaxErrorf(i, "expected %q or %q", st.lex.itemSep, st.lex.mapEnd)
		}
	}
}

// eachItem calls fn with the raw span of every element of a list value. Input
// without list delimiters is read as the list body. A separator directly
// before the end of the list yields one more empty (default) element.
func (st *readState) eachItem(raw string, fn func(item string) error) error {
	inner, _ := stripList(st.lex, raw)
	i := 0
	for {
		st.f.EatWhitespace(inner, &i)
		if i >= len(inner) {
			return nil
		}
		item, err := st.f.EatValue(inner, &i)
		if err != nil {
			return err
		}
		if err := fn(item); err != nil {
			return err
		}
		if st.f.EatItemSeparatorOrMapEnd(inner, &i) {
			st.f.EatWhitespace(inner, &i)
			if i >= len(inner) {
				return fn("")
			}
			continue
		}
		st.f.EatWhitespace(inner, &i)
		if i < len(inner) {
			return syntaxErrorf(i, "expected %q between list items", st.lex.itemSep)
		}
		return nil
	}
}

// ============================================================
// Lists
// ============================================================

func (wb *writeBuilder) list(t reflect.Type) writeFn {
	elem := wb.plan(t.Elem())
	nilable := t.Kind() == reflect.Slice
	return func(st *writeState, b *strings.Builder, v reflect.Value) {
		if nilable && v.IsNil() {
			st.f.WriteNull(b)
			return
		}
		if !st.enter() {
			return
		}
		defer st.leave()

		b.WriteByte(st.lex.listStart)
		for i, n := 0, v.Len(); i < n; i++ {
			if i > 0 {
				b.WriteByte(st.lex.itemSep)
			}
			elem.fn(st, b, v.Index(i))
		}
		b.WriteByte(st.lex.listEnd)
	}
}

func (rb *readBuilder) list(t reflect.Type) readFn {
	elemType := t.Elem()
	elem := rb.plan(elemType)
	return func(st *readState, raw string, dst reflect.Value) error {
		if st.f.IsNull(raw) {
			dst.SetZero()
			return nil
		}
		if isMapLike(st.lex, raw) {
			return mismatch(t, raw)
		}
		if err := st.enter(); err != nil {
			return err
		}
		defer st.leave()

		out := reflect.MakeSlice(t, 0, 0)
		err := st.eachItem(raw, func(item string) error {
			ev := reflect.New(elemType).Elem()
			if err := elem.fn(st, item, ev); err != nil {
				return err
			}
			out = reflect.Append(out, ev)
			return nil
		})
		if err != nil {
			return err
		}
		dst.Set(out)
		return nil
	}
}

func (rb *readBuilder) array(t reflect.Type) readFn {
	elem := rb.plan(t.Elem())
	return func(st *readState, raw string, dst reflect.Value) error {
		dst.SetZero()
		if st.f.IsNull(raw) {
			return nil
		}
		if isMapLike(st.lex, raw) {
			return mismatch(t, raw)
		}
		if err := st.enter(); err != nil {
			return err
		}
		defer st.leave()

		n := 0
		return st.eachItem(raw, func(item string) error {
			if n >= dst.Len() {
				return fmt.Errorf("%w: %s", ErrTooManyItems, t)
			}
			n++
			return elem.fn(st, item, dst.Index(n-1))
		})
	}
}

// ============================================================
// Sets
// ============================================================

// set writes map[K]struct{} as a list of its keys in text order.
func (wb *writeBuilder) set(t reflect.Type) writeFn {
	key := wb.plan(t.Key())
	return func(st *writeState, b *strings.Builder, v reflect.Value) {
		if v.IsNil() {
			st.f.WriteNull(b)
			return
		}
		if !st.enter() {
			return
		}
		defer st.leave()

		items := make([]string, 0, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			var kb strings.Builder
			key.fn(st, &kb, iter.Key())
			items = append(items, kb.String())
		}
		sort.Strings(items)

		b.WriteByte(st.lex.listStart)
		for i, item := range items {
			if i > 0 {
				b.WriteByte(st.lex.itemSep)
			}
			b.WriteString(item)
		}
		b.WriteByte(st.lex.listEnd)
	}
}

func (rb *readBuilder) set(t reflect.Type) readFn {
	keyType := t.Key()
	key := rb.plan(keyType)
	present := reflect.New(t.Elem()).Elem()
	return func(st *readState, raw string, dst reflect.Value) error {
		if st.f.IsNull(raw) {
			dst.SetZero()
			return nil
		}
		if isMapLike(st.lex, raw) {
			return mismatch(t, raw)
		}
		if err := st.enter(); err != nil {
			return err
		}
		defer st.leave()

		out := reflect.MakeMap(t)
		err := st.eachItem(raw, func(item string) error {
			kv := reflect.New(keyType).Elem()
			if err := key.fn(st, item, kv); err != nil {
				return err
			}
			out.SetMapIndex(kv, present)
			return nil
		})
		if err != nil {
			return err
		}
		dst.Set(out)
		return nil
	}
}

// ============================================================
// Dictionaries
// ============================================================

type dictEntry struct {
	key string
	val reflect.Value
}

// dict writes a map with its entries ordered by key text. Keys that are not
// plain strings are written as the unescaped text of their own plan.
func (wb *writeBuilder) dict(t reflect.Type) writeFn {
	key := wb.plan(t.Key())
	val := wb.plan(t.Elem())
	plainKey := isPlainString(t.Key())
	return func(st *writeState, b *strings.Builder, v reflect.Value) {
		if v.IsNil() {
			st.f.WriteNull(b)
			return
		}
		if !st.enter() {
			return
		}
		defer st.leave()

		entries := make([]dictEntry, 0, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			k := iter.Key()
			var text string
			if plainKey {
				text = k.String()
			} else {
				var kb strings.Builder
				key.fn(st, &kb, k)
				text = st.f.Unescape(kb.String())
			}
			entries = append(entries, dictEntry{key: text, val: iter.Value()})
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].key < entries[j].key })

		lx := st.lex
		b.WriteByte(lx.mapStart)
		for i, e := range entries {
			if i > 0 {
				b.WriteByte(lx.itemSep)
			}
			st.f.WriteMapKey(b, e.key)
			b.WriteByte(lx.keySep)
			val.fn(st, b, e.val)
		}
		b.WriteByte(lx.mapEnd)
	}
}

// dict reads a map value. With NestedObjectBags, map-looking values of an
// any-typed dictionary without a type hint become map[string]any.
func (rb *readBuilder) dict(t reflect.Type) readFn {
	keyType, valType := t.Key(), t.Elem()
	key := rb.plan(keyType)
	val := rb.plan(valType)
	plainKey := isPlainString(keyType)
	bags := valType == anyType

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

		out := reflect.MakeMap(t)
		err := st.eachEntry(raw, t, func(k, rawVal string) error {
			kv := reflect.New(keyType).Elem()
			if plainKey {
				kv.SetString(k)
			} else if err := key.fn(st, k, kv); err != nil {
				return err
			}

			vv := reflect.New(valType).Elem()
			plan := val
			if bags && st.cfg.NestedObjectBags && isMapLike(st.lex, rawVal) {
				if _, hinted := peekTypeHint(st.f, rawVal); !hinted {
					plan = readPlanFor(st.f, mapStringAnyType)
					vv = reflect.New(mapStringAnyType).Elem()
				}
			}
			if err := plan.fn(st, rawVal, vv); err != nil {
				return err
			}
			out.SetMapIndex(kv, vv)
			return nil
		})
		if err != nil {
			return err
		}
		dst.Set(out)
		return nil
	}
}

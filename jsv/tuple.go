package jsv

// KeyValuePair is a single dictionary entry, written as {Key:k,Value:v}.
type KeyValuePair[K, V any] struct {
	Key   K
	Value V
}

// NewKeyValuePair creates a KeyValuePair.
func NewKeyValuePair[K, V any](key K, value V) KeyValuePair[K, V] {
	return KeyValuePair[K, V]{Key: key, Value: value}
}

func (KeyValuePair[K, V]) keyValuePair() {}

// Tuple2 is a fixed-arity tuple, written as {Item1:a,Item2:b}.
type Tuple2[T1, T2 any] struct {
	Item1 T1
	Item2 T2
}

// Tuple3 is a fixed-arity tuple with three items.
type Tuple3[T1, T2, T3 any] struct {
	Item1 T1
	Item2 T2
	Item3 T3
}

// Tuple4 is a fixed-arity tuple with four items.
type Tuple4[T1, T2, T3, T4 any] struct {
	Item1 T1
	Item2 T2
	Item3 T3
	Item4 T4
}

func (Tuple2[T1, T2]) tuple()         {}
func (Tuple3[T1, T2, T3]) tuple()     {}
func (Tuple4[T1, T2, T3, T4]) tuple() {}

// NewTuple2 creates a Tuple2.
func NewTuple2[T1, T2 any](a T1, b T2) Tuple2[T1, T2] {
	return Tuple2[T1, T2]{Item1: a, Item2: b}
}

// NewTuple3 creates a Tuple3.
func NewTuple3[T1, T2, T3 any](a T1, b T2, c T3) Tuple3[T1, T2, T3] {
	return Tuple3[T1, T2, T3]{Item1: a, Item2: b, Item3: c}
}

// NewTuple4 creates a Tuple4.
func NewTuple4[T1, T2, T3, T4 any](a T1, b T2, c T3, d T4) Tuple4[T1, T2, T3, T4] {
	return Tuple4[T1, T2, T3, T4]{Item1: a, Item2: b, Item3: c, Item4: d}
}

type keyValuePairMarker interface{ keyValuePair() }

type tupleMarker interface{ tuple() }

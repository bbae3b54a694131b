package ply

import "slices"

// Number is the set of Go types a property buffer can hold, one per
// ScalarType.
type Number interface {
	int8 | uint8 | int16 | uint16 | int32 | uint32 | float32 | float64
}

// isNil reports a nil destination held in a non-nil interface.
func isNil(b Buffer) bool { return b == nil || b.isNil() }

// Buffer is the type-erased view of a *Slice the engine reads from and
// appends to. Only *Slice implements it.
type Buffer interface {
	Type() ScalarType
	Len() int

	grow(n int) int
	store(i int, v float64)
	load(i int) float64
	pushCount(n int)
	listCounts() []int
	isNil() bool
}

// Slice is a caller-owned property buffer. Values holds scalars packed
// per instance, or the flattened items of a list property. Counts holds
// one item count per instance for list properties.
type Slice[T Number] struct {
	Values []T
	Counts []int
}

func NewSlice[T Number](values ...T) *Slice[T] {
	return &Slice[T]{Values: values}
}

// NewList builds a list buffer from per-instance item slices.
func NewList[T Number](lists ...[]T) *Slice[T] {
	s := &Slice[T]{Counts: make([]int, 0, len(lists))}
	for _, l := range lists {
		s.Values = append(s.Values, l...)
		s.Counts = append(s.Counts, len(l))
	}
	return s
}

// NewBuffer allocates an empty buffer whose element type matches t.
func NewBuffer(t ScalarType) Buffer {
	switch t {
	case Int8:
		return &Slice[int8]{}
	case Uint8:
		return &Slice[uint8]{}
	case Int16:
		return &Slice[int16]{}
	case Uint16:
		return &Slice[uint16]{}
	case Int32:
		return &Slice[int32]{}
	case Uint32:
		return &Slice[uint32]{}
	case Float32:
		return &Slice[float32]{}
	case Float64:
		return &Slice[float64]{}
	}
	return nil
}

func (s *Slice[T]) Type() ScalarType { return typeOf[T]() }
func (s *Slice[T]) Len() int         { return len(s.Values) }

// List returns the items of list instance i. Offsets are recomputed on
// every call; iterate Values with Counts directly in hot loops.
func (s *Slice[T]) List(i int) []T {
	off := 0
	for _, c := range s.Counts[:i] {
		off += c
	}
	return s.Values[off : off+s.Counts[i]]
}

func (s *Slice[T]) grow(n int) int {
	base := len(s.Values)
	s.Values = slices.Grow(s.Values, n)[:base+n]
	return base
}

// store expects v already converted into T's value set.
func (s *Slice[T]) store(i int, v float64) { s.Values[i] = T(v) }
func (s *Slice[T]) load(i int) float64     { return float64(s.Values[i]) }
func (s *Slice[T]) pushCount(n int)        { s.Counts = append(s.Counts, n) }
func (s *Slice[T]) listCounts() []int      { return s.Counts }
func (s *Slice[T]) isNil() bool            { return s == nil }

func typeOf[T Number]() ScalarType {
	var zero T
	switch any(zero).(type) {
	case int8:
		return Int8
	case uint8:
		return Uint8
	case int16:
		return Int16
	case uint16:
		return Uint16
	case int32:
		return Int32
	case uint32:
		return Uint32
	case float32:
		return Float32
	case float64:
		return Float64
	}
	return Invalid
}

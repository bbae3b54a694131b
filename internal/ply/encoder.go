package ply

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"

	"github.com/tuannm99/plyfile/internal/alias/bx"
)

// encoder emits the body of one element at a time.
type encoder struct {
	w       *bufio.Writer
	ascii   bool
	order   binary.ByteOrder
	mode    Conversion
	strict  bool
	scratch []byte
	first   bool // no separator before the next ASCII token
}

func newEncoder(w *bufio.Writer, f Format, opts Options) *encoder {
	mode := opts.Conversion
	if opts.Strict {
		mode = ConvertStrict
	}
	return &encoder{
		w:       w,
		ascii:   f == FormatASCII,
		order:   bx.Order(f == FormatBinaryBigEndian),
		mode:    mode,
		strict:  opts.Strict,
		scratch: make([]byte, 0, 32),
	}
}

func (enc *encoder) element(e *Element, srcs []*source) error {
	for pi, s := range srcs {
		if err := s.check(&e.Properties[pi], e.Count); err != nil {
			return &SchemaError{Element: e.Name, Property: e.Properties[pi].Name, Msg: err.Error()}
		}
		s.next = 0
	}
	for n := 0; n < e.Count; n++ {
		enc.first = true
		for pi := range e.Properties {
			prop := &e.Properties[pi]
			var err error
			if prop.IsList {
				err = enc.list(prop, srcs[pi], n)
			} else {
				s := srcs[pi]
				err = enc.value(s.buf.load(n*s.stride+s.pos), s.buf.Type(), prop.ItemType)
			}
			if err != nil {
				return &EncodeError{Element: e.Name, Property: prop.Name, Instance: n, Err: err}
			}
		}
		if enc.ascii {
			if err := enc.w.WriteByte('\n'); err != nil {
				return err
			}
		}
	}
	return nil
}

func (enc *encoder) list(prop *Property, s *source, n int) error {
	count := prop.ItemCount
	if count == 0 {
		count = s.buf.listCounts()[n]
	}
	if float64(count) > prop.CountType.Max() {
		return fmt.Errorf("%w: list of %d items, count type %s", ErrLossyConversion, count, prop.CountType)
	}
	if err := enc.raw(float64(count), prop.CountType); err != nil {
		return err
	}
	for i := 0; i < count; i++ {
		if err := enc.value(s.buf.load(s.next+i), s.buf.Type(), prop.ItemType); err != nil {
			return err
		}
	}
	s.next += count
	return nil
}

// value converts v from the source type into the declared file type and
// writes it.
func (enc *encoder) value(v float64, from, t ScalarType) error {
	if enc.strict && from.IsFloat() && (math.IsNaN(v) || math.IsInf(v, 0)) {
		return fmt.Errorf("%w: %v", ErrNonFinite, v)
	}
	cv, err := convert(v, from, t, enc.mode)
	if err != nil {
		return err
	}
	return enc.raw(cv, t)
}

// raw writes a value already inside t's value set.
func (enc *encoder) raw(v float64, t ScalarType) error {
	if enc.ascii {
		b := enc.scratch[:0]
		if !enc.first {
			b = append(b, ' ')
		}
		enc.first = false
		switch {
		case t.IsFloat():
			b = strconv.AppendFloat(b, v, 'g', -1, t.Size()*8)
		case t.IsSigned():
			b = strconv.AppendInt(b, int64(v), 10)
		default:
			b = strconv.AppendUint(b, uint64(v), 10)
		}
		enc.scratch = b
		_, err := enc.w.Write(b)
		return err
	}

	var bits uint64
	switch {
	case t == Float32:
		bits = uint64(math.Float32bits(float32(v)))
	case t == Float64:
		bits = math.Float64bits(v)
	case t.IsSigned():
		bits = uint64(int64(v))
	default:
		bits = uint64(v)
	}
	b := enc.scratch[:t.Size()]
	bx.PutUint(enc.order, b, bits)
	_, err := enc.w.Write(b)
	return err
}

// check catches buffers resized after they were declared.
func (s *source) check(prop *Property, count int) error {
	switch {
	case !prop.IsList:
		if s.buf.Len() != count*s.stride {
			return fmt.Errorf("source holds %d values, want %d", s.buf.Len(), count*s.stride)
		}
	case prop.ItemCount > 0:
		if s.buf.Len() != count*prop.ItemCount {
			return fmt.Errorf("source holds %d items, want %d", s.buf.Len(), count*prop.ItemCount)
		}
	default:
		counts := s.buf.listCounts()
		if len(counts) != count {
			return fmt.Errorf("source holds %d list counts, want %d", len(counts), count)
		}
		total := 0
		for _, c := range counts {
			if c < 0 {
				return fmt.Errorf("negative list count %d", c)
			}
			total += c
		}
		if total != s.buf.Len() {
			return fmt.Errorf("counts add up to %d items, source holds %d", total, s.buf.Len())
		}
	}
	return nil
}

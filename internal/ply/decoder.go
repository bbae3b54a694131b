package ply

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
)

// Decoder reads one PLY stream: NewDecoder parses the header, Request
// binds destinations, Decode walks the body once.
type Decoder struct {
	schema *Schema
	plan   *Plan
	cur    *cursor
	opts   Options
	log    *slog.Logger
	done   bool
}

func NewDecoder(r io.Reader, opts Options) (*Decoder, error) {
	opts = opts.withDefaults()
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	s, off, err := parseHeader(br)
	if err != nil {
		return nil, err
	}
	if limit := opts.MaxElementCount; limit > 0 {
		for _, e := range s.Elements {
			if e.Count > limit {
				return nil, &FormatError{Msg: fmt.Sprintf("element %q declares %d instances, limit is %d", e.Name, e.Count, limit)}
			}
		}
	}
	opts.Logger.Debug("ply header parsed",
		"format", s.Format.String(),
		"elements", len(s.Elements),
		"body_offset", off)
	return &Decoder{
		schema: s,
		plan:   NewPlan(s),
		cur:    newCursor(br, s.Format, off),
		opts:   opts,
		log:    opts.Logger,
	}, nil
}

// Schema must not be modified once Decode has been called.
func (d *Decoder) Schema() *Schema { return d.schema }

func (d *Decoder) Request(element string, names []string, dst Buffer) (int, error) {
	return d.plan.Request(element, names, dst)
}

func (d *Decoder) Bindings() []*Binding { return d.plan.Bindings() }

// Offset is the absolute byte offset of the next unread body byte.
func (d *Decoder) Offset() int64 { return d.cur.pos }

// Decode reads the whole body in one forward pass. Values of unbound
// properties are read and dropped. On error the destinations hold whatever
// was decoded before the failure.
func (d *Decoder) Decode() error {
	if d.done {
		return ErrAlreadyDecoded
	}
	d.done = true
	d.plan.seal()

	for ei := range d.schema.Elements {
		if err := d.decodeElement(ei); err != nil {
			return err
		}
	}
	return nil
}

func (d *Decoder) decodeElement(ei int) error {
	e := &d.schema.Elements[ei]
	slots := d.plan.slots[ei]
	packed := d.plan.packed[ei]
	start := d.cur.pos

	// No properties means no body bytes, whatever the declared count.
	if len(e.Properties) == 0 {
		return nil
	}

	for n := 0; n < e.Count; n++ {
		for _, b := range packed {
			b.base = b.Dst.grow(b.Stride)
		}
		for pi := range e.Properties {
			prop := &e.Properties[pi]
			var err error
			if prop.IsList {
				err = d.decodeList(prop, slots[pi])
			} else {
				err = d.decodeScalar(prop, slots[pi])
			}
			if err != nil {
				return &DecodeError{
					Element:  e.Name,
					Property: prop.Name,
					Instance: n,
					Offset:   d.cur.at,
					Err:      err,
				}
			}
		}
	}

	d.log.Debug("ply element decoded",
		"element", e.Name,
		"count", e.Count,
		"offset", start,
		"bytes", d.cur.pos-start)
	return nil
}

func (d *Decoder) decodeScalar(prop *Property, s slot) error {
	if s.b == nil {
		return d.cur.skip(prop.ItemType, 1)
	}
	v, err := d.cur.read(prop.ItemType)
	if err != nil {
		return err
	}
	return d.put(s.b, s.b.base+s.pos, v, prop.ItemType)
}

func (d *Decoder) decodeList(prop *Property, s slot) error {
	n, err := d.readCount(prop.CountType)
	if err != nil {
		return err
	}
	if s.b == nil {
		return d.cur.skip(prop.ItemType, n)
	}

	base := s.b.Dst.grow(n)
	s.b.Dst.pushCount(n)
	for i := 0; i < n; i++ {
		v, err := d.cur.read(prop.ItemType)
		if err != nil {
			return err
		}
		if err := d.put(s.b, base+i, v, prop.ItemType); err != nil {
			return err
		}
	}
	return nil
}

func (d *Decoder) readCount(t ScalarType) (int, error) {
	v, err := d.cur.read(t)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, fmt.Errorf("%w: %v", ErrNegativeCount, v)
	}
	if v > float64(d.opts.MaxListCount) {
		return 0, fmt.Errorf("%w: %v > %d", ErrListTooLong, v, d.opts.MaxListCount)
	}
	return int(v), nil
}

func (d *Decoder) put(b *Binding, i int, v float64, from ScalarType) error {
	cv, err := convert(v, from, b.Target, d.opts.Conversion)
	if err != nil {
		return err
	}
	b.Dst.store(i, cv)
	return nil
}

package ply

// Binding is a resolved request: which properties of an element land in
// which destination buffer. It references the schema it was resolved
// against and is only valid while that schema is.
type Binding struct {
	Element string
	Names   []string
	Indices []int
	Target  ScalarType
	Dst     Buffer
	// Stride is the number of values one instance appends for a scalar
	// request. It is 0 for a list request, whose length is read per
	// instance.
	Stride int

	elem int
	base int // first value of the instance being decoded
}

func (b *Binding) IsList() bool { return b.Stride == 0 }

// slot is where one property's values go; b is nil for unbound properties.
type slot struct {
	b   *Binding
	pos int
}

// Plan collects the bindings for one decode. Names are resolved to indices
// once, here, so decoding never looks a property up by name.
type Plan struct {
	schema   *Schema
	bindings []*Binding
	slots    [][]slot     // [element][property]
	packed   [][]*Binding // scalar bindings per element
	sealed   bool
}

func NewPlan(s *Schema) *Plan {
	p := &Plan{
		schema: s,
		slots:  make([][]slot, len(s.Elements)),
		packed: make([][]*Binding, len(s.Elements)),
	}
	for i := range s.Elements {
		p.slots[i] = make([]slot, len(s.Elements[i].Properties))
	}
	return p
}

// Request binds names of element to dst and returns the element's declared
// instance count. Scalars requested together are interleaved per instance
// in the order given; a list must be requested alone.
func (p *Plan) Request(element string, names []string, dst Buffer) (int, error) {
	if p.sealed {
		return 0, schemaErr(element, "", "request after decoding started")
	}
	if isNil(dst) {
		return 0, schemaErr(element, "", "nil destination")
	}
	if len(names) == 0 {
		return 0, schemaErr(element, "", "no properties requested")
	}
	ei := p.schema.elementIndex(element)
	if ei < 0 {
		return 0, schemaErr(element, "", "unknown element")
	}
	e := &p.schema.Elements[ei]

	b := &Binding{
		Element: element,
		Names:   append([]string(nil), names...),
		Indices: make([]int, len(names)),
		Target:  dst.Type(),
		Dst:     dst,
		Stride:  len(names),
		elem:    ei,
	}
	lists := 0
	for i, name := range names {
		pi, ok := e.Property(name)
		if !ok {
			return 0, schemaErr(element, name, "unknown property")
		}
		for _, prev := range b.Indices[:i] {
			if prev == pi {
				return 0, schemaErr(element, name, "requested twice")
			}
		}
		if p.slots[ei][pi].b != nil {
			return 0, schemaErr(element, name, "already bound by an earlier request")
		}
		if e.Properties[pi].IsList {
			lists++
		}
		b.Indices[i] = pi
	}
	if lists > 0 {
		if len(names) > 1 {
			return 0, schemaErr(element, "", "a list property must be requested alone")
		}
		b.Stride = 0
	}

	for i, pi := range b.Indices {
		p.slots[ei][pi] = slot{b: b, pos: i}
	}
	if !b.IsList() {
		p.packed[ei] = append(p.packed[ei], b)
	}
	p.bindings = append(p.bindings, b)
	return e.Count, nil
}

func (p *Plan) Bindings() []*Binding { return p.bindings }

func (p *Plan) seal() { p.sealed = true }

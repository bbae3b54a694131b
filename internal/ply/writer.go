package ply

import (
	"bufio"
	"io"
	"log/slog"
	"strings"
)

// source is where the encoder takes one property's values from.
type source struct {
	buf    Buffer
	stride int // values per instance of the packed group (scalars)
	pos    int // position inside the group (scalars)
	next   int // next unread item (lists)
}

// Writer builds a schema from caller buffers and writes header and body.
// Elements and properties are written in the order they were added.
type Writer struct {
	schema  Schema
	sources [][]*source
	opts    Options
	log     *slog.Logger
}

func NewWriter(format Format, opts Options) *Writer {
	opts = opts.withDefaults()
	return &Writer{
		schema: Schema{Format: format, Version: DefaultVersion},
		opts:   opts,
		log:    opts.Logger,
	}
}

// Schema returns the schema being built; it is written as is by WriteTo.
func (w *Writer) Schema() *Schema { return &w.schema }

// AddComment appends a comment line. Line breaks become spaces.
func (w *Writer) AddComment(c string) {
	w.schema.Comments = append(w.schema.Comments, oneLine(c))
}

func (w *Writer) AddObjInfo(s string) {
	w.schema.ObjInfo = append(w.schema.ObjInfo, oneLine(s))
}

// AddElement declares an element up front. It is only needed to fix the
// element order or to write elements without properties.
func (w *Writer) AddElement(name string, count int) error {
	_, err := w.element(name, count)
	return err
}

// AddProperties declares scalar properties of element backed by src, which
// holds the values packed per instance in the order of names. fileType is
// the type written to the file; src values are converted to it.
func (w *Writer) AddProperties(element string, names []string, fileType ScalarType, src Buffer) error {
	if isNil(src) {
		return schemaErr(element, "", "nil source")
	}
	if len(names) == 0 {
		return schemaErr(element, "", "no properties declared")
	}
	if !fileType.Valid() {
		return schemaErr(element, names[0], "invalid type")
	}
	if src.Len()%len(names) != 0 {
		return schemaErr(element, "", "%d values do not split into %d properties", src.Len(), len(names))
	}
	ei, err := w.element(element, src.Len()/len(names))
	if err != nil {
		return err
	}
	if err := w.checkNames(ei, names); err != nil {
		return err
	}

	e := &w.schema.Elements[ei]
	for i, name := range names {
		e.Properties = append(e.Properties, ScalarProperty(name, fileType))
		w.sources[ei] = append(w.sources[ei], &source{buf: src, stride: len(names), pos: i})
	}
	return nil
}

// AddListProperty declares a list property. With fixedCount > 0 every
// instance holds that many items of src.Values; otherwise src.Counts gives
// the length of each instance.
func (w *Writer) AddListProperty(element, name string, countType, itemType ScalarType, src Buffer, fixedCount int) error {
	if isNil(src) {
		return schemaErr(element, name, "nil source")
	}
	if !countType.Valid() || countType.IsFloat() {
		return schemaErr(element, name, "list count type must be an integer type")
	}
	if !itemType.Valid() {
		return schemaErr(element, name, "invalid item type")
	}

	var count int
	if fixedCount > 0 {
		if src.Len()%fixedCount != 0 {
			return schemaErr(element, name, "%d items do not split into lists of %d", src.Len(), fixedCount)
		}
		count = src.Len() / fixedCount
	} else {
		total := 0
		for _, c := range src.listCounts() {
			if c < 0 {
				return schemaErr(element, name, "negative list count %d", c)
			}
			total += c
		}
		if total != src.Len() {
			return schemaErr(element, name, "counts add up to %d items, buffer holds %d", total, src.Len())
		}
		count = len(src.listCounts())
	}

	ei, err := w.element(element, count)
	if err != nil {
		return err
	}
	if err := w.checkNames(ei, []string{name}); err != nil {
		return err
	}

	prop := ListProperty(name, countType, itemType)
	if fixedCount > 0 {
		prop.ItemCount = fixedCount
	}
	w.schema.Elements[ei].Properties = append(w.schema.Elements[ei].Properties, prop)
	w.sources[ei] = append(w.sources[ei], &source{buf: src})
	return nil
}

// element returns the index of the named element, creating it when new.
// count must agree with what the element already holds.
func (w *Writer) element(name string, count int) (int, error) {
	if ei := w.schema.elementIndex(name); ei >= 0 {
		if have := w.schema.Elements[ei].Count; have != count {
			return 0, schemaErr(name, "", "instance count %d does not match %d", count, have)
		}
		return ei, nil
	}
	if name == "" || strings.ContainsAny(name, " \t\r\n") {
		return 0, schemaErr(name, "", "invalid element name")
	}
	if count < 0 {
		return 0, schemaErr(name, "", "negative count %d", count)
	}
	w.schema.Elements = append(w.schema.Elements, Element{Name: name, Count: count})
	w.sources = append(w.sources, nil)
	return len(w.schema.Elements) - 1, nil
}

func (w *Writer) checkNames(ei int, names []string) error {
	e := &w.schema.Elements[ei]
	for i, name := range names {
		if name == "" || strings.ContainsAny(name, " \t\r\n") {
			return schemaErr(e.Name, name, "invalid property name")
		}
		if _, dup := e.Property(name); dup {
			return schemaErr(e.Name, name, "duplicate property")
		}
		for _, prev := range names[:i] {
			if prev == name {
				return schemaErr(e.Name, name, "duplicate property")
			}
		}
	}
	return nil
}

// WriteTo writes the header and then the body. The sink is neither flushed
// nor closed beyond the internal buffer used here.
func (w *Writer) WriteTo(out io.Writer) (int64, error) {
	cw := &countingWriter{w: out}
	bw := bufio.NewWriter(cw)

	if _, err := w.schema.WriteHeader(bw); err != nil {
		return 0, err
	}
	enc := newEncoder(bw, w.schema.Format, w.opts)
	for ei := range w.schema.Elements {
		e := &w.schema.Elements[ei]
		if ei >= len(w.sources) || len(w.sources[ei]) != len(e.Properties) {
			return cw.n, schemaErr(e.Name, "", "properties added without a source buffer")
		}
		if err := enc.element(e, w.sources[ei]); err != nil {
			return cw.n, err
		}
	}
	if err := bw.Flush(); err != nil {
		return cw.n, err
	}

	w.log.Debug("ply written",
		"format", w.schema.Format.String(),
		"elements", len(w.schema.Elements),
		"bytes", cw.n)
	return cw.n, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

func oneLine(s string) string {
	return strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(s)
}

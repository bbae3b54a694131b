package ply

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const magic = "ply"

// maxHeaderLine bounds one header line, so a body without line breaks is
// rejected before it is buffered whole.
const maxHeaderLine = 64 << 10

var errLineTooLong = errors.New("header line too long")

// ParseHeader reads a header through end_header. When r is a *bufio.Reader
// it is left positioned at the first body byte; any other reader is wrapped
// and may be read past the header.
func ParseHeader(r io.Reader) (*Schema, error) {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	s, _, err := parseHeader(br)
	return s, err
}

// parseHeader also returns the number of bytes consumed, which is the byte
// offset of the body.
func parseHeader(br *bufio.Reader) (*Schema, int64, error) {
	p := headerParser{s: &Schema{}}
	var consumed int64
	for {
		raw, err := readLine(br)
		consumed += int64(len(raw))
		if err == errLineTooLong {
			return nil, consumed, &FormatError{Line: p.line + 1, Msg: fmt.Sprintf("line exceeds %d bytes", maxHeaderLine)}
		}
		if raw != "" {
			p.line++
			done, perr := p.parseLine(strings.TrimRight(raw, "\r\n"))
			if perr != nil {
				return nil, consumed, perr
			}
			if done {
				return p.s, consumed, nil
			}
		}
		if err == io.EOF {
			if p.line == 0 {
				return nil, consumed, &FormatError{Msg: "empty input"}
			}
			return nil, consumed, &FormatError{Msg: "missing end_header"}
		}
		if err != nil {
			return nil, consumed, fmt.Errorf("ply: read header: %w", err)
		}
	}
}

// readLine is ReadString('\n') with a length ceiling of maxHeaderLine.
func readLine(br *bufio.Reader) (string, error) {
	var line []byte
	for {
		chunk, err := br.ReadSlice('\n')
		line = append(line, chunk...)
		if len(line) > maxHeaderLine {
			return string(line), errLineTooLong
		}
		if err != bufio.ErrBufferFull {
			return string(line), err
		}
	}
}

type headerParser struct {
	s    *Schema
	line int
	text string
	cur  *Element
}

func (p *headerParser) fail(format string, args ...any) error {
	return &FormatError{Line: p.line, Text: p.text, Msg: fmt.Sprintf(format, args...)}
}

// parseLine handles one header line and reports whether it was end_header.
func (p *headerParser) parseLine(text string) (bool, error) {
	p.text = text
	if p.line == 1 {
		if strings.TrimSpace(text) != magic {
			return false, p.fail("first line must be %q", magic)
		}
		return false, nil
	}

	fields := strings.Fields(text)
	if len(fields) == 0 {
		return false, nil
	}

	switch fields[0] {
	case "format":
		return false, p.parseFormat(fields)
	case "comment":
		p.s.Comments = append(p.s.Comments, trailingText(text, "comment"))
	case "obj_info":
		p.s.ObjInfo = append(p.s.ObjInfo, trailingText(text, "obj_info"))
	case "element":
		return false, p.parseElement(fields)
	case "property":
		return false, p.parseProperty(fields)
	case "end_header":
		if len(fields) != 1 {
			return false, p.fail("end_header takes no arguments")
		}
		if p.s.Format == 0 {
			return false, p.fail("missing format directive")
		}
		return true, nil
	default:
		return false, p.fail("unknown directive %q", fields[0])
	}
	return false, nil
}

func (p *headerParser) parseFormat(fields []string) error {
	if p.s.Format != 0 {
		return p.fail("duplicate format directive")
	}
	if len(fields) != 3 {
		return p.fail("want: format <ascii|binary_little_endian|binary_big_endian> <version>")
	}
	f, err := ParseFormat(fields[1])
	if err != nil {
		return p.fail("%v", err)
	}
	p.s.Format = f
	p.s.Version = fields[2]
	return nil
}

func (p *headerParser) parseElement(fields []string) error {
	if p.s.Format == 0 {
		return p.fail("element before format directive")
	}
	if len(fields) != 3 {
		return p.fail("want: element <name> <count>")
	}
	name := fields[1]
	if p.s.elementIndex(name) >= 0 {
		return p.fail("duplicate element %q", name)
	}
	n, err := strconv.ParseUint(fields[2], 10, 63)
	if err != nil {
		return p.fail("bad element count %q", fields[2])
	}
	p.s.Elements = append(p.s.Elements, Element{Name: name, Count: int(n)})
	p.cur = &p.s.Elements[len(p.s.Elements)-1]
	return nil
}

func (p *headerParser) parseProperty(fields []string) error {
	if p.cur == nil {
		return p.fail("property before any element")
	}

	var prop Property
	if len(fields) >= 2 && fields[1] == "list" {
		if len(fields) != 5 {
			return p.fail("want: property list <count_type> <item_type> <name>")
		}
		ct, ok := ParseScalarType(fields[2])
		if !ok {
			return p.fail("unknown type %q", fields[2])
		}
		if ct.IsFloat() {
			return p.fail("list count type %s is not integral", ct)
		}
		it, ok := ParseScalarType(fields[3])
		if !ok {
			return p.fail("unknown type %q", fields[3])
		}
		prop = ListProperty(fields[4], ct, it)
	} else {
		if len(fields) != 3 {
			return p.fail("want: property <type> <name>")
		}
		t, ok := ParseScalarType(fields[1])
		if !ok {
			return p.fail("unknown type %q", fields[1])
		}
		prop = ScalarProperty(fields[2], t)
	}

	if _, dup := p.cur.Property(prop.Name); dup {
		return p.fail("duplicate property %q in element %q", prop.Name, p.cur.Name)
	}
	p.cur.Properties = append(p.cur.Properties, prop)
	return nil
}

// trailingText returns what follows the keyword and its single separator.
func trailingText(line, keyword string) string {
	rest := strings.TrimLeft(line, " \t")[len(keyword):]
	if rest != "" && (rest[0] == ' ' || rest[0] == '\t') {
		rest = rest[1:]
	}
	return rest
}

// Validate checks the invariants a header must satisfy before it is written.
func (s *Schema) Validate() error {
	if s.Format.String() == "unknown" {
		return schemaErr("", "", "unknown format %d", s.Format)
	}
	if strings.ContainsAny(s.Version, " \t\r\n") {
		return schemaErr("", "", "invalid version %q", s.Version)
	}
	for _, c := range s.Comments {
		if strings.ContainsAny(c, "\r\n") {
			return schemaErr("", "", "comment %q spans lines", c)
		}
	}
	for _, o := range s.ObjInfo {
		if strings.ContainsAny(o, "\r\n") {
			return schemaErr("", "", "obj_info %q spans lines", o)
		}
	}
	seen := make(map[string]bool, len(s.Elements))
	for i := range s.Elements {
		e := &s.Elements[i]
		if e.Name == "" || strings.ContainsAny(e.Name, " \t\r\n") {
			return schemaErr(e.Name, "", "invalid element name")
		}
		if seen[e.Name] {
			return schemaErr(e.Name, "", "duplicate element")
		}
		seen[e.Name] = true
		if e.Count < 0 {
			return schemaErr(e.Name, "", "negative count %d", e.Count)
		}
		props := make(map[string]bool, len(e.Properties))
		for _, prop := range e.Properties {
			if prop.Name == "" || strings.ContainsAny(prop.Name, " \t\r\n") {
				return schemaErr(e.Name, prop.Name, "invalid property name")
			}
			if props[prop.Name] {
				return schemaErr(e.Name, prop.Name, "duplicate property")
			}
			props[prop.Name] = true
			if !prop.ItemType.Valid() {
				return schemaErr(e.Name, prop.Name, "invalid item type")
			}
			if prop.IsList && (!prop.CountType.Valid() || prop.CountType.IsFloat()) {
				return schemaErr(e.Name, prop.Name, "list count type must be an integer type")
			}
		}
	}
	return nil
}

// Header serializes the schema. Output depends only on the schema, so equal
// schemas always produce identical bytes.
func (s *Schema) Header() string {
	var b strings.Builder
	b.WriteString(magic + "\n")

	version := s.Version
	if version == "" {
		version = DefaultVersion
	}
	fmt.Fprintf(&b, "format %s %s\n", s.Format, version)

	for _, c := range s.Comments {
		b.WriteString("comment " + c + "\n")
	}
	for _, o := range s.ObjInfo {
		b.WriteString("obj_info " + o + "\n")
	}
	for _, e := range s.Elements {
		fmt.Fprintf(&b, "element %s %d\n", e.Name, e.Count)
		for _, prop := range e.Properties {
			if prop.IsList {
				fmt.Fprintf(&b, "property list %s %s %s\n", prop.CountType, prop.ItemType, prop.Name)
			} else {
				fmt.Fprintf(&b, "property %s %s\n", prop.ItemType, prop.Name)
			}
		}
	}
	b.WriteString("end_header\n")
	return b.String()
}

// WriteHeader validates the schema and writes its header to w.
func (s *Schema) WriteHeader(w io.Writer) (int64, error) {
	if err := s.Validate(); err != nil {
		return 0, err
	}
	n, err := io.WriteString(w, s.Header())
	return int64(n), err
}

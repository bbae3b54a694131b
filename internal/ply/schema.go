package ply

import "fmt"

// Format is the encoding of the body that follows the header.
type Format uint8

const (
	FormatASCII Format = iota + 1
	FormatBinaryLittleEndian
	FormatBinaryBigEndian
)

// DefaultVersion is the only version the PLY header grammar defines.
const DefaultVersion = "1.0"

func (f Format) String() string {
	switch f {
	case FormatASCII:
		return "ascii"
	case FormatBinaryLittleEndian:
		return "binary_little_endian"
	case FormatBinaryBigEndian:
		return "binary_big_endian"
	default:
		return "unknown"
	}
}

func (f Format) IsBinary() bool { return f == FormatBinaryLittleEndian || f == FormatBinaryBigEndian }

// ParseFormat accepts the header token of a format.
func ParseFormat(token string) (Format, error) {
	switch token {
	case "ascii":
		return FormatASCII, nil
	case "binary_little_endian":
		return FormatBinaryLittleEndian, nil
	case "binary_big_endian":
		return FormatBinaryBigEndian, nil
	}
	return 0, fmt.Errorf("unknown format %q", token)
}

// Property describes one attribute of an element.
type Property struct {
	Name      string
	IsList    bool
	CountType ScalarType // list only
	ItemType  ScalarType
	// ItemCount is 1 for scalars. For lists it is 0 when the length is
	// read per instance, or the fixed length a writer declared.
	ItemCount int
}

func ScalarProperty(name string, t ScalarType) Property {
	return Property{Name: name, ItemType: t, ItemCount: 1}
}

func ListProperty(name string, countType, itemType ScalarType) Property {
	return Property{Name: name, IsList: true, CountType: countType, ItemType: itemType}
}

// Element is a named, counted group of records. Properties are kept in
// on-disk order.
type Element struct {
	Name       string
	Count      int
	Properties []Property
}

// Property returns the index of the named property.
func (e *Element) Property(name string) (int, bool) {
	for i := range e.Properties {
		if e.Properties[i].Name == name {
			return i, true
		}
	}
	return -1, false
}

// Schema is the in-memory model of a header.
type Schema struct {
	Format   Format
	Version  string
	Elements []Element
	Comments []string
	ObjInfo  []string
}

// Element returns the named element.
func (s *Schema) Element(name string) (*Element, bool) {
	i := s.elementIndex(name)
	if i < 0 {
		return nil, false
	}
	return &s.Elements[i], true
}

func (s *Schema) elementIndex(name string) int {
	for i := range s.Elements {
		if s.Elements[i].Name == name {
			return i
		}
	}
	return -1
}

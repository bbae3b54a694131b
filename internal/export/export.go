// Package export renders PLY schemas and decoded property buffers as YAML,
// JSON or CBOR documents for inspection and hand-off to other tools.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"

	"github.com/tuannm99/plyfile/internal/ply"
)

type Encoding string

const (
	YAML Encoding = "yaml"
	JSON Encoding = "json"
	CBOR Encoding = "cbor"
)

func ParseEncoding(s string) (Encoding, error) {
	switch e := Encoding(s); e {
	case YAML, JSON, CBOR:
		return e, nil
	}
	return "", fmt.Errorf("export: unknown encoding %q", s)
}

// encMode uses Core Deterministic Encoding so the same dump always
// produces the same bytes.
var encMode cbor.EncMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("export: CBOR encoder initialization failed: " + err.Error())
	}
}

type PropertyDoc struct {
	Name      string `json:"name" yaml:"name"`
	Type      string `json:"type" yaml:"type"`
	List      bool   `json:"list,omitempty" yaml:"list,omitempty"`
	CountType string `json:"count_type,omitempty" yaml:"count_type,omitempty"`
	ItemCount int    `json:"item_count,omitempty" yaml:"item_count,omitempty"`
}

type ElementDoc struct {
	Name       string        `json:"name" yaml:"name"`
	Count      int           `json:"count" yaml:"count"`
	Properties []PropertyDoc `json:"properties" yaml:"properties"`
}

type SchemaDoc struct {
	Format   string       `json:"format" yaml:"format"`
	Version  string       `json:"version" yaml:"version"`
	Comments []string     `json:"comments,omitempty" yaml:"comments,omitempty"`
	ObjInfo  []string     `json:"obj_info,omitempty" yaml:"obj_info,omitempty"`
	Elements []ElementDoc `json:"elements" yaml:"elements"`
}

// Column is one decoded request.
type Column struct {
	Element    string   `json:"element" yaml:"element"`
	Properties []string `json:"properties" yaml:"properties"`
	Type       string   `json:"type" yaml:"type"`
	Count      int      `json:"count" yaml:"count"`
	Values     any      `json:"values" yaml:"values,flow"`
	Counts     []int    `json:"counts,omitempty" yaml:"counts,omitempty,flow"`
}

type Dump struct {
	Schema  SchemaDoc `json:"schema" yaml:"schema"`
	Columns []Column  `json:"columns" yaml:"columns"`
}

// Describe flattens a schema into a document.
func Describe(s *ply.Schema) SchemaDoc {
	doc := SchemaDoc{
		Format:   s.Format.String(),
		Version:  s.Version,
		Comments: s.Comments,
		ObjInfo:  s.ObjInfo,
		Elements: make([]ElementDoc, 0, len(s.Elements)),
	}
	for _, e := range s.Elements {
		ed := ElementDoc{Name: e.Name, Count: e.Count, Properties: make([]PropertyDoc, 0, len(e.Properties))}
		for _, p := range e.Properties {
			pd := PropertyDoc{Name: p.Name, Type: p.ItemType.String()}
			if p.IsList {
				pd.List = true
				pd.CountType = p.CountType.String()
				pd.ItemCount = p.ItemCount
			}
			ed.Properties = append(ed.Properties, pd)
		}
		doc.Elements = append(doc.Elements, ed)
	}
	return doc
}

// ColumnOf describes the values a binding produced. Call it after Decode.
func ColumnOf(b *ply.Binding, count int) Column {
	vals, counts := values(b.Dst)
	c := Column{
		Element:    b.Element,
		Properties: b.Names,
		Type:       b.Target.String(),
		Count:      count,
		Values:     vals,
	}
	if b.IsList() {
		c.Counts = counts
	}
	return c
}

// values returns the typed slice and list counts behind dst. Bytes become
// ints so JSON and CBOR emit arrays of numbers rather than byte strings.
func values(dst ply.Buffer) (any, []int) {
	switch s := dst.(type) {
	case *ply.Slice[uint8]:
		out := make([]int, len(s.Values))
		for i, v := range s.Values {
			out[i] = int(v)
		}
		return out, s.Counts
	case *ply.Slice[int8]:
		return s.Values, s.Counts
	case *ply.Slice[int16]:
		return s.Values, s.Counts
	case *ply.Slice[uint16]:
		return s.Values, s.Counts
	case *ply.Slice[int32]:
		return s.Values, s.Counts
	case *ply.Slice[uint32]:
		return s.Values, s.Counts
	case *ply.Slice[float32]:
		return Floats32(s.Values), s.Counts
	case *ply.Slice[float64]:
		return Floats64(s.Values), s.Counts
	}
	return nil, nil
}

// Floats32 and Floats64 hold float columns. JSON has no NaN or infinity,
// so those values are written as null there; YAML and CBOR keep them.
type (
	Floats32 []float32
	Floats64 []float64
)

func (f Floats32) MarshalJSON() ([]byte, error) { return floatsJSON(f, 32), nil }
func (f Floats64) MarshalJSON() ([]byte, error) { return floatsJSON(f, 64), nil }

func floatsJSON[T float32 | float64](vals []T, bits int) []byte {
	b := make([]byte, 0, 2+8*len(vals))
	b = append(b, '[')
	for i, v := range vals {
		if i > 0 {
			b = append(b, ',')
		}
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			b = append(b, "null"...)
			continue
		}
		b = strconv.AppendFloat(b, f, 'g', -1, bits)
	}
	return append(b, ']')
}

// Write encodes v to w.
func Write(w io.Writer, enc Encoding, v any) error {
	switch enc {
	case YAML:
		ye := yaml.NewEncoder(w)
		ye.SetIndent(2)
		if err := ye.Encode(v); err != nil {
			return fmt.Errorf("export: yaml: %w", err)
		}
		return ye.Close()
	case JSON:
		je := json.NewEncoder(w)
		je.SetIndent("", "  ")
		if err := je.Encode(v); err != nil {
			return fmt.Errorf("export: json: %w", err)
		}
		return nil
	case CBOR:
		if err := encMode.NewEncoder(w).Encode(v); err != nil {
			return fmt.Errorf("export: cbor: %w", err)
		}
		return nil
	}
	return fmt.Errorf("export: unknown encoding %q", enc)
}

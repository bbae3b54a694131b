package ply

import "math"

// ScalarType is one of the eight value kinds a PLY property can hold.
type ScalarType uint8

const (
	Invalid ScalarType = iota
	Int8
	Uint8
	Int16
	Uint16
	Int32
	Uint32
	Float32
	Float64
)

type scalarInfo struct {
	token   string
	size    int
	float   bool
	signed  bool
	min     float64
	max     float64
	aliases []string
}

// scalarTable is initialised once and never written afterwards, so it is
// safe to read from any number of decoders at once.
var scalarTable = [...]scalarInfo{
	Invalid: {token: "invalid"},
	Int8:    {token: "int8", size: 1, signed: true, min: math.MinInt8, max: math.MaxInt8, aliases: []string{"char"}},
	Uint8:   {token: "uint8", size: 1, min: 0, max: math.MaxUint8, aliases: []string{"uchar"}},
	Int16:   {token: "int16", size: 2, signed: true, min: math.MinInt16, max: math.MaxInt16, aliases: []string{"short"}},
	Uint16:  {token: "uint16", size: 2, min: 0, max: math.MaxUint16, aliases: []string{"ushort"}},
	Int32:   {token: "int32", size: 4, signed: true, min: math.MinInt32, max: math.MaxInt32, aliases: []string{"int"}},
	Uint32:  {token: "uint32", size: 4, min: 0, max: math.MaxUint32, aliases: []string{"uint"}},
	Float32: {token: "float32", size: 4, float: true, signed: true, min: -math.MaxFloat32, max: math.MaxFloat32, aliases: []string{"float"}},
	Float64: {token: "float64", size: 8, float: true, signed: true, min: -math.MaxFloat64, max: math.MaxFloat64, aliases: []string{"double"}},
}

var scalarTokens = func() map[string]ScalarType {
	m := make(map[string]ScalarType)
	for i := Int8; i <= Float64; i++ {
		m[scalarTable[i].token] = i
		for _, a := range scalarTable[i].aliases {
			m[a] = i
		}
	}
	return m
}()

// ParseScalarType resolves a header token, canonical or alias.
func ParseScalarType(token string) (ScalarType, bool) {
	t, ok := scalarTokens[token]
	return t, ok
}

func (t ScalarType) info() scalarInfo {
	if int(t) >= len(scalarTable) {
		return scalarTable[Invalid]
	}
	return scalarTable[t]
}

func (t ScalarType) Valid() bool { return t >= Int8 && t <= Float64 }

// String returns the canonical header token.
func (t ScalarType) String() string { return t.info().token }

// Size is the encoded width in bytes.
func (t ScalarType) Size() int { return t.info().size }

func (t ScalarType) IsFloat() bool  { return t.info().float }
func (t ScalarType) IsSigned() bool { return t.info().signed }

// Min and Max bound the finite values the type can represent.
func (t ScalarType) Min() float64 { return t.info().min }
func (t ScalarType) Max() float64 { return t.info().max }

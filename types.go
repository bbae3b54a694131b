// Package plyfile is the top-level facade for the PLY codec in internal/ply.
package plyfile

import "github.com/tuannm99/plyfile/internal/ply"

type (
	ScalarType = ply.ScalarType
	Format     = ply.Format
	Conversion = ply.Conversion
	Options    = ply.Options

	Property = ply.Property
	Element  = ply.Element
	Schema   = ply.Schema
	Binding  = ply.Binding
	Buffer   = ply.Buffer

	Decoder = ply.Decoder
	Writer  = ply.Writer

	FormatError = ply.FormatError
	SchemaError = ply.SchemaError
	DecodeError = ply.DecodeError
	EncodeError = ply.EncodeError
)

// Slice is the typed buffer properties are read into and written from.
type Slice[T ply.Number] = ply.Slice[T]

const (
	Int8    = ply.Int8
	Uint8   = ply.Uint8
	Int16   = ply.Int16
	Uint16  = ply.Uint16
	Int32   = ply.Int32
	Uint32  = ply.Uint32
	Float32 = ply.Float32
	Float64 = ply.Float64

	ASCII              = ply.FormatASCII
	BinaryLittleEndian = ply.FormatBinaryLittleEndian
	BinaryBigEndian    = ply.FormatBinaryBigEndian

	ConvertTruncate = ply.ConvertTruncate
	ConvertStrict   = ply.ConvertStrict
)

var (
	ErrFormat = ply.ErrFormat
	ErrSchema = ply.ErrSchema
	ErrDecode = ply.ErrDecode
	ErrEncode = ply.ErrEncode

	NewDecoder     = ply.NewDecoder
	NewWriter      = ply.NewWriter
	ParseHeader    = ply.ParseHeader
	DefaultOptions = ply.DefaultOptions
)

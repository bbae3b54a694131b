package ply

import (
	"bytes"
	"encoding/binary"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// body appends binary values to a header in the given byte order.
func body(t *testing.T, header string, order binary.ByteOrder, values ...any) []byte {
	t.Helper()
	var buf bytes.Buffer
	buf.WriteString(header)
	for _, v := range values {
		require.NoError(t, binary.Write(&buf, order, v))
	}
	return buf.Bytes()
}

func meshHeader(format string) string {
	return "ply\nformat " + format + " 1.0\n" +
		"element vertex 2\n" +
		"property float32 x\nproperty float32 y\nproperty float32 z\n" +
		"element face 1\n" +
		"property list uint8 int32 vertex_indices\n" +
		"end_header\n"
}

func decodeMesh(t *testing.T, data []byte) (*Slice[float32], *Slice[int32]) {
	t.Helper()
	dec, err := NewDecoder(bytes.NewReader(data), DefaultOptions())
	require.NoError(t, err)

	verts := &Slice[float32]{}
	n, err := dec.Request("vertex", []string{"x", "y", "z"}, verts)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	faces := &Slice[int32]{}
	n, err = dec.Request("face", []string{"vertex_indices"}, faces)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, dec.Decode())
	return verts, faces
}

func TestDecode_VertexFaceBinaryLE(t *testing.T) {
	data := body(t, meshHeader("binary_little_endian"), binary.LittleEndian,
		[]float32{1, 2, 3, 4, 5, 6}, uint8(3), []int32{0, 1, 2})

	verts, faces := decodeMesh(t, data)
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6}, verts.Values)
	assert.Equal(t, []int32{0, 1, 2}, faces.Values)
	assert.Equal(t, []int{3}, faces.Counts)
}

func TestDecode_VertexFaceBinaryBE(t *testing.T) {
	data := body(t, meshHeader("binary_big_endian"), binary.BigEndian,
		[]float32{1, 2, 3, 4, 5, 6}, uint8(3), []int32{0, 1, 2})

	verts, faces := decodeMesh(t, data)
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6}, verts.Values)
	assert.Equal(t, []int32{0, 1, 2}, faces.Values)
}

func TestDecode_VertexFaceASCII(t *testing.T) {
	data := meshHeader("ascii") + "1 2 3\n4 5 6\n3 0 1 2\n"

	verts, faces := decodeMesh(t, []byte(data))
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6}, verts.Values)
	assert.Equal(t, []int32{0, 1, 2}, faces.Values)
}

func TestDecode_ASCIILastTokenWithoutNewline(t *testing.T) {
	data := meshHeader("ascii") + "1 2 3 4 5 6\r\n3 0 1 2"

	verts, faces := decodeMesh(t, []byte(data))
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6}, verts.Values)
	assert.Equal(t, []int32{0, 1, 2}, faces.Values)
}

func TestDecode_PackingFollowsRequestOrder(t *testing.T) {
	data := body(t, meshHeader("binary_little_endian"), binary.LittleEndian,
		[]float32{1, 2, 3, 4, 5, 6}, uint8(3), []int32{0, 1, 2})

	dec, err := NewDecoder(bytes.NewReader(data), DefaultOptions())
	require.NoError(t, err)

	zx := &Slice[float64]{}
	_, err = dec.Request("vertex", []string{"z", "x"}, zx)
	require.NoError(t, err)
	y := &Slice[float64]{}
	_, err = dec.Request("vertex", []string{"y"}, y)
	require.NoError(t, err)
	require.NoError(t, dec.Decode())

	assert.Equal(t, []float64{3, 1, 6, 4}, zx.Values)
	assert.Equal(t, []float64{2, 5}, y.Values)
}

func TestDecode_SkipsUnboundProperties(t *testing.T) {
	header := "ply\nformat binary_little_endian 1.0\n" +
		"element vertex 2\n" +
		"property list uint8 float64 junk\n" +
		"property uint16 id\n" +
		"property float64 w\n" +
		"end_header\n"
	data := body(t, header, binary.LittleEndian,
		uint8(2), []float64{9, 9}, uint16(7), float64(0.5),
		uint8(0), uint16(8), float64(1.5),
	)

	dec, err := NewDecoder(bytes.NewReader(data), DefaultOptions())
	require.NoError(t, err)
	ids := &Slice[uint32]{}
	_, err = dec.Request("vertex", []string{"id"}, ids)
	require.NoError(t, err)
	require.NoError(t, dec.Decode())

	assert.Equal(t, []uint32{7, 8}, ids.Values)
	assert.Equal(t, int64(len(data)), dec.Offset())
}

func TestDecode_ScalarAdvanceExact(t *testing.T) {
	types := []ScalarType{Int8, Uint8, Int16, Uint16, Int32, Uint32, Float32, Float64}
	for _, typ := range types {
		t.Run(typ.String(), func(t *testing.T) {
			const n = 5
			header := "ply\nformat binary_big_endian 1.0\nelement e 5\nproperty " + typ.String() + " v\nend_header\n"
			data := append([]byte(header), make([]byte, n*typ.Size()+3)...)

			dec, err := NewDecoder(bytes.NewReader(data), DefaultOptions())
			require.NoError(t, err)
			start := dec.Offset()
			assert.Equal(t, int64(len(header)), start)

			require.NoError(t, dec.Decode())
			assert.Equal(t, int64(n*typ.Size()), dec.Offset()-start)
		})
	}
}

func TestDecode_ListLengthsVaryPerInstance(t *testing.T) {
	header := "ply\nformat binary_little_endian 1.0\n" +
		"element face 3\n" +
		"property list uint8 uint16 idx\n" +
		"property uint8 tag\n" +
		"end_header\n"
	data := body(t, header, binary.LittleEndian,
		uint8(3), []uint16{1, 2, 3}, uint8(10),
		uint8(0), uint8(11),
		uint8(5), []uint16{4, 5, 6, 7, 8}, uint8(12),
	)

	dec, err := NewDecoder(bytes.NewReader(data), DefaultOptions())
	require.NoError(t, err)
	idx := &Slice[uint16]{}
	tags := &Slice[uint8]{}
	_, err = dec.Request("face", []string{"idx"}, idx)
	require.NoError(t, err)
	_, err = dec.Request("face", []string{"tag"}, tags)
	require.NoError(t, err)
	require.NoError(t, dec.Decode())

	assert.Equal(t, []int{3, 0, 5}, idx.Counts)
	assert.Equal(t, []uint16{1, 2, 3, 4, 5, 6, 7, 8}, idx.Values)
	assert.Equal(t, []uint16{4, 5, 6, 7, 8}, idx.List(2))
	assert.Empty(t, idx.List(1))
	assert.Equal(t, []uint8{10, 11, 12}, tags.Values)
}

func TestDecode_Uint8IntoFloat32AllValues(t *testing.T) {
	header := "ply\nformat binary_little_endian 1.0\nelement v 256\nproperty uchar c\nend_header\n"
	raw := make([]byte, 256)
	for i := range raw {
		raw[i] = byte(i)
	}

	dec, err := NewDecoder(bytes.NewReader(append([]byte(header), raw...)), DefaultOptions())
	require.NoError(t, err)
	dst := &Slice[float32]{}
	n, err := dec.Request("v", []string{"c"}, dst)
	require.NoError(t, err)
	require.Equal(t, 256, n)
	require.NoError(t, dec.Decode())

	require.Len(t, dst.Values, 256)
	for i, v := range dst.Values {
		assert.Equal(t, float32(i), v)
	}
}

func TestDecode_MixedSourceTypesPacked(t *testing.T) {
	header := "ply\nformat ascii 1.0\nelement v 2\n" +
		"property int8 a\nproperty float64 b\nproperty uint32 c\nend_header\n"
	data := header + "-3 2.75 4000000000\n127 -0.5 0\n"

	dec, err := NewDecoder(strings.NewReader(data), DefaultOptions())
	require.NoError(t, err)
	dst := &Slice[int16]{}
	_, err = dec.Request("v", []string{"a", "b", "c"}, dst)
	require.NoError(t, err)
	require.NoError(t, dec.Decode())

	// fractions truncate, 4e9 saturates at int16 max
	assert.Equal(t, []int16{-3, 2, 32767, 127, 0, 0}, dst.Values)
}

func TestDecode_StrictConversionFails(t *testing.T) {
	header := "ply\nformat ascii 1.0\nelement v 2\nproperty float32 x\nend_header\n"
	opts := DefaultOptions()
	opts.Conversion = ConvertStrict

	dec, err := NewDecoder(strings.NewReader(header+"1\n1.5\n"), opts)
	require.NoError(t, err)
	dst := &Slice[int32]{}
	_, err = dec.Request("v", []string{"x"}, dst)
	require.NoError(t, err)

	err = dec.Decode()
	require.ErrorIs(t, err, ErrDecode)
	require.ErrorIs(t, err, ErrLossyConversion)

	var de *DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "v", de.Element)
	assert.Equal(t, "x", de.Property)
	assert.Equal(t, 1, de.Instance)
	assert.Equal(t, int64(len(header)+2), de.Offset)
}

func TestDecode_TruncatedBinary(t *testing.T) {
	full := body(t, meshHeader("binary_little_endian"), binary.LittleEndian,
		[]float32{1, 2, 3, 4, 5, 6}, uint8(3), []int32{0, 1, 2})
	header := len(meshHeader("binary_little_endian"))

	for _, cut := range []int{header + 2, header + 12, header + 24, header + 25, len(full) - 1} {
		dec, err := NewDecoder(bytes.NewReader(full[:cut]), DefaultOptions())
		require.NoError(t, err)
		faces := &Slice[int32]{}
		_, err = dec.Request("face", []string{"vertex_indices"}, faces)
		require.NoError(t, err)

		err = dec.Decode()
		require.ErrorIs(t, err, ErrDecode, "cut at %d", cut)
		require.ErrorIs(t, err, io.ErrUnexpectedEOF, "cut at %d", cut)
	}
}

func TestDecode_TruncatedReportsLocation(t *testing.T) {
	full := body(t, meshHeader("binary_little_endian"), binary.LittleEndian,
		[]float32{1, 2, 3, 4, 5, 6}, uint8(3), []int32{0, 1, 2})
	header := len(meshHeader("binary_little_endian"))

	dec, err := NewDecoder(bytes.NewReader(full[:header+14]), DefaultOptions())
	require.NoError(t, err)
	err = dec.Decode()

	var de *DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "vertex", de.Element)
	assert.Equal(t, "x", de.Property)
	assert.Equal(t, 1, de.Instance)
	assert.Equal(t, int64(header+12), de.Offset)
}

func TestDecode_BadASCIIToken(t *testing.T) {
	data := meshHeader("ascii") + "1 2 3\n4 five 6\n3 0 1 2\n"
	dec, err := NewDecoder(strings.NewReader(data), DefaultOptions())
	require.NoError(t, err)

	err = dec.Decode()
	require.ErrorIs(t, err, ErrDecode)
	require.ErrorIs(t, err, ErrBadToken)

	var de *DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "y", de.Property)
	assert.Equal(t, int64(len(meshHeader("ascii"))+8), de.Offset)
}

func TestDecode_ASCIIIntegerOutOfRange(t *testing.T) {
	data := "ply\nformat ascii 1.0\nelement v 1\nproperty uint8 c\nend_header\n256\n"
	dec, err := NewDecoder(strings.NewReader(data), DefaultOptions())
	require.NoError(t, err)
	require.ErrorIs(t, dec.Decode(), ErrBadToken)
}

func TestDecode_ListCeiling(t *testing.T) {
	header := "ply\nformat binary_little_endian 1.0\nelement f 1\nproperty list uint32 uint8 idx\nend_header\n"
	data := body(t, header, binary.LittleEndian, uint32(1000), make([]byte, 1000))

	opts := DefaultOptions()
	opts.MaxListCount = 999
	dec, err := NewDecoder(bytes.NewReader(data), opts)
	require.NoError(t, err)
	require.ErrorIs(t, dec.Decode(), ErrListTooLong)

	opts.MaxListCount = 1000
	dec, err = NewDecoder(bytes.NewReader(data), opts)
	require.NoError(t, err)
	require.NoError(t, dec.Decode())
}

func TestDecode_NegativeListCount(t *testing.T) {
	header := "ply\nformat binary_little_endian 1.0\nelement f 1\nproperty list int8 uint8 idx\nend_header\n"
	data := body(t, header, binary.LittleEndian, int8(-1))

	dec, err := NewDecoder(bytes.NewReader(data), DefaultOptions())
	require.NoError(t, err)
	require.ErrorIs(t, dec.Decode(), ErrNegativeCount)
}

func TestDecode_Twice(t *testing.T) {
	dec, err := NewDecoder(strings.NewReader("ply\nformat ascii 1.0\nend_header\n"), DefaultOptions())
	require.NoError(t, err)
	require.NoError(t, dec.Decode())
	require.ErrorIs(t, dec.Decode(), ErrAlreadyDecoded)
}

func TestNewDecoder_BadHeader(t *testing.T) {
	_, err := NewDecoder(strings.NewReader("ply\nformat ascii 1.0\n"), DefaultOptions())
	require.ErrorIs(t, err, ErrFormat)
}

func TestDecode_ElementWithoutProperties(t *testing.T) {
	header := "ply\nformat binary_little_endian 1.0\nelement junk 9000000000000000000\nend_header\n"
	dec, err := NewDecoder(strings.NewReader(header), DefaultOptions())
	require.NoError(t, err)

	require.NoError(t, dec.Decode())
	assert.Equal(t, int64(len(header)), dec.Offset())
}

func TestDecode_HugeCountWithoutBody(t *testing.T) {
	header := "ply\nformat ascii 1.0\nelement v 9000000000000000000\nproperty uchar a\nend_header\n"
	dec, err := NewDecoder(strings.NewReader(header), DefaultOptions())
	require.NoError(t, err)

	err = dec.Decode()
	require.ErrorIs(t, err, ErrDecode)
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestNewDecoder_ElementCeiling(t *testing.T) {
	header := "ply\nformat ascii 1.0\nelement v 11\nproperty uchar a\nend_header\n"

	opts := DefaultOptions()
	opts.MaxElementCount = 10
	_, err := NewDecoder(strings.NewReader(header), opts)
	require.ErrorIs(t, err, ErrFormat)
	assert.Contains(t, err.Error(), `"v"`)

	opts.MaxElementCount = 11
	_, err = NewDecoder(strings.NewReader(header), opts)
	require.NoError(t, err)
}

// Package ply reads and writes PLY polygon files.
//
// A header declares elements (vertex, face, ...) each holding ordered, typed
// properties; the body follows as ASCII or little/big-endian binary.
//
// Reading:
//
//	dec, err := ply.NewDecoder(r, ply.DefaultOptions())
//	verts := &ply.Slice[float32]{}
//	n, err := dec.Request("vertex", []string{"x", "y", "z"}, verts)
//	faces := &ply.Slice[uint32]{}
//	_, err = dec.Request("face", []string{"vertex_indices"}, faces)
//	err = dec.Decode()
//
// Writing:
//
//	w := ply.NewWriter(ply.FormatBinaryLittleEndian, ply.DefaultOptions())
//	err := w.AddProperties("vertex", []string{"x", "y", "z"}, ply.Float32, verts)
//	err = w.AddListProperty("face", "vertex_indices", ply.Uint8, ply.Int32, faces, 0)
//	_, err = w.WriteTo(out)
//
// A Decoder or Writer belongs to one goroutine. Separate files can be
// processed in parallel with one instance each.
package ply

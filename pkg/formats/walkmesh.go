package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// Walk mesh format errors.
var (
	ErrInvalidWalkMeshChunk  = errors.New("invalid walk mesh chunk")
	ErrTruncatedWalkMeshData = errors.New("truncated walk mesh data")
	ErrWalkMeshIndex         = errors.New("invalid walk mesh index entry")
)

// Chunk magics, in file order.
const (
	chunkPositions = "p..."
	chunkNormals   = "n..."
	chunkTriangles = "tri0"
	chunkNames     = "str0"
	chunkIndex     = "idxA"
)

// WalkMeshIndexEntry describes one named mesh inside a walk mesh file.
// Ranges are half-open.
type WalkMeshIndexEntry struct {
	NameBegin, NameEnd         uint32
	VertexBegin, VertexEnd     uint32
	TriangleBegin, TriangleEnd uint32
}

// WalkMeshData holds the raw arrays of one walk mesh.
// Triangle indices are relative to this mesh's own vertices.
type WalkMeshData struct {
	Name      string
	Vertices  [][3]float32
	Normals   [][3]float32
	Triangles [][3]uint32
}

// WalkMeshes is a parsed walk mesh file (.w).
type WalkMeshes struct {
	Meshes []WalkMeshData
}

// Lookup returns the mesh with the given name.
func (w *WalkMeshes) Lookup(name string) (*WalkMeshData, bool) {
	for i := range w.Meshes {
		if w.Meshes[i].Name == name {
			return &w.Meshes[i], true
		}
	}
	return nil, false
}

// Names returns mesh names in file order.
func (w *WalkMeshes) Names() []string {
	names := make([]string, len(w.Meshes))
	for i, m := range w.Meshes {
		names[i] = m.Name
	}
	return names
}

// ParseWalkMeshes parses a walk mesh file from raw bytes.
//
// The file is a sequence of chunks, each a 4-byte magic, a little-endian
// uint32 byte size and the payload: positions, normals, triangles, name
// bytes and the index.
func ParseWalkMeshes(data []byte) (*WalkMeshes, error) {
	r := bytes.NewReader(data)

	var positions, normals [][3]float32
	var triangles [][3]uint32
	var names []byte
	var index []WalkMeshIndexEntry

	if err := readChunk(r, chunkPositions, &positions); err != nil {
		return nil, err
	}
	if err := readChunk(r, chunkNormals, &normals); err != nil {
		return nil, err
	}
	if err := readChunk(r, chunkTriangles, &triangles); err != nil {
		return nil, err
	}
	if err := readChunk(r, chunkNames, &names); err != nil {
		return nil, err
	}
	if err := readChunk(r, chunkIndex, &index); err != nil {
		return nil, err
	}

	if len(normals) != len(positions) {
		return nil, fmt.Errorf("%w: %d normals for %d positions", ErrInvalidWalkMeshChunk, len(normals), len(positions))
	}

	w := &WalkMeshes{Meshes: make([]WalkMeshData, 0, len(index))}
	for i, e := range index {
		mesh, err := extractWalkMesh(e, positions, normals, triangles, names)
		if err != nil {
			return nil, fmt.Errorf("index entry %d: %w", i, err)
		}
		if _, dup := w.Lookup(mesh.Name); dup {
			return nil, fmt.Errorf("%w: duplicate mesh name %q", ErrWalkMeshIndex, mesh.Name)
		}
		w.Meshes = append(w.Meshes, mesh)
	}

	return w, nil
}

// ParseWalkMeshFile parses a walk mesh file from disk.
func ParseWalkMeshFile(path string) (*WalkMeshes, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading walk mesh file: %w", err)
	}
	return ParseWalkMeshes(data)
}

// readChunk reads one chunk with the expected magic into out, which must be
// a pointer to a slice of fixed-size elements.
func readChunk[T any](r *bytes.Reader, magic string, out *[]T) error {
	var header struct {
		Magic [4]byte
		Size  uint32
	}
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return fmt.Errorf("%w: reading %q header", ErrTruncatedWalkMeshData, magic)
	}
	if string(header.Magic[:]) != magic {
		return fmt.Errorf("%w: expected %q, got %q", ErrInvalidWalkMeshChunk, magic, header.Magic[:])
	}

	var zero T
	elemSize := binary.Size(zero)
	if header.Size%uint32(elemSize) != 0 {
		return fmt.Errorf("%w: %q size %d is not a multiple of %d", ErrInvalidWalkMeshChunk, magic, header.Size, elemSize)
	}
	if int64(header.Size) > int64(r.Len()) {
		return fmt.Errorf("%w: %q needs %d bytes, %d left", ErrTruncatedWalkMeshData, magic, header.Size, r.Len())
	}

	items := make([]T, int(header.Size)/elemSize)
	if err := binary.Read(r, binary.LittleEndian, items); err != nil {
		return fmt.Errorf("%w: reading %q payload", ErrTruncatedWalkMeshData, magic)
	}
	*out = items
	return nil
}

// extractWalkMesh slices one mesh out of the shared arrays and rebases its
// triangle indices onto its own vertex range.
func extractWalkMesh(e WalkMeshIndexEntry, positions, normals [][3]float32, triangles [][3]uint32, names []byte) (WalkMeshData, error) {
	if e.NameBegin > e.NameEnd || int(e.NameEnd) > len(names) {
		return WalkMeshData{}, fmt.Errorf("%w: name range [%d,%d) of %d", ErrWalkMeshIndex, e.NameBegin, e.NameEnd, len(names))
	}
	if e.VertexBegin > e.VertexEnd || int(e.VertexEnd) > len(positions) {
		return WalkMeshData{}, fmt.Errorf("%w: vertex range [%d,%d) of %d", ErrWalkMeshIndex, e.VertexBegin, e.VertexEnd, len(positions))
	}
	if e.TriangleBegin > e.TriangleEnd || int(e.TriangleEnd) > len(triangles) {
		return WalkMeshData{}, fmt.Errorf("%w: triangle range [%d,%d) of %d", ErrWalkMeshIndex, e.TriangleBegin, e.TriangleEnd, len(triangles))
	}

	mesh := WalkMeshData{
		Name:      string(names[e.NameBegin:e.NameEnd]),
		Vertices:  append([][3]float32(nil), positions[e.VertexBegin:e.VertexEnd]...),
		Normals:   append([][3]float32(nil), normals[e.VertexBegin:e.VertexEnd]...),
		Triangles: make([][3]uint32, 0, e.TriangleEnd-e.TriangleBegin),
	}

	for ti, tri := range triangles[e.TriangleBegin:e.TriangleEnd] {
		var local [3]uint32
		for k, idx := range tri {
			if idx < e.VertexBegin || idx >= e.VertexEnd {
				return WalkMeshData{}, fmt.Errorf("%w: triangle %d vertex %d outside [%d,%d)",
					ErrWalkMeshIndex, int(e.TriangleBegin)+ti, idx, e.VertexBegin, e.VertexEnd)
			}
			local[k] = idx - e.VertexBegin
		}
		mesh.Triangles = append(mesh.Triangles, local)
	}

	return mesh, nil
}

// Encode serializes the meshes into the walk mesh file format.
func (w *WalkMeshes) Encode() ([]byte, error) {
	var positions, normals [][3]float32
	var triangles [][3]uint32
	var names []byte
	index := make([]WalkMeshIndexEntry, 0, len(w.Meshes))

	for _, m := range w.Meshes {
		if len(m.Normals) != len(m.Vertices) {
			return nil, fmt.Errorf("%w: mesh %q has %d normals for %d vertices", ErrInvalidWalkMeshChunk, m.Name, len(m.Normals), len(m.Vertices))
		}

		e := WalkMeshIndexEntry{
			NameBegin:     uint32(len(names)),
			VertexBegin:   uint32(len(positions)),
			TriangleBegin: uint32(len(triangles)),
		}
		names = append(names, m.Name...)
		for _, tri := range m.Triangles {
			for _, idx := range tri {
				if int(idx) >= len(m.Vertices) {
					return nil, fmt.Errorf("%w: mesh %q triangle vertex %d of %d", ErrWalkMeshIndex, m.Name, idx, len(m.Vertices))
				}
			}
			triangles = append(triangles, [3]uint32{
				tri[0] + e.VertexBegin,
				tri[1] + e.VertexBegin,
				tri[2] + e.VertexBegin,
			})
		}
		positions = append(positions, m.Vertices...)
		normals = append(normals, m.Normals...)

		e.NameEnd = uint32(len(names))
		e.VertexEnd = uint32(len(positions))
		e.TriangleEnd = uint32(len(triangles))
		index = append(index, e)
	}

	buf := new(bytes.Buffer)
	writeChunk(buf, chunkPositions, positions)
	writeChunk(buf, chunkNormals, normals)
	writeChunk(buf, chunkTriangles, triangles)
	writeChunk(buf, chunkNames, names)
	writeChunk(buf, chunkIndex, index)
	return buf.Bytes(), nil
}

// WriteFile encodes the meshes and writes them to path.
func (w *WalkMeshes) WriteFile(path string) error {
	data, err := w.Encode()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func writeChunk[T any](w io.Writer, magic string, items []T) {
	var zero T
	size := uint32(binary.Size(zero) * len(items))
	// Writes to a bytes.Buffer cannot fail.
	_, _ = io.WriteString(w, magic)
	_ = binary.Write(w, binary.LittleEndian, size)
	if len(items) > 0 {
		_ = binary.Write(w, binary.LittleEndian, items)
	}
}

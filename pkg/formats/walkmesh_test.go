package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"path/filepath"
	"testing"
)

// createTestWalkMeshes builds a file with two meshes: a single triangle
// and a two-triangle square.
func createTestWalkMeshes() *WalkMeshes {
	return &WalkMeshes{
		Meshes: []WalkMeshData{
			{
				Name:      "Tri",
				Vertices:  [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
				Normals:   [][3]float32{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}},
				Triangles: [][3]uint32{{0, 1, 2}},
			},
			{
				Name:      "WalkMesh",
				Vertices:  [][3]float32{{0, 0, 1}, {2, 0, 1}, {2, 2, 1}, {0, 2, 1}},
				Normals:   [][3]float32{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}, {0, 0, 1}},
				Triangles: [][3]uint32{{0, 1, 2}, {0, 2, 3}},
			},
		},
	}
}

// writeRawChunk appends a chunk header and payload.
func writeRawChunk(buf *bytes.Buffer, magic string, payload any) {
	var body bytes.Buffer
	if payload != nil {
		binary.Write(&body, binary.LittleEndian, payload)
	}
	buf.WriteString(magic)
	binary.Write(buf, binary.LittleEndian, uint32(body.Len()))
	buf.Write(body.Bytes())
}

func TestParseWalkMeshes_RoundTrip(t *testing.T) {
	data, err := createTestWalkMeshes().Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	w, err := ParseWalkMeshes(data)
	if err != nil {
		t.Fatalf("ParseWalkMeshes failed: %v", err)
	}

	if len(w.Meshes) != 2 {
		t.Fatalf("expected 2 meshes, got %d", len(w.Meshes))
	}

	names := w.Names()
	if names[0] != "Tri" || names[1] != "WalkMesh" {
		t.Errorf("unexpected names %v", names)
	}

	mesh, ok := w.Lookup("WalkMesh")
	if !ok {
		t.Fatal("WalkMesh not found")
	}
	if len(mesh.Vertices) != 4 {
		t.Errorf("expected 4 vertices, got %d", len(mesh.Vertices))
	}
	if mesh.Vertices[2] != [3]float32{2, 2, 1} {
		t.Errorf("expected vertex 2 (2,2,1), got %v", mesh.Vertices[2])
	}
	// Indices are rebased onto the mesh's own vertices.
	if mesh.Triangles[1] != [3]uint32{0, 2, 3} {
		t.Errorf("expected triangle (0,2,3), got %v", mesh.Triangles[1])
	}

	if _, ok := w.Lookup("Missing"); ok {
		t.Error("Lookup of missing mesh should fail")
	}
}

func TestParseWalkMeshes_RawLayout(t *testing.T) {
	// Second mesh shares the file's arrays with a vertex offset of 3.
	buf := new(bytes.Buffer)
	writeRawChunk(buf, "p...", [][3]float32{{9, 9, 9}, {9, 9, 9}, {9, 9, 9}, {0, 0, 0}, {1, 0, 0}, {0, 1, 0}})
	writeRawChunk(buf, "n...", [][3]float32{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}, {0, 0, 1}, {0, 0, 1}, {0, 0, 1}})
	writeRawChunk(buf, "tri0", [][3]uint32{{3, 4, 5}})
	writeRawChunk(buf, "str0", []byte("Floor"))
	writeRawChunk(buf, "idxA", []WalkMeshIndexEntry{{0, 5, 3, 6, 0, 1}})

	w, err := ParseWalkMeshes(buf.Bytes())
	if err != nil {
		t.Fatalf("ParseWalkMeshes failed: %v", err)
	}

	mesh, ok := w.Lookup("Floor")
	if !ok {
		t.Fatal("Floor not found")
	}
	if len(mesh.Vertices) != 3 || mesh.Vertices[1] != [3]float32{1, 0, 0} {
		t.Errorf("unexpected vertices %v", mesh.Vertices)
	}
	if mesh.Triangles[0] != [3]uint32{0, 1, 2} {
		t.Errorf("expected rebased triangle (0,1,2), got %v", mesh.Triangles[0])
	}
}

func TestParseWalkMeshes_Errors(t *testing.T) {
	valid := func(index []WalkMeshIndexEntry, tris [][3]uint32) []byte {
		buf := new(bytes.Buffer)
		writeRawChunk(buf, "p...", [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}})
		writeRawChunk(buf, "n...", [][3]float32{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}})
		writeRawChunk(buf, "tri0", tris)
		writeRawChunk(buf, "str0", []byte("AB"))
		writeRawChunk(buf, "idxA", index)
		return buf.Bytes()
	}

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{
			name: "empty",
			data: nil,
			want: ErrTruncatedWalkMeshData,
		},
		{
			name: "wrong magic",
			data: func() []byte {
				buf := new(bytes.Buffer)
				writeRawChunk(buf, "q...", [][3]float32{{0, 0, 0}})
				return buf.Bytes()
			}(),
			want: ErrInvalidWalkMeshChunk,
		},
		{
			name: "size not a multiple",
			data: func() []byte {
				buf := new(bytes.Buffer)
				writeRawChunk(buf, "p...", []byte{1, 2, 3, 4, 5})
				return buf.Bytes()
			}(),
			want: ErrInvalidWalkMeshChunk,
		},
		{
			name: "truncated payload",
			data: func() []byte {
				buf := new(bytes.Buffer)
				buf.WriteString("p...")
				binary.Write(buf, binary.LittleEndian, uint32(24))
				binary.Write(buf, binary.LittleEndian, [3]float32{1, 2, 3})
				return buf.Bytes()
			}(),
			want: ErrTruncatedWalkMeshData,
		},
		{
			name: "normal count",
			data: func() []byte {
				buf := new(bytes.Buffer)
				writeRawChunk(buf, "p...", [][3]float32{{0, 0, 0}, {1, 0, 0}})
				writeRawChunk(buf, "n...", [][3]float32{{0, 0, 1}})
				writeRawChunk(buf, "tri0", nil)
				writeRawChunk(buf, "str0", nil)
				writeRawChunk(buf, "idxA", nil)
				return buf.Bytes()
			}(),
			want: ErrInvalidWalkMeshChunk,
		},
		{
			name: "name out of range",
			data: valid([]WalkMeshIndexEntry{{0, 9, 0, 3, 0, 1}}, [][3]uint32{{0, 1, 2}}),
			want: ErrWalkMeshIndex,
		},
		{
			name: "vertex range out of range",
			data: valid([]WalkMeshIndexEntry{{0, 1, 0, 4, 0, 1}}, [][3]uint32{{0, 1, 2}}),
			want: ErrWalkMeshIndex,
		},
		{
			name: "triangle outside its vertex range",
			data: valid([]WalkMeshIndexEntry{{0, 1, 0, 2, 0, 1}}, [][3]uint32{{0, 1, 2}}),
			want: ErrWalkMeshIndex,
		},
		{
			name: "duplicate name",
			data: valid([]WalkMeshIndexEntry{{0, 1, 0, 3, 0, 1}, {0, 1, 0, 3, 0, 1}}, [][3]uint32{{0, 1, 2}}),
			want: ErrWalkMeshIndex,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseWalkMeshes(tt.data)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestEncode_Invalid(t *testing.T) {
	w := &WalkMeshes{Meshes: []WalkMeshData{{
		Name:      "Bad",
		Vertices:  [][3]float32{{0, 0, 0}},
		Normals:   [][3]float32{{0, 0, 1}},
		Triangles: [][3]uint32{{0, 1, 2}},
	}}}
	if _, err := w.Encode(); !errors.Is(err, ErrWalkMeshIndex) {
		t.Errorf("expected ErrWalkMeshIndex, got %v", err)
	}

	w.Meshes[0].Normals = nil
	if _, err := w.Encode(); !errors.Is(err, ErrInvalidWalkMeshChunk) {
		t.Errorf("expected ErrInvalidWalkMeshChunk, got %v", err)
	}
}

func TestParseWalkMeshFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "level.w")
	if err := createTestWalkMeshes().WriteFile(path); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	w, err := ParseWalkMeshFile(path)
	if err != nil {
		t.Fatalf("ParseWalkMeshFile failed: %v", err)
	}
	if len(w.Meshes) != 2 {
		t.Errorf("expected 2 meshes, got %d", len(w.Meshes))
	}

	if _, err := ParseWalkMeshFile(filepath.Join(t.TempDir(), "missing.w")); err == nil {
		t.Error("expected error for missing file")
	}
}

package objexport

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"voxelmesh/internal/meshing"
	"voxelmesh/internal/world"
)

func cubeResult() *meshing.Result {
	b := world.Block{Local: world.C(0, 0, 0)}
	corners := b.Vertices(world.Coord{}, 1)
	m := &meshing.Mesh{}
	for i, p := range corners {
		m.Vertices = append(m.Vertices, meshing.Vertex{Position: p, Normal: world.CornerNormals[i]})
	}
	// top face
	m.Indices = []uint32{7, 6, 2, 3, 7, 2}

	cm := meshing.ChunkMesh{Coords: world.C(1, 0, 2), Meshes: map[world.Material]*meshing.Mesh{world.MaterialGrass: m}}
	res := &meshing.Result{
		Chunks: map[world.Coord]meshing.ChunkMesh{cm.Coords: cm},
		Batch:  meshing.NewBatch(),
	}
	res.Batch.Add(cm)
	return res
}

func countPrefix(lines []string, prefix string) int {
	n := 0
	for _, l := range lines {
		if strings.HasPrefix(l, prefix) {
			n++
		}
	}
	return n
}

func TestWriteObj(t *testing.T) {
	var buf bytes.Buffer
	ids := map[world.Material]string{world.MaterialGrass: "materials/grass"}
	st, err := Write(&buf, cubeResult(), ids, "world.mtl")
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if st.Objects != 1 || st.Vertices != 8 || st.Faces != 2 {
		t.Fatalf("stats: got %+v", st)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if lines[0] != "mtllib world.mtl" {
		t.Errorf("first line: got %q", lines[0])
	}
	if countPrefix(lines, "o chunk_1_0_2") != 1 {
		t.Error("missing chunk object")
	}
	if n := countPrefix(lines, "v "); n != 8 {
		t.Errorf("v lines: got %d, want 8", n)
	}
	if n := countPrefix(lines, "vn "); n != 8 {
		t.Errorf("vn lines: got %d, want 8", n)
	}
	if countPrefix(lines, "usemtl materials/grass") != 1 {
		t.Error("missing usemtl with resource id")
	}
	// OBJ indices are 1-based
	if countPrefix(lines, "f 8//8 7//7 3//3") != 1 {
		t.Errorf("first face not found in:\n%s", buf.String())
	}
}

func TestWriteMTLUsesIDs(t *testing.T) {
	var buf bytes.Buffer
	ids := map[world.Material]string{world.MaterialRock: "stone_id"}
	if err := WriteMTL(&buf, ids); err != nil {
		t.Fatalf("WriteMTL: %v", err)
	}
	s := buf.String()
	if !strings.Contains(s, "newmtl stone_id\n") {
		t.Error("rock not named by its id")
	}
	if !strings.Contains(s, "newmtl grass\n") {
		t.Error("grass should fall back to its material name")
	}
	if strings.Contains(s, "newmtl air") {
		t.Error("air must not get a material")
	}
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "world.obj")
	if _, err := WriteFile(path, cubeResult(), nil); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	obj, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(obj), "mtllib world.mtl\n") {
		t.Errorf("obj header: %q", strings.SplitN(string(obj), "\n", 2)[0])
	}
	if _, err := os.Stat(filepath.Join(dir, "world.mtl")); err != nil {
		t.Fatalf("mtl not written: %v", err)
	}
}

package meshing

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/sirupsen/logrus"

	"voxelmesh/internal/world"
)

// flatNoise returns the same sample everywhere.
type flatNoise float64

func (f flatNoise) Noise2D(x, z, scale float64) float64 { return float64(f) }

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// solidSettings gives a world whose columns rise well above its top, so every
// block is terrain.
func solidSettings(chunks, extent world.Coord) world.Settings {
	s := world.DefaultSettings()
	s.Chunks = chunks
	s.ChunkExtent = extent
	s.Workers = 2
	s.Terrain.Octaves = []world.Octave{{Scale: 1, Amplitude: 10, Reducer: 255}}
	return s
}

func buildWorld(t *testing.T, s world.Settings, noise world.NoiseField) *world.World {
	t.Helper()
	w, err := world.New(s, noise, quietLogger())
	if err != nil {
		t.Fatalf("world.New: %v", err)
	}
	if err := w.GenerateAll(context.Background()); err != nil {
		t.Fatalf("GenerateAll: %v", err)
	}
	return w
}

func checkIndices(t *testing.T, m *Mesh) {
	t.Helper()
	if len(m.Indices)%3 != 0 {
		t.Fatalf("index count %d not a multiple of 3", len(m.Indices))
	}
	for i, idx := range m.Indices {
		if int(idx) >= len(m.Vertices) {
			t.Fatalf("index %d = %d out of %d vertices", i, idx, len(m.Vertices))
		}
	}
	for i := 0; i < len(m.Indices); i += 3 {
		a, b, c := m.Indices[i], m.Indices[i+1], m.Indices[i+2]
		if a == b || b == c || a == c {
			t.Fatalf("degenerate triangle %d: %d %d %d", i/3, a, b, c)
		}
	}
}

// checkWinding asserts every triangle is clockwise seen from outside its
// block. Blocks own consecutive windows of 8 vertices.
func checkWinding(t *testing.T, m *Mesh) {
	t.Helper()
	for i := 0; i < len(m.Indices); i += 3 {
		a := m.Vertices[m.Indices[i]].Position
		b := m.Vertices[m.Indices[i+1]].Position
		c := m.Vertices[m.Indices[i+2]].Position

		start := int(m.Indices[i]) / 8 * 8
		var center mgl32.Vec3
		for _, v := range m.Vertices[start : start+8] {
			center = center.Add(v.Position)
		}
		center = center.Mul(1.0 / 8)
		out := a.Add(b).Add(c).Mul(1.0 / 3).Sub(center)

		if d := b.Sub(a).Cross(c.Sub(a)).Dot(out); d >= 0 {
			t.Fatalf("triangle %d is not clockwise from outside (dot=%v)", i/3, d)
		}
	}
}

func TestSingleChunkCube(t *testing.T) {
	w := buildWorld(t, solidSettings(world.C(1, 1, 1), world.C(2, 2, 2)), flatNoise(1))
	res, err := MeshWorld(context.Background(), w)
	if err != nil {
		t.Fatalf("MeshWorld: %v", err)
	}
	cm, ok := res.Chunks[world.C(0, 0, 0)]
	if !ok {
		t.Fatal("chunk (0,0,0) produced no mesh")
	}
	if got := cm.Faces(); got != 24 {
		t.Fatalf("faces: got %d, want 24", got)
	}
	vertices := 0
	for _, m := range cm.Meshes {
		vertices += len(m.Vertices)
		checkIndices(t, m)
		checkWinding(t, m)
	}
	if vertices != 64 {
		t.Fatalf("vertices: got %d, want 64", vertices)
	}
}

func TestCrossChunkFaceCulling(t *testing.T) {
	w := buildWorld(t, solidSettings(world.C(2, 1, 1), world.C(2, 2, 2)), flatNoise(1))
	res, err := MeshWorld(context.Background(), w)
	if err != nil {
		t.Fatalf("MeshWorld: %v", err)
	}
	// 4x2x2 box: 40 outer faces, the shared x plane is culled
	for _, c := range []world.Coord{world.C(0, 0, 0), world.C(1, 0, 0)} {
		if got := res.Chunks[c].Faces(); got != 20 {
			t.Errorf("chunk %v faces: got %d, want 20", c, got)
		}
	}
	if got := res.Stats().Faces; got != 40 {
		t.Fatalf("total faces: got %d, want 40", got)
	}
}

func TestInteriorBlocksEmitNothing(t *testing.T) {
	w := buildWorld(t, solidSettings(world.C(1, 1, 1), world.C(3, 3, 3)), flatNoise(1))
	res, err := MeshWorld(context.Background(), w)
	if err != nil {
		t.Fatalf("MeshWorld: %v", err)
	}
	cm := res.Chunks[world.C(0, 0, 0)]
	vertices := 0
	for _, m := range cm.Meshes {
		vertices += len(m.Vertices)
	}
	// 26 border blocks, the centre one is hidden
	if vertices != 26*8 {
		t.Fatalf("vertices: got %d, want %d", vertices, 26*8)
	}
	if got := cm.Faces(); got != 54 {
		t.Fatalf("faces: got %d, want 54", got)
	}
}

func TestNoiseWorldMeshIsValid(t *testing.T) {
	s := world.DefaultSettings()
	s.Chunks = world.C(2, 3, 2)
	s.ChunkExtent = world.C(8, 8, 8)
	s.Workers = 4
	w := buildWorld(t, s, world.NewSimplexNoise(s.Seed))

	res, err := MeshWorld(context.Background(), w)
	if err != nil {
		t.Fatalf("MeshWorld: %v", err)
	}
	if res.Batch.Len() == 0 {
		t.Fatal("noise world produced no meshes")
	}
	for _, cm := range res.Chunks {
		for mat, m := range cm.Meshes {
			if mat == world.MaterialAir {
				t.Fatalf("chunk %v has an air mesh", cm.Coords)
			}
			checkIndices(t, m)
			checkWinding(t, m)
		}
	}
	for _, mat := range res.Batch.Materials() {
		m, _ := res.Batch.Mesh(mat)
		checkIndices(t, m)
	}
}

func TestSeededTwoCubeChunk(t *testing.T) {
	s := world.DefaultSettings()
	s.Seed = 1
	s.Chunks = world.C(1, 1, 1)
	s.ChunkExtent = world.C(2, 2, 2)
	s.BlockScale = 1
	w := buildWorld(t, s, world.NewSimplexNoise(s.Seed))

	res, err := MeshWorld(context.Background(), w)
	if err != nil {
		t.Fatalf("MeshWorld: %v", err)
	}
	c, _ := w.Chunk(world.C(0, 0, 0))

	topVisible := false
	_ = c.ForEachBlock(func(b *world.Block) bool {
		if b.Local.Y == 1 && b.Visible {
			topVisible = true
		}
		return true
	})
	if !topVisible {
		t.Fatal("no block of the top layer is visible")
	}

	cm := res.Chunks[world.C(0, 0, 0)]
	var dominant world.Material
	var mesh *Mesh
	for _, mat := range world.Materials {
		if m, ok := cm.Meshes[mat]; ok && (mesh == nil || len(m.Indices) > len(mesh.Indices)) {
			dominant, mesh = mat, m
		}
	}
	if mesh == nil {
		t.Fatal("no mesh produced")
	}
	if len(mesh.Vertices)%4 != 0 {
		t.Fatalf("%v: vertex count %d not a multiple of 4", dominant, len(mesh.Vertices))
	}
	if len(mesh.Indices)%6 != 0 {
		t.Fatalf("%v: index count %d not a multiple of 6", dominant, len(mesh.Indices))
	}
	checkIndices(t, mesh)
	checkWinding(t, mesh)

	// exactly the faces of that material not bordering terrain
	want := 0
	_ = c.ForEachBlock(func(b *world.Block) bool {
		if !b.Terrain || b.Material != dominant {
			return true
		}
		for _, f := range world.Faces {
			n, err := c.ResolveNeighbor(b.Local, f, w)
			if err != nil {
				t.Fatal(err)
			}
			if n == nil || !n.Terrain {
				want++
			}
		}
		return true
	})
	if got := len(mesh.Indices) / IndicesPerFace; got != want {
		t.Fatalf("%v faces: got %d, want %d", dominant, got, want)
	}
}

func TestMeshBeforeGenerate(t *testing.T) {
	w, err := world.New(solidSettings(world.C(1, 1, 1), world.C(2, 2, 2)), flatNoise(1), quietLogger())
	if err != nil {
		t.Fatalf("world.New: %v", err)
	}
	if _, err := MeshWorld(context.Background(), w); !errors.Is(err, world.ErrPrematureAccess) {
		t.Fatalf("got %v, want ErrPrematureAccess", err)
	}
}

func TestFaceIndicesWinding(t *testing.T) {
	b := world.Block{Local: world.C(0, 0, 0)}
	window := b.Vertices(world.Coord{}, 1)
	tests := []struct {
		face world.Face
		want [IndicesPerFace]uint32
	}{
		{world.FaceFront, [6]uint32{3, 2, 0, 1, 3, 0}},
		{world.FaceBack, [6]uint32{4, 6, 7, 4, 7, 5}},
		{world.FaceLeft, [6]uint32{6, 4, 0, 2, 6, 0}},
		{world.FaceRight, [6]uint32{1, 5, 7, 1, 7, 3}},
		{world.FaceBottom, [6]uint32{0, 4, 5, 0, 5, 1}},
		{world.FaceTop, [6]uint32{7, 6, 2, 3, 7, 2}},
	}
	for _, tt := range tests {
		got, err := faceIndices(&window, b.FaceVertices(tt.face, world.Coord{}, 1), tt.face.Winding())
		if err != nil {
			t.Fatalf("%v: %v", tt.face, err)
		}
		if got != tt.want {
			t.Errorf("%v: got %v, want %v", tt.face, got, tt.want)
		}
	}
}

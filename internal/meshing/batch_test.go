package meshing

import (
	"sync"
	"testing"

	"voxelmesh/internal/world"
)

func quad(n int) *Mesh {
	m := &Mesh{Vertices: make([]Vertex, n)}
	for i := 0; i+2 < n; i++ {
		m.Indices = append(m.Indices, uint32(i), uint32(i+1), uint32(i+2))
	}
	return m
}

func TestBatchOffsetsIndices(t *testing.T) {
	b := NewBatch()
	b.Add(ChunkMesh{Coords: world.C(0, 0, 0), Meshes: map[world.Material]*Mesh{world.MaterialRock: quad(4)}})
	b.Add(ChunkMesh{Coords: world.C(1, 0, 0), Meshes: map[world.Material]*Mesh{world.MaterialRock: quad(4)}})

	m, ok := b.Mesh(world.MaterialRock)
	if !ok {
		t.Fatal("rock mesh missing")
	}
	if len(m.Vertices) != 8 {
		t.Fatalf("vertices: got %d, want 8", len(m.Vertices))
	}
	want := []uint32{0, 1, 2, 1, 2, 3, 4, 5, 6, 5, 6, 7}
	if len(m.Indices) != len(want) {
		t.Fatalf("indices: got %v, want %v", m.Indices, want)
	}
	for i := range want {
		if m.Indices[i] != want[i] {
			t.Fatalf("indices: got %v, want %v", m.Indices, want)
		}
	}
}

func TestBatchMaterialOrder(t *testing.T) {
	b := NewBatch()
	b.Add(ChunkMesh{Meshes: map[world.Material]*Mesh{world.MaterialSnow: quad(3)}})
	b.Add(ChunkMesh{Meshes: map[world.Material]*Mesh{
		world.MaterialRock:  quad(3),
		world.MaterialGrass: quad(3),
	}})
	b.Add(ChunkMesh{Meshes: map[world.Material]*Mesh{world.MaterialDirt: {}}})

	got := b.Materials()
	want := []world.Material{world.MaterialSnow, world.MaterialGrass, world.MaterialRock}
	if len(got) != len(want) {
		t.Fatalf("materials: got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("materials: got %v, want %v", got, want)
		}
	}
}

func TestBatchConcurrentAdd(t *testing.T) {
	b := NewBatch()
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.Add(ChunkMesh{Meshes: map[world.Material]*Mesh{world.MaterialRock: quad(8)}})
		}()
	}
	wg.Wait()

	m, _ := b.Mesh(world.MaterialRock)
	if len(m.Vertices) != 32*8 {
		t.Fatalf("vertices: got %d, want %d", len(m.Vertices), 32*8)
	}
	checkIndices(t, m)
}

package meshing

import (
	"context"
	"sync"

	"voxelmesh/internal/world"
)

// Result is the output of meshing a whole world.
type Result struct {
	// Chunks holds one entry per chunk that produced triangles, keyed by
	// chunk coordinate.
	Chunks map[world.Coord]ChunkMesh
	Batch  *Batch
}

// Stats summarises a Result.
type Stats struct {
	Chunks    int
	Vertices  int
	Triangles int
	Faces     int
}

// Stats counts vertices and triangles over the merged batch.
func (r *Result) Stats() Stats {
	s := Stats{Chunks: len(r.Chunks)}
	for _, m := range r.Batch.Materials() {
		mesh, _ := r.Batch.Mesh(m)
		s.Vertices += len(mesh.Vertices)
		s.Triangles += mesh.Triangles()
		s.Faces += len(mesh.Indices) / IndicesPerFace
	}
	return s
}

// Coords returns the meshed chunk coordinates in x, y, z order.
func (r *Result) Coords() []world.Coord {
	out := make([]world.Coord, 0, len(r.Chunks))
	for c := range r.Chunks {
		out = append(out, c)
	}
	world.SortCoords(out)
	return out
}

// MeshWorld runs the meshing phase of w. Each chunk is extracted by its own
// task once its visibility pass finished; results are merged into a Batch
// as they complete. w must have been generated.
func MeshWorld(ctx context.Context, w *world.World) (*Result, error) {
	var mu sync.Mutex
	res := &Result{
		Chunks: make(map[world.Coord]ChunkMesh),
		Batch:  NewBatch(),
	}
	scale := w.Settings().BlockScale

	err := w.MeshAll(ctx, func(ctx context.Context, c *world.Chunk) error {
		if !c.IsVisible() {
			return nil
		}
		cm, err := Extract(c, w, scale)
		if err != nil {
			return err
		}
		if cm.Empty() {
			return nil
		}
		res.Batch.Add(cm)
		mu.Lock()
		res.Chunks[cm.Coords] = cm
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

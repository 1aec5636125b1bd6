package meshing

import (
	"sync"

	"github.com/elliotchance/orderedmap/v2"

	"voxelmesh/internal/world"
)

// Batch merges chunk meshes into one mesh per material. It is safe for
// concurrent use by meshing workers.
type Batch struct {
	mu     sync.Mutex
	meshes *orderedmap.OrderedMap[world.Material, *Mesh]
}

func NewBatch() *Batch {
	return &Batch{meshes: orderedmap.NewOrderedMap[world.Material, *Mesh]()}
}

// Add appends every material mesh of cm. Indices are shifted by the vertex
// count already batched for that material.
func (b *Batch) Add(cm ChunkMesh) {
	b.mu.Lock()
	defer b.mu.Unlock()
	// walk materials in enum order so first-seen order does not depend on
	// map iteration
	for _, mat := range world.Materials {
		src, ok := cm.Meshes[mat]
		if !ok || len(src.Vertices) == 0 {
			continue
		}
		dst, ok := b.meshes.Get(mat)
		if !ok {
			dst = &Mesh{}
			b.meshes.Set(mat, dst)
		}
		offset := uint32(len(dst.Vertices))
		dst.Vertices = append(dst.Vertices, src.Vertices...)
		for _, i := range src.Indices {
			dst.Indices = append(dst.Indices, i+offset)
		}
	}
}

// Materials returns the batched materials in first-seen order.
func (b *Batch) Materials() []world.Material {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]world.Material, 0, b.meshes.Len())
	for el := b.meshes.Front(); el != nil; el = el.Next() {
		out = append(out, el.Key)
	}
	return out
}

// Mesh returns the merged mesh of a material.
func (b *Batch) Mesh(m world.Material) (*Mesh, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.meshes.Get(m)
}

// Len returns the number of materials in the batch.
func (b *Batch) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.meshes.Len()
}

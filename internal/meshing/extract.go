package meshing

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"voxelmesh/internal/profiling"
	"voxelmesh/internal/world"
)

// IndicesPerFace is two triangles.
const IndicesPerFace = 6

// Vertex is one mesh corner: world-space position plus the cube corner normal.
type Vertex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
}

// Mesh is an indexed triangle list for a single material.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint32
}

// Triangles returns the number of triangles in the mesh.
func (m *Mesh) Triangles() int {
	return len(m.Indices) / 3
}

// ChunkMesh holds the per-material meshes of one chunk.
type ChunkMesh struct {
	Coords world.Coord
	Meshes map[world.Material]*Mesh
}

// Empty reports whether the chunk produced no triangles.
func (cm ChunkMesh) Empty() bool {
	for _, m := range cm.Meshes {
		if len(m.Indices) > 0 {
			return false
		}
	}
	return true
}

// Faces returns the number of emitted faces over all materials.
func (cm ChunkMesh) Faces() int {
	n := 0
	for _, m := range cm.Meshes {
		n += len(m.Indices) / IndicesPerFace
	}
	return n
}

// Extract builds the meshes of a chunk whose visibility pass already ran.
// Every visible terrain block contributes its eight corners to the mesh of
// its material, and each face whose neighbour is missing or not terrain
// contributes two triangles indexing those corners. scale is the size of a
// block in world units.
func Extract(c *world.Chunk, lookup world.ChunkLookup, scale float32) (ChunkMesh, error) {
	defer profiling.Track("meshing.Extract")()

	cm := ChunkMesh{Coords: c.Coords(), Meshes: make(map[world.Material]*Mesh)}
	origin := c.Origin()

	var ferr error
	err := c.ForEachBlock(func(b *world.Block) bool {
		if !b.Terrain || !b.Visible {
			return true
		}
		m := cm.Meshes[b.Material]
		if m == nil {
			m = &Mesh{}
			cm.Meshes[b.Material] = m
		}

		window := b.Vertices(origin, scale)
		base := uint32(len(m.Vertices))
		for i, p := range window {
			m.Vertices = append(m.Vertices, Vertex{Position: p, Normal: world.CornerNormals[i]})
		}

		for _, f := range world.Faces {
			n, err := c.ResolveNeighbor(b.Local, f, lookup)
			if err != nil {
				ferr = fmt.Errorf("block %v face %v: %w", b.Local, f, err)
				return false
			}
			if n != nil && n.Terrain {
				continue
			}
			idx, err := faceIndices(&window, b.FaceVertices(f, origin, scale), f.Winding())
			if err != nil {
				ferr = fmt.Errorf("block %v face %v: %w", b.Local, f, err)
				return false
			}
			for _, i := range idx {
				m.Indices = append(m.Indices, base+i)
			}
		}
		return true
	})
	if err != nil {
		return ChunkMesh{}, err
	}
	if ferr != nil {
		return ChunkMesh{}, ferr
	}
	return cm, nil
}

// faceIndices finds each face corner inside the block's vertex window and
// orders the two triangles for the given winding. Indices are relative to
// the start of the window.
func faceIndices(window *[8]mgl32.Vec3, corners [4]mgl32.Vec3, w world.Winding) ([IndicesPerFace]uint32, error) {
	var f [4]uint32
	for i, p := range corners {
		j := -1
		for k := range window {
			if window[k] == p {
				j = k
				break
			}
		}
		if j < 0 {
			return [IndicesPerFace]uint32{}, fmt.Errorf("corner %v not in block window", p)
		}
		f[i] = uint32(j)
	}
	if w == world.WindingA {
		return [IndicesPerFace]uint32{f[3], f[2], f[0], f[1], f[3], f[0]}, nil
	}
	return [IndicesPerFace]uint32{f[0], f[2], f[3], f[0], f[3], f[1]}, nil
}

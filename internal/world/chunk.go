package world

import (
	"context"
	"fmt"
	"sync/atomic"
)

// ChunkState is the lifecycle stage of a chunk.
type ChunkState int32

const (
	ChunkCreated ChunkState = iota
	ChunkGenerating
	ChunkGenerated
	ChunkMeshed
)

func (s ChunkState) String() string {
	switch s {
	case ChunkCreated:
		return "created"
	case ChunkGenerating:
		return "generating"
	case ChunkGenerated:
		return "generated"
	case ChunkMeshed:
		return "meshed"
	}
	return fmt.Sprintf("state(%d)", int32(s))
}

// ChunkLookup resolves the chunk adjacent to coords across face.
// World implements it.
type ChunkLookup interface {
	ChunkNeighbor(coords Coord, face Face) (*Chunk, bool)
}

// Chunk is a cuboid of blocks, the unit of generation and meshing.
//
// blocks is written once by the generating task and published by the state
// store that moves the chunk to ChunkGenerated; readers must observe that
// state before touching it.
type Chunk struct {
	coords Coord
	extent Coord

	state   atomic.Int32
	blocks  []Block
	visible atomic.Bool
}

// NewChunk creates an empty chunk stub at chunk coordinates coords.
func NewChunk(coords, extent Coord) *Chunk {
	return &Chunk{coords: coords, extent: extent}
}

// Coords returns the chunk-space coordinate of the chunk.
func (c *Chunk) Coords() Coord {
	return c.coords
}

// Extent returns the chunk size in blocks.
func (c *Chunk) Extent() Coord {
	return c.extent
}

// Origin returns the position of local block (0,0,0) in world blocks.
func (c *Chunk) Origin() Coord {
	return c.coords.Mul(c.extent)
}

// State returns the current lifecycle stage.
func (c *Chunk) State() ChunkState {
	return ChunkState(c.state.Load())
}

// IsGenerated reports whether block data is available.
func (c *Chunk) IsGenerated() bool {
	s := c.State()
	return s == ChunkGenerated || s == ChunkMeshed
}

// IsVisible reports whether any block of the chunk is visible.
func (c *Chunk) IsVisible() bool {
	return c.visible.Load()
}

func (c *Chunk) index(local Coord) int {
	return (local.X*c.extent.Y+local.Y)*c.extent.Z + local.Z
}

// Generate fills the chunk from the classifier. Height and biome are sampled
// once per column and reused for every layer of it. If ctx is cancelled the
// chunk goes back to ChunkCreated and no block data is published.
func (c *Chunk) Generate(ctx context.Context, cls *Classifier) error {
	if !c.state.CompareAndSwap(int32(ChunkCreated), int32(ChunkGenerating)) {
		return fmt.Errorf("chunk %v: generate in state %v", c.coords, c.State())
	}

	blocks := make([]Block, c.extent.Volume())
	origin := c.Origin()
	for x := 0; x < c.extent.X; x++ {
		if err := ctx.Err(); err != nil {
			c.state.Store(int32(ChunkCreated))
			return err
		}
		for z := 0; z < c.extent.Z; z++ {
			gx, gz := origin.X+x, origin.Z+z
			col := cls.ColumnAt(gx, gz)
			for y := 0; y < c.extent.Y; y++ {
				local := Coord{X: x, Y: y, Z: z}
				m, terrain := cls.Classify(col, gx, origin.Y+y, gz)
				blocks[c.index(local)] = Block{
					Local:    local,
					Biome:    col.Biome,
					Material: m,
					Terrain:  terrain,
				}
			}
		}
	}

	c.blocks = blocks
	c.state.Store(int32(ChunkGenerated))
	return nil
}

// reset drops any block data and returns the chunk to ChunkCreated. Callers
// must ensure no task is generating or reading the chunk.
func (c *Chunk) reset() {
	c.blocks = nil
	c.visible.Store(false)
	c.state.Store(int32(ChunkCreated))
}

func (c *Chunk) ready() error {
	if !c.IsGenerated() {
		return fmt.Errorf("chunk %v in state %v: %w", c.coords, c.State(), ErrPrematureAccess)
	}
	return nil
}

// Block returns the block at local.
func (c *Chunk) Block(local Coord) (*Block, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	if !local.In(c.extent) {
		return nil, fmt.Errorf("block %v in chunk %v: %w", local, c.coords, ErrOutOfRange)
	}
	return &c.blocks[c.index(local)], nil
}

// Neighbor returns the block next to local across face when it lies inside
// this chunk, and nil when it does not.
func (c *Chunk) Neighbor(local Coord, face Face) (*Block, error) {
	if _, err := c.Block(local); err != nil {
		return nil, err
	}
	n := local.Add(face.Offset())
	if !n.In(c.extent) {
		return nil, nil
	}
	return &c.blocks[c.index(n)], nil
}

// CrossChunkNeighbor returns the block on the far side of the chunk
// adjacent across face, at the coordinate local wraps to. It returns nil
// when no such chunk exists. Meant for blocks on the chunk border.
func (c *Chunk) CrossChunkNeighbor(local Coord, face Face, lookup ChunkLookup) (*Block, error) {
	if !local.In(c.extent) {
		return nil, fmt.Errorf("block %v in chunk %v: %w", local, c.coords, ErrOutOfRange)
	}
	nc, ok := lookup.ChunkNeighbor(c.coords, face)
	if !ok || nc == nil {
		return nil, nil
	}
	if err := nc.ready(); err != nil {
		return nil, err
	}
	w := face.Wrap(local, nc.extent)
	if !w.In(nc.extent) {
		return nil, nil
	}
	return &nc.blocks[nc.index(w)], nil
}

// ResolveNeighbor looks up the neighbour of local across face, first inside
// this chunk and then in the adjacent chunk.
func (c *Chunk) ResolveNeighbor(local Coord, face Face, lookup ChunkLookup) (*Block, error) {
	b, err := c.Neighbor(local, face)
	if err != nil || b != nil {
		return b, err
	}
	return c.CrossChunkNeighbor(local, face, lookup)
}

// ComputeVisibility marks every terrain block that has a missing or
// non-terrain neighbour on at least one face. Only this chunk's blocks are
// written; neighbours are read.
func (c *Chunk) ComputeVisibility(lookup ChunkLookup) error {
	if err := c.ready(); err != nil {
		return err
	}
	seen := false
	for i := range c.blocks {
		b := &c.blocks[i]
		if !b.Terrain {
			continue
		}
		vis, err := c.exposed(b.Local, lookup)
		if err != nil {
			return err
		}
		b.Visible = vis
		seen = seen || vis
	}
	c.visible.Store(seen)
	return nil
}

func (c *Chunk) exposed(local Coord, lookup ChunkLookup) (bool, error) {
	for _, f := range Faces {
		n, err := c.ResolveNeighbor(local, f, lookup)
		if err != nil {
			return false, err
		}
		if n == nil || !n.Terrain {
			return true, nil
		}
	}
	return false, nil
}

// ForEachBlock calls fn for every block in x, y, z order until fn returns
// false.
func (c *Chunk) ForEachBlock(fn func(b *Block) bool) error {
	if err := c.ready(); err != nil {
		return err
	}
	for i := range c.blocks {
		if !fn(&c.blocks[i]) {
			return nil
		}
	}
	return nil
}

// MarkMeshed moves a generated chunk to ChunkMeshed.
func (c *Chunk) MarkMeshed() error {
	if !c.state.CompareAndSwap(int32(ChunkGenerated), int32(ChunkMeshed)) {
		return fmt.Errorf("chunk %v: mesh in state %v: %w", c.coords, c.State(), ErrPrematureAccess)
	}
	return nil
}

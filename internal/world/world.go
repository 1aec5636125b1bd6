package world

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"voxelmesh/internal/profiling"
)

// maxBlockSpan bounds the world size per axis in blocks so every vertex
// coordinate stays exactly representable as float32.
const maxBlockSpan = 1 << 24

// Settings describes the world to build.
type Settings struct {
	Seed int64
	// Chunks is the world extent in chunks per axis.
	Chunks Coord
	// ChunkExtent is the chunk size in blocks per axis.
	ChunkExtent Coord
	// WorldHeight feeds the mountain rule. Zero means Chunks.Y*ChunkExtent.Y.
	WorldHeight int
	BlockScale  float32
	// Workers bounds the tasks run at once per phase. Zero means NumCPU.
	Workers int
	Terrain TerrainSettings
}

// DefaultSettings returns a small world with the stock terrain.
func DefaultSettings() Settings {
	return Settings{
		Seed:        12022111,
		Chunks:      Coord{X: 4, Y: 24, Z: 4},
		ChunkExtent: Coord{X: 16, Y: 16, Z: 16},
		BlockScale:  1,
		Terrain:     DefaultTerrainSettings(),
	}
}

// Validate rejects settings that cannot be built.
func (s Settings) Validate() error {
	if s.Chunks.X <= 0 || s.Chunks.Y <= 0 || s.Chunks.Z <= 0 {
		return fmt.Errorf("%w: world extent %v must be positive", ErrConfiguration, s.Chunks)
	}
	if s.ChunkExtent.X <= 0 || s.ChunkExtent.Y <= 0 || s.ChunkExtent.Z <= 0 {
		return fmt.Errorf("%w: chunk extent %v must be positive", ErrConfiguration, s.ChunkExtent)
	}
	for _, span := range [3][2]int{
		{s.Chunks.X, s.ChunkExtent.X},
		{s.Chunks.Y, s.ChunkExtent.Y},
		{s.Chunks.Z, s.ChunkExtent.Z},
	} {
		if span[0] > maxBlockSpan/span[1] {
			return fmt.Errorf("%w: world of %v chunks of %v blocks overflows the addressing range", ErrConfiguration, s.Chunks, s.ChunkExtent)
		}
	}
	if s.WorldHeight < 0 {
		return fmt.Errorf("%w: world height %d is negative", ErrConfiguration, s.WorldHeight)
	}
	if s.BlockScale <= 0 {
		return fmt.Errorf("%w: block scale %v must be positive", ErrConfiguration, s.BlockScale)
	}
	if s.Workers < 0 {
		return fmt.Errorf("%w: workers %d is negative", ErrConfiguration, s.Workers)
	}
	return s.Terrain.validate()
}

// Phase is the pipeline stage of the whole world.
type Phase int32

const (
	PhaseBuilt Phase = iota
	PhaseGenerating
	PhaseGenerated
	PhaseMeshing
	PhaseMeshed
)

// World owns every chunk, keyed by chunk coordinate. Chunks reach each other
// only through ChunkNeighbor lookups.
type World struct {
	settings   Settings
	classifier *Classifier
	log        logrus.FieldLogger

	chunks map[Coord]*Chunk
	order  []Coord
	phase  atomic.Int32
}

// New validates settings and allocates a stub chunk for every chunk
// coordinate in [0, Chunks). No terrain is generated.
func New(settings Settings, noise NoiseField, log logrus.FieldLogger) (*World, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if noise == nil {
		return nil, fmt.Errorf("%w: no noise field", ErrConfiguration)
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	if settings.WorldHeight == 0 {
		settings.WorldHeight = settings.Chunks.Y * settings.ChunkExtent.Y
	}
	if settings.Workers == 0 {
		settings.Workers = max(runtime.NumCPU(), 1)
	}

	w := &World{
		settings:   settings,
		classifier: NewClassifier(settings.Seed, noise, settings.Terrain, settings.WorldHeight),
		log:        log,
		chunks:     make(map[Coord]*Chunk, settings.Chunks.Volume()),
		order:      make([]Coord, 0, settings.Chunks.Volume()),
	}
	for x := 0; x < settings.Chunks.X; x++ {
		for y := 0; y < settings.Chunks.Y; y++ {
			for z := 0; z < settings.Chunks.Z; z++ {
				c := Coord{X: x, Y: y, Z: z}
				w.chunks[c] = NewChunk(c, settings.ChunkExtent)
				w.order = append(w.order, c)
				log.WithField("chunk", c).Debug("chunk created")
			}
		}
	}
	log.WithFields(logrus.Fields{
		"seed":   settings.Seed,
		"chunks": settings.Chunks,
		"extent": settings.ChunkExtent,
	}).Info("world built")
	return w, nil
}

// Settings returns the effective settings, defaults filled in.
func (w *World) Settings() Settings {
	return w.settings
}

// Classifier returns the terrain classifier shared by every chunk.
func (w *World) Classifier() *Classifier {
	return w.classifier
}

// Phase returns the current pipeline stage.
func (w *World) Phase() Phase {
	return Phase(w.phase.Load())
}

// Chunk returns the chunk at coords.
func (w *World) Chunk(coords Coord) (*Chunk, bool) {
	c, ok := w.chunks[coords]
	return c, ok
}

// ChunkNeighbor returns the chunk adjacent to coords across face.
func (w *World) ChunkNeighbor(coords Coord, face Face) (*Chunk, bool) {
	return w.Chunk(coords.Add(face.Offset()))
}

// Chunks returns every chunk ordered by x, then y, then z.
func (w *World) Chunks() []*Chunk {
	out := make([]*Chunk, len(w.order))
	for i, c := range w.order {
		out[i] = w.chunks[c]
	}
	return out
}

// Len returns the number of chunks.
func (w *World) Len() int {
	return len(w.chunks)
}

// GenerateAll generates the terrain of every chunk, one task per chunk. It
// returns once every task finished, so all block data is published before
// it returns nil. On failure every chunk is reset and the world is back in
// PhaseBuilt, ready for another attempt.
func (w *World) GenerateAll(ctx context.Context) error {
	if !w.phase.CompareAndSwap(int32(PhaseBuilt), int32(PhaseGenerating)) {
		return fmt.Errorf("generate in phase %d: %w", w.Phase(), ErrPrematureAccess)
	}
	defer profiling.Track("world.GenerateAll")()

	start := time.Now()
	w.log.WithField("chunks", len(w.order)).Info("terrain generation started")
	err := w.each(ctx, func(ctx context.Context, c *Chunk) error {
		w.log.WithField("chunk", c.Coords()).Debug("generating chunk")
		if err := c.Generate(ctx, w.classifier); err != nil {
			return fmt.Errorf("generate chunk %v: %w", c.Coords(), err)
		}
		w.log.WithField("chunk", c.Coords()).Debug("chunk generated")
		return nil
	})
	if err != nil {
		// every task has returned, so no chunk is being written
		for _, c := range w.chunks {
			c.reset()
		}
		w.phase.Store(int32(PhaseBuilt))
		return err
	}
	w.phase.Store(int32(PhaseGenerated))
	w.log.WithField("elapsed", time.Since(start)).Info("terrain generation finished")
	return nil
}

// MeshAll runs the visibility pass and then fn on every chunk, one task per
// chunk. Every chunk must be generated first; fn may read the blocks of
// adjacent chunks but must only write its own.
func (w *World) MeshAll(ctx context.Context, fn func(ctx context.Context, c *Chunk) error) error {
	if !w.phase.CompareAndSwap(int32(PhaseGenerated), int32(PhaseMeshing)) {
		return fmt.Errorf("mesh in phase %d: %w", w.Phase(), ErrPrematureAccess)
	}
	defer profiling.Track("world.MeshAll")()

	for _, c := range w.chunks {
		if !c.IsGenerated() {
			w.phase.Store(int32(PhaseGenerated))
			return fmt.Errorf("mesh chunk %v in state %v: %w", c.Coords(), c.State(), ErrPrematureAccess)
		}
	}

	start := time.Now()
	w.log.WithField("chunks", len(w.order)).Info("meshing started")
	err := w.each(ctx, func(ctx context.Context, c *Chunk) error {
		if err := c.ComputeVisibility(w); err != nil {
			return fmt.Errorf("visibility of chunk %v: %w", c.Coords(), err)
		}
		if fn != nil {
			if err := fn(ctx, c); err != nil {
				return fmt.Errorf("mesh chunk %v: %w", c.Coords(), err)
			}
		}
		return c.MarkMeshed()
	})
	if err != nil {
		return err
	}
	w.phase.Store(int32(PhaseMeshed))
	w.log.WithField("elapsed", time.Since(start)).Info("meshing finished")
	return nil
}

// each runs fn for every chunk with at most Settings.Workers tasks in flight
// and waits for all of them.
func (w *World) each(ctx context.Context, fn func(ctx context.Context, c *Chunk) error) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.settings.Workers)
	for _, coord := range w.order {
		c := w.chunks[coord]
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			return fn(gctx, c)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	// gctx is always cancelled once Wait returns; only the caller's
	// context says whether the run was cut short
	return ctx.Err()
}

// SortCoords orders coordinates by x, then y, then z.
func SortCoords(cs []Coord) {
	sort.Slice(cs, func(i, j int) bool {
		a, b := cs[i], cs[j]
		if a.X != b.X {
			return a.X < b.X
		}
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.Z < b.Z
	})
}

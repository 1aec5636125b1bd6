package world

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/zeebo/xxh3"
)

// Octave is one layer of the column height sum.
type Octave struct {
	Scale     float64 `toml:"scale"`
	Amplitude float64 `toml:"amplitude"`
	Reducer   float64 `toml:"reducer"`
}

// DefaultOctaves are the mountain, detail and fine detail layers.
var DefaultOctaves = []Octave{
	{Scale: 0.3, Amplitude: 70, Reducer: 60},
	{Scale: 0.009, Amplitude: 10, Reducer: 70},
	{Scale: 0.1, Amplitude: 0.85, Reducer: 80},
}

const (
	DefaultBiomeScale     = 0.01
	DefaultBiomeAmplitude = 5.0

	// pixelRange is the span a noise sample is stretched to before the
	// octave amplitude and reducer apply.
	pixelRange = 255.0

	// mountainRatio is the surface elevation, in percent of world height,
	// above which a column switches to the mountain material rule.
	mountainRatio = 25

	grassDepth   = 1
	dirtDepth    = 6
	rockDepth    = 33
	snowCapDepth = 3
)

// BiomeThreshold maps every floored biome value <= Max to Biome.
type BiomeThreshold struct {
	Max   float64
	Biome Biome
}

// BiomeThresholds is ordered; the first entry whose Max is not exceeded wins.
var BiomeThresholds = []BiomeThreshold{
	{Max: 0, Biome: BiomeForest},
	{Max: 2, Biome: BiomeDesert},
	{Max: 4, Biome: BiomeJungle},
	{Max: 6, Biome: BiomeTundra},
	{Max: 8, Biome: BiomeIcy},
	{Max: 10, Biome: BiomeSwamp},
	{Max: 12, Biome: BiomePlains},
}

// DefaultBiome is used when the biome value exceeds every threshold.
const DefaultBiome = BiomePlains

// ElevationBand gives the snow and grass chances for mountain blocks at or
// above MinElevation percent of the world height.
type ElevationBand struct {
	MinElevation int
	Snow         float64
	Grass        float64
}

// ElevationBands is ordered from the highest band down.
var ElevationBands = []ElevationBand{
	{MinElevation: 70, Snow: 1.0, Grass: 0},
	{MinElevation: 65, Snow: 0.9, Grass: 0},
	{MinElevation: 60, Snow: 0.8, Grass: 0},
	{MinElevation: 55, Snow: 0.7, Grass: 0},
	{MinElevation: 50, Snow: 0.6, Grass: 0},
	{MinElevation: 45, Snow: 0.5, Grass: 0.1},
	{MinElevation: 40, Snow: 0.4, Grass: 0.2},
	{MinElevation: 35, Snow: 0.3, Grass: 0.3},
	{MinElevation: 30, Snow: 0.2, Grass: 0.4},
	{MinElevation: 26, Snow: 0.1, Grass: 0.5},
	{MinElevation: math.MinInt, Snow: 0, Grass: 0.6},
}

// TerrainSettings tunes the classifier.
type TerrainSettings struct {
	Octaves        []Octave
	BiomeScale     float64
	BiomeAmplitude float64
}

// DefaultTerrainSettings returns the stock octaves and biome sampling.
func DefaultTerrainSettings() TerrainSettings {
	octaves := make([]Octave, len(DefaultOctaves))
	copy(octaves, DefaultOctaves)
	return TerrainSettings{
		Octaves:        octaves,
		BiomeScale:     DefaultBiomeScale,
		BiomeAmplitude: DefaultBiomeAmplitude,
	}
}

func (t TerrainSettings) validate() error {
	if len(t.Octaves) == 0 {
		return fmt.Errorf("%w: no terrain octaves", ErrConfiguration)
	}
	for i, o := range t.Octaves {
		if o.Reducer == 0 {
			return fmt.Errorf("%w: octave %d has zero reducer", ErrConfiguration, i)
		}
	}
	return nil
}

// Classifier turns world coordinates into column heights, biomes and
// materials. It holds no mutable state and is safe for concurrent use.
type Classifier struct {
	seed        int64
	noise       NoiseField
	settings    TerrainSettings
	worldHeight int
}

// NewClassifier binds a noise field and terrain settings to a world height.
func NewClassifier(seed int64, noise NoiseField, settings TerrainSettings, worldHeight int) *Classifier {
	return &Classifier{
		seed:        seed,
		noise:       noise,
		settings:    settings,
		worldHeight: worldHeight,
	}
}

// WorldHeight returns the height in blocks used by the mountain rule.
func (c *Classifier) WorldHeight() int {
	return c.worldHeight
}

// pixel stretches a [-1,1] sample onto [0, pixelRange].
func (c *Classifier) pixel(gx, gz int, scale float64) float64 {
	n := c.noise.Noise2D(float64(gx), float64(gz), scale)
	return (n + 1) / 2 * pixelRange
}

// ColumnHeight returns the terrain surface elevation of column (gx, gz).
func (c *Classifier) ColumnHeight(gx, gz int) float64 {
	h := 0.0
	for _, o := range c.settings.Octaves {
		h += c.pixel(gx, gz, o.Scale) * o.Amplitude / o.Reducer
	}
	return h
}

// SurfaceHeight quantises a column height to the first non-terrain layer.
func SurfaceHeight(h float64) int {
	return int(math.Round(h))
}

// IsTerrain reports whether layer gy lies under a column of height h.
func IsTerrain(h float64, gy int) bool {
	return gy < SurfaceHeight(h)
}

// BiomeValue returns the raw biome sample of column (gx, gz).
func (c *Classifier) BiomeValue(gx, gz int) float64 {
	return c.pixel(gx, gz, c.settings.BiomeScale) * c.settings.BiomeAmplitude / 100
}

// BiomeAt classifies column (gx, gz).
func (c *Classifier) BiomeAt(gx, gz int) Biome {
	return BiomeForValue(c.BiomeValue(gx, gz))
}

// BiomeForValue floors v and returns the first biome whose inclusive upper
// bound is not exceeded.
func BiomeForValue(v float64) Biome {
	f := math.Floor(v)
	for _, t := range BiomeThresholds {
		if f <= t.Max {
			return t.Biome
		}
	}
	return DefaultBiome
}

// elevation returns gy (or a height) in whole percent of the world height.
func (c *Classifier) elevation(v float64) int {
	if c.worldHeight <= 0 {
		return 0
	}
	return int(math.Round(v / float64(c.worldHeight) * 100))
}

// IsMountain reports whether a column of height h uses the mountain rule.
func (c *Classifier) IsMountain(h float64) bool {
	return c.elevation(h) > mountainRatio
}

// MaterialFor classifies block (gx, gy, gz) in a column of height h.
func (c *Classifier) MaterialFor(h float64, gx, gy, gz int) Material {
	offset := SurfaceHeight(h) - gy
	if offset < grassDepth {
		return MaterialAir
	}
	if offset > rockDepth {
		return MaterialCorrupt
	}
	if !c.IsMountain(h) {
		return baseMaterial(offset)
	}

	if offset > snowCapDepth {
		return MaterialRock
	}
	band := c.band(gy)
	r := c.roll(gx, gy, gz)
	switch {
	case r < band.Snow:
		return MaterialSnow
	case offset == grassDepth && r < band.Snow+band.Grass:
		return MaterialGrass
	default:
		return MaterialRock
	}
}

func baseMaterial(offset int) Material {
	switch {
	case offset == grassDepth:
		return MaterialGrass
	case offset <= dirtDepth:
		return MaterialDirt
	default:
		return MaterialRock
	}
}

func (c *Classifier) band(gy int) ElevationBand {
	e := c.elevation(float64(gy))
	for _, b := range ElevationBands {
		if e >= b.MinElevation {
			return b
		}
	}
	return ElevationBands[len(ElevationBands)-1]
}

// roll returns a uniform value in [0,1) derived from the seed and the block
// position only.
func (c *Classifier) roll(gx, gy, gz int) float64 {
	var buf [24]byte
	binary.LittleEndian.PutUint64(buf[0:], uint64(int64(gx)))
	binary.LittleEndian.PutUint64(buf[8:], uint64(int64(gy)))
	binary.LittleEndian.PutUint64(buf[16:], uint64(int64(gz)))
	h := xxh3.HashSeed(buf[:], uint64(c.seed))
	return float64(h>>11) / (1 << 53)
}

// PlainsBand picks the surface material of a Plains column whose top block's
// lower face sits at or above MinY.
type PlainsBand struct {
	MinY     float64
	Material Material
}

// PlainsBands is ordered from the highest band down. Lower surfaces keep
// their material.
var PlainsBands = []PlainsBand{
	{MinY: 40, Material: MaterialSnow},
	{MinY: 30, Material: MaterialRock},
	{MinY: 20, Material: MaterialGrass},
	{MinY: 10, Material: MaterialDirt},
}

// SurfaceCap adjusts the material m of a column's top block at layer gy for
// its biome. Only grass-topped Plains columns change, by the elevation of the
// block's lower face.
func SurfaceCap(b Biome, m Material, gy int) Material {
	if b != BiomePlains || m != MaterialGrass {
		return m
	}
	bottom := float64(gy) - 0.5
	for _, band := range PlainsBands {
		if bottom >= band.MinY {
			return band.Material
		}
	}
	return m
}

// Column holds the per-column noise results shared by every layer.
type Column struct {
	Height float64
	Biome  Biome
}

// ColumnAt samples height and biome of column (gx, gz) once.
func (c *Classifier) ColumnAt(gx, gz int) Column {
	return Column{Height: c.ColumnHeight(gx, gz), Biome: c.BiomeAt(gx, gz)}
}

// Classify returns the block data for layer gy of a sampled column.
func (c *Classifier) Classify(col Column, gx, gy, gz int) (Material, bool) {
	m := c.MaterialFor(col.Height, gx, gy, gz)
	if SurfaceHeight(col.Height)-gy == grassDepth {
		m = SurfaceCap(col.Biome, m, gy)
	}
	return m, m.IsSolid()
}

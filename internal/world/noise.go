package world

import (
	"encoding/binary"
	"fmt"
	"math"

	perlin "github.com/aquilax/go-perlin"
	"github.com/ojrac/opensimplex-go"
	"github.com/zeebo/xxh3"
)

// NoiseField is a seeded 2D noise function. Noise2D samples the field at
// (x*scale, z*scale) and returns a value in [-1, 1]. Implementations must be
// deterministic and safe for concurrent use.
type NoiseField interface {
	Noise2D(x, z, scale float64) float64
}

// Noise kinds accepted by NewNoise.
const (
	NoiseSimplex = "simplex"
	NoisePerlin  = "perlin"
	NoiseValue   = "value"
)

// NewNoise builds the noise field of the given kind bound to seed.
func NewNoise(kind string, seed int64) (NoiseField, error) {
	switch kind {
	case "", NoiseSimplex:
		return NewSimplexNoise(seed), nil
	case NoisePerlin:
		return NewPerlinNoise(seed), nil
	case NoiseValue:
		return NewValueNoise(seed), nil
	default:
		return nil, fmt.Errorf("%w: unknown noise kind %q", ErrConfiguration, kind)
	}
}

// SimplexNoise is OpenSimplex noise.
type SimplexNoise struct {
	n opensimplex.Noise
}

func NewSimplexNoise(seed int64) *SimplexNoise {
	return &SimplexNoise{n: opensimplex.New(seed)}
}

func (s *SimplexNoise) Noise2D(x, z, scale float64) float64 {
	return clampUnit(s.n.Eval2(x*scale, z*scale))
}

// PerlinNoise wraps classic Perlin noise. Raw output can overshoot the unit
// range slightly, so it is clamped.
type PerlinNoise struct {
	p *perlin.Perlin
}

func NewPerlinNoise(seed int64) *PerlinNoise {
	// alpha=2, beta=2, n=3 gives smooth terrain-like noise
	return &PerlinNoise{p: perlin.NewPerlin(2, 2, 3, seed)}
}

func (p *PerlinNoise) Noise2D(x, z, scale float64) float64 {
	return clampUnit(p.p.Noise2D(x*scale, z*scale))
}

// ValueNoise is deterministic lattice value noise built on an integer hash.
// No permutation tables, so construction is free.
type ValueNoise struct {
	seed int64
}

func NewValueNoise(seed int64) *ValueNoise {
	return &ValueNoise{seed: seed}
}

func (v *ValueNoise) Noise2D(x, z, scale float64) float64 {
	return valueNoise2D(x*scale, z*scale, v.seed)*2 - 1
}

func clampUnit(v float64) float64 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}

// fade is the quintic smoothstep 6t^5 - 15t^4 + 10t^3.
func fade(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}

func lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

// hash2 hashes both lattice coordinates in full, so no linear combination of
// x and z collides systematically.
func hash2(x, z, seed int64) uint64 {
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[0:], uint64(x))
	binary.LittleEndian.PutUint64(buf[8:], uint64(z))
	return xxh3.HashSeed(buf[:], uint64(seed))
}

// latticeValue maps the lattice hash to [0,1].
func latticeValue(x, z, seed int64) float64 {
	return float64(hash2(x, z, seed)&0xFFFFFFFF) / float64(0xFFFFFFFF)
}

// valueNoise2D returns a value in [0,1].
func valueNoise2D(x, z float64, seed int64) float64 {
	x0 := math.Floor(x)
	z0 := math.Floor(z)

	fx := fade(x - x0)
	fz := fade(z - z0)

	ix, iz := int64(x0), int64(z0)
	v00 := latticeValue(ix, iz, seed)
	v10 := latticeValue(ix+1, iz, seed)
	v01 := latticeValue(ix, iz+1, seed)
	v11 := latticeValue(ix+1, iz+1, seed)

	return lerp(lerp(v00, v10, fx), lerp(v01, v11, fx), fz)
}

package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml"
	"github.com/sirupsen/logrus"

	"voxelmesh/internal/world"
)

// Axis is a per-axis integer triple.
type Axis struct {
	X int `toml:"x"`
	Y int `toml:"y"`
	Z int `toml:"z"`
}

func (a Axis) coord() world.Coord {
	return world.Coord{X: a.X, Y: a.Y, Z: a.Z}
}

// Terrain holds the classifier tunables.
type Terrain struct {
	BiomeScale     float64        `toml:"biome_scale"`
	BiomeAmplitude float64        `toml:"biome_amplitude"`
	Octaves        []world.Octave `toml:"octaves"`
}

// File is the TOML configuration of a world build. Zero values fall back to
// the defaults, except for the seed which is taken as written when present.
type File struct {
	Seed        int64   `toml:"seed"`
	Noise       string  `toml:"noise"`
	Workers     int     `toml:"workers"`
	BlockScale  float64 `toml:"block_scale"`
	WorldHeight int     `toml:"world_height"`
	LogLevel    string  `toml:"log_level"`

	Chunks      Axis    `toml:"chunks"`
	ChunkExtent Axis    `toml:"chunk_extent"`
	Terrain     Terrain `toml:"terrain"`

	// Materials maps material names to the resource id a renderer binds for
	// them, e.g. grass = "materials/grass".
	Materials map[string]string `toml:"materials"`
}

// Default returns the stock configuration.
func Default() File {
	ws := world.DefaultSettings()
	f := File{
		Seed:        ws.Seed,
		Noise:       world.NoiseSimplex,
		BlockScale:  float64(ws.BlockScale),
		LogLevel:    logrus.InfoLevel.String(),
		Chunks:      Axis{X: ws.Chunks.X, Y: ws.Chunks.Y, Z: ws.Chunks.Z},
		ChunkExtent: Axis{X: ws.ChunkExtent.X, Y: ws.ChunkExtent.Y, Z: ws.ChunkExtent.Z},
		Terrain: Terrain{
			BiomeScale:     ws.Terrain.BiomeScale,
			BiomeAmplitude: ws.Terrain.BiomeAmplitude,
			Octaves:        ws.Terrain.Octaves,
		},
		Materials: make(map[string]string),
	}
	for _, m := range world.Materials {
		if m.IsSolid() {
			f.Materials[m.String()] = "materials/" + m.String()
		}
	}
	return f
}

// Load reads the configuration at path and fills unset values from Default.
func Load(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes TOML configuration data and fills unset values from Default.
func Parse(data []byte) (File, error) {
	tree, err := toml.LoadBytes(data)
	if err != nil {
		return File{}, fmt.Errorf("decode config: %w", err)
	}
	var f File
	if err := tree.Unmarshal(&f); err != nil {
		return File{}, fmt.Errorf("decode config: %w", err)
	}
	f.fill(Default(), tree.Has("seed"))
	return f, nil
}

func (f *File) fill(d File, seedSet bool) {
	if !seedSet {
		f.Seed = d.Seed
	}
	if f.Noise == "" {
		f.Noise = d.Noise
	}
	if f.BlockScale == 0 {
		f.BlockScale = d.BlockScale
	}
	if f.LogLevel == "" {
		f.LogLevel = d.LogLevel
	}
	if f.Chunks == (Axis{}) {
		f.Chunks = d.Chunks
	}
	if f.ChunkExtent == (Axis{}) {
		f.ChunkExtent = d.ChunkExtent
	}
	if f.Terrain.BiomeScale == 0 {
		f.Terrain.BiomeScale = d.Terrain.BiomeScale
	}
	if f.Terrain.BiomeAmplitude == 0 {
		f.Terrain.BiomeAmplitude = d.Terrain.BiomeAmplitude
	}
	if len(f.Terrain.Octaves) == 0 {
		f.Terrain.Octaves = d.Terrain.Octaves
	}
	if f.Materials == nil {
		f.Materials = make(map[string]string)
	}
	for k, v := range d.Materials {
		if _, ok := f.Materials[k]; !ok {
			f.Materials[k] = v
		}
	}
}

// WriteDefault saves the default configuration to path. It refuses to
// overwrite an existing file.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return errors.New("config file already exists")
	} else if !os.IsNotExist(err) {
		return err
	}
	data, err := toml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("encode default config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write default config: %w", err)
	}
	return nil
}

// Level returns the configured log level.
func (f File) Level() (logrus.Level, error) {
	lvl, err := logrus.ParseLevel(f.LogLevel)
	if err != nil {
		return logrus.InfoLevel, fmt.Errorf("%w: %v", world.ErrConfiguration, err)
	}
	return lvl, nil
}

// Validate checks every value that can be checked without building a world.
func (f File) Validate() error {
	if _, err := f.Level(); err != nil {
		return err
	}
	if _, err := world.NewNoise(f.Noise, f.Seed); err != nil {
		return err
	}
	if _, err := f.MaterialIDs(); err != nil {
		return err
	}
	return f.WorldSettings().Validate()
}

package config

import (
	"fmt"

	"voxelmesh/internal/world"
)

// WorldSettings converts the file into world build settings.
func (f File) WorldSettings() world.Settings {
	octaves := make([]world.Octave, len(f.Terrain.Octaves))
	copy(octaves, f.Terrain.Octaves)
	return world.Settings{
		Seed:        f.Seed,
		Chunks:      f.Chunks.coord(),
		ChunkExtent: f.ChunkExtent.coord(),
		WorldHeight: f.WorldHeight,
		BlockScale:  float32(f.BlockScale),
		Workers:     f.Workers,
		Terrain: world.TerrainSettings{
			Octaves:        octaves,
			BiomeScale:     f.Terrain.BiomeScale,
			BiomeAmplitude: f.Terrain.BiomeAmplitude,
		},
	}
}

// NoiseField builds the configured noise kind bound to the seed.
func (f File) NoiseField() (world.NoiseField, error) {
	return world.NewNoise(f.Noise, f.Seed)
}

// MaterialIDs resolves the [materials] table. Air has no resource.
func (f File) MaterialIDs() (map[world.Material]string, error) {
	out := make(map[world.Material]string, len(f.Materials))
	for name, id := range f.Materials {
		m, err := world.ParseMaterial(name)
		if err != nil {
			return nil, fmt.Errorf("%w: materials: %v", world.ErrConfiguration, err)
		}
		if !m.IsSolid() {
			return nil, fmt.Errorf("%w: materials: %s cannot carry a resource", world.ErrConfiguration, m)
		}
		if id == "" {
			return nil, fmt.Errorf("%w: materials: empty resource id for %s", world.ErrConfiguration, m)
		}
		out[m] = id
	}
	return out, nil
}

package world

import (
	"fmt"
	"strings"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Material is the surface type of a block. It selects the mesh batch a
// block's faces go to.
type Material uint8

const (
	MaterialAir Material = iota
	MaterialGrass
	MaterialDirt
	MaterialRock
	MaterialSnow
	MaterialCorrupt
)

// Materials lists every material in declaration order.
var Materials = []Material{MaterialAir, MaterialGrass, MaterialDirt, MaterialRock, MaterialSnow, MaterialCorrupt}

var materialNames = [...]string{
	MaterialAir:     "air",
	MaterialGrass:   "grass",
	MaterialDirt:    "dirt",
	MaterialRock:    "rock",
	MaterialSnow:    "snow",
	MaterialCorrupt: "corrupt",
}

func (m Material) String() string {
	if int(m) < len(materialNames) {
		return materialNames[m]
	}
	return fmt.Sprintf("material(%d)", uint8(m))
}

// IsSolid reports whether the material occupies its block.
func (m Material) IsSolid() bool {
	return m != MaterialAir
}

// ParseMaterial resolves a material by its lower-case name.
func ParseMaterial(name string) (Material, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range materialNames {
		if n == name {
			return Material(i), nil
		}
	}
	return MaterialAir, fmt.Errorf("unknown material %q", name)
}

// Biome classifies a world column.
type Biome uint8

const (
	BiomeForest Biome = iota
	BiomeDesert
	BiomeJungle
	BiomeTundra
	BiomeIcy
	BiomeSwamp
	BiomePlains
)

var biomeNames = [...]string{
	BiomeForest: "forest",
	BiomeDesert: "desert",
	BiomeJungle: "jungle",
	BiomeTundra: "tundra",
	BiomeIcy:    "icy",
	BiomeSwamp:  "swamp",
	BiomePlains: "plains",
}

func (b Biome) String() string {
	if int(b) < len(biomeNames) {
		return biomeNames[b]
	}
	return fmt.Sprintf("biome(%d)", uint8(b))
}

// Block is a single voxel. Blocks live inside their chunk's block slice and
// are only handed out as pointers for reading.
type Block struct {
	Local    Coord
	Biome    Biome
	Material Material
	// Terrain is set when the block lies at or below the column surface.
	Terrain bool
	// Visible is set by the visibility pass when at least one face borders
	// air or a missing neighbour.
	Visible bool
}

// Unit cube corners. Bit 0 of the index selects +X, bit 1 +Y, bit 2 +Z.
var cubeCorners = [8]mgl32.Vec3{
	{-0.5, -0.5, -0.5},
	{0.5, -0.5, -0.5},
	{-0.5, 0.5, -0.5},
	{0.5, 0.5, -0.5},
	{-0.5, -0.5, 0.5},
	{0.5, -0.5, 0.5},
	{-0.5, 0.5, 0.5},
	{0.5, 0.5, 0.5},
}

// CornerNormals holds the normal of each cube corner, pointing away from the
// cube centre along the diagonal.
var CornerNormals [8]mgl32.Vec3

func init() {
	inv := 1 / math32.Sqrt(3)
	for i, c := range cubeCorners {
		CornerNormals[i] = c.Mul(2 * inv)
	}
}

// faceCorners selects four of the eight cube corners per face.
var faceCorners = [6][4]int{
	FaceFront:  {0, 1, 2, 3},
	FaceBack:   {4, 5, 6, 7},
	FaceLeft:   {0, 2, 4, 6},
	FaceRight:  {1, 3, 5, 7},
	FaceBottom: {0, 1, 4, 5},
	FaceTop:    {2, 3, 6, 7},
}

// FaceCorners returns the corner indices (into Vertices) that make up f.
func FaceCorners(f Face) [4]int {
	return faceCorners[f]
}

// Vertices returns the eight world-space corners of the block. origin is the
// chunk origin in blocks (see Chunk.Origin) and scale the size of one block.
func (b *Block) Vertices(origin Coord, scale float32) [8]mgl32.Vec3 {
	center := mgl32.Vec3{
		float32(origin.X + b.Local.X),
		float32(origin.Y + b.Local.Y),
		float32(origin.Z + b.Local.Z),
	}
	var out [8]mgl32.Vec3
	for i, c := range cubeCorners {
		out[i] = center.Add(c).Mul(scale)
	}
	return out
}

// FaceVertices returns the four world-space corners of face f.
func (b *Block) FaceVertices(f Face, origin Coord, scale float32) [4]mgl32.Vec3 {
	all := b.Vertices(origin, scale)
	idx := faceCorners[f]
	return [4]mgl32.Vec3{all[idx[0]], all[idx[1]], all[idx[2]], all[idx[3]]}
}

// Package preview renders a top-down map of a world's columns.
package preview

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"

	"golang.org/x/image/draw"

	"voxelmesh/internal/world"
)

// Mode selects what a pixel shows.
type Mode string

const (
	ModeBiome    Mode = "biome"
	ModeHeight   Mode = "height"
	ModeMaterial Mode = "material"
)

// ParseMode accepts the lower-case mode names.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeBiome, ModeHeight, ModeMaterial:
		return m, nil
	}
	return "", fmt.Errorf("unknown preview mode %q", s)
}

var biomeColors = map[world.Biome]color.NRGBA{
	world.BiomeForest: {0x1c, 0x47, 0x05, 0xff},
	world.BiomeDesert: {0xda, 0xd2, 0x9e, 0xff},
	world.BiomeJungle: {0x3f, 0x8e, 0x1b, 0xff},
	world.BiomeTundra: {0x9c, 0xa8, 0x8b, 0xff},
	world.BiomeIcy:    {0xde, 0xf2, 0xfa, 0xff},
	world.BiomeSwamp:  {0x4c, 0x5e, 0x36, 0xff},
	world.BiomePlains: {0x8d, 0xb3, 0x60, 0xff},
}

var materialColors = map[world.Material]color.NRGBA{
	world.MaterialAir:     {0x00, 0x9a, 0xff, 0xff},
	world.MaterialGrass:   {0x52, 0x73, 0x2c, 0xff},
	world.MaterialDirt:    {0x86, 0x60, 0x43, 0xff},
	world.MaterialRock:    {0x7d, 0x7d, 0x7d, 0xff},
	world.MaterialSnow:    {0xfe, 0xfe, 0xff, 0xff},
	world.MaterialCorrupt: {0x4b, 0x1c, 0x5e, 0xff},
}

// Render draws one pixel per column for columns [0,width) x [0,depth) and
// scales the result by factor with nearest-neighbour sampling. Image x is
// world x and image y is world z.
func Render(cls *world.Classifier, width, depth int, mode Mode, factor int) (image.Image, error) {
	if width <= 0 || depth <= 0 {
		return nil, fmt.Errorf("preview size %dx%d must be positive", width, depth)
	}
	if factor < 1 {
		factor = 1
	}
	src := image.NewNRGBA(image.Rect(0, 0, width, depth))
	for x := 0; x < width; x++ {
		for z := 0; z < depth; z++ {
			c, err := columnColor(cls, x, z, mode)
			if err != nil {
				return nil, err
			}
			src.SetNRGBA(x, z, c)
		}
	}
	if factor == 1 {
		return src, nil
	}
	dst := image.NewNRGBA(image.Rect(0, 0, width*factor, depth*factor))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst, nil
}

func columnColor(cls *world.Classifier, gx, gz int, mode Mode) (color.NRGBA, error) {
	switch mode {
	case ModeBiome:
		return biomeColors[cls.BiomeAt(gx, gz)], nil
	case ModeHeight:
		return heightColor(cls.ColumnHeight(gx, gz), cls.WorldHeight()), nil
	case ModeMaterial:
		col := cls.ColumnAt(gx, gz)
		top := world.SurfaceHeight(col.Height) - 1
		m, _ := cls.Classify(col, gx, top, gz)
		return materialColors[m], nil
	}
	return color.NRGBA{}, fmt.Errorf("unknown preview mode %q", mode)
}

// heightColor maps [0, worldHeight] onto black to white, clamping outside.
func heightColor(h float64, worldHeight int) color.NRGBA {
	v := 0.0
	if worldHeight > 0 {
		v = h / float64(worldHeight)
	}
	v = min(max(v, 0), 1)
	g := uint8(v * 255)
	return color.NRGBA{R: g, G: g, B: g, A: 0xff}
}

// Encode writes img as PNG.
func Encode(w io.Writer, img image.Image) error {
	return png.Encode(w, img)
}

// WriteFile renders and saves a PNG preview at path.
func WriteFile(path string, cls *world.Classifier, width, depth int, mode Mode, factor int) error {
	img, err := Render(cls, width, depth, mode, factor)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode preview: %w", err)
	}
	return f.Close()
}

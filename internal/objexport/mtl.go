package objexport

import (
	"fmt"
	"image/color"
	"io"

	"voxelmesh/internal/world"
)

// Colors holds the diffuse colour of each solid material.
var Colors = map[world.Material]color.RGBA{
	world.MaterialGrass:   {0x2e, 0x6d, 0x05, 0xff},
	world.MaterialDirt:    {0x59, 0x3d, 0x29, 0xff},
	world.MaterialRock:    {0x75, 0x75, 0x75, 0xff},
	world.MaterialSnow:    {0xf0, 0xfb, 0xfb, 0xff},
	world.MaterialCorrupt: {0x4b, 0x1c, 0x5e, 0xff},
}

var unknownColor = color.RGBA{0x7f, 0x7f, 0x7f, 0xff}

// WriteMTL writes one newmtl entry per solid material, named the way Write
// names its usemtl groups.
func WriteMTL(w io.Writer, ids map[world.Material]string) error {
	for _, m := range world.Materials {
		if !m.IsSolid() {
			continue
		}
		c, ok := Colors[m]
		if !ok {
			c = unknownColor
		}
		_, err := fmt.Fprintf(w, "# %s\nnewmtl %s\nKd %.4f %.4f %.4f\nd %.4f\nillum 1\n\n",
			m, materialName(ids, m),
			float64(c.R)/255, float64(c.G)/255, float64(c.B)/255, float64(c.A)/255)
		if err != nil {
			return fmt.Errorf("write mtl: %w", err)
		}
	}
	return nil
}

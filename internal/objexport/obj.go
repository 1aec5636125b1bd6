// Package objexport writes meshed worlds as Wavefront OBJ with a companion
// MTL library, one object per chunk and one material group per block
// material.
package objexport

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"voxelmesh/internal/meshing"
	"voxelmesh/internal/world"
)

// Stats reports what Write emitted.
type Stats struct {
	Objects  int
	Vertices int
	Faces    int
}

// Write emits every chunk of res in x, y, z order. ids maps materials to the
// material names used by usemtl; materials without an id use their own
// name. mtllib is written when non-empty. Triangles keep the mesh winding,
// clockwise seen from outside.
func Write(w io.Writer, res *meshing.Result, ids map[world.Material]string, mtllib string) (Stats, error) {
	out := bufio.NewWriterSize(w, 1024*1024)
	var st Stats

	if mtllib != "" {
		fmt.Fprintln(out, "mtllib", mtllib)
	}
	base := 1
	for _, c := range res.Coords() {
		cm := res.Chunks[c]
		fmt.Fprintf(out, "o chunk_%d_%d_%d\n", c.X, c.Y, c.Z)
		st.Objects++
		for _, mat := range world.Materials {
			m, ok := cm.Meshes[mat]
			if !ok || len(m.Indices) == 0 {
				continue
			}
			for _, v := range m.Vertices {
				fmt.Fprintf(out, "v %g %g %g\n", v.Position[0], v.Position[1], v.Position[2])
			}
			for _, v := range m.Vertices {
				fmt.Fprintf(out, "vn %.4f %.4f %.4f\n", v.Normal[0], v.Normal[1], v.Normal[2])
			}
			fmt.Fprintln(out, "usemtl", materialName(ids, mat))
			for i := 0; i+2 < len(m.Indices); i += 3 {
				i0, i1, i2 := base+int(m.Indices[i]), base+int(m.Indices[i+1]), base+int(m.Indices[i+2])
				fmt.Fprintf(out, "f %d//%d %d//%d %d//%d\n", i0, i0, i1, i1, i2, i2)
				st.Faces++
			}
			base += len(m.Vertices)
			st.Vertices += len(m.Vertices)
		}
	}
	if err := out.Flush(); err != nil {
		return st, fmt.Errorf("write obj: %w", err)
	}
	return st, nil
}

// WriteFile writes path and a sibling .mtl library.
func WriteFile(path string, res *meshing.Result, ids map[world.Material]string) (Stats, error) {
	mtlPath := strings.TrimSuffix(path, filepath.Ext(path)) + ".mtl"
	if err := writeMTLFile(mtlPath, ids); err != nil {
		return Stats{}, err
	}

	f, err := os.Create(path)
	if err != nil {
		return Stats{}, err
	}
	st, err := Write(f, res, ids, filepath.Base(mtlPath))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return st, err
}

func writeMTLFile(path string, ids map[world.Material]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	err = WriteMTL(f, ids)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}

func materialName(ids map[world.Material]string, m world.Material) string {
	if id, ok := ids[m]; ok && id != "" {
		return id
	}
	return m.String()
}

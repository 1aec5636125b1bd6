package world

import "fmt"

// Coord is an integer position in either chunk space or chunk-local block space.
type Coord struct {
	X, Y, Z int
}

// C is shorthand for Coord{x, y, z}.
func C(x, y, z int) Coord {
	return Coord{X: x, Y: y, Z: z}
}

// Add returns the component-wise sum of c and o.
func (c Coord) Add(o Coord) Coord {
	return Coord{X: c.X + o.X, Y: c.Y + o.Y, Z: c.Z + o.Z}
}

// Mul returns the component-wise product of c and o.
func (c Coord) Mul(o Coord) Coord {
	return Coord{X: c.X * o.X, Y: c.Y * o.Y, Z: c.Z * o.Z}
}

// In reports whether 0 <= c < extent on every axis.
func (c Coord) In(extent Coord) bool {
	return c.X >= 0 && c.X < extent.X &&
		c.Y >= 0 && c.Y < extent.Y &&
		c.Z >= 0 && c.Z < extent.Z
}

// Volume returns X*Y*Z.
func (c Coord) Volume() int {
	return c.X * c.Y * c.Z
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d,%d)", c.X, c.Y, c.Z)
}

// Face identifies one of the six sides of a block or chunk.
type Face uint8

const (
	FaceFront Face = iota
	FaceBack
	FaceLeft
	FaceRight
	FaceBottom
	FaceTop
)

// Faces lists every face in declaration order.
var Faces = [6]Face{FaceFront, FaceBack, FaceLeft, FaceRight, FaceBottom, FaceTop}

// Winding selects the triangle order used when a face is emitted.
type Winding uint8

const (
	// WindingA is used by Front, Left and Top.
	WindingA Winding = iota
	// WindingB mirrors WindingA and is used by Back, Right and Bottom.
	WindingB
)

type faceInfo struct {
	name     string
	offset   Coord
	opposite Face
	winding  Winding
}

var faceTable = [6]faceInfo{
	FaceFront:  {name: "front", offset: Coord{0, 0, -1}, opposite: FaceBack, winding: WindingA},
	FaceBack:   {name: "back", offset: Coord{0, 0, 1}, opposite: FaceFront, winding: WindingB},
	FaceLeft:   {name: "left", offset: Coord{-1, 0, 0}, opposite: FaceRight, winding: WindingA},
	FaceRight:  {name: "right", offset: Coord{1, 0, 0}, opposite: FaceLeft, winding: WindingB},
	FaceBottom: {name: "bottom", offset: Coord{0, -1, 0}, opposite: FaceTop, winding: WindingB},
	FaceTop:    {name: "top", offset: Coord{0, 1, 0}, opposite: FaceBottom, winding: WindingA},
}

func (f Face) String() string {
	if int(f) < len(faceTable) {
		return faceTable[f].name
	}
	return fmt.Sprintf("face(%d)", uint8(f))
}

// Offset returns the unit step from a block (or chunk) to its neighbour across f.
func (f Face) Offset() Coord {
	return faceTable[f].offset
}

// Opposite returns the face pointing the other way.
func (f Face) Opposite() Face {
	return faceTable[f].opposite
}

// Winding returns the triangle order group of f.
func (f Face) Winding() Winding {
	return faceTable[f].winding
}

// Wrap maps a local coordinate that leaves its chunk through f onto the
// matching coordinate inside the adjacent chunk. Only the axis of f changes.
func (f Face) Wrap(local, extent Coord) Coord {
	switch f {
	case FaceFront:
		local.Z = extent.Z - 1
	case FaceBack:
		local.Z = 0
	case FaceLeft:
		local.X = extent.X - 1
	case FaceRight:
		local.X = 0
	case FaceBottom:
		local.Y = extent.Y - 1
	case FaceTop:
		local.Y = 0
	}
	return local
}

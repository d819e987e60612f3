package domain

import (
	"fmt"
	"math"
	"os"

	"cogentcore.org/core/math32"
)

// Significance thresholds below which primitive collision geometry is treated
// as decorative and excluded from collision-pair enumeration.
const (
	// DefaultVolumeThreshold is in m³.
	DefaultVolumeThreshold float32 = 1.001e-6
	// DefaultSurfaceThreshold is in m².
	DefaultSurfaceThreshold float32 = 0.00061
)

// GeometryKind enumerates the closed set of shape variants.
type GeometryKind int

const (
	GeometryBox GeometryKind = iota
	GeometryCylinder
	GeometrySphere
	GeometryMesh
)

func (k GeometryKind) String() string {
	switch k {
	case GeometryBox:
		return "box"
	case GeometryCylinder:
		return "cylinder"
	case GeometrySphere:
		return "sphere"
	case GeometryMesh:
		return "mesh"
	}
	return fmt.Sprintf("GeometryKind(%d)", int(k))
}

// Geometry is an immutable shape descriptor attached to a link, positioned by
// a fixed local transform (link frame → geometry frame).
type Geometry struct {
	Kind  GeometryKind
	Local math32.Matrix4

	// Box dimensions.
	Depth, Width, Height float32

	// Cylinder and sphere. Cylinders reuse Height for their length.
	Radius float32

	// Mesh resource.
	FileName string
	Scale    math32.Vector3
}

// NewBox returns a box geometry with the given local transform and
// depth/width/height dimensions.
func NewBox(local math32.Matrix4, depth, width, height float32) *Geometry {
	return &Geometry{Kind: GeometryBox, Local: local, Depth: depth, Width: width, Height: height}
}

// NewCylinder returns a cylinder geometry with the given height and radius.
func NewCylinder(local math32.Matrix4, height, radius float32) *Geometry {
	return &Geometry{Kind: GeometryCylinder, Local: local, Height: height, Radius: radius}
}

// NewSphere returns a sphere geometry with the given radius.
func NewSphere(local math32.Matrix4, radius float32) *Geometry {
	return &Geometry{Kind: GeometrySphere, Local: local, Radius: radius}
}

// NewMesh returns a mesh geometry referencing fileName, scaled per axis.
// The file must exist; a missing resource fails with [ErrCorruptShape].
func NewMesh(local math32.Matrix4, fileName string, scale math32.Vector3) (*Geometry, error) {
	if _, err := os.Stat(fileName); err != nil {
		return nil, fmt.Errorf("%w: mesh file %q not found", ErrCorruptShape, fileName)
	}
	if scale == (math32.Vector3{}) {
		scale = math32.Vec3(1, 1, 1)
	}
	return &Geometry{Kind: GeometryMesh, Local: local, FileName: fileName, Scale: scale}, nil
}

// Significant reports whether the shape is big enough to be worth collision
// checking. Meshes are always significant: their volume is unknown, so they
// are assumed relevant. Primitives compare closed-form volume and surface
// area against the thresholds.
func (g *Geometry) Significant(volumeThreshold, surfaceThreshold float32) bool {
	switch g.Kind {
	case GeometryMesh:
		return true
	case GeometryBox:
		return boxVolume(g.Depth, g.Width, g.Height) > volumeThreshold ||
			boxSurface(g.Depth, g.Width, g.Height) > surfaceThreshold
	case GeometryCylinder:
		return cylinderVolume(g.Radius, g.Height) > volumeThreshold ||
			cylinderSurface(g.Radius, g.Height) > surfaceThreshold
	case GeometrySphere:
		return sphereVolume(g.Radius) > volumeThreshold
	}
	return false
}

func boxVolume(d, w, h float32) float32 { return d * w * h }

func boxSurface(d, w, h float32) float32 { return 2 * (d*w + d*h + w*h) }

func cylinderVolume(r, h float32) float32 { return math.Pi * r * r * h }

func cylinderSurface(r, h float32) float32 { return 2 * math.Pi * r * (h + r) }

func sphereVolume(r float32) float32 { return 4.0 / 3.0 * math.Pi * r * r * r }

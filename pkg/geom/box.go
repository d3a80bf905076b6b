// Package geom provides the axis-aligned bounding box helpers and the
// point containment classification shared by the geometry kernel and the
// voxel core. Points are sdfx vectors so kernel results flow through
// without conversion.
package geom

import (
	"fmt"
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Box is an immutable axis-aligned bounding box (extents).
type Box struct {
	Min v3.Vec `json:"min" yaml:"min"`
	Max v3.Vec `json:"max" yaml:"max"`
}

// NewBox returns the box spanned by two opposite corners, in any order.
func NewBox(a, b v3.Vec) Box {
	return Box{
		Min: v3.Vec{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y), Z: math.Min(a.Z, b.Z)},
		Max: v3.Vec{X: math.Max(a.X, b.X), Y: math.Max(a.Y, b.Y), Z: math.Max(a.Z, b.Z)},
	}
}

// FromSDF converts an sdfx bounding box.
func FromSDF(b sdf.Box3) Box {
	return Box{Min: b.Min, Max: b.Max}
}

// SDF converts the box back to its sdfx representation.
func (b Box) SDF() sdf.Box3 {
	return sdf.Box3{Min: b.Min, Max: b.Max}
}

// Valid reports whether every coordinate is finite and Min <= Max on all axes.
func (b Box) Valid() bool {
	for _, c := range [6]float64{b.Min.X, b.Min.Y, b.Min.Z, b.Max.X, b.Max.Y, b.Max.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return b.Min.X <= b.Max.X && b.Min.Y <= b.Max.Y && b.Min.Z <= b.Max.Z
}

// LengthX returns the extent along X.
func (b Box) LengthX() float64 { return b.Max.X - b.Min.X }

// LengthY returns the extent along Y.
func (b Box) LengthY() float64 { return b.Max.Y - b.Min.Y }

// LengthZ returns the extent along Z.
func (b Box) LengthZ() float64 { return b.Max.Z - b.Min.Z }

// Size returns the per-axis extents.
func (b Box) Size() v3.Vec {
	return b.Max.Sub(b.Min)
}

// LongestEdge returns the largest of the three axis lengths.
func (b Box) LongestEdge() float64 {
	return math.Max(b.LengthX(), math.Max(b.LengthY(), b.LengthZ()))
}

// Center returns Min + (Max-Min)/2.
func (b Box) Center() v3.Vec {
	return b.Min.Add(b.Max.Sub(b.Min).MulScalar(0.5))
}

// Contains reports whether p lies inside the box or on its boundary.
func (b Box) Contains(p v3.Vec) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// Cube returns the axis-aligned cube of the given half side centered on c.
func Cube(c v3.Vec, half float64) Box {
	h := v3.Vec{X: half, Y: half, Z: half}
	return Box{Min: c.Sub(h), Max: c.Add(h)}
}

// Corners returns the eight corner points of the box.
func (b Box) Corners() [8]v3.Vec {
	return [8]v3.Vec{
		{X: b.Min.X, Y: b.Min.Y, Z: b.Min.Z},
		{X: b.Max.X, Y: b.Min.Y, Z: b.Min.Z},
		{X: b.Max.X, Y: b.Max.Y, Z: b.Min.Z},
		{X: b.Min.X, Y: b.Max.Y, Z: b.Min.Z},
		{X: b.Min.X, Y: b.Min.Y, Z: b.Max.Z},
		{X: b.Max.X, Y: b.Min.Y, Z: b.Max.Z},
		{X: b.Max.X, Y: b.Max.Y, Z: b.Max.Z},
		{X: b.Min.X, Y: b.Max.Y, Z: b.Max.Z},
	}
}

func (b Box) String() string {
	return fmt.Sprintf("[(%g,%g,%g),(%g,%g,%g)]",
		b.Min.X, b.Min.Y, b.Min.Z, b.Max.X, b.Max.Y, b.Max.Z)
}

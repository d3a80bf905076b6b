package graph

// ---------------------------------------------------------------------------
// Primitives
// ---------------------------------------------------------------------------

// PrimitiveKind distinguishes between primitive shapes.
type PrimitiveKind int

const (
	PrimBox      PrimitiveKind = iota // rectangular solid, min corner at origin
	PrimSphere                        // sphere centered at origin
	PrimCylinder                      // cylinder along Z centered at origin
)

func (k PrimitiveKind) String() string {
	switch k {
	case PrimBox:
		return "box"
	case PrimSphere:
		return "sphere"
	case PrimCylinder:
		return "cylinder"
	default:
		return "unknown"
	}
}

// BoxData is an axis-aligned box.
type BoxData struct {
	Size Vec3 `json:"size"`
}

func (BoxData) nodeData() {}

// SphereData is a sphere.
type SphereData struct {
	Radius float64 `json:"radius"`
}

func (SphereData) nodeData() {}

// CylinderData is a cylinder.
type CylinderData struct {
	Height float64 `json:"height"`
	Radius float64 `json:"radius"`
}

func (CylinderData) nodeData() {}

// PrimitiveKindOf returns the primitive kind of a primitive payload.
func PrimitiveKindOf(d NodeData) (PrimitiveKind, bool) {
	switch d.(type) {
	case BoxData:
		return PrimBox, true
	case SphereData:
		return PrimSphere, true
	case CylinderData:
		return PrimCylinder, true
	default:
		return 0, false
	}
}

// ---------------------------------------------------------------------------
// Transform
// ---------------------------------------------------------------------------

// TransformData represents a spatial transformation applied to a single
// child node. Rotation is applied before translation.
type TransformData struct {
	Translation *Vec3 `json:"translation,omitempty"`
	Rotation    *Vec3 `json:"rotation,omitempty"` // Euler angles in degrees
}

func (TransformData) nodeData() {}

// ---------------------------------------------------------------------------
// Boolean
// ---------------------------------------------------------------------------

// BooleanOp enumerates CSG operations.
type BooleanOp int

const (
	OpUnion        BooleanOp = iota // all children
	OpDifference                    // first child minus the others
	OpIntersection                  // common volume of all children
)

func (op BooleanOp) String() string {
	switch op {
	case OpUnion:
		return "union"
	case OpDifference:
		return "difference"
	case OpIntersection:
		return "intersection"
	default:
		return "unknown"
	}
}

// BooleanData combines the node's children.
type BooleanData struct {
	Op BooleanOp `json:"op"`
}

func (BooleanData) nodeData() {}

// ---------------------------------------------------------------------------
// Solid
// ---------------------------------------------------------------------------

// SolidData names the geometry of its single child.
// Created by the (defsolid ...) Lisp form.
type SolidData struct {
	CellSize    float64 `json:"cell_size,omitempty"` // 0 = use graph default
	Description string  `json:"description,omitempty"`
}

func (SolidData) nodeData() {}

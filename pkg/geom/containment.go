package geom

import "fmt"

// Containment is the result of classifying a point against a solid boundary.
type Containment int

const (
	Outside    Containment = iota // strictly outside the solid
	OnBoundary                    // on the boundary surface, within tolerance
	Inside                        // strictly inside the solid
)

func (c Containment) String() string {
	switch c {
	case Outside:
		return "outside"
	case OnBoundary:
		return "on-boundary"
	case Inside:
		return "inside"
	default:
		return fmt.Sprintf("Containment(%d)", int(c))
	}
}

// Occupied reports whether the point counts as part of the solid.
// Boundary points count as occupied.
func (c Containment) Occupied() bool {
	return c != Outside
}

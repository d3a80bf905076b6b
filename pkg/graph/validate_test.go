package graph

import (
	"math"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

// buildBracket creates a valid graph: a plate with a translated hole bored
// through it, exposed as the root solid "bracket".
func buildBracket() *DesignGraph {
	g := New()

	plateID := NewNodeID("box/bracket/0")
	holeID := NewNodeID("cylinder/bracket/1")
	moveID := NewNodeID("translate/bracket/1")
	diffID := NewNodeID("difference/bracket")
	solidID := NewNodeID("defsolid/bracket")

	g.AddNode(&Node{
		ID: plateID, Kind: NodePrimitive,
		Data: BoxData{Size: Vec3{40, 20, 5}},
	})
	g.AddNode(&Node{
		ID: holeID, Kind: NodePrimitive,
		Data: CylinderData{Height: 10, Radius: 3},
	})
	g.AddNode(&Node{
		ID: moveID, Kind: NodeTransform,
		Children: []NodeID{holeID},
		Data:     TransformData{Translation: &Vec3{20, 10, 2.5}},
	})
	g.AddNode(&Node{
		ID: diffID, Kind: NodeBoolean,
		Children: []NodeID{plateID, moveID},
		Data:     BooleanData{Op: OpDifference},
	})
	g.AddNode(&Node{
		ID: solidID, Kind: NodeSolid, Name: "bracket",
		Children: []NodeID{diffID},
		Data:     SolidData{Description: "plate with a hole"},
	})
	g.AddRoot(solidID)

	return g
}

// hasError returns true if errs contains at least one error-severity finding
// whose message contains substr.
func hasError(errs []ValidationError, substr string) bool {
	for _, e := range errs {
		if e.Severity == SeverityError && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

// hasWarning returns true if errs contains at least one warning-severity
// finding whose message contains substr.
func hasWarning(errs []ValidationError, substr string) bool {
	for _, e := range errs {
		if e.Severity == SeverityWarning && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestValidateValidGraph(t *testing.T) {
	errs := Validate(buildBracket())
	if len(errs) != 0 {
		t.Fatalf("valid graph produced findings: %v", errs)
	}
	if HasErrors(errs) {
		t.Error("HasErrors() = true for valid graph")
	}
}

func TestValidateEmptyGraph(t *testing.T) {
	if errs := Validate(New()); len(errs) != 0 {
		t.Fatalf("empty graph produced findings: %v", errs)
	}
}

func TestValidateCycle(t *testing.T) {
	g := buildBracket()
	plate := g.Get(NewNodeID("box/bracket/0"))
	plate.Children = []NodeID{NewNodeID("difference/bracket")}

	errs := Validate(g)
	if !hasError(errs, "cycle detected") {
		t.Errorf("expected cycle error, got %v", errs)
	}
}

func TestValidateDanglingChild(t *testing.T) {
	g := buildBracket()
	diff := g.Get(NewNodeID("difference/bracket"))
	diff.Children = append(diff.Children, NewNodeID("box/missing"))

	if errs := Validate(g); !hasError(errs, "does not exist") {
		t.Errorf("expected dangling reference error, got %v", errs)
	}
}

func TestValidateDuplicateNames(t *testing.T) {
	g := buildBracket()
	g.AddNode(&Node{
		ID: NewNodeID("defsolid/bracket-2"), Kind: NodeSolid, Name: "bracket",
		Children: []NodeID{NewNodeID("box/bracket/0")},
		Data:     SolidData{},
	})

	if errs := Validate(g); !hasError(errs, "duplicate name") {
		t.Errorf("expected duplicate name error, got %v", errs)
	}
}

func TestValidateNameIndexDangling(t *testing.T) {
	g := buildBracket()
	g.NameIndex["ghost"] = NewNodeID("defsolid/ghost")

	if errs := Validate(g); !hasError(errs, "non-existent node") {
		t.Errorf("expected name index error, got %v", errs)
	}
}

func TestValidateRoots(t *testing.T) {
	t.Run("missing root", func(t *testing.T) {
		g := buildBracket()
		g.AddRoot(NewNodeID("defsolid/missing"))
		if errs := Validate(g); !hasError(errs, "root reference") {
			t.Errorf("expected missing root error, got %v", errs)
		}
	})

	t.Run("non-solid root", func(t *testing.T) {
		g := buildBracket()
		g.AddRoot(NewNodeID("box/bracket/0"))
		if errs := Validate(g); !hasError(errs, "not solid") {
			t.Errorf("expected non-solid root error, got %v", errs)
		}
	})

	t.Run("repeated root", func(t *testing.T) {
		g := buildBracket()
		g.AddRoot(NewNodeID("defsolid/bracket"))
		if errs := Validate(g); !hasError(errs, "more than once") {
			t.Errorf("expected repeated root error, got %v", errs)
		}
	})

	t.Run("orphan", func(t *testing.T) {
		g := buildBracket()
		g.AddNode(&Node{ID: NewNodeID("sphere/stray"), Kind: NodePrimitive, Data: SphereData{Radius: 1}})
		errs := Validate(g)
		if !hasWarning(errs, "orphan") {
			t.Errorf("expected orphan warning, got %v", errs)
		}
		if HasErrors(errs) {
			t.Errorf("orphan should only warn, got %v", errs)
		}
	})
}

func TestValidateArity(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(g *DesignGraph)
		want   string
	}{
		{
			name: "primitive with children",
			mutate: func(g *DesignGraph) {
				g.Get(NewNodeID("cylinder/bracket/1")).Children = []NodeID{NewNodeID("box/bracket/0")}
			},
			want: "primitive has 1 children",
		},
		{
			name: "transform without child",
			mutate: func(g *DesignGraph) {
				g.Get(NewNodeID("translate/bracket/1")).Children = nil
			},
			want: "transform has 0 children",
		},
		{
			name: "difference with one operand",
			mutate: func(g *DesignGraph) {
				d := g.Get(NewNodeID("difference/bracket"))
				d.Children = d.Children[:1]
			},
			want: "difference has 1 operands",
		},
		{
			name: "solid with two children",
			mutate: func(g *DesignGraph) {
				s := g.Get(NewNodeID("defsolid/bracket"))
				s.Children = append(s.Children, NewNodeID("box/bracket/0"))
			},
			want: "solid has 2 children",
		},
		{
			name: "solid wrapping solid",
			mutate: func(g *DesignGraph) {
				outer := NewNodeID("defsolid/outer")
				g.AddNode(&Node{
					ID: outer, Kind: NodeSolid, Name: "outer",
					Children: []NodeID{NewNodeID("defsolid/bracket")},
					Data:     SolidData{},
				})
				g.AddRoot(outer)
			},
			want: "wraps another solid",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := buildBracket()
			tt.mutate(g)
			if errs := Validate(g); !hasError(errs, tt.want) {
				t.Errorf("expected %q, got %v", tt.want, errs)
			}
		})
	}
}

func TestValidateDimensions(t *testing.T) {
	tests := []struct {
		name string
		data NodeData
		want string
	}{
		{"zero box", BoxData{Size: Vec3{0, 1, 1}}, "box dimensions must be positive"},
		{"negative box", BoxData{Size: Vec3{1, -1, 1}}, "box dimensions must be positive"},
		{"infinite box", BoxData{Size: Vec3{1, 1, math.Inf(1)}}, "box dimensions must be positive"},
		{"zero sphere", SphereData{Radius: 0}, "sphere radius must be positive"},
		{"nan sphere", SphereData{Radius: math.NaN()}, "sphere radius must be positive"},
		{"flat cylinder", CylinderData{Height: 0, Radius: 1}, "cylinder height and radius"},
		{"thin cylinder", CylinderData{Height: 1, Radius: -2}, "cylinder height and radius"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := buildBracket()
			g.Get(NewNodeID("box/bracket/0")).Data = tt.data
			if errs := Validate(g); !hasError(errs, tt.want) {
				t.Errorf("expected %q, got %v", tt.want, errs)
			}
		})
	}
}

func TestValidateDataKindMismatch(t *testing.T) {
	g := buildBracket()
	g.Get(NewNodeID("translate/bracket/1")).Data = BoxData{Size: Vec3{1, 1, 1}}

	if errs := Validate(g); !hasError(errs, "box data on transform node") {
		t.Errorf("expected kind mismatch error, got %v", errs)
	}
}

func TestValidateMissingData(t *testing.T) {
	g := buildBracket()
	g.Get(NewNodeID("difference/bracket")).Data = nil

	if errs := Validate(g); !hasError(errs, "boolean node has no data") {
		t.Errorf("expected missing data error, got %v", errs)
	}
}

func TestValidateTransformValues(t *testing.T) {
	g := buildBracket()
	g.Get(NewNodeID("translate/bracket/1")).Data = TransformData{Rotation: &Vec3{math.NaN(), 0, 0}}
	if errs := Validate(g); !hasError(errs, "must be finite") {
		t.Errorf("expected finite error, got %v", errs)
	}

	g.Get(NewNodeID("translate/bracket/1")).Data = TransformData{}
	errs := Validate(g)
	if !hasWarning(errs, "neither translation nor rotation") {
		t.Errorf("expected identity transform warning, got %v", errs)
	}
	if HasErrors(errs) {
		t.Errorf("identity transform should only warn, got %v", errs)
	}
}

func TestValidateCellSizes(t *testing.T) {
	g := buildBracket()
	g.Defaults.CellSize = 0
	if errs := Validate(g); !hasError(errs, "default cell size") {
		t.Errorf("expected default cell size error, got %v", errs)
	}

	g = buildBracket()
	g.Get(NewNodeID("defsolid/bracket")).Data = SolidData{CellSize: -1}
	if errs := Validate(g); !hasError(errs, "solid cell size") {
		t.Errorf("expected solid cell size error, got %v", errs)
	}
}

func TestValidationErrorString(t *testing.T) {
	graphLevel := ValidationError{Message: "bad", Severity: SeverityError}
	if got := graphLevel.Error(); got != "[error] bad" {
		t.Errorf("Error() = %q", got)
	}

	id := NewNodeID("box/a")
	nodeLevel := ValidationError{NodeID: id, Message: "odd", Severity: SeverityWarning}
	if got, want := nodeLevel.Error(), "[warning] node "+id.Short()+": odd"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

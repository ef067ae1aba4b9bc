package shape

import "math"

// Vec2 is a 2D coordinate pair.
type Vec2 struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// Div divides both components by s.
func (v Vec2) Div(s float64) Vec2 {
	return Vec2{X: v.X / s, Y: v.Y / s}
}

// FixtureKind selects which geometry fields of a Fixture are meaningful.
type FixtureKind int

const (
	FixturePolygon FixtureKind = iota
	FixtureCircle
)

func (k FixtureKind) String() string {
	switch k {
	case FixturePolygon:
		return "POLYGON"
	case FixtureCircle:
		return "CIRCLE"
	default:
		return "UNKNOWN"
	}
}

func (k FixtureKind) MarshalYAML() (interface{}, error) {
	return k.String(), nil
}

// Polygon is an outline in authored vertex order.
type Polygon []Vec2

// Fixture is one physical shape contribution to a body. Polygon fixtures may
// carry several pieces that share the material and filter values.
type Fixture struct {
	Kind     FixtureKind `yaml:"kind"`
	Polygons []Polygon   `yaml:"polygons,omitempty"`
	Center   Vec2        `yaml:"center"`
	Radius   float64     `yaml:"radius,omitempty"`

	Density     float64 `yaml:"density"`
	Friction    float64 `yaml:"friction"`
	Restitution float64 `yaml:"restitution"`
	Sensor      bool    `yaml:"sensor,omitempty"`

	Group           int    `yaml:"group"`
	CategoryMask    uint32 `yaml:"category_mask"`
	CollisionMask   uint32 `yaml:"collision_mask"`
	ContactTestMask uint32 `yaml:"contact_test_mask"`
	Tag             int    `yaml:"tag"`
}

// Body is a named rigid body template.
type Body struct {
	Name        string    `yaml:"name"`
	AnchorPoint Vec2      `yaml:"anchor_point"`
	Fixtures    []Fixture `yaml:"fixtures"`

	IsDynamic         bool `yaml:"is_dynamic"`
	AffectedByGravity bool `yaml:"affected_by_gravity"`
	AllowsRotation    bool `yaml:"allows_rotation"`

	LinearDamping        float64 `yaml:"linear_damping"`
	AngularDamping       float64 `yaml:"angular_damping"`
	VelocityLimit        float64 `yaml:"velocity_limit"`
	AngularVelocityLimit float64 `yaml:"angular_velocity_limit"`
}

// ShapeCount returns how many native shapes a back end produces for b:
// one per circle fixture and one per polygon piece.
func (b *Body) ShapeCount() int {
	if b == nil {
		return 0
	}
	n := 0
	for _, f := range b.Fixtures {
		switch f.Kind {
		case FixtureCircle:
			n++
		case FixturePolygon:
			n += len(f.Polygons)
		}
	}
	return n
}

// Clone returns a deep copy of b.
func (b *Body) Clone() *Body {
	if b == nil {
		return nil
	}
	out := *b
	if b.Fixtures != nil {
		out.Fixtures = make([]Fixture, len(b.Fixtures))
		for i, f := range b.Fixtures {
			out.Fixtures[i] = f
			if f.Polygons == nil {
				continue
			}
			polys := make([]Polygon, len(f.Polygons))
			for j, p := range f.Polygons {
				polys[j] = append(Polygon(nil), p...)
			}
			out.Fixtures[i].Polygons = polys
		}
	}
	return &out
}

// Scaled returns a deep copy of b with every vertex multiplied by (sx, sy).
// Circles have no separate axes, so their center and radius use sx only.
// The anchor point is relative to the sprite and is left as is.
func (b *Body) Scaled(sx, sy float64) *Body {
	out := b.Clone()
	if out == nil {
		return nil
	}
	for i := range out.Fixtures {
		fx := &out.Fixtures[i]
		switch fx.Kind {
		case FixtureCircle:
			fx.Center = Vec2{X: fx.Center.X * sx, Y: fx.Center.Y * sx}
			fx.Radius *= math.Abs(sx)
		case FixturePolygon:
			for _, poly := range fx.Polygons {
				for j := range poly {
					poly[j] = Vec2{X: poly[j].X * sx, Y: poly[j].Y * sy}
				}
			}
		}
	}
	return out
}

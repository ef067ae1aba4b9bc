// Package chipmunk builds Chipmunk2D bodies from shape definitions.
package chipmunk

import (
	"errors"
	"fmt"
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/shapecache/shape"
)

// DefaultDensity replaces a non-positive fixture density when computing the
// mass of a dynamic body.
const DefaultDensity = 1.0

var ErrEmptyPolygon = errors.New("chipmunk: polygon needs at least 3 vertices")

// ShapeData is stored in every shape's UserData. It carries the fixture
// values cp.ShapeFilter has no slot for.
type ShapeData struct {
	Body            string
	Tag             int
	Group           int
	ContactTestMask uint32
}

// Body is a cp body together with its shapes in fixture order. The shapes
// are attached to Body but not yet part of any space.
type Body struct {
	Body   *cp.Body
	Shapes []*cp.Shape
	Name   string
}

// AddTo inserts the body and its shapes into space.
func (b *Body) AddTo(space *cp.Space) {
	if b == nil || space == nil || b.Body == nil {
		return
	}
	space.AddBody(b.Body)
	for _, s := range b.Shapes {
		space.AddShape(s)
	}
}

// RemoveFrom takes the body and its shapes out of space.
func (b *Body) RemoveFrom(space *cp.Space) {
	if b == nil || space == nil || b.Body == nil {
		return
	}
	for _, s := range b.Shapes {
		space.RemoveShape(s)
	}
	space.RemoveBody(b.Body)
}

// Factory creates cp bodies.
type Factory struct{}

// New returns a chipmunk factory.
func New() Factory {
	return Factory{}
}

// CreateBody builds a detached cp body for def.
func (Factory) CreateBody(def *shape.Body) (*Body, error) {
	if def == nil {
		return nil, errors.New("chipmunk: nil body definition")
	}

	for i, fx := range def.Fixtures {
		if fx.Kind != shape.FixturePolygon {
			continue
		}
		for j, poly := range fx.Polygons {
			if len(poly) < 3 {
				return nil, fmt.Errorf("%w: %s fixture %d polygon %d", ErrEmptyPolygon, def.Name, i, j)
			}
		}
	}

	var body *cp.Body
	if def.IsDynamic {
		mass, moment := massProperties(def)
		if !def.AllowsRotation {
			moment = math.Inf(1)
		}
		body = cp.NewBody(mass, moment)
		if fn := velocityFunc(def); fn != nil {
			body.SetVelocityUpdateFunc(fn)
		}
	} else {
		body = cp.NewStaticBody()
	}
	body.UserData = def.Name

	out := &Body{
		Body:   body,
		Shapes: make([]*cp.Shape, 0, def.ShapeCount()),
		Name:   def.Name,
	}
	for i := range def.Fixtures {
		fx := &def.Fixtures[i]
		switch fx.Kind {
		case shape.FixtureCircle:
			s := cp.NewCircle(body, fx.Radius, toVector(fx.Center))
			out.Shapes = append(out.Shapes, applyFixture(s, fx, def))
		case shape.FixturePolygon:
			for _, poly := range fx.Polygons {
				s := cp.NewPolyShape(body, len(poly), toVectors(poly), cp.NewTransformIdentity(), 0)
				out.Shapes = append(out.Shapes, applyFixture(s, fx, def))
			}
		}
	}
	return out, nil
}

// massProperties sums mass and moment over every piece. Shapes carry no
// mass of their own so cp keeps these values when they are added.
func massProperties(def *shape.Body) (mass, moment float64) {
	for _, fx := range def.Fixtures {
		density := fx.Density
		if density <= 0 {
			density = DefaultDensity
		}
		switch fx.Kind {
		case shape.FixtureCircle:
			m := density * cp.AreaForCircle(0, fx.Radius)
			mass += m
			moment += cp.MomentForCircle(m, 0, fx.Radius, toVector(fx.Center))
		case shape.FixturePolygon:
			for _, poly := range fx.Polygons {
				verts := toVectors(poly)
				m := density * math.Abs(cp.AreaForPoly(len(verts), verts, 0))
				mass += m
				moment += math.Abs(cp.MomentForPoly(m, len(verts), verts, cp.Vector{}, 0))
			}
		}
	}
	if mass <= 0 || moment <= 0 {
		// degenerate outlines; keep the body integrable
		return 1, 1
	}
	return mass, moment
}

func applyFixture(s *cp.Shape, fx *shape.Fixture, def *shape.Body) *cp.Shape {
	s.SetFriction(fx.Friction)
	s.SetElasticity(fx.Restitution)
	s.SetSensor(fx.Sensor)
	s.SetCollisionType(cp.CollisionType(fx.Tag))
	s.SetFilter(filterFor(fx))
	s.UserData = &ShapeData{
		Body:            def.Name,
		Tag:             fx.Tag,
		Group:           fx.Group,
		ContactTestMask: fx.ContactTestMask,
	}
	return s
}

// filterFor maps Box2D style groups onto cp. A negative group means shapes
// sharing it never collide, which is what a non-zero cp group does. cp has no
// "always collide" group, so positive groups fall back to the masks.
func filterFor(fx *shape.Fixture) cp.ShapeFilter {
	f := cp.ShapeFilter{
		Categories: uint(fx.CategoryMask),
		Mask:       uint(fx.CollisionMask),
	}
	if fx.Group < 0 {
		f.Group = uint(-fx.Group)
	}
	return f
}

// velocityFunc applies gravity opt-out, per-body damping and velocity
// limits. It returns nil when the default integration is enough.
func velocityFunc(def *shape.Body) func(*cp.Body, cp.Vector, float64, float64) {
	gravity := def.AffectedByGravity
	linear, angular := def.LinearDamping, def.AngularDamping
	vmax, wmax := def.VelocityLimit, def.AngularVelocityLimit
	if gravity && linear <= 0 && angular <= 0 && vmax <= 0 && wmax <= 0 {
		return nil
	}
	return func(body *cp.Body, g cp.Vector, damping float64, dt float64) {
		if !gravity {
			g = cp.Vector{}
		}
		cp.BodyUpdateVelocity(body, g, damping, dt)

		v := body.Velocity()
		if linear > 0 {
			v = v.Mult(1.0 / (1.0 + dt*linear))
		}
		if vmax > 0 && v.Length() > vmax {
			v = v.Clamp(vmax)
		}
		body.SetVelocityVector(v)

		w := body.AngularVelocity()
		if angular > 0 {
			w /= 1.0 + dt*angular
		}
		if wmax > 0 && math.Abs(w) > wmax {
			w = math.Copysign(wmax, w)
		}
		body.SetAngularVelocity(w)
	}
}

func toVector(v shape.Vec2) cp.Vector {
	return cp.Vector{X: v.X, Y: v.Y}
}

func toVectors(poly shape.Polygon) []cp.Vector {
	out := make([]cp.Vector, len(poly))
	for i, p := range poly {
		out[i] = cp.Vector{X: p.X, Y: p.Y}
	}
	return out
}

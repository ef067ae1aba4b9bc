// Package b2 builds Box2D bodies from shape definitions.
package b2

import (
	"errors"
	"fmt"
	"math"

	"github.com/ByteArena/box2d"
	"github.com/milk9111/shapecache/shape"
)

var (
	ErrPolygonVertexCount = errors.New("box2d: polygon vertex count out of range")
	ErrDegeneratePolygon  = errors.New("box2d: degenerate polygon")
	ErrNoWorld            = errors.New("box2d: factory has no world")
	ErrGroupRange         = errors.New("box2d: collision group outside int16")
)

// FixtureData is stored as every fixture's user data.
type FixtureData struct {
	Body            string
	Tag             int
	ContactTestMask uint32
}

// Factory creates bodies inside one Box2D world.
type Factory struct {
	world *box2d.B2World
}

// New returns a factory that adds bodies to world.
func New(world *box2d.B2World) *Factory {
	return &Factory{world: world}
}

// CreateBody creates a body for def in the factory's world. Polygons must
// have between 3 and B2_maxPolygonVertices vertices and groups must fit in
// an int16; on any error nothing is added to the world. Category and
// collision masks keep their low 16 bits. Velocity limits have no Box2D counterpart and are
// ignored.
func (f *Factory) CreateBody(def *shape.Body) (*box2d.B2Body, error) {
	if f == nil || f.world == nil {
		return nil, ErrNoWorld
	}
	if def == nil {
		return nil, errors.New("box2d: nil body definition")
	}

	shapes := make([]box2d.B2ShapeInterface, 0, def.ShapeCount())
	owners := make([]int, 0, def.ShapeCount())
	for i := range def.Fixtures {
		fx := &def.Fixtures[i]
		if fx.Group < math.MinInt16 || fx.Group > math.MaxInt16 {
			return nil, fmt.Errorf("%w: %s fixture %d group %d", ErrGroupRange, def.Name, i, fx.Group)
		}
		switch fx.Kind {
		case shape.FixtureCircle:
			c := box2d.MakeB2CircleShape()
			c.M_p = box2d.MakeB2Vec2(fx.Center.X, fx.Center.Y)
			c.M_radius = fx.Radius
			shapes = append(shapes, &c)
			owners = append(owners, i)
		case shape.FixturePolygon:
			for j, poly := range fx.Polygons {
				p, err := polygonShape(poly)
				if err != nil {
					return nil, fmt.Errorf("%w: %s fixture %d polygon %d", err, def.Name, i, j)
				}
				shapes = append(shapes, p)
				owners = append(owners, i)
			}
		}
	}

	bd := box2d.MakeB2BodyDef()
	if def.IsDynamic {
		bd.Type = box2d.B2BodyType.B2_dynamicBody
	} else {
		bd.Type = box2d.B2BodyType.B2_staticBody
	}
	bd.FixedRotation = !def.AllowsRotation
	bd.LinearDamping = def.LinearDamping
	bd.AngularDamping = def.AngularDamping
	bd.GravityScale = 1
	if !def.AffectedByGravity {
		bd.GravityScale = 0
	}
	bd.UserData = def.Name

	body := f.world.CreateBody(&bd)
	for k, s := range shapes {
		fx := &def.Fixtures[owners[k]]
		fd := box2d.MakeB2FixtureDef()
		fd.Shape = s
		fd.Density = fx.Density
		fd.Friction = fx.Friction
		fd.Restitution = fx.Restitution
		fd.IsSensor = fx.Sensor
		fd.Filter.CategoryBits = uint16(fx.CategoryMask)
		fd.Filter.MaskBits = uint16(fx.CollisionMask)
		fd.Filter.GroupIndex = int16(fx.Group)
		fd.UserData = &FixtureData{
			Body:            def.Name,
			Tag:             fx.Tag,
			ContactTestMask: fx.ContactTestMask,
		}
		body.CreateFixtureFromDef(&fd)
	}
	return body, nil
}

// polygonShape builds a Box2D polygon. Box2D panics on outlines whose hull
// collapses, so that case is turned into ErrDegeneratePolygon.
func polygonShape(poly shape.Polygon) (p *box2d.B2PolygonShape, err error) {
	if len(poly) < 3 || len(poly) > box2d.B2_maxPolygonVertices {
		return nil, fmt.Errorf("%w: %d", ErrPolygonVertexCount, len(poly))
	}
	verts := make([]box2d.B2Vec2, len(poly))
	for i, v := range poly {
		verts[i] = box2d.MakeB2Vec2(v.X, v.Y)
	}

	defer func() {
		if r := recover(); r != nil {
			p, err = nil, fmt.Errorf("%w: %v", ErrDegeneratePolygon, r)
		}
	}()
	s := box2d.MakeB2PolygonShape()
	s.Set(verts, len(verts))
	return &s, nil
}

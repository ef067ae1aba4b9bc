package chipmunk

import (
	"math"
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/shapecache/shape"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func square(size float64) shape.Polygon {
	return shape.Polygon{{X: 0, Y: 0}, {X: size, Y: 0}, {X: size, Y: size}, {X: 0, Y: size}}
}

func testBody() *shape.Body {
	return &shape.Body{
		Name:              "crate",
		AnchorPoint:       shape.Vec2{X: 0.5, Y: 0.5},
		IsDynamic:         true,
		AffectedByGravity: true,
		AllowsRotation:    true,
		Fixtures: []shape.Fixture{
			{
				Kind:          shape.FixturePolygon,
				Polygons:      []shape.Polygon{square(1), square(2)},
				Density:       2,
				Friction:      0.4,
				Restitution:   0.3,
				Group:         -2,
				CategoryMask:  0x4,
				CollisionMask: 0xFF,
				Tag:           9,
			},
			{
				Kind:            shape.FixtureCircle,
				Center:          shape.Vec2{X: 1, Y: 1},
				Radius:          0.5,
				Density:         1,
				Friction:        0.1,
				Sensor:          true,
				CategoryMask:    0x1,
				CollisionMask:   0x2,
				ContactTestMask: 0x8,
				Tag:             3,
			},
		},
	}
}

func TestCreateBodyShapesInFixtureOrder(t *testing.T) {
	def := testBody()
	b, err := New().CreateBody(def)
	require.NoError(t, err)

	require.Len(t, b.Shapes, def.ShapeCount())
	require.Len(t, b.Shapes, 3)
	assert.Equal(t, "crate", b.Name)
	assert.Equal(t, cp.BODY_DYNAMIC, b.Body.GetType())
	assert.Greater(t, b.Body.Mass(), 0.0)

	for i, s := range b.Shapes[:2] {
		assert.Equal(t, 0.4, s.Friction(), "shape %d", i)
		assert.Equal(t, 0.3, s.Elasticity(), "shape %d", i)
		assert.False(t, s.Sensor())
		assert.Equal(t, uint(0x4), s.Filter.Categories)
		assert.Equal(t, uint(0xFF), s.Filter.Mask)
		assert.Equal(t, uint(2), s.Filter.Group)
		data, ok := s.UserData.(*ShapeData)
		require.True(t, ok)
		assert.Equal(t, ShapeData{Body: "crate", Tag: 9, Group: -2}, *data)
		assert.Same(t, b.Body, s.Body())
	}

	circle := b.Shapes[2]
	assert.True(t, circle.Sensor())
	assert.Equal(t, uint(0x2), circle.Filter.Mask)
	data := circle.UserData.(*ShapeData)
	assert.Equal(t, uint32(0x8), data.ContactTestMask)
	assert.Equal(t, 3, data.Tag)
}

func TestCreateBodyIsIndependent(t *testing.T) {
	def := testBody()
	f := New()
	a, err := f.CreateBody(def)
	require.NoError(t, err)
	b, err := f.CreateBody(def)
	require.NoError(t, err)

	assert.NotSame(t, a.Body, b.Body)
	for i := range a.Shapes {
		assert.NotSame(t, a.Shapes[i], b.Shapes[i])
	}
}

func TestCreateStaticBody(t *testing.T) {
	def := testBody()
	def.IsDynamic = false
	b, err := New().CreateBody(def)
	require.NoError(t, err)
	assert.Equal(t, cp.BODY_STATIC, b.Body.GetType())
	assert.Len(t, b.Shapes, 3)
}

func TestRotationLock(t *testing.T) {
	def := testBody()
	def.AllowsRotation = false
	b, err := New().CreateBody(def)
	require.NoError(t, err)

	space := cp.NewSpace()
	b.AddTo(space)
	assert.True(t, math.IsInf(b.Body.Moment(), 1))
}

func TestGravityOptOut(t *testing.T) {
	cases := []struct {
		name    string
		gravity bool
	}{
		{"affected", true},
		{"floating", false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			def := testBody()
			def.AffectedByGravity = c.gravity

			space := cp.NewSpace()
			space.SetGravity(cp.Vector{X: 0, Y: -100})
			b, err := New().CreateBody(def)
			require.NoError(t, err)
			b.AddTo(space)

			for i := 0; i < 10; i++ {
				space.Step(1.0 / 60.0)
			}
			vy := b.Body.Velocity().Y
			if c.gravity {
				assert.Less(t, vy, 0.0)
			} else {
				assert.InDelta(t, 0.0, vy, 1e-9)
			}
		})
	}
}

func TestVelocityLimit(t *testing.T) {
	def := testBody()
	def.VelocityLimit = 5

	space := cp.NewSpace()
	space.SetGravity(cp.Vector{X: 0, Y: -1000})
	b, err := New().CreateBody(def)
	require.NoError(t, err)
	b.AddTo(space)

	for i := 0; i < 30; i++ {
		space.Step(1.0 / 60.0)
	}
	assert.LessOrEqual(t, b.Body.Velocity().Length(), 5.0+1e-9)
}

func TestRemoveFrom(t *testing.T) {
	b, err := New().CreateBody(testBody())
	require.NoError(t, err)

	space := cp.NewSpace()
	b.AddTo(space)
	b.RemoveFrom(space)

	count := 0
	space.EachShape(func(*cp.Shape) { count++ })
	assert.Zero(t, count)
}

func TestDegeneratePolygonRejected(t *testing.T) {
	def := testBody()
	def.Fixtures[0].Polygons = append(def.Fixtures[0].Polygons, shape.Polygon{{X: 0, Y: 0}, {X: 1, Y: 1}})
	_, err := New().CreateBody(def)
	assert.ErrorIs(t, err, ErrEmptyPolygon)
}

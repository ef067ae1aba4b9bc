package shape

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBodyScaled(t *testing.T) {
	b := &Body{
		Name:        "bug",
		AnchorPoint: Vec2{X: 0.5, Y: 0.25},
		Fixtures: []Fixture{
			{Kind: FixturePolygon, Polygons: []Polygon{{{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 4}}}},
			{Kind: FixtureCircle, Center: Vec2{X: 1, Y: 3}, Radius: 2},
		},
	}

	cases := []struct {
		name   string
		sx, sy float64
		poly   Polygon
		center Vec2
		radius float64
	}{
		{"identity", 1, 1, Polygon{{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 4}}, Vec2{X: 1, Y: 3}, 2},
		{"non_uniform", 0.5, 2, Polygon{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 8}}, Vec2{X: 0.5, Y: 1.5}, 1},
		{"mirrored", -1, 1, Polygon{{X: 0, Y: 0}, {X: -2, Y: 0}, {X: -2, Y: 4}}, Vec2{X: -1, Y: -3}, 2},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := b.Scaled(c.sx, c.sy)
			require.NotSame(t, b, got)
			assert.Equal(t, c.poly, got.Fixtures[0].Polygons[0])
			assert.Equal(t, c.center, got.Fixtures[1].Center)
			assert.Equal(t, c.radius, got.Fixtures[1].Radius)
			assert.Equal(t, b.AnchorPoint, got.AnchorPoint)
		})
	}

	assert.Equal(t, Vec2{X: 2, Y: 4}, b.Fixtures[0].Polygons[0][2])
	assert.Equal(t, 2.0, b.Fixtures[1].Radius)
	assert.Nil(t, (*Body)(nil).Scaled(2, 2))
}

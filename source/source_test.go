package source

import (
	"os"
	"testing"
	"testing/fstest"

	"github.com/klauspost/compress/zstd"
	"github.com/milk9111/shapecache/shape"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadPlist(t *testing.T) {
	tree, err := Load(nil, "testdata/crate.plist")
	require.NoError(t, err)

	md, err := shape.ReadMetadata(tree)
	require.NoError(t, err)
	assert.Equal(t, 10.0, md.PTMRatio)

	bodies, err := shape.Parse(tree, md.PTMRatio)
	require.NoError(t, err)
	require.Contains(t, bodies, "crate")
	require.Contains(t, bodies, "ball")

	crate := bodies["crate"]
	assert.Equal(t, shape.Polygon{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}, crate.Fixtures[0].Polygons[0])
	assert.Equal(t, uint32(0xFFFFFFFF), crate.Fixtures[0].CollisionMask)

	ball := bodies["ball"].Fixtures[0]
	assert.Equal(t, shape.FixtureCircle, ball.Kind)
	assert.Equal(t, 0.5, ball.Radius)
	assert.Equal(t, shape.Vec2{X: 0.5, Y: 0.5}, ball.Center)
	assert.Equal(t, -1, ball.Group)
	assert.False(t, bodies["ball"].AffectedByGravity)
}

func TestLoadYAMLFromFS(t *testing.T) {
	tree, err := Load(os.DirFS("testdata"), "props.yaml")
	require.NoError(t, err)

	bodies, err := shape.Parse(tree, 2)
	require.NoError(t, err)
	barrel := bodies["barrel"]
	require.NotNil(t, barrel)
	assert.False(t, barrel.IsDynamic)
	assert.True(t, barrel.Fixtures[0].Sensor)
	assert.Equal(t, []shape.Polygon{
		{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 20}},
		{{X: 0, Y: 0}, {X: 10, Y: 20}, {X: 0, Y: 20}},
	}, barrel.Fixtures[0].Polygons)
}

func TestDecodeZstd(t *testing.T) {
	raw, err := os.ReadFile("testdata/props.yaml")
	require.NoError(t, err)
	enc, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	packed := enc.EncodeAll(raw, nil)
	require.NoError(t, enc.Close())

	fsys := fstest.MapFS{"shapes/props.yaml.zst": {Data: packed}}
	tree, err := Load(fsys, "shapes/props.yaml.zst")
	require.NoError(t, err)

	plain, err := Decode("props.yaml", raw)
	require.NoError(t, err)
	assert.Equal(t, plain, tree)
}

func TestDecodeErrors(t *testing.T) {
	cases := []struct {
		name string
		file string
		data string
		is   error
	}{
		{"unknown_extension", "shapes.json", "{}", ErrUnknownFormat},
		{"broken_yaml", "bad.yaml", "bodies: [", nil},
		{"broken_plist", "bad.plist", "<plist><dict><key>a</key>", nil},
		{"broken_zstd", "bad.plist.zst", "not zstd", nil},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			tree, err := Decode(c.file, []byte(c.data))
			require.Error(t, err)
			assert.Nil(t, tree)
			if c.is != nil {
				assert.ErrorIs(t, err, c.is)
			}
		})
	}
}

func TestSupported(t *testing.T) {
	assert.True(t, Supported("a/b/Shapes.PLIST"))
	assert.True(t, Supported("x.yml"))
	assert.True(t, Supported("x.plist.zst"))
	assert.False(t, Supported("x.zst"))
	assert.False(t, Supported("x.png"))
}

func TestReadMissing(t *testing.T) {
	_, err := Read(fstest.MapFS{}, "nope.plist")
	assert.Error(t, err)
	_, err = Read(nil, "nope.plist")
	assert.Error(t, err)
}

package shape

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Tree is a decoded shape document: nested maps, lists and scalars.
type Tree = map[string]any

// SupportedFormat is the only metadata.format value Parse accepts.
const SupportedFormat = 1

// Metadata is the document's metadata block.
type Metadata struct {
	Format int
	// PTMRatio is the exporter's pixels-to-meters ratio; zero when absent.
	PTMRatio float64
}

// ReadMetadata validates and returns the metadata block of tree.
func ReadMetadata(tree Tree) (Metadata, error) {
	meta, err := getMap(tree, "", "metadata")
	if err != nil {
		return Metadata{}, err
	}
	format, err := getInt(meta, "metadata", "format")
	if err != nil {
		return Metadata{}, err
	}
	if format != SupportedFormat {
		return Metadata{}, &ParseError{Kind: UnsupportedFormat, Key: "metadata.format", Value: format}
	}
	md := Metadata{Format: int(format)}
	if _, ok := meta["ptm_ratio"]; ok {
		if md.PTMRatio, err = getFloat(meta, "metadata", "ptm_ratio"); err != nil {
			return Metadata{}, err
		}
	}
	return md, nil
}

// Parse decodes every body in tree. Coordinates and radii are divided by
// scale. Any error discards the whole result.
func Parse(tree Tree, scale float64) (map[string]*Body, error) {
	if scale <= 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		return nil, &ParseError{Kind: InvalidScale, Value: scale}
	}
	if _, err := ReadMetadata(tree); err != nil {
		return nil, err
	}
	bodies, err := getMap(tree, "", "bodies")
	if err != nil {
		return nil, err
	}

	// sorted so the first reported error does not depend on map order
	names := make([]string, 0, len(bodies))
	for name := range bodies {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make(map[string]*Body, len(bodies))
	for _, name := range names {
		path := join("bodies", name)
		data, ok := bodies[name].(map[string]any)
		if !ok {
			return nil, &ParseError{Kind: InvalidField, Key: path}
		}
		body, err := parseBody(data, path, scale)
		if err != nil {
			return nil, err
		}
		body.Name = name
		out[name] = body
	}
	return out, nil
}

func parseBody(data map[string]any, path string, scale float64) (*Body, error) {
	var (
		b   Body
		err error
	)
	if b.AnchorPoint, err = getPoint(data, path, "anchorpoint"); err != nil {
		return nil, err
	}
	bools := []struct {
		key string
		dst *bool
	}{
		{"is_dynamic", &b.IsDynamic},
		{"affected_by_gravity", &b.AffectedByGravity},
		{"allows_rotation", &b.AllowsRotation},
	}
	for _, f := range bools {
		if *f.dst, err = getBool(data, path, f.key); err != nil {
			return nil, err
		}
	}
	floats := []struct {
		key string
		dst *float64
	}{
		{"linear_damping", &b.LinearDamping},
		{"angular_damping", &b.AngularDamping},
		{"velocity_limit", &b.VelocityLimit},
		{"angular_velocity_limit", &b.AngularVelocityLimit},
	}
	for _, f := range floats {
		if *f.dst, err = getFloat(data, path, f.key); err != nil {
			return nil, err
		}
	}

	fixtures, err := getList(data, path, "fixtures")
	if err != nil {
		return nil, err
	}
	b.Fixtures = make([]Fixture, 0, len(fixtures))
	for i, item := range fixtures {
		fpath := fmt.Sprintf("%s.fixtures[%d]", path, i)
		fd, ok := item.(map[string]any)
		if !ok {
			return nil, &ParseError{Kind: InvalidField, Key: fpath}
		}
		fx, err := parseFixture(fd, fpath, scale)
		if err != nil {
			return nil, err
		}
		b.Fixtures = append(b.Fixtures, fx)
	}
	return &b, nil
}

func parseFixture(data map[string]any, path string, scale float64) (Fixture, error) {
	var (
		f   Fixture
		err error
	)
	if f.Density, err = getFloat(data, path, "density"); err != nil {
		return f, err
	}
	if f.Restitution, err = getFloat(data, path, "restitution"); err != nil {
		return f, err
	}
	if f.Friction, err = getFloat(data, path, "friction"); err != nil {
		return f, err
	}
	tag, err := getInt(data, path, "tag")
	if err != nil {
		return f, err
	}
	group, err := getInt(data, path, "group")
	if err != nil {
		return f, err
	}
	if group < math.MinInt32 || group > math.MaxInt32 {
		return f, &ParseError{Kind: InvalidField, Key: join(path, "group"), Value: group}
	}
	f.Tag, f.Group = int(tag), int(group)

	masks := []struct {
		key string
		dst *uint32
	}{
		{"category_mask", &f.CategoryMask},
		{"collision_mask", &f.CollisionMask},
		{"contact_test_mask", &f.ContactTestMask},
	}
	for _, m := range masks {
		v, err := getInt(data, path, m.key)
		if err != nil {
			return f, err
		}
		if v < 0 || v > math.MaxUint32 {
			return f, &ParseError{Kind: InvalidField, Key: join(path, m.key), Value: v}
		}
		*m.dst = uint32(v)
	}

	if _, ok := data["is_sensor"]; ok {
		if f.Sensor, err = getBool(data, path, "is_sensor"); err != nil {
			return f, err
		}
	}

	kind, err := getString(data, path, "fixture_type")
	if err != nil {
		return f, err
	}
	switch kind {
	case "POLYGON":
		f.Kind = FixturePolygon
		f.Polygons, err = parsePolygons(data, path, scale)
	case "CIRCLE":
		f.Kind = FixtureCircle
		err = parseCircle(&f, data, path, scale)
	default:
		return f, &ParseError{Kind: UnknownFixtureType, Key: join(path, "fixture_type"), Value: kind}
	}
	return f, err
}

func parsePolygons(data map[string]any, path string, scale float64) ([]Polygon, error) {
	lists, err := getList(data, path, "polygons")
	if err != nil {
		return nil, err
	}
	polys := make([]Polygon, 0, len(lists))
	for i, item := range lists {
		ppath := fmt.Sprintf("%s.polygons[%d]", path, i)
		points, ok := asList(item)
		if !ok {
			return nil, &ParseError{Kind: InvalidField, Key: ppath}
		}
		poly := make(Polygon, 0, len(points))
		for j, p := range points {
			v, ok := asPoint(p)
			if !ok {
				return nil, &ParseError{Kind: InvalidField, Key: fmt.Sprintf("%s[%d]", ppath, j), Value: p}
			}
			poly = append(poly, v.Div(scale))
		}
		polys = append(polys, poly)
	}
	return polys, nil
}

func parseCircle(f *Fixture, data map[string]any, path string, scale float64) error {
	circle, err := getMap(data, path, "circle")
	if err != nil {
		return err
	}
	cpath := join(path, "circle")
	radius, err := getFloat(circle, cpath, "radius")
	if err != nil {
		return err
	}
	center, err := getPoint(circle, cpath, "position")
	if err != nil {
		return err
	}
	f.Radius = radius / scale
	f.Center = center.Div(scale)
	return nil
}

func join(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func lookup(m map[string]any, path, key string) (any, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return nil, &ParseError{Kind: MissingField, Key: join(path, key)}
	}
	return v, nil
}

func getMap(m map[string]any, path, key string) (map[string]any, error) {
	v, err := lookup(m, path, key)
	if err != nil {
		return nil, err
	}
	out, ok := v.(map[string]any)
	if !ok {
		return nil, &ParseError{Kind: InvalidField, Key: join(path, key)}
	}
	return out, nil
}

func getList(m map[string]any, path, key string) ([]any, error) {
	v, err := lookup(m, path, key)
	if err != nil {
		return nil, err
	}
	out, ok := asList(v)
	if !ok {
		return nil, &ParseError{Kind: InvalidField, Key: join(path, key)}
	}
	return out, nil
}

func getString(m map[string]any, path, key string) (string, error) {
	v, err := lookup(m, path, key)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", &ParseError{Kind: InvalidField, Key: join(path, key), Value: v}
	}
	return s, nil
}

func getFloat(m map[string]any, path, key string) (float64, error) {
	v, err := lookup(m, path, key)
	if err != nil {
		return 0, err
	}
	f, ok := asFloat(v)
	if !ok {
		return 0, &ParseError{Kind: InvalidField, Key: join(path, key), Value: v}
	}
	return f, nil
}

func getInt(m map[string]any, path, key string) (int64, error) {
	v, err := lookup(m, path, key)
	if err != nil {
		return 0, err
	}
	n, ok := asInt(v)
	if !ok {
		return 0, &ParseError{Kind: InvalidField, Key: join(path, key), Value: v}
	}
	return n, nil
}

func getBool(m map[string]any, path, key string) (bool, error) {
	v, err := lookup(m, path, key)
	if err != nil {
		return false, err
	}
	b, ok := asBool(v)
	if !ok {
		return false, &ParseError{Kind: InvalidField, Key: join(path, key), Value: v}
	}
	return b, nil
}

func getPoint(m map[string]any, path, key string) (Vec2, error) {
	v, err := lookup(m, path, key)
	if err != nil {
		return Vec2{}, err
	}
	p, ok := asPoint(v)
	if !ok {
		return Vec2{}, &ParseError{Kind: InvalidField, Key: join(path, key), Value: v}
	}
	return p, nil
}

func asList(v any) ([]any, bool) {
	switch l := v.(type) {
	case []any:
		return l, true
	case []string:
		out := make([]any, len(l))
		for i, s := range l {
			out[i] = s
		}
		return out, true
	}
	return nil, false
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	if i, ok := asInt(v); ok {
		return float64(i), true
	}
	return 0, false
}

func asInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return int64(n), true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return int64(n), true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int64(n), true
	case float32:
		return asInt(float64(n))
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(n), 0, 64)
		return i, err == nil
	}
	return 0, false
}

func asBool(v any) (bool, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case string:
		r, err := strconv.ParseBool(strings.TrimSpace(b))
		return r, err == nil
	}
	if i, ok := asInt(v); ok {
		return i != 0, true
	}
	return false, false
}

// asPoint reads an "x,y" string. Surrounding braces and blanks are allowed.
func asPoint(v any) (Vec2, bool) {
	s, ok := v.(string)
	if !ok {
		return Vec2{}, false
	}
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "{")
	s = strings.TrimSuffix(s, "}")
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return Vec2{}, false
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	if err != nil {
		return Vec2{}, false
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err != nil {
		return Vec2{}, false
	}
	return Vec2{X: x, Y: y}, true
}

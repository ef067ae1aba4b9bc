package store

import (
	"fmt"
	"math"

	"github.com/milk9111/shapecache/shape"
	"go.uber.org/zap"
)

// Factory turns a body definition into a native body of one physics
// engine. Implementations must not retain def.
type Factory[B any] interface {
	CreateBody(def *shape.Body) (B, error)
}

// FactoryFunc adapts a function to Factory.
type FactoryFunc[B any] func(def *shape.Body) (B, error)

func (f FactoryFunc[B]) CreateBody(def *shape.Body) (B, error) {
	return f(def)
}

// Node is anything a native body can be attached to, typically a sprite.
type Node[B any] interface {
	SetPhysicsBody(body B)
	SetAnchorPoint(p shape.Vec2)
}

// CreateBody resolves name and builds a fresh native body for it. Each call
// returns an independent body. An unknown name yields ErrNotFound.
func CreateBody[B any](s *Store, name string, f Factory[B]) (B, error) {
	var zero B
	def, err := s.Lookup(name)
	if err != nil {
		return zero, err
	}
	body, err := f.CreateBody(def)
	if err != nil {
		return zero, fmt.Errorf("store: create %q: %w", name, err)
	}
	return body, nil
}

// CreateBodyScaled is CreateBody for an instance scaled by (sx, sy), leaving
// the stored definition untouched. See shape.Body.Scaled.
func CreateBodyScaled[B any](s *Store, name string, sx, sy float64, f Factory[B]) (B, error) {
	var zero B
	if !validScale(sx) || !validScale(sy) {
		return zero, fmt.Errorf("store: create %q scaled by (%v, %v): %w", name, sx, sy, shape.ErrInvalidScale)
	}
	def, err := s.Lookup(name)
	if err != nil {
		return zero, err
	}
	body, err := f.CreateBody(def.Scaled(sx, sy))
	if err != nil {
		return zero, fmt.Errorf("store: create %q: %w", name, err)
	}
	return body, nil
}

func validScale(v float64) bool {
	return v != 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}

// AttachBody creates the body for name, hands it to node and aligns the
// node's anchor with the definition. It reports false, leaving node
// untouched, when no body could be created.
func AttachBody[B any](s *Store, name string, f Factory[B], node Node[B]) bool {
	def, err := s.Lookup(name)
	if err != nil {
		return false
	}
	body, err := f.CreateBody(def)
	if err != nil {
		s.log.Warn("physics body rejected by back end", zap.String("name", name), zap.Error(err))
		return false
	}
	node.SetPhysicsBody(body)
	node.SetAnchorPoint(def.AnchorPoint)
	return true
}

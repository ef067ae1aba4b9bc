package main

import (
	"bytes"
	"image"
	_ "image/png"
	"os"
	"path/filepath"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/shapecache/backend/chipmunk"
	"github.com/milk9111/shapecache/shape"
	"go.uber.org/zap"
)

// sprite is a scene node that receives its physics body from the store.
type sprite struct {
	name   string
	image  *ebiten.Image
	body   *chipmunk.Body
	anchor shape.Vec2
}

func (s *sprite) SetPhysicsBody(b *chipmunk.Body) { s.body = b }
func (s *sprite) SetAnchorPoint(p shape.Vec2)     { s.anchor = p }

// draw places the sprite so its anchor point sits on the body position.
func (s *sprite) draw(screen *ebiten.Image, cam camera) {
	if s.image == nil || s.body == nil {
		return
	}
	b := s.image.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())
	x, y := cam.toScreen(s.body.Body.Position())

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(-s.anchor.X*w, -(1-s.anchor.Y)*h)
	op.GeoM.Rotate(-s.body.Body.Angle())
	op.GeoM.Translate(x, y)
	op.Filter = ebiten.FilterNearest
	screen.DrawImage(s.image, op)
}

// loadSprite reads <dir>/<name>.png. Missing art is not an error; the body
// is still drawn as outlines.
func loadSprite(dir, name string, log *zap.Logger) *ebiten.Image {
	if dir == "" {
		return nil
	}
	path := filepath.Join(dir, name+".png")
	b, err := os.ReadFile(path)
	if err != nil {
		log.Debug("no sprite", zap.String("path", path))
		return nil
	}
	img, _, err := image.Decode(bytes.NewReader(b))
	if err != nil {
		log.Warn("sprite decode failed", zap.String("path", path), zap.Error(err))
		return nil
	}
	return ebiten.NewImageFromImage(img)
}

package main

import (
	"fmt"
	"image/color"
	"sync/atomic"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	ebtext "github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/shapecache/backend/chipmunk"
	"github.com/milk9111/shapecache/config"
	"github.com/milk9111/shapecache/loader"
	"github.com/milk9111/shapecache/store"
	"go.uber.org/zap"
	"golang.design/x/clipboard"
	"golang.org/x/image/font/basicfont"
	"gopkg.in/yaml.v3"
)

const stepDt = 1.0 / 60.0

type viewer struct {
	cfg     config.Config
	store   *store.Store
	factory chipmunk.Factory
	cam     camera
	log     *zap.Logger

	space    *cp.Space
	sprites  []*sprite
	selected int
	status   string

	face      ebtext.Face
	clipboard bool
	dirty     atomic.Bool
}

func newViewer(cfg config.Config, s *store.Store, log *zap.Logger, clipboardOK bool) *viewer {
	v := &viewer{
		cfg:       cfg,
		store:     s,
		factory:   chipmunk.New(),
		cam:       camera{ppu: cfg.PixelsPerUnit, height: float64(cfg.Window.Height)},
		log:       log,
		face:      ebtext.NewGoXFace(basicfont.Face7x13),
		clipboard: clipboardOK,
	}
	v.spawn()
	return v
}

// spawn rebuilds the space from the store's current contents.
func (v *viewer) spawn() {
	space := cp.NewSpace()
	space.SetGravity(cp.Vector{X: v.cfg.Gravity.X, Y: v.cfg.Gravity.Y})

	width := float64(v.cfg.Window.Width) / v.cam.ppu
	height := float64(v.cfg.Window.Height) / v.cam.ppu
	ground := space.AddShape(cp.NewSegment(space.StaticBody, cp.Vector{X: 0, Y: 0}, cp.Vector{X: width, Y: 0}, 0))
	ground.SetFriction(1)

	names := v.store.Names()
	sprites := make([]*sprite, 0, len(names))
	for i, name := range names {
		sp := &sprite{name: name, image: loadSprite(v.cfg.Sprites, name, v.log)}
		// Nodes are keyed by their texture name; the store strips the extension.
		if !store.AttachBody[*chipmunk.Body](v.store, name+".png", v.factory, sp) {
			continue
		}
		x := width * float64(i+1) / float64(len(names)+1)
		sp.body.Body.SetPosition(cp.Vector{X: x, Y: height * 0.75})
		sp.body.AddTo(space)
		sprites = append(sprites, sp)
	}

	v.space = space
	v.sprites = sprites
	if v.selected >= len(sprites) {
		v.selected = 0
	}
	v.log.Info("spawned bodies", zap.Int("count", len(sprites)))
}

func (v *viewer) selectedName() string {
	if len(v.sprites) == 0 {
		return ""
	}
	return v.sprites[v.selected].name
}

func (v *viewer) copySelected() {
	name := v.selectedName()
	if name == "" {
		return
	}
	if !v.clipboard {
		v.status = "clipboard unavailable"
		return
	}
	def, err := v.store.Lookup(name)
	if err != nil {
		v.status = err.Error()
		return
	}
	data, err := yaml.Marshal(def)
	if err != nil {
		v.status = err.Error()
		return
	}
	clipboard.Write(clipboard.FmtText, data)
	v.status = fmt.Sprintf("copied %s", name)
}

func (v *viewer) Update() error {
	if v.dirty.Swap(false) {
		v.spawn()
		v.status = "reloaded"
	}

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		v.spawn()
		v.status = "respawned"
	case inpututil.IsKeyJustPressed(ebiten.KeyTab):
		if len(v.sprites) > 0 {
			v.selected = (v.selected + 1) % len(v.sprites)
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyC):
		v.copySelected()
	}

	v.space.Step(stepDt)
	return nil
}

func (v *viewer) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{0x18, 0x18, 0x20, 0xff})
	for _, sp := range v.sprites {
		sp.draw(screen, v.cam)
	}
	cp.DrawSpace(v.space, &shapeDrawer{screen: screen, cam: v.cam, selected: v.selectedName()})

	for i, sp := range v.sprites {
		x, y := v.cam.toScreen(sp.body.Body.Position())
		op := &ebtext.DrawOptions{}
		op.GeoM.Translate(x+6, y-18)
		if i == v.selected {
			op.ColorScale.ScaleWithColor(color.RGBA{0xff, 0xe0, 0x40, 0xff})
		}
		ebtext.Draw(screen, sp.name, v.face, op)
	}

	hud := fmt.Sprintf("%d bodies  [Tab] select  [R] respawn  [C] copy YAML", len(v.sprites))
	if v.status != "" {
		hud += "  " + v.status
	}
	op := &ebtext.DrawOptions{}
	op.GeoM.Translate(8, 8)
	ebtext.Draw(screen, hud, v.face, op)
}

func (v *viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	return v.cfg.Window.Width, v.cfg.Window.Height
}

// reloadNotifier marks the viewer for respawn whenever the loader applies a
// change.
type reloadNotifier struct {
	loader *loader.Loader
	dirty  *atomic.Bool
}

func (r reloadNotifier) Reload(path string) (bool, error) {
	changed, err := r.loader.Reload(path)
	if changed {
		r.dirty.Store(true)
	}
	return changed, err
}

func (r reloadNotifier) Unload(path string) error {
	if err := r.loader.Unload(path); err != nil {
		return err
	}
	r.dirty.Store(true)
	return nil
}

package main

import (
	"fmt"
	"io"

	"github.com/ByteArena/box2d"
	"github.com/milk9111/shapecache/backend/b2"
	"github.com/milk9111/shapecache/backend/chipmunk"
	"github.com/milk9111/shapecache/config"
	"github.com/milk9111/shapecache/shape"
	"github.com/milk9111/shapecache/store"
	"gopkg.in/yaml.v3"
)

type entry struct {
	File   string      `yaml:"file"`
	Shapes int         `yaml:"shapes"`
	Error  string      `yaml:"error,omitempty"`
	Body   *shape.Body `yaml:"body"`
}

// shapeCounter builds one body and reports how many native shapes it got.
type shapeCounter func(s *store.Store, name string) (int, error)

func counterFor(cfg config.Config) shapeCounter {
	switch cfg.Backend {
	case config.BackendBox2D:
		world := box2d.MakeB2World(box2d.MakeB2Vec2(cfg.Gravity.X, cfg.Gravity.Y))
		f := b2.New(&world)
		return func(s *store.Store, name string) (int, error) {
			body, err := store.CreateBody[*box2d.B2Body](s, name, f)
			if err != nil {
				return 0, err
			}
			defer world.DestroyBody(body)
			n := 0
			for fx := body.GetFixtureList(); fx != nil; fx = fx.GetNext() {
				n++
			}
			return n, nil
		}
	default:
		f := chipmunk.New()
		return func(s *store.Store, name string) (int, error) {
			body, err := store.CreateBody[*chipmunk.Body](s, name, f)
			if err != nil {
				return 0, err
			}
			return len(body.Shapes), nil
		}
	}
}

func dump(w io.Writer, s *store.Store, cfg config.Config) error {
	count := counterFor(cfg)
	var entries []entry
	for _, name := range s.Names() {
		def, err := s.Lookup(name)
		if err != nil {
			return err
		}
		file, _ := s.FileOf(name)
		e := entry{File: file, Body: def}
		if n, err := count(s, name); err != nil {
			e.Error = err.Error()
		} else {
			e.Shapes = n
		}
		entries = append(entries, e)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(entries); err != nil {
		return fmt.Errorf("shapedump: encode: %w", err)
	}
	return enc.Close()
}

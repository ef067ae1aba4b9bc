// Package loader connects shape files on disk to a store.
package loader

import (
	"context"
	"fmt"
	"io/fs"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/milk9111/shapecache/shape"
	"github.com/milk9111/shapecache/source"
	"github.com/milk9111/shapecache/store"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Loader reads shape files and registers them with a store. A scale of 0
// means "use the file's metadata.ptm_ratio, or 1 when it has none".
type Loader struct {
	store *store.Store
	fsys  fs.FS
	scale float64
	log   *zap.Logger

	mu      sync.Mutex
	digests map[string]uint64
}

// Option configures a Loader.
type Option func(*Loader)

// WithFS sets the fallback file system consulted when a file is not on disk.
func WithFS(fsys fs.FS) Option {
	return func(l *Loader) { l.fsys = fsys }
}

// WithScale sets the default scale factor.
func WithScale(scale float64) Option {
	return func(l *Loader) { l.scale = scale }
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(l *Loader) {
		if log != nil {
			l.log = log
		}
	}
}

// New creates a loader feeding s.
func New(s *store.Store, opts ...Option) *Loader {
	l := &Loader{
		store:   s,
		log:     zap.NewNop(),
		digests: make(map[string]uint64),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Store returns the store the loader feeds.
func (l *Loader) Store() *store.Store {
	return l.store
}

type decoded struct {
	tree   shape.Tree
	scale  float64
	digest uint64
}

func (l *Loader) decode(path string) (decoded, error) {
	data, err := source.Read(l.fsys, path)
	if err != nil {
		return decoded{}, err
	}
	tree, err := source.Decode(path, data)
	if err != nil {
		return decoded{}, err
	}
	scale, err := l.scaleFor(tree)
	if err != nil {
		return decoded{}, fmt.Errorf("loader: %s: %w", path, err)
	}
	return decoded{tree: tree, scale: scale, digest: xxhash.Sum64(data)}, nil
}

func (l *Loader) scaleFor(tree shape.Tree) (float64, error) {
	if l.scale != 0 {
		return l.scale, nil
	}
	md, err := shape.ReadMetadata(tree)
	if err != nil {
		return 0, err
	}
	if md.PTMRatio > 0 {
		return md.PTMRatio, nil
	}
	return 1, nil
}

// LoadFile reads, decodes and registers path.
func (l *Loader) LoadFile(path string) error {
	d, err := l.decode(path)
	if err != nil {
		return err
	}
	return l.insert(path, d)
}

func (l *Loader) insert(path string, d decoded) error {
	if err := l.store.LoadFile(path, d.tree, d.scale); err != nil {
		return err
	}
	l.mu.Lock()
	l.digests[path] = d.digest
	l.mu.Unlock()
	l.log.Info("shape file loaded", zap.String("file", path), zap.Float64("scale", d.scale))
	return nil
}

// LoadFiles decodes paths concurrently and then registers them in argument
// order. Registration stops at the first failure; files registered before it
// stay loaded.
func (l *Loader) LoadFiles(ctx context.Context, paths ...string) error {
	results := make([]decoded, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	for i, p := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			d, err := l.decode(p)
			if err != nil {
				return err
			}
			results[i] = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for i, p := range paths {
		if err := l.insert(p, results[i]); err != nil {
			return err
		}
	}
	return nil
}

// Reload re-reads path and swaps its bodies in the store. It reports false
// without touching the store when the content has not changed since the
// last load.
func (l *Loader) Reload(path string) (bool, error) {
	d, err := l.decode(path)
	if err != nil {
		return false, err
	}

	l.mu.Lock()
	prev, seen := l.digests[path]
	l.mu.Unlock()
	// The store may have been changed behind the loader's back.
	if _, err := l.store.NamesIn(path); err == nil && seen && prev == d.digest {
		return false, nil
	}

	if err := l.store.ReplaceFile(path, d.tree, d.scale); err != nil {
		return false, err
	}
	l.mu.Lock()
	l.digests[path] = d.digest
	l.mu.Unlock()
	l.log.Info("shape file reloaded", zap.String("file", path))
	return true, nil
}

// Unload removes path's bodies from the store.
func (l *Loader) Unload(path string) error {
	if err := l.store.UnloadFile(path); err != nil {
		return err
	}
	l.mu.Lock()
	delete(l.digests, path)
	l.mu.Unlock()
	l.log.Info("shape file unloaded", zap.String("file", path))
	return nil
}

package store

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/milk9111/shapecache/shape"
	"go.uber.org/zap"
)

var (
	ErrDuplicateFile = errors.New("file already loaded")
	ErrNotLoaded     = errors.New("file not loaded")
	ErrNotFound      = errors.New("body not found")
	ErrBodyExists    = errors.New("body name already loaded from another file")
)

// Store caches body definitions by name and remembers which file
// contributed each one so a file can be evicted as a unit.
type Store struct {
	mu     sync.Mutex
	bodies map[string]*shape.Body
	files  map[string]map[string]struct{}
	owner  map[string]string
	log    *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for load and lookup diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		bodies: make(map[string]*shape.Body),
		files:  make(map[string]map[string]struct{}),
		owner:  make(map[string]string),
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoadFile parses tree and registers its bodies under path. Either every
// body is inserted or the store is left unchanged.
func (s *Store) LoadFile(path string, tree shape.Tree, scale float64) error {
	bodies, err := shape.Parse(tree, scale)
	if err != nil {
		return fmt.Errorf("store: load %s: %w", path, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.files[path]; ok {
		return fmt.Errorf("store: load %s: %w", path, ErrDuplicateFile)
	}
	if err := s.checkOwners(path, bodies); err != nil {
		return err
	}
	s.insert(path, bodies)
	s.log.Debug("loaded shape file", zap.String("file", path), zap.Int("bodies", len(bodies)))
	return nil
}

// ReplaceFile swaps the bodies contributed by path for the ones in tree.
// path does not need to be loaded already. On error the store is unchanged.
func (s *Store) ReplaceFile(path string, tree shape.Tree, scale float64) error {
	bodies, err := shape.Parse(tree, scale)
	if err != nil {
		return fmt.Errorf("store: replace %s: %w", path, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkOwners(path, bodies); err != nil {
		return err
	}
	s.evict(path)
	s.insert(path, bodies)
	s.log.Debug("replaced shape file", zap.String("file", path), zap.Int("bodies", len(bodies)))
	return nil
}

// UnloadFile removes every body path contributed.
func (s *Store) UnloadFile(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.files[path]; !ok {
		return fmt.Errorf("store: unload %s: %w", path, ErrNotLoaded)
	}
	n := s.evict(path)
	s.log.Debug("unloaded shape file", zap.String("file", path), zap.Int("bodies", n))
	return nil
}

// ResetAll drops every body and file record.
func (s *Store) ResetAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.bodies = make(map[string]*shape.Body)
	s.files = make(map[string]map[string]struct{})
	s.owner = make(map[string]string)
	s.log.Debug("reset shape store")
}

// Lookup resolves name to a copy of its definition. When name itself is not
// registered, the part before its last '.' is tried, so "crate.png" finds
// "crate".
func (s *Store) Lookup(name string) (*shape.Body, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.resolve(name)
	if !ok {
		s.log.Warn("physics body not found", zap.String("name", name))
		return nil, fmt.Errorf("store: lookup %q: %w", name, ErrNotFound)
	}
	return b.Clone(), nil
}

// Contains reports whether Lookup would succeed for name.
func (s *Store) Contains(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.resolve(name)
	return ok
}

// FileOf returns the file that contributed the body name resolves to.
func (s *Store) FileOf(name string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.resolve(name)
	if !ok {
		return "", false
	}
	return s.owner[b.Name], true
}

// Files lists loaded files in sorted order.
func (s *Store) Files() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, 0, len(s.files))
	for f := range s.files {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Names lists every registered body name in sorted order.
func (s *Store) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, 0, len(s.bodies))
	for n := range s.bodies {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// NamesIn lists the bodies contributed by path in sorted order.
func (s *Store) NamesIn(path string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	names, ok := s.files[path]
	if !ok {
		return nil, fmt.Errorf("store: names %s: %w", path, ErrNotLoaded)
	}
	out := make([]string, 0, len(names))
	for n := range names {
		out = append(out, n)
	}
	sort.Strings(out)
	return out, nil
}

func (s *Store) resolve(name string) (*shape.Body, bool) {
	if b, ok := s.bodies[name]; ok {
		return b, true
	}
	if i := strings.LastIndex(name, "."); i >= 0 {
		if b, ok := s.bodies[name[:i]]; ok {
			return b, true
		}
	}
	return nil, false
}

// checkOwners rejects bodies whose names another file already owns.
func (s *Store) checkOwners(path string, bodies map[string]*shape.Body) error {
	for name := range bodies {
		if owner, ok := s.owner[name]; ok && owner != path {
			return fmt.Errorf("store: %s: body %q owned by %s: %w", path, name, owner, ErrBodyExists)
		}
	}
	return nil
}

func (s *Store) insert(path string, bodies map[string]*shape.Body) {
	names := make(map[string]struct{}, len(bodies))
	for name, b := range bodies {
		s.bodies[name] = b
		s.owner[name] = path
		names[name] = struct{}{}
	}
	s.files[path] = names
}

func (s *Store) evict(path string) int {
	names := s.files[path]
	for name := range names {
		delete(s.bodies, name)
		delete(s.owner, name)
	}
	delete(s.files, path)
	return len(names)
}

// Package source reads shape documents from disk or an fs.FS and decodes
// them into shape.Tree values.
package source

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/milk9111/shapecache/shape"
	"gopkg.in/yaml.v3"
	"howett.net/plist"
)

var ErrUnknownFormat = errors.New("source: unknown shape file format")

// Supported reports whether Decode understands name's extension.
func Supported(name string) bool {
	_, ok := formatOf(name)
	return ok
}

// Read returns the bytes of name, preferring the on-disk copy and falling
// back to fsys when it is not nil.
func Read(fsys fs.FS, name string) ([]byte, error) {
	data, err := os.ReadFile(name)
	if err == nil {
		return data, nil
	}
	if fsys == nil {
		return nil, fmt.Errorf("source: read %s: %w", name, err)
	}
	data, ferr := fs.ReadFile(fsys, filepath.ToSlash(name))
	if ferr != nil {
		return nil, fmt.Errorf("source: read %s: %w", name, ferr)
	}
	return data, nil
}

// Load reads and decodes name.
func Load(fsys fs.FS, name string) (shape.Tree, error) {
	data, err := Read(fsys, name)
	if err != nil {
		return nil, err
	}
	return Decode(name, data)
}

// Decode parses data according to name's extension: .plist for property
// lists, .yaml/.yml for YAML. A trailing .zst means the payload is zstd
// compressed.
func Decode(name string, data []byte) (shape.Tree, error) {
	format, ok := formatOf(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, name)
	}
	if format.compressed {
		raw, err := decompress(data)
		if err != nil {
			return nil, fmt.Errorf("source: decompress %s: %w", name, err)
		}
		data = raw
	}

	tree := shape.Tree{}
	switch format.kind {
	case "plist":
		if _, err := plist.Unmarshal(data, &tree); err != nil {
			return nil, fmt.Errorf("source: decode %s: %w", name, err)
		}
	case "yaml":
		if err := yaml.Unmarshal(data, &tree); err != nil {
			return nil, fmt.Errorf("source: decode %s: %w", name, err)
		}
	}
	return tree, nil
}

type fileFormat struct {
	kind       string
	compressed bool
}

func formatOf(name string) (fileFormat, bool) {
	base := strings.ToLower(path.Base(filepath.ToSlash(name)))
	var f fileFormat
	if trimmed, ok := strings.CutSuffix(base, ".zst"); ok {
		f.compressed = true
		base = trimmed
	}
	switch path.Ext(base) {
	case ".plist":
		f.kind = "plist"
	case ".yaml", ".yml":
		f.kind = "yaml"
	default:
		return f, false
	}
	return f, true
}

func decompress(data []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return dec.DecodeAll(data, nil)
}

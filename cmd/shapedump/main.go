// Command shapedump loads shape files and prints the resolved bodies as
// YAML together with the number of native shapes a back end builds for
// each of them.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/milk9111/shapecache/config"
	"github.com/milk9111/shapecache/loader"
	"github.com/milk9111/shapecache/logging"
	"github.com/milk9111/shapecache/samples"
	"github.com/milk9111/shapecache/store"
	"go.uber.org/zap"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("shapedump", flag.ContinueOnError)
	configPath := fs.String("config", "", "session config (YAML)")
	scale := fs.Float64("scale", -1, "coordinate divisor; 0 uses each file's ptm_ratio")
	backend := fs.String("backend", "", "chipmunk or box2d")
	logLevel := fs.String("log", "", "log level")
	demo := fs.Bool("demo", false, "dump the embedded sample files")
	if err := fs.Parse(args); err != nil {
		return err
	}

	files := fs.Args()
	var opts []loader.Option
	if *demo {
		files = append(files, samples.Files()...)
		opts = append(opts, loader.WithFS(samples.FS))
		if *scale < 0 {
			*scale = 0
		}
	}

	cfg, err := sessionConfig(*configPath, files, *scale, *backend, *logLevel)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	s := store.New(store.WithLogger(logger.Named("store")))
	opts = append(opts, loader.WithScale(cfg.Scale), loader.WithLogger(logger.Named("loader")))
	l := loader.New(s, opts...)
	if err := l.LoadFiles(ctx, cfg.Files...); err != nil {
		return err
	}
	logger.Debug("dumping bodies", zap.Int("count", len(s.Names())), zap.String("backend", cfg.Backend))
	return dump(out, s, cfg)
}

// sessionConfig merges the optional config file with command line values.
// Flags win over the file; positional files are appended to the file's list.
func sessionConfig(path string, files []string, scale float64, backend, logLevel string) (config.Config, error) {
	cfg := config.Default()
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}
	cfg.Files = append(cfg.Files, files...)
	if scale >= 0 {
		cfg.Scale = scale
	}
	if backend != "" {
		cfg.Backend = backend
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("shapedump: %w", err)
	}
	return cfg, nil
}

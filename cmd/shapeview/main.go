// Command shapeview drops every body from a set of shape files into a
// chipmunk space and draws the result.
package main

import (
	"context"
	"flag"
	"log"
	"path/filepath"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/shapecache/config"
	"github.com/milk9111/shapecache/loader"
	"github.com/milk9111/shapecache/logging"
	"github.com/milk9111/shapecache/samples"
	"github.com/milk9111/shapecache/store"
	"github.com/milk9111/shapecache/watch"
	"go.uber.org/zap"
	"golang.design/x/clipboard"
)

func main() {
	configPath := flag.String("config", "shapeview.yaml", "session config (YAML)")
	demo := flag.Bool("demo", false, "show the embedded sample files instead of a config")
	flag.Parse()

	var (
		cfg  config.Config
		opts []loader.Option
		err  error
	)
	if *demo {
		cfg = config.Default()
		cfg.Scale = 0
		cfg.PixelsPerUnit = 32
		cfg.Files = samples.Files()
		opts = append(opts, loader.WithFS(samples.FS))
	} else if cfg, err = config.Load(*configPath); err != nil {
		log.Fatal(err)
	}
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := store.New(store.WithLogger(logger.Named("store")))
	opts = append(opts, loader.WithScale(cfg.Scale), loader.WithLogger(logger.Named("loader")))
	l := loader.New(s, opts...)
	if err := l.LoadFiles(ctx, cfg.Files...); err != nil {
		logger.Fatal("load shape files", zap.Error(err))
	}

	clipboardOK := true
	if err := clipboard.Init(); err != nil {
		logger.Warn("clipboard unavailable", zap.Error(err))
		clipboardOK = false
	}

	v := newViewer(cfg, s, logger.Named("viewer"), clipboardOK)

	if cfg.Watch && !*demo {
		w, err := watch.New(watchDirs(cfg.Files)...)
		if err != nil {
			logger.Fatal("watch shape files", zap.Error(err))
		}
		defer w.Close()
		go func() {
			_ = watch.Run(ctx, w, reloadNotifier{loader: l, dirty: &v.dirty}, logger.Named("watch"))
		}()
	}

	ebiten.SetWindowSize(cfg.Window.Width, cfg.Window.Height)
	ebiten.SetWindowTitle("shapeview")
	if err := ebiten.RunGame(v); err != nil {
		logger.Fatal("run", zap.Error(err))
	}
}

func watchDirs(files []string) []string {
	seen := make(map[string]struct{})
	var dirs []string
	for _, f := range files {
		d := filepath.Dir(f)
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		dirs = append(dirs, d)
	}
	return dirs
}

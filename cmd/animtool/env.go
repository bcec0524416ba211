package main

import (
	"fmt"
	"log"

	"github.com/quasilyte/gdata/v2"

	"github.com/decker502/animcore/internal/config"
	"github.com/decker502/animcore/internal/content"
	"github.com/decker502/animcore/internal/library"
	"github.com/decker502/animcore/internal/metrics"
	"github.com/decker502/animcore/internal/shape"
)

// toolEnv holds what the commands share: configuration, metrics and the
// lazily loaded content.
type toolEnv struct {
	cfg     *config.Config
	metrics *metrics.Recorder
	manager *content.Manager
}

// legacyShapes merges the configured shape files into one legacy source.
func legacyShapes(paths []string) (*shape.Shape, error) {
	var animations []shape.Animation
	for _, path := range paths {
		s, err := shape.ParseShapeFile(path)
		if err != nil {
			return nil, err
		}
		animations = append(animations, s.Animations...)
	}
	return shape.New(animations...), nil
}

// loadContent loads paths, or the configured content directories when paths is empty.
func (e *toolEnv) loadContent(paths ...string) (*content.Manager, error) {
	if e.manager != nil && len(paths) == 0 {
		return e.manager, nil
	}

	legacy, err := legacyShapes(e.cfg.ShapeFiles)
	if err != nil {
		return nil, fmt.Errorf("load shapes: %w", err)
	}

	m := content.NewManager(
		content.WithDomain(e.cfg.Domain),
		content.WithLegacySource(legacy),
		content.WithMetrics(e.metrics),
	)

	if len(paths) == 0 {
		paths = e.cfg.ContentDirs
	}
	for _, path := range paths {
		if err := m.Load(path); err != nil {
			return nil, err
		}
	}

	e.manager = m
	return m, nil
}

// openLibrary opens the animation library. Without storage_app, or when the
// platform storage cannot be opened, the library lives in memory only.
func (e *toolEnv) openLibrary() *library.Store {
	if e.cfg.StorageApp == "" {
		log.Printf("[animtool] Warning: storage_app is not set, library changes will not persist")
		return library.NewStore(nil)
	}

	manager, err := gdata.Open(gdata.Config{AppName: e.cfg.StorageApp})
	if err != nil {
		log.Printf("[animtool] Warning: cannot open storage for '%s': %v (using memory)", e.cfg.StorageApp, err)
		return library.NewStore(nil)
	}
	return library.NewStore(manager)
}

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"fortio.org/safecast"
	"github.com/BurntSushi/toml"
)

type projectManifest struct {
	Path   string
	Root   string
	Config projectConfig
	meta   toml.MetaData
}

type projectConfig struct {
	Render renderConfig `toml:"render"`
	Cache  cacheConfig  `toml:"cache"`
}

type renderConfig struct {
	TabWidth int `toml:"tab_width"`
	Context  int `toml:"context"`
}

type cacheConfig struct {
	Enabled bool `toml:"enabled"`
}

// Has reports whether the manifest defines the given TOML key.
func (m *projectManifest) Has(keys ...string) bool {
	return m != nil && m.meta.IsDefined(keys...)
}

func findPinpointToml(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, "pinpoint.toml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

func loadProjectManifest(startDir string) (*projectManifest, bool, error) {
	manifestPath, ok, err := findPinpointToml(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	var cfg projectConfig
	meta, err := toml.DecodeFile(manifestPath, &cfg)
	if err != nil {
		return nil, true, fmt.Errorf("%s: failed to parse TOML: %w", manifestPath, err)
	}
	return &projectManifest{
		Path:   manifestPath,
		Root:   filepath.Dir(manifestPath),
		Config: cfg,
		meta:   meta,
	}, true, nil
}

// renderSettings are the effective rendering knobs: defaults, overridden by
// the manifest when one is found, overridden again by explicit flags in the
// commands that expose them. TabWidth zero stands for the renderer default.
type renderSettings struct {
	TabWidth uint32
	Context  uint32
	Cache    bool
}

func resolveRenderSettings(startDir string) (renderSettings, error) {
	settings := renderSettings{TabWidth: 0, Context: 2}
	manifest, ok, err := loadProjectManifest(startDir)
	if err != nil || !ok {
		return settings, err
	}
	if manifest.Has("render", "tab_width") {
		v, convErr := safecast.Conv[uint32](manifest.Config.Render.TabWidth)
		if convErr != nil {
			return settings, fmt.Errorf("%s: [render].tab_width: %w", manifest.Path, convErr)
		}
		settings.TabWidth = v
	}
	if manifest.Has("render", "context") {
		v, convErr := safecast.Conv[uint32](manifest.Config.Render.Context)
		if convErr != nil {
			return settings, fmt.Errorf("%s: [render].context: %w", manifest.Path, convErr)
		}
		settings.Context = v
	}
	if manifest.Has("cache", "enabled") {
		settings.Cache = manifest.Config.Cache.Enabled
	}
	return settings, nil
}

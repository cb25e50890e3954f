package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// BatteryPreset is a battery file in a preset directory, addressed by its
// base name without extension.
type BatteryPreset struct {
	ID      string
	Path    string
	Battery BatteryConfig
}

var presetExts = []string{".yaml", ".yml"}

// PresetPath resolves a preset ID inside dir. IDs are plain base names; any
// path component is rejected.
func PresetPath(dir, id string) (string, error) {
	if id == "" || filepath.Base(id) != id || strings.HasPrefix(id, ".") {
		return "", fmt.Errorf("invalid battery preset id %q", id)
	}
	for _, ext := range presetExts {
		p := filepath.Join(dir, id+ext)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("battery preset %q not found in %s", id, dir)
}

// LoadBatteryPreset reads the preset id from dir.
func LoadBatteryPreset(dir, id string) (BatteryConfig, error) {
	p, err := PresetPath(dir, id)
	if err != nil {
		return BatteryConfig{}, err
	}
	b, err := LoadBatteryFile(p)
	if err != nil {
		return BatteryConfig{}, fmt.Errorf("battery preset %q: %w", id, err)
	}
	return b, nil
}

// ListBatteryPresets returns the presets in dir sorted by ID. Files that fail
// to parse are passed to skip (if non-nil) and left out.
func ListBatteryPresets(dir string, skip func(path string, err error)) ([]BatteryPreset, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var presets []BatteryPreset
	for _, entry := range entries {
		ext := filepath.Ext(entry.Name())
		if entry.IsDir() || !isPresetExt(ext) {
			continue
		}
		p := filepath.Join(dir, entry.Name())
		b, err := LoadBatteryFile(p)
		if err != nil {
			if skip != nil {
				skip(p, err)
			}
			continue
		}
		id := strings.TrimSuffix(entry.Name(), ext)
		if b.Name == "" {
			b.Name = id
		}
		presets = append(presets, BatteryPreset{ID: id, Path: p, Battery: b})
	}
	sort.Slice(presets, func(i, j int) bool { return presets[i].ID < presets[j].ID })
	return presets, nil
}

func isPresetExt(ext string) bool {
	for _, e := range presetExts {
		if ext == e {
			return true
		}
	}
	return false
}

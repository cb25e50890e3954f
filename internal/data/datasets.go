package data

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const indexFile = "datasets.yaml"

var ErrNotFound = errors.New("dataset not found")

// Dataset is a named Source listed in a data directory's datasets.yaml.
type Dataset struct {
	ID          string `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	// ResolutionSeconds is informational; the simulation timestep comes from config.
	ResolutionSeconds int `yaml:"resolution_seconds,omitempty" json:"resolution_seconds,omitempty"`

	Source `yaml:",inline" json:"source"`
}

type datasetIndex struct {
	Datasets []Dataset `yaml:"datasets"`
}

// ListDatasets reads dir/datasets.yaml. A missing index yields an empty list.
func ListDatasets(dir string) ([]Dataset, error) {
	raw, err := os.ReadFile(filepath.Join(dir, indexFile))
	if err != nil {
		if os.IsNotExist(err) {
			return []Dataset{}, nil
		}
		return nil, fmt.Errorf("failed to read dataset index: %w", err)
	}

	var idx datasetIndex
	if err := yaml.Unmarshal(raw, &idx); err != nil {
		return nil, fmt.Errorf("failed to parse dataset index: %w", err)
	}
	for i := range idx.Datasets {
		idx.Datasets[i].SetDefaults()
		if idx.Datasets[i].Name == "" {
			idx.Datasets[i].Name = idx.Datasets[i].ID
		}
	}
	return idx.Datasets, nil
}

// FindDataset looks up one dataset by ID.
func FindDataset(dir, id string) (*Dataset, error) {
	all, err := ListDatasets(dir)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].ID == id {
			return &all[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %q in %s", ErrNotFound, id, dir)
}

// DefaultDir returns the data directory: DATA_DIR or ./data.
func DefaultDir() string {
	if dir := os.Getenv("DATA_DIR"); dir != "" {
		return dir
	}
	return "./data"
}

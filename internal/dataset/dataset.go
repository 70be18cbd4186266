// SPDX-License-Identifier: MIT
// Package dataset handles persistence and shape validation for aggregated
// tag datasets.
package dataset

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/skaphos/tagscout/internal/model"
)

// ErrMalformedDataset indicates a dataset file or payload that does not
// match the documented shape. Malformed input is rejected outright, never
// coerced or partially dropped.
var ErrMalformedDataset = errors.New("malformed dataset")

// Load reads and validates a dataset file.
func Load(path string) (*model.AggregatedDataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var ds model.AggregatedDataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDataset, err)
	}
	if err := Validate(&ds); err != nil {
		return nil, err
	}
	return &ds, nil
}

// Save writes a dataset to the given path, creating parent directories.
// Pretty output indents for human inspection; compact is single-line.
func Save(ds *model.AggregatedDataset, path string, pretty bool) error {
	if ds == nil {
		return errors.New("dataset is nil")
	}
	if err := Validate(ds); err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	var data []byte
	var err error
	if pretty {
		data, err = json.MarshalIndent(ds, "", "  ")
	} else {
		data, err = json.Marshal(ds)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// Validate checks the structural invariants of a dataset: group keys agree
// with their tag_name, records carry repository names, and repository
// names are unique within each group.
func Validate(ds *model.AggregatedDataset) error {
	if ds == nil {
		return fmt.Errorf("%w: nil dataset", ErrMalformedDataset)
	}
	for key, group := range ds.Tags {
		if key == "" {
			return fmt.Errorf("%w: empty tag name key", ErrMalformedDataset)
		}
		if group.TagName != "" && group.TagName != key {
			return fmt.Errorf("%w: tag group %q keyed as %q", ErrMalformedDataset, group.TagName, key)
		}
		seen := make(map[string]struct{}, len(group.Repositories))
		for _, record := range group.Repositories {
			if record.RepositoryName == "" {
				return fmt.Errorf("%w: tag %q has a record without repository_name", ErrMalformedDataset, key)
			}
			if _, ok := seen[record.RepositoryName]; ok {
				return fmt.Errorf("%w: tag %q lists repository %q twice", ErrMalformedDataset, key, record.RepositoryName)
			}
			seen[record.RepositoryName] = struct{}{}
		}
	}
	return nil
}

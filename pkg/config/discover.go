package config

import (
	"os"
	"path/filepath"
	"strings"
)

// DatasetNames are the file names FindDataset looks for, in order.
var DatasetNames = []string{
	"stock_query.json",
	"companies.json",
	"companies.db",
	"companies.sqlite",
}

// ResolveDataset returns cfg.Dataset when set, otherwise the first dataset
// found by FindDataset starting at the working directory.
func ResolveDataset(cfg *Config) (string, bool) {
	if cfg.Dataset != "" {
		return cfg.Dataset, true
	}
	dir, err := os.Getwd()
	if err != nil {
		return "", false
	}
	return FindDataset(dir)
}

// FindDataset walks up from dir looking for a known dataset file, either
// directly in each directory or in its data/ subdirectory. It stops at the
// home directory.
func FindDataset(dir string) (string, bool) {
	home, _ := os.UserHomeDir()

	for {
		for _, sub := range []string{"", "data"} {
			if path, ok := datasetIn(filepath.Join(dir, sub)); ok {
				return path, true
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break // Reached filesystem root
		}
		// Don't go above home directory
		if home != "" && dir == home {
			break
		}
		dir = parent
	}
	return "", false
}

func datasetIn(dir string) (string, bool) {
	for _, name := range DatasetNames {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			return path, true
		}
	}
	return "", false
}

// expandHome replaces a leading ~ with the user's home directory.
func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// Package loader reads company datasets from disk and watches them for
// changes.
//
// Two formats are supported: a JSON object keyed by company name (the
// dataset provider's native shape) and a SQLite database with a companies
// table. Records are never filtered here; invalid market caps are dropped
// at layout time so search still finds every company.
package loader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vanderheijden86/bubblecap/pkg/model"
)

// ErrUnsupportedFormat is returned for files whose extension names no
// known dataset format.
var ErrUnsupportedFormat = errors.New("unsupported dataset format")

// Format identifies a dataset encoding.
type Format string

const (
	FormatJSON   Format = "json"
	FormatSQLite Format = "sqlite"
)

// DetectFormat maps a path's extension to a Format.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".db", ".sqlite", ".sqlite3":
		return FormatSQLite, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Base(path))
	}
}

// Result is a loaded dataset plus the entries that had to be skipped.
type Result struct {
	Dataset *model.Dataset
	// Skipped lists identifiers whose value was not a company object.
	Skipped []string
}

// LoadFile loads the dataset at path, choosing the decoder by extension.
func LoadFile(ctx context.Context, path string) (*Result, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	switch format {
	case FormatSQLite:
		return LoadSQLite(ctx, path)
	default:
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open dataset: %w", err)
		}
		defer f.Close()
		return LoadJSON(f)
	}
}

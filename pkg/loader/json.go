package loader

import (
	"bytes"
	"fmt"
	"io"

	"github.com/goccy/go-json"

	"github.com/vanderheijden86/bubblecap/pkg/model"
)

// LoadJSON streams a JSON object of identifier → company. Object key order
// becomes dataset order. Values that are not objects are skipped; a company
// without a display name takes its identifier.
func LoadJSON(r io.Reader) (*Result, error) {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("read dataset: expected a JSON object, got %v", tok)
	}

	res := &Result{Dataset: model.NewDataset()}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("read dataset key: %w", err)
		}
		id, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("read dataset: unexpected key %v", tok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("read record %q: %w", id, err)
		}
		raw = bytes.TrimSpace(raw)
		if len(raw) == 0 || raw[0] != '{' {
			res.Skipped = append(res.Skipped, id)
			continue
		}

		var c model.Company
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, fmt.Errorf("decode record %q: %w", id, err)
		}
		if c.Name == "" {
			c.Name = id
		}
		res.Dataset.Add(id, c)
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	return res, nil
}

package model

import "strings"

// Dataset maps company identifiers to records and remembers source order.
// It is built once by a loader and treated as read-only afterwards.
type Dataset struct {
	ids     []string
	records map[string]Company
}

// NewDataset creates an empty dataset.
func NewDataset() *Dataset {
	return &Dataset{records: make(map[string]Company)}
}

// DatasetOf builds a dataset from records keyed by their display name.
// Useful for tests and small fixtures.
func DatasetOf(companies ...Company) *Dataset {
	ds := NewDataset()
	for _, c := range companies {
		ds.Add(c.Name, c)
	}
	return ds
}

// Add inserts or replaces a record. A replaced record keeps its original
// position.
func (d *Dataset) Add(id string, c Company) {
	if _, exists := d.records[id]; !exists {
		d.ids = append(d.ids, id)
	}
	d.records[id] = c
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.ids)
}

// Get returns the record for id.
func (d *Dataset) Get(id string) (Company, bool) {
	if d == nil {
		return Company{}, false
	}
	c, ok := d.records[id]
	return c, ok
}

// IDs returns identifiers in source order.
func (d *Dataset) IDs() []string {
	if d == nil {
		return nil
	}
	out := make([]string, len(d.ids))
	copy(out, d.ids)
	return out
}

// Each calls fn for every record in source order until fn returns false.
func (d *Dataset) Each(fn func(id string, c Company) bool) {
	if d == nil {
		return
	}
	for _, id := range d.ids {
		if !fn(id, d.records[id]) {
			return
		}
	}
}

// Records returns all records in source order.
func (d *Dataset) Records() []Company {
	out := make([]Company, 0, d.Len())
	d.Each(func(_ string, c Company) bool {
		out = append(out, c)
		return true
	})
	return out
}

// FilterByName returns records whose display name contains query,
// case-insensitively.
func (d *Dataset) FilterByName(query string) []Company {
	q := strings.ToLower(query)
	out := make([]Company, 0)
	d.Each(func(_ string, c Company) bool {
		if strings.Contains(strings.ToLower(c.Name), q) {
			out = append(out, c)
		}
		return true
	})
	return out
}

// FindByNSE returns the first record whose NSE symbol equals symbol exactly.
func (d *Dataset) FindByNSE(symbol string) (Company, error) {
	return d.findFirst(func(c Company) bool { return c.NSESymbol != "" && string(c.NSESymbol) == symbol })
}

// FindByBSE returns the first record whose BSE code equals code exactly.
func (d *Dataset) FindByBSE(code string) (Company, error) {
	return d.findFirst(func(c Company) bool { return c.BSECode != "" && string(c.BSECode) == code })
}

func (d *Dataset) findFirst(match func(Company) bool) (Company, error) {
	var (
		found Company
		ok    bool
	)
	d.Each(func(_ string, c Company) bool {
		if match(c) {
			found, ok = c, true
			return false
		}
		return true
	})
	if !ok {
		return Company{}, ErrNotFound
	}
	return found, nil
}

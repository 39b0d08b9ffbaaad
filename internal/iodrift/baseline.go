// Package iodrift implements the drift detector: it captures the
// live schema, diffs it against the persisted baseline, folds in
// route and form findings and writes one report per run. This is an
// impure I/O package that implements contracts defined in pkg/.
package iodrift

import (
	"os"
	"path/filepath"

	"github.com/driftwatch/driftwatch/pkg/schema"
	"github.com/gnames/gnfmt"
)

// LoadBaseline reads a previously saved schema snapshot.
func LoadBaseline(path string) (*schema.DatabaseSchema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, BaselineReadError(path, err)
	}

	enc := gnfmt.GNjson{}
	var s schema.DatabaseSchema
	if err := enc.Decode(data, &s); err != nil {
		return nil, BaselineReadError(path, err)
	}
	return &s, nil
}

// SaveBaseline persists a snapshot in its sorted normal form,
// creating the parent directory when needed.
func SaveBaseline(path string, s *schema.DatabaseSchema) error {
	enc := gnfmt.GNjson{Pretty: true}
	data, err := enc.Encode(s.Sorted())
	if err != nil {
		return BaselineWriteError(path, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return BaselineWriteError(path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return BaselineWriteError(path, err)
	}
	return nil
}

package schema

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"

	"github.com/gnames/gnuuid"
)

// Fingerprint computes the structural hash of a schema. Table and
// column names are sorted before hashing, so the result is stable
// under reordering but changes on any type or nullability change.
// Constraints, defaults and indexes are deliberately excluded: the
// fingerprint detects structural drift, field-level diffs catch the
// rest.
func (s *DatabaseSchema) Fingerprint() string {
	var lines []string
	for _, t := range s.Tables {
		for _, c := range t.Columns {
			lines = append(lines, strings.Join([]string{
				t.Name,
				c.Name,
				strings.ToLower(c.Type),
				strconv.FormatBool(c.Nullable),
			}, "|"))
		}
	}
	sort.Strings(lines)

	h := sha256.New()
	for _, line := range lines {
		h.Write([]byte(line))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Stamp fills in Hash and Version from the current structure.
// Version is a UUID v5 of the fingerprint, so identical structures
// get identical versions across runs and machines.
func (s *DatabaseSchema) Stamp() {
	s.Hash = s.Fingerprint()
	s.Version = gnuuid.New(s.Hash).String()
}

// Sorted returns a deep copy with tables, columns, constraints,
// indexes and views in name order. Analyzers return columns in
// engine ordinal order; the sorted form is the comparison and
// persistence normal form.
func (s *DatabaseSchema) Sorted() *DatabaseSchema {
	res := &DatabaseSchema{
		Version:    s.Version,
		Engine:     s.Engine,
		CapturedAt: s.CapturedAt,
		Hash:       s.Hash,
	}

	res.Tables = make([]Table, len(s.Tables))
	for i, t := range s.Tables {
		nt := Table{
			Name:       t.Name,
			Columns:    append([]Column(nil), t.Columns...),
			PrimaryKey: append([]string(nil), t.PrimaryKey...),
		}
		sort.Slice(nt.Columns, func(a, b int) bool {
			return nt.Columns[a].Name < nt.Columns[b].Name
		})
		nt.Constraints = append([]Constraint(nil), t.Constraints...)
		sort.Slice(nt.Constraints, func(a, b int) bool {
			return nt.Constraints[a].Name < nt.Constraints[b].Name
		})
		res.Tables[i] = nt
	}
	sort.Slice(res.Tables, func(a, b int) bool {
		return res.Tables[a].Name < res.Tables[b].Name
	})

	res.Views = append([]View(nil), s.Views...)
	sort.Slice(res.Views, func(a, b int) bool {
		return res.Views[a].Name < res.Views[b].Name
	})

	res.Indexes = append([]Index(nil), s.Indexes...)
	sort.Slice(res.Indexes, func(a, b int) bool {
		if res.Indexes[a].TableName != res.Indexes[b].TableName {
			return res.Indexes[a].TableName < res.Indexes[b].TableName
		}
		return res.Indexes[a].Name < res.Indexes[b].Name
	})

	return res
}

package drift

import (
	"fmt"
	"strings"

	"github.com/driftwatch/driftwatch/pkg/schema"
)

// Compare diffs a live schema against the baseline and returns the
// field-level drifts in deterministic (sorted) order. Comparing a
// schema against itself yields no drifts.
func Compare(baseline, live *schema.DatabaseSchema) []Drift {
	var drifts []Drift

	b := baseline.Sorted()
	l := live.Sorted()

	liveTables := make(map[string]*schema.Table, len(l.Tables))
	for i := range l.Tables {
		liveTables[l.Tables[i].Name] = &l.Tables[i]
	}
	baseTables := make(map[string]*schema.Table, len(b.Tables))
	for i := range b.Tables {
		baseTables[b.Tables[i].Name] = &b.Tables[i]
	}

	for i := range b.Tables {
		bt := &b.Tables[i]
		lt, ok := liveTables[bt.Name]
		if !ok {
			drifts = append(drifts, Drift{
				Kind:     MissingTable,
				Severity: High,
				Object:   bt.Name,
				Expected: bt.Name,
				Message: fmt.Sprintf(
					"table %q exists in baseline but not in live database", bt.Name),
			})
			continue
		}
		drifts = append(drifts, compareColumns(bt, lt)...)
		drifts = append(drifts, compareConstraints(bt, lt)...)
	}

	for i := range l.Tables {
		lt := &l.Tables[i]
		if _, ok := baseTables[lt.Name]; !ok {
			drifts = append(drifts, Drift{
				Kind:     ExtraTable,
				Severity: Medium,
				Object:   lt.Name,
				Actual:   lt.Name,
				Message: fmt.Sprintf(
					"table %q exists in live database but not in baseline", lt.Name),
			})
		}
	}

	drifts = append(drifts, compareIndexes(b.Indexes, l.Indexes)...)
	drifts = append(drifts, compareViews(b.Views, l.Views)...)

	return drifts
}

func compareColumns(baseline, live *schema.Table) []Drift {
	var drifts []Drift

	for i := range baseline.Columns {
		bc := &baseline.Columns[i]
		obj := baseline.Name + "." + bc.Name
		lc := live.Column(bc.Name)
		if lc == nil {
			drifts = append(drifts, Drift{
				Kind:     MissingColumn,
				Severity: High,
				Object:   obj,
				Expected: bc.Type,
				Message: fmt.Sprintf(
					"column %q was removed from live database", obj),
			})
			continue
		}

		if !strings.EqualFold(bc.Type, lc.Type) {
			drifts = append(drifts, Drift{
				Kind:     ColumnTypeMismatch,
				Severity: High,
				Object:   obj,
				Expected: bc.Type,
				Actual:   lc.Type,
				Message: fmt.Sprintf(
					"column %q changed type from %q to %q", obj, bc.Type, lc.Type),
			})
		}

		if bc.Nullable != lc.Nullable {
			// Loosening (NOT NULL -> NULL) is less risky than
			// tightening.
			sev := High
			if lc.Nullable {
				sev = Medium
			}
			drifts = append(drifts, Drift{
				Kind:     ConstraintMismatch,
				Severity: sev,
				Object:   obj,
				Expected: nullability(bc.Nullable),
				Actual:   nullability(lc.Nullable),
				Message: fmt.Sprintf(
					"column %q changed from %s to %s",
					obj, nullability(bc.Nullable), nullability(lc.Nullable)),
			})
		}

		if !equalDefaults(bc.Default, lc.Default) {
			drifts = append(drifts, Drift{
				Kind:     ConstraintMismatch,
				Severity: Low,
				Object:   obj,
				Expected: defaultString(bc.Default),
				Actual:   defaultString(lc.Default),
				Message: fmt.Sprintf(
					"column %q changed default from %s to %s",
					obj, defaultString(bc.Default), defaultString(lc.Default)),
			})
		}
	}

	for i := range live.Columns {
		lc := &live.Columns[i]
		if baseline.Column(lc.Name) == nil {
			obj := live.Name + "." + lc.Name
			drifts = append(drifts, Drift{
				Kind:     ExtraColumn,
				Severity: Medium,
				Object:   obj,
				Actual:   lc.Type,
				Message: fmt.Sprintf(
					"column %q was added to live database", obj),
			})
		}
	}

	return drifts
}

func compareConstraints(baseline, live *schema.Table) []Drift {
	var drifts []Drift

	liveByName := make(map[string]schema.Constraint, len(live.Constraints))
	for _, c := range live.Constraints {
		liveByName[c.Name] = c
	}
	baseByName := make(map[string]schema.Constraint, len(baseline.Constraints))
	for _, c := range baseline.Constraints {
		baseByName[c.Name] = c
	}

	for _, bc := range baseline.Constraints {
		obj := baseline.Name + "." + bc.Name
		lc, ok := liveByName[bc.Name]
		if !ok {
			drifts = append(drifts, Drift{
				Kind:     ConstraintMismatch,
				Severity: High,
				Object:   obj,
				Expected: constraintString(bc),
				Message: fmt.Sprintf(
					"constraint %q was removed from live database", obj),
			})
			continue
		}
		if bc.Kind != lc.Kind || !equalStrings(bc.Columns, lc.Columns) {
			drifts = append(drifts, Drift{
				Kind:     ConstraintMismatch,
				Severity: Medium,
				Object:   obj,
				Expected: constraintString(bc),
				Actual:   constraintString(lc),
				Message: fmt.Sprintf(
					"constraint %q changed definition", obj),
			})
		}
	}

	for _, lc := range live.Constraints {
		if _, ok := baseByName[lc.Name]; !ok {
			obj := live.Name + "." + lc.Name
			drifts = append(drifts, Drift{
				Kind:     ConstraintMismatch,
				Severity: Medium,
				Object:   obj,
				Actual:   constraintString(lc),
				Message: fmt.Sprintf(
					"constraint %q was added to live database", obj),
			})
		}
	}

	return drifts
}

func compareIndexes(baseline, live []schema.Index) []Drift {
	var drifts []Drift

	key := func(idx schema.Index) string {
		return idx.TableName + "." + idx.Name
	}

	liveByName := make(map[string]schema.Index, len(live))
	for _, idx := range live {
		liveByName[key(idx)] = idx
	}
	baseByName := make(map[string]schema.Index, len(baseline))
	for _, idx := range baseline {
		baseByName[key(idx)] = idx
	}

	for _, bi := range baseline {
		li, ok := liveByName[key(bi)]
		if !ok {
			drifts = append(drifts, Drift{
				Kind:     IndexMismatch,
				Severity: Medium,
				Object:   key(bi),
				Expected: indexString(bi),
				Message: fmt.Sprintf(
					"index %q was removed from live database", key(bi)),
			})
			continue
		}
		if bi.Unique != li.Unique || !equalStrings(bi.Columns, li.Columns) {
			drifts = append(drifts, Drift{
				Kind:     IndexMismatch,
				Severity: Medium,
				Object:   key(bi),
				Expected: indexString(bi),
				Actual:   indexString(li),
				Message: fmt.Sprintf(
					"index %q changed definition", key(bi)),
			})
		}
	}

	for _, li := range live {
		if _, ok := baseByName[key(li)]; !ok {
			drifts = append(drifts, Drift{
				Kind:     IndexMismatch,
				Severity: Low,
				Object:   key(li),
				Actual:   indexString(li),
				Message: fmt.Sprintf(
					"index %q was added to live database", key(li)),
			})
		}
	}

	return drifts
}

func compareViews(baseline, live []schema.View) []Drift {
	var drifts []Drift

	liveByName := make(map[string]schema.View, len(live))
	for _, v := range live {
		liveByName[v.Name] = v
	}
	baseByName := make(map[string]schema.View, len(baseline))
	for _, v := range baseline {
		baseByName[v.Name] = v
	}

	for _, bv := range baseline {
		lv, ok := liveByName[bv.Name]
		if !ok {
			drifts = append(drifts, Drift{
				Kind:     ViewMismatch,
				Severity: Medium,
				Object:   bv.Name,
				Expected: bv.Name,
				Message: fmt.Sprintf(
					"view %q was removed from live database", bv.Name),
			})
			continue
		}
		if bv.Definition != "" && lv.Definition != "" &&
			bv.Definition != lv.Definition {
			drifts = append(drifts, Drift{
				Kind:     ViewMismatch,
				Severity: Medium,
				Object:   bv.Name,
				Expected: bv.Definition,
				Actual:   lv.Definition,
				Message: fmt.Sprintf(
					"view %q changed definition", bv.Name),
			})
		}
	}

	for _, lv := range live {
		if _, ok := baseByName[lv.Name]; !ok {
			drifts = append(drifts, Drift{
				Kind:     ViewMismatch,
				Severity: Low,
				Object:   lv.Name,
				Actual:   lv.Name,
				Message: fmt.Sprintf(
					"view %q was added to live database", lv.Name),
			})
		}
	}

	return drifts
}

func nullability(nullable bool) string {
	if nullable {
		return "NULL"
	}
	return "NOT NULL"
}

func defaultString(d *string) string {
	if d == nil {
		return "<none>"
	}
	return *d
}

func constraintString(c schema.Constraint) string {
	return fmt.Sprintf("%s(%s)", c.Kind, strings.Join(c.Columns, ","))
}

func indexString(idx schema.Index) string {
	s := fmt.Sprintf("(%s)", strings.Join(idx.Columns, ","))
	if idx.Unique {
		return "UNIQUE " + s
	}
	return s
}

func equalDefaults(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

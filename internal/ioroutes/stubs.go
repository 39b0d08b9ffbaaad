package ioroutes

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/driftwatch/driftwatch/pkg/forms"
	"github.com/driftwatch/driftwatch/pkg/routes"
	"github.com/driftwatch/driftwatch/pkg/schema"
	"github.com/jinzhu/inflection"
)

// StubFileName returns the conventional handler file for a table,
// e.g. "order_item" -> "order-items.js".
func StubFileName(table string) string {
	plural := inflection.Plural(table)
	return strings.ReplaceAll(plural, "_", "-") + ".js"
}

// WriteStub writes an Express router covering the missing actions of
// one table. Each handler implements its CRUD operation against the
// table, and write handlers validate input against a schema derived
// from the column types. An existing file is never touched; the bool
// reports whether a file was written.
func WriteStub(
	dir string, table *schema.Table, missing []routes.CRUDAction,
) (string, bool, error) {
	if len(missing) == 0 {
		return "", false, nil
	}

	path := filepath.Join(dir, StubFileName(table.Name))
	if _, err := os.Stat(path); err == nil {
		return path, false, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", false, StubWriteError(path, err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "// Handlers for the %s table.\n", table.Name)
	b.WriteString("const express = require('express');\n")
	b.WriteString("const router = express.Router();\n\n")

	writeValidation(&b, table)

	base := routes.ResourcePath(table.Name)
	for _, action := range missing {
		writeHandler(&b, table, base, action)
	}
	b.WriteString("module.exports = router;\n")

	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return "", false, StubWriteError(path, err)
	}
	return path, true, nil
}

// writeValidation renders per-column input rules and the validate
// helper. The field type for each column follows the same mapping
// form validation uses, so stubs and forms agree on what a column
// accepts.
func writeValidation(b *strings.Builder, table *schema.Table) {
	b.WriteString("const validation = {\n")
	for i := range table.Columns {
		col := &table.Columns[i]
		if col.AutoIncrement {
			continue
		}
		rule := fmt.Sprintf("type: '%s'", forms.ExpectedFieldType(col))
		if !col.Nullable && col.Default == nil {
			rule += ", required: true"
		}
		if n, ok := col.VarcharLength(); ok {
			rule += fmt.Sprintf(", maxLength: %d", n)
		}
		fmt.Fprintf(b, "  %s: { %s },\n", col.Name, rule)
	}
	b.WriteString("};\n\n")

	b.WriteString(`function validate(body) {
  const errors = [];
  for (const [name, rule] of Object.entries(validation)) {
    const value = body[name];
    if (rule.required && (value === undefined || value === null || value === '')) {
      errors.push(name + ' is required');
      continue;
    }
    if (value !== undefined && rule.maxLength && String(value).length > rule.maxLength) {
      errors.push(name + ' exceeds ' + rule.maxLength + ' characters');
    }
  }
  return errors;
}

`)
}

func writeHandler(
	b *strings.Builder, table *schema.Table,
	base string, action routes.CRUDAction,
) {
	name := table.Name
	cols := inputColumns(table)
	values := make([]string, len(cols))
	sets := make([]string, len(cols))
	for i, c := range cols {
		values[i] = "req.body." + c
		sets[i] = c + " = ?"
	}
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")

	switch action {
	case routes.ActionList:
		fmt.Fprintf(b,
			"router.get('%s', async (req, res) => {\n"+
				"  const rows = await req.db.query('SELECT * FROM %s');\n"+
				"  res.json(rows);\n"+
				"});\n\n",
			base, name)
	case routes.ActionGet:
		fmt.Fprintf(b,
			"router.get('%s/:id', async (req, res) => {\n"+
				"  const rows = await req.db.query('SELECT * FROM %s WHERE id = ?', [req.params.id]);\n"+
				"  if (rows.length === 0) {\n"+
				"    return res.status(404).json({ error: '%s not found' });\n"+
				"  }\n"+
				"  res.json(rows[0]);\n"+
				"});\n\n",
			base, name, inflection.Singular(name))
	case routes.ActionCreate:
		fmt.Fprintf(b,
			"router.post('%s', async (req, res) => {\n"+
				"  const errors = validate(req.body);\n"+
				"  if (errors.length > 0) {\n"+
				"    return res.status(422).json({ errors });\n"+
				"  }\n"+
				"  const created = await req.db.query(\n"+
				"    'INSERT INTO %s (%s) VALUES (%s)',\n"+
				"    [%s],\n"+
				"  );\n"+
				"  res.status(201).json(created);\n"+
				"});\n\n",
			base, name, strings.Join(cols, ", "), marks,
			strings.Join(values, ", "))
	case routes.ActionUpdate:
		fmt.Fprintf(b,
			"router.put('%s/:id', async (req, res) => {\n"+
				"  const errors = validate(req.body);\n"+
				"  if (errors.length > 0) {\n"+
				"    return res.status(422).json({ errors });\n"+
				"  }\n"+
				"  const updated = await req.db.query(\n"+
				"    'UPDATE %s SET %s WHERE id = ?',\n"+
				"    [%s, req.params.id],\n"+
				"  );\n"+
				"  res.json(updated);\n"+
				"});\n\n",
			base, name, strings.Join(sets, ", "),
			strings.Join(values, ", "))
	case routes.ActionDelete:
		fmt.Fprintf(b,
			"router.delete('%s/:id', async (req, res) => {\n"+
				"  await req.db.query('DELETE FROM %s WHERE id = ?', [req.params.id]);\n"+
				"  res.status(204).send();\n"+
				"});\n\n",
			base, name)
	}
}

// inputColumns lists the writable columns, leaving auto-increment
// keys to the database.
func inputColumns(table *schema.Table) []string {
	var cols []string
	for _, c := range table.Columns {
		if c.AutoIncrement {
			continue
		}
		cols = append(cols, c.Name)
	}
	return cols
}

// Package ioforms recovers form schemas from HTML and Vue templates.
// Templates are parsed as HTML; framework input components and
// binding attributes are recognized without evaluating the host
// framework. This is an impure I/O package that implements contracts
// defined in pkg/.
package ioforms

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/driftwatch/driftwatch/pkg/forms"
	"golang.org/x/net/html"
)

// formElements are tags that open a form scope.
var formElements = map[string]bool{
	"form":    true,
	"v-form":  true,
	"el-form": true,
}

// inputComponents maps framework input tags to the field type they
// produce when no type attribute overrides it. Custom components
// like <TextField> arrive lowercased from the HTML tokenizer.
var inputComponents = map[string]forms.FieldType{
	"input":        forms.FieldText,
	"v-text-field": forms.FieldText,
	"el-input":     forms.FieldText,
	"a-input":      forms.FieldText,
	"textfield":    forms.FieldText,
	"formcontrol":  forms.FieldText,
	"textarea":     forms.FieldTextarea,
	"v-textarea":   forms.FieldTextarea,
	"el-textarea":  forms.FieldTextarea,
	"select":       forms.FieldSelect,
	"v-select":     forms.FieldSelect,
	"el-select":    forms.FieldSelect,
	"v-checkbox":   forms.FieldCheckbox,
	"el-checkbox":  forms.FieldCheckbox,
	"v-radio":      forms.FieldRadio,
	"el-radio":     forms.FieldRadio,
}

// inputTypes maps the HTML type attribute to field types.
var inputTypes = map[string]forms.FieldType{
	"text":           forms.FieldText,
	"email":          forms.FieldEmail,
	"password":       forms.FieldPassword,
	"number":         forms.FieldNumber,
	"tel":            forms.FieldTel,
	"url":            forms.FieldURL,
	"date":           forms.FieldDate,
	"datetime-local": forms.FieldDatetime,
	"time":           forms.FieldTime,
	"checkbox":       forms.FieldCheckbox,
	"radio":          forms.FieldRadio,
	"file":           forms.FieldFile,
	"hidden":         forms.FieldHidden,
}

// ExtractForms parses one template and returns its form schemas. A
// parse failure returns an error; templates without forms return nil.
func ExtractForms(src, sourceFile string) ([]forms.FormSchema, error) {
	doc, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return nil, FormParseError(sourceFile, err)
	}

	var found []forms.FormSchema
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && formElements[n.Data] {
			found = append(found, extractForm(n, sourceFile, len(found)))
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return found, nil
}

func extractForm(n *html.Node, sourceFile string, ordinal int) forms.FormSchema {
	f := forms.FormSchema{
		Name:         formName(n, sourceFile, ordinal),
		SourceFile:   sourceFile,
		SubmitAction: submitAction(n),
	}

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if field, ok := extractField(n); ok {
				// radio groups share a name; merge into one field
				if f.Field(field.Name) == nil {
					f.Fields = append(f.Fields, field)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c)
	}
	return f
}

// formName prefers the form's own id or name; otherwise the file base
// name, suffixed for second and later forms in the same file.
func formName(n *html.Node, sourceFile string, ordinal int) string {
	if v := attr(n, "id"); v != "" {
		return v
	}
	if v := attr(n, "name"); v != "" {
		return v
	}
	base := filepath.Base(sourceFile)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if ordinal > 0 {
		return base + "_" + strconv.Itoa(ordinal+1)
	}
	return base
}

func submitAction(n *html.Node) string {
	if v := attr(n, "action"); v != "" {
		return v
	}
	for _, a := range n.Attr {
		if strings.HasPrefix(a.Key, "@submit") ||
			strings.HasPrefix(a.Key, "v-on:submit") ||
			a.Key == "(ngsubmit)" {
			return a.Val
		}
	}
	return ""
}

func extractField(n *html.Node) (forms.Field, bool) {
	typ, ok := inputComponents[n.Data]
	if !ok {
		return forms.Field{}, false
	}

	name := fieldName(n)
	if name == "" {
		return forms.Field{}, false
	}

	if t := attr(n, "type"); t != "" {
		if mapped, ok := inputTypes[t]; ok {
			typ = mapped
		}
	}

	field := forms.Field{
		Name:     name,
		Type:     typ,
		Required: hasAttr(n, "required"),
		Rules:    fieldRules(n),
	}
	return field, true
}

// fieldName resolves the column-facing name: the name attribute, or
// the tail of a framework binding like v-model="form.email".
func fieldName(n *html.Node) string {
	if v := attr(n, "name"); v != "" {
		return v
	}
	for _, key := range []string{"v-model", "[(ngmodel)]", "formcontrolname"} {
		if v := attr(n, key); v != "" {
			if i := strings.LastIndex(v, "."); i >= 0 {
				v = v[i+1:]
			}
			return v
		}
	}
	return attr(n, "id")
}

func fieldRules(n *html.Node) forms.Rules {
	var r forms.Rules
	if v, ok := floatAttr(n, "min"); ok {
		r.Min = &v
	}
	if v, ok := floatAttr(n, "max"); ok {
		r.Max = &v
	}
	if v, ok := intAttr(n, "minlength"); ok {
		r.MinLength = &v
	}
	if v, ok := intAttr(n, "maxlength"); ok {
		r.MaxLength = &v
	}
	r.Pattern = attr(n, "pattern")
	return r
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}

func floatAttr(n *html.Node, key string) (float64, bool) {
	v, err := strconv.ParseFloat(attr(n, key), 64)
	return v, err == nil
}

func intAttr(n *html.Node, key string) (int, bool) {
	v, err := strconv.Atoi(attr(n, key))
	return v, err == nil
}

package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/wonny/nasdaq/internal/normalize"
)

// ═══════════════════════════════════════════════════════════
// Output rendering
// Every command prints through render so --output applies uniformly
// ═══════════════════════════════════════════════════════════

var stdout io.Writer = os.Stdout

// render prints v as JSON or as one or more tables.
//
//   - slice of records   → one row per record
//   - struct of sections → one titled table per slice/struct field
//   - flat struct        → field/value table
func render(v interface{}) error {
	if outputFormat == "json" {
		return renderJSON(stdout, v)
	}
	renderTable(stdout, "", reflect.ValueOf(v))
	return nil
}

func renderJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func renderTable(w io.Writer, title string, v reflect.Value) {
	v = reflect.Indirect(v)
	switch {
	case v.Kind() == reflect.Slice:
		renderRows(w, title, v)
	case v.Kind() == reflect.Struct && isSectioned(v.Type()):
		for i := 0; i < v.NumField(); i++ {
			f := v.Type().Field(i)
			if !f.IsExported() {
				continue
			}
			renderTable(w, columnName(f), v.Field(i))
		}
	case v.Kind() == reflect.Struct:
		renderFields(w, title, v)
	default:
		fmt.Fprintln(w, cell(v))
	}
}

// isSectioned reports whether every exported field is a nested record or list
func isSectioned(t reflect.Type) bool {
	n := 0
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		k := f.Type.Kind()
		if k != reflect.Slice && (k != reflect.Struct || f.Type == reflect.TypeOf(time.Time{})) {
			return false
		}
		n++
	}
	return n > 0
}

func newTable(w io.Writer, title string) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)
	if title != "" {
		t.SetTitle(title)
	}
	return t
}

func renderRows(w io.Writer, title string, rows reflect.Value) {
	t := newTable(w, title)
	elem := rows.Type().Elem()
	for elem.Kind() == reflect.Ptr {
		elem = elem.Elem()
	}
	if elem.Kind() != reflect.Struct {
		t.AppendHeader(table.Row{"value"})
		for i := 0; i < rows.Len(); i++ {
			t.AppendRow(table.Row{cell(rows.Index(i))})
		}
		t.Render()
		return
	}

	header := table.Row{}
	var index []int
	for i := 0; i < elem.NumField(); i++ {
		f := elem.Field(i)
		if !f.IsExported() {
			continue
		}
		header = append(header, columnName(f))
		index = append(index, i)
	}
	t.AppendHeader(header)

	for i := 0; i < rows.Len(); i++ {
		row := reflect.Indirect(rows.Index(i))
		r := make(table.Row, 0, len(index))
		for _, fi := range index {
			r = append(r, cell(row.Field(fi)))
		}
		t.AppendRow(r)
	}
	t.AppendFooter(table.Row{fmt.Sprintf("%d rows", rows.Len())})
	t.Render()
}

func renderFields(w io.Writer, title string, v reflect.Value) {
	t := newTable(w, title)
	t.AppendHeader(table.Row{"field", "value"})
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 1, Colors: text.Colors{text.Bold}}})
	for i := 0; i < v.NumField(); i++ {
		f := v.Type().Field(i)
		if !f.IsExported() {
			continue
		}
		t.AppendRow(table.Row{columnName(f), cell(v.Field(i))})
	}
	t.Render()
}

// columnName prefers the json tag so tables and JSON output agree
func columnName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return f.Name
	}
	return name
}

// cell renders one value; absent (nil) values print as "-"
func cell(v reflect.Value) string {
	if !v.IsValid() {
		return "-"
	}
	for v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return "-"
		}
		v = v.Elem()
	}

	if t, ok := v.Interface().(time.Time); ok {
		return t.Format("2006-01-02")
	}
	if s, ok := v.Interface().(fmt.Stringer); ok {
		return s.String()
	}

	switch v.Kind() {
	case reflect.Float32, reflect.Float64:
		return normalize.FormatNumber(v.Float())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10)
	case reflect.Bool:
		return strconv.FormatBool(v.Bool())
	case reflect.String:
		return v.String()
	case reflect.Slice:
		parts := make([]string, 0, v.Len())
		for i := 0; i < v.Len(); i++ {
			parts = append(parts, cell(v.Index(i)))
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprintf("%v", v.Interface())
	}
}

// Package records declares the typed NASDAQ records and builds them from
// raw payload rows.
//
// Each record is a struct of pointer fields. A field's rule table lives in
// its tags:
//
//	Revenue *float64 `json:"revenue" src:"revenue,value2" rule:"number"`
//
//	src      comma-separated source keys; the first present, non-empty one wins.
//	         Dotted keys descend into nested objects ("CompanyName.value").
//	rule     text | number | int | date | bool | magnitude
//	default  raw string used when no source yields a value, parsed by the same rule
//
// Adding a record is purely declarative: a new struct, no parsing code.
package records

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/wonny/nasdaq/internal/normalize"
)

// Rule names a normalization applied to one field.
type Rule string

const (
	RuleText      Rule = "text"
	RuleNumber    Rule = "number"
	RuleInt       Rule = "int"
	RuleDate      Rule = "date"
	RuleBool      Rule = "bool"
	RuleMagnitude Rule = "magnitude"
)

var (
	typeString  = reflect.TypeOf((*string)(nil))
	typeFloat   = reflect.TypeOf((*float64)(nil))
	typeInt     = reflect.TypeOf((*int64)(nil))
	typeTime    = reflect.TypeOf((*time.Time)(nil))
	typeBool    = reflect.TypeOf((*bool)(nil))
	ruleTargets = map[Rule]reflect.Type{
		RuleText:      typeString,
		RuleNumber:    typeFloat,
		RuleInt:       typeInt,
		RuleDate:      typeTime,
		RuleBool:      typeBool,
		RuleMagnitude: typeFloat,
	}
)

// FieldRule is one row of a record's rule table.
type FieldRule struct {
	Field   string   `json:"field"`
	Sources []string `json:"sources"`
	Rule    Rule     `json:"rule"`
	Default *string  `json:"default,omitempty"`
}

type plan struct {
	index int
	FieldRule
}

var plans sync.Map // reflect.Type → []plan

// planFor compiles (once per type) the rule table of struct type t.
// A malformed table is a programming error and panics.
func planFor(t reflect.Type) []plan {
	if cached, ok := plans.Load(t); ok {
		return cached.([]plan)
	}
	if t.Kind() != reflect.Struct {
		panic(fmt.Sprintf("records: %s is not a struct", t))
	}

	var out []plan
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		src, ok := f.Tag.Lookup("src")
		if !ok {
			continue
		}

		rule := Rule(f.Tag.Get("rule"))
		want, known := ruleTargets[rule]
		if !known {
			panic(fmt.Sprintf("records: %s.%s has unknown rule %q", t.Name(), f.Name, rule))
		}
		if f.Type != want {
			panic(fmt.Sprintf("records: %s.%s is %s, rule %q needs %s", t.Name(), f.Name, f.Type, rule, want))
		}

		name := f.Name
		if js := strings.Split(f.Tag.Get("json"), ",")[0]; js != "" && js != "-" {
			name = js
		}

		p := plan{index: i, FieldRule: FieldRule{Field: name, Rule: rule}}
		for _, s := range strings.Split(src, ",") {
			if s = strings.TrimSpace(s); s != "" {
				p.Sources = append(p.Sources, s)
			}
		}
		if def, ok := f.Tag.Lookup("default"); ok {
			p.Default = &def
		}
		out = append(out, p)
	}

	actual, _ := plans.LoadOrStore(t, out)
	return actual.([]plan)
}

// Describe returns the rule table of record type T.
func Describe[T any]() []FieldRule {
	ps := planFor(reflect.TypeOf((*T)(nil)).Elem())
	rules := make([]FieldRule, len(ps))
	for i, p := range ps {
		rules[i] = p.FieldRule
		rules[i].Sources = append([]string(nil), p.Sources...)
	}
	return rules
}

// Build applies T's rule table to one raw row. It never fails: absent or
// unparseable fields stay nil unless a default is declared.
func Build[T any](eng *normalize.Engine, row normalize.Value) T {
	var rec T
	rv := reflect.ValueOf(&rec).Elem()

	for _, p := range planFor(rv.Type()) {
		raw, found := pick(eng, row, p.Sources)

		var out reflect.Value
		if found {
			out = apply(eng, p.Rule, raw)
		}
		if (!out.IsValid() || out.IsNil()) && p.Default != nil {
			out = apply(eng, p.Rule, normalize.String(*p.Default))
		}
		if out.IsValid() && !out.IsNil() {
			rv.Field(p.index).Set(out)
		}
	}
	return rec
}

// BuildAll builds one record per row, preserving order.
func BuildAll[T any](eng *normalize.Engine, rows []normalize.Value) []T {
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		out = append(out, Build[T](eng, row))
	}
	return out
}

// pick returns the first source that is present and not an empty marker.
func pick(eng *normalize.Engine, row normalize.Value, sources []string) (normalize.Value, bool) {
	for _, src := range sources {
		v := row.Path(src)
		if v.IsNull() {
			continue
		}
		if s, ok := v.Str(); ok && eng.IsEmpty(s) {
			continue
		}
		return v, true
	}
	return normalize.Null, false
}

func apply(eng *normalize.Engine, rule Rule, v normalize.Value) reflect.Value {
	switch rule {
	case RuleText:
		return reflect.ValueOf(eng.Text(v))
	case RuleNumber:
		return reflect.ValueOf(eng.Number(v))
	case RuleInt:
		return reflect.ValueOf(eng.Int(v))
	case RuleDate:
		return reflect.ValueOf(eng.Date(v))
	case RuleBool:
		return reflect.ValueOf(eng.Bool(v))
	case RuleMagnitude:
		return reflect.ValueOf(eng.Magnitude(v))
	default:
		return reflect.Value{}
	}
}

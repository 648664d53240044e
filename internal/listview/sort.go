// Package listview orders already-fetched records for display.
package listview

import (
	"encoding/json"
	"math"
	"reflect"
	"slices"
	"strconv"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// SortState is the active sort column.
type SortState struct {
	Field     string
	Direction Direction
}

// Toggle applies a header click: the active field flips direction, any other
// field becomes active in ascending order.
func (s SortState) Toggle(field string) SortState {
	if s.Field == field {
		if s.Direction == Asc {
			return SortState{Field: field, Direction: Desc}
		}
		return SortState{Field: field, Direction: Asc}
	}
	return SortState{Field: field, Direction: Asc}
}

// FieldFunc extracts a field value from a record. nil means missing.
type FieldFunc[T any] func(item T, field string) any

// Fielder is implemented by records that expose their fields by name.
type Fielder interface {
	Field(name string) any
}

// FieldOf is a FieldFunc for Fielder records.
func FieldOf[T Fielder](item T, field string) any {
	return item.Field(field)
}

// RecordFields is a FieldFunc for generic JSON records.
func RecordFields(item map[string]any, field string) any {
	return item[field]
}

// Comparator holds the enum rank tables and the collation locale.
type Comparator struct {
	// Ranks maps field -> value -> position. Unknown values sort after known ones.
	Ranks  map[string]map[string]int
	Locale language.Tag
}

// DefaultRanks returns the rank tables for project priority and status.
func DefaultRanks() map[string]map[string]int {
	return map[string]map[string]int{
		"priority": {"high": 0, "medium": 1, "low": 2},
		"status": {
			"planning":    0,
			"in_progress": 1,
			"review":      2,
			"on_hold":     3,
			"completed":   4,
			"cancelled":   5,
		},
	}
}

// DefaultComparator uses DefaultRanks and an undetermined locale.
func DefaultComparator() Comparator {
	return Comparator{Ranks: DefaultRanks(), Locale: language.Und}
}

// Sort returns a sorted copy of items. Missing values come last in both
// directions. items is never modified.
func Sort[T any](items []T, state SortState, get FieldFunc[T], cmp Comparator) []T {
	out := slices.Clone(items)
	if state.Field == "" || len(out) < 2 {
		return out
	}

	col := collate.New(cmp.Locale)
	ranks := cmp.Ranks[state.Field]
	sign := 1
	if state.Direction == Desc {
		sign = -1
	}

	slices.SortStableFunc(out, func(a, b T) int {
		va, vb := normalize(get(a, state.Field)), normalize(get(b, state.Field))
		switch {
		case va == nil && vb == nil:
			return 0
		case va == nil:
			return 1
		case vb == nil:
			return -1
		}
		return sign * compareValues(va, vb, ranks, col)
	})
	return out
}

// normalize dereferences pointers, maps nil pointers to nil and reduces named
// string and bool types (ids, enums) to their underlying kind.
func normalize(v any) any {
	if v == nil {
		return nil
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Type() == jsonNumberType {
		return rv.Interface()
	}
	switch rv.Kind() {
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return rv.Bool()
	}
	return rv.Interface()
}

var jsonNumberType = reflect.TypeOf(json.Number(""))

func compareValues(a, b any, ranks map[string]int, col *collate.Collator) int {
	if ranks != nil {
		if sa, ok := a.(string); ok {
			if sb, ok := b.(string); ok {
				return compareRanked(sa, sb, ranks, col)
			}
		}
	}

	if na, ok := number(a); ok {
		if nb, ok := number(b); ok {
			return compareFloat(na, nb)
		}
	}

	if ba, ok := a.(bool); ok {
		if bb, ok := b.(bool); ok {
			switch {
			case ba == bb:
				return 0
			case bb:
				return -1
			default:
				return 1
			}
		}
	}

	if sa, ok := a.(string); ok {
		if sb, ok := b.(string); ok {
			// Backend ids arrive as strings but order numerically.
			if na, ok := numericString(sa); ok {
				if nb, ok := numericString(sb); ok {
					return compareFloat(na, nb)
				}
			}
			if ta, okA := parseDate(sa); okA {
				if tb, okB := parseDate(sb); okB {
					return ta.Compare(tb)
				}
			}
			return col.CompareString(sa, sb)
		}
	}

	ta, okA := asTime(a)
	tb, okB := asTime(b)
	switch {
	case okA && okB:
		return ta.Compare(tb)
	case okA:
		return -1
	case okB:
		return 1
	}
	return 0
}

func compareRanked(a, b string, ranks map[string]int, col *collate.Collator) int {
	ra, okA := ranks[a]
	rb, okB := ranks[b]
	switch {
	case okA && okB:
		return ra - rb
	case okA:
		return -1
	case okB:
		return 1
	default:
		return col.CompareString(a, b)
	}
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func number(v any) (float64, bool) {
	if n, ok := v.(json.Number); ok {
		f, err := n.Float64()
		return f, err == nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

// numericString parses finite decimal numbers only, so titles such as "Inf"
// keep collating.
func numericString(s string) (float64, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

var dateLayouts = []string{time.RFC3339Nano, time.DateTime, time.DateOnly}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func asTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		return parseDate(t)
	}
	return time.Time{}, false
}

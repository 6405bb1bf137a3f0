package collection

import (
	"cmp"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

type Direction string

const (
	Unsorted   Direction = ""
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// SortConfig is the sort state of one list view. Key is empty whenever
// Direction is Unsorted.
type SortConfig struct {
	Key       string    `json:"key,omitempty"`
	Direction Direction `json:"direction,omitempty"`
}

func (c SortConfig) Active() bool {
	return c.Key != "" && c.Direction != Unsorted
}

// RequestSort returns the configuration after the user selects key:
// a new key sorts ascending, then descending, then unsorted.
func RequestSort(cfg SortConfig, key string) SortConfig {
	if cfg.Key != key {
		return SortConfig{Key: key, Direction: Ascending}
	}
	switch cfg.Direction {
	case Ascending:
		return SortConfig{Key: key, Direction: Descending}
	case Descending:
		return SortConfig{}
	default:
		return SortConfig{Key: key, Direction: Ascending}
	}
}

// Accessor extracts the sortable value of a field. A nil result (or a nil
// pointer) marks the value as absent.
type Accessor[T any] func(item T) any

// Comparator orders two items for one key, in ascending order.
type Comparator[T any] func(a, b T) int

// Accessors describes the sortable keys of a collection. A comparator
// registered for a key takes precedence over its accessor.
type Accessors[T any] struct {
	Fields      map[string]Accessor[T]
	Comparators map[string]Comparator[T]
}

func (a Accessors[T]) Has(key string) bool {
	if _, ok := a.Comparators[key]; ok {
		return true
	}
	_, ok := a.Fields[key]
	return ok
}

// Sort returns a sorted copy of items. The input is never modified and
// equal elements keep their relative order. Keys with neither a comparator
// nor an accessor leave the order untouched.
func Sort[T any](items []T, cfg SortConfig, acc Accessors[T]) []T {
	out := slices.Clone(items)
	if !cfg.Active() {
		return out
	}

	sign := 1
	if cfg.Direction == Descending {
		sign = -1
	}

	if custom, ok := acc.Comparators[cfg.Key]; ok {
		slices.SortStableFunc(out, func(a, b T) int {
			return sign * custom(a, b)
		})
		return out
	}

	field, ok := acc.Fields[cfg.Key]
	if !ok {
		return out
	}

	// A collator keeps per-instance buffers, so each sort gets its own.
	col := collate.New(language.Und, collate.IgnoreCase)
	slices.SortStableFunc(out, func(a, b T) int {
		av, bv := deref(field(a)), deref(field(b))
		switch {
		case av == nil && bv == nil:
			return 0
		case av == nil:
			return 1
		case bv == nil:
			return -1
		}
		return sign * compareValues(col, av, bv)
	})
	return out
}

// CompareValues orders two present values the way Sort does.
func CompareValues(a, b any) int {
	return compareValues(collate.New(language.Und, collate.IgnoreCase), a, b)
}

func compareValues(col *collate.Collator, a, b any) int {
	as, aStr := a.(string)
	bs, bStr := b.(string)
	if aStr && bStr {
		return col.CompareString(strings.ToLower(as), strings.ToLower(bs))
	}

	an, aNum := toFloat(a)
	bn, bNum := toFloat(b)
	if aNum && bNum {
		return cmp.Compare(an, bn)
	}

	return col.CompareString(fmt.Sprint(a), fmt.Sprint(b))
}

func deref(v any) any {
	if v == nil {
		return nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer {
		return v
	}
	if rv.IsNil() {
		return nil
	}
	return rv.Elem().Interface()
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

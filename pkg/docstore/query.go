package docstore

import (
	"encoding/json"
	"math/big"
	"reflect"
	"sort"
	"strings"
)

type hit struct {
	rec  Record
	data map[string]any
}

// matches reports whether every constraint equals the field of the same name.
func matches(data map[string]any, constraints map[string]any) bool {
	for field, want := range constraints {
		got, ok := data[field]
		if !ok {
			return false
		}
		if !valuesEqual(got, want) {
			return false
		}
	}
	return true
}

// valuesEqual compares decoded JSON values. Numbers compare by value, so
// 2 and 2.0 are equal.
func valuesEqual(a, b any) bool {
	switch av := a.(type) {
	case json.Number:
		bv, ok := b.(json.Number)
		return ok && compareNumbers(av, bv) == 0
	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			w, ok := bv[k]
			if !ok || !valuesEqual(v, w) {
				return false
			}
		}
		return true
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !valuesEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	}
	return reflect.DeepEqual(a, b)
}

// compareNumbers compares two JSON numbers exactly. Unparseable numbers fall
// back to comparing their text.
func compareNumbers(a, b json.Number) int {
	if a == b {
		return 0
	}
	ar, aok := new(big.Rat).SetString(a.String())
	br, bok := new(big.Rat).SetString(b.String())
	if !aok || !bok {
		return strings.Compare(a.String(), b.String())
	}
	return ar.Cmp(br)
}

// sortHits orders hits by the orderBy field. A leading "-" sorts descending.
// Documents missing the field sort last in either direction.
func sortHits(hits []hit, orderBy string) {
	orderBy = strings.TrimSpace(orderBy)
	if orderBy == "" {
		return
	}
	desc := strings.HasPrefix(orderBy, "-")
	field := strings.TrimPrefix(orderBy, "-")

	sort.SliceStable(hits, func(i, j int) bool {
		a, aok := hits[i].data[field]
		b, bok := hits[j].data[field]
		switch {
		case !aok && !bok:
			return false
		case !aok:
			return false
		case !bok:
			return true
		}
		c := compareValues(a, b)
		if desc {
			return c > 0
		}
		return c < 0
	})
}

// typeRank groups JSON value kinds so mixed-type fields still sort
// deterministically: null < bool < number < string < other.
func typeRank(v any) int {
	switch v.(type) {
	case nil:
		return 0
	case bool:
		return 1
	case json.Number:
		return 2
	case string:
		return 3
	default:
		return 4
	}
}

func compareValues(a, b any) int {
	ra, rb := typeRank(a), typeRank(b)
	if ra != rb {
		if ra < rb {
			return -1
		}
		return 1
	}

	switch av := a.(type) {
	case bool:
		bv := b.(bool)
		switch {
		case av == bv:
			return 0
		case !av:
			return -1
		default:
			return 1
		}
	case json.Number:
		return compareNumbers(av, b.(json.Number))
	case string:
		return strings.Compare(av, b.(string))
	}
	return 0
}

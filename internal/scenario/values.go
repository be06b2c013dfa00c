package scenario

import (
	"math"
	"reflect"

	"github.com/vango-dev/reactive/pkg/proxy"
)

// plain converts containers to plain values for traces and comparisons.
func plain(v any) any {
	if p, ok := v.(proxy.Proxy); ok {
		return proxy.Snapshot(p)
	}
	return v
}

// normalize maps every number to float64 so that YAML integers compare equal
// to the same values stored by the engine as floats, and vice versa.
func normalize(v any) any {
	switch x := v.(type) {
	case int:
		return float64(x)
	case int64:
		return float64(x)
	case uint64:
		return float64(x)
	case float32:
		return float64(x)
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = normalize(e)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = normalize(e)
		}
		return out
	case proxy.Proxy:
		return normalize(proxy.Snapshot(x))
	}
	return v
}

// sameValue compares an observed value with an expected one.
func sameValue(got, want any) bool {
	g, w := normalize(got), normalize(want)
	if gf, ok := g.(float64); ok {
		if wf, ok := w.(float64); ok && math.IsNaN(gf) && math.IsNaN(wf) {
			return true
		}
	}
	return reflect.DeepEqual(g, w)
}

func sameValues(got, want []any) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if !sameValue(got[i], want[i]) {
			return false
		}
	}
	return true
}

// sum adds the numeric values among vs. The result is an int unless a float
// was seen.
func sum(vs []any) any {
	var (
		ints     int
		floats   float64
		useFloat bool
	)
	for _, v := range vs {
		switch x := v.(type) {
		case int:
			ints += x
		case int64:
			ints += int(x)
		case float64:
			floats += x
			useFloat = true
		}
	}
	if useFloat {
		return floats + float64(ints)
	}
	return ints
}

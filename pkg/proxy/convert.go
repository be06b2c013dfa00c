package proxy

import "reflect"

// From wraps plain map[string]any and []any values (recursively) into
// containers of the default realm. Other values are returned unchanged.
func From(v any) any {
	return Default().From(v)
}

// From wraps plain map[string]any and []any values into containers of r.
func (r *Realm) From(v any) any {
	return r.wrap(v, make(map[uintptr]Proxy))
}

func (r *Realm) wrap(v any, seen map[uintptr]Proxy) any {
	switch x := v.(type) {
	case map[string]any:
		if x == nil {
			return v
		}
		if p, ok := seen[mapPointer(x)]; ok {
			return p
		}
		return r.newObject(x, seen)
	case []any:
		return r.newList(x, seen)
	default:
		return v
	}
}

func mapPointer(m map[string]any) uintptr {
	return reflect.ValueOf(m).Pointer()
}

// Snapshot deep-copies p into plain values: Objects become map[string]any and
// Lists become []any. No reads are announced. A container reachable from
// itself maps to the same copy, so cyclic graphs terminate.
func Snapshot(p Proxy) any {
	return snapshot(p, make(map[Proxy]any))
}

func snapshot(v any, seen map[Proxy]any) any {
	p, ok := v.(Proxy)
	if !ok {
		return v
	}
	if out, ok := seen[p]; ok {
		return out
	}

	switch c := p.(type) {
	case *Object:
		out := make(map[string]any)
		seen[p] = out
		for _, k := range c.Keys() {
			val, _ := c.Peek(k)
			out[k] = snapshot(val, seen)
		}
		return out
	case *List:
		keys := c.Keys()
		out := make([]any, len(keys))
		seen[p] = out
		for i, k := range keys {
			val, _ := c.Peek(k)
			out[i] = snapshot(val, seen)
		}
		return out
	default:
		return v
	}
}

package scenario

import (
	"strconv"
	"strings"

	"github.com/vango-dev/reactive/internal/errors"
	"github.com/vango-dev/reactive/pkg/proxy"
)

func segments(path string) []string {
	return strings.Split(path, ".")
}

// read follows path from root with announced reads, so a watch reading it
// depends on every container along the way. Missing segments read as nil.
func read(root proxy.Proxy, path string) any {
	var cur any = root
	for _, seg := range segments(path) {
		switch c := cur.(type) {
		case *proxy.Object:
			cur = c.Get(seg)
		case *proxy.List:
			if seg == proxy.LengthKey {
				cur = c.Len()
				continue
			}
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 {
				return nil
			}
			cur = c.Get(i)
		default:
			return nil
		}
	}
	return cur
}

// lookup follows path from root without announcing reads.
func lookup(root proxy.Proxy, path string) (any, bool) {
	var cur any = root
	for _, seg := range segments(path) {
		c, ok := cur.(proxy.Proxy)
		if !ok {
			return nil, false
		}
		if cur, ok = c.Peek(seg); !ok {
			return nil, false
		}
	}
	return cur, true
}

// parent returns the container holding the last segment of path, and that
// segment.
func parent(root proxy.Proxy, path string) (proxy.Proxy, string, error) {
	segs := segments(path)
	key := segs[len(segs)-1]
	if len(segs) == 1 {
		return root, key, nil
	}
	v, ok := lookup(root, strings.Join(segs[:len(segs)-1], "."))
	c, isContainer := v.(proxy.Proxy)
	if !ok || !isContainer {
		return nil, "", notFound(path)
	}
	return c, key, nil
}

func list(root proxy.Proxy, path string) (*proxy.List, error) {
	v, _ := lookup(root, path)
	l, ok := v.(*proxy.List)
	if !ok {
		return nil, errors.New("R204").WithDetailf("%s is not a list", path)
	}
	return l, nil
}

func index(path, key string) (int, error) {
	i, err := strconv.Atoi(key)
	if err != nil || i < 0 {
		return 0, errors.New("R204").WithDetailf("%s: %q is not a list index", path, key)
	}
	return i, nil
}

func notFound(path string) *errors.Error {
	return errors.New("R204").WithDetailf("%s does not lead to a container", path)
}

func assign(root proxy.Proxy, path string, value any) error {
	c, key, err := parent(root, path)
	if err != nil {
		return err
	}
	switch t := c.(type) {
	case *proxy.Object:
		t.Set(key, value)
	case *proxy.List:
		i, err := index(path, key)
		if err != nil {
			return err
		}
		t.Set(i, value)
	default:
		return notFound(path)
	}
	return nil
}

func remove(root proxy.Proxy, path string) error {
	c, key, err := parent(root, path)
	if err != nil {
		return err
	}
	switch t := c.(type) {
	case *proxy.Object:
		t.Delete(key)
	case *proxy.List:
		i, err := index(path, key)
		if err != nil {
			return err
		}
		t.Remove(i)
	default:
		return notFound(path)
	}
	return nil
}

func push(root proxy.Proxy, path string, value any) error {
	l, err := list(root, path)
	if err != nil {
		return err
	}
	l.Push(value)
	return nil
}

func shift(root proxy.Proxy, path string) error {
	l, err := list(root, path)
	if err != nil {
		return err
	}
	l.Shift()
	return nil
}

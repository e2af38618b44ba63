package engine

import (
	"reflect"
	"strconv"
	"strings"
)

// frame is one level of the context stack. The root frame holds the render
// context; every #each iteration pushes a loop frame holding the element.
type frame struct {
	value  any
	loop   bool
	index  int
	length int
}

type scope []frame

func (s scope) push(f frame) scope {
	return append(s[:len(s):len(s)], f)
}

func (s scope) innermostLoop() (frame, bool) {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i].loop {
			return s[i], true
		}
	}
	return frame{}, false
}

// resolve looks up a dotted path. Only the first segment is searched from the
// innermost frame outward; the rest of the path is resolved strictly inside the
// value found. A miss anywhere yields ok == false.
func (s scope) resolve(segs []string) (any, bool) {
	if len(segs) == 0 || len(s) == 0 {
		return nil, false
	}

	head, rest := segs[0], segs[1:]
	var cur any
	switch {
	case head == "this":
		f, ok := s.innermostLoop()
		if !ok {
			return nil, false
		}
		cur = f.value
	case head == "@root":
		cur = s[0].value
	case strings.HasPrefix(head, "@"):
		f, ok := s.innermostLoop()
		if !ok || len(rest) > 0 {
			return nil, false
		}
		switch head {
		case "@index":
			return f.index, true
		case "@first":
			return f.index == 0, true
		case "@last":
			return f.index == f.length-1, true
		}
		return nil, false
	default:
		found := false
		for i := len(s) - 1; i >= 0; i-- {
			if v, ok := lookup(s[i].value, head); ok {
				cur, found = v, true
				break
			}
		}
		if !found {
			return nil, false
		}
	}

	for _, seg := range rest {
		v, ok := lookup(cur, seg)
		if !ok {
			return nil, false
		}
		cur = v
	}
	return cur, true
}

// Resolve looks up a dotted path against a root context, outside of any loop.
func Resolve(path string, ctx any) (any, bool) {
	segs, err := splitPath(path)
	if err != nil {
		return nil, false
	}
	return scope{{value: ctx}}.resolve(segs)
}

// lookup indexes into plain data only: maps with string keys and sequences.
// Struct fields and methods are never consulted.
func lookup(v any, key string) (any, bool) {
	switch m := v.(type) {
	case nil:
		return nil, false
	case map[string]any:
		val, ok := m[key]
		return val, ok
	case map[string]string:
		val, ok := m[key]
		return val, ok
	case []any:
		if key == "length" {
			return len(m), true
		}
		i, ok := sequenceIndex(key, len(m))
		if !ok {
			return nil, false
		}
		return m[i], true
	case []map[string]any:
		if key == "length" {
			return len(m), true
		}
		i, ok := sequenceIndex(key, len(m))
		if !ok {
			return nil, false
		}
		return m[i], true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		val := rv.MapIndex(reflect.ValueOf(key).Convert(rv.Type().Key()))
		if !val.IsValid() {
			return nil, false
		}
		return val.Interface(), true
	case reflect.Slice, reflect.Array:
		if key == "length" {
			return rv.Len(), true
		}
		i, ok := sequenceIndex(key, rv.Len())
		if !ok {
			return nil, false
		}
		return rv.Index(i).Interface(), true
	}
	return nil, false
}

func sequenceIndex(key string, n int) (int, bool) {
	i, err := strconv.Atoi(key)
	if err != nil || i < 0 || i >= n {
		return 0, false
	}
	return i, true
}

// toList returns the elements of v when it is a sequence.
func toList(v any) ([]any, bool) {
	switch l := v.(type) {
	case nil:
		return nil, false
	case []any:
		return l, true
	case []map[string]any:
		out := make([]any, len(l))
		for i := range l {
			out[i] = l[i]
		}
		return out, true
	case string:
		return nil, false
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

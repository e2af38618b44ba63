package engine

import (
	"encoding/json"
	"errors"
	"html"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"
)

type renderer struct {
	limits     Limits
	out        strings.Builder
	iterations int
}

// Render evaluates a parsed tree against data. It only fails with a
// *LimitError: missing paths, wrong shapes and helper failures render blank.
func (e *Engine) Render(tree *Tree, data any) (string, error) {
	if tree == nil {
		return "", errors.New("engine: render of nil tree")
	}
	r := &renderer{limits: e.limits}
	if err := r.walk(tree.Nodes, scope{{value: data}}, 0); err != nil {
		return "", err
	}
	return r.out.String(), nil
}

func (r *renderer) walk(nodes []Node, sc scope, depth int) error {
	if depth > r.limits.MaxDepth {
		return &LimitError{Limit: "block nesting depth", Max: r.limits.MaxDepth}
	}
	for _, n := range nodes {
		switch n := n.(type) {
		case *TextNode:
			r.out.WriteString(n.Text)
		case *OutputNode:
			r.out.WriteString(html.EscapeString(stringify(r.eval(n.Arg, sc))))
		case *HelperNode:
			r.out.WriteString(r.callHelper(n, sc))
		case *BlockNode:
			if err := r.block(n, sc, depth); err != nil {
				return err
			}
		}
		if r.out.Len() > r.limits.MaxOutputBytes {
			return &LimitError{Limit: "output size", Max: r.limits.MaxOutputBytes}
		}
	}
	return nil
}

func (r *renderer) block(n *BlockNode, sc scope, depth int) error {
	var cond bool
	switch n.Kind {
	case BlockIf:
		cond = truthy(r.eval(n.Args[0], sc))
	case BlockIfEquals:
		cond = Equal(r.eval(n.Args[0], sc), r.eval(n.Args[1], sc))
	case BlockGt:
		cond = Greater(r.eval(n.Args[0], sc), r.eval(n.Args[1], sc))
	case BlockEach:
		return r.each(n, sc, depth)
	default:
		return nil
	}
	if cond {
		return r.walk(n.Body, sc, depth+1)
	}
	return r.walk(n.Else, sc, depth+1)
}

func (r *renderer) each(n *BlockNode, sc scope, depth int) error {
	items, ok := toList(r.eval(n.Args[0], sc))
	if !ok || len(items) == 0 {
		return r.walk(n.Else, sc, depth+1)
	}
	for i, item := range items {
		r.iterations++
		if r.iterations > r.limits.MaxIterations {
			return &LimitError{Limit: "loop iterations", Max: r.limits.MaxIterations}
		}
		inner := sc.push(frame{value: item, loop: true, index: i, length: len(items)})
		if err := r.walk(n.Body, inner, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func (r *renderer) eval(a Arg, sc scope) any {
	if a.Kind == ArgLiteral {
		return a.Value
	}
	v, _ := sc.resolve(a.Segments)
	return v
}

// callHelper isolates a failing helper to its own interpolation.
func (r *renderer) callHelper(n *HelperNode, sc scope) (out string) {
	fn, ok := helpers[n.Name]
	if !ok {
		return ""
	}
	defer func() {
		if recover() != nil {
			out = ""
		}
	}()

	args := make([]any, len(n.Args))
	for i, a := range n.Args {
		args[i] = r.eval(a, sc)
	}
	var named map[string]any
	if len(n.Named) > 0 {
		named = make(map[string]any, len(n.Named))
		for k, a := range n.Named {
			named[k] = r.eval(a, sc)
		}
	}
	return stringify(fn(args, named))
}

// truthy: defined, non-null, non-empty string, non-zero number, non-empty
// sequence. Maps are truthy.
func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case []any:
		return len(x) > 0
	}
	if f, ok := numberValue(v); ok {
		return f != 0 && !math.IsNaN(f)
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return rv.Len() > 0
	case reflect.Map, reflect.Pointer:
		return !rv.IsNil()
	}
	return true
}

func stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return formatNumber(x)
	case json.Number:
		return x.String()
	case time.Time:
		return x.UTC().Format(time.RFC3339)
	case []any:
		parts := make([]string, len(x))
		for i, item := range x {
			parts[i] = stringify(item)
		}
		return strings.Join(parts, ",")
	}
	if f, ok := numberValue(v); ok {
		return formatNumber(f)
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.String {
		return rv.String()
	}
	if list, ok := toList(v); ok {
		return stringify(list)
	}
	return ""
}

func formatNumber(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return ""
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Package engine parses and renders contract templates.
//
// Templates are HTML with {{...}} directives: plain interpolation
// ({{client.email}}), helper calls ({{currency contract.totalTTC}}) and the
// blocks #if, #each, #ifEquals and #gt with an optional {{else}}. Parsing
// and rendering are pure functions over immutable input; an *Engine only
// carries its Limits and is safe for concurrent use.
package engine

// Engine parses, validates and renders templates under fixed Limits.
type Engine struct {
	limits Limits
}

func New(limits Limits) *Engine {
	return &Engine{limits: limits.withDefaults()}
}

func (e *Engine) Limits() Limits {
	return e.limits
}

// Parse builds the node tree for src. It returns ParseErrors when the
// template is structurally invalid, or a *LimitError when blocks nest deeper
// than the configured maximum.
func (e *Engine) Parse(src string) (*Tree, error) {
	p := newParser(src, e.limits)
	p.run()
	if p.limit != nil {
		return nil, p.limit
	}
	if len(p.errs) > 0 {
		return nil, p.errs
	}
	return &Tree{Nodes: p.root}, nil
}

// RenderString parses and renders src in one step.
func (e *Engine) RenderString(src string, data any) (string, error) {
	tree, err := e.Parse(src)
	if err != nil {
		return "", err
	}
	return e.Render(tree, data)
}

var defaultEngine = New(DefaultLimits())

func Parse(src string) (*Tree, error) { return defaultEngine.Parse(src) }

func Render(tree *Tree, data any) (string, error) { return defaultEngine.Render(tree, data) }

func RenderString(src string, data any) (string, error) { return defaultEngine.RenderString(src, data) }

func Validate(src string) ValidationResult { return defaultEngine.Validate(src) }

package services

import (
	"DR-CONTRACTS/internal/cache"
	"DR-CONTRACTS/internal/engine"
	"DR-CONTRACTS/internal/rendercontext"
	"DR-CONTRACTS/internal/sanitize"
)

// Renderer renders template content through a shared parsed-tree cache and
// sanitizes the result.
type Renderer struct {
	engine *engine.Engine
	trees  *cache.TreeCache
}

func NewRenderer(limits engine.Limits, cacheSize int) *Renderer {
	eng := engine.New(limits)
	return &Renderer{
		engine: eng,
		trees:  cache.New(cacheSize, eng.Parse),
	}
}

// Render returns sanitized HTML. Errors are engine.ParseErrors for invalid
// content or a *engine.LimitError.
func (r *Renderer) Render(content string, data map[string]any) (string, error) {
	tree, err := r.trees.Get(content)
	if err != nil {
		return "", err
	}
	out, err := r.engine.Render(tree, data)
	if err != nil {
		return "", err
	}
	return sanitize.HTML(out), nil
}

func (r *Renderer) Validate(content string) engine.ValidationResult {
	return r.engine.Validate(content)
}

// Variables lists the context paths content refers to. Inside loops, names
// that are not render context roots are reported as element fields.
func (r *Renderer) Variables(content string) ([]string, error) {
	tree, err := r.trees.Get(content)
	if err != nil {
		return nil, err
	}
	return engine.VariablesWithRoots(tree, rendercontext.RootKeys()), nil
}

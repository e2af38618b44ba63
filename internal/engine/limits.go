package engine

const (
	DefaultMaxDepth       = 64
	DefaultMaxIterations  = 10000
	DefaultMaxOutputBytes = 4 << 20
)

// Limits bounds the work a single tenant-authored template may cause.
// Zero fields fall back to the defaults.
type Limits struct {
	// MaxDepth bounds block nesting, checked at parse and render time.
	MaxDepth int
	// MaxIterations bounds the total number of #each iterations in one render.
	MaxIterations int
	// MaxOutputBytes bounds the size of the rendered output.
	MaxOutputBytes int
}

func DefaultLimits() Limits {
	return Limits{
		MaxDepth:       DefaultMaxDepth,
		MaxIterations:  DefaultMaxIterations,
		MaxOutputBytes: DefaultMaxOutputBytes,
	}
}

func (l Limits) withDefaults() Limits {
	if l.MaxDepth <= 0 {
		l.MaxDepth = DefaultMaxDepth
	}
	if l.MaxIterations <= 0 {
		l.MaxIterations = DefaultMaxIterations
	}
	if l.MaxOutputBytes <= 0 {
		l.MaxOutputBytes = DefaultMaxOutputBytes
	}
	return l
}

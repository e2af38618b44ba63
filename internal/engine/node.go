package engine

// Node is one element of a parsed template. The concrete types are
// *TextNode, *OutputNode, *HelperNode and *BlockNode.
type Node interface {
	Offset() int
}

// Tree is the parsed form of a template. It is never mutated after Parse
// returns and may be shared between goroutines.
type Tree struct {
	Nodes []Node
}

// TextNode is literal template text, emitted verbatim.
type TextNode struct {
	Pos  int
	Text string
}

func (n *TextNode) Offset() int { return n.Pos }

// OutputNode is a plain interpolation such as {{client.email}}. Its value is
// HTML-escaped on output.
type OutputNode struct {
	Pos int
	Arg Arg
}

func (n *OutputNode) Offset() int { return n.Pos }

// HelperNode is a helper invocation such as {{currency contract.totalTTC}}.
// Helper output is written without escaping.
type HelperNode struct {
	Pos   int
	Name  string
	Args  []Arg
	Named map[string]Arg
}

func (n *HelperNode) Offset() int { return n.Pos }

// BlockKind identifies a block directive.
type BlockKind int

const (
	blockUnknown BlockKind = iota
	BlockIf
	BlockEach
	BlockIfEquals
	BlockGt
)

var blockKinds = map[string]BlockKind{
	"if":       BlockIf,
	"each":     BlockEach,
	"ifEquals": BlockIfEquals,
	"gt":       BlockGt,
}

var blockArity = map[BlockKind]int{
	BlockIf:       1,
	BlockEach:     1,
	BlockIfEquals: 2,
	BlockGt:       2,
}

func (k BlockKind) String() string {
	switch k {
	case BlockIf:
		return "if"
	case BlockEach:
		return "each"
	case BlockIfEquals:
		return "ifEquals"
	case BlockGt:
		return "gt"
	}
	return "unknown"
}

// BlockNode is a {{#name args}}...{{else}}...{{/name}} section.
type BlockNode struct {
	Pos     int
	Kind    BlockKind
	Name    string
	Args    []Arg
	Body    []Node
	Else    []Node
	HasElse bool
}

func (n *BlockNode) Offset() int { return n.Pos }

// ArgKind distinguishes context lookups from literal values.
type ArgKind int

const (
	ArgPath ArgKind = iota
	ArgLiteral
)

// Arg is a directive argument: either a dotted path resolved against the
// context, or a literal string, number, boolean or null.
type Arg struct {
	Kind     ArgKind
	Path     string
	Segments []string
	Value    any
}

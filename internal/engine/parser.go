package engine

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode"
)

type tagKind int

const (
	tagExpr tagKind = iota
	tagComment
	tagRaw
)

type openBlock struct {
	node   *BlockNode
	inElse bool
}

// parser builds a Tree and collects every structural error instead of
// stopping at the first one, so the validator can report them all.
type parser struct {
	src    string
	limits Limits
	root   []Node
	stack  []*openBlock
	errs   ParseErrors
	limit  *LimitError
}

func newParser(src string, limits Limits) *parser {
	return &parser{src: src, limits: limits.withDefaults()}
}

func (p *parser) run() {
	pos := 0
	for pos < len(p.src) {
		i := strings.Index(p.src[pos:], "{{")
		if i < 0 {
			p.text(pos, p.src[pos:])
			break
		}
		start := pos + i
		if start > pos {
			p.text(pos, p.src[pos:start])
		}

		end, inner, kind, msg := scanTag(p.src, start)
		if msg != "" {
			p.errorf(start, "", "%s", msg)
			pos = end
			continue
		}
		switch kind {
		case tagComment:
		case tagRaw:
			p.errorf(start, "", "raw output {{{%s}}} is not supported, use {{%s}}",
				strings.TrimSpace(inner), strings.TrimSpace(inner))
		default:
			p.tag(start, inner)
		}
		pos = end
	}

	for i := len(p.stack) - 1; i >= 0; i-- {
		b := p.stack[i].node
		p.errorf(b.Pos, b.Name, "unterminated {{#%s}} block, expected {{/%s}}", b.Name, b.Name)
	}
	p.stack = nil

	sort.SliceStable(p.errs, func(i, j int) bool { return p.errs[i].Offset < p.errs[j].Offset })
}

// scanTag finds the end of the tag opening at start. It returns the offset
// just past the closing delimiter and the text between the delimiters. On a
// malformed tag msg is set and end is where scanning should resume.
func scanTag(src string, start int) (end int, inner string, kind tagKind, msg string) {
	rest := src[start:]
	switch {
	case strings.HasPrefix(rest, "{{!--"):
		j := strings.Index(rest[5:], "--}}")
		if j < 0 {
			return len(src), "", tagComment, `unterminated comment, missing "--}}"`
		}
		return start + 5 + j + 4, rest[5 : 5+j], tagComment, ""
	case strings.HasPrefix(rest, "{{!"):
		j := strings.Index(rest[3:], "}}")
		if j < 0 {
			return len(src), "", tagComment, `unterminated comment, missing "}}"`
		}
		return start + 3 + j + 2, rest[3 : 3+j], tagComment, ""
	case strings.HasPrefix(rest, "{{{"):
		j := strings.Index(rest[3:], "}}}")
		if j < 0 {
			return start + 3, "", tagRaw, `unterminated tag, missing "}}}"`
		}
		return start + 3 + j + 3, rest[3 : 3+j], tagRaw, ""
	}

	var quote byte
	for i := 2; i < len(rest); i++ {
		c := rest[i]
		if quote != 0 {
			if c == '\\' {
				i++
				continue
			}
			if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'':
			quote = c
		case '{':
			if i+1 < len(rest) && rest[i+1] == '{' {
				return start + i, "", tagExpr, `unterminated tag, missing "}}"`
			}
		case '}':
			if i+1 < len(rest) && rest[i+1] == '}' {
				return start + i + 2, rest[2:i], tagExpr, ""
			}
		}
	}
	return len(src), "", tagExpr, `unterminated tag, missing "}}"`
}

func (p *parser) tag(start int, inner string) {
	content := strings.TrimSpace(inner)
	switch {
	case content == "":
		p.errorf(start, "", "empty tag {{}}")
	case content[0] == '#':
		p.openBlock(start, strings.TrimSpace(content[1:]))
	case content[0] == '/':
		p.closeBlock(start, strings.TrimSpace(content[1:]))
	case content == "else":
		p.elseTag(start)
	case isElseWithArgs(content):
		p.errorf(start, "else", "{{else}} does not take arguments, chained {{else if}} is not supported")
	default:
		p.expression(start, content)
	}
}

func (p *parser) openBlock(start int, content string) {
	name, rest := cutField(content)
	if name == "" {
		p.errorf(start, "", "missing block name after {{#")
		return
	}

	node := &BlockNode{Pos: start, Name: name}
	kind, ok := blockKinds[name]
	if !ok {
		p.errorf(start, name, "unknown block type {{#%s}}", name)
	} else {
		node.Kind = kind
		args, named, err := parseArgs(rest)
		switch {
		case err != nil:
			p.errorf(start, name, "invalid {{#%s}} argument: %v", name, err)
		case len(named) > 0:
			p.errorf(start, name, "{{#%s}} does not accept named arguments", name)
		case len(args) != blockArity[kind]:
			p.errorf(start, name, "{{#%s}} expects %d argument(s), got %d", name, blockArity[kind], len(args))
		default:
			node.Args = args
		}
	}

	if len(p.stack) >= p.limits.MaxDepth && p.limit == nil {
		p.limit = &LimitError{Limit: "block nesting depth", Max: p.limits.MaxDepth}
		p.errorf(start, name, "block nesting exceeds the maximum depth of %d", p.limits.MaxDepth)
	}

	if node.Kind != blockUnknown {
		p.append(node)
	}
	p.stack = append(p.stack, &openBlock{node: node})
}

func (p *parser) closeBlock(start int, name string) {
	if name == "" {
		p.errorf(start, "", "missing block name after {{/")
		return
	}
	if len(p.stack) == 0 {
		p.errorf(start, name, "unexpected {{/%s}}, no block is open", name)
		return
	}

	top := p.stack[len(p.stack)-1].node
	if top.Name == name {
		p.stack = p.stack[:len(p.stack)-1]
		return
	}

	for j := len(p.stack) - 2; j >= 0; j-- {
		if p.stack[j].node.Name != name {
			continue
		}
		for k := len(p.stack) - 1; k > j; k-- {
			b := p.stack[k].node
			p.errorf(b.Pos, b.Name, "unterminated {{#%s}} block, expected {{/%s}} before {{/%s}}", b.Name, b.Name, name)
		}
		p.stack = p.stack[:j]
		return
	}

	p.errorf(start, name, "{{/%s}} does not match the open {{#%s}} block", name, top.Name)
	p.stack = p.stack[:len(p.stack)-1]
}

func (p *parser) elseTag(start int) {
	if len(p.stack) == 0 {
		p.errorf(start, "else", "{{else}} outside of a block")
		return
	}
	top := p.stack[len(p.stack)-1]
	if top.inElse {
		p.errorf(start, "else", "duplicate {{else}} in {{#%s}} block", top.node.Name)
		return
	}
	top.inElse = true
	top.node.HasElse = true
}

func (p *parser) expression(start int, content string) {
	args, named, err := parseArgs(content)
	if err != nil {
		p.errorf(start, "", "invalid expression {{%s}}: %v", content, err)
		return
	}
	if len(args) == 0 {
		p.errorf(start, "", "invalid expression {{%s}}: missing value", content)
		return
	}

	first := args[0]
	if len(args) > 1 || len(named) > 0 || (first.Kind == ArgPath && isHelper(first.Path)) {
		if first.Kind != ArgPath {
			p.errorf(start, "", "invalid expression {{%s}}: expected a helper name", content)
			return
		}
		p.append(&HelperNode{Pos: start, Name: first.Path, Args: args[1:], Named: named})
		return
	}
	p.append(&OutputNode{Pos: start, Arg: first})
}

func (p *parser) text(pos int, s string) {
	if s == "" {
		return
	}
	p.append(&TextNode{Pos: pos, Text: s})
}

func (p *parser) append(n Node) {
	if len(p.stack) == 0 {
		p.root = append(p.root, n)
		return
	}
	top := p.stack[len(p.stack)-1]
	if top.inElse {
		top.node.Else = append(top.node.Else, n)
	} else {
		top.node.Body = append(top.node.Body, n)
	}
}

func (p *parser) errorf(offset int, directive, format string, args ...any) {
	line, col := position(p.src, offset)
	p.errs = append(p.errs, &ParseError{
		Directive: directive,
		Message:   fmt.Sprintf(format, args...),
		Offset:    offset,
		Line:      line,
		Column:    col,
	})
}

func isElseWithArgs(content string) bool {
	name, rest := cutField(content)
	return name == "else" && rest != ""
}

func cutField(s string) (field, rest string) {
	s = strings.TrimSpace(s)
	if i := strings.IndexFunc(s, unicode.IsSpace); i >= 0 {
		return s[:i], strings.TrimSpace(s[i:])
	}
	return s, ""
}

func parseArgs(s string) ([]Arg, map[string]Arg, error) {
	fields, err := splitFields(s)
	if err != nil {
		return nil, nil, err
	}

	var args []Arg
	var named map[string]Arg
	for _, f := range fields {
		if key, val, ok := namedField(f); ok {
			a, err := parseArg(val)
			if err != nil {
				return nil, nil, fmt.Errorf("%s: %w", key, err)
			}
			if named == nil {
				named = make(map[string]Arg)
			}
			named[key] = a
			continue
		}
		a, err := parseArg(f)
		if err != nil {
			return nil, nil, err
		}
		args = append(args, a)
	}
	return args, named, nil
}

// splitFields splits on whitespace, keeping quoted strings together.
func splitFields(s string) ([]string, error) {
	var fields []string
	var b strings.Builder
	var quote byte
	inField := false

	for i := 0; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			b.WriteByte(c)
			if c == '\\' && i+1 < len(s) {
				i++
				b.WriteByte(s[i])
				continue
			}
			if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case ' ', '\t', '\n', '\r':
			if inField {
				fields = append(fields, b.String())
				b.Reset()
				inField = false
			}
		case '"', '\'':
			quote = c
			inField = true
			b.WriteByte(c)
		default:
			inField = true
			b.WriteByte(c)
		}
	}
	if quote != 0 {
		return nil, errors.New("unterminated string literal")
	}
	if inField {
		fields = append(fields, b.String())
	}
	return fields, nil
}

func namedField(f string) (key, val string, ok bool) {
	eq := strings.IndexByte(f, '=')
	if eq <= 0 {
		return "", "", false
	}
	if q := strings.IndexAny(f, `"'`); q >= 0 && q < eq {
		return "", "", false
	}
	key = f[:eq]
	for i, r := range key {
		if !(unicode.IsLetter(r) || r == '_' || (i > 0 && unicode.IsDigit(r))) {
			return "", "", false
		}
	}
	return key, f[eq+1:], true
}

func parseArg(tok string) (Arg, error) {
	if tok == "" {
		return Arg{}, errors.New("missing value")
	}
	switch tok[0] {
	case '"', '\'':
		s, err := unquote(tok)
		if err != nil {
			return Arg{}, err
		}
		return Arg{Kind: ArgLiteral, Value: s}, nil
	case '(':
		return Arg{}, errors.New("subexpressions are not supported")
	}

	switch tok {
	case "true":
		return Arg{Kind: ArgLiteral, Value: true}, nil
	case "false":
		return Arg{Kind: ArgLiteral, Value: false}, nil
	case "null", "undefined":
		return Arg{Kind: ArgLiteral, Value: nil}, nil
	}

	if c := tok[0]; c == '-' || c == '+' || c == '.' || (c >= '0' && c <= '9') {
		if f, err := strconv.ParseFloat(tok, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
			return Arg{Kind: ArgLiteral, Value: f}, nil
		}
	}

	segs, err := splitPath(tok)
	if err != nil {
		return Arg{}, err
	}
	if segs[0] == "else" {
		return Arg{}, errors.New("else is a reserved word")
	}
	return Arg{Kind: ArgPath, Path: tok, Segments: segs}, nil
}

func unquote(tok string) (string, error) {
	q := tok[0]
	if len(tok) < 2 || tok[len(tok)-1] != q {
		return "", fmt.Errorf("malformed string literal %s", tok)
	}
	body := tok[1 : len(tok)-1]
	if !strings.ContainsRune(body, '\\') {
		return body, nil
	}

	var b strings.Builder
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' || i+1 == len(body) {
			b.WriteByte(c)
			continue
		}
		i++
		switch body[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		default:
			b.WriteByte(body[i])
		}
	}
	return b.String(), nil
}

func splitPath(tok string) ([]string, error) {
	if strings.HasPrefix(tok, "../") {
		return nil, fmt.Errorf("parent paths are not supported in %q, use @root", tok)
	}
	segs := strings.Split(tok, ".")
	for i, s := range segs {
		if s == "" || s == "@" {
			return nil, fmt.Errorf("invalid path %q", tok)
		}
		for j, r := range s {
			if r == '@' && i == 0 && j == 0 {
				continue
			}
			if !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-' || r == '$') {
				return nil, fmt.Errorf("invalid character %q in path %q", r, tok)
			}
		}
	}
	return segs, nil
}

package engine

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseTree(t *testing.T) {
	tree, err := Parse(`Hello {{ client.firstName }}, {{#each dresses}}{{currency this.subtotal}}{{else}}-{{/each}}!`)
	if err != nil {
		t.Fatal(err)
	}
	if len(tree.Nodes) != 5 {
		t.Fatalf("expected 5 root nodes, got %d", len(tree.Nodes))
	}

	out, ok := tree.Nodes[1].(*OutputNode)
	if !ok {
		t.Fatalf("node 1: expected *OutputNode, got %T", tree.Nodes[1])
	}
	if diff := cmp.Diff([]string{"client", "firstName"}, out.Arg.Segments); diff != "" {
		t.Fatalf("segments mismatch (-want +got):\n%s", diff)
	}

	each, ok := tree.Nodes[3].(*BlockNode)
	if !ok || each.Kind != BlockEach {
		t.Fatalf("node 3: expected each block, got %#v", tree.Nodes[3])
	}
	if !each.HasElse || len(each.Body) != 1 || len(each.Else) != 1 {
		t.Fatalf("unexpected each shape: body=%d else=%d", len(each.Body), len(each.Else))
	}
	helper, ok := each.Body[0].(*HelperNode)
	if !ok || helper.Name != "currency" || len(helper.Args) != 1 || helper.Args[0].Path != "this.subtotal" {
		t.Fatalf("unexpected helper %#v", each.Body[0])
	}
}

func TestParseHelperArguments(t *testing.T) {
	tree, err := Parse(`{{date contract.startDate format="DD/MM/YYYY HH:mm"}}{{ifEquals a 'b c' 3 true null}}`)
	if err != nil {
		t.Fatal(err)
	}

	date := tree.Nodes[0].(*HelperNode)
	if got := date.Named["format"].Value; got != "DD/MM/YYYY HH:mm" {
		t.Fatalf("format: got %#v", got)
	}

	eq := tree.Nodes[1].(*HelperNode)
	var values []any
	for _, a := range eq.Args[1:] {
		values = append(values, a.Value)
	}
	if diff := cmp.Diff([]any{"b c", 3.0, true, nil}, values); diff != "" {
		t.Fatalf("literal args mismatch (-want +got):\n%s", diff)
	}
}

func TestParseErrorCarriesDirectiveAndOffset(t *testing.T) {
	_, err := Parse("<p>{{#if signature}}signed</p>")
	var perrs ParseErrors
	if !errors.As(err, &perrs) {
		t.Fatalf("expected ParseErrors, got %v", err)
	}
	if len(perrs) != 1 {
		t.Fatalf("expected 1 error, got %d: %v", len(perrs), perrs)
	}
	if perrs[0].Directive != "if" || perrs[0].Offset != 3 || perrs[0].Column != 4 {
		t.Fatalf("unexpected error %+v", perrs[0])
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{
			name: "valid",
			src:  "{{#if x}}{{#each xs}}{{this}}{{/each}}{{else}}none{{/if}}{{nope.missing}}",
		},
		{
			name: "whitespace inside delimiters",
			src:  "{{  client.email  }}{{#each   dresses  }}{{/each  }}",
		},
		{
			name: "unterminated if",
			src:  "{{#if x}}no close",
			want: []string{"line 1, column 1: unterminated {{#if}} block, expected {{/if}}"},
		},
		{
			name: "mismatched close",
			src:  "{{#if x}}a{{/each}}",
			want: []string{"line 1, column 11: {{/each}} does not match the open {{#if}} block"},
		},
		{
			name: "unknown block type",
			src:  "{{#unless x}}a{{/unless}}",
			want: []string{"line 1, column 1: unknown block type {{#unless}}"},
		},
		{
			name: "unterminated tag",
			src:  "a\n  {{client.name",
			want: []string{`line 2, column 3: unterminated tag, missing "}}"`},
		},
		{
			name: "unterminated tag before another tag",
			src:  "{{client.name <b>{{org.name}}</b>",
			want: []string{`line 1, column 1: unterminated tag, missing "}}"`},
		},
		{
			name: "else outside block",
			src:  "{{else}}",
			want: []string{"line 1, column 1: {{else}} outside of a block"},
		},
		{
			name: "unexpected close",
			src:  "{{/if}}",
			want: []string{"line 1, column 1: unexpected {{/if}}, no block is open"},
		},
		{
			name: "missing each argument",
			src:  "{{#each}}x{{/each}}",
			want: []string{"line 1, column 1: {{#each}} expects 1 argument(s), got 0"},
		},
		{
			name: "ifEquals arity",
			src:  "{{#ifEquals a}}{{/ifEquals}}",
			want: []string{"line 1, column 1: {{#ifEquals}} expects 2 argument(s), got 1"},
		},
		{
			name: "duplicate else",
			src:  "{{#if a}}{{else}}{{else}}{{/if}}",
			want: []string{"line 1, column 18: duplicate {{else}} in {{#if}} block"},
		},
		{
			name: "chained else if",
			src:  "{{#if a}}A{{else if b}}B{{/if}}",
			want: []string{"line 1, column 11: {{else}} does not take arguments, chained {{else if}} is not supported"},
		},
		{
			name: "else as a path",
			src:  "{{else.x}}",
			want: []string{"line 1, column 1: invalid expression {{else.x}}: else is a reserved word"},
		},
		{
			name: "else as a helper argument",
			src:  "{{currency else}}",
			want: []string{"line 1, column 1: invalid expression {{currency else}}: else is a reserved word"},
		},
		{
			name: "else as a block argument",
			src:  "{{#if else}}x{{/if}}",
			want: []string{"line 1, column 1: invalid {{#if}} argument: else is a reserved word"},
		},
		{
			name: "empty tag",
			src:  "{{ }}",
			want: []string{"line 1, column 1: empty tag {{}}"},
		},
		{
			name: "raw output",
			src:  "{{{client.name}}}",
			want: []string{"line 1, column 1: raw output {{{client.name}}} is not supported, use {{client.name}}"},
		},
		{
			name: "subexpression",
			src:  "{{gt (x) 1}}",
			want: []string{"line 1, column 1: invalid expression {{gt (x) 1}}: subexpressions are not supported"},
		},
		{
			name: "several errors",
			src:  "{{#each a}}{{#if b}}{{/each}}\n{{/if}}",
			want: []string{
				"line 1, column 12: unterminated {{#if}} block, expected {{/if}} before {{/each}}",
				"line 2, column 1: unexpected {{/if}}, no block is open",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Validate(tt.src)
			if res.Valid != (len(tt.want) == 0) {
				t.Fatalf("valid = %v, errors = %v", res.Valid, res.Errors)
			}
			if diff := cmp.Diff(tt.want, res.Errors); diff != "" {
				t.Fatalf("errors mismatch (-want +got):\n%s", diff)
			}

			// A template that validates must also parse, and vice versa.
			_, err := Parse(tt.src)
			if res.Valid != (err == nil) {
				t.Fatalf("validate/parse disagree: valid=%v parse err=%v", res.Valid, err)
			}
		})
	}
}

func TestValidateReportsDepthLimit(t *testing.T) {
	e := New(Limits{MaxDepth: 1})
	res := e.Validate("{{#if a}}{{#if b}}x{{/if}}{{/if}}")
	want := []string{"line 1, column 10: block nesting exceeds the maximum depth of 1"}
	if diff := cmp.Diff(want, res.Errors); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestPositionCountsRunes(t *testing.T) {
	line, col := position("Élégant\n  ééé{{x", 18)
	if line != 2 || col != 6 {
		t.Fatalf("got line %d col %d", line, col)
	}
}

package rendercontext

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"DR-CONTRACTS/internal/engine"
)

func TestFromJSON(t *testing.T) {
	raw := `{
		"client": {"fullName": "Jeanne Petit"},
		"org": {"name": "Maison Rose"},
		"contract": {"number": "C-1", "totalTTC": 1234.5, "totalHT": 1000, "totalDeposit": 0},
		"dresses": [{"id": "d1", "name": "A", "pricePerDay": 10, "quantity": 1, "days": 2, "subtotal": 20}]
	}`
	c, err := FromJSON([]byte(raw))
	if err != nil {
		t.Fatal(err)
	}
	if c.Contract.TotalTTC != 1234.5 || len(c.Dresses) != 1 || c.Signature != nil {
		t.Fatalf("unexpected context %+v", c)
	}
}

func TestFromJSONRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"formatted amount", `{"org":{"name":"x"},"contract":{"number":"1","totalTTC":"1 234,50\u00a0€"}}`, "totalTTC"},
		{"missing number", `{"org":{"name":"x"},"contract":{}}`, "contract.number is required"},
		{"missing org name", `{"contract":{"number":"1"}}`, "org.name is required"},
		{"negative quantity", `{"org":{"name":"x"},"contract":{"number":"1"},"addons":[{"id":"a","name":"b","price":1,"quantity":-1,"subtotal":1}]}`, "addons.0.quantity must not be negative"},
		{"unknown field", `{"org":{"name":"x"},"contract":{"number":"1"},"dress":[]}`, "dress"},
		{"not an object", `[1,2]`, "invalid render context"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromJSON([]byte(tt.raw))
			if !errors.Is(err, ErrInvalidContext) {
				t.Fatalf("expected ErrInvalidContext, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestValidateRejectsNonFiniteAmounts(t *testing.T) {
	c := Sample()
	c.Dresses[1].Subtotal = math.Inf(1)
	err := c.Validate()
	if !errors.Is(err, ErrInvalidContext) || !strings.Contains(err.Error(), "dresses.1.subtotal") {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestToMap(t *testing.T) {
	m, err := Sample().ToMap()
	if err != nil {
		t.Fatal(err)
	}

	checks := map[string]any{
		"client.fullName":             "Sophie Martin",
		"contract.totalTTC":           1234.5,
		"contract.package.numDresses": 2.0,
		"dresses.1.name":              "Robe Céleste",
		"dresses.length":              2,
	}
	for path, want := range checks {
		got, ok := engine.Resolve(path, m)
		if !ok {
			t.Errorf("%s: not found", path)
			continue
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("%s mismatch (-want +got):\n%s", path, diff)
		}
	}
	if _, ok := m["signature"]; ok {
		t.Fatal("unsigned context must not carry a signature key")
	}
}

func TestSampleRendersThroughEngine(t *testing.T) {
	m, err := Sample().ToMap()
	if err != nil {
		t.Fatal(err)
	}
	out, err := engine.RenderString(
		`{{#if signature}}signé{{else}}en attente{{/if}}|{{#each dresses}}{{this.name}}={{currency this.subtotal}};{{/each}}`, m)
	if err != nil {
		t.Fatal(err)
	}
	want := "en attente|Robe Aurore=450,00\u00a0€;Robe Céleste=360,00\u00a0€;"
	if out != want {
		t.Fatalf("got %q, want %q", out, want)
	}
}

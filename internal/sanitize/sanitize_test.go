package sanitize

import (
	"strings"
	"testing"
)

func TestHTMLRemovesActiveContent(t *testing.T) {
	in := `<p onclick="steal()">Bonjour</p><script>alert(1)</script><a href="javascript:alert(1)">lien</a><iframe src="https://evil.test"></iframe>`
	out := HTML(in)

	for _, bad := range []string{"<script", "alert(1)", "onclick", "javascript:", "<iframe"} {
		if strings.Contains(out, bad) {
			t.Fatalf("sanitized output still contains %q: %s", bad, out)
		}
	}
	if !strings.Contains(out, "Bonjour") {
		t.Fatalf("text content lost: %s", out)
	}
}

func TestHTMLKeepsContractLayout(t *testing.T) {
	in := `<section class="contract"><h1 style="text-align: center">Contrat</h1>` +
		`<table><tr><td colspan="2">Robe</td></tr></table><hr></section>`
	out := HTML(in)

	for _, want := range []string{"<section", `class="contract"`, "text-align", "<table>", `colspan="2"`, "<hr"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q to survive sanitization, got: %s", want, out)
		}
	}
}

func TestHTMLKeepsEscapedText(t *testing.T) {
	out := HTML("<p>&lt;b&gt;Dupont &amp; Fils&lt;/b&gt;</p>")
	if out != "<p>&lt;b&gt;Dupont &amp; Fils&lt;/b&gt;</p>" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestHTMLEmpty(t *testing.T) {
	if got := HTML("  \n"); got != "" {
		t.Fatalf("expected empty output, got %q", got)
	}
}

// Package sanitize cleans rendered contract HTML before it is shown in the
// editor preview or stored as a document.
package sanitize

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	contractPolicyOnce sync.Once
	contractPolicy     *bluemonday.Policy
)

// HTML strips scripts, event handlers and unsafe URLs from rendered contract
// markup, keeping the layout and inline styling starter templates rely on.
func HTML(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	return Policy().Sanitize(raw)
}

// Policy returns the shared policy. It is safe for concurrent use.
func Policy() *bluemonday.Policy {
	contractPolicyOnce.Do(func() {
		policy := bluemonday.UGCPolicy()
		policy.AllowStyling()
		policy.AllowDataURIImages()

		policy.AllowElements("header", "footer", "section", "article", "main", "figure", "figcaption", "hr", "span", "div")
		policy.AllowAttrs("colspan", "rowspan", "align", "valign").OnElements("td", "th")
		policy.AllowAttrs("width", "height").OnElements("img", "table", "td", "th", "col")

		policy.AllowStyles(
			"color", "background-color", "background",
			"font-family", "font-size", "font-weight", "font-style", "font-variant",
			"text-align", "text-decoration", "text-transform", "letter-spacing", "line-height",
			"margin", "margin-top", "margin-right", "margin-bottom", "margin-left",
			"padding", "padding-top", "padding-right", "padding-bottom", "padding-left",
			"border", "border-top", "border-right", "border-bottom", "border-left",
			"border-collapse", "border-color", "border-radius", "border-spacing",
			"width", "max-width", "min-width", "height",
			"vertical-align", "white-space", "display", "page-break-before", "page-break-inside",
		).Globally()

		contractPolicy = policy
	})
	return contractPolicy
}

package pipeline

import (
	"regexp"

	"github.com/microcosm-cc/bluemonday"
)

// newSanitizePolicy starts from bluemonday's UGC policy and allows the markup
// the display renderers emit.
func newSanitizePolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class", "id").Globally()
	p.AllowDataAttributes()
	p.AllowElements("button", "mark", "span", "div")
	p.AllowAttrs("type", "title", "aria-label", "aria-expanded").OnElements("button")
	p.AllowAttrs("target").Matching(regexp.MustCompile(`^_blank$`)).OnElements("a")
	p.AllowAttrs("download").OnElements("a")
	p.AllowAttrs("loading").OnElements("img")
	p.AllowAttrs("tabindex").OnElements("pre")
	return p
}

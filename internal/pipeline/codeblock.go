package pipeline

import (
	"strings"

	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/util"
)

// SimulatedRunNotice is shown next to the demo Run action. No code is ever
// executed by the viewer.
const SimulatedRunNotice = "Simulated run: no code is executed"

// codeBlockWrapper decorates highlighted fences with a header carrying the
// language label, a Copy action and, for runnable languages, the demo Run
// action.
type codeBlockWrapper struct {
	runnable map[string]bool
}

func newCodeBlockWrapper(languages []string) *codeBlockWrapper {
	runnable := make(map[string]bool, len(languages))
	for _, l := range languages {
		runnable[strings.ToLower(l)] = true
	}
	return &codeBlockWrapper{runnable: runnable}
}

func (c *codeBlockWrapper) render(w util.BufWriter, ctx highlighting.CodeBlockContext, entering bool) {
	lang, hasLang := ctx.Language()

	if !entering {
		if !ctx.Highlighted() {
			_, _ = w.WriteString("</code></pre>")
		}
		_, _ = w.WriteString("</div>\n")
		return
	}

	_, _ = w.WriteString(`<div class="code-block"`)
	if hasLang {
		_, _ = w.WriteString(` data-language="`)
		_, _ = w.Write(util.EscapeHTML(lang))
		_ = w.WriteByte('"')
	}
	_ = w.WriteByte('>')

	if hasLang {
		_, _ = w.WriteString(`<div class="code-header"><span class="code-language">`)
		_, _ = w.Write(util.EscapeHTML(lang))
		_, _ = w.WriteString(`</span><span class="code-actions">`)
		_, _ = w.WriteString(`<button type="button" class="code-copy" aria-label="Copy code">Copy</button>`)
		if c.runnable[strings.ToLower(string(lang))] {
			_, _ = w.WriteString(`<button type="button" class="code-run" data-simulated="true" title="`)
			_, _ = w.WriteString(SimulatedRunNotice)
			_, _ = w.WriteString(`">Run (demo)</button>`)
		}
		_, _ = w.WriteString(`</span></div>`)
	}

	if !ctx.Highlighted() {
		_, _ = w.WriteString("<pre><code")
		if hasLang {
			_, _ = w.WriteString(` class="language-`)
			_, _ = w.Write(util.EscapeHTML(lang))
			_ = w.WriteByte('"')
		}
		_ = w.WriteByte('>')
	}
}

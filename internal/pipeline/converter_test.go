package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/alnah/go-mdview/internal/diagram"
)

func convert(t *testing.T, opts Options, md string) *Result {
	t.Helper()
	res, err := NewConverter(opts).ToHTML(context.Background(), md)
	if err != nil {
		t.Fatalf("ToHTML() error = %v", err)
	}
	return res
}

// ---------------------------------------------------------------------------
// TestConverter_DisplayPolicy - Per-construct rendering
// ---------------------------------------------------------------------------

func TestConverter_DisplayPolicy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		markdown     string
		wantContains []string
		wantExcludes []string
	}{
		{
			name:     "h1 gets slug id and collapse toggle",
			markdown: "# notes.md\n\n# Title",
			wantContains: []string{
				`<h1 id="notes-md" class="collapsible"><button type="button" class="section-toggle"`,
				`<h1 id="title" class="collapsible">`,
			},
		},
		{
			name:         "h2 and h3 get slug ids without toggle",
			markdown:     "## Getting Started\n\n### C++ & Go",
			wantContains: []string{`<h2 id="getting-started">Getting Started</h2>`, `<h3 id="c-go">`},
			wantExcludes: []string{"section-toggle"},
		},
		{
			name:         "duplicate captions share one id",
			markdown:     "## Setup\n\ntext\n\n## Setup",
			wantContains: []string{`<h2 id="setup">Setup</h2>` + "\n<p>text</p>\n" + `<h2 id="setup">Setup</h2>`},
		},
		{
			name:         "heading id uses source caption",
			markdown:     "## Hello *world*",
			wantContains: []string{`<h2 id="hello-world-">`},
		},
		{
			name:     "fenced code is highlighted with copy action",
			markdown: "```go\nx := 1\n```",
			wantContains: []string{
				`<div class="code-block" data-language="go">`,
				`<span class="code-language">go</span>`,
				`class="code-copy"`,
				`class="chroma"`,
			},
			wantExcludes: []string{"code-run"},
		},
		{
			name:     "runnable language gets labelled demo action",
			markdown: "```python\nprint(1)\n```",
			wantContains: []string{
				`class="code-run" data-simulated="true"`,
				SimulatedRunNotice,
				"Run (demo)",
			},
		},
		{
			name:         "unknown language is escaped but not highlighted",
			markdown:     "```nosuchlang\n<b>x</b>\n```",
			wantContains: []string{`<pre><code class="language-nosuchlang">&lt;b&gt;x&lt;/b&gt;`, `class="code-copy"`},
		},
		{
			name:         "fence without language has no header",
			markdown:     "```\nplain\n```",
			wantContains: []string{`<div class="code-block"><pre><code>plain`},
			wantExcludes: []string{"code-copy"},
		},
		{
			name:         "inline code styled without actions",
			markdown:     "use `go test` here",
			wantContains: []string{`<code class="inline-code">go test</code>`},
			wantExcludes: []string{"code-copy"},
		},
		{
			name:         "table wrapped in scroll container",
			markdown:     "| a | b |\n|---|---|\n| 1 | 2 |",
			wantContains: []string{"<div class=\"table-scroll\">\n<table>", "</table>\n</div>"},
		},
		{
			name:         "blockquote decorated",
			markdown:     "> note",
			wantContains: []string{`<blockquote class="callout">`},
		},
		{
			name:         "internal anchor link",
			markdown:     "[jump](#title)",
			wantContains: []string{`<a href="#title" class="anchor-link" data-anchor="title">jump</a>`},
			wantExcludes: []string{"_blank"},
		},
		{
			name:         "external link opens new context",
			markdown:     "[site](https://example.com)",
			wantContains: []string{`<a href="https://example.com" target="_blank" rel="noopener noreferrer">site</a>`},
		},
		{
			name:         "autolink opens new context",
			markdown:     "see https://example.com now",
			wantContains: []string{`<a href="https://example.com" target="_blank" rel="noopener noreferrer">https://example.com</a>`},
		},
		{
			name:     "image routed through lightbox",
			markdown: "![Chart A](img/a.png)",
			wantContains: []string{
				`<span class="lightbox" data-lightbox><img src="img/a.png" alt="Chart A" loading="lazy">`,
				`<span class="lightbox-caption">Chart A</span>`,
				`<a class="lightbox-download" href="img/a.png" download="Chart A">Download</a>`,
			},
		},
		{
			name:         "image without alt downloads with default name",
			markdown:     "![](a.png)",
			wantContains: []string{`download="image.png"`},
			wantExcludes: []string{"lightbox-caption"},
		},
		{
			name:         "lists preserved",
			markdown:     "1. one\n2. two\n\n- a\n- b",
			wantContains: []string{"<ol>", "<li>one</li>", "<ul>", "<li>a</li>"},
		},
		{
			name:         "inline math",
			markdown:     "area is $\\pi r^2$ here",
			wantContains: []string{`<span class="math math-inline">\(\pi r^2\)</span>`},
		},
		{
			name:         "display math",
			markdown:     "$$E=mc^2$$",
			wantContains: []string{`<span class="math math-display">\[E=mc^2\]</span>`},
		},
		{
			name:         "prices are not math",
			markdown:     "costs $5 and $10",
			wantContains: []string{"costs $5 and $10"},
			wantExcludes: []string{"math-inline"},
		},
		{
			name:         "raw html passes through",
			markdown:     "<div class=\"note\">hi</div>",
			wantContains: []string{`<div class="note">hi</div>`},
		},
		{
			name:         "strikethrough",
			markdown:     "~~gone~~",
			wantContains: []string{"<del>gone</del>"},
		},
		{
			name:         "highlight outside fences only",
			markdown:     "==key== point\n\n```text\na ==b== c\n```",
			wantContains: []string{"<mark>key</mark> point", "==b=="},
		},
		{
			name:         "footnotes",
			markdown:     "text[^1]\n\n[^1]: note",
			wantContains: []string{`class="footnotes"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			res := convert(t, Options{}, tt.markdown)
			for _, want := range tt.wantContains {
				if !strings.Contains(res.HTML, want) {
					t.Errorf("HTML missing %q\ngot: %s", want, res.HTML)
				}
			}
			for _, exclude := range tt.wantExcludes {
				if strings.Contains(res.HTML, exclude) {
					t.Errorf("HTML contains %q\ngot: %s", exclude, res.HTML)
				}
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestConverter_Diagrams - Diagram block routing
// ---------------------------------------------------------------------------

func TestConverter_Diagrams(t *testing.T) {
	t.Parallel()

	src := "graph TD\n  A-->B\n"
	md := "# Flow\n\n```mermaid\n" + src + "```\n\ntext\n\n```mermaid\n" + src + "```\n\n```mermaid\ngraph LR\n```\n"

	res := convert(t, Options{}, md)

	if len(res.Diagrams) != 2 {
		t.Fatalf("len(Diagrams) = %d, want 2 distinct sources", len(res.Diagrams))
	}
	if res.Diagrams[0].Source != src {
		t.Errorf("Diagrams[0].Source = %q, want %q", res.Diagrams[0].Source, src)
	}
	if res.Diagrams[0].Key != diagram.Key(src) {
		t.Errorf("Diagrams[0].Key = %q, want content key", res.Diagrams[0].Key)
	}
	if got := strings.Count(res.HTML, diagram.Placeholder(diagram.Key(src))); got != 2 {
		t.Errorf("placeholder count = %d, want 2", got)
	}
	if strings.Contains(res.HTML, "chroma") || strings.Contains(res.HTML, "language-mermaid") {
		t.Errorf("mermaid block was highlighted: %s", res.HTML)
	}
}

func TestConverter_EmptyDiagramStillCollected(t *testing.T) {
	t.Parallel()

	res := convert(t, Options{}, "```mermaid\n```")
	if len(res.Diagrams) != 1 || res.Diagrams[0].Source != "" {
		t.Errorf("Diagrams = %+v, want one empty source", res.Diagrams)
	}
}

// ---------------------------------------------------------------------------
// TestConverter_Options - Configuration
// ---------------------------------------------------------------------------

func TestConverter_Sanitize(t *testing.T) {
	t.Parallel()

	md := "<script>alert(1)</script>\n\n[jump](#top)\n\n```python\nx\n```"

	unsafe := convert(t, Options{}, md)
	if !strings.Contains(unsafe.HTML, "<script>") {
		t.Errorf("unsanitized HTML dropped raw script: %s", unsafe.HTML)
	}

	safe := convert(t, Options{Sanitize: true}, md)
	if strings.Contains(safe.HTML, "<script>") {
		t.Errorf("sanitized HTML kept script: %s", safe.HTML)
	}
	for _, want := range []string{`class="anchor-link"`, `data-anchor="top"`, `data-simulated="true"`, "<button"} {
		if !strings.Contains(safe.HTML, want) {
			t.Errorf("sanitized HTML missing %q: %s", want, safe.HTML)
		}
	}
}

func TestConverter_RunnableLanguages(t *testing.T) {
	t.Parallel()

	res := convert(t, Options{RunnableLanguages: []string{"Go"}}, "```go\nx\n```\n\n```python\ny\n```")
	if strings.Count(res.HTML, "code-run") != 1 {
		t.Errorf("want exactly one run action for go: %s", res.HTML)
	}
}

func TestConverter_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewConverter(Options{}).ToHTML(ctx, "# x")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("ToHTML() error = %v, want context.Canceled", err)
	}
}

// ---------------------------------------------------------------------------
// TestCommonMarkPreprocessor - Markdown normalization
// ---------------------------------------------------------------------------

func TestCommonMarkPreprocessor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "crlf", input: "a\r\nb\rc", want: "a\nb\nc"},
		{name: "blank runs", input: "a\n\n\n\n\nb", want: "a\n\nb"},
		{name: "highlight", input: "==x== y", want: MarkStartPlaceholder + "x" + MarkEndPlaceholder + " y"},
		{name: "highlight kept in fence", input: "```\n==x==\n```", want: "```\n==x==\n```"},
		{name: "no highlight", input: "a = b", want: "a = b"},
		{name: "blank runs kept in fence", input: "```\nx\n\n\n\ny\n```", want: "```\nx\n\n\n\ny\n```"},
		{name: "blank runs compressed after fence", input: "```\nx\n```\n\n\n\nb", want: "```\nx\n```\n\nb"},
		{
			name:  "info string does not close fence",
			input: "```\n```js\n==x==\n\n\n```\n==y==",
			want:  "```\n```js\n==x==\n\n\n```\n" + MarkStartPlaceholder + "y" + MarkEndPlaceholder,
		},
		{name: "tilde fence", input: "~~~~\n~~~\n==x==\n~~~~", want: "~~~~\n~~~\n==x==\n~~~~"},
	}

	p := &CommonMarkPreprocessor{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := p.PreprocessMarkdown(context.Background(), tt.input); got != tt.want {
				t.Errorf("PreprocessMarkdown(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestFenceTracker(t *testing.T) {
	t.Parallel()

	lines := []string{"text", "```go", "```js", "code", "````", "after", "   ~~~", "x", "~~~ ", "tail"}
	want := []bool{false, true, true, true, true, false, true, true, true, false}

	var f fenceTracker
	for i, line := range lines {
		if got := f.step(line); got != want[i] {
			t.Errorf("step(%q) at line %d = %v, want %v", line, i, got, want[i])
		}
	}
}

func TestConvertMarkPlaceholders(t *testing.T) {
	t.Parallel()

	got := ConvertMarkPlaceholders("a" + MarkStartPlaceholder + "b" + MarkEndPlaceholder)
	if got != "a<mark>b</mark>" {
		t.Errorf("ConvertMarkPlaceholders() = %q, want %q", got, "a<mark>b</mark>")
	}
}

func TestHighlightCSS(t *testing.T) {
	t.Parallel()

	css, err := HighlightCSS("")
	if err != nil {
		t.Fatalf("HighlightCSS() error = %v", err)
	}
	if !strings.Contains(css, ".chroma") {
		t.Errorf("HighlightCSS() missing .chroma rules: %.200s", css)
	}
}

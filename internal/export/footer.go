package export

import (
	"html"
	"strings"
	"time"

	"github.com/alnah/go-mdview/internal/dateutil"
)

// FooterAttr marks footer nodes so they can be found and removed.
const FooterAttr = "data-export-footer"

// Footer lines appended to exported documents.
const (
	DefaultFooterText  = "Made with ❤️ by Sagar Kumar"
	DefaultAttribution = "Generated with MD Converter Pro"
)

// Footer is the closing block of an exported document.
type Footer struct {
	Text        string
	Attribution string
	Date        string // date stamp, see dateutil.Resolve; empty for none
}

// DefaultFooter returns the stock footer.
func DefaultFooter() Footer {
	return Footer{Text: DefaultFooterText, Attribution: DefaultAttribution}
}

// Empty reports whether the footer has no lines.
func (f Footer) Empty() bool {
	return f.Text == "" && f.Attribution == "" && f.Date == ""
}

// Validate checks the date stamp.
func (f Footer) Validate() error {
	return dateutil.Validate(f.Date)
}

// Lines returns the non-empty footer lines stamped with the current date.
func (f Footer) Lines() []string {
	return f.LinesAt(time.Now())
}

// LinesAt returns the non-empty footer lines, resolving the date stamp at t.
// An invalid stamp is dropped.
func (f Footer) LinesAt(t time.Time) []string {
	date, err := dateutil.Resolve(f.Date, t)
	if err != nil {
		date = ""
	}
	var lines []string
	for _, l := range []string{f.Text, f.Attribution, date} {
		if l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

// HTML renders the footer block. An empty footer renders nothing.
func (f Footer) HTML() string {
	if f.Empty() {
		return ""
	}
	var b strings.Builder
	b.WriteString(`<footer class="export-footer" ` + FooterAttr + `>`)
	for _, l := range f.Lines() {
		b.WriteString("<p>")
		b.WriteString(html.EscapeString(l))
		b.WriteString("</p>")
	}
	b.WriteString("</footer>")
	return b.String()
}

package pipeline

import (
	"fmt"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
)

// HighlightCSS returns the chroma stylesheet for the classes emitted by the
// converter. Unknown style names fall back to chroma's default style.
func HighlightCSS(styleName string) (string, error) {
	if styleName == "" {
		styleName = DefaultHighlightStyle
	}
	var b strings.Builder
	formatter := chromahtml.New(chromahtml.WithClasses(true))
	if err := formatter.WriteCSS(&b, styles.Get(styleName)); err != nil {
		return "", fmt.Errorf("writing %q highlight css: %w", styleName, err)
	}
	return b.String(), nil
}

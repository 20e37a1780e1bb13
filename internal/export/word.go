package export

import (
	"context"
	"html"
	"strings"
)

// byteOrderMark prefixes Word documents so the encoding is detected.
const byteOrderMark = "\uFEFF"

const wordEnvelopeOpen = `<html xmlns:o="urn:schemas-microsoft-com:office:office" ` +
	`xmlns:w="urn:schemas-microsoft-com:office:word" ` +
	`xmlns="http://www.w3.org/TR/REC-html40">`

const wordStyle = `body{font-family:Calibri,Arial,sans-serif;font-size:11pt;line-height:1.5}` +
	`pre,code{font-family:Consolas,monospace;font-size:10pt}` +
	`pre{background:#f3f4f6;padding:8pt}` +
	`table{border-collapse:collapse}td,th{border:1px solid #999;padding:4pt}` +
	`.export-footer{text-align:center;color:#666;margin-top:24pt}`

// DOCExporter wraps an article in the Office HTML envelope Word opens as a
// document.
type DOCExporter struct {
	footer Footer
}

// NewDOCExporter creates a DOCExporter.
func NewDOCExporter(footer Footer) *DOCExporter {
	return &DOCExporter{footer: footer}
}

// Export returns the Word document for article.
func (e *DOCExporter) Export(ctx context.Context, title, article string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(article) == "" {
		return nil, ErrEmptyArticle
	}

	var b strings.Builder
	b.WriteString(byteOrderMark)
	b.WriteString(wordEnvelopeOpen)
	b.WriteString(`<head><meta charset="utf-8"><title>`)
	b.WriteString(html.EscapeString(title))
	b.WriteString(`</title><style>`)
	b.WriteString(wordStyle)
	b.WriteString(`</style></head><body>`)
	b.WriteString(article)
	b.WriteString(e.footer.HTML())
	b.WriteString(`</body></html>`)
	return []byte(b.String()), nil
}

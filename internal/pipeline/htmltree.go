package pipeline

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ExtractByID returns the inner HTML of the element with the given id.
// Returns ErrElementNotFound when no element carries the id.
func ExtractByID(htmlContent, id string) (string, error) {
	doc, _, err := parseHTML(htmlContent)
	if err != nil {
		return "", err
	}

	el := findByID(doc, id)
	if el == nil {
		return "", fmt.Errorf("%w: #%s", ErrElementNotFound, id)
	}

	var buf strings.Builder
	for c := el.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

// CountElementsWithAttr counts elements carrying the attribute key.
func CountElementsWithAttr(htmlContent, key string) (int, error) {
	doc, _, err := parseHTML(htmlContent)
	if err != nil {
		return 0, err
	}
	n := 0
	walk(doc, func(node *html.Node) {
		if node.Type == html.ElementNode && hasAttr(node, key) {
			n++
		}
	})
	return n, nil
}

// RewriteImagePaths resolves relative image sources against sourceDir and
// turns them into file:// URLs, so a document exported from disk keeps its
// images. The lightbox download link follows its image.
// Paths escaping sourceDir are left as they are. Empty sourceDir is a no-op.
func RewriteImagePaths(htmlContent, sourceDir string) (string, error) {
	if sourceDir == "" {
		return htmlContent, nil
	}

	absSourceDir, err := filepath.Abs(sourceDir)
	if err != nil {
		return "", err
	}

	doc, isFragment, err := parseHTML(htmlContent)
	if err != nil {
		return "", err
	}

	walk(doc, func(n *html.Node) {
		if n.Type != html.ElementNode {
			return
		}
		switch {
		case n.DataAtom == atom.Img:
			rewriteAttr(n, "src", absSourceDir)
		case n.DataAtom == atom.A && hasClass(n, "lightbox-download"):
			rewriteAttr(n, "href", absSourceDir)
		}
	})

	return renderHTML(doc, isFragment)
}

// parseHTML parses a full document or a fragment. Fragments are parsed in a
// body context and collected under a document node.
func parseHTML(content string) (*html.Node, bool, error) {
	trimmed := strings.ToLower(strings.TrimSpace(content))
	if strings.HasPrefix(trimmed, "<!doctype") || strings.HasPrefix(trimmed, "<html") {
		doc, err := html.Parse(strings.NewReader(content))
		return doc, false, err
	}

	body := &html.Node{Type: html.ElementNode, DataAtom: atom.Body, Data: "body"}
	nodes, err := html.ParseFragment(strings.NewReader(content), body)
	if err != nil {
		return nil, true, err
	}
	container := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		container.AppendChild(n)
	}
	return container, true, nil
}

// renderHTML renders doc; fragments render their children only.
func renderHTML(doc *html.Node, isFragment bool) (string, error) {
	var buf strings.Builder
	if !isFragment {
		if err := html.Render(&buf, doc); err != nil {
			return "", err
		}
		return buf.String(), nil
	}
	for c := doc.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

func walk(n *html.Node, fn func(*html.Node)) {
	fn(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

func findByID(n *html.Node, id string) *html.Node {
	if n.Type == html.ElementNode {
		for _, a := range n.Attr {
			if a.Key == "id" && a.Val == id {
				return n
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findByID(c, id); found != nil {
			return found
		}
	}
	return nil
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}

func hasClass(n *html.Node, class string) bool {
	for _, a := range n.Attr {
		if a.Key == "class" {
			for _, c := range strings.Fields(a.Val) {
				if c == class {
					return true
				}
			}
		}
	}
	return false
}

func rewriteAttr(n *html.Node, key, sourceDir string) {
	for i, a := range n.Attr {
		if a.Key != key || !isRelativePath(a.Val) {
			continue
		}
		absPath := filepath.Join(sourceDir, a.Val)
		if !isPathUnderDir(absPath, sourceDir) {
			continue
		}
		n.Attr[i].Val = pathToFileURL(absPath)
	}
}

// isRelativePath reports whether path is a local relative path: not a URL,
// not an anchor, not absolute.
func isRelativePath(path string) bool {
	if path == "" || strings.HasPrefix(path, "#") || strings.HasPrefix(path, "//") {
		return false
	}
	for _, scheme := range []string{"http://", "https://", "file://", "data:"} {
		if strings.HasPrefix(path, scheme) {
			return false
		}
	}
	return !filepath.IsAbs(path)
}

func isPathUnderDir(absPath, dir string) bool {
	cleanDir := filepath.Clean(dir)
	if !strings.HasSuffix(cleanDir, string(filepath.Separator)) {
		cleanDir += string(filepath.Separator)
	}
	return strings.HasPrefix(filepath.Clean(absPath)+string(filepath.Separator), cleanDir)
}

func pathToFileURL(absPath string) string {
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(absPath)}
	return u.String()
}

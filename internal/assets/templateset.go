package assets

// TemplateSet holds the HTML templates used by the viewer.
// Viewer wraps the live article, Export wraps a standalone HTML export.
type TemplateSet struct {
	Name   string // Identifier (name or directory path)
	Viewer string // Viewer page template
	Export string // Standalone export document template
}

// DefaultTemplateSetName is the name of the built-in template set.
const DefaultTemplateSetName = "default"

// Built-in style and script names.
const (
	ViewerStyleName  = "viewer"
	ExportStyleName  = "export"
	ViewerScriptName = "viewer"
)

// Template file names inside a template set directory.
const (
	viewerTemplateFile = "viewer.html"
	exportTemplateFile = "export.html"
)

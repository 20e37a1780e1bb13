package assets

import "fmt"

// defaultLoader is the package-level embedded loader.
var defaultLoader = NewEmbeddedLoader()

// LoadStyle loads a CSS file by name using the default embedded loader.
// The name should not include the .css extension or path components.
func LoadStyle(name string) (string, error) {
	return defaultLoader.LoadStyle(name)
}

// LoadTemplateSet loads a template set by name using the default embedded loader.
// The name identifies a directory containing viewer.html and export.html.
func LoadTemplateSet(name string) (*TemplateSet, error) {
	return defaultLoader.LoadTemplateSet(name)
}

// LoadScript loads a client script by name using the default embedded loader.
func LoadScript(name string) (string, error) {
	return defaultLoader.LoadScript(name)
}

// Bundle is everything the viewer needs to serve pages and exports.
type Bundle struct {
	ViewerCSS string
	ExportCSS string
	Templates *TemplateSet
	Script    string
}

// LoadBundle loads the built-in asset names through loader.
func LoadBundle(loader AssetLoader) (*Bundle, error) {
	viewerCSS, err := loader.LoadStyle(ViewerStyleName)
	if err != nil {
		return nil, fmt.Errorf("loading viewer style: %w", err)
	}
	exportCSS, err := loader.LoadStyle(ExportStyleName)
	if err != nil {
		return nil, fmt.Errorf("loading export style: %w", err)
	}
	ts, err := loader.LoadTemplateSet(DefaultTemplateSetName)
	if err != nil {
		return nil, fmt.Errorf("loading templates: %w", err)
	}
	script, err := loader.LoadScript(ViewerScriptName)
	if err != nil {
		return nil, fmt.Errorf("loading client script: %w", err)
	}
	return &Bundle{
		ViewerCSS: viewerCSS,
		ExportCSS: exportCSS,
		Templates: ts,
		Script:    script,
	}, nil
}

package assets

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
)

//go:embed styles/*.css
var styles embed.FS

//go:embed templates
var templates embed.FS

//go:embed static/*.js
var static embed.FS

// EmbeddedLoader loads assets from the embedded filesystem.
type EmbeddedLoader struct{}

// NewEmbeddedLoader creates an EmbeddedLoader.
func NewEmbeddedLoader() *EmbeddedLoader {
	return &EmbeddedLoader{}
}

// LoadStyle loads a CSS style from embedded assets by name.
func (e *EmbeddedLoader) LoadStyle(name string) (string, error) {
	if err := ValidateAssetName(name); err != nil {
		return "", err
	}

	content, err := styles.ReadFile("styles/" + name + ".css")
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrStyleNotFound, name)
	}

	return string(content), nil
}

// LoadTemplateSet loads the viewer and export templates of an embedded set.
func (e *EmbeddedLoader) LoadTemplateSet(name string) (*TemplateSet, error) {
	if err := ValidateAssetName(name); err != nil {
		return nil, err
	}

	dir := "templates/" + name
	viewer, viewerErr := templates.ReadFile(dir + "/" + viewerTemplateFile)
	export, exportErr := templates.ReadFile(dir + "/" + exportTemplateFile)

	switch {
	case errors.Is(viewerErr, fs.ErrNotExist) && errors.Is(exportErr, fs.ErrNotExist):
		return nil, fmt.Errorf("%w: %q", ErrTemplateSetNotFound, name)
	case viewerErr != nil:
		return nil, fmt.Errorf("%w: %q missing %s", ErrIncompleteTemplateSet, name, viewerTemplateFile)
	case exportErr != nil:
		return nil, fmt.Errorf("%w: %q missing %s", ErrIncompleteTemplateSet, name, exportTemplateFile)
	}

	return &TemplateSet{Name: name, Viewer: string(viewer), Export: string(export)}, nil
}

// LoadScript loads a client script from embedded assets by name.
func (e *EmbeddedLoader) LoadScript(name string) (string, error) {
	if err := ValidateAssetName(name); err != nil {
		return "", err
	}

	content, err := static.ReadFile("static/" + name + ".js")
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrScriptNotFound, name)
	}

	return string(content), nil
}

// Compile-time interface check.
var _ AssetLoader = (*EmbeddedLoader)(nil)

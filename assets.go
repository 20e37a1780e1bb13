package mdview

import (
	"errors"

	"github.com/alnah/go-mdview/internal/assets"
)

// Built-in asset names.
const (
	// ViewerStyle styles the viewer page.
	ViewerStyle = assets.ViewerStyleName

	// ExportStyle styles standalone HTML and PDF exports.
	ExportStyle = assets.ExportStyleName

	// ViewerScript is the client script served to the viewer page.
	ViewerScript = assets.ViewerScriptName

	// DefaultTemplateSet is the name of the built-in template set.
	DefaultTemplateSet = assets.DefaultTemplateSetName
)

// AssetLoader defines the contract for loading the viewer's styles,
// templates and client script. Implementations may load from the
// filesystem, embedded assets, a database, etc.
//
// NewAssetLoader covers the filesystem with fallback to embedded defaults.
// Implement this interface for other backends and pass it to WithAssetLoader.
type AssetLoader interface {
	// LoadStyle loads a CSS style by name (without .css extension).
	// Returns ErrStyleNotFound if the style doesn't exist.
	LoadStyle(name string) (string, error)

	// LoadTemplateSet loads the viewer and export templates of a set.
	// Returns ErrTemplateSetNotFound or ErrIncompleteTemplateSet.
	LoadTemplateSet(name string) (*TemplateSet, error)

	// LoadScript loads a client script by name (without .js extension).
	// Returns ErrScriptNotFound if the script doesn't exist.
	LoadScript(name string) (string, error)
}

// TemplateSet holds the HTML templates of the viewer.
type TemplateSet struct {
	Name   string // Identifier (name or path)
	Viewer string // Viewer page template
	Export string // Standalone export document template
}

// NewTemplateSet creates a TemplateSet from template content.
func NewTemplateSet(name, viewer, export string) *TemplateSet {
	return &TemplateSet{Name: name, Viewer: viewer, Export: export}
}

// NewAssetLoader creates an AssetLoader for the given base path.
// If basePath is empty, the loader serves embedded assets only.
// Otherwise files under basePath take precedence:
//   - styles/{name}.css
//   - templates/{name}/viewer.html and export.html
//   - static/{name}.js
//
// Returns ErrInvalidAssetPath if basePath is set but not a readable directory.
func NewAssetLoader(basePath string) (AssetLoader, error) {
	resolver, err := assets.NewAssetResolver(basePath)
	if err != nil {
		return nil, convertAssetError(err)
	}
	return &assetLoaderAdapter{resolver: resolver}, nil
}

// assetLoaderAdapter wraps the internal resolver to return public types.
type assetLoaderAdapter struct {
	resolver *assets.AssetResolver
}

func (a *assetLoaderAdapter) LoadStyle(name string) (string, error) {
	content, err := a.resolver.LoadStyle(name)
	if err != nil {
		return "", convertAssetError(err)
	}
	return content, nil
}

func (a *assetLoaderAdapter) LoadTemplateSet(name string) (*TemplateSet, error) {
	ts, err := a.resolver.LoadTemplateSet(name)
	if err != nil {
		return nil, convertAssetError(err)
	}
	return NewTemplateSet(ts.Name, ts.Viewer, ts.Export), nil
}

func (a *assetLoaderAdapter) LoadScript(name string) (string, error) {
	content, err := a.resolver.LoadScript(name)
	if err != nil {
		return "", convertAssetError(err)
	}
	return content, nil
}

// internalLoader feeds a public AssetLoader to the internal bundle loader.
type internalLoader struct {
	loader AssetLoader
}

func (l internalLoader) LoadStyle(name string) (string, error) {
	return l.loader.LoadStyle(name)
}

func (l internalLoader) LoadTemplateSet(name string) (*assets.TemplateSet, error) {
	ts, err := l.loader.LoadTemplateSet(name)
	if err != nil {
		return nil, err
	}
	if ts == nil || ts.Viewer == "" || ts.Export == "" {
		return nil, ErrIncompleteTemplateSet
	}
	return &assets.TemplateSet{Name: ts.Name, Viewer: ts.Viewer, Export: ts.Export}, nil
}

func (l internalLoader) LoadScript(name string) (string, error) {
	return l.loader.LoadScript(name)
}

// convertAssetError maps internal asset errors to public errors.
func convertAssetError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, assets.ErrStyleNotFound):
		return wrapError(ErrStyleNotFound, err)
	case errors.Is(err, assets.ErrTemplateSetNotFound):
		return wrapError(ErrTemplateSetNotFound, err)
	case errors.Is(err, assets.ErrIncompleteTemplateSet):
		return wrapError(ErrIncompleteTemplateSet, err)
	case errors.Is(err, assets.ErrScriptNotFound):
		return wrapError(ErrScriptNotFound, err)
	case errors.Is(err, assets.ErrInvalidBasePath), errors.Is(err, assets.ErrPathTraversal):
		return wrapError(ErrInvalidAssetPath, err)
	case errors.Is(err, assets.ErrInvalidAssetName):
		return wrapError(ErrStyleNotFound, err) // an invalid name cannot exist
	}
	return err
}

// wrapError keeps the original message and matches sentinel with errors.Is.
func wrapError(sentinel, original error) error {
	return &wrappedAssetError{sentinel: sentinel, original: original}
}

type wrappedAssetError struct {
	sentinel error
	original error
}

func (e *wrappedAssetError) Error() string {
	return e.original.Error()
}

// Unwrap returns the public sentinel; internal errors stay unexported.
func (e *wrappedAssetError) Unwrap() error {
	return e.sentinel
}

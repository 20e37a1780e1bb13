package assets

// AssetLoader defines the contract for loading the viewer's styles,
// templates and client scripts.
type AssetLoader interface {
	// LoadStyle loads a CSS style by name (without .css extension).
	// Returns ErrStyleNotFound if the style doesn't exist.
	// Returns ErrInvalidAssetName if the name contains invalid characters.
	LoadStyle(name string) (string, error)

	// LoadTemplateSet loads the viewer and export templates of a set.
	// Returns ErrTemplateSetNotFound if the set doesn't exist.
	// Returns ErrIncompleteTemplateSet if one of the templates is missing.
	LoadTemplateSet(name string) (*TemplateSet, error)

	// LoadScript loads a client script by name (without .js extension).
	// Returns ErrScriptNotFound if the script doesn't exist.
	LoadScript(name string) (string, error)
}

// Package assets provides the CSS styles, HTML templates and client script
// of the Markdown viewer.
//
// Assets are embedded in the binary. An optional directory can override any
// of them; missing files fall back to the embedded copy:
//
//	{dir}/styles/{name}.css
//	{dir}/templates/{set}/viewer.html
//	{dir}/templates/{set}/export.html
//	{dir}/static/{name}.js
//
// Asset names are validated with ValidateAssetName before any file access.
package assets

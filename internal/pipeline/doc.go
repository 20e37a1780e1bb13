// Package pipeline turns an assembled Markdown document into viewer HTML.
//
// Stages, in order:
//   - preprocessing (line endings, ==highlight== outside fences, blank runs)
//   - goldmark parsing with GFM, footnotes, math spans and raw HTML passthrough
//   - AST transforms: heading anchor ids, diagram block extraction
//   - rendering with per-construct display renderers and chroma highlighting
//   - optional bluemonday sanitizing
//
// Diagram blocks leave placeholders in the output; the diagram package fills
// them. Page assembly wraps the article in the viewer template.
package pipeline

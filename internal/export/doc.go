// Package export turns a rendered document into downloadable artifacts:
// standalone HTML, paginated PDF, Word-compatible HTML (.doc) and native
// OOXML (.docx).
package export

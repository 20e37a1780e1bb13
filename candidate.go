package mdview

import (
	"bytes"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
)

// CandidateFromBytes offers in-memory content as an upload.
func CandidateFromBytes(name string, data []byte) UploadCandidate {
	return UploadCandidate{
		Name: name,
		Size: int64(len(data)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

// CandidateFromPath offers a local file as an upload. The candidate is named
// after the file's base name. A file that cannot be stat'ed is still offered;
// validation then rejects it as unreadable.
func CandidateFromPath(path string) UploadCandidate {
	c := UploadCandidate{
		Name: filepath.Base(path),
		Open: func() (io.ReadCloser, error) {
			return os.Open(path) // #nosec G304 -- caller-provided path
		},
	}
	if info, err := os.Stat(path); err == nil {
		c.Size = info.Size()
	}
	return c
}

// CandidateFromMultipart offers one part of a multipart form as an upload.
func CandidateFromMultipart(fh *multipart.FileHeader) UploadCandidate {
	return UploadCandidate{
		Name: fh.Filename,
		Size: fh.Size,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

package upload

import (
	"io"

	"github.com/gabriel-vasile/mimetype"
)

// DetectContentType sniffs the MIME type of r and rewinds it to the start.
// Unrecognised content is reported as application/octet-stream.
func DetectContentType(r io.ReadSeeker) (string, error) {
	mtype, err := mimetype.DetectReader(r)
	if err != nil {
		return "", err
	}

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return "", err
	}

	return mtype.String(), nil
}

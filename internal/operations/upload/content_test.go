package upload

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectContentType(t *testing.T) {
	tests := []struct {
		name    string
		content []byte
		want    string
	}{
		{name: "png", content: []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), want: "image/png"},
		{name: "plain text", content: []byte("hello world\n"), want: "text/plain; charset=utf-8"},
		{name: "json", content: []byte(`{"a": 1}`), want: "application/json"},
		{name: "binary", content: []byte{0x00, 0x01, 0x02, 0x03, 0xfe}, want: "application/octet-stream"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := bytes.NewReader(tt.content)

			got, err := DetectContentType(r)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			// reader is rewound for the upload that follows
			rest, err := io.ReadAll(r)
			require.NoError(t, err)
			assert.Equal(t, tt.content, rest)
		})
	}
}

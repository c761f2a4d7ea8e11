package media

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pngHeader is enough for content sniffing to report image/png.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		img  Image
		max  int64
		ok   bool
	}{
		{"declared image", Image{ContentType: "image/jpeg", Data: []byte("x")}, 0, true},
		{"sniffed png", Image{Data: pngHeader}, 0, true},
		{"octet stream sniffed", Image{ContentType: "application/octet-stream", Data: pngHeader}, 0, true},
		{"text rejected", Image{ContentType: "text/plain", Data: []byte("hello")}, 0, false},
		{"sniffed text rejected", Image{Data: []byte("hello")}, 0, false},
		{"empty rejected", Image{ContentType: "image/png"}, 0, false},
		{"too large", Image{ContentType: "image/png", Data: make([]byte, 11)}, 10, false},
		{"at limit", Image{ContentType: "image/png", Data: make([]byte, 10)}, 10, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.img, tt.max)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidImage)
		})
	}
}

func TestLocalUpload(t *testing.T) {
	dir := t.TempDir()
	host, err := NewLocal(dir, "http://localhost:5000/uploads/")
	require.NoError(t, err)

	url, err := host.Upload(context.Background(), Image{Filename: "cover.PNG", Data: pngHeader})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "http://localhost:5000/uploads/"), url)
	require.True(t, strings.HasSuffix(url, ".png"), url)

	name := strings.TrimPrefix(url, "http://localhost:5000/uploads/")
	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	assert.Equal(t, pngHeader, data)

	again, err := host.Upload(context.Background(), Image{Data: pngHeader})
	require.NoError(t, err)
	assert.Equal(t, url, again)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestLocalUploadUsesFilenameExtensionForUnknownTypes(t *testing.T) {
	host, err := NewLocal(t.TempDir(), "/uploads")
	require.NoError(t, err)

	url, err := host.Upload(context.Background(), Image{Filename: "scan.TIFF", ContentType: "image/tiff", Data: []byte("II*\x00")})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(url, ".tiff"), url)
}

func TestLocalUploadHonoursCancellation(t *testing.T) {
	host, err := NewLocal(t.TempDir(), "/uploads")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = host.Upload(ctx, Image{Data: pngHeader})
	require.ErrorIs(t, err, context.Canceled)
}

func TestNewLocalRequiresDir(t *testing.T) {
	_, err := NewLocal(" ", "/uploads")
	require.Error(t, err)
}

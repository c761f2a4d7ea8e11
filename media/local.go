package media

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var extensions = map[string]string{
	"image/jpeg":    ".jpg",
	"image/png":     ".png",
	"image/gif":     ".gif",
	"image/webp":    ".webp",
	"image/svg+xml": ".svg",
	"image/avif":    ".avif",
}

// Local writes images into a directory served by the API itself. Files are
// named by the SHA-256 of their content so re-uploads are deduplicated.
type Local struct {
	dir     string
	baseURL string
}

func NewLocal(dir, baseURL string) (*Local, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, fmt.Errorf("media directory is required")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, err
	}
	return &Local{dir: abs, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (l *Local) Dir() string { return l.dir }

func (l *Local) Upload(ctx context.Context, img Image) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	sum := sha256.Sum256(img.Data)
	name := hex.EncodeToString(sum[:]) + extension(img)
	dst := filepath.Join(l.dir, name)

	if _, err := os.Stat(dst); err != nil {
		tmp, err := os.CreateTemp(l.dir, "upload-*")
		if err != nil {
			return "", err
		}
		tmpPath := tmp.Name()
		if _, err := tmp.Write(img.Data); err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
			return "", err
		}
		if err := tmp.Close(); err != nil {
			_ = os.Remove(tmpPath)
			return "", err
		}
		if err := os.Rename(tmpPath, dst); err != nil {
			_ = os.Remove(tmpPath)
			return "", err
		}
	}
	return l.baseURL + "/" + name, nil
}

func extension(img Image) string {
	if ext, ok := extensions[img.MediaType()]; ok {
		return ext
	}
	return strings.ToLower(filepath.Ext(img.Filename))
}

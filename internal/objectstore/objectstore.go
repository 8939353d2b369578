// Package objectstore holds uploaded product images.
package objectstore

import (
	"context"
	"errors"
	"path"
	"regexp"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

const publicPrefix = "public/"

var (
	ErrUploadFailed = errors.New("image upload failed")
	ErrExists       = errors.New("object already exists")
	ErrNotImage     = errors.New("file is not a supported image")
	ErrEmpty        = errors.New("file is empty")
)

// Object describes a stored file.
type Object struct {
	Key         string `json:"key"`
	URL         string `json:"url"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

// Store writes objects create-only: Put never replaces an existing key.
type Store interface {
	Put(ctx context.Context, key, contentType string, data []byte) (Object, error)
	Delete(ctx context.Context, key string) error
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// SanitizeKey builds a unique public key from a client file name.
// Whitespace runs become '_' and any directory parts are dropped.
func SanitizeKey(filename string) string {
	name := strings.ReplaceAll(filename, `\`, "/")
	name = path.Base(strings.TrimSpace(name))

	if name == "." || name == "/" || name == ".." {
		name = ""
	}

	name = whitespaceRun.ReplaceAllString(name, "_")

	if name == "" {
		return publicPrefix + uuid.NewString()
	}

	return publicPrefix + uuid.NewString() + "_" + name
}

var allowedImages = []string{
	"image/jpeg",
	"image/png",
	"image/gif",
	"image/webp",
	"image/avif",
	"image/bmp",
}

// DetectImage sniffs the content and returns its MIME type when it is an accepted image.
func DetectImage(data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmpty
	}

	mt := mimetype.Detect(data)

	if !mimetype.EqualsAny(mt.String(), allowedImages...) {
		return "", ErrNotImage
	}

	return mt.String(), nil
}

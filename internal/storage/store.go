package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

// ErrNotFound is returned by every Store when an object does not exist.
var ErrNotFound = errors.New("object not found")

type UploadResult struct {
	ObjectName string `json:"object_name"`
	Size       int64  `json:"size"`
}

// Store persists artifacts under slash-separated relative paths.
type Store interface {
	Open(ctx context.Context, objectName string) (io.ReadCloser, error)
	Put(ctx context.Context, objectName string, reader io.Reader, contentType string) (*UploadResult, error)
	Delete(ctx context.Context, objectName string) error
}

// PublicURL joins the configured base URL and an object path.
func PublicURL(baseURL, objectName string) string {
	if baseURL == "" {
		return objectName
	}
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(objectName, "/")
}

// NewArtifactName mints a collision-free object name under dir.
func NewArtifactName(dir, extension string) string {
	extension = strings.TrimPrefix(extension, ".")
	return path.Join(dir, uuid.New().String()+"."+extension)
}

func GenerateTemplateObjectName(templateID, filename string) string {
	return path.Join("templates", templateID, sanitizeFilename(filename))
}

func cleanObjectName(objectName string) (string, error) {
	cleaned := path.Clean("/" + strings.ReplaceAll(objectName, "\\", "/"))
	cleaned = strings.TrimPrefix(cleaned, "/")
	if cleaned == "" || cleaned == "." {
		return "", fmt.Errorf("invalid object name %q", objectName)
	}
	if cleaned != strings.TrimPrefix(path.Clean(objectName), "/") {
		return "", fmt.Errorf("invalid object name %q", objectName)
	}
	return cleaned, nil
}

func sanitizeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 || name == "." || name == "/" {
		return "file"
	}
	return b.String()
}

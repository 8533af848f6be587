package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// LocalStore keeps artifacts on the local filesystem under root.
type LocalStore struct {
	root string
}

var _ Store = (*LocalStore)(nil)

func NewLocalStore(root string) (*LocalStore, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve storage root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage root: %w", err)
	}
	return &LocalStore{root: abs}, nil
}

func (s *LocalStore) Root() string {
	return s.root
}

// Path resolves objectName to an absolute path inside root.
func (s *LocalStore) Path(objectName string) (string, error) {
	cleaned, err := cleanObjectName(objectName)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.root, filepath.FromSlash(cleaned)), nil
}

func (s *LocalStore) Put(ctx context.Context, objectName string, reader io.Reader, _ string) (*UploadResult, error) {
	target, err := s.Path(objectName)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	// write to a sibling temp file so readers never observe a partial artifact
	tmp, err := os.CreateTemp(filepath.Dir(target), ".upload-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	size, err := io.Copy(tmp, contextReader{ctx: ctx, r: reader})
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("failed to write %s: %w", objectName, err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("failed to finalize %s: %w", objectName, err)
	}

	cleaned, _ := cleanObjectName(objectName)
	return &UploadResult{ObjectName: cleaned, Size: size}, nil
}

func (s *LocalStore) Open(_ context.Context, objectName string) (io.ReadCloser, error) {
	target, err := s.Path(objectName)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(target)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, objectName)
	}
	return f, err
}

func (s *LocalStore) Delete(_ context.Context, objectName string) error {
	target, err := s.Path(objectName)
	if err != nil {
		return err
	}
	err = os.Remove(target)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrNotFound, objectName)
	}
	return err
}

// RemoveOlderThan deletes regular files under dir last modified before
// now-maxAge and returns how many were removed.
func (s *LocalStore) RemoveOlderThan(dir string, maxAge time.Duration) (int, error) {
	target, err := s.Path(dir)
	if err != nil {
		return 0, err
	}
	if _, err := os.Stat(target); errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}

	removed := 0
	err = filepath.WalkDir(target, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if time.Since(info.ModTime()) > maxAge {
			if err := os.Remove(path); err != nil {
				return err
			}
			removed++
		}
		return nil
	})
	return removed, err
}

type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

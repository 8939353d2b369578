package objectstore

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore writes objects under a directory served by the API at baseURL.
type LocalStore struct {
	dir     string
	baseURL string
}

func NewLocalStore(dir, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	return &LocalStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (s *LocalStore) Dir() string {
	return s.dir
}

func (s *LocalStore) path(key string) (string, error) {
	p := filepath.Join(s.dir, filepath.FromSlash(key))

	rel, err := filepath.Rel(s.dir, p)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", ErrUploadFailed
	}
	return p, nil
}

func (s *LocalStore) Put(_ context.Context, key, contentType string, data []byte) (Object, error) {
	p, err := s.path(key)
	if err != nil {
		return Object{}, err
	}

	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return Object{}, errors.Join(ErrUploadFailed, err)
	}

	f, err := os.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return Object{}, ErrExists
	}
	if err != nil {
		return Object{}, errors.Join(ErrUploadFailed, err)
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(p)
		return Object{}, errors.Join(ErrUploadFailed, err)
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(p)
		return Object{}, errors.Join(ErrUploadFailed, err)
	}

	return Object{
		Key:         key,
		URL:         s.baseURL + "/" + key,
		ContentType: contentType,
		Size:        int64(len(data)),
	}, nil
}

func (s *LocalStore) Delete(_ context.Context, key string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}

	err = os.Remove(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
)

// FileBackend stores each key as a JSON file under a directory
type FileBackend struct {
	dir string
}

// NewFileBackend creates the directory if needed
func NewFileBackend(dir string) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &FileBackend{dir: dir}, nil
}

func (f *FileBackend) path(key string) string {
	return filepath.Join(f.dir, url.PathEscape(key)+".json")
}

func (f *FileBackend) Get(key string) ([]byte, error) {
	raw, err := os.ReadFile(f.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, keyError("get", key, err)
	}
	return raw, nil
}

// Put writes through a temporary file so readers never see a partial record
func (f *FileBackend) Put(key string, value []byte) error {
	tmp, err := os.CreateTemp(f.dir, ".pending-*")
	if err != nil {
		return keyError("put", key, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		return keyError("put", key, err)
	}
	if err := tmp.Close(); err != nil {
		return keyError("put", key, err)
	}
	if err := os.Rename(tmp.Name(), f.path(key)); err != nil {
		return keyError("put", key, err)
	}
	return nil
}

func (f *FileBackend) Delete(key string) error {
	err := os.Remove(f.path(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return keyError("delete", key, err)
	}
	return nil
}

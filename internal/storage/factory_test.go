package storage

import (
	"context"
	"io"
	"testing"

	"github.com/vitrine-app/vitrine-backend/internal/config"
)

type fakeStorage struct{}

func (fakeStorage) Upload(ctx context.Context, path string, r io.Reader, size int64) (*UploadResult, error) {
	return &UploadResult{Path: path}, nil
}
func (fakeStorage) Download(ctx context.Context, path string) (io.ReadCloser, error) {
	return nil, nil
}
func (fakeStorage) Delete(ctx context.Context, path string) error              { return nil }
func (fakeStorage) Exists(ctx context.Context, path string) (bool, error)     { return false, nil }
func (fakeStorage) GetMetadata(ctx context.Context, path string) (*FileMetadata, error) {
	return nil, nil
}

func TestNewStorage_DispatchesToRegisteredFactory(t *testing.T) {
	Register("fake", func(cfg *config.Config) (Storage, error) {
		return fakeStorage{}, nil
	})

	cfg := &config.Config{}
	cfg.Storage.DefaultBackend = "fake"

	s, err := NewStorage(cfg)
	if err != nil {
		t.Fatalf("NewStorage() error: %v", err)
	}
	if _, ok := s.(fakeStorage); !ok {
		t.Errorf("NewStorage() returned %T, want fakeStorage", s)
	}
}

func TestNewStorage_UnknownBackend(t *testing.T) {
	cfg := &config.Config{}
	cfg.Storage.DefaultBackend = "tape"

	if _, err := NewStorage(cfg); err == nil {
		t.Error("NewStorage() = nil error for unknown backend, want error")
	}
}

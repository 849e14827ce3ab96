package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrDisabled is returned by the disabled backend.
var ErrDisabled = errors.New("object storage is not configured")

// ObjectInfo represents metadata for a remote file/object.
type ObjectInfo struct {
	Key          string
	Size         int64
	ContentType  string
	LastModified time.Time
}

// ObjectStorage captures the S3-compatible operations job documents need.
type ObjectStorage interface {
	ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error)
	PutObject(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	DownloadObject(ctx context.Context, key string, destPath string) error
	RemoveObject(ctx context.Context, key string) error
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

type disabledStorage struct{}

// NewDisabled returns a backend that rejects every call with ErrDisabled.
func NewDisabled() ObjectStorage {
	return disabledStorage{}
}

func (disabledStorage) ListObjects(context.Context, string) ([]ObjectInfo, error) {
	return nil, ErrDisabled
}

func (disabledStorage) PutObject(context.Context, string, io.Reader, int64, string) error {
	return ErrDisabled
}

func (disabledStorage) DownloadObject(context.Context, string, string) error {
	return ErrDisabled
}

func (disabledStorage) RemoveObject(context.Context, string) error {
	return ErrDisabled
}

func (disabledStorage) PresignGet(context.Context, string, time.Duration) (string, error) {
	return "", ErrDisabled
}

package storage

import (
	"context"
	"strings"
	"testing"

	"github.com/andresuchdata/eximdesk/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeEndpoint(t *testing.T) {
	tests := []struct {
		endpoint   string
		useSSL     bool
		wantHost   string
		wantSecure bool
	}{
		{"localhost:9000", false, "localhost:9000", false},
		{"s3.example.com", true, "s3.example.com", true},
		{"https://s3.example.com/", false, "s3.example.com", true},
		{"http://minio:9000", true, "minio:9000", false},
		{"//minio:9000", false, "minio:9000", false},
	}

	for _, tt := range tests {
		t.Run(tt.endpoint, func(t *testing.T) {
			host, secure := normalizeEndpoint(tt.endpoint, tt.useSSL)
			assert.Equal(t, tt.wantHost, host)
			assert.Equal(t, tt.wantSecure, secure)
		})
	}
}

func TestNewDisabled(t *testing.T) {
	s, err := New(context.Background(), config.StorageConfig{Enabled: false})
	require.NoError(t, err)

	err = s.PutObject(context.Background(), "jobs/24-25/IMP-1/a.pdf", strings.NewReader("x"), 1, "application/pdf")
	assert.ErrorIs(t, err, ErrDisabled)

	_, err = s.PresignGet(context.Background(), "k", 0)
	assert.ErrorIs(t, err, ErrDisabled)
}

func TestNewMinioClientRequiresSettings(t *testing.T) {
	_, err := NewMinioClient(context.Background(), config.StorageConfig{Enabled: true})
	assert.Error(t, err)

	_, err = NewMinioClient(context.Background(), config.StorageConfig{Enabled: true, Endpoint: "minio:9000"})
	assert.ErrorContains(t, err, "credentials")
}

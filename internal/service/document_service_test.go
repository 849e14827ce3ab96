package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/andresuchdata/eximdesk/internal/domain"
	"github.com/andresuchdata/eximdesk/internal/repository"
	"github.com/andresuchdata/eximdesk/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentService_UploadAndPresign(t *testing.T) {
	repo := newFakeJobRepo(&domain.Job{Year: "24-25", JobNo: "IMP/101"})
	store := newFakeStorage()
	svc := NewDocumentService(repo, store, 10*time.Minute)
	ctx, entry := auditCtx()

	doc, err := svc.Upload(ctx, 1, DocumentUpload{Filename: `C:\scans\bl copy.pdf`, Size: 5, Body: strings.NewReader("%PDF-")})
	require.NoError(t, err)

	assert.Equal(t, "bl copy.pdf", doc.Name)
	assert.Equal(t, "jobs/24-25/IMP-101/bl copy.pdf", doc.Key)
	assert.Equal(t, "application/pdf", doc.ContentType)
	assert.Equal(t, "ops", doc.UploadedBy)
	assert.Equal(t, []byte("%PDF-"), store.objects[doc.Key])
	assert.Equal(t, "documents", entry.Changes[0].Field)

	_, err = svc.Upload(ctx, 1, DocumentUpload{Filename: "bl copy.pdf", Size: 6, Body: strings.NewReader("%PDF-2")})
	require.NoError(t, err)
	job, _ := repo.Get(context.Background(), 1)
	require.Len(t, job.Documents, 1, "same name replaces the document")
	assert.Equal(t, int64(6), job.Documents[0].Size)

	url, err := svc.DownloadURL(context.Background(), 1, "bl copy.pdf")
	require.NoError(t, err)
	assert.Equal(t, "https://files.local/jobs/24-25/IMP-101/bl copy.pdf?ttl=600", url)

	_, err = svc.DownloadURL(context.Background(), 1, "missing.pdf")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDocumentService_Errors(t *testing.T) {
	repo := newFakeJobRepo(&domain.Job{Year: "24-25", JobNo: "J1"})
	svc := NewDocumentService(repo, nil, 0)

	_, err := svc.Upload(context.Background(), 1, DocumentUpload{Filename: "  ", Body: strings.NewReader("")})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Upload(context.Background(), 1, DocumentUpload{Filename: "a.pdf", Body: strings.NewReader("x")})
	assert.ErrorIs(t, err, storage.ErrDisabled)

	_, err = svc.Upload(context.Background(), 9, DocumentUpload{Filename: "a.pdf", Body: strings.NewReader("x")})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

package service

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/andresuchdata/eximdesk/internal/domain"
	"github.com/andresuchdata/eximdesk/internal/repository"
	"github.com/andresuchdata/eximdesk/internal/storage"
	"github.com/rs/zerolog/log"
)

const defaultPresignTTL = 15 * time.Minute

// DocumentUpload is a file attached to a job.
type DocumentUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

type DocumentService struct {
	repo       repository.JobRepository
	store      storage.ObjectStorage
	presignTTL time.Duration
	now        func() time.Time
}

func NewDocumentService(repo repository.JobRepository, store storage.ObjectStorage, presignTTL time.Duration) *DocumentService {
	if store == nil {
		store = storage.NewDisabled()
	}
	if presignTTL <= 0 {
		presignTTL = defaultPresignTTL
	}
	return &DocumentService{repo: repo, store: store, presignTTL: presignTTL, now: time.Now}
}

// DocumentKey returns the object key of a job document.
func DocumentKey(job *domain.Job, filename string) string {
	return path.Join("jobs", objectSegment(job.Year), objectSegment(job.JobNo), filename)
}

// Upload stores the file and appends it to the job's documents. A document with
// the same file name is replaced.
func (s *DocumentService) Upload(ctx context.Context, jobID int64, upload DocumentUpload) (*domain.Document, error) {
	name := cleanFilename(upload.Filename)
	if name == "" {
		return nil, invalidf("file name is required")
	}

	job, err := s.repo.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}

	contentType := upload.ContentType
	if contentType == "" {
		contentType = mime.TypeByExtension(filepath.Ext(name))
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := DocumentKey(job, name)
	if err := s.store.PutObject(ctx, key, upload.Body, upload.Size, contentType); err != nil {
		return nil, fmt.Errorf("failed to store document: %w", err)
	}

	doc := domain.Document{
		Name:        name,
		Key:         key,
		ContentType: contentType,
		Size:        upload.Size,
		UploadedAt:  s.now().UTC(),
		UploadedBy:  Actor(ctx),
	}

	before, after, err := s.repo.SaveDocument(ctx, job.ID, doc)
	if err != nil {
		return nil, err
	}

	annotate(ctx, domain.AuditUpdate, jobEntity, strconv.FormatInt(job.ID, 10), domain.FieldChanges{
		{Field: "documents", Old: before, New: after},
	})
	log.Info().Int64("job_id", job.ID).Str("key", key).Int64("size", upload.Size).Msg("job document uploaded")
	return &doc, nil
}

// DownloadURL returns a presigned link to the named document of a job.
func (s *DocumentService) DownloadURL(ctx context.Context, jobID int64, name string) (string, error) {
	job, err := s.repo.Get(ctx, jobID)
	if err != nil {
		return "", err
	}
	for _, d := range job.Documents {
		if d.Name == name {
			return s.store.PresignGet(ctx, d.Key, s.presignTTL)
		}
	}
	return "", fmt.Errorf("document %q: %w", name, repository.ErrNotFound)
}

func cleanFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if name == "." || name == "/" {
		return ""
	}
	return name
}

func objectSegment(s string) string {
	return strings.NewReplacer("/", "-", "\\", "-", " ", "_").Replace(strings.TrimSpace(s))
}

package drive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/andresuchdata/eximdesk/internal/domain"
	"github.com/andresuchdata/eximdesk/internal/importer"
	"github.com/rs/zerolog/log"
)

// Importer starts an import run over local files.
type Importer interface {
	Start(ctx context.Context, source, startedBy string, files []domain.UploadedFile) (*domain.ImportRun, error)
}

type IngestService struct {
	source     Source
	downloader *Downloader
	importer   Importer
	folderID   string
	tempDir    string
}

func NewIngestService(source Source, imp Importer, folderID, tempDir string) *IngestService {
	return &IngestService{
		source:     source,
		downloader: NewDownloader(source),
		importer:   imp,
		folderID:   folderID,
		tempDir:    tempDir,
	}
}

// ListFiles lists the configured folder, or folderID when given.
func (s *IngestService) ListFiles(ctx context.Context, folderID string) ([]*File, error) {
	if folderID == "" {
		folderID = s.folderID
	}
	return s.source.ListFiles(ctx, folderID)
}

// Ingest downloads job sheets from the folder and starts an import run.
// fileIDs limits the run to those files.
func (s *IngestService) Ingest(ctx context.Context, startedBy, folderID string, fileIDs []string) (*domain.ImportRun, error) {
	if folderID == "" {
		folderID = s.folderID
	}

	dir := filepath.Join(s.tempDir, fmt.Sprintf("drive-%d", time.Now().UnixNano()))
	files, err := s.downloader.DownloadFolder(ctx, DownloadOptions{
		FolderID:    folderID,
		DownloadDir: dir,
		FileIDs:     fileIDs,
	})
	if err != nil {
		_ = os.RemoveAll(dir)
		return nil, err
	}
	if len(files) == 0 {
		_ = os.RemoveAll(dir)
		return nil, fmt.Errorf("no job sheets found in drive folder %s", folderID)
	}

	log.Info().Str("folder_id", folderID).Int("files", len(files)).Msg("drive files downloaded for import")

	return s.importer.Start(ctx, importer.SourceDrive, startedBy, files)
}

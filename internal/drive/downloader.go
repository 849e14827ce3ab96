package drive

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/andresuchdata/eximdesk/internal/domain"
	"github.com/rs/zerolog/log"
)

var ErrFolderNotFound = errors.New("drive folder not found")

// DownloadOptions controls how files are pulled from Google Drive.
type DownloadOptions struct {
	FolderID    string
	DownloadDir string
	// FileIDs restricts the download to these files when set.
	FileIDs []string
}

// Downloader wraps a Source to download job sheets from a specific folder.
type Downloader struct {
	source Source
}

// NewDownloader creates a new Downloader.
func NewDownloader(s Source) *Downloader {
	return &Downloader{source: s}
}

// DownloadFolder downloads all non-trashed job sheets from the given Drive
// folder into DownloadDir.
//
//   - CSV and XLSX files are downloaded as-is.
//   - Native Google Sheets are exported as XLSX.
func (d *Downloader) DownloadFolder(ctx context.Context, opts DownloadOptions) ([]domain.UploadedFile, error) {
	if opts.DownloadDir == "" {
		return nil, fmt.Errorf("download dir is required")
	}
	if err := os.MkdirAll(opts.DownloadDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create download dir: %w", err)
	}

	files, err := d.source.ListFiles(ctx, opts.FolderID)
	if err != nil {
		return nil, err
	}

	wanted := map[string]bool{}
	for _, id := range opts.FileIDs {
		wanted[id] = true
	}

	var downloaded []domain.UploadedFile
	for _, f := range files {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if len(wanted) > 0 && !wanted[f.ID] {
			continue
		}

		name, export := localName(f)
		if name == "" {
			continue
		}

		localPath := filepath.Join(opts.DownloadDir, name)
		size, err := d.fetch(ctx, f, localPath, export)
		if err != nil {
			return nil, fmt.Errorf("failed to download %s: %w", f.Name, err)
		}

		log.Debug().Str("file", f.Name).Int64("bytes", size).Msg("downloaded drive file")
		downloaded = append(downloaded, domain.UploadedFile{Filename: name, Path: localPath, Size: size})
	}

	return downloaded, nil
}

// localName returns the local file name for an importable entry, or "" to skip it.
func localName(f *File) (string, bool) {
	if f.IsSpreadsheet() {
		return sanitize(f.Name) + ".xlsx", true
	}
	ext := strings.ToLower(filepath.Ext(f.Name))
	if ext != ".csv" && ext != ".xlsx" {
		return "", false
	}
	return sanitize(strings.TrimSuffix(f.Name, filepath.Ext(f.Name))) + ext, false
}

func sanitize(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, strings.TrimSpace(name))
	if name == "" || name == "." || name == ".." {
		return "sheet"
	}
	return name
}

func (d *Downloader) fetch(ctx context.Context, f *File, localPath string, export bool) (int64, error) {
	out, err := os.Create(localPath)
	if err != nil {
		return 0, fmt.Errorf("failed to create local file %s: %w", localPath, err)
	}
	defer out.Close()

	if export {
		err = d.source.ExportFile(ctx, f.ID, mimeXLSX, out)
	} else {
		err = d.source.DownloadFile(ctx, f.ID, out)
	}
	if err != nil {
		// Best-effort remove partial file
		_ = os.Remove(localPath)
		return 0, err
	}

	info, err := out.Stat()
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

package importer

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/andresuchdata/eximdesk/internal/domain"
	"github.com/andresuchdata/eximdesk/internal/jobsheet"
)

// CollectFiles expands paths into importable sheets. Directories contribute
// their CSV and XLSX entries in name order; unsupported files given
// explicitly are an error.
func CollectFiles(paths []string) ([]domain.UploadedFile, error) {
	var files []domain.UploadedFile
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", p, err)
		}

		if !info.IsDir() {
			if _, err := jobsheet.DetectFormat(p); err != nil {
				return nil, err
			}
			files = append(files, domain.UploadedFile{Filename: filepath.Base(p), Path: p, Size: info.Size()})
			continue
		}

		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read dir %s: %w", p, err)
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			if _, err := jobsheet.DetectFormat(e.Name()); err != nil {
				continue
			}
			fi, err := e.Info()
			if err != nil {
				return nil, err
			}
			files = append(files, domain.UploadedFile{
				Filename: e.Name(),
				Path:     filepath.Join(p, e.Name()),
				Size:     fi.Size(),
			})
		}
	}
	return files, nil
}

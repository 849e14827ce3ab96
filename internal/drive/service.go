package drive

import (
	"context"
	"fmt"
	"io"
	"strings"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

const (
	mimeFolder      = "application/vnd.google-apps.folder"
	mimeSpreadsheet = "application/vnd.google-apps.spreadsheet"
	mimeXLSX        = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Source is the subset of Drive the ingest flow needs.
type Source interface {
	ListFiles(ctx context.Context, folderID string) ([]*File, error)
	DownloadFile(ctx context.Context, fileID string, w io.Writer) error
	ExportFile(ctx context.Context, fileID, mimeType string, w io.Writer) error
}

type Service struct {
	srv *drive.Service
}

func NewService(ctx context.Context, credentialsJSON string) (*Service, error) {
	// Parse credentials from JSON
	config, err := google.JWTConfigFromJSON(
		[]byte(credentialsJSON),
		drive.DriveReadonlyScope,
	)
	if err != nil {
		return nil, fmt.Errorf("unable to parse client secret file to config: %w", err)
	}

	// Create the JWT client
	client := config.Client(ctx)

	// Create the Drive service
	srv, err := drive.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve Drive client: %w", err)
	}

	return &Service{srv: srv}, nil
}

type File struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	MimeType     string `json:"mimeType"`
	ModifiedTime string `json:"modifiedTime,omitempty"`
	Size         int64  `json:"size,string,omitempty"`
}

// IsFolder reports whether the entry is a Drive folder.
func (f *File) IsFolder() bool {
	return f.MimeType == mimeFolder
}

// IsSpreadsheet reports whether the entry is a native Google Sheet.
func (f *File) IsSpreadsheet() bool {
	return f.MimeType == mimeSpreadsheet
}

func (s *Service) ListFiles(ctx context.Context, folderID string) ([]*File, error) {
	var files []*File

	// If no folder ID is provided, use "root"
	if folderID == "" {
		folderID = "root"
	}

	pageToken := ""
	for {
		call := s.srv.Files.List().
			Context(ctx).
			Q(fmt.Sprintf("'%s' in parents and trashed=false", escapeQuery(folderID))).
			Fields("nextPageToken, files(id, name, mimeType, modifiedTime, size)").
			OrderBy("name")
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		result, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("unable to retrieve files: %w", err)
		}

		// Convert to our File type
		for _, f := range result.Files {
			files = append(files, &File{
				ID:           f.Id,
				Name:         f.Name,
				MimeType:     f.MimeType,
				ModifiedTime: f.ModifiedTime,
				Size:         f.Size,
			})
		}

		pageToken = result.NextPageToken
		if pageToken == "" {
			break
		}
	}

	return files, nil
}

func (s *Service) DownloadFile(ctx context.Context, fileID string, w io.Writer) error {
	resp, err := s.srv.Files.Get(fileID).Context(ctx).Download()
	if err != nil {
		return fmt.Errorf("unable to download file: %w", err)
	}
	defer resp.Body.Close()

	_, err = io.Copy(w, resp.Body)
	return err
}

// ExportFile converts a native Google document into mimeType.
func (s *Service) ExportFile(ctx context.Context, fileID, mimeType string, w io.Writer) error {
	resp, err := s.srv.Files.Export(fileID, mimeType).Context(ctx).Download()
	if err != nil {
		return fmt.Errorf("unable to export file: %w", err)
	}
	defer resp.Body.Close()

	_, err = io.Copy(w, resp.Body)
	return err
}

func (s *Service) FindFolderByPath(ctx context.Context, path string) (string, error) {
	if path == "" {
		return "root", nil
	}

	folders := strings.Split(path, "/")
	currentID := "root"

	for _, folder := range folders {
		if folder == "" {
			continue
		}

		result, err := s.srv.Files.List().
			Context(ctx).
			Q(fmt.Sprintf("'%s' in parents and name='%s' and mimeType='%s' and trashed=false",
				escapeQuery(currentID), escapeQuery(folder), mimeFolder)).
			Fields("files(id, name)").
			Do()
		if err != nil {
			return "", fmt.Errorf("error finding folder %s: %w", folder, err)
		}

		if len(result.Files) == 0 {
			return "", fmt.Errorf("%w: %s", ErrFolderNotFound, folder)
		}

		currentID = result.Files[0].Id
	}

	return currentID, nil
}

func escapeQuery(v string) string {
	return strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(v)
}

var _ Source = (*Service)(nil)

package drive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/andresuchdata/eximdesk/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	files    []*File
	content  map[string]string
	exported []string
}

func (s *fakeSource) ListFiles(_ context.Context, folderID string) ([]*File, error) {
	if folderID == "missing" {
		return nil, errors.New("404")
	}
	return s.files, nil
}

func (s *fakeSource) DownloadFile(_ context.Context, fileID string, w io.Writer) error {
	_, err := io.WriteString(w, s.content[fileID])
	return err
}

func (s *fakeSource) ExportFile(_ context.Context, fileID, mimeType string, w io.Writer) error {
	s.exported = append(s.exported, fileID+":"+mimeType)
	_, err := io.WriteString(w, s.content[fileID])
	return err
}

type fakeImporter struct {
	files []domain.UploadedFile
	actor string
}

func (i *fakeImporter) Start(_ context.Context, source, startedBy string, files []domain.UploadedFile) (*domain.ImportRun, error) {
	i.files = files
	i.actor = startedBy
	return &domain.ImportRun{ID: 1, Source: source, Status: domain.ImportPending, TotalFiles: len(files), StartedBy: startedBy}, nil
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		files: []*File{
			{ID: "1", Name: "jobs.csv", MimeType: "text/csv"},
			{ID: "2", Name: "notes.pdf", MimeType: "application/pdf"},
			{ID: "3", Name: "Tracker 24/25", MimeType: mimeSpreadsheet},
			{ID: "4", Name: "archive", MimeType: mimeFolder},
		},
		content: map[string]string{"1": "Job No,Year\nIMP-1,24-25\n", "3": "xlsx-bytes"},
	}
}

func TestDownloadFolder(t *testing.T) {
	src := newFakeSource()
	dir := t.TempDir()

	files, err := NewDownloader(src).DownloadFolder(context.Background(), DownloadOptions{FolderID: "f", DownloadDir: dir})
	require.NoError(t, err)
	require.Len(t, files, 2)

	assert.Equal(t, "jobs.csv", files[0].Filename)
	body, err := os.ReadFile(files[0].Path)
	require.NoError(t, err)
	assert.Equal(t, src.content["1"], string(body))

	assert.Equal(t, "Tracker 24_25.xlsx", files[1].Filename)
	assert.Equal(t, filepath.Join(dir, "Tracker 24_25.xlsx"), files[1].Path)
	assert.Equal(t, []string{"3:" + mimeXLSX}, src.exported)
}

func TestDownloadFolderFiltersByID(t *testing.T) {
	files, err := NewDownloader(newFakeSource()).DownloadFolder(context.Background(), DownloadOptions{
		DownloadDir: t.TempDir(),
		FileIDs:     []string{"3"},
	})
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "Tracker 24_25.xlsx", files[0].Filename)
}

func TestDownloadFolderRequiresDir(t *testing.T) {
	_, err := NewDownloader(newFakeSource()).DownloadFolder(context.Background(), DownloadOptions{})
	assert.Error(t, err)
}

func newTestRouter(imp *fakeImporter, src Source, tempDir string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewHandler(nil, NewIngestService(src, imp, "folder", tempDir), func(*gin.Context) string { return "ops" })
	h.RegisterRoutes(r.Group("/api/v1"))
	return r
}

func TestHandlerListFiles(t *testing.T) {
	r := newTestRouter(&fakeImporter{}, newFakeSource(), t.TempDir())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/drive/files", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var files []File
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &files))
	assert.Len(t, files, 4)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/drive/files?folderId=missing", nil))
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestHandlerIngest(t *testing.T) {
	imp := &fakeImporter{}
	r := newTestRouter(imp, newFakeSource(), t.TempDir())

	body, _ := json.Marshal(map[string]interface{}{"file_ids": []string{"1"}})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/drive/ingest", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusAccepted, w.Code)
	require.Len(t, imp.files, 1)
	assert.Equal(t, "jobs.csv", imp.files[0].Filename)
	assert.Equal(t, "ops", imp.actor)

	var run domain.ImportRun
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &run))
	assert.Equal(t, "drive", run.Source)
}

func TestHandlerIngestNothingToImport(t *testing.T) {
	src := newFakeSource()
	src.files = []*File{{ID: "2", Name: "notes.pdf"}}
	r := newTestRouter(&fakeImporter{}, src, t.TempDir())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/drive/ingest", nil))
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

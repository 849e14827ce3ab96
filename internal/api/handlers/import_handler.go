package handlers

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/andresuchdata/eximdesk/internal/domain"
	"github.com/andresuchdata/eximdesk/internal/importer"
	"github.com/andresuchdata/eximdesk/internal/jobsheet"
	"github.com/andresuchdata/eximdesk/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type ImportHandler struct {
	service  *service.ImportService
	tempDir  string
	maxBytes int64
}

func NewImportHandler(service *service.ImportService, tempDir string, maxUploadMB int64) *ImportHandler {
	if maxUploadMB <= 0 {
		maxUploadMB = 25
	}
	return &ImportHandler{service: service, tempDir: tempDir, maxBytes: maxUploadMB << 20}
}

// Upload saves the multipart "files" sheets and starts an import run.
func (h *ImportHandler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes)
	form, err := c.MultipartForm()
	if err != nil {
		errorResponse(c, http.StatusBadRequest, "invalid form data")
		return
	}

	files := form.File["files"]
	if len(files) == 0 {
		files = form.File["file"]
	}
	if len(files) == 0 {
		errorResponse(c, http.StatusBadRequest, "no files provided")
		return
	}

	for _, file := range files {
		if _, err := jobsheet.DetectFormat(file.Filename); err != nil {
			respondError(c, err)
			return
		}
	}

	dir := filepath.Join(h.tempDir, fmt.Sprintf("upload-%d", time.Now().UnixNano()))
	if err := os.MkdirAll(dir, 0755); err != nil {
		respondError(c, fmt.Errorf("failed to create upload dir: %w", err))
		return
	}

	uploaded := make([]domain.UploadedFile, 0, len(files))
	for i, file := range files {
		// Index prefix keeps same-named sheets apart.
		filePath := filepath.Join(dir, fmt.Sprintf("%02d_%s", i, filepath.Base(file.Filename)))
		if err := c.SaveUploadedFile(file, filePath); err != nil {
			log.Error().Err(err).Str("filename", file.Filename).Msg("failed to save uploaded file")
			continue
		}
		uploaded = append(uploaded, domain.UploadedFile{
			Filename: file.Filename,
			Path:     filePath,
			Size:     file.Size,
		})
	}
	if len(uploaded) == 0 {
		_ = os.RemoveAll(dir)
		errorResponse(c, http.StatusBadRequest, "no valid files to process")
		return
	}

	run, err := h.service.Start(c.Request.Context(), importer.SourceUpload, uploaded)
	if err != nil {
		_ = os.RemoveAll(dir)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, run)
}

func (h *ImportHandler) ListRuns(c *gin.Context) {
	runs, err := h.service.ListRuns(c.Request.Context(), parsePositiveIntWithDefault(c.Query("limit"), 20))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, runs)
}

func (h *ImportHandler) GetRun(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	run, err := h.service.GetRun(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, run)
}

package drive

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
	ingest  *IngestService
	actor   func(c *gin.Context) string
}

// NewHandler wires the Drive endpoints. actor names the caller for the import run.
func NewHandler(service *Service, ingest *IngestService, actor func(c *gin.Context) string) *Handler {
	return &Handler{
		service: service,
		ingest:  ingest,
		actor:   actor,
	}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/drive/files", h.ListFiles)
	rg.POST("/drive/ingest", h.Ingest)
}

func (h *Handler) ListFiles(c *gin.Context) {
	folderID := c.Query("folderId")

	if folderPath := c.Query("path"); folderPath != "" && h.service != nil {
		// Find folder by path
		id, err := h.service.FindFolderByPath(c.Request.Context(), folderPath)
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, ErrFolderNotFound) {
				status = http.StatusNotFound
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}
		folderID = id
	}

	files, err := h.ingest.ListFiles(c.Request.Context(), folderID)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	if files == nil {
		files = []*File{}
	}

	c.JSON(http.StatusOK, files)
}

type ingestRequest struct {
	FolderID string   `json:"folder_id"`
	FileIDs  []string `json:"file_ids"`
}

func (h *Handler) Ingest(c *gin.Context) {
	var req ingestRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	if fileID := c.Query("fileId"); fileID != "" {
		req.FileIDs = append(req.FileIDs, fileID)
	}

	run, err := h.ingest.Ingest(c.Request.Context(), h.actor(c), req.FolderID, req.FileIDs)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "ingestion failed: " + err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, run)
}

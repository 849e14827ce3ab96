package handlers

import (
	"net/http"
	"strings"

	"github.com/andresuchdata/eximdesk/internal/domain"
	"github.com/andresuchdata/eximdesk/internal/service"
	"github.com/gin-gonic/gin"
)

type DirectoryHandler struct {
	service *service.DirectoryService
}

func NewDirectoryHandler(service *service.DirectoryService) *DirectoryHandler {
	return &DirectoryHandler{service: service}
}

func parseKind(c *gin.Context) (domain.DirectoryKind, bool) {
	kind, ok := domain.ParseDirectoryKind(c.Param("kind"))
	if !ok {
		errorResponse(c, http.StatusNotFound, "unknown directory "+c.Param("kind"))
	}
	return kind, ok
}

func parseListFilter(c *gin.Context) domain.ListFilter {
	return domain.ListFilter{
		Search:   strings.TrimSpace(c.Query("search")),
		Page:     parsePositiveIntWithDefault(c.Query("page"), 1),
		PageSize: parsePositiveIntWithDefault(c.Query("page_size"), 50),
	}
}

func (h *DirectoryHandler) List(c *gin.Context) {
	kind, ok := parseKind(c)
	if !ok {
		return
	}

	entries, total, err := h.service.List(c.Request.Context(), kind, parseListFilter(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, listResponse{Items: entries, Total: total})
}

func (h *DirectoryHandler) Get(c *gin.Context) {
	kind, ok := parseKind(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	entry, err := h.service.Get(c.Request.Context(), kind, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (h *DirectoryHandler) Create(c *gin.Context) {
	kind, ok := parseKind(c)
	if !ok {
		return
	}
	var entry domain.DirectoryEntry
	if !bindJSON(c, &entry) {
		return
	}

	created, err := h.service.Create(c.Request.Context(), kind, &entry)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *DirectoryHandler) Update(c *gin.Context) {
	kind, ok := parseKind(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	var entry domain.DirectoryEntry
	if !bindJSON(c, &entry) {
		return
	}

	updated, err := h.service.Update(c.Request.Context(), kind, id, &entry)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *DirectoryHandler) Delete(c *gin.Context) {
	kind, ok := parseKind(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), kind, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

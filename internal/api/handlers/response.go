package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/andresuchdata/eximdesk/internal/jobsheet"
	"github.com/andresuchdata/eximdesk/internal/repository"
	"github.com/andresuchdata/eximdesk/internal/service"
	"github.com/andresuchdata/eximdesk/internal/storage"
	"github.com/andresuchdata/eximdesk/internal/validation"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

func errorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{"error": message})
}

// respondError maps service and repository errors onto HTTP status codes.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, jobsheet.ErrUnsupportedFormat):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, repository.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, repository.ErrConflict), errors.Is(err, service.ErrInvalidState):
		status = http.StatusConflict
	case errors.Is(err, storage.ErrDisabled):
		status = http.StatusServiceUnavailable
	}

	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
		errorResponse(c, status, "internal server error")
		return
	}
	errorResponse(c, status, err.Error())
}

// bindJSON binds the request body and answers 400 with the validation
// details when it does not fit.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		errorResponse(c, http.StatusBadRequest, validation.Describe(err))
		return false
	}
	return true
}

func parsePositiveIntWithDefault(value string, fallback int) int {
	if fallback <= 0 {
		fallback = 50
	}
	if v, err := strconv.Atoi(strings.TrimSpace(value)); err == nil && v > 0 {
		return v
	}
	return fallback
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		errorResponse(c, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

type listResponse struct {
	Items interface{} `json:"items"`
	Total int         `json:"total"`
}

package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/andresuchdata/eximdesk/internal/domain"
	"github.com/andresuchdata/eximdesk/internal/jobsheet"
	"github.com/andresuchdata/eximdesk/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

var exportContentTypes = map[jobsheet.Format]string{
	jobsheet.FormatCSV:  "text/csv",
	jobsheet.FormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

type JobHandler struct {
	jobs      *service.JobService
	billing   *service.BillingService
	documents *service.DocumentService
	reports   *service.ReportService
}

func NewJobHandler(jobs *service.JobService, billing *service.BillingService, documents *service.DocumentService, reports *service.ReportService) *JobHandler {
	return &JobHandler{jobs: jobs, billing: billing, documents: documents, reports: reports}
}

func parseJobFilter(c *gin.Context) domain.JobFilter {
	filter := domain.JobFilter{
		Page:          parsePositiveIntWithDefault(c.Query("page"), 1),
		PageSize:      parsePositiveIntWithDefault(c.Query("page_size"), 50),
		Year:          strings.TrimSpace(c.Query("year")),
		Importer:      strings.TrimSpace(c.Query("importer")),
		Search:        strings.TrimSpace(c.Query("search")),
		SortField:     c.DefaultQuery("sort_field", "rank"),
		SortDirection: c.DefaultQuery("sort_direction", "asc"),
	}

	if status := strings.TrimSpace(c.Query("status")); status != "" {
		filter.Status = domain.JobStatus(status)
	}
	if detailed := strings.TrimSpace(c.Query("detailed_status")); detailed != "" {
		if s, ok := domain.ParseDetailedStatus(detailed); ok {
			detailed = string(s)
		}
		filter.DetailedStatus = detailed
	}
	return filter
}

func (h *JobHandler) List(c *gin.Context) {
	page, err := h.jobs.List(c.Request.Context(), parseJobFilter(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *JobHandler) Years(c *gin.Context) {
	years, err := h.jobs.Years(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, years)
}

func (h *JobHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	job, err := h.jobs.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h *JobHandler) Create(c *gin.Context) {
	var input domain.Job
	if !bindJSON(c, &input) {
		return
	}

	job, err := h.jobs.Create(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, job)
}

func (h *JobHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var input domain.Job
	if !bindJSON(c, &input) {
		return
	}

	job, err := h.jobs.Update(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h *JobHandler) Cancel(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	job, err := h.jobs.Cancel(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h *JobHandler) Bill(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req service.BillRequest
	if !bindJSON(c, &req) {
		return
	}

	job, invoice, err := h.billing.Bill(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"job":     job,
		"invoice": invoice,
	})
}

func (h *JobHandler) Invoices(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	invoices, err := h.billing.ListInvoices(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoices)
}

// UploadDocument stores the multipart "file" field against the job.
func (h *JobHandler) UploadDocument(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		errorResponse(c, http.StatusBadRequest, "file is required")
		return
	}
	file, err := header.Open()
	if err != nil {
		errorResponse(c, http.StatusBadRequest, "failed to read uploaded file")
		return
	}
	defer file.Close()

	doc, err := h.documents.Upload(c.Request.Context(), id, service.DocumentUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, doc)
}

func (h *JobHandler) DocumentURL(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	name := strings.TrimSpace(c.Query("name"))
	if name == "" {
		errorResponse(c, http.StatusBadRequest, "name is required")
		return
	}

	url, err := h.documents.DownloadURL(c.Request.Context(), id, name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

// Export streams the filtered job list as an XLSX or CSV attachment.
func (h *JobHandler) Export(c *gin.Context) {
	format, err := service.ParseExportFormat(strings.ToLower(c.Query("format")))
	if err != nil {
		respondError(c, err)
		return
	}

	var buf bytes.Buffer
	count, err := h.reports.ExportJobs(c.Request.Context(), parseJobFilter(c), format, &buf)
	if err != nil {
		respondError(c, err)
		return
	}

	filename := fmt.Sprintf("jobs-%s.%s", time.Now().Format("20060102-150405"), format)
	log.Info().Int("jobs", count).Str("format", string(format)).Msg("jobs exported")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, exportContentTypes[format], buf.Bytes())
}

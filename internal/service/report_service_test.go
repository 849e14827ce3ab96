package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"testing"

	"github.com/andresuchdata/eximdesk/internal/domain"
	"github.com/andresuchdata/eximdesk/internal/jobsheet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseExportFormat(t *testing.T) {
	f, err := ParseExportFormat("")
	require.NoError(t, err)
	assert.Equal(t, jobsheet.FormatXLSX, f)

	f, err = ParseExportFormat("csv")
	require.NoError(t, err)
	assert.Equal(t, jobsheet.FormatCSV, f)

	_, err = ParseExportFormat("pdf")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestReportService_ExportJobsPagesThroughAll(t *testing.T) {
	var jobs []*domain.Job
	for i := 0; i < exportPageSize+3; i++ {
		jobs = append(jobs, &domain.Job{Year: "24-25", JobNo: fmt.Sprintf("J%04d", i)})
	}
	jobs = append(jobs, &domain.Job{Year: "23-24", JobNo: "OLD"})
	svc := NewReportService(newFakeJobRepo(jobs...))

	var buf bytes.Buffer
	n, err := svc.ExportJobs(context.Background(), domain.JobFilter{Year: "24-25", Page: 3, PageSize: 5}, jobsheet.FormatCSV, &buf)
	require.NoError(t, err)
	assert.Equal(t, exportPageSize+3, n)

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, exportPageSize+4)
	assert.Equal(t, jobsheet.ExportHeader, records[0])
}

func TestReportService_ExportJobsXLSX(t *testing.T) {
	svc := NewReportService(newFakeJobRepo(&domain.Job{Year: "24-25", JobNo: "J1"}))

	var buf bytes.Buffer
	n, err := svc.ExportJobs(context.Background(), domain.JobFilter{}, jobsheet.FormatXLSX, &buf)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []byte("PK"), buf.Bytes()[:2])
}

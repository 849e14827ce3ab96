// Package jobsheet reads and writes the job tracking spreadsheet.
package jobsheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/andresuchdata/eximdesk/internal/domain"
	"github.com/xuri/excelize/v2"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported sheet format")
	ErrMissingColumns    = errors.New("sheet is missing required columns")
)

// Format is a sheet file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// DetectFormat infers the format from a file name.
func DetectFormat(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
	}
}

// RowError reports a sheet row that could not be used.
type RowError struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

// Result is the outcome of parsing one sheet.
type Result struct {
	Jobs   []*domain.Job `json:"-"`
	Rows   int           `json:"rows"`
	Errors []RowError    `json:"errors,omitempty"`
}

// ParseFile reads a CSV or XLSX sheet from disk.
func ParseFile(path string) (*Result, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	return Parse(f, format)
}

// Parse reads a sheet in the given format.
func Parse(r io.Reader, format Format) (*Result, error) {
	var (
		records [][]string
		err     error
	)
	switch format {
	case FormatCSV:
		records, err = readCSV(r)
	case FormatXLSX:
		records, err = readXLSX(r)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, err
	}
	return parseRecords(records)
}

func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	return records, nil
}

// readXLSX returns the raw cell values of the first sheet. Raw values keep
// date cells as serial numbers regardless of the cell's display format.
func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx has no sheets")
	}
	sheet := sheets[0]

	rows, err := f.Rows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows from sheet %s: %w", sheet, err)
	}
	defer rows.Close()

	var records [][]string
	for rows.Next() {
		record, err := rows.Columns(excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("failed to read row from sheet %s: %w", sheet, err)
		}
		records = append(records, record)
	}
	if err := rows.Error(); err != nil {
		return nil, fmt.Errorf("error iterating rows in sheet %s: %w", sheet, err)
	}

	return records, nil
}

func parseRecords(records [][]string) (*Result, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: sheet is empty", ErrMissingColumns)
	}

	header := records[0]
	columns := make([]column, len(header))
	seen := map[column]bool{}
	for i, h := range header {
		columns[i] = lookupColumn(h)
		seen[columns[i]] = true
	}
	if !seen[colJobNo] || !seen[colYear] {
		return nil, fmt.Errorf("%w: need %q and %q", ErrMissingColumns, "Job No", "Year")
	}

	result := &Result{}
	byKey := map[string]*domain.Job{}

	for i, record := range records[1:] {
		line := i + 2
		if isBlankRecord(record) {
			continue
		}
		result.Rows++

		job := &domain.Job{}
		container := domain.Container{}
		for idx, c := range columns {
			if c == colUnknown || idx >= len(record) {
				continue
			}
			value := cellValue(record[idx], c)
			if value == "" {
				continue
			}
			if field := jobField(job, c); field != nil {
				*field = value
			} else if field := containerField(&container, c); field != nil {
				*field = value
			}
		}

		job.Year = strings.TrimSpace(job.Year)
		job.JobNo = strings.TrimSpace(job.JobNo)
		if job.Year == "" || job.JobNo == "" {
			result.Errors = append(result.Errors, RowError{Line: line, Message: "missing job no or year"})
			continue
		}

		key := job.Year + "\x00" + strings.ToUpper(job.JobNo)
		existing, ok := byKey[key]
		if !ok {
			existing = job
			byKey[key] = job
			result.Jobs = append(result.Jobs, job)
		} else {
			fillBlanks(existing, job)
		}

		if strings.TrimSpace(container.Number) != "" {
			addContainer(existing, container)
		}
	}

	for _, job := range result.Jobs {
		job.Normalize()
	}

	return result, nil
}

func isBlankRecord(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// cellValue trims a cell and converts spreadsheet date serials in date columns.
func cellValue(raw string, c column) string {
	value := strings.TrimSpace(raw)
	if value == "" {
		return ""
	}
	if _, isDate := dateColumns[c]; isDate && !domain.IsValidDate(value) {
		if converted, ok := serialToDate(value); ok {
			return converted
		}
	}
	return value
}

// serialToDate converts an Excel 1900 date serial.
func serialToDate(value string) (string, bool) {
	serial, err := strconv.ParseFloat(value, 64)
	if err != nil || serial < 1 || serial > 2958465 {
		return "", false
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return "", false
	}
	if serial == math.Trunc(serial) {
		return t.Format("2006-01-02"), true
	}
	return t.Round(time.Minute).Format("2006-01-02T15:04"), true
}

// fillBlanks copies job-level values from a later row into fields the first row left blank.
func fillBlanks(dst, src *domain.Job) {
	for c := colJobNo; c <= colRemarks; c++ {
		d, s := jobField(dst, c), jobField(src, c)
		if d != nil && s != nil && *d == "" && *s != "" {
			*d = *s
		}
	}
}

func addContainer(job *domain.Job, c domain.Container) {
	number := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(c.Number), " ", ""))
	for i := range job.Containers {
		existing := &job.Containers[i]
		if strings.EqualFold(strings.ReplaceAll(existing.Number, " ", ""), number) {
			for col := colContainerNo; col <= colDeliveryDate; col++ {
				d, s := containerField(existing, col), containerField(&c, col)
				if *d == "" && *s != "" {
					*d = *s
				}
			}
			return
		}
	}
	job.Containers = append(job.Containers, c)
}

package jobsheet

import (
	"bytes"
	"strings"
	"testing"

	"github.com/andresuchdata/eximdesk/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const sampleCSV = `Job No,Year,Importer,BE No,Type Of BE,Consignment Type,ETA,Out Of Charge,Container No,Size,Arrival Date,Empty Offload Date,Delivery Date
IMP-001,24-25,Acme Imports,7654321,Home,FCL,2024-04-18,2024-05-02,MSKU1234565,40,2024-04-25,2024-05-05,
IMP-001,24-25,,,,,,,CSQU3054383,20,2024-04-26,,
,,,,,,,,,,,,
IMP-002,24-25,Globex,,,lcl,18/04/2024,,,,,,
,24-25,Nobody,,,,,,,,,,
`

func TestParseCSVMergesRowsByJob(t *testing.T) {
	result, err := Parse(strings.NewReader(sampleCSV), FormatCSV)
	require.NoError(t, err)

	assert.Equal(t, 4, result.Rows)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 6, result.Errors[0].Line)

	require.Len(t, result.Jobs, 2)

	first := result.Jobs[0]
	assert.Equal(t, "IMP-001", first.JobNo)
	assert.Equal(t, "Acme Imports", first.Importer)
	assert.Equal(t, domain.BETypeHome, first.TypeOfBE)
	require.Len(t, first.Containers, 2)
	assert.Equal(t, "MSKU1234565", first.Containers[0].Number)
	assert.Equal(t, "2024-05-05", first.Containers[0].EmptyOffloadDate)
	assert.Equal(t, "CSQU3054383", first.Containers[1].Number)
	assert.Equal(t, "20", first.Containers[1].Size)

	second := result.Jobs[1]
	assert.Equal(t, domain.ConsignmentLCL, second.ConsignmentType)
	assert.Equal(t, "2024-04-18", second.VesselBerthing)
	assert.Empty(t, second.Containers)
}

func TestParseRejectsSheetWithoutKeyColumns(t *testing.T) {
	_, err := Parse(strings.NewReader("Importer,BE No\nAcme,1\n"), FormatCSV)
	assert.ErrorIs(t, err, ErrMissingColumns)

	_, err = Parse(strings.NewReader(""), FormatCSV)
	assert.ErrorIs(t, err, ErrMissingColumns)
}

func TestHeaderAliases(t *testing.T) {
	assert.Equal(t, colJobNo, lookupColumn("\ufeffJOB_NO"))
	assert.Equal(t, colAwbBlNo, lookupColumn("AWB/BL No."))
	assert.Equal(t, colEmptyOffloadDate, lookupColumn("Empty Container Off-load Date"))
	assert.Equal(t, colUnknown, lookupColumn("Detailed Status"))
}

func TestDetectFormat(t *testing.T) {
	f, err := DetectFormat("jobs.XLSX")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)

	_, err = DetectFormat("jobs.pdf")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestParseXLSXConvertsDateSerials(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"Job No", "Year", "BE No", "Out Of Charge", "Container No", "Delivery Date"}))
	// 45414 is 2024-05-02 in the 1900 date system.
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{"IMP-009", "24-25", "123", 45414, "MSKU1234565", 45415}))
	var buf bytes.Buffer
	_, err := f.WriteTo(&buf)
	require.NoError(t, err)

	result, err := Parse(&buf, FormatXLSX)
	require.NoError(t, err)
	require.Len(t, result.Jobs, 1)

	job := result.Jobs[0]
	assert.Equal(t, "2024-05-02", job.OutOfCharge)
	require.Len(t, job.Containers, 1)
	assert.Equal(t, "2024-05-03", job.Containers[0].DeliveryDate)
}

func sampleJobs() []*domain.Job {
	jobs := []*domain.Job{
		{
			Year: "24-25", JobNo: "IMP-001", Importer: "Acme Imports", BENo: "7654321", ConsignmentType: "FCL",
			OutOfCharge: "2024-05-02", Status: domain.JobStatusPending,
			Containers: domain.Containers{
				{Number: "MSKU1234565", Size: "40", ArrivalDate: "2024-04-25", EmptyOffloadDate: "2024-05-05"},
				{Number: "CSQU3054383", Size: "20", ArrivalDate: "2024-04-26", EmptyOffloadDate: "2024-05-06"},
			},
		},
		{Year: "24-25", JobNo: "IMP-002", VesselBerthing: "2024-04-18", Status: domain.JobStatusPending},
	}
	for _, j := range jobs {
		j.ApplyDerivedStatus()
	}
	return jobs
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleJobs()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4, "header plus one row per container plus one for the container-less job")
	assert.True(t, strings.HasPrefix(lines[0], "Job No,Year,Importer"))
	assert.Contains(t, lines[1], "Billing Pending")
	assert.Contains(t, lines[3], "Estimated Time of Arrival")
}

func TestWriteXLSXRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, sampleJobs()))

	result, err := Parse(&buf, FormatXLSX)
	require.NoError(t, err)
	require.Len(t, result.Jobs, 2)
	assert.Equal(t, 3, result.Rows)
	assert.Len(t, result.Jobs[0].Containers, 2)
	assert.Equal(t, "2024-04-18", result.Jobs[1].VesselBerthing)
}

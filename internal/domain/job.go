package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// JobStatus is the coarse lifecycle state of an import job.
type JobStatus string

const (
	JobStatusPending   JobStatus = "Pending"
	JobStatusCompleted JobStatus = "Completed"
	JobStatusCancelled JobStatus = "Cancelled"
)

// Bill of entry types.
const (
	BETypeHome   = "Home"
	BETypeInBond = "In-Bond"
	BETypeExBond = "Ex-Bond"
)

// Consignment types.
const (
	ConsignmentFCL = "FCL"
	ConsignmentLCL = "LCL"
)

// Container is a single container moving under an import job.
type Container struct {
	Number           string `json:"container_number" binding:"required,container_no"`
	Size             string `json:"size,omitempty" binding:"omitempty,oneof=20 40"`
	ArrivalDate      string `json:"arrival_date,omitempty"`
	RailOutDate      string `json:"container_rail_out_date,omitempty"`
	EmptyOffloadDate string `json:"emptyContainerOffLoadDate,omitempty"`
	DeliveryDate     string `json:"delivery_date,omitempty"`
}

// Containers is stored as a JSONB column on the job row.
type Containers []Container

func (c Containers) Value() (driver.Value, error) {
	if c == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(c)
}

func (c *Containers) Scan(src interface{}) error {
	return scanJSON(src, c)
}

// Document is a file attached to a job and kept in object storage.
type Document struct {
	Name        string    `json:"name"`
	Key         string    `json:"key"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	UploadedAt  time.Time `json:"uploaded_at"`
	UploadedBy  string    `json:"uploaded_by"`
}

// Documents is stored as a JSONB column on the job row.
type Documents []Document

func (d Documents) Value() (driver.Value, error) {
	if d == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(d)
}

func (d *Documents) Scan(src interface{}) error {
	return scanJSON(src, d)
}

// With returns a copy of d holding doc, replacing any document of the same name.
func (d Documents) With(doc Document) Documents {
	out := make(Documents, 0, len(d)+1)
	for _, existing := range d {
		if existing.Name != doc.Name {
			out = append(out, existing)
		}
	}
	return append(out, doc)
}

func scanJSON(src interface{}, dst interface{}) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		if len(v) == 0 {
			return nil
		}
		return json.Unmarshal(v, dst)
	case string:
		if v == "" {
			return nil
		}
		return json.Unmarshal([]byte(v), dst)
	default:
		return fmt.Errorf("unsupported JSON column type %T", src)
	}
}

// Job is an import customs clearance job.
type Job struct {
	ID              int64      `json:"id" db:"id"`
	Year            string     `json:"year" db:"year" binding:"required"`
	JobNo           string     `json:"job_no" db:"job_no" binding:"required"`
	Importer        string     `json:"importer" db:"importer"`
	ImporterAddress string     `json:"importer_address" db:"importer_address"`
	CustomHouse     string     `json:"custom_house" db:"custom_house"`
	AwbBlNo         string     `json:"awb_bl_no" db:"awb_bl_no"`
	AwbBlDate       string     `json:"awb_bl_date" db:"awb_bl_date"`
	ShippingLine    string     `json:"shipping_line_airline" db:"shipping_line"`
	PortOfReporting string     `json:"port_of_reporting" db:"port_of_reporting"`
	GrossWeight     string     `json:"gross_weight" db:"gross_weight"`
	ConsignmentType string     `json:"consignment_type" db:"consignment_type" binding:"omitempty,oneof=FCL LCL"`
	TypeOfBE        string     `json:"type_of_b_e" db:"type_of_b_e"`
	BENo            string     `json:"be_no" db:"be_no"`
	BEDate          string     `json:"be_date" db:"be_date"`
	VesselBerthing  string     `json:"vessel_berthing" db:"vessel_berthing"`
	GatewayIGMDate  string     `json:"gateway_igm_date" db:"gateway_igm_date"`
	DischargeDate   string     `json:"discharge_date" db:"discharge_date"`
	PCVDate         string     `json:"pcv_date" db:"pcv_date"`
	OutOfCharge     string     `json:"out_of_charge" db:"out_of_charge"`
	Containers      Containers `json:"container_nos" db:"containers" binding:"dive"`
	Documents       Documents  `json:"documents" db:"documents"`
	Remarks         string     `json:"remarks" db:"remarks"`
	Status          JobStatus  `json:"status" db:"status"`
	DetailedStatus  string     `json:"detailed_status" db:"detailed_status"`
	StatusRank      int        `json:"status_rank" db:"status_rank"`
	RowColor        string     `json:"row_color" db:"row_color"`
	BillNo          string     `json:"bill_no" db:"bill_no"`
	BillDate        string     `json:"bill_date" db:"bill_date"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
}

// ApplyDerivedStatus recomputes detailed status, rank and row color from the
// job's dates. It reports whether any of the three changed.
func (j *Job) ApplyDerivedStatus() bool {
	status := DetermineDetailedStatus(j)
	rank := StatusRank(string(status))
	color := StatusColor(string(status))

	changed := j.DetailedStatus != string(status) || j.StatusRank != rank || j.RowColor != color
	j.DetailedStatus = string(status)
	j.StatusRank = rank
	j.RowColor = color
	return changed
}

// IsOpen reports whether the job still accepts edits to its clearance fields.
func (j *Job) IsOpen() bool {
	return j.Status == "" || j.Status == JobStatusPending
}

// IsBillable reports whether the job can be billed now.
func (j *Job) IsBillable() bool {
	return j.IsOpen() && j.DetailedStatus == string(StatusBillingPending)
}

// Normalize trims identifiers and rewrites valid dates into a canonical form.
func (j *Job) Normalize() {
	j.Year = strings.TrimSpace(j.Year)
	j.JobNo = strings.TrimSpace(j.JobNo)
	j.Importer = strings.TrimSpace(j.Importer)
	j.BENo = strings.TrimSpace(j.BENo)
	j.ConsignmentType = strings.ToUpper(strings.TrimSpace(j.ConsignmentType))
	j.TypeOfBE = normalizeBEType(j.TypeOfBE)

	for _, d := range []*string{&j.AwbBlDate, &j.BEDate, &j.VesselBerthing, &j.GatewayIGMDate,
		&j.DischargeDate, &j.PCVDate, &j.OutOfCharge, &j.BillDate} {
		*d = NormalizeDate(*d)
	}

	for i := range j.Containers {
		c := &j.Containers[i]
		c.Number = strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(c.Number), " ", ""))
		c.ArrivalDate = NormalizeDate(c.ArrivalDate)
		c.RailOutDate = NormalizeDate(c.RailOutDate)
		c.EmptyOffloadDate = NormalizeDate(c.EmptyOffloadDate)
		c.DeliveryDate = NormalizeDate(c.DeliveryDate)
	}

	if j.Status == "" {
		j.Status = JobStatusPending
	}
}

func normalizeBEType(value string) string {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(value), " ", "")) {
	case "home":
		return BETypeHome
	case "in-bond", "inbond":
		return BETypeInBond
	case "ex-bond", "exbond":
		return BETypeExBond
	default:
		return strings.TrimSpace(value)
	}
}

// JobFilter narrows job listings and exports.
type JobFilter struct {
	Year           string
	Status         JobStatus
	DetailedStatus string
	Importer       string
	Search         string
	Page           int
	PageSize       int
	SortField      string
	SortDirection  string
}

// Offset returns the row offset for the filter's page.
func (f JobFilter) Offset() int {
	if f.Page <= 1 {
		return 0
	}
	return (f.Page - 1) * f.PageSize
}

// JobPage is one page of a job listing.
type JobPage struct {
	Items    []*Job `json:"items"`
	Total    int    `json:"total"`
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
}

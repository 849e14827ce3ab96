package jobsheet

import (
	"strings"

	"github.com/andresuchdata/eximdesk/internal/domain"
)

type column int

const (
	colUnknown column = iota
	colJobNo
	colYear
	colImporter
	colImporterAddress
	colCustomHouse
	colAwbBlNo
	colAwbBlDate
	colShippingLine
	colPortOfReporting
	colGrossWeight
	colConsignmentType
	colTypeOfBE
	colBENo
	colBEDate
	colETA
	colGatewayIGMDate
	colDischargeDate
	colPCVDate
	colOutOfCharge
	colRemarks
	colContainerNo
	colContainerSize
	colArrivalDate
	colRailOutDate
	colEmptyOffloadDate
	colDeliveryDate
)

// headerAliases maps normalized header text to a sheet column.
var headerAliases = map[string]column{
	"job no":                        colJobNo,
	"job number":                    colJobNo,
	"jobno":                         colJobNo,
	"year":                          colYear,
	"financial year":                colYear,
	"importer":                      colImporter,
	"importer name":                 colImporter,
	"importer address":              colImporterAddress,
	"custom house":                  colCustomHouse,
	"awb bl no":                     colAwbBlNo,
	"bl no":                         colAwbBlNo,
	"awb bl date":                   colAwbBlDate,
	"bl date":                       colAwbBlDate,
	"shipping line":                 colShippingLine,
	"shipping line airline":         colShippingLine,
	"port of reporting":             colPortOfReporting,
	"gross weight":                  colGrossWeight,
	"consignment type":              colConsignmentType,
	"type of be":                    colTypeOfBE,
	"be type":                       colTypeOfBE,
	"type of b e":                   colTypeOfBE,
	"be no":                         colBENo,
	"be number":                     colBENo,
	"be date":                       colBEDate,
	"eta":                           colETA,
	"vessel berthing":               colETA,
	"gateway igm date":              colGatewayIGMDate,
	"igm date":                      colGatewayIGMDate,
	"discharge date":                colDischargeDate,
	"pcv date":                      colPCVDate,
	"out of charge":                 colOutOfCharge,
	"ooc":                           colOutOfCharge,
	"ooc date":                      colOutOfCharge,
	"remarks":                       colRemarks,
	"container no":                  colContainerNo,
	"container number":              colContainerNo,
	"size":                          colContainerSize,
	"container size":                colContainerSize,
	"arrival date":                  colArrivalDate,
	"rail out date":                 colRailOutDate,
	"container rail out date":       colRailOutDate,
	"empty offload date":            colEmptyOffloadDate,
	"empty container offload date":  colEmptyOffloadDate,
	"empty container off load date": colEmptyOffloadDate,
	"empty off load date":           colEmptyOffloadDate,
	"emptycontaineroffloaddate":     colEmptyOffloadDate,
	"delivery date":                 colDeliveryDate,
}

var dateColumns = map[column]struct{}{
	colAwbBlDate:        {},
	colBEDate:           {},
	colETA:              {},
	colGatewayIGMDate:   {},
	colDischargeDate:    {},
	colPCVDate:          {},
	colOutOfCharge:      {},
	colArrivalDate:      {},
	colRailOutDate:      {},
	colEmptyOffloadDate: {},
	colDeliveryDate:     {},
}

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	h = strings.NewReplacer("_", " ", "/", " ", ".", " ", "-", " ").Replace(h)
	return strings.Join(strings.Fields(h), " ")
}

func lookupColumn(header string) column {
	if c, ok := headerAliases[normalizeHeader(header)]; ok {
		return c
	}
	return colUnknown
}

// jobField returns the job field a job-level column writes to.
func jobField(job *domain.Job, c column) *string {
	switch c {
	case colJobNo:
		return &job.JobNo
	case colYear:
		return &job.Year
	case colImporter:
		return &job.Importer
	case colImporterAddress:
		return &job.ImporterAddress
	case colCustomHouse:
		return &job.CustomHouse
	case colAwbBlNo:
		return &job.AwbBlNo
	case colAwbBlDate:
		return &job.AwbBlDate
	case colShippingLine:
		return &job.ShippingLine
	case colPortOfReporting:
		return &job.PortOfReporting
	case colGrossWeight:
		return &job.GrossWeight
	case colConsignmentType:
		return &job.ConsignmentType
	case colTypeOfBE:
		return &job.TypeOfBE
	case colBENo:
		return &job.BENo
	case colBEDate:
		return &job.BEDate
	case colETA:
		return &job.VesselBerthing
	case colGatewayIGMDate:
		return &job.GatewayIGMDate
	case colDischargeDate:
		return &job.DischargeDate
	case colPCVDate:
		return &job.PCVDate
	case colOutOfCharge:
		return &job.OutOfCharge
	case colRemarks:
		return &job.Remarks
	}
	return nil
}

// containerField returns the container field a container-level column writes to.
func containerField(ct *domain.Container, c column) *string {
	switch c {
	case colContainerNo:
		return &ct.Number
	case colContainerSize:
		return &ct.Size
	case colArrivalDate:
		return &ct.ArrivalDate
	case colRailOutDate:
		return &ct.RailOutDate
	case colEmptyOffloadDate:
		return &ct.EmptyOffloadDate
	case colDeliveryDate:
		return &ct.DeliveryDate
	}
	return nil
}

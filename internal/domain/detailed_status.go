package domain

import "strings"

// DetailedStatus is the clearance progress label derived from a job's dates.
type DetailedStatus string

const (
	StatusBillingPending            DetailedStatus = "Billing Pending"
	StatusCustomClearanceCompleted  DetailedStatus = "Custom Clearance Completed"
	StatusPCVDoneDutyPaymentPending DetailedStatus = "PCV Done, Duty Payment Pending"
	StatusBENotedClearancePending   DetailedStatus = "BE Noted, Clearance Pending"
	StatusBENotedArrivalPending     DetailedStatus = "BE Noted, Arrival Pending"
	StatusArrivedBENotePending      DetailedStatus = "Arrived, BE Note Pending"
	StatusRailOut                   DetailedStatus = "Rail Out"
	StatusDischarged                DetailedStatus = "Discharged"
	StatusGatewayIGMFiled           DetailedStatus = "Gateway IGM Filed"
	StatusEstimatedTimeOfArrival    DetailedStatus = "Estimated Time of Arrival"
	StatusETADatePending            DetailedStatus = "ETA Date Pending"
)

// jobFacts are the predicates the status rules are written against.
type jobFacts struct {
	exBond            bool
	lcl               bool
	beNoted           bool
	oocValid          bool
	pcvValid          bool
	dischargeValid    bool
	gatewayIGMValid   bool
	etaValid          bool
	anyArrival        bool
	anyRailOut        bool
	allDelivered      bool
	allEmptyOffloaded bool
}

func factsOf(job *Job) jobFacts {
	f := jobFacts{
		exBond:          normalizeBEType(job.TypeOfBE) == BETypeExBond,
		lcl:             strings.EqualFold(strings.TrimSpace(job.ConsignmentType), ConsignmentLCL),
		beNoted:         !isBlank(job.BENo),
		oocValid:        IsValidDate(job.OutOfCharge),
		pcvValid:        IsValidDate(job.PCVDate),
		dischargeValid:  IsValidDate(job.DischargeDate),
		gatewayIGMValid: IsValidDate(job.GatewayIGMDate),
		etaValid:        IsValidDate(job.VesselBerthing),
	}

	// "all" predicates need at least one container; a job with no containers
	// is never treated as fully delivered or offloaded.
	n := len(job.Containers)
	f.allDelivered = n > 0
	f.allEmptyOffloaded = n > 0
	for _, c := range job.Containers {
		if IsValidDate(c.ArrivalDate) {
			f.anyArrival = true
		}
		if IsValidDate(c.RailOutDate) {
			f.anyRailOut = true
		}
		if !IsValidDate(c.DeliveryDate) {
			f.allDelivered = false
		}
		if !IsValidDate(c.EmptyOffloadDate) {
			f.allEmptyOffloaded = false
		}
	}
	return f
}

// statusRule pairs a condition with the status it yields.
type statusRule struct {
	status DetailedStatus
	when   func(f jobFacts) bool
}

// statusRules is evaluated top to bottom; the first matching rule wins.
var statusRules = []statusRule{
	{StatusBillingPending, func(f jobFacts) bool {
		return f.exBond && f.beNoted && f.oocValid && f.allDelivered
	}},
	{StatusCustomClearanceCompleted, func(f jobFacts) bool {
		return f.exBond && f.beNoted && f.oocValid
	}},
	{StatusPCVDoneDutyPaymentPending, func(f jobFacts) bool {
		return f.exBond && f.beNoted && f.pcvValid
	}},
	{StatusETADatePending, func(f jobFacts) bool {
		return f.exBond
	}},
	{StatusBillingPending, func(f jobFacts) bool {
		if !f.beNoted || !f.anyArrival || !f.oocValid {
			return false
		}
		if f.lcl {
			return f.allDelivered
		}
		return f.allEmptyOffloaded
	}},
	{StatusCustomClearanceCompleted, func(f jobFacts) bool {
		return f.beNoted && f.anyArrival && f.oocValid
	}},
	{StatusPCVDoneDutyPaymentPending, func(f jobFacts) bool {
		return f.beNoted && f.anyArrival && f.pcvValid
	}},
	{StatusBENotedClearancePending, func(f jobFacts) bool {
		return f.beNoted && f.anyArrival
	}},
	{StatusArrivedBENotePending, func(f jobFacts) bool {
		return f.anyArrival && !f.beNoted
	}},
	{StatusBENotedArrivalPending, func(f jobFacts) bool {
		return f.beNoted && !f.anyArrival
	}},
	{StatusRailOut, func(f jobFacts) bool { return f.anyRailOut }},
	{StatusDischarged, func(f jobFacts) bool { return f.dischargeValid }},
	{StatusGatewayIGMFiled, func(f jobFacts) bool { return f.gatewayIGMValid }},
	{StatusEstimatedTimeOfArrival, func(f jobFacts) bool { return f.etaValid }},
}

// DetermineDetailedStatus derives the clearance status of a job.
func DetermineDetailedStatus(job *Job) DetailedStatus {
	if job == nil {
		return StatusETADatePending
	}

	f := factsOf(job)
	for _, rule := range statusRules {
		if rule.when(f) {
			return rule.status
		}
	}
	return StatusETADatePending
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

package domain

import "strings"

// DefaultStatusColor is used for statuses without an entry in the color table.
const DefaultStatusColor = "bg-default"

var statusRanks = map[DetailedStatus]int{
	StatusBillingPending:            1,
	StatusCustomClearanceCompleted:  2,
	StatusPCVDoneDutyPaymentPending: 3,
	StatusBENotedClearancePending:   4,
	StatusBENotedArrivalPending:     5,
	StatusArrivedBENotePending:      6,
	StatusRailOut:                   7,
	StatusDischarged:                8,
	StatusGatewayIGMFiled:           9,
	StatusEstimatedTimeOfArrival:    10,
	StatusETADatePending:            11,
}

// UnknownStatusRank sorts after every known status.
var UnknownStatusRank = len(statusRanks) + 1

var statusColors = map[DetailedStatus]string{
	StatusBillingPending:            "bg-blue",
	StatusCustomClearanceCompleted:  "bg-green",
	StatusPCVDoneDutyPaymentPending: "bg-lightgreen",
	StatusBENotedClearancePending:   "bg-purple",
	StatusBENotedArrivalPending:     "bg-yellow",
	StatusArrivedBENotePending:      "bg-red",
	StatusRailOut:                   "bg-teal",
	StatusDischarged:                "bg-orange",
	StatusGatewayIGMFiled:           "bg-gray",
	StatusEstimatedTimeOfArrival:    "bg-white",
	StatusETADatePending:            "bg-lightgray",
}

var statusByLabel = func() map[string]DetailedStatus {
	m := make(map[string]DetailedStatus, len(statusRanks))
	for s := range statusRanks {
		m[strings.ToLower(string(s))] = s
	}
	return m
}()

// StatusRank returns the sort rank of a detailed status label.
func StatusRank(status string) int {
	if rank, ok := statusRanks[DetailedStatus(status)]; ok {
		return rank
	}
	return UnknownStatusRank
}

// StatusColor returns the row color tag of a detailed status label.
func StatusColor(status string) string {
	if color, ok := statusColors[DetailedStatus(status)]; ok {
		return color
	}
	return DefaultStatusColor
}

// ParseDetailedStatus returns the status for a given label (case-insensitive).
func ParseDetailedStatus(label string) (DetailedStatus, bool) {
	s, ok := statusByLabel[strings.ToLower(strings.TrimSpace(label))]
	return s, ok
}

// StatusInfo describes one entry of the status catalogue.
type StatusInfo struct {
	Status string `json:"status"`
	Rank   int    `json:"rank"`
	Color  string `json:"color"`
}

// StatusCatalogue lists every detailed status ordered by rank.
func StatusCatalogue() []StatusInfo {
	out := make([]StatusInfo, len(statusRanks))
	for s, rank := range statusRanks {
		out[rank-1] = StatusInfo{Status: string(s), Rank: rank, Color: statusColors[s]}
	}
	return out
}

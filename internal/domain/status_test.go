package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusRankAndColor(t *testing.T) {
	assert.Equal(t, 1, StatusRank("Billing Pending"))
	assert.Equal(t, 11, StatusRank("ETA Date Pending"))
	assert.Equal(t, UnknownStatusRank, StatusRank("Something Else"))
	assert.Greater(t, StatusRank(""), StatusRank(string(StatusETADatePending)))

	assert.Equal(t, "bg-blue", StatusColor("Billing Pending"))
	assert.Equal(t, DefaultStatusColor, StatusColor("Something Else"))
}

func TestEveryRuleStatusHasRankAndColor(t *testing.T) {
	for _, rule := range statusRules {
		_, hasRank := statusRanks[rule.status]
		_, hasColor := statusColors[rule.status]
		assert.True(t, hasRank, rule.status)
		assert.True(t, hasColor, rule.status)
	}
}

func TestParseDetailedStatus(t *testing.T) {
	s, ok := ParseDetailedStatus("  pcv done, duty payment pending ")
	require.True(t, ok)
	assert.Equal(t, StatusPCVDoneDutyPaymentPending, s)

	_, ok = ParseDetailedStatus("unknown")
	assert.False(t, ok)
}

func TestStatusCatalogueIsOrderedByRank(t *testing.T) {
	catalogue := StatusCatalogue()
	require.Len(t, catalogue, len(statusRanks))
	for i, info := range catalogue {
		assert.Equal(t, i+1, info.Rank)
		assert.NotEmpty(t, info.Color)
	}
	assert.Equal(t, string(StatusBillingPending), catalogue[0].Status)
}

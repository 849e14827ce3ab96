package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiffFields(t *testing.T) {
	before := &Job{ID: 7, JobNo: "00123", BENo: "", Remarks: "x", UpdatedAt: time.Now()}
	after := &Job{ID: 7, JobNo: "00123", BENo: "7654321", Remarks: "y", UpdatedAt: time.Now().Add(time.Hour)}

	changes, err := DiffFields(before, after)
	require.NoError(t, err)
	require.Len(t, changes, 2)

	assert.Equal(t, "be_no", changes[0].Field)
	assert.Equal(t, "", changes[0].Old)
	assert.Equal(t, "7654321", changes[0].New)
	assert.Equal(t, "remarks", changes[1].Field)
}

func TestDiffFieldsAgainstNothing(t *testing.T) {
	var missing *Employee
	changes, err := DiffFields(missing, &Employee{Name: "Asha"})
	require.NoError(t, err)

	fields := make([]string, 0, len(changes))
	for _, c := range changes {
		fields = append(fields, c.Field)
	}
	assert.Contains(t, fields, "name")
	assert.NotContains(t, fields, "created_at")
}

func TestDiffFieldsDetectsContainerChanges(t *testing.T) {
	before := &Job{Containers: Containers{{Number: "MSKU1234565"}}}
	after := &Job{Containers: Containers{{Number: "MSKU1234565", ArrivalDate: "2024-04-25"}}}

	changes, err := DiffFields(before, after)
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, "container_nos", changes[0].Field)
}

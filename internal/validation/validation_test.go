package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsContainerNumber(t *testing.T) {
	assert.True(t, IsContainerNumber("CSQU3054383"))
	assert.True(t, IsContainerNumber("csqu 305438 3"))
	assert.True(t, IsContainerNumber("MSKU1234565"))

	assert.False(t, IsContainerNumber("CSQU3054384"), "wrong check digit")
	assert.False(t, IsContainerNumber("CSQA3054383"), "bad category letter")
	assert.False(t, IsContainerNumber("CSQU305438"))
	assert.False(t, IsContainerNumber(""))
}

type sample struct {
	Container string `binding:"required,container_no"`
	GSTIN     string `binding:"omitempty,gstin"`
}

func TestStructUsesCustomRules(t *testing.T) {
	require.NoError(t, Struct(sample{Container: "CSQU3054383", GSTIN: "27AAPFU0939F1ZV"}))

	err := Struct(sample{Container: "CSQU3054384", GSTIN: "27AAPFU0939F1Z"})
	require.Error(t, err)
	msg := Describe(err)
	assert.Contains(t, msg, "sample.Container failed container_no")
	assert.Contains(t, msg, "sample.GSTIN failed gstin")
}

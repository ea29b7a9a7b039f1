package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type samplePayload struct {
	StudentID string   `json:"student_id" validate:"required"`
	Type      string   `json:"type" validate:"required,oneof=regular late"`
	Sections  []string `json:"section_ids" validate:"dive,required"`
}

func TestDescribeUsesJSONFieldNames(t *testing.T) {
	validate := New()
	err := validate.Struct(samplePayload{Type: "weekend", Sections: []string{""}})
	require.Error(t, err)

	details := Describe(err)
	require.Len(t, details, 3)
	assert.Contains(t, details, "student_id")
	assert.Contains(t, details, "type")
	assert.Contains(t, details, "section_ids[0]")
	assert.Contains(t, details["student_id"], "required")
}

func TestDescribeIgnoresOtherErrors(t *testing.T) {
	assert.Nil(t, Describe(assert.AnError))
}

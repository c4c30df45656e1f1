package middleware

import (
	"errors"
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordBatchProbe struct {
	BillingYear  int    `json:"billing_year" binding:"required,gte=2000"`
	BillingMonth int    `json:"billing_month" binding:"required,gte=1,lte=12"`
	Note         string `json:"note" binding:"max=10"`
}

func TestSetupValidator_UsesJSONTagNames(t *testing.T) {
	SetupValidator()

	v, ok := binding.Validator.Engine().(*validator.Validate)
	require.True(t, ok)

	err := v.Struct(recordBatchProbe{BillingMonth: 13, Note: "far too long for the cap"})
	require.Error(t, err)

	validationErrors, ok := err.(validator.ValidationErrors)
	require.True(t, ok)

	fields := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		fields = append(fields, e.Field())
	}
	assert.Contains(t, fields, "billing_year")
	assert.Contains(t, fields, "billing_month")
	assert.Contains(t, fields, "note")
}

func TestFormatBindingError_ValidatorErrors(t *testing.T) {
	SetupValidator()

	v, ok := binding.Validator.Engine().(*validator.Validate)
	require.True(t, ok)

	err := v.Struct(recordBatchProbe{BillingYear: 2026, BillingMonth: 13})
	require.Error(t, err)

	msg := FormatBindingError(err)
	assert.Contains(t, msg, "billing_month: must be less than or equal to 12")
}

func TestFormatBindingError_NonValidatorError(t *testing.T) {
	msg := FormatBindingError(errors.New("unexpected EOF"))
	assert.Equal(t, "unexpected EOF", msg)
}

func TestValidationMessage_Tags(t *testing.T) {
	SetupValidator()

	v, ok := binding.Validator.Engine().(*validator.Validate)
	require.True(t, ok)

	tests := []struct {
		name  string
		probe any
		want  string
	}{
		{
			name:  "required",
			probe: recordBatchProbe{BillingMonth: 5},
			want:  "billing_year: this field is required",
		},
		{
			name:  "gte",
			probe: recordBatchProbe{BillingYear: 1990, BillingMonth: 5},
			want:  "billing_year: must be greater than or equal to 2000",
		},
		{
			name:  "max string",
			probe: recordBatchProbe{BillingYear: 2026, BillingMonth: 5, Note: "this note exceeds ten"},
			want:  "note: must be at most 10 characters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.probe)
			require.Error(t, err)
			assert.Contains(t, FormatBindingError(err), tt.want)
		})
	}
}

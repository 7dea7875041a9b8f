package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Email   string `json:"email" validate:"required,email"`
	Title   string `form:"title" validate:"notblank,max=10"`
	Urgency string `json:"urgencyLevel" validate:"urgency"`
	Bar     string `json:"barNumber" validate:"omitempty,barnum"`
}

func TestValidate_OK(t *testing.T) {
	errs, err := Validate(sample{Email: "a@b.co", Title: "Lease", Urgency: "High", Bar: "NY-1234"})
	require.NoError(t, err)
	assert.Nil(t, errs)
}

func TestValidate_LaravelShape(t *testing.T) {
	errs, err := Validate(sample{Email: "nope", Title: "   ", Urgency: "Urgent", Bar: "!"})
	require.NoError(t, err)

	assert.Equal(t, []string{"Invalid email format"}, errs["email"])
	assert.Equal(t, []string{"This field is required"}, errs["title"])
	assert.Equal(t, []string{"Must be one of Low, Medium, High"}, errs["urgencyLevel"])
	assert.Equal(t, []string{"Invalid bar number format"}, errs["barNumber"])
}

func TestValidate_MaxMessage(t *testing.T) {
	errs, _ := Validate(sample{Email: "a@b.co", Title: "far too long a title", Urgency: "Low"})
	assert.Equal(t, []string{"Must be at most 10 characters"}, errs["title"])
}

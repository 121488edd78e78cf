package domain

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateProperty_Valid(t *testing.T) {
	property := NewProperty("1 Elm St", 250000, 120, strings.Repeat("a", 1000))
	require.NoError(t, ValidateProperty(property))

	require.NoError(t, ValidateProperty(NewProperty("1 Elm St", 0.01, 0.01, "")))
}

func TestValidateProperty_ReportsEveryField(t *testing.T) {
	err := ValidateProperty(NewProperty("   ", 0, -5, strings.Repeat("é", 1001)))

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)

	fields := map[string]string{}
	for _, fe := range validationErr.Fields {
		fields[fe.Field] = fe.Message
	}
	assert.Equal(t, map[string]string{
		"address":     "must not be blank",
		"price":       "must be greater than 0",
		"size":        "must be greater than 0",
		"description": "size must be between 0 and 1000",
	}, fields)
	assert.Contains(t, err.Error(), "address: must not be blank")
}

func TestValidateProperty_RejectsNonFiniteNumbers(t *testing.T) {
	for _, value := range []float64{math.Inf(1), math.Inf(-1), math.NaN()} {
		err := ValidateProperty(NewProperty("1 Elm St", value, value, ""))

		var validationErr *ValidationError
		require.ErrorAs(t, err, &validationErr, "%v", value)
		assert.ElementsMatch(t, []FieldError{
			{Field: "price", Message: "must be a finite number"},
			{Field: "size", Message: "must be a finite number"},
		}, validationErr.Fields)
	}
}

func TestValidateProperty_DescriptionCountsCharacters(t *testing.T) {
	require.NoError(t, ValidateProperty(NewProperty("x", 1, 1, strings.Repeat("é", 1000))))
}

func TestPropertyWithChangesKeepsID(t *testing.T) {
	existing := Property{ID: 7, Address: "1 Elm St", Price: 1, Size: 1, Description: "old"}
	updated := existing.WithChanges(Property{ID: 99, Address: "2 Elm St", Price: 2, Size: 3})

	assert.Equal(t, Property{ID: 7, Address: "2 Elm St", Price: 2, Size: 3}, updated)
	assert.Equal(t, int64(0), updated.WithoutID().ID)
}

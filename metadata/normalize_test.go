package metadata

import (
	"testing"

	"dicom-vault-api/constants"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeString(t *testing.T) {
	assert.Equal(t, "CT", Normalize("  CT ", constants.FieldTypeString))
	assert.Equal(t, "", Normalize("", constants.FieldTypeString))
}

func TestNormalizeDate(t *testing.T) {
	{
		assert.Equal(t, "2023-01-15", Normalize("20230115", constants.FieldTypeDate))
	}
	{
		// Lengths other than 8 pass through unchanged.
		assert.Equal(t, "2023", Normalize("2023", constants.FieldTypeDate))
		assert.Equal(t, "", Normalize("", constants.FieldTypeDate))
		assert.Equal(t, "2023-01-15", Normalize("2023-01-15", constants.FieldTypeDate))
	}
}

func TestNormalizeInt(t *testing.T) {
	assert.Equal(t, 512, Normalize("512", constants.FieldTypeInt))
	assert.Equal(t, 512, Normalize(" 512 ", constants.FieldTypeInt))
	assert.Equal(t, 0, Normalize("", constants.FieldTypeInt))
	assert.Equal(t, 0, Normalize("abc", constants.FieldTypeInt))
}

func TestNormalizeFloat(t *testing.T) {
	assert.Equal(t, 40.5, Normalize("40.5", constants.FieldTypeFloat))
	assert.Equal(t, float64(0), Normalize("", constants.FieldTypeFloat))
	assert.Equal(t, float64(0), Normalize("n/a", constants.FieldTypeFloat))
}

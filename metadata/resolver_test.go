package metadata

import (
	"testing"

	"dicom-vault-api/constants"

	"github.com/stretchr/testify/assert"
)

func TestResolvePrefersBareTag(t *testing.T) {
	dict := MapDict{
		"00100010":    "Doe^John",
		"x00100010":   "shadowed",
		"PatientName": "shadowed too",
	}
	assert.Equal(t, "Doe^John", Resolve(dict, "00100010", "PatientName"))
}

func TestResolveMarkerPrefix(t *testing.T) {
	dict := MapDict{
		"x00100010": "Doe^John",
	}
	assert.Equal(t, "Doe^John", Resolve(dict, "00100010", "PatientName"))
}

func TestResolveCaseVariants(t *testing.T) {
	{
		dict := MapDict{"0020000d": "1.2.3"}
		assert.Equal(t, "1.2.3", Resolve(dict, "0020000D", "StudyInstanceUID"))
	}
	{
		dict := MapDict{"0020000D": "1.2.3"}
		assert.Equal(t, "1.2.3", Resolve(dict, "0020000d", "StudyInstanceUID"))
	}
}

func TestResolveKeywordFallback(t *testing.T) {
	// Only the keyword alias is present; the numeric forms must all miss
	// before it is tried.
	dict := MapDict{
		"PatientName": "Doe^Jane",
	}
	assert.Equal(t, "Doe^Jane", Resolve(dict, "00100010", "PatientName"))
}

func TestResolveStripsTagPunctuation(t *testing.T) {
	dict := MapDict{"00100010": "Doe^John"}
	assert.Equal(t, "Doe^John", Resolve(dict, "(0010,0010)", "PatientName"))
}

func TestResolveArrayJoin(t *testing.T) {
	{
		dict := MapDict{"00080008": []string{"CT", "AXIAL"}}
		assert.Equal(t, "CT\\AXIAL", Resolve(dict, "00080008", "ImageType"))
	}
	{
		dict := MapDict{"00080008": []interface{}{"ORIGINAL", "PRIMARY"}}
		assert.Equal(t, "ORIGINAL\\PRIMARY", Resolve(dict, "00080008", "ImageType"))
	}
}

func TestResolveSkipsEmptyValues(t *testing.T) {
	// An empty resolved value keeps the fallback chain going.
	dict := MapDict{
		"00100010":    "",
		"PatientName": "Doe^Jane",
	}
	assert.Equal(t, "Doe^Jane", Resolve(dict, "00100010", "PatientName"))
}

func TestResolveMissEverywhere(t *testing.T) {
	assert.Equal(t, "", Resolve(MapDict{}, "00100010", "PatientName"))
	assert.Equal(t, "", Resolve(nil, "00100010", "PatientName"))
}

func TestResolveNumericElement(t *testing.T) {
	dict := MapDict{"00280010": 512}
	assert.Equal(t, "512", Resolve(dict, "00280010", "Rows"))
}

func TestResolveNumericSlices(t *testing.T) {
	// US/SS/UL elements decode as []int, FL/FD as []float64.
	{
		dict := MapDict{"00280010": []int{512}}
		assert.Equal(t, "512", Resolve(dict, "00280010", "Rows"))
	}
	{
		dict := MapDict{"00281050": []float64{40.5}}
		assert.Equal(t, "40.5", Resolve(dict, "00281050", "WindowCenter"))
	}
	{
		dict := MapDict{"00281050": []float64{40, -600}}
		assert.Equal(t, "40\\-600", Resolve(dict, "00281050", "WindowCenter"))
	}
	{
		rows := Normalize(Resolve(MapDict{"00280010": []int{512}}, "00280010", "Rows"), constants.FieldTypeInt)
		assert.Equal(t, 512, rows)
	}
}

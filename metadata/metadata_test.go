package metadata

import (
	"testing"

	"dicom-vault-api/constants"

	"github.com/stretchr/testify/assert"
)

func TestFieldTableCoversRecord(t *testing.T) {
	assert.Equal(t, 20, len(FieldTable))

	seen := make(map[string]bool)
	for _, field := range FieldTable {
		assert.False(t, seen[field.Name], field.Name)
		seen[field.Name] = true
		assert.NotEmpty(t, field.Tag, field.Name)
		assert.NotEmpty(t, field.Keyword, field.Name)
	}

	record := Record{}
	m := record.AsMap()
	for _, field := range FieldTable {
		_, found := m[field.Name]
		assert.True(t, found, field.Name)
	}
}

func TestBuildRecord(t *testing.T) {
	dict := MapDict{
		"00100010":         "Doe^Jane",
		"x00100020":        "PAT-1",
		"PatientBirthDate": "19840102",
		"00080060":         "CT",
		"00280010":         "512",
		"00280011":         512,
		"00080008":         []string{"ORIGINAL", "PRIMARY"},
		"0020000d":         "1.2.840.1",
		"0020000e":         "1.2.840.1.1",
		"00080020":         "20230115",
		"00080018":         "1.2.840.1.1.7",
		"00281050":         "40",
		"00281051":         "380.5",
	}

	record := BuildRecord(dict)

	assert.Equal(t, "Doe^Jane", record.PatientName)
	assert.Equal(t, "PAT-1", record.PatientID)
	assert.Equal(t, "1984-01-02", record.PatientBirthDate)
	assert.Equal(t, "CT", record.Modality)
	assert.Equal(t, 512, record.Rows)
	assert.Equal(t, 512, record.Columns)
	assert.Equal(t, "ORIGINAL\\PRIMARY", record.ImageType)
	assert.Equal(t, "1.2.840.1", record.StudyInstanceUID)
	assert.Equal(t, "1.2.840.1.1", record.SeriesInstanceUID)
	assert.Equal(t, "2023-01-15", record.StudyDate)
	assert.Equal(t, "1.2.840.1.1.7", record.ImageID)
	assert.Equal(t, float64(40), record.WindowCenter)
	assert.Equal(t, 380.5, record.WindowWidth)

	// Unresolved fields sit at their sentinels.
	assert.Equal(t, "", record.PatientSex)
	assert.Equal(t, "", record.BodyPart)
}

func TestBuildRecordEmptyDict(t *testing.T) {
	record := BuildRecord(MapDict{})
	assert.True(t, record.IsEmpty())
}

func TestIsEmptyValue(t *testing.T) {
	assert.True(t, IsEmptyValue(constants.FieldTypeString, ""))
	assert.False(t, IsEmptyValue(constants.FieldTypeString, "CT"))
	assert.True(t, IsEmptyValue(constants.FieldTypeInt, 0))
	assert.True(t, IsEmptyValue(constants.FieldTypeInt, float64(0)))
	assert.False(t, IsEmptyValue(constants.FieldTypeInt, float64(512)))
	assert.True(t, IsEmptyValue(constants.FieldTypeFloat, float64(0)))
	assert.False(t, IsEmptyValue(constants.FieldTypeFloat, 40.5))
	assert.True(t, IsEmptyValue(constants.FieldTypeDate, nil))
}

func TestRecordMapRoundTrip(t *testing.T) {
	record := Record{
		PatientName:  "Doe^John",
		Rows:         512,
		WindowCenter: 40.5,
	}

	assert.Equal(t, record, FromMap(record.AsMap()))
}

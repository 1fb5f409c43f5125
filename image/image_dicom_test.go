package image

import (
	"testing"

	"dicom-vault-api/metadata"

	"github.com/stretchr/testify/assert"
	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
)

func mustElement(t *testing.T, tg tag.Tag, data interface{}) *dicom.Element {
	elem, err := dicom.NewElement(tg, data)
	assert.NoError(t, err)
	return elem
}

func TestConvertDatasetToDict(t *testing.T) {
	dataset := dicom.Dataset{Elements: []*dicom.Element{
		mustElement(t, tag.PatientName, []string{"Doe^John"}),
		mustElement(t, tag.Modality, []string{"CT"}),
		mustElement(t, tag.StudyInstanceUID, []string{"1.2.3"}),
		mustElement(t, tag.Rows, []int{512}),
		mustElement(t, tag.Columns, []int{256}),
		mustElement(t, tag.WindowCenter, []string{"40.5"}),
	}}

	dict := ConvertDatasetToDict(dataset)

	{
		// Keyed by hex tag and by keyword alike.
		value, err := dict.Lookup("00280010")
		assert.NoError(t, err)
		assert.Equal(t, []int{512}, value)

		value, err = dict.Lookup("Rows")
		assert.NoError(t, err)
		assert.Equal(t, []int{512}, value)
	}
	{
		_, err := dict.Lookup("00080018")
		assert.Error(t, err)
	}
}

func TestBuildRecordFromDataset(t *testing.T) {
	dataset := dicom.Dataset{Elements: []*dicom.Element{
		mustElement(t, tag.PatientName, []string{"Doe^John"}),
		mustElement(t, tag.Modality, []string{"CT"}),
		mustElement(t, tag.StudyInstanceUID, []string{"1.2.3"}),
		mustElement(t, tag.Rows, []int{512}),
		mustElement(t, tag.Columns, []int{256}),
		mustElement(t, tag.WindowCenter, []string{"40.5"}),
	}}

	record := metadata.BuildRecord(ConvertDatasetToDict(dataset))

	assert.Equal(t, "Doe^John", record.PatientName)
	assert.Equal(t, "CT", record.Modality)
	assert.Equal(t, "1.2.3", record.StudyInstanceUID)
	assert.Equal(t, 512, record.Rows)
	assert.Equal(t, 256, record.Columns)
	assert.Equal(t, 40.5, record.WindowCenter)
	assert.Equal(t, "", record.BodyPart)
}

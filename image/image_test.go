package image

import (
	"testing"

	"dicom-vault-api/constants"
	"dicom-vault-api/entities"

	"github.com/stretchr/testify/assert"
)

var testImage = Image{
	ID:       "id",
	Created:  0,
	FileName: "chest.dcm",
	Size:     1024,
	Status:   constants.ImageStatusUploaded,
	Meta: &entities.MetaData{
		StudyInstanceUID:  "1.2.3",
		SeriesInstanceUID: "1.2.3.4",
		SOPInstanceUID:    "1.2.3.4.5",
	},
	CreatorID: "creator",
}

func TestIsValidStatus(t *testing.T) {
	{
		assert.Equal(t, false, IsValidStatus("this_is_wrong"))
	}
	{
		assert.Equal(t, false, IsValidStatus(""))
	}
	{
		assert.Equal(t, true, IsValidStatus(testImage.Status))
	}
	{
		assert.Equal(t, true, IsValidStatus(constants.ImageStatusExtracted))
		assert.Equal(t, true, IsValidStatus(constants.ImageStatusFailed))
	}
}

func TestString(t *testing.T) {
	{
		assert.NotEqual(t, "{}", testImage.String())
	}
	{
		image := Image{}
		assert.Equal(t, "{\"id\":\"\",\"created\":0,\"file_name\":\"\",\"size\":0,\"status\":\"\",\"creator_id\":\"\"}", image.String())
	}
}

func TestGetIndexName(t *testing.T) {
	{
		image := Image{
			ID:      "id",
			Created: 1610668800000, // 2021-01-15 UTC
		}
		assert.Equal(t, "image_202101", getIndexName("image", image))
	}
	{
		assert.Equal(t, "image_*", getIndexWildcard("image"))
	}
}

func TestDicomObjectName(t *testing.T) {
	assert.Equal(t, "abc.dcm", dicomObjectName("abc"))
}

func TestConvertAggsToMap(t *testing.T) {
	aggregations := map[string]entities.Aggregation{
		"status": {
			Buckets: []entities.Buckets{
				{Key: "UPLOADED", DocCount: 3},
				{Key: "EXTRACTED", DocCount: 7},
			},
		},
		"creator_id": {
			Buckets: []entities.Buckets{
				{Key: "creator", DocCount: 10},
			},
		},
	}

	aggMap := convertAggsToMap([]string{"status", "creator_id"}, aggregations)

	// Every requested aggregation survives, not just the last one.
	assert.Len(t, aggMap, 2)
	assert.Equal(t, map[string]interface{}{"UPLOADED": 3, "EXTRACTED": 7}, aggMap["status"])
	assert.Equal(t, map[string]interface{}{"creator": 10}, aggMap["creator_id"])
}

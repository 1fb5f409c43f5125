package image

import (
	"encoding/json"

	"dicom-vault-api/constants"
	"dicom-vault-api/entities"
)

var mapImageStatus = map[string]int{
	constants.ImageStatusUploaded:  0,
	constants.ImageStatusExtracted: 1,
	constants.ImageStatusFailed:    2,
}

// Image is the stored document for one uploaded DICOM file. The clinical
// record itself lives in the metadata store; Meta only carries the
// identifiers the document is searchable by.
type Image struct {
	ID        string             `json:"id"`
	Created   int64              `json:"created"`
	Modified  int64              `json:"modified,omitempty"`
	FileName  string             `json:"file_name"`
	Size      int64              `json:"size"`
	Status    string             `json:"status"`
	CreatorID string             `json:"creator_id"`
	Meta      *entities.MetaData `json:"meta,omitempty"`
}

func IsValidStatus(imageStatus string) bool {
	_, found := mapImageStatus[imageStatus]
	return found
}

func (image *Image) String() string {
	b, _ := json.Marshal(image)
	return string(b)
}

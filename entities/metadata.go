package entities

// MetaData carries the stable DICOM identifiers an image document is
// searchable by. The full clinical record lives in the metadata package.
type MetaData struct {
	StudyInstanceUID  string `json:"study_instance_uid,omitempty"`
	SeriesInstanceUID string `json:"series_instance_uid,omitempty"`
	SOPInstanceUID    string `json:"sop_instance_uid,omitempty"`
}

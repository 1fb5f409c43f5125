package metadata

import (
	"encoding/json"

	"dicom-vault-api/constants"
)

// Record is the canonical clinical metadata extracted from a DICOM object.
// Every field is always present; "unset" is the zero value of the field's
// type, never a missing key.
type Record struct {
	PatientName       string  `json:"patient_name"`
	PatientID         string  `json:"patient_id"`
	PatientBirthDate  string  `json:"patient_birth_date"`
	PatientSex        string  `json:"patient_sex"`
	Modality          string  `json:"modality"`
	Rows              int     `json:"rows"`
	Columns           int     `json:"columns"`
	ImageType         string  `json:"image_type"`
	StudyID           string  `json:"study_id"`
	StudyInstanceUID  string  `json:"study_instance_uid"`
	StudyDate         string  `json:"study_date"`
	StudyTime         string  `json:"study_time"`
	SeriesInstanceUID string  `json:"series_instance_uid"`
	SeriesNumber      string  `json:"series_number"`
	SeriesDescription string  `json:"series_description"`
	BodyPart          string  `json:"body_part"`
	ImageID           string  `json:"image_id"`
	InstanceNumber    string  `json:"instance_number"`
	WindowCenter      float64 `json:"window_center"`
	WindowWidth       float64 `json:"window_width"`
}

type kvStr2Inf = map[string]interface{}

// FieldSpec is one row of the canonical field table: a record slot, its
// declared type and the DICOM tag plus keyword alias it resolves from.
type FieldSpec struct {
	Name    string
	Type    string
	Tag     string
	Keyword string
}

// FieldTable is the single source of truth for which tags mean what. The
// resolver, the normalizer and the merge all iterate it in this order.
var FieldTable = []FieldSpec{
	{"patient_name", constants.FieldTypeString, "00100010", "PatientName"},
	{"patient_id", constants.FieldTypeString, "00100020", "PatientID"},
	{"patient_birth_date", constants.FieldTypeDate, "00100030", "PatientBirthDate"},
	{"patient_sex", constants.FieldTypeString, "00100040", "PatientSex"},
	{"modality", constants.FieldTypeString, "00080060", "Modality"},
	{"rows", constants.FieldTypeInt, "00280010", "Rows"},
	{"columns", constants.FieldTypeInt, "00280011", "Columns"},
	{"image_type", constants.FieldTypeString, "00080008", "ImageType"},
	{"study_id", constants.FieldTypeString, "00200010", "StudyID"},
	{"study_instance_uid", constants.FieldTypeString, "0020000d", "StudyInstanceUID"},
	{"study_date", constants.FieldTypeDate, "00080020", "StudyDate"},
	{"study_time", constants.FieldTypeString, "00080030", "StudyTime"},
	{"series_instance_uid", constants.FieldTypeString, "0020000e", "SeriesInstanceUID"},
	{"series_number", constants.FieldTypeString, "00200011", "SeriesNumber"},
	{"series_description", constants.FieldTypeString, "0008103e", "SeriesDescription"},
	{"body_part", constants.FieldTypeString, "00180015", "BodyPartExamined"},
	{"image_id", constants.FieldTypeString, "00080018", "SOPInstanceUID"},
	{"instance_number", constants.FieldTypeString, "00200013", "InstanceNumber"},
	{"window_center", constants.FieldTypeFloat, "00281050", "WindowCenter"},
	{"window_width", constants.FieldTypeFloat, "00281051", "WindowWidth"},
}

// AsMap flattens the record to a field-name keyed map. Numeric values come
// back as float64, matching what a JSON round trip through the store yields.
func (record *Record) AsMap() kvStr2Inf {
	m := make(kvStr2Inf, len(FieldTable))
	bytesData, _ := json.Marshal(record)
	json.Unmarshal(bytesData, &m)
	return m
}

// FromMap rebuilds a Record from a field-name keyed map. Unknown keys are
// dropped, missing keys stay at their empty sentinel.
func FromMap(m kvStr2Inf) Record {
	var record Record
	bytesData, _ := json.Marshal(m)
	json.Unmarshal(bytesData, &record)
	return record
}

// BuildRecord composes the tag resolver and the field normalizer over every
// row of the field table. A dictionary that resolves nothing produces an
// all-empty record, never an error.
func BuildRecord(dict ElementDict) Record {
	m := make(kvStr2Inf, len(FieldTable))
	for _, field := range FieldTable {
		raw := Resolve(dict, field.Tag, field.Keyword)
		m[field.Name] = Normalize(raw, field.Type)
	}
	return FromMap(m)
}

// IsEmptyValue reports whether v is the empty sentinel for the given field
// type. A numeric zero counts as empty; that ambiguity is part of the
// record's contract.
func IsEmptyValue(fieldType string, v interface{}) bool {
	if v == nil {
		return true
	}
	switch fieldType {
	case constants.FieldTypeInt, constants.FieldTypeFloat:
		switch n := v.(type) {
		case float64:
			return n == 0
		case int:
			return n == 0
		}
		return false
	default:
		s, ok := v.(string)
		return ok && s == ""
	}
}

// IsEmpty reports whether every field is at its empty sentinel.
func (record *Record) IsEmpty() bool {
	m := record.AsMap()
	for _, field := range FieldTable {
		if !IsEmptyValue(field.Type, m[field.Name]) {
			return false
		}
	}
	return true
}

func (record *Record) String() string {
	b, _ := json.Marshal(record)
	return string(b)
}

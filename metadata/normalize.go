package metadata

import (
	"strconv"
	"strings"

	"dicom-vault-api/constants"
)

// Normalize converts a raw resolved string into the canonical typed value
// for the field. Every failure path lands on the type's empty sentinel;
// normalization never returns an error.
func Normalize(raw, fieldType string) interface{} {
	trimmed := strings.TrimSpace(raw)

	switch fieldType {
	case constants.FieldTypeDate:
		return NormalizeDate(trimmed)
	case constants.FieldTypeInt:
		n, err := strconv.Atoi(trimmed)
		if err != nil {
			return 0
		}
		return n
	case constants.FieldTypeFloat:
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return float64(0)
		}
		return f
	default:
		return trimmed
	}
}

// NormalizeDate reformats an 8-character DICOM date (YYYYMMDD) as
// YYYY-MM-DD. Any other length is passed through unchanged rather than
// rejected.
func NormalizeDate(raw string) string {
	if len(raw) != 8 {
		return raw
	}
	return raw[0:4] + "-" + raw[4:6] + "-" + raw[6:8]
}

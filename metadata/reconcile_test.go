package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeFillOnly(t *testing.T) {
	baseline := Record{
		PatientName:      "Doe^John",
		StudyInstanceUID: "1.2.3",
	}
	candidate := Record{
		PatientName:      "Other^Name",
		StudyInstanceUID: "9.9.9",
		Modality:         "CT",
		Rows:             512,
	}

	merged, delta := Merge(baseline, candidate)

	// Non-empty baseline fields win, empty ones are filled.
	assert.Equal(t, "Doe^John", merged.PatientName)
	assert.Equal(t, "1.2.3", merged.StudyInstanceUID)
	assert.Equal(t, "CT", merged.Modality)
	assert.Equal(t, 512, merged.Rows)

	assert.Contains(t, delta, "modality")
	assert.Contains(t, delta, "rows")
	assert.NotContains(t, delta, "patient_name")
	assert.NotContains(t, delta, "study_instance_uid")
}

func TestMergeIdentityCases(t *testing.T) {
	record := Record{
		PatientName: "Doe^Jane",
		Modality:    "MR",
		WindowWidth: 80,
	}

	{
		// Empty baseline yields the candidate.
		merged, _ := Merge(Record{}, record)
		assert.Equal(t, record, merged)
	}
	{
		// Empty candidate is a no-op.
		merged, delta := Merge(record, Record{})
		assert.Equal(t, record, merged)
		assert.Empty(t, delta)
	}
	{
		merged, delta := Merge(Record{}, Record{})
		assert.Equal(t, Record{}, merged)
		assert.Empty(t, delta)
	}
}

func TestMergeIdempotent(t *testing.T) {
	baseline := Record{PatientName: "Doe^John", Rows: 256}
	candidate := Record{PatientSex: "M", Rows: 512, WindowCenter: 40}

	once, _ := Merge(baseline, candidate)
	twice, delta := Merge(once, candidate)

	assert.Equal(t, once, twice)
	assert.Empty(t, delta)
}

func TestMergeZeroNumericIsEmpty(t *testing.T) {
	// A numeric zero in the baseline counts as unset and is filled in.
	baseline := Record{WindowCenter: 0}
	candidate := Record{WindowCenter: 40}

	merged, delta := Merge(baseline, candidate)
	assert.Equal(t, float64(40), merged.WindowCenter)
	assert.Contains(t, delta, "window_center")
}

func TestMergeEndToEndScenario(t *testing.T) {
	baseline := Record{
		StudyInstanceUID: "1.2.3",
	}
	candidate := Record{
		PatientName:      "Jane Doe",
		StudyInstanceUID: "9.9.9",
		Modality:         "CT",
	}

	merged, delta := Merge(baseline, candidate)

	assert.Equal(t, "Jane Doe", merged.PatientName)
	assert.Equal(t, "1.2.3", merged.StudyInstanceUID)
	assert.Equal(t, "CT", merged.Modality)

	assert.Equal(t, map[string]interface{}{
		"patient_name": "Jane Doe",
		"modality":     "CT",
	}, delta)
}

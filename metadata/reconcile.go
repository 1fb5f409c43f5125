package metadata

// Merge reconciles a freshly-extracted candidate into the persisted
// baseline with a fill-only rule: a baseline field that already holds a
// meaningful value is kept, only fields still at their empty sentinel are
// filled from the candidate. Identifiers recorded once are therefore never
// overwritten by a re-extraction.
//
// The returned delta holds every field whose merged value differs from the
// baseline, for auditing.
func Merge(baseline, candidate Record) (Record, map[string]interface{}) {
	baseMap := baseline.AsMap()
	candMap := candidate.AsMap()

	merged := make(kvStr2Inf, len(FieldTable))
	delta := make(kvStr2Inf)

	for _, field := range FieldTable {
		value := baseMap[field.Name]
		if IsEmptyValue(field.Type, value) {
			value = candMap[field.Name]
		}
		merged[field.Name] = value

		if value != baseMap[field.Name] {
			delta[field.Name] = value
		}
	}

	return FromMap(merged), delta
}

package metadata

import (
	"fmt"
	"strconv"
	"strings"
)

// ElementDict is the parsed tag dictionary the binary codec hands over. A
// lookup may fail per key; the resolver treats any error as "not found" for
// that spelling and moves on.
type ElementDict interface {
	Lookup(key string) (interface{}, error)
}

// MapDict is the plain in-memory dictionary form.
type MapDict map[string]interface{}

func (dict MapDict) Lookup(key string) (interface{}, error) {
	value, found := dict[key]
	if !found {
		return nil, fmt.Errorf("no element for key %q", key)
	}
	return value, nil
}

// tagMarker is the prefix some codecs put in front of hex tag keys.
const tagMarker = "x"

// arrayDelimiter joins multi-valued elements, backslash per DICOM convention.
const arrayDelimiter = "\\"

var tagPunctReplacer = strings.NewReplacer("(", "", ")", "", ",", "", " ", "")

// tagSpellings lists the key spellings to try for one logical field, in
// resolution order. The keyword alias is always the last resort.
func tagSpellings(tag, keyword string) []string {
	spellings := []string{
		tag,
		tagMarker + tag,
		strings.ToLower(tag),
		strings.ToUpper(tag),
		tagPunctReplacer.Replace(tag),
	}
	if keyword != "" {
		spellings = append(spellings, keyword)
	}
	return spellings
}

// Resolve returns the first non-empty value any spelling of the tag yields,
// or "" when none resolve. It never returns an error; absent data is the
// only failure mode.
func Resolve(dict ElementDict, tag, keyword string) string {
	if dict == nil {
		return ""
	}
	for _, key := range tagSpellings(tag, keyword) {
		raw, err := dict.Lookup(key)
		if err != nil || raw == nil {
			continue
		}
		if value := flattenValue(raw); value != "" {
			return value
		}
	}
	return ""
}

// flattenValue renders a raw element value as a single string. Array values
// are joined with the DICOM multi-value delimiter.
func flattenValue(raw interface{}) string {
	switch v := raw.(type) {
	case string:
		return v
	case []string:
		return strings.Join(v, arrayDelimiter)
	case []int:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, strconv.Itoa(item))
		}
		return strings.Join(parts, arrayDelimiter)
	case []float64:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, strconv.FormatFloat(item, 'f', -1, 64))
		}
		return strings.Join(parts, arrayDelimiter)
	case []interface{}:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			if item == nil {
				continue
			}
			parts = append(parts, fmt.Sprintf("%v", item))
		}
		return strings.Join(parts, arrayDelimiter)
	default:
		return fmt.Sprintf("%v", v)
	}
}

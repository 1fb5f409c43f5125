package image

import (
	"bytes"
	"fmt"

	"dicom-vault-api/metadata"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
)

// DICOMCodec decodes stored binary objects into the tag dictionary the
// metadata resolver consumes. It implements metadata.Extractor.
type DICOMCodec struct {
	storage *FileStorage
}

func NewDICOMCodec(storage *FileStorage) *DICOMCodec {
	return &DICOMCodec{
		storage: storage,
	}
}

func (codec *DICOMCodec) Extract(imageID string) (metadata.ElementDict, error) {
	data, err := codec.storage.FetchFile(imageID)
	if err != nil {
		return nil, fmt.Errorf("cannot fetch stored file for %s: %s", imageID, err)
	}
	return ParseElementDict(data)
}

// ParseElementDict decodes raw DICOM bytes into an element dictionary.
func ParseElementDict(data []byte) (metadata.MapDict, error) {
	dataset, err := dicom.Parse(bytes.NewReader(data), int64(len(data)), nil, dicom.SkipPixelData())
	if err != nil {
		return nil, fmt.Errorf("cannot parse DICOM object: %s", err)
	}
	return ConvertDatasetToDict(dataset), nil
}

// ConvertDatasetToDict flattens a parsed dataset into the resolver's element
// dictionary. Every element is keyed by its 8-hex-digit tag and, when the
// data dictionary knows it, by its keyword as well, so either spelling
// resolves.
func ConvertDatasetToDict(dataset dicom.Dataset) metadata.MapDict {
	dict := make(metadata.MapDict)
	for _, elem := range dataset.Elements {
		if elem == nil || elem.Value == nil {
			continue
		}
		value := elem.Value.GetValue()

		hexKey := fmt.Sprintf("%04x%04x", elem.Tag.Group, elem.Tag.Element)
		dict[hexKey] = value

		if info, err := tag.Find(elem.Tag); err == nil && info.Name != "" {
			dict[info.Name] = value
		}
	}

	return dict
}

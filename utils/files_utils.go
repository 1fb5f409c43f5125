package utils

import (
	"encoding/csv"
	"io"
	"os"
)

func ReadCSVByLines(filePath string, f func(items []string)) error {
	csvfile, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer csvfile.Close()

	reader := csv.NewReader(csvfile)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		f(record)
	}
	return nil
}

package report

import (
	"encoding/csv"
	"fmt"
	"os"
)

const csvReadErrorTemplateConstant = "read csv %s: %w"

// Row is one CSV record keyed by header column name. Rows shorter than the
// header simply omit the trailing columns, and extra values beyond the header
// are dropped, so readers tolerate files written with other column sets.
type Row map[string]string

// ReadCSV loads a header-prefixed CSV file into rows keyed by column name.
func ReadCSV(path string) ([]Row, error) {
	inputFile, openError := os.Open(path)
	if openError != nil {
		return nil, fmt.Errorf(csvReadErrorTemplateConstant, path, openError)
	}
	defer func() {
		_ = inputFile.Close()
	}()

	csvReader := csv.NewReader(inputFile)
	csvReader.FieldsPerRecord = -1

	records, readError := csvReader.ReadAll()
	if readError != nil {
		return nil, fmt.Errorf(csvReadErrorTemplateConstant, path, readError)
	}
	if len(records) == 0 {
		return nil, nil
	}

	header := records[0]
	rows := make([]Row, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(Row, len(header))
		for columnIndex, columnName := range header {
			if columnIndex < len(record) {
				row[columnName] = record[columnIndex]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

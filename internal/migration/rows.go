package migration

import (
	"encoding/csv"
	"fmt"
	"io"
)

const (
	headerReadErrorTemplateConstant = "unable to read csv header: %w"
	recordReadErrorTemplateConstant = "unable to read csv record: %w"
)

// RowReader streams CSV records as Rows using the header line for column names.
type RowReader struct {
	csvReader   *csv.Reader
	columnNames []string
}

// NewRowReader reads and validates the header from the provided source. The
// header must declare every required column or construction fails before any
// row is yielded.
func NewRowReader(source io.Reader) (*RowReader, error) {
	csvReader := csv.NewReader(source)

	headerRecord, headerError := csvReader.Read()
	if headerError != nil {
		return nil, fmt.Errorf(headerReadErrorTemplateConstant, headerError)
	}

	declaredColumns := make(map[string]struct{}, len(headerRecord))
	for _, columnName := range headerRecord {
		declaredColumns[columnName] = struct{}{}
	}

	var missingColumns []string
	for _, requiredColumn := range RequiredColumns() {
		if _, columnDeclared := declaredColumns[requiredColumn]; !columnDeclared {
			missingColumns = append(missingColumns, requiredColumn)
		}
	}
	if len(missingColumns) > 0 {
		return nil, MissingColumnsError{Columns: missingColumns}
	}

	return &RowReader{csvReader: csvReader, columnNames: headerRecord}, nil
}

// Next returns the following row in file order, or io.EOF when the input is
// exhausted. Malformed records surface as errors and end the run.
func (reader *RowReader) Next() (Row, error) {
	record, readError := reader.csvReader.Read()
	if readError == io.EOF {
		return nil, io.EOF
	}
	if readError != nil {
		return nil, fmt.Errorf(recordReadErrorTemplateConstant, readError)
	}

	row := make(Row, len(reader.columnNames))
	for columnIndex, columnName := range reader.columnNames {
		row[columnName] = record[columnIndex]
	}

	return row, nil
}

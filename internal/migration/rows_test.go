package migration_test

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/trackerops/csv2github/internal/migration"
)

const (
	completeHeaderConstant = "status,summary,reporter,owner,type,priority,component,keywords"
)

func TestNewRowReaderHeaderValidation(testInstance *testing.T) {
	testCases := []struct {
		name                   string
		input                  string
		expectedMissingColumns []string
	}{
		{
			name:                   "complete_header_accepted",
			input:                  completeHeaderConstant + "\n",
			expectedMissingColumns: nil,
		},
		{
			name:                   "extra_columns_accepted",
			input:                  completeHeaderConstant + ",milestone,cc\n",
			expectedMissingColumns: nil,
		},
		{
			name:                   "missing_columns_rejected",
			input:                  "status,summary,reporter\n",
			expectedMissingColumns: []string{"owner", "type", "priority", "component", "keywords"},
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf("%d_%s", testCaseIndex, testCase.name), func(subtestInstance *testing.T) {
			rowReader, creationError := migration.NewRowReader(strings.NewReader(testCase.input))

			if len(testCase.expectedMissingColumns) == 0 {
				require.NoError(subtestInstance, creationError)
				require.NotNil(subtestInstance, rowReader)
				return
			}

			require.Nil(subtestInstance, rowReader)
			var missingColumnsError migration.MissingColumnsError
			require.ErrorAs(subtestInstance, creationError, &missingColumnsError)
			require.Equal(subtestInstance, testCase.expectedMissingColumns, missingColumnsError.Columns)
		})
	}
}

func TestNewRowReaderEmptyInput(testInstance *testing.T) {
	rowReader, creationError := migration.NewRowReader(strings.NewReader(""))

	require.Error(testInstance, creationError)
	require.Nil(testInstance, rowReader)
}

func TestRowReaderNext(testInstance *testing.T) {
	input := completeHeaderConstant + "\n" +
		"new,Bug A,alice,bob,defect,high,parser,urgent\n" +
		"closed,Bug B,carol,dave,task,,,\n"

	rowReader, creationError := migration.NewRowReader(strings.NewReader(input))
	require.NoError(testInstance, creationError)

	firstRow, firstError := rowReader.Next()
	require.NoError(testInstance, firstError)
	require.Equal(testInstance, migration.Row{
		"status":    "new",
		"summary":   "Bug A",
		"reporter":  "alice",
		"owner":     "bob",
		"type":      "defect",
		"priority":  "high",
		"component": "parser",
		"keywords":  "urgent",
	}, firstRow)

	secondRow, secondError := rowReader.Next()
	require.NoError(testInstance, secondError)
	require.Equal(testInstance, "Bug B", secondRow["summary"])
	require.Equal(testInstance, "", secondRow["keywords"])

	exhaustedRow, exhaustedError := rowReader.Next()
	require.True(testInstance, errors.Is(exhaustedError, io.EOF))
	require.Nil(testInstance, exhaustedRow)
}

func TestRowReaderMalformedRecord(testInstance *testing.T) {
	input := completeHeaderConstant + "\n" +
		"new,Bug A,alice\n"

	rowReader, creationError := migration.NewRowReader(strings.NewReader(input))
	require.NoError(testInstance, creationError)

	malformedRow, readError := rowReader.Next()
	require.Error(testInstance, readError)
	require.False(testInstance, errors.Is(readError, io.EOF))
	require.Nil(testInstance, malformedRow)
}

package migration

import (
	"fmt"
	"sort"
	"strings"
)

// CSV column names the migration requires.
const (
	statusColumnNameConstant    = "status"
	summaryColumnNameConstant   = "summary"
	reporterColumnNameConstant  = "reporter"
	ownerColumnNameConstant     = "owner"
	typeColumnNameConstant      = "type"
	priorityColumnNameConstant  = "priority"
	componentColumnNameConstant = "component"
	keywordsColumnNameConstant  = "keywords"
)

const (
	importedLabelNameConstant   = "imported"
	columnLabelTemplateConstant = "%s:%s"
	bodyLineTemplateConstant    = "%s: %s"
	bodyLineSeparatorConstant   = "\n"
)

// statusStateMapping maps legacy tracker statuses to remote issue states.
// Unrecognized statuses default to open.
var statusStateMapping = map[string]IssueState{
	"closed":   IssueStateClosed,
	"new":      IssueStateOpen,
	"assigned": IssueStateOpen,
	"accepted": IssueStateOpen,
}

// labelColumnDefinitions lists the columns whose non-empty values become
// prefixed labels, in emission order.
var labelColumnDefinitions = []struct {
	columnName  string
	labelPrefix string
}{
	{columnName: typeColumnNameConstant, labelPrefix: "Type"},
	{columnName: priorityColumnNameConstant, labelPrefix: "Priority"},
	{columnName: componentColumnNameConstant, labelPrefix: "Component"},
}

// RequiredColumns returns the column names every input CSV must declare.
func RequiredColumns() []string {
	return []string{
		statusColumnNameConstant,
		summaryColumnNameConstant,
		reporterColumnNameConstant,
		ownerColumnNameConstant,
		typeColumnNameConstant,
		priorityColumnNameConstant,
		componentColumnNameConstant,
		keywordsColumnNameConstant,
	}
}

// MapStatus maps a legacy status value to its remote issue state.
func MapStatus(statusValue string) IssueState {
	if mappedState, statusKnown := statusStateMapping[statusValue]; statusKnown {
		return mappedState
	}
	return IssueStateOpen
}

// ConvertRow computes the remote issue creation request for one CSV row.
// The conversion is pure: deterministic for a given row, no remote access.
// The body renders every column so no source field is lost.
func ConvertRow(row Row) IssueRequest {
	labels := []string{importedLabelNameConstant}

	for _, definition := range labelColumnDefinitions {
		columnValue := row[definition.columnName]
		if len(columnValue) == 0 {
			continue
		}
		labels = append(labels, fmt.Sprintf(columnLabelTemplateConstant, definition.labelPrefix, columnValue))
	}

	labels = append(labels, strings.Fields(row[keywordsColumnNameConstant])...)

	return IssueRequest{
		Title:       row[summaryColumnNameConstant],
		Body:        renderRowBody(row),
		Assignee:    row[ownerColumnNameConstant],
		Labels:      labels,
		TargetState: MapStatus(row[statusColumnNameConstant]),
	}
}

// renderRowBody renders all columns as "name: value" lines in sorted column
// order so conversion output is deterministic.
func renderRowBody(row Row) string {
	columnNames := make([]string, 0, len(row))
	for columnName := range row {
		columnNames = append(columnNames, columnName)
	}
	sort.Strings(columnNames)

	bodyLines := make([]string, 0, len(columnNames))
	for _, columnName := range columnNames {
		bodyLines = append(bodyLines, fmt.Sprintf(bodyLineTemplateConstant, columnName, row[columnName]))
	}

	return strings.Join(bodyLines, bodyLineSeparatorConstant)
}

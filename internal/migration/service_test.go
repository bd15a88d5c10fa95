package migration_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/trackerops/csv2github/internal/migration"
)

const (
	generousRateBudgetConstant = 5000
	testLabelColorConstant     = "FFFFFF"
)

type stubRemoteGateway struct {
	remainingBudget  int
	budgetSequence   []int
	budgetError      error
	labels           map[string]migration.LabelHandle
	users            map[string]migration.UserHandle
	createIssueError error
	closeIssueError  error

	fetchLabelCalls  []string
	createLabelCalls []string
	fetchUserCalls   []string
	createdIssues    []migration.IssueSubmission
	closedIssues     []migration.IssueHandle
}

func (gateway *stubRemoteGateway) RemainingRateBudget(executionContext context.Context) (int, error) {
	if gateway.budgetError != nil {
		return 0, gateway.budgetError
	}
	if len(gateway.budgetSequence) > 0 {
		nextBudget := gateway.budgetSequence[0]
		gateway.budgetSequence = gateway.budgetSequence[1:]
		return nextBudget, nil
	}
	return gateway.remainingBudget, nil
}

func (gateway *stubRemoteGateway) FetchLabel(executionContext context.Context, labelName string) (migration.LabelHandle, error) {
	gateway.fetchLabelCalls = append(gateway.fetchLabelCalls, labelName)
	if existingLabel, labelExists := gateway.labels[labelName]; labelExists {
		return existingLabel, nil
	}
	return migration.LabelHandle{}, migration.ErrRemoteNotFound
}

func (gateway *stubRemoteGateway) CreateLabel(executionContext context.Context, labelName string, labelColor string) (migration.LabelHandle, error) {
	gateway.createLabelCalls = append(gateway.createLabelCalls, labelName)
	createdLabel := migration.LabelHandle{Name: labelName, Color: labelColor}
	if gateway.labels == nil {
		gateway.labels = make(map[string]migration.LabelHandle)
	}
	gateway.labels[labelName] = createdLabel
	return createdLabel, nil
}

func (gateway *stubRemoteGateway) FetchUser(executionContext context.Context, username string) (migration.UserHandle, error) {
	gateway.fetchUserCalls = append(gateway.fetchUserCalls, username)
	if existingUser, userExists := gateway.users[username]; userExists {
		return existingUser, nil
	}
	return migration.UserHandle{}, migration.ErrRemoteNotFound
}

func (gateway *stubRemoteGateway) CreateIssue(executionContext context.Context, submission migration.IssueSubmission) (migration.IssueHandle, error) {
	if gateway.createIssueError != nil {
		return migration.IssueHandle{}, gateway.createIssueError
	}
	gateway.createdIssues = append(gateway.createdIssues, submission)
	return migration.IssueHandle{Number: len(gateway.createdIssues)}, nil
}

func (gateway *stubRemoteGateway) CloseIssue(executionContext context.Context, issue migration.IssueHandle) error {
	if gateway.closeIssueError != nil {
		return gateway.closeIssueError
	}
	gateway.closedIssues = append(gateway.closedIssues, issue)
	return nil
}

type sliceRowSource struct {
	rows      []migration.Row
	readError error
	position  int
}

func (source *sliceRowSource) Next() (migration.Row, error) {
	if source.position >= len(source.rows) {
		if source.readError != nil {
			return nil, source.readError
		}
		return nil, io.EOF
	}
	row := source.rows[source.position]
	source.position++
	return row, nil
}

func buildTestRow(statusValue string, summaryValue string, ownerValue string) migration.Row {
	return migration.Row{
		"status":    statusValue,
		"summary":   summaryValue,
		"reporter":  "alice",
		"owner":     ownerValue,
		"type":      "defect",
		"priority":  "",
		"component": "",
		"keywords":  "",
	}
}

func TestNewServiceRequiresGateway(testInstance *testing.T) {
	service, creationError := migration.NewService(migration.ServiceDependencies{})

	require.ErrorIs(testInstance, creationError, migration.ErrGatewayNotConfigured)
	require.Nil(testInstance, service)
}

func TestServiceRunRequiresRowSource(testInstance *testing.T) {
	service, creationError := migration.NewService(migration.ServiceDependencies{
		Gateway: &stubRemoteGateway{remainingBudget: generousRateBudgetConstant},
	})
	require.NoError(testInstance, creationError)

	_, runError := service.Run(context.Background(), migration.RunOptions{})
	require.ErrorIs(testInstance, runError, migration.ErrRowSourceNotConfigured)
}

func TestServiceRunCreatesAndClosesIssues(testInstance *testing.T) {
	gateway := &stubRemoteGateway{
		remainingBudget: generousRateBudgetConstant,
		users: map[string]migration.UserHandle{
			"bob": {Login: "bob"},
		},
	}
	outputBuffer := &bytes.Buffer{}

	service, creationError := migration.NewService(migration.ServiceDependencies{
		Gateway:      gateway,
		OutputWriter: outputBuffer,
	})
	require.NoError(testInstance, creationError)

	result, runError := service.Run(context.Background(), migration.RunOptions{
		Rows: &sliceRowSource{rows: []migration.Row{
			buildTestRow("new", "Bug A", "bob"),
			buildTestRow("closed", "Bug B", "bob"),
		}},
		SpareThreshold: 50,
		LabelColor:     testLabelColorConstant,
	})

	require.NoError(testInstance, runError)
	require.Equal(testInstance, 2, result.ProcessedRows)
	require.Equal(testInstance, 2, result.CreatedIssues)
	require.Equal(testInstance, 1, result.ClosedIssues)

	require.Len(testInstance, gateway.createdIssues, 2)
	require.Equal(testInstance, "Bug A", gateway.createdIssues[0].Title)
	require.Equal(testInstance, "bob", gateway.createdIssues[0].Assignee)
	require.Equal(testInstance, []migration.IssueHandle{{Number: 2}}, gateway.closedIssues)

	summaryLines := strings.Split(strings.TrimRight(outputBuffer.String(), "\n"), "\n")
	require.Len(testInstance, summaryLines, 2)
	require.Contains(testInstance, summaryLines[0], "Bug A [open] Created By: alice Assigned To: bob")
	require.Contains(testInstance, summaryLines[1], "Bug B [closed]")
}

func TestServiceRunLabelLookupsAreCached(testInstance *testing.T) {
	gateway := &stubRemoteGateway{
		remainingBudget: generousRateBudgetConstant,
		users: map[string]migration.UserHandle{
			"bob": {Login: "bob"},
		},
	}

	service, creationError := migration.NewService(migration.ServiceDependencies{Gateway: gateway})
	require.NoError(testInstance, creationError)

	_, runError := service.Run(context.Background(), migration.RunOptions{
		Rows: &sliceRowSource{rows: []migration.Row{
			buildTestRow("new", "Bug A", "bob"),
			buildTestRow("new", "Bug B", "bob"),
			buildTestRow("new", "Bug C", "bob"),
		}},
		SpareThreshold: 50,
		LabelColor:     testLabelColorConstant,
	})
	require.NoError(testInstance, runError)

	require.Equal(testInstance, []string{"imported", "Type:defect"}, gateway.fetchLabelCalls)
	require.Equal(testInstance, []string{"imported", "Type:defect"}, gateway.createLabelCalls)
	require.Equal(testInstance, []string{"bob"}, gateway.fetchUserCalls)
}

func TestServiceRunAbortsWhenRateBudgetExhausted(testInstance *testing.T) {
	testCases := []struct {
		name             string
		budgetSequence   []int
		spareThreshold   int
		expectedCreated  int
		expectedRemained int
	}{
		{
			name:             "exhausted_before_first_row",
			budgetSequence:   []int{49},
			spareThreshold:   50,
			expectedCreated:  0,
			expectedRemained: 49,
		},
		{
			name:             "exhausted_before_second_row",
			budgetSequence:   []int{120, 10},
			spareThreshold:   50,
			expectedCreated:  1,
			expectedRemained: 10,
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf("%d_%s", testCaseIndex, testCase.name), func(subtestInstance *testing.T) {
			gateway := &stubRemoteGateway{
				budgetSequence: testCase.budgetSequence,
				users: map[string]migration.UserHandle{
					"bob": {Login: "bob"},
				},
			}

			service, creationError := migration.NewService(migration.ServiceDependencies{Gateway: gateway})
			require.NoError(subtestInstance, creationError)

			result, runError := service.Run(context.Background(), migration.RunOptions{
				Rows: &sliceRowSource{rows: []migration.Row{
					buildTestRow("new", "Bug A", "bob"),
					buildTestRow("new", "Bug B", "bob"),
				}},
				SpareThreshold: testCase.spareThreshold,
				LabelColor:     testLabelColorConstant,
			})

			var rateError migration.RateLimitExhaustedError
			require.ErrorAs(subtestInstance, runError, &rateError)
			require.Equal(subtestInstance, testCase.expectedRemained, rateError.Remaining)
			require.Equal(subtestInstance, testCase.spareThreshold, rateError.Threshold)
			require.Equal(subtestInstance, testCase.expectedCreated, result.CreatedIssues)
			require.Len(subtestInstance, gateway.createdIssues, testCase.expectedCreated)
		})
	}
}

func TestServiceRunUnknownUserIsFatal(testInstance *testing.T) {
	gateway := &stubRemoteGateway{remainingBudget: generousRateBudgetConstant}

	service, creationError := migration.NewService(migration.ServiceDependencies{Gateway: gateway})
	require.NoError(testInstance, creationError)

	result, runError := service.Run(context.Background(), migration.RunOptions{
		Rows: &sliceRowSource{rows: []migration.Row{
			buildTestRow("new", "Bug A", "ghost"),
		}},
		SpareThreshold: 50,
		LabelColor:     testLabelColorConstant,
	})

	var unknownUserError migration.UnknownUserError
	require.ErrorAs(testInstance, runError, &unknownUserError)
	require.Equal(testInstance, "ghost", unknownUserError.Username)
	require.Equal(testInstance, 0, result.CreatedIssues)
	require.Empty(testInstance, gateway.createdIssues)
}

func TestServiceRunDryRunSkipsRemoteMutation(testInstance *testing.T) {
	gateway := &stubRemoteGateway{remainingBudget: generousRateBudgetConstant}
	outputBuffer := &bytes.Buffer{}

	service, creationError := migration.NewService(migration.ServiceDependencies{
		Gateway:      gateway,
		OutputWriter: outputBuffer,
	})
	require.NoError(testInstance, creationError)

	result, runError := service.Run(context.Background(), migration.RunOptions{
		Rows: &sliceRowSource{rows: []migration.Row{
			buildTestRow("closed", "Bug A", "ghost"),
			buildTestRow("new", "Bug B", "ghost"),
		}},
		DryRun:         true,
		SpareThreshold: 50,
		LabelColor:     testLabelColorConstant,
	})

	require.NoError(testInstance, runError)
	require.Equal(testInstance, 2, result.ProcessedRows)
	require.Equal(testInstance, 0, result.CreatedIssues)
	require.Equal(testInstance, 0, result.ClosedIssues)

	require.Empty(testInstance, gateway.createdIssues)
	require.Empty(testInstance, gateway.closedIssues)
	require.Empty(testInstance, gateway.fetchLabelCalls)
	require.Empty(testInstance, gateway.fetchUserCalls)

	summaryLines := strings.Split(strings.TrimRight(outputBuffer.String(), "\n"), "\n")
	require.Len(testInstance, summaryLines, 2)
	require.Contains(testInstance, summaryLines[0], "Bug A [closed]")
	require.Contains(testInstance, summaryLines[1], "Bug B [open]")
}

func TestServiceRunRemoteFailuresEndTheRun(testInstance *testing.T) {
	remoteFailure := errors.New("remote unavailable")

	testCases := []struct {
		name    string
		gateway *stubRemoteGateway
	}{
		{
			name: "budget_read_failure",
			gateway: &stubRemoteGateway{
				budgetError: remoteFailure,
				users:       map[string]migration.UserHandle{"bob": {Login: "bob"}},
			},
		},
		{
			name: "issue_creation_failure",
			gateway: &stubRemoteGateway{
				remainingBudget:  generousRateBudgetConstant,
				createIssueError: remoteFailure,
				users:            map[string]migration.UserHandle{"bob": {Login: "bob"}},
			},
		},
		{
			name: "issue_close_failure",
			gateway: &stubRemoteGateway{
				remainingBudget: generousRateBudgetConstant,
				closeIssueError: remoteFailure,
				users:           map[string]migration.UserHandle{"bob": {Login: "bob"}},
			},
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf("%d_%s", testCaseIndex, testCase.name), func(subtestInstance *testing.T) {
			service, creationError := migration.NewService(migration.ServiceDependencies{Gateway: testCase.gateway})
			require.NoError(subtestInstance, creationError)

			_, runError := service.Run(context.Background(), migration.RunOptions{
				Rows: &sliceRowSource{rows: []migration.Row{
					buildTestRow("closed", "Bug A", "bob"),
				}},
				SpareThreshold: 50,
				LabelColor:     testLabelColorConstant,
			})

			require.ErrorIs(subtestInstance, runError, remoteFailure)
		})
	}
}

package migration

import "context"

// Row maps CSV column names to their string values for one legacy issue.
type Row map[string]string

// IssueState enumerates the remote issue states a row can map to.
type IssueState string

// Issue states produced by the status mapping.
const (
	IssueStateOpen   IssueState = "open"
	IssueStateClosed IssueState = "closed"
)

// IssueRequest is the remote issue creation request computed from one row.
type IssueRequest struct {
	Title       string
	Body        string
	Assignee    string
	Labels      []string
	TargetState IssueState
}

// LabelHandle references a resolved remote label.
type LabelHandle struct {
	Name  string
	Color string
}

// UserHandle references a resolved remote user account.
type UserHandle struct {
	Login string
}

// IssueHandle references a created remote issue.
type IssueHandle struct {
	Number int
}

// IssueSubmission carries the fully resolved payload for remote issue creation.
type IssueSubmission struct {
	Title    string
	Body     string
	Assignee string
	Labels   []LabelHandle
}

// RemoteIssueGateway captures the remote tracker operations the migration
// requires. Lookup operations report a missing entity with an error matching
// ErrRemoteNotFound via errors.Is.
type RemoteIssueGateway interface {
	RemainingRateBudget(executionContext context.Context) (int, error)
	FetchLabel(executionContext context.Context, labelName string) (LabelHandle, error)
	CreateLabel(executionContext context.Context, labelName string, labelColor string) (LabelHandle, error)
	FetchUser(executionContext context.Context, username string) (UserHandle, error)
	CreateIssue(executionContext context.Context, submission IssueSubmission) (IssueHandle, error)
	CloseIssue(executionContext context.Context, issue IssueHandle) error
}

// RowSource yields CSV rows in file order, returning io.EOF when exhausted.
type RowSource interface {
	Next() (Row, error)
}

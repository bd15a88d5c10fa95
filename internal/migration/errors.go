package migration

import (
	"errors"
	"fmt"
	"strings"
)

const (
	remoteNotFoundMessageConstant         = "remote entity not found"
	gatewayNotConfiguredMessageConstant   = "remote issue gateway not configured"
	rowSourceNotConfiguredMessageConstant = "row source not configured"
	unknownUserErrorTemplateConstant      = "unknown user: %s"
	rateLimitExhaustedErrorTemplate       = "rate limit budget exhausted: %d requests remaining, %d required"
	missingColumnsErrorTemplateConstant   = "csv header missing required columns: %s"
	missingColumnsSeparatorStringConstant = ", "
)

// ErrRemoteNotFound marks lookup failures where the remote entity does not exist.
var ErrRemoteNotFound = errors.New(remoteNotFoundMessageConstant)

// ErrGatewayNotConfigured indicates a component was constructed without a gateway.
var ErrGatewayNotConfigured = errors.New(gatewayNotConfiguredMessageConstant)

// ErrRowSourceNotConfigured indicates Run was invoked without a row source.
var ErrRowSourceNotConfigured = errors.New(rowSourceNotConfiguredMessageConstant)

// UnknownUserError reports a username the remote service cannot resolve.
// It is permanent for the row and fatal for the run.
type UnknownUserError struct {
	Username string
}

// Error describes the unresolvable username.
func (userError UnknownUserError) Error() string {
	return fmt.Sprintf(unknownUserErrorTemplateConstant, userError.Username)
}

// RateLimitExhaustedError reports that the remaining API budget dropped below
// the configured spare threshold before a row could be processed.
type RateLimitExhaustedError struct {
	Remaining int
	Threshold int
}

// Error describes the exhausted budget.
func (rateError RateLimitExhaustedError) Error() string {
	return fmt.Sprintf(rateLimitExhaustedErrorTemplate, rateError.Remaining, rateError.Threshold)
}

// MissingColumnsError reports required CSV columns absent from the header.
type MissingColumnsError struct {
	Columns []string
}

// Error lists the missing columns.
func (columnsError MissingColumnsError) Error() string {
	return fmt.Sprintf(missingColumnsErrorTemplateConstant, strings.Join(columnsError.Columns, missingColumnsSeparatorStringConstant))
}

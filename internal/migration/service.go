package migration

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"
)

const (
	summaryLineTemplateConstant = "%s [%s] Created By: %s Assigned To: %s Labels: %v, Description: %s\n"

	runStartedMessageConstant       = "migration run started"
	rowProcessedMessageConstant     = "row processed"
	runAbortedMessageConstant       = "migration run aborted"
	logFieldDryRunConstant          = "dry_run"
	logFieldSpareThresholdConstant  = "spare_threshold"
	logFieldRowNumberConstant       = "row_number"
	logFieldIssueTitleConstant      = "issue_title"
	logFieldIssueStateConstant      = "issue_state"
	logFieldRemainingBudgetConstant = "remaining_budget"
)

// ServiceDependencies carries the collaborators required by the migration driver.
type ServiceDependencies struct {
	Logger       *zap.Logger
	Gateway      RemoteIssueGateway
	OutputWriter io.Writer
}

// RunOptions configures a single migration run.
type RunOptions struct {
	Rows           RowSource
	DryRun         bool
	SpareThreshold int
	LabelColor     string
}

// RunResult summarizes a completed or aborted migration run.
type RunResult struct {
	ProcessedRows int
	CreatedIssues int
	ClosedIssues  int
}

// Service drives the migration: strictly sequential row processing with a
// rate-budget pre-check per row and no rollback of already-created issues.
type Service struct {
	logger       *zap.Logger
	gateway      RemoteIssueGateway
	outputWriter io.Writer
	labelCache   *LabelCache
	userCache    *UserCache
}

// NewService constructs the migration driver from the provided dependencies.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	if dependencies.Gateway == nil {
		return nil, ErrGatewayNotConfigured
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	outputWriter := dependencies.OutputWriter
	if outputWriter == nil {
		outputWriter = io.Discard
	}

	labelCache, labelCacheError := NewLabelCache(dependencies.Gateway)
	if labelCacheError != nil {
		return nil, labelCacheError
	}

	userCache, userCacheError := NewUserCache(dependencies.Gateway)
	if userCacheError != nil {
		return nil, userCacheError
	}

	return &Service{
		logger:       logger,
		gateway:      dependencies.Gateway,
		outputWriter: outputWriter,
		labelCache:   labelCache,
		userCache:    userCache,
	}, nil
}

// Run processes every row from the source in order. The first fatal error
// (exhausted rate budget, unknown user, remote failure, malformed CSV) ends
// the run; issues created before the failure are retained.
func (service *Service) Run(executionContext context.Context, options RunOptions) (RunResult, error) {
	result := RunResult{}

	if options.Rows == nil {
		return result, ErrRowSourceNotConfigured
	}

	spareThreshold := options.SpareThreshold
	if spareThreshold <= 0 {
		spareThreshold = DefaultSpareThresholdConstant
	}

	service.logger.Info(
		runStartedMessageConstant,
		zap.Bool(logFieldDryRunConstant, options.DryRun),
		zap.Int(logFieldSpareThresholdConstant, spareThreshold),
	)

	for {
		row, readError := options.Rows.Next()
		if errors.Is(readError, io.EOF) {
			return result, nil
		}
		if readError != nil {
			service.logRunAborted(readError)
			return result, readError
		}

		remainingBudget, budgetError := service.gateway.RemainingRateBudget(executionContext)
		if budgetError != nil {
			service.logRunAborted(budgetError)
			return result, budgetError
		}
		if remainingBudget < spareThreshold {
			rateError := RateLimitExhaustedError{Remaining: remainingBudget, Threshold: spareThreshold}
			service.logRunAborted(rateError)
			return result, rateError
		}

		request := ConvertRow(row)
		result.ProcessedRows++

		if options.DryRun {
			service.emitSummary(row, request)
			continue
		}

		processError := service.processRow(executionContext, row, request, options.LabelColor, &result)
		if processError != nil {
			service.logRunAborted(processError)
			return result, processError
		}

		service.logger.Debug(
			rowProcessedMessageConstant,
			zap.Int(logFieldRowNumberConstant, result.ProcessedRows),
			zap.String(logFieldIssueTitleConstant, request.Title),
			zap.String(logFieldIssueStateConstant, string(request.TargetState)),
			zap.Int(logFieldRemainingBudgetConstant, remainingBudget),
		)
	}
}

func (service *Service) processRow(executionContext context.Context, row Row, request IssueRequest, labelColor string, result *RunResult) error {
	assignee, assigneeError := service.userCache.Resolve(executionContext, request.Assignee)
	if assigneeError != nil {
		return assigneeError
	}

	resolvedLabels := make([]LabelHandle, 0, len(request.Labels))
	for _, labelName := range request.Labels {
		resolution, resolutionError := service.labelCache.Resolve(executionContext, labelName, labelColor)
		if resolutionError != nil {
			return resolutionError
		}
		resolvedLabels = append(resolvedLabels, resolution.Handle)
	}

	createdIssue, creationError := service.gateway.CreateIssue(executionContext, IssueSubmission{
		Title:    request.Title,
		Body:     request.Body,
		Assignee: assignee.Login,
		Labels:   resolvedLabels,
	})
	if creationError != nil {
		return creationError
	}
	result.CreatedIssues++

	if request.TargetState == IssueStateClosed {
		if closeError := service.gateway.CloseIssue(executionContext, createdIssue); closeError != nil {
			return closeError
		}
		result.ClosedIssues++
	}

	service.emitSummary(row, request)
	return nil
}

func (service *Service) emitSummary(row Row, request IssueRequest) {
	fmt.Fprintf(
		service.outputWriter,
		summaryLineTemplateConstant,
		request.Title,
		request.TargetState,
		row[reporterColumnNameConstant],
		request.Assignee,
		request.Labels,
		request.Body,
	)
}

func (service *Service) logRunAborted(failure error) {
	service.logger.Warn(runAbortedMessageConstant, zap.Error(failure))
}

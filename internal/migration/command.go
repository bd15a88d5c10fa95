package migration

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/trackerops/csv2github/internal/githubauth"
	"github.com/trackerops/csv2github/internal/utils"
)

const (
	commandUseConstant              = "migrate <csv-file> <github-username> <github-project>"
	commandShortDescriptionConstant = "Migrate CSV-exported tracker issues into a GitHub project"
	commandLongDescriptionConstant  = "migrate reads legacy issue records from a CSV export, converts status, label, and assignee fields, and creates matching issues through the GitHub API. Issues whose source status maps to closed are closed after creation."
	commandArgumentCountConstant    = 3

	dryRunFlagNameConstant  = "dry-run"
	dryRunFlagUsageConstant = "Print the computed issues without modifying anything on GitHub"

	csvFileOpenErrorTemplateConstant     = "unable to open csv file: %w"
	rowReaderCreationErrorTemplate       = "unable to read csv input: %w"
	credentialResolutionErrorTemplate    = "unable to resolve credentials: %w"
	gatewayResolutionErrorTemplate       = "unable to resolve github project: %w"
	serviceCreationErrorTemplateConstant = "unable to construct migration service: %w"
	migrationRunErrorTemplateConstant    = "migration failed: %w"

	runCompletedMessageConstant    = "migration run completed"
	logFieldCsvFileConstant        = "csv_file"
	logFieldProjectConstant        = "project"
	logFieldProcessedRowsConstant  = "processed_rows"
	logFieldCreatedIssuesConstant  = "created_issues"
	logFieldClosedIssuesConstant   = "closed_issues"
	logFieldDryRunSelectedConstant = "dry_run"
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// SecretResolver resolves the authentication secret for a username.
type SecretResolver func(username string) (string, error)

// GatewayProvider constructs a remote gateway for the resolved options.
type GatewayProvider func(executionContext context.Context, options GitHubGatewayOptions) (RemoteIssueGateway, error)

// CommandBuilder assembles the migrate Cobra command.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider func() CommandConfiguration
	SecretResolver        SecretResolver
	GatewayProvider       GatewayProvider
	OutputWriter          io.Writer
}

type commandOptions struct {
	csvFilePath   string
	username      string
	project       string
	dryRunEnabled bool
	configuration CommandConfiguration
}

// Build constructs the migrate command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:           commandUseConstant,
		Short:         commandShortDescriptionConstant,
		Long:          commandLongDescriptionConstant,
		SilenceErrors: true,
		Args:          cobra.ExactArgs(commandArgumentCountConstant),
		RunE:          builder.runMigrate,
	}

	command.Flags().Bool(dryRunFlagNameConstant, false, dryRunFlagUsageConstant)

	return command, nil
}

func (builder *CommandBuilder) runMigrate(command *cobra.Command, arguments []string) error {
	options := builder.parseOptions(command, arguments)
	logger := builder.resolveLogger()

	secret, secretError := builder.resolveSecret(options.username)
	if secretError != nil {
		return fmt.Errorf(credentialResolutionErrorTemplate, secretError)
	}

	gateway, gatewayError := builder.resolveGateway(command.Context(), GitHubGatewayOptions{
		BaseURL:  options.configuration.APIBaseURL,
		Username: options.username,
		Secret:   secret,
		Project:  options.project,
	})
	if gatewayError != nil {
		return fmt.Errorf(gatewayResolutionErrorTemplate, gatewayError)
	}

	csvFile, openError := os.Open(options.csvFilePath)
	if openError != nil {
		return fmt.Errorf(csvFileOpenErrorTemplateConstant, openError)
	}
	defer csvFile.Close()

	rowReader, readerError := NewRowReader(csvFile)
	if readerError != nil {
		return fmt.Errorf(rowReaderCreationErrorTemplate, readerError)
	}

	service, serviceError := NewService(ServiceDependencies{
		Logger:       logger,
		Gateway:      gateway,
		OutputWriter: builder.resolveOutputWriter(),
	})
	if serviceError != nil {
		return fmt.Errorf(serviceCreationErrorTemplateConstant, serviceError)
	}

	result, runError := service.Run(command.Context(), RunOptions{
		Rows:           rowReader,
		DryRun:         options.dryRunEnabled,
		SpareThreshold: options.configuration.SpareThreshold,
		LabelColor:     options.configuration.LabelColor,
	})
	if runError != nil {
		return fmt.Errorf(migrationRunErrorTemplateConstant, runError)
	}

	logger.Info(
		runCompletedMessageConstant,
		zap.String(logFieldCsvFileConstant, options.csvFilePath),
		zap.String(logFieldProjectConstant, options.project),
		zap.Bool(logFieldDryRunSelectedConstant, options.dryRunEnabled),
		zap.Int(logFieldProcessedRowsConstant, result.ProcessedRows),
		zap.Int(logFieldCreatedIssuesConstant, result.CreatedIssues),
		zap.Int(logFieldClosedIssuesConstant, result.ClosedIssues),
	)

	return nil
}

func (builder *CommandBuilder) parseOptions(command *cobra.Command, arguments []string) commandOptions {
	configuration := builder.resolveConfiguration()

	dryRunEnabled := configuration.DryRun
	if command != nil && command.Flags().Changed(dryRunFlagNameConstant) {
		flagValue, _ := command.Flags().GetBool(dryRunFlagNameConstant)
		dryRunEnabled = flagValue
	}

	return commandOptions{
		csvFilePath:   arguments[0],
		username:      arguments[1],
		project:       arguments[2],
		dryRunEnabled: dryRunEnabled,
		configuration: configuration,
	}
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	var logger *zap.Logger
	if builder.LoggerProvider != nil {
		logger = builder.LoggerProvider()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return logger
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider().Sanitize()
}

func (builder *CommandBuilder) resolveSecret(username string) (string, error) {
	if builder.SecretResolver != nil {
		return builder.SecretResolver(username)
	}
	return githubauth.NewCredentialsResolver(nil).ResolveSecret(username)
}

func (builder *CommandBuilder) resolveGateway(executionContext context.Context, options GitHubGatewayOptions) (RemoteIssueGateway, error) {
	if builder.GatewayProvider != nil {
		return builder.GatewayProvider(executionContext, options)
	}
	return NewGitHubGateway(executionContext, options)
}

func (builder *CommandBuilder) resolveOutputWriter() io.Writer {
	if builder.OutputWriter != nil {
		return utils.NewFlushingWriter(builder.OutputWriter)
	}
	return utils.NewFlushingWriter(os.Stdout)
}

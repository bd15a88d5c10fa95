package cli

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

const migrateCommandNameConstant = "migrate"

// changeWorkingDirectory stands in for testing.T.Chdir, which requires Go 1.24.
func changeWorkingDirectory(testInstance *testing.T, directory string) {
	testInstance.Helper()
	originalDirectory, workingDirectoryError := os.Getwd()
	require.NoError(testInstance, workingDirectoryError)
	require.NoError(testInstance, os.Chdir(directory))
	testInstance.Cleanup(func() { _ = os.Chdir(originalDirectory) })
}

func TestNewApplicationRegistersMigrateCommand(testInstance *testing.T) {
	application := NewApplication()

	commandNames := make([]string, 0, len(application.rootCommand.Commands()))
	for _, registeredCommand := range application.rootCommand.Commands() {
		commandNames = append(commandNames, registeredCommand.Name())
	}

	require.Contains(testInstance, commandNames, migrateCommandNameConstant)
}

func TestApplicationRootHelpListsMigrate(testInstance *testing.T) {
	application := NewApplication()

	helpBuffer := &bytes.Buffer{}
	application.rootCommand.SetOut(helpBuffer)
	application.rootCommand.SetErr(helpBuffer)
	application.rootCommand.SetArgs([]string{"--help"})

	require.NoError(testInstance, application.rootCommand.Execute())
	require.Contains(testInstance, helpBuffer.String(), migrateCommandNameConstant)
}

func TestInitializeConfigurationAppliesEmbeddedDefaults(testInstance *testing.T) {
	changeWorkingDirectory(testInstance, testInstance.TempDir())

	application := NewApplication()
	require.NoError(testInstance, application.initializeConfiguration(application.rootCommand))

	require.Equal(testInstance, "info", application.configuration.Common.LogLevel)
	require.Equal(testInstance, "structured", application.configuration.Common.LogFormat)
	require.Equal(testInstance, 50, application.configuration.Migrate.SpareThreshold)
	require.Equal(testInstance, "FFFFFF", application.configuration.Migrate.LabelColor)
	require.False(testInstance, application.configuration.Migrate.DryRun)
}

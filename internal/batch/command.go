package batch

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hsb3/github_inventory/internal/execshell"
	"github.com/hsb3/github_inventory/internal/githubcli"
	"github.com/hsb3/github_inventory/internal/inventory"
	"github.com/hsb3/github_inventory/internal/report"
	"github.com/hsb3/github_inventory/internal/ui"
)

const (
	commandUseConstant                    = "batch"
	commandShortDescriptionConstant       = "Inventory multiple GitHub accounts in one run"
	commandLongDescriptionConstant        = "batch runs the inventory pipeline for every configured account, writing each account's CSV exports and markdown report into its own directory."
	commandExecutionErrorTemplateConstant = "batch processing failed: %w"
	unexpectedArgumentsMessageConstant    = "batch does not accept positional arguments"
	failedAccountsErrorTemplateConstant   = "%d of %d accounts failed"
	flagConfigNameConstant                = "config"
	flagConfigDescriptionConstant         = "Path to a YAML or JSON file listing accounts to process"
	flagBaseDirectoryNameConstant         = "base-dir"
	flagBaseDirectoryDescriptionConstant  = "Base directory receiving per-account output directories"
	flagConcurrencyNameConstant           = "concurrency"
	flagConcurrencyDescriptionConstant    = "Number of concurrent branch count lookups"
)

var errUnexpectedArguments = errors.New(unexpectedArgumentsMessageConstant)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider supplies the configuration for the batch command.
type ConfigurationProvider func() CommandConfiguration

// HumanReadableLoggingProvider reports whether console-formatted logging is active.
type HumanReadableLoggingProvider func() bool

// CommandBuilder assembles the Cobra command for batch processing.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	ConfigurationProvider        ConfigurationProvider
	HumanReadableLoggingProvider HumanReadableLoggingProvider
	Executor                     githubcli.GitHubCommandExecutor
}

// Build constructs the batch command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		RunE:  builder.run,
	}

	command.Flags().String(flagConfigNameConstant, "", flagConfigDescriptionConstant)
	command.Flags().String(flagBaseDirectoryNameConstant, "", flagBaseDirectoryDescriptionConstant)
	command.Flags().Int(flagConcurrencyNameConstant, 0, flagConcurrencyDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errUnexpectedArguments
	}

	configuration := builder.resolveConfiguration()
	configuration = applyFlagOverrides(command, configuration)
	configuration = configuration.sanitize()

	runConfigs, configError := resolveRunConfigs(configuration)
	if configError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, configError)
	}

	logger := builder.resolveLogger()
	pipeline, pipelineError := builder.assemblePipelineService(logger, configuration)
	if pipelineError != nil {
		return pipelineError
	}

	orchestrator, orchestratorError := NewOrchestrator(pipeline, command.OutOrStdout(), logger)
	if orchestratorError != nil {
		return orchestratorError
	}

	summary := orchestrator.Run(command.Context(), runConfigs, configuration.BaseDirectory)
	if summary.FailedCount > 0 {
		return fmt.Errorf(commandExecutionErrorTemplateConstant,
			fmt.Errorf(failedAccountsErrorTemplateConstant, summary.FailedCount, len(summary.Results)))
	}
	return nil
}

// resolveRunConfigs prefers an explicit config file, then inline accounts from
// the loaded configuration, then the built-in defaults.
func resolveRunConfigs(configuration CommandConfiguration) ([]RunConfig, error) {
	if len(configuration.ConfigPath) > 0 {
		return LoadRunConfigFile(configuration.ConfigPath)
	}
	if len(configuration.Accounts) > 0 {
		return configuration.Accounts, nil
	}
	return DefaultRunConfigs(), nil
}

func (builder *CommandBuilder) assemblePipelineService(logger *zap.Logger, configuration CommandConfiguration) (*inventory.PipelineService, error) {
	executor, executorError := builder.resolveExecutor(logger)
	if executorError != nil {
		return nil, executorError
	}

	client, clientError := githubcli.NewClient(executor)
	if clientError != nil {
		return nil, clientError
	}

	collector, collectorError := inventory.NewCollector(client, logger)
	if collectorError != nil {
		return nil, collectorError
	}

	enricher, enricherError := inventory.NewBranchEnricher(client, logger, configuration.EnrichmentConcurrency)
	if enricherError != nil {
		return nil, enricherError
	}

	documentBuilder := report.NewBuilder(report.BuilderOptions{
		OwnedTableLimit:   configuration.ReportOwnedLimit,
		StarredTableLimit: configuration.ReportStarredLimit,
	})
	return inventory.NewPipelineService(collector, enricher, inventory.NewWriter(logger), documentBuilder, logger)
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return CommandConfiguration{}
	}
	return builder.ConfigurationProvider()
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func (builder *CommandBuilder) resolveExecutor(logger *zap.Logger) (githubcli.GitHubCommandExecutor, error) {
	if builder.Executor != nil {
		return builder.Executor, nil
	}

	var eventObserver execshell.CommandEventObserver
	if builder.HumanReadableLoggingProvider != nil && builder.HumanReadableLoggingProvider() {
		eventObserver = ui.NewConsoleCommandEventLogger(logger)
	}

	return execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner(), eventObserver)
}

func applyFlagOverrides(command *cobra.Command, configuration CommandConfiguration) CommandConfiguration {
	flags := command.Flags()
	if flags.Changed(flagConfigNameConstant) {
		configuration.ConfigPath, _ = flags.GetString(flagConfigNameConstant)
	}
	if flags.Changed(flagBaseDirectoryNameConstant) {
		configuration.BaseDirectory, _ = flags.GetString(flagBaseDirectoryNameConstant)
	}
	if flags.Changed(flagConcurrencyNameConstant) {
		configuration.EnrichmentConcurrency, _ = flags.GetInt(flagConcurrencyNameConstant)
	}
	return configuration
}

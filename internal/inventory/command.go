package inventory

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hsb3/github_inventory/internal/execshell"
	"github.com/hsb3/github_inventory/internal/githubcli"
	"github.com/hsb3/github_inventory/internal/report"
	"github.com/hsb3/github_inventory/internal/ui"
)

const (
	commandUseConstant                    = "inventory"
	commandShortDescriptionConstant       = "Collect repository inventories and generate CSV and markdown outputs"
	commandLongDescriptionConstant        = "inventory collects owned and starred repositories for a GitHub account via the GitHub CLI, enriches them with branch counts, writes CSV datasets, and renders a markdown report."
	commandExecutionErrorTemplateConstant = "inventory pipeline failed: %w"
	unexpectedArgumentsMessageConstant    = "inventory does not accept positional arguments"
	completionMessageTemplateConstant     = "Inventory complete: %d owned, %d starred, report at %s\n"
	flagUserNameConstant                  = "user"
	flagUserDescriptionConstant           = "GitHub account to inventory"
	flagLimitNameConstant                 = "limit"
	flagLimitDescriptionConstant          = "Maximum number of repositories to collect per dataset (0 collects everything)"
	flagOutputBaseNameConstant            = "output-base"
	flagOutputBaseDescriptionConstant     = "Base directory for generated files"
	flagOwnedCSVNameConstant              = "owned-csv"
	flagOwnedCSVDescriptionConstant       = "Destination path for the owned repository CSV"
	flagStarredCSVNameConstant            = "starred-csv"
	flagStarredCSVDescriptionConstant     = "Destination path for the starred repository CSV"
	flagReportNameConstant                = "report"
	flagReportDescriptionConstant         = "Destination path for the markdown report"
	flagOwnedOnlyNameConstant             = "owned-only"
	flagOwnedOnlyDescriptionConstant      = "Collect only owned repositories"
	flagStarredOnlyNameConstant           = "starred-only"
	flagStarredOnlyDescriptionConstant    = "Collect only starred repositories"
	flagConcurrencyNameConstant           = "concurrency"
	flagConcurrencyDescriptionConstant    = "Number of concurrent branch count lookups"
)

var errUnexpectedArguments = errors.New(unexpectedArgumentsMessageConstant)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider supplies the configuration for the inventory command.
type ConfigurationProvider func() CommandConfiguration

// HumanReadableLoggingProvider reports whether console-formatted logging is active.
type HumanReadableLoggingProvider func() bool

// CommandBuilder assembles the Cobra command for the inventory pipeline.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	ConfigurationProvider        ConfigurationProvider
	HumanReadableLoggingProvider HumanReadableLoggingProvider
	Executor                     githubcli.GitHubCommandExecutor
}

// Build constructs the inventory command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		RunE:  builder.run,
	}

	command.Flags().String(flagUserNameConstant, "", flagUserDescriptionConstant)
	command.Flags().Int(flagLimitNameConstant, 0, flagLimitDescriptionConstant)
	command.Flags().String(flagOutputBaseNameConstant, "", flagOutputBaseDescriptionConstant)
	command.Flags().String(flagOwnedCSVNameConstant, "", flagOwnedCSVDescriptionConstant)
	command.Flags().String(flagStarredCSVNameConstant, "", flagStarredCSVDescriptionConstant)
	command.Flags().String(flagReportNameConstant, "", flagReportDescriptionConstant)
	command.Flags().Bool(flagOwnedOnlyNameConstant, false, flagOwnedOnlyDescriptionConstant)
	command.Flags().Bool(flagStarredOnlyNameConstant, false, flagStarredOnlyDescriptionConstant)
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

	options := buildPipelineOptions(command, configuration)

	logger := builder.resolveLogger()
	service, serviceError := builder.assemblePipelineService(logger, configuration)
	if serviceError != nil {
		return serviceError
	}

	summary, runError := service.Run(command.Context(), options)
	if runError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, runError)
	}

	command.Printf(completionMessageTemplateConstant, summary.OwnedCount, summary.StarredCount, options.ReportPath)
	return nil
}

func (builder *CommandBuilder) assemblePipelineService(logger *zap.Logger, configuration CommandConfiguration) (*PipelineService, error) {
	executor, executorError := builder.resolveExecutor(logger)
	if executorError != nil {
		return nil, executorError
	}

	client, clientError := githubcli.NewClient(executor)
	if clientError != nil {
		return nil, clientError
	}

	collector, collectorError := NewCollector(client, logger)
	if collectorError != nil {
		return nil, collectorError
	}

	enricher, enricherError := NewBranchEnricher(client, logger, configuration.EnrichmentConcurrency)
	if enricherError != nil {
		return nil, enricherError
	}

	documentBuilder := report.NewBuilder(report.BuilderOptions{
		OwnedTableLimit:   configuration.ReportOwnedLimit,
		StarredTableLimit: configuration.ReportStarredLimit,
	})

	return NewPipelineService(collector, enricher, NewWriter(logger), documentBuilder, logger)
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
	if flags.Changed(flagUserNameConstant) {
		configuration.Username, _ = flags.GetString(flagUserNameConstant)
	}
	if flags.Changed(flagLimitNameConstant) {
		configuration.Limit, _ = flags.GetInt(flagLimitNameConstant)
	}
	if flags.Changed(flagOutputBaseNameConstant) {
		configuration.OutputBase, _ = flags.GetString(flagOutputBaseNameConstant)
	}
	if flags.Changed(flagOwnedCSVNameConstant) {
		configuration.OwnedCSVPath, _ = flags.GetString(flagOwnedCSVNameConstant)
	}
	if flags.Changed(flagStarredCSVNameConstant) {
		configuration.StarredCSVPath, _ = flags.GetString(flagStarredCSVNameConstant)
	}
	if flags.Changed(flagReportNameConstant) {
		configuration.ReportPath, _ = flags.GetString(flagReportNameConstant)
	}
	if flags.Changed(flagConcurrencyNameConstant) {
		configuration.EnrichmentConcurrency, _ = flags.GetInt(flagConcurrencyNameConstant)
	}
	return configuration
}

func buildPipelineOptions(command *cobra.Command, configuration CommandConfiguration) PipelineOptions {
	ownedOnly, _ := command.Flags().GetBool(flagOwnedOnlyNameConstant)
	starredOnly, _ := command.Flags().GetBool(flagStarredOnlyNameConstant)

	ownedCSVPath, starredCSVPath, reportPath := configuration.OutputPaths(configuration.Username)

	return PipelineOptions{
		Username:        configuration.Username,
		CollectionLimit: configuration.Limit,
		OwnedCSVPath:    ownedCSVPath,
		StarredCSVPath:  starredCSVPath,
		ReportPath:      reportPath,
		OwnedOnly:       ownedOnly,
		StarredOnly:     starredOnly,
	}
}

package report

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	commandUseConstant                    = "report"
	commandShortDescriptionConstant       = "Regenerate the markdown report from existing CSV exports"
	commandLongDescriptionConstant        = "report rebuilds the markdown inventory report from previously written CSV files without contacting GitHub."
	commandExecutionErrorTemplateConstant = "report generation failed: %w"
	unexpectedArgumentsMessageConstant    = "report does not accept positional arguments"
	accountRequiredMessageConstant        = "an account name is required"
	completionMessageTemplateConstant     = "Report written to %s\n"
	datasetMissingLogMessageConstant      = "dataset not found, section omitted"
	flagAccountNameConstant               = "account"
	flagAccountDescriptionConstant        = "Account name the report is generated for"
	flagOutputBaseNameConstant            = "output-base"
	flagOutputBaseDescriptionConstant     = "Base directory containing the account's CSV exports"
	flagOwnedCSVNameConstant              = "owned-csv"
	flagOwnedCSVDescriptionConstant       = "Path to the owned repository CSV"
	flagStarredCSVNameConstant            = "starred-csv"
	flagStarredCSVDescriptionConstant     = "Path to the starred repository CSV"
	flagReportNameConstant                = "report"
	flagReportDescriptionConstant         = "Destination path for the markdown report"
	defaultOutputBaseDirectoryConstant    = "docs"
	defaultOwnedCSVFileNameConstant       = "repos.csv"
	defaultStarredCSVFileNameConstant     = "starred_repos.csv"
	defaultReportFileNameConstant         = "README.md"
	reportDirectoryPermissionsConstant    = 0o755
	reportFilePermissionsConstant         = 0o644
	logFieldDatasetPathConstant           = "path"
)

var (
	errUnexpectedArguments = errors.New(unexpectedArgumentsMessageConstant)
	errAccountRequired     = errors.New(accountRequiredMessageConstant)
)

// CommandConfiguration captures configuration values for the report command.
type CommandConfiguration struct {
	Account            string `mapstructure:"account"`
	OutputBase         string `mapstructure:"output_base"`
	OwnedCSVPath       string `mapstructure:"owned_csv"`
	StarredCSVPath     string `mapstructure:"starred_csv"`
	ReportPath         string `mapstructure:"report"`
	ReportOwnedLimit   int    `mapstructure:"report_owned_limit"`
	ReportStarredLimit int    `mapstructure:"report_starred_limit"`
}

// DefaultConfigurationValues exposes baseline configuration values keyed under the supplied prefix.
func DefaultConfigurationValues(configurationPrefix string) map[string]any {
	return map[string]any{
		configurationPrefix + ".account":     "",
		configurationPrefix + ".output_base": defaultOutputBaseDirectoryConstant,
	}
}

func (configuration CommandConfiguration) sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.Account = strings.TrimSpace(configuration.Account)
	sanitized.OutputBase = strings.TrimSpace(configuration.OutputBase)
	sanitized.OwnedCSVPath = strings.TrimSpace(configuration.OwnedCSVPath)
	sanitized.StarredCSVPath = strings.TrimSpace(configuration.StarredCSVPath)
	sanitized.ReportPath = strings.TrimSpace(configuration.ReportPath)
	if len(sanitized.OutputBase) == 0 {
		sanitized.OutputBase = defaultOutputBaseDirectoryConstant
	}
	return sanitized
}

func (configuration CommandConfiguration) resolvePaths() (ownedCSVPath string, starredCSVPath string, reportPath string) {
	accountDirectory := filepath.Join(configuration.OutputBase, configuration.Account)

	ownedCSVPath = configuration.OwnedCSVPath
	if len(ownedCSVPath) == 0 {
		ownedCSVPath = filepath.Join(accountDirectory, defaultOwnedCSVFileNameConstant)
	}

	starredCSVPath = configuration.StarredCSVPath
	if len(starredCSVPath) == 0 {
		starredCSVPath = filepath.Join(accountDirectory, defaultStarredCSVFileNameConstant)
	}

	reportPath = configuration.ReportPath
	if len(reportPath) == 0 {
		reportPath = filepath.Join(accountDirectory, defaultReportFileNameConstant)
	}

	return ownedCSVPath, starredCSVPath, reportPath
}

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider supplies the configuration for the report command.
type ConfigurationProvider func() CommandConfiguration

// CommandBuilder assembles the Cobra command for standalone report generation.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
}

// Build constructs the report command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		RunE:  builder.run,
	}

	command.Flags().String(flagAccountNameConstant, "", flagAccountDescriptionConstant)
	command.Flags().String(flagOutputBaseNameConstant, "", flagOutputBaseDescriptionConstant)
	command.Flags().String(flagOwnedCSVNameConstant, "", flagOwnedCSVDescriptionConstant)
	command.Flags().String(flagStarredCSVNameConstant, "", flagStarredCSVDescriptionConstant)
	command.Flags().String(flagReportNameConstant, "", flagReportDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errUnexpectedArguments
	}

	configuration := builder.resolveConfiguration()
	configuration = applyFlagOverrides(command, configuration)
	configuration = configuration.sanitize()
	if len(configuration.Account) == 0 {
		return errAccountRequired
	}

	logger := builder.resolveLogger()
	ownedCSVPath, starredCSVPath, reportPath := configuration.resolvePaths()

	ownedRows := builder.loadDataset(logger, ownedCSVPath)
	starredRows := builder.loadDataset(logger, starredCSVPath)

	documentBuilder := NewBuilder(BuilderOptions{
		OwnedTableLimit:   configuration.ReportOwnedLimit,
		StarredTableLimit: configuration.ReportStarredLimit,
	})
	documentContent := documentBuilder.Build(BuildInputs{
		Account:     configuration.Account,
		OwnedRows:   ownedRows,
		StarredRows: starredRows,
	})

	if writeError := writeDocument(reportPath, documentContent); writeError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, writeError)
	}

	command.Printf(completionMessageTemplateConstant, reportPath)
	return nil
}

// loadDataset reads a CSV export, returning nil when the file is absent so the
// corresponding report section is omitted rather than failing the run.
func (builder *CommandBuilder) loadDataset(logger *zap.Logger, path string) []Row {
	if _, statError := os.Stat(path); statError != nil {
		logger.Warn(datasetMissingLogMessageConstant, zap.String(logFieldDatasetPathConstant, path))
		return nil
	}
	rows, readError := ReadCSV(path)
	if readError != nil {
		logger.Warn(datasetMissingLogMessageConstant, zap.String(logFieldDatasetPathConstant, path), zap.Error(readError))
		return nil
	}
	if rows == nil {
		rows = []Row{}
	}
	return rows
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

func applyFlagOverrides(command *cobra.Command, configuration CommandConfiguration) CommandConfiguration {
	flags := command.Flags()
	if flags.Changed(flagAccountNameConstant) {
		configuration.Account, _ = flags.GetString(flagAccountNameConstant)
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
	return configuration
}

func writeDocument(path string, content string) error {
	parentDirectory := filepath.Dir(path)
	if parentDirectory != "." && parentDirectory != "" {
		if directoryError := os.MkdirAll(parentDirectory, reportDirectoryPermissionsConstant); directoryError != nil {
			return directoryError
		}
	}
	return os.WriteFile(path, []byte(content), reportFilePermissionsConstant)
}

package inventory

import (
	"path/filepath"
	"strings"
)

const (
	defaultOutputBaseDirectoryConstant   = "docs"
	defaultOwnedCSVFileNameConstant      = "repos.csv"
	defaultStarredCSVFileNameConstant    = "starred_repos.csv"
	defaultReportFileNameConstant        = "README.md"
	configurationKeyUsernameConstant     = "username"
	configurationKeyLimitConstant        = "limit"
	configurationKeyOutputBaseConstant   = "output_base"
	configurationKeyConcurrencyConstant  = "enrichment_concurrency"
	configurationKeyOwnedLimitConstant   = "report_owned_limit"
	configurationKeyStarredLimitConstant = "report_starred_limit"
	configurationKeySeparatorConstant    = "."
	defaultReportOwnedLimitConstant      = 30
	defaultReportStarredLimitConstant    = 25
)

// CommandConfiguration captures configuration values for the inventory command.
type CommandConfiguration struct {
	Username              string `mapstructure:"username"`
	Limit                 int    `mapstructure:"limit"`
	OutputBase            string `mapstructure:"output_base"`
	OwnedCSVPath          string `mapstructure:"owned_csv"`
	StarredCSVPath        string `mapstructure:"starred_csv"`
	ReportPath            string `mapstructure:"report"`
	EnrichmentConcurrency int    `mapstructure:"enrichment_concurrency"`
	ReportOwnedLimit      int    `mapstructure:"report_owned_limit"`
	ReportStarredLimit    int    `mapstructure:"report_starred_limit"`
}

// DefaultConfigurationValues exposes baseline configuration values keyed under the supplied prefix.
func DefaultConfigurationValues(configurationPrefix string) map[string]any {
	return map[string]any{
		configurationPrefix + configurationKeySeparatorConstant + configurationKeyUsernameConstant:     "",
		configurationPrefix + configurationKeySeparatorConstant + configurationKeyLimitConstant:        0,
		configurationPrefix + configurationKeySeparatorConstant + configurationKeyOutputBaseConstant:   defaultOutputBaseDirectoryConstant,
		configurationPrefix + configurationKeySeparatorConstant + configurationKeyConcurrencyConstant:  defaultEnrichmentConcurrencyConstant,
		configurationPrefix + configurationKeySeparatorConstant + configurationKeyOwnedLimitConstant:   defaultReportOwnedLimitConstant,
		configurationPrefix + configurationKeySeparatorConstant + configurationKeyStarredLimitConstant: defaultReportStarredLimitConstant,
	}
}

// sanitize trims string values and backfills defaults for unset numeric settings.
func (configuration CommandConfiguration) sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.Username = strings.TrimSpace(configuration.Username)
	sanitized.OutputBase = strings.TrimSpace(configuration.OutputBase)
	sanitized.OwnedCSVPath = strings.TrimSpace(configuration.OwnedCSVPath)
	sanitized.StarredCSVPath = strings.TrimSpace(configuration.StarredCSVPath)
	sanitized.ReportPath = strings.TrimSpace(configuration.ReportPath)
	if len(sanitized.OutputBase) == 0 {
		sanitized.OutputBase = defaultOutputBaseDirectoryConstant
	}
	if sanitized.EnrichmentConcurrency <= 0 {
		sanitized.EnrichmentConcurrency = defaultEnrichmentConcurrencyConstant
	}
	if sanitized.ReportOwnedLimit <= 0 {
		sanitized.ReportOwnedLimit = defaultReportOwnedLimitConstant
	}
	if sanitized.ReportStarredLimit <= 0 {
		sanitized.ReportStarredLimit = defaultReportStarredLimitConstant
	}
	return sanitized
}

// OutputPaths resolves the effective output file locations. Explicit path
// settings win; otherwise files land under <output_base>/<account>/.
func (configuration CommandConfiguration) OutputPaths(account string) (ownedCSVPath string, starredCSVPath string, reportPath string) {
	accountDirectory := filepath.Join(configuration.OutputBase, account)

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

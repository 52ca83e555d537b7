package batch

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	defaultBaseDirectoryConstant            = "docs"
	defaultEnrichmentConcurrencyConstant    = 4
	defaultReportOwnedLimitConstant         = 30
	defaultReportStarredLimitConstant       = 25
	yamlExtensionConstant                   = ".yaml"
	shortYAMLExtensionConstant              = ".yml"
	configFileReadErrorTemplateConstant     = "read batch configuration %s: %w"
	configFileDecodeErrorTemplateConstant   = "decode batch configuration %s: %w"
	configFileNoAccountsMessageTemplate     = "batch configuration %s defines no accounts"
	configFileBlankAccountMessageTemplate   = "batch configuration %s entry %d has a blank account"
	configFileNegativeLimitMessageTemplate  = "batch configuration %s entry %d has a negative limit"
	defaultAccountLangChainConstant         = "langchain-ai"
	defaultAccountLangChainLimitConstant    = 100
	defaultAccountAiderConstant             = "aider-ai"
	defaultAccountDLTHubConstant            = "dlt-hub"
)

// RunConfig describes one account to inventory during a batch run.
type RunConfig struct {
	Account string `mapstructure:"account" yaml:"account" json:"account"`
	Limit   int    `mapstructure:"limit" yaml:"limit" json:"limit"`
}

// runConfigFile mirrors the on-disk batch configuration document.
type runConfigFile struct {
	Configs []RunConfig `yaml:"configs" json:"configs"`
}

// DefaultRunConfigs returns the accounts processed when no configuration file is supplied.
func DefaultRunConfigs() []RunConfig {
	return []RunConfig{
		{Account: defaultAccountLangChainConstant, Limit: defaultAccountLangChainLimitConstant},
		{Account: defaultAccountAiderConstant},
		{Account: defaultAccountDLTHubConstant},
	}
}

// LoadRunConfigFile reads account run configurations from a YAML or JSON file,
// selected by file extension.
func LoadRunConfigFile(path string) ([]RunConfig, error) {
	fileContents, readError := os.ReadFile(path)
	if readError != nil {
		return nil, fmt.Errorf(configFileReadErrorTemplateConstant, path, readError)
	}

	var document runConfigFile
	extension := strings.ToLower(filepath.Ext(path))
	if extension == yamlExtensionConstant || extension == shortYAMLExtensionConstant {
		if decodeError := yaml.Unmarshal(fileContents, &document); decodeError != nil {
			return nil, fmt.Errorf(configFileDecodeErrorTemplateConstant, path, decodeError)
		}
	} else {
		if decodeError := json.Unmarshal(fileContents, &document); decodeError != nil {
			return nil, fmt.Errorf(configFileDecodeErrorTemplateConstant, path, decodeError)
		}
	}

	if len(document.Configs) == 0 {
		return nil, fmt.Errorf(configFileNoAccountsMessageTemplate, path)
	}
	for entryIndex, runConfig := range document.Configs {
		if len(strings.TrimSpace(runConfig.Account)) == 0 {
			return nil, fmt.Errorf(configFileBlankAccountMessageTemplate, path, entryIndex)
		}
		if runConfig.Limit < 0 {
			return nil, fmt.Errorf(configFileNegativeLimitMessageTemplate, path, entryIndex)
		}
	}
	return document.Configs, nil
}

// CommandConfiguration captures configuration values for the batch command.
type CommandConfiguration struct {
	ConfigPath            string      `mapstructure:"config"`
	BaseDirectory         string      `mapstructure:"base_directory"`
	Accounts              []RunConfig `mapstructure:"accounts"`
	EnrichmentConcurrency int         `mapstructure:"enrichment_concurrency"`
	ReportOwnedLimit      int         `mapstructure:"report_owned_limit"`
	ReportStarredLimit    int         `mapstructure:"report_starred_limit"`
}

// DefaultConfigurationValues exposes baseline configuration values keyed under the supplied prefix.
func DefaultConfigurationValues(configurationPrefix string) map[string]any {
	return map[string]any{
		configurationPrefix + ".base_directory":         defaultBaseDirectoryConstant,
		configurationPrefix + ".enrichment_concurrency": defaultEnrichmentConcurrencyConstant,
		configurationPrefix + ".report_owned_limit":     defaultReportOwnedLimitConstant,
		configurationPrefix + ".report_starred_limit":   defaultReportStarredLimitConstant,
	}
}

func (configuration CommandConfiguration) sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.ConfigPath = strings.TrimSpace(configuration.ConfigPath)
	sanitized.BaseDirectory = strings.TrimSpace(configuration.BaseDirectory)
	if len(sanitized.BaseDirectory) == 0 {
		sanitized.BaseDirectory = defaultBaseDirectoryConstant
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

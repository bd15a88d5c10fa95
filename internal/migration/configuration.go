package migration

import "strings"

// Default configuration values for the migrate command.
const (
	DefaultSpareThresholdConstant = 50
	DefaultLabelColorConstant     = "FFFFFF"
	DefaultAPIBaseURLConstant     = "https://api.github.com"
)

const (
	dryRunConfigKeySuffixConstant         = ".dry_run"
	spareThresholdConfigKeySuffixConstant = ".spare_threshold"
	labelColorConfigKeySuffixConstant     = ".label_color"
	apiBaseURLConfigKeySuffixConstant     = ".api_base_url"
)

// CommandConfiguration captures configuration values for the migrate command.
type CommandConfiguration struct {
	DryRun         bool   `mapstructure:"dry_run"`
	SpareThreshold int    `mapstructure:"spare_threshold"`
	LabelColor     string `mapstructure:"label_color"`
	APIBaseURL     string `mapstructure:"api_base_url"`
}

// DefaultCommandConfiguration provides baseline configuration values for the migrate command.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		DryRun:         false,
		SpareThreshold: DefaultSpareThresholdConstant,
		LabelColor:     DefaultLabelColorConstant,
		APIBaseURL:     DefaultAPIBaseURLConstant,
	}
}

// DefaultConfigurationValues exposes viper defaults keyed beneath the provided prefix.
func DefaultConfigurationValues(configurationKeyPrefix string) map[string]any {
	return map[string]any{
		configurationKeyPrefix + dryRunConfigKeySuffixConstant:         false,
		configurationKeyPrefix + spareThresholdConfigKeySuffixConstant: DefaultSpareThresholdConstant,
		configurationKeyPrefix + labelColorConfigKeySuffixConstant:     DefaultLabelColorConstant,
		configurationKeyPrefix + apiBaseURLConfigKeySuffixConstant:     DefaultAPIBaseURLConstant,
	}
}

// Sanitize trims string values and restores defaults for empty or invalid entries.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration

	sanitized.LabelColor = strings.TrimSpace(configuration.LabelColor)
	if len(sanitized.LabelColor) == 0 {
		sanitized.LabelColor = DefaultLabelColorConstant
	}

	sanitized.APIBaseURL = strings.TrimSpace(configuration.APIBaseURL)
	if len(sanitized.APIBaseURL) == 0 {
		sanitized.APIBaseURL = DefaultAPIBaseURLConstant
	}

	if sanitized.SpareThreshold <= 0 {
		sanitized.SpareThreshold = DefaultSpareThresholdConstant
	}

	return sanitized
}

package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config is the process-wide configuration, sourced from the environment
// once at startup and immutable for the process lifetime.
type Config struct {
	LogLevel string `mapstructure:"LOG_LEVEL"`

	// Idle RDS remediation.
	MinAge            int    `mapstructure:"MIN_AGE"`
	TerminationMethod string `mapstructure:"TERMINATION_METHOD"`

	// Notification channels.
	SNSTopicARN     string `mapstructure:"SNS_TOPIC_ARN"`
	SlackWebhookURL string `mapstructure:"SLACK_WEBHOOK_URL"`

	// S3 versioning opt-out tag key.
	ExcludeTag string `mapstructure:"EXCLUDE_TAG"`

	// Elastic IP opt-out tag pair and dry-run mode.
	ExcludeTagKey   string `mapstructure:"EXCLUDE_TAG_KEY"`
	ExcludeTagValue string `mapstructure:"EXCLUDE_TAG_VALUE"`
	DryRun          bool   `mapstructure:"DRY_RUN"`

	// Cross-account access for the lifecycle remediator.
	CrossAccountRoleName string `mapstructure:"CROSS_ACCOUNT_ROLE_NAME"`

	// Password policy defaults, applied only where the administrator has
	// not already set a value.
	MinPasswordLength       int32 `mapstructure:"MIN_PASSWORD_LENGTH"`
	MaxPasswordAge          int32 `mapstructure:"MAX_PASSWORD_AGE"`
	PasswordReusePrevention int32 `mapstructure:"PASSWORD_REUSE_PREVENTION"`

	// Incomplete multipart upload abort window, in days.
	MPUAbortDays int32 `mapstructure:"MPU_ABORT_DAYS"`

	AccountID string `mapstructure:"ACCOUNT_ID"`

	ServerHost string `mapstructure:"SERVER_HOST"`
	ServerPort string `mapstructure:"SERVER_PORT"`
}

// Load reads the configuration from the environment, falling back to the
// documented defaults.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("MIN_AGE", 14)
	v.SetDefault("TERMINATION_METHOD", "stop")
	v.SetDefault("SNS_TOPIC_ARN", "")
	v.SetDefault("SLACK_WEBHOOK_URL", "")
	v.SetDefault("EXCLUDE_TAG", "DisableVersioning")
	v.SetDefault("EXCLUDE_TAG_KEY", "TrustedAdvisorAutomate")
	v.SetDefault("EXCLUDE_TAG_VALUE", "false")
	v.SetDefault("DRY_RUN", true)
	v.SetDefault("CROSS_ACCOUNT_ROLE_NAME", "CrossAccountS3AccessRole")
	v.SetDefault("MIN_PASSWORD_LENGTH", 12)
	v.SetDefault("MAX_PASSWORD_AGE", 90)
	v.SetDefault("PASSWORD_REUSE_PREVENTION", 12)
	v.SetDefault("MPU_ABORT_DAYS", 7)
	v.SetDefault("ACCOUNT_ID", "")
	v.SetDefault("SERVER_HOST", "")
	v.SetDefault("SERVER_PORT", "")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if cfg.TerminationMethod != "stop" && cfg.TerminationMethod != "delete" {
		return nil, fmt.Errorf("invalid TERMINATION_METHOD %q: must be stop or delete", cfg.TerminationMethod)
	}

	return &cfg, nil
}

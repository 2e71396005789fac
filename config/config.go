// Package config loads Wardkeep's configuration: an INI file for runtime
// wiring (storage backend, AWS settings, log sinks, notification targets)
// and a YAML policy file for registration-time rules (password policy and
// default grants).
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/ini.v1"
)

// Backend selects the storage implementation.
type Backend string

const (
	// BackendMemory keeps all state in process memory.
	BackendMemory Backend = "memory"
	// BackendDynamoDB persists state in AWS DynamoDB tables.
	BackendDynamoDB Backend = "dynamodb"
)

// IsValid returns true if the Backend is a known value.
func (b Backend) IsValid() bool {
	switch b {
	case BackendMemory, BackendDynamoDB:
		return true
	}
	return false
}

// String returns the string representation of the Backend.
func (b Backend) String() string {
	return string(b)
}

// Config is Wardkeep's runtime configuration.
type Config struct {
	// Backend selects the storage implementation.
	Backend Backend

	// Region is the AWS region for the dynamodb backend and log shipping.
	Region string

	// IdentityTable is the DynamoDB table for identities.
	IdentityTable string

	// GrantTable is the DynamoDB table for grants.
	GrantTable string

	// AuditTable is the DynamoDB table for audit records.
	AuditTable string

	// LogPath is where action logs are written as JSON Lines.
	// Empty disables file logging.
	LogPath string

	// SigningKeyID identifies the log signing key.
	SigningKeyID string

	// SigningKeyFile is the path to the HMAC secret key file.
	// Empty disables log signing.
	SigningKeyFile string

	// CloudWatchLogGroup enables CloudWatch log shipping when set.
	CloudWatchLogGroup string

	// CloudWatchLogStream is the stream within CloudWatchLogGroup.
	CloudWatchLogStream string

	// WebhookURL enables webhook notifications when set.
	WebhookURL string

	// SNSTopicARN enables SNS notifications when set.
	SNSTopicARN string

	// PolicyPath is the YAML registration policy file. Empty uses defaults.
	PolicyPath string
}

// DefaultConfigPath returns the default config file location,
// ~/.wardkeep/config.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config"
	}
	return filepath.Join(home, ".wardkeep", "config")
}

// defaults returns the configuration used when keys are absent.
func defaults() *Config {
	return &Config{
		Backend:             BackendMemory,
		Region:              "us-east-1",
		IdentityTable:       "wardkeep-identities",
		GrantTable:          "wardkeep-grants",
		AuditTable:          "wardkeep-audit",
		CloudWatchLogStream: "wardkeep",
	}
}

// Load reads configuration from the INI file at path. A missing file is
// not an error; it yields the defaults.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	file, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}

	core := file.Section("wardkeep")
	if v := core.Key("backend").String(); v != "" {
		cfg.Backend = Backend(v)
	}
	if v := core.Key("policy_path").String(); v != "" {
		cfg.PolicyPath = v
	}

	aws := file.Section("aws")
	if v := aws.Key("region").String(); v != "" {
		cfg.Region = v
	}
	if v := aws.Key("identity_table").String(); v != "" {
		cfg.IdentityTable = v
	}
	if v := aws.Key("grant_table").String(); v != "" {
		cfg.GrantTable = v
	}
	if v := aws.Key("audit_table").String(); v != "" {
		cfg.AuditTable = v
	}

	logging := file.Section("logging")
	cfg.LogPath = logging.Key("path").String()
	cfg.SigningKeyID = logging.Key("signing_key_id").String()
	cfg.SigningKeyFile = logging.Key("signing_key_file").String()
	cfg.CloudWatchLogGroup = logging.Key("cloudwatch_log_group").String()
	if v := logging.Key("cloudwatch_log_stream").String(); v != "" {
		cfg.CloudWatchLogStream = v
	}

	notify := file.Section("notification")
	cfg.WebhookURL = notify.Key("webhook_url").String()
	cfg.SNSTopicARN = notify.Key("sns_topic_arn").String()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if !c.Backend.IsValid() {
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	if c.Backend == BackendDynamoDB {
		if c.IdentityTable == "" || c.GrantTable == "" || c.AuditTable == "" {
			return fmt.Errorf("dynamodb backend requires identity_table, grant_table, and audit_table")
		}
	}
	if c.SigningKeyFile != "" && c.SigningKeyID == "" {
		return fmt.Errorf("signing_key_file requires signing_key_id")
	}
	return nil
}

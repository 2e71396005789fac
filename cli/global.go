// Package cli implements the wardkeep command line interface. Each
// command lives in its own file with a Configure function that registers
// it on the kingpin application and a Command function holding the logic,
// so tests can drive commands directly with injected services.
package cli

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"github.com/AlecAivazis/survey/v2"
	"github.com/alecthomas/kingpin/v2"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/charmbracelet/lipgloss"
	isatty "github.com/mattn/go-isatty"
	"gopkg.in/ini.v1"

	"github.com/wardkeep/wardkeep/audit"
	"github.com/wardkeep/wardkeep/config"
	"github.com/wardkeep/wardkeep/identity"
	"github.com/wardkeep/wardkeep/logging"
	"github.com/wardkeep/wardkeep/notification"
	"github.com/wardkeep/wardkeep/permissions"
	"github.com/wardkeep/wardkeep/ratelimit"
	"github.com/wardkeep/wardkeep/wardkeep"
)

// File permission constants for files the CLI writes.
const (
	// SensitiveFileMode is for files that may contain secrets or session state.
	// Owner read/write only.
	SensitiveFileMode fs.FileMode = 0600

	// ConfigDirMode is for the wardkeep configuration directory.
	ConfigDirMode fs.FileMode = 0700
)

// Wardkeep holds global CLI state shared across commands.
type Wardkeep struct {
	Debug      bool
	ConfigPath string

	cfg    *config.Config
	svc    *wardkeep.Service
	awsCfg *aws.Config
}

// ConfigureGlobals registers global flags on the application.
func ConfigureGlobals(app *kingpin.Application) *Wardkeep {
	w := &Wardkeep{}

	app.Flag("debug", "Show debugging output").
		BoolVar(&w.Debug)

	app.Flag("config", "Path to the wardkeep config file").
		Default(config.DefaultConfigPath()).
		Envar("WARDKEEP_CONFIG").
		StringVar(&w.ConfigPath)

	app.PreAction(func(c *kingpin.ParseContext) error {
		if !w.Debug {
			log.SetOutput(io.Discard)
		}
		log.Printf("wardkeep %s", app.Model().Version)
		return nil
	})

	return w
}

// Config loads and caches the configuration file.
func (w *Wardkeep) Config() (*config.Config, error) {
	if w.cfg == nil {
		cfg, err := config.Load(w.ConfigPath)
		if err != nil {
			return nil, err
		}
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		w.cfg = cfg
	}
	return w.cfg, nil
}

// Service builds and caches the composed wardkeep service from config.
func (w *Wardkeep) Service(ctx context.Context) (*wardkeep.Service, error) {
	if w.svc != nil {
		return w.svc, nil
	}

	cfg, err := w.Config()
	if err != nil {
		return nil, err
	}

	limiter, err := ratelimit.NewMemoryRateLimiter(ratelimit.DefaultLoginConfig())
	if err != nil {
		return nil, err
	}
	opts := wardkeep.Options{LoginLimiter: limiter}

	if cfg.Backend == config.BackendDynamoDB {
		awsCfg, err := w.AWSConfig(ctx, cfg.Region)
		if err != nil {
			return nil, err
		}
		opts.IdentityStore = identity.NewDynamoDBStore(awsCfg, cfg.IdentityTable)
		opts.GrantStore = permissions.NewDynamoDBStore(awsCfg, cfg.GrantTable)
		opts.AuditStore = audit.NewDynamoDBStore(awsCfg, cfg.AuditTable)
	}

	policy, err := config.LoadRegistrationPolicy(cfg.PolicyPath)
	if err != nil {
		return nil, err
	}
	passwordPolicy := policy.PasswordPolicy()
	grantPolicy, err := policy.GrantPolicy()
	if err != nil {
		return nil, err
	}
	opts.PasswordPolicy = &passwordPolicy
	opts.GrantPolicy = &grantPolicy

	logger, err := w.buildLogger(ctx, cfg)
	if err != nil {
		return nil, err
	}
	opts.Logger = logger

	opts.Notifier = w.buildNotifier(ctx, cfg)

	w.svc = wardkeep.New(opts)
	return w.svc, nil
}

// AWSConfig loads and caches the AWS SDK configuration for the region.
func (w *Wardkeep) AWSConfig(ctx context.Context, region string) (aws.Config, error) {
	if w.awsCfg == nil {
		cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
		if err != nil {
			return aws.Config{}, fmt.Errorf("load AWS config: %w", err)
		}
		w.awsCfg = &cfg
	}
	return *w.awsCfg, nil
}

// buildLogger assembles the action log sink: a JSON Lines file, optionally
// wrapped in signing, optionally forwarded to CloudWatch Logs.
func (w *Wardkeep) buildLogger(ctx context.Context, cfg *config.Config) (logging.Logger, error) {
	if cfg.LogPath == "" && cfg.CloudWatchLogGroup == "" {
		return nil, nil
	}

	var signConfig *logging.SignatureConfig
	if cfg.SigningKeyFile != "" {
		key, err := os.ReadFile(cfg.SigningKeyFile)
		if err != nil {
			return nil, fmt.Errorf("read signing key: %w", err)
		}
		signConfig = &logging.SignatureConfig{KeyID: cfg.SigningKeyID, SecretKey: key}
	}

	if cfg.CloudWatchLogGroup != "" {
		awsCfg, err := w.AWSConfig(ctx, cfg.Region)
		if err != nil {
			return nil, err
		}
		return logging.NewCloudWatchLogger(awsCfg, &logging.CloudWatchConfig{
			LogGroupName:  cfg.CloudWatchLogGroup,
			LogStreamName: cfg.CloudWatchLogStream,
			SignConfig:    signConfig,
		}), nil
	}

	file, err := os.OpenFile(cfg.LogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, SensitiveFileMode)
	if err != nil {
		return nil, fmt.Errorf("open action log: %w", err)
	}
	if signConfig != nil {
		return logging.NewSignedLogger(file, signConfig), nil
	}
	return logging.NewJSONLogger(file), nil
}

// buildNotifier assembles the permission-change notifier from config.
// Both webhook and SNS targets can be active at once.
func (w *Wardkeep) buildNotifier(ctx context.Context, cfg *config.Config) notification.Notifier {
	var notifiers []notification.Notifier

	if cfg.WebhookURL != "" {
		webhook, err := notification.NewWebhookNotifier(notification.WebhookConfig{URL: cfg.WebhookURL})
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: webhook notifier disabled: %v\n", err)
		} else {
			notifiers = append(notifiers, webhook)
		}
	}

	if cfg.SNSTopicARN != "" {
		awsCfg, err := w.AWSConfig(ctx, cfg.Region)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: SNS notifier disabled: %v\n", err)
		} else {
			notifiers = append(notifiers, notification.NewSNSNotifier(awsCfg, cfg.SNSTopicARN))
		}
	}

	if len(notifiers) == 0 {
		return nil
	}
	return notification.NewMultiNotifier(notifiers...)
}

func isATerminal() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// promptPassword asks for a password on the terminal without echo.
func promptPassword(message string) (string, error) {
	var password string
	prompt := &survey.Password{Message: message}
	if err := survey.AskOne(prompt, &password); err != nil {
		return "", err
	}
	return password, nil
}

// Styles for human-readable output, applied only on a terminal.
var (
	styleSuccess = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	styleFailure = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	styleHeading = lipgloss.NewStyle().Bold(true)
)

// render applies a style when stdout is a terminal, otherwise passes
// the text through unstyled so piped output stays clean.
func render(style lipgloss.Style, text string) string {
	if !isATerminal() {
		return text
	}
	return style.Render(text)
}

// sessionFilePath returns the path of the local session file, which
// remembers the username of the logged-in operator between invocations.
func sessionFilePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".wardkeep", "session"), nil
}

// currentUser returns the locally remembered username, or empty if no
// session file exists.
func currentUser() (string, error) {
	path, err := sessionFilePath()
	if err != nil {
		return "", err
	}
	file, err := ini.Load(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	return file.Section("session").Key("username").String(), nil
}

// setCurrentUser writes the session file.
func setCurrentUser(username string) error {
	path, err := sessionFilePath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), ConfigDirMode); err != nil {
		return err
	}
	file := ini.Empty()
	file.Section("session").Key("username").SetValue(username)
	tmp := path + ".tmp"
	if err := file.SaveTo(tmp); err != nil {
		return err
	}
	if err := os.Chmod(tmp, SensitiveFileMode); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

// clearCurrentUser removes the session file. Missing files are fine.
func clearCurrentUser() error {
	path, err := sessionFilePath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// resolveUsername returns the explicit username if given, falling back to
// the locally remembered session user.
func resolveUsername(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	username, err := currentUser()
	if err != nil {
		return "", err
	}
	if username == "" {
		return "", fmt.Errorf("no user logged in, run 'wardkeep login' or pass --user")
	}
	return username, nil
}

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	// DefaultSourceURL is the upstream accelerated-domains list the built-in
	// generator consumes when no other source is configured.
	DefaultSourceURL = "https://raw.githubusercontent.com/felixonmars/dnsmasq-china-list/master/accelerated-domains.china.conf"

	// DefaultCommitMessage is the commit message template; {date} is replaced
	// with the run date as YYYY-MM-DD.
	DefaultCommitMessage = "auto update whitelist {date}"
)

// SourceConfig selects where the built-in generator reads domains from.
// URL and File are mutually exclusive; File wins when both are set, matching
// the original script's --file mode.
type SourceConfig struct {
	URL  string `mapstructure:"url" validate:"omitempty,url"`
	File string `mapstructure:"file"`
}

// GeneratorConfig optionally delegates artifact generation to an external
// command. When Command is non-empty the built-in source pipeline is skipped
// and the command is expected to produce the artifact at artifactPath.
type GeneratorConfig struct {
	Command []string `mapstructure:"command"`
}

// TargetConfig identifies the repository the whitelist is published into.
type TargetConfig struct {
	URL         string `mapstructure:"url" validate:"required"`
	Branch      string `mapstructure:"branch" validate:"required"`
	FileName    string `mapstructure:"fileName" validate:"required"`
	Username    string `mapstructure:"username"`
	AuthorName  string `mapstructure:"authorName" validate:"required"`
	AuthorEmail string `mapstructure:"authorEmail" validate:"required,email"`

	// Token is the push credential. It is read only from the environment
	// (WHITELIST_TOKEN), never from the config file.
	Token string `mapstructure:"-"`
}

// Config struct
type Config struct {
	Source        SourceConfig    `mapstructure:"source"`
	Generator     GeneratorConfig `mapstructure:"generator"`
	PrewhiteFile  string          `mapstructure:"prewhiteFile"`
	ArtifactPath  string          `mapstructure:"artifactPath" validate:"required"`
	CommitMessage string          `mapstructure:"commitMessage" validate:"required"`
	Target        TargetConfig    `mapstructure:"target"`
	LockDir       string          `mapstructure:"lockDir" validate:"required"`
	FetchTimeout  time.Duration   `mapstructure:"fetchTimeout"`
}

// Redacted returns a copy of the configuration safe for logging: the push
// token is masked.
func (c Config) Redacted() Config {
	redacted := c
	if redacted.Target.Token != "" {
		redacted.Target.Token = "***"
	}
	return redacted
}

// ConfigManager interface
type ConfigManager interface {
	LoadAndValidateConfig() (*Config, error)
}

// configManager implementation
type configManager struct {
	validator      *validator.Validate
	configFilePath string
}

// NewConfigManager creates a new ConfigManager reading from the given file.
// An empty path means defaults plus environment variables only.
func NewConfigManager(completeFilePath string) ConfigManager {
	return &configManager{
		validator:      validator.New(),
		configFilePath: completeFilePath,
	}
}

// LoadAndValidateConfig loads the configuration
func (cm *configManager) LoadAndValidateConfig() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("WHITELIST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if cm.configFilePath != "" {
		v.SetConfigFile(cm.configFilePath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Secret comes from WHITELIST_TOKEN only.
	config.Target.Token = v.GetString("token")

	if err := cm.validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("source.url", DefaultSourceURL)
	v.SetDefault("prewhiteFile", "prewhite.hostrules")
	v.SetDefault("artifactPath", "dist/whitelist.hostrules")
	v.SetDefault("commitMessage", DefaultCommitMessage)
	v.SetDefault("target.branch", "main")
	v.SetDefault("target.fileName", "whitelist.hostrules")
	v.SetDefault("target.authorName", "whitelist-publisher")
	v.SetDefault("target.authorEmail", "whitelist-publisher@users.noreply.github.com")
	v.SetDefault("lockDir", "/tmp")
	v.SetDefault("fetchTimeout", "30s")
}

// validateConfig validates the configuration
func (cm *configManager) validateConfig(config *Config) error {
	if err := cm.validator.Struct(config); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if len(config.Generator.Command) == 0 && config.Source.URL == "" && config.Source.File == "" {
		return fmt.Errorf("invalid configuration: no generator command and no source url or file")
	}
	return nil
}

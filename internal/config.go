package internal

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Config is credctl's runtime configuration. Values come from flags, then
// CREDCTL_* environment variables, then ~/.config/credctl/config.yaml.
type Config struct {
	CredentialsFile string        `mapstructure:"credentials_file"`
	Region          string        `mapstructure:"region"`
	Endpoint        string        `mapstructure:"endpoint"`
	Timeout         time.Duration `mapstructure:"timeout"`
	Log             LogConfig     `mapstructure:"log"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// NewViper returns a viper instance with credctl's defaults, environment
// binding and config search path.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "credctl"))
	}

	v.SetDefault("credentials_file", "")
	v.SetDefault("region", DefaultRegion)
	v.SetDefault("endpoint", "")
	v.SetDefault("timeout", DefaultVerifyTimeout)
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "text")

	v.SetEnvPrefix("CREDCTL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// LoadConfig reads the optional config file and decodes v into a Config.
func LoadConfig(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errors.Wrap(err, "failed to read config file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	path, err := resolveCredentialsFile(cfg.CredentialsFile)
	if err != nil {
		return nil, err
	}
	cfg.CredentialsFile = path

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultVerifyTimeout
	}
	return &cfg, nil
}

// resolveCredentialsFile falls back to AWS_SHARED_CREDENTIALS_FILE and then
// ~/.aws/credentials, the locations the AWS SDKs read.
func resolveCredentialsFile(path string) (string, error) {
	if path == "" {
		path = os.Getenv("AWS_SHARED_CREDENTIALS_FILE")
	}

	home, err := os.UserHomeDir()
	if path == "" {
		if err != nil {
			return "", errors.Wrap(err, "cannot locate home directory")
		}
		return filepath.Join(home, ".aws", "credentials"), nil
	}

	if path == "~" || strings.HasPrefix(path, "~/") {
		if err != nil {
			return "", errors.Wrap(err, "cannot expand ~")
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path, nil
}

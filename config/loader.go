package config

import (
	"os"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g.
// STOREFRONT_API_BASE_URL sets api.base_url.
const EnvPrefix = "STOREFRONT"

// TextCodeInvalidConfig marks load and validation failures.
const TextCodeInvalidConfig = "INVALID_CONFIG"

var defaultConfigFiles = []string{"./config.yml", "./config/config.yml"}

type loaderOptions struct {
	configFile string
	envFile    string
}

// LoaderOption customizes Load.
type LoaderOption func(*loaderOptions)

// WithConfigFile loads path instead of searching for config.yml. A
// missing explicit file is an error.
func WithConfigFile(path string) LoaderOption {
	return func(o *loaderOptions) { o.configFile = path }
}

// WithEnvFile loads path instead of ./.env. Variables already set in the
// environment win over the file.
func WithEnvFile(path string) LoaderOption {
	return func(o *loaderOptions) { o.envFile = path }
}

// Load reads and validates the configuration.
func Load(opts ...LoaderOption) (Config, error) {
	var lo loaderOptions
	for _, opt := range opts {
		opt(&lo)
	}

	if err := loadEnvFile(lo.envFile); err != nil {
		return Config{}, invalid(err, "failed to load env file")
	}

	v := viper.New()
	setDefaults(v)

	configFile := lo.configFile
	if configFile == "" {
		configFile = findFile(defaultConfigFiles)
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, invalid(err, "failed to read config file "+configFile)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, invalid(err, "failed to decode configuration")
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, invalid(err, "invalid configuration")
	}
	return cfg, nil
}

// Default returns the defaults without reading files or the environment.
func Default() Config {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	// defaults always decode
	_ = v.Unmarshal(&cfg)
	return cfg
}

func loadEnvFile(path string) error {
	if path != "" {
		return godotenv.Load(path)
	}
	if exists(".env") {
		return godotenv.Load(".env")
	}
	return nil
}

func findFile(paths []string) string {
	for _, p := range paths {
		if exists(p) {
			return p
		}
	}
	return ""
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func invalid(err error, msg string) error {
	return goerrors.Wrap(err, goerrors.CategoryBadInput, msg).
		WithTextCode(TextCodeInvalidConfig)
}

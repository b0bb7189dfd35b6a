package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	envPrefix = "UNITFORGE"
)

// Config keys.
const (
	cfgKeyDataDir        = "data_dir"
	cfgKeyDefinitionsDir = "definitions_dir"
	cfgKeyJournal        = "journal"
	cfgKeyLogLevel       = "log_level"
	cfgKeyPrecision      = "precision"
)

// Defaults.
const (
	defaultJournal   = true
	defaultLogLevel  = "warn"
	defaultPrecision = -1
)

// configFile holds the structure written to config.yaml.
type configFile struct {
	DataDir        string `yaml:"data_dir,omitempty"`
	DefinitionsDir string `yaml:"definitions_dir,omitempty"`
	Journal        bool   `yaml:"journal"`
	LogLevel       string `yaml:"log_level"`
	Precision      int    `yaml:"precision"`
}

func defaultConfig() configFile {
	return configFile{
		Journal:   defaultJournal,
		LogLevel:  defaultLogLevel,
		Precision: defaultPrecision,
	}
}

// loadConfig reads config.yaml from the resolved config directory using Viper.
// It creates the config directory and a default config.yaml on first run.
// A missing config.yaml is not an error.
func loadConfig(configDir string) (*viper.Viper, error) {
	if err := ensureConfigDir(configDir); err != nil {
		return nil, fmt.Errorf("ensure config dir: %w", err)
	}

	if err := writeConfigIfMissing(filepath.Join(configDir, configFileExt), defaultConfig()); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	v.SetDefault(cfgKeyJournal, defaultJournal)
	v.SetDefault(cfgKeyLogLevel, defaultLogLevel)
	v.SetDefault(cfgKeyPrecision, defaultPrecision)
	v.SetDefault(cfgKeyDataDir, "")
	v.SetDefault(cfgKeyDefinitionsDir, "")
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	// Directory keys are resolved by internal/paths, which gives config.yaml
	// precedence over the environment; only the remaining keys bind env vars.
	v.SetEnvPrefix(envPrefix)
	for _, key := range []string{cfgKeyJournal, cfgKeyLogLevel, cfgKeyPrecision} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	return v, nil
}

// ensureConfigDir creates the config directory if it does not exist.
func ensureConfigDir(configDir string) error {
	return os.MkdirAll(configDir, 0o755)
}

// writeConfigIfMissing creates config.yaml with the given values if the file
// does not exist. If it already exists, the function returns nil (idempotent).
func writeConfigIfMissing(path string, cfg configFile) error {
	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}

	var doc yaml.Node
	if err := doc.Encode(&cfg); err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	doc.HeadComment = "unitforge configuration"
	for i := 0; i+1 < len(doc.Content); i += 2 {
		switch doc.Content[i].Value {
		case cfgKeyJournal:
			doc.Content[i].HeadComment = "Record executed commands in journal.db in the data directory."
		case cfgKeyPrecision:
			doc.Content[i].HeadComment = "Digits after the decimal point; -1 prints the shortest exact form."
		}
	}

	data, err := yaml.Marshal(&doc)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

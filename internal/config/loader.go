package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const envPrefix = "SVCRPT"

// newViper returns a viper instance reading YAML with SVCRPT_ env overrides.
// Nested keys map with "." replaced by "_", so stack.model is
// SVCRPT_STACK_MODEL.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v, Default())
	return v
}

// setDefaults registers every key so unset booleans keep their defaults and
// AutomaticEnv can see keys that are absent from the file.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("source", d.Source)
	v.SetDefault("recursive", d.Recursive)
	v.SetDefault("output", d.Output)
	v.SetDefault("validated_dir", d.ValidatedDir)
	v.SetDefault("report_only", d.ReportOnly)
	v.SetDefault("move", d.Move)
	v.SetDefault("strict", d.Strict)
	v.SetDefault("show_valid", d.ShowValid)
	v.SetDefault("ignored_dirs", d.IgnoredDirs)
	v.SetDefault("extensions", d.Extensions)
	v.SetDefault("log_file", d.LogFile)
	v.SetDefault("workers", d.Workers)
	v.SetDefault("rare_limit", d.RareLimit)
	v.SetDefault("stack.output", d.Stack.Output)
	v.SetDefault("stack.ignored_dirs", d.Stack.IgnoredDirs)
	v.SetDefault("stack.separator", d.Stack.Separator)
	v.SetDefault("stack.output_ext", d.Stack.OutputExt)
	v.SetDefault("stack.titles_file", d.Stack.TitlesFile)
	v.SetDefault("stack.manifest", d.Stack.Manifest)
	v.SetDefault("stack.model", d.Stack.Model)
	v.SetDefault("stack.date_prefix", d.Stack.DatePrefix)
	v.SetDefault("pm.enabled", d.PM.Enabled)
	v.SetDefault("pm.dirs", d.PM.Dirs)
	v.SetDefault("pm.prefixes", d.PM.Prefixes)
}

// Load reads the YAML file at path, merges SVCRPT_* environment overrides,
// applies defaults and validates the result. An empty path loads defaults
// and environment only.
func Load(path string) (*Config, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: reading %q: %w", path, err)
		}
	}
	return unmarshalAndFinalize(v)
}

func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshalling: %w", err)
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// Write marshals cfg to path as YAML, refusing to overwrite an existing file.
func Write(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: encoding: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("config: creating %s: %w", dir, err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("config: writing %s: %w", path, err)
	}
	return f.Close()
}

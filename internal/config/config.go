// Package config loads svcrpt settings from YAML files and SVCRPT_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// DefaultFile is the config file name looked up in the working directory.
const DefaultFile = "svcrpt.yaml"

// Config holds every setting a run can use. cobra flags override it.
type Config struct {
	Source       string   `mapstructure:"source" yaml:"source"`
	Recursive    bool     `mapstructure:"recursive" yaml:"recursive"`
	Output       string   `mapstructure:"output" yaml:"output"`
	ValidatedDir string   `mapstructure:"validated_dir" yaml:"validated_dir"`
	ReportOnly   bool     `mapstructure:"report_only" yaml:"report_only"`
	Move         bool     `mapstructure:"move" yaml:"move"`
	Strict       bool     `mapstructure:"strict" yaml:"strict"`
	ShowValid    bool     `mapstructure:"show_valid" yaml:"show_valid"`
	IgnoredDirs  []string `mapstructure:"ignored_dirs" yaml:"ignored_dirs"`
	Extensions   []string `mapstructure:"extensions" yaml:"extensions"`
	LogFile      string   `mapstructure:"log_file" yaml:"log_file,omitempty"`
	Workers      int      `mapstructure:"workers" yaml:"workers"`
	RareLimit    int      `mapstructure:"rare_limit" yaml:"rare_limit"`

	Stack StackConfig `mapstructure:"stack" yaml:"stack"`
	PM    PMConfig    `mapstructure:"pm" yaml:"pm"`
}

// StackConfig holds settings for the stack command.
type StackConfig struct {
	Output      string   `mapstructure:"output" yaml:"output"`
	IgnoredDirs []string `mapstructure:"ignored_dirs" yaml:"ignored_dirs"`
	Separator   string   `mapstructure:"separator" yaml:"separator"`
	OutputExt   string   `mapstructure:"output_ext" yaml:"output_ext"`
	TitlesFile  string   `mapstructure:"titles_file" yaml:"titles_file"`
	Manifest    string   `mapstructure:"manifest" yaml:"manifest"`
	Model       string   `mapstructure:"model" yaml:"model"`
	DatePrefix  string   `mapstructure:"date_prefix" yaml:"date_prefix"`
}

// PMConfig controls the preventive-maintenance bypass.
type PMConfig struct {
	Enabled  bool     `mapstructure:"enabled" yaml:"enabled"`
	Dirs     []string `mapstructure:"dirs" yaml:"dirs"`
	Prefixes []string `mapstructure:"prefixes" yaml:"prefixes"`
}

// Default returns the settings used when no file or environment overrides exist.
func Default() *Config {
	return &Config{
		Source:       "_in",
		Recursive:    true,
		Output:       "_out",
		ValidatedDir: "validated",
		ReportOnly:   true,
		IgnoredDirs:  []string{"_PM Reports", "_Diagnostic and Assist"},
		Extensions:   []string{".md"},
		Workers:      4,
		RareLimit:    2,
		Stack: StackConfig{
			Output:     "_out/stacks",
			Separator:  "\n\n------\n\n------\n\n",
			OutputExt:  ".md",
			TitlesFile: "__config/readable_titles.csv",
			Model:      "gpt-4",
			DatePrefix: "060102",
		},
		PM: PMConfig{
			Dirs:     []string{"_PM Reports"},
			Prefixes: []string{"PM_", "PM "},
		},
	}
}

// ApplyDefaults fills zero-valued fields that have no meaningful zero.
// Boolean settings are defaulted through viper before unmarshalling instead.
func ApplyDefaults(cfg *Config) {
	d := Default()
	if cfg.Source == "" {
		cfg.Source = d.Source
	}
	if cfg.Output == "" {
		cfg.Output = d.Output
	}
	if cfg.ValidatedDir == "" {
		cfg.ValidatedDir = d.ValidatedDir
	}
	if len(cfg.Extensions) == 0 {
		cfg.Extensions = d.Extensions
	}
	if cfg.Workers <= 0 {
		cfg.Workers = d.Workers
	}
	if cfg.RareLimit <= 0 {
		cfg.RareLimit = d.RareLimit
	}
	if cfg.Stack.Output == "" {
		cfg.Stack.Output = d.Stack.Output
	}
	if cfg.Stack.Separator == "" {
		cfg.Stack.Separator = d.Stack.Separator
	}
	if cfg.Stack.OutputExt == "" {
		cfg.Stack.OutputExt = d.Stack.OutputExt
	}
	if cfg.Stack.Model == "" {
		cfg.Stack.Model = d.Stack.Model
	}
	if cfg.Stack.DatePrefix == "" {
		cfg.Stack.DatePrefix = d.Stack.DatePrefix
	}
	for i, ext := range cfg.Extensions {
		cfg.Extensions[i] = normalizeExt(ext)
	}
	cfg.Stack.OutputExt = normalizeExt(cfg.Stack.OutputExt)
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

var (
	// ErrNoExtensions is returned when every file type is disabled.
	ErrNoExtensions = errors.New("no file extensions enabled")
	// ErrSameDirs is returned when output would be written inside the source tree.
	ErrSameDirs = errors.New("output directory must not be the source directory or inside it")
)

// within reports whether dir is parent or lies below it. Relative paths are
// resolved against the working directory.
func within(parent, dir string) bool {
	p, err := filepath.Abs(parent)
	if err != nil {
		return false
	}
	d, err := filepath.Abs(dir)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(p, d)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// Validate reports settings that would make a run meaningless.
func (c *Config) Validate() error {
	if c.Move && c.ReportOnly {
		return errors.New("move and report_only are mutually exclusive")
	}
	if len(c.Extensions) == 0 {
		return ErrNoExtensions
	}
	for _, ext := range c.Extensions {
		if ext == "" || ext == "." {
			return fmt.Errorf("invalid extension %q", ext)
		}
	}
	if within(c.Source, c.Output) {
		return ErrSameDirs
	}
	switch c.Stack.OutputExt {
	case ".md", ".txt":
	default:
		return fmt.Errorf("unsupported stack output extension %q", c.Stack.OutputExt)
	}
	return nil
}

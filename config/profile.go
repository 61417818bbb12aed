package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

var defaultConfigFilenames = []string{".symtab.yaml", ".symtab.yml", ".symtab.toml"}

type fileConfig struct {
	Profiles map[string]profileSettings `yaml:"profiles" toml:"profiles"`
}

type profileSettings struct {
	LogLevel          *string        `yaml:"log_level" toml:"log_level"`
	LogFile           *string        `yaml:"log_file" toml:"log_file"`
	Verbose           *bool          `yaml:"verbose" toml:"verbose"`
	Silent            *bool          `yaml:"silent" toml:"silent"`
	MaxTextLength     *int           `yaml:"max_length" toml:"max_length"`
	Buckets           *int           `yaml:"buckets" toml:"buckets"`
	ChunkSize         *int           `yaml:"chunk_size" toml:"chunk_size"`
	BlockSize         *int           `yaml:"block_size" toml:"block_size"`
	Alphabetical      *bool          `yaml:"alphabetical" toml:"alphabetical"`
	DiagnosticRate    *float64       `yaml:"diagnostic_rate" toml:"diagnostic_rate"`
	VocabularyPath    *string        `yaml:"vocab" toml:"vocab"`
	DefaultVocabulary *bool          `yaml:"default_vocab" toml:"default_vocab"`
	Format            *string        `yaml:"format" toml:"format"`
	OutputPath        *string        `yaml:"output" toml:"output"`
	JSONPretty        *bool          `yaml:"json_pretty" toml:"json_pretty"`
	Scope             *StringSlice   `yaml:"scope" toml:"scope"`
	Workers           *int           `yaml:"workers" toml:"workers"`
	Texts             *int           `yaml:"texts" toml:"texts"`
	StatsInterval     *time.Duration `yaml:"stats_interval" toml:"stats_interval"`
}

type StringSlice []string

func (s *StringSlice) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var str string
		if err := value.Decode(&str); err != nil {
			return err
		}
		s.set([]string{str})
		return nil
	case yaml.SequenceNode:
		var raw []string
		if err := value.Decode(&raw); err != nil {
			return err
		}
		s.set(raw)
		return nil
	default:
		return fmt.Errorf("unsupported YAML type %s for string slice", value.ShortTag())
	}
}

// UnmarshalTOML accepts either a single string or an array of strings.
func (s *StringSlice) UnmarshalTOML(value interface{}) error {
	switch v := value.(type) {
	case string:
		s.set([]string{v})
		return nil
	case []interface{}:
		raw := make([]string, 0, len(v))
		for _, item := range v {
			str, ok := item.(string)
			if !ok {
				return fmt.Errorf("unsupported TOML value %T in string slice", item)
			}
			raw = append(raw, str)
		}
		s.set(raw)
		return nil
	default:
		return fmt.Errorf("unsupported TOML type %T for string slice", value)
	}
}

func (s *StringSlice) set(raw []string) {
	cleaned := make([]string, 0, len(raw))
	for _, item := range raw {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		cleaned = append(cleaned, item)
	}
	if len(cleaned) == 0 {
		*s = nil
		return
	}
	*s = cleaned
}

func (s *StringSlice) ToSlice() []string {
	if s == nil {
		return nil
	}
	dup := make([]string, len(*s))
	copy(dup, *s)
	return dup
}

// ApplyProfile loads and applies the requested configuration profile to cfg.
// Command-line flag overrides take precedence over profile values.
func ApplyProfile(cfg *Config, cmd *cobra.Command) error {
	path, err := resolveConfigPath(cfg.ConfigPath)
	if err != nil {
		return fmt.Errorf("locating config file: %w", err)
	}

	if path == "" {
		if cfg.Profile != "" {
			return fmt.Errorf("profile %q requested but no %s file was found", cfg.Profile, defaultConfigFilenames[0])
		}
		return nil
	}

	fc, err := loadFileConfig(path)
	if err != nil {
		return err
	}

	if len(fc.Profiles) == 0 {
		if cfg.Profile != "" {
			return fmt.Errorf("profile %q not found in %s", cfg.Profile, path)
		}
		return nil
	}

	profileName := cfg.Profile
	if profileName == "" {
		if _, ok := fc.Profiles["default"]; ok {
			profileName = "default"
		}
	}

	if profileName == "" {
		return nil
	}

	profile, ok := fc.Profiles[profileName]
	if !ok {
		return fmt.Errorf("profile %q not found in %s", profileName, path)
	}

	applyProfileSettings(cfg, &profile, cmd)
	cfg.ConfigPath = path
	return nil
}

// loadFileConfig decodes path as TOML when it has a .toml extension and as
// YAML otherwise.
func loadFileConfig(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	var fc fileConfig
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(string(data), &fc); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
		return &fc, nil
	}
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return &fc, nil
}

func applyProfileSettings(cfg *Config, profile *profileSettings, cmd *cobra.Command) {
	flags := cmd.Flags()

	if profile.LogLevel != nil && !flagChanged(flags, "log-level") {
		cfg.LogLevel = strings.TrimSpace(*profile.LogLevel)
	}
	if profile.LogFile != nil && !flagChanged(flags, "log-file") {
		cfg.LogFile = strings.TrimSpace(*profile.LogFile)
	}
	if profile.Verbose != nil && !flagChanged(flags, "verbose") {
		cfg.Verbose = *profile.Verbose
	}
	if profile.Silent != nil && !flagChanged(flags, "silent") {
		cfg.Silent = *profile.Silent
	}
	if profile.MaxTextLength != nil && !flagChanged(flags, "max-length") {
		cfg.MaxTextLength = *profile.MaxTextLength
	}
	if profile.Buckets != nil && !flagChanged(flags, "buckets") {
		cfg.Buckets = *profile.Buckets
	}
	if profile.ChunkSize != nil && !flagChanged(flags, "chunk-size") {
		cfg.ChunkSize = *profile.ChunkSize
	}
	if profile.BlockSize != nil && !flagChanged(flags, "block-size") {
		cfg.BlockSize = *profile.BlockSize
	}
	if profile.Alphabetical != nil && !flagChanged(flags, "alphabetical") {
		cfg.Alphabetical = *profile.Alphabetical
	}
	if profile.DiagnosticRate != nil && !flagChanged(flags, "diagnostic-rate") {
		cfg.DiagnosticRate = *profile.DiagnosticRate
	}
	if profile.VocabularyPath != nil && !flagChanged(flags, "vocab") {
		cfg.VocabularyPath = strings.TrimSpace(*profile.VocabularyPath)
	}
	if profile.DefaultVocabulary != nil && !flagChanged(flags, "default-vocab") {
		cfg.DefaultVocabulary = *profile.DefaultVocabulary
	}
	if profile.Format != nil && !flagChanged(flags, "format") {
		cfg.Format = Format(strings.TrimSpace(*profile.Format))
	}
	if profile.OutputPath != nil && !flagChanged(flags, "output") {
		cfg.OutputPath = strings.TrimSpace(*profile.OutputPath)
	}
	if profile.JSONPretty != nil && !flagChanged(flags, "json-pretty") {
		cfg.JSONPretty = *profile.JSONPretty
	}
	if profile.Scope != nil && !flagChanged(flags, "scope") {
		cfg.Scope = profile.Scope.ToSlice()
	}
	if profile.Workers != nil && !flagChanged(flags, "workers") {
		cfg.Workers = *profile.Workers
	}
	if profile.Texts != nil && !flagChanged(flags, "texts") {
		cfg.Texts = *profile.Texts
	}
	if profile.StatsInterval != nil && !flagChanged(flags, "stats-interval") {
		cfg.StatsInterval = *profile.StatsInterval
	}
}

func resolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		abs := explicit
		if !filepath.IsAbs(abs) {
			if resolved, err := filepath.Abs(explicit); err == nil {
				abs = resolved
			}
		}
		if _, err := os.Stat(abs); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return "", err
			}
			return "", fmt.Errorf("stat %s: %w", abs, err)
		}
		return abs, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getwd: %w", err)
	}
	dirs := []string{cwd}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, home)
	}
	for _, dir := range dirs {
		for _, name := range defaultConfigFilenames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}
	}

	return "", nil
}

func flagChanged(flags *pflag.FlagSet, name string) bool {
	if flags == nil {
		return false
	}
	flag := flags.Lookup(name)
	if flag == nil {
		return false
	}
	return flag.Changed
}

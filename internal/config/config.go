package config

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/deploymenttheory/go-workflow-importer/internal/utils/errors"
	"github.com/deploymenttheory/go-workflow-importer/internal/utils/fsutil"
	"github.com/deploymenttheory/go-workflow-importer/internal/utils/osutil"
	"github.com/spf13/viper"
)

const (
	// AppName is the application name used for config files and directories
	AppName = "go-workflow-importer"

	// EnvPrefix is the prefix for environment variables
	EnvPrefix = "WORKFLOW_IMPORTER"
)

// DefaultRepositories are the public template packs fetched unless online
// sources are disabled
var DefaultRepositories = []string{
	"abhisiroha/n8n-templates",
	"Marvomatic/n8n-templates",
	"workflowsdiy/n8n-workflows",
	"Danitilahun/n8n-workflow-templates",
}

// DefaultIgnoreDirs are directory names never descended into while scanning
var DefaultIgnoreDirs = []string{
	".git",
	".github",
	"node_modules",
	"__pycache__",
	".venv",
	"venv",
	"dist",
	"build",
	".next",
}

// AppConfig holds the application configuration
type AppConfig struct {
	// Core settings
	Debug     bool   `mapstructure:"debug"`
	LogFormat string `mapstructure:"log_format"`
	LogFile   string `mapstructure:"log_file"`
	TempDir   string `mapstructure:"temp_dir"`
	KeepTemp  bool   `mapstructure:"keep_temp"`
	Report    string `mapstructure:"report"`

	// Destination server settings
	N8N struct {
		URL       string        `mapstructure:"url"`
		APIKey    string        `mapstructure:"api_key"`
		Timeout   time.Duration `mapstructure:"timeout"`
		PageLimit int           `mapstructure:"page_limit"`
		MaxPages  int           `mapstructure:"max_pages"`
	} `mapstructure:"n8n"`

	// Source settings
	Sources struct {
		LocalRoots       []string `mapstructure:"local_roots"`
		LocalArchives    []string `mapstructure:"local_archives"`
		Repositories     []string `mapstructure:"repositories"`
		SkipOnline       bool     `mapstructure:"skip_online"`
		ScanRootArchives bool     `mapstructure:"scan_root_archives"`
		IgnoreDirs       []string `mapstructure:"ignore_dirs"`
	} `mapstructure:"sources"`

	// Archive handling
	Archive struct {
		LargeThreshold int64 `mapstructure:"large_threshold"` // archives above this are streamed
		MaxEntrySize   int64 `mapstructure:"max_entry_size"`  // streamed entries above this are skipped
	} `mapstructure:"archive"`

	// Repository snapshot fetching
	Fetch struct {
		CodeloadURL string        `mapstructure:"codeload_url"`
		Branches    []string      `mapstructure:"branches"`
		Timeout     time.Duration `mapstructure:"timeout"`
	} `mapstructure:"fetch"`

	// Import run settings
	Import struct {
		ProgressEvery int `mapstructure:"progress_every"`
		MaxFailures   int `mapstructure:"max_failures"`
		MaxImports    int `mapstructure:"max_imports"`
	} `mapstructure:"import"`

	Fingerprint struct {
		Algorithm string `mapstructure:"algorithm"`
	} `mapstructure:"fingerprint"`
}

// Global variables
var (
	// Global configuration instance
	Instance AppConfig

	// Status indicators
	ConfigLoaded bool
	ConfigFile   string

	// Ensure thread safety
	initOnce sync.Once
)

// Initialize sets up the global configuration once
func Initialize(cfgFile string) error {
	var err error

	initOnce.Do(func() {
		var cfg *AppConfig
		var used string
		cfg, used, err = load(cfgFile)
		if err != nil {
			return
		}
		Instance = *cfg
		ConfigFile = used
		ConfigLoaded = used != ""
	})

	return err
}

// Load builds a configuration from defaults, an optional file and the environment
func Load(cfgFile string) (*AppConfig, error) {
	cfg, _, err := load(cfgFile)
	return cfg, err
}

func load(cfgFile string) (*AppConfig, string, error) {
	v := viper.New()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(AppName)
		v.SetConfigType("yaml")
		addSearchPaths(v)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	used := ""
	if readErr := v.ReadInConfig(); readErr != nil {
		if _, ok := readErr.(viper.ConfigFileNotFoundError); !ok {
			// Only fail if the config file was found but couldn't be read
			return nil, "", fmt.Errorf("%w: error reading config file: %s", errors.ErrConfigParseError, readErr.Error())
		}
	} else {
		used = v.ConfigFileUsed()
	}

	cfg := &AppConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, "", fmt.Errorf("%w: %s", errors.ErrConfigParseError, err.Error())
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}

	return cfg, used, nil
}

// setDefaults sets default values for configuration
func setDefaults(v *viper.Viper) {
	// Core settings
	v.SetDefault("debug", false)
	v.SetDefault("log_format", "human")
	v.SetDefault("log_file", "")
	v.SetDefault("temp_dir", "")
	v.SetDefault("keep_temp", false)
	v.SetDefault("report", "n8n_import_report.json")

	// Destination defaults
	v.SetDefault("n8n.url", "http://localhost:5678")
	v.SetDefault("n8n.api_key", "")
	v.SetDefault("n8n.timeout", 45*time.Second)
	v.SetDefault("n8n.page_limit", 250)
	v.SetDefault("n8n.max_pages", 300)

	// Source defaults
	v.SetDefault("sources.local_roots", []string{})
	v.SetDefault("sources.local_archives", []string{})
	v.SetDefault("sources.repositories", DefaultRepositories)
	v.SetDefault("sources.skip_online", false)
	v.SetDefault("sources.scan_root_archives", true)
	v.SetDefault("sources.ignore_dirs", DefaultIgnoreDirs)

	// Archive defaults
	v.SetDefault("archive.large_threshold", int64(256<<20))
	v.SetDefault("archive.max_entry_size", int64(10_000_000))

	// Fetch defaults
	v.SetDefault("fetch.codeload_url", "https://codeload.github.com")
	v.SetDefault("fetch.branches", []string{"main", "master"})
	v.SetDefault("fetch.timeout", 120*time.Second)

	// Import defaults
	v.SetDefault("import.progress_every", 100)
	v.SetDefault("import.max_failures", 500)
	v.SetDefault("import.max_imports", 1000)

	v.SetDefault("fingerprint.algorithm", "sha1")
}

// addSearchPaths adds config search paths
func addSearchPaths(v *viper.Viper) {
	// Always check current directory first
	v.AddConfigPath(".")

	// In CI/Pipeline, only use current directory and explicit CI directories
	if osutil.IsRunningInPipeline() {
		v.AddConfigPath("/etc/" + AppName)
		return
	}

	configDir, err := fsutil.GetConfigDir(AppName)
	if err == nil {
		v.AddConfigPath(configDir)
	}
}

// Validate checks values that would otherwise fail late in a run
func (c *AppConfig) Validate() error {
	if c.LogFormat != "json" && c.LogFormat != "human" {
		return fmt.Errorf("%w: log_format must be json or human, got %q", errors.ErrConfigInvalid, c.LogFormat)
	}
	if c.N8N.PageLimit <= 0 {
		return fmt.Errorf("%w: n8n.page_limit must be positive", errors.ErrConfigInvalid)
	}
	if c.N8N.MaxPages <= 0 {
		return fmt.Errorf("%w: n8n.max_pages must be positive", errors.ErrConfigInvalid)
	}
	if c.Import.ProgressEvery <= 0 {
		return fmt.Errorf("%w: import.progress_every must be positive", errors.ErrConfigInvalid)
	}
	if c.Import.MaxFailures < 0 || c.Import.MaxImports < 0 {
		return fmt.Errorf("%w: report caps cannot be negative", errors.ErrConfigInvalid)
	}
	if len(c.Fetch.Branches) == 0 {
		return fmt.Errorf("%w: fetch.branches cannot be empty", errors.ErrConfigInvalid)
	}
	return nil
}

// MergeUnique appends extra values to base, dropping blanks and repeats
// while preserving first-seen order
func MergeUnique(base []string, extra ...[]string) []string {
	seen := make(map[string]bool)
	var merged []string

	add := func(values []string) {
		for _, value := range values {
			value = strings.TrimSpace(value)
			if value == "" || seen[value] {
				continue
			}
			seen[value] = true
			merged = append(merged, value)
		}
	}

	add(base)
	for _, values := range extra {
		add(values)
	}
	return merged
}

package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Default tag patterns. Version tags (and "latest") are protected from
// deletion regardless of age; test tags come from pull-request builds.
const (
	DefaultVersionPattern = `^(v\d+\.\d+\.\d+.*|latest)$`
	DefaultTestPattern    = `^pr-\d+$`

	DefaultTestRetentionDays = 30
	DefaultDevRetentionDays  = 7
)

// Settings holds the full invocation configuration, loaded from environment
// variables (optionally supplemented by a .env file and a YAML policy file).
type Settings struct {
	RegistryType   string `validate:"required,oneof=ghcr harbor"`
	RepositoryName string `validate:"required"`

	VersionPattern string `validate:"required"`
	TestPattern    string `validate:"required"`

	TestRetentionDays int `validate:"min=0"`
	DevRetentionDays  int `validate:"min=0"`

	DryRun bool
	Debug  bool

	// Path of the GitHub Actions step summary file, empty outside Actions.
	StepSummaryPath string

	// GHCR credentials
	GitHubToken string `validate:"required_if=RegistryType ghcr"`
	OrgName     string `validate:"required_if=RegistryType ghcr"`

	// Harbor credentials
	HarborURL         string `validate:"required_if=RegistryType harbor"`
	HarborUsername    string `validate:"required_if=RegistryType harbor"`
	HarborPassword    string `validate:"required_if=RegistryType harbor"`
	HarborProjectName string `validate:"required_if=RegistryType harbor"`

	// Compiled at load time so an invalid pattern fails before any listing.
	VersionRegexp *regexp.Regexp
	TestRegexp    *regexp.Regexp
}

// ConfigError reports missing or unparseable configuration. It is fatal and
// always raised before the registry is contacted.
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %v", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// policyFile is the optional YAML override for patterns and retention days.
type policyFile struct {
	VersionPattern    *string `yaml:"version_pattern"`
	TestPattern       *string `yaml:"test_pattern"`
	TestRetentionDays *int    `yaml:"test_retention_days"`
	DevRetentionDays  *int    `yaml:"dev_retention_days"`
}

// Load builds Settings from the environment. envFile, when non-empty, is a
// .env file loaded first (without overriding variables already set by the
// caller). policyPath, when non-empty, is a YAML file whose values override
// the pattern and retention settings.
func Load(envFile string, policyPath string) (*Settings, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, &ConfigError{Field: "env file", Err: err}
		}
	}

	s := &Settings{
		RegistryType:      strings.ToLower(os.Getenv("REGISTRY_TYPE")),
		RepositoryName:    os.Getenv("REPOSITORY_NAME"),
		VersionPattern:    envOrDefault("VERSION_PATTERN", DefaultVersionPattern),
		TestPattern:       envOrDefault("TEST_PATTERN", DefaultTestPattern),
		StepSummaryPath:   os.Getenv("GITHUB_STEP_SUMMARY"),
		GitHubToken:       os.Getenv("GITHUB_TOKEN"),
		OrgName:           envOrDefault("ORG_NAME", os.Getenv("GITHUB_REPO_OWNER")),
		HarborURL:         os.Getenv("HARBOR_URL"),
		HarborUsername:    os.Getenv("HARBOR_USERNAME"),
		HarborPassword:    os.Getenv("HARBOR_PASSWORD"),
		HarborProjectName: os.Getenv("HARBOR_PROJECT_NAME"),
	}

	var err error
	if s.TestRetentionDays, err = envIntOrDefault("TEST_RETENTION_DAYS", DefaultTestRetentionDays); err != nil {
		return nil, &ConfigError{Field: "TEST_RETENTION_DAYS", Err: err}
	}
	if s.DevRetentionDays, err = envIntOrDefault("DEV_RETENTION_DAYS", DefaultDevRetentionDays); err != nil {
		return nil, &ConfigError{Field: "DEV_RETENTION_DAYS", Err: err}
	}
	if s.DryRun, err = envBoolOrDefault("DRY_RUN", true); err != nil {
		return nil, &ConfigError{Field: "DRY_RUN", Err: err}
	}
	if s.Debug, err = envBoolOrDefault("DEBUG", false); err != nil {
		return nil, &ConfigError{Field: "DEBUG", Err: err}
	}

	if policyPath != "" {
		if err := s.applyPolicyFile(policyPath); err != nil {
			return nil, err
		}
	}

	if err := validator.New().Struct(s); err != nil {
		return nil, &ConfigError{Field: "settings", Err: err}
	}

	if err := s.compilePatterns(); err != nil {
		return nil, err
	}

	return s, nil
}

// applyPolicyFile overrides pattern and retention settings from a YAML file
func (s *Settings) applyPolicyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &ConfigError{Field: "policy file", Err: err}
	}

	var p policyFile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return &ConfigError{Field: "policy file", Err: err}
	}

	if p.VersionPattern != nil {
		s.VersionPattern = *p.VersionPattern
	}
	if p.TestPattern != nil {
		s.TestPattern = *p.TestPattern
	}
	if p.TestRetentionDays != nil {
		s.TestRetentionDays = *p.TestRetentionDays
	}
	if p.DevRetentionDays != nil {
		s.DevRetentionDays = *p.DevRetentionDays
	}

	return nil
}

// compilePatterns compiles the tag patterns as anchored full-string matches.
// Tags only ever match a pattern in its entirety, never as a substring.
func (s *Settings) compilePatterns() error {
	var err error
	if s.VersionRegexp, err = compileAnchored(s.VersionPattern); err != nil {
		return &ConfigError{Field: "VERSION_PATTERN", Err: err}
	}
	if s.TestRegexp, err = compileAnchored(s.TestPattern); err != nil {
		return &ConfigError{Field: "TEST_PATTERN", Err: err}
	}
	return nil
}

func compileAnchored(pattern string) (*regexp.Regexp, error) {
	return regexp.Compile("^(?:" + pattern + ")$")
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOrDefault(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("expected an integer, got %q", v)
	}
	return n, nil
}

func envBoolOrDefault(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	switch strings.ToLower(v) {
	case "true", "1", "yes":
		return true, nil
	case "false", "0", "no":
		return false, nil
	}
	return false, fmt.Errorf("expected a boolean, got %q", v)
}

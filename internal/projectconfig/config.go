// Package projectconfig provides the ProjectConfig struct and loader for
// .nla.yaml project-level configuration files.
package projectconfig

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// FileName is the project configuration file looked up by Load.
const FileName = ".nla.yaml"

// Default values for project configuration. These are the single source of
// truth; New() references them.
const (
	DefaultBaseDir       = "."
	DefaultQuestionsFile = "data/questions/questions.yaml"
	DefaultAnswersDir    = "data/answers"
	DefaultLogsDir       = "logs"
	DefaultLogFile       = "answer.txt"

	DefaultEngine           = EngineOpenRouter
	DefaultModel            = "openai/o4-mini"
	DefaultSection          = "Numerical Linear Algebra"
	DefaultAutoSaveInterval = 1
	DefaultTimeout          = 300

	DefaultBaseURL   = "https://openrouter.ai/api/v1"
	DefaultAPIKeyEnv = "OPENROUTER_API_KEY"
)

// Engines accepted in defaults.engine.
const (
	EngineOpenRouter = "openrouter"
	EngineEcho       = "echo"
)

// EnvBasePath overrides paths.base when set.
const EnvBasePath = "NLA_BASE_PATH"

// ErrMissingAPIKey is returned by RequireAPIKey when the credential variable is unset.
var ErrMissingAPIKey = errors.New("API key not found")

// PathsConfig holds the data and log locations. Relative entries resolve
// against Base, and a relative Base resolves against the directory that
// holds .nla.yaml.
type PathsConfig struct {
	Base      string `yaml:"base,omitempty"`
	Questions string `yaml:"questions,omitempty"`
	Answers   string `yaml:"answers,omitempty"`
	Logs      string `yaml:"logs,omitempty"`
	LogFile   string `yaml:"log_file,omitempty"`
}

// DefaultsConfig holds default run parameters.
type DefaultsConfig struct {
	Engine           string `yaml:"engine,omitempty"`
	Model            string `yaml:"model,omitempty"`
	Section          string `yaml:"section,omitempty"`
	AutoSaveInterval int    `yaml:"auto_save_interval,omitempty"`
	Timeout          int    `yaml:"timeout,omitempty"`
	Verbose          *bool  `yaml:"verbose,omitempty"`
}

// EndpointConfig describes the chat-completion endpoint.
type EndpointConfig struct {
	BaseURL   string `yaml:"base_url,omitempty"`
	APIKeyEnv string `yaml:"api_key_env,omitempty"`
	SiteURL   string `yaml:"site_url,omitempty"`
	SiteName  string `yaml:"site_name,omitempty"`
}

// ProjectConfig is the top-level configuration loaded from .nla.yaml.
type ProjectConfig struct {
	Paths    PathsConfig    `yaml:"paths,omitempty"`
	Defaults DefaultsConfig `yaml:"defaults,omitempty"`
	Endpoint EndpointConfig `yaml:"endpoint,omitempty"`

	// dir is the directory relative paths resolve against.
	dir string
}

// New returns a ProjectConfig with all hard-coded defaults populated.
func New() *ProjectConfig {
	return &ProjectConfig{
		Paths: PathsConfig{
			Base:      DefaultBaseDir,
			Questions: DefaultQuestionsFile,
			Answers:   DefaultAnswersDir,
			Logs:      DefaultLogsDir,
			LogFile:   DefaultLogFile,
		},
		Defaults: DefaultsConfig{
			Engine:           DefaultEngine,
			Model:            DefaultModel,
			Section:          DefaultSection,
			AutoSaveInterval: DefaultAutoSaveInterval,
			Timeout:          DefaultTimeout,
			Verbose:          boolPtr(false),
		},
		Endpoint: EndpointConfig{
			BaseURL:   DefaultBaseURL,
			APIKeyEnv: DefaultAPIKeyEnv,
		},
	}
}

// Load finds .nla.yaml by walking up from startDir (max 10 levels),
// unmarshals it, and fills in missing fields with defaults.
// If no config file is found, returns defaults with a nil error.
// Real I/O errors (e.g. permission denied) are returned to the caller.
//
// Load also reads .env files from the base directory and from startDir
// without overriding variables that are already set, then applies
// NLA_BASE_PATH.
func Load(startDir string) (*ProjectConfig, error) {
	absStart, err := filepath.Abs(startDir)
	if err != nil {
		return nil, fmt.Errorf("resolving path %q: %w", startDir, err)
	}

	cfg := New()
	cfg.dir = absStart

	data, cfgDir, err := findConfigFile(absStart)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// no file found → defaults
	case err != nil:
		return nil, fmt.Errorf("loading %s: %w", FileName, err)
	default:
		var fileCfg ProjectConfig
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", FileName, err)
		}
		mergeConfig(cfg, &fileCfg)
		cfg.dir = cfgDir
	}

	if err := loadDotEnv(cfg.BasePath(), absStart); err != nil {
		return nil, err
	}
	if base := os.Getenv(EnvBasePath); base != "" {
		cfg.Paths.Base = base
	}
	return cfg, nil
}

// findConfigFile walks up from dir looking for .nla.yaml (max 10 levels).
// Returns os.ErrNotExist if no config file is found.
func findConfigFile(dir string) ([]byte, string, error) {
	for i := 0; i < 10; i++ {
		p := filepath.Join(dir, FileName)
		data, err := os.ReadFile(p)
		if err == nil {
			return data, dir, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, "", fmt.Errorf("reading %q: %w", p, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break // reached filesystem root
		}
		dir = parent
	}
	return nil, "", os.ErrNotExist
}

// mergeConfig overlays non-zero values from src onto dst.
func mergeConfig(dst, src *ProjectConfig) {
	// Paths
	if src.Paths.Base != "" {
		dst.Paths.Base = src.Paths.Base
	}
	if src.Paths.Questions != "" {
		dst.Paths.Questions = src.Paths.Questions
	}
	if src.Paths.Answers != "" {
		dst.Paths.Answers = src.Paths.Answers
	}
	if src.Paths.Logs != "" {
		dst.Paths.Logs = src.Paths.Logs
	}
	if src.Paths.LogFile != "" {
		dst.Paths.LogFile = src.Paths.LogFile
	}

	// Defaults
	if src.Defaults.Engine != "" {
		dst.Defaults.Engine = src.Defaults.Engine
	}
	if src.Defaults.Model != "" {
		dst.Defaults.Model = src.Defaults.Model
	}
	if src.Defaults.Section != "" {
		dst.Defaults.Section = src.Defaults.Section
	}
	if src.Defaults.AutoSaveInterval != 0 {
		dst.Defaults.AutoSaveInterval = src.Defaults.AutoSaveInterval
	}
	if src.Defaults.Timeout != 0 {
		dst.Defaults.Timeout = src.Defaults.Timeout
	}
	if src.Defaults.Verbose != nil {
		dst.Defaults.Verbose = src.Defaults.Verbose
	}

	// Endpoint
	if src.Endpoint.BaseURL != "" {
		dst.Endpoint.BaseURL = src.Endpoint.BaseURL
	}
	if src.Endpoint.APIKeyEnv != "" {
		dst.Endpoint.APIKeyEnv = src.Endpoint.APIKeyEnv
	}
	if src.Endpoint.SiteURL != "" {
		dst.Endpoint.SiteURL = src.Endpoint.SiteURL
	}
	if src.Endpoint.SiteName != "" {
		dst.Endpoint.SiteName = src.Endpoint.SiteName
	}
}

// Validate reports settings that cannot drive a run.
func (c *ProjectConfig) Validate() error {
	switch c.Defaults.Engine {
	case EngineOpenRouter, EngineEcho:
	default:
		return fmt.Errorf("unknown engine %q (want %s or %s)", c.Defaults.Engine, EngineOpenRouter, EngineEcho)
	}
	if c.Defaults.AutoSaveInterval < 1 {
		return fmt.Errorf("auto_save_interval must be at least 1, got %d", c.Defaults.AutoSaveInterval)
	}
	if c.Defaults.Timeout < 1 {
		return fmt.Errorf("timeout must be a positive number of seconds, got %d", c.Defaults.Timeout)
	}
	return nil
}

// BasePath returns the absolute base directory.
func (c *ProjectConfig) BasePath() string {
	base := c.Paths.Base
	if base == "" {
		base = DefaultBaseDir
	}
	if filepath.IsAbs(base) {
		return filepath.Clean(base)
	}
	dir := c.dir
	if dir == "" {
		dir, _ = os.Getwd()
	}
	return filepath.Join(dir, base)
}

// QuestionsPath returns the input questions file.
func (c *ProjectConfig) QuestionsPath() string {
	return c.resolve(c.Paths.Questions)
}

// AnswersPath returns the output file for model, named after the last
// segment of the model identifier (openai/o4-mini → o4-mini.yaml).
func (c *ProjectConfig) AnswersPath(model string) string {
	return filepath.Join(c.resolve(c.Paths.Answers), ModelFileStem(model)+".yaml")
}

// LogPath returns the activity log file.
func (c *ProjectConfig) LogPath() string {
	return filepath.Join(c.resolve(c.Paths.Logs), c.Paths.LogFile)
}

// Timeout returns the per-request timeout.
func (c *ProjectConfig) Timeout() time.Duration {
	return time.Duration(c.Defaults.Timeout) * time.Second
}

// APIKey returns the credential from the configured environment variable.
func (c *ProjectConfig) APIKey() string {
	return strings.TrimSpace(os.Getenv(c.Endpoint.APIKeyEnv))
}

// RequireAPIKey returns the credential or ErrMissingAPIKey.
func (c *ProjectConfig) RequireAPIKey() (string, error) {
	key := c.APIKey()
	if key == "" {
		return "", fmt.Errorf("%w: set %s in the environment or a .env file", ErrMissingAPIKey, c.Endpoint.APIKeyEnv)
	}
	return key, nil
}

// Marshal renders the configuration as .nla.yaml content.
func (c *ProjectConfig) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

func (c *ProjectConfig) resolve(p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(c.BasePath(), p)
}

// ModelFileStem turns a model identifier into a file name stem.
func ModelFileStem(model string) string {
	stem := path.Base(strings.TrimSpace(model))
	stem = strings.NewReplacer(":", "-", "\\", "-", " ", "-").Replace(stem)
	if stem == "" || stem == "." || stem == "/" {
		return "answers"
	}
	return stem
}

func boolPtr(b bool) *bool {
	return &b
}

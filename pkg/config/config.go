package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// Admission policy names accepted by column_admission_policy.
const (
	PolicyMarkerSubstring  = "marker-substring"
	PolicyBlacklistPattern = "blacklist-pattern"
)

// Config holds all configuration for survey-engine.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values. Secrets (the LLM API key)
// must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8090"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// LLM backend configuration. The endpoint and model differ between
	// deployments; the wire contract (OpenAI chat completions) does not.
	LLM LLMConfig `yaml:"llm"`

	// Analysis pipeline configuration
	Analysis AnalysisConfig `yaml:"analysis"`
}

// LLMConfig holds the chat-completions backend settings.
type LLMConfig struct {
	APIURL      string  `yaml:"api_url" env:"LLM_API_URL" env-default:"https://api.openai.com/v1"`
	ModelName   string  `yaml:"model_name" env:"LLM_MODEL_NAME" env-default:"gpt-4o-mini"`
	APIKey      string  `yaml:"-" env:"LLM_API_KEY"` // Secret - not in YAML
	Temperature float64 `yaml:"temperature" env:"LLM_TEMPERATURE" env-default:"0.3"`
}

// AnalysisConfig holds the column-selection and batching knobs.
type AnalysisConfig struct {
	// BatchSize is how many rows go into one narrative-analysis request.
	// This is the only mechanism keeping individual requests under the
	// backend's context ceiling.
	BatchSize int `yaml:"batch_size" env:"ANALYSIS_BATCH_SIZE" env-default:"300"`

	// UniqueValueThreshold is the minimum count of distinct normalized
	// answers a column needs to be worth analyzing.
	UniqueValueThreshold int `yaml:"unique_value_threshold" env:"ANALYSIS_UNIQUE_VALUE_THRESHOLD" env-default:"10"`

	// ColumnAdmissionPolicy selects how candidate columns are admitted:
	// "marker-substring" keeps only columns whose name contains
	// MarkerSubstring; "blacklist-pattern" drops columns whose name matches
	// one of BlacklistPatternsStr.
	ColumnAdmissionPolicy string `yaml:"column_admission_policy" env:"ANALYSIS_COLUMN_ADMISSION_POLICY" env-default:"marker-substring"`

	// MarkerSubstring is the case-insensitive marker for the
	// marker-substring policy.
	MarkerSubstring string `yaml:"marker_substring" env:"ANALYSIS_MARKER_SUBSTRING" env-default:"text"`

	// BlacklistPatternsStr is a comma-separated list of case-insensitive
	// name fragments for the blacklist-pattern policy.
	BlacklistPatternsStr string `yaml:"blacklist_patterns" env:"ANALYSIS_BLACKLIST_PATTERNS" env-default:"choice,score,rating,id,date"`

	// IdentityColumnsStr optionally names the respondent identity columns,
	// comma separated. When empty the first IdentityColumnCount header
	// columns are used, matching the original positional behavior.
	IdentityColumnsStr string `yaml:"identity_columns" env:"ANALYSIS_IDENTITY_COLUMNS" env-default:""`

	// IdentityColumnCount is how many leading columns hold respondent
	// identity when IdentityColumnsStr is empty.
	IdentityColumnCount int `yaml:"identity_column_count" env:"ANALYSIS_IDENTITY_COLUMN_COUNT" env-default:"3"`

	// NoAnswerSentinel is the literal value treated as an empty answer.
	NoAnswerSentinel string `yaml:"no_answer_sentinel" env:"ANALYSIS_NO_ANSWER_SENTINEL" env-default:"no answer"`

	// ProgressRowInterval is how often (in rows) the classifier emits a
	// progress update.
	ProgressRowInterval int `yaml:"progress_row_interval" env:"ANALYSIS_PROGRESS_ROW_INTERVAL" env-default:"5"`

	// Parsed forms of the comma-separated fields (not from config file).
	BlacklistPatterns []string `yaml:"-"`
	IdentityColumns   []string `yaml:"-"`
}

// Load reads configuration from config.yaml with environment variable
// overrides. The version parameter is injected at build time. When no
// config.yaml exists, environment variables and defaults alone apply.
func Load(version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if _, err := os.Stat("config.yaml"); err == nil {
		if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
			return nil, fmt.Errorf("failed to read config.yaml: %w", err)
		}
	} else {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	}

	cfg.Analysis.parseListFields()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks the analysis knobs. Called by Load; exported so tests and
// scripts building a Config by hand can reuse it.
func (c *Config) Validate() error {
	a := &c.Analysis
	if a.BatchSize < 1 {
		return fmt.Errorf("batch_size must be >= 1, got %d", a.BatchSize)
	}
	if a.UniqueValueThreshold < 1 {
		return fmt.Errorf("unique_value_threshold must be >= 1, got %d", a.UniqueValueThreshold)
	}
	if a.IdentityColumnCount < 0 {
		return fmt.Errorf("identity_column_count must be >= 0, got %d", a.IdentityColumnCount)
	}
	if a.ProgressRowInterval < 1 {
		return fmt.Errorf("progress_row_interval must be >= 1, got %d", a.ProgressRowInterval)
	}
	switch a.ColumnAdmissionPolicy {
	case PolicyMarkerSubstring, PolicyBlacklistPattern:
	default:
		return fmt.Errorf("unknown column_admission_policy %q", a.ColumnAdmissionPolicy)
	}
	if a.ColumnAdmissionPolicy == PolicyMarkerSubstring && a.MarkerSubstring == "" {
		return fmt.Errorf("marker_substring must be set for the marker-substring policy")
	}
	return nil
}

// parseListFields splits the comma-separated fields into slices.
func (a *AnalysisConfig) parseListFields() {
	a.BlacklistPatterns = splitTrimmed(a.BlacklistPatternsStr)
	a.IdentityColumns = splitTrimmed(a.IdentityColumnsStr)
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. LOGBOT_PORT.
const EnvPrefix = "LOGBOT"

type Config struct {
	// Server
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	Environment string `mapstructure:"environment"`
	APIPrefix   string `mapstructure:"api_prefix"`
	LogLevel    string `mapstructure:"log_level"`
	LogPretty   bool   `mapstructure:"log_pretty"`

	// CORS
	CORSOrigins []string `mapstructure:"cors_origins"`

	// Auth
	APIKeyHeader string   `mapstructure:"api_key_header"`
	APIKeys      []string `mapstructure:"api_keys"`
	EnableAuth   bool     `mapstructure:"enable_auth"`

	// Rate Limiting
	RateLimitPerMinute int `mapstructure:"rate_limit_per_minute"`

	// Chat
	TurnTimeout        time.Duration `mapstructure:"turn_timeout"`
	SummaryCutoff      int           `mapstructure:"summary_cutoff"`
	SummaryPlaceholder string        `mapstructure:"summary_placeholder"`

	// LLM: "anthropic" or "groq"
	LLMProvider        string        `mapstructure:"llm_provider"`
	LLMTimeout         time.Duration `mapstructure:"llm_timeout"`
	AnthropicAPIKey    string        `mapstructure:"anthropic_api_key"`
	AnthropicBaseURL   string        `mapstructure:"anthropic_base_url"` // override for a proxy
	AnthropicModel     string        `mapstructure:"anthropic_model"`
	AnthropicMaxTokens int           `mapstructure:"anthropic_max_tokens"`
	GroqAPIKey         string        `mapstructure:"groq_api_key"`
	GroqBaseURL        string        `mapstructure:"groq_base_url"`
	GroqModel          string        `mapstructure:"groq_model"`

	// Relevance
	RelevanceStrategy  string `mapstructure:"relevance_strategy"`
	EmbeddingProvider  string `mapstructure:"embedding_provider"` // onnx, hf or none
	EmbeddingCacheSize int    `mapstructure:"embedding_cache_size"`
	ONNXModelPath      string `mapstructure:"onnx_model_path"`
	ONNXVocabPath      string `mapstructure:"onnx_vocab_path"`
	ONNXLibraryPath    string `mapstructure:"onnx_library_path"`
	ONNXThreads        int    `mapstructure:"onnx_threads"`
	HFAPIToken         string `mapstructure:"hf_api_token"`
	HFBaseURL          string `mapstructure:"hf_base_url"`
	HFEmbeddingModel   string `mapstructure:"hf_embedding_model"`
	HFZeroShotModel    string `mapstructure:"hf_zeroshot_model"`

	// Log store
	StoreDriver     string `mapstructure:"store_driver"`
	SQLitePath      string `mapstructure:"sqlite_path"`
	SQLiteReadOnly  bool   `mapstructure:"sqlite_read_only"`
	PostgresDSN     string `mapstructure:"postgres_dsn"`
	PostgresMaxOpen int    `mapstructure:"postgres_max_open"`

	// BigQuery
	GCPProjectID                 string        `mapstructure:"gcp_project_id"`
	BigQueryDataset              string        `mapstructure:"bigquery_dataset"`
	GoogleApplicationCredentials string        `mapstructure:"google_application_credentials"`
	BigQueryLocation             string        `mapstructure:"bigquery_location"`
	BigQueryTimeout              time.Duration `mapstructure:"bigquery_timeout"`

	// Elasticsearch
	ElasticsearchHost        string `mapstructure:"elasticsearch_host"`
	ElasticsearchPort        int    `mapstructure:"elasticsearch_port"`
	ElasticsearchScheme      string `mapstructure:"elasticsearch_scheme"`
	ElasticsearchUser        string `mapstructure:"elasticsearch_user"`
	ElasticsearchPassword    string `mapstructure:"elasticsearch_password"`
	ElasticsearchVerifyCerts bool   `mapstructure:"elasticsearch_verify_certs"`
	ElasticsearchMaxRetries  int    `mapstructure:"elasticsearch_max_retries"`
	ElasticsearchFetchSize   int    `mapstructure:"elasticsearch_fetch_size"`

	// Security
	MaxQueryBytesProcessed int64    `mapstructure:"max_query_bytes_processed"`
	EnableDataMasking      bool     `mapstructure:"enable_data_masking"`
	EnablePIIDetection     bool     `mapstructure:"enable_pii_detection"`
	SensitiveColumns       []string `mapstructure:"sensitive_columns"`
	PIIKeywords            []string `mapstructure:"pii_keywords"`
	EnableAuditLogging     bool     `mapstructure:"enable_audit_logging"`
	MaxPromptLength        int      `mapstructure:"max_prompt_length"`

	// Telemetry key, optional
	LangSmithAPIKey string `mapstructure:"langsmith_api_key"`
}

// unprefixed env names accepted alongside their LOGBOT_ form
var bareEnv = map[string]string{
	"anthropic_api_key":              "ANTHROPIC_API_KEY",
	"anthropic_base_url":             "ANTHROPIC_BASE_URL",
	"groq_api_key":                   "GROQ_API_KEY",
	"hf_api_token":                   "HF_API_TOKEN",
	"langsmith_api_key":              "LANGSMITH_API_KEY",
	"gcp_project_id":                 "GCP_PROJECT_ID",
	"google_application_credentials": "GOOGLE_APPLICATION_CREDENTIALS",
}

// Load reads defaults, then the file named by LOGBOT_CONFIG (json, yaml or
// toml) if set, then environment overrides. The result is validated.
func Load() (*Config, error) {
	return LoadFile(os.Getenv(EnvPrefix + "_CONFIG"))
}

// LoadFile is Load with an explicit config file path; "" skips the file.
func LoadFile(path string) (*Config, error) {
	cfg, err := Read(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Read is LoadFile without validation, for commands that only touch the
// log store.
func Read(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range bareEnv {
		if err := v.BindEnv(key, EnvPrefix+"_"+strings.ToUpper(key), env); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", env, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.APIKeys = splitList(cfg.APIKeys)
	cfg.CORSOrigins = splitList(cfg.CORSOrigins)
	return &cfg, nil
}

// splitList drops blanks and trims entries coming from comma-separated env
// values.
func splitList(in []string) []string {
	out := in[:0]
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Validate fails fast on settings that would only break at the first
// question.
func (c *Config) Validate() error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}

	switch c.LLMProvider {
	case "anthropic":
		if c.AnthropicAPIKey == "" {
			errs = append(errs, errors.New("ANTHROPIC_API_KEY is required for llm_provider=anthropic"))
		}
	case "groq":
		if c.GroqAPIKey == "" {
			errs = append(errs, errors.New("GROQ_API_KEY is required for llm_provider=groq"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown llm_provider %q", c.LLMProvider))
	}

	switch c.EmbeddingProvider {
	case "none":
	case "hf":
		if c.HFAPIToken == "" {
			errs = append(errs, errors.New("HF_API_TOKEN is required for embedding_provider=hf"))
		}
	case "onnx":
		if c.ONNXModelPath == "" || c.ONNXVocabPath == "" {
			errs = append(errs, errors.New("onnx_model_path and onnx_vocab_path are required for embedding_provider=onnx"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown embedding_provider %q", c.EmbeddingProvider))
	}

	switch c.RelevanceStrategy {
	case "embedding":
		if c.EmbeddingProvider == "none" {
			errs = append(errs, errors.New("relevance_strategy=embedding needs an embedding_provider"))
		}
	case "zeroshot":
		if c.HFAPIToken == "" {
			errs = append(errs, errors.New("HF_API_TOKEN is required for relevance_strategy=zeroshot"))
		}
	case "llm", "keyword":
	default:
		errs = append(errs, fmt.Errorf("unknown relevance_strategy %q", c.RelevanceStrategy))
	}

	switch c.StoreDriver {
	case "sqlite":
		if c.SQLitePath == "" {
			errs = append(errs, errors.New("sqlite_path is required"))
		}
	case "postgres":
		if c.PostgresDSN == "" {
			errs = append(errs, errors.New("postgres_dsn is required for store_driver=postgres"))
		}
	case "bigquery":
		if c.GCPProjectID == "" || c.BigQueryDataset == "" {
			errs = append(errs, errors.New("gcp_project_id and bigquery_dataset are required for store_driver=bigquery"))
		}
	case "elasticsearch":
		if c.ElasticsearchHost == "" {
			errs = append(errs, errors.New("elasticsearch_host is required for store_driver=elasticsearch"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store_driver %q", c.StoreDriver))
	}

	if c.SummaryCutoff <= 0 {
		errs = append(errs, errors.New("summary_cutoff must be positive"))
	}
	if c.TurnTimeout < 0 {
		errs = append(errs, errors.New("turn_timeout must not be negative"))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

package config

import "time"

const (
	DefaultHost        = "0.0.0.0"
	DefaultPort        = 8000
	DefaultEnvironment = "development"
	DefaultAPIPrefix   = "/api/v1"
	DefaultLogLevel    = "info"

	DefaultRateLimitPerMinute = 60
	DefaultTurnTimeout        = 90 * time.Second

	DefaultLLMProvider       = "anthropic"
	DefaultAnthropicMaxToken = 1024
	DefaultLLMTimeout        = 60 * time.Second

	DefaultRelevanceStrategy = "embedding"
	DefaultEmbeddingProvider = "hf"
	DefaultEmbeddingCache    = 4096

	DefaultSummaryCutoff      = 800
	DefaultSummaryPlaceholder = "The data is shown below"

	DefaultStoreDriver = "sqlite"
	DefaultSQLitePath  = "logs.db"

	DefaultBigQueryLocation = "US"
	DefaultBigQueryTimeout  = 60 * time.Second

	DefaultMaxQueryBytesProcessed = 10_000_000_000 // 10GB

	DefaultElasticsearchPort       = 9200
	DefaultElasticsearchScheme     = "http"
	DefaultElasticsearchMaxRetries = 3
	DefaultElasticsearchFetchSize  = 1000

	DefaultMaxPromptLength = 2000
)

var DefaultCORSOrigins = []string{
	"http://localhost:3000",
	"http://localhost:8080",
}

var DefaultSensitiveColumns = []string{
	"email", "phone", "ssn", "social_security_number",
	"credit_card", "password", "secret", "token",
	"api_key", "access_key", "private_key",
}

var DefaultPIIKeywords = []string{
	"password", "ssn", "social security", "credit card",
	"bank account", "pin", "secret", "private key",
	"access token", "api key", "personal data",
}

func setDefaults(v interface{ SetDefault(string, any) }) {
	v.SetDefault("host", DefaultHost)
	v.SetDefault("port", DefaultPort)
	v.SetDefault("environment", DefaultEnvironment)
	v.SetDefault("api_prefix", DefaultAPIPrefix)
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("log_pretty", false)
	v.SetDefault("cors_origins", DefaultCORSOrigins)
	v.SetDefault("api_key_header", "X-API-Key")
	v.SetDefault("api_keys", []string{})
	v.SetDefault("enable_auth", true)
	v.SetDefault("rate_limit_per_minute", DefaultRateLimitPerMinute)
	v.SetDefault("turn_timeout", DefaultTurnTimeout)

	v.SetDefault("llm_provider", DefaultLLMProvider)
	v.SetDefault("llm_timeout", DefaultLLMTimeout)
	v.SetDefault("anthropic_api_key", "")
	v.SetDefault("anthropic_base_url", "")
	v.SetDefault("anthropic_model", "")
	v.SetDefault("anthropic_max_tokens", DefaultAnthropicMaxToken)
	v.SetDefault("groq_api_key", "")
	v.SetDefault("groq_base_url", "")
	v.SetDefault("groq_model", "")

	v.SetDefault("relevance_strategy", DefaultRelevanceStrategy)
	v.SetDefault("embedding_provider", DefaultEmbeddingProvider)
	v.SetDefault("embedding_cache_size", DefaultEmbeddingCache)
	v.SetDefault("onnx_model_path", "")
	v.SetDefault("onnx_vocab_path", "")
	v.SetDefault("onnx_library_path", "")
	v.SetDefault("onnx_threads", 0)
	v.SetDefault("hf_api_token", "")
	v.SetDefault("hf_base_url", "")
	v.SetDefault("hf_embedding_model", "")
	v.SetDefault("hf_zeroshot_model", "")

	v.SetDefault("summary_cutoff", DefaultSummaryCutoff)
	v.SetDefault("summary_placeholder", DefaultSummaryPlaceholder)

	v.SetDefault("store_driver", DefaultStoreDriver)
	v.SetDefault("sqlite_path", DefaultSQLitePath)
	v.SetDefault("sqlite_read_only", false)
	v.SetDefault("postgres_dsn", "")
	v.SetDefault("postgres_max_open", 10)
	v.SetDefault("gcp_project_id", "")
	v.SetDefault("bigquery_dataset", "")
	v.SetDefault("google_application_credentials", "")
	v.SetDefault("bigquery_location", DefaultBigQueryLocation)
	v.SetDefault("bigquery_timeout", DefaultBigQueryTimeout)
	v.SetDefault("elasticsearch_host", "")
	v.SetDefault("elasticsearch_port", DefaultElasticsearchPort)
	v.SetDefault("elasticsearch_scheme", DefaultElasticsearchScheme)
	v.SetDefault("elasticsearch_user", "")
	v.SetDefault("elasticsearch_password", "")
	v.SetDefault("elasticsearch_verify_certs", true)
	v.SetDefault("elasticsearch_max_retries", DefaultElasticsearchMaxRetries)
	v.SetDefault("elasticsearch_fetch_size", DefaultElasticsearchFetchSize)

	v.SetDefault("max_query_bytes_processed", DefaultMaxQueryBytesProcessed)
	v.SetDefault("enable_data_masking", true)
	v.SetDefault("enable_pii_detection", true)
	v.SetDefault("sensitive_columns", DefaultSensitiveColumns)
	v.SetDefault("pii_keywords", DefaultPIIKeywords)
	v.SetDefault("enable_audit_logging", true)
	v.SetDefault("max_prompt_length", DefaultMaxPromptLength)

	v.SetDefault("langsmith_api_key", "")
}

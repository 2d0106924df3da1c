package common

// Environment variable keys
const (
	EnvConfigFile     = "CONFIG_FILE"
	EnvModelPath      = "MODEL_PATH"
	EnvListenPort     = "LISTEN_PORT"
	EnvMetricsPort    = "METRICS_PORT"
	EnvDataPath       = "DATA_PATH"
	EnvLogLevel       = "LOG_LEVEL"
	EnvPrettyLogs     = "PRETTY_LOGS"
	EnvStrictSchema   = "STRICT_SCHEMA"
	EnvCacheSize      = "CACHE_SIZE"
	EnvReadTimeout    = "READ_TIMEOUT"
	EnvWriteTimeout   = "WRITE_TIMEOUT"
	EnvAllowedOrigins = "ALLOWED_ORIGINS"
)

// Configuration defaults
const (
	DefaultModelPath    = "FINAL_mining_model_v2.json"
	DefaultListenPort   = 8501
	DefaultMetricsPort  = 9101
	DefaultLogLevel     = "info"
	DefaultCacheSize    = 256
	DefaultServerURL    = "http://localhost:8501"
	DefaultJournalFile  = "minesite-journal.db"
	DefaultHistoryLimit = 20
)

// Validation constants
const (
	MinPort      = 1024
	MaxPort      = 65535
	MaxCacheSize = 100000
)

// Outcome messages
const (
	OutcomeViable    = "This is a Potential Mining Site!"
	OutcomeNotViable = "This is Not a Potential Mining Site."
	PredictionNote   = "The prediction is based on the model's analysis of key features such as distance from Earth, mineral composition, estimated value (B USD), and sustainability indices. Use this as a guide; further domain analysis may be required."
)

package config

import (
	"errors"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL    string
	SslCertPath    string
	Port           string
	WebDir         string
	JWTSecret      string
	AllowedOrigins []string
	MaxUploadMB    int
	RequestTimeout time.Duration

	AwsAccessKey string
	AwsSecretKey string
	AwsRegion    string
	BucketName   string
	S3Endpoint   string

	SummaryProvider  string // huggingface | gemini | openai
	HFAPIKey         string
	HFModelURL       string
	AIAPIKey         string
	GenModel         string
	EmbedModel       string
	OpenAIAPIKey     string
	OpenAIBaseURL    string
	OpenAIModel      string
	OpenAIEmbedModel string

	StylesFile     string
	ChunkSize      int
	MaxDepth       int
	MaxConcurrency int
	ProviderRPS    float64
	MaxInputChars  int
	MinTextLength  int
	IndexWorkers   int

	LogLevel string
}

// LoadConfig loads the environment variables and return config
func LoadConfig() *Config {

	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		SslCertPath:    getEnv("SSL_CERT_PATH", ""),
		Port:           getEnv("PORT", "8080"),
		WebDir:         getEnv("WEB_DIR", "./web"),
		JWTSecret:      getEnv("JWT_SECRET", ""),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")),
		MaxUploadMB:    getEnvInt("MAX_UPLOAD_MB", 10),
		RequestTimeout: time.Duration(getEnvInt("REQUEST_TIMEOUT_SECONDS", 120)) * time.Second,

		AwsAccessKey: getEnv("AWS_ACCESS_KEY", ""),
		AwsSecretKey: getEnv("AWS_SECRET_KEY", ""),
		AwsRegion:    getEnv("AWS_REGION", "us-east-2"),
		BucketName:   getEnv("BUCKET_NAME", ""),
		S3Endpoint:   getEnv("S3_ENDPOINT", ""),

		SummaryProvider:  strings.ToLower(getEnv("SUMMARY_PROVIDER", "huggingface")),
		HFAPIKey:         getEnv("HF_API_KEY", ""),
		HFModelURL:       getEnv("HF_MODEL_URL", "https://api-inference.huggingface.co/models/facebook/bart-large-cnn"),
		AIAPIKey:         getEnv("GEMINI_API_KEY", ""),
		GenModel:         getEnv("GEN_MODEL", "gemini-1.5-flash"),
		EmbedModel:       getEnv("EMBED_MODEL", "text-embedding-004"),
		OpenAIAPIKey:     getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:    getEnv("OPENAI_BASE_URL", ""),
		OpenAIModel:      getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIEmbedModel: getEnv("OPENAI_EMBED_MODEL", "text-embedding-3-small"),

		StylesFile:     getEnv("STYLES_FILE", ""),
		ChunkSize:      getEnvInt("CHUNK_SIZE", 900),
		MaxDepth:       getEnvInt("MAX_SUMMARY_DEPTH", 3),
		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 4),
		ProviderRPS:    getEnvFloat("PROVIDER_RPS", 0),
		MaxInputChars:  getEnvInt("MAX_INPUT_CHARS", 7000),
		MinTextLength:  getEnvInt("MIN_TEXT_LENGTH", 50),
		IndexWorkers:   getEnvInt("INDEX_WORKERS", 2),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	return cfg
}

// Validate checks the settings the HTTP server cannot start without.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL not set")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET not set")
	}
	if c.MaxUploadMB <= 0 {
		return errors.New("MAX_UPLOAD_MB must be positive")
	}
	return nil
}

// StorageEnabled reports whether uploads should be persisted to object storage.
func (c *Config) StorageEnabled() bool {
	return c.BucketName != "" && c.AwsAccessKey != "" && c.AwsSecretKey != ""
}

// MaxUploadBytes is MaxUploadMB in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

// Helper to read environment variables with a default fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, def int) int {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("env value is not an int, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}

func getEnvFloat(key string, def float64) float64 {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		slog.Warn("env value is not a number, using default", "key", key, "value", v, "default", def)
		return def
	}
	return f
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

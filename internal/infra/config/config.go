package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Env  string
	Port string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	Embedder  EmbedderConfig
	Generator GeneratorConfig
	Retrieval RetrievalConfig
	Ingest    IngestConfig
}

type EmbedderConfig struct {
	URL     string
	Model   string
	Timeout int // seconds
}

type GeneratorConfig struct {
	URL     string
	Model   string
	Timeout int // seconds
}

type RetrievalConfig struct {
	TopN               int
	FinalK             int
	RelevanceThreshold float64
	ThresholdEnabled   bool
	FanOutLimit        int
	PartialPolicy      string
}

type IngestConfig struct {
	ChunkSize       int
	ChunkOverlap    int
	EmbedRatePerSec float64
}

func Load() *Config {
	// Optional .env for local development; real deployments set the
	// environment directly.
	_ = godotenv.Load()

	return &Config{
		Env:        getEnv("ENV", "development"),
		Port:       getEnv("PORT", "9020"),
		DBHost:     getEnv("DB_HOST", "docqa-db"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "docqa_user"),
		DBPassword: getSecret("DB_PASSWORD", "DB_PASSWORD_FILE", "docqa_password"),
		DBName:     getEnv("DB_NAME", "docqa_db"),
		Embedder: EmbedderConfig{
			URL:     getEnv("OLLAMA_URL", "http://ollama:11434"),
			Model:   getEnv("EMBEDDING_MODEL", "embeddinggemma"),
			Timeout: getEnvInt("EMBEDDING_TIMEOUT", 30),
		},
		Generator: GeneratorConfig{
			URL:     getEnv("OLLAMA_URL", "http://ollama:11434"),
			Model:   getEnv("GENERATION_MODEL", "gemma3"),
			Timeout: getEnvInt("GENERATION_TIMEOUT", 120),
		},
		Retrieval: RetrievalConfig{
			TopN:               getEnvInt("RETRIEVAL_TOP_N", 5),
			FinalK:             getEnvInt("RETRIEVAL_FINAL_K", 5),
			RelevanceThreshold: getEnvFloat("RELEVANCE_THRESHOLD", 0.5),
			ThresholdEnabled:   getEnvBool("RELEVANCE_THRESHOLD_ENABLED", false),
			FanOutLimit:        getEnvInt("RETRIEVAL_FAN_OUT_LIMIT", 4),
			PartialPolicy:      getEnv("RETRIEVAL_PARTIAL_POLICY", "fail_fast"),
		},
		Ingest: IngestConfig{
			ChunkSize:       getEnvInt("INGEST_CHUNK_SIZE", 500),
			ChunkOverlap:    getEnvInt("INGEST_CHUNK_OVERLAP", 50),
			EmbedRatePerSec: getEnvFloat("INGEST_EMBED_RATE", 4),
		},
	}
}

// DSN assembles the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "postgres://" + c.DBUser + ":" + c.DBPassword + "@" + c.DBHost + ":" + c.DBPort + "/" + c.DBName
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getSecret(envKey, fileEnvKey, fallback string) string {
	if value, ok := os.LookupEnv(envKey); ok {
		return value
	}

	if filePath, ok := os.LookupEnv(fileEnvKey); ok {
		content, err := os.ReadFile(filePath)
		if err == nil {
			return strings.TrimSpace(string(content))
		}
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}

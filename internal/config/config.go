package config

import (
	"os"
	"strconv"
)

type Config struct {
	APIAddr          string
	Environment      string
	LogFile          string
	UploadDir        string
	MaxUploadBytes   int64
	ChunkSize        int
	ChunkOverlap     int
	TopKChunks       int
	MaxHistory       int
	ContextCharLimit int
	GroqAPIKey       string
	GroqBaseURL      string
	GroqModel        string
	CoreAPIKey       string
	CoreBaseURL      string
	OpenAlexBaseURL  string
	PoliteEmail      string
	FetchTimeoutSecs int
	LLMTimeoutSecs   int
	SessionIdleSecs  int
}

func Load() Config {
	return Config{
		APIAddr:          getenv("RESYNC_API_ADDR", ":5000"),
		Environment:      getenv("RESYNC_ENV", "dev"),
		LogFile:          getenv("RESYNC_LOG_FILE", ""),
		UploadDir:        getenv("RESYNC_UPLOAD_DIR", "uploads/papers"),
		MaxUploadBytes:   getenvInt64("RESYNC_MAX_UPLOAD_BYTES", 32<<20),
		ChunkSize:        getenvInt("RESYNC_CHUNK_SIZE", 4000),
		ChunkOverlap:     getenvInt("RESYNC_CHUNK_OVERLAP", 200),
		TopKChunks:       getenvInt("RESYNC_TOP_K_CHUNKS", 3),
		MaxHistory:       getenvInt("RESYNC_MAX_HISTORY", 10),
		ContextCharLimit: getenvInt("RESYNC_CONTEXT_CHAR_LIMIT", 16000),
		GroqAPIKey:       getenv("GROQ_API_KEY", ""),
		GroqBaseURL:      getenv("RESYNC_GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
		GroqModel:        getenv("RESYNC_GROQ_MODEL", "deepseek-r1-distill-llama-70b"),
		CoreAPIKey:       getenv("CORE_API_KEY", ""),
		CoreBaseURL:      getenv("RESYNC_CORE_BASE_URL", "https://api.core.ac.uk/v3"),
		OpenAlexBaseURL:  getenv("RESYNC_OPENALEX_BASE_URL", "https://api.openalex.org"),
		PoliteEmail:      getenv("EMAIL", "user@example.com"),
		FetchTimeoutSecs: getenvInt("RESYNC_FETCH_TIMEOUT_SECONDS", 30),
		LLMTimeoutSecs:   getenvInt("RESYNC_LLM_TIMEOUT_SECONDS", 60),
		SessionIdleSecs:  getenvInt("RESYNC_SESSION_IDLE_SECONDS", 0),
	}
}

func getenv(k, fallback string) string {
	v := os.Getenv(k)
	if v == "" {
		return fallback
	}
	return v
}

func getenvInt(k string, fallback int) int {
	v := os.Getenv(k)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getenvInt64(k string, fallback int64) int64 {
	v := os.Getenv(k)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds the environment driven configuration for the video service.
type Config struct {
	// Service Configuration
	ServiceName     string        `env:"SERVICE_NAME" envDefault:"vidvault"`
	Environment     string        `env:"ENVIRONMENT" envDefault:"development"`
	HTTPPort        int           `env:"VIDVAULT_PORT" envDefault:"8480"`
	LogLevel        string        `env:"VIDVAULT_LOG_LEVEL" envDefault:"info"`
	EnableTracing   bool          `env:"ENABLE_TRACING" envDefault:"false"`
	OTLPEndpoint    string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:""`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// Database
	DatabaseURL    string        `env:"DATABASE_URL,notEmpty"`
	DBMaxIdleConns int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	DBMaxOpenConns int           `env:"DB_MAX_OPEN_CONNS" envDefault:"15"`
	DBConnLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"30m"`

	// Upload handling
	UploadDir      string `env:"VIDVAULT_UPLOAD_DIR" envDefault:"./data/uploads"`
	ScratchDir     string `env:"VIDVAULT_SCRATCH_DIR" envDefault:"./data/scratch"`
	MaxUploadBytes int64  `env:"VIDVAULT_MAX_UPLOAD_BYTES" envDefault:"2147483648"`

	// Thumbnail storage backend
	StorageBackend      string `env:"VIDVAULT_STORAGE_BACKEND" envDefault:"local"` // Options: "local" or "s3"
	LocalStoragePath    string `env:"VIDVAULT_LOCAL_STORAGE_PATH" envDefault:"./data/media"`
	S3Endpoint          string `env:"VIDVAULT_S3_ENDPOINT"`
	S3Region            string `env:"VIDVAULT_S3_REGION" envDefault:"us-west-2"`
	S3Bucket            string `env:"VIDVAULT_S3_BUCKET"`
	S3AccessKeyID       string `env:"VIDVAULT_S3_ACCESS_KEY_ID"`
	S3SecretKey         string `env:"VIDVAULT_S3_SECRET_ACCESS_KEY"`
	S3UsePathStyle      bool   `env:"VIDVAULT_S3_USE_PATH_STYLE" envDefault:"true"`

	// Media toolkit
	FFmpegPath  string `env:"FFMPEG_PATH" envDefault:"ffmpeg"`
	FFprobePath string `env:"FFPROBE_PATH" envDefault:"ffprobe"`

	// External inference services (OpenAI-compatible)
	InferenceBaseURL string        `env:"INFERENCE_BASE_URL" envDefault:"https://api.groq.com/openai/v1"`
	InferenceAPIKey  string        `env:"INFERENCE_API_KEY"`
	InferenceTimeout time.Duration `env:"INFERENCE_TIMEOUT" envDefault:"60s"`
	TranscribeModel  string        `env:"TRANSCRIBE_MODEL" envDefault:"whisper-large-v3-turbo"`
	VisionModel      string        `env:"VISION_MODEL" envDefault:"meta-llama/llama-4-scout-17b-16e-instruct"`
	TextModel        string        `env:"TEXT_MODEL" envDefault:"llama-3.3-70b-versatile"`

	// Streaming
	StreamChunkBytes int64 `env:"VIDVAULT_STREAM_CHUNK_BYTES" envDefault:"1000000"`

	// Authentication
	JWTSecret string `env:"AUTH_JWT_SECRET,notEmpty"`
}

// Load parses environment variables into Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}

	cfg.S3Bucket = strings.TrimSpace(cfg.S3Bucket)
	cfg.S3AccessKeyID = strings.TrimSpace(cfg.S3AccessKeyID)
	cfg.S3SecretKey = strings.TrimSpace(cfg.S3SecretKey)
	cfg.S3Endpoint = strings.TrimSpace(cfg.S3Endpoint)
	cfg.InferenceBaseURL = strings.TrimRight(strings.TrimSpace(cfg.InferenceBaseURL), "/")

	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 2 * 1024 * 1024 * 1024
	}
	if cfg.StreamChunkBytes <= 0 {
		cfg.StreamChunkBytes = 1_000_000
	}
	if cfg.IsS3Storage() && cfg.S3Bucket == "" {
		return nil, fmt.Errorf("VIDVAULT_S3_BUCKET is required when VIDVAULT_STORAGE_BACKEND is s3")
	}
	return cfg, nil
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// IsLocalStorage returns true if the local storage backend is configured.
func (c *Config) IsLocalStorage() bool {
	backend := strings.ToLower(strings.TrimSpace(c.StorageBackend))
	return backend == "" || backend == "local"
}

// IsS3Storage returns true if the S3 storage backend is configured.
func (c *Config) IsS3Storage() bool {
	return strings.ToLower(strings.TrimSpace(c.StorageBackend)) == "s3"
}

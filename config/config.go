package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
)

const (
	StorageLocal = "local"
	StorageGCS   = "gcs"
)

type Config struct {
	// Inference runner (loads and serves the actual models)
	RunnerURL   string `json:"runner_url"`
	ASRModel    string `json:"asr_model"`
	Device      string `json:"device"`       // "cpu", "cuda"
	ComputeType string `json:"compute_type"` // "float32", "float16", "int8"
	BatchSize   int    `json:"batch_size"`
	ASRProvider string `json:"asr_provider"` // "runner" or "openai"

	// Optional default alignment model variant per process
	AlignVariant string `json:"align_variant"`

	// OpenAI-compatible API (embeddings, optional openai ASR provider)
	APIKey         string `json:"api_key"`
	BaseURL        string `json:"base_url"`
	EmbeddingModel string `json:"embedding_model"`

	// Media storage
	StorageType string `json:"storage_type"` // "local" or "gcs"
	UploadDir   string `json:"upload_dir"`
	GCSBucket   string `json:"gcs_bucket"`

	// Transcript store
	TranscriptDir string `json:"transcript_dir"`
	VectorStore   string `json:"vector_store"` // "memory", "pgvector", "milvus"
	PostgresURL   string `json:"postgres_url"`

	Listen string `json:"listen"`
}

var globalConfig *Config

// LoadConfig reads config.json once, overlays environment variables and
// fills defaults. Subsequent calls return the same instance.
func LoadConfig() (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	config := &Config{}
	if data, err := os.ReadFile("config.json"); err == nil {
		if err := json.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("parse config.json: %w", err)
		}
	}

	applyEnv(config)
	applyDefaults(config)
	globalConfig = config
	return globalConfig, nil
}

func applyEnv(config *Config) {
	if v := os.Getenv("RUNNER_URL"); v != "" {
		config.RunnerURL = v
	}
	if v := os.Getenv("ASR_MODEL"); v != "" {
		config.ASRModel = v
	}
	if v := os.Getenv("DEVICE"); v != "" {
		config.Device = v
	}
	if v := os.Getenv("COMPUTE_TYPE"); v != "" {
		config.ComputeType = v
	}
	if v := os.Getenv("BATCH_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			config.BatchSize = n
		}
	}
	if v := os.Getenv("ASR_PROVIDER"); v != "" {
		config.ASRProvider = v
	}
	if v := os.Getenv("ALIGN_VARIANT"); v != "" {
		config.AlignVariant = v
	}
	if v := os.Getenv("API_KEY"); v != "" {
		config.APIKey = v
	}
	if v := os.Getenv("BASE_URL"); v != "" {
		config.BaseURL = v
	}
	if v := os.Getenv("EMBEDDING_MODEL"); v != "" {
		config.EmbeddingModel = v
	}
	if v := os.Getenv("STORAGE_TYPE"); v != "" {
		config.StorageType = strings.ToLower(strings.TrimSpace(v))
	}
	if v := os.Getenv("UPLOAD_DIR"); v != "" {
		config.UploadDir = v
	}
	if v := os.Getenv("GCS_BUCKET_NAME"); v != "" {
		config.GCSBucket = v
	}
	if v := os.Getenv("TRANSCRIPT_DIR"); v != "" {
		config.TranscriptDir = v
	}
	if v := os.Getenv("STORE"); v != "" {
		config.VectorStore = strings.ToLower(strings.TrimSpace(v))
	}
	if v := os.Getenv("POSTGRES_URL"); v != "" {
		config.PostgresURL = v
	}
	if v := os.Getenv("PORT"); v != "" {
		config.Listen = ":" + v
	}
}

func applyDefaults(config *Config) {
	if config.RunnerURL == "" {
		config.RunnerURL = "http://localhost:9010"
	}
	if config.ASRModel == "" {
		config.ASRModel = "medium"
	}
	if config.Device == "" {
		config.Device = "cpu"
	}
	if config.ComputeType == "" {
		config.ComputeType = "float32"
	}
	if config.BatchSize <= 0 {
		config.BatchSize = 8
	}
	if config.ASRProvider == "" {
		config.ASRProvider = "runner"
	}
	if config.StorageType == "" {
		config.StorageType = StorageLocal
	}
	if config.UploadDir == "" {
		config.UploadDir = "./uploads"
	}
	if config.TranscriptDir == "" {
		config.TranscriptDir = "./transcripts"
	}
	if config.VectorStore == "" {
		config.VectorStore = "memory"
	}
	if config.Listen == "" {
		config.Listen = ":8080"
	}
}

// Validate checks the parts of the configuration that are fatal at
// startup when missing. Backend-specific parameters are only required
// for the selected backend.
func (c *Config) Validate() error {
	var errs []string

	switch c.StorageType {
	case StorageLocal:
		if strings.TrimSpace(c.UploadDir) == "" {
			errs = append(errs, "upload_dir is required for local storage")
		}
	case StorageGCS:
		if strings.TrimSpace(c.GCSBucket) == "" {
			errs = append(errs, "gcs_bucket (GCS_BUCKET_NAME) is required for gcs storage")
		}
	default:
		errs = append(errs, fmt.Sprintf("unknown storage_type %q", c.StorageType))
	}

	if c.ASRProvider != "runner" && c.ASRProvider != "openai" {
		errs = append(errs, fmt.Sprintf("unknown asr_provider %q", c.ASRProvider))
	}
	if c.ASRProvider == "openai" && !c.HasValidAPI() {
		errs = append(errs, "api_key and base_url are required for the openai ASR provider")
	}
	if c.ASRProvider == "runner" && strings.TrimSpace(c.RunnerURL) == "" {
		errs = append(errs, "runner_url is required")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// HasValidAPI reports whether the OpenAI-compatible API is configured.
func (c *Config) HasValidAPI() bool {
	return strings.TrimSpace(c.APIKey) != "" && strings.TrimSpace(c.BaseURL) != ""
}

// Reset drops the cached configuration. Used by tests.
func Reset() {
	globalConfig = nil
}

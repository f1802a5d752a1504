package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where Load looks when no path is given.
const DefaultPath = "config.yaml"

// FileConfig represents configuration loaded from YAML. Environment
// variables override the file for secrets and deploy-specific values.
type FileConfig struct {
	Port     string `yaml:"port"`
	LogLevel string `yaml:"logLevel"`

	// DatabaseURL empty means the in-memory store, used in development
	// and tests.
	DatabaseURL string `yaml:"databaseURL"`

	// RedisAddr empty disables the Redis rate limiter and the Redis
	// render queue; in-process fallbacks take over.
	RedisAddr     string `yaml:"redisAddr"`
	RedisPassword string `yaml:"redisPassword"`

	SessionSecret string `yaml:"sessionSecret"`
	SessionTTL    string `yaml:"sessionTTL"`

	OpenAIAPIKey     string `yaml:"openaiAPIKey"`
	OpenAIBaseURL    string `yaml:"openaiBaseURL"`
	AnthropicAPIKey  string `yaml:"anthropicAPIKey"`
	AnthropicBaseURL string `yaml:"anthropicBaseURL"`
	AITimeout        string `yaml:"aiTimeout"`
	GenerationModel  string `yaml:"generationModel"`

	MinioEndpoint  string `yaml:"minioEndpoint"`
	MinioAccessKey string `yaml:"minioAccessKey"`
	MinioSecretKey string `yaml:"minioSecretKey"`
	MinioBucket    string `yaml:"minioBucket"`
	MinioUseSSL    bool   `yaml:"minioUseSSL"`

	// UploadDir is the local-disk fallback when no MinIO endpoint is set.
	UploadDir      string `yaml:"uploadDir"`
	MaxUploadBytes int64  `yaml:"maxUploadBytes"`

	TrustedProxyCIDRs          []string `yaml:"trustedProxyCidrs"`
	AuthRateLimitPerMinute     int      `yaml:"authRateLimitPerMinute"`
	GenerateRateLimitPerMinute int      `yaml:"generateRateLimitPerMinute"`

	VideoRenderDelay string `yaml:"videoRenderDelay"`
	VideoWorkers     int    `yaml:"videoWorkers"`
}

// Load reads config from path (defaults to config.yaml).
func Load(path string) (FileConfig, error) {
	cfg := FileConfig{}
	if path == "" {
		path = DefaultPath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	// Override with environment variables
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.RedisAddr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.RedisPassword = v
	}
	if v := os.Getenv("SESSION_SECRET"); v != "" {
		cfg.SessionSecret = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.OpenAIAPIKey = v
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		cfg.OpenAIBaseURL = v
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		cfg.AnthropicAPIKey = v
	}
	if v := os.Getenv("ANTHROPIC_BASE_URL"); v != "" {
		cfg.AnthropicBaseURL = v
	}
	if v := os.Getenv("GENERATION_MODEL"); v != "" {
		cfg.GenerationModel = v
	}
	if v := os.Getenv("MINIO_ENDPOINT"); v != "" {
		cfg.MinioEndpoint = v
	}
	if v := os.Getenv("MINIO_ACCESS_KEY"); v != "" {
		cfg.MinioAccessKey = v
	}
	if v := os.Getenv("MINIO_SECRET_KEY"); v != "" {
		cfg.MinioSecretKey = v
	}
	if v := os.Getenv("MINIO_BUCKET"); v != "" {
		cfg.MinioBucket = v
	}
	if v := os.Getenv("MAX_UPLOAD_BYTES"); v != "" {
		if n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
			cfg.MaxUploadBytes = n
		}
	}
	if v := os.Getenv("TRUSTED_PROXY_CIDRS"); v != "" {
		cfg.TrustedProxyCIDRs = splitCSV(v)
	}
	if err := validateConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func validateConfig(cfg FileConfig) error {
	if cfg.Port == "" {
		return errors.New("config: port is required (set in config.yaml)")
	}
	if strings.TrimSpace(cfg.SessionSecret) == "" {
		return errors.New("config: sessionSecret is required (set in config.yaml or SESSION_SECRET)")
	}
	if cfg.GenerationModel == "" {
		return errors.New("config: generationModel is required (set in config.yaml)")
	}
	if cfg.MaxUploadBytes < 0 {
		return errors.New("config: maxUploadBytes must be >= 0")
	}
	if cfg.AuthRateLimitPerMinute < 0 || cfg.GenerateRateLimitPerMinute < 0 {
		return errors.New("config: rate limits must be >= 0")
	}
	if _, err := parseDuration(cfg.SessionTTL); err != nil {
		return fmt.Errorf("config: invalid sessionTTL: %w", err)
	}
	if _, err := parseDuration(cfg.AITimeout); err != nil {
		return fmt.Errorf("config: invalid aiTimeout: %w", err)
	}
	if _, err := parseDuration(cfg.VideoRenderDelay); err != nil {
		return fmt.Errorf("config: invalid videoRenderDelay: %w", err)
	}
	return nil
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}

func parseDuration(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	return time.ParseDuration(raw)
}

// SessionTTLDuration returns the parsed session TTL, zero when unset.
func (c FileConfig) SessionTTLDuration() time.Duration {
	d, _ := parseDuration(c.SessionTTL)
	return d
}

// AITimeoutDuration returns the parsed provider call timeout, zero when unset.
func (c FileConfig) AITimeoutDuration() time.Duration {
	d, _ := parseDuration(c.AITimeout)
	return d
}

// VideoRenderDelayDuration returns the parsed simulated render delay,
// zero when unset.
func (c FileConfig) VideoRenderDelayDuration() time.Duration {
	d, _ := parseDuration(c.VideoRenderDelay)
	return d
}

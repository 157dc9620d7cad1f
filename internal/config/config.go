// Package config loads the judge service's YAML configuration, following
// the teacher's AppConfig shape: one root struct aggregating a section per
// concern, with defaults filled in after parsing.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"codejudge/internal/common/storage"
	"codejudge/internal/model"
	"codejudge/internal/sandbox/engine"
	"codejudge/pkg/utils/logger"
)

const (
	defaultHTTPAddr        = "0.0.0.0:8085"
	defaultReadTimeout     = 5 * time.Second
	defaultWriteTimeout    = 10 * time.Second
	defaultIdleTimeout     = 60 * time.Second
	defaultShutdownTimeout = 10 * time.Second
	defaultBuildBudget     = 60 * time.Second
)

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	IdleTimeout     time.Duration `yaml:"idleTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

// AdmissionConfig holds the in-process ceiling (C5).
type AdmissionConfig struct {
	MaxRequests int `yaml:"maxRequests"`
}

// ExecutionConfig holds the declared-limit bounds the Request Validator
// (C6) enforces, plus the fixed build-phase budget.
type ExecutionConfig struct {
	MinTimeSec    int           `yaml:"minTimeSec"`
	MaxTimeSec    int           `yaml:"maxTimeSec"`
	MinMemoryMB   int           `yaml:"minMemoryMB"`
	MaxMemoryMB   int           `yaml:"maxMemoryMB"`
	BuildBudget   time.Duration `yaml:"buildBudget"`
	WorkspaceRoot string        `yaml:"workspaceRoot"`
}

// SandboxConfig holds sandbox engine settings.
type SandboxConfig struct {
	CgroupRoot           string `yaml:"cgroupRoot"`
	SeccompDir           string `yaml:"seccompDir"`
	HelperPath           string `yaml:"helperPath"`
	StdoutStderrMaxBytes int64  `yaml:"stdoutStderrMaxBytes"`
	EnableSeccomp        bool   `yaml:"enableSeccomp"`
	EnableCgroup         bool   `yaml:"enableCgroup"`
	EnableNamespaces     bool   `yaml:"enableNamespaces"`
}

// LanguageEntry is one language policy row as loaded from YAML.
type LanguageEntry struct {
	Language         model.Language `yaml:"language"`
	DisplayName      string         `yaml:"displayName"`
	SourceFilename   string         `yaml:"sourceFilename"`
	RequiresBuild    bool           `yaml:"requiresBuild"`
	BuildTemplate    string         `yaml:"buildTemplate"`
	RunCommand       string         `yaml:"runCommand"`
	TimeMultiplier   float64        `yaml:"timeMultiplier"`
	MemoryMultiplier float64        `yaml:"memoryMultiplier"`
	Env              []string       `yaml:"env"`
}

// LanguageConfig optionally overrides the built-in policy table (C2). A
// nil/empty Languages slice means: use the built-in defaults.
type LanguageConfig struct {
	Languages []LanguageEntry `yaml:"languages"`
}

// RedisConfig configures the optional distributed admission ceiling.
type RedisConfig struct {
	Addr string `yaml:"addr"`
	Rate int    `yaml:"rate"`
	Burst int   `yaml:"burst"`
	Key  string `yaml:"key"`
}

// KafkaConfig configures the optional audit-event publisher.
type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// AuthConfig configures the optional bearer-token service auth middleware.
type AuthConfig struct {
	Enabled bool   `yaml:"enabled"`
	Secret  string `yaml:"secret"`
}

// RetentionConfig configures the optional artifact-retention upload.
type RetentionConfig struct {
	Enabled bool                `yaml:"enabled"`
	MinIO   storage.MinIOConfig `yaml:"minio"`
}

// AppConfig is the judge service's root configuration.
type AppConfig struct {
	Server    ServerConfig      `yaml:"server"`
	Logger    logger.Config     `yaml:"logger"`
	Admission AdmissionConfig   `yaml:"admission"`
	Execution ExecutionConfig   `yaml:"execution"`
	Sandbox   SandboxConfig     `yaml:"sandbox"`
	Language  LanguageConfig    `yaml:"language"`
	Redis     *RedisConfig      `yaml:"redis,omitempty"`
	Kafka     *KafkaConfig      `yaml:"kafka,omitempty"`
	Auth      *AuthConfig       `yaml:"auth,omitempty"`
	Retention *RetentionConfig  `yaml:"retention,omitempty"`
}

// Load reads and validates the YAML config file at path, applying defaults
// for anything left unset.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file failed: %w", err)
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config file failed: %w", err)
	}
	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = defaultHTTPAddr
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = defaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = defaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = defaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = defaultShutdownTimeout
	}
	if cfg.Admission.MaxRequests <= 0 {
		cfg.Admission.MaxRequests = 8
	}
	if cfg.Execution.BuildBudget == 0 {
		cfg.Execution.BuildBudget = defaultBuildBudget
	}
	if cfg.Execution.WorkspaceRoot == "" {
		cfg.Execution.WorkspaceRoot = "/var/lib/codejudge/workspaces"
	}
	if cfg.Execution.MaxTimeSec == 0 {
		cfg.Execution.MaxTimeSec = 15
	}
	if cfg.Execution.MaxMemoryMB == 0 {
		cfg.Execution.MaxMemoryMB = 512
	}
	if cfg.Redis != nil && cfg.Redis.Rate == 0 {
		cfg.Redis.Rate = cfg.Admission.MaxRequests
	}
	if cfg.Redis != nil && cfg.Redis.Burst == 0 {
		cfg.Redis.Burst = cfg.Admission.MaxRequests
	}
	if cfg.Redis != nil && cfg.Redis.Key == "" {
		cfg.Redis.Key = "codejudge:admission"
	}
}

func validate(cfg *AppConfig) error {
	if cfg.Execution.MinTimeSec > cfg.Execution.MaxTimeSec {
		return fmt.Errorf("execution.minTimeSec must not exceed maxTimeSec")
	}
	if cfg.Execution.MinMemoryMB > cfg.Execution.MaxMemoryMB {
		return fmt.Errorf("execution.minMemoryMB must not exceed maxMemoryMB")
	}
	return nil
}

func (s SandboxConfig) ToEngineConfig() engine.Config {
	return engine.Config{
		CgroupRoot:           s.CgroupRoot,
		SeccompDir:           s.SeccompDir,
		HelperPath:           s.HelperPath,
		StdoutStderrMaxBytes: s.StdoutStderrMaxBytes,
		EnableSeccomp:        s.EnableSeccomp,
		EnableCgroup:         s.EnableCgroup,
		EnableNamespaces:     s.EnableNamespaces,
	}
}

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "VISIONKIT"

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Inference InferenceConfig `mapstructure:"inference"`
	Batch     BatchConfig     `mapstructure:"batch"`
	Grading   GradingConfig   `mapstructure:"grading"`
	Health    HealthConfig    `mapstructure:"health"`
}

type ServerConfig struct {
	Port          string        `mapstructure:"port"`
	Mode          string        `mapstructure:"mode"`
	ReadTimeout   time.Duration `mapstructure:"read_timeout"`
	WriteTimeout  time.Duration `mapstructure:"write_timeout"`
	MaxUploadSize int64         `mapstructure:"max_upload_size"`
}

type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type InferenceConfig struct {
	BaseURL       string        `mapstructure:"base_url"`
	InputSize     int           `mapstructure:"input_size"`
	Timeout       time.Duration `mapstructure:"timeout"`
	MaxConcurrent int64         `mapstructure:"max_concurrent"`
}

type BatchConfig struct {
	Workers int `mapstructure:"workers"`
}

type GradingConfig struct {
	Threshold float64 `mapstructure:"threshold"`
}

type HealthConfig struct {
	Schedule string `mapstructure:"schedule"`
}

// Load 从 YAML 文件加载配置，VISIONKIT_ 前缀的环境变量优先
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// New 使用默认配置路径加载配置
func New() *Config {
	return LoadOrDefault("config.yaml")
}

// LoadOrDefault 加载失败时返回默认配置
func LoadOrDefault(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		return getDefaultConfig()
	}
	return cfg
}

func setDefaults(v *viper.Viper) {
	d := getDefaultConfig()

	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.mode", d.Server.Mode)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)
	v.SetDefault("server.max_upload_size", d.Server.MaxUploadSize)

	v.SetDefault("redis.enabled", d.Redis.Enabled)
	v.SetDefault("redis.addr", d.Redis.Addr)
	v.SetDefault("redis.password", d.Redis.Password)
	v.SetDefault("redis.db", d.Redis.DB)
	v.SetDefault("redis.ttl", d.Redis.TTL)

	v.SetDefault("inference.base_url", d.Inference.BaseURL)
	v.SetDefault("inference.input_size", d.Inference.InputSize)
	v.SetDefault("inference.timeout", d.Inference.Timeout)
	v.SetDefault("inference.max_concurrent", d.Inference.MaxConcurrent)

	v.SetDefault("batch.workers", d.Batch.Workers)
	v.SetDefault("grading.threshold", d.Grading.Threshold)
	v.SetDefault("health.schedule", d.Health.Schedule)
}

func getDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:          ":5000",
			Mode:          "debug",
			ReadTimeout:   30 * time.Second,
			WriteTimeout:  120 * time.Second,
			MaxUploadSize: 16 * 1024 * 1024,
		},
		Redis: RedisConfig{
			Enabled:  true,
			Addr:     "localhost:6379",
			Password: "",
			DB:       0,
			TTL:      24 * time.Hour,
		},
		Inference: InferenceConfig{
			BaseURL:       "http://localhost:8000",
			InputSize:     1024,
			Timeout:       60 * time.Second,
			MaxConcurrent: 1,
		},
		Batch: BatchConfig{
			Workers: 4,
		},
		Grading: GradingConfig{
			Threshold: 0.6,
		},
		Health: HealthConfig{
			Schedule: "@every 30s",
		},
	}
}

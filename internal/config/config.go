package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v8"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

type Config struct {
	API       APIConfig
	Log       LogConfig
	Tracing   TracingConfig
	RateLimit RateLimitConfig
	Client    ClientConfig
}

type APIConfig struct {
	Addr            string        `env:"CONVERTER_API_ADDR" envDefault:":8080"`
	MaxUploadBytes  int64         `env:"CONVERTER_MAX_UPLOAD_BYTES" envDefault:"52428800"`
	MaxPixels       int64         `env:"CONVERTER_MAX_PIXELS" envDefault:"50000000"`
	ReadTimeout     time.Duration `env:"CONVERTER_READ_TIMEOUT" envDefault:"30s"`
	WriteTimeout    time.Duration `env:"CONVERTER_WRITE_TIMEOUT" envDefault:"60s"`
	IdleTimeout     time.Duration `env:"CONVERTER_IDLE_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout time.Duration `env:"CONVERTER_SHUTDOWN_TIMEOUT" envDefault:"15s"`
}

type LogConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type TracingConfig struct {
	ServiceName  string  `env:"OTEL_SERVICE_NAME" envDefault:"image-converter"`
	Exporter     string  `env:"TRACE_EXPORTER" envDefault:"none"`
	OTLPEndpoint string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTLPInsecure bool    `env:"OTEL_EXPORTER_OTLP_INSECURE" envDefault:"false"`
	SampleRatio  float64 `env:"OTEL_TRACES_SAMPLER_RATIO" envDefault:"1"`
}

type RateLimitConfig struct {
	Enabled       bool          `env:"RATE_LIMIT_ENABLED" envDefault:"false"`
	RedisAddr     string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
	Requests      int           `env:"RATE_LIMIT_REQUESTS" envDefault:"30"`
	Window        time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1m"`
	KeyPrefix     string        `env:"RATE_LIMIT_KEY_PREFIX" envDefault:"converter:ratelimit"`
	// SubjectHeader names a client address header such as X-Real-IP. Only
	// set it behind a proxy that overwrites the header; empty keys on the
	// connection's remote address.
	SubjectHeader string `env:"RATE_LIMIT_SUBJECT_HEADER"`
}

func (r RateLimitConfig) RedisOptions() *redis.Options {
	return &redis.Options{
		Addr:     r.RedisAddr,
		Password: r.RedisPassword,
		DB:       r.RedisDB,
	}
}

type ClientConfig struct {
	ServerURL string        `env:"CONVERTER_SERVER_URL" envDefault:"http://localhost:8080"`
	Timeout   time.Duration `env:"CONVERTER_CLIENT_TIMEOUT" envDefault:"2m"`
}

// Load reads an optional .env file from the working directory, then parses
// the environment. Variables already set win over the file.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.API.MaxUploadBytes <= 0 {
		return errors.New("CONVERTER_MAX_UPLOAD_BYTES must be positive")
	}
	if c.API.MaxPixels < 0 {
		return errors.New("CONVERTER_MAX_PIXELS must not be negative")
	}
	if c.RateLimit.Enabled {
		if c.RateLimit.Requests <= 0 {
			return errors.New("RATE_LIMIT_REQUESTS must be positive")
		}
		if c.RateLimit.Window <= 0 {
			return errors.New("RATE_LIMIT_WINDOW must be positive")
		}
	}
	return nil
}

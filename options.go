package paramcheck

import (
	"errors"
	"fmt"

	"github.com/joeshaw/envdecode"

	"github.com/gofhir/paramcheck/expr"
	"github.com/gofhir/paramcheck/pkg/logger"
)

// Option configures a Schema.
type Option func(*Options)

// Options holds the configuration of a Schema.
type Options struct {
	// Logger receives per-run debug output. Defaults to logger.Default().
	Logger *logger.Logger

	// Metrics, when set, records every run.
	Metrics *Metrics

	// Evaluator runs RequiredIfExpr conditions. When nil, a private
	// evaluator sized by ExpressionCacheSize is created.
	Evaluator *expr.Evaluator

	// ExpressionCacheSize is the number of compiled conditions kept.
	ExpressionCacheSize int
}

// DefaultOptions returns the default configuration.
func DefaultOptions() *Options {
	return &Options{
		Logger:              logger.Default(),
		ExpressionCacheSize: expr.DefaultCacheSize,
	}
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.Logger = l
		}
	}
}

// WithMetrics records runs into m.
func WithMetrics(m *Metrics) Option {
	return func(o *Options) {
		o.Metrics = m
	}
}

// WithEvaluator shares an expression evaluator, and its cache, between
// schemas.
func WithEvaluator(e *expr.Evaluator) Option {
	return func(o *Options) {
		o.Evaluator = e
	}
}

// WithExpressionCache sets the compiled condition cache size.
func WithExpressionCache(size int) Option {
	return func(o *Options) {
		if size > 0 {
			o.ExpressionCacheSize = size
		}
	}
}

// Config is the environment configuration read by LoadConfig.
type Config struct {
	LogLevel            string `env:"PARAMCHECK_LOG_LEVEL,default=none"`
	ExpressionCacheSize int    `env:"PARAMCHECK_EXPR_CACHE_SIZE,default=256"`
	Metrics             bool   `env:"PARAMCHECK_METRICS,default=false"`
}

// LoadConfig reads Config from the environment. Unset variables keep
// their defaults.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "none"
	}
	if cfg.ExpressionCacheSize <= 0 {
		cfg.ExpressionCacheSize = expr.DefaultCacheSize
	}
	return cfg, nil
}

// Options converts the configuration into schema options.
func (c Config) Options() ([]Option, error) {
	level, err := logger.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	opts := []Option{
		WithLogger(logger.New(logger.Default().Output(), level)),
		WithExpressionCache(c.ExpressionCacheSize),
	}
	if c.Metrics {
		opts = append(opts, WithMetrics(NewMetrics()))
	}
	return opts, nil
}

// OptionsFromEnv loads Config from the environment and converts it.
func OptionsFromEnv() ([]Option, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	return cfg.Options()
}

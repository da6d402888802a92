package config

import "time"

// Config is the root configuration for the fsrs-optimize and fsrs-retention
// CLIs.
type Config struct {
	Log LogConfig `yaml:"log"`
	SRS SRSConfig `yaml:"srs"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// SRSConfig holds the scheduler settings that sit outside the fitted
// 21-parameter vector: desired retention, the step ladders, fuzzing, and
// the interval ceiling.
type SRSConfig struct {
	DefaultRetention   float64 `yaml:"default_retention"  env:"SRS_DEFAULT_RETENTION" env-default:"0.9"`
	MaxIntervalDays    int     `yaml:"max_interval_days"  env:"SRS_MAX_INTERVAL"      env-default:"36500"`
	EnableFuzz         bool    `yaml:"enable_fuzz"        env:"SRS_ENABLE_FUZZ"       env-default:"true"`
	LearningStepsRaw   string  `yaml:"learning_steps"     env:"SRS_LEARNING_STEPS"    env-default:"1m,10m"`
	RelearningStepsRaw string  `yaml:"relearning_steps"   env:"SRS_RELEARNING_STEPS"  env-default:"10m"`

	// LearningSteps and RelearningSteps are parsed from their Raw
	// counterparts during validation.
	LearningSteps   []time.Duration `yaml:"-" env:"-"`
	RelearningSteps []time.Duration `yaml:"-" env:"-"`
}

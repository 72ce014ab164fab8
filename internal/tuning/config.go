// internal/tuning/config.go
//
// Tuning configuration: defaults, optional YAML file, TUNING_* environment
// overrides, then struct-tag validation.

package tuning

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/robalobadob/mastermind/internal/mastermind"
)

// Config controls a tuning run.
type Config struct {
	// StepSize is the initial fractional perturbation applied to a parameter.
	StepSize float64 `yaml:"step_size" validate:"gt=0,lt=1"`
	// Friction multiplies StepSize after every cycle.
	Friction float64 `yaml:"friction" validate:"gt=0,lt=1"`
	// BaselinePool is the number of secrets of the initial exact evaluation.
	BaselinePool int `yaml:"baseline_pool" validate:"gte=1,lte=4096"`
	// TrialPool is the number of secrets available to each adaptive evaluation.
	TrialPool int `yaml:"trial_pool" validate:"gte=1,lte=4096"`
	// Seed drives pool sampling; 0 picks a time-based seed.
	Seed int64 `yaml:"seed"`
	// Workers bounds parallel games in exact evaluations.
	Workers int `yaml:"workers" validate:"gte=0,lte=256"`
}

// DefaultConfig returns the reference tuning setup.
func DefaultConfig() Config {
	return Config{
		StepSize:     0.02,
		Friction:     0.65,
		BaselinePool: 64,
		TrialPool:    mastermind.Size,
		Workers:      1,
	}
}

var validate = validator.New()

// Validate checks every field against its constraints.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid tuning config: %w", err)
	}
	return nil
}

// LoadConfig starts from defaults, applies the YAML file at path (if any, a
// missing file is not an error) and TUNING_* environment variables.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse %s: %w", path, err)
			}
		case !os.IsNotExist(err):
			return cfg, fmt.Errorf("read %s: %w", path, err)
		}
	}
	applyEnv(&cfg)
	return cfg, cfg.Validate()
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("TUNING_STEP_SIZE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.StepSize = f
		}
	}
	if v := os.Getenv("TUNING_FRICTION"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Friction = f
		}
	}
	if v := os.Getenv("TUNING_BASELINE_POOL"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.BaselinePool = n
		}
	}
	if v := os.Getenv("TUNING_TRIAL_POOL"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.TrialPool = n
		}
	}
	if v := os.Getenv("TUNING_SEED"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Seed = n
		}
	}
	if v := os.Getenv("EVAL_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Workers = n
		}
	}
}

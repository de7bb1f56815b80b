// Package config loads scorekeeper settings from defaults, an optional YAML
// file and SCOREKEEPER_ environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/signalnine/scorekeeper/internal/result"
)

const (
	DefaultPath = "scorekeeper.yaml"
	envPrefix   = "SCOREKEEPER_"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	LogsDir    string `koanf:"logs_dir" validate:"required"`
	TrialsDir  string `koanf:"trials_dir" validate:"required"`
	ResultsDir string `koanf:"results_dir" validate:"required"`

	// Teams and Trials restrict scoring to the listed names. Empty lists
	// are discovered from the logs directory.
	Teams  []string `koanf:"teams" validate:"dive,required"`
	Trials []string `koanf:"trials" validate:"dive,required"`

	Weights  Weights `koanf:"weights"`
	Parallel int     `koanf:"parallel" validate:"gte=1"`

	LogLevel    string `koanf:"log_level" validate:"oneof=debug info warn error"`
	LogFormat   string `koanf:"log_format" validate:"oneof=text json"`
	MetricsFile string `koanf:"metrics_file"`
}

type Weights struct {
	Cost float64 `koanf:"cost" validate:"gte=0"`
	Time float64 `koanf:"time" validate:"gte=0"`
}

// Default returns the settings used when nothing overrides them.
func Default() *Config {
	return &Config{
		LogsDir:    "logs",
		TrialsDir:  "trials",
		ResultsDir: "results",
		Weights:    Weights{Cost: result.DefaultWeights.Cost, Time: result.DefaultWeights.Time},
		Parallel:   1,
		LogLevel:   "info",
		LogFormat:  "text",
	}
}

// ScoreWeights converts the configured weights for the scoring engine.
func (c *Config) ScoreWeights() result.Weights {
	return result.Weights{Cost: c.Weights.Cost, Time: c.Weights.Time}
}

// Load layers defaults, the YAML file at path and the environment. A
// missing file is only an error when required is set; the default path is
// optional so the tool runs without any config.
func Load(path string, required bool) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		_, statErr := os.Stat(path)
		switch {
		case statErr == nil:
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("parsing config %s: %w", path, err)
			}
		case required || !os.IsNotExist(statErr):
			return nil, fmt.Errorf("reading config %s: %w", path, statErr)
		}
	}

	// SCOREKEEPER_WEIGHTS__COST -> weights.cost; list values are space separated.
	envProvider := env.ProviderWithValue(envPrefix, ".", func(key, value string) (string, interface{}) {
		key = strings.ToLower(strings.TrimPrefix(key, envPrefix))
		key = strings.ReplaceAll(key, "__", ".")
		switch key {
		case "teams", "trials":
			return key, strings.Fields(value)
		}
		return key, value
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	cfg := Default()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var validate = validator.New()

// Validate checks field constraints. Callers that change fields after Load,
// such as command-line overrides, validate again.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s: failed %s", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

package config

import (
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/saiset-co/sai-strate/types"
)

type Loader struct {
	validator *validator.Validate
}

func NewLoader() *Loader {
	return &Loader{
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// LoadSettings reads process-level settings from a yaml file. Missing file is
// not an error: defaults apply.
func (l *Loader) LoadSettings(path string) (*types.Settings, error) {
	settings := l.Defaults()

	if path == "" {
		return settings, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return settings, nil
		}
		return nil, types.WrapError(err, "failed to read settings file")
	}

	if err := yaml.Unmarshal(data, settings); err != nil {
		return nil, types.Errorf(types.ErrConfigParseFailed, "%s", err)
	}

	if err := l.validator.Struct(settings); err != nil {
		return nil, types.Errorf(types.ErrConfigValidateFailed, "%s", err)
	}

	return settings, nil
}

func (l *Loader) Defaults() *types.Settings {
	return &types.Settings{
		Logger: &types.LoggerConfig{
			Level:  "info",
			Format: "console",
		},
		Cache: &types.CacheConfig{
			Enabled:    false,
			Type:       "memory",
			DefaultTTL: time.Hour,
		},
	}
}

package bind

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config holds the defaults a Manager hands to its bindings.
type Config struct {
	UpdateMode            string        `mapstructure:"update_mode" validate:"oneof=immediate deferred manual"`
	Debounce              time.Duration `mapstructure:"debounce" validate:"gte=0"`
	PerformanceMonitoring bool          `mapstructure:"performance_monitoring"`
	LogLevel              string        `mapstructure:"log_level" validate:"oneof=debug info warn error"`
}

func DefaultConfig() Config {
	return Config{
		UpdateMode: "immediate",
		Debounce:   MinDebounce,
		LogLevel:   "info",
	}
}

// LoadConfig reads the configuration from path, if not empty, and from BIND_*
// environment variables, on top of DefaultConfig.
func LoadConfig(path string) (Config, error) {
	def := DefaultConfig()

	v := viper.New()
	v.SetDefault("update_mode", def.UpdateMode)
	v.SetDefault("debounce", def.Debounce)
	v.SetDefault("performance_monitoring", def.PerformanceMonitoring)
	v.SetDefault("log_level", def.LogLevel)

	v.SetEnvPrefix("BIND")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.UpdateMode = strings.ToLower(strings.TrimSpace(cfg.UpdateMode))
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks the configuration against its struct tags.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fields validator.ValidationErrors
	if errors.As(err, &fields) {
		msgs := make([]string, 0, len(fields))
		for _, f := range fields {
			msgs = append(msgs, fmt.Sprintf("%s: failed %q (got %v)", f.Field(), f.Tag(), f.Value()))
		}
		err = errors.New(strings.Join(msgs, "; "))
	}

	return &Error{
		Op:        "bind.Config.Validate",
		Kind:      KindValidation,
		Err:       err,
		Timestamp: time.Now(),
	}
}

// Mode returns the parsed update mode, Immediate if it is invalid.
func (c Config) Mode() UpdateMode {
	mode, _ := ParseUpdateMode(c.UpdateMode)
	return mode
}

// Level returns the slog level for LogLevel.
func (c Config) Level() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// Logger returns a text logger on stderr at the configured level.
func (c Config) Logger() *slog.Logger {
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: c.Level()})
	return slog.New(h).With("component", "bind")
}

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// BaseConfig contains the host server settings.
// Applications can embed this in their own config structs.
type BaseConfig struct {
	HTTPPort    int    `toml:"http_port" env:"HTTP_PORT"`
	HealthPort  int    `toml:"health_port" env:"HEALTH_PORT"`
	LogLevel    string `toml:"log_level" env:"LOG_LEVEL"`
	Environment string `toml:"environment" env:"ENVIRONMENT"`
}

// PipelineConfig describes the middleware a pipeline is built from.
type PipelineConfig struct {
	// Middleware names in execution order: "logging", "tracing", "auth".
	Middleware  []string `toml:"middleware" env:"SHOOT_MIDDLEWARE"`
	AuthSecret  string   `toml:"auth_secret" env:"SHOOT_AUTH_SECRET"`
	TraceSystem string   `toml:"trace_system" env:"SHOOT_TRACE_SYSTEM"`
}

// Config is the full configuration of a shoot host.
type Config struct {
	Server   BaseConfig     `toml:"server"`
	Pipeline PipelineConfig `toml:"pipeline"`
}

// GetHTTPPort returns the HTTP port to use, preferring a Nomad assigned
// NOMAD_PORT_http over the configured value.
func (b *BaseConfig) GetHTTPPort() int {
	return resolvePort("http", b.HTTPPort)
}

// GetHealthPort returns the health port to use, preferring a Nomad assigned
// NOMAD_PORT_health over the configured value.
func (b *BaseConfig) GetHealthPort() int {
	return resolvePort("health", b.HealthPort)
}

// SlogLevel maps LogLevel to a slog level. Unknown or empty values map to info.
func (b *BaseConfig) SlogLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(b.LogLevel)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func resolvePort(label string, fallback int) int {
	envVar := "NOMAD_PORT_" + label
	nomadPort := os.Getenv(envVar)
	if nomadPort == "" {
		return fallback
	}

	port, err := strconv.Atoi(nomadPort)
	if err != nil {
		slog.Warn("invalid nomad port, using configured port",
			slog.String("env", envVar),
			slog.String("value", nomadPort),
			slog.Int("port", fallback),
		)
		return fallback
	}

	slog.Info("using nomad assigned port", slog.String("label", label), slog.Int("port", port))
	return port
}

// Loader handles loading configuration from TOML files and environment variables.
type Loader struct {
	configPath string
}

// NewLoader creates a new config loader for the specified TOML file path.
func NewLoader(configPath string) *Loader {
	return &Loader{
		configPath: configPath,
	}
}

// Load decodes the TOML file into config and then applies environment
// variable overrides for every field with an `env` tag. A missing file is not
// an error. The config parameter must be a pointer to a struct.
func (l *Loader) Load(config any) error {
	if config == nil {
		return errors.New("config cannot be nil")
	}

	rv := reflect.ValueOf(config)
	if rv.Kind() != reflect.Pointer {
		return fmt.Errorf("config must be a pointer to a struct, got %T", config)
	}
	if rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("config must be a pointer to a struct, got pointer to %v", rv.Elem().Kind())
	}

	if _, err := toml.DecodeFile(l.configPath, config); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to decode TOML file %s: %w", l.configPath, err)
	}

	if err := applyEnv(rv.Elem()); err != nil {
		return fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	return nil
}

// applyEnv walks the struct and nested structs, overriding tagged fields
// whose environment variable is set.
func applyEnv(v reflect.Value) error {
	t := v.Type()

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		sf := t.Field(i)

		if !field.CanSet() {
			continue
		}

		if field.Kind() == reflect.Struct {
			if err := applyEnv(field); err != nil {
				return err
			}
			continue
		}

		name := sf.Tag.Get("env")
		if name == "" {
			continue
		}
		// Unset and empty variables both leave the TOML value in place.
		value := os.Getenv(name)
		if value == "" {
			continue
		}

		if err := setField(field, value); err != nil {
			return fmt.Errorf("field %s from env %s: %w", sf.Name, name, err)
		}
	}

	return nil
}

func setField(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(value, 10, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("cannot parse %q as int: %w", value, err)
		}
		field.SetInt(n)

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(value, 10, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("cannot parse %q as uint: %w", value, err)
		}
		field.SetUint(n)

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("cannot parse %q as bool: %w", value, err)
		}
		field.SetBool(b)

	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(value, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("cannot parse %q as float: %w", value, err)
		}
		field.SetFloat(f)

	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice type %v", field.Type())
		}
		var items []string
		for _, item := range strings.Split(value, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		field.Set(reflect.ValueOf(items))

	default:
		return fmt.Errorf("unsupported field type %v", field.Kind())
	}

	return nil
}

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Default returns a configuration holding the default of every setting.
func Default() *Config {
	cfg := &Config{}
	// Defaults are compile-time constants; a failure here is a broken tag.
	if err := walk(reflect.ValueOf(cfg).Elem(), applyDefault); err != nil {
		panic(fmt.Sprintf("config defaults: %v", err))
	}
	return cfg
}

// Load builds the configuration from defaults, the file at path (skipped
// when path is empty) and DATAMIGRATOR_* environment variables, in that
// order, and validates the result. Relative target files are resolved
// against the directory of the config file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := decodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("config load: %w", err)
		}
		base := filepath.Dir(path)
		for i := range cfg.Targets {
			if f := cfg.Targets[i].File; f != "" && !filepath.IsAbs(f) {
				cfg.Targets[i].File = filepath.Join(base, f)
			}
		}
	}

	if err := walk(reflect.ValueOf(cfg).Elem(), applyEnv); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// decodeFile reads path into cfg, choosing the decoder from the extension.
func decodeFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %q: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		md, err := toml.NewDecoder(bytes.NewReader(data)).Decode(cfg)
		if err != nil {
			return fmt.Errorf("parse %q: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return fmt.Errorf("parse %q: unknown keys %v", path, undecoded)
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("parse %q: %w", path, err)
		}
	default:
		return fmt.Errorf("unsupported config format %q; use .toml, .yaml or .yml", filepath.Ext(path))
	}
	return nil
}

type fieldFunc func(field reflect.StructField, value reflect.Value) error

// walk calls fn for every settable scalar field of v, recursing into nested
// structs. Slices of structs (the plan targets) are skipped.
func walk(v reflect.Value, fn fieldFunc) error {
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldVal := v.Field(i)

		if !fieldVal.CanSet() {
			continue
		}

		if field.Type.Kind() == reflect.Struct {
			if err := walk(fieldVal, fn); err != nil {
				return err
			}
			continue
		}

		if err := fn(field, fieldVal); err != nil {
			return err
		}
	}
	return nil
}

func applyDefault(field reflect.StructField, value reflect.Value) error {
	def, ok := field.Tag.Lookup("default")
	if !ok {
		return nil
	}
	if err := setField(value, def); err != nil {
		return fmt.Errorf("invalid default for %s=%q: %w", field.Name, def, err)
	}
	return nil
}

func applyEnv(field reflect.StructField, value reflect.Value) error {
	name := field.Tag.Get("env")
	if name == "" {
		return nil
	}
	raw := os.Getenv(name)
	if raw == "" {
		return nil
	}
	if err := setField(value, raw); err != nil {
		return fmt.Errorf("invalid value for %s=%q: %w", name, raw, err)
	}
	return nil
}

// setField sets a reflect.Value from a string based on its type.
func setField(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int64:
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			d, err := time.ParseDuration(value)
			if err != nil {
				return fmt.Errorf("invalid duration: %w", err)
			}
			field.Set(reflect.ValueOf(d))
		} else {
			i, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer: %w", err)
			}
			field.SetInt(i)
		}

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %w", err)
		}
		field.SetBool(b)

	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}

	return nil
}

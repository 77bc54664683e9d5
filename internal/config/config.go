package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

var configLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	configLogger = l
}

// ErrUnsupportedVersion is returned when a config file declares a schema version this build
// does not understand.
var ErrUnsupportedVersion = errors.New("unsupported configuration version")

// Config represents the complete configuration structure
type Config struct {
	Version   string          `yaml:"version" toml:"version" default:"1"`
	Service   ServiceConfig   `yaml:"service" toml:"service"`
	Document  DocumentConfig  `yaml:"document" toml:"document"`
	Storage   StorageConfig   `yaml:"storage" toml:"storage"`
	Artifacts ArtifactsConfig `yaml:"artifacts" toml:"artifacts"`
	Watch     WatchConfig     `yaml:"watch" toml:"watch"`
	Server    ServerConfig    `yaml:"server" toml:"server"`
	Editor    EditorConfig    `yaml:"editor" toml:"editor"`
	Logging   LoggingConfig   `yaml:"logging" toml:"logging"`
}

type LoggingConfig struct {
	Level string `yaml:"level" toml:"level" default:"info"`
	File  string `yaml:"file" toml:"file" default:"texpad.log"`
}

// ServiceConfig points at the typesetting backend.
type ServiceConfig struct {
	BaseURL  string        `yaml:"base_url" toml:"base_url" default:"http://127.0.0.1:8000"`
	PDFPath  string        `yaml:"pdf_path" toml:"pdf_path" default:"/compile/pdf"`
	DOCXPath string        `yaml:"docx_path" toml:"docx_path" default:"/compile/docx"`
	Timeout  time.Duration `yaml:"timeout" toml:"timeout" default:"5m"`
	// Engine is informational only, the backend picks its own engine.
	Engine string `yaml:"engine" toml:"engine" default:"xelatex"`
}

type DocumentConfig struct {
	Filename   string        `yaml:"filename" toml:"filename" default:"main.tex"`
	StorageKey string        `yaml:"storage_key" toml:"storage_key" default:"texpad_tex_v1"`
	SaveDelay  time.Duration `yaml:"save_delay" toml:"save_delay" default:"250ms"`
}

type StorageConfig struct {
	Driver      string `yaml:"driver" toml:"driver" default:"sqlite"`
	Path        string `yaml:"path" toml:"path" default:"./texpad.db"`
	Compression string `yaml:"compression" toml:"compression" default:"zstd"`
}

type ArtifactsConfig struct {
	PreviewPath    string       `yaml:"preview_path" toml:"preview_path" default:"./output.pdf"`
	DownloadDir    string       `yaml:"download_dir" toml:"download_dir" default:"."`
	ExportFilename string       `yaml:"export_filename" toml:"export_filename" default:"output.docx"`
	Mirror         MirrorConfig `yaml:"mirror" toml:"mirror"`
}

// MirrorConfig configures the optional S3-compatible artifact mirror. Credentials are read
// from the environment when left empty.
type MirrorConfig struct {
	Enabled         bool   `yaml:"enabled" toml:"enabled" default:"false"`
	Endpoint        string `yaml:"endpoint" toml:"endpoint" default:""`
	Region          string `yaml:"region" toml:"region" default:"auto"`
	Bucket          string `yaml:"bucket" toml:"bucket" default:""`
	Prefix          string `yaml:"prefix" toml:"prefix" default:"texpad/"`
	AccessKeyID     string `yaml:"access_key_id" toml:"access_key_id" default:""`
	SecretAccessKey string `yaml:"secret_access_key" toml:"secret_access_key" default:""`
}

type WatchConfig struct {
	CompileOnSave bool          `yaml:"compile_on_save" toml:"compile_on_save" default:"true"`
	MinInterval   time.Duration `yaml:"min_interval" toml:"min_interval" default:"2s"`
}

type ServerConfig struct {
	Enabled bool   `yaml:"enabled" toml:"enabled" default:"false"`
	Host    string `yaml:"host" toml:"host" default:"127.0.0.1"`
	Port    string `yaml:"port" toml:"port" default:"12601"`
}

type EditorConfig struct {
	SyntaxTheme string `yaml:"syntax_theme" toml:"syntax_theme" default:"gruvbox"`
	LineNumbers bool   `yaml:"line_numbers" toml:"line_numbers" default:"true"`
}

// Addr returns the companion server listen address.
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

var AppConfig *Config

// LoadConfig loads path into AppConfig.
func LoadConfig(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	AppConfig = cfg
	return nil
}

// Load reads the config file at path. A missing file yields the defaults. The decoder is
// picked from the file extension: .toml files use TOML, everything else YAML.
func Load(path string) (*Config, error) {
	config := &Config{}

	// Apply default values first
	applyDefaults(config)

	data, err := os.ReadFile(path)
	if err != nil {
		// If file doesn't exist, just use defaults
		configLogger.Info().Str("path", path).Msg("Config file not found, using defaults")
		applyEnv(config)
		return config, nil
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if config.Version != DefaultVersion {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedVersion, config.Version)
	}

	applyEnv(config)
	return config, nil
}

// applyEnv lets the environment (and a loaded .env file) override secrets and endpoints.
func applyEnv(config *Config) {
	if v := os.Getenv(EnvServiceURL); v != "" {
		config.Service.BaseURL = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		config.Logging.Level = v
	}
	if v := os.Getenv(EnvS3AccessKeyID); v != "" && config.Artifacts.Mirror.AccessKeyID == "" {
		config.Artifacts.Mirror.AccessKeyID = v
	}
	if v := os.Getenv(EnvS3SecretAccessKey); v != "" && config.Artifacts.Mirror.SecretAccessKey == "" {
		config.Artifacts.Mirror.SecretAccessKey = v
	}
}

func ApplyDefaults(config interface{}) {
	applyDefaults(config)
}

var durationType = reflect.TypeOf(time.Duration(0))

func applyDefaults(config interface{}) {
	v := reflect.ValueOf(config)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	if v.Kind() != reflect.Struct {
		return
	}

	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		if !field.IsValid() || !field.CanSet() {
			continue
		}

		// Recursively apply defaults to nested structs
		if field.Kind() == reflect.Struct {
			applyDefaults(field.Addr().Interface())
			continue
		}

		defaultValue := fieldType.Tag.Get("default")
		if defaultValue == "" {
			continue
		}

		if field.Type() == durationType {
			if d, err := time.ParseDuration(defaultValue); err == nil {
				field.SetInt(int64(d))
			}
			continue
		}

		switch field.Kind() {
		case reflect.String:
			field.SetString(defaultValue)
		case reflect.Bool:
			if val, err := strconv.ParseBool(defaultValue); err == nil {
				field.SetBool(val)
			}
		case reflect.Int, reflect.Int64:
			if val, err := strconv.ParseInt(defaultValue, 10, 64); err == nil {
				field.SetInt(val)
			}
		case reflect.Float64:
			if val, err := strconv.ParseFloat(defaultValue, 64); err == nil {
				field.SetFloat(val)
			}
		case reflect.Slice:
			if field.Len() == 0 && field.Type().Elem().Kind() == reflect.String {
				parts := strings.Split(defaultValue, ",")
				slice := reflect.MakeSlice(field.Type(), len(parts), len(parts))
				for j, part := range parts {
					slice.Index(j).SetString(strings.TrimSpace(part))
				}
				field.Set(slice)
			}
		default:
			configLogger.Warn().
				Str("field_name", fieldType.Name).
				Str("field_type", field.Kind().String()).
				Msg("Unsupported field type for default value")
		}
	}
}

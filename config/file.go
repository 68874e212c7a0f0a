package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// App captures process-wide runtime settings.
type App struct {
	Name     string `yaml:"name"`
	LogLevel string `yaml:"log_level"`
}

// Server configures the HTTP surface of `curvekit serve`.
type Server struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// File is the YAML configuration document.
type File struct {
	App    App           `yaml:"app"`
	Server Server        `yaml:"server"`
	Solver Config        `yaml:"solver"`
	Curves []CurveConfig `yaml:"curves"`
}

// Environment variables that override file values.
const (
	EnvLogLevel       = "CURVEKIT_LOG_LEVEL"
	EnvAddr           = "CURVEKIT_ADDR"
	EnvAllowedOrigins = "CURVEKIT_ALLOWED_ORIGINS"
)

// DefaultFile is used when no config path is given.
func DefaultFile() File {
	return File{
		App:    App{Name: "curvekit", LogLevel: "info"},
		Server: Server{Addr: ":8080", AllowedOrigins: []string{"*"}},
		Solver: DefaultConfig,
	}
}

// Load reads a YAML file from disk over DefaultFile, then applies environment overrides.
// An empty path skips the file. A .env file in the working directory is loaded if present.
func Load(path string) (*File, error) {
	cfg := DefaultFile()

	if path != "" {
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		if err := yaml.NewDecoder(file).Decode(&cfg); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	cfg.applyEnv()

	cfg.Solver = cfg.Solver.WithDefaults()
	for i, c := range cfg.Curves {
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("curves[%d]: %w", i, err)
		}
		cfg.Curves[i] = c.WithCurrency(c.Currency)
	}
	return &cfg, nil
}

func (f *File) applyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		f.App.LogLevel = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvAddr)); v != "" {
		f.Server.Addr = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvAllowedOrigins)); v != "" {
		origins := strings.Split(v, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		f.Server.AllowedOrigins = origins
	}
}

// Curve returns the named curve config.
func (f *File) Curve(name string) (CurveConfig, bool) {
	for _, c := range f.Curves {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return CurveConfig{}, false
}

// Package config resolves readless settings. Precedence, lowest first:
// built-in defaults, the YAML config file, environment variables, and
// finally the command-line flags applied by main.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

const (
	DefaultEndpoint    = "http://localhost:8080/api/readless/process"
	DefaultListenAddr  = "127.0.0.1:8080"
	DefaultBridgePort  = 19191
	DefaultGeminiURL   = "https://generativelanguage.googleapis.com/v1beta/models/gemini-2.0-flash:generateContent"
	DefaultOllamaHost  = "http://localhost:11434"
	DefaultModel       = "llama3.2"
	DefaultOpenAIURL   = "https://api.openai.com/v1"
	DefaultOpenAIModel = "gpt-4o-mini"
)

// Selection sources understood by the panel.
const (
	SourceExtension = "extension"
	SourceCDP       = "cdp"
	SourcePrimary   = "primary"
)

// Generator backends understood by the serve command.
const (
	BackendGemini = "gemini"
	BackendOllama = "ollama"
	BackendOpenAI = "openai"
)

// Config holds all readless settings.
type Config struct {
	Endpoint   string `yaml:"endpoint"`
	Source     string `yaml:"source"`
	BridgePort int    `yaml:"bridge_port"`
	CDPURL     string `yaml:"cdp_url"`
	DBPath     string `yaml:"db_path"`
	LogDir     string `yaml:"log_dir"`

	Serve ServeConfig `yaml:"serve"`
}

// ServeConfig configures the processing backend.
type ServeConfig struct {
	Addr    string       `yaml:"addr"`
	Backend string       `yaml:"backend"`
	Gemini  GeminiConfig `yaml:"gemini"`
	Ollama  OllamaConfig `yaml:"ollama"`
	OpenAI  OpenAIConfig `yaml:"openai"`
}

type GeminiConfig struct {
	URL    string `yaml:"url"`
	APIKey string `yaml:"api_key"`
}

type OllamaConfig struct {
	Host  string `yaml:"host"`
	Model string `yaml:"model"`
}

type OpenAIConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
}

// Default returns the built-in configuration.
func Default() Config {
	dataDir := DataDir()
	return Config{
		Endpoint:   DefaultEndpoint,
		Source:     SourceExtension,
		BridgePort: DefaultBridgePort,
		DBPath:     filepath.Join(dataDir, "readless.db"),
		LogDir:     dataDir,
		Serve: ServeConfig{
			Addr:    DefaultListenAddr,
			Backend: BackendGemini,
			Gemini:  GeminiConfig{URL: DefaultGeminiURL},
			Ollama:  OllamaConfig{Host: DefaultOllamaHost, Model: DefaultModel},
			OpenAI:  OpenAIConfig{BaseURL: DefaultOpenAIURL, Model: DefaultOpenAIModel},
		},
	}
}

// DataDir returns ~/.local/share/readless.
func DataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "readless")
	}
	return filepath.Join(home, ".local", "share", "readless")
}

// DefaultPath returns the config file location: $READLESS_CONFIG if set,
// otherwise ~/.config/readless/config.yaml.
func DefaultPath() string {
	if p := os.Getenv("READLESS_CONFIG"); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "readless", "config.yaml")
}

// Load builds a Config from defaults, the file at path (a missing file is
// not an error), and the environment.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}
	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.Endpoint, "READLESS_ENDPOINT")
	setString(&cfg.Source, "READLESS_SOURCE")
	setString(&cfg.CDPURL, "READLESS_CDP_URL")
	setString(&cfg.DBPath, "READLESS_DB")
	setString(&cfg.LogDir, "READLESS_LOG_DIR")
	if v := os.Getenv("READLESS_BRIDGE_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.BridgePort = port
		}
	}

	setString(&cfg.Serve.Addr, "READLESS_ADDR")
	setString(&cfg.Serve.Backend, "READLESS_BACKEND")
	setString(&cfg.Serve.Gemini.URL, "GEMINI_API_URL")
	setString(&cfg.Serve.Gemini.APIKey, "GEMINI_API_KEY")
	setString(&cfg.Serve.Ollama.Host, "OLLAMA_HOST")
	setString(&cfg.Serve.Ollama.Model, "READLESS_MODEL")
	setString(&cfg.Serve.OpenAI.BaseURL, "OPENAI_BASE_URL")
	setString(&cfg.Serve.OpenAI.APIKey, "OPENAI_API_KEY")
	setString(&cfg.Serve.OpenAI.Model, "OPENAI_MODEL")
}

func setString(dst *string, env string) {
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}

// Validate reports settings that can never work.
func (c Config) Validate() error {
	switch c.Source {
	case SourceExtension, SourceCDP, SourcePrimary:
	default:
		return fmt.Errorf("unknown selection source %q (want %s, %s or %s)",
			c.Source, SourceExtension, SourceCDP, SourcePrimary)
	}
	switch c.Serve.Backend {
	case BackendGemini, BackendOllama, BackendOpenAI:
	default:
		return fmt.Errorf("unknown backend %q (want %s, %s or %s)",
			c.Serve.Backend, BackendGemini, BackendOllama, BackendOpenAI)
	}
	if c.Endpoint == "" {
		return errors.New("endpoint must not be empty")
	}
	if c.BridgePort < 0 || c.BridgePort > 65535 {
		return fmt.Errorf("bridge port %d out of range", c.BridgePort)
	}
	return nil
}

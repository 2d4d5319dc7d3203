package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/geethika608/youtube-short-creator/internal/fsutil"
)

// FileName is the config file looked up by the CLI.
const FileName = "shorts.yaml"

// Config represents the shorts.yaml configuration file
type Config struct {
	ProjectsRoot string           `yaml:"projects_root"`
	StateDir     string           `yaml:"state_dir"`
	LogLevel     string           `yaml:"log_level"`
	Text         TextConfig       `yaml:"text"`
	Image        ImageConfig      `yaml:"image"`
	Script       ScriptConfig     `yaml:"script"`
	Scenes       ScenesConfig     `yaml:"scenes"`
	Research     ResearchConfig   `yaml:"research"`
	Checkpoint   CheckpointConfig `yaml:"checkpoint"`
	Server       ServerConfig     `yaml:"server"`
}

// TextConfig selects the text generation backend
type TextConfig struct {
	Provider    string  `yaml:"provider"`
	Model       string  `yaml:"model"`
	BaseURL     string  `yaml:"base_url,omitempty"`
	APIKeyEnv   string  `yaml:"api_key_env,omitempty"`
	Temperature float32 `yaml:"temperature"`
	TimeoutS    int     `yaml:"timeout_s"`
	ScriptPath  string  `yaml:"script_path,omitempty"`
}

// ImageConfig selects the image generation backend
type ImageConfig struct {
	Provider       string `yaml:"provider"`
	Model          string `yaml:"model,omitempty"`
	AspectRatio    string `yaml:"aspect_ratio"`
	ImagesPerScene int    `yaml:"images_per_scene"`
	Width          int    `yaml:"width"`
	Height         int    `yaml:"height"`
	BaseURL        string `yaml:"base_url,omitempty"`
	APIKeyEnv      string `yaml:"api_key_env,omitempty"`
	TimeoutS       int    `yaml:"timeout_s"`
	MaxAttempts    int    `yaml:"max_attempts"`
}

// ScriptConfig bounds the narration length
type ScriptConfig struct {
	MinWords int `yaml:"min_words"`
	MaxWords int `yaml:"max_words"`
}

// ScenesConfig bounds the number of visual prompts
type ScenesConfig struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// ResearchConfig configures optional research sources
type ResearchConfig struct {
	Reddit RedditConfig `yaml:"reddit"`
}

// RedditConfig configures the Reddit search source
type RedditConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Subreddit string `yaml:"subreddit"`
	Limit     int    `yaml:"limit"`
	Time      string `yaml:"time"`
}

// CheckpointConfig controls how human replies are read
type CheckpointConfig struct {
	ExtractWithModel bool `yaml:"extract_with_model"`
}

// ServerConfig configures the HTTP surface
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// Provider names accepted by the text section.
const (
	TextGemini   = "gemini"
	TextOpenAI   = "openai"
	TextScripted = "scripted"
)

// Provider names accepted by the image section.
const (
	ImageImagen       = "imagen"
	ImagePollinations = "pollinations"
	ImagePlaceholder  = "placeholder"
)

// GenerateDefault creates a new Config with default values
func GenerateDefault() *Config {
	return &Config{
		ProjectsRoot: "projects",
		StateDir:     ".shorts",
		LogLevel:     "info",
		Text: TextConfig{
			Provider:    TextGemini,
			Model:       "gemini-2.5-flash",
			APIKeyEnv:   "GOOGLE_API_KEY",
			Temperature: 0.7,
			TimeoutS:    120,
		},
		Image: ImageConfig{
			Provider:       ImageImagen,
			Model:          "imagen-3.0-generate-002",
			AspectRatio:    "9:16",
			ImagesPerScene: 1,
			Width:          1080,
			Height:         1920,
			APIKeyEnv:      "GOOGLE_API_KEY",
			TimeoutS:       180,
			MaxAttempts:    3,
		},
		Script: ScriptConfig{
			MinWords: 150,
			MaxWords: 200,
		},
		Scenes: ScenesConfig{
			Min: 3,
			Max: 5,
		},
		Research: ResearchConfig{
			Reddit: RedditConfig{
				Enabled:   false,
				Subreddit: "all",
				Limit:     5,
				Time:      "year",
			},
		},
		Checkpoint: CheckpointConfig{
			ExtractWithModel: false,
		},
		Server: ServerConfig{
			Addr: ":8000",
		},
	}
}

// Validate checks the configuration for errors and returns user-friendly error messages
func (c *Config) Validate() error {
	if strings.TrimSpace(c.ProjectsRoot) == "" {
		return fmt.Errorf("configuration error: missing required field 'projects_root'\n\nHint: Set the folder that receives generated projects:\n  projects_root: projects")
	}

	if strings.TrimSpace(c.StateDir) == "" {
		return fmt.Errorf("configuration error: missing required field 'state_dir'\n\nHint: Set the folder that stores session state:\n  state_dir: .shorts")
	}

	if _, _, err := ParseLogLevel(c.LogLevel); err != nil {
		return fmt.Errorf("configuration error: invalid 'log_level' value %q\n\nHint: Use one of debug, info, warn, error:\n  log_level: info", c.LogLevel)
	}

	if err := c.Text.Validate(); err != nil {
		return err
	}
	if err := c.Image.Validate(); err != nil {
		return err
	}

	if c.Script.MinWords <= 0 || c.Script.MaxWords < c.Script.MinWords {
		return fmt.Errorf("configuration error: invalid script word range %d-%d\n\nHint: min_words must be positive and not above max_words:\n  script:\n    min_words: 150\n    max_words: 200", c.Script.MinWords, c.Script.MaxWords)
	}

	if c.Scenes.Min <= 0 || c.Scenes.Max < c.Scenes.Min {
		return fmt.Errorf("configuration error: invalid scene range %d-%d\n\nHint: min must be positive and not above max:\n  scenes:\n    min: 3\n    max: 5", c.Scenes.Min, c.Scenes.Max)
	}

	if c.Research.Reddit.Enabled && c.Research.Reddit.Limit <= 0 {
		return fmt.Errorf("configuration error: invalid 'research.reddit.limit' value: %d\n\nHint: Fetch at least one post:\n  research:\n    reddit:\n      limit: 5", c.Research.Reddit.Limit)
	}

	return nil
}

// Validate checks the text backend section
func (t *TextConfig) Validate() error {
	switch t.Provider {
	case TextGemini, TextOpenAI:
		if t.Model == "" {
			return fmt.Errorf("configuration error: text provider '%s' has empty 'model' field\n\nHint: Name the model to call:\n  text:\n    model: gemini-2.5-flash", t.Provider)
		}
	case TextScripted:
		if t.ScriptPath == "" {
			return fmt.Errorf("configuration error: text provider 'scripted' needs 'script_path'\n\nHint: Point at a JSON file of canned responses:\n  text:\n    provider: scripted\n    script_path: testdata/responses.json")
		}
	default:
		return fmt.Errorf("configuration error: unknown text provider %q\n\nHint: Use one of gemini, openai, scripted:\n  text:\n    provider: gemini", t.Provider)
	}

	if t.Temperature < 0 || t.Temperature > 2 {
		return fmt.Errorf("configuration error: invalid 'text.temperature' value: %.2f\n\nHint: Temperature must be between 0 and 2", t.Temperature)
	}
	return nil
}

// Validate checks the image backend section
func (i *ImageConfig) Validate() error {
	switch i.Provider {
	case ImageImagen:
		if i.Model == "" {
			return fmt.Errorf("configuration error: image provider 'imagen' has empty 'model' field\n\nHint: Name the Imagen model:\n  image:\n    model: imagen-3.0-generate-002")
		}
	case ImagePollinations, ImagePlaceholder:
	default:
		return fmt.Errorf("configuration error: unknown image provider %q\n\nHint: Use one of imagen, pollinations, placeholder:\n  image:\n    provider: imagen", i.Provider)
	}

	if i.ImagesPerScene <= 0 {
		return fmt.Errorf("configuration error: invalid 'image.images_per_scene' value: %d\n\nHint: Generate at least one image per scene:\n  image:\n    images_per_scene: 1", i.ImagesPerScene)
	}
	if i.Width <= 0 || i.Height <= 0 {
		return fmt.Errorf("configuration error: invalid image size %dx%d\n\nHint: Use a portrait size such as:\n  image:\n    width: 1080\n    height: 1920", i.Width, i.Height)
	}
	return nil
}

// APIKey reads the text backend key from the environment.
func (t TextConfig) APIKey() string {
	if t.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(t.APIKeyEnv)
}

// APIKey reads the image backend key from the environment.
func (i ImageConfig) APIKey() string {
	if i.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(i.APIKeyEnv)
}

// LoadFromFile loads a configuration from a YAML file. Fields missing from
// the file keep their default values.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg := GenerateDefault()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return cfg, nil
}

// SaveToFile writes the configuration to a YAML file with 0600 permissions
func (c *Config) SaveToFile(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := fsutil.AtomicWrite(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}

	return nil
}

// LoadEnv loads environment files into the process environment. Missing files
// are ignored; variables already set are not overwritten.
func LoadEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}

	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load env file %s: %w", path, err)
		}
	}
	return nil
}

// ParseLogLevel normalizes a textual log level to slog.Level.
func ParseLogLevel(input string) (slog.Level, string, error) {
	level := strings.ToLower(strings.TrimSpace(input))
	switch level {
	case "", "info":
		return slog.LevelInfo, "info", nil
	case "debug":
		return slog.LevelDebug, "debug", nil
	case "warn", "warning":
		return slog.LevelWarn, "warn", nil
	case "error", "err":
		return slog.LevelError, "error", nil
	default:
		return slog.LevelInfo, "", fmt.Errorf("unsupported log level %q", input)
	}
}

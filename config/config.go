package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Corpus CorpusConfig `yaml:"corpus"`
	Audio  AudioConfig  `yaml:"audio"`
	STT    STTConfig    `yaml:"stt"`
	OpenAI OpenAIConfig `yaml:"openai"`
	TTS    TTSConfig    `yaml:"tts"`
	Feed   FeedConfig   `yaml:"feed"`
	Log    LogConfig    `yaml:"log"`
}

type CorpusConfig struct {
	Path      string  `yaml:"path"`
	Format    string  `yaml:"format"`
	Table     string  `yaml:"table"`
	// Threshold is nil when unset so an explicit 0 survives defaulting.
	Threshold *float64 `yaml:"threshold"`
}

const defaultThreshold = 0.2

// ThresholdValue returns the configured threshold or the default.
func (c CorpusConfig) ThresholdValue() float64 {
	if c.Threshold == nil {
		return defaultThreshold
	}
	return *c.Threshold
}

type AudioConfig struct {
	Source        string `yaml:"source"`
	HTTPAddr      string `yaml:"http_addr"`
	FileDir       string `yaml:"file_dir"`
	SampleRate    int    `yaml:"sample_rate"`
	AuthToken     string `yaml:"auth_token"`
	ListenTimeout string `yaml:"listen_timeout"`
	PhraseLimit   string `yaml:"phrase_limit"`
	Chime         string `yaml:"chime"`
	TriggerSocket string `yaml:"trigger_socket"`
	LockFile      string `yaml:"lock_file"`
}

type STTConfig struct {
	Provider  string `yaml:"provider"`
	Language  string `yaml:"language"`
	ModelPath string `yaml:"model_path"`
}

type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
	Proxy   string `yaml:"proxy"`
}

type TTSConfig struct {
	Engine    string `yaml:"engine"`
	Binary    string `yaml:"binary"`
	VoiceHint string `yaml:"voice_hint"`
	Rate      int    `yaml:"rate"`
}

type FeedConfig struct {
	Addr    string `yaml:"addr"`
	History int    `yaml:"history"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// LoadEnv reads KEY=VALUE pairs from path into the process environment.
// A missing file is not an error; variables already set are kept.
func LoadEnv(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading env file: %w", err)
	}
	return nil
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes YAML after expanding ${VAR} references from the environment.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.setDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	var cfg Config
	cfg.setDefaults()
	return &cfg
}

func (c *Config) setDefaults() {
	if c.Corpus.Path == "" {
		c.Corpus.Path = "percakapan.csv"
	}
	if c.Corpus.Table == "" {
		c.Corpus.Table = "percakapan"
	}
	if c.Corpus.Threshold == nil {
		t := defaultThreshold
		c.Corpus.Threshold = &t
	}
	if c.Audio.Source == "" {
		c.Audio.Source = "microphone"
	}
	if c.Audio.HTTPAddr == "" {
		c.Audio.HTTPAddr = ":8080"
	}
	if c.Audio.FileDir == "" {
		c.Audio.FileDir = "./audio"
	}
	if c.Audio.SampleRate == 0 {
		c.Audio.SampleRate = 16000
	}
	if c.Audio.ListenTimeout == "" {
		c.Audio.ListenTimeout = "5s"
	}
	if c.Audio.PhraseLimit == "" {
		c.Audio.PhraseLimit = "5s"
	}
	if c.Audio.TriggerSocket == "" {
		c.Audio.TriggerSocket = "/tmp/voice-assistant.sock"
	}
	if c.Audio.LockFile == "" {
		c.Audio.LockFile = c.Audio.TriggerSocket + ".lock"
	}
	if c.STT.Provider == "" {
		c.STT.Provider = "openai"
	}
	if c.STT.Language == "" {
		c.STT.Language = "id"
	}
	if c.OpenAI.Model == "" {
		c.OpenAI.Model = "whisper-1"
	}
	if c.TTS.Engine == "" {
		c.TTS.Engine = "espeak"
	}
	if c.TTS.Binary == "" {
		c.TTS.Binary = "espeak-ng"
	}
	if c.TTS.VoiceHint == "" {
		c.TTS.VoiceHint = "indonesia"
	}
	if c.TTS.Rate == 0 {
		c.TTS.Rate = 145
	}
	if c.Feed.History == 0 {
		c.Feed.History = 100
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

func (c *Config) validate() error {
	if t := c.Corpus.ThresholdValue(); t < 0 || t >= 1 {
		return fmt.Errorf("corpus.threshold must be in [0, 1), got %v", t)
	}
	switch c.STT.Provider {
	case "openai", "whisper", "none":
	default:
		return fmt.Errorf("unknown stt.provider %q", c.STT.Provider)
	}
	switch c.TTS.Engine {
	case "espeak", "none":
	default:
		return fmt.Errorf("unknown tts.engine %q", c.TTS.Engine)
	}
	return nil
}

// ListenTimeoutDuration returns how long the microphone waits for speech to start.
func (c AudioConfig) ListenTimeoutDuration(logger *slog.Logger) time.Duration {
	return parseDuration(c.ListenTimeout, 5*time.Second, "audio.listen_timeout", logger)
}

// PhraseLimitDuration returns the maximum length of one recorded phrase.
func (c AudioConfig) PhraseLimitDuration(logger *slog.Logger) time.Duration {
	return parseDuration(c.PhraseLimit, 5*time.Second, "audio.phrase_limit", logger)
}

func parseDuration(value string, fallback time.Duration, key string, logger *slog.Logger) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		logger.Warn("invalid duration, using default", "key", key, "value", value, "default", fallback)
		return fallback
	}
	return d
}

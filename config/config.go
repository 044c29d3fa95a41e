package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/subosito/gotenv"
)

const (
	DefaultConfigFile = "api.json"
	DefaultModel      = "gemini-2.5-flash"

	// ModelVader selects the offline backend; no credential required.
	ModelVader = "vader"

	envAPIKey = "SPEECHWALL_API_KEY"
	envModel  = "SPEECHWALL_MODEL"
)

var (
	ErrConfigMissing   = errors.New("config file missing")
	ErrConfigMalformed = errors.New("config file malformed")
)

// defaultContextFacts are campus-specific facts the generic model needs
// so it stops reading proper nouns as sentiment-bearing words.
var defaultContextFacts = []string{
	"小詠、大詠是宿舍的名字",
	"學餐是指學生餐廳，最近因為學校政策而關閉",
	"操場最近換了顏色",
}

// Config is loaded once at process start and never written back.
type Config struct {
	APIKey       string   `json:"api_key"`
	Model        string   `json:"model"`
	ContextFacts []string `json:"context_facts"`
}

// Load reads the credential file and applies .env / environment
// overrides. A missing file or a missing api_key is fatal to the run;
// nothing else has been touched at that point.
func Load(path string) (*Config, error) {
	if err := gotenv.Load(); err != nil {
		slog.Debug("[Config] No .env file found, using OS environment")
	}

	cfg := &Config{}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("%w: %s not found, create it with {\"api_key\": \"...\"} before running", ErrConfigMissing, path)
	case err != nil:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("%w: %s is not valid JSON: %v", ErrConfigMalformed, path, err)
		}
	}

	if v := strings.TrimSpace(os.Getenv(envAPIKey)); v != "" {
		cfg.APIKey = v
	}
	if v := strings.TrimSpace(os.Getenv(envModel)); v != "" {
		cfg.Model = v
	}

	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if len(cfg.ContextFacts) == 0 {
		cfg.ContextFacts = append([]string(nil), defaultContextFacts...)
	}
	if cfg.APIKey == "" && cfg.Model != ModelVader {
		return nil, fmt.Errorf("%w: api_key is required in %s", ErrConfigMalformed, path)
	}

	return cfg, nil
}

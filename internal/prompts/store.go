package prompts

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Config is the operator-editable prompt document.
type Config struct {
	SystemPrompt string `json:"system_prompt"`
}

// Store persists the prompt config as a JSON file. A missing or corrupt
// file yields the defaults, so the service always has a working prompt.
type Store struct {
	path   string
	logger *slog.Logger
	mu     sync.RWMutex
}

// NewStore creates a store backed by the given path.
func NewStore(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{path: path, logger: logger}
}

// Load reads the prompt config, falling back to defaults field by field.
func (s *Store) Load() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cfg := Config{SystemPrompt: DefaultSystemPrompt}
	if s.path == "" {
		return cfg
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("failed to read prompt config, using defaults", "path", s.path, "error", err)
		}
		return cfg
	}

	var loaded Config
	if err := json.Unmarshal(data, &loaded); err != nil {
		s.logger.Warn("prompt config is not valid JSON, using defaults", "path", s.path, "error", err)
		return cfg
	}
	if strings.TrimSpace(loaded.SystemPrompt) != "" {
		cfg.SystemPrompt = loaded.SystemPrompt
	}
	return cfg
}

// Save overwrites the prompt config. Blank prompts reset to the default.
func (s *Store) Save(cfg Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return fmt.Errorf("prompt config path not configured")
	}
	if strings.TrimSpace(cfg.SystemPrompt) == "" {
		cfg.SystemPrompt = DefaultSystemPrompt
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating prompt config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding prompt config: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("writing prompt config: %w", err)
	}
	s.logger.Info("prompt config saved", "path", s.path)
	return nil
}

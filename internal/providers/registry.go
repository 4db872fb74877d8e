package providers

import (
	"fmt"
	"log/slog"
	"sync"
)

// Registry holds references to LLM clients and transcribers.
// It supports config-driven instantiation, hot-reload, and thread-safe access.
type Registry struct {
	mu           sync.RWMutex
	llmClients   map[string]LLMClient
	transcribers map[string]Transcriber
	logger       *slog.Logger
}

// NewRegistry creates a new empty provider registry.
func NewRegistry() *Registry {
	return &Registry{
		llmClients:   make(map[string]LLMClient),
		transcribers: make(map[string]Transcriber),
		logger:       slog.Default(),
	}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger *slog.Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logger = logger
}

// RegisterLLM registers an LLM client by name.
func (r *Registry) RegisterLLM(name string, client LLMClient) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.llmClients[name] = client
	if r.logger != nil {
		r.logger.Info("registered LLM client", "name", name)
	}
}

// RegisterTranscriber registers a transcriber by name.
func (r *Registry) RegisterTranscriber(name string, t Transcriber) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transcribers[name] = t
	if r.logger != nil {
		r.logger.Info("registered transcriber", "name", name)
	}
}

// GetLLM returns an LLM client by name.
func (r *Registry) GetLLM(name string) (LLMClient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	client, ok := r.llmClients[name]
	if !ok {
		return nil, fmt.Errorf("LLM client not found: %s", name)
	}
	return client, nil
}

// GetTranscriber returns a transcriber by name.
func (r *Registry) GetTranscriber(name string) (Transcriber, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.transcribers[name]
	if !ok {
		return nil, fmt.Errorf("transcriber not found: %s", name)
	}
	return t, nil
}

// HasLLM checks if an LLM client is registered.
func (r *Registry) HasLLM(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.llmClients[name]
	return ok
}

// HasTranscriber checks if a transcriber is registered.
func (r *Registry) HasTranscriber(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.transcribers[name]
	return ok
}

// ListLLM returns all registered LLM client names.
func (r *Registry) ListLLM() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.llmClients))
	for name := range r.llmClients {
		names = append(names, name)
	}
	return names
}

// ListTranscribers returns all registered transcriber names.
func (r *Registry) ListTranscribers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.transcribers))
	for name := range r.transcribers {
		names = append(names, name)
	}
	return names
}

// RegistryConfig defines the providers to instantiate from config.
type RegistryConfig struct {
	// LLMProviders maps provider names to their config
	LLMProviders map[string]LLMProviderConfig

	// Transcribers maps transcriber names to their config
	Transcribers map[string]TranscriberConfig
}

// LLMProviderConfig matches config.LLMProviderCfg with resolved API key.
type LLMProviderConfig struct {
	Type    string // "openai"
	Model   string
	APIKey  string // Resolved API key
	BaseURL string
	Enabled bool
}

// TranscriberConfig matches config.TranscriberCfg with resolved API key.
type TranscriberConfig struct {
	Type    string // "openai"
	Model   string
	APIKey  string // Resolved API key
	Enabled bool
}

// NewRegistryFromConfig creates a registry with providers based on configuration.
// Only enabled providers with valid API keys will be registered.
func NewRegistryFromConfig(cfg RegistryConfig) *Registry {
	r := NewRegistry()
	r.applyConfig(cfg)
	return r
}

// Reload updates the registry based on new configuration. Providers that
// are no longer configured are unregistered; changed ones are recreated.
func (r *Registry) Reload(cfg RegistryConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()

	wantLLM := make(map[string]bool)
	wantTranscriber := make(map[string]bool)

	for name, provCfg := range cfg.LLMProviders {
		if !provCfg.Enabled || provCfg.APIKey == "" {
			continue
		}
		wantLLM[name] = true

		existing, hasExisting := r.llmClients[name]
		if !hasExisting || needsLLMUpdate(existing, provCfg) {
			client := createLLMClient(provCfg)
			if client != nil {
				r.llmClients[name] = client
				if r.logger != nil {
					r.logger.Info("configured LLM client", "name", name, "type", provCfg.Type)
				}
			}
		}
	}

	for name, tCfg := range cfg.Transcribers {
		if !tCfg.Enabled || tCfg.APIKey == "" {
			continue
		}
		wantTranscriber[name] = true

		existing, hasExisting := r.transcribers[name]
		if !hasExisting || needsTranscriberUpdate(existing, tCfg) {
			t := createTranscriber(tCfg)
			if t != nil {
				r.transcribers[name] = t
				if r.logger != nil {
					r.logger.Info("configured transcriber", "name", name, "type", tCfg.Type)
				}
			}
		}
	}

	for name := range r.llmClients {
		if !wantLLM[name] {
			delete(r.llmClients, name)
			if r.logger != nil {
				r.logger.Info("unregistered LLM client", "name", name)
			}
		}
	}
	for name := range r.transcribers {
		if !wantTranscriber[name] {
			delete(r.transcribers, name)
			if r.logger != nil {
				r.logger.Info("unregistered transcriber", "name", name)
			}
		}
	}
}

// applyConfig applies configuration without locking (used during init).
func (r *Registry) applyConfig(cfg RegistryConfig) {
	for name, provCfg := range cfg.LLMProviders {
		if !provCfg.Enabled || provCfg.APIKey == "" {
			continue
		}
		if client := createLLMClient(provCfg); client != nil {
			r.llmClients[name] = client
		}
	}
	for name, tCfg := range cfg.Transcribers {
		if !tCfg.Enabled || tCfg.APIKey == "" {
			continue
		}
		if t := createTranscriber(tCfg); t != nil {
			r.transcribers[name] = t
		}
	}
}

// createLLMClient creates an LLM client based on provider type.
func createLLMClient(cfg LLMProviderConfig) LLMClient {
	switch cfg.Type {
	case "openai":
		return NewOpenAIClient(OpenAIConfig{
			APIKey:       cfg.APIKey,
			BaseURL:      cfg.BaseURL,
			DefaultModel: cfg.Model,
		})
	default:
		return nil
	}
}

// createTranscriber creates a transcriber based on provider type.
func createTranscriber(cfg TranscriberConfig) Transcriber {
	switch cfg.Type {
	case "openai":
		return NewOpenAITranscriber(OpenAITranscriberConfig{
			APIKey: cfg.APIKey,
			Model:  cfg.Model,
		})
	default:
		return nil
	}
}

// needsLLMUpdate checks if an LLM client needs to be recreated.
func needsLLMUpdate(client LLMClient, cfg LLMProviderConfig) bool {
	switch c := client.(type) {
	case *OpenAIClient:
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = OpenAIBaseURL
		}
		model := cfg.Model
		if model == "" {
			model = openAIDefaultModel
		}
		return c.apiKey != cfg.APIKey || c.defaultModel != model || c.baseURL != baseURL
	default:
		return true
	}
}

// needsTranscriberUpdate checks if a transcriber needs to be recreated.
func needsTranscriberUpdate(t Transcriber, cfg TranscriberConfig) bool {
	switch c := t.(type) {
	case *OpenAITranscriber:
		model := cfg.Model
		if model == "" {
			model = openAITranscriberDefaultModel
		}
		return c.apiKey != cfg.APIKey || c.model != model
	default:
		return true
	}
}

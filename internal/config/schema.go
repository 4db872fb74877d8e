package config

// Config holds intake configuration.
// Stored at: ~/.intake/config.yaml (or --config path).
type Config struct {
	LLMProviders map[string]LLMProviderCfg `mapstructure:"llm_providers" yaml:"llm_providers"`
	Transcribers map[string]TranscriberCfg `mapstructure:"transcribers" yaml:"transcribers"`
	Defaults     DefaultsCfg               `mapstructure:"defaults" yaml:"defaults"`
	Server       ServerCfg                 `mapstructure:"server" yaml:"server"`
	Paths        PathsCfg                  `mapstructure:"paths" yaml:"paths"`
}

// LLMProviderCfg configures an LLM provider.
type LLMProviderCfg struct {
	Type    string `mapstructure:"type" yaml:"type"`         // "openai"
	Model   string `mapstructure:"model" yaml:"model"`       // Model name
	APIKey  string `mapstructure:"api_key" yaml:"api_key"`   // API key (supports ${ENV_VAR} syntax)
	BaseURL string `mapstructure:"base_url" yaml:"base_url"` // Optional API base override
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
}

// TranscriberCfg configures a speech-to-text provider.
type TranscriberCfg struct {
	Type    string `mapstructure:"type" yaml:"type"`       // "openai"
	Model   string `mapstructure:"model" yaml:"model"`     // "whisper-1", "gpt-4o-mini-transcribe"
	APIKey  string `mapstructure:"api_key" yaml:"api_key"` // API key (supports ${ENV_VAR} syntax)
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
}

// DefaultsCfg specifies default provider selections and extraction knobs.
type DefaultsCfg struct {
	LLMProvider      string  `mapstructure:"llm_provider" yaml:"llm_provider"`
	Transcriber      string  `mapstructure:"transcriber" yaml:"transcriber"`
	Temperature      float64 `mapstructure:"temperature" yaml:"temperature"`
	MaxRepairRetries int     `mapstructure:"max_repair_retries" yaml:"max_repair_retries"`
}

// ServerCfg holds HTTP server settings.
type ServerCfg struct {
	Host          string `mapstructure:"host" yaml:"host"`
	Port          int    `mapstructure:"port" yaml:"port"`
	MaxImageBytes int64  `mapstructure:"max_image_bytes" yaml:"max_image_bytes"`
	MaxAudioBytes int64  `mapstructure:"max_audio_bytes" yaml:"max_audio_bytes"`
}

// PathsCfg points at the data files the service reads and writes.
type PathsCfg struct {
	// ProductList is the XLSX workbook with the product allow-list.
	ProductList string `mapstructure:"product_list" yaml:"product_list"`
	// PromptConfig is the JSON document holding the system prompt.
	PromptConfig string `mapstructure:"prompt_config" yaml:"prompt_config"`
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		LLMProviders: map[string]LLMProviderCfg{
			"openai": {
				Type:    "openai",
				Model:   "gpt-4o-mini",
				APIKey:  "${OPENAI_API_KEY}",
				Enabled: true,
			},
		},
		Transcribers: map[string]TranscriberCfg{
			"openai": {
				Type:    "openai",
				Model:   "whisper-1",
				APIKey:  "${OPENAI_API_KEY}",
				Enabled: true,
			},
		},
		Defaults: DefaultsCfg{
			LLMProvider:      "openai",
			Transcriber:      "openai",
			Temperature:      0,
			MaxRepairRetries: 2,
		},
		Server: ServerCfg{
			Host:          "127.0.0.1",
			Port:          8080,
			MaxImageBytes: 10 << 20,
			MaxAudioBytes: 25 << 20,
		},
		Paths: PathsCfg{
			ProductList:  "data/Produktliste_Order_Erfassung.xlsx",
			PromptConfig: "data/order_extraction_prompt.json",
		},
	}
}

// GetLLMProvider returns an LLM provider config by name.
func (c *Config) GetLLMProvider(name string) (LLMProviderCfg, bool) {
	cfg, ok := c.LLMProviders[name]
	return cfg, ok
}

// GetTranscriber returns a transcriber config by name.
func (c *Config) GetTranscriber(name string) (TranscriberCfg, bool) {
	cfg, ok := c.Transcribers[name]
	return cfg, ok
}

// EnabledLLMProviders returns all enabled LLM providers.
func (c *Config) EnabledLLMProviders() map[string]LLMProviderCfg {
	result := make(map[string]LLMProviderCfg)
	for name, cfg := range c.LLMProviders {
		if cfg.Enabled {
			result[name] = cfg
		}
	}
	return result
}

package endpoints

import (
	"github.com/brotwerk/intake/internal/api"
)

// Config holds dependencies needed by some endpoints.
type Config struct {
	// MaxImageBytes caps image uploads.
	MaxImageBytes int64
	// MaxAudioBytes caps audio uploads.
	MaxAudioBytes int64
}

// All returns all endpoint instances.
func All(cfg Config) []api.Endpoint {
	return []api.Endpoint{
		// Health endpoints
		&HealthEndpoint{},
		&StatusEndpoint{},

		// Extraction endpoints
		&ImagesExtractEndpoint{MaxBytes: cfg.MaxImageBytes},
		&ImagesUsageEndpoint{},
		&TranscriptsExtractEndpoint{},
		&AudioExtractEndpoint{MaxBytes: cfg.MaxAudioBytes},

		// Prompt config endpoints
		&GetPromptConfigEndpoint{},
		&PutPromptConfigEndpoint{},
	}
}

package providers

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const (
	OpenAITranscriberName         = "openai"
	openAITranscriberDefaultModel = openai.AudioModelWhisper1
)

// OpenAITranscriberConfig holds configuration for the transcription client.
type OpenAITranscriberConfig struct {
	APIKey     string
	Model      string // "whisper-1" (default), "gpt-4o-transcribe", "gpt-4o-mini-transcribe"
	MaxRetries int
	Timeout    time.Duration
	BaseURL    string       // Optional (tests)
	HTTPClient *http.Client // Optional (tests)
}

// OpenAITranscriber implements Transcriber using the official OpenAI SDK.
type OpenAITranscriber struct {
	apiKey string
	model  string
	client openai.Client
}

// NewOpenAITranscriber creates a new OpenAI transcription client.
func NewOpenAITranscriber(cfg OpenAITranscriberConfig) *OpenAITranscriber {
	if cfg.Model == "" {
		cfg.Model = openAITranscriberDefaultModel
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 300 * time.Second
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &OpenAITranscriber{
		apiKey: cfg.APIKey,
		model:  cfg.Model,
		client: openai.NewClient(opts...),
	}
}

// Name returns the transcriber identifier.
func (t *OpenAITranscriber) Name() string {
	return OpenAITranscriberName
}

// Transcribe uploads the audio and returns the recognized text.
func (t *OpenAITranscriber) Transcribe(ctx context.Context, audio []byte, filename, prompt string) (string, error) {
	if len(audio) == 0 {
		return "", fmt.Errorf("empty audio payload")
	}
	if filename == "" {
		filename = "audio.wav"
	}

	params := openai.AudioTranscriptionNewParams{
		Model: t.model,
		File:  openai.File(bytes.NewReader(audio), filename, audioContentType(filename)),
	}
	if prompt != "" {
		params.Prompt = openai.String(prompt)
	}

	resp, err := t.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("transcription failed: %w", err)
	}
	return strings.TrimSpace(resp.Text), nil
}

func audioContentType(filename string) string {
	switch {
	case strings.HasSuffix(filename, ".mp3"):
		return "audio/mpeg"
	case strings.HasSuffix(filename, ".wav"):
		return "audio/wav"
	case strings.HasSuffix(filename, ".m4a"):
		return "audio/mp4"
	case strings.HasSuffix(filename, ".ogg"), strings.HasSuffix(filename, ".oga"):
		return "audio/ogg"
	case strings.HasSuffix(filename, ".webm"):
		return "audio/webm"
	case strings.HasSuffix(filename, ".flac"):
		return "audio/flac"
	default:
		return "application/octet-stream"
	}
}

// Verify interface
var _ Transcriber = (*OpenAITranscriber)(nil)

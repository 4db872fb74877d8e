// Package intake adapts extraction to callers: it owns the prompt
// assembly for each input kind, runs the engine, and converts every
// failure into a warning-carrying placeholder response. Nothing in this
// package returns an error to the HTTP layer for content problems.
package intake

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/brotwerk/intake/internal/extract"
	"github.com/brotwerk/intake/internal/extract/ordersv1"
	"github.com/brotwerk/intake/internal/orders"
	"github.com/brotwerk/intake/internal/prompts"
	"github.com/brotwerk/intake/internal/providers"
)

// Degradation warnings, kept in the operators' language like the rest
// of the order vocabulary.
const (
	warnNoProvider    = "LLM-Provider nicht konfiguriert, dummy response verwendet."
	warnNoTranscriber = "Transcriber nicht konfiguriert, dummy response verwendet."
	warnNoOrders      = "Keine orders erkannt, dummy response verwendet."
)

// Options configures the intake service.
type Options struct {
	// LLMProvider and Transcriber name registry entries.
	LLMProvider string
	Transcriber string
	// Model overrides the provider default when set.
	Model            string
	Temperature      float64
	MaxTokens        int
	MaxRepairRetries int
}

// Service turns uploads into ExtractResponses.
type Service struct {
	providers *providers.Registry
	targets   *extract.Registry
	prompts   *prompts.Store
	catalog   *orders.Catalog
	opts      Options
	logger    *slog.Logger
}

// NewService wires the intake service.
func NewService(reg *providers.Registry, targets *extract.Registry, store *prompts.Store,
	catalog *orders.Catalog, opts Options, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		providers: reg,
		targets:   targets,
		prompts:   store,
		catalog:   catalog,
		opts:      opts,
		logger:    logger,
	}
}

// ExtractFromImage extracts orders from a photographed order slip.
func (s *Service) ExtractFromImage(ctx context.Context, requestID string, image []byte, mime string, meta Metadata) *ExtractResponse {
	client, err := s.providers.GetLLM(s.opts.LLMProvider)
	if err != nil {
		s.logger.Warn("image extraction degraded", "request_id", requestID, "error", err)
		return dummyResponse(requestID, meta.DefaultEnteredBy, warnNoProvider, s.opts.Model)
	}

	messages := []providers.Message{
		{Role: "system", Content: s.prompts.Load().SystemPrompt},
		{Role: "user", Content: prompts.ImageInstruction(), Images: [][]byte{image}, ImageMIME: mime},
	}
	return s.run(ctx, client, requestID, messages, meta)
}

// ExtractFromTranscript extracts orders from transcribed or typed text.
func (s *Service) ExtractFromTranscript(ctx context.Context, requestID, transcript string, meta Metadata) *ExtractResponse {
	client, err := s.providers.GetLLM(s.opts.LLMProvider)
	if err != nil {
		s.logger.Warn("transcript extraction degraded", "request_id", requestID, "error", err)
		return dummyResponse(requestID, meta.DefaultEnteredBy, warnNoProvider, s.opts.Model)
	}

	messages := []providers.Message{
		{Role: "system", Content: s.prompts.Load().SystemPrompt},
		{Role: "user", Content: prompts.TranscriptInstruction(transcript)},
	}
	return s.run(ctx, client, requestID, messages, meta)
}

// ExtractFromAudio transcribes the recording, then extracts from the
// transcript. Transcription failures degrade like every other failure.
func (s *Service) ExtractFromAudio(ctx context.Context, requestID string, audio []byte, filename string, meta Metadata) *ExtractResponse {
	transcriber, err := s.providers.GetTranscriber(s.opts.Transcriber)
	if err != nil {
		s.logger.Warn("audio extraction degraded", "request_id", requestID, "error", err)
		return dummyResponse(requestID, meta.DefaultEnteredBy, warnNoTranscriber, s.opts.Model)
	}

	hint := prompts.TranscriptionHint(s.catalog.Products())
	transcript, err := transcriber.Transcribe(ctx, audio, filename, hint)
	if err != nil {
		s.logger.Warn("transcription failed", "request_id", requestID, "error", err)
		return dummyResponse(requestID, meta.DefaultEnteredBy,
			"Transkription fehlgeschlagen, dummy response verwendet.", s.opts.Model)
	}
	s.logger.Info("audio transcribed", "request_id", requestID, "chars", len(transcript))

	return s.ExtractFromTranscript(ctx, requestID, transcript, meta)
}

// run executes the repair loop and folds every outcome into a response.
func (s *Service) run(ctx context.Context, client providers.LLMClient, requestID string,
	messages []providers.Message, meta Metadata) *ExtractResponse {

	engine := extract.NewEngine(client, s.targets, extract.EngineConfig{
		Model:            s.opts.Model,
		Temperature:      s.opts.Temperature,
		MaxTokens:        s.opts.MaxTokens,
		MaxRepairRetries: s.opts.MaxRepairRetries,
	}, s.logger)

	result, err := engine.Extract(ctx, ordersv1.TargetKey, messages,
		extract.Context{ordersv1.DefaultEnteredByKey: meta.DefaultEnteredBy})
	if err != nil {
		s.logger.Error("extraction failed", "request_id", requestID, "error", err)
		return dummyResponse(requestID, meta.DefaultEnteredBy,
			"Extraktion fehlgeschlagen, dummy response verwendet.", s.opts.Model)
	}

	payload, ok := result.Value.(orders.Payload)
	if !ok {
		s.logger.Error("extraction returned unexpected value", "request_id", requestID,
			"type", fmt.Sprintf("%T", result.Value))
		return dummyResponse(requestID, meta.DefaultEnteredBy,
			"Extraktion fehlgeschlagen, dummy response verwendet.", s.opts.Model)
	}

	s.logger.Info("extraction trace", "request_id", requestID,
		"attempts", result.Trace.Attempts, "fallback", result.Trace.FallbackUsed,
		"raw_orders", result.Trace.Normalization.RawOrders,
		"dropped_orders", result.Trace.Normalization.DroppedOrders)

	if len(payload.Orders) == 0 {
		return dummyResponse(requestID, meta.DefaultEnteredBy, warnNoOrders, result.ModelUsed)
	}

	var warnings []string
	if result.Trace.FallbackUsed {
		warnings = append(warnings, "Fallback-Parsing verwendet, Ergebnis bitte prüfen.")
	}
	if dropped := result.Trace.Normalization.DroppedOrders; dropped > 0 {
		warnings = append(warnings, fmt.Sprintf("%d Bestellung(en) verworfen, weil sie ungültig waren.", dropped))
	}

	modelVersion := result.ModelUsed
	if modelVersion == "" {
		modelVersion = s.opts.Model
	}
	return newResponse(requestID, payload.Orders, warnings, modelVersion)
}

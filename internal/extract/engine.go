package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/brotwerk/intake/internal/providers"
)

// DefaultMaxRepairRetries bounds the repair loop: one initial attempt
// plus this many repair rounds.
const DefaultMaxRepairRetries = 2

// EngineConfig carries the generation parameters for extraction calls.
type EngineConfig struct {
	Model            string
	Temperature      float64
	MaxTokens        int
	MaxRepairRetries int
}

// Engine drives tool-call extraction against an LLM client. All state is
// per-call; a single Engine is safe for concurrent use.
type Engine struct {
	client     providers.LLMClient
	registry   *Registry
	model      string
	temp       float64
	maxTokens  int
	maxRetries int
	logger     *slog.Logger
}

// NewEngine creates an extraction engine bound to one client and one
// target registry.
func NewEngine(client providers.LLMClient, registry *Registry, cfg EngineConfig, logger *slog.Logger) *Engine {
	if cfg.MaxRepairRetries <= 0 {
		cfg.MaxRepairRetries = DefaultMaxRepairRetries
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		client:     client,
		registry:   registry,
		model:      cfg.Model,
		temp:       cfg.Temperature,
		maxTokens:  cfg.MaxTokens,
		maxRetries: cfg.MaxRepairRetries,
		logger:     logger,
	}
}

// Extract runs the repair loop for the named target. The messages are
// the caller's conversation opener (system + user, possibly with
// images); repair rounds append to a private copy.
//
// Transport errors from the client propagate unchanged. Validation
// failures are retried up to the configured bound, then salvaged; only
// when no salvaged item survives normalization does Extract return an
// ExhaustedError.
func (e *Engine) Extract(ctx context.Context, targetKey string, messages []providers.Message, ectx Context) (*Result, error) {
	target, err := e.registry.Lookup(targetKey)
	if err != nil {
		return nil, err
	}

	tools := []providers.Tool{{
		Type: "function",
		Function: providers.ToolFunction{
			Name:        target.FunctionName,
			Description: target.Description,
			Parameters:  target.Schema,
		},
	}}

	convo := append([]providers.Message(nil), messages...)

	trace := Trace{
		TargetKey: target.Key,
		Pattern:   target.Pattern,
	}

	var (
		lastRaw     string
		lastValErr  error
		modelUsed   string
		maxAttempts = e.maxRetries + 1
	)

	for attempt := 0; attempt < maxAttempts; attempt++ {
		req := &providers.ChatRequest{
			Messages:    convo,
			Model:       e.model,
			Temperature: e.temp,
			MaxTokens:   e.maxTokens,
			ToolChoice:  providers.ForceFunction(target.FunctionName),
		}

		result, err := e.client.ChatWithTools(ctx, req, tools)
		if err != nil {
			return nil, fmt.Errorf("chat call for target %q failed: %w", target.Key, err)
		}
		modelUsed = result.ModelUsed

		raw := extractArguments(result, target.FunctionName)
		trace.Attempts = attempt + 1
		trace.RawArguments = raw
		lastRaw = raw

		if valErr := target.Validate(json.RawMessage(raw)); valErr != nil {
			lastValErr = &ValidationError{TargetKey: target.Key, Raw: raw, Err: valErr}
			trace.ValidationError = valErr.Error()
			e.logger.Debug("extraction attempt failed validation",
				"target", target.Key, "attempt", attempt+1, "error", valErr)

			if attempt < maxAttempts-1 {
				convo = append(convo, providers.Message{
					Role:    "user",
					Content: repairMessage(target.FunctionName, raw, valErr),
				})
				continue
			}
			break
		}

		value, norm, normErr := target.Normalize(json.RawMessage(raw), ectx)
		if normErr != nil {
			return nil, fmt.Errorf("normalizing payload for target %q: %w", target.Key, normErr)
		}
		trace.ValidationError = ""
		trace.Normalization = norm
		e.logger.Info("extraction succeeded",
			"target", target.Key, "attempts", trace.Attempts,
			"raw_orders", norm.RawOrders, "dropped_orders", norm.DroppedOrders)
		return &Result{Value: value, ModelUsed: modelUsed, Trace: trace}, nil
	}

	// All attempts failed strict validation. Salvage what the last
	// output holds before giving up. The fallback only counts when items
	// survive normalization; salvaged JSON whose rows all fail per-item
	// validation is no better than no output at all.
	if salvaged := salvageJSON(lastRaw); salvaged != nil {
		value, norm, normErr := target.Normalize(salvaged, ectx)
		if normErr == nil && norm.ValidOrders > 0 {
			trace.FallbackUsed = true
			trace.Normalization = norm
			e.logger.Warn("extraction fell back to salvaged output",
				"target", target.Key, "attempts", trace.Attempts,
				"validation_error", trace.ValidationError)
			return &Result{Value: value, ModelUsed: modelUsed, Trace: trace}, nil
		}
	}

	return nil, &ExhaustedError{TargetKey: target.Key, Attempts: trace.Attempts, Err: lastValErr}
}

// extractArguments pulls the candidate JSON out of a chat result: the
// forced function's arguments when present, otherwise message content,
// otherwise an empty object so validation has something to reject.
func extractArguments(result *providers.ChatResult, functionName string) string {
	for _, tc := range result.ToolCalls {
		if tc.Function.Name == functionName && strings.TrimSpace(tc.Function.Arguments) != "" {
			return tc.Function.Arguments
		}
	}
	if len(result.ToolCalls) > 0 && strings.TrimSpace(result.ToolCalls[0].Function.Arguments) != "" {
		return result.ToolCalls[0].Function.Arguments
	}
	if strings.TrimSpace(result.Content) != "" {
		return result.Content
	}
	return "{}"
}

// repairMessage builds the synthetic user turn appended after a failed
// attempt.
func repairMessage(functionName, raw string, issue error) string {
	raw = strings.TrimSpace(raw)
	if len(raw) > 12000 {
		raw = raw[:12000] + "\n...[truncated]"
	}
	return fmt.Sprintf(`Your previous call to %s returned JSON that failed validation.

Invalid JSON:
%s

Validation error:
%v

Call %s again with corrected arguments. Fix only the invalid fields and keep everything that was already valid unchanged.`,
		functionName, raw, issue, functionName)
}

// salvageJSON best-effort parses the raw output. A top-level object is
// taken as-is; a top-level array contributes its first object element.
// Anything else is unsalvageable.
func salvageJSON(raw string) json.RawMessage {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	var parsed any
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil
	}

	switch v := parsed.(type) {
	case map[string]any:
		b, err := json.Marshal(v)
		if err != nil {
			return nil
		}
		return b
	case []any:
		if len(v) == 0 {
			return nil
		}
		first, ok := v[0].(map[string]any)
		if !ok {
			return nil
		}
		b, err := json.Marshal(first)
		if err != nil {
			return nil
		}
		return b
	default:
		return nil
	}
}


// Package extract runs schema-validated LLM tool-call extraction with a
// bounded repair loop. Callers register Targets describing what to
// extract; the Engine drives the conversation until the model produces a
// payload the target accepts, or salvages what it can from the last
// attempt.
package extract

import (
	"encoding/json"
)

// Extraction patterns. Currently only tool-call extraction with repair
// exists; the pattern travels in the trace so callers can tell modes
// apart if more are added.
const PatternToolCallRepair = "tool_call_repair"

// Context carries caller-supplied defaults into normalization, keyed by
// field-default name (e.g. "default_eintragender").
type Context map[string]string

// Get returns the value for key, or empty when absent.
func (c Context) Get(key string) string {
	if c == nil {
		return ""
	}
	return c[key]
}

// Normalization counts the outcome of per-item normalization.
type Normalization struct {
	RawOrders     int `json:"raw_orders"`
	ValidOrders   int `json:"valid_orders"`
	DroppedOrders int `json:"dropped_orders"`
}

// Target describes one extraction shape: the tool the model must call,
// the schema its arguments must satisfy, and the domain hooks that check
// and normalize the decoded payload.
type Target struct {
	// Key identifies the target in the registry.
	Key string
	// Pattern names the extraction mode, PatternToolCallRepair today.
	Pattern string
	// FunctionName is the tool function the model is forced to call.
	FunctionName string
	// Description is the tool description shown to the model.
	Description string
	// Schema is the JSON schema for the tool's arguments.
	Schema json.RawMessage

	// Validate checks raw candidate JSON strictly. Any error triggers a
	// repair attempt; the error text is fed back to the model, so it
	// should name the offending fields precisely.
	Validate func(raw json.RawMessage) error

	// Normalize decodes an accepted (or salvaged) payload into its final
	// domain value, applying defaults from the context and dropping
	// items that cannot be saved. It reports counts, never item errors.
	Normalize func(raw json.RawMessage, ectx Context) (any, Normalization, error)
}

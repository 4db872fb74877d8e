package extract

// Trace records what one extraction call did, for logging and for the
// diagnostics block of API responses.
type Trace struct {
	// Attempts is the number of chat calls made, including the first.
	Attempts int `json:"attempts"`
	// RawArguments is the candidate JSON from the last chat call.
	RawArguments string `json:"raw_arguments"`
	// TargetKey and Pattern identify what was extracted and how.
	TargetKey string `json:"target_key"`
	Pattern   string `json:"pattern"`
	// FallbackUsed is set when strict validation never passed and the
	// result was salvaged from the last raw output.
	FallbackUsed bool `json:"fallback_used"`
	// ValidationError is the last validation failure, empty on a clean pass.
	ValidationError string `json:"validation_error,omitempty"`
	// Normalization counts raw, surviving, and dropped items.
	Normalization Normalization `json:"normalization"`
}

// Result is a completed extraction: the normalized domain value plus its
// trace.
type Result struct {
	// Value is what the target's Normalize hook produced.
	Value any
	// ModelUsed is the provider-reported model identifier.
	ModelUsed string
	Trace     Trace
}

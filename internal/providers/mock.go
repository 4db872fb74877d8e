package providers

import (
	"context"
	"fmt"
	"sync"
	"time"
)

const MockClientName = "mock"

// MockClient is an LLMClient for testing. Responses are consumed in
// order, one per request; when the queue runs out the last response is
// repeated. Every request and its tools are captured for assertions.
type MockClient struct {
	// Configurable behavior
	Latency   time.Duration
	Responses []*ChatResult
	Err       error // Returned by every request when set

	mu       sync.Mutex
	requests []*ChatRequest
	tools    [][]Tool
	served   int
}

// NewMockClient creates a mock client with no scripted responses.
func NewMockClient() *MockClient {
	return &MockClient{}
}

// ScriptToolCall appends a response whose first tool call carries the
// given function name and arguments.
func (c *MockClient) ScriptToolCall(function, arguments string) *MockClient {
	result := &ChatResult{
		Success:   true,
		Provider:  MockClientName,
		ModelUsed: "mock-model",
	}
	tc := ToolCall{ID: fmt.Sprintf("mock-tool-call-%d", len(c.Responses)+1), Type: "function"}
	tc.Function.Name = function
	tc.Function.Arguments = arguments
	result.ToolCalls = []ToolCall{tc}
	c.Responses = append(c.Responses, result)
	return c
}

// ScriptContent appends a response with plain message content and no
// tool calls.
func (c *MockClient) ScriptContent(content string) *MockClient {
	c.Responses = append(c.Responses, &ChatResult{
		Success:   true,
		Provider:  MockClientName,
		ModelUsed: "mock-model",
		Content:   content,
	})
	return c
}

// Name returns the client identifier.
func (c *MockClient) Name() string {
	return MockClientName
}

// Chat sends a mock chat request.
func (c *MockClient) Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error) {
	return c.doRequest(ctx, req, nil)
}

// ChatWithTools sends a mock chat request with tools.
func (c *MockClient) ChatWithTools(ctx context.Context, req *ChatRequest, tools []Tool) (*ChatResult, error) {
	return c.doRequest(ctx, req, tools)
}

func (c *MockClient) doRequest(ctx context.Context, req *ChatRequest, tools []Tool) (*ChatResult, error) {
	if c.Latency > 0 {
		select {
		case <-time.After(c.Latency):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Capture a copy so later mutations by the caller are not observed.
	reqCopy := *req
	reqCopy.Messages = append([]Message(nil), req.Messages...)
	c.requests = append(c.requests, &reqCopy)
	c.tools = append(c.tools, append([]Tool(nil), tools...))

	if c.Err != nil {
		return nil, c.Err
	}
	if len(c.Responses) == 0 {
		return nil, fmt.Errorf("mock client has no scripted responses")
	}

	idx := c.served
	if idx >= len(c.Responses) {
		idx = len(c.Responses) - 1
	}
	c.served++
	resp := *c.Responses[idx]
	resp.RequestID = fmt.Sprintf("mock-%d", c.served)
	return &resp, nil
}

// Requests returns the captured requests in call order.
func (c *MockClient) Requests() []*ChatRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*ChatRequest(nil), c.requests...)
}

// Tools returns the tool sets passed to each request.
func (c *MockClient) Tools() [][]Tool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([][]Tool(nil), c.tools...)
}

// RequestCount returns the number of requests made.
func (c *MockClient) RequestCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.requests)
}

// Verify interface
var _ LLMClient = (*MockClient)(nil)

// MockTranscriber is a Transcriber for testing.
type MockTranscriber struct {
	TranscriberName string
	Text            string
	Err             error

	mu      sync.Mutex
	prompts []string
	audio   [][]byte
}

// Name returns the transcriber identifier.
func (t *MockTranscriber) Name() string {
	if t.TranscriberName == "" {
		return "mock"
	}
	return t.TranscriberName
}

// Transcribe returns the scripted text.
func (t *MockTranscriber) Transcribe(ctx context.Context, audio []byte, filename, prompt string) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.prompts = append(t.prompts, prompt)
	t.audio = append(t.audio, audio)
	if t.Err != nil {
		return "", t.Err
	}
	return t.Text, nil
}

// Prompts returns the captured transcription prompts.
func (t *MockTranscriber) Prompts() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.prompts...)
}

// Verify interface
var _ Transcriber = (*MockTranscriber)(nil)

package extract_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/brotwerk/intake/internal/extract"
	"github.com/brotwerk/intake/internal/extract/ordersv1"
	"github.com/brotwerk/intake/internal/orders"
	"github.com/brotwerk/intake/internal/providers"
)

func newTestEngine(t *testing.T, mock *providers.MockClient) *extract.Engine {
	t.Helper()
	reg := extract.NewRegistry()
	if err := ordersv1.Register(reg, orders.NewCatalog([]string{"Rustico", "Baguette"})); err != nil {
		t.Fatalf("register target: %v", err)
	}
	return extract.NewEngine(mock, reg, extract.EngineConfig{Model: "gpt-4o-mini"}, nil)
}

func openerMessages() []providers.Message {
	return []providers.Message{
		{Role: "system", Content: "Du erfasst Bestellungen."},
		{Role: "user", Content: "2 Rustico bitte"},
	}
}

func TestExtractSucceedsFirstAttempt(t *testing.T) {
	mock := providers.NewMockClient().
		ScriptToolCall(ordersv1.FunctionName, `{"orders":[{"Menge":2,"Produkt":"Rustico"}]}`)
	engine := newTestEngine(t, mock)

	result, err := engine.Extract(context.Background(), ordersv1.TargetKey, openerMessages(),
		extract.Context{ordersv1.DefaultEnteredByKey: "Anna"})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	if result.Trace.Attempts != 1 {
		t.Fatalf("attempts = %d, want 1", result.Trace.Attempts)
	}
	if result.Trace.FallbackUsed {
		t.Fatal("fallback flagged on clean pass")
	}
	payload := result.Value.(orders.Payload)
	if len(payload.Orders) != 1 || payload.Orders[0].EnteredBy != "Anna" {
		t.Fatalf("payload = %+v", payload)
	}

	// The request must pin the tool and carry the tool definition.
	req := mock.Requests()[0]
	if req.ToolChoice == nil || req.ToolChoice.Function.Name != ordersv1.FunctionName {
		t.Fatalf("tool_choice = %+v", req.ToolChoice)
	}
	tools := mock.Tools()[0]
	if len(tools) != 1 || tools[0].Function.Name != ordersv1.FunctionName {
		t.Fatalf("tools = %+v", tools)
	}
}

func TestExtractRepairsInvalidPayload(t *testing.T) {
	mock := providers.NewMockClient().
		ScriptToolCall(ordersv1.FunctionName, `{"orders":[{"Menge":0,"Produkt":"Rustico"}]}`).
		ScriptToolCall(ordersv1.FunctionName, `{"orders":[{"Menge":3,"Produkt":"Rustico"}]}`)
	engine := newTestEngine(t, mock)

	result, err := engine.Extract(context.Background(), ordersv1.TargetKey, openerMessages(), nil)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if result.Trace.Attempts != 2 {
		t.Fatalf("attempts = %d, want 2", result.Trace.Attempts)
	}
	payload := result.Value.(orders.Payload)
	if payload.Orders[0].Quantity != 3 {
		t.Fatalf("quantity = %d, want 3", payload.Orders[0].Quantity)
	}

	// Second request carries the synthetic repair turn with the invalid
	// JSON and keeps the original opener intact.
	second := mock.Requests()[1]
	if len(second.Messages) != 3 {
		t.Fatalf("second request has %d messages, want 3", len(second.Messages))
	}
	repair := second.Messages[2]
	if repair.Role != "user" {
		t.Fatalf("repair role = %q", repair.Role)
	}
	if !strings.Contains(repair.Content, `"Menge":0`) {
		t.Fatalf("repair message missing invalid JSON: %s", repair.Content)
	}
	if !strings.Contains(repair.Content, "Fix only the invalid fields") {
		t.Fatalf("repair message missing instruction: %s", repair.Content)
	}
}

func TestExtractFallbackSalvagesLastOutput(t *testing.T) {
	// Every attempt returns a top-level array, which strict validation
	// rejects. The salvage path takes the first element and normalizes
	// per item.
	bad := `[{"orders":[{"Menge":1,"Produkt":"Rustico"},{"Menge":0,"Produkt":"Rustico"}]}]`
	mock := providers.NewMockClient().ScriptToolCall(ordersv1.FunctionName, bad)
	engine := newTestEngine(t, mock)

	result, err := engine.Extract(context.Background(), ordersv1.TargetKey, openerMessages(), nil)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if !result.Trace.FallbackUsed {
		t.Fatal("fallback not flagged")
	}
	if result.Trace.Attempts != 3 {
		t.Fatalf("attempts = %d, want 3", result.Trace.Attempts)
	}
	if result.Trace.ValidationError == "" {
		t.Fatal("validation error missing from trace")
	}
	payload := result.Value.(orders.Payload)
	if len(payload.Orders) != 1 {
		t.Fatalf("got %d orders, want 1", len(payload.Orders))
	}
	norm := result.Trace.Normalization
	if norm.RawOrders != 2 || norm.ValidOrders != 1 || norm.DroppedOrders != 1 {
		t.Fatalf("normalization = %+v", norm)
	}
}

func TestExtractExhaustionWhenSalvagedItemsAllInvalid(t *testing.T) {
	// The last output parses fine, but every item fails per-item
	// validation. An empty salvage result must not masquerade as a
	// flagged success.
	mock := providers.NewMockClient().
		ScriptToolCall(ordersv1.FunctionName, `{"orders":[{"Menge":0,"Produkt":"Rustico"}]}`)
	engine := newTestEngine(t, mock)

	_, err := engine.Extract(context.Background(), ordersv1.TargetKey, openerMessages(), nil)
	if err == nil {
		t.Fatal("expected exhaustion error")
	}
	var exhausted *extract.ExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("error = %T (%v), want ExhaustedError", err, err)
	}
	if exhausted.Attempts != 3 {
		t.Fatalf("attempts = %d, want 3", exhausted.Attempts)
	}
}

func TestExtractExhaustionWhenNothingSalvageable(t *testing.T) {
	mock := providers.NewMockClient().ScriptToolCall(ordersv1.FunctionName, `{}`)
	engine := newTestEngine(t, mock)

	_, err := engine.Extract(context.Background(), ordersv1.TargetKey, openerMessages(), nil)
	if err == nil {
		t.Fatal("expected exhaustion error")
	}
	var exhausted *extract.ExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("error = %T (%v), want ExhaustedError", err, err)
	}
	if exhausted.Attempts != 3 {
		t.Fatalf("attempts = %d, want 3", exhausted.Attempts)
	}
	var valErr *extract.ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("cause is %T, want ValidationError", exhausted.Err)
	}
	if mock.RequestCount() != 3 {
		t.Fatalf("requests = %d, want 3", mock.RequestCount())
	}
}

func TestExtractUnknownTarget(t *testing.T) {
	engine := newTestEngine(t, providers.NewMockClient())
	_, err := engine.Extract(context.Background(), "nope", openerMessages(), nil)
	if !errors.Is(err, extract.ErrUnknownTarget) {
		t.Fatalf("error = %v, want ErrUnknownTarget", err)
	}
}

func TestExtractPropagatesTransportErrors(t *testing.T) {
	mock := providers.NewMockClient()
	mock.Err = fmt.Errorf("connection refused")
	engine := newTestEngine(t, mock)

	_, err := engine.Extract(context.Background(), ordersv1.TargetKey, openerMessages(), nil)
	if err == nil {
		t.Fatal("expected transport error")
	}
	var exhausted *extract.ExhaustedError
	if errors.As(err, &exhausted) {
		t.Fatal("transport error wrapped as exhaustion")
	}
	if mock.RequestCount() != 1 {
		t.Fatalf("requests = %d, want 1 (no engine-level retry)", mock.RequestCount())
	}
}

func TestExtractContentFallbackWhenNoToolCall(t *testing.T) {
	// Model answers in plain content instead of a tool call; the content
	// is still valid JSON and must be accepted.
	mock := providers.NewMockClient().
		ScriptContent(`{"orders":[{"Menge":1,"Produkt":"Baguette"}]}`)
	engine := newTestEngine(t, mock)

	result, err := engine.Extract(context.Background(), ordersv1.TargetKey, openerMessages(), nil)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	payload := result.Value.(orders.Payload)
	if len(payload.Orders) != 1 || payload.Orders[0].Product != "Baguette" {
		t.Fatalf("payload = %+v", payload)
	}
}

// Package ordersv1 registers the order-record extraction target: the
// tool schema the model must satisfy, strict validation for the repair
// loop, and per-item normalization of accepted payloads.
package ordersv1

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/brotwerk/intake/internal/extract"
	"github.com/brotwerk/intake/internal/orders"
)

const (
	// TargetKey identifies this target in the extraction registry.
	TargetKey = "orders.v1"
	// FunctionName is the tool the model is forced to call.
	FunctionName = "record_orders"

	// DefaultEnteredByKey is the context key for the Eintragender default.
	DefaultEnteredByKey = "default_eintragender"
)

const description = "Trage alle im Input gefundenen Bestellungen strukturiert ein. " +
	"Jede Bestellung wird eine eigene Zeile mit Produkt und Menge."

// buildSchema generates the tool-argument schema. The product enum is
// only emitted when a catalog is loaded, so an empty allow-list relaxes
// the constraint instead of rejecting everything.
func buildSchema(catalog *orders.Catalog) (json.RawMessage, error) {
	product := map[string]any{
		"type":        "string",
		"minLength":   1,
		"description": "Bestelltes Produkt, exakt wie in der Produktliste benannt.",
	}
	if !catalog.Empty() {
		product["enum"] = catalog.Products()
	}

	item := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"Notiz/Kunde": map[string]any{
				"type":        "string",
				"description": "Freitext zu Kunde oder Bestellung, leer wenn nichts vermerkt ist.",
			},
			"Abgeholt": map[string]any{
				"type":        "string",
				"enum":        []string{orders.PickedUpYes, orders.PickedUpNo},
				"description": "Ob die Bestellung bereits abgeholt wurde.",
			},
			"Datum": map[string]any{
				"type":        []string{"string", "null"},
				"description": "Abhol- oder Lieferdatum als ISO-8601, null wenn unbekannt.",
			},
			"Menge": map[string]any{
				"type":        "integer",
				"minimum":     1,
				"description": "Anzahl der bestellten Einheiten.",
			},
			"Produkt": product,
			"Eintragender": map[string]any{
				"type":        "string",
				"description": "Person, die die Bestellung aufgenommen hat.",
			},
			"Wohin": map[string]any{
				"type":        "string",
				"description": "Abhol- oder Lieferort.",
			},
			"Zahlung": map[string]any{
				"type": "string",
				"enum": []string{
					orders.PaymentOnSite,
					orders.PaymentOnline,
					orders.PaymentInvoice,
					orders.PaymentAlreadyPaid,
					orders.PaymentUnclear,
				},
				"description": "Zahlungsart der Bestellung.",
			},
		},
		"required":             []string{"Menge", "Produkt"},
		"additionalProperties": false,
	}

	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"orders": map[string]any{
				"type":        "array",
				"items":       item,
				"description": "Alle gefundenen Bestellungen, eine pro Produkt und Menge.",
			},
		},
		"required":             []string{"orders"},
		"additionalProperties": false,
	}

	b, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("marshaling orders schema: %w", err)
	}
	return b, nil
}

// NewTarget builds the extraction target for the given product catalog.
func NewTarget(catalog *orders.Catalog) (extract.Target, error) {
	schemaRaw, err := buildSchema(catalog)
	if err != nil {
		return extract.Target{}, err
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("orders.json", bytes.NewReader(schemaRaw)); err != nil {
		return extract.Target{}, fmt.Errorf("loading orders schema: %w", err)
	}
	compiled, err := compiler.Compile("orders.json")
	if err != nil {
		return extract.Target{}, fmt.Errorf("compiling orders schema: %w", err)
	}

	return extract.Target{
		Key:          TargetKey,
		Pattern:      extract.PatternToolCallRepair,
		FunctionName: FunctionName,
		Description:  description,
		Schema:       schemaRaw,
		Validate: func(raw json.RawMessage) error {
			return validate(raw, compiled)
		},
		Normalize: func(raw json.RawMessage, ectx extract.Context) (any, extract.Normalization, error) {
			return normalize(raw, ectx, catalog)
		},
	}, nil
}

// Register builds the target and adds it to the registry.
func Register(reg *extract.Registry, catalog *orders.Catalog) error {
	target, err := NewTarget(catalog)
	if err != nil {
		return err
	}
	return reg.Register(target)
}

// validate runs the strict, repair-triggering check: decode, coerce
// field values (synonyms, date parsing, defaults), then hold the result
// against the generated schema. Coercion first means the model is only
// asked to repair what normalization genuinely cannot fix.
func validate(raw json.RawMessage, compiled *jsonschema.Schema) error {
	var payload orders.Payload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("payload is not a valid orders object: %w", err)
	}
	for i := range payload.Orders {
		payload.Orders[i].Coerce()
	}

	coerced, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("re-encoding coerced payload: %w", err)
	}
	var doc any
	if err := json.Unmarshal(coerced, &doc); err != nil {
		return fmt.Errorf("decoding coerced payload: %w", err)
	}
	if err := compiled.Validate(doc); err != nil {
		return err
	}
	return nil
}

// normalize decodes an accepted or salvaged payload and runs per-item
// normalization. Salvaged payloads may hold items that no longer decode;
// those count as dropped rather than failing the whole call.
func normalize(raw json.RawMessage, ectx extract.Context, catalog *orders.Catalog) (any, extract.Normalization, error) {
	payload, decodeDropped := decodePayload(raw)

	normalized, report := orders.Normalize(payload, ectx.Get(DefaultEnteredByKey), catalog)
	norm := extract.Normalization{
		RawOrders:     report.RawOrders + decodeDropped,
		ValidOrders:   report.ValidOrders,
		DroppedOrders: report.DroppedOrders + decodeDropped,
	}
	return normalized, norm, nil
}

// decodePayload decodes leniently: a clean payload decodes in one step;
// otherwise items are decoded one by one and undecodable ones dropped.
func decodePayload(raw json.RawMessage) (orders.Payload, int) {
	var payload orders.Payload
	if err := json.Unmarshal(raw, &payload); err == nil {
		return payload, 0
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return orders.Payload{}, 0
	}
	itemsRaw, ok := envelope["orders"]
	if !ok {
		return orders.Payload{}, 0
	}
	var elements []json.RawMessage
	if err := json.Unmarshal(itemsRaw, &elements); err != nil {
		return orders.Payload{}, 0
	}

	dropped := 0
	out := orders.Payload{}
	for _, el := range elements {
		var item orders.Item
		if err := json.Unmarshal(el, &item); err != nil {
			dropped++
			continue
		}
		out.Orders = append(out.Orders, item)
	}
	return out, dropped
}

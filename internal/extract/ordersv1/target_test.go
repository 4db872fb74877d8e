package ordersv1

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/brotwerk/intake/internal/extract"
	"github.com/brotwerk/intake/internal/orders"
)

func newTestTarget(t *testing.T, products ...string) extract.Target {
	t.Helper()
	target, err := NewTarget(orders.NewCatalog(products))
	if err != nil {
		t.Fatalf("NewTarget: %v", err)
	}
	return target
}

func TestValidateAcceptsCoercibleValues(t *testing.T) {
	target := newTestTarget(t, "Rustico")

	// Raw values that only pass after coercion: German pickup flag,
	// free-text payment synonym, short date.
	raw := `{"orders":[{"Abgeholt":"ja","Zahlung":"auf Rechnung","Datum":"24.12.","Menge":2,"Produkt":"Rustico"}]}`
	if err := target.Validate(json.RawMessage(raw)); err != nil {
		t.Fatalf("coercible payload rejected: %v", err)
	}
}

func TestValidateRejectsZeroQuantity(t *testing.T) {
	target := newTestTarget(t, "Rustico")
	raw := `{"orders":[{"Menge":0,"Produkt":"Rustico"}]}`
	err := target.Validate(json.RawMessage(raw))
	if err == nil {
		t.Fatal("quantity 0 accepted")
	}
}

func TestValidateRejectsUnknownPayment(t *testing.T) {
	target := newTestTarget(t, "Rustico")
	// "Bar" is not a synonym; it passes through coercion and must then
	// fail the enum.
	raw := `{"orders":[{"Menge":1,"Produkt":"Rustico","Zahlung":"Bar"}]}`
	if err := target.Validate(json.RawMessage(raw)); err == nil {
		t.Fatal("unknown payment accepted")
	}
}

func TestValidateRejectsOffCatalogProduct(t *testing.T) {
	target := newTestTarget(t, "Rustico")
	raw := `{"orders":[{"Menge":1,"Produkt":"Croissant"}]}`
	if err := target.Validate(json.RawMessage(raw)); err == nil {
		t.Fatal("off-catalog product accepted")
	}

	// Without a catalog the product enum is relaxed.
	open := newTestTarget(t)
	if err := open.Validate(json.RawMessage(raw)); err != nil {
		t.Fatalf("product rejected without catalog: %v", err)
	}
}

func TestValidateRejectsNonObjectPayload(t *testing.T) {
	target := newTestTarget(t)
	for _, raw := range []string{`[]`, `"text"`, `{}`} {
		if err := target.Validate(json.RawMessage(raw)); err == nil {
			t.Fatalf("payload %s accepted", raw)
		}
	}
}

func productSchema(t *testing.T, target extract.Target) map[string]any {
	t.Helper()
	var doc map[string]any
	if err := json.Unmarshal(target.Schema, &doc); err != nil {
		t.Fatalf("schema does not parse: %v", err)
	}
	ordersProp := doc["properties"].(map[string]any)["orders"].(map[string]any)
	items := ordersProp["items"].(map[string]any)
	return items["properties"].(map[string]any)["Produkt"].(map[string]any)
}

func TestSchemaCarriesProductEnum(t *testing.T) {
	target := newTestTarget(t, "Rustico", "Baguette")
	if !strings.Contains(string(target.Schema), `"enum":["Rustico","Baguette"]`) {
		t.Fatalf("schema missing product enum: %s", target.Schema)
	}

	open := newTestTarget(t)
	if _, hasEnum := productSchema(t, open)["enum"]; hasEnum {
		t.Fatal("schema has product enum without catalog")
	}
}

func TestNormalizeInjectsDefaultAndCounts(t *testing.T) {
	target := newTestTarget(t, "Rustico")

	raw := `{"orders":[
		{"Menge":1,"Produkt":"Rustico"},
		{"Menge":0,"Produkt":"Rustico"}
	]}`
	value, norm, err := target.Normalize(json.RawMessage(raw), extract.Context{DefaultEnteredByKey: "Anna"})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	payload, ok := value.(orders.Payload)
	if !ok {
		t.Fatalf("value is %T, want orders.Payload", value)
	}
	if len(payload.Orders) != 1 {
		t.Fatalf("got %d orders, want 1", len(payload.Orders))
	}
	if payload.Orders[0].EnteredBy != "Anna" {
		t.Fatalf("Eintragender = %q", payload.Orders[0].EnteredBy)
	}
	if norm.RawOrders != 2 || norm.ValidOrders != 1 || norm.DroppedOrders != 1 {
		t.Fatalf("normalization = %+v", norm)
	}
}

func TestNormalizeDropsUndecodableItems(t *testing.T) {
	target := newTestTarget(t, "Rustico")

	raw := `{"orders":[
		{"Menge":1,"Produkt":"Rustico"},
		{"Menge":"viele","Produkt":"Rustico"}
	]}`
	_, norm, err := target.Normalize(json.RawMessage(raw), nil)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if norm.RawOrders != 2 || norm.ValidOrders != 1 || norm.DroppedOrders != 1 {
		t.Fatalf("normalization = %+v", norm)
	}
}

// Package orders defines the canonical order record shape and the
// normalization rules applied to LLM-extracted payloads before they are
// handed to callers or the downstream order store.
//
// The JSON field names are the human-facing aliases the back office uses
// ("Produkt", "Menge", ...). They are the wire contract for both the LLM
// tool schema and the HTTP API, so internal identifiers never leak out.
package orders

// Pickup states.
const (
	PickedUpYes = "Yes"
	PickedUpNo  = "No"
)

// Canonical payment methods.
const (
	PaymentOnSite      = "OnSite"
	PaymentOnline      = "Online"
	PaymentInvoice     = "Invoice"
	PaymentAlreadyPaid = "AlreadyPaid"
	PaymentUnclear     = "Unclear"
)

// DefaultDestination is applied when an order names no pickup/delivery place.
const DefaultDestination = "Wieblingen"

// Item is one extracted order line.
//
// Date is a pointer so an absent or unparseable date marshals as null
// rather than an empty string; free-text fields use omitempty instead.
type Item struct {
	// Note holds free text about the order or customer.
	Note string `json:"Notiz/Kunde,omitempty"`
	// PickedUp is "Yes" or "No" after normalization.
	PickedUp string `json:"Abgeholt"`
	// Date is an ISO-8601 date-time string, or nil when unknown.
	Date *string `json:"Datum"`
	// Quantity is the number of units, at least 1.
	Quantity int `json:"Menge"`
	// Product must match the product catalog when one is loaded.
	Product string `json:"Produkt"`
	// EnteredBy is the person who recorded the order.
	EnteredBy string `json:"Eintragender,omitempty"`
	// Destination is the pickup or delivery place.
	Destination string `json:"Wohin"`
	// Payment is one of the canonical payment methods. Unrecognized
	// free-text values are passed through for downstream inspection.
	Payment string `json:"Zahlung"`
}

// Payload is the ordered list of items produced by one extraction call.
// It is constructed fresh per call and never persisted here.
type Payload struct {
	Orders []Item `json:"orders"`
}

// FieldNames returns the wire aliases in canonical column order.
func FieldNames() []string {
	return []string{
		"Notiz/Kunde",
		"Abgeholt",
		"Datum",
		"Menge",
		"Produkt",
		"Eintragender",
		"Wohin",
		"Zahlung",
	}
}

// TemplateItem returns an item with every field at its documented default.
// Caller adapters use it to build the single-row dummy response when
// extraction is unavailable.
func TemplateItem() Item {
	return Item{
		PickedUp:    PickedUpNo,
		Quantity:    1,
		Destination: DefaultDestination,
		Payment:     PaymentOnSite,
	}
}

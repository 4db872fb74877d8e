package intake

import (
	"encoding/json"
	"fmt"

	"github.com/brotwerk/intake/internal/orders"
)

// ExtractResponse is the wire shape every extraction endpoint returns.
// Rows are the stringified spreadsheet view of Orders; Columns fixes the
// column order for clients that render tables.
type ExtractResponse struct {
	RequestID    string              `json:"request_id"`
	Status       string              `json:"status"`
	Columns      []string            `json:"columns"`
	Rows         []map[string]string `json:"rows"`
	Orders       []orders.Item       `json:"orders"`
	Warnings     []string            `json:"warnings"`
	ModelVersion string              `json:"model_version"`
}

// Metadata is the caller-supplied context accompanying an upload.
type Metadata struct {
	DefaultEnteredBy string `json:"default_eintragender"`
}

// stringify renders a decoded JSON value for a spreadsheet cell.
func stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return fmt.Sprintf("%t", v)
	case float64:
		// JSON numbers decode as float64; quantities are integral.
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%g", v)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// ordersToRows projects items onto string-valued rows in column order.
func ordersToRows(items []orders.Item, columns []string) []map[string]string {
	rows := make([]map[string]string, 0, len(items))
	for _, item := range items {
		encoded, err := json.Marshal(item)
		if err != nil {
			continue
		}
		var fields map[string]any
		if err := json.Unmarshal(encoded, &fields); err != nil {
			continue
		}
		row := make(map[string]string, len(columns))
		for _, col := range columns {
			row[col] = stringify(fields[col])
		}
		rows = append(rows, row)
	}
	return rows
}

// newResponse assembles a successful response from normalized orders.
func newResponse(requestID string, items []orders.Item, warnings []string, modelVersion string) *ExtractResponse {
	columns := orders.FieldNames()
	if warnings == nil {
		warnings = []string{}
	}
	if items == nil {
		items = []orders.Item{}
	}
	return &ExtractResponse{
		RequestID:    requestID,
		Status:       "ok",
		Columns:      columns,
		Rows:         ordersToRows(items, columns),
		Orders:       items,
		Warnings:     warnings,
		ModelVersion: modelVersion,
	}
}

// dummyResponse is the single-row placeholder returned when extraction
// cannot run or finds nothing. The HTTP boundary stays 200; the warning
// tells the caller why the row is a template.
func dummyResponse(requestID, defaultEnteredBy, warning, modelVersion string) *ExtractResponse {
	item := orders.TemplateItem()
	if defaultEnteredBy != "" {
		item.EnteredBy = defaultEnteredBy
	}
	if modelVersion == "" {
		modelVersion = "placeholder-v1"
	}
	return newResponse(requestID, []orders.Item{item}, []string{warning}, modelVersion)
}

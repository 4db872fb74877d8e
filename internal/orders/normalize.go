package orders

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// paymentSynonyms maps lower-cased free-text payment phrases onto the
// canonical labels. Values with no entry pass through unchanged so the
// enum constraint decides whether to accept them.
var paymentSynonyms = map[string]string{
	"vor ort":         PaymentOnSite,
	"bar vor ort":     PaymentOnSite,
	"onsite":          PaymentOnSite,
	"online":          PaymentOnline,
	"rechnung":        PaymentInvoice,
	"auf rechnung":    PaymentInvoice,
	"invoice":         PaymentInvoice,
	"bezahlt":         PaymentAlreadyPaid,
	"schon bezahlt":   PaymentAlreadyPaid,
	"bereits bezahlt": PaymentAlreadyPaid,
	"alreadypaid":     PaymentAlreadyPaid,
	"unklar":          PaymentUnclear,
	"unclear":         PaymentUnclear,
}

var pickupSynonyms = map[string]string{
	"ja":   PickedUpYes,
	"yes":  PickedUpYes,
	"nein": PickedUpNo,
	"no":   PickedUpNo,
}

// Date-time layouts accepted from human input, in priority order after
// RFC 3339. Date-only layouts normalize to midnight.
var (
	dateTimeLayouts = []string{
		"2006-01-02T15:04:05",
		"02.01.2006 15:04:05",
		"02.01.2006 15:04",
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
		"02/01/2006 15:04",
		"02.01.06 15:04",
	}
	dateOnlyLayouts = []string{
		"2006-01-02",
		"02.01.2006",
		"02/01/2006",
		"02.01.06",
	}
)

// isoLayout is the normalized output format for dates.
const isoLayout = "2006-01-02T15:04:05"

// NormalizeDate parses a human-entered date string and returns it in
// ISO-8601 form, or nil when the string matches no known format.
// Malformed dates are dropped, never fatal.
func NormalizeDate(s string) *string {
	return NormalizeDateAt(s, time.Now())
}

// NormalizeDateAt is NormalizeDate with an explicit reference time, used
// to resolve the year of short "D.M." inputs.
func NormalizeDateAt(s string, now time.Time) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	if t, err := time.Parse(time.RFC3339, s); err == nil {
		v := t.Format(isoLayout)
		return &v
	}
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			v := t.Format(isoLayout)
			return &v
		}
	}
	for _, layout := range dateOnlyLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			v := t.Format(isoLayout)
			return &v
		}
	}

	// Short "D.M." form: day and month only, current year implied.
	if m := shortDatePattern.FindStringSubmatch(s); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		if day >= 1 && day <= 31 && month >= 1 && month <= 12 {
			t := time.Date(now.Year(), time.Month(month), day, 0, 0, 0, 0, time.UTC)
			// Reject rollovers like 31.2.
			if t.Day() == day && int(t.Month()) == month {
				v := t.Format(isoLayout)
				return &v
			}
		}
	}

	return nil
}

var shortDatePattern = regexp.MustCompile(`^(\d{1,2})\.(\d{1,2})\.$`)

// NormalizePayment maps free-text payment values onto the canonical enum.
// Unmatched values are returned trimmed but otherwise unchanged.
func NormalizePayment(s string) string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return PaymentOnSite
	}
	if canonical, ok := paymentSynonyms[strings.ToLower(trimmed)]; ok {
		return canonical
	}
	return trimmed
}

// NormalizePickup maps free-text pickup values onto Yes/No.
func NormalizePickup(s string) string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return PickedUpNo
	}
	if canonical, ok := pickupSynonyms[strings.ToLower(trimmed)]; ok {
		return canonical
	}
	return trimmed
}

// Coerce applies all field-level normalization to an item in place:
// blank-string coercion, enum synonym mapping, date parsing, and the
// destination default. It never fails; constraint checking is ValidateItem's job.
func (i *Item) Coerce() {
	i.coerceAt(time.Now())
}

func (i *Item) coerceAt(now time.Time) {
	i.Note = strings.TrimSpace(i.Note)
	i.Product = strings.TrimSpace(i.Product)
	i.EnteredBy = strings.TrimSpace(i.EnteredBy)

	i.Destination = strings.TrimSpace(i.Destination)
	if i.Destination == "" {
		i.Destination = DefaultDestination
	}

	i.PickedUp = NormalizePickup(i.PickedUp)
	i.Payment = NormalizePayment(i.Payment)

	if i.Date != nil {
		i.Date = NormalizeDateAt(*i.Date, now)
	}
}

// ValidateItem checks the constraints every surviving item must satisfy.
// The item is expected to be coerced already.
func ValidateItem(i Item, catalog *Catalog) error {
	if i.Quantity < 1 {
		return fmt.Errorf("Menge must be at least 1, got %d", i.Quantity)
	}
	if i.Product == "" {
		return fmt.Errorf("Produkt must not be empty")
	}
	if !catalog.Empty() && !catalog.Contains(i.Product) {
		return fmt.Errorf("Produkt %q is not in the product catalog", i.Product)
	}
	if i.PickedUp != PickedUpYes && i.PickedUp != PickedUpNo {
		return fmt.Errorf("Abgeholt must be %q or %q, got %q", PickedUpYes, PickedUpNo, i.PickedUp)
	}
	switch i.Payment {
	case PaymentOnSite, PaymentOnline, PaymentInvoice, PaymentAlreadyPaid, PaymentUnclear:
	default:
		return fmt.Errorf("Zahlung %q is not a known payment method", i.Payment)
	}
	return nil
}

// Report counts the outcome of per-item normalization for the extraction trace.
type Report struct {
	RawOrders     int `json:"raw_orders"`
	ValidOrders   int `json:"valid_orders"`
	DroppedOrders int `json:"dropped_orders"`
}

// Normalize coerces and validates every item in the payload, injecting
// defaultEnteredBy into items that lack an Eintragender. Items that fail
// validation are dropped silently; the report carries the counts so
// callers can warn without blocking on partial extraction quality.
func Normalize(p Payload, defaultEnteredBy string, catalog *Catalog) (Payload, Report) {
	defaultEnteredBy = strings.TrimSpace(defaultEnteredBy)

	report := Report{RawOrders: len(p.Orders)}
	out := Payload{Orders: make([]Item, 0, len(p.Orders))}
	for _, item := range p.Orders {
		if strings.TrimSpace(item.EnteredBy) == "" && defaultEnteredBy != "" {
			item.EnteredBy = defaultEnteredBy
		}
		item.Coerce()
		if err := ValidateItem(item, catalog); err != nil {
			report.DroppedOrders++
			continue
		}
		out.Orders = append(out.Orders, item)
	}
	report.ValidOrders = len(out.Orders)
	return out, report
}

package orders

import (
	"testing"
	"time"
)

var testNow = time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

func strptr(s string) *string { return &s }

func TestNormalizeDateFormats(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"2025-12-24T14:30:00Z", "2025-12-24T14:30:00"},
		{"2025-12-24T14:30:00", "2025-12-24T14:30:00"},
		{"24.12.2025 14:30", "2025-12-24T14:30:00"},
		{"24.12.2025 14:30:15", "2025-12-24T14:30:15"},
		{"2025-12-24 14:30", "2025-12-24T14:30:00"},
		{"24/12/2025 14:30", "2025-12-24T14:30:00"},
		{"24.12.25 14:30", "2025-12-24T14:30:00"},
		{"2025-12-24", "2025-12-24T00:00:00"},
		{"24.12.2025", "2025-12-24T00:00:00"},
		{"24/12/2025", "2025-12-24T00:00:00"},
		{"24.12.25", "2025-12-24T00:00:00"},
		{"  24.12.2025  ", "2025-12-24T00:00:00"},
	}
	for _, tc := range cases {
		got := NormalizeDateAt(tc.in, testNow)
		if got == nil {
			t.Fatalf("NormalizeDateAt(%q) = nil, want %q", tc.in, tc.want)
		}
		if *got != tc.want {
			t.Fatalf("NormalizeDateAt(%q) = %q, want %q", tc.in, *got, tc.want)
		}
	}
}

func TestNormalizeDateShortForm(t *testing.T) {
	got := NormalizeDateAt("24.12.", testNow)
	if got == nil || *got != "2025-12-24T00:00:00" {
		t.Fatalf("short form: got %v, want 2025-12-24T00:00:00", got)
	}
	got = NormalizeDateAt("5.3.", testNow)
	if got == nil || *got != "2025-03-05T00:00:00" {
		t.Fatalf("short form single digits: got %v, want 2025-03-05T00:00:00", got)
	}
}

func TestNormalizeDateUnparseable(t *testing.T) {
	for _, in := range []string{"", "   ", "morgen", "31.2.", "99.99.", "12-24", "1.2.2025x"} {
		if got := NormalizeDateAt(in, testNow); got != nil {
			t.Fatalf("NormalizeDateAt(%q) = %q, want nil", in, *got)
		}
	}
}

func TestNormalizePayment(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"", PaymentOnSite},
		{"  ", PaymentOnSite},
		{"vor ort", PaymentOnSite},
		{"Vor Ort", PaymentOnSite},
		{"bar vor ort", PaymentOnSite},
		{"Rechnung", PaymentInvoice},
		{"auf Rechnung", PaymentInvoice},
		{"bezahlt", PaymentAlreadyPaid},
		{"schon bezahlt", PaymentAlreadyPaid},
		{"bereits bezahlt", PaymentAlreadyPaid},
		{"unklar", PaymentUnclear},
		{"Online", PaymentOnline},
		{"OnSite", PaymentOnSite},
		// Unknown values pass through so validation can reject them.
		{"Bar", "Bar"},
	}
	for _, tc := range cases {
		if got := NormalizePayment(tc.in); got != tc.want {
			t.Fatalf("NormalizePayment(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizePickup(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"", PickedUpNo},
		{"ja", PickedUpYes},
		{"Ja", PickedUpYes},
		{"nein", PickedUpNo},
		{"Yes", PickedUpYes},
		{"No", PickedUpNo},
		{"vielleicht", "vielleicht"},
	}
	for _, tc := range cases {
		if got := NormalizePickup(tc.in); got != tc.want {
			t.Fatalf("NormalizePickup(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCoerceDefaults(t *testing.T) {
	item := Item{Quantity: 2, Product: "  Rustico  ", Date: strptr("24.12.")}
	item.coerceAt(testNow)

	if item.Product != "Rustico" {
		t.Fatalf("product not trimmed: %q", item.Product)
	}
	if item.Destination != DefaultDestination {
		t.Fatalf("destination = %q, want %q", item.Destination, DefaultDestination)
	}
	if item.PickedUp != PickedUpNo {
		t.Fatalf("pickedUp = %q, want %q", item.PickedUp, PickedUpNo)
	}
	if item.Payment != PaymentOnSite {
		t.Fatalf("payment = %q, want %q", item.Payment, PaymentOnSite)
	}
	if item.Date == nil || *item.Date != "2025-12-24T00:00:00" {
		t.Fatalf("date = %v, want 2025-12-24T00:00:00", item.Date)
	}
}

func TestCoerceDropsUnparseableDate(t *testing.T) {
	item := Item{Quantity: 1, Product: "Baguette", Date: strptr("irgendwann")}
	item.coerceAt(testNow)
	if item.Date != nil {
		t.Fatalf("unparseable date should coerce to nil, got %q", *item.Date)
	}
}

func TestValidateItem(t *testing.T) {
	catalog := NewCatalog([]string{"Rustico", "Baguette"})

	valid := Item{
		PickedUp: PickedUpNo, Quantity: 1, Product: "Rustico",
		Destination: DefaultDestination, Payment: PaymentOnSite,
	}
	if err := ValidateItem(valid, catalog); err != nil {
		t.Fatalf("valid item rejected: %v", err)
	}

	zero := valid
	zero.Quantity = 0
	if err := ValidateItem(zero, catalog); err == nil {
		t.Fatal("quantity 0 accepted")
	}

	noProduct := valid
	noProduct.Product = ""
	if err := ValidateItem(noProduct, catalog); err == nil {
		t.Fatal("empty product accepted")
	}

	offList := valid
	offList.Product = "Croissant"
	if err := ValidateItem(offList, catalog); err == nil {
		t.Fatal("off-list product accepted")
	}
	// An empty catalog disables the membership constraint.
	if err := ValidateItem(offList, NewCatalog(nil)); err != nil {
		t.Fatalf("empty catalog should skip membership check: %v", err)
	}

	badPayment := valid
	badPayment.Payment = "Bar"
	if err := ValidateItem(badPayment, catalog); err == nil {
		t.Fatal("unknown payment accepted")
	}

	badPickup := valid
	badPickup.PickedUp = "vielleicht"
	if err := ValidateItem(badPickup, catalog); err == nil {
		t.Fatal("unknown pickup state accepted")
	}
}

func TestNormalizeInjectsDefaultEnteredBy(t *testing.T) {
	catalog := NewCatalog([]string{"Rustico"})
	payload := Payload{Orders: []Item{
		{Quantity: 1, Product: "Rustico"},
		{Quantity: 2, Product: "Rustico", EnteredBy: "Ben"},
	}}

	out, report := Normalize(payload, "Anna", catalog)
	if report.RawOrders != 2 || report.ValidOrders != 2 || report.DroppedOrders != 0 {
		t.Fatalf("report = %+v, want 2 raw / 2 valid / 0 dropped", report)
	}
	if out.Orders[0].EnteredBy != "Anna" {
		t.Fatalf("missing Eintragender not filled: %q", out.Orders[0].EnteredBy)
	}
	if out.Orders[1].EnteredBy != "Ben" {
		t.Fatalf("existing Eintragender overwritten: %q", out.Orders[1].EnteredBy)
	}
}

func TestNormalizeDropsInvalidItems(t *testing.T) {
	catalog := NewCatalog([]string{"Rustico"})
	payload := Payload{Orders: []Item{
		{Quantity: 1, Product: "Rustico"},
		{Quantity: 0, Product: "Rustico"},
		{Quantity: 3, Product: "Torte"},
	}}

	out, report := Normalize(payload, "", catalog)
	if len(out.Orders) != 1 {
		t.Fatalf("got %d surviving orders, want 1", len(out.Orders))
	}
	if report.RawOrders != 3 || report.ValidOrders != 1 || report.DroppedOrders != 2 {
		t.Fatalf("report = %+v, want 3 raw / 1 valid / 2 dropped", report)
	}
}

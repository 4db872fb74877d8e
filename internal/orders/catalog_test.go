package orders

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeWorkbook(t *testing.T, header string, values []string) string {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	if err := f.SetCellValue(sheet, "A1", header); err != nil {
		t.Fatalf("set header: %v", err)
	}
	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			t.Fatalf("set cell: %v", err)
		}
	}
	path := filepath.Join(t.TempDir(), "products.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	return path
}

func TestLoadCatalog(t *testing.T) {
	path := writeWorkbook(t, "Produktbezeichnung",
		[]string{"Rustico", "  Baguette  ", "", "Rustico", "Zimtknoten"})

	c := LoadCatalog(path, discardLogger())
	if c.Empty() {
		t.Fatal("catalog empty after load")
	}
	got := c.Products()
	want := []string{"Rustico", "Baguette", "Zimtknoten"}
	if len(got) != len(want) {
		t.Fatalf("products = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("products = %v, want %v", got, want)
		}
	}
	if !c.Contains("Baguette") || c.Contains("Croissant") {
		t.Fatal("membership check wrong")
	}
}

func TestLoadCatalogMissingFile(t *testing.T) {
	c := LoadCatalog(filepath.Join(t.TempDir(), "nope.xlsx"), discardLogger())
	if !c.Empty() {
		t.Fatal("missing file should yield empty catalog")
	}
}

func TestLoadCatalogMissingColumn(t *testing.T) {
	path := writeWorkbook(t, "Artikel", []string{"Rustico"})
	c := LoadCatalog(path, discardLogger())
	if !c.Empty() {
		t.Fatal("missing column should yield empty catalog")
	}
}

func TestLoadCatalogEmptyPath(t *testing.T) {
	if c := LoadCatalog("", discardLogger()); !c.Empty() {
		t.Fatal("empty path should yield empty catalog")
	}
}

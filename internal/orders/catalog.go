package orders

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"
)

// productColumn is the header of the allow-list column in the product workbook.
const productColumn = "Produktbezeichnung"

// Catalog is the product allow-list. An empty catalog disables the
// product-membership constraint so the service stays usable before the
// back office has provided a workbook.
type Catalog struct {
	products []string
	set      map[string]struct{}
}

// NewCatalog builds a catalog from a product list, trimming blanks and
// dropping duplicates while preserving order.
func NewCatalog(products []string) *Catalog {
	c := &Catalog{set: make(map[string]struct{}, len(products))}
	for _, p := range products {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, seen := c.set[p]; seen {
			continue
		}
		c.set[p] = struct{}{}
		c.products = append(c.products, p)
	}
	return c
}

// Empty reports whether the catalog carries no products.
func (c *Catalog) Empty() bool {
	return c == nil || len(c.products) == 0
}

// Contains reports whether the product is in the allow-list.
func (c *Catalog) Contains(product string) bool {
	if c == nil {
		return false
	}
	_, ok := c.set[product]
	return ok
}

// Products returns the allow-list in workbook order.
func (c *Catalog) Products() []string {
	if c == nil {
		return nil
	}
	out := make([]string, len(c.products))
	copy(out, c.products)
	return out
}

// LoadCatalog reads the product allow-list from an XLSX workbook. The
// workbook's first sheet must carry a "Produktbezeichnung" column; every
// non-empty cell below the header becomes a product. A missing file or
// missing column yields an empty catalog, logged but never fatal, so a
// misplaced workbook degrades the constraint instead of the service.
func LoadCatalog(path string, logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.Default()
	}
	if path == "" {
		return NewCatalog(nil)
	}
	if _, err := os.Stat(path); err != nil {
		logger.Warn("product list not found, catalog constraint disabled", "path", path)
		return NewCatalog(nil)
	}

	products, err := readProductColumn(path)
	if err != nil {
		logger.Warn("failed to read product list, catalog constraint disabled",
			"path", path, "error", err)
		return NewCatalog(nil)
	}

	c := NewCatalog(products)
	logger.Info("product catalog loaded", "path", path, "products", len(c.products))
	return c
}

func readProductColumn(path string) ([]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", sheets[0])
	}

	col := -1
	for i, header := range rows[0] {
		if strings.EqualFold(strings.TrimSpace(header), productColumn) {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, fmt.Errorf("column %q not found in sheet %q", productColumn, sheets[0])
	}

	var products []string
	for _, row := range rows[1:] {
		if col >= len(row) {
			continue
		}
		products = append(products, row[col])
	}
	return products, nil
}

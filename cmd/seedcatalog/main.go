// Command seedcatalog converts a product catalog Excel file into a SQL seed
// file for the products table.
// Usage: go run ./cmd/seedcatalog <business-id> [catalog.xlsx]
// Output: db/seeds/catalog.sql
//
// Expected sheet columns, data starting at row 2:
// A=SKU B=Name C=Brand D=Category E=Unit F=PricingMode G=GSTRate H=MRP
// I=BasePrice J=SellingPrice K=SellingIncludesGST(y/n)
package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

const batchSize = 500

type catalogEntry struct {
	sku                string
	name               string
	brand              string
	category           string
	unit               string
	pricingMode        string
	gstRate            float64
	mrp                float64
	basePrice          float64
	sellingPrice       float64
	sellingIncludesGST bool
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	if len(os.Args) < 2 {
		return fmt.Errorf("usage: seedcatalog <business-id> [catalog.xlsx]")
	}
	businessID, err := uuid.Parse(os.Args[1])
	if err != nil {
		return fmt.Errorf("invalid business id: %w", err)
	}

	xlsxPath := "catalog.xlsx"
	if len(os.Args) > 2 {
		xlsxPath = os.Args[2]
	}
	outPath := "db/seeds/catalog.sql"

	f, err := excelize.OpenFile(xlsxPath)
	if err != nil {
		return fmt.Errorf("open Excel file: %w", err)
	}
	defer func() { _ = f.Close() }()

	entries, err := parseCatalogSheet(f)
	if err != nil {
		return fmt.Errorf("parse catalog sheet: %w", err)
	}
	log.Printf("catalog sheet: %d entries", len(entries))

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer func() { _ = out.Close() }()

	w := func(s string) error { _, werr := fmt.Fprintln(out, s); return werr }

	for _, line := range []string{
		"-- Product catalog seed data generated from Excel.",
		fmt.Sprintf("-- %d entries in batches of %d.", len(entries), batchSize),
		"BEGIN;",
		"",
	} {
		if werr := w(line); werr != nil {
			return fmt.Errorf("write header: %w", werr)
		}
	}

	for i := 0; i < len(entries); i += batchSize {
		end := i + batchSize
		if end > len(entries) {
			end = len(entries)
		}
		if err := writeBatch(out, businessID, entries[i:end]); err != nil {
			return fmt.Errorf("write batch at offset %d: %w", i, err)
		}
	}

	for _, line := range []string{"", "COMMIT;"} {
		if werr := w(line); werr != nil {
			return fmt.Errorf("write footer: %w", werr)
		}
	}

	log.Printf("Generated %d entries (%d batches) in %s",
		len(entries), (len(entries)+batchSize-1)/batchSize, outPath)
	return nil
}

func parseCatalogSheet(f *excelize.File) ([]catalogEntry, error) {
	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var entries []catalogEntry
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		name := strings.TrimSpace(cellVal(row, 1))
		if name == "" {
			continue
		}

		e := catalogEntry{
			sku:          strings.TrimSpace(cellVal(row, 0)),
			name:         name,
			brand:        strings.TrimSpace(cellVal(row, 2)),
			category:     strings.TrimSpace(cellVal(row, 3)),
			unit:         strings.TrimSpace(cellVal(row, 4)),
			pricingMode:  strings.TrimSpace(cellVal(row, 5)),
			gstRate:      parseFloat(cellVal(row, 6)),
			mrp:          parseFloat(cellVal(row, 7)),
			basePrice:    parseFloat(cellVal(row, 8)),
			sellingPrice: parseFloat(cellVal(row, 9)),
		}
		if e.pricingMode == "" {
			e.pricingMode = "selling_simple"
		}
		inclStr := strings.ToLower(strings.TrimSpace(cellVal(row, 10)))
		e.sellingIncludesGST = inclStr == "" || inclStr == "y" || inclStr == "yes" || inclStr == "true"

		if e.sku != "" {
			key := strings.ToLower(e.sku)
			if seen[key] {
				continue
			}
			seen[key] = true
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func writeBatch(out *os.File, businessID uuid.UUID, entries []catalogEntry) error {
	if _, err := fmt.Fprintln(out, "INSERT INTO products (id, business_id, sku, name, brand, category, description, unit,"); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(out, "  pricing_mode, gst_rate, mrp, base_price, selling_price, selling_includes_gst, stock_qty, is_active)"); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(out, "VALUES"); err != nil {
		return err
	}

	for i, e := range entries {
		sep := ","
		if i == len(entries)-1 {
			sep = ";"
		}
		_, err := fmt.Fprintf(out, "  (gen_random_uuid(), '%s', %s, %s, %s, %s, '', %s, %s, %g, %g, %g, %g, %t, 0, TRUE)%s\n",
			businessID, sqlString(e.sku), sqlString(e.name), sqlString(e.brand),
			sqlString(e.category), sqlString(e.unit), sqlString(e.pricingMode),
			e.gstRate, e.mrp, e.basePrice, e.sellingPrice, e.sellingIncludesGST, sep)
		if err != nil {
			return err
		}
	}
	return nil
}

func sqlString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func cellVal(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return row[idx]
}

func parseFloat(s string) float64 {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

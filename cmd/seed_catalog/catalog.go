package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// productNamespace deriva el UUID de cada producto desde su código del ERP, así la
// misma exportación produce siempre los mismos IDs.
var productNamespace = uuid.MustParse("6f1c2d52-8a7e-4f0b-9d3a-2b5e7c9a1f44")

type catalogRow struct {
	code           string
	name           string
	barcode        string
	rate           *decimal.Decimal // nil: tarifa desconocida
	requiresSerial bool
}

// readCatalog lee la exportación del ERP: CSV separado por ';' con cabecera
// codigo;nombre;barcode;tarifa;serial. latin1 indica que viene en ISO-8859-1.
func readCatalog(r io.Reader, latin1 bool) ([]catalogRow, error) {
	if latin1 {
		r = transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	}
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("leer cabecera: %w", err)
	}
	if len(header) < 5 {
		return nil, errors.New("cabecera esperada: codigo;nombre;barcode;tarifa;serial")
	}

	var rows []catalogRow
	seen := make(map[string]int)
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", line, err)
		}
		row := catalogRow{
			code:    strings.TrimSpace(rec[0]),
			name:    strings.TrimSpace(rec[1]),
			barcode: strings.TrimSpace(rec[2]),
		}
		if row.code == "" || row.name == "" {
			continue
		}
		if prev, dup := seen[row.code]; dup {
			return nil, fmt.Errorf("línea %d: código %s repetido (línea %d)", line, row.code, prev)
		}
		seen[row.code] = line

		if raw := strings.TrimSpace(rec[3]); raw != "" {
			d, err := decimal.NewFromString(strings.ReplaceAll(raw, ",", "."))
			if err != nil {
				return nil, fmt.Errorf("línea %d: tarifa %q inválida", line, raw)
			}
			row.rate = &d
		}
		switch strings.ToUpper(strings.TrimSpace(rec[4])) {
		case "S", "SI", "SÍ", "Y", "1", "TRUE":
			row.requiresSerial = true
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// writeSeed escribe los INSERT ... ON CONFLICT de productos.
func writeSeed(w io.Writer, rows []catalogRow) error {
	if _, err := io.WriteString(w, "-- Catálogo de productos (generado por seed_catalog)\n\n"); err != nil {
		return err
	}
	for _, r := range rows {
		id := uuid.NewSHA1(productNamespace, []byte(r.code))
		rate := "NULL"
		if r.rate != nil {
			rate = r.rate.StringFixed(2)
		}
		barcode := "NULL"
		if r.barcode != "" {
			barcode = "'" + escapeSQL(r.barcode) + "'"
		}
		_, err := fmt.Fprintf(w,
			"INSERT INTO products (id, name, barcode, unit_rate, requires_unique_serial)\n"+
				"VALUES ('%s', '%s', %s, %s, %t)\n"+
				"ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, barcode = EXCLUDED.barcode,\n"+
				"  unit_rate = EXCLUDED.unit_rate, requires_unique_serial = EXCLUDED.requires_unique_serial;\n",
			id, escapeSQL(r.name), barcode, rate, r.requiresSerial)
		if err != nil {
			return err
		}
	}
	return nil
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

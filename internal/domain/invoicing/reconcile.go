// Package invoicing contiene las reglas puras de la factura en campo: conciliación de
// escaneos contra las líneas, selección de seriales en devoluciones, libro de ajustes
// y cálculo del resumen. Ninguna función modifica los slices que recibe.
package invoicing

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/fieldservice-invoicing/internal/domain"
	"github.com/jhoicas/fieldservice-invoicing/internal/domain/entity"
)

// Tag clasifica el resultado de conciliar un escaneo.
type Tag string

const (
	TagQtyIncremented         Tag = "QTY_INCREMENTED"
	TagNewLineUnserialized    Tag = "NEW_LINE_UNSERIALIZED"
	TagNewLineSerial          Tag = "NEW_LINE_SERIAL"
	TagDisambiguationRequired Tag = "DISAMBIGUATION_REQUIRED"
)

// IDFunc genera IDs opacos para líneas y ajustes nuevos.
type IDFunc func() string

// ScanInput entrada del motor para un escaneo ya resuelto.
// Issued solo aplica en devoluciones: nil o vacío cuando la consulta no devolvió
// nada, falló o no había empleado.
type ScanInput struct {
	Scan    string
	Mode    entity.FlowMode
	Product entity.ProductDescriptor
	Lines   []entity.LineItem
	Issued  []entity.IssuedSerial
}

// Outcome resultado de Reconcile. Con TagDisambiguationRequired, Lines es igual a la
// entrada y Issued trae los seriales a desambiguar.
type Outcome struct {
	Lines  []entity.LineItem
	Tag    Tag
	Issued []entity.IssuedSerial
}

// NormalizeScan recorta espacios; un código vacío se rechaza antes de consultar resolvedores.
func NormalizeScan(raw string) (string, error) {
	scan := strings.TrimSpace(raw)
	if scan == "" {
		return "", domain.ErrInvalidScan
	}
	return scan, nil
}

// NeedsIssuedLookup indica si el escaneo requiere consultar los seriales entregados.
func NeedsIssuedLookup(mode entity.FlowMode, product entity.ProductDescriptor) bool {
	return mode == entity.FlowReturn && product.RequiresUniqueSerial
}

// Reconcile decide la mutación de la lista de líneas para un escaneo:
//   - producto sin serial único: incrementa la línea sin serial del producto o agrega una nueva;
//   - serializado en venta: siempre agrega una línea, aunque el serial ya exista;
//   - serializado en devolución: con seriales entregados pide desambiguación, sin ellos
//     agrega una línea con tarifa 0.
func Reconcile(in ScanInput, newID IDFunc) (Outcome, error) {
	scan, err := NormalizeScan(in.Scan)
	if err != nil {
		return Outcome{}, err
	}
	if !in.Mode.Valid() {
		return Outcome{}, domain.ErrInvalidInput
	}
	p := in.Product

	if !p.RequiresUniqueSerial {
		for i, l := range in.Lines {
			if l.ProductID == p.ProductID && !l.Serialized() {
				lines := cloneLines(in.Lines)
				lines[i].Quantity++
				lines[i] = lines[i].WithNetAmount()
				return Outcome{Lines: lines, Tag: TagQtyIncremented}, nil
			}
		}
		// En devolución la tarifa puede no conocerse; RateOrZero cubre ambos modos.
		line := newLine(newID(), p, scan, nil, 1, p.RateOrZero())
		return Outcome{Lines: appendLine(in.Lines, line), Tag: TagNewLineUnserialized}, nil
	}

	serial := p.SerialOr(scan)
	if in.Mode == entity.FlowSale {
		line := newLine(newID(), p, scan, &serial, 1, p.RateOrZero())
		return Outcome{Lines: appendLine(in.Lines, line), Tag: TagNewLineSerial}, nil
	}

	if len(in.Issued) > 0 {
		issued := make([]entity.IssuedSerial, len(in.Issued))
		copy(issued, in.Issued)
		return Outcome{Lines: cloneLines(in.Lines), Tag: TagDisambiguationRequired, Issued: issued}, nil
	}
	// Sin seriales entregados: se carga manualmente, tarifa 0.
	line := newLine(newID(), p, scan, &serial, 1, decimal.Zero)
	return Outcome{Lines: appendLine(in.Lines, line), Tag: TagNewLineSerial}, nil
}

// EnterSerial registra un serial digitado sobre una línea existente. Nunca edita esa
// línea: clona sus campos no seriales en una línea nueva con cantidad 1.
func EnterSerial(lines []entity.LineItem, lineID, serial string, newID IDFunc) ([]entity.LineItem, error) {
	s, err := NormalizeScan(serial)
	if err != nil {
		return nil, err
	}
	idx := indexOfLine(lines, lineID)
	if idx < 0 {
		return nil, domain.ErrLineNotFound
	}
	src := lines[idx]
	clone := entity.LineItem{
		ID:           newID(),
		ProductID:    src.ProductID,
		ProductName:  src.ProductName,
		Barcode:      src.Barcode,
		SerialNumber: &s,
		Quantity:     1,
		Rate:         src.Rate,
	}
	return appendLine(lines, clone.WithNetAmount()), nil
}

func newLine(id string, p entity.ProductDescriptor, scan string, serial *string, qty int, rate decimal.Decimal) entity.LineItem {
	l := entity.LineItem{
		ID:           id,
		ProductID:    p.ProductID,
		ProductName:  p.Name,
		Barcode:      scan,
		SerialNumber: serial,
		Quantity:     qty,
		Rate:         rate,
	}
	return l.WithNetAmount()
}

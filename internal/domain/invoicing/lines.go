package invoicing

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/fieldservice-invoicing/internal/domain"
	"github.com/jhoicas/fieldservice-invoicing/internal/domain/entity"
)

// LineEdit cambios manuales sobre una línea; nil = sin cambio.
type LineEdit struct {
	Quantity     *int             `json:"quantity,omitempty"`
	FreeQuantity *int             `json:"free_quantity,omitempty"`
	Rate         *decimal.Decimal `json:"rate,omitempty"`
}

// DeleteLine quita la línea indicada.
func DeleteLine(lines []entity.LineItem, lineID string) ([]entity.LineItem, error) {
	idx := indexOfLine(lines, lineID)
	if idx < 0 {
		return nil, domain.ErrLineNotFound
	}
	out := make([]entity.LineItem, 0, len(lines)-1)
	out = append(out, lines[:idx]...)
	return append(out, lines[idx+1:]...), nil
}

// EditLine aplica cantidades o tarifa digitadas y recalcula el neto.
func EditLine(lines []entity.LineItem, lineID string, edit LineEdit) ([]entity.LineItem, error) {
	idx := indexOfLine(lines, lineID)
	if idx < 0 {
		return nil, domain.ErrLineNotFound
	}
	if edit.Quantity != nil && *edit.Quantity < 0 {
		return nil, domain.ErrInvalidInput
	}
	if edit.FreeQuantity != nil && *edit.FreeQuantity < 0 {
		return nil, domain.ErrInvalidInput
	}
	if edit.Rate != nil && edit.Rate.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	out := cloneLines(lines)
	l := out[idx]
	if edit.Quantity != nil {
		l.Quantity = *edit.Quantity
	}
	if edit.FreeQuantity != nil {
		l.FreeQuantity = *edit.FreeQuantity
	}
	if edit.Rate != nil {
		l.Rate = *edit.Rate
	}
	out[idx] = l.WithNetAmount()
	return out, nil
}

// Number asigna números de presentación consecutivos (1..n) en el orden actual.
func Number(lines []entity.LineItem) []entity.NumberedLine {
	out := make([]entity.NumberedLine, len(lines))
	for i, l := range lines {
		out[i] = entity.NumberedLine{No: i + 1, LineItem: l}
	}
	return out
}

func indexOfLine(lines []entity.LineItem, lineID string) int {
	for i, l := range lines {
		if l.ID == lineID {
			return i
		}
	}
	return -1
}

func cloneLines(lines []entity.LineItem) []entity.LineItem {
	out := make([]entity.LineItem, len(lines))
	copy(out, lines)
	return out
}

func appendLine(lines []entity.LineItem, l entity.LineItem) []entity.LineItem {
	out := make([]entity.LineItem, len(lines), len(lines)+1)
	copy(out, lines)
	return append(out, l)
}

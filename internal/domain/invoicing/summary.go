package invoicing

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/fieldservice-invoicing/internal/domain"
	"github.com/jhoicas/fieldservice-invoicing/internal/domain/entity"
)

// Recompute calcula el resumen desde cero a partir de líneas y ajustes.
//
//	totalQuantity  = Σ quantity (+ freeQuantity en devolución)
//	totalBillValue = venta:      gross + add - less
//	                 devolución: gross - add - less
//
// En devolución los ajustes de suma también restan; así lo hace el sistema en campo.
func Recompute(mode entity.FlowMode, lines []entity.LineItem, adjustments []entity.AdjustmentEntry) entity.InvoiceSummary {
	s := entity.InvoiceSummary{
		ItemCount:     len(lines),
		TotalGross:    decimal.Zero,
		TotalAdd:      decimal.Zero,
		TotalLess:     decimal.Zero,
		LedgerBalance: decimal.Zero,
	}
	for _, l := range lines {
		s.TotalQuantity += l.Quantity
		if mode == entity.FlowReturn {
			s.TotalQuantity += l.FreeQuantity
		}
		s.TotalGross = s.TotalGross.Add(l.NetAmount)
	}
	for _, a := range adjustments {
		s.TotalAdd = s.TotalAdd.Add(a.AddAmount)
		s.TotalLess = s.TotalLess.Add(a.LessAmount)
	}
	if mode == entity.FlowReturn {
		s.TotalBillValue = s.TotalGross.Sub(s.TotalAdd).Sub(s.TotalLess)
	} else {
		s.TotalBillValue = s.TotalGross.Add(s.TotalAdd).Sub(s.TotalLess)
	}
	return s
}

// Balance saldo pendiente: total facturado menos lo cobrado.
func Balance(summary entity.InvoiceSummary, c entity.Collections) decimal.Decimal {
	return summary.TotalBillValue.Sub(c.Total())
}

// ValidateCollections rechaza montos cobrados negativos.
func ValidateCollections(c entity.Collections) error {
	if c.Cash.IsNegative() || c.Card.IsNegative() || c.UPI.IsNegative() {
		return domain.ErrInvalidInput
	}
	return nil
}

package entity

import "github.com/shopspring/decimal"

// InvoiceSummary vista derivada de líneas y ajustes. Nunca se modifica por separado.
type InvoiceSummary struct {
	ItemCount      int             `json:"item_count"`
	TotalQuantity  int             `json:"total_quantity"`
	TotalGross     decimal.Decimal `json:"total_gross"`
	TotalAdd       decimal.Decimal `json:"total_add"`
	TotalLess      decimal.Decimal `json:"total_less"`
	TotalBillValue decimal.Decimal `json:"total_bill_value"`
	LedgerBalance  decimal.Decimal `json:"ledger_balance"` // siempre 0: no se consulta el libro externo
}

// Collections montos cobrados en la visita.
type Collections struct {
	Cash decimal.Decimal `json:"cash"`
	Card decimal.Decimal `json:"card"`
	UPI  decimal.Decimal `json:"upi"`
}

// Total suma de todos los medios de cobro.
func (c Collections) Total() decimal.Decimal {
	return c.Cash.Add(c.Card).Add(c.UPI)
}

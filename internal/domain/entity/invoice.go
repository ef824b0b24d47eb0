package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice representa la cabecera de una factura (venta o devolución) ya guardada.
// Los totales son una copia del InvoiceSummary al momento de guardar.
type Invoice struct {
	ID             string
	EmployeeID     string
	SessionID      string // sesión de la que proviene (auditoría)
	Mode           FlowMode
	Number         string
	Date           time.Time
	ItemCount      int
	TotalQuantity  int
	TotalGross     decimal.Decimal
	TotalAdd       decimal.Decimal
	TotalLess      decimal.Decimal
	TotalBillValue decimal.Decimal
	Cash           decimal.Decimal
	Card           decimal.Decimal
	UPI            decimal.Decimal
	Balance        decimal.Decimal // TotalBillValue - (Cash+Card+UPI)
	CreatedAt      time.Time
}

// InvoiceLine línea persistida con su número de presentación.
type InvoiceLine struct {
	InvoiceID string
	NumberedLine
}

// InvoiceAdjustment ajuste persistido.
type InvoiceAdjustment struct {
	InvoiceID string
	AdjustmentEntry
}

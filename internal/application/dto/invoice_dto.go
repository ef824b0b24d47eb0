package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/fieldservice-invoicing/internal/domain/entity"
)

// InvoiceResponse factura guardada.
type InvoiceResponse struct {
	ID             string          `json:"id"`
	Number         string          `json:"number"`
	Mode           entity.FlowMode `json:"mode"`
	EmployeeID     string          `json:"employee_id"`
	Date           time.Time       `json:"date"`
	ItemCount      int             `json:"item_count"`
	TotalQuantity  int             `json:"total_quantity"`
	TotalGross     decimal.Decimal `json:"total_gross"`
	TotalAdd       decimal.Decimal `json:"total_add"`
	TotalLess      decimal.Decimal `json:"total_less"`
	TotalBillValue decimal.Decimal `json:"total_bill_value"`
	Cash           decimal.Decimal `json:"cash"`
	Card           decimal.Decimal `json:"card"`
	UPI            decimal.Decimal `json:"upi"`
	Balance        decimal.Decimal `json:"balance"`
}

// InvoiceListResponse listado paginado de facturas del empleado.
type InvoiceListResponse struct {
	Items []InvoiceResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// InvoiceToResponse mapea la entidad a su DTO.
func InvoiceToResponse(inv *entity.Invoice) InvoiceResponse {
	return InvoiceResponse{
		ID:             inv.ID,
		Number:         inv.Number,
		Mode:           inv.Mode,
		EmployeeID:     inv.EmployeeID,
		Date:           inv.Date,
		ItemCount:      inv.ItemCount,
		TotalQuantity:  inv.TotalQuantity,
		TotalGross:     inv.TotalGross,
		TotalAdd:       inv.TotalAdd,
		TotalLess:      inv.TotalLess,
		TotalBillValue: inv.TotalBillValue,
		Cash:           inv.Cash,
		Card:           inv.Card,
		UPI:            inv.UPI,
		Balance:        inv.Balance,
	}
}

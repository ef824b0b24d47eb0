package billing

import (
	"context"

	"github.com/jhoicas/fieldservice-invoicing/internal/domain/entity"
)

// InvoicePDFGenerator genera el documento imprimible de una factura guardada.
type InvoicePDFGenerator interface {
	GenerateInvoicePDF(
		ctx context.Context,
		invoice *entity.Invoice,
		lines []entity.InvoiceLine,
		adjustments []entity.InvoiceAdjustment,
		employeeName string,
	) ([]byte, error)
}

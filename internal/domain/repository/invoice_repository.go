package repository

import (
	"context"

	"github.com/jhoicas/fieldservice-invoicing/internal/domain/entity"
)

// InvoiceRepository define el puerto de persistencia para facturas guardadas,
// sus líneas numeradas y sus ajustes.
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *entity.Invoice) error
	CreateLine(ctx context.Context, line *entity.InvoiceLine) error
	CreateAdjustment(ctx context.Context, adj *entity.InvoiceAdjustment) error
	GetByID(ctx context.Context, id string) (*entity.Invoice, error)
	GetLines(ctx context.Context, invoiceID string) ([]entity.InvoiceLine, error)
	GetAdjustments(ctx context.Context, invoiceID string) ([]entity.InvoiceAdjustment, error)
	// ListByEmployee devuelve la página pedida y el total de facturas del empleado.
	ListByEmployee(ctx context.Context, employeeID string, limit, offset int) ([]*entity.Invoice, int, error)
}

package billing

import (
	"context"
	"fmt"

	"github.com/jhoicas/fieldservice-invoicing/internal/application/dto"
	"github.com/jhoicas/fieldservice-invoicing/internal/domain"
	"github.com/jhoicas/fieldservice-invoicing/internal/domain/entity"
	"github.com/jhoicas/fieldservice-invoicing/internal/domain/repository"
)

// InvoiceUseCase consultas sobre facturas guardadas.
type InvoiceUseCase struct {
	invoiceRepo repository.InvoiceRepository
}

// NewInvoiceUseCase construye el caso de uso.
func NewInvoiceUseCase(invoiceRepo repository.InvoiceRepository) *InvoiceUseCase {
	return &InvoiceUseCase{invoiceRepo: invoiceRepo}
}

// List facturas del empleado, paginadas.
func (uc *InvoiceUseCase) List(ctx context.Context, employeeID string, page dto.PageRequest) (*dto.InvoiceListResponse, error) {
	page.Normalize()
	list, total, err := uc.invoiceRepo.ListByEmployee(ctx, employeeID, page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("listar facturas: %w", err)
	}
	items := make([]dto.InvoiceResponse, 0, len(list))
	for _, inv := range list {
		items = append(items, dto.InvoiceToResponse(inv))
	}
	return &dto.InvoiceListResponse{
		Items: items,
		Page:  dto.NewPageResponse(page, total),
	}, nil
}

// Get una factura del empleado.
func (uc *InvoiceUseCase) Get(ctx context.Context, employeeID, role, invoiceID string) (*dto.InvoiceResponse, error) {
	inv, err := uc.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("obtener factura: %w", err)
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	if inv.EmployeeID != employeeID && role != entity.RoleAdmin {
		return nil, domain.ErrForbidden
	}
	resp := dto.InvoiceToResponse(inv)
	return &resp, nil
}

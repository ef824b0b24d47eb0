package billing

import (
	"context"
	"fmt"

	"github.com/jhoicas/fieldservice-invoicing/internal/domain"
	"github.com/jhoicas/fieldservice-invoicing/internal/domain/entity"
	"github.com/jhoicas/fieldservice-invoicing/internal/domain/repository"
)

// PDFUseCase genera el PDF de una factura ya guardada.
type PDFUseCase struct {
	invoiceRepo repository.InvoiceRepository
	userRepo    repository.UserRepository
	generator   InvoicePDFGenerator
}

// NewPDFUseCase construye el caso de uso inyectando todas sus dependencias.
func NewPDFUseCase(
	invoiceRepo repository.InvoiceRepository,
	userRepo repository.UserRepository,
	generator InvoicePDFGenerator,
) *PDFUseCase {
	return &PDFUseCase{
		invoiceRepo: invoiceRepo,
		userRepo:    userRepo,
		generator:   generator,
	}
}

// DownloadInvoicePDF recupera cabecera, líneas y ajustes y genera el PDF.
//
// Retorna:
//   - (pdfBytes, filename, nil)  si todo sale bien.
//   - domain.ErrNotFound         si la factura no existe.
//   - domain.ErrForbidden        si la factura es de otro empleado y quien pide no es admin.
func (uc *PDFUseCase) DownloadInvoicePDF(
	ctx context.Context,
	employeeID, role, invoiceID string,
) (pdfBytes []byte, filename string, err error) {
	// ── 1. Cargar factura ─────────────────────────────────────────────────────
	inv, err := uc.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obtener factura: %w", err)
	}
	if inv == nil {
		return nil, "", domain.ErrNotFound
	}
	if inv.EmployeeID != employeeID && role != entity.RoleAdmin {
		return nil, "", domain.ErrForbidden
	}

	// ── 2. Líneas y ajustes ───────────────────────────────────────────────────
	lines, err := uc.invoiceRepo.GetLines(ctx, invoiceID)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obtener líneas: %w", err)
	}
	adjustments, err := uc.invoiceRepo.GetAdjustments(ctx, invoiceID)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obtener ajustes: %w", err)
	}

	// ── 3. Nombre del empleado (opcional) ─────────────────────────────────────
	employeeName := inv.EmployeeID
	if u, uErr := uc.userRepo.GetByID(inv.EmployeeID); uErr == nil && u != nil {
		employeeName = u.Name
	}

	// ── 4. Generar PDF ────────────────────────────────────────────────────────
	pdfBytes, err = uc.generator.GenerateInvoicePDF(ctx, inv, lines, adjustments, employeeName)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generación fallida: %w", err)
	}

	filename = fmt.Sprintf("factura_%s.pdf", inv.Number)
	return pdfBytes, filename, nil
}

package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/fieldservice-invoicing/internal/application/billing"
	"github.com/jhoicas/fieldservice-invoicing/internal/application/dto"
)

// InvoiceHandler consultas y PDF de facturas guardadas (protegido).
type InvoiceHandler struct {
	invoices *billing.InvoiceUseCase
	pdf      *billing.PDFUseCase
}

// NewInvoiceHandler construye el handler.
func NewInvoiceHandler(invoices *billing.InvoiceUseCase, pdf *billing.PDFUseCase) *InvoiceHandler {
	return &InvoiceHandler{invoices: invoices, pdf: pdf}
}

// List GET /api/invoices?limit=&offset=
func (h *InvoiceHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.Normalize()
	if err := validate.Struct(page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: validationMessage(err)})
	}
	out, err := h.invoices.List(c.UserContext(), GetEmployeeID(c), page)
	if err != nil {
		return writeError(c, "listar facturas", err)
	}
	return c.JSON(out)
}

// GetByID GET /api/invoices/:id
func (h *InvoiceHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.invoices.Get(c.UserContext(), GetEmployeeID(c), GetRole(c), c.Params("id"))
	if err != nil {
		return writeError(c, "consultar factura", err)
	}
	return c.JSON(out)
}

// DownloadPDF godoc
// @Summary      Descargar PDF de factura
// @Tags         invoices
// @Produce      application/pdf
// @Param        id  path  string  true  "ID de factura"
// @Success      200
// @Failure      403 {object}  dto.ErrorResponse
// @Failure      404 {object}  dto.ErrorResponse
// @Router       /api/invoices/{id}/pdf [get]
func (h *InvoiceHandler) DownloadPDF(c *fiber.Ctx) error {
	body, filename, err := h.pdf.DownloadInvoicePDF(c.UserContext(), GetEmployeeID(c), GetRole(c), c.Params("id"))
	if err != nil {
		return writeError(c, "generar pdf", err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(body)
}

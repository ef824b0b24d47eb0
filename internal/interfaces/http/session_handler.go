package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/fieldservice-invoicing/internal/application/dto"
	"github.com/jhoicas/fieldservice-invoicing/internal/application/session"
)

// SessionHandler expone las facturas en curso. Todas las rutas requieren token.
type SessionHandler struct {
	uc *session.UseCase
}

// NewSessionHandler construye el handler.
func NewSessionHandler(uc *session.UseCase) *SessionHandler {
	return &SessionHandler{uc: uc}
}

// Open godoc
// @Summary      Abrir factura en curso
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Param        body  body  dto.OpenSessionRequest  true  "mode: SALE | RETURN"
// @Success      201   {object}  dto.SnapshotResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/sessions [post]
func (h *SessionHandler) Open(c *fiber.Ctx) error {
	var in dto.OpenSessionRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	out, err := h.uc.Open(c.UserContext(), GetEmployeeID(c), in)
	if err != nil {
		return writeError(c, "abrir sesión", err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Get GET /api/sessions/:id
func (h *SessionHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), GetEmployeeID(c), c.Params("id"))
	if err != nil {
		return writeError(c, "consultar sesión", err)
	}
	return c.JSON(out)
}

// Fields GET /api/sessions/:id/fields
func (h *SessionHandler) Fields(c *fiber.Ctx) error {
	out, err := h.uc.Fields(c.UserContext(), GetEmployeeID(c), c.Params("id"))
	if err != nil {
		return writeError(c, "esquema de campos", err)
	}
	return c.JSON(out)
}

// Scan godoc
// @Summary      Registrar un escaneo
// @Description  Resuelve el código y concilia las líneas. En devoluciones con seriales entregados
// @Description  puede dejar una selección pendiente (snapshot.pending) que se confirma con /selection.
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Param        id    path  string           true  "ID de sesión"
// @Param        body  body  dto.ScanRequest  true  "código escaneado"
// @Success      200   {object}  dto.ScanResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Failure      504   {object}  dto.ErrorResponse
// @Router       /api/sessions/{id}/scans [post]
func (h *SessionHandler) Scan(c *fiber.Ctx) error {
	var in dto.ScanRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	out, err := h.uc.Scan(c.UserContext(), GetEmployeeID(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, "escanear", err)
	}
	return c.JSON(out)
}

// ConfirmSelection POST /api/sessions/:id/selection
func (h *SessionHandler) ConfirmSelection(c *fiber.Ctx) error {
	var in dto.SelectionRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	out, err := h.uc.ConfirmSelection(c.UserContext(), GetEmployeeID(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, "confirmar selección", err)
	}
	return c.JSON(out)
}

// CancelSelection DELETE /api/sessions/:id/selection?token=
func (h *SessionHandler) CancelSelection(c *fiber.Ctx) error {
	out, err := h.uc.CancelSelection(c.UserContext(), GetEmployeeID(c), c.Params("id"), c.Query("token"))
	if err != nil {
		return writeError(c, "cancelar selección", err)
	}
	return c.JSON(out)
}

// EditLine PATCH /api/sessions/:id/lines/:lineId
func (h *SessionHandler) EditLine(c *fiber.Ctx) error {
	var in dto.EditLineRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	out, err := h.uc.EditLineField(c.UserContext(), GetEmployeeID(c), c.Params("id"), c.Params("lineId"), in)
	if err != nil {
		return writeError(c, "editar línea", err)
	}
	return c.JSON(out)
}

// DeleteLine DELETE /api/sessions/:id/lines/:lineId
func (h *SessionHandler) DeleteLine(c *fiber.Ctx) error {
	out, err := h.uc.DeleteLine(c.UserContext(), GetEmployeeID(c), c.Params("id"), c.Params("lineId"))
	if err != nil {
		return writeError(c, "eliminar línea", err)
	}
	return c.JSON(out)
}

// AddAdjustment POST /api/sessions/:id/adjustments
func (h *SessionHandler) AddAdjustment(c *fiber.Ctx) error {
	var in dto.AdjustmentRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	out, err := h.uc.AddAdjustment(c.UserContext(), GetEmployeeID(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, "agregar ajuste", err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// EditAdjustment PATCH /api/sessions/:id/adjustments/:entryId
func (h *SessionHandler) EditAdjustment(c *fiber.Ctx) error {
	var in dto.EditAdjustmentRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	out, err := h.uc.EditAdjustment(c.UserContext(), GetEmployeeID(c), c.Params("id"), c.Params("entryId"), in)
	if err != nil {
		return writeError(c, "editar ajuste", err)
	}
	return c.JSON(out)
}

// ReassignAccount PUT /api/sessions/:id/adjustments/:entryId/account
func (h *SessionHandler) ReassignAccount(c *fiber.Ctx) error {
	var in dto.ReassignAccountRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	out, err := h.uc.ReassignAccount(c.UserContext(), GetEmployeeID(c), c.Params("id"), c.Params("entryId"), in)
	if err != nil {
		return writeError(c, "cambiar cuenta", err)
	}
	return c.JSON(out)
}

// RemoveAdjustment DELETE /api/sessions/:id/adjustments/:entryId
func (h *SessionHandler) RemoveAdjustment(c *fiber.Ctx) error {
	out, err := h.uc.RemoveAdjustment(c.UserContext(), GetEmployeeID(c), c.Params("id"), c.Params("entryId"))
	if err != nil {
		return writeError(c, "quitar ajuste", err)
	}
	return c.JSON(out)
}

// SetCollections PUT /api/sessions/:id/collections
func (h *SessionHandler) SetCollections(c *fiber.Ctx) error {
	var in dto.CollectionsRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	out, err := h.uc.SetCollections(c.UserContext(), GetEmployeeID(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, "registrar cobros", err)
	}
	return c.JSON(out)
}

// Events GET /api/sessions/:id/events
func (h *SessionHandler) Events(c *fiber.Ctx) error {
	events, err := h.uc.Events(c.UserContext(), GetEmployeeID(c), c.Params("id"))
	if err != nil {
		return writeError(c, "log de eventos", err)
	}
	return c.JSON(fiber.Map{"events": events})
}

// Save godoc
// @Summary      Guardar factura
// @Description  Persiste líneas, ajustes y cobros en una transacción y cierra la sesión.
// @Tags         sessions
// @Produce      json
// @Param        id  path  string  true  "ID de sesión"
// @Success      201 {object}  dto.InvoiceResponse
// @Failure      400 {object}  dto.ErrorResponse
// @Failure      409 {object}  dto.ErrorResponse
// @Router       /api/sessions/{id}/save [post]
func (h *SessionHandler) Save(c *fiber.Ctx) error {
	out, err := h.uc.Save(c.UserContext(), GetEmployeeID(c), c.Params("id"))
	if err != nil {
		return writeError(c, "guardar factura", err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

package dto

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/fieldservice-invoicing/internal/domain/entity"
)

// OpenSessionRequest abre una factura en curso (venta o devolución).
type OpenSessionRequest struct {
	Mode string `json:"mode" validate:"required,oneof=SALE RETURN"`
}

// ScanRequest código leído por la cámara o digitado.
type ScanRequest struct {
	Scan string `json:"scan" validate:"required,max=128"`
}

// SelectionRequest confirma la selección de seriales de una devolución.
type SelectionRequest struct {
	Token  string   `json:"token" validate:"required"`
	Add    []string `json:"add" validate:"omitempty,dive,max=128"`
	Remove []string `json:"remove" validate:"omitempty,dive,max=128"`
}

// EditLineRequest edición de una celda de la grilla de líneas.
type EditLineRequest struct {
	Field string `json:"field" validate:"required"`
	Value string `json:"value" validate:"max=128"`
}

// AdjustmentRequest alta de un ajuste; la cuenta se busca por nombre en el catálogo.
type AdjustmentRequest struct {
	AccountName string          `json:"account_name" validate:"required"`
	AddAmount   decimal.Decimal `json:"add_amount"`
	LessAmount  decimal.Decimal `json:"less_amount"`
	Comments    string          `json:"comments" validate:"max=500"`
}

// EditAdjustmentRequest campos nil no se modifican.
type EditAdjustmentRequest struct {
	AddAmount  *decimal.Decimal `json:"add_amount"`
	LessAmount *decimal.Decimal `json:"less_amount"`
	Comments   *string          `json:"comments" validate:"omitempty,max=500"`
}

// ReassignAccountRequest cambio de cuenta de un ajuste.
type ReassignAccountRequest struct {
	AccountName string `json:"account_name" validate:"required"`
}

// CollectionsRequest montos cobrados en la visita.
type CollectionsRequest struct {
	Cash decimal.Decimal `json:"cash"`
	Card decimal.Decimal `json:"card"`
	UPI  decimal.Decimal `json:"upi"`
}

// PendingSelectionResponse desambiguación pendiente: el cliente debe devolver Token al confirmar o cancelar.
type PendingSelectionResponse struct {
	Token   string                   `json:"token"`
	Scan    string                   `json:"scan"`
	Product entity.ProductDescriptor `json:"product"`
	Addable []entity.IssuedSerial    `json:"addable"`
	Present []entity.IssuedSerial    `json:"present"`
}

// SnapshotResponse estado completo de la factura en curso.
type SnapshotResponse struct {
	SessionID   string                    `json:"session_id"`
	EmployeeID  string                    `json:"employee_id"`
	Mode        entity.FlowMode           `json:"mode"`
	Lines       []entity.NumberedLine     `json:"lines"`
	Adjustments []entity.AdjustmentEntry  `json:"adjustments"`
	Summary     entity.InvoiceSummary     `json:"summary"`
	Collections entity.Collections        `json:"collections"`
	Balance     decimal.Decimal           `json:"balance"`
	Pending     *PendingSelectionResponse `json:"pending,omitempty"`
	Version     int                       `json:"version"` // cantidad de eventos aplicados
}

// ScanResponse resultado de un escaneo.
type ScanResponse struct {
	Tag      string           `json:"tag"`
	Snapshot SnapshotResponse `json:"snapshot"`
}

// FieldsResponse esquema de columnas editables para la sesión.
type FieldsResponse struct {
	Lines       []entity.Field `json:"lines"`
	Adjustments []entity.Field `json:"adjustments"`
}

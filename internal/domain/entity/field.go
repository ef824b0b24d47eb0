package entity

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/fieldservice-invoicing/internal/domain"
)

// FieldKind tipos de campo editables en la grilla de líneas y ajustes.
type FieldKind string

const (
	FieldText     FieldKind = "TEXT"
	FieldNumeric  FieldKind = "NUMERIC"
	FieldDropdown FieldKind = "DROPDOWN"
)

// Field describe una columna de la grilla: tipo, si es editable y, para DROPDOWN, sus opciones.
type Field struct {
	Key      string    `json:"key"`
	Label    string    `json:"label"`
	Kind     FieldKind `json:"kind"`
	Editable bool      `json:"editable"`
	Options  []string  `json:"options,omitempty"`
}

// Claves de columnas de línea.
const (
	FieldProductName  = "product_name"
	FieldSerialNumber = "serial_number"
	FieldQuantity     = "quantity"
	FieldFreeQuantity = "free_quantity"
	FieldRate         = "rate"
	FieldNetAmount    = "net_amount"
)

// Claves de columnas de ajuste.
const (
	FieldAccountName = "account_name"
	FieldAddAmount   = "add_amount"
	FieldLessAmount  = "less_amount"
	FieldComments    = "comments"
)

// Validate comprueba que value sea aceptable para el campo.
// NUMERIC: decimal no negativo. DROPDOWN: una de las opciones (comparación exacta tras trim).
func (f Field) Validate(value string) error {
	if !f.Editable {
		return fmt.Errorf("%w: campo %s no editable", domain.ErrInvalidInput, f.Key)
	}
	v := strings.TrimSpace(value)
	switch f.Kind {
	case FieldText:
		return nil
	case FieldNumeric:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return fmt.Errorf("%w: campo %s: número inválido %q", domain.ErrInvalidInput, f.Key, value)
		}
		if d.IsNegative() {
			return fmt.Errorf("%w: campo %s: no admite negativos", domain.ErrInvalidInput, f.Key)
		}
		return nil
	case FieldDropdown:
		for _, opt := range f.Options {
			if opt == v {
				return nil
			}
		}
		return fmt.Errorf("%w: campo %s: opción %q no válida", domain.ErrInvalidInput, f.Key, value)
	default:
		return fmt.Errorf("%w: campo %s: tipo %s desconocido", domain.ErrInvalidInput, f.Key, f.Kind)
	}
}

// LineFields columnas de la grilla de líneas para el modo dado.
// free_quantity solo es editable en devoluciones.
func LineFields(mode FlowMode) []Field {
	return []Field{
		{Key: FieldProductName, Label: "Producto", Kind: FieldText},
		{Key: FieldSerialNumber, Label: "Serial", Kind: FieldText, Editable: true},
		{Key: FieldQuantity, Label: "Cant.", Kind: FieldNumeric, Editable: true},
		{Key: FieldFreeQuantity, Label: "Cant. libre", Kind: FieldNumeric, Editable: mode == FlowReturn},
		{Key: FieldRate, Label: "Tarifa", Kind: FieldNumeric, Editable: true},
		{Key: FieldNetAmount, Label: "Neto", Kind: FieldNumeric},
	}
}

// AdjustmentFields columnas de la grilla de ajustes; la cuenta es un DROPDOWN sobre el catálogo.
func AdjustmentFields(accounts []AdjustmentAccount) []Field {
	names := make([]string, 0, len(accounts))
	for _, a := range accounts {
		names = append(names, a.Name)
	}
	return []Field{
		{Key: FieldAccountName, Label: "Cuenta", Kind: FieldDropdown, Editable: true, Options: names},
		{Key: FieldAddAmount, Label: "Suma", Kind: FieldNumeric, Editable: true},
		{Key: FieldLessAmount, Label: "Resta", Kind: FieldNumeric, Editable: true},
		{Key: FieldComments, Label: "Comentarios", Kind: FieldText, Editable: true},
	}
}

// FindField busca una columna por clave.
func FindField(fields []Field, key string) (Field, bool) {
	for _, f := range fields {
		if f.Key == key {
			return f, true
		}
	}
	return Field{}, false
}

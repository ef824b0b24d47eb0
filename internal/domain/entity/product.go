package entity

import "github.com/shopspring/decimal"

// ProductDescriptor es lo que devuelve el resolvedor de códigos de barras para un escaneo.
// Inmutable: se consulta en cada escaneo y no se guarda fuera de la línea.
type ProductDescriptor struct {
	ProductID            string              `json:"product_id"`
	Name                 string              `json:"name"`
	UnitRate             decimal.NullDecimal `json:"unit_rate"` // Valid=false: tarifa desconocida
	RequiresUniqueSerial bool                `json:"requires_unique_serial"`
	SerialNumber         *string             `json:"serial_number,omitempty"` // serial que trae el propio código, si lo hay
}

// RateOrZero devuelve la tarifa conocida o cero.
func (p ProductDescriptor) RateOrZero() decimal.Decimal {
	if p.UnitRate.Valid {
		return p.UnitRate.Decimal
	}
	return decimal.Zero
}

// SerialOr devuelve el serial del resolvedor si viene informado; si no, fallback.
func (p ProductDescriptor) SerialOr(fallback string) string {
	if p.SerialNumber != nil && *p.SerialNumber != "" {
		return *p.SerialNumber
	}
	return fallback
}

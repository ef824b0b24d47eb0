package entity

import "github.com/shopspring/decimal"

// FlowMode indica si la sesión factura una venta o registra una devolución.
type FlowMode string

const (
	FlowSale   FlowMode = "SALE"
	FlowReturn FlowMode = "RETURN"
)

// Valid indica si el modo es uno de los soportados.
func (m FlowMode) Valid() bool {
	return m == FlowSale || m == FlowReturn
}

// LineItem representa una fila de la factura en curso.
// SerialNumber nil significa "no serializado"; en ese caso hay a lo sumo una línea por producto.
type LineItem struct {
	ID           string          `json:"id"`
	ProductID    string          `json:"product_id"`
	ProductName  string          `json:"product_name"`
	Barcode      string          `json:"barcode"` // código escaneado tal cual, para auditoría
	SerialNumber *string         `json:"serial_number"`
	Quantity     int             `json:"quantity"`
	FreeQuantity int             `json:"free_quantity"` // solo devoluciones
	Rate         decimal.Decimal `json:"rate"`
	NetAmount    decimal.Decimal `json:"net_amount"` // Quantity × Rate
}

// Serialized indica si la línea lleva número de serie.
func (l LineItem) Serialized() bool {
	return l.SerialNumber != nil
}

// Serial devuelve el serial o "" si la línea no es serializada.
func (l LineItem) Serial() string {
	if l.SerialNumber == nil {
		return ""
	}
	return *l.SerialNumber
}

// WithNetAmount recalcula NetAmount a partir de Quantity y Rate.
func (l LineItem) WithNetAmount() LineItem {
	l.NetAmount = decimal.NewFromInt(int64(l.Quantity)).Mul(l.Rate)
	return l
}

// NumberedLine es una línea con su número de presentación (1..n).
type NumberedLine struct {
	No int `json:"no"`
	LineItem
}

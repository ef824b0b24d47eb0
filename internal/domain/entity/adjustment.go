package entity

import "github.com/shopspring/decimal"

// AccountType tipo fijo de una cuenta de ajuste.
type AccountType string

const (
	AccountAdd  AccountType = "ADD"  // suma al total de la factura (flete, instalación...)
	AccountLess AccountType = "LESS" // resta del total (descuento, anticipo...)
)

// AdjustmentAccount cuenta del catálogo de ajustes.
type AdjustmentAccount struct {
	ID   string      `json:"id"`
	Name string      `json:"name"`
	Type AccountType `json:"type"`
}

// AdjustmentEntry ajuste aplicado a la factura en curso.
// Solo uno de AddAmount/LessAmount es significativo según AccountType.
type AdjustmentEntry struct {
	ID          string          `json:"id"`
	AccountID   string          `json:"account_id"`
	AccountName string          `json:"account_name"`
	AccountType AccountType     `json:"account_type"`
	AddAmount   decimal.Decimal `json:"add_amount"`
	LessAmount  decimal.Decimal `json:"less_amount"`
	Comments    string          `json:"comments"`
}

package pdf

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/jhoicas/fieldservice-invoicing/internal/domain/entity"
)

func TestGenerateInvoicePDF(t *testing.T) {
	serial := "SN-001"
	inv := &entity.Invoice{
		ID:             "f8a0c1f2-0000-4000-8000-000000000001",
		EmployeeID:     "EMP-1",
		Mode:           entity.FlowSale,
		Number:         "INV-20261019-F8A0C1F2",
		Date:           time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC),
		ItemCount:      2,
		TotalQuantity:  3,
		TotalGross:     decimal.NewFromInt(1900),
		TotalAdd:       decimal.NewFromInt(100),
		TotalLess:      decimal.Zero,
		TotalBillValue: decimal.NewFromInt(2000),
		Cash:           decimal.NewFromInt(500),
		Balance:        decimal.NewFromInt(1500),
	}
	lines := []entity.InvoiceLine{
		{InvoiceID: inv.ID, NumberedLine: entity.NumberedLine{No: 1, LineItem: entity.LineItem{
			ProductName: "Toner", Quantity: 2, Rate: decimal.NewFromInt(450), NetAmount: decimal.NewFromInt(900),
		}}},
		{InvoiceID: inv.ID, NumberedLine: entity.NumberedLine{No: 2, LineItem: entity.LineItem{
			ProductName: "Copiadora", SerialNumber: &serial, Quantity: 1,
			Rate: decimal.NewFromInt(1000), NetAmount: decimal.NewFromInt(1000),
		}}},
	}
	adjs := []entity.InvoiceAdjustment{
		{InvoiceID: inv.ID, AdjustmentEntry: entity.AdjustmentEntry{
			AccountName: "Flete", AccountType: entity.AccountAdd, AddAmount: decimal.NewFromInt(100),
		}},
	}

	g := NewMarotoPDFGenerator("Servicios de Campo", language.English)
	out, err := g.GenerateInvoicePDF(context.Background(), inv, lines, adjs, "Ana")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestGenerateInvoicePDF_SinAjustes(t *testing.T) {
	inv := &entity.Invoice{Number: "RET-20261019-AAAA0000", Mode: entity.FlowReturn, Date: time.Now()}
	g := NewMarotoPDFGenerator("Servicios de Campo", language.Spanish)
	out, err := g.GenerateInvoicePDF(context.Background(), inv, nil, nil, "")
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestFormatAmount(t *testing.T) {
	g := NewMarotoPDFGenerator("x", language.English)
	assert.Equal(t, "1,234,567.50", g.formatAmount(decimal.RequireFromString("1234567.5")))
	assert.Equal(t, "0.00", g.formatAmount(decimal.Zero))
}

func TestModeTitle(t *testing.T) {
	assert.Equal(t, "DEVOLUCIÓN", modeTitle(entity.FlowReturn))
	assert.Equal(t, "FACTURA DE VENTA", modeTitle(entity.FlowSale))
}

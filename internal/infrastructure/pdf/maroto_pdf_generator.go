// Package pdf genera el comprobante imprimible de una factura de campo guardada.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Empresa + Empleado  │  N° Factura + Fecha + Modo   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  LÍNEAS: No | Producto | Serial | Cant | Libre | Tarifa | Neto│
//	│  ─────────────────────────────────────────────────────────  │
//	│  AJUSTES: Cuenta | Tipo | Suma | Resta | Comentario          │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Bruto / Sumas / Restas / TOTAL / Cobros / Saldo    │
//	│  FOOTER: QR con el número de factura                         │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strconv"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jhoicas/fieldservice-invoicing/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator implementa billing.InvoicePDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct {
	companyName string
	printer     *message.Printer
}

// NewMarotoPDFGenerator construye el generador. lang define el formato de los montos.
func NewMarotoPDFGenerator(companyName string, lang language.Tag) *MarotoPDFGenerator {
	return &MarotoPDFGenerator{
		companyName: companyName,
		printer:     message.NewPrinter(lang),
	}
}

// GenerateInvoicePDF genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateInvoicePDF(
	_ context.Context,
	invoice *entity.Invoice,
	lines []entity.InvoiceLine,
	adjustments []entity.InvoiceAdjustment,
	employeeName string,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Factura "+invoice.Number, true).
		WithAuthor(g.companyName, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(g.headerRow(invoice, employeeName))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	// Líneas
	m.AddRows(sectionTitle("DETALLE"))
	m.AddRows(linesHeaderRow())
	m.AddRows(g.lineRows(lines)...)

	// Ajustes
	if len(adjustments) > 0 {
		m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
		m.AddRows(sectionTitle("AJUSTES"))
		m.AddRows(adjustmentsHeaderRow())
		m.AddRows(g.adjustmentRows(adjustments)...)
	}

	// Totales
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(g.totalsRow(invoice))

	// Footer
	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRow(invoice))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: empresa + empleado (izq) y N° factura + fecha + modo (der).
func (g *MarotoPDFGenerator) headerRow(invoice *entity.Invoice, employeeName string) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(g.companyName, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Empleado: "+nonEmpty(employeeName, invoice.EmployeeID), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New(modeTitle(invoice.Mode), props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(invoice.Number, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Fecha: "+invoice.Date.Format("02/01/2006"), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

func sectionTitle(s string) core.Row {
	return row.New(6).Add(col.New(12).Add(
		text.New(s, props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
	))
}

func headerCell(label string, size int, a align.Type) core.Col {
	return col.New(size).Add(text.New(label, props.Text{
		Style: fontstyle.Bold, Size: 8, Align: a,
		Color: colorWhite, Top: 2, Left: 1, Right: 1,
	}))
}

func cell(s string, size int, a align.Type) core.Col {
	return col.New(size).Add(text.New(s, props.Text{Size: 8, Align: a, Top: 1, Left: 1, Right: 1}))
}

func linesHeaderRow() core.Row {
	return row.New(8).WithStyle(&props.Cell{BackgroundColor: colorPrimary}).Add(
		headerCell("No", 1, align.Center),
		headerCell("Producto", 4, align.Left),
		headerCell("Serial", 2, align.Left),
		headerCell("Cant.", 1, align.Center),
		headerCell("Libre", 1, align.Center),
		headerCell("Tarifa", 1, align.Right),
		headerCell("Neto", 2, align.Right),
	)
}

// lineRows: una fila por línea guardada, en su orden de presentación.
func (g *MarotoPDFGenerator) lineRows(lines []entity.InvoiceLine) []core.Row {
	result := make([]core.Row, 0, len(lines))
	for _, l := range lines {
		result = append(result, row.New(7).Add(
			cell(strconv.Itoa(l.No), 1, align.Center),
			cell(l.ProductName, 4, align.Left),
			cell(nonEmpty(l.Serial(), "—"), 2, align.Left),
			cell(strconv.Itoa(l.Quantity), 1, align.Center),
			cell(strconv.Itoa(l.FreeQuantity), 1, align.Center),
			cell(g.formatAmount(l.Rate), 1, align.Right),
			cell(g.formatAmount(l.NetAmount), 2, align.Right),
		))
	}
	return result
}

func adjustmentsHeaderRow() core.Row {
	return row.New(8).WithStyle(&props.Cell{BackgroundColor: colorPrimary}).Add(
		headerCell("Cuenta", 3, align.Left),
		headerCell("Tipo", 1, align.Center),
		headerCell("Suma", 2, align.Right),
		headerCell("Resta", 2, align.Right),
		headerCell("Comentario", 4, align.Left),
	)
}

func (g *MarotoPDFGenerator) adjustmentRows(adjustments []entity.InvoiceAdjustment) []core.Row {
	result := make([]core.Row, 0, len(adjustments))
	for _, a := range adjustments {
		result = append(result, row.New(7).Add(
			cell(a.AccountName, 3, align.Left),
			cell(string(a.AccountType), 1, align.Center),
			cell(g.formatAmount(a.AddAmount), 2, align.Right),
			cell(g.formatAmount(a.LessAmount), 2, align.Right),
			cell(a.Comments, 4, align.Left),
		))
	}
	return result
}

// totalsRow: bloque de totales alineado a la derecha.
func (g *MarotoPDFGenerator) totalsRow(invoice *entity.Invoice) core.Row {
	label := func(s string) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2})
	}
	value := func(d decimal.Decimal) core.Component {
		return text.New(g.formatAmount(d), props.Text{Size: 9, Align: align.Right, Right: 1})
	}
	grand := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: colorPrimary, Right: 1,
		})
	}

	collected := invoice.Cash.Add(invoice.Card).Add(invoice.UPI)

	return row.New(34).Add(
		col.New(6).Add(
			text.New(fmt.Sprintf("Ítems: %d   |   Unidades: %d", invoice.ItemCount, invoice.TotalQuantity), props.Text{
				Size: 8, Color: colorGray, Top: 1,
			}),
			text.New(fmt.Sprintf("Efectivo: %s   Tarjeta: %s   UPI: %s",
				g.formatAmount(invoice.Cash), g.formatAmount(invoice.Card), g.formatAmount(invoice.UPI),
			), props.Text{Size: 8, Color: colorGray, Top: 7}),
		),
		col.New(3).Add(
			label("Bruto:"),
			label("Sumas:"),
			label("Restas:"),
			grand("TOTAL:"),
			label("Cobrado:"),
			label("Saldo:"),
		),
		col.New(3).Add(
			value(invoice.TotalGross),
			value(invoice.TotalAdd),
			value(invoice.TotalLess),
			grand(g.formatAmount(invoice.TotalBillValue)),
			value(collected),
			value(invoice.Balance),
		),
	)
}

// footerRow: QR con el número de factura para búsqueda rápida en mostrador.
func footerRow(invoice *entity.Invoice) core.Row {
	return row.New(35).Add(
		col.New(3).Add(code.NewQr(invoice.Number, props.Rect{Percent: 95, Center: true})),
		col.New(9).Add(
			text.New("Conserve este comprobante.", props.Text{
				Size: 8, Top: 4, Left: 3, Color: colorGray,
			}),
			text.New(modeTitle(invoice.Mode)+" "+invoice.Number, props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 14, Left: 3, Color: colorPrimary,
			}),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func modeTitle(m entity.FlowMode) string {
	if m == entity.FlowReturn {
		return "DEVOLUCIÓN"
	}
	return "FACTURA DE VENTA"
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// formatAmount agrupa miles y fija dos decimales según el idioma del generador.
func (g *MarotoPDFGenerator) formatAmount(d decimal.Decimal) string {
	return g.printer.Sprintf("%.2f", d.Round(2).InexactFloat64())
}

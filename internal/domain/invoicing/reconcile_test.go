package invoicing_test

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/fieldservice-invoicing/internal/domain"
	"github.com/jhoicas/fieldservice-invoicing/internal/domain/entity"
	"github.com/jhoicas/fieldservice-invoicing/internal/domain/invoicing"
)

// ── helpers ───────────────────────────────────────────────────────────────────

// seqIDs devuelve un generador de IDs predecible: L1, L2, ...
func seqIDs() invoicing.IDFunc {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("L%d", n)
	}
}

func toner() entity.ProductDescriptor {
	return entity.ProductDescriptor{
		ProductID: "P-TONER",
		Name:      "Tóner negro",
		UnitRate:  decimal.NewNullDecimal(decimal.NewFromInt(450)),
	}
}

func copier() entity.ProductDescriptor {
	return entity.ProductDescriptor{
		ProductID:            "P-COPIER",
		Name:                 "Copiadora A3",
		UnitRate:             decimal.NewNullDecimal(decimal.NewFromInt(52000)),
		RequiresUniqueSerial: true,
	}
}

func strPtr(s string) *string { return &s }

func requireDec(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.True(t, decimal.RequireFromString(want).Equal(got), "esperado %s, obtenido %s", want, got)
}

// ── escaneos inválidos ────────────────────────────────────────────────────────

func TestReconcile_ScanVacioFalla(t *testing.T) {
	_, err := invoicing.Reconcile(invoicing.ScanInput{
		Scan: "   ", Mode: entity.FlowSale, Product: toner(),
	}, seqIDs())
	assert.ErrorIs(t, err, domain.ErrInvalidScan)
}

func TestNormalizeScan_RecortaEspacios(t *testing.T) {
	s, err := invoicing.NormalizeScan("  8901234 \n")
	require.NoError(t, err)
	assert.Equal(t, "8901234", s)
}

// ── productos sin serial único ────────────────────────────────────────────────

// Escanear dos veces el mismo producto no serializado deja una sola línea con cantidad 2.
func TestReconcile_NoSerializadoDosVecesIncrementa(t *testing.T) {
	ids := seqIDs()
	first, err := invoicing.Reconcile(invoicing.ScanInput{Scan: "TNR-1", Mode: entity.FlowSale, Product: toner()}, ids)
	require.NoError(t, err)
	assert.Equal(t, invoicing.TagNewLineUnserialized, first.Tag)

	second, err := invoicing.Reconcile(invoicing.ScanInput{Scan: "TNR-1", Mode: entity.FlowSale, Product: toner(), Lines: first.Lines}, ids)
	require.NoError(t, err)
	assert.Equal(t, invoicing.TagQtyIncremented, second.Tag)
	require.Len(t, second.Lines, 1)
	assert.Equal(t, 2, second.Lines[0].Quantity)
	assert.Nil(t, second.Lines[0].SerialNumber)
	requireDec(t, "900", second.Lines[0].NetAmount)
	assert.Equal(t, "L1", second.Lines[0].ID, "el ID de la línea se conserva")
}

func TestReconcile_NoModificaLaListaDeEntrada(t *testing.T) {
	lines := []entity.LineItem{{ID: "A", ProductID: "P-TONER", Quantity: 1, Rate: decimal.NewFromInt(450)}}
	out, err := invoicing.Reconcile(invoicing.ScanInput{Scan: "TNR-1", Mode: entity.FlowSale, Product: toner(), Lines: lines}, seqIDs())
	require.NoError(t, err)
	assert.Equal(t, 1, lines[0].Quantity, "la entrada no debe mutar")
	assert.Equal(t, 2, out.Lines[0].Quantity)
}

// Una línea serializada del mismo producto no cuenta como la línea sin serial.
func TestReconcile_NoSerializadoIgnoraLineasConSerial(t *testing.T) {
	lines := []entity.LineItem{{ID: "A", ProductID: "P-TONER", SerialNumber: strPtr("X1"), Quantity: 1}}
	out, err := invoicing.Reconcile(invoicing.ScanInput{Scan: "TNR-1", Mode: entity.FlowSale, Product: toner(), Lines: lines}, seqIDs())
	require.NoError(t, err)
	assert.Equal(t, invoicing.TagNewLineUnserialized, out.Tag)
	require.Len(t, out.Lines, 2)
	assert.Nil(t, out.Lines[1].SerialNumber)
}

func TestReconcile_DevolucionSinTarifaUsaCero(t *testing.T) {
	p := toner()
	p.UnitRate = decimal.NullDecimal{}
	out, err := invoicing.Reconcile(invoicing.ScanInput{Scan: "TNR-1", Mode: entity.FlowReturn, Product: p}, seqIDs())
	require.NoError(t, err)
	require.Len(t, out.Lines, 1)
	requireDec(t, "0", out.Lines[0].Rate)
	assert.Equal(t, "TNR-1", out.Lines[0].Barcode)
}

// ── serializados en venta ─────────────────────────────────────────────────────

// El mismo serial escaneado dos veces en venta genera dos líneas distintas.
func TestReconcile_SerializadoVentaDuplicadoGeneraDosLineas(t *testing.T) {
	ids := seqIDs()
	first, err := invoicing.Reconcile(invoicing.ScanInput{Scan: "SN-001", Mode: entity.FlowSale, Product: copier()}, ids)
	require.NoError(t, err)
	second, err := invoicing.Reconcile(invoicing.ScanInput{Scan: "SN-001", Mode: entity.FlowSale, Product: copier(), Lines: first.Lines}, ids)
	require.NoError(t, err)

	assert.Equal(t, invoicing.TagNewLineSerial, second.Tag)
	require.Len(t, second.Lines, 2)
	assert.NotEqual(t, second.Lines[0].ID, second.Lines[1].ID)
	for _, l := range second.Lines {
		assert.Equal(t, 1, l.Quantity)
		assert.Equal(t, "SN-001", l.Serial())
		requireDec(t, "52000", l.Rate)
	}
}

func TestReconcile_SerialDelResolvedorTienePrioridad(t *testing.T) {
	p := copier()
	p.SerialNumber = strPtr("RES-77")
	out, err := invoicing.Reconcile(invoicing.ScanInput{Scan: "890000", Mode: entity.FlowSale, Product: p}, seqIDs())
	require.NoError(t, err)
	assert.Equal(t, "RES-77", out.Lines[0].Serial())
	assert.Equal(t, "890000", out.Lines[0].Barcode)
}

// ── serializados en devolución ────────────────────────────────────────────────

func TestReconcile_DevolucionConEntregadosPideDesambiguacion(t *testing.T) {
	lines := []entity.LineItem{{ID: "A", ProductID: "P-TONER", Quantity: 3}}
	issued := []entity.IssuedSerial{{SerialNumber: "S1", Quantity: 1, VoucherSeries: "DC", VoucherNo: "10"}}
	out, err := invoicing.Reconcile(invoicing.ScanInput{
		Scan: "890000", Mode: entity.FlowReturn, Product: copier(), Lines: lines, Issued: issued,
	}, seqIDs())
	require.NoError(t, err)
	assert.Equal(t, invoicing.TagDisambiguationRequired, out.Tag)
	assert.Equal(t, lines, out.Lines, "no se muta la lista mientras la selección está pendiente")
	assert.Equal(t, issued, out.Issued)
}

func TestReconcile_DevolucionSinEntregadosAgregaConTarifaCero(t *testing.T) {
	out, err := invoicing.Reconcile(invoicing.ScanInput{
		Scan: "SN-9", Mode: entity.FlowReturn, Product: copier(),
	}, seqIDs())
	require.NoError(t, err)
	assert.Equal(t, invoicing.TagNewLineSerial, out.Tag)
	require.Len(t, out.Lines, 1)
	assert.Equal(t, "SN-9", out.Lines[0].Serial())
	requireDec(t, "0", out.Lines[0].Rate)
}

func TestNeedsIssuedLookup(t *testing.T) {
	assert.True(t, invoicing.NeedsIssuedLookup(entity.FlowReturn, copier()))
	assert.False(t, invoicing.NeedsIssuedLookup(entity.FlowSale, copier()))
	assert.False(t, invoicing.NeedsIssuedLookup(entity.FlowReturn, toner()))
}

// ── serial digitado ───────────────────────────────────────────────────────────

// Digitar S2 sobre la línea S1 deja ambas: la original nunca se sobrescribe.
func TestEnterSerial_ClonaSinSobrescribir(t *testing.T) {
	lines := []entity.LineItem{{
		ID: "A", ProductID: "P-COPIER", ProductName: "Copiadora A3", Barcode: "890000",
		SerialNumber: strPtr("S1"), Quantity: 1, Rate: decimal.NewFromInt(100),
		NetAmount: decimal.NewFromInt(100),
	}}
	out, err := invoicing.EnterSerial(lines, "A", " S2 ", seqIDs())
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "S1", out[0].Serial())
	assert.Equal(t, "S2", out[1].Serial())
	assert.Equal(t, "P-COPIER", out[1].ProductID)
	assert.Equal(t, "890000", out[1].Barcode)
	assert.Equal(t, 1, out[1].Quantity)
	requireDec(t, "100", out[1].NetAmount)
}

// También sobre una línea sin serial con cantidad > 1: la nueva línea tiene cantidad 1.
func TestEnterSerial_SobreLineaNoSerializada(t *testing.T) {
	lines := []entity.LineItem{{ID: "A", ProductID: "P-TONER", Quantity: 4, Rate: decimal.NewFromInt(10)}}
	out, err := invoicing.EnterSerial(lines, "A", "T-1", seqIDs())
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, 4, out[0].Quantity)
	assert.Nil(t, out[0].SerialNumber)
	assert.Equal(t, 1, out[1].Quantity)
}

func TestEnterSerial_Errores(t *testing.T) {
	lines := []entity.LineItem{{ID: "A", ProductID: "P"}}
	_, err := invoicing.EnterSerial(lines, "Z", "S1", seqIDs())
	assert.ErrorIs(t, err, domain.ErrLineNotFound)
	_, err = invoicing.EnterSerial(lines, "A", "  ", seqIDs())
	assert.ErrorIs(t, err, domain.ErrInvalidScan)
}

// ── edición y borrado ─────────────────────────────────────────────────────────

func TestEditLine_RecalculaNeto(t *testing.T) {
	lines := []entity.LineItem{{ID: "A", Quantity: 1, Rate: decimal.NewFromInt(10)}}
	qty := 3
	rate := decimal.RequireFromString("12.5")
	out, err := invoicing.EditLine(lines, "A", invoicing.LineEdit{Quantity: &qty, Rate: &rate})
	require.NoError(t, err)
	requireDec(t, "37.5", out[0].NetAmount)
	assert.Equal(t, 1, lines[0].Quantity)
}

func TestEditLine_RechazaNegativos(t *testing.T) {
	lines := []entity.LineItem{{ID: "A", Quantity: 1}}
	neg := -1
	_, err := invoicing.EditLine(lines, "A", invoicing.LineEdit{FreeQuantity: &neg})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDeleteLine(t *testing.T) {
	lines := []entity.LineItem{{ID: "A"}, {ID: "B"}, {ID: "C"}}
	out, err := invoicing.DeleteLine(lines, "B")
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "A", out[0].ID)
	assert.Equal(t, "C", out[1].ID)
	assert.Len(t, lines, 3)

	_, err = invoicing.DeleteLine(lines, "Z")
	assert.ErrorIs(t, err, domain.ErrLineNotFound)
}

func TestNumber_Consecutivo(t *testing.T) {
	out := invoicing.Number([]entity.LineItem{{ID: "X"}, {ID: "Y"}})
	assert.Equal(t, 1, out[0].No)
	assert.Equal(t, 2, out[1].No)
	assert.Equal(t, "Y", out[1].ID)
}

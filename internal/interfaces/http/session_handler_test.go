package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/fieldservice-invoicing/internal/application/billing"
	"github.com/jhoicas/fieldservice-invoicing/internal/application/dto"
	"github.com/jhoicas/fieldservice-invoicing/internal/application/session"
	"github.com/jhoicas/fieldservice-invoicing/internal/domain"
	"github.com/jhoicas/fieldservice-invoicing/internal/domain/entity"
	"github.com/jhoicas/fieldservice-invoicing/internal/domain/repository"
	apphttp "github.com/jhoicas/fieldservice-invoicing/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/fieldservice-invoicing/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes
// ──────────────────────────────────────────────────────────────────────────────

type stubBarcodes map[string]entity.ProductDescriptor

func (s stubBarcodes) ResolveBarcode(_ context.Context, code string) (*entity.ProductDescriptor, error) {
	p, ok := s[code]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	return &p, nil
}

type stubIssued map[string][]entity.IssuedSerial

func (s stubIssued) IssuedSerials(_ context.Context, code, _ string) ([]entity.IssuedSerial, error) {
	return s[code], nil
}

type stubAccounts []entity.AdjustmentAccount

func (s stubAccounts) List(context.Context) ([]entity.AdjustmentAccount, error) { return s, nil }

func (s stubAccounts) GetByName(_ context.Context, name string) (*entity.AdjustmentAccount, error) {
	for _, a := range s {
		if a.Name == name {
			acc := a
			return &acc, nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

// memInvoices guarda en memoria lo que persiste Save para consultarlo después.
type memInvoices struct {
	mu          sync.Mutex
	invoices    map[string]*entity.Invoice
	lines       []entity.InvoiceLine
	adjustments []entity.InvoiceAdjustment
}

func newMemInvoices() *memInvoices { return &memInvoices{invoices: map[string]*entity.Invoice{}} }

func (m *memInvoices) Create(_ context.Context, inv *entity.Invoice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invoices[inv.ID] = inv
	return nil
}

func (m *memInvoices) CreateLine(_ context.Context, l *entity.InvoiceLine) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lines = append(m.lines, *l)
	return nil
}

func (m *memInvoices) CreateAdjustment(_ context.Context, a *entity.InvoiceAdjustment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.adjustments = append(m.adjustments, *a)
	return nil
}

func (m *memInvoices) GetByID(_ context.Context, id string) (*entity.Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.invoices[id], nil
}

func (m *memInvoices) GetLines(_ context.Context, id string) ([]entity.InvoiceLine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entity.InvoiceLine
	for _, l := range m.lines {
		if l.InvoiceID == id {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *memInvoices) GetAdjustments(_ context.Context, id string) ([]entity.InvoiceAdjustment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entity.InvoiceAdjustment
	for _, a := range m.adjustments {
		if a.InvoiceID == id {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memInvoices) ListByEmployee(_ context.Context, employeeID string, limit, offset int) ([]*entity.Invoice, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []*entity.Invoice
	for _, inv := range m.invoices {
		if inv.EmployeeID == employeeID {
			all = append(all, inv)
		}
	}
	total := len(all)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

type memTx struct{ repo *memInvoices }

func (t memTx) RunInvoice(_ context.Context, fn func(repository.InvoiceRepository) error) error {
	return fn(t.repo)
}

type noUsers struct{}

func (noUsers) GetByID(string) (*entity.User, error)    { return nil, nil }
func (noUsers) GetByEmail(string) (*entity.User, error) { return nil, nil }

type fakePDF struct{}

func (fakePDF) GenerateInvoicePDF(_ context.Context, inv *entity.Invoice, lines []entity.InvoiceLine, _ []entity.InvoiceAdjustment, _ string) ([]byte, error) {
	return []byte("%PDF-fake " + inv.Number), nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

const (
	empA = "EMP-A"
	empB = "EMP-B"
)

func newAPI(t *testing.T) (*fiber.App, *memInvoices) {
	t.Helper()
	serial := func(s string) entity.IssuedSerial {
		return entity.IssuedSerial{SerialNumber: s, Quantity: 1, VoucherSeries: "DN", VoucherNo: "1001"}
	}
	barcodes := stubBarcodes{
		"TNR": {ProductID: "P-TONER", Name: "Tóner", UnitRate: decimal.NewNullDecimal(decimal.NewFromInt(450))},
		"CPR": {ProductID: "P-COPIER", Name: "Copiadora", RequiresUniqueSerial: true,
			UnitRate: decimal.NewNullDecimal(decimal.NewFromInt(1000))},
	}
	issued := stubIssued{"CPR": {serial("S1"), serial("S2"), serial("S3")}}
	accounts := stubAccounts{
		{ID: "A-1", Name: "Flete", Type: entity.AccountAdd},
		{ID: "A-2", Name: "Descuento", Type: entity.AccountLess},
	}
	repo := newMemInvoices()

	uc := session.NewUseCase(session.NewStore(time.Hour, nil), barcodes, issued, accounts,
		memTx{repo: repo}, zerolog.Nop(), session.Config{ResolverTimeout: time.Second})

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		SessionUC:  uc,
		InvoiceUC:  billing.NewInvoiceUseCase(repo),
		InvoicePDF: billing.NewPDFUseCase(repo, noUsers{}, fakePDF{}),
		JWTSecret:  testJWTSecret,
		Logger:     zerolog.Nop(),
	})
	return app, repo
}

func bearer(t *testing.T, employeeID, role string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, pkgjwt.Identity{EmployeeID: employeeID, Role: role}, testIssuer, testExpMin)
	require.NoError(t, err)
	return "Bearer " + tok
}

// call envía la petición y devuelve status y cuerpo.
func call(t *testing.T, app *fiber.App, method, path, auth string, body any) (int, []byte) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), string(raw))
	return v
}

func openSession(t *testing.T, app *fiber.App, auth, mode string) string {
	t.Helper()
	status, raw := call(t, app, http.MethodPost, "/api/sessions", auth, dto.OpenSessionRequest{Mode: mode})
	require.Equal(t, http.StatusCreated, status, string(raw))
	return decode[dto.SnapshotResponse](t, raw).SessionID
}

func errCode(t *testing.T, raw []byte) string {
	t.Helper()
	return decode[dto.ErrorResponse](t, raw).Code
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

func TestSessions_VentaCompleta(t *testing.T) {
	app, repo := newAPI(t)
	auth := bearer(t, empA, entity.RoleTechnician)
	id := openSession(t, app, auth, "SALE")
	base := "/api/sessions/" + id

	status, raw := call(t, app, http.MethodPost, base+"/scans", auth, dto.ScanRequest{Scan: "TNR"})
	require.Equal(t, http.StatusOK, status, string(raw))
	assert.Equal(t, "NEW_LINE_UNSERIALIZED", decode[dto.ScanResponse](t, raw).Tag)

	status, raw = call(t, app, http.MethodPost, base+"/scans", auth, dto.ScanRequest{Scan: "TNR"})
	require.Equal(t, http.StatusOK, status)
	scan := decode[dto.ScanResponse](t, raw)
	assert.Equal(t, "QTY_INCREMENTED", scan.Tag)
	require.Len(t, scan.Snapshot.Lines, 1)
	assert.Equal(t, 2, scan.Snapshot.Lines[0].Quantity)

	status, raw = call(t, app, http.MethodPost, base+"/adjustments", auth,
		dto.AdjustmentRequest{AccountName: "Flete", AddAmount: decimal.NewFromInt(100)})
	require.Equal(t, http.StatusCreated, status, string(raw))
	snap := decode[dto.SnapshotResponse](t, raw)
	assert.True(t, snap.Summary.TotalBillValue.Equal(decimal.NewFromInt(1000)), snap.Summary.TotalBillValue.String())

	status, raw = call(t, app, http.MethodPut, base+"/collections", auth,
		dto.CollectionsRequest{Cash: decimal.NewFromInt(600)})
	require.Equal(t, http.StatusOK, status)
	assert.True(t, decode[dto.SnapshotResponse](t, raw).Balance.Equal(decimal.NewFromInt(400)))

	status, raw = call(t, app, http.MethodGet, base+"/events", auth, nil)
	require.Equal(t, http.StatusOK, status)
	events := decode[struct {
		Events []session.Event `json:"events"`
	}](t, raw).Events
	assert.Len(t, events, 4)

	status, raw = call(t, app, http.MethodPost, base+"/save", auth, nil)
	require.Equal(t, http.StatusCreated, status, string(raw))
	inv := decode[dto.InvoiceResponse](t, raw)
	assert.Regexp(t, `^INV-\d{8}-[0-9A-F]{8}$`, inv.Number)
	assert.True(t, inv.Balance.Equal(decimal.NewFromInt(400)))
	assert.Len(t, repo.lines, 1)
	assert.Len(t, repo.adjustments, 1)

	// La sesión ya no existe.
	status, raw = call(t, app, http.MethodGet, base, auth, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "SESSION_NOT_FOUND", errCode(t, raw))

	// Listado y PDF de la factura guardada.
	status, raw = call(t, app, http.MethodGet, "/api/invoices?limit=10", auth, nil)
	require.Equal(t, http.StatusOK, status)
	list := decode[dto.InvoiceListResponse](t, raw)
	require.Len(t, list.Items, 1)
	assert.Equal(t, 1, list.Page.Total)

	req := httptest.NewRequest(http.MethodGet, "/api/invoices/"+inv.ID+"/pdf", nil)
	req.Header.Set("Authorization", auth)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), inv.Number)
}

func TestSessions_DevolucionConSeleccion(t *testing.T) {
	app, _ := newAPI(t)
	auth := bearer(t, empA, entity.RoleTechnician)
	base := "/api/sessions/" + openSession(t, app, auth, "RETURN")

	status, raw := call(t, app, http.MethodPost, base+"/scans", auth, dto.ScanRequest{Scan: "CPR"})
	require.Equal(t, http.StatusOK, status, string(raw))
	scan := decode[dto.ScanResponse](t, raw)
	assert.Equal(t, "DISAMBIGUATION_REQUIRED", scan.Tag)
	require.NotNil(t, scan.Snapshot.Pending)
	assert.Len(t, scan.Snapshot.Pending.Addable, 3)
	assert.Empty(t, scan.Snapshot.Lines)

	// Guardar con selección pendiente es un conflicto.
	status, raw = call(t, app, http.MethodPost, base+"/save", auth, nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "CONFLICT", errCode(t, raw))

	// Token viejo → conflicto; sin cambios.
	status, _ = call(t, app, http.MethodPost, base+"/selection", auth,
		dto.SelectionRequest{Token: "otro", Add: []string{"S1"}})
	assert.Equal(t, http.StatusConflict, status)

	status, raw = call(t, app, http.MethodPost, base+"/selection", auth,
		dto.SelectionRequest{Token: scan.Snapshot.Pending.Token, Add: []string{"S1", "S2"}})
	require.Equal(t, http.StatusOK, status, string(raw))
	snap := decode[dto.SnapshotResponse](t, raw)
	assert.Nil(t, snap.Pending)
	require.Len(t, snap.Lines, 2)
	assert.Equal(t, "S1", snap.Lines[0].Serial())
	assert.Equal(t, 1, snap.Lines[0].No)
	assert.Equal(t, 2, snap.Lines[1].No)

	// Sin selección pendiente.
	status, raw = call(t, app, http.MethodDelete, base+"/selection?token=x", auth, nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "NO_PENDING_SELECTION", errCode(t, raw))

	// Edición de cantidad libre sobre la línea.
	lineID := snap.Lines[0].ID
	status, raw = call(t, app, http.MethodPatch, base+"/lines/"+lineID, auth,
		dto.EditLineRequest{Field: "free_quantity", Value: "1"})
	require.Equal(t, http.StatusOK, status, string(raw))
	assert.Equal(t, 1, decode[dto.SnapshotResponse](t, raw).Lines[0].FreeQuantity)

	status, raw = call(t, app, http.MethodDelete, base+"/lines/"+lineID, auth, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[dto.SnapshotResponse](t, raw).Lines, 1)
}

func TestSessions_Errores(t *testing.T) {
	app, _ := newAPI(t)
	auth := bearer(t, empA, entity.RoleTechnician)

	status, raw := call(t, app, http.MethodPost, "/api/sessions", auth, dto.OpenSessionRequest{Mode: "LOAN"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", errCode(t, raw))

	base := "/api/sessions/" + openSession(t, app, auth, "SALE")

	status, raw = call(t, app, http.MethodPost, base+"/scans", auth, dto.ScanRequest{Scan: "NOPE"})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "PRODUCT_NOT_FOUND", errCode(t, raw))

	status, raw = call(t, app, http.MethodPost, base+"/scans", auth, dto.ScanRequest{Scan: "   "})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID_SCAN", errCode(t, raw))

	status, raw = call(t, app, http.MethodPost, base+"/adjustments", auth, dto.AdjustmentRequest{AccountName: "Flete"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "NO_AMOUNT", errCode(t, raw))

	status, raw = call(t, app, http.MethodPost, base+"/adjustments", auth,
		dto.AdjustmentRequest{AccountName: "Propina", AddAmount: decimal.NewFromInt(5)})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "ACCOUNT_NOT_FOUND", errCode(t, raw))

	status, raw = call(t, app, http.MethodPost, base+"/save", auth, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", errCode(t, raw))

	status, raw = call(t, app, http.MethodPatch, base+"/lines/no-existe", auth,
		dto.EditLineRequest{Field: "colour", Value: "x"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", errCode(t, raw))

	status, raw = call(t, app, http.MethodGet, "/api/sessions/no-existe", auth, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "SESSION_NOT_FOUND", errCode(t, raw))
}

func TestSessions_AccesoPorEmpleadoYRol(t *testing.T) {
	app, _ := newAPI(t)
	base := "/api/sessions/" + openSession(t, app, bearer(t, empA, entity.RoleTechnician), "SALE")

	status, raw := call(t, app, http.MethodGet, base, bearer(t, empB, entity.RoleTechnician), nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", errCode(t, raw))

	status, _ = call(t, app, http.MethodPost, "/api/sessions", bearer(t, empA, entity.RoleCashier),
		dto.OpenSessionRequest{Mode: "SALE"})
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = call(t, app, http.MethodGet, base, "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestSessions_Fields(t *testing.T) {
	app, _ := newAPI(t)
	auth := bearer(t, empA, entity.RoleTechnician)
	base := "/api/sessions/" + openSession(t, app, auth, "RETURN")

	status, raw := call(t, app, http.MethodGet, base+"/fields", auth, nil)
	require.Equal(t, http.StatusOK, status, string(raw))
	fields := decode[dto.FieldsResponse](t, raw)
	assert.NotEmpty(t, fields.Lines)
	assert.NotEmpty(t, fields.Adjustments)
}

func TestInvoices_PDFDeOtroEmpleado(t *testing.T) {
	app, repo := newAPI(t)
	require.NoError(t, repo.Create(context.Background(), &entity.Invoice{ID: "INV-1", EmployeeID: empB, Number: "INV-X"}))

	status, raw := call(t, app, http.MethodGet, "/api/invoices/INV-1/pdf", bearer(t, empA, entity.RoleTechnician), nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", errCode(t, raw))

	status, _ = call(t, app, http.MethodGet, "/api/invoices/INV-1/pdf", bearer(t, empA, entity.RoleAdmin), nil)
	assert.Equal(t, http.StatusOK, status)

	status, raw = call(t, app, http.MethodGet, "/api/invoices/INV-404", bearer(t, empA, entity.RoleTechnician), nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", errCode(t, raw))
}

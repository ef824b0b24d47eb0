package session

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/fieldservice-invoicing/internal/application/dto"
	"github.com/jhoicas/fieldservice-invoicing/internal/domain"
	"github.com/jhoicas/fieldservice-invoicing/internal/domain/entity"
	"github.com/jhoicas/fieldservice-invoicing/internal/domain/invoicing"
	"github.com/jhoicas/fieldservice-invoicing/internal/domain/repository"
)

// InvoiceTxRunner ejecuta el guardado de la factura dentro de una transacción.
type InvoiceTxRunner interface {
	RunInvoice(ctx context.Context, fn func(invoiceRepo repository.InvoiceRepository) error) error
}

// Config parámetros del caso de uso.
type Config struct {
	ResolverTimeout time.Duration    // límite por consulta a resolvedores
	Now             func() time.Time // nil = time.Now
}

// UseCase operaciones sobre facturas en curso: escaneo, selección de seriales,
// edición de líneas, ajustes, cobros y guardado.
type UseCase struct {
	store    *Store
	barcodes repository.BarcodeResolver
	issued   repository.IssuedSerialResolver
	accounts repository.AccountRepository
	txRunner InvoiceTxRunner
	log      zerolog.Logger
	timeout  time.Duration
	now      func() time.Time
}

// NewUseCase construye el caso de uso inyectando sus dependencias.
func NewUseCase(
	store *Store,
	barcodes repository.BarcodeResolver,
	issued repository.IssuedSerialResolver,
	accounts repository.AccountRepository,
	txRunner InvoiceTxRunner,
	log zerolog.Logger,
	cfg Config,
) *UseCase {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	timeout := cfg.ResolverTimeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &UseCase{
		store:    store,
		barcodes: barcodes,
		issued:   issued,
		accounts: accounts,
		txRunner: txRunner,
		log:      log.With().Str("component", "session").Logger(),
		timeout:  timeout,
		now:      now,
	}
}

// Open abre una sesión vacía para el empleado.
func (uc *UseCase) Open(ctx context.Context, employeeID string, in dto.OpenSessionRequest) (*dto.SnapshotResponse, error) {
	mode := entity.FlowMode(strings.ToUpper(strings.TrimSpace(in.Mode)))
	if !mode.Valid() {
		return nil, fmt.Errorf("%w: modo %q", domain.ErrInvalidInput, in.Mode)
	}
	st := NewState(uuid.New().String(), employeeID, mode)
	uc.store.put(newSession(st, uc.now()))
	uc.log.Info().Str("session_id", st.ID).Str("employee_id", employeeID).Str("mode", string(mode)).Msg("sesión abierta")
	snap := toSnapshot(st)
	return &snap, nil
}

// Get devuelve el estado actual de la sesión.
func (uc *UseCase) Get(ctx context.Context, employeeID, sessionID string) (*dto.SnapshotResponse, error) {
	s, err := uc.load(employeeID, sessionID)
	if err != nil {
		return nil, err
	}
	snap := toSnapshot(s.State())
	return &snap, nil
}

// Fields esquema de columnas: líneas según el modo y ajustes sobre el catálogo de cuentas.
func (uc *UseCase) Fields(ctx context.Context, employeeID, sessionID string) (*dto.FieldsResponse, error) {
	s, err := uc.load(employeeID, sessionID)
	if err != nil {
		return nil, err
	}
	accounts, err := uc.accounts.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listar cuentas: %w", err)
	}
	return &dto.FieldsResponse{
		Lines:       entity.LineFields(s.State().Mode),
		Adjustments: entity.AdjustmentFields(accounts),
	}, nil
}

// Scan resuelve el código y lo concilia contra las líneas actuales. Los escaneos de
// una misma sesión se procesan de a uno; un fallo de resolvedor no modifica nada.
func (uc *UseCase) Scan(ctx context.Context, employeeID, sessionID string, in dto.ScanRequest) (*dto.ScanResponse, error) {
	s, err := uc.load(employeeID, sessionID)
	if err != nil {
		return nil, err
	}
	scan, err := invoicing.NormalizeScan(in.Scan)
	if err != nil {
		return nil, err
	}
	if err := s.acquireScan(ctx); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: escaneo anterior en curso", domain.ErrResolverTimeout)
		}
		return nil, fmt.Errorf("esperar escaneo anterior: %w", err)
	}
	defer s.releaseScan()

	product, err := uc.resolveProduct(ctx, scan)
	if err != nil {
		return nil, err
	}

	mode := s.State().Mode
	ev := Event{Type: EventScanResolved, At: uc.now(), Scan: scan, Product: product}
	if invoicing.NeedsIssuedLookup(mode, *product) {
		ev.Issued = uc.lookupIssued(ctx, scan, employeeID)
		if len(ev.Issued) > 0 {
			ev.Token = uuid.New().String()
		}
	}

	st, err := s.apply(ev)
	if err != nil {
		return nil, err
	}
	uc.log.Debug().Str("session_id", sessionID).Str("scan", scan).Str("tag", string(st.LastTag)).Msg("escaneo conciliado")
	return &dto.ScanResponse{Tag: string(st.LastTag), Snapshot: toSnapshot(st)}, nil
}

func (uc *UseCase) resolveProduct(ctx context.Context, scan string) (*entity.ProductDescriptor, error) {
	rctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()
	p, err := uc.barcodes.ResolveBarcode(rctx, scan)
	if err != nil {
		return nil, resolverError(rctx, err)
	}
	if p == nil {
		return nil, domain.ErrProductNotFound
	}
	return p, nil
}

// lookupIssued consulta los seriales entregados. Sin empleado o ante un fallo devuelve
// nil y el escaneo sigue la regla de carga manual.
func (uc *UseCase) lookupIssued(ctx context.Context, scan, employeeID string) []entity.IssuedSerial {
	if employeeID == "" {
		return nil
	}
	rctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()
	issued, err := uc.issued.IssuedSerials(rctx, scan, employeeID)
	if err != nil {
		uc.log.Warn().Err(resolverError(rctx, err)).Str("scan", scan).Str("employee_id", employeeID).
			Msg("consulta de seriales entregados falló; se carga el serial manualmente")
		return nil
	}
	return issued
}

func resolverError(ctx context.Context, err error) error {
	if errors.Is(err, domain.ErrProductNotFound) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", domain.ErrResolverTimeout, err)
	}
	return fmt.Errorf("%w: %v", domain.ErrResolverUnavailable, err)
}

// ConfirmSelection aplica la selección de seriales de la desambiguación vigente.
func (uc *UseCase) ConfirmSelection(ctx context.Context, employeeID, sessionID string, in dto.SelectionRequest) (*dto.SnapshotResponse, error) {
	return uc.mutate(employeeID, sessionID, Event{
		Type:   EventSelectionConfirmed,
		Token:  in.Token,
		Add:    in.Add,
		Remove: in.Remove,
	})
}

// CancelSelection descarta la desambiguación vigente sin tocar las líneas.
func (uc *UseCase) CancelSelection(ctx context.Context, employeeID, sessionID, token string) (*dto.SnapshotResponse, error) {
	return uc.mutate(employeeID, sessionID, Event{Type: EventSelectionCancelled, Token: token})
}

// EditLineField valida value contra el esquema de la columna y lo aplica.
// serial_number nunca sobrescribe la línea: crea una nueva con ese serial.
func (uc *UseCase) EditLineField(ctx context.Context, employeeID, sessionID, lineID string, in dto.EditLineRequest) (*dto.SnapshotResponse, error) {
	s, err := uc.load(employeeID, sessionID)
	if err != nil {
		return nil, err
	}
	field, ok := entity.FindField(entity.LineFields(s.State().Mode), in.Field)
	if !ok {
		return nil, fmt.Errorf("%w: columna %q desconocida", domain.ErrInvalidInput, in.Field)
	}
	if err := field.Validate(in.Value); err != nil {
		return nil, err
	}
	value := strings.TrimSpace(in.Value)

	ev := Event{LineID: lineID, At: uc.now()}
	switch field.Key {
	case entity.FieldSerialNumber:
		ev.Type = EventSerialEntered
		ev.Serial = value
	case entity.FieldQuantity, entity.FieldFreeQuantity:
		n, err := parseQuantity(field.Key, value)
		if err != nil {
			return nil, err
		}
		edit := invoicing.LineEdit{}
		if field.Key == entity.FieldQuantity {
			edit.Quantity = &n
		} else {
			edit.FreeQuantity = &n
		}
		ev.Type = EventLineEdited
		ev.LineEdit = &edit
	case entity.FieldRate:
		rate, err := decimal.NewFromString(value)
		if err != nil {
			return nil, fmt.Errorf("%w: %s debe ser un monto", domain.ErrInvalidInput, field.Key)
		}
		ev.Type = EventLineEdited
		ev.LineEdit = &invoicing.LineEdit{Rate: &rate}
	default:
		return nil, fmt.Errorf("%w: columna %q no editable", domain.ErrInvalidInput, field.Key)
	}
	return uc.applyTo(s, ev)
}

// maxQuantity tope de cantidad por línea; por encima IntPart desborda en silencio.
var maxQuantity = decimal.NewFromInt(math.MaxInt32)

func parseQuantity(key, value string) (int, error) {
	d, err := decimal.NewFromString(value)
	if err != nil || !d.IsInteger() || d.IsNegative() {
		return 0, fmt.Errorf("%w: %s debe ser un entero no negativo", domain.ErrInvalidInput, key)
	}
	if d.GreaterThan(maxQuantity) {
		return 0, fmt.Errorf("%w: %s supera el máximo de %s", domain.ErrInvalidInput, key, maxQuantity)
	}
	return int(d.IntPart()), nil
}

// DeleteLine quita una línea.
func (uc *UseCase) DeleteLine(ctx context.Context, employeeID, sessionID, lineID string) (*dto.SnapshotResponse, error) {
	return uc.mutate(employeeID, sessionID, Event{Type: EventLineDeleted, LineID: lineID})
}

// AddAdjustment agrega un ajuste sobre una cuenta del catálogo.
func (uc *UseCase) AddAdjustment(ctx context.Context, employeeID, sessionID string, in dto.AdjustmentRequest) (*dto.SnapshotResponse, error) {
	s, err := uc.load(employeeID, sessionID)
	if err != nil {
		return nil, err
	}
	account, err := uc.accounts.GetByName(ctx, strings.TrimSpace(in.AccountName))
	if err != nil {
		return nil, err
	}
	return uc.applyTo(s, Event{
		Type: EventAdjustmentAdded,
		At:   uc.now(),
		Entry: &entity.AdjustmentEntry{
			AccountID:   account.ID,
			AccountName: account.Name,
			AccountType: account.Type,
			AddAmount:   in.AddAmount,
			LessAmount:  in.LessAmount,
			Comments:    in.Comments,
		},
	})
}

// EditAdjustment cambia montos o comentarios de un ajuste.
func (uc *UseCase) EditAdjustment(ctx context.Context, employeeID, sessionID, entryID string, in dto.EditAdjustmentRequest) (*dto.SnapshotResponse, error) {
	return uc.mutate(employeeID, sessionID, Event{
		Type:    EventAdjustmentEdited,
		EntryID: entryID,
		AdjustmentEdit: &invoicing.AdjustmentEdit{
			AddAmount:  in.AddAmount,
			LessAmount: in.LessAmount,
			Comments:   in.Comments,
		},
	})
}

// ReassignAccount cambia la cuenta de un ajuste; el monto que no corresponde al tipo queda en 0.
func (uc *UseCase) ReassignAccount(ctx context.Context, employeeID, sessionID, entryID string, in dto.ReassignAccountRequest) (*dto.SnapshotResponse, error) {
	s, err := uc.load(employeeID, sessionID)
	if err != nil {
		return nil, err
	}
	account, err := uc.accounts.GetByName(ctx, strings.TrimSpace(in.AccountName))
	if err != nil {
		return nil, err
	}
	return uc.applyTo(s, Event{Type: EventAccountReassigned, At: uc.now(), EntryID: entryID, Account: account})
}

// RemoveAdjustment quita un ajuste.
func (uc *UseCase) RemoveAdjustment(ctx context.Context, employeeID, sessionID, entryID string) (*dto.SnapshotResponse, error) {
	return uc.mutate(employeeID, sessionID, Event{Type: EventAdjustmentRemoved, EntryID: entryID})
}

// SetCollections registra lo cobrado en efectivo, tarjeta y UPI.
func (uc *UseCase) SetCollections(ctx context.Context, employeeID, sessionID string, in dto.CollectionsRequest) (*dto.SnapshotResponse, error) {
	return uc.mutate(employeeID, sessionID, Event{
		Type:        EventCollectionsSet,
		Collections: &entity.Collections{Cash: in.Cash, Card: in.Card, UPI: in.UPI},
	})
}

// Events log de eventos aplicados, en orden.
func (uc *UseCase) Events(ctx context.Context, employeeID, sessionID string) ([]Event, error) {
	s, err := uc.load(employeeID, sessionID)
	if err != nil {
		return nil, err
	}
	return s.Events(), nil
}

// Save persiste cabecera, líneas numeradas y ajustes en una transacción y cierra la sesión.
// Si falla, la sesión queda abierta tal como estaba.
func (uc *UseCase) Save(ctx context.Context, employeeID, sessionID string) (*dto.InvoiceResponse, error) {
	s, err := uc.load(employeeID, sessionID)
	if err != nil {
		return nil, err
	}
	st, err := s.close()
	if err != nil {
		return nil, err
	}
	if st.Pending != nil {
		s.reopen()
		return nil, fmt.Errorf("%w: hay una selección de seriales pendiente", domain.ErrConflict)
	}
	if len(st.Lines) == 0 {
		s.reopen()
		return nil, fmt.Errorf("%w: la factura no tiene líneas", domain.ErrInvalidInput)
	}

	inv := uc.buildInvoice(st)
	err = uc.txRunner.RunInvoice(ctx, func(invoiceRepo repository.InvoiceRepository) error {
		if err := invoiceRepo.Create(ctx, inv); err != nil {
			return err
		}
		for _, l := range invoicing.Number(st.Lines) {
			if err := invoiceRepo.CreateLine(ctx, &entity.InvoiceLine{InvoiceID: inv.ID, NumberedLine: l}); err != nil {
				return err
			}
		}
		for _, a := range st.Adjustments {
			if err := invoiceRepo.CreateAdjustment(ctx, &entity.InvoiceAdjustment{InvoiceID: inv.ID, AdjustmentEntry: a}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.reopen()
		return nil, fmt.Errorf("guardar factura: %w", err)
	}
	uc.store.Delete(sessionID)
	uc.log.Info().Str("session_id", sessionID).Str("invoice_id", inv.ID).Str("number", inv.Number).
		Str("total", inv.TotalBillValue.StringFixed(2)).Msg("factura guardada")
	resp := dto.InvoiceToResponse(inv)
	return &resp, nil
}

func (uc *UseCase) buildInvoice(st State) *entity.Invoice {
	now := uc.now()
	sum := st.Summary()
	id := uuid.New().String()
	prefix := "INV"
	if st.Mode == entity.FlowReturn {
		prefix = "RET"
	}
	return &entity.Invoice{
		ID:             id,
		EmployeeID:     st.EmployeeID,
		SessionID:      st.ID,
		Mode:           st.Mode,
		Number:         fmt.Sprintf("%s-%s-%s", prefix, now.Format("20060102"), strings.ToUpper(id[:8])),
		Date:           now,
		ItemCount:      sum.ItemCount,
		TotalQuantity:  sum.TotalQuantity,
		TotalGross:     sum.TotalGross,
		TotalAdd:       sum.TotalAdd,
		TotalLess:      sum.TotalLess,
		TotalBillValue: sum.TotalBillValue,
		Cash:           st.Collections.Cash,
		Card:           st.Collections.Card,
		UPI:            st.Collections.UPI,
		Balance:        invoicing.Balance(sum, st.Collections),
		CreatedAt:      now,
	}
}

func (uc *UseCase) load(employeeID, sessionID string) (*Session, error) {
	s, err := uc.store.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if s.State().EmployeeID != employeeID {
		return nil, domain.ErrForbidden
	}
	// Las lecturas también cuentan como actividad para el barrido.
	s.touch(uc.now())
	return s, nil
}

func (uc *UseCase) mutate(employeeID, sessionID string, ev Event) (*dto.SnapshotResponse, error) {
	s, err := uc.load(employeeID, sessionID)
	if err != nil {
		return nil, err
	}
	ev.At = uc.now()
	return uc.applyTo(s, ev)
}

func (uc *UseCase) applyTo(s *Session, ev Event) (*dto.SnapshotResponse, error) {
	st, err := s.apply(ev)
	if err != nil {
		return nil, err
	}
	snap := toSnapshot(st)
	return &snap, nil
}

func toSnapshot(st State) dto.SnapshotResponse {
	sum := st.Summary()
	snap := dto.SnapshotResponse{
		SessionID:   st.ID,
		EmployeeID:  st.EmployeeID,
		Mode:        st.Mode,
		Lines:       invoicing.Number(st.Lines),
		Adjustments: st.Adjustments,
		Summary:     sum,
		Collections: st.Collections,
		Balance:     invoicing.Balance(sum, st.Collections),
		Version:     st.Version,
	}
	if snap.Adjustments == nil {
		snap.Adjustments = []entity.AdjustmentEntry{}
	}
	if p := st.Pending; p != nil {
		c := invoicing.Classify(p.Issued, st.Lines)
		snap.Pending = &dto.PendingSelectionResponse{
			Token:   p.Token,
			Scan:    p.Scan,
			Product: p.Product,
			Addable: c.Addable,
			Present: c.Present,
		}
	}
	return snap
}

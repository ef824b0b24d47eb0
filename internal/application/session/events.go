// Package session mantiene las facturas en curso. Cada cambio es un Event que se aplica
// con Reduce sobre el estado anterior; Replay reconstruye el mismo estado desde el log.
package session

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/fieldservice-invoicing/internal/domain"
	"github.com/jhoicas/fieldservice-invoicing/internal/domain/entity"
	"github.com/jhoicas/fieldservice-invoicing/internal/domain/invoicing"
)

// EventType tipo de cambio sobre la sesión.
type EventType string

const (
	EventScanResolved       EventType = "SCAN_RESOLVED"
	EventSelectionConfirmed EventType = "SELECTION_CONFIRMED"
	EventSelectionCancelled EventType = "SELECTION_CANCELLED"
	EventSerialEntered      EventType = "SERIAL_ENTERED"
	EventLineEdited         EventType = "LINE_EDITED"
	EventLineDeleted        EventType = "LINE_DELETED"
	EventAdjustmentAdded    EventType = "ADJUSTMENT_ADDED"
	EventAdjustmentEdited   EventType = "ADJUSTMENT_EDITED"
	EventAccountReassigned  EventType = "ACCOUNT_REASSIGNED"
	EventAdjustmentRemoved  EventType = "ADJUSTMENT_REMOVED"
	EventCollectionsSet     EventType = "COLLECTIONS_SET"
)

// Event cambio registrado. Lleva ya resueltos los datos externos (producto, seriales
// entregados, cuenta) para que aplicarlo no dependa de nada fuera del log.
type Event struct {
	Seq  int       `json:"seq"`
	Type EventType `json:"type"`
	At   time.Time `json:"at"`

	Scan    string                    `json:"scan,omitempty"`
	Product *entity.ProductDescriptor `json:"product,omitempty"`
	Issued  []entity.IssuedSerial     `json:"issued,omitempty"`
	Token   string                    `json:"token,omitempty"`
	Add     []string                  `json:"add,omitempty"`
	Remove  []string                  `json:"remove,omitempty"`

	LineID   string              `json:"line_id,omitempty"`
	Serial   string              `json:"serial,omitempty"`
	LineEdit *invoicing.LineEdit `json:"line_edit,omitempty"`

	EntryID        string                    `json:"entry_id,omitempty"`
	Entry          *entity.AdjustmentEntry   `json:"entry,omitempty"`
	AdjustmentEdit *invoicing.AdjustmentEdit `json:"adjustment_edit,omitempty"`
	Account        *entity.AdjustmentAccount `json:"account,omitempty"`

	Collections *entity.Collections `json:"collections,omitempty"`
}

// Pending desambiguación abierta; Token identifica la propuesta vigente.
type Pending struct {
	Token string
	invoicing.Disambiguation
}

// State estado de una factura en curso.
type State struct {
	ID          string
	EmployeeID  string
	Mode        entity.FlowMode
	Lines       []entity.LineItem
	Adjustments []entity.AdjustmentEntry
	Collections entity.Collections
	Pending     *Pending
	LastTag     invoicing.Tag
	Version     int
}

// NewState estado vacío de una sesión recién abierta.
func NewState(id, employeeID string, mode entity.FlowMode) State {
	return State{
		ID:          id,
		EmployeeID:  employeeID,
		Mode:        mode,
		Lines:       []entity.LineItem{},
		Adjustments: []entity.AdjustmentEntry{},
	}
}

var idNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("fieldservice-invoicing/session"))

// idsFor genera IDs deterministas (UUIDv5) a partir de sesión, evento y contador.
func idsFor(sessionID string, seq int) invoicing.IDFunc {
	n := 0
	return func() string {
		n++
		return uuid.NewSHA1(idNamespace, []byte(fmt.Sprintf("%s/%d/%d", sessionID, seq, n))).String()
	}
}

// Reduce aplica ev sobre st. Ante error devuelve st sin cambios.
func Reduce(st State, ev Event) (State, error) {
	next, err := reduce(st, ev)
	if err != nil {
		return st, err
	}
	next.Version = ev.Seq
	return next, nil
}

func reduce(st State, ev Event) (State, error) {
	newID := idsFor(st.ID, ev.Seq)

	switch ev.Type {
	case EventScanResolved:
		if ev.Product == nil {
			return st, fmt.Errorf("%w: evento de escaneo sin producto", domain.ErrInvalidInput)
		}
		out, err := invoicing.Reconcile(invoicing.ScanInput{
			Scan:    ev.Scan,
			Mode:    st.Mode,
			Product: *ev.Product,
			Lines:   st.Lines,
			Issued:  ev.Issued,
		}, newID)
		if err != nil {
			return st, err
		}
		// Un escaneo nuevo reemplaza cualquier selección pendiente.
		st.Pending = nil
		if out.Tag == invoicing.TagDisambiguationRequired {
			scan, _ := invoicing.NormalizeScan(ev.Scan)
			st.Pending = &Pending{
				Token: ev.Token,
				Disambiguation: invoicing.Disambiguation{
					Scan:    scan,
					Product: *ev.Product,
					Issued:  out.Issued,
				},
			}
		} else {
			st.Lines = out.Lines
		}
		st.LastTag = out.Tag
		return st, nil

	case EventSelectionConfirmed:
		if err := checkPending(st, ev.Token); err != nil {
			return st, err
		}
		lines, err := invoicing.ConfirmSelection(st.Pending.Disambiguation, st.Lines, ev.Add, ev.Remove, newID)
		if err != nil {
			return st, err
		}
		st.Lines = lines
		st.Pending = nil
		return st, nil

	case EventSelectionCancelled:
		if err := checkPending(st, ev.Token); err != nil {
			return st, err
		}
		st.Pending = nil
		return st, nil

	case EventSerialEntered:
		lines, err := invoicing.EnterSerial(st.Lines, ev.LineID, ev.Serial, newID)
		if err != nil {
			return st, err
		}
		st.Lines = lines
		return st, nil

	case EventLineEdited:
		if ev.LineEdit == nil {
			return st, domain.ErrInvalidInput
		}
		lines, err := invoicing.EditLine(st.Lines, ev.LineID, *ev.LineEdit)
		if err != nil {
			return st, err
		}
		st.Lines = lines
		return st, nil

	case EventLineDeleted:
		lines, err := invoicing.DeleteLine(st.Lines, ev.LineID)
		if err != nil {
			return st, err
		}
		st.Lines = lines
		return st, nil

	case EventAdjustmentAdded:
		if ev.Entry == nil {
			return st, domain.ErrInvalidInput
		}
		entry := *ev.Entry
		entry.ID = ""
		entries, err := invoicing.AddAdjustment(st.Adjustments, entry, newID)
		if err != nil {
			return st, err
		}
		st.Adjustments = entries
		return st, nil

	case EventAdjustmentEdited:
		if ev.AdjustmentEdit == nil {
			return st, domain.ErrInvalidInput
		}
		entries, err := invoicing.EditAdjustment(st.Adjustments, ev.EntryID, *ev.AdjustmentEdit)
		if err != nil {
			return st, err
		}
		st.Adjustments = entries
		return st, nil

	case EventAccountReassigned:
		if ev.Account == nil {
			return st, domain.ErrAccountNotFound
		}
		entries, err := invoicing.ReassignAccount(st.Adjustments, ev.EntryID, *ev.Account)
		if err != nil {
			return st, err
		}
		st.Adjustments = entries
		return st, nil

	case EventAdjustmentRemoved:
		entries, err := invoicing.RemoveAdjustment(st.Adjustments, ev.EntryID)
		if err != nil {
			return st, err
		}
		st.Adjustments = entries
		return st, nil

	case EventCollectionsSet:
		if ev.Collections == nil {
			return st, domain.ErrInvalidInput
		}
		if err := invoicing.ValidateCollections(*ev.Collections); err != nil {
			return st, err
		}
		st.Collections = *ev.Collections
		return st, nil
	}
	return st, fmt.Errorf("%w: evento %q desconocido", domain.ErrInvalidInput, ev.Type)
}

func checkPending(st State, token string) error {
	if st.Pending == nil {
		return domain.ErrNoPendingSelection
	}
	if st.Pending.Token != token {
		return fmt.Errorf("%w: la selección fue reemplazada por otro escaneo", domain.ErrConflict)
	}
	return nil
}

// Replay reconstruye el estado aplicando los eventos en orden.
func Replay(initial State, events []Event) (State, error) {
	st := initial
	for _, ev := range events {
		next, err := Reduce(st, ev)
		if err != nil {
			return st, fmt.Errorf("replay evento %d (%s): %w", ev.Seq, ev.Type, err)
		}
		st = next
	}
	return st, nil
}

// Summary resumen derivado del estado actual.
func (st State) Summary() entity.InvoiceSummary {
	return invoicing.Recompute(st.Mode, st.Lines, st.Adjustments)
}

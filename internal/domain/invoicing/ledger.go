package invoicing

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/fieldservice-invoicing/internal/domain"
	"github.com/jhoicas/fieldservice-invoicing/internal/domain/entity"
)

// AdjustmentEdit cambios sobre un ajuste existente; nil = sin cambio.
type AdjustmentEdit struct {
	AddAmount  *decimal.Decimal `json:"add_amount,omitempty"`
	LessAmount *decimal.Decimal `json:"less_amount,omitempty"`
	Comments   *string          `json:"comments,omitempty"`
}

// AddAdjustment agrega un ajuste. Exige algún monto > 0; el tipo de cuenta no se usa para rechazar.
func AddAdjustment(entries []entity.AdjustmentEntry, entry entity.AdjustmentEntry, newID IDFunc) ([]entity.AdjustmentEntry, error) {
	if err := checkAmounts(entry.AddAmount, entry.LessAmount); err != nil {
		return nil, err
	}
	if entry.ID == "" {
		entry.ID = newID()
	}
	out := make([]entity.AdjustmentEntry, len(entries), len(entries)+1)
	copy(out, entries)
	return append(out, entry), nil
}

// EditAdjustment cambia montos o comentarios con la misma regla de monto que AddAdjustment.
func EditAdjustment(entries []entity.AdjustmentEntry, entryID string, edit AdjustmentEdit) ([]entity.AdjustmentEntry, error) {
	idx := indexOfEntry(entries, entryID)
	if idx < 0 {
		return nil, domain.ErrEntryNotFound
	}
	e := entries[idx]
	if edit.AddAmount != nil {
		e.AddAmount = *edit.AddAmount
	}
	if edit.LessAmount != nil {
		e.LessAmount = *edit.LessAmount
	}
	if edit.Comments != nil {
		e.Comments = *edit.Comments
	}
	if err := checkAmounts(e.AddAmount, e.LessAmount); err != nil {
		return nil, err
	}
	out := cloneEntries(entries)
	out[idx] = e
	return out, nil
}

// ReassignAccount cambia la cuenta del ajuste y anula el monto que no corresponde a su tipo.
// El otro monto se conserva tal cual, aunque sea 0.
func ReassignAccount(entries []entity.AdjustmentEntry, entryID string, account entity.AdjustmentAccount) ([]entity.AdjustmentEntry, error) {
	idx := indexOfEntry(entries, entryID)
	if idx < 0 {
		return nil, domain.ErrEntryNotFound
	}
	out := cloneEntries(entries)
	e := out[idx]
	e.AccountID = account.ID
	e.AccountName = account.Name
	e.AccountType = account.Type
	switch account.Type {
	case entity.AccountAdd:
		e.LessAmount = decimal.Zero
	case entity.AccountLess:
		e.AddAmount = decimal.Zero
	}
	out[idx] = e
	return out, nil
}

// RemoveAdjustment quita el ajuste; el resumen se recalcula aparte.
func RemoveAdjustment(entries []entity.AdjustmentEntry, entryID string) ([]entity.AdjustmentEntry, error) {
	idx := indexOfEntry(entries, entryID)
	if idx < 0 {
		return nil, domain.ErrEntryNotFound
	}
	out := make([]entity.AdjustmentEntry, 0, len(entries)-1)
	out = append(out, entries[:idx]...)
	return append(out, entries[idx+1:]...), nil
}

func checkAmounts(add, less decimal.Decimal) error {
	if add.IsNegative() || less.IsNegative() {
		return domain.ErrInvalidInput
	}
	if !add.IsPositive() && !less.IsPositive() {
		return domain.ErrNoAmountSpecified
	}
	return nil
}

func indexOfEntry(entries []entity.AdjustmentEntry, id string) int {
	for i, e := range entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func cloneEntries(entries []entity.AdjustmentEntry) []entity.AdjustmentEntry {
	out := make([]entity.AdjustmentEntry, len(entries))
	copy(out, entries)
	return out
}

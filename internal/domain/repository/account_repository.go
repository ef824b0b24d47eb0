package repository

import (
	"context"

	"github.com/jhoicas/fieldservice-invoicing/internal/domain/entity"
)

// AccountRepository catálogo de cuentas de ajuste (solo lectura).
type AccountRepository interface {
	List(ctx context.Context) ([]entity.AdjustmentAccount, error)
	// GetByName devuelve domain.ErrAccountNotFound si no existe.
	GetByName(ctx context.Context, name string) (*entity.AdjustmentAccount, error)
}

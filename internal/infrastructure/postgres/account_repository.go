package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/fieldservice-invoicing/internal/domain"
	"github.com/jhoicas/fieldservice-invoicing/internal/domain/entity"
	"github.com/jhoicas/fieldservice-invoicing/internal/domain/repository"
)

var _ repository.AccountRepository = (*AccountRepo)(nil)

// AccountRepo catálogo de cuentas de ajuste.
type AccountRepo struct {
	q Querier
}

// NewAccountRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAccountRepository(q Querier) *AccountRepo {
	return &AccountRepo{q: q}
}

// List cuentas activas ordenadas por nombre.
func (r *AccountRepo) List(ctx context.Context) ([]entity.AdjustmentAccount, error) {
	rows, err := r.q.Query(ctx, `SELECT id, name, type FROM adjustment_accounts WHERE active ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()
	var list []entity.AdjustmentAccount
	for rows.Next() {
		var a entity.AdjustmentAccount
		if err := rows.Scan(&a.ID, &a.Name, &a.Type); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

// GetByName busca la cuenta por nombre exacto.
func (r *AccountRepo) GetByName(ctx context.Context, name string) (*entity.AdjustmentAccount, error) {
	var a entity.AdjustmentAccount
	err := r.q.QueryRow(ctx, `SELECT id, name, type FROM adjustment_accounts WHERE name = $1 AND active`, name).
		Scan(&a.ID, &a.Name, &a.Type)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("get account: %w", err)
	}
	return &a, nil
}

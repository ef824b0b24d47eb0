package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/fieldservice-invoicing/internal/domain/entity"
	"github.com/jhoicas/fieldservice-invoicing/internal/domain/repository"
)

var _ repository.IssuedSerialResolver = (*IssuedSerialRepo)(nil)

// IssuedSerialRepo seriales entregados por comprobante y aún no devueltos.
type IssuedSerialRepo struct {
	q Querier
}

// NewIssuedSerialRepository construye el adaptador. Pasar pool o tx (Querier).
func NewIssuedSerialRepository(q Querier) *IssuedSerialRepo {
	return &IssuedSerialRepo{q: q}
}

// IssuedSerials lista los seriales del producto del código entregados al empleado.
func (r *IssuedSerialRepo) IssuedSerials(ctx context.Context, barcode, employeeID string) ([]entity.IssuedSerial, error) {
	query := `
		SELECT s.serial_number, s.quantity, s.voucher_series, s.voucher_no
		FROM issued_serials s
		JOIN products p ON p.id = s.product_id
		LEFT JOIN product_barcodes b ON b.product_id = p.id AND b.barcode = $1
		WHERE (p.barcode = $1 OR b.barcode IS NOT NULL)
		  AND s.employee_id = $2
		  AND s.returned_at IS NULL
		ORDER BY s.issued_at, s.serial_number`
	rows, err := r.q.Query(ctx, query, barcode, employeeID)
	if err != nil {
		return nil, fmt.Errorf("list issued serials: %w", err)
	}
	defer rows.Close()
	list := []entity.IssuedSerial{}
	for rows.Next() {
		var s entity.IssuedSerial
		if err := rows.Scan(&s.SerialNumber, &s.Quantity, &s.VoucherSeries, &s.VoucherNo); err != nil {
			return nil, fmt.Errorf("scan issued serial: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

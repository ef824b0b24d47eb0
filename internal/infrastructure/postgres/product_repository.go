package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/fieldservice-invoicing/internal/domain"
	"github.com/jhoicas/fieldservice-invoicing/internal/domain/entity"
	"github.com/jhoicas/fieldservice-invoicing/internal/domain/repository"
)

var _ repository.BarcodeResolver = (*ProductRepo)(nil)

// ProductRepo resuelve códigos de barras contra el catálogo de productos (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// ResolveBarcode busca primero el código en product_barcodes (que puede traer el serial de
// la unidad) y luego en products.barcode. unit_rate NULL = tarifa desconocida.
func (r *ProductRepo) ResolveBarcode(ctx context.Context, barcode string) (*entity.ProductDescriptor, error) {
	query := `
		SELECT p.id, p.name, p.unit_rate, p.requires_unique_serial, b.serial_number
		FROM product_barcodes b
		JOIN products p ON p.id = b.product_id
		WHERE b.barcode = $1 AND p.active
		UNION ALL
		SELECT p.id, p.name, p.unit_rate, p.requires_unique_serial, NULL
		FROM products p
		WHERE p.barcode = $1 AND p.active
		LIMIT 1`
	var (
		d      entity.ProductDescriptor
		rate   decimal.NullDecimal
		serial *string
	)
	err := r.q.QueryRow(ctx, query, barcode).Scan(&d.ProductID, &d.Name, &rate, &d.RequiresUniqueSerial, &serial)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("resolve barcode: %w", err)
	}
	d.UnitRate = rate
	d.SerialNumber = serial
	return &d, nil
}

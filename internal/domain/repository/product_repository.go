package repository

import (
	"context"

	"github.com/jhoicas/fieldservice-invoicing/internal/domain/entity"
)

// BarcodeResolver resuelve un código escaneado al descriptor del producto.
// Devuelve domain.ErrProductNotFound si el código no existe.
type BarcodeResolver interface {
	ResolveBarcode(ctx context.Context, barcode string) (*entity.ProductDescriptor, error)
}

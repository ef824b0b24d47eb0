package repository

import (
	"context"

	"github.com/jhoicas/fieldservice-invoicing/internal/domain/entity"
)

// IssuedSerialResolver consulta los seriales entregados al empleado para un producto
// y aún no devueltos. Una lista vacía es una respuesta válida.
type IssuedSerialResolver interface {
	IssuedSerials(ctx context.Context, barcode, employeeID string) ([]entity.IssuedSerial, error)
}

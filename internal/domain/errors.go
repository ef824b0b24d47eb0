package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrUserNotFound = errors.New("empleado no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")
	ErrConflict     = errors.New("conflicto con el estado actual")
)

// Errores del motor de conciliación de líneas y del libro de ajustes.
var (
	ErrInvalidScan         = errors.New("código escaneado vacío")
	ErrProductNotFound     = errors.New("producto no encontrado para el código")
	ErrResolverTimeout     = errors.New("tiempo de espera agotado consultando el resolvedor")
	ErrResolverUnavailable = errors.New("resolvedor no disponible")
	ErrEmptySelection      = errors.New("selección vacía: elija al menos un serial para agregar o quitar")
	ErrInvalidSelection    = errors.New("serial fuera de la selección propuesta")
	ErrNoPendingSelection  = errors.New("no hay selección de seriales pendiente")
	ErrNoAmountSpecified   = errors.New("el ajuste no tiene monto")
	ErrLineNotFound        = errors.New("línea no encontrada")
	ErrEntryNotFound       = errors.New("ajuste no encontrado")
	ErrAccountNotFound     = errors.New("cuenta de ajuste no encontrada")
	ErrSessionNotFound     = errors.New("sesión de factura no encontrada")
)

package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/jhoicas/fieldservice-invoicing/internal/application/dto"
	"github.com/jhoicas/fieldservice-invoicing/internal/domain"
)

type errorMapping struct {
	err    error
	status int
	code   string
}

// errorTable orden importa: el primer sentinel que coincide con errors.Is gana.
var errorTable = []errorMapping{
	{domain.ErrInvalidScan, fiber.StatusBadRequest, "INVALID_SCAN"},
	{domain.ErrProductNotFound, fiber.StatusNotFound, "PRODUCT_NOT_FOUND"},
	{domain.ErrResolverTimeout, fiber.StatusGatewayTimeout, "RESOLVER_TIMEOUT"},
	{domain.ErrResolverUnavailable, fiber.StatusServiceUnavailable, "RESOLVER_UNAVAILABLE"},
	{domain.ErrEmptySelection, fiber.StatusBadRequest, "EMPTY_SELECTION"},
	{domain.ErrInvalidSelection, fiber.StatusBadRequest, "INVALID_SELECTION"},
	{domain.ErrNoPendingSelection, fiber.StatusConflict, "NO_PENDING_SELECTION"},
	{domain.ErrNoAmountSpecified, fiber.StatusBadRequest, "NO_AMOUNT"},
	{domain.ErrLineNotFound, fiber.StatusNotFound, "LINE_NOT_FOUND"},
	{domain.ErrEntryNotFound, fiber.StatusNotFound, "ENTRY_NOT_FOUND"},
	{domain.ErrAccountNotFound, fiber.StatusNotFound, "ACCOUNT_NOT_FOUND"},
	{domain.ErrSessionNotFound, fiber.StatusNotFound, "SESSION_NOT_FOUND"},
	{domain.ErrUserNotFound, fiber.StatusUnauthorized, "UNAUTHORIZED"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN"},
	{domain.ErrConflict, fiber.StatusConflict, "CONFLICT"},
}

// writeError traduce err a status + dto.ErrorResponse. op identifica la operación en el mensaje.
func writeError(c *fiber.Ctx, op string, err error) error {
	for _, m := range errorTable {
		if errors.Is(err, m.err) {
			return c.Status(m.status).JSON(dto.ErrorResponse{Code: m.code, Message: op + ": " + err.Error()})
		}
	}
	log.Error().Err(err).Str("op", op).Str("path", c.Path()).Msg("error interno")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: op + ": error interno"})
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}

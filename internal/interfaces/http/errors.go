package http

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/jhoicas/gmz-api/internal/application/dto"
	"github.com/jhoicas/gmz-api/internal/domain"
)

// errorMapping clasificación de un error de dominio en la respuesta HTTP.
type errorMapping struct {
	target    error
	status    int
	code      string
	retryable bool
}

// El orden importa: ErrStore puede venir envolviendo otro error y se evalúa primero.
var errorMappings = []errorMapping{
	{domain.ErrStore, fiber.StatusServiceUnavailable, "STORE_UNAVAILABLE", true},
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION", false},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND", false},
	{domain.ErrUserNotFound, fiber.StatusNotFound, "NOT_FOUND", false},
	{domain.ErrInsufficientStock, fiber.StatusConflict, "INSUFFICIENT_STOCK", false},
	{domain.ErrConflict, fiber.StatusConflict, "CONFLICT", false},
	{domain.ErrDuplicate, fiber.StatusConflict, "DUPLICATE", false},
	{domain.ErrEmailAlreadyExists, fiber.StatusConflict, "DUPLICATE", false},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED", false},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN", false},
}

// respondError traduce err a un dto.ErrorResponse con su código HTTP.
func respondError(c *fiber.Ctx, err error) error {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return c.Status(m.status).JSON(dto.ErrorResponse{
				Code:      m.code,
				Message:   err.Error(),
				Retryable: m.retryable,
			})
		}
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}

func notFound(c *fiber.Ctx, what string) error {
	return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: what + " no encontrado"})
}

// requireID lee el parámetro :id; solo acepta UUIDs, que es lo que guardan las tablas.
func requireID(c *fiber.Ctx) (string, bool) {
	id := strings.TrimSpace(c.Params("id"))
	if _, err := uuid.Parse(id); err != nil {
		return id, false
	}
	return id, true
}

func missingID(c *fiber.Ctx) error {
	if strings.TrimSpace(c.Params("id")) != "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_ID", Message: "id inválido"})
	}
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
}

// pagination lee limit/offset con límite 20 por defecto y máximo 100.
func pagination(c *fiber.Ctx) (limit, offset int) {
	limit = c.QueryInt("limit", 20)
	offset = c.QueryInt("offset", 0)
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

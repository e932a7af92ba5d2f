package postgres

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/gmz-api/internal/domain"
)

// Códigos SQLSTATE que el dominio distingue.
const (
	codeInvalidText         = "22P02"
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
	codeSerialization       = "40001"
	codeDeadlock            = "40P01"
)

// validID evita mandar a PostgreSQL un id que no es UUID: la columna lo rechaza con 22P02
// y la transacción queda abortada.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	return pgCode(err) == codeUniqueViolation
}

// isForeignKeyViolation verifica si un error es una violación de llave foránea (23503).
func isForeignKeyViolation(err error) bool {
	return pgCode(err) == codeForeignKeyViolation
}

// mapDeleteErr traduce errores de DELETE: una fila referenciada es un conflicto y un id mal formado no existe.
func mapDeleteErr(op string, err error) error {
	if isForeignKeyViolation(err) {
		return fmt.Errorf("%w: %s: el registro está referenciado", domain.ErrConflict, op)
	}
	if isInvalidText(err) {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, op)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// mapWriteErr traduce errores de INSERT/UPDATE: duplicados y referencias inexistentes.
func mapWriteErr(op string, err error) error {
	switch pgCode(err) {
	case codeUniqueViolation:
		return fmt.Errorf("%w: %s", domain.ErrDuplicate, op)
	case codeForeignKeyViolation:
		return fmt.Errorf("%w: %s: referencia inexistente", domain.ErrNotFound, op)
	case codeCheckViolation:
		return fmt.Errorf("%w: %s", domain.ErrInvalidInput, op)
	case codeInvalidText:
		return fmt.Errorf("%w: %s: id inválido", domain.ErrInvalidInput, op)
	case codeSerialization, codeDeadlock:
		return fmt.Errorf("%w: %s: %w", domain.ErrStore, op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// isInvalidText indica un valor que PostgreSQL no pudo convertir (por ejemplo un UUID mal formado).
func isInvalidText(err error) bool {
	return pgCode(err) == codeInvalidText
}

// isDomainErr indica si err ya trae una clasificación del dominio.
func isDomainErr(err error) bool {
	for _, target := range []error{
		domain.ErrNotFound, domain.ErrInvalidInput, domain.ErrInsufficientStock,
		domain.ErrConflict, domain.ErrDuplicate, domain.ErrStore,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

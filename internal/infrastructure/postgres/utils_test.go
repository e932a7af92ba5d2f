package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/gmz-api/internal/domain"
)

func TestValidID(t *testing.T) {
	assert.True(t, validID(uuid.NewString()))
	for _, id := range []string{"", "abc", "42", "item-widget", "6f1c3a52-8d0e-4b7a-9a43"} {
		assert.False(t, validID(id), id)
	}
}

func TestMapWriteErr(t *testing.T) {
	cases := []struct {
		code string
		want error
	}{
		{codeUniqueViolation, domain.ErrDuplicate},
		{codeForeignKeyViolation, domain.ErrNotFound},
		{codeCheckViolation, domain.ErrInvalidInput},
		{codeInvalidText, domain.ErrInvalidInput},
		{codeSerialization, domain.ErrStore},
		{codeDeadlock, domain.ErrStore},
	}
	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			err := mapWriteErr("update production", fmt.Errorf("exec: %w", &pgconn.PgError{Code: tc.code}))
			assert.ErrorIs(t, err, tc.want)
			assert.True(t, isDomainErr(err))
		})
	}

	err := mapWriteErr("update production", errors.New("conexión cerrada"))
	assert.False(t, isDomainErr(err), "un error sin código no se clasifica")
}

func TestMapDeleteErr(t *testing.T) {
	err := mapDeleteErr("delete item", &pgconn.PgError{Code: codeForeignKeyViolation})
	assert.ErrorIs(t, err, domain.ErrConflict)

	err = mapDeleteErr("delete item", &pgconn.PgError{Code: codeInvalidText})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NotErrorIs(t, err, domain.ErrStore)
}

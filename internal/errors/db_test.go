package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapDBError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		err       error
		wantCode  ErrorCode
		wantField string
	}{
		{name: "deadline", err: fmt.Errorf("query: %w", context.DeadlineExceeded), wantCode: ErrCodeTimeout},
		{name: "canceled", err: context.Canceled, wantCode: ErrCodeCanceled},
		{name: "no rows", err: pgx.ErrNoRows, wantCode: ErrCodeNotFound},
		{
			name: "unique violation uses detail",
			err: &pgconn.PgError{
				Code:   pgerrcode.UniqueViolation,
				Detail: "Key (event_name, prn)=(Hackathon, 42) already exists.",
			},
			wantCode:  ErrCodeConflict,
			wantField: "prn",
		},
		{
			name:      "unique violation prefers column",
			err:       &pgconn.PgError{Code: pgerrcode.UniqueViolation, ColumnName: "email"},
			wantCode:  ErrCodeConflict,
			wantField: "email",
		},
		{
			name:     "foreign key",
			err:      &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation, Detail: `is still referenced from table "registrations"`},
			wantCode: ErrCodeForeignKey,
		},
		{
			name:      "not null",
			err:       &pgconn.PgError{Code: pgerrcode.NotNullViolation, ColumnName: "title"},
			wantCode:  ErrCodeValidation,
			wantField: "title",
		},
		{name: "other pg error", err: &pgconn.PgError{Code: pgerrcode.DeadlockDetected}, wantCode: ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := MapDBError(tt.err)
			require.Error(t, got)
			assert.Equal(t, tt.wantCode, GetCode(got))
			assert.Equal(t, tt.wantField, GetField(got))
			assert.ErrorIs(t, got, tt.err)
		})
	}
}

func TestMapDBError_PassThrough(t *testing.T) {
	t.Parallel()

	require.NoError(t, MapDBError(nil))

	plain := errors.New("boom")
	assert.Same(t, plain, MapDBError(plain))
}

func TestMapHTTPStatus(t *testing.T) {
	t.Parallel()

	assert.True(t, IsNotFound(MapHTTPStatus(http.StatusNotFound, "", nil)))
	assert.True(t, IsConflict(MapHTTPStatus(http.StatusConflict, "dup", nil)))
	assert.True(t, IsValidation(MapHTTPStatus(http.StatusBadRequest, "bad", nil)))
	assert.True(t, IsUnavailable(MapHTTPStatus(http.StatusUnauthorized, "", nil)))
	assert.True(t, IsUnavailable(MapHTTPStatus(http.StatusBadGateway, "", nil)))

	err := MapHTTPStatus(http.StatusTeapot, "", nil)
	assert.Equal(t, ErrCodeInternal, GetCode(err))
	assert.Equal(t, http.StatusText(http.StatusTeapot), UserMessage(err, "fallback"))
}

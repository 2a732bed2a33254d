package errors

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// "Key (event_name, prn)=(Hackathon, 42) already exists."
	reKeyField = regexp.MustCompile(`Key \(([^)]+)\)=`)
	// "... is still referenced from table "registrations"."
	reReferencedFrom = regexp.MustCompile(`is still referenced from table "?([^"]+)"?`)
)

// SQLState carries the parts of a database error that both the pgx driver and
// the HTTP data API report.
type SQLState struct {
	Code       string
	Message    string
	Detail     string
	Column     string
	Constraint string
	Table      string
}

// MapDBError maps driver errors to AppError instances:
//   - context deadline/cancel → Timeout/Canceled
//   - pgx.ErrNoRows → NotFound
//   - *pgconn.PgError → see MapSQLState
//
// Unrecognized errors are returned unchanged.
func MapDBError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &AppError{Code: ErrCodeTimeout, Message: "Request timed out. Please try again.", Cause: err}
	}
	if errors.Is(err, context.Canceled) {
		return &AppError{Code: ErrCodeCanceled, Message: "Request was canceled.", Cause: err}
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return &AppError{Code: ErrCodeNotFound, Message: "Record not found", Cause: err}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return MapSQLState(SQLState{
			Code:       pgErr.Code,
			Message:    pgErr.Message,
			Detail:     pgErr.Detail,
			Column:     pgErr.ColumnName,
			Constraint: pgErr.ConstraintName,
			Table:      pgErr.TableName,
		}, pgErr)
	}
	return err
}

// MapSQLState converts a SQLSTATE-coded failure into an AppError wrapping cause.
func MapSQLState(st SQLState, cause error) error {
	switch st.Code {
	case pgerrcode.UniqueViolation:
		return &AppError{
			Code:    ErrCodeConflict,
			Message: "This value already exists. Please choose a different one.",
			Field:   conflictField(st),
			Cause:   cause,
		}
	case pgerrcode.ForeignKeyViolation:
		msg := "Cannot complete operation because this item is in use."
		if m := reReferencedFrom.FindStringSubmatch(st.Detail); len(m) == 2 {
			msg = "Cannot delete because this item is in use by " + tableLabel(m[1]) + "."
		}
		return &AppError{Code: ErrCodeForeignKey, Message: msg, Cause: cause}
	case pgerrcode.NotNullViolation:
		return &AppError{Code: ErrCodeValidation, Message: "This field is required.", Field: st.Column, Cause: cause}
	case pgerrcode.CheckViolation, pgerrcode.InvalidTextRepresentation, pgerrcode.StringDataRightTruncationDataException:
		return &AppError{Code: ErrCodeValidation, Message: "Invalid data. Please check your input.", Field: st.Column, Cause: cause}
	case pgerrcode.InsufficientPrivilege:
		return &AppError{Code: ErrCodeUnavailable, Message: "Access to this data was denied.", Cause: cause}
	default:
		return &AppError{Code: ErrCodeInternal, Message: "A database error occurred. Please try again.", Cause: cause}
	}
}

// MapHTTPStatus maps a data API failure that carried no SQLSTATE.
func MapHTTPStatus(status int, message string, cause error) error {
	if message == "" {
		message = http.StatusText(status)
	}
	switch {
	case status == http.StatusNotFound || status == http.StatusNotAcceptable:
		return &AppError{Code: ErrCodeNotFound, Message: message, Cause: cause}
	case status == http.StatusConflict:
		return &AppError{Code: ErrCodeConflict, Message: message, Cause: cause}
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return &AppError{Code: ErrCodeValidation, Message: message, Cause: cause}
	case status == http.StatusUnauthorized || status == http.StatusForbidden || status >= http.StatusInternalServerError:
		return &AppError{Code: ErrCodeUnavailable, Message: message, Cause: cause}
	default:
		return &AppError{Code: ErrCodeInternal, Message: message, Cause: cause}
	}
}

func conflictField(st SQLState) string {
	if st.Column != "" {
		return st.Column
	}
	if m := reKeyField.FindStringSubmatch(st.Detail); len(m) == 2 {
		// Multi-column keys report the last column, which is the one users edit.
		cols := strings.Split(m[1], ",")
		return strings.TrimSpace(cols[len(cols)-1])
	}
	return ""
}

func tableLabel(table string) string {
	switch strings.ToLower(strings.TrimSpace(table)) {
	case "registrations":
		return "registrations"
	case "admin_login_logs":
		return "login history"
	case "events":
		return "an event"
	default:
		return strings.ReplaceAll(table, "_", " ")
	}
}

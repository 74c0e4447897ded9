package errs

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrAlreadyExists      = errors.New("already exists")
	ErrNotFound           = errors.New("not found")
	ErrDatabaseQuery      = errors.New("database query failed")
	ErrDatabaseConnection = errors.New("database connection failed")
	ErrForeignKey         = errors.New("foreign key constraint violation")
)

// postgres SQLSTATE codes
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// NewNotFound reports that entity does not exist or is not visible.
// Public pages translate it into a 404 page.
func NewNotFound(entity string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusNotFound,
		err:        fmt.Errorf("%s %w", entity, ErrNotFound),
	}
}

// NewDatabaseError creates a new database error with details about the operation
func NewDatabaseError(operation, entity string, cause error) *ApiErr {
	details := fmt.Sprintf("Failed to %s %s", operation, entity)

	var apiErr *ApiErr
	if errors.As(cause, &apiErr) {
		return apiErr
	}

	if errors.Is(cause, gorm.ErrRecordNotFound) {
		return &ApiErr{
			StatusCode: http.StatusNotFound,
			err:        fmt.Errorf("%s %w", entity, ErrNotFound),
			Details:    details,
			Cause:      cause,
		}
	}

	var pgErr *pgconn.PgError
	if errors.As(cause, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return &ApiErr{
				StatusCode: http.StatusConflict,
				err:        fmt.Errorf("%s %w", entity, ErrAlreadyExists),
				Details:    details,
				Field:      pgErr.ColumnName,
				Cause:      cause,
			}
		case pgForeignKeyViolation:
			return &ApiErr{
				StatusCode: http.StatusBadRequest,
				err:        fmt.Errorf("invalid reference in %s: %w", entity, ErrForeignKey),
				Details:    "The referenced resource does not exist or cannot be linked",
				Cause:      cause,
			}
		}
	}

	// Drivers that do not surface typed errors
	if cause != nil {
		errStr := cause.Error()
		switch {
		case strings.Contains(errStr, "duplicate key"):
			return &ApiErr{
				StatusCode: http.StatusConflict,
				err:        fmt.Errorf("%s %w", entity, ErrAlreadyExists),
				Details:    details,
				Cause:      cause,
			}
		case strings.Contains(errStr, "connection refused"), strings.Contains(errStr, "failed to connect"):
			return &ApiErr{
				StatusCode: http.StatusServiceUnavailable,
				err:        ErrDatabaseConnection,
				Details:    "Unable to connect to database",
				Cause:      cause,
			}
		}
	}

	return &ApiErr{
		StatusCode: http.StatusInternalServerError,
		err:        ErrDatabaseQuery,
		Details:    details,
		Cause:      cause,
	}
}

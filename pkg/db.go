package pkg

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	pgCodeUniqueViolation  = "23505"
	pgCodeQueryCanceled    = "57014"
	pgCodeIdleInTxTimeout  = "25P03"
	pgCodeLockNotAvailable = "55P03"
)

func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// IsUniqueViolationError checks if the error is a unique violation error
func IsUniqueViolationError(err error) bool {
	return pgErrorCode(err) == pgCodeUniqueViolation
}

// IsStatementTimeoutError reports errors postgres raises when a statement, an idle
// transaction or a lock wait runs out of time
func IsStatementTimeoutError(err error) bool {
	switch pgErrorCode(err) {
	case pgCodeQueryCanceled, pgCodeIdleInTxTimeout, pgCodeLockNotAvailable:
		return true
	default:
		return false
	}
}

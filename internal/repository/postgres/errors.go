package postgres

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	"github.com/lib/pq"

	"github.com/Pesokrava/bakery_ledger/internal/domain"
)

// translateError maps connection-level failures to domain.ErrStorageUnavailable,
// values the column types cannot hold to domain.ErrInvalidInput, and passes
// everything else through unchanged.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if isUnavailable(err) {
		return fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	if isDataException(err) {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return err
}

// isDataException reports SQLSTATE class 22, e.g. 22003 numeric_value_out_of_range
func isDataException(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code.Class() == "22"
	}
	return false
}

func isUnavailable(err error) bool {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch {
		case pqErr.Code.Class() == "08": // connection_exception
			return true
		case pqErr.Code == "57P01", pqErr.Code == "57P02", pqErr.Code == "57P03":
			return true
		}
	}

	return false
}

// isRetryable reports write contention that is safe to retry from scratch
func isRetryable(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "40001" || pqErr.Code == "40P01"
	}
	return false
}

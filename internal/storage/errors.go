package storage

import (
	"errors"
	"fmt"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
)

// Base failure kinds, every specific error below wraps one of them
var (
	ErrConstraintViolation = errors.New("constraint violation")
	ErrReference           = errors.New("referenced record does not exist")
	ErrInvariantViolation  = errors.New("invariant violation")
)

var (
	ErrUserExists    = fmt.Errorf("user already exists: %w", ErrConstraintViolation)
	ErrUserNotExist  = fmt.Errorf("user does not exist: %w", ErrReference)
	ErrGroupNotExist = fmt.Errorf("group does not exist: %w", ErrReference)
	ErrMessageTarget = fmt.Errorf("message must have exactly one of receiver or group: %w", ErrInvariantViolation)
)

type violation int

const (
	violationNone violation = iota
	violationUnique
	violationForeignKey
	violationCheck
	violationOther
)

// classify maps sqlite extended result codes and postgres SQLSTATE codes onto violation kinds
func classify(err error) violation {
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		if liteErr.Code != sqlite3.ErrConstraint {
			return violationNone
		}
		switch liteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return violationUnique
		case sqlite3.ErrConstraintForeignKey:
			return violationForeignKey
		case sqlite3.ErrConstraintCheck:
			return violationCheck
		default:
			return violationOther
		}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return violationUnique
		case pgerrcode.ForeignKeyViolation:
			return violationForeignKey
		case pgerrcode.CheckViolation:
			return violationCheck
		case pgerrcode.NotNullViolation, pgerrcode.IntegrityConstraintViolation, pgerrcode.RestrictViolation:
			return violationOther
		}
	}

	return violationNone
}

// translate wraps a driver error with the matching base failure kind, unknown errors pass through
func translate(err error) error {
	switch classify(err) {
	case violationForeignKey:
		return fmt.Errorf("%w: %v", ErrReference, err)
	case violationUnique, violationCheck, violationOther:
		return fmt.Errorf("%w: %v", ErrConstraintViolation, err)
	default:
		return err
	}
}

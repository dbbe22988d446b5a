package postgres

import (
	"errors"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
)

// ConstraintViolation tells which constraint err violates.
//
// When err is not caused by a violation of unique, foreign key or check constraints, ok is false.
func ConstraintViolation(err error) (code string, constraint string, ok bool) {
	pgerr := new(pgconn.PgError)
	if !errors.As(err, &pgerr) {
		return "", "", false
	}
	switch pgerr.Code {
	case pgerrcode.UniqueViolation, pgerrcode.ForeignKeyViolation, pgerrcode.CheckViolation:
		return pgerr.Code, pgerr.ConstraintName, true
	}
	return "", "", false
}

// IsUniqueViolation tells whether err is caused by a violation of a unique constraint.
func IsUniqueViolation(err error) bool {
	code, _, ok := ConstraintViolation(err)
	return ok && code == pgerrcode.UniqueViolation
}

// IsForeignKeyViolation tells whether err is caused by a violation of a foreign key constraint.
func IsForeignKeyViolation(err error) bool {
	code, _, ok := ConstraintViolation(err)
	return ok && code == pgerrcode.ForeignKeyViolation
}

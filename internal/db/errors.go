package db

import (
	"database/sql"

	"fitclub/internal/apperrors"

	"github.com/lib/pq"
	"github.com/pkg/errors"
)

// ErrNotFound is returned by repositories when a lookup matches no row.
var ErrNotFound = errors.New("record not found")

const (
	codeRaiseException      = "P0001"
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
	codeSerialization       = "40001"
	codeDeadlock            = "40P01"
)

// ActiveEnrollmentIndex is the partial unique index guarding one active
// enrollment per member and class.
const ActiveEnrollmentIndex = "uq_class_enrollments_active"

// Classify turns a driver error into the domain taxonomy. op names the failed
// operation and ends up in the wrapped message.
func Classify(err error, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return errors.Wrap(ErrNotFound, op)
	}

	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return apperrors.Storage(op+" failed", errors.Wrap(err, op))
	}

	switch pqErr.Code {
	case codeRaiseException:
		return apperrors.Storage(pqErr.Message, err)
	case codeSerialization, codeDeadlock:
		return apperrors.Storage("concurrent booking detected, please retry", err)
	case codeUniqueViolation:
		if pqErr.Constraint == ActiveEnrollmentIndex {
			return apperrors.Conflict("member is already registered for this class")
		}
		return apperrors.Validation(uniqueMessage(pqErr)).
			WithDetails(map[string]any{"constraint": pqErr.Constraint})
	case codeForeignKeyViolation:
		return apperrors.Validation("referenced record does not exist").
			WithDetails(map[string]any{"constraint": pqErr.Constraint})
	case codeCheckViolation:
		return apperrors.Validation(pqErr.Message)
	default:
		return apperrors.Storage(op+" failed", err)
	}
}

func uniqueMessage(pqErr *pq.Error) string {
	switch pqErr.Constraint {
	case "rooms_name_key":
		return "a room with this name already exists"
	case "members_email_key", "trainers_email_key":
		return "email is already registered"
	default:
		return "duplicate value violates a unique constraint"
	}
}

// IsNotFound reports whether err came from a lookup that matched nothing.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

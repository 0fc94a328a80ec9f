package db

import (
	"strings"

	pkgerrors "github.com/kisanmandi/mandi-backend/pkg/errors"
)

// IsUniqueViolation reports whether err is a unique constraint failure. With
// a constraintName, Postgres errors must name it. SQLite reports column lists
// instead of index names, so any SQLite unique failure matches.
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}
	if code, constraint, ok := pkgerrors.PostgresViolation(err); ok {
		if code != pkgerrors.PGUniqueViolation {
			return false
		}
		return constraintName == "" || constraint == constraintName
	}
	msg := err.Error()
	if strings.Contains(msg, "UNIQUE constraint failed") {
		return true
	}
	if constraintName != "" {
		return strings.Contains(msg, constraintName)
	}
	return strings.Contains(msg, "duplicate key value")
}

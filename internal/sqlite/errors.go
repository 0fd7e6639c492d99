package sqlite

import "strings"

// The driver exposes constraint failures only through error text, so the
// repositories match on the engine's fixed message fragments.

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isForeignKeyViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

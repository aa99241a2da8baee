package repository

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned by single-record lookups that match nothing
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate a unique column already holds the value
	ErrDuplicate = errors.New("duplicate key")
)

// notFound translates gorm's sentinel into ErrNotFound
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// duplicate translates a unique constraint violation into ErrDuplicate
func duplicate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	return err
}

// likeEscape is the escape character used by containsPattern. '!' behaves the
// same in mysql, postgres and sqlite string literals, unlike backslash.
const likeEscape = "!"

// containsPattern builds a case-folded LIKE pattern matching q anywhere,
// with q's own wildcards taken literally.
func containsPattern(q string) string {
	r := strings.NewReplacer(likeEscape, likeEscape+likeEscape, "%", likeEscape+"%", "_", likeEscape+"_")
	return "%" + r.Replace(strings.ToLower(q)) + "%"
}

// icontains returns a WHERE fragment for a case-insensitive substring match on column
func icontains(column string) string {
	return "LOWER(" + column + ") LIKE ? ESCAPE '" + likeEscape + "'"
}

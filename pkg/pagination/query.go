package pagination

import (
	"fmt"

	"gorm.io/gorm"
)

// Apply orders rows newest first by column and, when a cursor is present,
// keeps only rows strictly after it in that order.
func Apply(query *gorm.DB, column string, cursor *Cursor) *gorm.DB {
	if cursor != nil {
		query = query.Where(
			fmt.Sprintf("(%[1]s < ? OR (%[1]s = ? AND id < ?))", column),
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}
	return query.Order(column + " DESC").Order("id DESC")
}

// Trim drops the look-ahead row fetched with LimitWithBuffer and returns the
// cursor for the following page, or nil on the last page.
func Trim[T any](rows []T, limit int, key func(T) Cursor) ([]T, *Cursor) {
	limit = NormalizeLimit(limit)
	if len(rows) <= limit {
		return rows, nil
	}
	rows = rows[:limit]
	next := key(rows[len(rows)-1])
	return rows, &next
}

// Encode returns the wire form of an optional cursor.
func Encode(cursor *Cursor) string {
	if cursor == nil {
		return ""
	}
	return EncodeCursor(*cursor)
}

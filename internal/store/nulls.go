package store

import (
	"database/sql"
	"time"
)

// Helpers for converting between Go pointers and sql.Null* types

func toNullString(val *string) sql.NullString {
	if val == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *val, Valid: true}
}

func fromNullString(val sql.NullString) *string {
	if !val.Valid {
		return nil
	}
	s := val.String
	return &s
}

func toNullInt64(val *int64) sql.NullInt64 {
	if val == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *val, Valid: true}
}

func fromNullInt64(val sql.NullInt64) *int64 {
	if !val.Valid {
		return nil
	}
	i := val.Int64
	return &i
}

// toNullTime stores times in UTC so that textual comparisons in SQLite order
// correctly.
func toNullTime(val *time.Time) sql.NullTime {
	if val == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: val.UTC(), Valid: true}
}

func fromNullTime(val sql.NullTime) *time.Time {
	if !val.Valid {
		return nil
	}
	t := val.Time.UTC()
	return &t
}

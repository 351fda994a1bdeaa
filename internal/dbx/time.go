package dbx

import (
	"database/sql"
	"time"
)

// Timestamps are stored as INTEGER unix milliseconds, read back in UTC.

func UnixMilli(t time.Time) int64 {
	return t.UnixMilli()
}

func FromUnixMilli(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

func NullUnixMilli(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixMilli(), Valid: true}
}

func FromNullUnixMilli(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := FromUnixMilli(v.Int64)
	return &t
}

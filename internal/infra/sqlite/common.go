package sqlite

import (
	"database/sql"
	"time"
)

func toTs(t time.Time) int64 {
	return t.Unix()
}

func fromTs(ts int64) time.Time {
	return time.Unix(ts, 0).UTC()
}

func toNullTs(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.Unix(), Valid: true}
}

func fromNullTs(ts sql.NullInt64) *time.Time {
	if !ts.Valid {
		return nil
	}
	t := fromTs(ts.Int64)
	return &t
}

// ABOUTME: Conversions between optional model fields and SQL NULLs.
// ABOUTME: Absent values are written as NULL and read back as nil pointers.
package storage

import (
	"database/sql"
	"time"

	"github.com/harperreed/trainload/internal/models"
)

func argFloat(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

func argInt(p *int) any {
	if p == nil {
		return nil
	}
	return int64(*p)
}

func argString(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func argTime(p *time.Time) any {
	if p == nil {
		return nil
	}
	return models.FormatTimestamp(*p)
}

func ptrFloat(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	return models.Float(n.Float64)
}

func ptrInt(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	return models.Int(int(n.Int64))
}

func ptrString(n sql.NullString) *string {
	if !n.Valid {
		return nil
	}
	return models.String(n.String)
}

func ptrTime(n sql.NullString) (*time.Time, error) {
	if !n.Valid {
		return nil, nil
	}
	t, err := models.ParseTimestamp(n.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

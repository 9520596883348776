package models

import (
	"errors"
	"time"

	mysqlDriver "github.com/go-sql-driver/mysql"
)

func isDuplicateKeyErr(err error) bool {
	var mysqlErr *mysqlDriver.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}
	return false
}

// MonthPeriod returns [first day of month, first day of next month) in UTC.
// Period ends are exclusive everywhere in the settlement engine.
func MonthPeriod(year int, month time.Month) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

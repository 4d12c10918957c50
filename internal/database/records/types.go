package records

import (
	"database/sql"
	"errors"
	"time"
)

const (
	SourceAPI    = "api"
	SourceReport = "report"
)

var ErrRecordNotFound = errors.New("record not found")

type Store struct {
	db *sql.DB
}

// Print is a single finished (or failed) print of a file.
type Print struct {
	Date      time.Time
	PrintTime float64
	Success   bool
}

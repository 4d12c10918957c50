package records

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/frodejac/printshelf/internal/metadata"
	"github.com/frodejac/printshelf/internal/metrics"
)

func NewRecordStore(db *sql.DB) (*Store, error) {
	rs := &Store{db: db}
	if err := rs.initialize(); err != nil {
		return nil, err
	}
	return rs, nil
}

func (rs *Store) initialize() error {
	_, err := rs.db.Exec(`
		CREATE TABLE IF NOT EXISTS file_records (
			dir TEXT NOT NULL,
			name TEXT NOT NULL,
			document TEXT NOT NULL,
			source TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL,
			PRIMARY KEY (dir, name)
		);
		CREATE TABLE IF NOT EXISTS print_history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			dir TEXT NOT NULL,
			name TEXT NOT NULL,
			date INTEGER NOT NULL,
			print_time REAL NOT NULL,
			success INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS print_history_file ON print_history (dir, name);
	`)
	return err
}

// Put validates document and stores its analysis parts. Print history in
// the document is ignored; it is only written through AddPrint.
func (rs *Store) Put(dir, name string, document []byte, source string) error {
	rec, err := metadata.ParseRecord(document)
	if err != nil {
		return err
	}
	return rs.PutRecord(dir, name, rec, source)
}

func (rs *Store) PutRecord(dir, name string, rec *metadata.FileRecord, source string) error {
	doc, err := json.Marshal(&metadata.FileRecord{
		GcodeAnalysis: rec.GcodeAnalysis,
		Analysis:      rec.Analysis,
	})
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}
	_, err = rs.db.Exec(`
		INSERT INTO file_records (dir, name, document, source, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (dir, name) DO UPDATE SET
			document = excluded.document,
			source = excluded.source,
			updated_at = excluded.updated_at
	`, dir, name, string(doc), source, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to store record: %w", err)
	}
	metrics.RecordIngest(source)
	return nil
}

// Get returns the stored analysis merged with the file's print history.
func (rs *Store) Get(dir, name string) (*metadata.FileRecord, error) {
	var document string
	err := rs.db.QueryRow(`
		SELECT document
		FROM file_records
		WHERE dir = ? AND name = ?
	`, dir, name).Scan(&document)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to get record: %w", err)
	}

	history, err := rs.history(`WHERE dir = ? AND name = ?`, dir, name)
	if err != nil {
		return nil, err
	}
	if document == "" && history[name] == nil {
		return nil, ErrRecordNotFound
	}

	rec := &metadata.FileRecord{}
	if document != "" {
		if rec, err = metadata.ParseRecord([]byte(document)); err != nil {
			return nil, fmt.Errorf("failed to decode record: %w", err)
		}
	}
	rec.Prints = history[name]
	return rec, nil
}

// ListDirectory returns every record in dir keyed by file name.
func (rs *Store) ListDirectory(dir string) (map[string]*metadata.FileRecord, error) {
	rows, err := rs.db.Query(`
		SELECT name, document
		FROM file_records
		WHERE dir = ?
	`, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer rows.Close()

	out := make(map[string]*metadata.FileRecord)
	for rows.Next() {
		var name, document string
		if err := rows.Scan(&name, &document); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		rec, err := metadata.ParseRecord([]byte(document))
		if err != nil {
			return nil, fmt.Errorf("failed to decode record %s: %w", name, err)
		}
		out[name] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}

	history, err := rs.history(`WHERE dir = ?`, dir)
	if err != nil {
		return nil, err
	}
	for name, prints := range history {
		rec, ok := out[name]
		if !ok {
			rec = &metadata.FileRecord{}
			out[name] = rec
		}
		rec.Prints = prints
	}
	return out, nil
}

func (rs *Store) AddPrint(dir, name string, p Print) error {
	if p.Date.IsZero() {
		p.Date = time.Now()
	}
	_, err := rs.db.Exec(`
		INSERT INTO print_history (dir, name, date, print_time, success)
		VALUES (?, ?, ?, ?, ?)
	`, dir, name, p.Date.UnixMilli(), p.PrintTime, p.Success)
	if err != nil {
		return fmt.Errorf("failed to add print: %w", err)
	}
	metrics.RecordPrint(p.Success)
	return nil
}

// Delete removes the record and print history of a file.
func (rs *Store) Delete(dir, name string) error {
	tx, err := rs.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var deleted int64
	for _, query := range []string{
		`DELETE FROM file_records WHERE dir = ? AND name = ?`,
		`DELETE FROM print_history WHERE dir = ? AND name = ?`,
	} {
		res, err := tx.Exec(query, dir, name)
		if err != nil {
			return fmt.Errorf("failed to delete record: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to delete record: %w", err)
		}
		deleted += n
	}
	if deleted == 0 {
		return ErrRecordNotFound
	}
	return tx.Commit()
}

// history folds print events into per-file summaries. The latest date wins
// the last print; ties go to the later insert.
func (rs *Store) history(where string, args ...any) (map[string]*metadata.PrintHistory, error) {
	rows, err := rs.db.Query(`
		SELECT name, date, print_time, success
		FROM print_history
		`+where+`
		ORDER BY id
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get print history: %w", err)
	}
	defer rows.Close()

	out := make(map[string]*metadata.PrintHistory)
	for rows.Next() {
		var (
			name      string
			date      int64
			printTime float64
			success   bool
		)
		if err := rows.Scan(&name, &date, &printTime, &success); err != nil {
			return nil, fmt.Errorf("failed to scan print: %w", err)
		}
		h, ok := out[name]
		if !ok {
			h = &metadata.PrintHistory{}
			out[name] = h
		}
		if success {
			h.Success++
		} else {
			h.Failure++
		}
		at := time.UnixMilli(date)
		if h.Last == nil || !at.Before(h.Last.Date) {
			ok := success
			h.Last = &metadata.LastPrint{Date: at, PrintTime: printTime, Success: &ok}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to get print history: %w", err)
	}
	return out, nil
}

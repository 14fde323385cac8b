package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"tsreminder/internal"
)

// DB is the run ledger. It records what each run saw and produced; the
// grouped recipient data itself is never stored.
type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  traceId TEXT NOT NULL UNIQUE,
  source TEXT NOT NULL,
  sourceHash TEXT,
  status TEXT NOT NULL,
  error TEXT,
  countsJson TEXT NOT NULL,
  timingsJson TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS drafts (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  traceId TEXT NOT NULL,
  kind TEXT NOT NULL,
  recipient TEXT NOT NULL,
  subject TEXT NOT NULL,
  hash TEXT NOT NULL UNIQUE,
  path TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_drafts_traceId ON drafts(traceId);

CREATE TABLE IF NOT EXISTS reports (
  hash TEXT PRIMARY KEY,
  path TEXT NOT NULL,
  status TEXT NOT NULL,
  error TEXT,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

	_, err := d.conn.Exec(schema)
	return err
}

func (d *DB) InsertRun(run internal.RunRow) error {
	countsJSON, _ := json.Marshal(run.Counts)
	timingsJSON, _ := json.Marshal(run.Timings)
	_, err := d.conn.Exec(`
INSERT INTO runs (traceId, source, sourceHash, status, error, countsJson, timingsJson)
VALUES (?, ?, ?, ?, ?, ?, ?)
`, run.TraceID, run.Source, run.SourceHash, run.Status, run.Error, string(countsJSON), string(timingsJSON))
	return err
}

func (d *DB) ListRuns(limit int) ([]internal.RunRow, error) {
	rows, err := d.conn.Query(`
SELECT id, traceId, source, sourceHash, status, error, countsJson, timingsJson, createdAt
FROM runs ORDER BY id DESC LIMIT ?
`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.RunRow
	for rows.Next() {
		var row internal.RunRow
		var sourceHash, errText sql.NullString
		var countsJSON, timingsJSON string
		if err := rows.Scan(&row.ID, &row.TraceID, &row.Source, &sourceHash, &row.Status, &errText, &countsJSON, &timingsJSON, &row.CreatedAt); err != nil {
			return nil, err
		}
		row.SourceHash = sourceHash.String
		row.Error = errText.String
		_ = json.Unmarshal([]byte(countsJSON), &row.Counts)
		_ = json.Unmarshal([]byte(timingsJSON), &row.Timings)
		out = append(out, row)
	}
	return out, rows.Err()
}

// UpsertDraft records a written draft. Rewriting identical content keeps a
// single row pointing at the latest run.
func (d *DB) UpsertDraft(draft internal.DraftRow) error {
	_, err := d.conn.Exec(`
INSERT INTO drafts (traceId, kind, recipient, subject, hash, path)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(hash) DO UPDATE SET
  traceId=excluded.traceId,
  path=excluded.path,
  createdAt=CURRENT_TIMESTAMP
`, draft.TraceID, draft.Kind, draft.Recipient, draft.Subject, draft.Hash, draft.Path)
	return err
}

func (d *DB) ListDrafts(traceID string) ([]internal.DraftRow, error) {
	rows, err := d.conn.Query(`
SELECT id, traceId, kind, recipient, subject, hash, path
FROM drafts WHERE traceId = ? ORDER BY recipient ASC, kind ASC
`, traceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.DraftRow
	for rows.Next() {
		var row internal.DraftRow
		if err := rows.Scan(&row.ID, &row.TraceID, &row.Kind, &row.Recipient, &row.Subject, &row.Hash, &row.Path); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (d *DB) GetReport(hash string) (*internal.ReportRow, error) {
	var row internal.ReportRow
	var errText sql.NullString
	err := d.conn.QueryRow(`SELECT hash, path, status, error FROM reports WHERE hash = ?`, hash).
		Scan(&row.Hash, &row.Path, &row.Status, &errText)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	row.Error = errText.String
	return &row, nil
}

func (d *DB) UpsertReport(report internal.ReportRow) error {
	_, err := d.conn.Exec(`
INSERT INTO reports (hash, path, status, error) VALUES (?, ?, ?, ?)
ON CONFLICT(hash) DO UPDATE SET
  path=excluded.path,
  status=excluded.status,
  error=excluded.error,
  updatedAt=CURRENT_TIMESTAMP
`, report.Hash, report.Path, report.Status, report.Error)
	return err
}

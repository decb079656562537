package export

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"

	_ "modernc.org/sqlite"

	"github.com/banshee-data/fluxpro/internal/fsutil"
	"github.com/banshee-data/fluxpro/internal/monitoring"
	"github.com/banshee-data/fluxpro/internal/table"
)

const schema = `
	DROP TABLE IF EXISTS flux;
	CREATE TABLE flux (
		cycle     INTEGER NOT NULL,
		sample    INTEGER NOT NULL,
		datetime  TEXT    NOT NULL,
		gas       TEXT    NOT NULL,
		metric    TEXT    NOT NULL,
		value     REAL
	);
	CREATE INDEX flux_sample_cycle ON flux (sample, cycle);
`

// SQLiteWriter writes the result table in long form to <stem>_out.db. Each
// wide cell becomes one row of the flux table; nulls are stored as NULL.
type SQLiteWriter struct {
	fs fsutil.FileSystem
}

// Format returns FormatSQLite.
func (*SQLiteWriter) Format() Format { return FormatSQLite }

// Write builds the database in a temporary file, then copies it into dir.
func (s *SQLiteWriter) Write(ctx context.Context, w *table.Wide, dir, stem string) ([]string, error) {
	tmp, err := os.CreateTemp("", "fluxpro-*.db")
	if err != nil {
		return nil, fmt.Errorf("failed to create temporary database: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	if err := writeDB(ctx, tmpPath, w); err != nil {
		return nil, err
	}

	path, out, err := create(s.fs, dir, stem+"_out.db")
	if err != nil {
		return nil, err
	}
	in, err := os.Open(tmpPath)
	if err != nil {
		out.Close()
		return nil, err
	}
	defer in.Close()
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return nil, fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := out.Close(); err != nil {
		return nil, fmt.Errorf("failed to close %s: %w", path, err)
	}
	return []string{path}, nil
}

func writeDB(ctx context.Context, path string, w *table.Wide) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO flux (cycle, sample, datetime, gas, metric, value) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	n := 0
	for _, r := range w.Rows {
		ts := r.Time.Format(DatetimeLayout)
		for i, col := range w.Columns {
			g, m, ok := table.SplitColumnName(col)
			if !ok {
				continue
			}
			if _, err := stmt.ExecContext(ctx, r.Cycle, r.Sample, ts, string(g), string(m), r.Values[i]); err != nil {
				return fmt.Errorf("failed to insert %s for cycle %d sample %d: %w", col, r.Cycle, r.Sample, err)
			}
			n++
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	monitoring.Logf("export: wrote %d sqlite rows", n)
	return nil
}

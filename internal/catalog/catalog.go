// Package catalog keeps a sqlite ledger of the rasters each pipeline run wrote.
package catalog

import (
	"context"
	"database/sql"
	"math"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/nybem/nybem-tools/internal/raster"

	// sqlite driver for the ledger
	_ "modernc.org/sqlite"
)

const schema = `
	CREATE TABLE IF NOT EXISTS outputs (
		id integer PRIMARY KEY AUTOINCREMENT,
		run text NOT NULL,
		step text NOT NULL,
		kind text NOT NULL,
		path text NOT NULL,
		cols integer NOT NULL,
		rows integer NOT NULL,
		cell_size real NOT NULL,
		valid_cells integer NOT NULL,
		min real,
		max real,
		mean real,
		elapsed_ms integer NOT NULL,
		created_at timestamp NOT NULL
	);
	CREATE INDEX IF NOT EXISTS outputs_run on outputs (run);
`

// Entry is one raster written by a run
type Entry struct {
	ID         int64           `db:"id"`
	Run        string          `db:"run"`
	Step       string          `db:"step"`
	Kind       string          `db:"kind"`
	Path       string          `db:"path"`
	Cols       int             `db:"cols"`
	Rows       int             `db:"rows"`
	CellSize   float64         `db:"cell_size"`
	ValidCells int             `db:"valid_cells"`
	Min        sql.NullFloat64 `db:"min"`
	Max        sql.NullFloat64 `db:"max"`
	Mean       sql.NullFloat64 `db:"mean"`
	ElapsedMS  int64           `db:"elapsed_ms"`
	CreatedAt  time.Time       `db:"created_at"`
}

// Catalog is an open ledger
type Catalog struct {
	db         *sqlx.DB
	insertStmt *sqlx.NamedStmt
}

// Open opens or creates the ledger at given path
func Open(ctx context.Context, path string) (*Catalog, error) {
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, err
	}

	insertStmt, err := db.PrepareNamedContext(ctx, `
		INSERT INTO outputs (run, step, kind, path, cols, rows, cell_size, valid_cells, min, max, mean, elapsed_ms, created_at)
		VALUES (:run, :step, :kind, :path, :cols, :rows, :cell_size, :valid_cells, :min, :max, :mean, :elapsed_ms, :created_at)`)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Catalog{db: db, insertStmt: insertStmt}, nil
}

// Close releases the db file
func (c *Catalog) Close() error {
	if err := c.insertStmt.Close(); err != nil {
		return err
	}
	return c.db.Close()
}

// NewEntry describes r written to path by a step
func NewEntry(run, step, kind, path string, r *raster.Raster, elapsed time.Duration) Entry {
	stats := r.Statistics()

	return Entry{
		Run:        run,
		Step:       step,
		Kind:       kind,
		Path:       path,
		Cols:       r.Geometry.Cols,
		Rows:       r.Geometry.Rows,
		CellSize:   r.Geometry.CellSize,
		ValidCells: stats.Valid,
		Min:        nullFloat(stats.Min),
		Max:        nullFloat(stats.Max),
		Mean:       nullFloat(stats.Mean),
		ElapsedMS:  elapsed.Milliseconds(),
		CreatedAt:  time.Now().UTC(),
	}
}

// Record inserts an entry
func (c *Catalog) Record(ctx context.Context, e Entry) error {
	_, err := c.insertStmt.ExecContext(ctx, e)
	return err
}

// Entries returns the entries of a run, or of all runs if run is empty, oldest first
func (c *Catalog) Entries(ctx context.Context, run string) ([]Entry, error) {
	var entries []Entry

	if run == "" {
		err := c.db.SelectContext(ctx, &entries, "SELECT * FROM outputs ORDER BY id")
		return entries, err
	}

	err := c.db.SelectContext(ctx, &entries, "SELECT * FROM outputs WHERE run = ? ORDER BY id", run)
	return entries, err
}

func nullFloat(f float64) sql.NullFloat64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: f, Valid: true}
}

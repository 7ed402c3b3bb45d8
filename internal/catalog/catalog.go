// Package catalog records parse runs, the flat tables they wrote and the
// plot artifacts produced from them in a SQLite database.
package catalog

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/mctalPlots/mctalPlots/internal/flattable"
	"github.com/mctalPlots/mctalPlots/internal/monitoring"
	"github.com/mctalPlots/mctalPlots/internal/tally"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

type DB struct {
	*sql.DB
}

// Open opens (or creates) the catalog at path and migrates it to the
// latest schema.
func Open(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// Pragmas are per connection.
	sqlDB.SetMaxOpenConns(1)
	if _, err := sqlDB.Exec(`PRAGMA foreign_keys = ON; PRAGMA busy_timeout = 5000;`); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to set pragmas: %w", err)
	}
	db := &DB{sqlDB}
	if err := db.MigrateUp(); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// MigrateUp runs all pending migrations up to the latest version.
// Returns nil if no migrations were needed (already at latest version).
func (db *DB) MigrateUp() error {
	m, err := db.newMigrate()
	if err != nil {
		return err
	}
	// Note: We don't close m here because it would close the underlying DB connection.

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}

// MigrateVersion returns the current migration version and dirty state.
// Returns 0, false, nil if no migrations have been applied yet.
func (db *DB) MigrateVersion() (version uint, dirty bool, err error) {
	m, err := db.newMigrate()
	if err != nil {
		return 0, false, err
	}

	version, dirty, err = m.Version()
	if err != nil && errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}

func (db *DB) newMigrate() (*migrate.Migrate, error) {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}
	driver, err := sqlite.WithInstance(db.DB, &sqlite.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create sqlite driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	m.Log = &migrateLogger{}
	return m, nil
}

// migrateLogger implements migrate.Logger interface
type migrateLogger struct{}

func (l *migrateLogger) Printf(format string, v ...interface{}) {
	monitoring.Debugf("[migrate] "+format, v...)
}

func (l *migrateLogger) Verbose() bool {
	return false
}

// Run is one parse of a tally source.
type Run struct {
	ID          string
	Source      string
	TalliesRoot string
	StartedAt   string
}

// BeginRun registers a new run and returns its id.
func (db *DB) BeginRun(source, talliesRoot string) (Run, error) {
	run := Run{ID: uuid.NewString(), Source: source, TalliesRoot: talliesRoot}
	if _, err := db.Exec(`INSERT INTO runs (run_id, source, tallies_root) VALUES (?, ?, ?)`,
		run.ID, run.Source, run.TalliesRoot); err != nil {
		return Run{}, fmt.Errorf("failed to insert run: %w", err)
	}
	return run, nil
}

// Runs lists every run, oldest first.
func (db *DB) Runs() ([]Run, error) {
	rows, err := db.Query(`SELECT run_id, source, tallies_root, started_at FROM runs ORDER BY started_at, rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Source, &r.TalliesRoot, &r.StartedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// TableEntry is one flat table written (or skipped) by a run.
type TableEntry struct {
	Tally   int
	Type    tally.Type
	Path    string
	Records int
	// Bins holds the e, i, j and k bin counts.
	Bins    [4]int
	Skipped bool
}

// RecordTable stores the outcome of one flat table write.
func (db *DB) RecordTable(runID string, res flattable.WriteResult) error {
	b := res.Bounds
	_, err := db.Exec(`
		INSERT OR REPLACE INTO flat_tables
			(run_id, tally, tally_type, path, records, bins_e, bins_i, bins_j, bins_k, skipped)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, res.Number, int(tally.TypeOf(res.Number)), res.Path, res.Records,
		b[tally.AxisEnergy.Position()], b[tally.AxisMeshI.Position()],
		b[tally.AxisMeshJ.Position()], b[tally.AxisMeshK.Position()], res.Skipped)
	if err != nil {
		return fmt.Errorf("failed to record table f%d: %w", res.Number, err)
	}
	return nil
}

// Tables lists the flat tables of a run in tally order.
func (db *DB) Tables(runID string) ([]TableEntry, error) {
	rows, err := db.Query(`
		SELECT tally, tally_type, path, records, bins_e, bins_i, bins_j, bins_k, skipped
		FROM flat_tables WHERE run_id = ? ORDER BY tally`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TableEntry
	for rows.Next() {
		var e TableEntry
		var typ int
		if err := rows.Scan(&e.Tally, &typ, &e.Path, &e.Records,
			&e.Bins[0], &e.Bins[1], &e.Bins[2], &e.Bins[3], &e.Skipped); err != nil {
			return nil, err
		}
		e.Type = tally.Type(typ)
		out = append(out, e)
	}
	return out, rows.Err()
}

// RecordArtifact stores a plot or export written for a tally.
func (db *DB) RecordArtifact(runID string, tallyID int, kind, path string) error {
	if _, err := db.Exec(`INSERT INTO artifacts (run_id, tally, kind, path) VALUES (?, ?, ?, ?)`,
		runID, tallyID, kind, path); err != nil {
		return fmt.Errorf("failed to record artifact %s: %w", path, err)
	}
	return nil
}

// Artifacts lists the artifact paths of one tally in a run, in insertion
// order.
func (db *DB) Artifacts(runID string, tallyID int) ([]string, error) {
	rows, err := db.Query(`SELECT path FROM artifacts WHERE run_id = ? AND tally = ? ORDER BY rowid`, runID, tallyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

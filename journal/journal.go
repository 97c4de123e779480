// Package journal persists encoded queue snapshots and benchmark runs in a
// sqlite database.
//
// The journal is a cold-path store: snapshots are written when a dispatcher
// checkpoints and read back on restart or replay. It never sits between a
// caller and the queue.
package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/multierr"

	"pdq/constants"
	"pdq/debug"
	"pdq/utils"
)

var (
	ErrNotFound  = errors.New("journal: snapshot not found")
	ErrEmptyName = errors.New("journal: empty snapshot name")
)

const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
	name       TEXT PRIMARY KEY,
	payload    BLOB NOT NULL,
	size       INTEGER NOT NULL,
	created_ns INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS runs (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	workload   TEXT NOT NULL,
	impl       TEXT NOT NULL,
	n          INTEGER NOT NULL,
	seed       INTEGER NOT NULL,
	ns_per_op  REAL NOT NULL,
	created_ns INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS runs_workload ON runs(workload, n);
`

// SnapshotInfo describes a stored snapshot without its payload.
type SnapshotInfo struct {
	Name    string
	Size    int
	Created time.Time
}

// Run is one benchmark measurement.
type Run struct {
	ID       int64
	Workload string
	Impl     string
	N        int
	Seed     uint64
	NsPerOp  float64
	Created  time.Time
}

// Journal is a sqlite-backed snapshot and run store.
// It is safe for concurrent use; database/sql serializes access.
type Journal struct {
	db     *sql.DB
	now    func() time.Time
	commit func(*sql.Tx) error
}

// Open opens (creating if needed) the journal at path.
func Open(ctx context.Context, path string) (*Journal, error) {
	dsn := path + "?_busy_timeout=" + utils.Itoa(constants.JournalBusyTimeoutMs)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("journal: open %s: %w", path, err)
	}
	// single writer; sqlite serializes anyway
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, multierr.Append(fmt.Errorf("journal: init schema: %w", err), db.Close())
	}
	debug.DropMessage("JOURNAL", "opened "+path)
	return &Journal{db: db, now: time.Now, commit: (*sql.Tx).Commit}, nil
}

// Close releases the database handle.
func (j *Journal) Close() error {
	return j.db.Close()
}

// ============================================================================
// SNAPSHOTS
// ============================================================================

// SaveSnapshot stores payload under name, replacing any previous snapshot.
func (j *Journal) SaveSnapshot(ctx context.Context, name string, payload []byte, size int) error {
	if name == "" {
		return ErrEmptyName
	}
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO snapshots (name, payload, size, created_ns)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			payload = excluded.payload,
			size = excluded.size,
			created_ns = excluded.created_ns`,
		name, payload, size, j.now().UnixNano())
	if err != nil {
		return fmt.Errorf("journal: save %q: %w", name, err)
	}
	return nil
}

// LoadSnapshot returns the payload stored under name.
func (j *Journal) LoadSnapshot(ctx context.Context, name string) ([]byte, error) {
	var payload []byte
	err := j.db.QueryRowContext(ctx,
		`SELECT payload FROM snapshots WHERE name = ?`, name).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("journal: load %q: %w", name, err)
	}
	return payload, nil
}

// DeleteSnapshot removes the snapshot stored under name.
func (j *Journal) DeleteSnapshot(ctx context.Context, name string) error {
	res, err := j.db.ExecContext(ctx, `DELETE FROM snapshots WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("journal: delete %q: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("journal: delete %q: %w", name, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return nil
}

// ListSnapshots returns all stored snapshots ordered by name.
func (j *Journal) ListSnapshots(ctx context.Context) (out []SnapshotInfo, err error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT name, size, created_ns FROM snapshots ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("journal: list snapshots: %w", err)
	}
	defer func() { err = multierr.Append(err, rows.Close()) }()

	for rows.Next() {
		var (
			info SnapshotInfo
			ns   int64
		)
		if err := rows.Scan(&info.Name, &info.Size, &ns); err != nil {
			return nil, fmt.Errorf("journal: scan snapshot: %w", err)
		}
		info.Created = time.Unix(0, ns)
		out = append(out, info)
	}
	return out, rows.Err()
}

// ============================================================================
// BENCHMARK RUNS
// ============================================================================

// RecordRuns stores runs in a single transaction and returns their ids.
func (j *Journal) RecordRuns(ctx context.Context, runs ...Run) (ids []int64, err error) {
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("journal: begin: %w", err)
	}
	// a failed Commit already ends the transaction
	committing := false
	defer func() {
		if err != nil && !committing {
			err = multierr.Append(err, tx.Rollback())
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO runs (workload, impl, n, seed, ns_per_op, created_ns)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("journal: prepare: %w", err)
	}
	defer func() { err = multierr.Append(err, stmt.Close()) }()

	now := j.now().UnixNano()
	for _, r := range runs {
		// sqlite INTEGER is signed; the seed round-trips through its bit pattern
		res, err := stmt.ExecContext(ctx, r.Workload, r.Impl, r.N, int64(r.Seed), r.NsPerOp, now)
		if err != nil {
			return nil, fmt.Errorf("journal: record %s/%s: %w", r.Workload, r.Impl, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("journal: record id: %w", err)
		}
		ids = append(ids, id)
	}
	committing = true
	if err := j.commit(tx); err != nil {
		return nil, fmt.Errorf("journal: commit: %w", err)
	}
	return ids, nil
}

// Runs returns recorded runs, oldest first. An empty workload matches all.
func (j *Journal) Runs(ctx context.Context, workload string) (out []Run, err error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT id, workload, impl, n, seed, ns_per_op, created_ns
		FROM runs
		WHERE ? = '' OR workload = ?
		ORDER BY id`, workload, workload)
	if err != nil {
		return nil, fmt.Errorf("journal: query runs: %w", err)
	}
	defer func() { err = multierr.Append(err, rows.Close()) }()

	for rows.Next() {
		var (
			r    Run
			seed int64
			ns   int64
		)
		if err := rows.Scan(&r.ID, &r.Workload, &r.Impl, &r.N, &seed, &r.NsPerOp, &ns); err != nil {
			return nil, fmt.Errorf("journal: scan run: %w", err)
		}
		r.Seed = uint64(seed)
		r.Created = time.Unix(0, ns)
		out = append(out, r)
	}
	return out, rows.Err()
}

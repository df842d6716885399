// Package journal is an optional SQLite audit log of scan cycles and
// join/leave sightings. It records what the monitor observed after events
// are dispatched; the presence pipeline itself never reads it, and a write
// failure never blocks the scan loop.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite" // Pure-Go SQLite driver

	"github.com/netvigil/netvigil/internal/device"
)

// Journal is a handle on the sightings database.
type Journal struct {
	db     *sql.DB
	logger *zap.Logger
}

// Open opens (or creates) the journal database at path and applies pragmas
// and pending schema migrations.
func Open(path string, logger *zap.Logger) (*Journal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", path, err)
	}

	// SQLite performs best with a single write connection. WAL enables
	// concurrent readers.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite %q: %w", path, err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec %q: %w", p, err)
		}
	}

	j := &Journal{db: db, logger: logger}
	if err := j.migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return j, nil
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	return j.db.Close()
}

type migration struct {
	version     int
	description string
	sql         string
}

var migrations = []migration{
	{
		version:     1,
		description: "sightings and cycles tables",
		sql: `
CREATE TABLE IF NOT EXISTS sightings (
	id          TEXT PRIMARY KEY,
	addr        TEXT NOT NULL,
	label       TEXT NOT NULL DEFAULT '',
	hostname    TEXT NOT NULL DEFAULT '',
	ip          TEXT NOT NULL DEFAULT '',
	event       TEXT NOT NULL,
	observed_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sightings_addr ON sightings(addr);
CREATE TABLE IF NOT EXISTS cycles (
	id          TEXT PRIMARY KEY,
	started_at  TIMESTAMP NOT NULL,
	duration_ms INTEGER NOT NULL,
	online      INTEGER NOT NULL,
	joined      INTEGER NOT NULL,
	departed    INTEGER NOT NULL
);`,
	},
}

// migrate applies pending migrations tracked in the _migrations table.
func (j *Journal) migrate(ctx context.Context) error {
	if _, err := j.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS _migrations (
			version    INTEGER PRIMARY KEY,
			applied_at TIMESTAMP NOT NULL
		)`); err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	for _, m := range migrations {
		var exists int
		err := j.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM _migrations WHERE version = ?`, m.version).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check migration %d: %w", m.version, err)
		}
		if exists > 0 {
			continue
		}
		if _, err := j.db.ExecContext(ctx, m.sql); err != nil {
			return fmt.Errorf("migration %d (%s): %w", m.version, m.description, err)
		}
		if _, err := j.db.ExecContext(ctx,
			`INSERT INTO _migrations (version, applied_at) VALUES (?, ?)`,
			m.version, time.Now().UTC()); err != nil {
			return fmt.Errorf("record migration %d: %w", m.version, err)
		}
	}
	return nil
}

// Sighting is one recorded join or leave observation.
type Sighting struct {
	ID         string
	Addr       device.Addr
	Label      string
	Hostname   string
	IP         string
	Event      string // "joined" or "left"
	ObservedAt time.Time
}

// RecordSighting inserts a sighting, generating an ID when none is set.
func (j *Journal) RecordSighting(ctx context.Context, s *Sighting) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO sightings (id, addr, label, hostname, ip, event, observed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		s.ID, string(s.Addr), s.Label, s.Hostname, s.IP, s.Event, s.ObservedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert sighting: %w", err)
	}
	return nil
}

// Cycle is one recorded scan cycle summary.
type Cycle struct {
	ID        string
	StartedAt time.Time
	Duration  time.Duration
	Online    int
	Joined    int
	Departed  int
}

// RecordCycle inserts a cycle summary, generating an ID when none is set.
func (j *Journal) RecordCycle(ctx context.Context, c *Cycle) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO cycles (id, started_at, duration_ms, online, joined, departed)
		VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.StartedAt.UTC(), c.Duration.Milliseconds(), c.Online, c.Joined, c.Departed)
	if err != nil {
		return fmt.Errorf("insert cycle: %w", err)
	}
	return nil
}

// RecentSightings returns up to limit sightings, newest first.
func (j *Journal) RecentSightings(ctx context.Context, limit int) ([]Sighting, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := j.db.QueryContext(ctx, `
		SELECT id, addr, label, hostname, ip, event, observed_at
		FROM sightings ORDER BY observed_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list sightings: %w", err)
	}
	defer rows.Close()

	var out []Sighting
	for rows.Next() {
		var s Sighting
		var addr string
		if err := rows.Scan(&s.ID, &addr, &s.Label, &s.Hostname, &s.IP, &s.Event, &s.ObservedAt); err != nil {
			return nil, fmt.Errorf("scan sighting row: %w", err)
		}
		s.Addr = device.Addr(addr)
		out = append(out, s)
	}
	return out, rows.Err()
}

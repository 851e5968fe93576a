package registry

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/starlane-io/starlane/internal/identity"
)

// SQLite is the reference/demo Registry backing the star CLI command: a
// single-file particles table, opened the way the teacher opens its state
// store (serialized connection pool, WAL mode, busy timeout, foreign keys
// on) since SQLite's own locking model punishes concurrent writers more
// than it rewards concurrent readers.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens or creates the registry database at path and ensures
// its schema exists.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("registry: opening %s: %w", path, err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("registry: pinging %s: %w", path, err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			return nil, fmt.Errorf("registry: %s: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaDDL); err != nil {
		return nil, fmt.Errorf("registry: creating schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS particles (
	point      TEXT PRIMARY KEY,
	kind       TEXT NOT NULL DEFAULT '',
	status     TEXT NOT NULL DEFAULT '',
	properties TEXT NOT NULL DEFAULT '{}',
	star       TEXT NOT NULL DEFAULT '',
	remote     INTEGER NOT NULL DEFAULT 0
);
`

func (s *SQLite) Locate(ctx context.Context, point identity.Point) (ParticleRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT kind, status, properties, star, remote FROM particles WHERE point = ?`,
		point.String(),
	)

	var kind, status, propsJSON, star string
	var remote int
	if err := row.Scan(&kind, &status, &propsJSON, &star, &remote); err != nil {
		if err == sql.ErrNoRows {
			return ParticleRecord{}, ErrNotFound
		}
		return ParticleRecord{}, fmt.Errorf("registry: locating %s: %w", point, err)
	}

	props := make(map[string]string)
	if err := json.Unmarshal([]byte(propsJSON), &props); err != nil {
		return ParticleRecord{}, fmt.Errorf("registry: decoding properties for %s: %w", point, err)
	}

	return ParticleRecord{
		Stub:       identity.NewSurface(point, identity.Core),
		Kind:       kind,
		Status:     status,
		Properties: props,
		Location:   identity.Route{Remote: remote != 0, Star: identity.StarKey(star)},
	}, nil
}

func (s *SQLite) GetProperties(ctx context.Context, point identity.Point) (map[string]string, error) {
	rec, err := s.Locate(ctx, point)
	if err != nil {
		return nil, err
	}
	return rec.Properties, nil
}

func (s *SQLite) Assign(ctx context.Context, point identity.Point, star identity.StarKey) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO particles (point, star, remote)
		VALUES (?, ?, 1)
		ON CONFLICT(point) DO UPDATE SET star = excluded.star, remote = 1
	`, point.String(), star.String())
	if err != nil {
		return fmt.Errorf("registry: assigning %s to %s: %w", point, star, err)
	}
	return nil
}

// Register records a particle's kind, status and properties, creating its
// row if absent. Not part of the Registry contract itself (spec.md §6
// only names locate/get_properties/assign) — drivers call this when a
// particle is instantiated, before it is ever assigned to a star.
func (s *SQLite) Register(ctx context.Context, point identity.Point, kind, status string, properties map[string]string) error {
	if properties == nil {
		properties = map[string]string{}
	}
	propsJSON, err := json.Marshal(properties)
	if err != nil {
		return fmt.Errorf("registry: encoding properties for %s: %w", point, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO particles (point, kind, status, properties)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(point) DO UPDATE SET kind = excluded.kind, status = excluded.status, properties = excluded.properties
	`, point.String(), kind, status, string(propsJSON))
	if err != nil {
		return fmt.Errorf("registry: registering %s: %w", point, err)
	}
	return nil
}

package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/semver/v3"
)

const (
	// CurrentSchemaVersion tracks the database schema version
	CurrentSchemaVersion = "1.1.0"
)

// Migration represents a database schema migration
type Migration struct {
	Version string
	Up      string
	Down    string
}

// AllMigrations contains all database migrations in order
var AllMigrations = []Migration{
	{
		Version: "1.0.0",
		Up:      migrationV1Up,
		Down:    migrationV1Down,
	},
	{
		Version: "1.1.0",
		Up:      migrationV11Up,
		Down:    migrationV11Down,
	},
}

const migrationV1Up = `
-- Schema version tracking
CREATE TABLE IF NOT EXISTS schema_version (
    version TEXT PRIMARY KEY,
    applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

-- Sectors and hierarchy levels
CREATE TABLE IF NOT EXISTS catalog_entries (
    id TEXT PRIMARY KEY,
    kind TEXT NOT NULL CHECK (kind IN ('SECTOR', 'LEVEL')),
    name TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    sort_order INTEGER NOT NULL DEFAULT 0,
    active BOOLEAN NOT NULL DEFAULT 1
);

CREATE INDEX IF NOT EXISTS idx_catalog_kind ON catalog_entries(kind, active);

-- Job offers
CREATE TABLE IF NOT EXISTS offers (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    sector_id TEXT NOT NULL,
    level_id TEXT NOT NULL,
    mandatory_skills TEXT NOT NULL DEFAULT '[]',
    desirable_skills TEXT NOT NULL DEFAULT '[]',
    status TEXT NOT NULL DEFAULT 'ACTIVE',
    embedding BLOB,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_offers_sector ON offers(sector_id, status);

-- Candidate profiles
CREATE TABLE IF NOT EXISTS candidates (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL DEFAULT '',
    email TEXT NOT NULL DEFAULT '',
    skills TEXT NOT NULL DEFAULT '[]',
    level_id TEXT NOT NULL DEFAULT '',
    sector_id TEXT NOT NULL DEFAULT '',
    embedding BLOB,
    updated_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_candidates_sector ON candidates(sector_id);

-- Applications
CREATE TABLE IF NOT EXISTS applications (
    id TEXT PRIMARY KEY,
    candidate_id TEXT NOT NULL,
    offer_id TEXT NOT NULL,
    submitted_at INTEGER NOT NULL,
    status TEXT NOT NULL,
    match_score REAL,
    updated_at INTEGER NOT NULL,
    FOREIGN KEY (offer_id) REFERENCES offers(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_applications_candidate ON applications(candidate_id, submitted_at);
CREATE INDEX IF NOT EXISTS idx_applications_offer ON applications(offer_id, submitted_at);

-- At most one open application per candidate and offer
CREATE UNIQUE INDEX IF NOT EXISTS idx_applications_open
    ON applications(candidate_id, offer_id)
    WHERE status IN ('PENDING', 'UNDER_REVIEW');
`

const migrationV1Down = `
DROP INDEX IF EXISTS idx_applications_open;
DROP TABLE IF EXISTS applications;
DROP TABLE IF EXISTS candidates;
DROP TABLE IF EXISTS offers;
DROP TABLE IF EXISTS catalog_entries;
`

const migrationV11Up = `
INSERT OR IGNORE INTO catalog_entries (id, kind, name, description, sort_order, active) VALUES
    ('SEC_AGRO', 'SECTOR', 'Agroindustria', 'Agricultura y procesamiento de alimentos', 1, 1),
    ('SEC_SALUD', 'SECTOR', 'Salud', 'Servicios de salud y bienestar', 2, 1),
    ('SEC_TECH', 'SECTOR', 'Tecnología', 'Tecnologías de la información y software', 3, 1),
    ('NIV_JUNIOR', 'LEVEL', 'Junior', 'Hasta 2 años de experiencia', 1, 1),
    ('NIV_SEMI_SENIOR', 'LEVEL', 'Semi Senior', 'Entre 2 y 5 años de experiencia', 2, 1),
    ('NIV_SENIOR', 'LEVEL', 'Senior', 'Más de 5 años de experiencia', 3, 1),
    ('NIV_LEAD', 'LEVEL', 'Lead', 'Liderazgo técnico o de equipo', 4, 1);
`

const migrationV11Down = `
DELETE FROM catalog_entries WHERE id IN (
    'SEC_AGRO', 'SEC_SALUD', 'SEC_TECH',
    'NIV_JUNIOR', 'NIV_SEMI_SENIOR', 'NIV_SENIOR', 'NIV_LEAD'
);
`

// currentSchemaVersion returns the highest applied version, or 0.0.0 when
// nothing has been applied yet
func currentSchemaVersion(ctx context.Context, q querier) (*semver.Version, error) {
	current := semver.MustParse("0.0.0")

	var tableName string
	err := q.QueryRowContext(ctx, "SELECT name FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&tableName)
	if err == sql.ErrNoRows {
		return current, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to check schema_version table: %w", err)
	}

	rows, err := q.QueryContext(ctx, "SELECT version FROM schema_version")
	if err != nil {
		return nil, fmt.Errorf("failed to read schema_version: %w", err)
	}
	defer func() { _ = rows.Close() }()

	// applied_at has second resolution, so compare versions rather than timestamps
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		v, err := semver.NewVersion(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid schema version %s: %w", raw, err)
		}
		if v.GreaterThan(current) {
			current = v
		}
	}
	return current, rows.Err()
}

// ApplyMigrations runs all pending migrations
func ApplyMigrations(ctx context.Context, db *sql.DB) error {
	currentVersion, err := currentSchemaVersion(ctx, db)
	if err != nil {
		return err
	}

	// Run migrations in order
	for _, migration := range AllMigrations {
		migrationVersion, err := semver.NewVersion(migration.Version)
		if err != nil {
			return fmt.Errorf("invalid migration version %s: %w", migration.Version, err)
		}

		if !currentVersion.LessThan(migrationVersion) {
			continue // Already applied
		}

		if _, err := db.ExecContext(ctx, migration.Up); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", migration.Version, err)
		}

		if _, err := db.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", migration.Version); err != nil {
			return fmt.Errorf("failed to record migration %s: %w", migration.Version, err)
		}

		currentVersion = migrationVersion
	}

	return nil
}

// RollbackMigration rolls back the most recent migration
func RollbackMigration(ctx context.Context, db *sql.DB) error {
	current, err := currentSchemaVersion(ctx, db)
	if err != nil {
		return err
	}
	if current.Equal(semver.MustParse("0.0.0")) {
		return fmt.Errorf("no migrations to rollback")
	}

	var migration *Migration
	for i := range AllMigrations {
		v, err := semver.NewVersion(AllMigrations[i].Version)
		if err == nil && v.Equal(current) {
			migration = &AllMigrations[i]
			break
		}
	}
	if migration == nil {
		return fmt.Errorf("migration %s not found", current)
	}

	if _, err := db.ExecContext(ctx, migration.Down); err != nil {
		return fmt.Errorf("failed to rollback migration %s: %w", migration.Version, err)
	}

	if _, err := db.ExecContext(ctx, "DELETE FROM schema_version WHERE version = ?", migration.Version); err != nil {
		return fmt.Errorf("failed to remove migration record %s: %w", migration.Version, err)
	}

	return nil
}

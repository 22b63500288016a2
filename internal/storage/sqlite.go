package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/juan975/cail-matching/pkg/types"
)

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when a write violates a uniqueness constraint
	ErrAlreadyExists = errors.New("already exists")
)

// SQLiteStorage implements the Storage interface using SQLite
type SQLiteStorage struct {
	db *sql.DB
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// A single connection serializes every transaction, which is what makes
	// the admission check-then-write sequence atomic.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// NewSQLiteStorage creates a new SQLite storage instance
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Apply migrations
	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// BeginTx starts a new transaction. It blocks while another transaction
// holds the connection.
func (s *SQLiteStorage) BeginTx(ctx context.Context) (Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &sqliteTx{tx: tx, storage: s}, nil
}

// querier is an interface that both *sql.DB and *sql.Tx implement
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// sqliteTx wraps a SQL transaction
type sqliteTx struct {
	tx      *sql.Tx
	storage *SQLiteStorage
}

func (t *sqliteTx) Commit() error {
	return t.tx.Commit()
}

func (t *sqliteTx) Rollback() error {
	return t.tx.Rollback()
}

// querier returns the transaction querier
func (t *sqliteTx) querier() querier {
	return t.tx
}

// querier returns the DB querier
func (s *SQLiteStorage) querier() querier {
	return s.db
}

func toMillis(t time.Time) int64 {
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms)
}

// isUniqueViolation matches the constraint error text of both drivers
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// placeholders returns "?,?,?" for n arguments
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?,", n-1) + "?"
}

// Offer operations

const offerColumns = `id, title, description, sector_id, level_id, mandatory_skills, desirable_skills, status, embedding`

// upsertOfferWithQuerier writes a normalized copy of offer; the caller's
// value is left untouched. A stored embedding survives an upsert without one
// as long as the embedded text (title, description, skills) is unchanged.
func (s *SQLiteStorage) upsertOfferWithQuerier(ctx context.Context, q querier, in *types.Offer) error {
	offer := *in
	if offer.Status == "" {
		offer.Status = types.OfferActive
	}
	if err := offer.Validate(); err != nil {
		return fmt.Errorf("invalid offer: %w", err)
	}
	offer.NormalizeSkills()

	mandatory, err := json.Marshal(nonNilSkills(offer.MandatorySkills))
	if err != nil {
		return fmt.Errorf("marshal mandatory skills: %w", err)
	}
	desirable, err := json.Marshal(nonNilSkills(offer.DesirableSkills))
	if err != nil {
		return fmt.Errorf("marshal desirable skills: %w", err)
	}

	var embedding interface{} // untyped nil binds NULL
	if len(offer.Embedding) > 0 {
		embedding = serializeVector(offer.Embedding)
	}

	query := `
		INSERT INTO offers (` + offerColumns + `, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			sector_id = excluded.sector_id,
			level_id = excluded.level_id,
			mandatory_skills = excluded.mandatory_skills,
			desirable_skills = excluded.desirable_skills,
			status = excluded.status,
			embedding = CASE
				WHEN length(excluded.embedding) > 0 THEN excluded.embedding
				WHEN offers.title = excluded.title
					AND offers.description = excluded.description
					AND offers.mandatory_skills = excluded.mandatory_skills
					AND offers.desirable_skills = excluded.desirable_skills
				THEN offers.embedding
				ELSE NULL
			END,
			updated_at = excluded.updated_at
	`
	now := toMillis(time.Now())
	_, err = q.ExecContext(ctx, query,
		offer.ID, offer.Title, offer.Description, offer.SectorID, offer.LevelID,
		string(mandatory), string(desirable), string(offer.Status), embedding, now, now)
	if err != nil {
		return fmt.Errorf("failed to upsert offer: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) UpsertOffer(ctx context.Context, offer *types.Offer) error {
	return s.upsertOfferWithQuerier(ctx, s.querier(), offer)
}

func nonNilSkills(skills []types.Skill) []types.Skill {
	if skills == nil {
		return []types.Skill{}
	}
	return skills
}

func scanOffer(row rowScanner) (*types.Offer, error) {
	var offer types.Offer
	var mandatory, desirable, status string
	var embedding []byte
	err := row.Scan(&offer.ID, &offer.Title, &offer.Description, &offer.SectorID, &offer.LevelID,
		&mandatory, &desirable, &status, &embedding)
	if err != nil {
		return nil, err
	}
	return decodeOffer(&offer, mandatory, desirable, status, embedding)
}

// decodeOffer fills the JSON and blob columns of a scanned offer
func decodeOffer(offer *types.Offer, mandatory, desirable, status string, embedding []byte) (*types.Offer, error) {
	if err := json.Unmarshal([]byte(mandatory), &offer.MandatorySkills); err != nil {
		return nil, fmt.Errorf("decode mandatory skills of offer %s: %w", offer.ID, err)
	}
	if err := json.Unmarshal([]byte(desirable), &offer.DesirableSkills); err != nil {
		return nil, fmt.Errorf("decode desirable skills of offer %s: %w", offer.ID, err)
	}
	offer.Status = types.OfferStatus(status)
	if len(embedding) > 0 {
		offer.Embedding = deserializeVector(embedding)
	}
	return offer, nil
}

func (s *SQLiteStorage) getOfferWithQuerier(ctx context.Context, q querier, offerID string) (*types.Offer, error) {
	query := `SELECT ` + offerColumns + ` FROM offers WHERE id = ?`
	offer, err := scanOffer(q.QueryRowContext(ctx, query, offerID))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return offer, nil
}

func (s *SQLiteStorage) GetOffer(ctx context.Context, offerID string) (*types.Offer, error) {
	return s.getOfferWithQuerier(ctx, s.querier(), offerID)
}

func (s *SQLiteStorage) updateOfferEmbeddingWithQuerier(ctx context.Context, q querier, offerID string, vector []float32) error {
	result, err := q.ExecContext(ctx, `UPDATE offers SET embedding = ?, updated_at = ? WHERE id = ?`,
		serializeVector(vector), toMillis(time.Now()), offerID)
	if err != nil {
		return fmt.Errorf("failed to update offer embedding: %w", err)
	}
	return requireRowAffected(result)
}

func (s *SQLiteStorage) UpdateOfferEmbedding(ctx context.Context, offerID string, vector []float32) error {
	return s.updateOfferEmbeddingWithQuerier(ctx, s.querier(), offerID, vector)
}

func requireRowAffected(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Candidate operations

const candidateColumns = `id, name, email, skills, level_id, sector_id, embedding`

func (s *SQLiteStorage) upsertCandidateWithQuerier(ctx context.Context, q querier, c *types.Candidate) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid candidate: %w", err)
	}

	skills := c.Skills
	if skills == nil {
		skills = []string{}
	}
	skillsJSON, err := json.Marshal(skills)
	if err != nil {
		return fmt.Errorf("marshal skills: %w", err)
	}

	var embedding interface{}
	if len(c.Embedding) > 0 {
		embedding = serializeVector(c.Embedding)
	}

	query := `
		INSERT INTO candidates (` + candidateColumns + `, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			skills = excluded.skills,
			level_id = excluded.level_id,
			sector_id = excluded.sector_id,
			embedding = CASE
				WHEN length(excluded.embedding) > 0 THEN excluded.embedding
				WHEN candidates.skills = excluded.skills
					AND candidates.level_id = excluded.level_id
					AND candidates.sector_id = excluded.sector_id
				THEN candidates.embedding
				ELSE NULL
			END,
			updated_at = excluded.updated_at
	`
	_, err = q.ExecContext(ctx, query,
		c.ID, c.Name, c.Email, string(skillsJSON), c.LevelID, c.SectorID, embedding, toMillis(time.Now()))
	if err != nil {
		return fmt.Errorf("failed to upsert candidate: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) UpsertCandidate(ctx context.Context, c *types.Candidate) error {
	return s.upsertCandidateWithQuerier(ctx, s.querier(), c)
}

func scanCandidate(row rowScanner) (*types.Candidate, error) {
	var c types.Candidate
	var skills string
	var embedding []byte
	if err := row.Scan(&c.ID, &c.Name, &c.Email, &skills, &c.LevelID, &c.SectorID, &embedding); err != nil {
		return nil, err
	}
	return decodeCandidate(&c, skills, embedding)
}

// decodeCandidate fills the JSON and blob columns of a scanned candidate
func decodeCandidate(c *types.Candidate, skills string, embedding []byte) (*types.Candidate, error) {
	if err := json.Unmarshal([]byte(skills), &c.Skills); err != nil {
		return nil, fmt.Errorf("decode skills of candidate %s: %w", c.ID, err)
	}
	if len(embedding) > 0 {
		c.Embedding = deserializeVector(embedding)
	}
	return c, nil
}

func (s *SQLiteStorage) getCandidateWithQuerier(ctx context.Context, q querier, candidateID string) (*types.Candidate, error) {
	query := `SELECT ` + candidateColumns + ` FROM candidates WHERE id = ?`
	c, err := scanCandidate(q.QueryRowContext(ctx, query, candidateID))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *SQLiteStorage) GetCandidate(ctx context.Context, candidateID string) (*types.Candidate, error) {
	return s.getCandidateWithQuerier(ctx, s.querier(), candidateID)
}

func (s *SQLiteStorage) getCandidatesByIDsWithQuerier(ctx context.Context, q querier, ids []string) (map[string]*types.Candidate, error) {
	result := make(map[string]*types.Candidate, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	query := `SELECT ` + candidateColumns + ` FROM candidates WHERE id IN (` + placeholders(len(ids)) + `)`
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query candidates: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, err
		}
		result[c.ID] = c
	}
	return result, rows.Err()
}

func (s *SQLiteStorage) GetCandidatesByIDs(ctx context.Context, ids []string) (map[string]*types.Candidate, error) {
	return s.getCandidatesByIDsWithQuerier(ctx, s.querier(), ids)
}

// Application operations

const applicationColumns = `id, candidate_id, offer_id, submitted_at, status, match_score, updated_at`

func (s *SQLiteStorage) createApplicationWithQuerier(ctx context.Context, q querier, app *types.Application) error {
	if app.UpdatedAt.IsZero() {
		app.UpdatedAt = app.SubmittedAt
	}
	var score sql.NullFloat64
	if app.MatchScore != nil {
		score = sql.NullFloat64{Float64: *app.MatchScore, Valid: true}
	}

	query := `INSERT INTO applications (` + applicationColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := q.ExecContext(ctx, query,
		app.ID, app.CandidateID, app.OfferID, toMillis(app.SubmittedAt), string(app.Status), score, toMillis(app.UpdatedAt))
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: open application for candidate %s and offer %s", ErrAlreadyExists, app.CandidateID, app.OfferID)
	}
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) CreateApplication(ctx context.Context, app *types.Application) error {
	return s.createApplicationWithQuerier(ctx, s.querier(), app)
}

func scanApplication(row rowScanner) (*types.Application, error) {
	var app types.Application
	var submitted, updated int64
	var status string
	var score sql.NullFloat64
	if err := row.Scan(&app.ID, &app.CandidateID, &app.OfferID, &submitted, &status, &score, &updated); err != nil {
		return nil, err
	}
	app.SubmittedAt = fromMillis(submitted)
	app.UpdatedAt = fromMillis(updated)
	app.Status = types.ApplicationStatus(status)
	if score.Valid {
		v := score.Float64
		app.MatchScore = &v
	}
	return &app, nil
}

func (s *SQLiteStorage) getApplicationWithQuerier(ctx context.Context, q querier, id string) (*types.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE id = ?`
	app, err := scanApplication(q.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return app, nil
}

func (s *SQLiteStorage) GetApplication(ctx context.Context, id string) (*types.Application, error) {
	return s.getApplicationWithQuerier(ctx, s.querier(), id)
}

func (s *SQLiteStorage) applicationExistsWithQuerier(ctx context.Context, q querier, candidateID, offerID string, statuses []types.ApplicationStatus) (bool, error) {
	if len(statuses) == 0 {
		return false, nil
	}
	args := []interface{}{candidateID, offerID}
	for _, st := range statuses {
		args = append(args, string(st))
	}
	query := `
		SELECT EXISTS (
			SELECT 1 FROM applications
			WHERE candidate_id = ? AND offer_id = ? AND status IN (` + placeholders(len(statuses)) + `)
		)
	`
	var exists bool
	if err := q.QueryRowContext(ctx, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check application: %w", err)
	}
	return exists, nil
}

func (s *SQLiteStorage) ApplicationExists(ctx context.Context, candidateID, offerID string, statuses []types.ApplicationStatus) (bool, error) {
	return s.applicationExistsWithQuerier(ctx, s.querier(), candidateID, offerID, statuses)
}

func (s *SQLiteStorage) countApplicationsSinceWithQuerier(ctx context.Context, q querier, candidateID string, since time.Time) (int, error) {
	var count int
	err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM applications WHERE candidate_id = ? AND submitted_at >= ?`,
		candidateID, toMillis(since)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count applications: %w", err)
	}
	return count, nil
}

func (s *SQLiteStorage) CountApplicationsSince(ctx context.Context, candidateID string, since time.Time) (int, error) {
	return s.countApplicationsSinceWithQuerier(ctx, s.querier(), candidateID, since)
}

// listApplicationsWithQuerier returns applications matching column = value,
// newest first
func (s *SQLiteStorage) listApplicationsWithQuerier(ctx context.Context, q querier, column, value string) ([]*types.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE ` + column + ` = ? ORDER BY submitted_at DESC, id`
	rows, err := q.QueryContext(ctx, query, value)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	defer func() { _ = rows.Close() }()

	apps := make([]*types.Application, 0)
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}
	return apps, rows.Err()
}

func (s *SQLiteStorage) ListApplicationsByCandidate(ctx context.Context, candidateID string) ([]*types.Application, error) {
	return s.listApplicationsWithQuerier(ctx, s.querier(), "candidate_id", candidateID)
}

func (s *SQLiteStorage) ListApplicationsByOffer(ctx context.Context, offerID string) ([]*types.Application, error) {
	return s.listApplicationsWithQuerier(ctx, s.querier(), "offer_id", offerID)
}

func (s *SQLiteStorage) updateApplicationStatusWithQuerier(ctx context.Context, q querier, id string, status types.ApplicationStatus, at time.Time) error {
	result, err := q.ExecContext(ctx, `UPDATE applications SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), toMillis(at), id)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: another open application exists", ErrAlreadyExists)
	}
	if err != nil {
		return fmt.Errorf("failed to update application status: %w", err)
	}
	return requireRowAffected(result)
}

func (s *SQLiteStorage) UpdateApplicationStatus(ctx context.Context, id string, status types.ApplicationStatus, at time.Time) error {
	return s.updateApplicationStatusWithQuerier(ctx, s.querier(), id, status, at)
}

// Catalog operations

func (s *SQLiteStorage) upsertCatalogEntryWithQuerier(ctx context.Context, q querier, e *CatalogEntry) error {
	if e.ID == "" {
		return errors.New("catalog entry id cannot be empty")
	}
	if e.Kind != types.CatalogSector && e.Kind != types.CatalogLevel {
		return fmt.Errorf("unknown catalog kind %q", e.Kind)
	}
	query := `
		INSERT INTO catalog_entries (id, kind, name, description, sort_order, active)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			kind = excluded.kind,
			name = excluded.name,
			description = excluded.description,
			sort_order = excluded.sort_order,
			active = excluded.active
	`
	_, err := q.ExecContext(ctx, query, e.ID, string(e.Kind), e.Name, e.Description, e.SortOrder, e.Active)
	if err != nil {
		return fmt.Errorf("failed to upsert catalog entry: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) UpsertCatalogEntry(ctx context.Context, e *CatalogEntry) error {
	return s.upsertCatalogEntryWithQuerier(ctx, s.querier(), e)
}

func (s *SQLiteStorage) catalogEntryExistsWithQuerier(ctx context.Context, q querier, kind types.CatalogKind, id string) (bool, error) {
	var exists bool
	err := q.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM catalog_entries WHERE id = ? AND kind = ? AND active = 1)`,
		id, string(kind)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check catalog entry: %w", err)
	}
	return exists, nil
}

func (s *SQLiteStorage) CatalogEntryExists(ctx context.Context, kind types.CatalogKind, id string) (bool, error) {
	return s.catalogEntryExistsWithQuerier(ctx, s.querier(), kind, id)
}

func (s *SQLiteStorage) listCatalogEntriesWithQuerier(ctx context.Context, q querier, kind types.CatalogKind) ([]*CatalogEntry, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, kind, name, description, sort_order, active FROM catalog_entries WHERE kind = ? ORDER BY sort_order, id`,
		string(kind))
	if err != nil {
		return nil, fmt.Errorf("failed to list catalog entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	entries := make([]*CatalogEntry, 0)
	for rows.Next() {
		var e CatalogEntry
		var k string
		if err := rows.Scan(&e.ID, &k, &e.Name, &e.Description, &e.SortOrder, &e.Active); err != nil {
			return nil, err
		}
		e.Kind = types.CatalogKind(k)
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

func (s *SQLiteStorage) ListCatalogEntries(ctx context.Context, kind types.CatalogKind) ([]*CatalogEntry, error) {
	return s.listCatalogEntriesWithQuerier(ctx, s.querier(), kind)
}

// Search operations

func (s *SQLiteStorage) SearchCandidates(ctx context.Context, vector []float32, sectorID string, limit int) ([]types.ScoredCandidate, error) {
	return searchCandidates(ctx, s.querier(), vector, sectorID, limit)
}

func (s *SQLiteStorage) SearchOffers(ctx context.Context, vector []float32, sectorID string, limit int) ([]types.ScoredOffer, error) {
	return searchOffers(ctx, s.querier(), vector, sectorID, limit)
}

// Status operations

func (s *SQLiteStorage) getStatusWithQuerier(ctx context.Context, q querier) (*Status, error) {
	status := &Status{}
	query := `
		SELECT
			(SELECT COUNT(*) FROM offers),
			(SELECT COUNT(*) FROM offers WHERE status = 'ACTIVE'),
			(SELECT COUNT(*) FROM candidates),
			(SELECT COUNT(*) FROM candidates WHERE embedding IS NOT NULL),
			(SELECT COUNT(*) FROM applications),
			(SELECT COUNT(*) FROM applications WHERE status IN ('PENDING', 'UNDER_REVIEW'))
	`
	err := q.QueryRowContext(ctx, query).Scan(
		&status.Offers, &status.ActiveOffers, &status.Candidates,
		&status.CandidateEmbeddings, &status.Applications, &status.OpenApplications)
	if err != nil {
		return nil, fmt.Errorf("failed to read status: %w", err)
	}

	version, err := currentSchemaVersion(ctx, q)
	if err != nil {
		return nil, err
	}
	status.SchemaVersion = version.String()

	status.Health = HealthStatus{
		DatabaseAccessible:  true,
		EmbeddingsAvailable: status.CandidateEmbeddings > 0,
		VectorExtension:     VectorExtensionAvailable,
	}
	return status, nil
}

func (s *SQLiteStorage) GetStatus(ctx context.Context) (*Status, error) {
	return s.getStatusWithQuerier(ctx, s.querier())
}

// Transaction implementations. Every call runs on the transaction's
// querier; touching s.db here would deadlock on the single connection.

func (t *sqliteTx) UpsertOffer(ctx context.Context, offer *types.Offer) error {
	return t.storage.upsertOfferWithQuerier(ctx, t.querier(), offer)
}

func (t *sqliteTx) GetOffer(ctx context.Context, offerID string) (*types.Offer, error) {
	return t.storage.getOfferWithQuerier(ctx, t.querier(), offerID)
}

func (t *sqliteTx) UpdateOfferEmbedding(ctx context.Context, offerID string, vector []float32) error {
	return t.storage.updateOfferEmbeddingWithQuerier(ctx, t.querier(), offerID, vector)
}

func (t *sqliteTx) UpsertCandidate(ctx context.Context, c *types.Candidate) error {
	return t.storage.upsertCandidateWithQuerier(ctx, t.querier(), c)
}

func (t *sqliteTx) GetCandidate(ctx context.Context, candidateID string) (*types.Candidate, error) {
	return t.storage.getCandidateWithQuerier(ctx, t.querier(), candidateID)
}

func (t *sqliteTx) GetCandidatesByIDs(ctx context.Context, ids []string) (map[string]*types.Candidate, error) {
	return t.storage.getCandidatesByIDsWithQuerier(ctx, t.querier(), ids)
}

func (t *sqliteTx) CreateApplication(ctx context.Context, app *types.Application) error {
	return t.storage.createApplicationWithQuerier(ctx, t.querier(), app)
}

func (t *sqliteTx) GetApplication(ctx context.Context, id string) (*types.Application, error) {
	return t.storage.getApplicationWithQuerier(ctx, t.querier(), id)
}

func (t *sqliteTx) ApplicationExists(ctx context.Context, candidateID, offerID string, statuses []types.ApplicationStatus) (bool, error) {
	return t.storage.applicationExistsWithQuerier(ctx, t.querier(), candidateID, offerID, statuses)
}

func (t *sqliteTx) CountApplicationsSince(ctx context.Context, candidateID string, since time.Time) (int, error) {
	return t.storage.countApplicationsSinceWithQuerier(ctx, t.querier(), candidateID, since)
}

func (t *sqliteTx) ListApplicationsByCandidate(ctx context.Context, candidateID string) ([]*types.Application, error) {
	return t.storage.listApplicationsWithQuerier(ctx, t.querier(), "candidate_id", candidateID)
}

func (t *sqliteTx) ListApplicationsByOffer(ctx context.Context, offerID string) ([]*types.Application, error) {
	return t.storage.listApplicationsWithQuerier(ctx, t.querier(), "offer_id", offerID)
}

func (t *sqliteTx) UpdateApplicationStatus(ctx context.Context, id string, status types.ApplicationStatus, at time.Time) error {
	return t.storage.updateApplicationStatusWithQuerier(ctx, t.querier(), id, status, at)
}

func (t *sqliteTx) UpsertCatalogEntry(ctx context.Context, e *CatalogEntry) error {
	return t.storage.upsertCatalogEntryWithQuerier(ctx, t.querier(), e)
}

func (t *sqliteTx) CatalogEntryExists(ctx context.Context, kind types.CatalogKind, id string) (bool, error) {
	return t.storage.catalogEntryExistsWithQuerier(ctx, t.querier(), kind, id)
}

func (t *sqliteTx) ListCatalogEntries(ctx context.Context, kind types.CatalogKind) ([]*CatalogEntry, error) {
	return t.storage.listCatalogEntriesWithQuerier(ctx, t.querier(), kind)
}

func (t *sqliteTx) SearchCandidates(ctx context.Context, vector []float32, sectorID string, limit int) ([]types.ScoredCandidate, error) {
	return searchCandidates(ctx, t.querier(), vector, sectorID, limit)
}

func (t *sqliteTx) SearchOffers(ctx context.Context, vector []float32, sectorID string, limit int) ([]types.ScoredOffer, error) {
	return searchOffers(ctx, t.querier(), vector, sectorID, limit)
}

func (t *sqliteTx) GetStatus(ctx context.Context) (*Status, error) {
	return t.storage.getStatusWithQuerier(ctx, t.querier())
}

func (t *sqliteTx) Close() error {
	// Transactions don't close the underlying connection
	return nil
}

func (t *sqliteTx) BeginTx(ctx context.Context) (Tx, error) {
	// SQLite does not support true nested transactions
	return nil, errors.New("nested transactions not supported")
}

package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Shahin2512/HCP-Module/internal/model"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store is the record store's SQLite database of HCPs and interactions.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) a SQLite database in dataDir and runs pending migrations.
// Pass ":memory:" as dataDir for an in-memory database (used by tests).
func Open(dataDir string) (*Store, error) {
	var dsn string
	if dataDir == ":memory:" {
		dsn = ":memory:"
	} else {
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		dsn = filepath.Join(dataDir, "hcpcrm.db")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	// A single connection keeps ":memory:" databases alive for the life of
	// the Store and sidesteps "database is locked" between handlers. Pragmas
	// are per connection.
	db.SetMaxOpenConns(1)
	for _, pragma := range []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA journal_mode = WAL",
		"PRAGMA foreign_keys = ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate applies every embedded migration not yet recorded in
// schema_version, in filename order.
func (s *Store) migrate() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	applied, err := s.AppliedMigrations()
	if err != nil {
		return fmt.Errorf("listing applied migrations: %w", err)
	}
	done := make(map[int]bool, len(applied))
	for _, v := range applied {
		done[v] = true
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".sql") {
			continue
		}
		version, err := parseMigrationVersion(name)
		if err != nil {
			return err
		}
		if done[version] {
			continue
		}
		if err := s.applyMigration(name, version); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) applyMigration(name string, version int) error {
	content, err := migrationsFS.ReadFile("migrations/" + name)
	if err != nil {
		return fmt.Errorf("reading migration %s: %w", name, err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning migration %d: %w", version, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(string(content)); err != nil {
		return fmt.Errorf("applying migration %d: %w", version, err)
	}
	if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version); err != nil {
		return fmt.Errorf("recording migration %d: %w", version, err)
	}
	return tx.Commit()
}

func parseMigrationVersion(filename string) (int, error) {
	var version int
	if _, err := fmt.Sscanf(filename, "%d_", &version); err != nil {
		return 0, fmt.Errorf("parsing migration version from %q: %w", filename, err)
	}
	return version, nil
}

// AppliedMigrations returns the list of applied migration versions in ascending order.
func (s *Store) AppliedMigrations() ([]int, error) {
	rows, err := s.db.Query("SELECT version FROM schema_version ORDER BY version ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var versions []int
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

// --- HCPs ---

const hcpColumns = `id, name, specialty, contact_info`

func scanHCP(row interface{ Scan(...any) error }) (model.HCP, error) {
	var h model.HCP
	err := row.Scan(&h.ID, &h.Name, &h.Specialty, &h.Contact)
	return h, err
}

// CreateHCP inserts a new HCP. Names are unique; a taken name yields
// ErrDuplicate.
func (s *Store) CreateHCP(ctx context.Context, in model.NewHCP) (model.HCP, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO hcps (name, specialty, contact_info, created_at) VALUES (?, ?, ?, ?)`,
		in.Name, in.Specialty, in.Contact, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.HCP{}, fmt.Errorf("hcp %q: %w", in.Name, ErrDuplicate)
		}
		return model.HCP{}, fmt.Errorf("inserting hcp: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.HCP{}, err
	}
	return model.HCP{ID: int(id), Name: in.Name, Specialty: in.Specialty, Contact: in.Contact}, nil
}

// GetHCP returns the HCP with the given ID, or ErrNotFound.
func (s *Store) GetHCP(ctx context.Context, id int) (model.HCP, error) {
	h, err := scanHCP(s.db.QueryRowContext(ctx, `SELECT `+hcpColumns+` FROM hcps WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.HCP{}, ErrNotFound
	}
	return h, err
}

// GetHCPByName looks an HCP up by its exact name.
func (s *Store) GetHCPByName(ctx context.Context, name string) (model.HCP, error) {
	h, err := scanHCP(s.db.QueryRowContext(ctx, `SELECT `+hcpColumns+` FROM hcps WHERE name = ?`, name))
	if errors.Is(err, sql.ErrNoRows) {
		return model.HCP{}, ErrNotFound
	}
	return h, err
}

// ListHCPs returns HCPs in id order. A limit <= 0 means no limit.
func (s *Store) ListHCPs(ctx context.Context, skip, limit int) ([]model.HCP, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+hcpColumns+` FROM hcps ORDER BY id ASC LIMIT ? OFFSET ?`, sqlLimit(limit), max(skip, 0))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	hcps := []model.HCP{}
	for rows.Next() {
		h, err := scanHCP(rows)
		if err != nil {
			return nil, err
		}
		hcps = append(hcps, h)
	}
	return hcps, rows.Err()
}

// --- Interactions ---

const interactionSelect = `
	SELECT i.id, i.hcp_id, h.name, i.interaction_type, i.interaction_date, i.interaction_time,
		i.attendees, i.topics_discussed, i.materials_shared, i.samples_distributed,
		i.hcp_sentiment, i.outcomes, i.follow_up_actions, i.summary, i.raw_text_input
	FROM interactions i JOIN hcps h ON h.id = i.hcp_id`

func scanInteraction(row interface{ Scan(...any) error }) (model.Interaction, error) {
	var ix model.Interaction
	err := row.Scan(&ix.ID, &ix.HCPID, &ix.HCPName, &ix.Type, &ix.Date, &ix.Time,
		&ix.Attendees, &ix.TopicsDiscussed, &ix.MaterialsShared, &ix.SamplesDistributed,
		&ix.Sentiment, &ix.Outcomes, &ix.FollowUpActions, &ix.Summary, &ix.RawTextInput)
	return ix, err
}

// CreateInteraction stores ix and returns it with its id and HCP name. The
// HCP must exist; otherwise the error wraps ErrNotFound.
func (s *Store) CreateInteraction(ctx context.Context, ix model.Interaction) (model.Interaction, error) {
	if _, err := s.GetHCP(ctx, ix.HCPID); err != nil {
		return model.Interaction{}, fmt.Errorf("hcp %d: %w", ix.HCPID, err)
	}
	if ix.Type == "" {
		ix.Type = model.TypeMeeting
	}
	if ix.Sentiment == "" {
		ix.Sentiment = model.SentimentNeutral
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO interactions (hcp_id, interaction_type, interaction_date, interaction_time, attendees,
			topics_discussed, materials_shared, samples_distributed, hcp_sentiment, outcomes,
			follow_up_actions, summary, raw_text_input, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ix.HCPID, ix.Type, ix.Date, ix.Time, ix.Attendees,
		ix.TopicsDiscussed, ix.MaterialsShared, ix.SamplesDistributed, ix.Sentiment, ix.Outcomes,
		ix.FollowUpActions, ix.Summary, ix.RawTextInput, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return model.Interaction{}, fmt.Errorf("inserting interaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Interaction{}, err
	}
	return s.GetInteraction(ctx, int(id))
}

// GetInteraction returns one interaction with its HCP name, or ErrNotFound.
func (s *Store) GetInteraction(ctx context.Context, id int) (model.Interaction, error) {
	ix, err := scanInteraction(s.db.QueryRowContext(ctx, interactionSelect+` WHERE i.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Interaction{}, ErrNotFound
	}
	return ix, err
}

// ListInteractions returns interactions in id order. A limit <= 0 means no
// limit.
func (s *Store) ListInteractions(ctx context.Context, skip, limit int) ([]model.Interaction, error) {
	rows, err := s.db.QueryContext(ctx,
		interactionSelect+` ORDER BY i.id ASC LIMIT ? OFFSET ?`, sqlLimit(limit), max(skip, 0))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []model.Interaction{}
	for rows.Next() {
		ix, err := scanInteraction(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, ix)
	}
	return results, rows.Err()
}

// MostRecentInteraction returns the HCP's interaction with the latest date,
// breaking ties by insertion order.
func (s *Store) MostRecentInteraction(ctx context.Context, hcpID int) (model.Interaction, error) {
	ix, err := scanInteraction(s.db.QueryRowContext(ctx,
		interactionSelect+` WHERE i.hcp_id = ? ORDER BY i.interaction_date DESC, i.id DESC LIMIT 1`, hcpID))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Interaction{}, ErrNotFound
	}
	return ix, err
}

// UpdateInteraction applies p to the stored interaction and returns the
// result.
func (s *Store) UpdateInteraction(ctx context.Context, id int, p InteractionPatch) (model.Interaction, error) {
	ix, err := s.GetInteraction(ctx, id)
	if err != nil {
		return model.Interaction{}, err
	}
	p.apply(&ix)
	if p.HCPID != nil {
		if _, err := s.GetHCP(ctx, ix.HCPID); err != nil {
			return model.Interaction{}, fmt.Errorf("hcp %d: %w", ix.HCPID, err)
		}
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE interactions SET hcp_id = ?, interaction_type = ?, interaction_date = ?, interaction_time = ?,
			attendees = ?, topics_discussed = ?, materials_shared = ?, samples_distributed = ?,
			hcp_sentiment = ?, outcomes = ?, follow_up_actions = ?, summary = ?, raw_text_input = ?
		WHERE id = ?`,
		ix.HCPID, ix.Type, ix.Date, ix.Time,
		ix.Attendees, ix.TopicsDiscussed, ix.MaterialsShared, ix.SamplesDistributed,
		ix.Sentiment, ix.Outcomes, ix.FollowUpActions, ix.Summary, ix.RawTextInput,
		id,
	)
	if err != nil {
		return model.Interaction{}, fmt.Errorf("updating interaction %d: %w", id, err)
	}
	return s.GetInteraction(ctx, id)
}

// sqlLimit maps "no limit" to SQLite's -1.
func sqlLimit(limit int) int {
	if limit <= 0 {
		return -1
	}
	return limit
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/amishk599/skillpulse/internal/model"
)

// SQLiteStore keeps all service data in a single SQLite database.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and runs
// pending migrations. Pass ":memory:" for an in-memory database.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dbPath != ":memory:" {
		if dir := filepath.Dir(dbPath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("creating data directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	// Single connection avoids "database is locked" errors.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{"PRAGMA busy_timeout = 5000", "PRAGMA journal_mode=WAL"} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	s := &SQLiteStore{db: db, now: time.Now}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version    INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	all, err := migrations("sqlite")
	if err != nil {
		return err
	}
	for _, m := range all {
		var exists int
		if err := s.db.QueryRow("SELECT COUNT(*) FROM schema_version WHERE version = ?", m.version).Scan(&exists); err != nil {
			return fmt.Errorf("checking migration %d: %w", m.version, err)
		}
		if exists > 0 {
			continue
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("beginning transaction for migration %d: %w", m.version, err)
		}
		if _, err := tx.Exec(m.sql); err != nil {
			tx.Rollback()
			return fmt.Errorf("applying migration %s: %w", m.name, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", m.version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %d: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %d: %w", m.version, err)
		}
	}
	return nil
}

// --- Candidates ---

// Candidate loads a candidate and their skills in stored order.
func (s *SQLiteStore) Candidate(ctx context.Context, id int64) (model.Candidate, error) {
	c := model.Candidate{ID: id}
	err := s.db.QueryRowContext(ctx, "SELECT name FROM candidates WHERE id = ?", id).Scan(&c.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Candidate{}, fmt.Errorf("candidate %d: %w", id, model.ErrNotFound)
	}
	if err != nil {
		return model.Candidate{}, fmt.Errorf("loading candidate %d: %w", id, err)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT name, category, proficiency, market_demand FROM candidate_skills WHERE candidate_id = ? ORDER BY position",
		id)
	if err != nil {
		return model.Candidate{}, fmt.Errorf("loading skills for candidate %d: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			sk           model.RawSkill
			prof, demand sql.NullFloat64
		)
		if err := rows.Scan(&sk.Name, &sk.Category, &prof, &demand); err != nil {
			return model.Candidate{}, fmt.Errorf("scanning skill: %w", err)
		}
		sk.Proficiency = nullable(prof)
		sk.MarketDemand = nullable(demand)
		c.Skills = append(c.Skills, sk)
	}
	return c, rows.Err()
}

// SaveCandidate inserts or replaces a candidate and all of their skills.
func (s *SQLiteStore) SaveCandidate(ctx context.Context, c model.Candidate) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO candidates (id, name) VALUES (?, ?) ON CONFLICT(id) DO UPDATE SET name = excluded.name",
		c.ID, c.Name); err != nil {
		return fmt.Errorf("saving candidate %d: %w", c.ID, err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM candidate_skills WHERE candidate_id = ?", c.ID); err != nil {
		return fmt.Errorf("clearing skills for candidate %d: %w", c.ID, err)
	}
	for i, sk := range c.Skills {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO candidate_skills (candidate_id, position, name, category, proficiency, market_demand) VALUES (?, ?, ?, ?, ?, ?)",
			c.ID, i, sk.Name, sk.Category, sk.Proficiency, sk.MarketDemand); err != nil {
			return fmt.Errorf("saving skill %q for candidate %d: %w", sk.Name, c.ID, err)
		}
	}
	return tx.Commit()
}

// --- Market data ---

// MarketData returns the whole market table ordered by skill name.
func (s *SQLiteStore) MarketData(ctx context.Context) ([]model.MarketEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT skill_name, category, demand_score, trend, last_updated, salary_impact FROM skill_market_data ORDER BY skill_key")
	if err != nil {
		return nil, fmt.Errorf("querying market data: %w", err)
	}
	defer rows.Close()

	var out []model.MarketEntry
	for rows.Next() {
		e, err := scanMarket(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// MarketEntry returns the market row for skill (case-insensitive).
func (s *SQLiteStore) MarketEntry(ctx context.Context, skill string) (model.MarketEntry, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT skill_name, category, demand_score, trend, last_updated, salary_impact FROM skill_market_data WHERE skill_key = ?",
		skillKey(skill))
	e, err := scanMarket(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.MarketEntry{}, fmt.Errorf("market entry %q: %w", skill, model.ErrNotFound)
	}
	return e, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMarket(row scanner) (model.MarketEntry, error) {
	var (
		e       model.MarketEntry
		trend   string
		updated int64
		salary  sql.NullFloat64
	)
	if err := row.Scan(&e.Skill, &e.Category, &e.Demand, &trend, &updated, &salary); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return e, err
		}
		return e, fmt.Errorf("scanning market entry: %w", err)
	}
	e.Trend = parseTrend(trend)
	e.LastUpdated = time.Unix(updated, 0).UTC()
	if salary.Valid {
		e.SalaryImpact = &salary.Float64
	}
	return e, nil
}

// UpsertMarket inserts or updates market rows keyed by lowercase skill name.
func (s *SQLiteStore) UpsertMarket(ctx context.Context, entries []model.MarketEntry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, e := range entries {
		updated := e.LastUpdated
		if updated.IsZero() {
			updated = s.now()
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO skill_market_data (skill_key, skill_name, category, demand_score, trend, last_updated, salary_impact)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(skill_key) DO UPDATE SET
				skill_name = excluded.skill_name,
				category = excluded.category,
				demand_score = excluded.demand_score,
				trend = excluded.trend,
				last_updated = excluded.last_updated,
				salary_impact = excluded.salary_impact`,
			skillKey(e.Skill), e.Skill, e.Category, e.Demand, string(e.Trend), updated.Unix(), e.SalaryImpact); err != nil {
			return fmt.Errorf("upserting market entry %q: %w", e.Skill, err)
		}
	}
	return tx.Commit()
}

// --- Trend history ---

// SupportsHistory reports true: the schema always has a history table.
func (s *SQLiteStore) SupportsHistory() bool { return true }

// History returns a skill's monthly demand from since onwards, oldest first.
func (s *SQLiteStore) History(ctx context.Context, skill string, since time.Time) ([]model.HistoryRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT skill_name, month, demand_score FROM skill_trend_history WHERE skill_key = ? AND month >= ? ORDER BY month",
		skillKey(skill), monthKey(since))
	if err != nil {
		return nil, fmt.Errorf("querying history for %q: %w", skill, err)
	}
	defer rows.Close()
	return scanHistory(rows)
}

// HistorySince returns all skills' monthly demand from since onwards,
// grouped by skill and oldest first within a skill.
func (s *SQLiteStore) HistorySince(ctx context.Context, since time.Time) ([]model.HistoryRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT skill_name, month, demand_score FROM skill_trend_history WHERE month >= ? ORDER BY skill_key, month",
		monthKey(since))
	if err != nil {
		return nil, fmt.Errorf("querying history since %s: %w", monthKey(since), err)
	}
	defer rows.Close()
	return scanHistory(rows)
}

func scanHistory(rows *sql.Rows) ([]model.HistoryRecord, error) {
	var out []model.HistoryRecord
	for rows.Next() {
		var (
			r     model.HistoryRecord
			month string
		)
		if err := rows.Scan(&r.Skill, &month, &r.Demand); err != nil {
			return nil, fmt.Errorf("scanning history: %w", err)
		}
		t, err := time.Parse(monthLayout, month)
		if err != nil {
			return nil, fmt.Errorf("parsing history month %q: %w", month, err)
		}
		r.Month = t
		out = append(out, r)
	}
	return out, rows.Err()
}

// RecordHistory inserts or replaces monthly demand values.
func (s *SQLiteStore) RecordHistory(ctx context.Context, records []model.HistoryRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, r := range records {
		if _, err := tx.ExecContext(ctx, `INSERT INTO skill_trend_history (skill_key, skill_name, month, demand_score)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(skill_key, month) DO UPDATE SET demand_score = excluded.demand_score, skill_name = excluded.skill_name`,
			skillKey(r.Skill), r.Skill, monthKey(r.Month), r.Demand); err != nil {
			return fmt.Errorf("recording history for %q: %w", r.Skill, err)
		}
	}
	return tx.Commit()
}

// SnapshotHistory copies the market table into the history under month.
func (s *SQLiteStore) SnapshotHistory(ctx context.Context, month time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `INSERT INTO skill_trend_history (skill_key, skill_name, month, demand_score)
		SELECT skill_key, skill_name, ?, demand_score FROM skill_market_data WHERE true
		ON CONFLICT(skill_key, month) DO UPDATE SET demand_score = excluded.demand_score`,
		monthKey(month))
	if err != nil {
		return 0, fmt.Errorf("snapshotting history for %s: %w", monthKey(month), err)
	}
	return res.RowsAffected()
}

// --- Summary cache ---

// SupportsCache reports true.
func (s *SQLiteStore) SupportsCache() bool { return true }

// Get returns a live cache entry. Expired entries are reported as absent.
func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var (
		payload []byte
		expires int64
	)
	err := s.db.QueryRowContext(ctx, "SELECT payload, expires_at FROM summary_cache WHERE cache_key = ?", key).Scan(&payload, &expires)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading cache entry %s: %w", key, err)
	}
	if expires <= s.now().Unix() {
		return nil, false, nil
	}
	return payload, true, nil
}

// Put stores payload under key until ttl elapses.
func (s *SQLiteStore) Put(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	expires := s.now().Add(ttl).Unix()
	_, err := s.db.ExecContext(ctx, `INSERT INTO summary_cache (cache_key, payload, expires_at) VALUES (?, ?, ?)
		ON CONFLICT(cache_key) DO UPDATE SET payload = excluded.payload, expires_at = excluded.expires_at`,
		key, payload, expires)
	if err != nil {
		return fmt.Errorf("writing cache entry %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM summary_cache WHERE cache_key = ?", key); err != nil {
		return fmt.Errorf("deleting cache entry %s: %w", key, err)
	}
	return nil
}

// PurgeExpired deletes every expired cache entry.
func (s *SQLiteStore) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM summary_cache WHERE expires_at <= ?", s.now().Unix())
	if err != nil {
		return 0, fmt.Errorf("purging expired cache entries: %w", err)
	}
	return res.RowsAffected()
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func nullable(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func parseTrend(s string) model.TrendDirection {
	d, err := model.ParseTrendDirection(s)
	if err != nil {
		return model.TrendStable
	}
	return d
}

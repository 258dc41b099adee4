package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/amishk599/skillpulse/internal/model"
)

// PostgresStore keeps service data in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// NewPostgresStore connects to dsn, verifies the connection and runs
// pending migrations.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}

	s := &PostgresStore{pool: pool, now: time.Now}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS schema_version (
		version    INTEGER PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	all, err := migrations("postgres")
	if err != nil {
		return err
	}
	for _, m := range all {
		var exists int
		if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM schema_version WHERE version = $1", m.version).Scan(&exists); err != nil {
			return fmt.Errorf("checking migration %d: %w", m.version, err)
		}
		if exists > 0 {
			continue
		}

		tx, err := s.pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("beginning transaction for migration %d: %w", m.version, err)
		}
		if _, err := tx.Exec(ctx, m.sql); err != nil {
			tx.Rollback(ctx)
			return fmt.Errorf("applying migration %s: %w", m.name, err)
		}
		if _, err := tx.Exec(ctx, "INSERT INTO schema_version (version) VALUES ($1)", m.version); err != nil {
			tx.Rollback(ctx)
			return fmt.Errorf("recording migration %d: %w", m.version, err)
		}
		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("committing migration %d: %w", m.version, err)
		}
	}
	return nil
}

func (s *PostgresStore) Candidate(ctx context.Context, id int64) (model.Candidate, error) {
	c := model.Candidate{ID: id}
	err := s.pool.QueryRow(ctx, "SELECT name FROM candidates WHERE id = $1", id).Scan(&c.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Candidate{}, fmt.Errorf("candidate %d: %w", id, model.ErrNotFound)
	}
	if err != nil {
		return model.Candidate{}, fmt.Errorf("loading candidate %d: %w", id, err)
	}

	rows, err := s.pool.Query(ctx,
		"SELECT name, category, proficiency, market_demand FROM candidate_skills WHERE candidate_id = $1 ORDER BY position",
		id)
	if err != nil {
		return model.Candidate{}, fmt.Errorf("loading skills for candidate %d: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var sk model.RawSkill
		if err := rows.Scan(&sk.Name, &sk.Category, &sk.Proficiency, &sk.MarketDemand); err != nil {
			return model.Candidate{}, fmt.Errorf("scanning skill: %w", err)
		}
		c.Skills = append(c.Skills, sk)
	}
	return c, rows.Err()
}

func (s *PostgresStore) SaveCandidate(ctx context.Context, c model.Candidate) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		"INSERT INTO candidates (id, name) VALUES ($1, $2) ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name",
		c.ID, c.Name); err != nil {
		return fmt.Errorf("saving candidate %d: %w", c.ID, err)
	}
	if _, err := tx.Exec(ctx, "DELETE FROM candidate_skills WHERE candidate_id = $1", c.ID); err != nil {
		return fmt.Errorf("clearing skills for candidate %d: %w", c.ID, err)
	}

	batch := &pgx.Batch{}
	for i, sk := range c.Skills {
		batch.Queue(
			"INSERT INTO candidate_skills (candidate_id, position, name, category, proficiency, market_demand) VALUES ($1, $2, $3, $4, $5, $6)",
			c.ID, i, sk.Name, sk.Category, sk.Proficiency, sk.MarketDemand)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("saving skills for candidate %d: %w", c.ID, err)
	}
	return tx.Commit(ctx)
}

func (s *PostgresStore) MarketData(ctx context.Context) ([]model.MarketEntry, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT skill_name, category, demand_score, trend, last_updated, salary_impact FROM skill_market_data ORDER BY skill_key")
	if err != nil {
		return nil, fmt.Errorf("querying market data: %w", err)
	}
	defer rows.Close()

	var out []model.MarketEntry
	for rows.Next() {
		e, err := scanPGMarket(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *PostgresStore) MarketEntry(ctx context.Context, skill string) (model.MarketEntry, error) {
	row := s.pool.QueryRow(ctx,
		"SELECT skill_name, category, demand_score, trend, last_updated, salary_impact FROM skill_market_data WHERE skill_key = $1",
		skillKey(skill))
	e, err := scanPGMarket(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.MarketEntry{}, fmt.Errorf("market entry %q: %w", skill, model.ErrNotFound)
	}
	return e, err
}

func scanPGMarket(row pgx.Row) (model.MarketEntry, error) {
	var (
		e     model.MarketEntry
		trend string
	)
	if err := row.Scan(&e.Skill, &e.Category, &e.Demand, &trend, &e.LastUpdated, &e.SalaryImpact); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return e, err
		}
		return e, fmt.Errorf("scanning market entry: %w", err)
	}
	e.Trend = parseTrend(trend)
	e.LastUpdated = e.LastUpdated.UTC()
	return e, nil
}

func (s *PostgresStore) UpsertMarket(ctx context.Context, entries []model.MarketEntry) error {
	batch := &pgx.Batch{}
	for _, e := range entries {
		updated := e.LastUpdated
		if updated.IsZero() {
			updated = s.now()
		}
		batch.Queue(`INSERT INTO skill_market_data (skill_key, skill_name, category, demand_score, trend, last_updated, salary_impact)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (skill_key) DO UPDATE SET
				skill_name = EXCLUDED.skill_name,
				category = EXCLUDED.category,
				demand_score = EXCLUDED.demand_score,
				trend = EXCLUDED.trend,
				last_updated = EXCLUDED.last_updated,
				salary_impact = EXCLUDED.salary_impact`,
			skillKey(e.Skill), e.Skill, e.Category, e.Demand, string(e.Trend), updated, e.SalaryImpact)
	}
	if err := s.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("upserting market data: %w", err)
	}
	return nil
}

func (s *PostgresStore) SupportsHistory() bool { return true }

func (s *PostgresStore) History(ctx context.Context, skill string, since time.Time) ([]model.HistoryRecord, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT skill_name, month, demand_score FROM skill_trend_history WHERE skill_key = $1 AND month >= $2 ORDER BY month",
		skillKey(skill), model.MonthStart(since))
	if err != nil {
		return nil, fmt.Errorf("querying history for %q: %w", skill, err)
	}
	return collectHistory(rows)
}

func (s *PostgresStore) HistorySince(ctx context.Context, since time.Time) ([]model.HistoryRecord, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT skill_name, month, demand_score FROM skill_trend_history WHERE month >= $1 ORDER BY skill_key, month",
		model.MonthStart(since))
	if err != nil {
		return nil, fmt.Errorf("querying history since %s: %w", monthKey(since), err)
	}
	return collectHistory(rows)
}

func collectHistory(rows pgx.Rows) ([]model.HistoryRecord, error) {
	defer rows.Close()
	var out []model.HistoryRecord
	for rows.Next() {
		var r model.HistoryRecord
		if err := rows.Scan(&r.Skill, &r.Month, &r.Demand); err != nil {
			return nil, fmt.Errorf("scanning history: %w", err)
		}
		r.Month = model.MonthStart(r.Month)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *PostgresStore) RecordHistory(ctx context.Context, records []model.HistoryRecord) error {
	batch := &pgx.Batch{}
	for _, r := range records {
		batch.Queue(`INSERT INTO skill_trend_history (skill_key, skill_name, month, demand_score)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (skill_key, month) DO UPDATE SET demand_score = EXCLUDED.demand_score, skill_name = EXCLUDED.skill_name`,
			skillKey(r.Skill), r.Skill, model.MonthStart(r.Month), r.Demand)
	}
	if err := s.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("recording history: %w", err)
	}
	return nil
}

func (s *PostgresStore) SnapshotHistory(ctx context.Context, month time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `INSERT INTO skill_trend_history (skill_key, skill_name, month, demand_score)
		SELECT skill_key, skill_name, $1::date, demand_score FROM skill_market_data
		ON CONFLICT (skill_key, month) DO UPDATE SET demand_score = EXCLUDED.demand_score`,
		model.MonthStart(month))
	if err != nil {
		return 0, fmt.Errorf("snapshotting history for %s: %w", monthKey(month), err)
	}
	return tag.RowsAffected(), nil
}

func (s *PostgresStore) SupportsCache() bool { return true }

func (s *PostgresStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx,
		"SELECT payload FROM summary_cache WHERE cache_key = $1 AND expires_at > $2",
		key, s.now()).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading cache entry %s: %w", key, err)
	}
	return payload, true, nil
}

func (s *PostgresStore) Put(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	_, err := s.pool.Exec(ctx, `INSERT INTO summary_cache (cache_key, payload, expires_at) VALUES ($1, $2, $3)
		ON CONFLICT (cache_key) DO UPDATE SET payload = EXCLUDED.payload, expires_at = EXCLUDED.expires_at`,
		key, payload, s.now().Add(ttl))
	if err != nil {
		return fmt.Errorf("writing cache entry %s: %w", key, err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, key string) error {
	if _, err := s.pool.Exec(ctx, "DELETE FROM summary_cache WHERE cache_key = $1", key); err != nil {
		return fmt.Errorf("deleting cache entry %s: %w", key, err)
	}
	return nil
}

func (s *PostgresStore) PurgeExpired(ctx context.Context) (int64, error) {
	tag, err := s.pool.Exec(ctx, "DELETE FROM summary_cache WHERE expires_at <= $1", s.now())
	if err != nil {
		return 0, fmt.Errorf("purging expired cache entries: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Close closes the connection pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

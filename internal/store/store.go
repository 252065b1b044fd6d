// Package store persists listings produced by standing searches and loads
// the standing searches themselves from PostgreSQL.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"jobmate/aggregator-service/internal/logger"
	"jobmate/aggregator-service/internal/model"
)

// DB is the subset of *pgxpool.Pool the store uses.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

const schema = `
CREATE TABLE IF NOT EXISTS job_listings (
	id             BIGSERIAL PRIMARY KEY,
	jobsite_id     TEXT NOT NULL UNIQUE,
	title          TEXT NOT NULL,
	company        TEXT NOT NULL,
	location       TEXT NOT NULL,
	post_date_time TIMESTAMPTZ,
	link           TEXT NOT NULL,
	search_name    TEXT NOT NULL,
	raw_data       JSONB NOT NULL,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS standing_searches (
	id               BIGSERIAL PRIMARY KEY,
	name             TEXT NOT NULL UNIQUE,
	interval_seconds INTEGER NOT NULL DEFAULT 0,
	daily_start      TIME NOT NULL DEFAULT '00:00',
	daily_end        TIME NOT NULL DEFAULT '00:00',
	request          JSONB NOT NULL,
	is_active        BOOLEAN NOT NULL DEFAULT true
);`

// Store reads and writes the aggregator tables.
type Store struct {
	db  DB
	log *logger.Logger
}

// New returns a Store on db.
func New(db DB, log *logger.Logger) *Store {
	if log == nil {
		log = logger.Nop()
	}
	return &Store{db: db, log: log}
}

// EnsureSchema creates the tables when they do not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Archive inserts every listing whose jobsite id is not stored yet.
// Row errors are logged and skipped; they are returned joined once every
// listing has been tried.
func (s *Store) Archive(ctx context.Context, searchName string, listings []model.JobListing) (inserted, dupes int, err error) {
	var errs []error
	for _, job := range listings {
		raw, mErr := json.Marshal(job)
		if mErr != nil {
			errs = append(errs, fmt.Errorf("marshal %s: %w", job.JobsiteID, mErr))
			continue
		}

		var posted *time.Time
		if t, pErr := time.Parse(time.RFC3339, job.PostDateTime); pErr == nil {
			posted = &t
		}

		// ── Dedup insert (skip if jobsite_id already exists) ──
		tag, xErr := s.db.Exec(ctx,
			`INSERT INTO job_listings
			   (jobsite_id, title, company, location, post_date_time, link, search_name, raw_data)
			 SELECT $1, $2, $3, $4, $5, $6, $7, $8::jsonb
			 WHERE NOT EXISTS (
			   SELECT 1 FROM job_listings WHERE jobsite_id = $1
			 )`,
			job.JobsiteID, job.Title, job.Company, job.Location, posted,
			job.LinkToJobListing, searchName, string(raw),
		)
		if xErr != nil {
			s.log.Warn("archive insert failed", "jobsiteId", job.JobsiteID, "err", xErr)
			errs = append(errs, fmt.Errorf("insert %s: %w", job.JobsiteID, xErr))
			continue
		}

		if tag.RowsAffected() == 0 {
			dupes++
		} else {
			inserted++
		}
	}
	return inserted, dupes, errors.Join(errs...)
}

// LoadActiveSearches fetches every is_active standing search. Rows whose
// request does not decode are skipped with a warning.
func (s *Store) LoadActiveSearches(ctx context.Context) ([]model.StandingSearch, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id::text, name, interval_seconds,
		        EXTRACT(EPOCH FROM daily_start)::bigint,
		        EXTRACT(EPOCH FROM daily_end)::bigint,
		        request
		 FROM standing_searches
		 WHERE is_active = true
		 ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("query standing_searches: %w", err)
	}
	defer rows.Close()

	var searches []model.StandingSearch
	for rows.Next() {
		var (
			ss         model.StandingSearch
			start, end int64
			request    []byte
		)
		if err := rows.Scan(&ss.ID, &ss.Name, &ss.IntervalSeconds, &start, &end, &request); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		if err := json.Unmarshal(request, &ss.Request); err != nil {
			s.log.Warn("standing search request does not decode, skipping", "name", ss.Name, "err", err)
			continue
		}
		ss.DailyStart = time.Duration(start) * time.Second
		ss.DailyEnd = time.Duration(end) * time.Second
		searches = append(searches, ss)
	}

	return searches, rows.Err()
}

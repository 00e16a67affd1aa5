package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"HeadlineScreener/internal/domain"
	"HeadlineScreener/internal/ports"
)

const table = "screened_articles"

// Schema creates the table PostgresRepository writes to.
const Schema = `CREATE TABLE IF NOT EXISTS screened_articles (
    canonical_url      TEXT PRIMARY KEY,
    run_id             TEXT NOT NULL,
    site               TEXT NOT NULL,
    taxonomy           TEXT NOT NULL,
    title              TEXT NOT NULL,
    tier               TEXT NOT NULL,
    discarded          TEXT NOT NULL DEFAULT '',
    scale              TEXT NOT NULL DEFAULT '',
    project_name       TEXT NOT NULL DEFAULT '',
    timeline           TEXT NOT NULL DEFAULT '',
    technology         TEXT NOT NULL DEFAULT '',
    company            TEXT NOT NULL DEFAULT '',
    projects_mentioned TEXT NOT NULL DEFAULT '',
    partners           TEXT NOT NULL DEFAULT '',
    continent          TEXT NOT NULL DEFAULT '',
    country            TEXT NOT NULL DEFAULT '',
    project_status     TEXT NOT NULL DEFAULT '',
    check_results      TEXT NOT NULL DEFAULT '',
    screened_at        TIMESTAMPTZ NOT NULL,
    updated_at         TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

var columns = []string{
	"canonical_url", "run_id", "site", "taxonomy", "title", "tier", "discarded",
	"scale", "project_name", "timeline", "technology",
	"company", "projects_mentioned", "partners", "continent", "country", "project_status",
	"check_results", "screened_at",
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// PostgresRepository persists screened articles into Postgres.
type PostgresRepository struct {
	db *sql.DB
}

var _ ports.ArticleRepository = (*PostgresRepository)(nil)

// NewPostgresRepository wires a sql.DB implementation.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// EnsureSchema creates the table when it is missing.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if r.db == nil {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// AlreadyProcessed returns the subset of canonical URLs that already exist in storage.
func (r *PostgresRepository) AlreadyProcessed(ctx context.Context, urls []string) (map[string]bool, error) {
	if r.db == nil || len(urls) == 0 {
		return map[string]bool{}, nil
	}

	query, args, err := processedQuery(urls)
	if err != nil {
		return nil, fmt.Errorf("build processed query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query processed: %w", err)
	}

	result := make(map[string]bool)
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan url: %w", err)
		}
		result[url] = true
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("rows iteration: %w", rowsErr)
	}

	if closeErr := rows.Close(); closeErr != nil {
		return nil, fmt.Errorf("close rows: %w", closeErr)
	}

	return result, nil
}

// WriteResults upserts one row per screened article of the run.
func (r *PostgresRepository) WriteResults(ctx context.Context, results domain.Results) error {
	if r.db == nil || len(results.All) == 0 {
		return nil
	}

	query, args, err := upsertQuery(results)
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert screened: %w", err)
	}

	return nil
}

func processedQuery(urls []string) (string, []interface{}, error) {
	return psql.Select("canonical_url").
		From(table).
		Where("canonical_url = ANY(?)", pq.StringArray(urls)).
		ToSql()
}

func upsertQuery(results domain.Results) (string, []interface{}, error) {
	details := make(map[string]domain.ExtractedArticle, len(results.Stage1)+len(results.Stage2))
	flags := make(map[string]string, len(results.Stage2))
	for _, e := range results.Stage1 {
		details[e.Article.URL] = e
	}
	for _, v := range results.Stage2 {
		details[v.Article.URL] = v.ExtractedArticle
		flags[v.Article.URL] = v.Validation.Flag
	}

	screenedAt := results.StartedAt
	if screenedAt.IsZero() {
		screenedAt = time.Now().UTC()
	}

	insert := psql.Insert(table).Columns(columns...)
	seen := make(map[string]struct{}, len(results.All))
	for _, row := range results.All {
		url := row.Article.URL
		if _, dup := seen[url]; dup {
			continue
		}
		seen[url] = struct{}{}

		e := details[url]
		insert = insert.Values(
			url, results.RunID, results.Site, results.Taxonomy, row.Article.Title, string(row.Tier), row.Discarded,
			e.Core.Scale, e.Core.ProjectName, e.Core.Timeline, e.Core.Technology,
			e.Additional.Company, e.Additional.ProjectsMentioned, e.Additional.Partners,
			e.Additional.Continent, e.Additional.Country, e.Additional.ProjectStatus,
			flags[url], screenedAt,
		)
	}

	return insert.Suffix(`ON CONFLICT (canonical_url) DO UPDATE
              SET run_id = EXCLUDED.run_id,
                  title = EXCLUDED.title,
                  tier = EXCLUDED.tier,
                  discarded = EXCLUDED.discarded,
                  scale = EXCLUDED.scale,
                  project_name = EXCLUDED.project_name,
                  timeline = EXCLUDED.timeline,
                  technology = EXCLUDED.technology,
                  company = EXCLUDED.company,
                  projects_mentioned = EXCLUDED.projects_mentioned,
                  partners = EXCLUDED.partners,
                  continent = EXCLUDED.continent,
                  country = EXCLUDED.country,
                  project_status = EXCLUDED.project_status,
                  check_results = EXCLUDED.check_results,
                  updated_at = NOW()`).ToSql()
}

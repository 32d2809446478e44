package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/mattn/go-sqlite3"

	"onconews/internal/domain"
	"onconews/internal/ports"
)

// ErrNotFound reports a status update against a URL the store never saw.
var ErrNotFound = errors.New("article not found")

const timeLayout = time.RFC3339

// SQLiteRepository persists collected articles in SQLite. Deduplication
// rides on the UNIQUE constraint over url, so two racing inserts of the
// same URL resolve to exactly one stored record.
type SQLiteRepository struct {
	db *sql.DB
}

var _ ports.ArticleRepository = (*SQLiteRepository)(nil)

// Open connects to the SQLite file at path and ensures the schema exists.
func Open(path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	repo := &SQLiteRepository{db: db}
	if err := repo.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return repo, nil
}

// NewSQLiteRepository wires an existing sql.DB and ensures the schema.
func NewSQLiteRepository(db *sql.DB) (*SQLiteRepository, error) {
	repo := &SQLiteRepository{db: db}
	if err := repo.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return repo, nil
}

func (r *SQLiteRepository) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS news (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		url TEXT UNIQUE NOT NULL,
		title TEXT NOT NULL,
		source_name TEXT,
		author TEXT,
		published_at TEXT,
		description TEXT,
		full_text TEXT,
		keywords_matched TEXT,
		language TEXT,
		fetched_at TEXT NOT NULL,
		scraping_status TEXT NOT NULL DEFAULT 'pending',
		scraping_error TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_news_published_at ON news(published_at DESC);
	CREATE INDEX IF NOT EXISTS idx_news_source_name ON news(source_name);
	CREATE INDEX IF NOT EXISTS idx_news_scraping_status ON news(scraping_status);
	`

	_, err := r.db.Exec(schema)
	return err
}

// Close releases the underlying database handle.
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

// Insert stores a new article in the pending state. It returns false
// without mutation when the URL already exists; the uniqueness check and
// the insert are a single statement, so concurrent inserts of the same
// URL serialize on the constraint.
func (r *SQLiteRepository) Insert(ctx context.Context, article domain.Article) (bool, error) {
	fetchedAt := article.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now().UTC()
	}

	query, args, err := sq.Insert("news").
		Columns("url", "title", "source_name", "author", "published_at",
			"description", "keywords_matched", "language", "fetched_at", "scraping_status").
		Values(article.URL, article.Title, article.SourceName, article.Author,
			formatTime(article.PublishedAt), article.Description, article.KeywordsMatched,
			article.Language, fetchedAt.Format(timeLayout), string(domain.StatusPending)).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return false, nil
		}
		return false, fmt.Errorf("insert article: %w", err)
	}

	return true, nil
}

// MarkCompleted stores the extracted text, moves the article to the
// completed state, and clears any previous scrape error. Unknown URLs
// return ErrNotFound.
func (r *SQLiteRepository) MarkCompleted(ctx context.Context, url, fullText string) error {
	query, args, err := sq.Update("news").
		Set("full_text", fullText).
		Set("scraping_status", string(domain.StatusCompleted)).
		Set("scraping_error", nil).
		Where(sq.Eq{"url": url}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	return r.execOne(ctx, query, args)
}

// MarkFailed records the failure reason and moves the article to the
// failed state; full_text is left untouched. Unknown URLs return
// ErrNotFound.
func (r *SQLiteRepository) MarkFailed(ctx context.Context, url, reason string) error {
	query, args, err := sq.Update("news").
		Set("scraping_status", string(domain.StatusFailed)).
		Set("scraping_error", reason).
		Where(sq.Eq{"url": url}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	return r.execOne(ctx, query, args)
}

func (r *SQLiteRepository) execOne(ctx context.Context, query string, args []any) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update article: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

// PendingArticles returns up to limit articles awaiting a scrape, most
// recently published first. Articles with no publication time sort last.
func (r *SQLiteRepository) PendingArticles(ctx context.Context, limit int) ([]domain.Article, error) {
	query, args, err := sq.Select("url", "title", "source_name", "author", "published_at",
		"description", "keywords_matched", "language", "fetched_at",
		"full_text", "scraping_status", "scraping_error").
		From("news").
		Where(sq.Eq{"scraping_status": string(domain.StatusPending)}).
		OrderBy("published_at IS NULL", "published_at DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query pending: %w", err)
	}
	defer rows.Close()

	var articles []domain.Article
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, article)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return articles, nil
}

// Statistics aggregates lifecycle counts and the ten most frequent sources.
func (r *SQLiteRepository) Statistics(ctx context.Context) (domain.Statistics, error) {
	var stats domain.Statistics

	countQuery, countArgs, err := sq.Select(
		"COUNT(*)",
		"COALESCE(SUM(scraping_status = 'completed'), 0)",
		"COALESCE(SUM(scraping_status = 'pending'), 0)",
		"COALESCE(SUM(scraping_status = 'failed'), 0)").
		From("news").
		ToSql()
	if err != nil {
		return stats, fmt.Errorf("build counts: %w", err)
	}

	err = r.db.QueryRowContext(ctx, countQuery, countArgs...).
		Scan(&stats.Total, &stats.Completed, &stats.Pending, &stats.Failed)
	if err != nil {
		return stats, fmt.Errorf("query counts: %w", err)
	}

	sourceQuery, sourceArgs, err := sq.Select("source_name", "COUNT(*) AS cnt").
		From("news").
		GroupBy("source_name").
		OrderBy("cnt DESC").
		Limit(10).
		ToSql()
	if err != nil {
		return stats, fmt.Errorf("build sources: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, sourceQuery, sourceArgs...)
	if err != nil {
		return stats, fmt.Errorf("query sources: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var entry domain.SourceCount
		if err := rows.Scan(&entry.Source, &entry.Count); err != nil {
			return stats, fmt.Errorf("scan source: %w", err)
		}
		stats.TopSources = append(stats.TopSources, entry)
	}

	if err := rows.Err(); err != nil {
		return stats, fmt.Errorf("rows iteration: %w", err)
	}

	return stats, nil
}

// Exists reports whether a URL is already stored.
func (r *SQLiteRepository) Exists(ctx context.Context, url string) (bool, error) {
	query, args, err := sq.Select("COUNT(*)").
		From("news").
		Where(sq.Eq{"url": url}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build exists: %w", err)
	}

	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return false, fmt.Errorf("query exists: %w", err)
	}

	return count > 0, nil
}

func scanArticle(rows *sql.Rows) (domain.Article, error) {
	var (
		article                 domain.Article
		publishedAt, fetchedAt  sql.NullString
		fullText, scrapingError sql.NullString
		status                  string
	)

	err := rows.Scan(&article.URL, &article.Title, &article.SourceName, &article.Author,
		&publishedAt, &article.Description, &article.KeywordsMatched, &article.Language,
		&fetchedAt, &fullText, &status, &scrapingError)
	if err != nil {
		return article, fmt.Errorf("scan article: %w", err)
	}

	article.ScrapingStatus = domain.ScrapeStatus(status)
	article.PublishedAt = parseTime(publishedAt)
	if t := parseTime(fetchedAt); t != nil {
		article.FetchedAt = *t
	}
	if fullText.Valid {
		article.FullText = &fullText.String
	}
	if scrapingError.Valid {
		article.ScrapingError = &scrapingError.String
	}

	return article, nil
}

func formatTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(timeLayout)
}

func parseTime(value sql.NullString) *time.Time {
	if !value.Valid || value.String == "" {
		return nil
	}
	parsed, err := time.Parse(timeLayout, value.String)
	if err != nil {
		return nil
	}
	return &parsed
}

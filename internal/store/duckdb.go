// Bookgraph - Book Recommendation Catalog and Discovery Engine
// Copyright 2026 Bookgraph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookgraph/bookgraph

package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/goccy/go-json"

	"github.com/bookgraph/bookgraph/internal/logging"
	"github.com/bookgraph/bookgraph/internal/models"
)

// DuckDBOptions configures the DuckDB-backed store.
type DuckDBOptions struct {
	// Path is the database file path.
	Path string

	// MaxMemory is the DuckDB memory limit, e.g. "2GB".
	MaxMemory string

	// Threads is the DuckDB thread count; 0 means runtime.NumCPU().
	Threads int
}

// DuckDB is the production Store backed by an embedded DuckDB database.
// Embedding vectors and genre sets are stored as JSON columns; structured
// recommendation edges live in their own table, one row per (book,
// recommender, source), never comma-joined parallel strings.
type DuckDB struct {
	conn *sql.DB

	// dataVersion increments on every catalog write through this store.
	dataVersion atomic.Int64
}

const schema = `
CREATE TABLE IF NOT EXISTS books (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	author TEXT NOT NULL,
	description TEXT,
	genres TEXT,
	amazon_url TEXT,
	title_embedding TEXT,
	author_embedding TEXT,
	description_embedding TEXT
);

CREATE TABLE IF NOT EXISTS recommenders (
	id TEXT PRIMARY KEY,
	full_name TEXT NOT NULL,
	type TEXT NOT NULL,
	url TEXT,
	description TEXT,
	description_embedding TEXT
);

CREATE TABLE IF NOT EXISTS recommendations (
	id TEXT PRIMARY KEY,
	book_id TEXT NOT NULL,
	recommender_id TEXT NOT NULL,
	source TEXT NOT NULL,
	source_link TEXT
);

CREATE TABLE IF NOT EXISTS pending_contributions (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	type TEXT,
	url TEXT,
	books TEXT NOT NULL,
	status TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL,
	resolved_at TIMESTAMP
);
`

// NewDuckDB opens (creating if necessary) a DuckDB-backed store.
func NewDuckDB(opts DuckDBOptions) (*DuckDB, error) {
	threads := opts.Threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}
	maxMemory := opts.MaxMemory
	if maxMemory == "" {
		maxMemory = "1GB"
	}

	if dir := filepath.Dir(opts.Path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create database directory %s: %w", dir, err)
		}
	}

	connStr := fmt.Sprintf("%s?access_mode=read_write&threads=%d&max_memory=%s",
		opts.Path, threads, maxMemory)

	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db := &DuckDB{conn: conn}
	if err := db.initialize(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	logging.Info().Str("path", opts.Path).Int("threads", threads).Msg("duckdb store ready")
	return db, nil
}

func (db *DuckDB) initialize() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := db.conn.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("initialize schema: %w", err)
	}
	return nil
}

// wrapQueryErr maps low-level query failures onto ErrUnavailable so callers
// see a single "store unreachable" condition.
func wrapQueryErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, ErrUnavailable, err)
}

func marshalVector(v []float32) (sql.NullString, error) {
	if v == nil {
		return sql.NullString{}, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(raw), Valid: true}, nil
}

func unmarshalVector(s sql.NullString) ([]float32, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	var v []float32
	if err := json.Unmarshal([]byte(s.String), &v); err != nil {
		return nil, err
	}
	return v, nil
}

// ListBooks implements Store.
func (db *DuckDB) ListBooks(ctx context.Context) ([]models.Book, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, title, author, COALESCE(description, ''), COALESCE(genres, '[]'),
		       COALESCE(amazon_url, ''), title_embedding, author_embedding, description_embedding
		FROM books
	`)
	if err != nil {
		return nil, wrapQueryErr("list books", err)
	}
	defer rows.Close()

	var books []models.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		books = append(books, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapQueryErr("iterate books", err)
	}
	return books, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBook(r rowScanner) (*models.Book, error) {
	var (
		b                      models.Book
		genres                 string
		titleEmb, authEmb, descEmb sql.NullString
	)
	if err := r.Scan(&b.ID, &b.Title, &b.Author, &b.Description, &genres,
		&b.AmazonURL, &titleEmb, &authEmb, &descEmb); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(genres), &b.Genres); err != nil {
		return nil, fmt.Errorf("decode genres: %w", err)
	}

	var err error
	if b.TitleEmbedding, err = unmarshalVector(titleEmb); err != nil {
		return nil, fmt.Errorf("decode title embedding: %w", err)
	}
	if b.AuthorEmbedding, err = unmarshalVector(authEmb); err != nil {
		return nil, fmt.Errorf("decode author embedding: %w", err)
	}
	if b.DescriptionEmbedding, err = unmarshalVector(descEmb); err != nil {
		return nil, fmt.Errorf("decode description embedding: %w", err)
	}
	return &b, nil
}

// GetBook implements Store.
func (db *DuckDB) GetBook(ctx context.Context, id string) (*models.Book, error) {
	row := db.conn.QueryRowContext(ctx, `
		SELECT id, title, author, COALESCE(description, ''), COALESCE(genres, '[]'),
		       COALESCE(amazon_url, ''), title_embedding, author_embedding, description_embedding
		FROM books WHERE id = ?
	`, id)

	b, err := scanBook(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, wrapQueryErr("get book", err)
	}
	return b, nil
}

// ListRecommenders implements Store.
func (db *DuckDB) ListRecommenders(ctx context.Context) ([]models.Recommender, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, full_name, type, COALESCE(url, ''), COALESCE(description, ''), description_embedding
		FROM recommenders
	`)
	if err != nil {
		return nil, wrapQueryErr("list recommenders", err)
	}
	defer rows.Close()

	var recs []models.Recommender
	for rows.Next() {
		r, err := scanRecommender(rows)
		if err != nil {
			return nil, fmt.Errorf("scan recommender: %w", err)
		}
		recs = append(recs, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapQueryErr("iterate recommenders", err)
	}
	return recs, nil
}

func scanRecommender(r rowScanner) (*models.Recommender, error) {
	var (
		rec     models.Recommender
		typ     string
		descEmb sql.NullString
	)
	if err := r.Scan(&rec.ID, &rec.FullName, &typ, &rec.URL, &rec.Description, &descEmb); err != nil {
		return nil, err
	}
	rec.Type = models.Archetype(typ)

	var err error
	if rec.DescriptionEmbedding, err = unmarshalVector(descEmb); err != nil {
		return nil, fmt.Errorf("decode description embedding: %w", err)
	}
	return &rec, nil
}

// GetRecommender implements Store.
func (db *DuckDB) GetRecommender(ctx context.Context, id string) (*models.Recommender, error) {
	row := db.conn.QueryRowContext(ctx, `
		SELECT id, full_name, type, COALESCE(url, ''), COALESCE(description, ''), description_embedding
		FROM recommenders WHERE id = ?
	`, id)

	rec, err := scanRecommender(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, wrapQueryErr("get recommender", err)
	}
	return rec, nil
}

// ListRecommendations implements Store.
func (db *DuckDB) ListRecommendations(ctx context.Context) ([]models.Recommendation, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, book_id, recommender_id, source, COALESCE(source_link, '')
		FROM recommendations
	`)
	if err != nil {
		return nil, wrapQueryErr("list recommendations", err)
	}
	defer rows.Close()

	var edges []models.Recommendation
	for rows.Next() {
		var e models.Recommendation
		if err := rows.Scan(&e.ID, &e.BookID, &e.RecommenderID, &e.Source, &e.SourceLink); err != nil {
			return nil, fmt.Errorf("scan recommendation: %w", err)
		}
		edges = append(edges, e)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapQueryErr("iterate recommendations", err)
	}
	return edges, nil
}

// ListRecommendationsForBooks implements Store.
func (db *DuckDB) ListRecommendationsForBooks(ctx context.Context, bookIDs []string) (map[string][]models.Recommendation, error) {
	return db.groupedEdges(ctx, "book_id", bookIDs)
}

// ListRecommendationsForRecommenders implements Store.
func (db *DuckDB) ListRecommendationsForRecommenders(ctx context.Context, recommenderIDs []string) (map[string][]models.Recommendation, error) {
	return db.groupedEdges(ctx, "recommender_id", recommenderIDs)
}

func (db *DuckDB) groupedEdges(ctx context.Context, column string, ids []string) (map[string][]models.Recommendation, error) {
	grouped := make(map[string][]models.Recommendation)
	if len(ids) == 0 {
		return grouped, nil
	}

	placeholders := make([]byte, 0, 2*len(ids))
	args := make([]any, 0, len(ids))
	for i, id := range ids {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
		args = append(args, id)
	}

	// column is one of two compile-time constants, never user input.
	query := fmt.Sprintf(`
		SELECT id, book_id, recommender_id, source, COALESCE(source_link, '')
		FROM recommendations WHERE %s IN (%s)
	`, column, placeholders)

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapQueryErr("list grouped recommendations", err)
	}
	defer rows.Close()

	for rows.Next() {
		var e models.Recommendation
		if err := rows.Scan(&e.ID, &e.BookID, &e.RecommenderID, &e.Source, &e.SourceLink); err != nil {
			return nil, fmt.Errorf("scan recommendation: %w", err)
		}
		key := e.BookID
		if column == "recommender_id" {
			key = e.RecommenderID
		}
		grouped[key] = append(grouped[key], e)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapQueryErr("iterate grouped recommendations", err)
	}
	return grouped, nil
}

// SearchBooksByText implements Store.
func (db *DuckDB) SearchBooksByText(ctx context.Context, query string, limit int) ([]models.Book, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, title, author, COALESCE(description, ''), COALESCE(genres, '[]'),
		       COALESCE(amazon_url, ''), title_embedding, author_embedding, description_embedding
		FROM books
		WHERE lower(title) LIKE '%' || lower(?) || '%'
		   OR lower(author) LIKE '%' || lower(?) || '%'
		LIMIT ?
	`, query, query, limit)
	if err != nil {
		return nil, wrapQueryErr("search books", err)
	}
	defer rows.Close()

	var books []models.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		books = append(books, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapQueryErr("iterate books", err)
	}
	return books, nil
}

// SearchRecommendersByText implements Store.
func (db *DuckDB) SearchRecommendersByText(ctx context.Context, query string, limit int) ([]models.Recommender, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, full_name, type, COALESCE(url, ''), COALESCE(description, ''), description_embedding
		FROM recommenders
		WHERE lower(full_name) LIKE '%' || lower(?) || '%'
		LIMIT ?
	`, query, limit)
	if err != nil {
		return nil, wrapQueryErr("search recommenders", err)
	}
	defer rows.Close()

	var recs []models.Recommender
	for rows.Next() {
		r, err := scanRecommender(rows)
		if err != nil {
			return nil, fmt.Errorf("scan recommender: %w", err)
		}
		recs = append(recs, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapQueryErr("iterate recommenders", err)
	}
	return recs, nil
}

// FindBookByTitleAuthor implements Store.
func (db *DuckDB) FindBookByTitleAuthor(ctx context.Context, title, author string) (*models.Book, error) {
	row := db.conn.QueryRowContext(ctx, `
		SELECT id, title, author, COALESCE(description, ''), COALESCE(genres, '[]'),
		       COALESCE(amazon_url, ''), title_embedding, author_embedding, description_embedding
		FROM books
		WHERE lower(title) = lower(?) AND lower(author) = lower(?)
		LIMIT 1
	`, title, author)

	b, err := scanBook(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, wrapQueryErr("find book", err)
	}
	return b, nil
}

// CreateBook implements Store.
func (db *DuckDB) CreateBook(ctx context.Context, book *models.Book) error {
	genres, err := json.Marshal(book.Genres)
	if err != nil {
		return fmt.Errorf("encode genres: %w", err)
	}
	titleEmb, err := marshalVector(book.TitleEmbedding)
	if err != nil {
		return fmt.Errorf("encode title embedding: %w", err)
	}
	authEmb, err := marshalVector(book.AuthorEmbedding)
	if err != nil {
		return fmt.Errorf("encode author embedding: %w", err)
	}
	descEmb, err := marshalVector(book.DescriptionEmbedding)
	if err != nil {
		return fmt.Errorf("encode description embedding: %w", err)
	}

	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO books (id, title, author, description, genres, amazon_url,
			title_embedding, author_embedding, description_embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, book.ID, book.Title, book.Author, book.Description, string(genres),
		book.AmazonURL, titleEmb, authEmb, descEmb)
	if err != nil {
		return wrapQueryErr("create book", err)
	}

	db.dataVersion.Add(1)
	return nil
}

// CreateRecommender implements Store.
func (db *DuckDB) CreateRecommender(ctx context.Context, rec *models.Recommender) error {
	descEmb, err := marshalVector(rec.DescriptionEmbedding)
	if err != nil {
		return fmt.Errorf("encode description embedding: %w", err)
	}

	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO recommenders (id, full_name, type, url, description, description_embedding)
		VALUES (?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.FullName, string(rec.Type), rec.URL, rec.Description, descEmb)
	if err != nil {
		return wrapQueryErr("create recommender", err)
	}

	db.dataVersion.Add(1)
	return nil
}

// CreateRecommendation implements Store.
func (db *DuckDB) CreateRecommendation(ctx context.Context, e *models.Recommendation) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO recommendations (id, book_id, recommender_id, source, source_link)
		VALUES (?, ?, ?, ?, ?)
	`, e.ID, e.BookID, e.RecommenderID, e.Source, e.SourceLink)
	if err != nil {
		return wrapQueryErr("create recommendation", err)
	}

	db.dataVersion.Add(1)
	return nil
}

// CreatePendingContribution implements Store.
func (db *DuckDB) CreatePendingContribution(ctx context.Context, c *models.PendingContribution) error {
	books, err := json.Marshal(c.Books)
	if err != nil {
		return fmt.Errorf("encode contribution books: %w", err)
	}

	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO pending_contributions (id, name, type, url, books, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, c.ID, c.Name, c.Type, c.URL, string(books), string(c.Status), c.CreatedAt)
	if err != nil {
		return wrapQueryErr("create contribution", err)
	}
	return nil
}

// GetPendingContribution implements Store.
func (db *DuckDB) GetPendingContribution(ctx context.Context, id string) (*models.PendingContribution, error) {
	row := db.conn.QueryRowContext(ctx, `
		SELECT id, name, COALESCE(type, ''), COALESCE(url, ''), books, status, created_at, resolved_at
		FROM pending_contributions WHERE id = ?
	`, id)

	c, err := scanContribution(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, wrapQueryErr("get contribution", err)
	}
	return c, nil
}

func scanContribution(r rowScanner) (*models.PendingContribution, error) {
	var (
		c          models.PendingContribution
		books      string
		status     string
		resolvedAt sql.NullTime
	)
	if err := r.Scan(&c.ID, &c.Name, &c.Type, &c.URL, &books, &status, &c.CreatedAt, &resolvedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(books), &c.Books); err != nil {
		return nil, fmt.Errorf("decode contribution books: %w", err)
	}
	c.Status = models.ContributionStatus(status)
	if resolvedAt.Valid {
		c.ResolvedAt = resolvedAt.Time
	}
	return &c, nil
}

// ListPendingContributions implements Store.
func (db *DuckDB) ListPendingContributions(ctx context.Context) ([]models.PendingContribution, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, name, COALESCE(type, ''), COALESCE(url, ''), books, status, created_at, resolved_at
		FROM pending_contributions WHERE status = ?
	`, string(models.ContributionPending))
	if err != nil {
		return nil, wrapQueryErr("list contributions", err)
	}
	defer rows.Close()

	var out []models.PendingContribution
	for rows.Next() {
		c, err := scanContribution(rows)
		if err != nil {
			return nil, fmt.Errorf("scan contribution: %w", err)
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapQueryErr("iterate contributions", err)
	}
	return out, nil
}

// UpdateContributionStatus implements Store.
func (db *DuckDB) UpdateContributionStatus(ctx context.Context, id string, status models.ContributionStatus) error {
	res, err := db.conn.ExecContext(ctx, `
		UPDATE pending_contributions SET status = ?, resolved_at = ? WHERE id = ?
	`, string(status), time.Now().UTC(), id)
	if err != nil {
		return wrapQueryErr("update contribution", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// DataVersion implements Store.
func (db *DuckDB) DataVersion(ctx context.Context) (int64, error) {
	return db.dataVersion.Load(), nil
}

// Close implements Store.
func (db *DuckDB) Close() error {
	return db.conn.Close()
}

var _ Store = (*DuckDB)(nil)

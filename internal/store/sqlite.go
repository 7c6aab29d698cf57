package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	"github.com/john-neg/full-text-search/internal/document"
)

const articlesDDL = `CREATE TABLE IF NOT EXISTS articles (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  article_slug TEXT NOT NULL UNIQUE,
  authors TEXT NOT NULL DEFAULT '[]',
  title TEXT NOT NULL DEFAULT '',
  year TEXT NOT NULL DEFAULT '',
  magazine TEXT NOT NULL DEFAULT '',
  magazine_issue TEXT NOT NULL DEFAULT '',
  magazine_volume TEXT NOT NULL DEFAULT '',
  keywords TEXT NOT NULL DEFAULT '[]',
  abstract TEXT NOT NULL DEFAULT '',
  scopus TEXT NOT NULL DEFAULT '',
  vak TEXT NOT NULL DEFAULT '',
  reference TEXT NOT NULL DEFAULT '',
  body TEXT NOT NULL DEFAULT '',
  language TEXT NOT NULL DEFAULT '',
  parse_status TEXT NOT NULL DEFAULT 'waiting',
  processing_status TEXT NOT NULL DEFAULT 'waiting',
  lemmatization_status TEXT NOT NULL DEFAULT 'waiting',
  lemmas TEXT NOT NULL DEFAULT '{}'
)`

var articleIndexDDL = []string{
	"CREATE INDEX IF NOT EXISTS idx_articles_parse_status ON articles(parse_status)",
	"CREATE INDEX IF NOT EXISTS idx_articles_processing_status ON articles(processing_status)",
	"CREATE INDEX IF NOT EXISTS idx_articles_lemmatization_status ON articles(lemmatization_status)",
}

// allColumns is the select list in scan order.
var allColumns = []string{
	"id", "article_slug", "authors", "title", "year", "magazine",
	"magazine_issue", "magazine_volume", "keywords", "abstract",
	"scopus", "vak", "reference", "body", "language",
	"parse_status", "processing_status", "lemmatization_status", "lemmas",
}

// SQLite is the DocumentStore implementation backed by a local SQLite
// database.
type SQLite struct {
	db *sql.DB
}

// Open opens (creating if necessary) the article collection at path.
func Open(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite doesn't support concurrent writes
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(articlesDDL); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	for _, ddl := range articleIndexDDL {
		if _, err := db.Exec(ddl); err != nil {
			db.Close()
			return nil, fmt.Errorf("creating index: %w", err)
		}
	}

	return &SQLite{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func (f Filter) conditions() sq.Eq {
	cond := sq.Eq{}
	if f.Slug != "" {
		cond["article_slug"] = f.Slug
	}
	if f.ParseStatus != "" {
		cond["parse_status"] = string(f.ParseStatus)
	}
	if f.ProcessStatus != "" {
		cond["processing_status"] = string(f.ProcessStatus)
	}
	if f.LemmaStatus != "" {
		cond["lemmatization_status"] = string(f.LemmaStatus)
	}
	return cond
}

// List returns all documents matching the filter in id order, which is
// also creation order.
func (s *SQLite) List(ctx context.Context, f Filter) ([]*document.ArticleDocument, error) {
	query, args, err := sq.Select(allColumns...).
		From("articles").
		Where(f.conditions()).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	var docs []*document.ArticleDocument
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// Get returns the first document matching the filter.
func (s *SQLite) Get(ctx context.Context, f Filter) (*document.ArticleDocument, error) {
	query, args, err := sq.Select(allColumns...).
		From("articles").
		Where(f.conditions()).
		OrderBy("id").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}

	doc, err := scanDocument(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return doc, err
}

// GetByID returns the document with the given store id.
func (s *SQLite) GetByID(ctx context.Context, id string) (*document.ArticleDocument, error) {
	rowID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid document id %q: %w", id, err)
	}

	query, args, err := sq.Select(allColumns...).
		From("articles").
		Where(sq.Eq{"id": rowID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}

	doc, err := scanDocument(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return doc, err
}

// Create inserts a new document and returns its store id. A duplicate
// slug yields ErrDuplicateSlug.
func (s *SQLite) Create(ctx context.Context, doc *document.ArticleDocument) (string, error) {
	authors, keywords, lemmas, err := encodeJSONFields(doc)
	if err != nil {
		return "", err
	}

	query, args, err := sq.Insert("articles").
		Columns("article_slug", "authors", "title", "year", "magazine",
			"magazine_issue", "magazine_volume", "keywords", "abstract",
			"scopus", "vak", "reference", "body", "language",
			"parse_status", "processing_status", "lemmatization_status", "lemmas").
		Values(doc.ArticleSlug, authors, doc.Title, doc.Year, doc.Magazine,
			doc.MagazineIssue, doc.MagazineVolume, keywords, doc.Abstract,
			doc.Scopus, doc.VAK, doc.Reference, doc.Text, doc.Language,
			string(doc.ParseStatus), string(doc.ProcessStatus),
			string(doc.LemmaStatus), lemmas).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("building insert: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return "", fmt.Errorf("%w: %s", ErrDuplicateSlug, doc.ArticleSlug)
		}
		return "", fmt.Errorf("inserting document: %w", err)
	}

	rowID, err := res.LastInsertId()
	if err != nil {
		return "", fmt.Errorf("reading insert id: %w", err)
	}
	doc.ID = strconv.FormatInt(rowID, 10)
	return doc.ID, nil
}

// Update applies a partial update to the document with the given id.
// Slice and map values are JSON-encoded; status values are stored as
// their string form.
func (s *SQLite) Update(ctx context.Context, id string, fields Fields) error {
	rowID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid document id %q: %w", id, err)
	}

	update := sq.Update("articles").Where(sq.Eq{"id": rowID})
	for col, val := range fields {
		switch v := val.(type) {
		case []string, map[string]string:
			data, err := json.Marshal(v)
			if err != nil {
				return fmt.Errorf("encoding %s: %w", col, err)
			}
			update = update.Set(col, string(data))
		case document.Status:
			update = update.Set(col, string(v))
		default:
			update = update.Set(col, val)
		}
	}

	query, args, err := update.ToSql()
	if err != nil {
		return fmt.Errorf("building update: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("updating document: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the document with the given id. Pipeline stages never
// call this (removed sources are status-marked instead); it exists for
// operator cleanup.
func (s *SQLite) Delete(ctx context.Context, id string) error {
	rowID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid document id %q: %w", id, err)
	}

	res, err := s.db.ExecContext(ctx, "DELETE FROM articles WHERE id = ?", rowID)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the number of documents matching the filter.
func (s *SQLite) Count(ctx context.Context, f Filter) (int, error) {
	query, args, err := sq.Select("COUNT(*)").
		From("articles").
		Where(f.conditions()).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("building query: %w", err)
	}

	var n int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting documents: %w", err)
	}
	return n, nil
}

// stageColumns returns the eligibility filter and the claimed status
// column for a stage.
func stageColumns(stage Stage) (Filter, string) {
	switch stage {
	case StageParse:
		return Filter{ParseStatus: document.StatusWaiting}, "parse_status"
	case StageProcess:
		return Filter{
			ParseStatus:   document.StatusCompleted,
			ProcessStatus: document.StatusWaiting,
		}, "processing_status"
	default:
		return Filter{
			ParseStatus:   document.StatusCompleted,
			ProcessStatus: document.StatusCompleted,
			LemmaStatus:   document.StatusWaiting,
		}, "lemmatization_status"
	}
}

// ClaimNext atomically marks the oldest eligible record in_progress for
// the given stage and returns it. ErrNotFound means no candidates
// remain. The conditional update makes the claim safe even if a second
// worker runs the same stage.
func (s *SQLite) ClaimNext(ctx context.Context, stage Stage) (*document.ArticleDocument, error) {
	eligible, column := stageColumns(stage)

	for {
		doc, err := s.Get(ctx, eligible)
		if err != nil {
			return nil, err
		}

		rowID, err := strconv.ParseInt(doc.ID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid document id %q: %w", doc.ID, err)
		}
		cond := eligible.conditions()
		cond["id"] = rowID
		query, args, err := sq.Update("articles").
			Set(column, string(document.StatusInProgress)).
			Where(cond).
			ToSql()
		if err != nil {
			return nil, fmt.Errorf("building claim: %w", err)
		}

		res, err := s.db.ExecContext(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("claiming document: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			// Lost the claim race; try the next candidate.
			continue
		}

		return s.GetByID(ctx, doc.ID)
	}
}

// rowScanner abstracts *sql.Row and *sql.Rows for scanDocument.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*document.ArticleDocument, error) {
	var (
		doc                      document.ArticleDocument
		rowID                    int64
		authors, keywords, lemmas string
	)
	err := row.Scan(&rowID, &doc.ArticleSlug, &authors, &doc.Title,
		&doc.Year, &doc.Magazine, &doc.MagazineIssue, &doc.MagazineVolume,
		&keywords, &doc.Abstract, &doc.Scopus, &doc.VAK, &doc.Reference,
		&doc.Text, &doc.Language, &doc.ParseStatus, &doc.ProcessStatus,
		&doc.LemmaStatus, &lemmas)
	if err != nil {
		return nil, err
	}

	doc.ID = strconv.FormatInt(rowID, 10)
	if err := json.Unmarshal([]byte(authors), &doc.Authors); err != nil {
		return nil, fmt.Errorf("decoding authors: %w", err)
	}
	if err := json.Unmarshal([]byte(keywords), &doc.Keywords); err != nil {
		return nil, fmt.Errorf("decoding keywords: %w", err)
	}
	if err := json.Unmarshal([]byte(lemmas), &doc.Lemmas); err != nil {
		return nil, fmt.Errorf("decoding lemmas: %w", err)
	}
	return &doc, nil
}

func encodeJSONFields(doc *document.ArticleDocument) (authors, keywords, lemmas string, err error) {
	a, err := json.Marshal(orEmptySlice(doc.Authors))
	if err != nil {
		return "", "", "", fmt.Errorf("encoding authors: %w", err)
	}
	k, err := json.Marshal(orEmptySlice(doc.Keywords))
	if err != nil {
		return "", "", "", fmt.Errorf("encoding keywords: %w", err)
	}
	m := doc.Lemmas
	if m == nil {
		m = map[string]string{}
	}
	l, err := json.Marshal(m)
	if err != nil {
		return "", "", "", fmt.Errorf("encoding lemmas: %w", err)
	}
	return string(a), string(k), string(l), nil
}

func orEmptySlice(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

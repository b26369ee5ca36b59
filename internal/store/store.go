// Package store provides read access to candidate records held in a SQLite
// database. It serves the two relational paths of the search pipeline: a
// batched fetch-by-ID used for hydration and a filtered, paged ID scan used
// when browsing without a query. It also resolves CV links for redirects.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite" // register "sqlite" driver

	"github.com/54b3r/hrai-go/internal/candidate"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("store: not found")

// defaultMaxOpenConns bounds the pool for file-backed databases. Every
// request acquires its own connection from this pool.
const defaultMaxOpenConns = 4

// SQLiteStore reads candidate records from a local SQLite database.
// It is safe for concurrent use.
type SQLiteStore struct {
	// db is the underlying database connection pool.
	db *sql.DB
}

// DefaultDBPath returns the default path for the candidate database.
// It resolves to ~/.hrai/candidates.db, creating the directory if needed.
func DefaultDBPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("store: could not determine home directory: %w", err)
	}
	dir := filepath.Join(home, ".hrai")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("store: could not create %s: %w", dir, err)
	}
	return filepath.Join(dir, "candidates.db"), nil
}

// Open opens (or creates) a SQLiteStore at the given path and ensures the
// schema exists. Use ":memory:" for an in-memory database in tests.
func Open(path string) (*SQLiteStore, error) {
	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	// Each connection to ":memory:" is a separate database, so tests must
	// share a single connection.
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(defaultMaxOpenConns)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// migrate creates the schema if it does not already exist. The site table
// carries one boolean column per entry of the closed site enumeration.
func (s *SQLiteStore) migrate() error {
	var b strings.Builder
	b.WriteString(`
CREATE TABLE IF NOT EXISTS candidates (
    id              INTEGER PRIMARY KEY,
    document_type   TEXT    NOT NULL DEFAULT '',
    document_number INTEGER,
    full_name       TEXT    NOT NULL,
    email           TEXT    NOT NULL DEFAULT '',
    phone           TEXT    NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS candidate_profiles (
    candidate_id       INTEGER PRIMARY KEY REFERENCES candidates(id),
    professional_title TEXT,
    postgraduate_title TEXT,
    availability       TEXT,
    has_experience     TEXT,
    experience_detail  TEXT
);
CREATE TABLE IF NOT EXISTS candidate_documents (
    candidate_id INTEGER PRIMARY KEY REFERENCES candidates(id),
    url          TEXT NOT NULL,
    summary      TEXT
);
CREATE TABLE IF NOT EXISTS candidate_sites (
    candidate_id INTEGER PRIMARY KEY REFERENCES candidates(id)`)
	for _, site := range candidate.Sites() {
		fmt.Fprintf(&b, ",\n    %s INTEGER NOT NULL DEFAULT 0", quoteIdent(string(site)))
	}
	b.WriteString("\n);\n")
	for i, site := range candidate.Sites() {
		fmt.Fprintf(&b, "CREATE INDEX IF NOT EXISTS idx_candidate_sites_%02d ON candidate_sites (%s);\n",
			i, quoteIdent(string(site)))
	}

	if _, err := s.db.Exec(b.String()); err != nil {
		return fmt.Errorf("store: migrate: %w", err)
	}
	return nil
}

// withConn acquires a dedicated connection for the duration of fn and
// releases it on every exit path.
func (s *SQLiteStore) withConn(ctx context.Context, fn func(*sql.Conn) error) error {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("store: acquire connection: %w", err)
	}
	defer conn.Close()
	return fn(conn)
}

// FetchByIDs loads the full records for ids in a single query. The result
// is keyed by candidate ID; IDs with no candidate row are simply absent.
// Callers are responsible for restoring any ordering they need.
func (s *SQLiteStore) FetchByIDs(ctx context.Context, ids []int64) (map[int64]*candidate.Record, error) {
	out := make(map[int64]*candidate.Record, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}
	q := fetchQuery + " WHERE c.id IN (" + strings.Join(placeholders, ",") + ")"

	err := s.withConn(ctx, func(conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx, q, args...)
		if err != nil {
			return fmt.Errorf("store: fetch: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			rec, err := scanRecord(rows)
			if err != nil {
				return fmt.Errorf("store: fetch scan: %w", err)
			}
			out[rec.ID] = rec
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("store: fetch rows: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ScanIDs returns one page of candidate IDs in primary key order. When site
// resolves to an entry of the enumeration only candidates active at that
// site are returned; any other value applies no predicate.
func (s *SQLiteStore) ScanIDs(ctx context.Context, site string, offset, limit int) ([]int64, error) {
	if limit <= 0 {
		return nil, nil
	}
	if offset < 0 {
		return nil, fmt.Errorf("store: scan: negative offset %d", offset)
	}

	q := "SELECT c.id FROM candidates c"
	if canonical, ok := candidate.ParseSite(site); ok {
		q += " JOIN candidate_sites s ON s.candidate_id = c.id WHERE s." + quoteIdent(string(canonical)) + " = 1"
	}
	q += " ORDER BY c.id ASC LIMIT ? OFFSET ?"

	var ids []int64
	err := s.withConn(ctx, func(conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx, q, limit, offset)
		if err != nil {
			return fmt.Errorf("store: scan: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var id int64
			if err := rows.Scan(&id); err != nil {
				return fmt.Errorf("store: scan row: %w", err)
			}
			ids = append(ids, id)
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("store: scan rows: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// DocumentURL returns the CV link registered for a candidate. It returns
// ErrNotFound when the candidate has no link or the link is blank.
func (s *SQLiteStore) DocumentURL(ctx context.Context, id int64) (string, error) {
	const q = `SELECT url FROM candidate_documents WHERE candidate_id = ?`

	var url string
	err := s.withConn(ctx, func(conn *sql.Conn) error {
		return conn.QueryRowContext(ctx, q, id).Scan(&url)
	})
	if errors.Is(err, sql.ErrNoRows) || (err == nil && strings.TrimSpace(url) == "") {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("store: document url: %w", err)
	}
	return url, nil
}

// Ping verifies the database is reachable.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("store: ping: %w", err)
	}
	return nil
}

// Close releases the database connection pool.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("store: close: %w", err)
	}
	return nil
}

// fetchQuery selects a candidate joined with its optional profile, document
// and site rows. Site columns follow candidate.Sites() order.
var fetchQuery = func() string {
	cols := make([]string, 0, len(candidate.Sites()))
	for _, site := range candidate.Sites() {
		cols = append(cols, "s."+quoteIdent(string(site)))
	}
	return `
SELECT c.id, c.full_name, c.email, c.phone,
       p.candidate_id, p.professional_title, p.postgraduate_title,
       p.availability, p.has_experience, p.experience_detail,
       d.candidate_id, d.url, d.summary,
       ` + strings.Join(cols, ", ") + `
FROM   candidates c
LEFT   JOIN candidate_profiles  p ON p.candidate_id = c.id
LEFT   JOIN candidate_documents d ON d.candidate_id = c.id
LEFT   JOIN candidate_sites     s ON s.candidate_id = c.id`
}()

// scanRecord decodes one row produced by fetchQuery.
func scanRecord(rows *sql.Rows) (*candidate.Record, error) {
	var (
		rec        candidate.Record
		profileID  sql.NullInt64
		profile    [5]sql.NullString
		documentID sql.NullInt64
		docURL     sql.NullString
		docSummary sql.NullString
	)
	siteNames := candidate.SiteNames()
	siteFlags := make([]sql.NullBool, len(siteNames))

	dest := []any{
		&rec.ID, &rec.FullName, &rec.Email, &rec.Phone,
		&profileID, &profile[0], &profile[1], &profile[2], &profile[3], &profile[4],
		&documentID, &docURL, &docSummary,
	}
	for i := range siteFlags {
		dest = append(dest, &siteFlags[i])
	}
	if err := rows.Scan(dest...); err != nil {
		return nil, err
	}

	if profileID.Valid {
		rec.Profile = &candidate.AcademicProfile{
			ProfessionalTitle: profile[0].String,
			PostgraduateTitle: profile[1].String,
			Availability:      profile[2].String,
			HasExperience:     profile[3].String,
			ExperienceDetail:  profile[4].String,
		}
	}
	if documentID.Valid {
		rec.Document = &candidate.DocumentLink{URL: docURL.String, Summary: docSummary.String}
	}

	flags := make(map[string]bool, len(siteNames))
	for i, name := range siteNames {
		if siteFlags[i].Valid && siteFlags[i].Bool {
			flags[name] = true
		}
	}
	rec.Sites = candidate.NewSiteSet(flags)

	return &rec, nil
}

// quoteIdent quotes an SQL identifier. Site names contain non-ASCII letters.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

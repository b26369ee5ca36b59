package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/54b3r/hrai-go/internal/candidate"
)

// Insert writes rec and its related rows in one transaction. The search
// pipeline never writes; tests use Insert to seed fixtures.
func (s *SQLiteStore) Insert(ctx context.Context, rec *candidate.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: insert begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const qCandidate = `INSERT INTO candidates (id, full_name, email, phone) VALUES (?, ?, ?, ?)`
	if _, err := tx.ExecContext(ctx, qCandidate, rec.ID, rec.FullName, rec.Email, rec.Phone); err != nil {
		return fmt.Errorf("store: insert candidate %d: %w", rec.ID, err)
	}

	if p := rec.Profile; p != nil {
		const q = `
INSERT INTO candidate_profiles
    (candidate_id, professional_title, postgraduate_title, availability, has_experience, experience_detail)
VALUES (?, ?, ?, ?, ?, ?)`
		if _, err := tx.ExecContext(ctx, q, rec.ID,
			nullable(p.ProfessionalTitle), nullable(p.PostgraduateTitle), nullable(p.Availability),
			nullable(p.HasExperience), nullable(p.ExperienceDetail)); err != nil {
			return fmt.Errorf("store: insert profile %d: %w", rec.ID, err)
		}
	}

	if d := rec.Document; d != nil {
		const q = `INSERT INTO candidate_documents (candidate_id, url, summary) VALUES (?, ?, ?)`
		if _, err := tx.ExecContext(ctx, q, rec.ID, d.URL, nullable(d.Summary)); err != nil {
			return fmt.Errorf("store: insert document %d: %w", rec.ID, err)
		}
	}

	if active := rec.Sites.Active(); len(active) > 0 {
		cols := []string{"candidate_id"}
		marks := []string{"?"}
		args := []any{rec.ID}
		for _, name := range active {
			cols = append(cols, quoteIdent(name))
			marks = append(marks, "?")
			args = append(args, 1)
		}
		q := "INSERT INTO candidate_sites (" + strings.Join(cols, ", ") + ") VALUES (" + strings.Join(marks, ", ") + ")"
		if _, err := tx.ExecContext(ctx, q, args...); err != nil {
			return fmt.Errorf("store: insert sites %d: %w", rec.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: insert commit: %w", err)
	}
	return nil
}

// nullable maps empty strings to SQL NULL.
func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

package library

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/M0chiIron/ProjetL3/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

// Upsert inserts the entry or, when the user already has the key, updates
// status and rating in place. The (user_id, key) unique constraint plus
// ON CONFLICT makes the check-then-act atomic under concurrent calls.
func (r *Repo) Upsert(ctx context.Context, b models.Book) (*models.Book, error) {
	if b.AuthorName == nil {
		b.AuthorName = models.StringList{}
	}
	authors, err := json.Marshal(b.AuthorName)
	if err != nil {
		return nil, fmt.Errorf("marshal authors: %w", err)
	}

	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO books (user_id, key, title, author_name, cover_i, type_library, rating, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(user_id, key) DO UPDATE SET
			type_library = excluded.type_library,
			rating = excluded.rating,
			updated_at = CURRENT_TIMESTAMP
	`, b.UserID, b.Key, b.Title, string(authors), nullableCover(b.CoverID), b.Status, nullableRating(b.Rating))
	if err != nil {
		return nil, fmt.Errorf("upsert book: %w", err)
	}

	return r.GetByKey(ctx, b.UserID, b.Key)
}

// Delete removes the entry only when it belongs to userID. A missing or
// foreign id deletes nothing and is not an error.
func (r *Repo) Delete(ctx context.Context, userID string, bookID int64) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		DELETE FROM books
		WHERE id = ? AND user_id = ?
	`, bookID, userID)
	if err != nil {
		return false, fmt.Errorf("delete book: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// ListByUser returns the user's whole library, most recently touched first.
func (r *Repo) ListByUser(ctx context.Context, userID string) ([]models.Book, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, user_id, key, title, author_name, cover_i, type_library, rating, added_at, updated_at
		FROM books
		WHERE user_id = ?
		ORDER BY updated_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	out := make([]models.Book, 0, 16)
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

// GetByKey looks the entry up by exact catalog key.
func (r *Repo) GetByKey(ctx context.Context, userID, key string) (*models.Book, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, user_id, key, title, author_name, cover_i, type_library, rating, added_at, updated_at
		FROM books
		WHERE user_id = ? AND key = ?
	`, userID, key)

	b, err := scanBook(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return b, nil
}

// Popular groups entries across all users and returns the most added
// catalog items.
func (r *Repo) Popular(ctx context.Context, limit int) ([]models.PopularBook, error) {
	if limit <= 0 || limit > 50 {
		limit = 5
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT key, title, author_name, cover_i, COUNT(*) AS popularity
		FROM books
		GROUP BY key, title, author_name, cover_i
		ORDER BY popularity DESC, title ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("popular books: %w", err)
	}
	defer rows.Close()

	out := make([]models.PopularBook, 0, limit)
	for rows.Next() {
		var (
			p       models.PopularBook
			authors string
			cover   sql.NullInt64
		)
		if err := rows.Scan(&p.Key, &p.Title, &authors, &cover, &p.Count); err != nil {
			return nil, fmt.Errorf("scan popular row: %w", err)
		}
		_ = json.Unmarshal([]byte(authors), &p.AuthorName)
		if cover.Valid {
			p.CoverID = &cover.Int64
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBook(row rowScanner) (*models.Book, error) {
	var (
		b       models.Book
		authors string
		cover   sql.NullInt64
		rating  sql.NullInt64
		added   time.Time
		updated time.Time
	)

	if err := row.Scan(&b.ID, &b.UserID, &b.Key, &b.Title, &authors, &cover, &b.Status, &rating, &added, &updated); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scan book: %w", err)
	}

	_ = json.Unmarshal([]byte(authors), &b.AuthorName)
	if cover.Valid {
		b.CoverID = &cover.Int64
	}
	if rating.Valid {
		b.Rating = int(rating.Int64)
	}
	b.AddedAt = added
	b.UpdatedAt = updated
	return &b, nil
}

func nullableRating(rating int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(rating), Valid: rating != 0}
}

func nullableCover(cover *int64) sql.NullInt64 {
	if cover == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *cover, Valid: true}
}

package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/dailycheer/cheer-notifier/internal/biz/domain"
	"github.com/dailycheer/cheer-notifier/internal/biz/repo"
)

// catalogRepo implements the Catalog repository
type catalogRepo struct {
	db *sql.DB
}

// NewCatalogRepo creates a new Catalog repository
func NewCatalogRepo(db *sql.DB) repo.CatalogRepo {
	return &catalogRepo{db: db}
}

// Count returns the number of stored messages
func (r *catalogRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count messages: %w", err)
	}
	return n, nil
}

// Seed inserts msgs when the table is empty
func (r *catalogRepo) Seed(ctx context.Context, msgs []domain.Message) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var n int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count messages: %w", err)
	}
	if n > 0 {
		return 0, nil
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO messages (id, content, category_time, category_day, category_season, category_special, tags)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, m := range msgs {
		if m.ID == domain.SentinelID {
			continue
		}
		tags, err := json.Marshal(nonNil(m.Tags))
		if err != nil {
			return 0, fmt.Errorf("failed to encode tags of message %d: %w", m.ID, err)
		}
		_, err = stmt.ExecContext(ctx,
			m.ID,
			m.Content,
			orAll(string(m.TimeBucket)),
			orAll(string(m.DayBucket)),
			orAll(string(m.Season)),
			m.SpecialTag,
			string(tags),
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert message %d: %w", m.ID, err)
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit seed: %w", err)
	}
	return inserted, nil
}

// LoadAll returns every message in id order
func (r *catalogRepo) LoadAll(ctx context.Context) ([]domain.Message, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, content, category_time, category_day, category_season, category_special, tags
		FROM messages
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	var msgs []domain.Message
	for rows.Next() {
		var m domain.Message
		var tb, day, season, tags string
		if err := rows.Scan(&m.ID, &m.Content, &tb, &day, &season, &m.SpecialTag, &tags); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		m.TimeBucket = domain.TimeBucket(tb)
		m.DayBucket = domain.DayBucket(day)
		m.Season = domain.SeasonBucket(season)
		if tags != "" {
			// Tags are advisory; a malformed column is ignored
			_ = json.Unmarshal([]byte(tags), &m.Tags)
		}
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read messages: %w", err)
	}
	return msgs, nil
}

func orAll(s string) string {
	if s == "" {
		return "all"
	}
	return s
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

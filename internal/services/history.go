package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"tutor-ai/internal/models"
)

const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
)

// HistoryService keeps an append-only log of answered requests.
type HistoryService struct {
	db *sql.DB
}

func NewHistoryService(db *sql.DB) *HistoryService {
	return &HistoryService{db: db}
}

// Record stores entry, filling in its ID and CreatedAt when unset.
func (s *HistoryService) Record(ctx context.Context, entry *models.HistoryEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO history (id, kind, subject, input, output, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?);
	`, entry.ID, string(entry.Kind), entry.Subject, entry.Input, entry.Output, entry.Duration.Milliseconds(), entry.CreatedAt); err != nil {
		return fmt.Errorf("insert history: %w", err)
	}
	return nil
}

// Recent lists the newest entries first. An empty kind lists every kind.
func (s *HistoryService) Recent(ctx context.Context, kind models.HistoryKind, limit int) ([]models.HistoryEntry, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kind, subject, input, output, duration_ms, created_at
		FROM history
		WHERE (? = '' OR kind = ?)
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?;
	`, string(kind), string(kind), limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var entries []models.HistoryEntry
	for rows.Next() {
		var (
			entry      models.HistoryEntry
			durationMS int64
		)
		if err := rows.Scan(
			&entry.ID,
			&entry.Kind,
			&entry.Subject,
			&entry.Input,
			&entry.Output,
			&durationMS,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		entry.Duration = time.Duration(durationMS) * time.Millisecond
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	return entries, nil
}

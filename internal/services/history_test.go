package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tutor-ai/internal/db"
	"tutor-ai/internal/models"
)

func newHistory(t *testing.T) *HistoryService {
	t.Helper()
	conn, err := db.Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return NewHistoryService(conn)
}

func TestHistoryRecordAndRecent(t *testing.T) {
	h := newHistory(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	entries := []*models.HistoryEntry{
		{Kind: models.HistoryTutor, Subject: "Math", Input: "What is a prime?", Output: "<p>A prime...</p>", Duration: 1500 * time.Millisecond, CreatedAt: base},
		{Kind: models.HistoryQuiz, Subject: "Physics", Input: "3 questions", Output: "### 1. ...", CreatedAt: base.Add(time.Minute)},
		{Kind: models.HistorySearch, Subject: "wikipedia", Input: "Alan Turing", Output: "Turing was...", CreatedAt: base.Add(2 * time.Minute)},
	}
	for _, e := range entries {
		require.NoError(t, h.Record(ctx, e))
		assert.NotEmpty(t, e.ID)
	}

	all, err := h.Recent(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, models.HistorySearch, all[0].Kind)
	assert.Equal(t, models.HistoryTutor, all[2].Kind)
	assert.Equal(t, 1500*time.Millisecond, all[2].Duration)
	assert.True(t, base.Equal(all[2].CreatedAt), "created_at round trips")

	quizzes, err := h.Recent(ctx, models.HistoryQuiz, 10)
	require.NoError(t, err)
	require.Len(t, quizzes, 1)
	assert.Equal(t, "Physics", quizzes[0].Subject)

	limited, err := h.Recent(ctx, "", 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestHistoryRejectsUnknownKind(t *testing.T) {
	h := newHistory(t)
	err := h.Record(context.Background(), &models.HistoryEntry{Kind: "flashcard"})
	assert.Error(t, err)
}

package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"trend-finder/domain/model"
	"trend-finder/infrastructure/logger"

	"github.com/lib/pq"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// EnsureResearchHistorySchema creates the research history table if not exists
func EnsureResearchHistorySchema(db *sql.DB) error {
	ddl := `CREATE TABLE IF NOT EXISTS research_history (
        id BIGSERIAL PRIMARY KEY,
        keywords TEXT[] NOT NULL,
        query JSONB NOT NULL,
        candidate_count INTEGER NOT NULL,
        failure_count INTEGER NOT NULL,
        top_video_id TEXT,
        elapsed_ms BIGINT NOT NULL,
        created_at TIMESTAMPTZ NOT NULL
    )`
	if _, err := db.Exec(ddl); err != nil {
		return fmt.Errorf("create research_history table: %w", err)
	}
	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_research_history_created_at ON research_history(created_at DESC)`); err != nil {
		logger.GetLogger().WithField("error", err).Warn("failed creating idx_research_history_created_at")
	}
	return nil
}

// ResearchHistoryRepository stores research summaries in postgres, the query as JSONB
type ResearchHistoryRepository struct{ db *sql.DB }

func NewResearchHistoryRepository(db *sql.DB) *ResearchHistoryRepository {
	return &ResearchHistoryRepository{db: db}
}

// Save inserts the record and sets its ID
func (r *ResearchHistoryRepository) Save(ctx context.Context, rec *model.ResearchRecord) error {
	if r.db == nil || rec == nil {
		return nil
	}
	raw, err := json.Marshal(rec.Query)
	if err != nil {
		return err
	}
	var top interface{}
	if rec.TopVideoID != "" {
		top = rec.TopVideoID
	}
	q := `INSERT INTO research_history(keywords, query, candidate_count, failure_count, top_video_id, elapsed_ms, created_at)
          VALUES ($1,$2,$3,$4,$5,$6,$7) RETURNING id`
	return r.db.QueryRowContext(ctx, q,
		pq.Array(rec.Keywords), raw, rec.CandidateCount, rec.FailureCount, top, rec.Elapsed.Milliseconds(), rec.CreatedAt.UTC(),
	).Scan(&rec.ID)
}

// Recent returns the newest records first
func (r *ResearchHistoryRepository) Recent(ctx context.Context, limit int) ([]model.ResearchRecord, error) {
	if r.db == nil {
		return []model.ResearchRecord{}, nil
	}
	rows, err := r.db.QueryContext(ctx, `SELECT id, keywords, query, candidate_count, failure_count, top_video_id, elapsed_ms, created_at
        FROM research_history ORDER BY created_at DESC LIMIT $1`, clampHistoryLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.ResearchRecord, 0)
	for rows.Next() {
		var (
			rec       model.ResearchRecord
			raw       []byte
			top       sql.NullString
			elapsedMs int64
		)
		if err := rows.Scan(&rec.ID, pq.Array(&rec.Keywords), &raw, &rec.CandidateCount, &rec.FailureCount, &top, &elapsedMs, &rec.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &rec.Query); err != nil {
			return nil, fmt.Errorf("decode research_history %d: %w", rec.ID, err)
		}
		rec.TopVideoID = top.String
		rec.Elapsed = time.Duration(elapsedMs) * time.Millisecond
		out = append(out, rec)
	}
	return out, rows.Err()
}

func clampHistoryLimit(limit int) int {
	if limit <= 0 {
		return defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		return maxHistoryLimit
	}
	return limit
}

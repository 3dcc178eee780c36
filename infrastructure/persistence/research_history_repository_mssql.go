package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"trend-finder/domain/model"
)

// EnsureResearchHistorySchemaMSSQL creates the research history table on MSSQL if not exists
func EnsureResearchHistorySchemaMSSQL(db *sql.DB) error {
	if db == nil {
		return fmt.Errorf("db is nil")
	}
	ddl := `IF NOT EXISTS (SELECT * FROM sys.objects WHERE object_id = OBJECT_ID(N'dbo.research_history') AND type in (N'U'))
BEGIN
    CREATE TABLE dbo.research_history (
        id BIGINT IDENTITY(1,1) NOT NULL PRIMARY KEY,
        keywords NVARCHAR(MAX) NOT NULL,
        query NVARCHAR(MAX) NOT NULL,
        candidate_count INT NOT NULL,
        failure_count INT NOT NULL,
        top_video_id NVARCHAR(64) NULL,
        elapsed_ms BIGINT NOT NULL,
        created_at DATETIMEOFFSET NOT NULL
    );
END`
	if _, err := db.Exec(ddl); err != nil {
		return fmt.Errorf("create research_history table (mssql): %w", err)
	}
	return nil
}

// ResearchHistoryRepositoryMSSQL implements IResearchHistory on MSSQL.
// Keywords are stored comma separated since SQL Server has no array type.
type ResearchHistoryRepositoryMSSQL struct {
	db *sql.DB
}

func NewResearchHistoryRepositoryMSSQL(db *sql.DB) *ResearchHistoryRepositoryMSSQL {
	return &ResearchHistoryRepositoryMSSQL{db: db}
}

func (r *ResearchHistoryRepositoryMSSQL) Save(ctx context.Context, rec *model.ResearchRecord) error {
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
	q := `INSERT INTO dbo.research_history(keywords, query, candidate_count, failure_count, top_video_id, elapsed_ms, created_at)
OUTPUT INSERTED.id
VALUES (@p1, @p2, @p3, @p4, @p5, @p6, @p7)`
	return r.db.QueryRowContext(ctx, q,
		strings.Join(rec.Keywords, ","), string(raw), rec.CandidateCount, rec.FailureCount, top, rec.Elapsed.Milliseconds(), rec.CreatedAt.UTC(),
	).Scan(&rec.ID)
}

func (r *ResearchHistoryRepositoryMSSQL) Recent(ctx context.Context, limit int) ([]model.ResearchRecord, error) {
	if r.db == nil {
		return []model.ResearchRecord{}, nil
	}
	rows, err := r.db.QueryContext(ctx, `SELECT TOP (@p1) id, keywords, query, candidate_count, failure_count, top_video_id, elapsed_ms, created_at
FROM dbo.research_history ORDER BY created_at DESC`, clampHistoryLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.ResearchRecord, 0)
	for rows.Next() {
		var (
			rec       model.ResearchRecord
			keywords  string
			raw       string
			top       sql.NullString
			elapsedMs int64
		)
		if err := rows.Scan(&rec.ID, &keywords, &raw, &rec.CandidateCount, &rec.FailureCount, &top, &elapsedMs, &rec.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(raw), &rec.Query); err != nil {
			return nil, fmt.Errorf("decode research_history %d: %w", rec.ID, err)
		}
		if keywords != "" {
			rec.Keywords = strings.Split(keywords, ",")
		}
		rec.TopVideoID = top.String
		rec.Elapsed = time.Duration(elapsedMs) * time.Millisecond
		out = append(out, rec)
	}
	return out, rows.Err()
}

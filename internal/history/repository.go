package history

import (
	"context"
	"database/sql"
	"time"
)

// StateRunning marks a row whose pipeline has not reached a terminal state
// yet. Terminal states are the pipeline's own: done, failed, too_large.
const StateRunning = "running"

// Clip is one recorded pipeline run.
type Clip struct {
	ID          string `json:"id"`
	ChatID      int64  `json:"chat_id"`
	URL         string `json:"url"`
	StartTS     string `json:"start_ts"`
	EndTS       string `json:"end_ts"`
	Mode        string `json:"mode"`
	State       string `json:"state"`
	Error       string `json:"error,omitempty"`
	OutputBytes int64  `json:"output_bytes"`
	DurationMs  int64  `json:"duration_ms"`
	CreatedAt   string `json:"created_at"`
	FinishedAt  string `json:"finished_at,omitempty"`
}

type Repository interface {
	RecordStart(ctx context.Context, c *Clip) error
	RecordFinish(ctx context.Context, id, state, errMsg string, outputBytes, durationMs int64) error
	ListRecent(ctx context.Context, limit int) ([]*Clip, error)
	CountByState(ctx context.Context) (map[string]int, error)
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) RecordStart(ctx context.Context, c *Clip) error {
	if c.State == "" {
		c.State = StateRunning
	}
	if c.CreatedAt == "" {
		c.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO clips (id, chat_id, url, start_ts, end_ts, mode, state, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.ChatID, c.URL, c.StartTS, c.EndTS, c.Mode, c.State, c.CreatedAt,
	)
	return err
}

func (r *SQLiteRepository) RecordFinish(ctx context.Context, id, state, errMsg string, outputBytes, durationMs int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE clips SET state = ?, error = ?, output_bytes = ?, duration_ms = ?, finished_at = ?
		 WHERE id = ?`,
		state, errMsg, outputBytes, durationMs, time.Now().UTC().Format(time.RFC3339), id,
	)
	return err
}

func (r *SQLiteRepository) ListRecent(ctx context.Context, limit int) ([]*Clip, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, chat_id, url, start_ts, end_ts, mode, state, error, output_bytes, duration_ms, created_at, finished_at
		 FROM clips ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clips []*Clip
	for rows.Next() {
		c := &Clip{}
		if err := rows.Scan(&c.ID, &c.ChatID, &c.URL, &c.StartTS, &c.EndTS, &c.Mode,
			&c.State, &c.Error, &c.OutputBytes, &c.DurationMs, &c.CreatedAt, &c.FinishedAt); err != nil {
			return nil, err
		}
		clips = append(clips, c)
	}
	return clips, rows.Err()
}

func (r *SQLiteRepository) CountByState(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT state, COUNT(*) FROM clips GROUP BY state`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var state string
		var n int
		if err := rows.Scan(&state, &n); err != nil {
			return nil, err
		}
		counts[state] = n
	}
	return counts, rows.Err()
}

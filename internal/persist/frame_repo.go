package persist

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// FrameSample is one frame's timing as stored in frame_samples.
type FrameSample struct {
	Frame         uint64
	StartedAt     time.Time
	Duration      time.Duration
	PhysicsRounds int
	Stages        map[string]time.Duration
}

type FrameRepo struct {
	db *DB
}

func NewFrameRepo(db *DB) *FrameRepo {
	return &FrameRepo{db: db}
}

// WriteFrames bulk-inserts samples for one engine run.
func (r *FrameRepo) WriteFrames(ctx context.Context, runID uuid.UUID, samples []FrameSample) error {
	if len(samples) == 0 {
		return nil
	}
	rows := make([][]any, 0, len(samples))
	for _, s := range samples {
		stages := make(map[string]int64, len(s.Stages))
		for name, d := range s.Stages {
			stages[name] = d.Microseconds()
		}
		rows = append(rows, []any{
			runID,
			int64(s.Frame),
			s.StartedAt,
			s.Duration.Microseconds(),
			int32(s.PhysicsRounds),
			stages,
		})
	}
	_, err := r.db.Pool.CopyFrom(ctx,
		pgx.Identifier{"frame_samples"},
		[]string{"run_id", "frame", "started_at", "duration_us", "physics_rounds", "stages"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("copy frame samples: %w", err)
	}
	return nil
}

// SlowestFrames returns the n longest frames of a run.
func (r *FrameRepo) SlowestFrames(ctx context.Context, runID uuid.UUID, n int) ([]FrameSample, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT frame, started_at, duration_us, physics_rounds
		   FROM frame_samples
		  WHERE run_id = $1
		  ORDER BY duration_us DESC
		  LIMIT $2`,
		runID, n,
	)
	if err != nil {
		return nil, fmt.Errorf("query slowest frames: %w", err)
	}
	defer rows.Close()

	var out []FrameSample
	for rows.Next() {
		var (
			frame  int64
			s      FrameSample
			durUS  int64
			rounds int32
		)
		if err := rows.Scan(&frame, &s.StartedAt, &durUS, &rounds); err != nil {
			return nil, fmt.Errorf("scan frame sample: %w", err)
		}
		s.Frame = uint64(frame)
		s.Duration = time.Duration(durUS) * time.Microsecond
		s.PhysicsRounds = int(rounds)
		out = append(out, s)
	}
	return out, rows.Err()
}

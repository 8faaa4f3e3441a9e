package postgres

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carevox/callgateway/internal/callgateway/domain"
)

type PgCallLogRepository struct {
	db     *pgxpool.Pool
	logger *slog.Logger
}

func NewPgCallLogRepository(db *pgxpool.Pool, logger *slog.Logger) *PgCallLogRepository {
	return &PgCallLogRepository{db: db, logger: logger}
}

func (r *PgCallLogRepository) Create(ctx context.Context, cl *domain.CallLog) error {
	query := `INSERT INTO call_logs (id, tenant_id, platform_call_id, direction, from_number, to_number, started_at, ended_at, duration_seconds, outcome, summary, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.db.Exec(ctx, query,
		cl.ID, cl.TenantID, cl.PlatformCallID, cl.Direction, cl.FromNumber,
		cl.ToNumber, cl.StartedAt, cl.EndedAt, cl.DurationSeconds,
		cl.Outcome, cl.Summary, cl.CreatedAt,
	)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error creating call log", "error", err, "tenant_id", cl.TenantID, "platform_call_id", cl.PlatformCallID)
		return err
	}
	return nil
}

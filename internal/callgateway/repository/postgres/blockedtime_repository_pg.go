package postgres

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carevox/callgateway/internal/callgateway/domain"
)

type PgBlockedTimeRepository struct {
	db     *pgxpool.Pool
	logger *slog.Logger
}

func NewPgBlockedTimeRepository(db *pgxpool.Pool, logger *slog.Logger) *PgBlockedTimeRepository {
	return &PgBlockedTimeRepository{db: db, logger: logger}
}

// ListForDate returns provider-scoped and tenant-wide windows that
// overlap the calendar day of date.
func (r *PgBlockedTimeRepository) ListForDate(ctx context.Context, tenantID, providerID uuid.UUID, date time.Time) ([]*domain.BlockedTime, error) {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)

	query := `SELECT id, tenant_id, provider_id, start_at, end_at, reason, created_at
	          FROM blocked_times
	          WHERE tenant_id = $1 AND (provider_id = $2 OR provider_id IS NULL)
	            AND start_at < $3 AND end_at > $4
	          ORDER BY start_at ASC`
	rows, err := r.db.Query(ctx, query, tenantID, providerID, dayEnd, dayStart)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error listing blocked times", "error", err, "tenant_id", tenantID, "provider_id", providerID)
		return nil, err
	}
	defer rows.Close()

	var windows []*domain.BlockedTime
	for rows.Next() {
		bt := &domain.BlockedTime{}
		if err := rows.Scan(&bt.ID, &bt.TenantID, &bt.ProviderID, &bt.StartAt, &bt.EndAt, &bt.Reason, &bt.CreatedAt); err != nil {
			r.logger.ErrorContext(ctx, "Error scanning blocked time row", "error", err, "tenant_id", tenantID)
			return nil, err
		}
		windows = append(windows, bt)
	}
	if err := rows.Err(); err != nil {
		r.logger.ErrorContext(ctx, "Error iterating blocked time rows", "error", err, "tenant_id", tenantID)
		return nil, err
	}
	return windows, nil
}

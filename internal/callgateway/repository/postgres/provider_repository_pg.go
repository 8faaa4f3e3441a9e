package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carevox/callgateway/internal/callgateway/domain"
)

type PgProviderRepository struct {
	db     *pgxpool.Pool
	logger *slog.Logger
}

func NewPgProviderRepository(db *pgxpool.Pool, logger *slog.Logger) *PgProviderRepository {
	return &PgProviderRepository{db: db, logger: logger}
}

const providerColumns = `id, tenant_id, name, title, specialty, contact, working_hours, break_times, slot_duration_minutes, buffer_minutes, position, is_active, created_at, updated_at`

func scanProvider(row pgx.Row) (*domain.Provider, error) {
	p := &domain.Provider{}
	var workingHours, breakTimes []byte
	err := row.Scan(
		&p.ID, &p.TenantID, &p.Name, &p.Title, &p.Specialty, &p.Contact,
		&workingHours, &breakTimes, &p.SlotDurationMinutes, &p.BufferMinutes,
		&p.Position, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(workingHours) > 0 {
		if err := json.Unmarshal(workingHours, &p.WorkingHours); err != nil {
			return nil, err
		}
	}
	if len(breakTimes) > 0 {
		if err := json.Unmarshal(breakTimes, &p.BreakTimes); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// GetByID is tenant-scoped on purpose: a provider ID from another
// tenant must behave exactly like a missing provider.
func (r *PgProviderRepository) GetByID(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) (*domain.Provider, error) {
	query := `SELECT ` + providerColumns + ` FROM providers WHERE id = $1 AND tenant_id = $2 AND is_active = TRUE`
	p, err := scanProvider(r.db.QueryRow(ctx, query, id, tenantID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.WarnContext(ctx, "Provider not found for tenant", "provider_id", id, "tenant_id", tenantID)
			return nil, domain.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Error getting provider by ID", "error", err, "provider_id", id, "tenant_id", tenantID)
		return nil, err
	}
	return p, nil
}

func (r *PgProviderRepository) ListByTenantID(ctx context.Context, tenantID uuid.UUID) ([]*domain.Provider, error) {
	query := `SELECT ` + providerColumns + ` FROM providers WHERE tenant_id = $1 AND is_active = TRUE ORDER BY position ASC, created_at ASC`
	rows, err := r.db.Query(ctx, query, tenantID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error listing providers by tenant ID", "error", err, "tenant_id", tenantID)
		return nil, err
	}
	defer rows.Close()

	var providers []*domain.Provider
	for rows.Next() {
		p, err := scanProvider(rows)
		if err != nil {
			r.logger.ErrorContext(ctx, "Error scanning provider row", "error", err, "tenant_id", tenantID)
			return nil, err
		}
		providers = append(providers, p)
	}
	if err := rows.Err(); err != nil {
		r.logger.ErrorContext(ctx, "Error iterating provider rows", "error", err, "tenant_id", tenantID)
		return nil, err
	}
	return providers, nil
}

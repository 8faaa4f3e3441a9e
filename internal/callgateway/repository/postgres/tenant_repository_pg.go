package postgres

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carevox/callgateway/internal/callgateway/domain"
)

type PgTenantRepository struct {
	db     *pgxpool.Pool
	logger *slog.Logger
}

func NewPgTenantRepository(db *pgxpool.Pool, logger *slog.Logger) *PgTenantRepository {
	return &PgTenantRepository{db: db, logger: logger}
}

const tenantColumns = `id, name, phone_number, address, locale, business_hours, greeting, agent_id, is_active, created_at, updated_at`

func scanTenant(row pgx.Row) (*domain.Tenant, error) {
	t := &domain.Tenant{}
	err := row.Scan(
		&t.ID, &t.Name, &t.PhoneNumber, &t.Address, &t.Locale,
		&t.BusinessHours, &t.Greeting, &t.AgentID, &t.IsActive,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *PgTenantRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants WHERE id = $1`
	t, err := scanTenant(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.WarnContext(ctx, "Tenant not found by ID", "tenant_id", id)
			return nil, domain.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Error getting tenant by ID", "error", err, "tenant_id", id)
		return nil, err
	}
	return t, nil
}

func (r *PgTenantRepository) GetByPhoneNumber(ctx context.Context, number string) (*domain.Tenant, error) {
	// Active tenants own their number exclusively (partial unique index),
	// so at most one row matches.
	query := `SELECT ` + tenantColumns + ` FROM tenants WHERE phone_number = $1 AND is_active = TRUE`
	t, err := scanTenant(r.db.QueryRow(ctx, query, number))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.WarnContext(ctx, "Tenant not found by phone number", "phone_number", number)
			return nil, domain.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Error getting tenant by phone number", "error", err, "phone_number", number)
		return nil, err
	}
	return t, nil
}

package postgres

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carevox/callgateway/internal/callgateway/domain"
)

const uniqueViolationCode = "23505"

type PgBookingRepository struct {
	db     *pgxpool.Pool
	logger *slog.Logger
}

func NewPgBookingRepository(db *pgxpool.Pool, logger *slog.Logger) *PgBookingRepository {
	return &PgBookingRepository{db: db, logger: logger}
}

const bookingColumns = `id, tenant_id, provider_id, patient_name, patient_phone, date, start_time, duration_minutes, reason, status, idempotency_key, created_at, updated_at`

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	b := &domain.Booking{}
	err := row.Scan(
		&b.ID, &b.TenantID, &b.ProviderID, &b.PatientName, &b.PatientPhone,
		&b.Date, &b.StartTime, &b.DurationMinutes, &b.Reason, &b.Status,
		&b.IdempotencyKey, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// CreateIdempotent relies on the unique index on idempotency_key. On a
// duplicate insert the previously stored booking is re-read and returned
// together with ErrDuplicateEntry so callers can replay the original result.
func (r *PgBookingRepository) CreateIdempotent(ctx context.Context, b *domain.Booking) (*domain.Booking, error) {
	query := `INSERT INTO bookings (` + bookingColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.db.Exec(ctx, query,
		b.ID, b.TenantID, b.ProviderID, b.PatientName, b.PatientPhone,
		b.Date, b.StartTime, b.DurationMinutes, b.Reason, b.Status,
		b.IdempotencyKey, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			stored, readErr := r.getByIdempotencyKey(ctx, b.IdempotencyKey)
			if readErr != nil {
				r.logger.ErrorContext(ctx, "Duplicate booking detected but stored row could not be read", "error", readErr, "idempotency_key", b.IdempotencyKey)
				return nil, readErr
			}
			r.logger.InfoContext(ctx, "Duplicate booking insert collapsed to stored row", "booking_id", stored.ID, "idempotency_key", b.IdempotencyKey)
			return stored, domain.ErrDuplicateEntry
		}
		r.logger.ErrorContext(ctx, "Error creating booking", "error", err, "tenant_id", b.TenantID)
		return nil, err
	}
	return b, nil
}

func (r *PgBookingRepository) getByIdempotencyKey(ctx context.Context, key string) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE idempotency_key = $1`
	b, err := scanBooking(r.db.QueryRow(ctx, query, key))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

func (r *PgBookingRepository) GetByID(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1 AND tenant_id = $2`
	b, err := scanBooking(r.db.QueryRow(ctx, query, id, tenantID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.WarnContext(ctx, "Booking not found", "booking_id", id, "tenant_id", tenantID)
			return nil, domain.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Error getting booking by ID", "error", err, "booking_id", id, "tenant_id", tenantID)
		return nil, err
	}
	return b, nil
}

func (r *PgBookingRepository) ListScheduled(ctx context.Context, tenantID, providerID uuid.UUID, date time.Time) ([]*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
	          WHERE tenant_id = $1 AND provider_id = $2 AND date = $3 AND status = $4
	          ORDER BY start_time ASC`
	return r.queryBookings(ctx, query, tenantID, providerID, date, domain.BookingStatusScheduled)
}

func (r *PgBookingRepository) ListUpcomingByPatientPhone(ctx context.Context, tenantID uuid.UUID, patientPhone string, from time.Time) ([]*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
	          WHERE tenant_id = $1 AND patient_phone = $2 AND status = $3 AND date >= $4
	          ORDER BY date ASC, start_time ASC`
	return r.queryBookings(ctx, query, tenantID, patientPhone, domain.BookingStatusScheduled, from)
}

func (r *PgBookingRepository) queryBookings(ctx context.Context, query string, args ...any) ([]*domain.Booking, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error querying bookings", "error", err)
		return nil, err
	}
	defer rows.Close()

	var bookings []*domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			r.logger.ErrorContext(ctx, "Error scanning booking row", "error", err)
			return nil, err
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		r.logger.ErrorContext(ctx, "Error iterating booking rows", "error", err)
		return nil, err
	}
	return bookings, nil
}

func (r *PgBookingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, tenantID uuid.UUID, status string) error {
	query := `UPDATE bookings SET status = $1, updated_at = NOW() WHERE id = $2 AND tenant_id = $3`
	tag, err := r.db.Exec(ctx, query, status, id, tenantID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error updating booking status", "error", err, "booking_id", id, "tenant_id", tenantID)
		return err
	}
	if tag.RowsAffected() == 0 {
		r.logger.WarnContext(ctx, "Booking status update matched no row", "booking_id", id, "tenant_id", tenantID)
		return domain.ErrNotFound
	}
	return nil
}

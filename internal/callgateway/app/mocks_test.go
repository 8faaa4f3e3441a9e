package app

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/carevox/callgateway/internal/callgateway/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

type MockTenantDirectory struct {
	mock.Mock
}

func (m *MockTenantDirectory) ResolveByPhoneNumber(ctx context.Context, number string) (*domain.Tenant, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Tenant), args.Error(1)
}

func (m *MockTenantDirectory) ResolveByID(ctx context.Context, id uuid.UUID) (*domain.Tenant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Tenant), args.Error(1)
}

func (m *MockTenantDirectory) ListProviders(ctx context.Context, tenantID uuid.UUID) ([]*domain.Provider, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Provider), args.Error(1)
}

func (m *MockTenantDirectory) ProviderBelongsTo(ctx context.Context, providerID, tenantID uuid.UUID) (*domain.Provider, error) {
	args := m.Called(ctx, providerID, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Provider), args.Error(1)
}

type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) CreateIdempotent(ctx context.Context, b *domain.Booking) (*domain.Booking, error) {
	args := m.Called(ctx, b)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) GetByID(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) (*domain.Booking, error) {
	args := m.Called(ctx, id, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) ListScheduled(ctx context.Context, tenantID, providerID uuid.UUID, date time.Time) ([]*domain.Booking, error) {
	args := m.Called(ctx, tenantID, providerID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) ListUpcomingByPatientPhone(ctx context.Context, tenantID uuid.UUID, patientPhone string, from time.Time) ([]*domain.Booking, error) {
	args := m.Called(ctx, tenantID, patientPhone, from)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, tenantID uuid.UUID, status string) error {
	args := m.Called(ctx, id, tenantID, status)
	return args.Error(0)
}

type MockBlockedTimeRepository struct {
	mock.Mock
}

func (m *MockBlockedTimeRepository) ListForDate(ctx context.Context, tenantID, providerID uuid.UUID, date time.Time) ([]*domain.BlockedTime, error) {
	args := m.Called(ctx, tenantID, providerID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.BlockedTime), args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, subject string, data []byte) error {
	args := m.Called(ctx, subject, data)
	return args.Error(0)
}

type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) PlaceCall(ctx context.Context, req domain.OutboundCallRequest) (*domain.DispatchResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DispatchResult), args.Error(1)
}

type MockCallLogRepository struct {
	mock.Mock
}

func (m *MockCallLogRepository) Create(ctx context.Context, cl *domain.CallLog) error {
	args := m.Called(ctx, cl)
	return args.Error(0)
}

type MockSlotComputer struct {
	mock.Mock
}

func (m *MockSlotComputer) Compute(ctx context.Context, provider *domain.Provider, date time.Time) ([]domain.AvailabilitySlot, error) {
	args := m.Called(ctx, provider, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AvailabilitySlot), args.Error(1)
}

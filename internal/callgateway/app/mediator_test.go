package app

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/carevox/callgateway/internal/callgateway/auth"
	"github.com/carevox/callgateway/internal/callgateway/domain"
)

const mediatorTestSecret = "platform-secret"

type mediatorFixture struct {
	mediator  *ToolCallMediator
	verifier  *auth.SignatureVerifier
	directory *MockTenantDirectory
	bookings  *MockBookingRepository
	slots     *MockSlotComputer
	publisher *MockPublisher
}

func newMediatorFixture(t *testing.T) *mediatorFixture {
	t.Helper()
	f := &mediatorFixture{
		verifier:  auth.NewSignatureVerifier(mediatorTestSecret),
		directory: new(MockTenantDirectory),
		bookings:  new(MockBookingRepository),
		slots:     new(MockSlotComputer),
		publisher: new(MockPublisher),
	}
	f.mediator = NewToolCallMediator(f.verifier, f.directory, f.bookings, f.slots, f.publisher, testLogger())
	f.mediator.now = func() time.Time { return time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC) }
	return f
}

func (f *mediatorFixture) signedBody(t *testing.T, callID string, args map[string]string) ([]byte, string) {
	t.Helper()
	body, err := json.Marshal(map[string]any{"call_id": callID, "args": args})
	require.NoError(t, err)
	return body, f.verifier.Sign(body)
}

func TestHandle_InvalidSignature_NothingDownstreamRuns(t *testing.T) {
	f := newMediatorFixture(t)
	body, _ := f.signedBody(t, "call_1", map[string]string{
		"tenant_id":   uuid.NewString(),
		"provider_id": uuid.NewString(),
		"date":        "2026-09-02",
	})

	_, err := f.mediator.Handle(context.Background(), ToolCheckAvailability, body, "bogus-signature")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	f.directory.AssertNotCalled(t, "ProviderBelongsTo", mock.Anything, mock.Anything, mock.Anything)
	f.bookings.AssertNotCalled(t, "CreateIdempotent", mock.Anything, mock.Anything)
	f.slots.AssertNotCalled(t, "Compute", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandle_MissingRequiredFields(t *testing.T) {
	f := newMediatorFixture(t)
	body, sig := f.signedBody(t, "call_2", map[string]string{"tenant_id": uuid.NewString()})

	_, err := f.mediator.Handle(context.Background(), ToolCheckAvailability, body, sig)
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	f.directory.AssertNotCalled(t, "ProviderBelongsTo", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandle_UnparseableDate(t *testing.T) {
	f := newMediatorFixture(t)
	body, sig := f.signedBody(t, "call_3", map[string]string{
		"tenant_id":   uuid.NewString(),
		"provider_id": uuid.NewString(),
		"date":        "next tuesday",
	})

	_, err := f.mediator.Handle(context.Background(), ToolCheckAvailability, body, sig)
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestHandle_CrossTenantProvider(t *testing.T) {
	f := newMediatorFixture(t)
	tenantA := uuid.New()
	providerOfB := uuid.New()

	body, sig := f.signedBody(t, "call_4", map[string]string{
		"tenant_id":   tenantA.String(),
		"provider_id": providerOfB.String(),
		"date":        "2026-09-02",
	})

	f.directory.On("ProviderBelongsTo", mock.Anything, providerOfB, tenantA).Return(nil, domain.ErrNotFound).Once()

	_, err := f.mediator.Handle(context.Background(), ToolCheckAvailability, body, sig)
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)

	f.slots.AssertNotCalled(t, "Compute", mock.Anything, mock.Anything, mock.Anything)
	f.directory.AssertExpectations(t)
}

func TestHandle_CheckAvailability_SlotsAscending(t *testing.T) {
	f := newMediatorFixture(t)
	tenantID := uuid.New()
	provider := domain.NewProvider(uuid.New(), tenantID, "Smith", "Dr.", "Cardiology", 1)

	body, sig := f.signedBody(t, "call_5", map[string]string{
		"tenant_id":   tenantID.String(),
		"provider_id": provider.ID.String(),
		"date":        "2026-09-02",
	})

	slots := []domain.AvailabilitySlot{
		{Start: "09:00", End: "09:30"},
		{Start: "09:30", End: "10:00"},
		{Start: "14:00", End: "14:30"},
	}
	f.directory.On("ProviderBelongsTo", mock.Anything, provider.ID, tenantID).Return(provider, nil).Once()
	f.slots.On("Compute", mock.Anything, provider, mock.Anything).Return(slots, nil).Once()

	result, err := f.mediator.Handle(context.Background(), ToolCheckAvailability, body, sig)
	require.NoError(t, err)

	assert.Equal(t, slots, result.Slots)
	assert.Contains(t, result.Message, "9:00 AM")
	assert.Contains(t, result.Message, "2:00 PM")
}

func TestHandle_CheckAvailability_NoSlotsIsNotAnError(t *testing.T) {
	f := newMediatorFixture(t)
	tenantID := uuid.New()
	provider := domain.NewProvider(uuid.New(), tenantID, "Smith", "Dr.", "", 1)

	body, sig := f.signedBody(t, "call_6", map[string]string{
		"tenant_id":   tenantID.String(),
		"provider_id": provider.ID.String(),
		"date":        "2026-09-02",
	})

	f.directory.On("ProviderBelongsTo", mock.Anything, provider.ID, tenantID).Return(provider, nil).Once()
	f.slots.On("Compute", mock.Anything, provider, mock.Anything).Return([]domain.AvailabilitySlot{}, nil).Once()

	result, err := f.mediator.Handle(context.Background(), ToolCheckAvailability, body, sig)
	require.NoError(t, err)

	assert.NotNil(t, result.Slots)
	assert.Empty(t, result.Slots)
	assert.NotEmpty(t, result.Message)
}

func TestHandle_CheckAvailability_PastDate(t *testing.T) {
	f := newMediatorFixture(t)
	tenantID := uuid.New()
	provider := domain.NewProvider(uuid.New(), tenantID, "Smith", "Dr.", "", 1)

	body, sig := f.signedBody(t, "call_7", map[string]string{
		"tenant_id":   tenantID.String(),
		"provider_id": provider.ID.String(),
		"date":        "2026-08-01",
	})

	f.directory.On("ProviderBelongsTo", mock.Anything, provider.ID, tenantID).Return(provider, nil).Once()

	result, err := f.mediator.Handle(context.Background(), ToolCheckAvailability, body, sig)
	require.NoError(t, err)
	assert.Empty(t, result.Slots)
	assert.Contains(t, result.Message, "already passed")
	f.slots.AssertNotCalled(t, "Compute", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandle_BookAppointment_Success(t *testing.T) {
	f := newMediatorFixture(t)
	tenantID := uuid.New()
	provider := domain.NewProvider(uuid.New(), tenantID, "Smith", "Dr.", "Cardiology", 1)

	body, sig := f.signedBody(t, "call_8", map[string]string{
		"tenant_id":     tenantID.String(),
		"provider_id":   provider.ID.String(),
		"date":          "2026-09-02",
		"time":          "14:00",
		"patient_name":  "Awa Diallo",
		"patient_phone": "+2290000002222",
	})

	f.directory.On("ProviderBelongsTo", mock.Anything, provider.ID, tenantID).Return(provider, nil).Once()
	f.bookings.On("CreateIdempotent", mock.Anything, mock.MatchedBy(func(b *domain.Booking) bool {
		return b.TenantID == tenantID &&
			b.ProviderID == provider.ID &&
			b.StartTime == "14:00" &&
			b.Status == domain.BookingStatusScheduled &&
			b.IdempotencyKey == "call_8:2026-09-02:14:00"
	})).Return(&domain.Booking{ID: uuid.New(), TenantID: tenantID, ProviderID: provider.ID, StartTime: "14:00", Date: time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC)}, nil).Once()
	f.publisher.On("Publish", mock.Anything, "booking.confirmed", mock.Anything).Return(nil).Once()

	result, err := f.mediator.Handle(context.Background(), ToolBookAppointment, body, sig)
	require.NoError(t, err)
	require.NotNil(t, result.BookingID)
	assert.Contains(t, result.Message, "confirmed")
	f.bookings.AssertExpectations(t)
	f.publisher.AssertExpectations(t)
}

func TestHandle_BookAppointment_DuplicateReturnsOriginal(t *testing.T) {
	f := newMediatorFixture(t)
	tenantID := uuid.New()
	provider := domain.NewProvider(uuid.New(), tenantID, "Smith", "Dr.", "", 1)
	originalID := uuid.New()

	args := map[string]string{
		"tenant_id":     tenantID.String(),
		"provider_id":   provider.ID.String(),
		"date":          "2026-09-02",
		"time":          "14:00",
		"patient_name":  "Awa Diallo",
		"patient_phone": "+2290000002222",
	}
	body, sig := f.signedBody(t, "call_9", args)

	original := &domain.Booking{ID: originalID, TenantID: tenantID, ProviderID: provider.ID, StartTime: "14:00", Date: time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC)}
	f.directory.On("ProviderBelongsTo", mock.Anything, provider.ID, tenantID).Return(provider, nil).Twice()
	f.bookings.On("CreateIdempotent", mock.Anything, mock.Anything).Return(original, nil).Once()
	f.publisher.On("Publish", mock.Anything, "booking.confirmed", mock.Anything).Return(nil).Once()

	first, err := f.mediator.Handle(context.Background(), ToolBookAppointment, body, sig)
	require.NoError(t, err)

	// The platform retries the identical invocation; storage reports the
	// duplicate and the mediator replays the original result.
	f.bookings.On("CreateIdempotent", mock.Anything, mock.Anything).Return(original, fmt.Errorf("insert: %w", domain.ErrDuplicateEntry)).Once()

	second, err := f.mediator.Handle(context.Background(), ToolBookAppointment, body, sig)
	require.NoError(t, err)

	assert.Equal(t, *first.BookingID, *second.BookingID)
	assert.Equal(t, originalID, *second.BookingID)
	// Exactly one confirmation event for one logical booking.
	f.publisher.AssertNumberOfCalls(t, "Publish", 1)
}

func TestHandle_CancelBooking(t *testing.T) {
	f := newMediatorFixture(t)
	tenantID := uuid.New()
	bookingID := uuid.New()

	body, sig := f.signedBody(t, "call_10", map[string]string{
		"tenant_id":  tenantID.String(),
		"booking_id": bookingID.String(),
	})

	booking := &domain.Booking{ID: bookingID, TenantID: tenantID, Status: domain.BookingStatusScheduled, Date: time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC), StartTime: "14:00"}
	f.bookings.On("GetByID", mock.Anything, bookingID, tenantID).Return(booking, nil).Once()
	f.bookings.On("UpdateStatus", mock.Anything, bookingID, tenantID, domain.BookingStatusCancelled).Return(nil).Once()
	f.publisher.On("Publish", mock.Anything, "booking.cancelled", mock.Anything).Return(nil).Once()

	result, err := f.mediator.Handle(context.Background(), ToolCancelBooking, body, sig)
	require.NoError(t, err)
	assert.Contains(t, result.Message, "cancelled")
	f.bookings.AssertExpectations(t)
}

func TestHandle_ListPatientBookings_Empty(t *testing.T) {
	f := newMediatorFixture(t)
	tenantID := uuid.New()

	body, sig := f.signedBody(t, "call_11", map[string]string{
		"tenant_id":     tenantID.String(),
		"patient_phone": "+2290000003333",
	})

	f.bookings.On("ListUpcomingByPatientPhone", mock.Anything, tenantID, "+2290000003333", mock.Anything).
		Return([]*domain.Booking{}, nil).Once()

	result, err := f.mediator.Handle(context.Background(), ToolListPatientBookings, body, sig)
	require.NoError(t, err)
	assert.NotEmpty(t, result.Message)
	assert.Empty(t, result.Slots)
}

func TestHandle_UnknownTool(t *testing.T) {
	f := newMediatorFixture(t)
	// A well-formed envelope with a valid provider reference must not
	// reach the directory when the tool name itself is unrecognized.
	body, sig := f.signedBody(t, "call_12", map[string]string{
		"tenant_id":   uuid.NewString(),
		"provider_id": uuid.NewString(),
		"date":        "2026-09-02",
	})

	_, err := f.mediator.Handle(context.Background(), "provision_rocket", body, sig)
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	f.directory.AssertNotCalled(t, "ProviderBelongsTo", mock.Anything, mock.Anything, mock.Anything)
}

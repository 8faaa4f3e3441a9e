package app

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/carevox/callgateway/internal/callgateway/domain"
)

// AvailabilityService computes open booking windows for a provider on a
// date: the provider's working hours for that weekday, expanded into
// slot-duration windows separated by the provider's buffer, minus
// breaks, blocked times, and already-scheduled bookings. Slots are
// ephemeral and never persisted.
type AvailabilityService struct {
	bookingRepo domain.BookingRepository
	blockedRepo domain.BlockedTimeRepository
	logger      *slog.Logger
}

// NewAvailabilityService creates an AvailabilityService.
func NewAvailabilityService(bookingRepo domain.BookingRepository, blockedRepo domain.BlockedTimeRepository, logger *slog.Logger) *AvailabilityService {
	return &AvailabilityService{
		bookingRepo: bookingRepo,
		blockedRepo: blockedRepo,
		logger:      logger.With("component", "availability"),
	}
}

type minuteWindow struct {
	start int
	end   int
}

func clockToMinutes(clock string) (int, error) {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return 0, fmt.Errorf("invalid clock value %q: %w", clock, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

func minutesToClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// Compute returns the provider's open slots on date, ascending by start
// time. An empty result is a valid outcome, not an error.
func (s *AvailabilityService) Compute(ctx context.Context, provider *domain.Provider, date time.Time) ([]domain.AvailabilitySlot, error) {
	dayName := strings.ToLower(date.Weekday().String())
	schedule, ok := provider.WorkingHours[dayName]
	if !ok || !schedule.Enabled {
		return []domain.AvailabilitySlot{}, nil
	}

	dayStart, err := clockToMinutes(schedule.Start)
	if err != nil {
		return nil, fmt.Errorf("provider %s working hours: %w", provider.ID, err)
	}
	dayEnd, err := clockToMinutes(schedule.End)
	if err != nil {
		return nil, fmt.Errorf("provider %s working hours: %w", provider.ID, err)
	}

	slotDuration := provider.SlotDurationMinutes
	if slotDuration <= 0 {
		slotDuration = 30
	}

	var blocked []minuteWindow
	for _, br := range provider.BreakTimes {
		start, err := clockToMinutes(br.Start)
		if err != nil {
			return nil, fmt.Errorf("provider %s break times: %w", provider.ID, err)
		}
		end, err := clockToMinutes(br.End)
		if err != nil {
			return nil, fmt.Errorf("provider %s break times: %w", provider.ID, err)
		}
		blocked = append(blocked, minuteWindow{start: start, end: end})
	}

	booked, err := s.bookingRepo.ListScheduled(ctx, provider.TenantID, provider.ID, date)
	if err != nil {
		return nil, fmt.Errorf("listing scheduled bookings: %w", err)
	}
	for _, b := range booked {
		start, err := clockToMinutes(b.StartTime)
		if err != nil {
			s.logger.WarnContext(ctx, "Skipping booking with unparseable start time", "booking_id", b.ID, "start_time", b.StartTime)
			continue
		}
		duration := b.DurationMinutes
		if duration <= 0 {
			duration = slotDuration
		}
		blocked = append(blocked, minuteWindow{start: start, end: start + duration})
	}

	blockedTimes, err := s.blockedRepo.ListForDate(ctx, provider.TenantID, provider.ID, date)
	if err != nil {
		return nil, fmt.Errorf("listing blocked times: %w", err)
	}
	dayAnchor := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	nextDay := dayAnchor.Add(24 * time.Hour)
	for _, bt := range blockedTimes {
		// Clamp windows that start before or end after the target day.
		start := 0
		if bt.StartAt.After(dayAnchor) {
			start = bt.StartAt.Hour()*60 + bt.StartAt.Minute()
		}
		end := 24 * 60
		if bt.EndAt.Before(nextDay) {
			end = bt.EndAt.Hour()*60 + bt.EndAt.Minute()
		}
		if end > start {
			blocked = append(blocked, minuteWindow{start: start, end: end})
		}
	}

	buffer := provider.BufferMinutes
	if buffer < 0 {
		buffer = 0
	}

	slots := []domain.AvailabilitySlot{}
	for cursor := dayStart; cursor+slotDuration <= dayEnd; cursor += slotDuration + buffer {
		if overlapsAny(cursor, cursor+slotDuration, blocked) {
			continue
		}
		slots = append(slots, domain.AvailabilitySlot{
			Start: minutesToClock(cursor),
			End:   minutesToClock(cursor + slotDuration),
		})
	}

	sort.Slice(slots, func(i, j int) bool { return slots[i].Start < slots[j].Start })
	return slots, nil
}

func overlapsAny(start, end int, windows []minuteWindow) bool {
	for _, w := range windows {
		if start < w.end && w.start < end {
			return true
		}
	}
	return false
}

package service

import (
	"fmt"
	"time"

	"metro/internal/domain"
)

// DepartureCount is the number of upcoming departures listed.
const DepartureCount = 5

// Headways between trains per direction.
const (
	NorthboundHeadway = 8 * time.Minute
	SouthboundHeadway = 10 * time.Minute
)

const departureLayout = "15:04"

// ScheduleService produces upcoming departure times from the wall clock.
type ScheduleService struct {
	now func() time.Time
}

// NewScheduleService creates a new ScheduleService. A nil clock uses time.Now.
func NewScheduleService(now func() time.Time) *ScheduleService {
	if now == nil {
		now = time.Now
	}
	return &ScheduleService{now: now}
}

// Headway returns the interval between trains in the given direction.
func Headway(direction domain.Direction) (time.Duration, error) {
	switch direction {
	case domain.DirectionNorthbound:
		return NorthboundHeadway, nil
	case domain.DirectionSouthbound:
		return SouthboundHeadway, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidDirection, direction)
	}
}

// Departures returns the next DepartureCount departure times.
func (s *ScheduleService) Departures(direction domain.Direction) ([]time.Time, error) {
	headway, err := Headway(direction)
	if err != nil {
		return nil, err
	}

	now := s.now()
	times := make([]time.Time, DepartureCount)
	for i := range times {
		times[i] = now.Add(time.Duration(i+1) * headway)
	}
	return times, nil
}

// NextTrains returns the next departures formatted as local HH:MM.
func (s *ScheduleService) NextTrains(direction domain.Direction) ([]string, error) {
	times, err := s.Departures(direction)
	if err != nil {
		return nil, err
	}
	return FormatDepartures(times), nil
}

// FormatDepartures formats departure times as local HH:MM.
func FormatDepartures(times []time.Time) []string {
	out := make([]string, len(times))
	for i, t := range times {
		out[i] = t.Local().Format(departureLayout)
	}
	return out
}

package service

import (
	"errors"
	"testing"
	"time"

	"metro/internal/domain"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestSchedule_DeparturesFollowHeadway(t *testing.T) {
	now := time.Date(2025, time.March, 15, 9, 30, 0, 0, time.Local)
	schedule := NewScheduleService(fixedClock(now))

	testCases := []struct {
		direction domain.Direction
		headway   time.Duration
		want      []string
	}{
		{domain.DirectionNorthbound, 8 * time.Minute, []string{"09:38", "09:46", "09:54", "10:02", "10:10"}},
		{domain.DirectionSouthbound, 10 * time.Minute, []string{"09:40", "09:50", "10:00", "10:10", "10:20"}},
	}

	for _, tc := range testCases {
		times, err := schedule.Departures(tc.direction)
		if err != nil {
			t.Fatal(err)
		}
		if len(times) != DepartureCount {
			t.Fatalf("expected %d departures, got %d", DepartureCount, len(times))
		}
		prev := now
		for i, dep := range times {
			if gap := dep.Sub(prev); gap != tc.headway {
				t.Errorf("%s departure %d: gap %v, want %v", tc.direction, i, gap, tc.headway)
			}
			prev = dep
		}

		got, err := schedule.NextTrains(tc.direction)
		if err != nil {
			t.Fatal(err)
		}
		for i := range tc.want {
			if got[i] != tc.want[i] {
				t.Errorf("%s: got %v, want %v", tc.direction, got, tc.want)
				break
			}
		}
	}
}

func TestSchedule_WrapsPastMidnight(t *testing.T) {
	now := time.Date(2025, time.March, 15, 23, 45, 0, 0, time.Local)
	schedule := NewScheduleService(fixedClock(now))

	got, err := schedule.NextTrains(domain.DirectionSouthbound)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"23:55", "00:05", "00:15", "00:25", "00:35"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestSchedule_InvalidDirection(t *testing.T) {
	schedule := NewScheduleService(nil)

	if _, err := schedule.NextTrains("eastbound"); !errors.Is(err, ErrInvalidDirection) {
		t.Errorf("expected ErrInvalidDirection, got %v", err)
	}
	if _, err := Headway(""); !errors.Is(err, ErrInvalidDirection) {
		t.Errorf("expected ErrInvalidDirection, got %v", err)
	}
}

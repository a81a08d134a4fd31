package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"metro/internal/domain"
)

func TestState_HistoryMostRecentFirst(t *testing.T) {
	st := New("s")
	if h := st.History(); h == nil || len(h) != 0 {
		t.Errorf("expected empty non-nil history, got %v", h)
	}

	for _, id := range []string{"T1", "T2", "T3"} {
		st.AddTicket(domain.IssuedTicket{ID: id})
	}

	h := st.History()
	if h[0].ID != "T3" || h[2].ID != "T1" {
		t.Errorf("unexpected order %v", h)
	}
	if latest, ok := st.LatestTicket(); !ok || latest.ID != "T3" {
		t.Errorf("expected latest T3, got %v %v", latest.ID, ok)
	}
	if _, ok := st.Ticket("T2"); !ok {
		t.Error("expected to find T2")
	}
	if !st.HasTicket("T1") || st.HasTicket("T4") {
		t.Error("HasTicket does not match the history")
	}
}

func TestState_ResetKeepsTickets(t *testing.T) {
	st := New("s")
	st.AddTicket(domain.IssuedTicket{ID: "T1"})
	st.Draft = &domain.DraftBooking{ID: "d"}
	st.Payment = domain.PaymentAttempt{Attempted: true, Status: domain.PaymentStatusSuccess}

	st.Reset()

	if st.Draft != nil || st.Payment.Attempted {
		t.Error("expected draft and payment to be cleared")
	}
	if len(st.Tickets) != 1 {
		t.Error("expected tickets to be kept")
	}
}

func TestMemoryStore_IsolatesCopies(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	ctx := context.Background()

	st := New("s1")
	st.Draft = &domain.DraftBooking{ID: "d1", Passengers: []domain.Passenger{{Name: "Asha"}}}
	if err := store.Save(ctx, st); err != nil {
		t.Fatal(err)
	}

	st.Draft.Passengers[0].Name = "Changed"
	st.AddTicket(domain.IssuedTicket{ID: "T1"})

	loaded, err := store.Get(ctx, "s1")
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Draft.Passengers[0].Name != "Asha" {
		t.Error("stored draft changed with the caller's copy")
	}
	if len(loaded.Tickets) != 0 {
		t.Error("stored tickets changed with the caller's copy")
	}
}

func TestMemoryStore_SlidingExpiry(t *testing.T) {
	now := time.Date(2025, time.March, 15, 9, 0, 0, 0, time.UTC)
	store := NewMemoryStore(30 * time.Minute)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	if err := store.Save(ctx, New("s1")); err != nil {
		t.Fatal(err)
	}

	now = now.Add(20 * time.Minute)
	if _, err := store.Get(ctx, "s1"); err != nil {
		t.Fatalf("expected live session, got %v", err)
	}

	// The read above extended the session.
	now = now.Add(20 * time.Minute)
	if _, err := store.Get(ctx, "s1"); err != nil {
		t.Fatalf("expected extended session, got %v", err)
	}

	now = now.Add(31 * time.Minute)
	if _, err := store.Get(ctx, "s1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after idle ttl, got %v", err)
	}
	if store.Len() != 0 {
		t.Errorf("expected no live sessions, got %d", store.Len())
	}
}

func TestMemoryStore_Delete(t *testing.T) {
	store := NewMemoryStore(0)
	ctx := context.Background()

	if err := store.Save(ctx, New("s1")); err != nil {
		t.Fatal(err)
	}
	if err := store.Delete(ctx, "s1"); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Get(ctx, "s1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryLocker(t *testing.T) {
	now := time.Date(2025, time.March, 15, 9, 0, 0, 0, time.UTC)
	locker := NewMemoryLocker()
	locker.now = func() time.Time { return now }
	ctx := context.Background()

	if ok, _ := locker.Acquire(ctx, "s1", time.Minute); !ok {
		t.Fatal("expected first acquire to succeed")
	}
	if ok, _ := locker.Acquire(ctx, "s1", time.Minute); ok {
		t.Error("expected second acquire to fail while held")
	}
	if ok, _ := locker.Acquire(ctx, "s2", time.Minute); !ok {
		t.Error("locks must be per session")
	}

	now = now.Add(2 * time.Minute)
	if ok, _ := locker.Acquire(ctx, "s1", time.Minute); !ok {
		t.Error("expected an expired lock to be taken over")
	}

	if err := locker.Release(ctx, "s1"); err != nil {
		t.Fatal(err)
	}
	if ok, _ := locker.Acquire(ctx, "s1", time.Minute); !ok {
		t.Error("expected acquire after release to succeed")
	}
}

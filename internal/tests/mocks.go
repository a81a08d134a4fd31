package tests

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"metro/internal/domain"
	"metro/internal/qr"
	"metro/internal/service"
	"metro/internal/session"
)

// ──────────────────────────────────────────────
// SCRIPTED GATEWAY
// ──────────────────────────────────────────────

// ScriptedGateway is a payment gateway whose outcomes are queued by the test.
// With nothing queued every charge is approved.
type ScriptedGateway struct {
	mu      sync.Mutex
	script  []error
	next    int
	amounts []int

	// Counters for verification
	ChargeCallCount int32

	// Block, when set, is waited on before a charge completes.
	Block chan struct{}
}

// NewScriptedGateway creates a gateway that approves every charge.
func NewScriptedGateway() *ScriptedGateway {
	return &ScriptedGateway{}
}

// Decline queues a decline with the given reason.
func (g *ScriptedGateway) Decline(reason string) *ScriptedGateway {
	return g.Fail(&service.DeclineError{Reason: reason})
}

// Approve queues an approval.
func (g *ScriptedGateway) Approve() *ScriptedGateway {
	return g.Fail(nil)
}

// Fail queues an arbitrary gateway error.
func (g *ScriptedGateway) Fail(err error) *ScriptedGateway {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.script = append(g.script, err)
	return g
}

func (g *ScriptedGateway) Charge(ctx context.Context, amount int) (string, error) {
	n := atomic.AddInt32(&g.ChargeCallCount, 1)

	if g.Block != nil {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-g.Block:
		}
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.amounts = append(g.amounts, amount)

	if g.next < len(g.script) {
		err := g.script[g.next]
		g.next++
		if err != nil {
			return "", err
		}
	}
	return fmt.Sprintf("PMT%d", 100000+n), nil
}

// Amounts returns every amount charged, in call order.
func (g *ScriptedGateway) Amounts() []int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]int(nil), g.amounts...)
}

// ──────────────────────────────────────────────
// MOCK SESSION STORE
// ──────────────────────────────────────────────

// MockSessionStore wraps an in-memory store with error injection.
type MockSessionStore struct {
	*session.MemoryStore

	// Counters
	SaveCallCount int32

	// Error injection
	GetError  error
	SaveError error
}

// NewMockSessionStore creates a new mock session store.
func NewMockSessionStore() *MockSessionStore {
	return &MockSessionStore{MemoryStore: session.NewMemoryStore(time.Hour)}
}

func (m *MockSessionStore) Get(ctx context.Context, id string) (*session.State, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	return m.MemoryStore.Get(ctx, id)
}

func (m *MockSessionStore) Save(ctx context.Context, state *session.State) error {
	atomic.AddInt32(&m.SaveCallCount, 1)
	if m.SaveError != nil {
		return m.SaveError
	}
	return m.MemoryStore.Save(ctx, state)
}

// ──────────────────────────────────────────────
// MOCK LOCK STORE
// ──────────────────────────────────────────────

// MockLockStore is a mock implementation of session.Locker.
type MockLockStore struct {
	mu    sync.Mutex
	locks map[string]time.Time

	// Counters
	AcquireCallCount int32
	ReleaseCallCount int32

	// Error injection
	AcquireError error

	// Force lock failure
	ForceAcquireFailure bool
}

// NewMockLockStore creates a new mock lock store.
func NewMockLockStore() *MockLockStore {
	return &MockLockStore{
		locks: make(map[string]time.Time),
	}
}

func (m *MockLockStore) Acquire(ctx context.Context, id string, ttl time.Duration) (bool, error) {
	atomic.AddInt32(&m.AcquireCallCount, 1)
	if m.AcquireError != nil {
		return false, m.AcquireError
	}
	if m.ForceAcquireFailure {
		return false, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if expiry, exists := m.locks[id]; exists && time.Now().Before(expiry) {
		return false, nil // Lock still held.
	}
	m.locks[id] = time.Now().Add(ttl)
	return true, nil
}

func (m *MockLockStore) Release(ctx context.Context, id string) error {
	atomic.AddInt32(&m.ReleaseCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, id)
	return nil
}

// IsLocked checks if a session is locked (for test assertions).
func (m *MockLockStore) IsLocked(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	expiry, exists := m.locks[id]
	return exists && time.Now().Before(expiry)
}

// ──────────────────────────────────────────────
// FIXTURES
// ──────────────────────────────────────────────

// FixedNow is the clock used by test services: 15 Mar 2025, 09:30 UTC.
func FixedNow() time.Time {
	return time.Date(2025, time.March, 15, 9, 30, 0, 0, time.UTC)
}

// NewBookingService wires a BookingService on the default network with the
// given gateway, session store and locker, a real QR encoder and a fixed clock.
func NewBookingService(gateway service.Gateway, sessions session.Store, locker session.Locker) *service.BookingService {
	return service.NewBookingService(service.BookingDeps{
		Network:       service.DefaultNetwork(),
		Schedule:      service.NewScheduleService(FixedNow),
		Payments:      service.NewPaymentService(gateway, FixedNow),
		Issuer:        service.NewTicketIssuer(qr.NewEncoder(), FixedNow, nil),
		Notifications: service.NewNotificationService(),
		Sessions:      sessions,
		Locker:        locker,
		Now:           FixedNow,
	})
}

// ValidCard is a card that passes format checks against FixedNow.
func ValidCard() domain.Card {
	return domain.Card{
		Name:        "A Kumar",
		Number:      "4111 1111 1111 1111",
		Brand:       "Visa",
		ExpiryMonth: 12,
		ExpiryYear:  2030,
		CVV:         "123",
	}
}

// Passengers returns n valid passengers.
func Passengers(n int) []domain.Passenger {
	out := make([]domain.Passenger, n)
	for i := range out {
		out[i] = domain.Passenger{
			Name:  fmt.Sprintf("Passenger %d", i+1),
			Phone: fmt.Sprintf("98765432%02d", i),
		}
	}
	return out
}

// ──────────────────────────────────────────────
// HELPER ERRORS
// ──────────────────────────────────────────────

var (
	ErrMockStoreDown = errors.New("mock: session store unavailable")
	ErrMockTimeout   = errors.New("mock: operation timeout")
)

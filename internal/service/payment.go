package service

import (
	"context"
	"fmt"
	"log"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"metro/internal/domain"
)

// Gateway is the payment gateway capability. Charge returns a payment id on
// success or an error; declines are returned as *DeclineError.
type Gateway interface {
	Charge(ctx context.Context, amount int) (string, error)
}

// DeclineReasons are the canned reasons a simulated charge can fail with.
var DeclineReasons = []string{
	"Insufficient funds",
	"Bank declined transaction",
	"Network error",
	"Card limit exceeded",
}

// Simulated gateway defaults.
const (
	DefaultSuccessRate  = 0.85
	DefaultGatewayDelay = 2 * time.Second
)

// SimulatedGateway approves a fixed share of charges after an artificial delay.
// It is safe for concurrent use.
type SimulatedGateway struct {
	mu          sync.Mutex
	rng         *rand.Rand
	delay       time.Duration
	successRate float64
}

// SimulatedGatewayConfig configures a SimulatedGateway.
type SimulatedGatewayConfig struct {
	Delay       time.Duration
	SuccessRate float64    // 0 means DefaultSuccessRate
	Rand        *rand.Rand // nil means a randomly seeded source
}

// NewSimulatedGateway creates a new SimulatedGateway.
func NewSimulatedGateway(cfg SimulatedGatewayConfig) *SimulatedGateway {
	rng := cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	rate := cfg.SuccessRate
	if rate <= 0 || rate > 1 {
		rate = DefaultSuccessRate
	}
	return &SimulatedGateway{
		rng:         rng,
		delay:       cfg.Delay,
		successRate: rate,
	}
}

// Charge waits for the configured delay, then approves or declines at random.
func (g *SimulatedGateway) Charge(ctx context.Context, amount int) (string, error) {
	if g.delay > 0 {
		timer := time.NewTimer(g.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-timer.C:
		}
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.rng.Float64() < g.successRate {
		return fmt.Sprintf("PMT%d", 100000+g.rng.IntN(900000)), nil
	}
	return "", &DeclineError{Reason: DeclineReasons[g.rng.IntN(len(DeclineReasons))]}
}

// PaymentService validates card details and charges them through a Gateway.
type PaymentService struct {
	gateway Gateway
	now     func() time.Time
}

// NewPaymentService creates a new PaymentService. A nil clock uses time.Now.
func NewPaymentService(gateway Gateway, now func() time.Time) *PaymentService {
	if now == nil {
		now = time.Now
	}
	return &PaymentService{
		gateway: gateway,
		now:     now,
	}
}

// ValidateCard checks the card fields in order and returns the first failure.
func ValidateCard(card domain.Card, now time.Time) error {
	number := strings.ReplaceAll(card.Number, " ", "")
	if len(number) != 16 || !isDigits(number) {
		return ErrInvalidCardNumber
	}

	year, month := now.Year(), int(now.Month())
	if card.ExpiryYear < year || (card.ExpiryYear == year && card.ExpiryMonth < month) {
		return ErrCardExpired
	}

	if len(card.CVV) != 3 || !isDigits(card.CVV) {
		return ErrInvalidCVV
	}

	return nil
}

// ProcessPayment validates the card and, if it passes, charges the amount.
// Card format errors never reach the gateway.
func (s *PaymentService) ProcessPayment(ctx context.Context, amount int, card domain.Card) (string, error) {
	if err := ValidateCard(card, s.now()); err != nil {
		log.Printf("[PAYMENT] rejected card: amount=%d reason=%q", amount, err)
		return "", err
	}

	paymentID, err := s.gateway.Charge(ctx, amount)
	if err != nil {
		log.Printf("[PAYMENT] charge failed: amount=%d reason=%q", amount, err)
		return "", err
	}

	log.Printf("[PAYMENT] charge approved: amount=%d payment_id=%s", amount, paymentID)
	return paymentID, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

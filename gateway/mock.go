package gateway

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// MockGateway implements PaymentGateway in memory for local development
// and tests. Intents succeed once MarkSucceeded is called (or
// immediately when AutoSucceed is set).
type MockGateway struct {
	AutoSucceed bool

	mu       sync.Mutex
	intents  map[string]bool
	FailNext bool
}

func NewMockGateway() *MockGateway {
	return &MockGateway{intents: make(map[string]bool)}
}

func (g *MockGateway) CreateIntent(ctx context.Context, amountMinorUnits int64, orderID, userID string) (*Intent, error) {
	if amountMinorUnits < MinimumChargeMinorUnits {
		return nil, fmt.Errorf("amount %d below gateway minimum %d", amountMinorUnits, MinimumChargeMinorUnits)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.FailNext {
		g.FailNext = false
		return nil, fmt.Errorf("mock gateway failure")
	}
	id := "pi_mock_" + uuid.NewString()
	g.intents[id] = g.AutoSucceed
	return &Intent{IntentID: id, ClientSecret: id + "_secret"}, nil
}

func (g *MockGateway) IsSucceeded(ctx context.Context, intentID string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	succeeded, ok := g.intents[intentID]
	if !ok {
		return false, fmt.Errorf("unknown payment intent %s", intentID)
	}
	return succeeded, nil
}

// MarkSucceeded flips an intent to succeeded, simulating the customer
// completing payment.
func (g *MockGateway) MarkSucceeded(intentID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.intents[intentID] = true
}

package completion

import (
	"context"
	"sync"
)

// MockSender is a test double that returns canned outcomes in sequence and
// records every request. After the outcomes run out the last one repeats.
type MockSender struct {
	mu       sync.Mutex
	outcomes []MockOutcome
	calls    []MockCall
	idx      int
}

// MockOutcome is one canned Send result.
type MockOutcome struct {
	Result Result
	Err    error
}

// MockCall records the arguments of one Send call.
type MockCall struct {
	APIKey         string
	Request        Request
	FailureMessage string
}

var _ Sender = (*MockSender)(nil)

// NewMockSender creates a mock returning the given outcomes in order.
func NewMockSender(outcomes ...MockOutcome) *MockSender {
	return &MockSender{outcomes: outcomes}
}

// Send returns the next canned outcome.
func (m *MockSender) Send(ctx context.Context, apiKey string, req Request, failureMessage string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, MockCall{APIKey: apiKey, Request: req, FailureMessage: failureMessage})
	if len(m.outcomes) == 0 {
		return Result{Content: "", Model: req.Model}, nil
	}
	out := m.outcomes[m.idx]
	if m.idx < len(m.outcomes)-1 {
		m.idx++
	}
	return out.Result, out.Err
}

// Calls returns a copy of the recorded calls.
func (m *MockSender) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockCall, len(m.calls))
	copy(out, m.calls)
	return out
}

package llm

import (
	"context"
	"sync"

	"github.com/agenthands/stargraph/internal/core/model"
)

type MockLLM struct {
	Response      string
	ResponseQueue []string
	Err           error
	Prompts       []string
}

func (m *MockLLM) Generate(ctx context.Context, prompt string) (string, error) {
	m.Prompts = append(m.Prompts, prompt)
	if m.Err != nil {
		return "", m.Err
	}
	if len(m.ResponseQueue) > 0 {
		resp := m.ResponseQueue[0]
		m.ResponseQueue = m.ResponseQueue[1:]
		return resp, nil
	}
	return m.Response, nil
}

// MockAnswerer answers every question with "e1" after returning the
// queued errors, one per call.
type MockAnswerer struct {
	mu      sync.Mutex
	Errs    []error
	Calls   int
	Batches [][]model.QARequest
}

func (m *MockAnswerer) Answer(ctx context.Context, batch []model.QARequest) ([]model.QAResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	m.Batches = append(m.Batches, batch)
	if len(m.Errs) > 0 {
		err := m.Errs[0]
		m.Errs = m.Errs[1:]
		if err != nil {
			return nil, err
		}
	}
	out := make([]model.QAResponse, len(batch))
	for i := range batch {
		out[i] = model.QAResponse{Answer: "e1"}
	}
	return out, nil
}

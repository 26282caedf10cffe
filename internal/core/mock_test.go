package core

import (
	"context"

	"github.com/agenthands/stargraph/internal/core/model"
)

// MockAnswerer replies with Respond(request), or with the queued
// responses when Respond is nil.
type MockAnswerer struct {
	Respond       func(model.QARequest) string
	ResponseQueue []string
	Err           error
	Requests      [][]model.QARequest
}

func (m *MockAnswerer) Answer(ctx context.Context, batch []model.QARequest) ([]model.QAResponse, error) {
	m.Requests = append(m.Requests, batch)
	if m.Err != nil {
		return nil, m.Err
	}
	out := make([]model.QAResponse, len(batch))
	for i, req := range batch {
		switch {
		case m.Respond != nil:
			out[i].Answer = m.Respond(req)
		case len(m.ResponseQueue) > 0:
			out[i].Answer = m.ResponseQueue[0]
			m.ResponseQueue = m.ResponseQueue[1:]
		}
	}
	return out, nil
}

package llm

import (
	"context"

	"github.com/agenthands/stargraph/internal/core/model"
)

// LLMClient completes a single prompt.
type LLMClient interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Answerer answers a batch of context/question pairs. The result has the
// same length and order as the batch.
type Answerer interface {
	Answer(ctx context.Context, batch []model.QARequest) ([]model.QAResponse, error)
}

// ChatAnswerer turns any LLMClient into an Answerer, one prompt per pair.
type ChatAnswerer struct {
	LLM LLMClient
}

func NewChatAnswerer(client LLMClient) *ChatAnswerer {
	return &ChatAnswerer{LLM: client}
}

func (a *ChatAnswerer) Answer(ctx context.Context, batch []model.QARequest) ([]model.QAResponse, error) {
	responses := make([]model.QAResponse, 0, len(batch))
	for _, req := range batch {
		text, err := a.LLM.Generate(ctx, req.Context+"\n"+req.Question)
		if err != nil {
			return nil, classify(err)
		}
		responses = append(responses, model.QAResponse{Answer: text})
	}
	return responses, nil
}

package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/agenthands/stargraph/internal/core/model"
)

// HFQAClient calls a Hugging Face question-answering inference endpoint,
// which returns an extracted span with a confidence score.
type HFQAClient struct {
	httpClient *http.Client
	url        string
	apiKey     string
}

func NewHFQAClient(url string, apiKey string) *HFQAClient {
	return &HFQAClient{
		httpClient: &http.Client{Timeout: 2 * time.Minute},
		url:        url,
		apiKey:     apiKey,
	}
}

type hfQARequest struct {
	Inputs model.QARequest `json:"inputs"`
}

type hfQAResponse struct {
	Answer string  `json:"answer"`
	Score  float64 `json:"score"`
}

type hfError struct {
	Error         string  `json:"error"`
	EstimatedTime float64 `json:"estimated_time"`
}

func (c *HFQAClient) Answer(ctx context.Context, batch []model.QARequest) ([]model.QAResponse, error) {
	responses := make([]model.QAResponse, 0, len(batch))
	for _, req := range batch {
		resp, err := c.answerOne(ctx, req)
		if err != nil {
			return nil, err
		}
		responses = append(responses, resp)
	}
	return responses, nil
}

func (c *HFQAClient) answerOne(ctx context.Context, req model.QARequest) (model.QAResponse, error) {
	body, err := json.Marshal(hfQARequest{Inputs: req})
	if err != nil {
		return model.QAResponse{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return model.QAResponse{}, fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return model.QAResponse{}, fmt.Errorf("question-answering request failed: %w", err)
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return model.QAResponse{}, fmt.Errorf("failed to read response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		var apiErr hfError
		_ = json.Unmarshal(data, &apiErr)
		if httpResp.StatusCode == http.StatusServiceUnavailable || strings.Contains(apiErr.Error, "currently loading") {
			return model.QAResponse{}, &LoadingError{
				EstimatedTime: time.Duration(apiErr.EstimatedTime * float64(time.Second)),
				Err:           fmt.Errorf("status %d: %s", httpResp.StatusCode, apiErr.Error),
			}
		}
		return model.QAResponse{}, fmt.Errorf("question-answering endpoint returned status %d: %s", httpResp.StatusCode, string(data))
	}

	var out hfQAResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return model.QAResponse{}, fmt.Errorf("failed to decode answer: %w", err)
	}
	score := out.Score
	return model.QAResponse{Answer: out.Answer, Score: &score}, nil
}

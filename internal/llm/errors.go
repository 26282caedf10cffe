package llm

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

var (
	// ErrModelLoading marks the transient "model is currently loading"
	// condition that callers retry.
	ErrModelLoading = errors.New("model is currently loading")

	ErrEmptyResponse = errors.New("the model returned an empty response")
	ErrBatchSize     = errors.New("answer count does not match batch size")
)

// LoadingError is a model-loading failure with the server's wait estimate.
type LoadingError struct {
	EstimatedTime time.Duration
	Err           error
}

func (e *LoadingError) Error() string {
	if e.EstimatedTime > 0 {
		return fmt.Sprintf("%v (estimated %s)", ErrModelLoading, e.EstimatedTime)
	}
	return ErrModelLoading.Error()
}

func (e *LoadingError) Is(target error) bool { return target == ErrModelLoading }
func (e *LoadingError) Unwrap() error        { return e.Err }

// classify wraps provider errors that mean the model is still loading.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusServiceUnavailable {
		return &LoadingError{Err: err}
	}
	if strings.Contains(strings.ToLower(err.Error()), "currently loading") {
		return &LoadingError{Err: err}
	}
	return err
}

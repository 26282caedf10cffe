package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/stargraph/internal/core/model"
)

func TestHFQAClient_Answer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		var body struct {
			Inputs model.QARequest `json:"inputs"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "facts", body.Inputs.Context)
		_, _ = w.Write([]byte(`{"answer": "e4", "score": 0.91, "start": 10, "end": 12}`))
	}))
	defer srv.Close()

	resp, err := NewHFQAClient(srv.URL, "secret").Answer(context.Background(),
		[]model.QARequest{{Context: "facts", Question: "who?"}})
	require.NoError(t, err)
	require.Len(t, resp, 1)
	assert.Equal(t, "e4", resp[0].Answer)
	require.NotNil(t, resp[0].Score)
	assert.InDelta(t, 0.91, *resp[0].Score, 1e-9)
}

func TestHFQAClient_Loading(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error": "Model deepset/roberta is currently loading", "estimated_time": 20.0}`))
	}))
	defer srv.Close()

	_, err := NewHFQAClient(srv.URL, "").Answer(context.Background(), oneQuestion)
	require.ErrorIs(t, err, ErrModelLoading)
	var loading *LoadingError
	require.ErrorAs(t, err, &loading)
	assert.Equal(t, 20*time.Second, loading.EstimatedTime)
}

func TestHFQAClient_OtherStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": "bad input"}`))
	}))
	defer srv.Close()

	_, err := NewHFQAClient(srv.URL, "").Answer(context.Background(), oneQuestion)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrModelLoading)
}

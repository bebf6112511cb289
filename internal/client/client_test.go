package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractor_Extract(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/extract", r.URL.Path)
		assert.Equal(t, "Bearer key-1", r.Header.Get("Authorization"))

		var req struct {
			Pages []Page `json:"pages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Pages, 1)
		assert.Equal(t, []byte{1, 2, 3}, req.Pages[0].Data)

		_ = json.NewEncoder(w).Encode(Extraction{
			Name:         "Borscht",
			Ingredients:  []string{"beetroot"},
			Instructions: []string{"boil"},
		})
	}))
	defer srv.Close()

	ex := NewExtractor(srv.URL, "key-1", time.Second)
	got, err := ex.Extract(context.Background(), []Page{{Data: []byte{1, 2, 3}, Mime: "image/jpeg"}})
	require.NoError(t, err)
	assert.Equal(t, "Borscht", got.Name)
	assert.Equal(t, []string{"beetroot"}, got.Ingredients)
}

// Тело ошибки внешнего сервиса доводится до вызывающего дословно.
func TestExtractor_UpstreamErrorPreserved(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"quota exceeded"}`))
	}))
	defer srv.Close()

	ex := NewExtractor(srv.URL, "key-1", time.Second)
	_, err := ex.Extract(context.Background(), []Page{{Data: []byte{1}, Mime: "image/png"}})

	var ue *UpstreamError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, http.StatusTooManyRequests, ue.Status)
	assert.JSONEq(t, `{"error":"quota exceeded"}`, string(ue.Body))
}

func TestSubmitter_BearerAndBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/recipe/", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"id":7}`))
	}))
	defer srv.Close()

	sub := NewSubmitter(time.Second)
	body, err := sub.Submit(context.Background(), srv.URL, "tok", Submission{Name: "Pie"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":7}`, string(body))
}

func TestConsolidator_Consolidate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"items":["2 kg beetroot","1 cabbage"]}`))
	}))
	defer srv.Close()

	c := NewConsolidator(srv.URL, time.Second)
	items, err := c.Consolidate(context.Background(), [][]string{{"1 kg beetroot"}, {"1 kg beetroot", "1 cabbage"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"2 kg beetroot", "1 cabbage"}, items)
}

func TestNutrition_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	n := NewNutritionAnalyzer(srv.URL, 20*time.Millisecond)
	_, err := n.Analyze(context.Background(), "Pie", []string{"flour"}, []string{"bake"})
	assert.Error(t, err, "call must be bounded by the configured timeout")
}

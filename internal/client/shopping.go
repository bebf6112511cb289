package client

import (
	"context"
	"net/http"
	"time"
)

// Consolidator — внешний сервис, сводящий несколько списков
// ингредиентов в один дедуплицированный список покупок.
type Consolidator interface {
	Consolidate(ctx context.Context, lists [][]string) ([]string, error)
}

type httpConsolidator struct {
	baseURL string
	httpc   *http.Client
	timeout time.Duration
}

func NewConsolidator(baseURL string, timeout time.Duration) Consolidator {
	return &httpConsolidator{baseURL: baseURL, httpc: &http.Client{}, timeout: timeout}
}

func (c *httpConsolidator) Consolidate(ctx context.Context, lists [][]string) ([]string, error) {
	req := struct {
		Lists [][]string `json:"lists"`
	}{Lists: lists}

	var out struct {
		Items []string `json:"items"`
	}
	_, err := doJSON(ctx, c.httpc, c.timeout, "shopping", http.MethodPost, c.baseURL+"/v1/consolidate", nil, req, &out)
	if err != nil {
		return nil, err
	}
	return out.Items, nil
}

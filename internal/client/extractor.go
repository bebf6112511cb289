package client

import (
	"context"
	"net/http"
	"time"
)

// Page — одна страница исходника рецепта (фото или страница PDF).
type Page struct {
	Data []byte `json:"data"` // кодируется base64 средствами encoding/json
	Mime string `json:"mime"`
}

// Extraction — структурированный результат распознавания.
type Extraction struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Ingredients  []string `json:"ingredients"`
	Instructions []string `json:"instructions"`
	Tags         []string `json:"tags,omitempty"`
	Servings     *int     `json:"servings,omitempty"`
}

// Extractor — внешний vision/LLM-сервис, чёрный ящик.
type Extractor interface {
	Extract(ctx context.Context, pages []Page) (*Extraction, error)
}

type httpExtractor struct {
	baseURL string
	apiKey  string
	httpc   *http.Client
	timeout time.Duration
}

func NewExtractor(baseURL, apiKey string, timeout time.Duration) Extractor {
	return &httpExtractor{baseURL: baseURL, apiKey: apiKey, httpc: &http.Client{}, timeout: timeout}
}

func (c *httpExtractor) Extract(ctx context.Context, pages []Page) (*Extraction, error) {
	req := struct {
		Pages []Page `json:"pages"`
	}{Pages: pages}

	var out Extraction
	headers := map[string]string{"Authorization": "Bearer " + c.apiKey}
	_, err := doJSON(ctx, c.httpc, c.timeout, "extractor", http.MethodPost, c.baseURL+"/v1/extract", headers, req, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

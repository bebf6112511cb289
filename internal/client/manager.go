package client

import (
	"context"
	"net/http"
	"time"
)

// Submission — рецепт в форме, ожидаемой внешним менеджером рецептов.
type Submission struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Ingredients  []string `json:"ingredients"`
	Instructions []string `json:"instructions"`
}

// Submitter отправляет рецепт во внешний менеджер. Адрес и bearer-токен
// настраиваются администратором, поэтому передаются на каждый вызов.
type Submitter interface {
	Submit(ctx context.Context, baseURL, token string, s Submission) ([]byte, error)
}

type httpSubmitter struct {
	httpc   *http.Client
	timeout time.Duration
}

func NewSubmitter(timeout time.Duration) Submitter {
	return &httpSubmitter{httpc: &http.Client{}, timeout: timeout}
}

func (c *httpSubmitter) Submit(ctx context.Context, baseURL, token string, s Submission) ([]byte, error) {
	headers := map[string]string{"Authorization": "Bearer " + token}
	// тело ответа возвращаем вызывающему как есть
	return doJSON(ctx, c.httpc, c.timeout, "recipe-manager", http.MethodPost, baseURL+"/api/recipe/", headers, s, nil)
}

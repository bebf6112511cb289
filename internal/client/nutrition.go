package client

import (
	"context"
	"net/http"
	"time"
)

// Nutrition — оценка питательности на порцию.
type Nutrition struct {
	Calories float64  `json:"calories"`
	Protein  float64  `json:"protein"`
	Carbs    float64  `json:"carbs"`
	Fat      float64  `json:"fat"`
	Fiber    *float64 `json:"fiber,omitempty"`
	Sugar    *float64 `json:"sugar,omitempty"`
}

// NutritionAnalyzer — внешний сервис оценки питательности.
type NutritionAnalyzer interface {
	Analyze(ctx context.Context, name string, ingredients, instructions []string) (*Nutrition, error)
}

type httpNutrition struct {
	baseURL string
	httpc   *http.Client
	timeout time.Duration
}

func NewNutritionAnalyzer(baseURL string, timeout time.Duration) NutritionAnalyzer {
	return &httpNutrition{baseURL: baseURL, httpc: &http.Client{}, timeout: timeout}
}

func (c *httpNutrition) Analyze(ctx context.Context, name string, ingredients, instructions []string) (*Nutrition, error) {
	req := struct {
		Name         string   `json:"name"`
		Ingredients  []string `json:"ingredients"`
		Instructions []string `json:"instructions"`
	}{name, ingredients, instructions}

	var out Nutrition
	_, err := doJSON(ctx, c.httpc, c.timeout, "nutrition", http.MethodPost, c.baseURL+"/v1/analyze", nil, req, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

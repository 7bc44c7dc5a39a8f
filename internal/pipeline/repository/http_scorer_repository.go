package repository

import (
	"context"
	"fmt"
	"strings"

	"golang-news-sentiment/internal/pipeline/config"
	"golang-news-sentiment/pkg/logger"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

type scoreRequest struct {
	Text string `json:"text"`
}

type scoreResponse struct {
	Score *float64 `json:"score"`
}

type httpScorer struct {
	client  *resty.Client
	limiter *rate.Limiter
	log     *logger.Logger
}

// NewHTTPScorer creates a SentimentScorer that delegates to an external
// scoring service over HTTP. Requests are rate limited per configuration.
func NewHTTPScorer(cfg *config.Config, log *logger.Logger) SentimentScorer {
	client := resty.New().
		SetBaseURL(cfg.Scorer.BaseURL).
		SetTimeout(cfg.Scorer.Timeout).
		SetHeader("Accept", "application/json")

	maxPerMinute := cfg.Scorer.MaxRequestPerMinute
	if maxPerMinute <= 0 {
		maxPerMinute = 60
	}

	return &httpScorer{
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(float64(maxPerMinute)/60.0), maxPerMinute),
		log:     log,
	}
}

func (s *httpScorer) ScoreText(ctx context.Context, text string) (*float64, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("scorer rate limiter: %w", err)
	}

	var result scoreResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(scoreRequest{Text: text}).
		SetResult(&result).
		Post("/score")
	if err != nil {
		return nil, fmt.Errorf("scorer request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("scorer returned status %d", resp.StatusCode())
	}
	if result.Score == nil {
		return nil, nil
	}
	if *result.Score < -1 || *result.Score > 1 {
		return nil, fmt.Errorf("scorer returned out-of-range score %f", *result.Score)
	}

	return result.Score, nil
}

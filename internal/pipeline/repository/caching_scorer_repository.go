package repository

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

type cachingScorer struct {
	inner SentimentScorer
	cache *gocache.Cache
}

// NewCachingScorer wraps a SentimentScorer with an in-memory score cache keyed
// by the scored text. Duplicate headlines across batches are common, so this
// keeps repeated scorer calls off the hot path.
func NewCachingScorer(inner SentimentScorer, expiration, cleanupInterval time.Duration) SentimentScorer {
	return &cachingScorer{
		inner: inner,
		cache: gocache.New(expiration, cleanupInterval),
	}
}

func (s *cachingScorer) ScoreText(ctx context.Context, text string) (*float64, error) {
	if text == "" {
		return s.inner.ScoreText(ctx, text)
	}

	if cached, found := s.cache.Get(text); found {
		score := cached.(float64)
		return &score, nil
	}

	score, err := s.inner.ScoreText(ctx, text)
	if err != nil || score == nil {
		return score, err
	}

	s.cache.Set(text, *score, gocache.DefaultExpiration)
	return score, nil
}

package repository

import (
	"context"
	"strings"
)

// Keyword-based sentiment scorer. Offline and deterministic; used when no
// external scoring service is configured.

var positiveWords = map[string]float64{
	"rally": 0.6, "surge": 0.7, "soar": 0.7, "soars": 0.7, "upbeat": 0.5,
	"positive": 0.4, "growth": 0.4, "upgrade": 0.6, "outperform": 0.6,
	"strong": 0.4, "recovery": 0.5, "breakout": 0.6, "record high": 0.7,
	"all-time high": 0.7, "beat": 0.5, "beats": 0.5, "exceeds": 0.5,
	"expansion": 0.4, "profit": 0.3, "dividend": 0.4, "gain": 0.4,
	"jump": 0.5, "bullish": 0.7,
}

var negativeWords = map[string]float64{
	"crash": 0.8, "plunge": 0.7, "slump": 0.6, "negative": 0.4,
	"downgrade": 0.6, "underperform": 0.6, "weak": 0.4, "decline": 0.5,
	"loss": 0.4, "selloff": 0.7, "fall": 0.4, "falls": 0.4,
	"correction": 0.5, "default": 0.7, "fraud": 0.8, "scandal": 0.8,
	"investigation": 0.5, "miss": 0.5, "misses": 0.5, "warning": 0.5,
	"concern": 0.3, "lawsuit": 0.6, "bearish": 0.7,
}

type lexiconScorer struct{}

// NewLexiconScorer creates a SentimentScorer backed by keyword dictionaries.
func NewLexiconScorer() SentimentScorer {
	return &lexiconScorer{}
}

// ScoreText returns the net keyword weight normalized to [-1, 1]. Text with no
// keyword matches scores 0; empty text yields a nil score.
func (s *lexiconScorer) ScoreText(_ context.Context, text string) (*float64, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	lower := strings.ToLower(text)

	posScore := 0.0
	negScore := 0.0

	for word, weight := range positiveWords {
		if strings.Contains(lower, word) {
			posScore += weight
		}
	}
	for word, weight := range negativeWords {
		if strings.Contains(lower, word) {
			negScore += weight
		}
	}

	score := 0.0
	if total := posScore + negScore; total > 0 {
		score = (posScore - negScore) / total
	}

	return &score, nil
}

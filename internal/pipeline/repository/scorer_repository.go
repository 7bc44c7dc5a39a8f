package repository

import "context"

// SentimentScorer scores a piece of text in [-1, 1].
// A nil score with a nil error means the input carried no text to score.
type SentimentScorer interface {
	ScoreText(ctx context.Context, text string) (*float64, error)
}

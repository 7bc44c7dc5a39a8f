package service

import (
	"context"

	"golang-news-sentiment/internal/entity"
	"golang-news-sentiment/internal/pipeline/config"
	"golang-news-sentiment/internal/pipeline/repository"
	"golang-news-sentiment/pkg/logger"

	"golang.org/x/sync/errgroup"
)

// Label classifies an overall sentiment score against the given thresholds.
// Both boundaries are inclusive: a score equal to posThreshold is positive and
// a score equal to negThreshold is negative.
func Label(score, posThreshold, negThreshold float64) entity.SentimentLabel {
	switch {
	case score >= posThreshold:
		return entity.SentimentPositive
	case score <= negThreshold:
		return entity.SentimentNegative
	default:
		return entity.SentimentNeutral
	}
}

// NormalizerService scores raw articles and classifies the result.
type NormalizerService interface {
	Score(ctx context.Context, record entity.ArticleRecord) entity.ScoredArticle
	ScoreBatch(ctx context.Context, batch []entity.ArticleRecord) []entity.ScoredArticle
}

// NewNormalizerService creates a new NormalizerService.
func NewNormalizerService(cfg *config.Config, scorer repository.SentimentScorer, log *logger.Logger) NormalizerService {
	return &normalizerService{
		cfg:    cfg,
		scorer: scorer,
		logger: log,
	}
}

type normalizerService struct {
	cfg    *config.Config
	scorer repository.SentimentScorer
	logger *logger.Logger
}

// Score scores the title and description independently and combines them.
// Rules for missing fields:
//   - both present: overall is their arithmetic mean
//   - one present: overall equals the present field's score
//   - both absent: the record is flagged as unscored (never defaulted to 0)
//
// A scorer failure on one field is treated as that field being absent.
func (s *normalizerService) Score(ctx context.Context, record entity.ArticleRecord) entity.ScoredArticle {
	scored := entity.ScoredArticle{ArticleRecord: record}

	scored.TitleSentiment = s.scoreField(ctx, record.Title, "title", record.URL)
	scored.DescriptionSentiment = s.scoreField(ctx, record.Description, "description", record.URL)

	switch {
	case scored.TitleSentiment != nil && scored.DescriptionSentiment != nil:
		scored.OverallSentiment = (*scored.TitleSentiment + *scored.DescriptionSentiment) / 2
		scored.Scored = true
	case scored.TitleSentiment != nil:
		scored.OverallSentiment = *scored.TitleSentiment
		scored.Scored = true
	case scored.DescriptionSentiment != nil:
		scored.OverallSentiment = *scored.DescriptionSentiment
		scored.Scored = true
	default:
		scored.Scored = false
	}

	if scored.Scored {
		scored.Label = Label(scored.OverallSentiment, s.cfg.Pipeline.PosThreshold, s.cfg.Pipeline.NegThreshold)
	} else {
		scored.Label = entity.SentimentNeutral
	}

	return scored
}

// ScoreBatch scores articles concurrently and assembles results in batch order.
func (s *normalizerService) ScoreBatch(ctx context.Context, batch []entity.ArticleRecord) []entity.ScoredArticle {
	scored := make([]entity.ScoredArticle, len(batch))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Pipeline.MaxConcurrentScores)
	for i, record := range batch {
		g.Go(func() error {
			scored[i] = s.Score(gctx, record)
			return nil
		})
	}
	_ = g.Wait()

	return scored
}

func (s *normalizerService) scoreField(ctx context.Context, text, field, url string) *float64 {
	scoreCtx, cancel := context.WithTimeout(ctx, s.cfg.Pipeline.ScoreTimeout)
	defer cancel()

	score, err := s.scorer.ScoreText(scoreCtx, text)
	if err != nil {
		// Field-local failure. The field is treated as absent.
		s.logger.Warn("Scorer call failed, treating field as absent",
			logger.ErrorField(err),
			logger.StringField("field", field),
			logger.StringField("url", url),
		)
		return nil
	}
	return score
}

package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang-news-sentiment/internal/entity"
	"golang-news-sentiment/internal/pipeline/config"
	"golang-news-sentiment/internal/pipeline/repository"
	"golang-news-sentiment/pkg/logger"
	"golang-news-sentiment/pkg/utils"

	"github.com/robfig/cron/v3"
)

// BatchState names the orchestrator's position in the per-batch lifecycle.
type BatchState string

const (
	StateIdle        BatchState = "idle"
	StateReceiving   BatchState = "receiving"
	StateScoring     BatchState = "scoring"
	StateAggregating BatchState = "aggregating"
	StateReporting   BatchState = "reporting"
	StatePersisting  BatchState = "persisting"
)

// BatchSource hands the orchestrator the records buffered since the last tick.
type BatchSource interface {
	Drain() []entity.ArticleRecord
}

// OrchestratorService owns the trigger loop: on every tick it drains one batch
// from the feed and runs it through scoring, aggregation, reporting and
// persistence. A failing batch is discarded at the orchestrator boundary and
// never affects the next tick.
type OrchestratorService interface {
	Setup(ctx context.Context) error
	Run(ctx context.Context) error
	ProcessBatch(ctx context.Context, batchID uint64, batch []entity.ArticleRecord) error
	State() BatchState
	LatestSummary() *entity.BatchSummary
}

// NewOrchestratorService creates a new OrchestratorService.
func NewOrchestratorService(
	cfg *config.Config,
	log *logger.Logger,
	feed BatchSource,
	normalizer NormalizerService,
	sentimentRepo repository.NewsSentimentRepository,
	summaryRepo repository.BatchSummaryRepository,
) OrchestratorService {
	return &orchestratorService{
		cfg:           cfg,
		logger:        log,
		feed:          feed,
		normalizer:    normalizer,
		sentimentRepo: sentimentRepo,
		summaryRepo:   summaryRepo,
		state:         StateIdle,
	}
}

type orchestratorService struct {
	cfg           *config.Config
	logger        *logger.Logger
	feed          BatchSource
	normalizer    NormalizerService
	sentimentRepo repository.NewsSentimentRepository
	summaryRepo   repository.BatchSummaryRepository

	// runMu serializes ticks: only one batch is ever in flight.
	runMu sync.Mutex

	mu          sync.Mutex
	state       BatchState
	batchSeq    uint64
	lastSummary *entity.BatchSummary
}

// Setup verifies the result store schema exists. A failure here is fatal: no
// batch can ever persist without it.
func (s *orchestratorService) Setup(ctx context.Context) error {
	if err := s.sentimentRepo.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("schema setup failed: %w", err)
	}
	return nil
}

// Run drives the trigger loop at the configured cadence until the context is
// cancelled. The in-flight batch is drained before Run returns.
func (s *orchestratorService) Run(ctx context.Context) error {
	c := cron.New()
	_, err := c.AddFunc(fmt.Sprintf("@every %s", s.cfg.Pipeline.Cadence), func() {
		s.tick(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule batch trigger: %w", err)
	}

	s.logger.Info("Batch orchestrator started",
		logger.Field("cadence", s.cfg.Pipeline.Cadence),
		logger.IntField("topk", s.cfg.Pipeline.TopK),
	)
	c.Start()

	<-ctx.Done()
	s.logger.Info("Batch orchestrator stopping")

	// Stop returns a context that completes once running jobs finish.
	<-c.Stop().Done()
	return nil
}

// tick runs one complete pass. Errors never escape: any failure is logged with
// the batch identifier and the orchestrator returns to idle for the next tick.
// Cron fires each tick in its own goroutine, so a batch slower than the cadence
// would otherwise overlap the next one; busy ticks are skipped and the buffered
// records stay in the feed for the tick that follows.
func (s *orchestratorService) tick(ctx context.Context) {
	if !s.runMu.TryLock() {
		s.logger.Warn("Previous batch still in flight, skipping tick")
		return
	}
	defer s.runMu.Unlock()

	batchID := s.nextBatchID()

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Batch processing panicked",
				logger.Field("batch_id", batchID),
				logger.Field("panic", r),
			)
		}
		s.setState(StateIdle)
	}()

	s.setState(StateReceiving)
	batch := s.feed.Drain()

	if err := s.ProcessBatch(ctx, batchID, batch); err != nil {
		s.logger.Error("Batch processing failed, discarding batch",
			logger.ErrorField(err),
			logger.Field("batch_id", batchID),
		)
	}
}

// ProcessBatch runs one batch through all stages.
func (s *orchestratorService) ProcessBatch(ctx context.Context, batchID uint64, batch []entity.ArticleRecord) error {
	receivedAt := utils.TimeNowUTC()

	if len(batch) == 0 {
		// Normal condition, not a failure.
		s.logger.Info("No articles received", logger.Field("batch_id", batchID))
		return nil
	}

	s.logger.Info("Processing batch",
		logger.Field("batch_id", batchID),
		logger.IntField("article_count", len(batch)),
	)

	s.setState(StateScoring)
	scored := s.normalizer.ScoreBatch(ctx, batch)

	s.setState(StateAggregating)
	aggregates := Aggregate(scored)

	s.setState(StateReporting)
	summary := s.report(ctx, batchID, receivedAt, scored, aggregates)

	s.setState(StatePersisting)
	outcome := s.persist(ctx, batchID, scored)
	summary.RowsWritten = outcome.Written
	summary.RowsFailed = len(outcome.Failures)

	s.setLatestSummary(summary)

	if outcome.TotalFailure() {
		return fmt.Errorf("batch %d persistence failed: %w", batchID, outcome.Err)
	}
	return nil
}

func (s *orchestratorService) report(ctx context.Context, batchID uint64, receivedAt time.Time, scored []entity.ScoredArticle, aggregates []entity.CompanyAggregate) entity.BatchSummary {
	scoredCount := 0
	for _, article := range scored {
		if article.Scored {
			scoredCount++
		}
	}

	topPositive := Highlights(TopK(scored, s.cfg.Pipeline.TopK, entity.MostPositive))
	topNegative := Highlights(TopK(scored, s.cfg.Pipeline.TopK, entity.MostNegative))

	for _, agg := range aggregates {
		s.logger.Info("Company sentiment",
			logger.Field("batch_id", batchID),
			logger.StringField("company", agg.Company),
			logger.Float64Field("avg_sentiment", agg.AvgSentiment),
			logger.IntField("article_count", agg.ArticleCount),
			logger.Float64Field("positive_ratio", agg.PositiveRatio),
			logger.Float64Field("negative_ratio", agg.NegativeRatio),
		)
	}
	for _, h := range topPositive {
		s.logger.Info("Most positive article",
			logger.Field("batch_id", batchID),
			logger.StringField("company", h.Company),
			logger.StringField("title", h.Title),
			logger.Float64Field("overall_sentiment", h.OverallSentiment),
		)
	}
	for _, h := range topNegative {
		s.logger.Info("Most negative article",
			logger.Field("batch_id", batchID),
			logger.StringField("company", h.Company),
			logger.StringField("title", h.Title),
			logger.Float64Field("overall_sentiment", h.OverallSentiment),
		)
	}

	summary := entity.BatchSummary{
		BatchID:      batchID,
		ReceivedAt:   receivedAt,
		ArticleCount: len(scored),
		ScoredCount:  scoredCount,
		Aggregates:   aggregates,
		TopPositive:  topPositive,
		TopNegative:  topNegative,
	}

	// Summary publication is observability, not persistence. A failure here is
	// logged and the batch continues.
	if err := s.summaryRepo.Publish(ctx, summary); err != nil {
		s.logger.Warn("Failed to publish batch summary",
			logger.ErrorField(err),
			logger.Field("batch_id", batchID),
		)
	}

	return summary
}

func (s *orchestratorService) persist(ctx context.Context, batchID uint64, scored []entity.ScoredArticle) repository.WriteOutcome {
	rows := make([]entity.NewsSentiment, 0, len(scored))
	for _, article := range scored {
		if !article.Scored {
			s.logger.Warn("Skipping unscored article",
				logger.Field("batch_id", batchID),
				logger.StringField("url", article.URL),
			)
			continue
		}
		rows = append(rows, entity.NewsSentiment{
			FetchTimestamp:       article.FetchTimestamp,
			Company:              article.Company,
			Title:                article.Title,
			Description:          article.Description,
			TitleSentiment:       article.TitleSentiment,
			DescriptionSentiment: article.DescriptionSentiment,
			OverallSentiment:     article.OverallSentiment,
			SentimentLabel:       string(article.Label),
		})
	}

	outcome := s.sentimentRepo.Write(ctx, rows)

	for _, failure := range outcome.Failures {
		s.logger.Error("Failed to write sentiment row",
			logger.ErrorField(failure.Err),
			logger.Field("batch_id", batchID),
			logger.StringField("company", failure.Row.Company),
			logger.Field("fetch_timestamp", failure.Row.FetchTimestamp),
		)
	}
	s.logger.Info("Batch persisted",
		logger.Field("batch_id", batchID),
		logger.IntField("rows_written", outcome.Written),
		logger.IntField("rows_failed", len(outcome.Failures)),
	)

	return outcome
}

func (s *orchestratorService) nextBatchID() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batchSeq++
	return s.batchSeq
}

func (s *orchestratorService) setState(state BatchState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
}

// State reports the orchestrator's current position in the batch lifecycle.
func (s *orchestratorService) State() BatchState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LatestSummary returns the most recent batch summary, or nil before the first
// non-empty batch.
func (s *orchestratorService) LatestSummary() *entity.BatchSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSummary
}

func (s *orchestratorService) setLatestSummary(summary entity.BatchSummary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSummary = &summary
}

package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"golang-news-sentiment/internal/entity"
	"golang-news-sentiment/internal/pipeline/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFeed struct {
	batch []entity.ArticleRecord
}

func (f *fakeFeed) Drain() []entity.ArticleRecord {
	batch := f.batch
	f.batch = nil
	return batch
}

type fakeSentimentRepo struct {
	ensureCalls int
	ensureErr   error
	writeCalls  int
	written     [][]entity.NewsSentiment
	outcome     func(rows []entity.NewsSentiment) repository.WriteOutcome
}

func (f *fakeSentimentRepo) EnsureSchema(_ context.Context) error {
	f.ensureCalls++
	return f.ensureErr
}

func (f *fakeSentimentRepo) Write(_ context.Context, rows []entity.NewsSentiment) repository.WriteOutcome {
	f.writeCalls++
	f.written = append(f.written, rows)
	if f.outcome != nil {
		return f.outcome(rows)
	}
	return repository.WriteOutcome{Written: len(rows)}
}

type fakeSummaryRepo struct {
	published []entity.BatchSummary
	err       error
}

func (f *fakeSummaryRepo) Publish(_ context.Context, summary entity.BatchSummary) error {
	f.published = append(f.published, summary)
	return f.err
}

func newTestOrchestrator(t *testing.T, feed *fakeFeed, sentimentRepo *fakeSentimentRepo, summaryRepo *fakeSummaryRepo, scorer repository.SentimentScorer) OrchestratorService {
	t.Helper()
	cfg := testConfig()
	log := testLogger(t)
	normalizer := NewNormalizerService(cfg, scorer, log)
	return NewOrchestratorService(cfg, log, feed, normalizer, sentimentRepo, summaryRepo)
}

func TestProcessBatchEmptyBatchShortCircuits(t *testing.T) {
	sentimentRepo := &fakeSentimentRepo{}
	summaryRepo := &fakeSummaryRepo{}
	svc := newTestOrchestrator(t, &fakeFeed{}, sentimentRepo, summaryRepo, &fakeScorer{})

	err := svc.ProcessBatch(context.Background(), 1, nil)

	require.NoError(t, err)
	assert.Zero(t, sentimentRepo.writeCalls)
	assert.Empty(t, summaryRepo.published)
	assert.Nil(t, svc.LatestSummary())
}

func TestProcessBatchHappyPath(t *testing.T) {
	scorer := &fakeScorer{scores: map[string]float64{
		"ACME profit surge":  0.8,
		"Globex under fraud": -0.7,
		"Globex misses":      -0.2,
	}}
	sentimentRepo := &fakeSentimentRepo{}
	summaryRepo := &fakeSummaryRepo{}
	svc := newTestOrchestrator(t, &fakeFeed{}, sentimentRepo, summaryRepo, scorer)

	now := time.Now()
	batch := []entity.ArticleRecord{
		{Title: "ACME profit surge", Company: "ACME", FetchTimestamp: now},
		{Title: "Globex under fraud", Company: "Globex", FetchTimestamp: now},
		{Title: "Globex misses", Company: "Globex", FetchTimestamp: now.Add(time.Second)},
	}

	err := svc.ProcessBatch(context.Background(), 7, batch)
	require.NoError(t, err)

	require.Equal(t, 1, sentimentRepo.writeCalls)
	require.Len(t, sentimentRepo.written[0], 3)

	require.Len(t, summaryRepo.published, 1)
	summary := summaryRepo.published[0]
	assert.Equal(t, uint64(7), summary.BatchID)
	assert.Equal(t, 3, summary.ArticleCount)
	assert.Equal(t, 3, summary.ScoredCount)
	assert.Len(t, summary.Aggregates, 2)
	require.NotEmpty(t, summary.TopPositive)
	assert.Equal(t, "ACME", summary.TopPositive[0].Company)
	require.NotEmpty(t, summary.TopNegative)
	assert.Equal(t, "Globex", summary.TopNegative[0].Company)

	latest := svc.LatestSummary()
	require.NotNil(t, latest)
	assert.Equal(t, 3, latest.RowsWritten)
	assert.Equal(t, 0, latest.RowsFailed)
}

func TestProcessBatchPartialWriteFailureIsNotBatchFatal(t *testing.T) {
	scorer := &fakeScorer{scores: map[string]float64{
		"a": 0.5, "b": 0.6, "c": 0.7,
	}}
	sentimentRepo := &fakeSentimentRepo{
		outcome: func(rows []entity.NewsSentiment) repository.WriteOutcome {
			return repository.WriteOutcome{
				Written: len(rows) - 1,
				Failures: []repository.RowFailure{
					{Row: rows[1], Err: errors.New("row rejected")},
				},
			}
		},
	}
	summaryRepo := &fakeSummaryRepo{}
	svc := newTestOrchestrator(t, &fakeFeed{}, sentimentRepo, summaryRepo, scorer)

	batch := []entity.ArticleRecord{
		{Title: "a", Company: "A"},
		{Title: "b", Company: "B"},
		{Title: "c", Company: "C"},
	}

	err := svc.ProcessBatch(context.Background(), 1, batch)
	require.NoError(t, err)

	latest := svc.LatestSummary()
	require.NotNil(t, latest)
	assert.Equal(t, 2, latest.RowsWritten)
	assert.Equal(t, 1, latest.RowsFailed)
}

func TestProcessBatchTotalWriteFailureDoesNotAffectNextBatch(t *testing.T) {
	scorer := &fakeScorer{scores: map[string]float64{"a": 0.5}}
	broken := true
	sentimentRepo := &fakeSentimentRepo{
		outcome: func(rows []entity.NewsSentiment) repository.WriteOutcome {
			if broken {
				return repository.WriteOutcome{Err: errors.New("connection refused")}
			}
			return repository.WriteOutcome{Written: len(rows)}
		},
	}
	summaryRepo := &fakeSummaryRepo{}
	svc := newTestOrchestrator(t, &fakeFeed{}, sentimentRepo, summaryRepo, scorer)

	batch := []entity.ArticleRecord{{Title: "a", Company: "A"}}

	err := svc.ProcessBatch(context.Background(), 1, batch)
	require.Error(t, err)

	// The failed batch is discarded; the next tick processes normally.
	broken = false
	err = svc.ProcessBatch(context.Background(), 2, batch)
	require.NoError(t, err)
	assert.Equal(t, 2, sentimentRepo.writeCalls)
}

func TestProcessBatchSummaryPublishFailureIsNonFatal(t *testing.T) {
	scorer := &fakeScorer{scores: map[string]float64{"a": 0.5}}
	sentimentRepo := &fakeSentimentRepo{}
	summaryRepo := &fakeSummaryRepo{err: errors.New("stream unavailable")}
	svc := newTestOrchestrator(t, &fakeFeed{}, sentimentRepo, summaryRepo, scorer)

	err := svc.ProcessBatch(context.Background(), 1, []entity.ArticleRecord{{Title: "a", Company: "A"}})

	require.NoError(t, err)
	assert.Equal(t, 1, sentimentRepo.writeCalls)
}

func TestProcessBatchUnscoredArticlesAreNotPersisted(t *testing.T) {
	scorer := &fakeScorer{scores: map[string]float64{"scored": 0.5}}
	sentimentRepo := &fakeSentimentRepo{}
	svc := newTestOrchestrator(t, &fakeFeed{}, sentimentRepo, &fakeSummaryRepo{}, scorer)

	batch := []entity.ArticleRecord{
		{Title: "scored", Company: "A"},
		{Company: "B"}, // no text at all
	}

	err := svc.ProcessBatch(context.Background(), 1, batch)
	require.NoError(t, err)

	require.Equal(t, 1, sentimentRepo.writeCalls)
	require.Len(t, sentimentRepo.written[0], 1)
	assert.Equal(t, "A", sentimentRepo.written[0][0].Company)
}

type slowScorer struct {
	delay       time.Duration
	inFlight    atomic.Int64
	maxInFlight atomic.Int64
}

func (s *slowScorer) ScoreText(_ context.Context, text string) (*float64, error) {
	if text == "" {
		return nil, nil
	}
	cur := s.inFlight.Add(1)
	for {
		max := s.maxInFlight.Load()
		if cur <= max || s.maxInFlight.CompareAndSwap(max, cur) {
			break
		}
	}
	time.Sleep(s.delay)
	s.inFlight.Add(-1)
	score := 0.5
	return &score, nil
}

type queueFeed struct {
	mu      sync.Mutex
	batches [][]entity.ArticleRecord
}

func (f *queueFeed) Drain() []entity.ArticleRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.batches) == 0 {
		return nil
	}
	batch := f.batches[0]
	f.batches = f.batches[1:]
	return batch
}

func TestTickNeverOverlapsInFlightBatch(t *testing.T) {
	scorer := &slowScorer{delay: 50 * time.Millisecond}
	feed := &queueFeed{batches: [][]entity.ArticleRecord{
		{{Title: "a", Company: "A"}},
		{{Title: "b", Company: "B"}},
		{{Title: "c", Company: "C"}},
		{{Title: "d", Company: "D"}},
	}}
	sentimentRepo := &fakeSentimentRepo{}

	cfg := testConfig()
	log := testLogger(t)
	normalizer := NewNormalizerService(cfg, scorer, log)
	svc := NewOrchestratorService(cfg, log, feed, normalizer, sentimentRepo, &fakeSummaryRepo{}).(*orchestratorService)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			svc.tick(context.Background())
		}()
	}
	wg.Wait()

	// Only one of the simultaneous ticks may win; the rest skip without
	// draining the feed or consuming a batch id.
	assert.Equal(t, int64(1), scorer.maxInFlight.Load())
	assert.Equal(t, 1, sentimentRepo.writeCalls)
	assert.Equal(t, uint64(1), svc.batchSeq)
	assert.Len(t, feed.batches, 3)
	assert.Equal(t, StateIdle, svc.State())
}

func TestSetupEnsuresSchemaAndIsRepeatable(t *testing.T) {
	sentimentRepo := &fakeSentimentRepo{}
	svc := newTestOrchestrator(t, &fakeFeed{}, sentimentRepo, &fakeSummaryRepo{}, &fakeScorer{})

	require.NoError(t, svc.Setup(context.Background()))
	require.NoError(t, svc.Setup(context.Background()))
	assert.Equal(t, 2, sentimentRepo.ensureCalls)
}

func TestSetupPropagatesSchemaFailure(t *testing.T) {
	sentimentRepo := &fakeSentimentRepo{ensureErr: errors.New("permission denied")}
	svc := newTestOrchestrator(t, &fakeFeed{}, sentimentRepo, &fakeSummaryRepo{}, &fakeScorer{})

	err := svc.Setup(context.Background())
	require.Error(t, err)
}

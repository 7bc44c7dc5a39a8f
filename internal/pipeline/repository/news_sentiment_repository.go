package repository

import (
	"context"
	"errors"
	"fmt"

	"golang-news-sentiment/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrEmptyCompany marks a row that cannot be keyed in the result store.
var ErrEmptyCompany = errors.New("company is empty")

// RowFailure records a single row that could not be written, with its cause.
type RowFailure struct {
	Row entity.NewsSentiment
	Err error
}

// WriteOutcome reports the result of persisting one batch of rows. Err is set
// only when the store was unreachable before any row was attempted.
type WriteOutcome struct {
	Written  int
	Failures []RowFailure
	Err      error
}

// TotalFailure reports whether no row could even be attempted.
func (o WriteOutcome) TotalFailure() bool {
	return o.Err != nil
}

// PartialFailure reports whether some, but not all, rows failed.
func (o WriteOutcome) PartialFailure() bool {
	return o.Err == nil && len(o.Failures) > 0
}

// NewsSentimentRepository persists scored articles to the result store.
type NewsSentimentRepository interface {
	EnsureSchema(ctx context.Context) error
	Write(ctx context.Context, rows []entity.NewsSentiment) WriteOutcome
}

const createNewsSentimentTable = `
CREATE TABLE IF NOT EXISTS news_sentiment (
	fetch_timestamp timestamptz NOT NULL,
	company text NOT NULL,
	title text,
	description text,
	title_sentiment double precision,
	description_sentiment double precision,
	overall_sentiment double precision,
	sentiment_label text,
	PRIMARY KEY (fetch_timestamp, company)
)`

type newsSentimentRepository struct {
	db       *gorm.DB
	writeRow func(ctx context.Context, row entity.NewsSentiment) error
}

// NewNewsSentimentRepository creates a new instance of NewsSentimentRepository.
func NewNewsSentimentRepository(db *gorm.DB) NewsSentimentRepository {
	r := &newsSentimentRepository{db: db}
	r.writeRow = r.upsertRow
	return r
}

// EnsureSchema creates the target table if it does not exist. Safe to call on
// every batch and across restarts.
func (r *newsSentimentRepository) EnsureSchema(ctx context.Context) error {
	if err := r.db.WithContext(ctx).Exec(createNewsSentimentTable).Error; err != nil {
		return fmt.Errorf("failed to create news_sentiment table: %w", err)
	}
	return nil
}

// Write persists each row independently. A failed row is recorded and skipped;
// it never aborts the remaining rows in the same call.
func (r *newsSentimentRepository) Write(ctx context.Context, rows []entity.NewsSentiment) WriteOutcome {
	var outcome WriteOutcome
	if len(rows) == 0 {
		return outcome
	}

	if err := r.ping(ctx); err != nil {
		outcome.Err = fmt.Errorf("result store unreachable: %w", err)
		return outcome
	}

	for _, row := range rows {
		if row.Company == "" {
			outcome.Failures = append(outcome.Failures, RowFailure{Row: row, Err: ErrEmptyCompany})
			continue
		}
		if err := r.writeRow(ctx, row); err != nil {
			outcome.Failures = append(outcome.Failures, RowFailure{Row: row, Err: err})
			continue
		}
		outcome.Written++
	}

	return outcome
}

func (r *newsSentimentRepository) ping(ctx context.Context) error {
	if r.db == nil {
		return nil
	}
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// upsertRow writes one row with last-write-wins semantics on the composite
// primary key.
func (r *newsSentimentRepository) upsertRow(ctx context.Context, row entity.NewsSentiment) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "fetch_timestamp"}, {Name: "company"}},
		UpdateAll: true,
	}).Create(&row).Error
}

package entity

import "time"

// SentimentLabel classifies an article's overall sentiment.
type SentimentLabel string

const (
	SentimentPositive SentimentLabel = "positive"
	SentimentNegative SentimentLabel = "negative"
	SentimentNeutral  SentimentLabel = "neutral"
)

// Direction selects which end of the sentiment range to rank by.
type Direction string

const (
	MostPositive Direction = "most_positive"
	MostNegative Direction = "most_negative"
)

// ArticleRecord represents one news item as delivered by the feed.
type ArticleRecord struct {
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Source         string    `json:"source"`
	URL            string    `json:"url"`
	PublishedAt    time.Time `json:"published_at"`
	FetchTimestamp time.Time `json:"fetch_timestamp"`
	Company        string    `json:"company"`
}

// ScoredArticle is an ArticleRecord plus its derived sentiment fields.
// A nil field sentiment means the text was absent or the scorer failed for it.
// Scored is false when neither field could be scored; such records carry no
// meaningful OverallSentiment and are excluded from aggregation and persistence.
type ScoredArticle struct {
	ArticleRecord
	TitleSentiment       *float64       `json:"title_sentiment,omitempty"`
	DescriptionSentiment *float64       `json:"description_sentiment,omitempty"`
	OverallSentiment     float64        `json:"overall_sentiment"`
	Label                SentimentLabel `json:"sentiment_label"`
	Scored               bool           `json:"scored"`
}

// CompanyAggregate holds per-company sentiment statistics over one batch.
type CompanyAggregate struct {
	Company       string  `json:"company"`
	AvgSentiment  float64 `json:"avg_sentiment"`
	ArticleCount  int     `json:"article_count"`
	PositiveRatio float64 `json:"positive_ratio"`
	NegativeRatio float64 `json:"negative_ratio"`
}

// ArticleHighlight is the reporting view of an extremal article.
type ArticleHighlight struct {
	Company          string  `json:"company"`
	Title            string  `json:"title"`
	OverallSentiment float64 `json:"overall_sentiment"`
}

// BatchSummary captures the outcome of one processed batch for operators and
// downstream consumers.
type BatchSummary struct {
	BatchID      uint64             `json:"batch_id"`
	ReceivedAt   time.Time          `json:"received_at"`
	ArticleCount int                `json:"article_count"`
	ScoredCount  int                `json:"scored_count"`
	Aggregates   []CompanyAggregate `json:"aggregates"`
	TopPositive  []ArticleHighlight `json:"top_positive"`
	TopNegative  []ArticleHighlight `json:"top_negative"`
	RowsWritten  int                `json:"rows_written"`
	RowsFailed   int                `json:"rows_failed"`
}

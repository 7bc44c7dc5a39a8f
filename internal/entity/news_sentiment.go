package entity

import "time"

// NewsSentiment is the durable form of a scored article. The composite primary
// key (fetch_timestamp, company) gives last-write-wins semantics on collision.
type NewsSentiment struct {
	FetchTimestamp       time.Time `gorm:"column:fetch_timestamp;primaryKey" json:"fetch_timestamp"`
	Company              string    `gorm:"primaryKey;not null" json:"company"`
	Title                string    `json:"title"`
	Description          string    `json:"description"`
	TitleSentiment       *float64  `json:"title_sentiment,omitempty"`
	DescriptionSentiment *float64  `json:"description_sentiment,omitempty"`
	OverallSentiment     float64   `json:"overall_sentiment"`
	SentimentLabel       string    `json:"sentiment_label"`
}

// TableName specifies the table name for the NewsSentiment model.
func (NewsSentiment) TableName() string {
	return "news_sentiment"
}

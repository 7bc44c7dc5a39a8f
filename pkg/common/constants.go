package common

const (
	// RedisChannelStockNews is the pub/sub channel carrying raw article records.
	RedisChannelStockNews = "stock.news"

	// RedisStreamBatchSummary carries per-batch sentiment summaries for
	// downstream consumers.
	RedisStreamBatchSummary = "news.sentiment.summary"
)

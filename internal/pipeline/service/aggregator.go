package service

import (
	"sort"

	"golang-news-sentiment/internal/entity"
)

// Aggregate computes per-company statistics over one batch. Records that could
// not be scored or carry no company are skipped. Grouping is order-independent;
// the result is sorted by company only to keep reporting output stable.
func Aggregate(batch []entity.ScoredArticle) []entity.CompanyAggregate {
	type accumulator struct {
		sum      float64
		count    int
		positive int
		negative int
	}

	groups := make(map[string]*accumulator)
	for _, article := range batch {
		if !article.Scored || article.Company == "" {
			continue
		}
		acc, ok := groups[article.Company]
		if !ok {
			acc = &accumulator{}
			groups[article.Company] = acc
		}
		acc.sum += article.OverallSentiment
		acc.count++
		switch article.Label {
		case entity.SentimentPositive:
			acc.positive++
		case entity.SentimentNegative:
			acc.negative++
		}
	}

	aggregates := make([]entity.CompanyAggregate, 0, len(groups))
	for company, acc := range groups {
		aggregates = append(aggregates, entity.CompanyAggregate{
			Company:       company,
			AvgSentiment:  acc.sum / float64(acc.count),
			ArticleCount:  acc.count,
			PositiveRatio: float64(acc.positive) / float64(acc.count),
			NegativeRatio: float64(acc.negative) / float64(acc.count),
		})
	}

	sort.Slice(aggregates, func(i, j int) bool {
		return aggregates[i].Company < aggregates[j].Company
	})

	return aggregates
}

// TopK returns up to k scored articles ranked by overall sentiment, descending
// for MostPositive and ascending for MostNegative. The sort is stable: tied
// articles keep their original batch order. Unscored records are excluded.
func TopK(batch []entity.ScoredArticle, k int, direction entity.Direction) []entity.ScoredArticle {
	if k <= 0 {
		return nil
	}

	ranked := make([]entity.ScoredArticle, 0, len(batch))
	for _, article := range batch {
		if article.Scored {
			ranked = append(ranked, article)
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if direction == entity.MostNegative {
			return ranked[i].OverallSentiment < ranked[j].OverallSentiment
		}
		return ranked[i].OverallSentiment > ranked[j].OverallSentiment
	})

	if len(ranked) > k {
		ranked = ranked[:k]
	}
	return ranked
}

// Highlights converts ranked articles into their reporting view.
func Highlights(articles []entity.ScoredArticle) []entity.ArticleHighlight {
	highlights := make([]entity.ArticleHighlight, 0, len(articles))
	for _, article := range articles {
		highlights = append(highlights, entity.ArticleHighlight{
			Company:          article.Company,
			Title:            article.Title,
			OverallSentiment: article.OverallSentiment,
		})
	}
	return highlights
}

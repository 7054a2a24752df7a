// Package impact scores news articles by their observed market effect and
// orders them for presentation.
package impact

import (
	"math"
	"sort"

	"github.com/pulseworks/marketpulse/pkg/models"
	"github.com/pulseworks/marketpulse/pkg/utils"
)

const (
	moveWeight      = 0.7
	sentimentWeight = 0.3
)

// Score combines the largest absolute daily move among the affected symbols
// with the strength of the article's sentiment. Symbols without metrics
// contribute nothing to the move term, so an article with only failed
// lookups is ranked on sentiment alone.
func Score(metrics map[string]*models.StockMetrics, sentiment models.Sentiment) float64 {
	var maxMove float64
	for _, m := range metrics {
		if m == nil {
			continue
		}
		if move := math.Abs(m.DailyChangePct); move > maxMove {
			maxMove = move
		}
	}
	return maxMove*moveWeight + math.Abs(sentiment.Polarity)*sentimentWeight
}

// Rank orders impacts by score, highest first. Ties break toward the more
// recently published article, then lexicographically on the normalized
// title, so repeated runs list equal-impact items in the same order.
func Rank(impacts []models.NewsImpact) {
	sort.SliceStable(impacts, func(i, j int) bool {
		if impacts[i].ImpactScore != impacts[j].ImpactScore {
			return impacts[i].ImpactScore > impacts[j].ImpactScore
		}
		ti, tj := impacts[i].Article.PublishedAt, impacts[j].Article.PublishedAt
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return utils.NormalizeTitle(impacts[i].Article.Title) < utils.NormalizeTitle(impacts[j].Article.Title)
	})
}

// Categorize assigns an impact level from a points scale. Price movement
// dominates; sentiment strength can lift a borderline article one band.
func Categorize(metrics map[string]*models.StockMetrics, sentiment models.Sentiment) models.ImpactLevel {
	var maxMove float64
	for _, m := range metrics {
		if m == nil {
			continue
		}
		if move := math.Abs(m.DailyChangePct); move > maxMove {
			maxMove = move
		}
	}

	points := 0
	switch {
	case maxMove > 5:
		points += 3
	case maxMove > 2:
		points += 2
	case maxMove > 1:
		points++
	}

	polarity := math.Abs(sentiment.Polarity)
	switch {
	case polarity > 0.6:
		points += 2
	case polarity > 0.3:
		points++
	}

	switch {
	case points >= 4:
		return models.ImpactHigh
	case points >= 2:
		return models.ImpactMedium
	default:
		return models.ImpactLow
	}
}

package impact

import (
	"math"
	"testing"
	"time"

	"github.com/pulseworks/marketpulse/pkg/models"
)

func metricsWithMove(pct float64) map[string]*models.StockMetrics {
	return map[string]*models.StockMetrics{
		"AAPL": {Symbol: "AAPL", DailyChangePct: pct},
	}
}

func TestScore(t *testing.T) {
	metrics := map[string]*models.StockMetrics{
		"AAPL": {Symbol: "AAPL", DailyChangePct: -4.2},
		"MSFT": {Symbol: "MSFT", DailyChangePct: 1.1},
	}
	s := Score(metrics, models.Sentiment{Polarity: -0.5})

	// Largest absolute move wins regardless of sign.
	want := 4.2*0.7 + 0.5*0.3
	if math.Abs(s-want) > 1e-12 {
		t.Errorf("score = %v, want %v", s, want)
	}
}

func TestScoreNoMetrics(t *testing.T) {
	s := Score(nil, models.Sentiment{Polarity: 0.8})
	if math.Abs(s-0.8*0.3) > 1e-12 {
		t.Errorf("sentiment-only score = %v, want %v", s, 0.8*0.3)
	}

	withNil := map[string]*models.StockMetrics{"AAPL": nil}
	if got := Score(withNil, models.Sentiment{}); got != 0 {
		t.Errorf("nil metrics entry must contribute nothing, got %v", got)
	}
}

func TestRank(t *testing.T) {
	at := time.Date(2025, 6, 11, 12, 0, 0, 0, time.UTC)
	impacts := []models.NewsImpact{
		{Article: models.Article{Title: "minor", PublishedAt: at}, ImpactScore: 0.3},
		{Article: models.Article{Title: "major", PublishedAt: at}, ImpactScore: 4.2},
		{Article: models.Article{Title: "middle", PublishedAt: at}, ImpactScore: 1.5},
	}
	Rank(impacts)

	want := []string{"major", "middle", "minor"}
	for i, w := range want {
		if impacts[i].Article.Title != w {
			t.Errorf("position %d: got %q, want %q", i, impacts[i].Article.Title, w)
		}
	}
}

func TestRankTieBreaks(t *testing.T) {
	earlier := time.Date(2025, 6, 11, 9, 0, 0, 0, time.UTC)
	later := earlier.Add(3 * time.Hour)
	impacts := []models.NewsImpact{
		{Article: models.Article{Title: "bbb", PublishedAt: earlier}, ImpactScore: 1},
		{Article: models.Article{Title: "Zed story", PublishedAt: later}, ImpactScore: 1},
		{Article: models.Article{Title: "Alpha story", PublishedAt: later}, ImpactScore: 1},
	}
	Rank(impacts)

	// Newer articles first; same timestamp falls back to title order.
	want := []string{"Alpha story", "Zed story", "bbb"}
	for i, w := range want {
		if impacts[i].Article.Title != w {
			t.Errorf("position %d: got %q, want %q", i, impacts[i].Article.Title, w)
		}
	}
}

func TestCategorize(t *testing.T) {
	cases := []struct {
		name     string
		move     float64
		polarity float64
		want     models.ImpactLevel
	}{
		{"big move strong sentiment", 6, 0.7, models.ImpactHigh},
		{"big move alone", 6, 0, models.ImpactMedium}, // 3 points caps at medium
		{"moderate move strong sentiment", 3, 0.7, models.ImpactHigh},
		{"moderate move mild sentiment", 3, 0.4, models.ImpactMedium},
		{"small move alone", 1.5, 0, models.ImpactLow},
		{"small move mild sentiment", 1.5, 0.4, models.ImpactMedium},
		{"sentiment alone", 0, 0.7, models.ImpactMedium},
		{"nothing", 0.5, 0.1, models.ImpactLow},
	}
	for _, c := range cases {
		got := Categorize(metricsWithMove(c.move), models.Sentiment{Polarity: c.polarity})
		if got != c.want {
			t.Errorf("%s: got %s, want %s", c.name, got, c.want)
		}
	}
}

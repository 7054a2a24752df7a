// Package models defines the core data structures used throughout MarketPulse.
package models

import "time"

// Article represents a single news article as produced by a source adapter.
// The pipeline treats articles as read-only input; identity for dedup
// purposes is the whitespace-normalized, lower-cased title.
type Article struct {
	Title       string    `json:"title"`
	Summary     string    `json:"summary,omitempty"`
	URL         string    `json:"url"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"published_at"` // defaults to fetch time when the source carries none
}

// Assessment is the three-way sentiment classification.
type Assessment string

const (
	AssessmentPositive Assessment = "positive"
	AssessmentNeutral  Assessment = "neutral"
	AssessmentNegative Assessment = "negative"

	// AssessmentError marks a sentiment whose computation failed, as opposed
	// to a text that genuinely scored neutral.
	AssessmentError Assessment = "error"
)

// Sentiment holds polarity/subjectivity scores for a text span.
// Polarity ranges -1..+1, subjectivity 0..1. Never mutated after creation.
type Sentiment struct {
	Polarity     float64    `json:"polarity"`
	Subjectivity float64    `json:"subjectivity"`
	Assessment   Assessment `json:"assessment"`
}

// Failed reports whether this sentiment is an analysis failure rather than
// a computed neutral score.
func (s Sentiment) Failed() bool { return s.Assessment == AssessmentError }

// NewsImpact is the output unit of the pipeline: one processed article with
// the symbols it affects, the blended sentiment, per-symbol metrics and the
// scalar impact score. Created once, never mutated.
type NewsImpact struct {
	Article     Article                  `json:"article"`
	Symbols     []string                 `json:"affected_stocks"`
	Sentiment   Sentiment                `json:"sentiment"`
	Metrics     map[string]*StockMetrics `json:"stock_data"`
	ImpactScore float64                  `json:"impact_score"`
	ImpactLevel ImpactLevel              `json:"impact_level"`
	Timestamp   time.Time                `json:"timestamp"`
}

// ImpactLevel buckets results for display-oriented grouping.
type ImpactLevel string

const (
	ImpactHigh   ImpactLevel = "high"
	ImpactMedium ImpactLevel = "medium"
	ImpactLow    ImpactLevel = "low"
)

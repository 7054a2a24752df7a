// Package sentiment implements a deterministic lexicon-based sentiment
// scorer for financial headlines and article bodies. Scores are polarity
// (-1..+1) and subjectivity (0..1); classification thresholds differ between
// single-text scoring and the title-weighted article blend.
package sentiment

import (
	"strings"
	"unicode/utf8"

	"github.com/pulseworks/marketpulse/pkg/models"
	"github.com/pulseworks/marketpulse/pkg/utils"
)

// Classification thresholds. Single texts use the wider ±0.2 band; the
// title/body blend uses ±0.15. The asymmetry is part of the contract and
// must not be unified.
const (
	SingleThreshold   = 0.2
	CombinedThreshold = 0.15
)

// Blend weights for article scoring: the headline dominates.
const (
	titleWeight = 0.7
	fullWeight  = 0.3
)

// wordScore carries a term's polarity and subjectivity contribution.
type wordScore struct {
	polarity     float64
	subjectivity float64
}

// lexicon maps lowercase terms (including multi-word phrases) to scores.
// Matching is substring-based over the lowered text, so inflected forms
// ("plunges", "concerns") hit their stem entries.
var lexicon = map[string]wordScore{
	// bullish
	"surge":        {0.7, 0.9},
	"soar":         {0.8, 0.9},
	"rally":        {0.6, 0.8},
	"jump":         {0.5, 0.7},
	"gain":         {0.4, 0.6},
	"rise":         {0.4, 0.5},
	"climb":        {0.4, 0.5},
	"profit":       {0.4, 0.5},
	"growth":       {0.4, 0.5},
	"strong":       {0.4, 0.7},
	"beat":         {0.5, 0.6},
	"upgrade":      {0.6, 0.7},
	"bullish":      {0.7, 0.9},
	"outperform":   {0.6, 0.8},
	"recovery":     {0.5, 0.6},
	"positive":     {0.4, 0.7},
	"upbeat":       {0.5, 0.8},
	"record high":  {0.7, 0.8},
	"all-time high": {0.7, 0.8},
	"breakout":     {0.6, 0.8},
	"dividend":     {0.3, 0.3},
	"expansion":    {0.4, 0.5},

	// bearish
	"crash":         {-0.8, 0.9},
	"plunge":        {-0.7, 0.8},
	"plummet":       {-0.8, 0.9},
	"slump":         {-0.6, 0.7},
	"tumble":        {-0.6, 0.7},
	"fall":          {-0.4, 0.5},
	"drop":          {-0.4, 0.5},
	"decline":       {-0.5, 0.5},
	"loss":          {-0.4, 0.5},
	"weak":          {-0.4, 0.6},
	"downgrade":     {-0.6, 0.7},
	"bearish":       {-0.7, 0.9},
	"underperform":  {-0.6, 0.8},
	"miss":          {-0.5, 0.6},
	"fraud":         {-0.8, 0.9},
	"investigation": {-0.5, 0.6},
	"warning":       {-0.5, 0.7},
	"concern":       {-0.3, 0.6},
	"selloff":       {-0.7, 0.8},
	"bankrupt":      {-0.9, 0.9},
	"lawsuit":       {-0.5, 0.6},
	"negative":      {-0.4, 0.7},
	"correction":    {-0.5, 0.5},
}

// Score computes sentiment for a single text span. It never fails: input
// that cannot be analyzed (invalid UTF-8) yields a zero sentiment with
// AssessmentError so callers can tell failure from a genuine neutral.
// Classification uses the ±0.2 single-text thresholds.
func Score(text string) models.Sentiment {
	if !utf8.ValidString(text) {
		return models.Sentiment{Assessment: models.AssessmentError}
	}

	polarity, subjectivity := analyze(text)
	return models.Sentiment{
		Polarity:     polarity,
		Subjectivity: subjectivity,
		Assessment:   Assess(polarity, SingleThreshold),
	}
}

// ScoreArticle computes the title-weighted blend for an article: sentiment
// of the headline alone and of headline+body, blended 0.7/0.3 for both
// polarity and subjectivity, classified with the tighter ±0.15 threshold.
func ScoreArticle(title, body string) models.Sentiment {
	titleScore := Score(title)
	fullScore := Score(strings.TrimSpace(title + " " + body))
	if titleScore.Failed() || fullScore.Failed() {
		return models.Sentiment{Assessment: models.AssessmentError}
	}

	polarity := titleScore.Polarity*titleWeight + fullScore.Polarity*fullWeight
	subjectivity := titleScore.Subjectivity*titleWeight + fullScore.Subjectivity*fullWeight
	return models.Sentiment{
		Polarity:     polarity,
		Subjectivity: subjectivity,
		Assessment:   Assess(polarity, CombinedThreshold),
	}
}

// Assess maps a polarity to the three-way classification for the given
// threshold.
func Assess(polarity, threshold float64) models.Assessment {
	switch {
	case polarity > threshold:
		return models.AssessmentPositive
	case polarity < -threshold:
		return models.AssessmentNegative
	default:
		return models.AssessmentNeutral
	}
}

// analyze averages the lexicon scores of all matched terms. No matches
// yields a true zero (neutral, fully objective).
func analyze(text string) (polarity, subjectivity float64) {
	lower := strings.ToLower(text)

	var polSum, subjSum float64
	matches := 0
	for term, ws := range lexicon {
		if strings.Contains(lower, term) {
			polSum += ws.polarity
			subjSum += ws.subjectivity
			matches++
		}
	}
	if matches == 0 {
		return 0, 0
	}

	polarity = utils.Clampf(polSum/float64(matches), -1, 1)
	subjectivity = utils.Clampf(subjSum/float64(matches), 0, 1)
	return polarity, subjectivity
}

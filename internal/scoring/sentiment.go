// Package scoring provides the pure scoring functions consumed by the
// retrieval pipeline: a sentiment scorer and a target-language gate. Both
// are deterministic and side-effect free; construction is the only cost, so
// callers build one instance at startup and share it.
package scoring

import govader "github.com/jonreiter/govader"

// Analyzer scores review texts on a normalized 0–10 scale using VADER
// compound polarity. Identical input always yields an identical score.
type Analyzer struct {
	vader *govader.SentimentIntensityAnalyzer
}

// NewAnalyzer builds the VADER lexicon once and returns a shared scorer.
func NewAnalyzer() *Analyzer {
	return &Analyzer{vader: govader.NewSentimentIntensityAnalyzer()}
}

// Score returns the sentiment of text rescaled from VADER's [-1, 1]
// compound range onto [0, 10]. Neutral text lands at 5.
func (a *Analyzer) Score(text string) float64 {
	compound := a.vader.PolarityScores(text).Compound
	return (compound + 1) * 5
}

// Scorer is the pipeline's view of a sentiment function.
type Scorer interface {
	Score(text string) float64
}

// Average returns the mean score over texts, or exactly 0.0 for an empty
// slice. The zero fallback is part of the contract: aggregate sentiment is
// never NaN and never computed over an empty set implicitly.
func Average(s Scorer, texts []string) float64 {
	if len(texts) == 0 {
		return 0.0
	}
	var sum float64
	for _, t := range texts {
		sum += s.Score(t)
	}
	return sum / float64(len(texts))
}

package scoring

import (
	"strings"

	"github.com/pemistahl/lingua-go"
)

// Detector classifies review texts against a fixed, small candidate set and
// reports whether a text is in the target ingestion language. It is applied
// only while ingesting provider results (tier 3); cached and stored reviews
// were already filtered when they were written.
type Detector struct {
	target   lingua.Language
	detector lingua.LanguageDetector
}

// NewEnglishDetector returns a detector that keeps English reviews.
// The candidate set is deliberately tiny: distinguishing English from the
// other languages the provider commonly returns is all the pipeline needs,
// and fewer candidates keep classification fast and confident.
func NewEnglishDetector() *Detector {
	langs := []lingua.Language{
		lingua.English,
		lingua.Spanish,
		lingua.French,
		lingua.German,
	}
	return &Detector{
		target: lingua.English,
		detector: lingua.NewLanguageDetectorBuilder().
			FromLanguages(langs...).
			Build(),
	}
}

// IsTargetLanguage reports whether text is classified as the target
// language. Blank text is never in the target language.
func (d *Detector) IsTargetLanguage(text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}
	lang, ok := d.detector.DetectLanguageOf(text)
	return ok && lang == d.target
}

// LanguageFilter is the pipeline's view of the language gate.
type LanguageFilter interface {
	IsTargetLanguage(text string) bool
}

// FilterReviews keeps texts that are non-blank and in the target language,
// preserving order.
func FilterReviews(f LanguageFilter, texts []string) []string {
	out := make([]string, 0, len(texts))
	for _, t := range texts {
		if strings.TrimSpace(t) == "" {
			continue
		}
		if !f.IsTargetLanguage(t) {
			continue
		}
		out = append(out, t)
	}
	return out
}

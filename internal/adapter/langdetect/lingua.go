package langdetect

import (
	"strings"

	"github.com/pemistahl/lingua-go"
)

// Detector wraps a lingua language detector restricted to the languages
// the assistant localizes for. Restricting the set keeps detection fast
// and avoids absurd guesses on short chat messages.
type Detector struct {
	detector lingua.LanguageDetector
}

// New builds the detector. Construction is relatively expensive (language
// models are loaded lazily but the builder is not free), so build once and
// inject.
func New() *Detector {
	languages := []lingua.Language{
		lingua.Korean,
		lingua.English,
		lingua.Japanese,
		lingua.Chinese,
		lingua.Spanish,
		lingua.French,
	}
	return &Detector{
		detector: lingua.NewLanguageDetectorBuilder().
			FromLanguages(languages...).
			Build(),
	}
}

// Detect returns a lowercase ISO 639-1 code. ok is false when lingua is
// inconclusive, which happens on very short or mixed input.
func (d *Detector) Detect(text string) (string, bool) {
	lang, ok := d.detector.DetectLanguageOf(text)
	if !ok {
		return "", false
	}
	return strings.ToLower(lang.IsoCode639_1().String()), true
}

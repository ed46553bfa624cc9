package port

// LanguageDetector guesses the language of a text. ok is false when the
// detector is inconclusive, which is common for very short input.
type LanguageDetector interface {
	Detect(text string) (code string, ok bool)
}

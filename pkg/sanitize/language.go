package sanitize

import (
	"strings"
	"sync"

	"github.com/pemistahl/lingua-go"
)

// candidateLanguages covers the languages recipe sites in scope publish in.
var candidateLanguages = []lingua.Language{
	lingua.Swedish,
	lingua.English,
	lingua.Danish,
	lingua.Bokmal,
	lingua.German,
	lingua.French,
	lingua.Spanish,
	lingua.Italian,
	lingua.Finnish,
}

var (
	detectorOnce sync.Once
	detector     lingua.LanguageDetector
)

// DetectLanguage returns the lowercase ISO 639-1 code of the text's language,
// or an empty string when detection is inconclusive. The detector is built
// lazily; construction is expensive.
func DetectLanguage(text string) string {
	detectorOnce.Do(func() {
		detector = lingua.NewLanguageDetectorBuilder().
			FromLanguages(candidateLanguages...).
			Build()
	})

	lang, ok := detector.DetectLanguageOf(text)
	if !ok {
		return ""
	}
	return strings.ToLower(lang.IsoCode639_1().String())
}

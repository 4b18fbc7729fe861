// Package langdetect tags canonical item text with its language.
package langdetect

import (
	"strings"

	"github.com/pemistahl/lingua-go"
)

// Detector wraps a lingua detector restricted to the languages that appear
// in translation-review payloads.
type Detector struct {
	detector lingua.LanguageDetector
}

// New builds a detector for Chinese and English. Model loading is lazy and
// happens on the first call to Tag.
func New() *Detector {
	d := lingua.NewLanguageDetectorBuilder().
		FromLanguages(lingua.Chinese, lingua.English).
		Build()
	return &Detector{detector: d}
}

// Tag returns the lower-case ISO 639-1 code of text, or "" when unknown.
func (d *Detector) Tag(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	lang, ok := d.detector.DetectLanguageOf(text)
	if !ok {
		return ""
	}
	return strings.ToLower(lang.IsoCode639_1().String())
}

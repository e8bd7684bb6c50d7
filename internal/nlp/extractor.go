package nlp

import (
	"regexp"
	"strings"
)

// EntityExtractor is the tagging collaborator consumed by the matcher: it maps
// substrings of the input text to tag labels. Implementations must never fail
// hard; an extractor that cannot run returns an empty map.
type EntityExtractor interface {
	ExtractEntities(text string) map[string]string
}

// RegexExtractor is the default extractor: a handful of compiled patterns for
// the technical entities that matter to resource matching. It stands in for a
// heavier on-device tagger and keeps the process self-contained.
type RegexExtractor struct {
	patterns map[string]*regexp.Regexp
}

func NewRegexExtractor() *RegexExtractor {
	return &RegexExtractor{
		patterns: map[string]*regexp.Regexp{
			"url":      regexp.MustCompile(`https?://[^\s]+`),
			"file":     regexp.MustCompile(`\b[\w./-]+\.(go|js|ts|py|rs|java|sql|yaml|json|md)\b`),
			"command":  regexp.MustCompile(`\b(npm|pip|cargo|docker|kubectl|git|make)\s+\w+`),
			"database": regexp.MustCompile(`(?i)\b(postgres(ql)?|mysql|sqlite|mongodb|redis)\b`),
			"language": regexp.MustCompile(`(?i)\b(golang|typescript|javascript|python|rust)\b`),
		},
	}
}

func (e *RegexExtractor) ExtractEntities(text string) map[string]string {
	entities := make(map[string]string)
	for tag, re := range e.patterns {
		for _, m := range re.FindAllString(text, 5) {
			entities[strings.TrimSpace(m)] = tag
		}
	}
	return entities
}

// NoopExtractor is used when NLP-based extraction is disabled.
type NoopExtractor struct{}

func (NoopExtractor) ExtractEntities(string) map[string]string {
	return map[string]string{}
}

package resource

import (
	"fmt"
	"strings"
	"time"
)

// Intent is the coarse conversational intent detected from free text.
type Intent string

const (
	IntentQuestion Intent = "question"
	IntentCreation Intent = "creation"
	IntentDebug    Intent = "debugging"
	IntentSearch   Intent = "search"
	IntentLearning Intent = "learning"
	IntentGeneral  Intent = "general"
)

// MatchContext is a snapshot taken at match time.
type MatchContext struct {
	ConversationID    string
	MessageContent    string
	DetectedIntent    Intent
	ExtractedEntities map[string]string
	TimeOfDay         string
}

// MatchReason says why a resource was suggested. It is a closed sum: one
// variant per matching strategy, each carrying only what that strategy knows.
type MatchReason interface {
	matchReason()
	// Describe renders the reason for display. Pure formatting, no state.
	Describe() string
}

// TopicMention: the conversation mentioned a topic the resource covers.
type TopicMention struct{ Topic string }

// KeywordMatch: tokenized keywords mapped onto capability categories.
type KeywordMatch struct{ Keywords []string }

// CapabilityNeed: the text implies a needed capability category.
type CapabilityNeed struct{ Category CapabilityCategory }

// TaskType: the detected intent maps to a task the resource helps with.
type TaskType struct{ Task Intent }

// LibraryReference: a well-known library or framework name appeared verbatim.
type LibraryReference struct{ Library string }

// PatternDetected: a heuristic phrasing pattern fired.
type PatternDetected struct{ Pattern string }

// ContextualRelevance: relevance inferred from surrounding conversation context.
type ContextualRelevance struct{ Note string }

// UserPreference: the user has marked the resource as a favorite.
type UserPreference struct{}

// FrequentUse: the user keeps coming back to this resource.
type FrequentUse struct{ UsageCount int }

func (TopicMention) matchReason()        {}
func (KeywordMatch) matchReason()        {}
func (CapabilityNeed) matchReason()      {}
func (TaskType) matchReason()            {}
func (LibraryReference) matchReason()    {}
func (PatternDetected) matchReason()     {}
func (ContextualRelevance) matchReason() {}
func (UserPreference) matchReason()      {}
func (FrequentUse) matchReason()         {}

func (r TopicMention) Describe() string { return fmt.Sprintf("mentions %s", r.Topic) }
func (r KeywordMatch) Describe() string {
	return fmt.Sprintf("matches keywords: %s", strings.Join(r.Keywords, ", "))
}
func (r CapabilityNeed) Describe() string { return fmt.Sprintf("provides %s capability", r.Category) }
func (r TaskType) Describe() string       { return fmt.Sprintf("helps with %s tasks", r.Task) }
func (r LibraryReference) Describe() string {
	return fmt.Sprintf("documentation for %s", r.Library)
}
func (r PatternDetected) Describe() string     { return fmt.Sprintf("detected pattern: %s", r.Pattern) }
func (r ContextualRelevance) Describe() string { return r.Note }
func (UserPreference) Describe() string        { return "one of your favorites" }
func (r FrequentUse) Describe() string {
	return fmt.Sprintf("used %d times recently", r.UsageCount)
}

// ResourceMatch is an ephemeral scored suggestion. Only Confidence changes
// after creation (boost application); everything else is fixed.
type ResourceMatch struct {
	ID             string
	Resource       DiscoveredResource
	Reason         MatchReason
	Confidence     float64
	Context        MatchContext
	SuggestedTools []DiscoveredTool
	Timestamp      time.Time
}

package matcher

import (
	"context"
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/mcp-scout/mcp-scout/internal/index"
	"github.com/mcp-scout/mcp-scout/internal/nlp"
	"github.com/mcp-scout/mcp-scout/internal/prefs"
	"github.com/mcp-scout/mcp-scout/internal/registry"
	"github.com/mcp-scout/mcp-scout/internal/resource"
	"github.com/mcp-scout/mcp-scout/pkg/config"
)

// Matcher scores free-text context against the discovery index and surfaces
// a bounded, ranked suggestion list. It is a pure read path over the index
// and the preference store; any number of callers may run it concurrently.
type Matcher struct {
	index     *index.Index
	prefs     *prefs.Store
	extractor nlp.EntityExtractor
	cfg       config.MatchingConfig
	logger    *slog.Logger

	// urlPattern is compiled once; a compile failure just disables the URL
	// sub-check rather than failing matching.
	urlPattern *regexp.Regexp

	isMatching atomic.Bool

	mu          sync.RWMutex
	suggestions []resource.ResourceMatch
	history     []resource.ResourceMatch
}

func New(ix *index.Index, prefStore *prefs.Store, extractor nlp.EntityExtractor, cfg config.MatchingConfig, logger *slog.Logger) *Matcher {
	urlPattern, err := regexp.Compile(`https?://[^\s]+|www\.[^\s]+`)
	if err != nil {
		logger.Warn("URL pattern failed to compile, URL matching disabled", "error", err)
		urlPattern = nil
	}

	return &Matcher{
		index:      ix,
		prefs:      prefStore,
		extractor:  extractor,
		cfg:        cfg,
		logger:     logger,
		urlPattern: urlPattern,
	}
}

// IsMatching reports whether an analysis is currently running, for UI feedback.
func (m *Matcher) IsMatching() bool {
	return m.isMatching.Load()
}

// CurrentSuggestions returns the most recently published suggestion list.
func (m *Matcher) CurrentSuggestions() []resource.ResourceMatch {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]resource.ResourceMatch, len(m.suggestions))
	copy(out, m.suggestions)
	return out
}

// RecentMatches returns the rolling match history, newest first.
func (m *Matcher) RecentMatches() []resource.ResourceMatch {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]resource.ResourceMatch, len(m.history))
	copy(out, m.history)
	return out
}

// RecordUsage feeds a usage outcome back into the learning signals.
func (m *Matcher) RecordUsage(ctx context.Context, resourceID string, wasHelpful bool) {
	m.prefs.RecordUsage(ctx, resourceID, wasHelpful)
}

// RecordPreference marks or unmarks a resource as a favorite.
func (m *Matcher) RecordPreference(ctx context.Context, resourceID string, isFavorite bool) {
	m.prefs.RecordPreference(ctx, resourceID, isFavorite)
}

// AnalyzeAndMatch runs every matching strategy against the text, applies
// learned boosts, deduplicates keeping the first match per resource in
// strategy order, ranks by confidence and truncates. Blank input and
// disabled matching return an empty list with no side effects.
func (m *Matcher) AnalyzeAndMatch(ctx context.Context, text, conversationID string, intent resource.Intent) []resource.ResourceMatch {
	if !m.cfg.Enabled || strings.TrimSpace(text) == "" {
		return []resource.ResourceMatch{}
	}

	m.isMatching.Store(true)
	defer m.isMatching.Store(false)

	matchCtx := m.buildContext(text, conversationID, intent)
	lower := strings.ToLower(text)

	// Strategy order matters: dedup keeps the first match appended.
	var matches []resource.ResourceMatch
	matches = append(matches, m.matchKeywords(lower, matchCtx)...)
	matches = append(matches, m.matchLibraryReferences(lower, matchCtx)...)
	matches = append(matches, m.matchCapabilityNeeds(lower, matchCtx)...)
	matches = append(matches, m.matchPatterns(lower, matchCtx)...)

	matches = m.applyBoosts(matches)
	matches = dedupFirstSeen(matches)

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Confidence > matches[j].Confidence
	})

	var final []resource.ResourceMatch
	for _, match := range matches {
		if match.Confidence < m.cfg.MinConfidence {
			continue
		}
		final = append(final, match)
		if len(final) >= m.cfg.MaxSuggestions {
			break
		}
	}
	if final == nil {
		final = []resource.ResourceMatch{}
	}

	m.publish(final)

	m.logger.Debug("Analyzed text for resource matches",
		"candidates", len(matches),
		"suggestions", len(final),
		"intent", matchCtx.DetectedIntent)
	return final
}

func (m *Matcher) buildContext(text, conversationID string, intent resource.Intent) resource.MatchContext {
	if intent == "" {
		intent = detectIntent(text)
	}
	return resource.MatchContext{
		ConversationID:    conversationID,
		MessageContent:    text,
		DetectedIntent:    intent,
		ExtractedEntities: m.extractor.ExtractEntities(text),
		TimeOfDay:         timeOfDayBucket(time.Now()),
	}
}

// matchKeywords tokenizes the text and intersects it with the keyword table;
// any hits drive one index search whose confidence grows with the number of
// matched keywords, capped at 0.9.
func (m *Matcher) matchKeywords(lower string, matchCtx resource.MatchContext) []resource.ResourceMatch {
	tokens := strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	seen := make(map[string]struct{})
	var matched []string
	for _, tok := range tokens {
		if _, known := capabilityKeywords[tok]; !known {
			continue
		}
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		matched = append(matched, tok)
	}
	if len(matched) == 0 {
		return nil
	}

	confidence := 0.5 + 0.1*float64(len(matched))
	if confidence > 0.9 {
		confidence = 0.9
	}

	results := m.index.Search(strings.Join(matched, " "), index.SearchOptions{Limit: m.cfg.MaxSuggestions})
	var out []resource.ResourceMatch
	for _, r := range results {
		out = append(out, m.newMatch(r, resource.KeywordMatch{Keywords: matched}, confidence, matchCtx, nil))
	}
	return out
}

// matchLibraryReferences scans for well-known library names; every hit maps
// to the documentation service, restricted to its docs-flavored tools.
func (m *Matcher) matchLibraryReferences(lower string, matchCtx resource.MatchContext) []resource.ResourceMatch {
	docs, ok := m.index.GetResource(registry.Context7QualifiedName, resource.RegistryContext7)
	if !ok {
		return nil
	}

	var docTools []resource.DiscoveredTool
	for _, t := range docs.Tools {
		name := strings.ToLower(t.Name)
		if strings.Contains(name, "library") || strings.Contains(name, "docs") {
			docTools = append(docTools, t)
		}
	}

	var out []resource.ResourceMatch
	for _, lib := range knownLibraries {
		if !strings.Contains(lower, lib) {
			continue
		}
		out = append(out, m.newMatch(docs, resource.LibraryReference{Library: lib}, 0.85, matchCtx, docTools))
	}
	return out
}

// matchCapabilityNeeds collects the set of needed categories by plain
// substring containment and proposes up to three resources per category.
func (m *Matcher) matchCapabilityNeeds(lower string, matchCtx resource.MatchContext) []resource.ResourceMatch {
	needed := make(map[resource.CapabilityCategory]struct{})
	for keyword, category := range capabilityKeywords {
		if strings.Contains(lower, keyword) {
			needed[category] = struct{}{}
		}
	}
	if len(needed) == 0 {
		return nil
	}

	// Deterministic category order keeps dedup behavior reproducible.
	categories := make([]resource.CapabilityCategory, 0, len(needed))
	for cat := range needed {
		categories = append(categories, cat)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i] < categories[j] })

	var out []resource.ResourceMatch
	for _, cat := range categories {
		results := m.index.FindByCapability(cat)
		if len(results) > 3 {
			results = results[:3]
		}
		for _, r := range results {
			out = append(out, m.newMatch(r, resource.CapabilityNeed{Category: cat}, 0.6, matchCtx, nil))
		}
	}
	return out
}

// matchPatterns runs three independent phrasing checks. Each is isolated: a
// disabled or failing check contributes nothing.
func (m *Matcher) matchPatterns(lower string, matchCtx resource.MatchContext) []resource.ResourceMatch {
	var out []resource.ResourceMatch

	if strings.Contains(lower, "how to") || strings.Contains(lower, "how do") {
		if docs, ok := m.index.GetResource(registry.Context7QualifiedName, resource.RegistryContext7); ok {
			out = append(out, m.newMatch(docs, resource.PatternDetected{Pattern: "how-to question"}, 0.7, matchCtx, nil))
		}
	}

	for _, verb := range []string{"create", "build", "make"} {
		if !strings.Contains(lower, verb) {
			continue
		}
		results := m.index.Search("create build generator", index.SearchOptions{
			Capabilities: []resource.CapabilityCategory{resource.CategoryTools},
			Limit:        3,
		})
		for _, r := range results {
			out = append(out, m.newMatch(r, resource.PatternDetected{Pattern: "creation task"}, 0.55, matchCtx, nil))
		}
		break
	}

	if m.urlPattern != nil && m.urlPattern.MatchString(lower) {
		results := m.index.FindByCapability(resource.CategoryWeb)
		if len(results) > 2 {
			results = results[:2]
		}
		for _, r := range results {
			out = append(out, m.newMatch(r, resource.PatternDetected{Pattern: "url reference"}, 0.65, matchCtx, nil))
		}
	}

	return out
}

// applyBoosts drops blocked resources, then adds the favorite boost and the
// frequency boost in that order, clamping after each.
func (m *Matcher) applyBoosts(matches []resource.ResourceMatch) []resource.ResourceMatch {
	out := matches[:0]
	for _, match := range matches {
		if m.prefs.IsBlocked(match.Resource.ID) {
			continue
		}

		if m.prefs.IsFavorite(match.Resource.ID) {
			match.Confidence = resource.ClampScore(match.Confidence + 0.15)
		}

		if stats, ok := m.prefs.UsageStats(match.Resource.ID); ok && stats.UsageCount > 3 {
			boost := float64(stats.UsageCount) * 0.02
			if boost > 0.2 {
				boost = 0.2
			}
			match.Confidence = resource.ClampScore(match.Confidence + boost)
		}

		out = append(out, match)
	}
	return out
}

// dedupFirstSeen keeps only the first match per resource id in append order,
// discarding later duplicates regardless of their confidence.
func dedupFirstSeen(matches []resource.ResourceMatch) []resource.ResourceMatch {
	seen := make(map[string]struct{}, len(matches))
	out := matches[:0]
	for _, match := range matches {
		if _, dup := seen[match.Resource.ID]; dup {
			continue
		}
		seen[match.Resource.ID] = struct{}{}
		out = append(out, match)
	}
	return out
}

func (m *Matcher) newMatch(r resource.DiscoveredResource, reason resource.MatchReason, confidence float64, matchCtx resource.MatchContext, tools []resource.DiscoveredTool) resource.ResourceMatch {
	if tools == nil {
		tools = r.Tools
	}
	return resource.ResourceMatch{
		ID:             uuid.NewString(),
		Resource:       r,
		Reason:         reason,
		Confidence:     resource.ClampScore(confidence),
		Context:        matchCtx,
		SuggestedTools: tools,
		Timestamp:      time.Now(),
	}
}

// publish replaces the current suggestion list and prepends it to the capped
// rolling history.
func (m *Matcher) publish(final []resource.ResourceMatch) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.suggestions = final

	m.history = append(append([]resource.ResourceMatch{}, final...), m.history...)
	if len(m.history) > m.cfg.HistoryLimit {
		m.history = m.history[:m.cfg.HistoryLimit]
	}
}

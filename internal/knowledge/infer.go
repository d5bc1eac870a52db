package knowledge

import (
	"regexp"
	"strings"

	"github.com/lakshaychetal/astrologyfinalrk/internal/domain/tag"
)

// contentPattern maps content keywords to the tags they imply. Patterns are
// data, not code, so the vocabulary can grow without touching the matcher.
type contentPattern struct {
	keywords []string
	tags     []string
}

var contentPatterns = []contentPattern{
	// Timing indicators
	{[]string{"timing", "dasha", "when", "period", "transit", "antardasha"}, []string{"timing", "dasha", "transit"}},
	{[]string{"marriage timing", "upapada", "jupiter transit"}, []string{"marriage", "upapada", "jupiter"}},

	// Appearance indicators
	{[]string{"appearance", "darakaraka", "dak", "physical", "look", "traits", "temperament"}, []string{"appearance", "darakaraka", "physical"}},

	// Divisional charts
	{[]string{"d9", "navamsa"}, []string{"d9"}},
	{[]string{"d1", "rasi", "rashi"}, []string{"d1"}},
	{[]string{"d5", "panchamsa"}, []string{"d5"}},
	{[]string{"d6"}, []string{"d6"}},
	{[]string{"d12", "dwadasamsa"}, []string{"d12"}},

	// Houses and lords
	{[]string{"7th lord", "7th house", "seventh", "7l"}, []string{"7th_lord", "marriage"}},
	{[]string{"8th lord", "8th house", "eighth"}, []string{"8th_lord"}},
	{[]string{"6th lord", "6th house", "sixth"}, []string{"6th_lord"}},
	{[]string{"5th house", "fifth"}, []string{"5th_house"}},

	// Spouse and background
	{[]string{"spouse", "partner", "background", "profession", "ethnicity"}, []string{"spouse", "background"}},
	{[]string{"family origin", "upbringing", "context"}, []string{"family", "context"}},

	// Divorce, separation, breakup
	{[]string{"divorce", "separation", "breakup", "split", "estrangement"}, []string{"divorce", "separation", "breakup"}},
	{[]string{"legal timing", "legal window"}, []string{"legal_timing"}},

	// Ex return and reconciliation
	{[]string{"ex return", "reconciliation", "come back", "reunion", "reconcile"}, []string{"ex_return", "reconciliation", "reunion"}},

	// Spiritual and karmic
	{[]string{"spiritual", "ketu", "moksha", "karmic"}, []string{"spiritual", "karmic"}},
	{[]string{"atmakaraka"}, []string{"atmakaraka"}},

	// Decision and choice
	{[]string{"decision", "choice", "should", "action"}, []string{"decision", "choice"}},

	// Compatibility and synastry
	{[]string{"compatibility", "compatible", "synastry", "harmony"}, []string{"compatibility", "synastry"}},

	// Trajectory and dynamics
	{[]string{"trajectory", "relationship", "dynamic", "commitment"}, []string{"trajectory"}},

	// Children and fertility
	{[]string{"children", "fertility", "adaptation", "psychological"}, []string{"children", "post_divorce"}},

	// Reputation and social
	{[]string{"reputation", "social", "career", "public"}, []string{"reputation", "social", "public"}},

	// Transformation
	{[]string{"reinvention", "rebirth", "transformation", "new beginning"}, []string{"reinvention", "transformation"}},

	// Infidelity
	{[]string{"infidelity", "cheating", "affair", "venus affliction", "rahu"}, []string{"infidelity"}},

	// Finances
	{[]string{"finance", "marital finance", "2nd house", "money", "wealth"}, []string{"finance", "marital_finance"}},

	// Health
	{[]string{"health", "medical", "disease"}, []string{"health", "medical"}},

	// Geography
	{[]string{"geography", "meeting place", "foreign", "9th house", "3rd house", "12th house"}, []string{"geography", "meeting_place"}},

	// Remedies
	{[]string{"remedies", "mantra", "gemstone", "ritual", "correction"}, []string{"remedies", "correction"}},

	// Rare rules
	{[]string{"rare rule", "atomic rule", "if then", "decision flow", "procedure", "formula", "step"}, []string{"rare_rules", "procedure"}},

	// Core relationship planets
	{[]string{"venus"}, []string{"venus"}},
	{[]string{"moon"}, []string{"moon"}},
}

// InferTags derives tags from passage content by keyword matching. Used as
// the last enrichment stage when a hit carries no metadata tags.
func InferTags(content string) []string {
	lower := strings.ToLower(content)
	var tags []string
	for _, p := range contentPatterns {
		for _, kw := range p.keywords {
			if strings.Contains(lower, kw) {
				tags = append(tags, p.tags...)
				break
			}
		}
	}
	return tag.NormalizeAll(tags)
}

// rareRulePatterns spot deterministic, procedural content: step sequences,
// if/then conditions, formulas, numbered lists, and flow arrows.
var rareRulePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)step \d+:`),
	regexp.MustCompile(`(?i)\bif\b.*\bthen\b`),
	regexp.MustCompile(`(?i)\bformula:`),
	regexp.MustCompile(`(?m)^\d+\.`),
	regexp.MustCompile(`→`),
}

// DetectRareRule reports whether the content contains deterministic rules.
func DetectRareRule(content string) bool {
	for _, p := range rareRulePatterns {
		if p.MatchString(content) {
			return true
		}
	}
	return false
}

// SectionFromID extracts the section ID from a chunk ID, so
// "SECTION_02_chunk_03" yields "SECTION_02". Returns "" when the ID does not
// follow the chunk naming convention.
func SectionFromID(id string) string {
	if section, _, ok := strings.Cut(id, "_chunk_"); ok {
		return section
	}
	return ""
}

// Package knowledge holds the static retrieval knowledge base: the intent
// catalog (intent to tag and section mappings, meta-query templates) and
// content-based tag inference.
package knowledge

import (
	"strings"

	"github.com/lakshaychetal/astrologyfinalrk/internal/domain/tag"
)

// Data is the raw input for a Catalog. All tags are normalized by the
// constructor, so callers may supply them in any casing.
type Data struct {
	// IntentTags maps a known intent to the tags its passages must carry.
	IntentTags map[string][]string
	// SectionTags maps a corpus section ID (e.g. "SECTION_02") to its tags.
	SectionTags map[string][]string
	// PrioritySections maps an intent to section IDs boosted during scoring.
	// The "default" key is the fallback for intents without an entry.
	PrioritySections map[string][]string
	// MetaQueries maps a canonical intent to its evaluation-oriented query
	// templates ("How to evaluate ..." phrasing).
	MetaQueries map[string][]string
	// IntentAliases maps intent spellings used by upstream classifiers to
	// the canonical meta-query key.
	IntentAliases map[string]string
	// FingerprintKeys are the chart factor keys that participate in the
	// chart bucket fingerprint.
	FingerprintKeys []string
}

// Catalog is the immutable tag knowledge base. Construct via NewCatalog or
// Default; the zero value is empty but safe to query.
type Catalog struct {
	intentTags       map[string][]string
	sectionTags      map[string][]string
	prioritySections map[string][]string
	metaQueries      map[string][]string
	aliases          map[string]string
	fingerprintKeys  []string
}

// NewCatalog builds a Catalog from raw data, normalizing every tag.
func NewCatalog(d Data) Catalog {
	c := Catalog{
		intentTags:       make(map[string][]string, len(d.IntentTags)),
		sectionTags:      make(map[string][]string, len(d.SectionTags)),
		prioritySections: make(map[string][]string, len(d.PrioritySections)),
		metaQueries:      make(map[string][]string, len(d.MetaQueries)),
		aliases:          make(map[string]string, len(d.IntentAliases)),
		fingerprintKeys:  append([]string(nil), d.FingerprintKeys...),
	}
	for intent, tags := range d.IntentTags {
		c.intentTags[intent] = tag.NormalizeAll(tags)
	}
	for section, tags := range d.SectionTags {
		c.sectionTags[section] = tag.NormalizeAll(tags)
	}
	for intent, sections := range d.PrioritySections {
		c.prioritySections[intent] = append([]string(nil), sections...)
	}
	for intent, queries := range d.MetaQueries {
		c.metaQueries[intent] = append([]string(nil), queries...)
	}
	for alias, canonical := range d.IntentAliases {
		c.aliases[alias] = canonical
	}
	return c
}

// Default returns the catalog for the love and relationships niche.
func Default() Catalog {
	return NewCatalog(Data{
		IntentTags:       defaultIntentTags,
		SectionTags:      defaultSectionTags,
		PrioritySections: defaultPrioritySections,
		MetaQueries:      defaultMetaQueries,
		IntentAliases:    defaultIntentAliases,
		FingerprintKeys:  defaultFingerprintKeys,
	})
}

// Known reports whether the intent has a tag mapping. Unknown intents skip
// tag filtering and fall back to general search.
func (c Catalog) Known(intent string) bool {
	_, ok := c.intentTags[intent]
	return ok
}

// IntentTags returns the target tags for a known intent, nil otherwise.
func (c Catalog) IntentTags(intent string) []string {
	return c.intentTags[intent]
}

// SectionTags returns the tags of a corpus section, nil for unknown sections.
func (c Catalog) SectionTags(sectionID string) []string {
	return c.sectionTags[sectionID]
}

// PrioritySections returns the boosted section IDs for an intent, falling
// back to the "default" entry when the intent has none.
func (c Catalog) PrioritySections(intent string) []string {
	if s, ok := c.prioritySections[intent]; ok {
		return s
	}
	return c.prioritySections["default"]
}

// MetaQueries returns the query templates for a canonical intent key.
func (c Catalog) MetaQueries(key string) []string {
	return c.metaQueries[key]
}

// MetaKey resolves an intent to its canonical meta-query key.
// Resolution order: exact meta-query key, explicit alias, substring
// heuristics, then "interpretation" as the generic bucket. The empty intent
// resolves to "" so the caller can emit generic fallback queries.
func (c Catalog) MetaKey(intent string) string {
	if intent == "" || intent == "unknown" {
		return ""
	}
	if _, ok := c.metaQueries[intent]; ok {
		return intent
	}
	if canonical, ok := c.aliases[intent]; ok {
		return canonical
	}
	lower := strings.ToLower(intent)
	switch {
	case strings.Contains(lower, "timing"):
		return "timing"
	case strings.Contains(lower, "appear"), strings.Contains(lower, "spouse"):
		return "appearance"
	case strings.Contains(lower, "compat"), strings.Contains(lower, "synastry"):
		return "compatibility"
	}
	return "interpretation"
}

// FingerprintKeys returns the chart factor keys used for cache bucketing.
func (c Catalog) FingerprintKeys() []string {
	return c.fingerprintKeys
}

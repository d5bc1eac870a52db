package retrieval

import "strings"

const maxQueries = 3

// buildQueries expands an intent into the search queries fanned out to the
// corpus. Known intents use the curated meta-query set, with the second
// query grounded in the caller's chart so the embedding lands near
// chart-specific passages. Unknown intents fall back to the raw question
// plus broad relationship queries.
func (s *Service) buildQueries(question, intent string, factors map[string]string) []string {
	metaKey := s.catalog.MetaKey(intent)
	if metaKey == "" {
		return genericQueries(question)
	}

	meta := s.catalog.MetaQueries(metaKey)
	if len(meta) == 0 {
		return genericQueries(question)
	}

	n := maxQueries
	if len(meta) < n {
		n = len(meta)
	}
	queries := make([]string, n)
	copy(queries, meta[:n])

	if summary := chartSummary(factors); summary != "" && len(queries) > 1 {
		queries[1] = queries[1] + " " + summary
	}
	return queries
}

func genericQueries(question string) []string {
	queries := []string{
		"marriage relationship compatibility astrology analysis",
		"7th house lord venus relationship indications",
	}
	if q := strings.TrimSpace(question); q != "" {
		queries = append([]string{q}, queries...)
	}
	if len(queries) > maxQueries {
		queries = queries[:maxQueries]
	}
	return queries
}

// chartSummary compresses the chart factors that matter for relationship
// questions into a short token string, capped at four parts.
func chartSummary(factors map[string]string) string {
	var parts []string
	add := func(label, key string) {
		if len(parts) >= 4 {
			return
		}
		if v := strings.TrimSpace(factors[key]); v != "" {
			parts = append(parts, label+"="+v)
		}
	}

	add("7L", "7th_lord")
	add("Venus", "venus_sign")
	if v := strings.TrimSpace(factors["current_mahadasha"]); v != "" {
		if len(parts) < 4 {
			parts = append(parts, "dasha="+v)
		}
	} else {
		add("dasha", "current_dasha")
	}
	add("DK", "darakaraka")

	return strings.Join(parts, " ")
}

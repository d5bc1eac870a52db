package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// ChartBucket fingerprints the chart factors that matter for retrieval, so
// different people with the same key placements share L1 entries. Only the
// given keys participate; order is fixed by the keys slice, and a missing
// factor is simply skipped.
func ChartBucket(factors map[string]string, keys []string) string {
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		if v, ok := factors[k]; ok && v != "" {
			parts = append(parts, k+"="+strings.ToLower(strings.TrimSpace(v)))
		}
	}
	if len(parts) > 5 {
		parts = parts[:5]
	}
	h := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(h[:])[:12]
}

// PromptHash fingerprints the full retrieval request (question, intent, and
// every chart factor) for exact-match L2 lookups.
func PromptHash(question, intent string, factors map[string]string) string {
	// Factors in key order so map iteration cannot change the hash.
	keys := make([]string, 0, len(factors))
	for k := range factors {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(intent)
	b.WriteByte('\n')
	b.WriteString(question)
	for _, k := range keys {
		b.WriteByte('\n')
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(factors[k])
	}
	h := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(h[:])[:16]
}

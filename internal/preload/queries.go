package preload

import (
	"fmt"
	"strings"
)

// factorQuery is a single warmup retrieval: the query text plus the intent
// whose L1 bucket it fills.
type factorQuery struct {
	intent string
	query  string
}

// factorIntent maps a chart factor to the intent its warmup queries run
// under. Timing factors warm the timing bucket, spouse-trait factors the
// appearance bucket, everything else the generic interpretation bucket.
func factorIntent(key string) string {
	lower := strings.ToLower(key)
	switch {
	case strings.Contains(lower, "dasha"):
		return "timing"
	case strings.Contains(lower, "7th"):
		return "timing"
	case strings.Contains(lower, "venus"):
		return "timing"
	case strings.Contains(lower, "darakaraka"), strings.Contains(lower, "navamsa"):
		return "appearance"
	case strings.Contains(lower, "upapada"):
		return "timing"
	default:
		return "interpretation"
	}
}

// factorQueries builds up to max warmup queries for one chart factor.
func factorQueries(key, value string, max int) []factorQuery {
	intent := factorIntent(key)
	lower := strings.ToLower(key)

	var texts []string
	switch {
	case strings.Contains(lower, "mahadasha"), strings.Contains(lower, "antardasha"):
		texts = []string{
			fmt.Sprintf("%s dasha marriage timing prediction when", value),
			fmt.Sprintf("%s maha antar dasha relationship effects", value),
			fmt.Sprintf("dasha sequence after %s for marriage", value),
		}
	case strings.Contains(lower, "7th"):
		texts = []string{
			fmt.Sprintf("7th lord %s marriage relationship analysis", value),
			fmt.Sprintf("%s ruling 7th house spouse indications", value),
			fmt.Sprintf("7th house %s timing of marriage", value),
		}
	case strings.Contains(lower, "venus"):
		texts = []string{
			fmt.Sprintf("venus in %s love relationship marriage", value),
			fmt.Sprintf("venus %s spouse nature compatibility", value),
			fmt.Sprintf("venus %s dasha relationship results", value),
		}
	case strings.Contains(lower, "darakaraka"):
		texts = []string{
			fmt.Sprintf("darakaraka %s spouse appearance traits", value),
			fmt.Sprintf("%s as darakaraka partner characteristics", value),
		}
	case strings.Contains(lower, "upapada"):
		texts = []string{
			fmt.Sprintf("upapada lagna %s marriage quality timing", value),
		}
	default:
		texts = []string{
			fmt.Sprintf("%s %s significations relationship", strings.ReplaceAll(key, "_", " "), value),
		}
	}

	if max > 0 && len(texts) > max {
		texts = texts[:max]
	}

	out := make([]factorQuery, len(texts))
	for i, t := range texts {
		out[i] = factorQuery{intent: intent, query: t}
	}
	return out
}

package knowledge

// Default catalog data for the love and relationships niche. The corpus is a
// single rules file with 30 SECTION_NN sections covering relationship
// trajectory, spouse traits, separation, and rare deterministic rules.

var defaultIntentTags = map[string][]string{
	// Timing and trajectory
	"timing":          {"timing", "marriage", "dasha", "7th_lord", "trajectory", "upapada", "venus", "jupiter", "transit"},
	"marriage_timing": {"timing", "marriage", "dasha", "7th_lord", "trajectory", "upapada", "venus", "jupiter", "transit"},
	"divorce_timing":  {"divorce", "timing", "8th_lord", "dasha_window", "legal_timing", "separation"},

	// Ex return and reconciliation
	"ex_return": {"ex_return", "reconciliation", "timing_window", "venus", "moon", "reconcile", "reunion", "promise"},

	// Breakup and separation
	"breakup":  {"divorce", "separation", "8th_lord", "6th_lord", "breakup", "legal", "estrangement"},
	"decision": {"divorce", "separation", "decision", "choice", "action", "should"},

	// Appearance and characteristics
	"appearance":        {"appearance", "darakaraka", "d9", "physical", "looks", "age", "temperament", "dak"},
	"spouse_appearance": {"appearance", "darakaraka", "d9", "physical", "looks", "age", "temperament", "dak"},

	// Background and context
	"spouse_background": {"background", "context", "family", "upbringing", "profession", "ethnicity", "geography"},

	// Compatibility and synastry
	"compatibility": {"compatibility", "synastry", "navamsa", "synastry_score", "7th_lords", "venus_moon_match", "trajectory"},

	// Children and family
	"children_impact": {"children", "post_divorce", "adaptation", "psychological", "fertility", "d5"},

	// Karmic and spiritual
	"karmic_lesson": {"spiritual", "karmic", "lesson", "meaning", "atmakaraka", "d12"},

	// Reputation and social
	"family_reputation": {"family", "reputation", "social", "career", "public", "upapada"},

	// Transformation and new beginnings
	"reinvention": {"reinvention", "rebirth", "transformation", "new_beginning", "8th_house", "karma_reset"},

	// Specialized categories
	"infidelity":          {"infidelity", "cheating", "venus_affliction", "5th_house", "rahu"},
	"financials_marriage": {"finance", "marital_finance", "2nd_house", "8th_house", "venus", "jupiter"},
	"health_impact":       {"health", "medical", "6th", "8th", "disease", "d6"},
	"geographic_meeting":  {"meeting_place", "geography", "9th_house", "3rd_house", "foreign", "12th"},

	// Interpretation and remedies
	"interpretation": {"d1", "d9", "dasha", "transit", "interpretation", "chart_reading"},
	"remedies":       {"remedies", "mantra", "gemstone", "ritual", "practical_steps", "correction"},

	// Rare rules and atomic formulas
	"rare_rules": {"rare_rules", "atomic_rule", "if_then", "decision_flow", "procedure", "formula"},
}

var defaultSectionTags = map[string][]string{
	// SECTION_01-07: trajectory and timing
	"SECTION_01": {"trajectory", "relationship", "timing", "marriage", "dasha", "7th_lord", "short_term", "mid_term"},
	"SECTION_02": {"appearance", "background", "spouse", "darakaraka", "d9", "physical", "family_origin", "profession", "geography"},
	"SECTION_03": {"divorce", "separation", "timing", "decision", "8th_lord", "dasha_window", "legal_timing", "breakup"},
	"SECTION_04": {"trajectory", "relationship", "commitment_level", "timing", "marriage", "compatibility"},
	"SECTION_05": {"appearance", "background", "spouse", "darakaraka", "d9", "physical", "looks", "temperament", "upbringing"},
	"SECTION_06": {"divorce", "separation", "compatibility", "decision", "breakup", "6th_lord", "estrangement"},
	"SECTION_07": {"trajectory", "relationship", "timing", "marriage", "7th_lord", "venus", "jupiter", "transit"},

	// SECTION_08-14: detailed analysis
	"SECTION_08": {"appearance", "background", "spouse", "darakaraka", "physical", "age", "ethnicity"},
	"SECTION_09": {"divorce", "separation", "decision", "breakup", "ex_return", "choice", "legal"},
	"SECTION_10": {"trajectory", "relationship", "timing", "7th_lord", "upapada", "dasha", "marriage"},
	"SECTION_11": {"appearance", "background", "spouse", "darakaraka", "d9", "physical", "compatibility"},
	"SECTION_12": {"divorce", "separation", "timing", "decision", "8th_lord", "dasha_window"},
	"SECTION_13": {"trajectory", "relationship", "timing", "dasha", "venus", "moon", "transit"},
	"SECTION_14": {"appearance", "background", "spouse", "darakaraka", "physical", "profession"},

	// SECTION_15-21: decision flows and ex return
	"SECTION_15": {"divorce", "separation", "decision", "action", "breakup", "8th_lord"},
	"SECTION_16": {"ex_return", "reconciliation", "timing_window", "venus", "moon", "reunion", "promise", "rare_rules"},
	"SECTION_17": {"trajectory", "relationship", "timing", "marriage", "ex_return", "reunion"},
	"SECTION_18": {"appearance", "background", "spouse", "darakaraka", "d9", "physical", "geography"},
	"SECTION_19": {"divorce", "separation", "timing", "decision", "breakup", "legal_timing"},
	"SECTION_20": {"appearance", "background", "spouse", "darakaraka", "d9", "physical", "family"},
	"SECTION_21": {"divorce", "separation", "decision", "choice", "breakup", "action"},

	// SECTION_22-26: specialized analysis
	"SECTION_22": {"trajectory", "relationship", "compatibility", "7th_lord", "synastry"},
	"SECTION_23": {"appearance", "background", "spouse", "darakaraka", "physical", "temperament"},
	"SECTION_24": {"divorce", "separation", "timing", "action", "8th_lord", "dasha_window"},
	"SECTION_25": {"infidelity", "cheating", "venus_affliction", "5th_house", "rahu", "rare_rules"},
	"SECTION_26": {"financials_marriage", "finance", "marital_finance", "2nd_house", "8th_house", "venus", "jupiter"},

	// SECTION_27-30: impact and transformation
	"SECTION_27": {"children", "post_divorce", "adaptation", "psychological", "fertility", "d5", "children_impact"},
	"SECTION_28": {"spiritual", "karmic", "lesson", "meaning", "atmakaraka", "d12", "interpretation"},
	"SECTION_29": {"family", "reputation", "social", "career", "public", "upapada", "family_reputation"},
	"SECTION_30": {"reinvention", "rebirth", "transformation", "new_beginning", "8th_house", "karma_reset", "remedies"},
}

var defaultPrioritySections = map[string][]string{
	"marriage_timing": {"SECTION_01", "SECTION_03", "SECTION_07", "SECTION_10", "SECTION_13"},
	"timing":          {"SECTION_01", "SECTION_03", "SECTION_07", "SECTION_10", "SECTION_13"},
	"divorce_timing":  {"SECTION_03", "SECTION_12", "SECTION_19", "SECTION_24"},

	"ex_return": {"SECTION_16", "SECTION_09", "SECTION_17"},

	"spouse_appearance": {"SECTION_02", "SECTION_05", "SECTION_08", "SECTION_11", "SECTION_14", "SECTION_18", "SECTION_20", "SECTION_23"},
	"appearance":        {"SECTION_02", "SECTION_05", "SECTION_08", "SECTION_11", "SECTION_14", "SECTION_18", "SECTION_20", "SECTION_23"},

	"spouse_background": {"SECTION_02", "SECTION_05", "SECTION_08", "SECTION_11", "SECTION_14", "SECTION_18", "SECTION_20"},

	"compatibility": {"SECTION_04", "SECTION_06", "SECTION_11", "SECTION_22"},

	"breakup":  {"SECTION_03", "SECTION_06", "SECTION_09", "SECTION_12", "SECTION_15", "SECTION_19", "SECTION_21", "SECTION_24"},
	"decision": {"SECTION_03", "SECTION_06", "SECTION_09", "SECTION_12", "SECTION_15", "SECTION_19", "SECTION_21", "SECTION_24"},
	"divorce":  {"SECTION_03", "SECTION_06", "SECTION_09", "SECTION_12", "SECTION_15", "SECTION_19", "SECTION_21", "SECTION_24"},

	"children_impact":   {"SECTION_27"},
	"karmic_lesson":     {"SECTION_28", "SECTION_30"},
	"family_reputation": {"SECTION_29"},
	"reinvention":       {"SECTION_30"},

	"infidelity":          {"SECTION_25"},
	"financials_marriage": {"SECTION_26"},

	"interpretation": {"SECTION_01", "SECTION_04", "SECTION_07", "SECTION_10", "SECTION_13", "SECTION_28"},
	"remedies":       {"SECTION_30"},
	"rare_rules":     {"SECTION_16", "SECTION_25"},

	"default": {"SECTION_01", "SECTION_03", "SECTION_07", "SECTION_10"},
}

// Meta-queries ask HOW to evaluate rather than WHAT will happen, so retrieval
// surfaces procedural rules instead of outcome statements.
var defaultMetaQueries = map[string][]string{
	"timing": {
		"How to evaluate timing of marriage using chart",
		"Steps to determine marriage period using dasha and transits",
		"Astrological procedure for predicting marriage year",
		"Rules for timing marriage based on 7th lord and Venus",
	},
	"ex_return": {
		"How to evaluate return of ex based on chart",
		"Rules for timing of ex reconciliation",
		"Astrologer's process to check if past relationship can restart",
		"Steps to determine ex coming back using Venus and Moon",
	},
	"breakup": {
		"How to evaluate divorce or separation indicators",
		"Rules for analyzing breakup potential in D1 and D9",
		"Steps astrologer uses to determine relationship ending",
		"Astrological procedure to check separation likelihood",
	},
	"decision": {
		"How to evaluate divorce decision using chart",
		"Rules for analyzing whether to stay or leave relationship",
		"Steps to determine right action in marriage crisis",
		"Procedure for evaluating relationship continuation",
	},
	"appearance": {
		"How to evaluate spouse appearance using chart",
		"Rules for analyzing partner traits from D1 and D9",
		"Steps to determine spouse physical features from 7th house",
		"Procedure for reading spouse nature from Darakaraka",
	},
	"compatibility": {
		"How to evaluate marriage compatibility using synastry",
		"Rules for analyzing relationship harmony in navamsa",
		"Steps to determine couple compatibility from both charts",
		"Procedure for checking long-term relationship success",
	},
	"interpretation": {
		"How to interpret divisional charts for relationships",
		"Rules for reading D1 and D9 chart together",
		"Steps to evaluate dasha effects on marriage",
		"Procedure for analyzing transit impacts on relationship",
	},
	"remedies": {
		"How to determine remedies for relationship problems",
		"Rules for prescribing remedial measures for marriage",
		"Steps astrologer uses to suggest corrective actions",
		"Procedure for evaluating which remedies will work",
	},
	"rare_rules": {
		"Rare astrological formulas for relationship evaluation",
		"Step-by-step rules for complex relationship scenarios",
		"If-then conditions for relationship predictions",
		"Advanced procedural rules for marriage analysis",
	},
}

var defaultIntentAliases = map[string]string{
	"marriage_timing":        "timing",
	"ex_return_timing":       "ex_return",
	"breakup_advice":         "breakup",
	"divorce_decision":       "breakup",
	"spouse_appearance":      "appearance",
	"partner_nature":         "appearance",
	"marriage_compatibility": "compatibility",
	"synastry_rules":         "compatibility",
	"D1_interpretation":      "interpretation",
	"D9_interpretation":      "interpretation",
	"dasha_interpretation":   "interpretation",
	"remedial_measures":      "remedies",
	"rare_combinations":      "rare_rules",
	"atomic_rules":           "rare_rules",
	"decision_flow":          "rare_rules",
}

var defaultFingerprintKeys = []string{
	"7th_lord",
	"venus_sign",
	"saturn_sign",
	"current_mahadasha",
}

// DefaultFactorKeys are the chart factor names the preloader expects for the
// love niche. Coverage is measured against this list.
var DefaultFactorKeys = []string{
	"7th_lord",
	"7th_lord_placement",
	"7th_house_sign",
	"7th_house_planets",
	"venus_sign",
	"venus_house",
	"venus_nakshatra",
	"moon_sign",
	"moon_house",
	"darakaraka_planet",
	"darakaraka_sign",
	"upapada_lagna",
	"saturn_sign",
	"saturn_7th_aspect",
	"jupiter_sign",
	"rahu_house",
	"ketu_house",
	"navamsa_lagna",
	"navamsa_7th_lord",
	"current_mahadasha",
	"current_antardasha",
	"5th_house_sign",
	"8th_house_sign",
	"2nd_house_sign",
}

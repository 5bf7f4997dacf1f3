package narrative

import (
	"regexp"
	"strconv"
	"strings"

	"clone-llm/internal/domain"
)

// parsedBeatFields holds the tolerant extraction of the beat XML wire
// format: <dialogue>, <action>, <internal>, <emotional_tone>,
// <theme_resonance>. A tag whose trimmed value equals "none"
// (case-insensitive) is treated as absent.
type parsedBeatFields struct {
	Dialogue       *string
	Action         *string
	Internal       *string
	EmotionalTone  string
	ThemeResonance string
	anyTagMatched  bool
}

var beatTagRe = map[string]*regexp.Regexp{
	"dialogue":        regexp.MustCompile(`(?s)<dialogue>(.*?)</dialogue>`),
	"action":          regexp.MustCompile(`(?s)<action>(.*?)</action>`),
	"internal":        regexp.MustCompile(`(?s)<internal>(.*?)</internal>`),
	"emotional_tone":  regexp.MustCompile(`(?s)<emotional_tone>(.*?)</emotional_tone>`),
	"theme_resonance": regexp.MustCompile(`(?s)<theme_resonance>(.*?)</theme_resonance>`),
}

// parseBeatXML tolerantly extracts the fields of a beat response. Missing
// tags yield null/empty fields; it never errors -- the caller falls back to
// raw_text when anyTagMatched is false.
func parseBeatXML(raw string) parsedBeatFields {
	var out parsedBeatFields

	extract := func(tag string) (string, bool) {
		re := beatTagRe[tag]
		m := re.FindStringSubmatch(raw)
		if len(m) < 2 {
			return "", false
		}
		out.anyTagMatched = true
		val := strings.TrimSpace(m[1])
		if strings.EqualFold(val, "none") {
			return "", false
		}
		return val, true
	}

	if v, ok := extract("dialogue"); ok {
		out.Dialogue = &v
	}
	if v, ok := extract("action"); ok {
		out.Action = &v
	}
	if v, ok := extract("internal"); ok {
		out.Internal = &v
	}
	if v, ok := extract("emotional_tone"); ok {
		out.EmotionalTone = v
	}
	if v, ok := extract("theme_resonance"); ok {
		out.ThemeResonance = v
	}
	return out
}

var kvLineRe = regexp.MustCompile(`(?m)^\s*([A-Za-z_]+)\s*:\s*(.*)$`)

// parseAnalysisKV tolerantly parses the classifier's line-oriented
// `KEY: value` contract. Keys are matched case-insensitively; unparseable
// floats fall back to 0.5; a response with no matching lines at all yields
// an "unclassified" analysis with zero confidence.
func parseAnalysisKV(raw string) domain.EmotionalAnalysis {
	matches := kvLineRe.FindAllStringSubmatch(raw, -1)
	if len(matches) == 0 {
		return domain.EmotionalAnalysis{PrimaryEmotion: "unclassified", Confidence: 0}
	}

	values := make(map[string]string, len(matches))
	for _, m := range matches {
		key := strings.ToUpper(strings.TrimSpace(m[1]))
		values[key] = strings.TrimSpace(m[2])
	}

	floatOr := func(key string, fallback float64) float64 {
		v, ok := values[key]
		if !ok {
			return fallback
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fallback
		}
		return clampAnalysisScore(f)
	}

	commaList := func(key string) []string {
		v, ok := values[key]
		if !ok || v == "" {
			return nil
		}
		parts := strings.Split(v, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(strings.ToLower(p))
			if p != "" {
				out = append(out, p)
			}
		}
		return out
	}

	primary := strings.ToLower(strings.TrimSpace(values["PRIMARY_EMOTION"]))
	if primary == "" {
		primary = "unclassified"
	}

	return domain.EmotionalAnalysis{
		PrimaryEmotion:      primary,
		SecondaryEmotions:   commaList("SECONDARY_EMOTIONS"),
		Confidence:          floatOr("CONFIDENCE", 0.5),
		Resonance:           floatOr("RESONANCE_SCORE", 0.5),
		Specificity:         floatOr("SPECIFICITY_SCORE", 0.5),
		Authenticity:        floatOr("AUTHENTICITY_SCORE", 0.5),
		ImprovementAreas:    commaList("IMPROVEMENT_AREAS"),
		SuggestedTechniques: commaList("SUGGESTED_TECHNIQUES"),
	}
}

func clampAnalysisScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

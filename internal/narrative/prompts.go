package narrative

// EnrichmentTechniques maps an improvement area to candidate rewrite
// instructions the enricher can embed in a rewrite prompt. Up to six total
// instructions are drawn from this map per enrichment pass.
var EnrichmentTechniques = map[string][]string{
	"stakes":   {"raise the cost of failure explicitly", "tie the outcome to a concrete, named consequence"},
	"sensory":  {"add one grounded sensory detail (texture, smell, sound)", "anchor the emotion in a physical sensation"},
	"internal": {"surface one unspoken thought in internal monologue", "contrast stated dialogue with private doubt"},
	"dialogue": {"let subtext carry more than the words say", "shorten lines to increase tension"},
	"action":   {"replace a stated emotion with a physical action that implies it", "use a small gesture to reveal intent"},
	"pacing":   {"vary sentence length to control rhythm", "cut a beat of description to quicken the moment"},
}

const beatResponseFormatInstruction = `=== RESPONSE FORMAT ===
Respond with exactly these XML-delimited fields, in this order. Use the literal text "None" for a field that does not apply.
<dialogue>spoken lines, or None</dialogue>
<action>physical action, or None</action>
<internal>internal thought, or None</internal>
<emotional_tone>single dominant emotion word</emotional_tone>
<theme_resonance>how this beat ties to the active theme</theme_resonance>
`

const analysisResponseFormatInstruction = `=== RESPONSE FORMAT ===
Respond with exactly these lines, one KEY: value pair per line, nothing else.
PRIMARY_EMOTION: <single word>
SECONDARY_EMOTIONS: <comma-separated, may be empty>
CONFIDENCE: <0.0-1.0>
RESONANCE_SCORE: <0.0-1.0>
SPECIFICITY_SCORE: <0.0-1.0>
AUTHENTICITY_SCORE: <0.0-1.0>
IMPROVEMENT_AREAS: <comma-separated subset of stakes, sensory, internal, dialogue, action, pacing>
SUGGESTED_TECHNIQUES: <comma-separated>
`

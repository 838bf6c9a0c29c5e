package classifier

// Config holds every tunable weight and cutoff the classifier uses. Zero
// value is not valid; use DefaultConfig() and override via
// internal/routingconfig's YAML loader.
type Config struct {
	// Weighted signal contributions.
	ReasoningCueWeight    float64
	ShortPromptWeight     float64
	LongPromptWeight      float64
	StructuredOutputWeight float64
	InterrogativeWeight   float64
	GreetingWeight        float64
	CodeBlockWeight       float64
	MediumTokenWeight     float64

	// Length thresholds, in Unicode code points of the user prompt.
	ShortPromptMaxChars int
	LongPromptMinChars  int

	// Token thresholds, counted on the user prompt alone.
	MediumTokenThreshold  int
	ComplexTokenThreshold int

	// Score-to-tier cutoffs. A score exactly equal to a cutoff reaches
	// that cutoff's tier.
	MediumCutoff    float64
	ComplexCutoff   float64
	ReasoningCutoff float64
}

// DefaultConfig returns the built-in defaults, biased conservatively toward
// SIMPLE/MEDIUM so that unclassified traffic does not default to expensive
// models. Overridable per deployment via internal/routingconfig.
func DefaultConfig() Config {
	return Config{
		ReasoningCueWeight:     6,
		ShortPromptWeight:      -2,
		LongPromptWeight:       1,
		StructuredOutputWeight: 1.5,
		InterrogativeWeight:    -1,
		GreetingWeight:         -5,
		CodeBlockWeight:        1.5,
		MediumTokenWeight:      2,

		ShortPromptMaxChars: 80,
		LongPromptMinChars:  400,

		MediumTokenThreshold:  4_000,
		ComplexTokenThreshold: 100_000,

		MediumCutoff:    1,
		ComplexCutoff:   4,
		ReasoningCutoff: 7,
	}
}

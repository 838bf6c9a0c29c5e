// Package routingconfig loads the classifier's scoring weights and tier
// cutoffs from an optional YAML file, falling back to
// classifier.DefaultConfig() when absent. Grounded on the teacher's
// internal/config/defaults.go grouped-constants style, expressed here as a
// struct loaded with gopkg.in/yaml.v3 (a teacher dependency no copied file
// previously exercised).
package routingconfig

import (
	"os"

	"github.com/llmrouter/router/internal/classifier"
	"gopkg.in/yaml.v3"
)

// File mirrors classifier.Config field-for-field with yaml tags, so an
// operator can override any subset of weights/cutoffs without restating
// the whole table.
type File struct {
	ReasoningCueWeight    *float64 `yaml:"reasoning_cue_weight"`
	ShortPromptWeight     *float64 `yaml:"short_prompt_weight"`
	LongPromptWeight      *float64 `yaml:"long_prompt_weight"`
	StructuredOutputWeight *float64 `yaml:"structured_output_weight"`
	InterrogativeWeight   *float64 `yaml:"interrogative_weight"`
	GreetingWeight        *float64 `yaml:"greeting_weight"`
	CodeBlockWeight       *float64 `yaml:"code_block_weight"`
	MediumTokenWeight     *float64 `yaml:"medium_token_weight"`

	ShortPromptMaxChars *int `yaml:"short_prompt_max_chars"`
	LongPromptMinChars  *int `yaml:"long_prompt_min_chars"`

	MediumTokenThreshold  *int `yaml:"medium_token_threshold"`
	ComplexTokenThreshold *int `yaml:"complex_token_threshold"`

	MediumCutoff    *float64 `yaml:"medium_cutoff"`
	ComplexCutoff   *float64 `yaml:"complex_cutoff"`
	ReasoningCutoff *float64 `yaml:"reasoning_cutoff"`

	AgenticToolCallThreshold *int `yaml:"agentic_tool_call_threshold"`
}

// Load reads path (if it exists) and overlays it onto classifier.DefaultConfig().
// A missing file is not an error: defaults apply unmodified.
func Load(path string) (classifier.Config, int, error) {
	cfg := classifier.DefaultConfig()
	agenticThreshold := 1

	if path == "" {
		return cfg, agenticThreshold, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, agenticThreshold, nil
	}
	if err != nil {
		return cfg, agenticThreshold, err
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return cfg, agenticThreshold, err
	}

	apply(&cfg, f)
	if f.AgenticToolCallThreshold != nil {
		agenticThreshold = *f.AgenticToolCallThreshold
	}
	return cfg, agenticThreshold, nil
}

func apply(cfg *classifier.Config, f File) {
	setF(&cfg.ReasoningCueWeight, f.ReasoningCueWeight)
	setF(&cfg.ShortPromptWeight, f.ShortPromptWeight)
	setF(&cfg.LongPromptWeight, f.LongPromptWeight)
	setF(&cfg.StructuredOutputWeight, f.StructuredOutputWeight)
	setF(&cfg.InterrogativeWeight, f.InterrogativeWeight)
	setF(&cfg.GreetingWeight, f.GreetingWeight)
	setF(&cfg.CodeBlockWeight, f.CodeBlockWeight)
	setF(&cfg.MediumTokenWeight, f.MediumTokenWeight)

	setI(&cfg.ShortPromptMaxChars, f.ShortPromptMaxChars)
	setI(&cfg.LongPromptMinChars, f.LongPromptMinChars)
	setI(&cfg.MediumTokenThreshold, f.MediumTokenThreshold)
	setI(&cfg.ComplexTokenThreshold, f.ComplexTokenThreshold)

	setF(&cfg.MediumCutoff, f.MediumCutoff)
	setF(&cfg.ComplexCutoff, f.ComplexCutoff)
	setF(&cfg.ReasoningCutoff, f.ReasoningCutoff)
}

func setF(dst *float64, src *float64) {
	if src != nil {
		*dst = *src
	}
}

func setI(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}

package contentgen

import "github.com/abhisek/lasty/internal/llm"

// SentenceSchema is the response shape for practice sentence generation.
var SentenceSchema = &llm.Schema{
	Name:        "practice-sentence",
	Description: "A single natural sentence that uses the practice word",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"sentence": map[string]any{
				"type":        "string",
				"description": "The sentence, in the target language only, without surrounding quotes",
			},
		},
		"required":             []any{"sentence"},
		"additionalProperties": false,
	},
}

// TranslationSchema is the response shape for reference translations.
var TranslationSchema = &llm.Schema{
	Name:        "reference-translation",
	Description: "A faithful translation of one sentence",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"translation": map[string]any{
				"type":        "string",
				"description": "The translated sentence, without surrounding quotes",
			},
		},
		"required":             []any{"translation"},
		"additionalProperties": false,
	},
}

// DistractorsSchema is the response shape for multiple-choice distractors.
var DistractorsSchema = &llm.Schema{
	Name:        "choice-distractors",
	Description: "Plausible but wrong answer options for a vocabulary question",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"options": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "string",
				},
				"description": "Distinct words in the target language, none equal to the correct answer",
			},
		},
		"required":             []any{"options"},
		"additionalProperties": false,
	},
}

// VerdictSchema is the response shape for answer classification.
var VerdictSchema = &llm.Schema{
	Name:        "answer-verdict",
	Description: "Classification of a learner's answer against the expected word",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"outcome": map[string]any{
				"type":        "string",
				"enum":        []any{"correct", "incorrect", "morphological_error", "synonym_accepted"},
				"description": "correct: same word. morphological_error: right word, wrong form. synonym_accepted: a valid synonym. incorrect: anything else.",
			},
			"error_description": map[string]any{
				"type":        "string",
				"description": "For incorrect answers, a label of the form \"Category: detail\", e.g. \"Spelling: Letter substitution\". Empty otherwise.",
			},
			"explanation": map[string]any{
				"type":        "string",
				"description": "One short sentence for the learner",
			},
		},
		"required":             []any{"outcome", "error_description", "explanation"},
		"additionalProperties": false,
	},
}

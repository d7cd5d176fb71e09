package summarizer

import (
	"strings"
	"unicode"
)

// Profile is the fixed generation hyperparameter set of one model.
type Profile struct {
	Prefix            string  `json:"prefix,omitempty"`
	MaxInputTokens    int     `json:"max_input_tokens"`
	MaxLength         int     `json:"max_length"`
	MinLength         int     `json:"min_length"`
	LengthPenalty     float64 `json:"length_penalty"`
	NumBeams          int     `json:"num_beams"`
	NoRepeatNgramSize int     `json:"no_repeat_ngram_size"`
	Temperature       float64 `json:"temperature"`
	TopK              int     `json:"top_k"`
	TopP              float64 `json:"top_p"`
	EarlyStopping     bool    `json:"early_stopping"`
}

// BARTProfile favours quality: more beams, stricter repetition control.
var BARTProfile = Profile{
	MaxInputTokens:    1024,
	MaxLength:         150,
	MinLength:         50,
	LengthPenalty:     1.5,
	NumBeams:          6,
	NoRepeatNgramSize: 3,
	Temperature:       0.7,
	TopK:              50,
	TopP:              0.95,
	EarlyStopping:     true,
}

// T5Profile favours speed. T5 needs the task prefix on its input.
var T5Profile = Profile{
	Prefix:            "summarize: ",
	MaxInputTokens:    1024,
	MaxLength:         150,
	MinLength:         50,
	LengthPenalty:     2.5,
	NumBeams:          4,
	NoRepeatNgramSize: 2,
	Temperature:       0.9,
	TopK:              100,
	TopP:              0.92,
	EarlyStopping:     true,
}

// Subword tokenizers average a little over one token per English word, so a
// word budget of 3/4 of the token limit keeps the encoded input under it.
const wordsPerToken = 0.75

// InputWordBudget is the number of words of article text kept before the
// input reaches the model. Zero means no limit.
func (p Profile) InputWordBudget() int {
	if p.MaxInputTokens <= 0 {
		return 0
	}
	budget := int(float64(p.MaxInputTokens)*wordsPerToken) - len(strings.Fields(p.Prefix))
	if budget < 1 {
		budget = 1
	}
	return budget
}

// truncateWords cuts text after its first maxWords words, leaving the
// original spacing of what is kept untouched.
func truncateWords(text string, maxWords int) (string, bool) {
	if maxWords <= 0 {
		return text, false
	}
	words := 0
	inWord := false
	for i, r := range text {
		if unicode.IsSpace(r) {
			if inWord && words == maxWords {
				return text[:i], true
			}
			inWord = false
			continue
		}
		if !inWord {
			inWord = true
			words++
		}
	}
	return text, false
}

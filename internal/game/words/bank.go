// Package words provides the fixed in-memory word bank secrets are drawn from.
package words

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/bananand/Vocly/internal/game/random"
)

//go:embed words.yaml
var defaultBankYAML []byte

// yamlBankFile is the top-level YAML structure for word bank files.
type yamlBankFile struct {
	Words []string `yaml:"words"`
}

// Bank is an immutable set of candidate secret words of a single length.
type Bank struct {
	words      []string
	wordLength int
}

// Load parses and validates a word bank from YAML bytes.
//
// Precondition: data must be valid YAML conforming to the bank schema.
// Postcondition: Returns a Bank whose words are all uppercase letters of
// exactly wordLength characters, or a non-nil error.
func Load(data []byte, wordLength int) (*Bank, error) {
	var file yamlBankFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing word bank YAML: %w", err)
	}

	if len(file.Words) == 0 {
		return nil, fmt.Errorf("word bank is empty")
	}

	words := make([]string, 0, len(file.Words))
	for _, w := range file.Words {
		w = strings.ToUpper(strings.TrimSpace(w))
		if len(w) != wordLength {
			return nil, fmt.Errorf("word %q has length %d, want %d", w, len(w), wordLength)
		}
		for i := 0; i < len(w); i++ {
			if w[i] < 'A' || w[i] > 'Z' {
				return nil, fmt.Errorf("word %q contains non-letter character %q", w, w[i])
			}
		}
		words = append(words, w)
	}

	return &Bank{words: words, wordLength: wordLength}, nil
}

// Default loads the embedded word bank.
//
// Postcondition: Returns the built-in Bank or an error if wordLength does
// not match the embedded words.
func Default(wordLength int) (*Bank, error) {
	return Load(defaultBankYAML, wordLength)
}

// Pick draws one word from the bank using src.
//
// Precondition: src must not be nil.
func (b *Bank) Pick(src random.Source) string {
	return b.words[src.Intn(len(b.words))]
}

// Size returns the number of words in the bank.
func (b *Bank) Size() int {
	return len(b.words)
}

// WordLength returns the fixed length of every word in the bank.
func (b *Bank) WordLength() int {
	return b.wordLength
}

// Contains reports whether w is a member of the bank.
func (b *Bank) Contains(w string) bool {
	for _, word := range b.words {
		if word == w {
			return true
		}
	}
	return false
}

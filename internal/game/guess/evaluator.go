// Package guess evaluates a guessed word against a secret word, producing
// per-position feedback marks.
package guess

import "fmt"

// Mark classifies one guess position against the secret.
type Mark string

const (
	// MarkCorrect means the letter is in the secret at this position.
	MarkCorrect Mark = "correct"
	// MarkPresent means the letter is in the secret at another position.
	MarkPresent Mark = "present"
	// MarkAbsent means the letter is not in the secret (or its
	// occurrences are already accounted for).
	MarkAbsent Mark = "absent"
)

// Evaluate compares guess against secret and returns one Mark per position.
//
// The evaluation is multiset-aware: a letter is marked present at most as
// many times as it occurs in the secret, with correct positions consuming
// occurrences first. Evaluating presence before consuming counts from
// correct matches would over-award present marks for repeated letters, so
// the two passes must run in this order.
//
// Precondition: len(guess) == len(secret).
// Postcondition: Returns a feedback slice of len(secret) marks.
func Evaluate(guess, secret string) ([]Mark, error) {
	if len(guess) != len(secret) {
		return nil, fmt.Errorf("guess length %d does not match secret length %d", len(guess), len(secret))
	}

	feedback := make([]Mark, len(secret))
	remaining := make(map[byte]int, len(secret))
	for i := 0; i < len(secret); i++ {
		remaining[secret[i]]++
	}

	// Pass 1: exact positions consume their letter's count.
	for i := 0; i < len(secret); i++ {
		if guess[i] == secret[i] {
			feedback[i] = MarkCorrect
			remaining[guess[i]]--
		}
	}

	// Pass 2: remaining positions are present while counts last.
	for i := 0; i < len(secret); i++ {
		if feedback[i] == MarkCorrect {
			continue
		}
		if remaining[guess[i]] > 0 {
			feedback[i] = MarkPresent
			remaining[guess[i]]--
		} else {
			feedback[i] = MarkAbsent
		}
	}

	return feedback, nil
}

// internal/game/engine.go
//
// Scoring for a single guess against a game's target.
// Responsibilities:
//   - Classify each guessed letter (Correct/Present/Incorrect).
//   - Build an Attempt, rejecting guesses whose length differs from the target.
//
// Two scorers are provided:
//   - ScoreSimple: position match, else "anywhere in target". Repeated letters
//     in the guess are all marked Present even if the target has one copy.
//   - ScoreClassic: the standard two-pass Wordle algorithm, multiset aware.
//
// ScoreSimple is the default; ScorerByName selects either from configuration.
package game

import (
	"fmt"
	"time"
)

// Scorer classifies guess against target. Both slices have the same length.
type Scorer func(target, guess []Letter) []LetterAttempt

// ScoreSimple marks a letter Correct on a positional match, Present if it
// occurs anywhere in target, Incorrect otherwise.
func ScoreSimple(target, guess []Letter) []LetterAttempt {
	var inTarget [26]bool
	for _, l := range target {
		inTarget[idx(l)] = true
	}

	res := make([]LetterAttempt, len(guess))
	for i, l := range guess {
		switch {
		case l == target[i]:
			res[i] = LetterAttempt{Letter: l, State: Correct}
		case inTarget[idx(l)]:
			res[i] = LetterAttempt{Letter: l, State: Present}
		default:
			res[i] = LetterAttempt{Letter: l, State: Incorrect}
		}
	}
	return res
}

// ScoreClassic implements the standard Wordle two-pass scoring algorithm.
//
// Pass 1:
//   - Mark exact matches as Correct.
//   - Count remaining (non-matching) target letters.
//
// Pass 2:
//   - For each remaining guess letter: if there is count left for that letter,
//     mark Present and decrement the count; otherwise mark Incorrect.
func ScoreClassic(target, guess []Letter) []LetterAttempt {
	n := len(guess)
	res := make([]LetterAttempt, n)

	// Letter frequency for the non-matching positions (a–z).
	var counts [26]int

	for i := 0; i < n; i++ {
		res[i].Letter = guess[i]
		if guess[i] == target[i] {
			res[i].State = Correct
		} else {
			counts[idx(target[i])]++
		}
	}

	for i := 0; i < n; i++ {
		if res[i].State == Correct {
			continue
		}
		j := idx(guess[i])
		if counts[j] > 0 {
			res[i].State = Present
			counts[j]--
		} else {
			res[i].State = Incorrect
		}
	}
	return res
}

// ScorerByName resolves "simple" or "classic".
func ScorerByName(name string) (Scorer, error) {
	switch name {
	case "", "simple":
		return ScoreSimple, nil
	case "classic":
		return ScoreClassic, nil
	}
	return nil, fmt.Errorf("unknown scoring %q (want simple or classic)", name)
}

// Solved reports whether every letter is Correct.
func Solved(letters []LetterAttempt) bool {
	for _, l := range letters {
		if l.State != Correct {
			return false
		}
	}
	return true
}

// NewAttempt scores guess against target.
func NewAttempt(target, guess []Letter, score Scorer, at time.Time) (Attempt, error) {
	if len(guess) != len(target) {
		return Attempt{}, Errorf(KindInvalidLength, "guess has %d letters, want %d", len(guess), len(target))
	}
	letters := score(target, guess)
	return Attempt{
		Solved:    Solved(letters),
		Letters:   letters,
		CreatedAt: Stamp(at),
	}, nil
}

// idx maps a letter to 0..25. Letters are validated at the boundary.
func idx(l Letter) int { return int(l - 'a') }

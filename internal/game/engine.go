package game

import (
	"strings"
)

// GuessOutcome is the result of applying one letter guess.
type GuessOutcome struct {
	// Player is the updated copy of the guessing player, including any score
	// delta already applied.
	Player Player

	// Resolved is true when this guess ended the player's round.
	Resolved bool

	// Won is meaningful only when Resolved is true.
	Won bool

	// ScoreDelta is the points awarded by this guess.
	ScoreDelta int
}

// ApplyGuess evaluates a single letter guess against a session snapshot. It
// has no knowledge of storage or networking and behaves identically in solo
// and multiplayer contexts.
//
// The second return value reports whether the guess was applied at all.
// Guesses outside the allowed state (session not playing, player already
// resolved, duplicate letter, not a single A-Z letter) are dropped.
func ApplyGuess(s *Session, playerID, letter string) (GuessOutcome, bool) {
	letter = strings.ToUpper(strings.TrimSpace(letter))
	if !isLetter(letter) {
		return GuessOutcome{}, false
	}
	if s == nil || s.Status != StatusPlaying {
		return GuessOutcome{}, false
	}
	p := s.Player(playerID)
	if p == nil || p.RoundStatus != RoundPlaying || p.HasGuessed(letter) {
		return GuessOutcome{}, false
	}

	updated := *p
	updated.Guesses = append(append([]string(nil), p.Guesses...), letter)
	if !strings.Contains(s.Word, letter) {
		updated.IncorrectGuesses++
	}

	out := GuessOutcome{Player: updated}

	// Win is evaluated before loss.
	switch {
	case wordGuessed(s.Word, updated.Guesses):
		updated.RoundStatus = RoundWon
		out.ScoreDelta = scoreForWin(updated.IncorrectGuesses)
		updated.Score += out.ScoreDelta
		out.Resolved = true
		out.Won = true
	case updated.IncorrectGuesses >= MaxIncorrectGuesses:
		updated.RoundStatus = RoundLost
		out.Resolved = true
	}

	out.Player = updated
	return out, true
}

// scoreForWin rewards a win with fewer mistakes: 60 for a flawless round,
// dropping by 10 per strike, floored at zero.
func scoreForWin(incorrect int) int {
	delta := (MaxIncorrectGuesses - incorrect) * 10
	if delta < 0 {
		return 0
	}
	return delta
}

// wordGuessed reports whether every distinct character of word appears in guesses.
func wordGuessed(word string, guesses []string) bool {
	if word == "" {
		return false
	}
	seen := make(map[string]struct{}, len(guesses))
	for _, g := range guesses {
		seen[g] = struct{}{}
	}
	for _, r := range word {
		if _, ok := seen[string(r)]; !ok {
			return false
		}
	}
	return true
}

func isLetter(s string) bool {
	return len(s) == 1 && s[0] >= 'A' && s[0] <= 'Z'
}

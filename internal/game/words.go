package game

import (
	"crypto/rand"
	"math/big"

	"github.com/n0ya6101/hangman-game/internal/logging"
)

// wordList is the fixed categorized vocabulary rounds draw from.
var wordList = []string{
	// fruits
	"APPLE", "BANANA", "ORANGE", "GRAPE", "STRAWBERRY", "WATERMELON", "PINEAPPLE", "MANGO",
	// vegetables
	"CARROT", "BROCCOLI", "CUCUMBER", "TOMATO", "POTATO", "ONION", "GARLIC", "LETTUCE",
	// computing
	"COMPUTER", "KEYBOARD", "MONITOR", "SOFTWARE", "HARDWARE", "INTERNET", "DATABASE", "ALGORITHM",
	// languages and frameworks
	"JAVASCRIPT", "PYTHON", "REACT", "ANGULAR", "VUE", "NODEJS", "HTML", "CSS",
	// animals
	"ELEPHANT", "TIGER", "LION", "GIRAFFE", "ZEBRA", "MONKEY", "KANGAROO", "PENGUIN",
	// instruments
	"GUITAR", "PIANO", "DRUMS", "VIOLIN", "TRUMPET", "FLUTE", "SAXOPHONE", "HARMONICA",
	// nature
	"MOUNTAIN", "OCEAN", "RIVER", "FOREST", "DESERT", "VOLCANO", "ISLAND", "BEACH",
}

// RandomWord picks a word for the next round.
func RandomWord() string {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(wordList))))
	if err != nil {
		logging.Warnf("random word selection failed: %v, using fallback", err)
		return wordList[0]
	}
	return wordList[n.Int64()]
}

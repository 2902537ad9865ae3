package storage

import (
	"strings"
	"time"

	"github.com/n0ya6101/hangman-game/internal/game"
)

// SessionRow is the persisted form of a session document.
type SessionRow struct {
	ID             string `gorm:"primaryKey"`
	Admin          string
	Word           string
	Status         string `gorm:"index"`
	CurrentRound   int
	TotalRounds    int
	RoundStartTime *time.Time
	IsPrivate      bool      `gorm:"index"`
	CreatedAt      time.Time
	LastActivity   time.Time   `gorm:"index"`
	Players        []PlayerRow `gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE"`
}

// PlayerRow is one member of a session, keyed by (session_id, player_id).
// Keeping players as rows keyed by player id is what makes a guess write a
// per-player patch instead of a whole-array replace.
type PlayerRow struct {
	SessionID        string `gorm:"primaryKey"`
	PlayerID         string `gorm:"primaryKey"`
	Name             string
	Face             string
	Score            int
	RoundStatus      string
	Guesses          string
	IncorrectGuesses int
	LastSeen         time.Time
	JoinedAt         time.Time
}

func sessionToRow(s *game.Session) SessionRow {
	row := SessionRow{
		ID:             s.ID,
		Admin:          s.Admin,
		Word:           s.Word,
		Status:         string(s.Status),
		CurrentRound:   s.CurrentRound,
		TotalRounds:    s.TotalRounds,
		RoundStartTime: s.RoundStartTime,
		IsPrivate:      s.IsPrivate,
		CreatedAt:      s.CreatedAt,
		LastActivity:   s.LastActivity,
	}
	for i := range s.Players {
		row.Players = append(row.Players, playerToRow(s.ID, s.Players[i]))
	}
	return row
}

func rowToSession(row SessionRow) *game.Session {
	s := &game.Session{
		ID:             row.ID,
		Admin:          row.Admin,
		Word:           row.Word,
		Status:         game.SessionStatus(row.Status),
		CurrentRound:   row.CurrentRound,
		TotalRounds:    row.TotalRounds,
		RoundStartTime: row.RoundStartTime,
		IsPrivate:      row.IsPrivate,
		CreatedAt:      row.CreatedAt,
		LastActivity:   row.LastActivity,
	}
	for _, pr := range row.Players {
		s.Players = append(s.Players, rowToPlayer(pr))
	}
	return s
}

func playerToRow(sessionID string, p game.Player) PlayerRow {
	return PlayerRow{
		SessionID:        sessionID,
		PlayerID:         p.ID,
		Name:             p.Name,
		Face:             p.Face,
		Score:            p.Score,
		RoundStatus:      string(p.RoundStatus),
		Guesses:          strings.Join(p.Guesses, ""),
		IncorrectGuesses: p.IncorrectGuesses,
		LastSeen:         p.LastSeen,
		JoinedAt:         p.JoinedAt,
	}
}

func rowToPlayer(row PlayerRow) game.Player {
	p := game.Player{
		ID:               row.PlayerID,
		Name:             row.Name,
		Face:             row.Face,
		Score:            row.Score,
		RoundStatus:      game.RoundStatus(row.RoundStatus),
		IncorrectGuesses: row.IncorrectGuesses,
		LastSeen:         row.LastSeen,
		JoinedAt:         row.JoinedAt,
	}
	// Guesses are single letters, stored packed.
	for _, r := range row.Guesses {
		p.Guesses = append(p.Guesses, string(r))
	}
	return p
}

package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/n0ya6101/hangman-game/internal/game"
)

// ErrNotFound is returned when a record is not found.
var ErrNotFound = gorm.ErrRecordNotFound

var _ game.SessionStore = (*Store)(nil)

// Store wraps a gorm DB instance and implements game.SessionStore on top of
// it. Sessions are a row plus one row per player; player writes are row
// updates keyed by (session_id, player_id).
type Store struct {
	db *gorm.DB
}

// NewStore creates a new store helper from a gorm DB.
func NewStore(db *gorm.DB) *Store {
	if db == nil {
		return nil
	}
	return &Store{db: db}
}

// DB exposes the underlying gorm DB instance.
func (s *Store) DB() *gorm.DB {
	if s == nil {
		return nil
	}
	return s.db
}

// GetSession loads a session with its members in join order.
func (s *Store) GetSession(ctx context.Context, id string) (*game.Session, error) {
	var row SessionRow
	err := s.db.WithContext(ctx).
		Preload("Players", func(db *gorm.DB) *gorm.DB { return db.Order("joined_at ASC") }).
		First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, game.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return rowToSession(row), nil
}

// CreateSession inserts a session and its initial members. An empty id gets a
// store-assigned one.
func (s *Store) CreateSession(ctx context.Context, sess *game.Session) (string, error) {
	if sess.ID == "" {
		sess.ID = uuid.NewString()
	}
	row := sessionToRow(sess)
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return "", err
	}
	return sess.ID, nil
}

// UpdateSession applies the patch in a single transaction, so the session row
// changes and any player resets land together or not at all.
func (s *Store) UpdateSession(ctx context.Context, id string, patch game.SessionPatch) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := make(map[string]any)
		if patch.Admin != nil {
			updates["admin"] = *patch.Admin
		}
		if patch.Word != nil {
			updates["word"] = *patch.Word
		}
		if patch.Status != nil {
			updates["status"] = string(*patch.Status)
		}
		if patch.CurrentRound != nil {
			updates["current_round"] = *patch.CurrentRound
		}
		if patch.RoundStartTime != nil {
			updates["round_start_time"] = *patch.RoundStartTime
		} else if patch.ClearRoundStart {
			updates["round_start_time"] = nil
		}
		if patch.LastActivity != nil {
			updates["last_activity"] = *patch.LastActivity
		}
		if len(updates) > 0 {
			res := tx.Model(&SessionRow{}).Where("id = ?", id).Updates(updates)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return game.ErrSessionNotFound
			}
		}

		playerUpdates := make(map[string]any)
		if patch.ResetRounds {
			playerUpdates["round_status"] = string(game.RoundPlaying)
			playerUpdates["guesses"] = ""
			playerUpdates["incorrect_guesses"] = 0
		}
		if patch.ResetScores {
			playerUpdates["score"] = 0
		}
		if len(playerUpdates) > 0 {
			if err := tx.Model(&PlayerRow{}).Where("session_id = ?", id).Updates(playerUpdates).Error; err != nil {
				return err
			}
		}

		if patch.RemovePlayer != nil {
			if err := tx.Where("session_id = ? AND player_id = ?", id, *patch.RemovePlayer).
				Delete(&PlayerRow{}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// SavePlayer upserts one member's state.
func (s *Store) SavePlayer(ctx context.Context, sessionID string, p game.Player) error {
	row := playerToRow(sessionID, p)
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_id"}, {Name: "player_id"}},
			UpdateAll: true,
		}).Create(&row).Error; err != nil {
			return err
		}
		// A guess is session progress: keep the reclamation signal fresh.
		return tx.Model(&SessionRow{}).Where("id = ?", sessionID).
			Update("last_activity", time.Now()).Error
	})
}

// AddPlayer appends the member unless one with the same id already exists.
func (s *Store) AddPlayer(ctx context.Context, sessionID string, p game.Player) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&SessionRow{}).Where("id = ?", sessionID).Count(&count).Error; err != nil {
		return false, err
	}
	if count == 0 {
		return false, game.ErrSessionNotFound
	}
	row := playerToRow(sessionID, p)
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
	if res.Error != nil {
		return false, res.Error
	}
	added := res.RowsAffected > 0
	if added {
		if err := s.db.WithContext(ctx).Model(&SessionRow{}).Where("id = ?", sessionID).
			Update("last_activity", time.Now()).Error; err != nil {
			return added, err
		}
	}
	return added, nil
}

// TouchPlayer refreshes a member's heartbeat timestamp only.
func (s *Store) TouchPlayer(ctx context.Context, sessionID, playerID string, seen time.Time) error {
	return s.db.WithContext(ctx).Model(&PlayerRow{}).
		Where("session_id = ? AND player_id = ?", sessionID, playerID).
		Update("last_seen", seen).Error
}

// FindOpenPublicSessions returns public sessions still waiting in the lobby.
func (s *Store) FindOpenPublicSessions(ctx context.Context) ([]*game.Session, error) {
	var rows []SessionRow
	err := s.db.WithContext(ctx).
		Preload("Players", func(db *gorm.DB) *gorm.DB { return db.Order("joined_at ASC") }).
		Where("is_private = ? AND status = ?", false, string(game.StatusWaiting)).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	sessions := make([]*game.Session, 0, len(rows))
	for _, row := range rows {
		sessions = append(sessions, rowToSession(row))
	}
	return sessions, nil
}

// DeleteInactiveBefore removes sessions whose last activity predates the
// cutoff, players included, and returns the deleted ids.
func (s *Store) DeleteInactiveBefore(ctx context.Context, cutoff time.Time) ([]string, error) {
	var ids []string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&SessionRow{}).Where("last_activity < ?", cutoff).Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		if err := tx.Where("session_id IN ?", ids).Delete(&PlayerRow{}).Error; err != nil {
			return err
		}
		return tx.Where("id IN ?", ids).Delete(&SessionRow{}).Error
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

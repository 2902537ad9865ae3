package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/n0ya6101/hangman-game/internal/game"
	"github.com/n0ya6101/hangman-game/internal/logging"
	"github.com/n0ya6101/hangman-game/pkg/utils"
)

// Handler contains dependencies for HTTP handlers.
type Handler struct {
	Ctl   *game.Controller
	Hub   *game.Hub
	Store game.SessionStore
}

// NewHandler creates a new handler instance.
func NewHandler(ctl *game.Controller, hub *game.Hub, store game.SessionStore) *Handler {
	return &Handler{Ctl: ctl, Hub: hub, Store: store}
}

// Register mounts all routes on the router.
func (h *Handler) Register(r *gin.Engine) {
	r.POST("/api/sessions", h.HandleCreate)
	r.POST("/api/quickplay", h.HandleQuickPlay)
	r.GET("/api/sessions/:id", h.HandleGet)
	r.POST("/api/sessions/:id/join", h.HandleJoin)
	r.POST("/api/sessions/:id/guess", h.HandleGuess)
	r.POST("/api/sessions/:id/start", h.HandleStart)
	r.POST("/api/sessions/:id/reset", h.HandleReset)
	r.POST("/api/sessions/:id/heartbeat", h.HandleHeartbeat)
	r.GET("/sse/:id", h.HandleSSE)
	r.GET("/healthz", h.HandleHealthz)
}

type playerInput struct {
	PlayerID string `json:"playerId" binding:"required"`
	Name     string `json:"name"`
	Face     string `json:"face"`
}

func (in playerInput) toPlayer(now time.Time) game.Player {
	return game.NewPlayer(in.PlayerID, in.Name, in.Face, now)
}

type createInput struct {
	playerInput
	Private bool `json:"private"`
	Rounds  int  `json:"rounds"`
}

// HandleCreate creates a session; private ones get a 6-character room code
// and a configurable round count.
func (h *Handler) HandleCreate(c *gin.Context) {
	var in createInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "bad json"})
		return
	}
	s, err := h.Ctl.Create(c.Request.Context(), game.CreateConfig{
		Creator: in.toPlayer(time.Now()),
		Private: in.Private,
		Rounds:  in.Rounds,
	})
	if err != nil {
		logging.Warnf("create session: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "could not create session"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "session": s})
}

// HandleQuickPlay finds or creates an open public session for the player.
// Search failures fall back to a fresh session inside the controller, so this
// only errors when even creation fails.
func (h *Handler) HandleQuickPlay(c *gin.Context) {
	var in playerInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "bad json"})
		return
	}
	s, err := h.Ctl.FindOrCreatePublicSession(c.Request.Context(), in.toPlayer(time.Now()))
	if err != nil {
		logging.Warnf("quickplay for player %s: %v", in.PlayerID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "could not find a session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "session": s})
}

// HandleGet is a point read of one session document.
func (h *Handler) HandleGet(c *gin.Context) {
	s, err := h.Store.GetSession(c.Request.Context(), c.Param("id"))
	if errors.Is(err, game.ErrSessionNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "session not found"})
		return
	}
	if err != nil {
		logging.Warnf("get session %s: %v", c.Param("id"), err)
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "store unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "session": s})
}

// HandleJoin adds the caller to the session.
func (h *Handler) HandleJoin(c *gin.Context) {
	var in playerInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "bad json"})
		return
	}
	s, err := h.Ctl.Join(c.Request.Context(), c.Param("id"), in.toPlayer(time.Now()))
	if errors.Is(err, game.ErrSessionNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "session not found"})
		return
	}
	if err != nil {
		logging.Warnf("join session %s: %v", c.Param("id"), err)
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "store unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "session": s})
}

type guessInput struct {
	PlayerID string `json:"playerId" binding:"required"`
	Letter   string `json:"letter" binding:"required"`
}

// HandleGuess applies a letter guess. Guesses outside the allowed state are
// dropped without an error: the response just carries the unchanged snapshot.
func (h *Handler) HandleGuess(c *gin.Context) {
	var in guessInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "bad json"})
		return
	}
	s, err := h.Ctl.Guess(c.Request.Context(), c.Param("id"), in.PlayerID, in.Letter)
	if errors.Is(err, game.ErrSessionNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "session not found"})
		return
	}
	if err != nil {
		logging.Warnf("guess in session %s: %v", c.Param("id"), err)
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "store unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "session": s})
}

// HandleStart starts the game. Non-admin callers are a no-op, mirroring the
// client-side capability check.
func (h *Handler) HandleStart(c *gin.Context) {
	var in playerInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "bad json"})
		return
	}
	if err := h.Ctl.Start(c.Request.Context(), c.Param("id"), in.PlayerID); err != nil {
		if errors.Is(err, game.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "session not found"})
			return
		}
		logging.Warnf("start session %s: %v", c.Param("id"), err)
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "store unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// HandleReset returns a finished session to the lobby. Admin only.
func (h *Handler) HandleReset(c *gin.Context) {
	var in playerInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "bad json"})
		return
	}
	if err := h.Ctl.ResetToLobby(c.Request.Context(), c.Param("id"), in.PlayerID); err != nil {
		if errors.Is(err, game.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "session not found"})
			return
		}
		logging.Warnf("reset session %s: %v", c.Param("id"), err)
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "store unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// HandleHeartbeat refreshes the caller's lastSeen so matchmaking does not
// mistake them for a stalled admin.
func (h *Handler) HandleHeartbeat(c *gin.Context) {
	var in playerInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "bad json"})
		return
	}
	if err := h.Store.TouchPlayer(c.Request.Context(), c.Param("id"), in.PlayerID, time.Now()); err != nil {
		logging.Warnf("heartbeat for %s in session %s: %v", in.PlayerID, c.Param("id"), err)
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// HandleHealthz reports process liveness.
func (h *Handler) HandleHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": Version()})
}

// HandleSSE streams session snapshots over Server-Sent Events. The client
// gets the current snapshot immediately, then one event per committed change.
// A deleted or missing session produces a single "gone" event; the client
// navigates home on it.
func (h *Handler) HandleSSE(c *gin.Context) {
	id := c.Param("id")

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.String(http.StatusInternalServerError, "streaming unsupported")
		return
	}
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	s, err := h.Store.GetSession(c.Request.Context(), id)
	if err != nil {
		gone, _ := json.Marshal(game.Snapshot{Kind: "gone"})
		_, _ = fmt.Fprintf(c.Writer, "data: %s\n\n", gone)
		flusher.Flush()
		return
	}

	clientID := utils.RandomHex(4)
	logging.Debugf("sse client %s watching session %s", clientID, id)

	ch := make(chan []byte, 16)
	h.Hub.Watch(id, ch)
	defer func() {
		h.Hub.Unwatch(id, ch)
		logging.Debugf("sse client %s left session %s", clientID, id)
	}()

	initial, _ := json.Marshal(game.Snapshot{Kind: "state", Session: s, Watchers: h.Hub.Watchers(id)})
	_, _ = fmt.Fprintf(c.Writer, "data: %s\n\n", initial)
	flusher.Flush()

	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// heartbeat
			_, _ = c.Writer.Write([]byte("data: {}\n\n"))
			flusher.Flush()
		case msg := <-ch:
			_, _ = c.Writer.Write([]byte("data: "))
			_, _ = c.Writer.Write(msg)
			_, _ = c.Writer.Write([]byte("\n\n"))
			flusher.Flush()
		}
	}
}

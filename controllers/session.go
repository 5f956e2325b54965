package controllers

import (
	"net/http"

	"github.com/nicolasvargaszz/learn-chinese-game/models"
	"github.com/nicolasvargaszz/learn-chinese-game/services/battle"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const (
	sessionRoomKey   = "BattleRoom"
	sessionPlayerKey = "BattlePlayer"
	sessionTokenKey  = "BattleToken"
)

// SaveBattleSession remembers the rejoin data in the session cookie so a
// reloaded page can send rejoin_room.
// @Summary Remember the current battle seat
// @Tags session
// @Accept json
// @Produce json
// @Param session body models.RejoinSession true "Seat to remember"
// @Success 200 {object} object{message=string}
// @Failure 400 {object} object{error=string}
// @Router /api/v1/battle/session [post]
func SaveBattleSession(tokens battle.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.RejoinSession
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "room_code, player_id and rejoin_token are required"})
			return
		}
		req.RoomCode = battle.NormalizeCode(req.RoomCode)

		room, player, err := tokens.Verify(req.RejoinToken)
		if err != nil || room != req.RoomCode || player != req.PlayerID {
			c.JSON(http.StatusBadRequest, gin.H{"error": battle.Message(battle.ErrInvalidToken)})
			return
		}

		session := sessions.Default(c)
		session.Set(sessionRoomKey, req.RoomCode)
		session.Set(sessionPlayerKey, req.PlayerID)
		session.Set(sessionTokenKey, req.RejoinToken)
		if err := session.Save(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save session"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Session saved"})
	}
}

// @Summary Read the remembered battle seat
// @Tags session
// @Produce json
// @Success 200 {object} models.RejoinSession
// @Failure 404 {object} object{error=string}
// @Router /api/v1/battle/session [get]
func GetBattleSession(c *gin.Context) {
	session := sessions.Default(c)
	room, _ := session.Get(sessionRoomKey).(string)
	player, _ := session.Get(sessionPlayerKey).(string)
	token, _ := session.Get(sessionTokenKey).(string)
	if room == "" || player == "" || token == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "No battle session"})
		return
	}
	c.JSON(http.StatusOK, models.RejoinSession{RoomCode: room, PlayerID: player, RejoinToken: token})
}

// @Summary Forget the remembered battle seat
// @Tags session
// @Produce json
// @Success 200 {object} object{message=string}
// @Failure 400 {object} object{error=string}
// @Router /api/v1/battle/session [delete]
func ClearBattleSession(c *gin.Context) {
	session := sessions.Default(c)
	// There is no session, won't delete nothing
	if session.Get(sessionRoomKey) == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No battle session"})
		return
	}

	session.Delete(sessionRoomKey)
	session.Delete(sessionPlayerKey)
	session.Delete(sessionTokenKey)
	if err := session.Save(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Session cleared"})
}

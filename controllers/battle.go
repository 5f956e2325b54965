package controllers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/nicolasvargaszz/learn-chinese-game/models"
	redis_models "github.com/nicolasvargaszz/learn-chinese-game/models/redis"
	"github.com/nicolasvargaszz/learn-chinese-game/services/battle"
	"github.com/nicolasvargaszz/learn-chinese-game/services/sync"
	"github.com/nicolasvargaszz/learn-chinese-game/utils"

	"github.com/gin-gonic/gin"
)

const (
	defaultHighScores = 10
	maxHighScores     = 100
)

type SummaryLookup interface {
	LookupSummary(ctx context.Context, roomCode string) (*redis_models.BattleSummary, error)
}

type HighScoreReader interface {
	TopHighScores(ctx context.Context, n int) ([]models.HighScore, error)
}

// BattleController serves the HTTP side of battle rooms. Results and
// HighScores may be nil when no store is configured.
type BattleController struct {
	Registry   *battle.Registry
	Results    SummaryLookup
	HighScores HighScoreReader
	PublicURL  string
}

func (bc *BattleController) snapshot(c *gin.Context) (battle.Snapshot, bool) {
	room, err := bc.Registry.Lookup(c.Param("code"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": battle.Message(err)})
		return battle.Snapshot{}, false
	}
	snap, err := room.Snapshot(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": battle.Message(battle.ErrNotFound)})
		return battle.Snapshot{}, false
	}
	return snap, true
}

// GetBattleStats reports how many rooms are live
// @Summary Live room count
// @Tags battles
// @Produce json
// @Success 200 {object} object{rooms=int}
// @Router /api/v1/battles [get]
func (bc *BattleController) GetBattleStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"rooms": bc.Registry.Len()})
}

// GetBattleInfo gets information about the room with the provided code
// @Summary Get a battle room
// @Description Returns the state of a live room
// @Tags battles
// @Produce json
// @Param code path string true "Room code"
// @Success 200 {object} models.RoomInfo
// @Failure 404 {object} object{error=string}
// @Router /api/v1/battles/{code} [get]
func (bc *BattleController) GetBattleInfo(c *gin.Context) {
	snap, ok := bc.snapshot(c)
	if !ok {
		return
	}
	info := models.RoomInfo{
		Code:           snap.Code,
		State:          string(snap.State),
		PlayerCount:    len(snap.Players),
		MaxPlayers:     snap.MaxPlayers,
		TotalQuestions: snap.TotalQuestions,
		QuestionNum:    snap.QuestionNum,
		IsJoinable:     snap.State == battle.StateLobby && len(snap.Players) < snap.MaxPlayers,
	}
	if host, ok := snap.Host(); ok {
		info.HostName = host.Name
	}
	c.JSON(http.StatusOK, info)
}

// @Summary Join QR code
// @Description PNG QR code pointing at the web client with the room code filled in
// @Tags battles
// @Produce png
// @Param code path string true "Room code"
// @Success 200 {file} binary
// @Failure 404 {object} object{error=string}
// @Failure 500 {object} object{error=string}
// @Router /api/v1/battles/{code}/qr [get]
func (bc *BattleController) GetBattleQR(c *gin.Context) {
	snap, ok := bc.snapshot(c)
	if !ok {
		return
	}
	joinURL := fmt.Sprintf("%s/?room=%s", utils.BaseURL(c.Request, bc.PublicURL), url.QueryEscape(snap.Code))
	png, err := utils.QRCodePNG(joinURL)
	if err != nil {
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error generating QR code"})
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/png", png)
}

// @Summary Results of a finished battle
// @Tags battles
// @Produce json
// @Param code path string true "Room code"
// @Success 200 {object} redis.BattleSummary
// @Failure 404 {object} object{error=string}
// @Failure 500 {object} object{error=string}
// @Router /api/v1/battles/{code}/results [get]
func (bc *BattleController) GetBattleResults(c *gin.Context) {
	if bc.Results == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Battle results not found"})
		return
	}
	summary, err := bc.Results.LookupSummary(c.Request.Context(), battle.NormalizeCode(c.Param("code")))
	if errors.Is(err, sync.ErrSummaryNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Battle results not found"})
		return
	}
	if err != nil {
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error retrieving battle results"})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// @Summary All-time high scores
// @Tags battles
// @Produce json
// @Param limit query int false "How many entries (default 10, max 100)"
// @Success 200 {object} object{highscores=[]models.HighScore}
// @Failure 400 {object} object{error=string}
// @Failure 500 {object} object{error=string}
// @Router /api/v1/highscores [get]
func (bc *BattleController) GetHighScores(c *gin.Context) {
	limit := defaultHighScores
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive number"})
			return
		}
		limit = min(n, maxHighScores)
	}
	if bc.HighScores == nil {
		c.JSON(http.StatusOK, gin.H{"highscores": []models.HighScore{}})
		return
	}
	scores, err := bc.HighScores.TopHighScores(c.Request.Context(), limit)
	if err != nil {
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error retrieving high scores"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"highscores": scores})
}

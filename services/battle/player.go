package battle

import (
	"strings"
	"unicode/utf8"

	game_constants "github.com/nicolasvargaszz/learn-chinese-game/constants/game"
)

const (
	defaultHostName   = game_constants.DEFAULT_HOST_NAME
	defaultPlayerName = game_constants.DEFAULT_PLAYER_NAME
)

// Player is owned by its room's loop and never shared outside it.
type Player struct {
	ID             string
	Name           string
	IsHost         bool
	Score          int
	Streak         int
	CorrectAnswers int
	TotalAnswered  int
	Connected      bool

	connID string
}

func (p *Player) reset() {
	p.Score = 0
	p.Streak = 0
	p.CorrectAnswers = 0
	p.TotalAnswered = 0
}

// PlayerView is a copy of a player safe to hand out of the room.
type PlayerView struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	IsHost    bool   `json:"is_host"`
	Score     int    `json:"score"`
	Streak    int    `json:"streak"`
	Connected bool   `json:"connected"`
}

func (p *Player) view() PlayerView {
	return PlayerView{
		ID:        p.ID,
		Name:      p.Name,
		IsHost:    p.IsHost,
		Score:     p.Score,
		Streak:    p.Streak,
		Connected: p.Connected,
	}
}

// cleanName trims the display name and caps its length. Names are not
// unique.
func cleanName(name, fallback string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return fallback
	}
	if utf8.RuneCountInString(name) > game_constants.MAX_NAME_LENGTH {
		name = string([]rune(name)[:game_constants.MAX_NAME_LENGTH])
	}
	return name
}

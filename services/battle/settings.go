package battle

import (
	"time"

	game_constants "github.com/nicolasvargaszz/learn-chinese-game/constants/game"
)

// Settings are shared by every room of a registry.
type Settings struct {
	MaxPlayers       int
	MinPlayers       int
	Rounds           int // deck length when the host asks for none
	MaxRounds        int
	Countdown        time.Duration
	QuestionTime     time.Duration
	LeaderboardDelay time.Duration
	EndedGrace       time.Duration
	LeaderboardSize  int
	Scoring          Scoring
}

func DefaultSettings() Settings {
	return Settings{
		MaxPlayers:       game_constants.MaxPlayersPerRoom,
		MinPlayers:       game_constants.MinPlayersToStart,
		Rounds:           game_constants.DefaultRounds,
		MaxRounds:        game_constants.MaxRounds,
		Countdown:        game_constants.COUNTDOWN,
		QuestionTime:     game_constants.QUESTION_TIME,
		LeaderboardDelay: game_constants.LEADERBOARD_DELAY,
		EndedGrace:       game_constants.ENDED_GRACE_PERIOD,
		LeaderboardSize:  game_constants.LeaderboardSize,
		Scoring:          DefaultScoring,
	}
}

// Options are chosen by the host when the room is created.
type Options struct {
	Rounds   int    `json:"rounds"`
	Lesson   int    `json:"lesson"`
	Category string `json:"category"`
}

func (s Settings) normalize(o Options) Options {
	if o.Rounds <= 0 {
		o.Rounds = s.Rounds
	}
	if s.MaxRounds > 0 && o.Rounds > s.MaxRounds {
		o.Rounds = s.MaxRounds
	}
	if o.Lesson < 0 {
		o.Lesson = 0
	}
	return o
}

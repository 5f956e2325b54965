package redis

import "time"

// BattleStanding is one row of a finished battle, as cached in Redis
type BattleStanding struct {
	Rank           int    `json:"rank"`
	PlayerID       string `json:"player_id"`
	Name           string `json:"name"`
	Score          int    `json:"score"`
	CorrectAnswers int    `json:"correct_answers"`
	TotalQuestions int    `json:"total_questions"`
}

// BattleSummary is stored under "battle:{code}:summary" once a battle ends
type BattleSummary struct {
	RoomCode       string           `json:"room_code"`
	Winner         string           `json:"winner"`
	TotalQuestions int              `json:"total_questions"`
	Standings      []BattleStanding `json:"standings"`
	StartedAt      time.Time        `json:"started_at"`
	EndedAt        time.Time        `json:"ended_at"`
}

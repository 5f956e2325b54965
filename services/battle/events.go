package battle

import (
	"context"
	"time"
)

// Server -> client events
const (
	EventRoomCreated     = "room_created"
	EventRoomJoined      = "room_joined"
	EventRoomRejoined    = "room_rejoined"
	EventLobbyUpdate     = "lobby_update"
	EventPlayerJoined    = "player_joined"
	EventPlayerLeft      = "player_left"
	EventBattleStarting  = "battle_starting"
	EventNewQuestion     = "new_question"
	EventAnswerResult    = "answer_result"
	EventAnswerCount     = "answer_count"
	EventShowLeaderboard = "show_leaderboard"
	EventBattleEnded     = "battle_ended"
	EventError           = "error"
)

// Broadcaster is the session gateway as seen by a room. Calls made by one
// room come from its loop goroutine, in order.
type Broadcaster interface {
	// Attach subscribes a connection to the room's broadcasts.
	Attach(connID, roomCode string)
	Detach(connID, roomCode string)
	ToConn(connID, event string, payload any)
	ToRoom(roomCode, event string, payload any)
}

// TokenIssuer signs the tokens a player needs to take its seat back from a
// new connection.
type TokenIssuer interface {
	Issue(roomCode, playerID string) (string, error)
	Verify(token string) (roomCode, playerID string, err error)
}

// ResultSink receives the summary of every finished battle.
type ResultSink interface {
	Record(ctx context.Context, summary Summary) error
}

type Summary struct {
	RoomCode       string
	Options        Options
	TotalQuestions int
	Winner         string
	Standings      []FinalStanding
	StartedAt      time.Time
	EndedAt        time.Time
}

type RoomCreatedPayload struct {
	RoomCode    string `json:"room_code"`
	PlayerID    string `json:"player_id"`
	IsHost      bool   `json:"is_host"`
	RejoinToken string `json:"rejoin_token,omitempty"`
}

type RoomRejoinedPayload struct {
	RoomCode       string `json:"room_code"`
	PlayerID       string `json:"player_id"`
	IsHost         bool   `json:"is_host"`
	State          State  `json:"state"`
	QuestionNum    int    `json:"question_num"`
	TotalQuestions int    `json:"total_questions"`
	Score          int    `json:"score"`
	Streak         int    `json:"streak"`
}

type LobbyUpdatePayload struct {
	Players []PlayerView `json:"players"`
}

type PlayerEventPayload struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Reason   string `json:"reason,omitempty"`
}

type BattleStartingPayload struct {
	Countdown      int `json:"countdown"`
	TotalQuestions int `json:"total_questions"`
}

type NewQuestionPayload struct {
	QuestionNum    int      `json:"question_num"`
	TotalQuestions int      `json:"total_questions"`
	Question       string   `json:"question"`
	Options        []Option `json:"options"`
	TimeLimit      int      `json:"time_limit"`
	Deadline       int64    `json:"deadline"` // unix ms
	Answered       bool     `json:"answered,omitempty"`
}

type AnswerResultPayload struct {
	Correct       bool   `json:"correct"`
	CorrectAnswer string `json:"correct_answer"`
	Pinyin        string `json:"pinyin"`
	PointsEarned  int    `json:"points_earned"`
	TotalScore    int    `json:"total_score"`
	Streak        int    `json:"streak"`
	TimedOut      bool   `json:"timed_out"`
}

type AnswerCountPayload struct {
	Answered int `json:"answered"`
	Total    int `json:"total"`
}

type Standing struct {
	Rank   int    `json:"rank"`
	Name   string `json:"name"`
	Score  int    `json:"score"`
	Streak int    `json:"streak"`
}

type ShowLeaderboardPayload struct {
	QuestionNum    int        `json:"question_num"`
	TotalQuestions int        `json:"total_questions"`
	CorrectAnswer  string     `json:"correct_answer"`
	Pinyin         string     `json:"pinyin"`
	Leaderboard    []Standing `json:"leaderboard"`
}

type FinalStanding struct {
	Rank           int    `json:"rank"`
	PlayerID       string `json:"player_id"`
	Name           string `json:"name"`
	Score          int    `json:"score"`
	CorrectAnswers int    `json:"correct_answers"`
	TotalQuestions int    `json:"total_questions"`
}

type BattleEndedPayload struct {
	FinalLeaderboard []FinalStanding `json:"final_leaderboard"`
	Winner           string          `json:"winner"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

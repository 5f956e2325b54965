package models

// RoomInfo is the public view of a battle room served over HTTP
type RoomInfo struct {
	Code           string `json:"code"`
	State          string `json:"state"`
	HostName       string `json:"host_name"`
	PlayerCount    int    `json:"player_count"`
	MaxPlayers     int    `json:"max_players"`
	TotalQuestions int    `json:"total_questions"`
	QuestionNum    int    `json:"question_num"`
	IsJoinable     bool   `json:"is_joinable"`
}

// RejoinSession is what the browser stores to get back into a running battle
type RejoinSession struct {
	RoomCode    string `json:"room_code" binding:"required"`
	PlayerID    string `json:"player_id" binding:"required"`
	RejoinToken string `json:"rejoin_token" binding:"required"`
}

// HighScore is one entry of the all-time battle ranking
type HighScore struct {
	Rank  int    `json:"rank"`
	Name  string `json:"name"`
	Score int    `json:"score"`
}

package game_constants

import "time"

// Room limits
const MaxPlayersPerRoom = 20
const MinPlayersToStart = 2
const RoomCodeLength = 6
const RoomCodeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Deck
const DefaultRounds = 10
const MaxRounds = 50
const OptionsPerQuestion = 4 // correct word + 3 distractors
const LeaderboardSize = 5    // NOTE: the client only renders the top 5 between rounds

// Timing (all server-side)
const (
	COUNTDOWN          = 3 * time.Second
	QUESTION_TIME      = 15 * time.Second
	LEADERBOARD_DELAY  = 5 * time.Second
	ENDED_GRACE_PERIOD = 10 * time.Minute
)

// Scoring weights
const (
	BASE_POINTS     = 100
	STREAK_STEP     = 50
	STREAK_CAP      = 5
	MAX_NAME_LENGTH = 24
)

// Fallback names, same as the web client uses
const DEFAULT_HOST_NAME = "Host"
const DEFAULT_PLAYER_NAME = "Player"

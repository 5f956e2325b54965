package utils

/**
 * This file contains utility functions to format the keys for Redis
 * (key, value) pairs. It avoids having to call "fmt.Sprintf(...)"
 * with the same format spec every time, potentially confusing the key format.
 */

import "fmt"

// HighScoresKey is the sorted set holding the best score ever made per name
const HighScoresKey = "highscores"

func FormatBattleSummaryKey(roomCode string) string {
	return fmt.Sprintf("battle:%s:summary", roomCode)
}

package battle

import (
	"math"

	game_constants "github.com/nicolasvargaszz/learn-chinese-game/constants/game"
)

// Scoring holds the point weights of a battle.
type Scoring struct {
	Base       int // points for a correct answer, also the time bonus ceiling
	StreakStep int // bonus per consecutive correct answer before this one
	StreakCap  int // streaks longer than this earn no extra bonus
}

var DefaultScoring = Scoring{
	Base:       game_constants.BASE_POINTS,
	StreakStep: game_constants.STREAK_STEP,
	StreakCap:  game_constants.STREAK_CAP,
}

// Score computes the points for one answer. It has no clock: the caller
// measures elapsedMs.
func (s Scoring) Score(correct bool, elapsedMs, timeLimitMs int64, streakBefore int) (pointsEarned int, newStreak int) {
	if !correct {
		return 0, 0
	}
	if streakBefore < 0 {
		streakBefore = 0
	}

	timeBonus := 0
	if timeLimitMs > 0 {
		remainingMs := timeLimitMs - elapsedMs
		if remainingMs < 0 {
			remainingMs = 0
		}
		if remainingMs > timeLimitMs {
			remainingMs = timeLimitMs
		}
		timeBonus = int(math.Round(float64(s.Base) * float64(remainingMs) / float64(timeLimitMs)))
	}

	streakBonus := s.StreakStep * min(streakBefore, s.StreakCap)

	return s.Base + timeBonus + streakBonus, streakBefore + 1
}

// Score uses DefaultScoring.
func Score(correct bool, elapsedMs, timeLimitMs int64, streakBefore int) (int, int) {
	return DefaultScoring.Score(correct, elapsedMs, timeLimitMs, streakBefore)
}

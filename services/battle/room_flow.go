package battle

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/nicolasvargaszz/learn-chinese-game/services/vocabulary"
)

const (
	noWinner         = "No winner"
	sinkRecordBudget = 10 * time.Second
)

func (r *Room) startCountdown(deck []vocabulary.Word) {
	r.deck = deck
	r.index = -1
	r.current = nil
	r.answers = nil
	r.lastBoard = nil
	r.lastFinal = nil
	for _, p := range r.players {
		p.reset()
	}
	r.startedAt = r.clock.Now()

	r.setState(StateCountdown)
	r.out.ToRoom(r.code, EventBattleStarting, BattleStartingPayload{
		Countdown:      seconds(r.settings.Countdown),
		TotalQuestions: len(r.deck),
	})
	r.logger.Info().Int("questions", len(r.deck)).Msgf("[BATTLE-START] Room %s is starting", r.code)

	r.schedule(r.settings.Countdown, r.beginQuestion)
}

func (r *Room) beginQuestion() {
	if r.index+1 >= len(r.deck) {
		r.endBattle()
		return
	}
	r.index++

	q, err := buildQuestion(r.rng, r.pool, r.deck[r.index])
	if err != nil {
		r.abort(fmt.Errorf("building question %d: %w", r.index+1, err))
		return
	}
	r.current = q
	r.answers = make(map[string]answer, len(r.players))
	now := r.clock.Now()
	r.questionStart = now
	r.deadline = now.Add(r.settings.QuestionTime)

	r.setState(StateQuestion)
	r.out.ToRoom(r.code, EventNewQuestion, r.questionPayload(false))
	r.logger.Debug().Msgf("[QUESTION] Room %s question %d/%d: %s", r.code, r.index+1, len(r.deck), q.Prompt)

	r.schedule(r.settings.QuestionTime, func() { r.closeQuestion("deadline") })
}

// questionPayload describes the open question as seen now, so a late
// reader gets the time that is actually left.
func (r *Room) questionPayload(answered bool) NewQuestionPayload {
	remaining := r.deadline.Sub(r.clock.Now())
	if remaining < 0 {
		remaining = 0
	}
	options := make([]Option, len(r.current.Options))
	copy(options, r.current.Options)
	return NewQuestionPayload{
		QuestionNum:    r.index + 1,
		TotalQuestions: len(r.deck),
		Question:       r.current.Prompt,
		Options:        options,
		TimeLimit:      seconds(remaining),
		Deadline:       r.deadline.UnixMilli(),
		Answered:       answered,
	}
}

func (r *Room) submit(p *Player, option string) error {
	if r.state != StateQuestion || r.current == nil {
		return ErrQuestionClosed
	}
	now := r.clock.Now()
	if !now.Before(r.deadline) {
		return ErrQuestionClosed
	}
	if _, done := r.answers[p.ID]; done {
		return ErrAlreadyAnswered
	}
	if !r.current.hasOption(option) {
		return ErrInvalidAnswer
	}

	correct := option == r.current.Correct
	elapsed := now.Sub(r.questionStart)
	points, streak := r.settings.Scoring.Score(correct, elapsed.Milliseconds(), r.settings.QuestionTime.Milliseconds(), p.Streak)

	r.answers[p.ID] = answer{option: option, at: now, correct: correct, points: points}
	p.Score += points
	p.Streak = streak
	p.TotalAnswered++
	if correct {
		p.CorrectAnswers++
	}

	r.out.ToConn(p.connID, EventAnswerResult, AnswerResultPayload{
		Correct:       correct,
		CorrectAnswer: r.current.Correct,
		Pinyin:        r.current.Pinyin,
		PointsEarned:  points,
		TotalScore:    p.Score,
		Streak:        p.Streak,
	})
	r.out.ToRoom(r.code, EventAnswerCount, AnswerCountPayload{
		Answered: len(r.answers),
		Total:    r.connectedCount(),
	})

	r.checkAllAnswered()
	return nil
}

// checkAllAnswered closes the question early once every connected player
// has answered.
func (r *Room) checkAllAnswered() {
	if r.state != StateQuestion {
		return
	}
	connected := 0
	for _, p := range r.players {
		if !p.Connected {
			continue
		}
		connected++
		if _, ok := r.answers[p.ID]; !ok {
			return
		}
	}
	if connected == 0 {
		return
	}
	r.closeQuestion("all answered")
}

func (r *Room) closeQuestion(reason string) {
	if r.state != StateQuestion {
		return
	}
	if r.current == nil {
		r.abort(errors.New("closing a question that was never opened"))
		return
	}

	for _, p := range r.players {
		if _, ok := r.answers[p.ID]; ok {
			continue
		}
		p.Streak = 0
		if p.Connected {
			r.out.ToConn(p.connID, EventAnswerResult, AnswerResultPayload{
				Correct:       false,
				CorrectAnswer: r.current.Correct,
				Pinyin:        r.current.Pinyin,
				TotalScore:    p.Score,
				TimedOut:      true,
			})
		}
	}

	r.setState(StateLeaderboard)
	board := ShowLeaderboardPayload{
		QuestionNum:    r.index + 1,
		TotalQuestions: len(r.deck),
		CorrectAnswer:  r.current.Correct,
		Pinyin:         r.current.Pinyin,
		Leaderboard:    r.leaderboard(),
	}
	r.lastBoard = &board
	r.out.ToRoom(r.code, EventShowLeaderboard, board)
	r.logger.Debug().Str("reason", reason).Msgf("[QUESTION-CLOSE] Room %s closed question %d", r.code, r.index+1)

	r.schedule(r.settings.LeaderboardDelay, r.advance)
}

func (r *Room) advance() {
	if r.state != StateLeaderboard {
		return
	}
	if r.index+1 >= len(r.deck) {
		r.endBattle()
		return
	}
	r.beginQuestion()
}

func (r *Room) endBattle() {
	r.stopTimer()
	r.current = nil
	r.setState(StateEnded)
	endedAt := r.clock.Now()
	r.lastActivity = endedAt

	final := r.finalStandings()
	winner := noWinner
	if len(final) > 0 && final[0].Score > 0 {
		winner = final[0].Name
	}
	payload := BattleEndedPayload{FinalLeaderboard: final, Winner: winner}
	r.lastFinal = &payload
	r.out.ToRoom(r.code, EventBattleEnded, payload)
	r.logger.Info().Str("winner", winner).Msgf("[BATTLE-END] Room %s finished after %d questions", r.code, len(r.deck))

	r.record(Summary{
		RoomCode:       r.code,
		Options:        r.options,
		TotalQuestions: len(r.deck),
		Winner:         winner,
		Standings:      final,
		StartedAt:      r.startedAt,
		EndedAt:        endedAt,
	})

	r.schedule(r.settings.EndedGrace, r.expireIfIdle)
}

// expireIfIdle removes an ended room nobody has touched for the grace
// period.
func (r *Room) expireIfIdle() {
	if r.state != StateEnded {
		return
	}
	idle := r.clock.Now().Sub(r.lastActivity)
	if idle >= r.settings.EndedGrace {
		r.teardown("grace period over")
		return
	}
	r.schedule(r.settings.EndedGrace-idle, r.expireIfIdle)
}

func (r *Room) record(summary Summary) {
	if r.sink == nil {
		return
	}
	sink := r.sink
	logger := r.logger
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), sinkRecordBudget)
		defer cancel()
		if err := sink.Record(ctx, summary); err != nil {
			logger.Error().Err(err).Msgf("[RESULT-ERROR] Could not record battle %s", summary.RoomCode)
		}
	}()
}

// ranked returns the players ordered by score, join order breaking ties.
func (r *Room) ranked() []*Player {
	ranked := make([]*Player, len(r.players))
	copy(ranked, r.players)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

func (r *Room) leaderboard() []Standing {
	ranked := r.ranked()
	if n := r.settings.LeaderboardSize; n > 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	board := make([]Standing, 0, len(ranked))
	for i, p := range ranked {
		board = append(board, Standing{Rank: i + 1, Name: p.Name, Score: p.Score, Streak: p.Streak})
	}
	return board
}

func (r *Room) finalStandings() []FinalStanding {
	ranked := r.ranked()
	final := make([]FinalStanding, 0, len(ranked))
	for i, p := range ranked {
		final = append(final, FinalStanding{
			Rank:           i + 1,
			PlayerID:       p.ID,
			Name:           p.Name,
			Score:          p.Score,
			CorrectAnswers: p.CorrectAnswers,
			TotalQuestions: len(r.deck),
		})
	}
	return final
}

func seconds(d time.Duration) int {
	return int(math.Ceil(d.Seconds()))
}

package battle

import "errors"

// Recoverable errors. They are reported to the originating client only.
var (
	ErrNotFound               = errors.New("room not found")
	ErrRoomFull               = errors.New("room is full")
	ErrAlreadyStarted         = errors.New("battle already in progress")
	ErrNotHost                = errors.New("only the host can do that")
	ErrNotEnoughPlayers       = errors.New("not enough players to start")
	ErrAlreadyAnswered        = errors.New("answer already submitted for this question")
	ErrInsufficientVocabulary = errors.New("not enough words to build a question")
	ErrInvalidAnswer          = errors.New("invalid answer")
	ErrPlayerNotFound         = errors.New("player not found in room")
	ErrQuestionClosed         = errors.New("no question is open")
	ErrInvalidToken           = errors.New("invalid rejoin token")
	ErrRoomClosed             = errors.New("room closed")
	ErrAlreadyInRoom          = errors.New("connection already holds a seat in this room")
)

// Message turns an engine error into the banner text the client shows.
func Message(err error) string {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrRoomClosed):
		return "Room not found! Check the code and try again."
	case errors.Is(err, ErrRoomFull):
		return "Room is full!"
	case errors.Is(err, ErrAlreadyStarted):
		return "Game already in progress!"
	case errors.Is(err, ErrNotHost):
		return "Only the host can do that!"
	case errors.Is(err, ErrNotEnoughPlayers):
		return "Need at least 2 players to start!"
	case errors.Is(err, ErrAlreadyAnswered):
		return "You already answered this question!"
	case errors.Is(err, ErrInsufficientVocabulary):
		return "Not enough vocabulary to build questions!"
	case errors.Is(err, ErrInvalidAnswer):
		return "That answer is not one of the options!"
	case errors.Is(err, ErrPlayerNotFound):
		return "You are not in this room!"
	case errors.Is(err, ErrQuestionClosed):
		return "Time is up for this question!"
	case errors.Is(err, ErrAlreadyInRoom):
		return "You are already in this room!"
	case errors.Is(err, ErrInvalidToken):
		return "Could not rejoin this battle."
	default:
		return "Something went wrong."
	}
}

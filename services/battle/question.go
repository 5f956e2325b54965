package battle

import (
	"math/rand/v2"

	game_constants "github.com/nicolasvargaszz/learn-chinese-game/constants/game"
	"github.com/nicolasvargaszz/learn-chinese-game/services/vocabulary"
)

type Option struct {
	Traditional string `json:"traditional"`
	Pinyin      string `json:"pinyin"`
}

// Question is the snapshot of one round: the english prompt and four
// options, exactly one of them correct.
type Question struct {
	Prompt  string
	Correct string
	Pinyin  string
	Options []Option
}

func (q *Question) hasOption(traditional string) bool {
	for _, o := range q.Options {
		if o.Traditional == traditional {
			return true
		}
	}
	return false
}

// drawDeck picks min(rounds, len(pool)) distinct words in random order.
func drawDeck(rng *rand.Rand, pool []vocabulary.Word, rounds int) ([]vocabulary.Word, error) {
	if len(pool) < game_constants.OptionsPerQuestion {
		return nil, ErrInsufficientVocabulary
	}
	n := min(rounds, len(pool))
	if n <= 0 {
		return nil, ErrInsufficientVocabulary
	}
	perm := rng.Perm(len(pool))
	deck := make([]vocabulary.Word, n)
	for i := 0; i < n; i++ {
		deck[i] = pool[perm[i]]
	}
	return deck, nil
}

// buildQuestion samples the distractors without replacement from the rest of
// the pool and shuffles the options into display order.
func buildQuestion(rng *rand.Rand, pool []vocabulary.Word, word vocabulary.Word) (*Question, error) {
	need := game_constants.OptionsPerQuestion - 1

	candidates := make([]int, 0, len(pool))
	for i, w := range pool {
		if w.Traditional != word.Traditional {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) < need {
		return nil, ErrInsufficientVocabulary
	}

	options := make([]Option, 0, need+1)
	options = append(options, Option{Traditional: word.Traditional, Pinyin: word.Pinyin})
	for i := 0; i < need; i++ {
		j := i + rng.IntN(len(candidates)-i)
		candidates[i], candidates[j] = candidates[j], candidates[i]
		d := pool[candidates[i]]
		options = append(options, Option{Traditional: d.Traditional, Pinyin: d.Pinyin})
	}
	rng.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})

	return &Question{
		Prompt:  word.English,
		Correct: word.Traditional,
		Pinyin:  word.Pinyin,
		Options: options,
	}, nil
}

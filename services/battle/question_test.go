package battle

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDrawDeck(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	pool := testWords(12)

	t.Run("no repeats", func(t *testing.T) {
		deck, err := drawDeck(rng, pool, 10)
		require.NoError(t, err)
		assert.Len(t, deck, 10)

		seen := make(map[string]bool)
		for _, w := range deck {
			assert.False(t, seen[w.Traditional], "%s drawn twice", w.Traditional)
			seen[w.Traditional] = true
		}
	})

	t.Run("capped by vocabulary size", func(t *testing.T) {
		deck, err := drawDeck(rng, pool, 50)
		require.NoError(t, err)
		assert.Len(t, deck, len(pool))
	})

	t.Run("fewer than four words", func(t *testing.T) {
		_, err := drawDeck(rng, testWords(3), 10)
		assert.ErrorIs(t, err, ErrInsufficientVocabulary)
	})
}

func TestBuildQuestion(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	pool := testWords(12)

	for i := 0; i < 50; i++ {
		word := pool[i%len(pool)]
		q, err := buildQuestion(rng, pool, word)
		require.NoError(t, err)

		assert.Equal(t, word.English, q.Prompt)
		assert.Equal(t, word.Traditional, q.Correct)
		require.Len(t, q.Options, 4)

		distinct := make(map[string]bool)
		correct := 0
		for _, o := range q.Options {
			distinct[o.Traditional] = true
			if o.Traditional == word.Traditional {
				correct++
				assert.Equal(t, word.Pinyin, o.Pinyin)
			}
		}
		assert.Len(t, distinct, 4)
		assert.Equal(t, 1, correct)
	}
}

func TestBuildQuestionCorrectPositionVaries(t *testing.T) {
	rng := rand.New(rand.NewPCG(5, 6))
	pool := testWords(8)

	positions := make(map[int]bool)
	for i := 0; i < 100; i++ {
		q, err := buildQuestion(rng, pool, pool[0])
		require.NoError(t, err)
		for idx, o := range q.Options {
			if o.Traditional == pool[0].Traditional {
				positions[idx] = true
			}
		}
	}
	assert.Greater(t, len(positions), 1)
}

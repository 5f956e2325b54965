package vocabulary

import (
	"sort"
	"strings"
)

// Word is one vocabulary entry. The traditional string is its key.
type Word struct {
	Traditional string `json:"traditional" yaml:"traditional"`
	Pinyin      string `json:"pinyin" yaml:"pinyin"`
	English     string `json:"english" yaml:"english"`
	Category    string `json:"category" yaml:"category"`
	Lesson      int    `json:"lesson" yaml:"lesson"`
	POS         string `json:"pos" yaml:"pos"`
	Hint        string `json:"hint" yaml:"hint,omitempty"`
}

// Store is the read-only word list shared by every room. It is never
// mutated after NewStore returns, so it needs no locking.
type Store struct {
	words []Word
}

// NewStore cleans the given entries: fields are trimmed, rows without a
// traditional form or an english meaning are dropped, and only the first
// row of each traditional string is kept.
func NewStore(words []Word) *Store {
	seen := make(map[string]struct{}, len(words))
	clean := make([]Word, 0, len(words))
	for _, w := range words {
		w.Traditional = strings.TrimSpace(w.Traditional)
		w.Pinyin = strings.TrimSpace(w.Pinyin)
		w.English = strings.TrimSpace(w.English)
		w.Category = strings.TrimSpace(w.Category)
		w.POS = strings.TrimSpace(w.POS)
		if w.Traditional == "" || w.English == "" {
			continue
		}
		if _, dup := seen[w.Traditional]; dup {
			continue
		}
		seen[w.Traditional] = struct{}{}
		if w.Lesson < 0 {
			w.Lesson = 0
		}
		if w.Hint == "" {
			w.Hint = hintFor(w)
		}
		clean = append(clean, w)
	}
	return &Store{words: clean}
}

// FallbackStore is used when no vocabulary source could be read.
func FallbackStore() *Store {
	return NewStore([]Word{{
		Traditional: "你好",
		Pinyin:      "nǐ hǎo",
		English:     "hello",
		Category:    "Greetings",
		Lesson:      1,
		Hint:        "Common greeting",
	}})
}

func hintFor(w Word) string {
	if w.POS != "" {
		return w.Category + " - " + w.POS
	}
	return w.Category
}

func (s *Store) Len() int {
	return len(s.words)
}

// All returns a copy of every word in load order.
func (s *Store) All() []Word {
	out := make([]Word, len(s.words))
	copy(out, s.words)
	return out
}

func (s *Store) ByLesson(lesson int) []Word {
	return s.Filter(lesson, "")
}

func (s *Store) ByCategory(category string) []Word {
	return s.Filter(0, category)
}

// Filter returns the words matching both criteria. A zero lesson or an
// empty category matches everything.
func (s *Store) Filter(lesson int, category string) []Word {
	out := make([]Word, 0, len(s.words))
	for _, w := range s.words {
		if lesson != 0 && w.Lesson != lesson {
			continue
		}
		if category != "" && w.Category != category {
			continue
		}
		out = append(out, w)
	}
	return out
}

// Lessons lists the distinct non-zero lessons, ascending.
func (s *Store) Lessons() []int {
	set := make(map[int]struct{})
	for _, w := range s.words {
		if w.Lesson != 0 {
			set[w.Lesson] = struct{}{}
		}
	}
	out := make([]int, 0, len(set))
	for l := range set {
		out = append(out, l)
	}
	sort.Ints(out)
	return out
}

// Categories lists the distinct non-empty categories, sorted.
func (s *Store) Categories() []string {
	set := make(map[string]struct{})
	for _, w := range s.words {
		if w.Category != "" {
			set[w.Category] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

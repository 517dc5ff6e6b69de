package domain

import (
	"fmt"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBank(n int) []QuestionRecord {
	bank := make([]QuestionRecord, 0, n)
	for i := 0; i < n; i++ {
		bank = append(bank, QuestionRecord{
			ID:            fmt.Sprintf("q%d", i+1),
			Question:      fmt.Sprintf("Question %d?", i+1),
			Category:      "general",
			Difficulty:    DifficultyEasy,
			Options:       []string{"a", "b", "c"},
			CorrectAnswer: "a",
		})
	}
	return bank
}

func testRand() *rand.Rand {
	return rand.New(rand.NewSource(42))
}

func TestParseQuizLevel(t *testing.T) {
	tests := []struct {
		in     string
		want   QuizLevel
		wantOK bool
	}{
		{"low", LevelLow, true},
		{"easy", LevelLow, true},
		{"Medium", LevelMedium, true},
		{" hard ", LevelHard, true},
		{"extreme", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseQuizLevel(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestQuizLevel_QuestionCount(t *testing.T) {
	assert.Equal(t, 10, LevelLow.QuestionCount())
	assert.Equal(t, 20, LevelMedium.QuestionCount())
	assert.Equal(t, 30, LevelHard.QuestionCount())
	assert.True(t, LevelLow.Valid())
	assert.False(t, QuizLevel("easy").Valid())
}

func TestNewQuizSession_SampleSize(t *testing.T) {
	for _, level := range QuizLevels {
		for _, n := range []int{0, 1, 5, 10, 15, 20, 25, 30, 45} {
			t.Run(fmt.Sprintf("%s_%d", level, n), func(t *testing.T) {
				bank := newTestBank(n)
				s := NewQuizSession("bank.json", level, bank, testRand())

				want := level.QuestionCount()
				if n < want {
					want = n
				}
				require.Equal(t, want, s.Total())
				require.Len(t, s.ShuffledOptions, want)

				seen := make(map[string]bool)
				for _, q := range s.Questions {
					assert.False(t, seen[q.ID], "record %s sampled twice", q.ID)
					seen[q.ID] = true
				}
			})
		}
	}
}

func TestNewQuizSession_IgnoresRecordDifficulty(t *testing.T) {
	bank := newTestBank(12)
	for i := range bank {
		bank[i].Difficulty = DifficultyHard
	}
	s := NewQuizSession("bank.json", LevelLow, bank, testRand())
	assert.Equal(t, 10, s.Total())
}

func TestNewQuizSession_ShuffledOptionsArePermutations(t *testing.T) {
	bank := []QuestionRecord{
		{ID: "in", Question: "?", Options: []string{"x", "y", "z"}, CorrectAnswer: "y"},
		{ID: "missing", Question: "?", Options: []string{"x", "y"}, CorrectAnswer: "w"},
		{ID: "dupes", Question: "?", Options: []string{"x", "x", "y"}, CorrectAnswer: "y"},
	}

	s := NewQuizSession("bank.json", LevelLow, bank, testRand())
	require.Equal(t, 3, s.Total())

	for i, q := range s.Questions {
		expected := q.PresentableOptions()
		got := append([]string(nil), s.ShuffledOptions[i]...)
		sort.Strings(expected)
		sort.Strings(got)
		assert.Equal(t, expected, got, "question %s", q.ID)

		count := 0
		for _, o := range s.ShuffledOptions[i] {
			if o == q.CorrectAnswer {
				count++
			}
		}
		assert.Equal(t, 1, count, "correct answer of %s must appear exactly once", q.ID)
	}
}

func TestNewQuizSession_DoesNotMutateBank(t *testing.T) {
	bank := []QuestionRecord{
		{ID: "q1", Question: "?", Options: []string{"x", "y"}, CorrectAnswer: "w"},
	}
	s := NewQuizSession("bank.json", LevelLow, bank, testRand())
	require.Equal(t, 1, s.Total())

	assert.Equal(t, []string{"x", "y"}, bank[0].Options)
	s.Questions[0].Options[0] = "changed"
	assert.Equal(t, "x", bank[0].Options[0])
}

func TestQuizSession_FrozenShuffle(t *testing.T) {
	s := NewQuizSession("bank.json", LevelLow, newTestBank(3), testRand())
	s.Start()

	first, err := s.Current()
	require.NoError(t, err)
	again, err := s.Current()
	require.NoError(t, err)
	assert.Equal(t, first.Options, again.Options)
}

func TestQuizSession_Lifecycle(t *testing.T) {
	s := NewQuizSession("bank.json", LevelLow, newTestBank(3), testRand())
	assert.Equal(t, StateNotStarted, s.State())

	_, err := s.Current()
	assert.ErrorIs(t, err, ErrQuizNotStarted)
	_, err = s.Answer("a")
	assert.ErrorIs(t, err, ErrQuizNotStarted)
	_, err = s.Report()
	assert.ErrorIs(t, err, ErrQuizNotFinished)

	s.Start()
	s.Start()
	assert.Equal(t, StateInProgress, s.State())
	assert.Equal(t, 0, s.CurrentIndex)

	res, err := s.Answer("a")
	require.NoError(t, err)
	assert.True(t, res.Correct)
	assert.Equal(t, 1, s.CurrentIndex)
	assert.Equal(t, 1, s.CorrectCount)
	assert.Empty(t, s.WrongIDs)

	cur, err := s.Current()
	require.NoError(t, err)
	wrongID := cur.Record.ID

	res, err = s.Answer("b")
	require.NoError(t, err)
	assert.False(t, res.Correct)
	assert.Equal(t, "a", res.CorrectAnswer)
	assert.Equal(t, 2, s.CurrentIndex)
	assert.Equal(t, 1, s.CorrectCount)
	assert.Equal(t, []string{wrongID}, s.WrongIDs)

	_, err = s.Report()
	assert.ErrorIs(t, err, ErrQuizNotFinished)

	res, err = s.Answer("A")
	require.NoError(t, err)
	assert.False(t, res.Correct, "matching is exact")
	assert.True(t, res.Finished)
	assert.Equal(t, StateFinished, s.State())

	_, err = s.Current()
	assert.ErrorIs(t, err, ErrNoCurrentQuestion)
	_, err = s.Answer("a")
	assert.ErrorIs(t, err, ErrNoCurrentQuestion)
	assert.Equal(t, 3, s.CurrentIndex)

	report, err := s.Report()
	require.NoError(t, err)
	assert.Equal(t, 1, report.CorrectCount)
	assert.Equal(t, 3, report.Total)
	assert.Len(t, report.WrongIDs, 2)
}

func TestQuizSession_AllCorrectFiveRecordsLow(t *testing.T) {
	s := NewQuizSession("bank.json", LevelLow, newTestBank(5), testRand())
	require.Equal(t, 5, s.Total())
	s.Start()

	for s.State() == StateInProgress {
		cur, err := s.Current()
		require.NoError(t, err)
		_, err = s.Answer(cur.Record.CorrectAnswer)
		require.NoError(t, err)
	}

	report, err := s.Report()
	require.NoError(t, err)
	assert.Equal(t, &Report{CorrectCount: 5, Total: 5, WrongIDs: []string{}}, report)
}

func TestQuizSession_Restart(t *testing.T) {
	bank := newTestBank(40)
	s := NewQuizSession("bank.json", LevelMedium, bank, testRand())
	s.Start()
	for i := 0; i < 4; i++ {
		_, err := s.Answer("b")
		require.NoError(t, err)
	}
	before := make([]string, 0, s.Total())
	for _, q := range s.Questions {
		before = append(before, q.ID)
	}

	s.Restart(bank, rand.New(rand.NewSource(7)))

	assert.Equal(t, StateNotStarted, s.State())
	assert.Equal(t, 0, s.CurrentIndex)
	assert.Equal(t, 0, s.CorrectCount)
	assert.Equal(t, []string{}, s.WrongIDs)
	assert.Equal(t, 20, s.Total())

	after := make([]string, 0, s.Total())
	for _, q := range s.Questions {
		after = append(after, q.ID)
	}
	assert.NotEqual(t, before, after)
}

func TestQuizSession_EmptyBankFinishesOnStart(t *testing.T) {
	s := NewQuizSession("bank.json", LevelLow, nil, testRand())
	s.Start()
	assert.Equal(t, StateFinished, s.State())
	report, err := s.Report()
	require.NoError(t, err)
	assert.Equal(t, 0, report.Total)
}

func TestQuizSession_Matches(t *testing.T) {
	s := NewQuizSession("a.json", LevelLow, newTestBank(1), testRand())
	assert.True(t, s.Matches("a.json", LevelLow))
	assert.False(t, s.Matches("b.json", LevelLow))
	assert.False(t, s.Matches("a.json", LevelHard))
}

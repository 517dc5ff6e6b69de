package domain

import (
	"math/rand"
	"strings"
	"time"
)

// QuizLevel is the session difficulty. It only controls how many questions are
// drawn; it never filters records by their own Difficulty.
type QuizLevel string

const (
	LevelLow    QuizLevel = "low"
	LevelMedium QuizLevel = "medium"
	LevelHard   QuizLevel = "hard"
)

// DefaultLevel is used when no setting has been stored yet.
const DefaultLevel = LevelMedium

// QuizLevels lists the selectable levels in display order.
var QuizLevels = []QuizLevel{LevelLow, LevelMedium, LevelHard}

// ParseQuizLevel converts user input into a level. "easy" is accepted for low.
func ParseQuizLevel(s string) (QuizLevel, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low", "easy":
		return LevelLow, true
	case "medium":
		return LevelMedium, true
	case "hard":
		return LevelHard, true
	default:
		return "", false
	}
}

// Valid reports whether l is a known level.
func (l QuizLevel) Valid() bool {
	switch l {
	case LevelLow, LevelMedium, LevelHard:
		return true
	}
	return false
}

// QuestionCount is the number of questions a session of this level draws.
func (l QuizLevel) QuestionCount() int {
	switch l {
	case LevelLow:
		return 10
	case LevelHard:
		return 30
	default:
		return 20
	}
}

// QuizState is derived from the session fields, never stored.
type QuizState string

const (
	StateNotStarted QuizState = "not_started"
	StateInProgress QuizState = "in_progress"
	StateFinished   QuizState = "finished"
)

// QuizSession is one play-through. Fields are exported for serialization by
// session stores; mutate it only through its methods.
type QuizSession struct {
	Source          string           `json:"source"`
	Level           QuizLevel        `json:"level"`
	Questions       []QuestionRecord `json:"questions"`
	ShuffledOptions [][]string       `json:"shuffled_options"`
	CurrentIndex    int              `json:"current_index"`
	CorrectCount    int              `json:"correct_count"`
	WrongIDs        []string         `json:"wrong_ids"`
	Started         bool             `json:"started"`
	InitializedAt   time.Time        `json:"initialized_at"`
}

// NewQuizSession samples min(level count, len(bank)) records without replacement
// and freezes a shuffled option list per sampled record.
func NewQuizSession(source string, level QuizLevel, bank []QuestionRecord, rnd *rand.Rand) *QuizSession {
	s := &QuizSession{Source: source, Level: level}
	s.initialize(bank, rnd)
	return s
}

func (s *QuizSession) initialize(bank []QuestionRecord, rnd *rand.Rand) {
	n := s.Level.QuestionCount()
	if n > len(bank) {
		n = len(bank)
	}

	picks := rnd.Perm(len(bank))[:n]
	s.Questions = make([]QuestionRecord, 0, n)
	s.ShuffledOptions = make([][]string, 0, n)
	for _, idx := range picks {
		rec := bank[idx].Clone()
		opts := rec.PresentableOptions()
		rnd.Shuffle(len(opts), func(i, j int) {
			opts[i], opts[j] = opts[j], opts[i]
		})
		s.Questions = append(s.Questions, rec)
		s.ShuffledOptions = append(s.ShuffledOptions, opts)
	}

	s.CurrentIndex = 0
	s.CorrectCount = 0
	s.WrongIDs = []string{}
	s.Started = false
	s.InitializedAt = time.Now()
}

// Restart discards all progress and draws a fresh sample with fresh shuffles.
func (s *QuizSession) Restart(bank []QuestionRecord, rnd *rand.Rand) {
	s.initialize(bank, rnd)
}

// Matches reports whether the session was initialized for this source and level.
func (s *QuizSession) Matches(source string, level QuizLevel) bool {
	return s.Source == source && s.Level == level
}

// Total is the number of sampled questions.
func (s *QuizSession) Total() int {
	return len(s.Questions)
}

// State derives the lifecycle state from the started flag and the cursor.
func (s *QuizSession) State() QuizState {
	switch {
	case !s.Started:
		return StateNotStarted
	case s.CurrentIndex >= s.Total():
		return StateFinished
	default:
		return StateInProgress
	}
}

// Start moves the session to InProgress. Calling it again is a no-op.
func (s *QuizSession) Start() {
	s.Started = true
}

// CurrentQuestion is the question under the cursor with its frozen options.
type CurrentQuestion struct {
	Index   int
	Total   int
	Record  QuestionRecord
	Options []string
}

// Current returns the question under the cursor.
func (s *QuizSession) Current() (*CurrentQuestion, error) {
	switch s.State() {
	case StateNotStarted:
		return nil, NewQuizNotStartedError()
	case StateFinished:
		return nil, NewNoCurrentQuestionError()
	}

	i := s.CurrentIndex
	return &CurrentQuestion{
		Index:   i,
		Total:   s.Total(),
		Record:  s.Questions[i].Clone(),
		Options: append([]string(nil), s.ShuffledOptions[i]...),
	}, nil
}

// AnswerResult is the outcome of one answer.
type AnswerResult struct {
	QuestionID    string
	Selected      string
	Correct       bool
	CorrectAnswer string
	Finished      bool
}

// Answer scores the selected option against the current question and always
// advances the cursor by one.
func (s *QuizSession) Answer(selected string) (*AnswerResult, error) {
	switch s.State() {
	case StateNotStarted:
		return nil, NewQuizNotStartedError()
	case StateFinished:
		return nil, NewNoCurrentQuestionError()
	}

	rec := &s.Questions[s.CurrentIndex]
	res := &AnswerResult{
		QuestionID:    rec.ID,
		Selected:      selected,
		Correct:       rec.IsCorrect(selected),
		CorrectAnswer: rec.CorrectAnswer,
	}
	if res.Correct {
		s.CorrectCount++
	} else {
		s.WrongIDs = append(s.WrongIDs, rec.ID)
	}
	s.CurrentIndex++
	res.Finished = s.State() == StateFinished
	return res, nil
}

// Report is the final score of a finished session.
type Report struct {
	CorrectCount int
	Total        int
	WrongIDs     []string
}

// Report is only available once every question has been answered.
func (s *QuizSession) Report() (*Report, error) {
	if s.State() != StateFinished {
		return nil, NewQuizNotFinishedError()
	}
	return &Report{
		CorrectCount: s.CorrectCount,
		Total:        s.Total(),
		WrongIDs:     append([]string{}, s.WrongIDs...),
	}, nil
}

package domain

import (
	"context"
	"strings"
)

// Difficulty is the difficulty label stored on a question record.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Difficulties lists the accepted record difficulties in display order.
var Difficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

// Valid reports whether d is one of the known difficulties.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// QuestionRecord is one multiple-choice question of a bank.
type QuestionRecord struct {
	ID            string     `json:"id"`
	Question      string     `json:"question"`
	Category      string     `json:"category"`
	Difficulty    Difficulty `json:"difficulty"`
	Options       []string   `json:"options"`
	CorrectAnswer string     `json:"correct_answer"`
	ImagePath     *string    `json:"image_path"`
}

// HasImage reports whether the record references an image.
func (q *QuestionRecord) HasImage() bool {
	return q.ImagePath != nil && *q.ImagePath != ""
}

// ClearImage drops the image reference.
func (q *QuestionRecord) ClearImage() {
	q.ImagePath = nil
}

// Clone returns a deep copy so callers can never mutate the bank through it.
func (q QuestionRecord) Clone() QuestionRecord {
	c := q
	if q.Options != nil {
		c.Options = append([]string(nil), q.Options...)
	}
	if q.ImagePath != nil {
		p := *q.ImagePath
		c.ImagePath = &p
	}
	return c
}

// PresentableOptions copies the options and appends the correct answer when the
// option list does not already contain it.
func (q *QuestionRecord) PresentableOptions() []string {
	opts := make([]string, 0, len(q.Options)+1)
	opts = append(opts, q.Options...)
	for _, o := range opts {
		if o == q.CorrectAnswer {
			return opts
		}
	}
	return append(opts, q.CorrectAnswer)
}

// IsCorrect compares a selected option with the correct answer (exact match).
func (q *QuestionRecord) IsCorrect(selected string) bool {
	return selected == q.CorrectAnswer
}

// Validate checks the fields the admin editor requires before a record is stored.
// Records loaded from disk are not validated.
func (q *QuestionRecord) Validate() error {
	var errs ValidationErrors

	if strings.TrimSpace(q.ID) == "" {
		errs = append(errs, NewMissingFieldError("id"))
	}
	if strings.TrimSpace(q.Question) == "" {
		errs = append(errs, NewMissingFieldError("question"))
	}
	if !hasNonBlank(q.Options) {
		errs = append(errs, NewMissingFieldError("options"))
	}
	if strings.TrimSpace(q.CorrectAnswer) == "" {
		errs = append(errs, NewMissingFieldError("correct_answer"))
	}
	if !q.Difficulty.Valid() {
		errs = append(errs, NewInvalidFormatError("difficulty", q.Difficulty))
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Normalize fills defaults for optional fields of a newly submitted record.
func (q *QuestionRecord) Normalize() {
	if q.Difficulty == "" {
		q.Difficulty = DifficultyEasy
	}
	if q.ImagePath != nil && strings.TrimSpace(*q.ImagePath) == "" {
		q.ImagePath = nil
	}
}

func hasNonBlank(values []string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return true
		}
	}
	return false
}

// SplitOptions splits the comma-separated option input of the admin form.
// Entries are kept verbatim; an empty input yields no options.
func SplitOptions(csv string) []string {
	if csv == "" {
		return nil
	}
	return strings.Split(csv, ",")
}

// QuestionEdit is a partial update of one record addressed by its id.
// Nil fields are left unchanged; an ImagePath pointing to "" clears the image.
type QuestionEdit struct {
	ID            string
	Question      *string
	Category      *string
	Difficulty    *Difficulty
	Options       []string
	CorrectAnswer *string
	ImagePath     *string
}

// Apply writes the edit onto rec.
func (e QuestionEdit) Apply(rec *QuestionRecord) {
	if e.Question != nil {
		rec.Question = *e.Question
	}
	if e.Category != nil {
		rec.Category = *e.Category
	}
	if e.Difficulty != nil {
		rec.Difficulty = *e.Difficulty
	}
	if e.Options != nil {
		rec.Options = append([]string(nil), e.Options...)
	}
	if e.CorrectAnswer != nil {
		rec.CorrectAnswer = *e.CorrectAnswer
	}
	if e.ImagePath != nil {
		if *e.ImagePath == "" {
			rec.ImagePath = nil
		} else {
			p := *e.ImagePath
			rec.ImagePath = &p
		}
	}
}

// LoadResult is a loaded bank plus the non-fatal warnings raised while loading it.
type LoadResult struct {
	Records  []QuestionRecord
	Warnings []*DomainError
}

// QuestionBankRepository persists question banks by source name.
type QuestionBankRepository interface {
	// ListSources returns the available source names, sorted.
	ListSources(ctx context.Context) ([]string, error)

	// Load reads a bank. Unresolvable images are cleared and reported as warnings.
	Load(ctx context.Context, source string) (*LoadResult, error)

	// Save replaces the whole bank.
	Save(ctx context.Context, source string, records []QuestionRecord) error
}

// ImageResolver checks that an image reference can be decoded.
type ImageResolver interface {
	Resolve(ctx context.Context, path string) error
}

package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"quiz-runner/internal/domain"
	"quiz-runner/internal/dto"
	"quiz-runner/internal/logger"

	"go.uber.org/zap"
)

// AdminService edits question banks. Every successful change is persisted
// immediately; a failed change leaves the stored bank untouched.
type AdminService interface {
	ListQuestions(ctx context.Context, source string) (*dto.QuestionListResponse, error)
	CreateQuestion(ctx context.Context, source string, payload *dto.QuestionPayload) (*dto.QuestionPayload, error)
	UpdateQuestions(ctx context.Context, source string, edits ...dto.QuestionEditPayload) ([]dto.QuestionPayload, error)
	DeleteQuestion(ctx context.Context, source string, id string) error
}

type adminService struct {
	bank domain.QuestionBankRepository
	// serializes load-modify-save cycles within this process
	mu sync.Mutex
}

func NewAdminService(bank domain.QuestionBankRepository) AdminService {
	return &adminService{bank: bank}
}

func (s *adminService) ListQuestions(ctx context.Context, source string) (*dto.QuestionListResponse, error) {
	res, err := s.bank.Load(ctx, source)
	if err != nil {
		return nil, err
	}
	questions := make([]dto.QuestionPayload, 0, len(res.Records))
	for i := range res.Records {
		questions = append(questions, toQuestionPayload(&res.Records[i]))
	}
	return &dto.QuestionListResponse{
		Source:    source,
		Questions: questions,
		Warnings:  toWarnings(res.Warnings),
	}, nil
}

// CreateQuestion appends a validated record. A source that does not exist yet
// is created.
func (s *adminService) CreateQuestion(ctx context.Context, source string, payload *dto.QuestionPayload) (*dto.QuestionPayload, error) {
	rec := fromQuestionPayload(payload)
	rec.Normalize()

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.loadForEdit(ctx, source, true)
	if err != nil {
		return nil, err
	}

	var errs domain.ValidationErrors
	if err := rec.Validate(); err != nil {
		errs = append(errs, err.(domain.ValidationErrors)...)
	}
	if rec.ID != "" && indexOf(records, rec.ID) >= 0 {
		errs = append(errs, domain.NewDuplicateIDError(rec.ID))
	}
	if len(errs) > 0 {
		return nil, errs
	}

	records = append(records, rec)
	if err := s.bank.Save(ctx, source, records); err != nil {
		return nil, err
	}

	logger.Get().Info("Question created", zap.String("source", source), zap.String("question_id", rec.ID))
	out := toQuestionPayload(&rec)
	return &out, nil
}

// UpdateQuestions applies all edits, validates every edited record and saves
// once. Any failure rejects the whole group.
func (s *adminService) UpdateQuestions(ctx context.Context, source string, edits ...dto.QuestionEditPayload) ([]dto.QuestionPayload, error) {
	if len(edits) == 0 {
		return nil, domain.ValidationErrors{domain.NewMissingFieldError("edits")}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.loadForEdit(ctx, source, false)
	if err != nil {
		return nil, err
	}

	var errs domain.ValidationErrors
	edited := make([]int, 0, len(edits))
	for i, payload := range edits {
		prefix := fmt.Sprintf("edits[%d].", i)
		if payload.ID == "" {
			errs = append(errs, prefixField(prefix, domain.NewMissingFieldError("id")))
			continue
		}
		idx := indexOf(records, payload.ID)
		if idx < 0 {
			return nil, domain.NewNotFoundError(fmt.Sprintf("question %s not found in %s", payload.ID, source)).
				WithContext("source", source).
				WithContext("question_id", payload.ID)
		}

		fromEditPayload(&payload).Apply(&records[idx])
		if err := records[idx].Validate(); err != nil {
			for _, fe := range err.(domain.ValidationErrors) {
				errs = append(errs, prefixField(prefix, fe))
			}
		}
		edited = append(edited, idx)
	}
	if len(errs) > 0 {
		return nil, errs
	}

	if err := s.bank.Save(ctx, source, records); err != nil {
		return nil, err
	}

	out := make([]dto.QuestionPayload, 0, len(edited))
	ids := make([]string, 0, len(edited))
	for _, idx := range edited {
		out = append(out, toQuestionPayload(&records[idx]))
		ids = append(ids, records[idx].ID)
	}
	logger.Get().Info("Questions updated", zap.String("source", source), zap.Strings("question_ids", ids))
	return out, nil
}

func (s *adminService) DeleteQuestion(ctx context.Context, source string, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.loadForEdit(ctx, source, false)
	if err != nil {
		return err
	}
	idx := indexOf(records, id)
	if idx < 0 {
		return domain.NewNotFoundError(fmt.Sprintf("question %s not found in %s", id, source)).
			WithContext("source", source).
			WithContext("question_id", id)
	}

	records = append(records[:idx], records[idx+1:]...)
	if err := s.bank.Save(ctx, source, records); err != nil {
		return err
	}

	logger.Get().Info("Question deleted", zap.String("source", source), zap.String("question_id", id))
	return nil
}

func (s *adminService) loadForEdit(ctx context.Context, source string, allowMissing bool) ([]domain.QuestionRecord, error) {
	res, err := s.bank.Load(ctx, source)
	if err != nil {
		if allowMissing && errors.Is(err, domain.ErrNotFound) {
			return []domain.QuestionRecord{}, nil
		}
		return nil, err
	}
	return res.Records, nil
}

func indexOf(records []domain.QuestionRecord, id string) int {
	for i := range records {
		if records[i].ID == id {
			return i
		}
	}
	return -1
}

func prefixField(prefix string, fe domain.FieldError) domain.FieldError {
	fe.Field = prefix + fe.Field
	return fe
}

func toQuestionPayload(rec *domain.QuestionRecord) dto.QuestionPayload {
	c := rec.Clone()
	options := c.Options
	if options == nil {
		options = []string{}
	}
	return dto.QuestionPayload{
		ID:            c.ID,
		Question:      c.Question,
		Category:      c.Category,
		Difficulty:    string(c.Difficulty),
		Options:       options,
		CorrectAnswer: c.CorrectAnswer,
		ImagePath:     c.ImagePath,
	}
}

func fromQuestionPayload(p *dto.QuestionPayload) domain.QuestionRecord {
	options := p.Options
	if p.OptionsCSV != nil {
		options = domain.SplitOptions(*p.OptionsCSV)
	}
	rec := domain.QuestionRecord{
		ID:            p.ID,
		Question:      p.Question,
		Category:      p.Category,
		Difficulty:    domain.Difficulty(p.Difficulty),
		Options:       append([]string(nil), options...),
		CorrectAnswer: p.CorrectAnswer,
	}
	if p.ImagePath != nil {
		path := *p.ImagePath
		rec.ImagePath = &path
	}
	return rec
}

func fromEditPayload(p *dto.QuestionEditPayload) domain.QuestionEdit {
	edit := domain.QuestionEdit{
		ID:            p.ID,
		Question:      p.Question,
		Category:      p.Category,
		Options:       p.Options,
		CorrectAnswer: p.CorrectAnswer,
		ImagePath:     p.ImagePath,
	}
	if p.OptionsCSV != nil {
		edit.Options = domain.SplitOptions(*p.OptionsCSV)
		if edit.Options == nil {
			edit.Options = []string{}
		}
	}
	if p.Difficulty != nil {
		d := domain.Difficulty(*p.Difficulty)
		edit.Difficulty = &d
	}
	return edit
}

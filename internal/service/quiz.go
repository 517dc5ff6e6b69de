package service

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"quiz-runner/internal/domain"
	"quiz-runner/internal/dto"
	"quiz-runner/internal/logger"

	"go.uber.org/zap"
)

// QuizService drives one player's quiz session. Every call is one atomic step;
// calls for the same player session are serialized.
type QuizService interface {
	ListSources(ctx context.Context) (*dto.SourcesResponse, error)
	Prepare(ctx context.Context, sessionID string, req *dto.PrepareQuizRequest) (*dto.QuizStateResponse, error)
	Start(ctx context.Context, sessionID string) (*dto.QuizStateResponse, error)
	State(ctx context.Context, sessionID string) (*dto.QuizStateResponse, error)
	CurrentQuestion(ctx context.Context, sessionID string) (*dto.QuestionResponse, error)
	Answer(ctx context.Context, sessionID string, option string) (*dto.AnswerResponse, error)
	Report(ctx context.Context, sessionID string) (*dto.ReportResponse, error)
	Restart(ctx context.Context, sessionID string) (*dto.QuizStateResponse, error)
}

type quizService struct {
	bank     domain.QuestionBankRepository
	settings domain.SettingsRepository
	sessions domain.SessionStore
	images   domain.ImageResolver
	locks    *sessionLocks

	rndMu sync.Mutex
	rnd   *rand.Rand
}

// QuizServiceOption customizes a QuizService.
type QuizServiceOption func(*quizService)

// WithRandSource makes sampling and shuffling reproducible.
func WithRandSource(src rand.Source) QuizServiceOption {
	return func(s *quizService) {
		s.rnd = rand.New(src)
	}
}

// WithImageResolver enables the display-time image check of CurrentQuestion.
func WithImageResolver(images domain.ImageResolver) QuizServiceOption {
	return func(s *quizService) {
		s.images = images
	}
}

// NewQuizService creates a new instance of quizService
func NewQuizService(
	bank domain.QuestionBankRepository,
	settings domain.SettingsRepository,
	sessions domain.SessionStore,
	opts ...QuizServiceOption,
) QuizService {
	s := &quizService{
		bank:     bank,
		settings: settings,
		sessions: sessions,
		locks:    newSessionLocks(),
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// withSession runs fn on the locked player session and stores it afterwards
// when save is set and fn succeeded.
func (s *quizService) withSession(ctx context.Context, sessionID string, save bool, fn func(ps *domain.PlayerSession) error) error {
	unlock := s.locks.lock(sessionID)
	defer unlock()

	ps, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	if err := fn(ps); err != nil {
		return err
	}
	if save {
		return s.sessions.Put(ctx, ps)
	}
	return nil
}

func requireQuiz(ps *domain.PlayerSession) (*domain.QuizSession, error) {
	if ps.Quiz == nil {
		return nil, domain.NewQuizNotPreparedError()
	}
	return ps.Quiz, nil
}

// loadPlayable loads a bank and refuses empty ones.
func (s *quizService) loadPlayable(ctx context.Context, source string) (*domain.LoadResult, error) {
	res, err := s.bank.Load(ctx, source)
	if err != nil {
		return nil, err
	}
	if len(res.Records) == 0 {
		return nil, domain.NewEmptyBankError(source)
	}
	return res, nil
}

func (s *quizService) newQuiz(source string, level domain.QuizLevel, records []domain.QuestionRecord) *domain.QuizSession {
	s.rndMu.Lock()
	defer s.rndMu.Unlock()
	return domain.NewQuizSession(source, level, records, s.rnd)
}

func (s *quizService) restartQuiz(quiz *domain.QuizSession, records []domain.QuestionRecord) {
	s.rndMu.Lock()
	defer s.rndMu.Unlock()
	quiz.Restart(records, s.rnd)
}

func (s *quizService) ListSources(ctx context.Context) (*dto.SourcesResponse, error) {
	sources, err := s.bank.ListSources(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.SourcesResponse{Sources: sources}, nil
}

// Prepare initializes a quiz for source at the requested level, or at the stored
// default when none is given. A chosen level is also saved as the new default.
// An existing session for the same source and level is kept with its progress.
func (s *quizService) Prepare(ctx context.Context, sessionID string, req *dto.PrepareQuizRequest) (*dto.QuizStateResponse, error) {
	level, err := s.resolveLevel(ctx, req.Difficulty)
	if err != nil {
		return nil, err
	}

	var resp *dto.QuizStateResponse
	err = s.withSession(ctx, sessionID, true, func(ps *domain.PlayerSession) error {
		if ps.Quiz != nil && ps.Quiz.Matches(req.Source, level) {
			resp = toQuizState(ps.Quiz, nil)
			return nil
		}

		res, err := s.loadPlayable(ctx, req.Source)
		if err != nil {
			return err
		}
		ps.Quiz = s.newQuiz(req.Source, level, res.Records)

		logger.Get().Info("Quiz prepared",
			zap.String("session_id", ps.ID),
			zap.String("source", req.Source),
			zap.String("level", string(level)),
			zap.Int("total", ps.Quiz.Total()),
			zap.Int("bank_size", len(res.Records)))
		resp = toQuizState(ps.Quiz, res.Warnings)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *quizService) resolveLevel(ctx context.Context, difficulty string) (domain.QuizLevel, error) {
	if difficulty == "" {
		settings, err := s.settings.Load(ctx)
		if err != nil {
			return "", err
		}
		return settings.Difficulty, nil
	}

	level, ok := domain.ParseQuizLevel(difficulty)
	if !ok {
		return "", domain.ValidationErrors{domain.NewInvalidFormatError("difficulty", difficulty)}
	}
	if err := s.settings.Save(ctx, domain.Settings{Difficulty: level}); err != nil {
		// the quiz can still run at the chosen level
		logger.Get().Warn("Failed to save difficulty setting", zap.String("level", string(level)), zap.Error(err))
	}
	return level, nil
}

func (s *quizService) Start(ctx context.Context, sessionID string) (*dto.QuizStateResponse, error) {
	var resp *dto.QuizStateResponse
	err := s.withSession(ctx, sessionID, true, func(ps *domain.PlayerSession) error {
		quiz, err := requireQuiz(ps)
		if err != nil {
			return err
		}
		quiz.Start()
		resp = toQuizState(quiz, nil)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *quizService) State(ctx context.Context, sessionID string) (*dto.QuizStateResponse, error) {
	var resp *dto.QuizStateResponse
	err := s.withSession(ctx, sessionID, false, func(ps *domain.PlayerSession) error {
		quiz, err := requireQuiz(ps)
		if err != nil {
			return err
		}
		resp = toQuizState(quiz, nil)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// CurrentQuestion returns the question under the cursor. Its image is checked
// again; when it no longer decodes the view carries no image and a warning.
func (s *quizService) CurrentQuestion(ctx context.Context, sessionID string) (*dto.QuestionResponse, error) {
	var cur *domain.CurrentQuestion
	err := s.withSession(ctx, sessionID, false, func(ps *domain.PlayerSession) error {
		quiz, err := requireQuiz(ps)
		if err != nil {
			return err
		}
		cur, err = quiz.Current()
		return err
	})
	if err != nil {
		return nil, err
	}

	resp := &dto.QuestionResponse{
		Index:     cur.Index,
		Total:     cur.Total,
		ID:        cur.Record.ID,
		Question:  cur.Record.Question,
		Category:  cur.Record.Category,
		Options:   cur.Options,
		ImagePath: cur.Record.ImagePath,
	}

	if s.images != nil && cur.Record.HasImage() {
		path := *cur.Record.ImagePath
		if err := s.images.Resolve(ctx, path); err != nil {
			warning := domain.NewAssetUnavailableError(cur.Record.ID, path, err)
			logger.Get().Warn("Question image unavailable at display time",
				zap.String("question_id", cur.Record.ID),
				zap.String("image_path", path),
				zap.Error(err))
			resp.ImagePath = nil
			resp.Warnings = toWarnings([]*domain.DomainError{warning})
		}
	}
	return resp, nil
}

func (s *quizService) Answer(ctx context.Context, sessionID string, option string) (*dto.AnswerResponse, error) {
	var res *domain.AnswerResult
	err := s.withSession(ctx, sessionID, true, func(ps *domain.PlayerSession) error {
		quiz, err := requireQuiz(ps)
		if err != nil {
			return err
		}
		res, err = quiz.Answer(option)
		return err
	})
	if err != nil {
		return nil, err
	}

	return &dto.AnswerResponse{
		QuestionID:    res.QuestionID,
		Selected:      res.Selected,
		Correct:       res.Correct,
		CorrectAnswer: res.CorrectAnswer,
		Finished:      res.Finished,
	}, nil
}

func (s *quizService) Report(ctx context.Context, sessionID string) (*dto.ReportResponse, error) {
	var report *domain.Report
	err := s.withSession(ctx, sessionID, false, func(ps *domain.PlayerSession) error {
		quiz, err := requireQuiz(ps)
		if err != nil {
			return err
		}
		report, err = quiz.Report()
		return err
	})
	if err != nil {
		return nil, err
	}

	return &dto.ReportResponse{
		CorrectCount: report.CorrectCount,
		Total:        report.Total,
		WrongIDs:     report.WrongIDs,
	}, nil
}

// Restart draws a fresh sample from a fresh load of the session's source.
func (s *quizService) Restart(ctx context.Context, sessionID string) (*dto.QuizStateResponse, error) {
	var resp *dto.QuizStateResponse
	err := s.withSession(ctx, sessionID, true, func(ps *domain.PlayerSession) error {
		quiz, err := requireQuiz(ps)
		if err != nil {
			return err
		}
		res, err := s.loadPlayable(ctx, quiz.Source)
		if err != nil {
			return err
		}
		s.restartQuiz(quiz, res.Records)
		logger.Get().Info("Quiz restarted", zap.String("session_id", ps.ID), zap.String("source", quiz.Source))
		resp = toQuizState(quiz, res.Warnings)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func toQuizState(quiz *domain.QuizSession, warnings []*domain.DomainError) *dto.QuizStateResponse {
	return &dto.QuizStateResponse{
		Source:       quiz.Source,
		Difficulty:   string(quiz.Level),
		State:        string(quiz.State()),
		CurrentIndex: quiz.CurrentIndex,
		Total:        quiz.Total(),
		CorrectCount: quiz.CorrectCount,
		Warnings:     toWarnings(warnings),
	}
}

func toWarnings(warnings []*domain.DomainError) []dto.WarningResponse {
	if len(warnings) == 0 {
		return nil
	}
	out := make([]dto.WarningResponse, 0, len(warnings))
	for _, w := range warnings {
		out = append(out, dto.WarningResponse{
			Code:    string(w.Code),
			Message: w.Message,
			Details: w.Context,
		})
	}
	return out
}

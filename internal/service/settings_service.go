package service

import (
	"context"

	"quiz-runner/internal/domain"
	"quiz-runner/internal/dto"
	"quiz-runner/internal/logger"

	"go.uber.org/zap"
)

// SettingsService reads and writes the default quiz difficulty.
type SettingsService interface {
	Get(ctx context.Context) (*dto.SettingsResponse, error)
	Set(ctx context.Context, difficulty string) (*dto.SettingsResponse, error)
}

type settingsService struct {
	repo domain.SettingsRepository
}

func NewSettingsService(repo domain.SettingsRepository) SettingsService {
	return &settingsService{repo: repo}
}

func (s *settingsService) Get(ctx context.Context) (*dto.SettingsResponse, error) {
	settings, err := s.repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.SettingsResponse{Difficulty: string(settings.Difficulty)}, nil
}

func (s *settingsService) Set(ctx context.Context, difficulty string) (*dto.SettingsResponse, error) {
	level, ok := domain.ParseQuizLevel(difficulty)
	if !ok {
		return nil, domain.ValidationErrors{domain.NewInvalidFormatError("difficulty", difficulty)}
	}
	if err := s.repo.Save(ctx, domain.Settings{Difficulty: level}); err != nil {
		return nil, err
	}
	logger.Get().Info("Default difficulty changed", zap.String("level", string(level)))
	return &dto.SettingsResponse{Difficulty: string(level)}, nil
}

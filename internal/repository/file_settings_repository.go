package repository

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"sync"

	"quiz-runner/internal/domain"
	"quiz-runner/internal/logger"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// FileSettingsRepository persists Settings as {"difficulty": "<level>"}.
type FileSettingsRepository struct {
	fs   afero.Fs
	path string
	mu   sync.Mutex
}

func NewFileSettingsRepository(fs afero.Fs, path string) *FileSettingsRepository {
	return &FileSettingsRepository{fs: fs, path: path}
}

// Load falls back to DefaultSettings when the file is absent, malformed, or holds
// an unknown level. Only I/O failures other than a missing file are errors.
func (r *FileSettingsRepository) Load(ctx context.Context) (domain.Settings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := afero.ReadFile(r.fs, r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.DefaultSettings(), nil
		}
		return domain.DefaultSettings(), domain.NewInternalError("failed to read settings", err)
	}

	var raw struct {
		Difficulty string `json:"difficulty"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		logger.Get().Warn("Settings file is malformed, using defaults",
			zap.String("path", r.path), zap.Error(err))
		return domain.DefaultSettings(), nil
	}

	level, ok := domain.ParseQuizLevel(raw.Difficulty)
	if !ok {
		if raw.Difficulty != "" {
			logger.Get().Warn("Settings file has unknown difficulty, using defaults",
				zap.String("path", r.path), zap.String("difficulty", raw.Difficulty))
		}
		return domain.DefaultSettings(), nil
	}
	return domain.Settings{Difficulty: level}, nil
}

func (r *FileSettingsRepository) Save(ctx context.Context, settings domain.Settings) error {
	if !settings.Difficulty.Valid() {
		return domain.NewInvalidInputError("unknown difficulty").WithContext("difficulty", settings.Difficulty)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := writeJSONFile(r.fs, r.path, settings); err != nil {
		return domain.NewInternalError("failed to save settings", err)
	}
	return nil
}

var _ domain.SettingsRepository = (*FileSettingsRepository)(nil)

package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"quiz-runner/internal/domain"
	"quiz-runner/internal/logger"

	"github.com/spf13/afero"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	sourceExt = ".json"

	// DefaultImageCheckConcurrency bounds the image decodes run per Load.
	DefaultImageCheckConcurrency = 8
)

// FileQuestionBank stores each bank as a JSON array in its own file under dir.
type FileQuestionBank struct {
	fs       afero.Fs
	dir      string
	images   domain.ImageResolver
	excluded map[string]struct{}
	limit    int

	mu sync.RWMutex
}

// NewFileQuestionBank creates a bank store rooted at dir. Files named in exclude
// (settings, accounts) are never treated as sources.
func NewFileQuestionBank(fs afero.Fs, dir string, images domain.ImageResolver, exclude ...string) *FileQuestionBank {
	excluded := make(map[string]struct{}, len(exclude))
	for _, name := range exclude {
		excluded[name] = struct{}{}
	}
	return &FileQuestionBank{
		fs:       fs,
		dir:      dir,
		images:   images,
		excluded: excluded,
		limit:    DefaultImageCheckConcurrency,
	}
}

// SetImageCheckConcurrency changes the errgroup limit used by Load.
func (b *FileQuestionBank) SetImageCheckConcurrency(n int) {
	if n > 0 {
		b.limit = n
	}
}

func (b *FileQuestionBank) ListSources(ctx context.Context) ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	entries, err := afero.ReadDir(b.fs, b.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, domain.NewInternalError("failed to list question sources", err)
	}

	sources := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, sourceExt) || strings.HasPrefix(name, ".") {
			continue
		}
		if _, skip := b.excluded[name]; skip {
			continue
		}
		sources = append(sources, name)
	}
	sort.Strings(sources)
	return sources, nil
}

// sourcePath rejects anything that is not a plain *.json file name.
func (b *FileQuestionBank) sourcePath(source string) (string, error) {
	if source == "" || filepath.Base(source) != source || strings.HasPrefix(source, ".") ||
		!strings.HasSuffix(source, sourceExt) || strings.ContainsAny(source, `/\`) {
		return "", domain.NewInvalidInputError(fmt.Sprintf("invalid question source %q", source)).
			WithContext("source", source)
	}
	if _, skip := b.excluded[source]; skip {
		return "", domain.NewNotFoundError(fmt.Sprintf("question source %s not found", source)).
			WithContext("source", source)
	}
	return filepath.Join(b.dir, source), nil
}

// Load reads a bank. Records are returned as stored; image references that cannot
// be decoded are cleared and reported in LoadResult.Warnings.
func (b *FileQuestionBank) Load(ctx context.Context, source string) (*domain.LoadResult, error) {
	path, err := b.sourcePath(source)
	if err != nil {
		return nil, err
	}

	b.mu.RLock()
	data, err := afero.ReadFile(b.fs, path)
	b.mu.RUnlock()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domain.NewNotFoundError(fmt.Sprintf("question source %s not found", source)).
				WithContext("source", source)
		}
		return nil, domain.NewInternalError(fmt.Sprintf("failed to read question source %s", source), err)
	}

	var records []domain.QuestionRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, domain.NewMalformedError(fmt.Sprintf("question source %s is not a valid question list", source), err).
			WithContext("source", source)
	}
	if records == nil {
		records = []domain.QuestionRecord{}
	}

	for i := range records {
		if records[i].ImagePath != nil && strings.TrimSpace(*records[i].ImagePath) == "" {
			records[i].ClearImage()
		}
	}

	warnings, err := b.checkImages(ctx, records)
	if err != nil {
		return nil, err
	}
	return &domain.LoadResult{Records: records, Warnings: warnings}, nil
}

func (b *FileQuestionBank) checkImages(ctx context.Context, records []domain.QuestionRecord) ([]*domain.DomainError, error) {
	if b.images == nil {
		return nil, nil
	}

	failed := make([]*domain.DomainError, len(records))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.limit)

	for i := range records {
		if !records[i].HasImage() {
			continue
		}
		i := i
		path := *records[i].ImagePath
		g.Go(func() error {
			if err := b.images.Resolve(gctx, path); err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				failed[i] = domain.NewAssetUnavailableError(records[i].ID, path, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var warnings []*domain.DomainError
	for i, w := range failed {
		if w == nil {
			continue
		}
		records[i].ClearImage()
		warnings = append(warnings, w)
		logger.Get().Warn("Question image unavailable",
			zap.String("question_id", records[i].ID),
			zap.Any("image_path", w.Context["image_path"]),
			zap.Error(w.Cause))
	}
	return warnings, nil
}

// Save replaces the whole source file.
func (b *FileQuestionBank) Save(ctx context.Context, source string, records []domain.QuestionRecord) error {
	path, err := b.sourcePath(source)
	if err != nil {
		return err
	}
	if records == nil {
		records = []domain.QuestionRecord{}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if err := writeJSONFile(b.fs, path, records); err != nil {
		return domain.NewInternalError(fmt.Sprintf("failed to save question source %s", source), err)
	}
	return nil
}

var _ domain.QuestionBankRepository = (*FileQuestionBank)(nil)

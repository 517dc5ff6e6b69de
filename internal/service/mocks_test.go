package service

import (
	"context"
	"time"

	"quiz-runner/internal/domain"

	"github.com/stretchr/testify/mock"
)

// --- MockQuestionBank ---
type MockQuestionBank struct {
	mock.Mock
}

func (m *MockQuestionBank) ListSources(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockQuestionBank) Load(ctx context.Context, source string) (*domain.LoadResult, error) {
	args := m.Called(ctx, source)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	// hand out a fresh copy so callers can mutate it like a real load
	res := args.Get(0).(*domain.LoadResult)
	records := make([]domain.QuestionRecord, 0, len(res.Records))
	for _, r := range res.Records {
		records = append(records, r.Clone())
	}
	return &domain.LoadResult{Records: records, Warnings: res.Warnings}, args.Error(1)
}

func (m *MockQuestionBank) Save(ctx context.Context, source string, records []domain.QuestionRecord) error {
	args := m.Called(ctx, source, records)
	return args.Error(0)
}

// --- MockSettingsRepository ---
type MockSettingsRepository struct {
	mock.Mock
}

func (m *MockSettingsRepository) Load(ctx context.Context) (domain.Settings, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.Settings), args.Error(1)
}

func (m *MockSettingsRepository) Save(ctx context.Context, settings domain.Settings) error {
	args := m.Called(ctx, settings)
	return args.Error(0)
}

// --- MockAccountRepository ---
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) GetAccount(ctx context.Context, username string) (*domain.Account, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) CreateAccount(ctx context.Context, account *domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

// --- MockImageResolver ---
type MockImageResolver struct {
	mock.Mock
}

func (m *MockImageResolver) Resolve(ctx context.Context, path string) error {
	args := m.Called(ctx, path)
	return args.Error(0)
}

// --- MockCache ---
type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockCache) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	args := m.Called(ctx, key, value, expiration)
	return args.Error(0)
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCache) Expire(ctx context.Context, key string, expiration time.Duration) error {
	args := m.Called(ctx, key, expiration)
	return args.Error(0)
}

func (m *MockCache) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
